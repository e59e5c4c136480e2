package query

import (
	"context"
	"crypto/tls"
	"log/slog"
	"time"

	"github.com/lukefarrell/snapfeed/pkg/util"
	"github.com/valkey-io/valkey-go"
)

type valkeyStore struct {
	client valkey.Client
}

// NewValkeyStore creates a payload store backed by a shared valkey instance.
// Staleness tracking stays local to each process; only payload bytes are
// shared.
func NewValkeyStore(address string, tlsEnabled bool) (Store, error) {
	var tlsConfig *tls.Config // nil by default
	if tlsEnabled {
		tlsConfig = &tls.Config{
			InsecureSkipVerify: false, // Validate the server's certificate
		}
	}

	client, err := valkey.NewClient(valkey.ClientOption{
		InitAddress: []string{address},
		TLSConfig:   tlsConfig,
	})
	if err != nil {
		return nil, util.WrapErr("failed to create valkey client", err)
	}

	return &valkeyStore{client: client}, nil
}

func (v *valkeyStore) Get(key string) ([]byte, bool) {
	cmd := v.client.B().Get().Key("query:" + key).Build()
	resp := v.client.Do(context.Background(), cmd)
	if err := resp.Error(); err != nil {
		if err != valkey.Nil {
			slog.Warn(util.WrapErr("failed to execute get command", err).Error())
		}
		return nil, false
	}

	data, err := resp.AsBytes()
	if err != nil {
		slog.Warn(util.WrapErr("failed to convert response to bytes", err).Error())
		return nil, false
	}
	return data, true
}

func (v *valkeyStore) Set(key string, value []byte, expiration time.Duration) {
	cmd := v.client.B().Set().Key("query:" + key).Value(string(value)).Ex(expiration).Build()
	if err := v.client.Do(context.Background(), cmd).Error(); err != nil {
		slog.Warn(util.WrapErr("failed to set key", err).Error())
	}
}

func (v *valkeyStore) Delete(key string) {
	cmd := v.client.B().Del().Key("query:" + key).Build()
	if err := v.client.Do(context.Background(), cmd).Error(); err != nil {
		slog.Warn(util.WrapErr("failed to delete key", err).Error())
	}
}

func (v *valkeyStore) Close() {
	v.client.Close()
}
