package config

import (
	"encoding/json"
	"log/slog"

	"github.com/lukefarrell/snapfeed/pkg/util"
)

type Config struct {
	// Remote service
	Endpoint         string
	RealtimeEndpoint string
	ProjectID        string
	APIKey           string `json:"-"`
	APIKeySecretName string

	// Database layout
	DatabaseID        string
	UserCollectionID  string
	PostCollectionID  string
	SavesCollectionID string
	StorageBucketID   string

	// Shared cache (optional; in-memory store is used when disabled)
	SharedCacheEnabled bool
	ValkeyAddress      string
	ValkeyTLSEnabled   bool
}

func New() (Config, error) {
	result := Config{
		Endpoint:          util.GetEnvStr("SERVICE_ENDPOINT", "https://api.snapfeed.dev/v1"),
		RealtimeEndpoint:  util.GetEnvStr("SERVICE_REALTIME_ENDPOINT", "wss://api.snapfeed.dev/v1/realtime"),
		ProjectID:         util.GetEnvStr("SERVICE_PROJECT_ID", ""),
		APIKey:            util.GetEnvStr("SERVICE_API_KEY", ""),
		APIKeySecretName:  util.GetEnvStr("SERVICE_API_KEY_SECRET", ""),
		DatabaseID:        util.GetEnvStr("SERVICE_DATABASE_ID", ""),
		UserCollectionID:  util.GetEnvStr("SERVICE_USER_COLLECTION_ID", "users"),
		PostCollectionID:  util.GetEnvStr("SERVICE_POST_COLLECTION_ID", "posts"),
		SavesCollectionID: util.GetEnvStr("SERVICE_SAVES_COLLECTION_ID", "saves"),
		StorageBucketID:   util.GetEnvStr("SERVICE_STORAGE_BUCKET_ID", "media"),

		SharedCacheEnabled: util.GetEnvBool("SHARED_CACHE_ENABLED", false),
		ValkeyAddress:      util.GetEnvStr("VALKEY_ADDRESS", "127.0.0.1:6379"),
		ValkeyTLSEnabled:   util.GetEnvBool("VALKEY_TLS_ENABLED", false),
	}

	// Marshal to JSON and print if debug is enabled
	data, err := json.Marshal(result)
	if err != nil {
		slog.Warn(util.WrapErr("failed to marshal config", err).Error())
	}
	slog.Debug("generated config", "config", string(data))

	return result, nil
}
