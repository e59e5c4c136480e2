package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"time"

	"github.com/lukefarrell/snapfeed/pkg/util"
	"github.com/oklog/ulid/v2"
)

// Doer abstracts the HTTP transport so tests can substitute their own.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

type Config struct {
	Endpoint   string
	ProjectID  string
	DatabaseID string
	APIKey     string
}

// Client is a typed, stateless wrapper around the remote account, document,
// and file operations. It holds no local state beyond connection settings;
// caching and invalidation live in pkg/query.
type Client struct {
	endpoint   string
	projectID  string
	databaseID string
	apiKey     string
	http       Doer
}

func New(cfg Config, doer Doer) *Client {
	if doer == nil {
		doer = &http.Client{Timeout: 10 * time.Second}
	}

	return &Client{
		endpoint:   cfg.Endpoint,
		projectID:  cfg.ProjectID,
		databaseID: cfg.DatabaseID,
		apiKey:     cfg.APIKey,
		http:       doer,
	}
}

// NewID generates a unique, time-ordered identifier for a new document or
// file.
func NewID() string {
	entropy := rand.New(rand.NewSource(time.Now().UnixNano()))
	id := ulid.MustNew(ulid.Timestamp(time.Now()), entropy)
	return id.String()
}

// do performs one request against the remote service. A response with a
// status outside 'expect' is mapped to the error taxonomy. No retries:
// transient failures surface to the caller.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body io.Reader, contentType string, out any, expect ...int) error {
	if len(expect) == 0 {
		expect = []int{http.StatusOK}
	}

	urlStr := c.endpoint + path
	if len(query) > 0 {
		urlStr += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, urlStr, body)
	if err != nil {
		return util.WrapErr("failed to create request", err)
	}
	req.Header.Set("X-Project", c.projectID)
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return util.WrapErr("request failed", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return util.WrapErr("failed to read response body", err)
	}

	ok := false
	for _, status := range expect {
		if resp.StatusCode == status {
			ok = true
			break
		}
	}
	if !ok {
		return statusError(resp.StatusCode, data)
	}

	if out != nil && len(data) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			return util.WrapErr("failed to decode response", err)
		}
	}
	return nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, payload any, out any, expect ...int) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return util.WrapErr("failed to encode request body", err)
		}
		body = bytes.NewReader(data)
	}
	return c.do(ctx, method, path, nil, body, "application/json", out, expect...)
}

func (c *Client) collectionPath(collection string) string {
	return fmt.Sprintf("/databases/%s/collections/%s/documents", c.databaseID, collection)
}
