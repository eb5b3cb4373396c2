// Package jsonrpc implements the provider.Transport interface over a direct
// JSON-RPC 2.0 HTTP connection to an Ethereum-compatible node. It handles
// request encoding, response decoding, configurable timeouts, and automatic
// retries of transport-level failures.
package jsonrpc

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gabapcia/walletbridge/internal/provider"

	"github.com/google/uuid"
	"github.com/hashicorp/go-retryablehttp"
)

// response represents a standard JSON-RPC 2.0 response envelope.
type response struct {
	JsonRPC string             `json:"jsonrpc"`
	Error   *provider.RPCError `json:"error"`
	Result  json.RawMessage    `json:"result"`
}

// Err surfaces the JSON-RPC error object, if any, as a structured
// *provider.RPCError.
func (r response) Err() error {
	if r.Error == nil {
		return nil
	}
	return r.Error
}

// client is a reusable JSON-RPC transport over HTTP.
type client struct {
	nodeEndpoint string
	httpClient   *retryablehttp.Client
}

var _ provider.Transport = (*client)(nil)

// Request sends a JSON-RPC call with the given method and positionally
// ordered params, returning the raw result. The request id is a generated
// UUID. Node rejections decode into *provider.RPCError; transport failures
// are returned as-is.
func (c *client) Request(ctx context.Context, method string, params ...any) (json.RawMessage, error) {
	if params == nil {
		params = []any{}
	}

	body, err := json.Marshal(map[string]any{
		"jsonrpc": "2.0",
		"id":      uuid.NewString(),
		"method":  method,
		"params":  params,
	})
	if err != nil {
		return nil, err
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, c.nodeEndpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	req.Header.Set("Content-Type", "application/json")

	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	var data response
	if err := json.NewDecoder(res.Body).Decode(&data); err != nil {
		return nil, err
	}

	return data.Result, data.Err()
}

// config holds optional configuration parameters for the client.
type config struct {
	timeout      time.Duration // maximum time for a single HTTP request
	retryWaitMin time.Duration // minimum delay between retries
	retryWaitMax time.Duration // maximum delay between retries
	retryMax     int           // maximum number of retry attempts
}

// Option customizes the client configuration.
type Option func(*config)

// NewClient creates a JSON-RPC transport pointing at the given node
// endpoint. Transport-level retries are handled by retryablehttp; the
// provider core above never retries.
func NewClient(nodeEndpoint string, opts ...Option) *client {
	cfg := config{
		timeout:      5 * time.Second,
		retryWaitMin: 1 * time.Second,
		retryWaitMax: 5 * time.Second,
		retryMax:     2,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	httpClient := retryablehttp.NewClient()
	httpClient.Logger = nil
	httpClient.HTTPClient.Timeout = cfg.timeout
	httpClient.RetryWaitMin = cfg.retryWaitMin
	httpClient.RetryWaitMax = cfg.retryWaitMax
	httpClient.RetryMax = cfg.retryMax

	return &client{
		nodeEndpoint: nodeEndpoint,
		httpClient:   httpClient,
	}
}

// WithTimeout configures the maximum duration for a single HTTP request.
//
// Default: 5 seconds.
func WithTimeout(d time.Duration) Option {
	return func(c *config) {
		c.timeout = d
	}
}

// WithRetryWaitMin configures the minimum wait between retry attempts.
//
// Default: 1 second.
func WithRetryWaitMin(d time.Duration) Option {
	return func(c *config) {
		c.retryWaitMin = d
	}
}

// WithRetryWaitMax configures the maximum wait between retry attempts.
//
// Default: 5 seconds.
func WithRetryWaitMax(d time.Duration) Option {
	return func(c *config) {
		c.retryWaitMax = d
	}
}

// WithRetryMax configures the maximum number of retry attempts.
//
// Default: 2 retries.
func WithRetryMax(n int) Option {
	return func(c *config) {
		c.retryMax = n
	}
}
