// sdk.go
// ------
// The sdk.go file contains the core CampaignBridge struct and its methods.
// This is the main entry point of the SDK for users.
//
// Key functionalities include:
// - Initializing the SDK with New() around a ProviderAdapter
// - Reconfiguring client-wide defaults (base path, timeout, retries, retry delay, headers)
// - Making requests via Request() or the typed Get/Post/Put/Patch/Delete helpers
// - Retrieving the last known rate limit info
//
// CampaignBridge relies on a RateLimiter and a RequestExecutor to handle rate limiting and
// retries. Defaults are read under a lock and copied per call, so a setter only affects calls
// issued after it returns.
package campaignbridge

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const requestIDHeader = "X-Request-Id"

type CampaignBridge struct {
	mu       sync.RWMutex
	defaults Defaults
	logger   *zap.SugaredLogger
	custom   bool // logger supplied through WithLogger

	name        string
	adapter     ProviderAdapter
	rateLimiter *RateLimiter
	executor    *RequestExecutor
	metrics     *Metrics
}

// Option configures a CampaignBridge at construction time.
type Option func(*CampaignBridge)

// WithName sets the key under which rate limit info is tracked.
func WithName(name string) Option {
	return func(sdk *CampaignBridge) { sdk.name = name }
}

// WithDefaults replaces the initial client-wide defaults.
func WithDefaults(d Defaults) Option {
	return func(sdk *CampaignBridge) { sdk.defaults = d.clone() }
}

// WithLogger sets the logger used for diagnostics.
func WithLogger(l *zap.Logger) Option {
	return func(sdk *CampaignBridge) {
		if l != nil {
			sdk.logger = l.Sugar()
			sdk.custom = true
		}
	}
}

// WithMetrics enables Prometheus metrics.
func WithMetrics(m *Metrics) Option {
	return func(sdk *CampaignBridge) { sdk.metrics = m }
}

func New(adapter ProviderAdapter, opts ...Option) *CampaignBridge {
	sdk := &CampaignBridge{
		defaults:    NewDefaults(),
		logger:      zap.NewNop().Sugar(),
		name:        "default",
		adapter:     adapter,
		rateLimiter: NewRateLimiter(),
	}
	for _, opt := range opts {
		opt(sdk)
	}
	sdk.executor = NewRequestExecutor(sdk)
	return sdk
}

// SetDebug switches to a development logger, or back to a no-op one. It has no effect when a
// logger was supplied with WithLogger.
func (sdk *CampaignBridge) SetDebug(enabled bool) {
	sdk.mu.Lock()
	defer sdk.mu.Unlock()
	if sdk.custom {
		return
	}
	if !enabled {
		sdk.logger = zap.NewNop().Sugar()
		return
	}
	l, err := zap.NewDevelopment()
	if err != nil {
		return
	}
	sdk.logger = l.Sugar()
}

func (sdk *CampaignBridge) SetBasePath(path string) {
	sdk.mu.Lock()
	defer sdk.mu.Unlock()
	sdk.defaults.BasePath = path
}

func (sdk *CampaignBridge) SetDefaultTimeout(d time.Duration) {
	sdk.mu.Lock()
	defer sdk.mu.Unlock()
	sdk.defaults.Timeout = d
}

func (sdk *CampaignBridge) SetDefaultRetries(n int) {
	sdk.mu.Lock()
	defer sdk.mu.Unlock()
	sdk.defaults.Retries = n
}

func (sdk *CampaignBridge) SetDefaultRetryDelay(d time.Duration) {
	sdk.mu.Lock()
	defer sdk.mu.Unlock()
	sdk.defaults.RetryDelay = d
}

// SetDefaultHeader sets a header sent with every call. An empty value removes it.
func (sdk *CampaignBridge) SetDefaultHeader(name, value string) {
	sdk.mu.Lock()
	defer sdk.mu.Unlock()
	headers := make(map[string]string, len(sdk.defaults.Headers)+1)
	for k, v := range sdk.defaults.Headers {
		headers[k] = v
	}
	if value == "" {
		delete(headers, name)
	} else {
		headers[name] = value
	}
	sdk.defaults.Headers = headers
}

// Defaults returns a copy of the current client-wide defaults.
func (sdk *CampaignBridge) Defaults() Defaults {
	sdk.mu.RLock()
	defer sdk.mu.RUnlock()
	return sdk.defaults.clone()
}

// GetRateLimitInfo returns the last rate limit info reported by the server.
func (sdk *CampaignBridge) GetRateLimitInfo() *NormalizedRateLimitInfo {
	return sdk.rateLimiter.GetRateLimitInfo(sdk.name)
}

// Request sends one logical call and returns the raw response of the successful attempt.
// body is JSON-encoded unless it is nil or already a []byte.
func (sdk *CampaignBridge) Request(ctx context.Context, method Method, path string, body any, cfg *RequestConfig) (*NormalizedResponse, error) {
	return sdk.do(ctx, method, path, body, cfg, nil)
}

func (sdk *CampaignBridge) do(ctx context.Context, method Method, path string, body any, cfg *RequestConfig, decode decodeFunc) (resp *NormalizedResponse, err error) {
	start := time.Now()
	defer func() { sdk.metrics.observeCall(method, start, err) }()

	if !method.Valid() {
		return nil, &RequestError{Kind: KindClient, Message: fmt.Sprintf("unsupported method %q", method)}
	}
	payload, err := encodeBody(body)
	if err != nil {
		return nil, &RequestError{Kind: KindClient, Message: fmt.Sprintf("encode request body: %v", err), Err: err}
	}

	sdk.mu.RLock()
	resolved := mergeConfig(sdk.defaults, path, cfg)
	sdk.mu.RUnlock()

	if _, ok := resolved.headers[requestIDHeader]; !ok {
		resolved.headers[requestIDHeader] = uuid.NewString()
	}
	req := &NormalizedRequest{
		Method:   method,
		Endpoint: resolved.url,
		Headers:  resolved.headers,
		Body:     payload,
	}
	return sdk.executor.ExecuteWithRetry(ctx, req, resolved, decode)
}

func (sdk *CampaignBridge) log() *zap.SugaredLogger {
	sdk.mu.RLock()
	defer sdk.mu.RUnlock()
	return sdk.logger
}

func encodeBody(body any) ([]byte, error) {
	switch b := body.(type) {
	case nil:
		return nil, nil
	case []byte:
		return b, nil
	case json.RawMessage:
		return b, nil
	}
	return json.Marshal(body)
}
