// config.go
// ----------
// This file defines the client-wide Defaults and the per-call RequestConfig overrides.
// mergeConfig combines the two into an immutable resolvedConfig for a single logical call;
// neither input is modified and per-call values always win.
package campaignbridge

import "time"

const (
	DefaultTimeout    = 30 * time.Second
	DefaultRetries    = 3
	DefaultRetryDelay = time.Second
)

// Defaults holds the client-wide settings applied to every call.
type Defaults struct {
	BasePath      string
	Timeout       time.Duration
	Retries       int
	RetryDelay    time.Duration
	MaxRetryDelay time.Duration // 0 disables the cap
	Headers       map[string]string

	// MaxRequestsOverride, when set, caps the quota the server reports in rate limit headers.
	MaxRequestsOverride *int
}

// NewDefaults returns the settings a fresh client starts with.
func NewDefaults() Defaults {
	return Defaults{
		Timeout:    DefaultTimeout,
		Retries:    DefaultRetries,
		RetryDelay: DefaultRetryDelay,
		Headers: map[string]string{
			"Content-Type": "application/json",
			"Accept":       "application/json",
		},
	}
}

func (d Defaults) clone() Defaults {
	c := d
	c.Headers = make(map[string]string, len(d.Headers))
	for k, v := range d.Headers {
		c.Headers[k] = v
	}
	if d.MaxRequestsOverride != nil {
		n := *d.MaxRequestsOverride
		c.MaxRequestsOverride = &n
	}
	return c
}

// RequestConfig carries per-call overrides. Zero values fall back to the client defaults.
// Cancellation is supplied through the context passed to the call.
type RequestConfig struct {
	Headers    map[string]string
	Timeout    time.Duration
	Retries    *int // nil keeps the default; 0 disables retries
	RetryDelay time.Duration
}

// WithRetries is a helper for setting RequestConfig.Retries inline.
func WithRetries(n int) *int {
	return &n
}

type resolvedConfig struct {
	url           string
	timeout       time.Duration
	retries       int
	retryDelay    time.Duration
	maxRetryDelay time.Duration
	headers       map[string]string

	maxRequestsOverride *int
}

func mergeConfig(d Defaults, path string, override *RequestConfig) resolvedConfig {
	rc := resolvedConfig{
		url:           d.BasePath + path,
		timeout:       d.Timeout,
		retries:       d.Retries,
		retryDelay:    d.RetryDelay,
		maxRetryDelay: d.MaxRetryDelay,
		headers:       make(map[string]string, len(d.Headers)),
	}
	if d.MaxRequestsOverride != nil {
		n := *d.MaxRequestsOverride
		rc.maxRequestsOverride = &n
	}
	for k, v := range d.Headers {
		rc.headers[k] = v
	}
	if override != nil {
		if override.Timeout > 0 {
			rc.timeout = override.Timeout
		}
		if override.Retries != nil {
			rc.retries = *override.Retries
		}
		if override.RetryDelay > 0 {
			rc.retryDelay = override.RetryDelay
		}
		for k, v := range override.Headers {
			rc.headers[k] = v
		}
	}
	if rc.timeout <= 0 {
		rc.timeout = DefaultTimeout
	}
	if rc.retries < 0 {
		rc.retries = 0
	}
	return rc
}
