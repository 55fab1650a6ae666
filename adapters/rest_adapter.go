// rest_adapter.go
// ---------------
// This adapter talks to the email-marketing REST API over net/http.
//
// Key Points:
// - Endpoints are resolved against BaseURL; the client's base path is already part of Endpoint.
// - Authorization comes from an oauth2.TokenSource when one is set and the caller did not
//   send its own Authorization header.
// - An optional client-side limiter (golang.org/x/time/rate) spaces requests out before the
//   server has to reject them.
// - x-ratelimit-limit, x-ratelimit-remaining, x-ratelimit-reset (unix seconds) and retry-after
//   are parsed into NormalizedRateLimitInfo after each response.
package adapters

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	campaignbridge "github.com/opengovern/campaign-bridge"
	"github.com/opengovern/campaign-bridge/internal"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

type RESTAdapter struct {
	BaseURL     string
	HTTPClient  *http.Client
	TokenSource oauth2.TokenSource
	Limiter     *rate.Limiter

	now func() time.Time
}

// RESTOption configures a RESTAdapter.
type RESTOption func(*RESTAdapter)

// WithTokenSource authenticates every request with a bearer token from ts.
func WithTokenSource(ts oauth2.TokenSource) RESTOption {
	return func(a *RESTAdapter) { a.TokenSource = ts }
}

// WithRateLimit allows at most rps requests per second with the given burst.
func WithRateLimit(rps float64, burst int) RESTOption {
	return func(a *RESTAdapter) {
		if rps > 0 {
			if burst < 1 {
				burst = 1
			}
			a.Limiter = rate.NewLimiter(rate.Limit(rps), burst)
		}
	}
}

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(c *http.Client) RESTOption {
	return func(a *RESTAdapter) { a.HTTPClient = c }
}

func NewRESTAdapter(baseURL string, opts ...RESTOption) *RESTAdapter {
	a := &RESTAdapter{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout:   30 * time.Second,
					KeepAlive: 30 * time.Second,
				}).DialContext,
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		now: time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *RESTAdapter) ExecuteRequest(ctx context.Context, req *campaignbridge.NormalizedRequest) (*campaignbridge.NormalizedResponse, error) {
	if a.Limiter != nil {
		if err := a.Limiter.Wait(ctx); err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, fmt.Errorf("client rate limit: %w", ctxErr)
			}
			// Wait refuses up front when the next token lands after the deadline.
			return nil, fmt.Errorf("client rate limit: %w: %v", context.DeadlineExceeded, err)
		}
	}

	var body io.Reader
	if len(req.Body) > 0 {
		body = bytes.NewReader(req.Body)
	}
	httpReq, err := http.NewRequestWithContext(ctx, string(req.Method), a.BaseURL+req.Endpoint, body)
	if err != nil {
		return nil, err
	}
	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}
	if httpReq.Header.Get("Authorization") == "" && a.TokenSource != nil {
		tok, err := a.TokenSource.Token()
		if err != nil {
			return nil, fmt.Errorf("acquire token: %w", err)
		}
		tok.SetAuthHeader(httpReq)
	}

	resp, err := a.HTTPClient.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	headers := make(map[string]string, len(resp.Header))
	for k, vals := range resp.Header {
		if len(vals) > 0 {
			headers[strings.ToLower(k)] = vals[0]
		}
	}

	return &campaignbridge.NormalizedResponse{
		StatusCode: resp.StatusCode,
		Headers:    headers,
		Data:       data,
	}, nil
}

func (a *RESTAdapter) ParseRateLimitInfo(resp *campaignbridge.NormalizedResponse) (*campaignbridge.NormalizedRateLimitInfo, error) {
	return ParseRateLimitHeaders(resp.Headers, a.now()), nil
}

func (a *RESTAdapter) IsRateLimitError(resp *campaignbridge.NormalizedResponse) bool {
	return resp.StatusCode == http.StatusTooManyRequests
}

// ParseRateLimitHeaders reads the x-ratelimit-* and retry-after headers. It returns nil when
// none are present.
func ParseRateLimitHeaders(h map[string]string, now time.Time) *campaignbridge.NormalizedRateLimitInfo {
	parseInt := func(key string) *int {
		if val, ok := h[key]; ok {
			if i, err := strconv.Atoi(strings.TrimSpace(val)); err == nil {
				return &i
			}
		}
		return nil
	}

	info := &campaignbridge.NormalizedRateLimitInfo{
		MaxRequests:       parseInt("x-ratelimit-limit"),
		RemainingRequests: parseInt("x-ratelimit-remaining"),
	}
	if val, ok := h["x-ratelimit-reset"]; ok {
		if ts, err := strconv.ParseInt(strings.TrimSpace(val), 10, 64); err == nil {
			ms := internal.UnixToMs(ts)
			info.ResetRequestsAt = &ms
		}
	}

	// retry-after only shows up on throttled responses; it implies nothing is left.
	if val, ok := h["retry-after"]; ok {
		if future, ok := internal.ParseRetryAfter(val, now); ok {
			if info.ResetRequestsAt == nil || future > *info.ResetRequestsAt {
				info.ResetRequestsAt = &future
			}
			zero := 0
			info.RemainingRequests = &zero
		}
	}

	if info.MaxRequests == nil && info.RemainingRequests == nil && info.ResetRequestsAt == nil {
		return nil
	}
	return info
}
