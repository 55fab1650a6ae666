// Package mock provides an in-memory ProviderAdapter that serves the email-marketing API
// (contacts, campaigns, templates, stats) from seeded data. It is used by the CLI's --mock
// mode and by tests, and can be scripted to fail, stall, or throttle.
package mock

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	campaignbridge "github.com/opengovern/campaign-bridge"
	"github.com/opengovern/campaign-bridge/adapters"
	"github.com/opengovern/campaign-bridge/auth"
	"github.com/opengovern/campaign-bridge/services"
)

const (
	MockDefaultMaxRequests = 100
	MockDefaultWindowSecs  = 60
)

// TokenVerifier validates bearer tokens; *auth.Signer satisfies it.
type TokenVerifier interface {
	Verify(raw string) (*auth.Claims, error)
}

type scriptedFailure struct {
	status  int
	body    string
	network bool
}

type Adapter struct {
	// Prefix is stripped from every endpoint, matching the client's base path.
	Prefix string
	// Verifier, when set, requires a valid "Authorization: Bearer" header.
	Verifier TokenVerifier
	// Latency delays every response; the delay is cut short when the context is done.
	Latency time.Duration

	// MaxRequests > 0 enables a fixed-window quota of MaxRequests per WindowSecs.
	MaxRequests int
	WindowSecs  int64

	mu          sync.Mutex
	store       *store
	failures    []scriptedFailure
	requests    int
	windowStart time.Time
	windowCount int
	now         func() time.Time
}

// NewAdapter returns an adapter backed by the default seed data.
func NewAdapter() *Adapter {
	return &Adapter{
		store: newSeededStore(),
		now:   time.Now,
	}
}

// SetRateLimitDefaults enables the request quota, substituting defaults for zero values.
func (m *Adapter) SetRateLimitDefaults(maxRequests int, windowSecs int64) {
	if maxRequests == 0 {
		maxRequests = MockDefaultMaxRequests
	}
	if windowSecs == 0 {
		windowSecs = MockDefaultWindowSecs
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.MaxRequests = maxRequests
	m.WindowSecs = windowSecs
}

// FailNext makes the next n requests answer with status and body.
func (m *Adapter) FailNext(status, n int, body string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := 0; i < n; i++ {
		m.failures = append(m.failures, scriptedFailure{status: status, body: body})
	}
}

// FailNetwork makes the next n requests fail without a response.
func (m *Adapter) FailNetwork(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := 0; i < n; i++ {
		m.failures = append(m.failures, scriptedFailure{network: true})
	}
}

// Requests returns how many requests reached the adapter.
func (m *Adapter) Requests() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.requests
}

func (m *Adapter) ExecuteRequest(ctx context.Context, req *campaignbridge.NormalizedRequest) (*campaignbridge.NormalizedResponse, error) {
	m.mu.Lock()
	m.requests++
	var failure *scriptedFailure
	if len(m.failures) > 0 {
		f := m.failures[0]
		m.failures = m.failures[1:]
		failure = &f
	}
	latency := m.Latency
	m.mu.Unlock()

	if latency > 0 {
		timer := time.NewTimer(latency)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if failure != nil {
		if failure.network {
			return nil, fmt.Errorf("mock: connection reset by peer")
		}
		return &campaignbridge.NormalizedResponse{
			StatusCode: failure.status,
			Headers:    map[string]string{},
			Data:       []byte(failure.body),
		}, nil
	}

	headers := map[string]string{"content-type": "application/json"}
	if throttled := m.consumeQuota(headers); throttled {
		return &campaignbridge.NormalizedResponse{
			StatusCode: http.StatusTooManyRequests,
			Headers:    headers,
			Data:       []byte(`{"message":"rate limited","code":"rate_limited"}`),
		}, nil
	}

	if m.Verifier != nil {
		if msg := m.authorize(req); msg != "" {
			return jsonResponse(http.StatusUnauthorized, headers, apiError{Message: msg, Code: "unauthorized"}), nil
		}
	}

	status, body := m.route(req)
	if status == http.StatusNoContent {
		return &campaignbridge.NormalizedResponse{StatusCode: status, Headers: headers}, nil
	}
	return jsonResponse(status, headers, body), nil
}

func (m *Adapter) ParseRateLimitInfo(resp *campaignbridge.NormalizedResponse) (*campaignbridge.NormalizedRateLimitInfo, error) {
	return adapters.ParseRateLimitHeaders(resp.Headers, m.now()), nil
}

func (m *Adapter) IsRateLimitError(resp *campaignbridge.NormalizedResponse) bool {
	return resp.StatusCode == http.StatusTooManyRequests
}

// consumeQuota counts the request against the window and fills the rate limit headers.
func (m *Adapter) consumeQuota(headers map[string]string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.MaxRequests <= 0 {
		return false
	}
	window := time.Duration(m.WindowSecs) * time.Second
	if window <= 0 {
		window = MockDefaultWindowSecs * time.Second
	}
	now := m.now()
	if m.windowStart.IsZero() || now.Sub(m.windowStart) >= window {
		m.windowStart = now
		m.windowCount = 0
	}
	reset := m.windowStart.Add(window)
	headers["x-ratelimit-limit"] = strconv.Itoa(m.MaxRequests)
	headers["x-ratelimit-reset"] = strconv.FormatInt(reset.Unix(), 10)

	if m.windowCount >= m.MaxRequests {
		headers["x-ratelimit-remaining"] = "0"
		headers["retry-after"] = strconv.FormatInt(int64(reset.Sub(now).Seconds()+0.999), 10)
		return true
	}
	m.windowCount++
	headers["x-ratelimit-remaining"] = strconv.Itoa(m.MaxRequests - m.windowCount)
	return false
}

func (m *Adapter) authorize(req *campaignbridge.NormalizedRequest) string {
	var header string
	for k, v := range req.Headers {
		if strings.EqualFold(k, "Authorization") {
			header = v
		}
	}
	raw, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || raw == "" {
		return "missing bearer token"
	}
	if _, err := m.Verifier.Verify(raw); err != nil {
		return "invalid token"
	}
	return ""
}

type apiError struct {
	Message string            `json:"message"`
	Code    string            `json:"code,omitempty"`
	Fields  map[string]string `json:"fields,omitempty"`
}

func notFound(what string) (int, any) {
	return http.StatusNotFound, apiError{Message: what + " not found", Code: "not_found"}
}

func invalid(fields map[string]string) (int, any) {
	return http.StatusUnprocessableEntity, apiError{Message: "validation failed", Code: "validation_failed", Fields: fields}
}

func badRequest(msg string) (int, any) {
	return http.StatusBadRequest, apiError{Message: msg, Code: "bad_request"}
}

func jsonResponse(status int, headers map[string]string, body any) *campaignbridge.NormalizedResponse {
	data, err := json.Marshal(body)
	if err != nil {
		status = http.StatusInternalServerError
		data = []byte(`{"message":"encode response"}`)
	}
	return &campaignbridge.NormalizedResponse{StatusCode: status, Headers: headers, Data: data}
}

func (m *Adapter) route(req *campaignbridge.NormalizedRequest) (int, any) {
	u, err := url.Parse(req.Endpoint)
	if err != nil {
		return badRequest("malformed endpoint")
	}
	path := strings.TrimPrefix(u.Path, m.Prefix)
	parts := strings.Split(strings.Trim(path, "/"), "/")
	q := u.Query()

	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now().UTC()
	s := m.store

	switch {
	case len(parts) == 1 && parts[0] == "contacts":
		switch req.Method {
		case campaignbridge.MethodGet:
			return http.StatusOK, s.listContacts(listOptions(q))
		case campaignbridge.MethodPost:
			var in services.ContactInput
			if err := json.Unmarshal(req.Body, &in); err != nil {
				return badRequest("malformed body")
			}
			return s.createContact(in, now)
		}
	case len(parts) == 2 && parts[0] == "contacts":
		switch req.Method {
		case campaignbridge.MethodGet:
			if c, ok := s.contacts[parts[1]]; ok {
				return http.StatusOK, c
			}
			return notFound("contact")
		case campaignbridge.MethodPatch:
			var in services.ContactInput
			if err := json.Unmarshal(req.Body, &in); err != nil {
				return badRequest("malformed body")
			}
			return s.updateContact(parts[1], in)
		case campaignbridge.MethodDelete:
			if _, ok := s.contacts[parts[1]]; !ok {
				return notFound("contact")
			}
			delete(s.contacts, parts[1])
			return http.StatusNoContent, nil
		}
	case len(parts) == 1 && parts[0] == "campaigns":
		switch req.Method {
		case campaignbridge.MethodGet:
			return http.StatusOK, s.listCampaigns(listOptions(q))
		case campaignbridge.MethodPost:
			var in services.CampaignInput
			if err := json.Unmarshal(req.Body, &in); err != nil {
				return badRequest("malformed body")
			}
			return s.createCampaign(in, now)
		}
	case len(parts) == 2 && parts[0] == "campaigns":
		switch req.Method {
		case campaignbridge.MethodGet:
			if c, ok := s.campaigns[parts[1]]; ok {
				return http.StatusOK, c
			}
			return notFound("campaign")
		case campaignbridge.MethodPut:
			var in services.CampaignInput
			if err := json.Unmarshal(req.Body, &in); err != nil {
				return badRequest("malformed body")
			}
			return s.replaceCampaign(parts[1], in)
		case campaignbridge.MethodDelete:
			if _, ok := s.campaigns[parts[1]]; !ok {
				return notFound("campaign")
			}
			delete(s.campaigns, parts[1])
			delete(s.stats, parts[1])
			return http.StatusNoContent, nil
		}
	case len(parts) == 3 && parts[0] == "campaigns" && parts[2] == "schedule" && req.Method == campaignbridge.MethodPost:
		var in struct {
			ScheduledAt time.Time `json:"scheduledAt"`
		}
		if err := json.Unmarshal(req.Body, &in); err != nil {
			return badRequest("malformed body")
		}
		return s.scheduleCampaign(parts[1], in.ScheduledAt, now)
	case len(parts) == 1 && parts[0] == "templates":
		switch req.Method {
		case campaignbridge.MethodGet:
			return http.StatusOK, s.listTemplates(listOptions(q))
		case campaignbridge.MethodPost:
			var in services.TemplateInput
			if err := json.Unmarshal(req.Body, &in); err != nil {
				return badRequest("malformed body")
			}
			return s.createTemplate(in, now)
		}
	case len(parts) == 2 && parts[0] == "templates":
		switch req.Method {
		case campaignbridge.MethodGet:
			if t, ok := s.templates[parts[1]]; ok {
				return http.StatusOK, t
			}
			return notFound("template")
		case campaignbridge.MethodDelete:
			if _, ok := s.templates[parts[1]]; !ok {
				return notFound("template")
			}
			delete(s.templates, parts[1])
			return http.StatusNoContent, nil
		}
	case len(parts) == 2 && parts[0] == "stats" && parts[1] == "overview" && req.Method == campaignbridge.MethodGet:
		return http.StatusOK, s.overview()
	case len(parts) == 3 && parts[0] == "stats" && parts[1] == "campaigns" && req.Method == campaignbridge.MethodGet:
		if _, ok := s.campaigns[parts[2]]; !ok {
			return notFound("campaign")
		}
		return http.StatusOK, s.campaignStats(parts[2])
	}
	return notFound("route " + string(req.Method) + " " + path)
}

func listOptions(q url.Values) services.ListOptions {
	page, _ := strconv.Atoi(q.Get("page"))
	size, _ := strconv.Atoi(q.Get("pageSize"))
	return services.ListOptions{
		Page:     page,
		PageSize: size,
		Search:   q.Get("search"),
		Status:   q.Get("status"),
	}
}
