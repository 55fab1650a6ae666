package mock

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	campaignbridge "github.com/opengovern/campaign-bridge"
	"github.com/opengovern/campaign-bridge/services"
	"github.com/stretchr/testify/require"
)

func get(t *testing.T, m *Adapter, endpoint string) *campaignbridge.NormalizedResponse {
	t.Helper()
	resp, err := m.ExecuteRequest(context.Background(), &campaignbridge.NormalizedRequest{
		Method:   campaignbridge.MethodGet,
		Endpoint: endpoint,
	})
	require.NoError(t, err)
	return resp
}

func TestListContactsPaginates(t *testing.T) {
	m := NewAdapter()
	resp := get(t, m, "/contacts?page=2&pageSize=10")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var page services.Page[services.Contact]
	require.NoError(t, json.Unmarshal(resp.Data, &page))
	require.Equal(t, 24, page.Total)
	require.Equal(t, 2, page.Page)
	require.Len(t, page.Items, 10)
	require.Equal(t, "ct_011", page.Items[0].ID)

	resp = get(t, m, "/contacts?status=bounced")
	require.NoError(t, json.Unmarshal(resp.Data, &page))
	for _, c := range page.Items {
		require.Equal(t, services.ContactBounced, c.Status)
	}
	require.NotZero(t, page.Total)
}

func TestPrefixIsStripped(t *testing.T) {
	m := NewAdapter()
	m.Prefix = "/api/v1"
	require.Equal(t, http.StatusOK, get(t, m, "/api/v1/templates/tp_001").StatusCode)
	require.Equal(t, http.StatusNotFound, get(t, m, "/api/v1/templates/tp_999").StatusCode)
}

func TestUnknownRouteIsNotFound(t *testing.T) {
	resp := get(t, NewAdapter(), "/lists")
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	require.Contains(t, string(resp.Data), "route GET /lists")
}

func TestScriptedFailures(t *testing.T) {
	m := NewAdapter()
	m.FailNetwork(1)
	m.FailNext(http.StatusServiceUnavailable, 1, `{"message":"maintenance"}`)

	_, err := m.ExecuteRequest(context.Background(), &campaignbridge.NormalizedRequest{Method: campaignbridge.MethodGet, Endpoint: "/contacts"})
	require.Error(t, err)

	resp := get(t, m, "/contacts")
	require.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	require.JSONEq(t, `{"message":"maintenance"}`, string(resp.Data))

	require.Equal(t, http.StatusOK, get(t, m, "/contacts").StatusCode)
	require.Equal(t, 3, m.Requests())
}

func TestLatencyIsCutShortByContext(t *testing.T) {
	m := NewAdapter()
	m.Latency = time.Hour

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	start := time.Now()
	_, err := m.ExecuteRequest(ctx, &campaignbridge.NormalizedRequest{Method: campaignbridge.MethodGet, Endpoint: "/contacts"})
	require.ErrorIs(t, err, context.DeadlineExceeded)
	require.Less(t, time.Since(start), time.Second)
}

func TestQuotaThrottles(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	m := NewAdapter()
	m.now = func() time.Time { return now }
	m.SetRateLimitDefaults(2, 10)

	first := get(t, m, "/templates")
	require.Equal(t, "1", first.Headers["x-ratelimit-remaining"])
	require.Equal(t, "2", first.Headers["x-ratelimit-limit"])
	get(t, m, "/templates")

	throttled := get(t, m, "/templates")
	require.Equal(t, http.StatusTooManyRequests, throttled.StatusCode)
	require.True(t, m.IsRateLimitError(throttled))
	require.Equal(t, "10", throttled.Headers["retry-after"])

	info, err := m.ParseRateLimitInfo(throttled)
	require.NoError(t, err)
	require.Equal(t, 0, *info.RemainingRequests)
	require.Equal(t, now.Add(10*time.Second).UnixMilli(), *info.ResetRequestsAt)

	now = now.Add(11 * time.Second)
	require.Equal(t, http.StatusOK, get(t, m, "/templates").StatusCode)
}

func TestSetRateLimitDefaultsFillsZeroValues(t *testing.T) {
	m := NewAdapter()
	m.SetRateLimitDefaults(0, 0)
	require.Equal(t, MockDefaultMaxRequests, m.MaxRequests)
	require.Equal(t, int64(MockDefaultWindowSecs), m.WindowSecs)
}

func TestScheduleCampaignRules(t *testing.T) {
	s := newSeededStore()
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	status, _ := s.scheduleCampaign("cp_001", now.Add(time.Hour), now)
	require.Equal(t, http.StatusBadRequest, status)

	status, _ = s.scheduleCampaign("cp_005", now.Add(-time.Hour), now)
	require.Equal(t, http.StatusUnprocessableEntity, status)

	status, body := s.scheduleCampaign("cp_005", now.Add(time.Hour), now)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, services.CampaignScheduled, body.(services.Campaign).Status)

	status, _ = s.scheduleCampaign("cp_404", now.Add(time.Hour), now)
	require.Equal(t, http.StatusNotFound, status)
}

func TestOverviewAggregatesSeed(t *testing.T) {
	o := newSeededStore().overview()
	require.Equal(t, 24, o.TotalContacts)
	require.Equal(t, 19, o.SubscribedContacts)
	require.Equal(t, 5, o.TotalCampaigns)
	require.Equal(t, 3, o.SentCampaigns)
	require.Greater(t, o.AverageOpenRate, o.AverageClickRate)
}
