package adapters

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	campaignbridge "github.com/opengovern/campaign-bridge"
	"github.com/opengovern/campaign-bridge/auth"
	"github.com/stretchr/testify/require"
)

type contact struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

func TestRESTAdapterSendsRequest(t *testing.T) {
	signer, err := auth.NewSigner([]byte("secret"), "campaignctl", "mail-api", time.Minute)
	require.NoError(t, err)

	var gotAuth, gotBody, gotPath, gotTenant string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.Path
		gotTenant = r.Header.Get("X-Tenant")
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		w.Header().Set("X-RateLimit-Remaining", "41")
		w.Header().Set("X-RateLimit-Limit", "50")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":"ct_1","email":"a@b.co"}`))
	}))
	defer srv.Close()

	adapter := NewRESTAdapter(srv.URL+"/", WithTokenSource(signer.TokenSource("ops@example.com", "acc_1")))
	resp, err := adapter.ExecuteRequest(context.Background(), &campaignbridge.NormalizedRequest{
		Method:   campaignbridge.MethodPost,
		Endpoint: "/v1/contacts",
		Headers:  map[string]string{"X-Tenant": "acme"},
		Body:     []byte(`{"email":"a@b.co"}`),
	})
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	require.Equal(t, "41", resp.Headers["x-ratelimit-remaining"])
	require.Equal(t, "/v1/contacts", gotPath)
	require.Equal(t, "acme", gotTenant)
	require.JSONEq(t, `{"email":"a@b.co"}`, gotBody)

	require.True(t, strings.HasPrefix(gotAuth, "Bearer "))
	claims, err := signer.Verify(strings.TrimPrefix(gotAuth, "Bearer "))
	require.NoError(t, err)
	require.Equal(t, "acc_1", claims.AccountID)

	info, err := adapter.ParseRateLimitInfo(resp)
	require.NoError(t, err)
	require.Equal(t, 50, *info.MaxRequests)
	require.Equal(t, 41, *info.RemainingRequests)
	require.Nil(t, info.ResetRequestsAt)
}

func TestRESTAdapterKeepsCallerAuthorization(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	signer, err := auth.NewSigner([]byte("secret"), "", "", 0)
	require.NoError(t, err)
	adapter := NewRESTAdapter(srv.URL, WithTokenSource(signer.TokenSource("ops", "")))
	_, err = adapter.ExecuteRequest(context.Background(), &campaignbridge.NormalizedRequest{
		Method:   campaignbridge.MethodDelete,
		Endpoint: "/contacts/1",
		Headers:  map[string]string{"Authorization": "Bearer static"},
	})
	require.NoError(t, err)
	require.Equal(t, "Bearer static", gotAuth)
}

func TestRESTAdapterHonorsContext(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := NewRESTAdapter(srv.URL).ExecuteRequest(ctx, &campaignbridge.NormalizedRequest{
		Method:   campaignbridge.MethodGet,
		Endpoint: "/slow",
	})
	require.Error(t, err)
	require.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestRESTAdapterClientRateLimit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	adapter := NewRESTAdapter(srv.URL, WithRateLimit(20, 1))
	req := &campaignbridge.NormalizedRequest{Method: campaignbridge.MethodGet, Endpoint: "/"}
	start := time.Now()
	for i := 0; i < 3; i++ {
		_, err := adapter.ExecuteRequest(context.Background(), req)
		require.NoError(t, err)
	}
	require.GreaterOrEqual(t, time.Since(start), 90*time.Millisecond)
}

func TestRESTAdapterClientRateLimitPastDeadlineIsCancelled(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	sdk := campaignbridge.New(NewRESTAdapter(srv.URL, WithRateLimit(0.5, 1)))
	sdk.SetDefaultRetryDelay(time.Millisecond)
	cfg := &campaignbridge.RequestConfig{Timeout: 100 * time.Millisecond, Retries: campaignbridge.WithRetries(3)}

	_, err := sdk.Request(context.Background(), campaignbridge.MethodGet, "/ping", nil, cfg)
	require.NoError(t, err)

	start := time.Now()
	_, err = sdk.Request(context.Background(), campaignbridge.MethodGet, "/ping", nil, cfg)
	require.Less(t, time.Since(start), time.Second)
	var reqErr *campaignbridge.RequestError
	require.ErrorAs(t, err, &reqErr)
	require.Equal(t, campaignbridge.KindCancelled, reqErr.Kind)
	require.Equal(t, campaignbridge.StatusRequestTimeout, reqErr.Status)
	require.Equal(t, 1, reqErr.Attempts)
	require.ErrorIs(t, err, context.DeadlineExceeded)
	require.Equal(t, int32(1), hits.Load())
}

// The adapter plugged into the client: a flaky server is retried and the body decoded.
func TestRESTAdapterWithClient(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/v1/contacts/nope" {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"message":"not found"}`))
			return
		}
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`{"id":"ct_7","email":"x@y.io"}`))
	}))
	defer srv.Close()

	sdk := campaignbridge.New(NewRESTAdapter(srv.URL))
	sdk.SetBasePath("/v1")
	sdk.SetDefaultRetryDelay(time.Millisecond)

	got, err := campaignbridge.Get[contact](context.Background(), sdk, "/contacts/ct_7")
	require.NoError(t, err)
	require.Equal(t, contact{ID: "ct_7", Email: "x@y.io"}, got)
	require.Equal(t, int32(3), calls.Load())

	_, err = campaignbridge.Get[contact](context.Background(), sdk, "/contacts/nope")
	require.Equal(t, 404, campaignbridge.StatusOf(err))
	require.Equal(t, int32(3), calls.Load())
	require.EqualError(t, err, "not found (status 404)")
}

func TestParseRateLimitHeaders(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)

	require.Nil(t, ParseRateLimitHeaders(map[string]string{"content-type": "application/json"}, now))

	info := ParseRateLimitHeaders(map[string]string{
		"x-ratelimit-limit":     "100",
		"x-ratelimit-remaining": "7",
		"x-ratelimit-reset":     "1700000060",
	}, now)
	require.Equal(t, 100, *info.MaxRequests)
	require.Equal(t, 7, *info.RemainingRequests)
	require.Equal(t, int64(1_700_000_060_000), *info.ResetRequestsAt)

	info = ParseRateLimitHeaders(map[string]string{"retry-after": "2"}, now)
	require.Equal(t, 0, *info.RemainingRequests)
	require.Equal(t, now.UnixMilli()+2000, *info.ResetRequestsAt)

	info = ParseRateLimitHeaders(map[string]string{"x-ratelimit-remaining": "bogus"}, now)
	require.Nil(t, info)
}
