package services_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	campaignbridge "github.com/opengovern/campaign-bridge"
	"github.com/opengovern/campaign-bridge/auth"
	"github.com/opengovern/campaign-bridge/mock"
	"github.com/opengovern/campaign-bridge/services"
	"github.com/stretchr/testify/require"
)

func newServices(t *testing.T) (*services.Services, *mock.Adapter) {
	t.Helper()
	adapter := mock.NewAdapter()
	sdk := campaignbridge.New(adapter)
	sdk.SetDefaultRetryDelay(time.Millisecond)
	return services.New(sdk), adapter
}

func strPtr(s string) *string { return &s }

func TestContactLifecycle(t *testing.T) {
	svc, _ := newServices(t)
	ctx := context.Background()

	created, err := svc.Contacts.Create(ctx, services.ContactInput{
		Email:     strPtr("new.person@example.com"),
		FirstName: strPtr("New"),
		Tags:      []string{"trial"},
	})
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)
	require.Equal(t, services.ContactSubscribed, created.Status)

	updated, err := svc.Contacts.Update(ctx, created.ID, services.ContactInput{LastName: strPtr("Person")})
	require.NoError(t, err)
	require.Equal(t, "New", updated.FirstName)
	require.Equal(t, "Person", updated.LastName)

	got, err := svc.Contacts.Get(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, updated.LastName, got.LastName)

	require.NoError(t, svc.Contacts.Delete(ctx, created.ID))
	_, err = svc.Contacts.Get(ctx, created.ID)
	require.Equal(t, http.StatusNotFound, campaignbridge.StatusOf(err))
	require.Equal(t, http.StatusNotFound, campaignbridge.StatusOf(svc.Contacts.Delete(ctx, created.ID)))
}

func TestContactValidationIsTerminal(t *testing.T) {
	svc, adapter := newServices(t)

	_, err := svc.Contacts.Create(context.Background(), services.ContactInput{Email: strPtr("not-an-email")})
	var reqErr *campaignbridge.RequestError
	require.ErrorAs(t, err, &reqErr)
	require.Equal(t, http.StatusUnprocessableEntity, reqErr.Status)
	require.Equal(t, "validation_failed", reqErr.Code)
	require.Contains(t, reqErr.Details, "fields")
	require.Equal(t, 1, adapter.Requests())
}

func TestListContactsWithOptions(t *testing.T) {
	svc, _ := newServices(t)

	page, err := svc.Contacts.List(context.Background(), services.ListOptions{Page: 1, PageSize: 5, Search: "hopper"})
	require.NoError(t, err)
	require.NotEmpty(t, page.Items)
	require.LessOrEqual(t, len(page.Items), 5)
	for _, c := range page.Items {
		require.Contains(t, c.Email, "hopper")
	}

	all, err := svc.Contacts.List(context.Background(), services.ListOptions{})
	require.NoError(t, err)
	require.Equal(t, 24, all.Total)
	require.Equal(t, 20, all.PageSize)
}

func TestCampaignScheduling(t *testing.T) {
	svc, _ := newServices(t)
	ctx := context.Background()

	draft, err := svc.Campaigns.Create(ctx, services.CampaignInput{Name: "Autumn", Subject: "Leaves", TemplateID: "tp_001"})
	require.NoError(t, err)
	require.Equal(t, services.CampaignDraft, draft.Status)

	at := time.Now().Add(48 * time.Hour).Truncate(time.Second)
	scheduled, err := svc.Campaigns.Schedule(ctx, draft.ID, at)
	require.NoError(t, err)
	require.Equal(t, services.CampaignScheduled, scheduled.Status)
	require.True(t, at.Equal(*scheduled.ScheduledAt))

	_, err = svc.Campaigns.Schedule(ctx, draft.ID, at)
	require.Equal(t, http.StatusBadRequest, campaignbridge.StatusOf(err))

	_, err = svc.Campaigns.Replace(ctx, "cp_001", services.CampaignInput{Name: "x", Subject: "y"})
	require.Equal(t, http.StatusBadRequest, campaignbridge.StatusOf(err))

	replaced, err := svc.Campaigns.Replace(ctx, draft.ID, services.CampaignInput{Name: "Autumn sale", Subject: "Leaves"})
	require.NoError(t, err)
	require.Equal(t, "Autumn sale", replaced.Name)

	sent, err := svc.Campaigns.List(ctx, services.ListOptions{Status: string(services.CampaignSent)})
	require.NoError(t, err)
	require.Equal(t, 3, sent.Total)

	require.NoError(t, svc.Campaigns.Delete(ctx, draft.ID))
}

func TestTemplatesAndStats(t *testing.T) {
	svc, _ := newServices(t)
	ctx := context.Background()

	tpl, err := svc.Templates.Create(ctx, services.TemplateInput{Name: "Receipt", HTML: "<p>thanks</p>"})
	require.NoError(t, err)
	got, err := svc.Templates.Get(ctx, tpl.ID)
	require.NoError(t, err)
	require.Equal(t, "Receipt", got.Name)

	list, err := svc.Templates.List(ctx, services.ListOptions{})
	require.NoError(t, err)
	require.Equal(t, 4, list.Total)
	require.NoError(t, svc.Templates.Delete(ctx, tpl.ID))

	overview, err := svc.Stats.Overview(ctx)
	require.NoError(t, err)
	require.Equal(t, 24, overview.TotalContacts)
	require.Equal(t, 3, overview.SentCampaigns)

	stats, err := svc.Stats.Campaign(ctx, "cp_001")
	require.NoError(t, err)
	require.Equal(t, 1200, stats.Sent)
	require.InDelta(t, float64(stats.Opened)/float64(stats.Delivered), stats.OpenRate, 1e-9)

	_, err = svc.Stats.Campaign(ctx, "cp_999")
	require.Equal(t, http.StatusNotFound, campaignbridge.StatusOf(err))
}

func TestTransientFailuresAreRetriedThroughServices(t *testing.T) {
	svc, adapter := newServices(t)
	adapter.FailNetwork(1)
	adapter.FailNext(http.StatusServiceUnavailable, 1, "")

	overview, err := svc.Stats.Overview(context.Background())
	require.NoError(t, err)
	require.Equal(t, 5, overview.TotalCampaigns)
	require.Equal(t, 3, adapter.Requests())
}

func TestBearerTokenRequired(t *testing.T) {
	signer, err := auth.NewSigner([]byte("s3cret"), "campaignctl", "mail-api", time.Minute)
	require.NoError(t, err)

	adapter := mock.NewAdapter()
	adapter.Verifier = signer
	sdk := campaignbridge.New(adapter)
	svc := services.New(sdk)

	_, err = svc.Templates.List(context.Background(), services.ListOptions{})
	var reqErr *campaignbridge.RequestError
	require.ErrorAs(t, err, &reqErr)
	require.Equal(t, http.StatusUnauthorized, reqErr.Status)
	require.Equal(t, campaignbridge.KindClient, reqErr.Kind)
	require.Equal(t, 1, adapter.Requests())

	raw, _, err := signer.Sign("ops@example.com", "acc_1")
	require.NoError(t, err)
	sdk.SetDefaultHeader("Authorization", "Bearer "+raw)
	_, err = svc.Templates.List(context.Background(), services.ListOptions{})
	require.NoError(t, err)
}

func TestThrottledCallWaitsForReset(t *testing.T) {
	adapter := mock.NewAdapter()
	adapter.SetRateLimitDefaults(1, 1)
	sdk := campaignbridge.New(adapter)
	sdk.SetDefaultRetryDelay(time.Millisecond)
	svc := services.New(sdk)

	_, err := svc.Stats.Overview(context.Background())
	require.NoError(t, err)
	info := sdk.GetRateLimitInfo()
	require.NotNil(t, info)
	require.Equal(t, 0, *info.RemainingRequests)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_, err = svc.Stats.Overview(ctx)
	require.NoError(t, err)
}
