// Package services is a thin typed layer over the campaign-bridge client: one service per
// API resource, each method a single call through the resilient client.
package services

import (
	"context"
	"net/url"
	"strconv"
	"time"

	campaignbridge "github.com/opengovern/campaign-bridge"
)

// Services bundles every resource service around one client.
type Services struct {
	Contacts  *ContactService
	Campaigns *CampaignService
	Templates *TemplateService
	Stats     *StatsService
}

func New(sdk *campaignbridge.CampaignBridge) *Services {
	return &Services{
		Contacts:  &ContactService{sdk: sdk},
		Campaigns: &CampaignService{sdk: sdk},
		Templates: &TemplateService{sdk: sdk},
		Stats:     &StatsService{sdk: sdk},
	}
}

func (o ListOptions) query() string {
	q := url.Values{}
	if o.Page > 0 {
		q.Set("page", strconv.Itoa(o.Page))
	}
	if o.PageSize > 0 {
		q.Set("pageSize", strconv.Itoa(o.PageSize))
	}
	if o.Search != "" {
		q.Set("search", o.Search)
	}
	if o.Status != "" {
		q.Set("status", o.Status)
	}
	if len(q) == 0 {
		return ""
	}
	return "?" + q.Encode()
}

type ContactService struct {
	sdk *campaignbridge.CampaignBridge
}

func (s *ContactService) List(ctx context.Context, opts ListOptions) (Page[Contact], error) {
	return campaignbridge.Get[Page[Contact]](ctx, s.sdk, "/contacts"+opts.query())
}

func (s *ContactService) Get(ctx context.Context, id string) (Contact, error) {
	return campaignbridge.Get[Contact](ctx, s.sdk, "/contacts/"+url.PathEscape(id))
}

func (s *ContactService) Create(ctx context.Context, in ContactInput) (Contact, error) {
	return campaignbridge.Post[Contact](ctx, s.sdk, "/contacts", in)
}

func (s *ContactService) Update(ctx context.Context, id string, in ContactInput) (Contact, error) {
	return campaignbridge.Patch[Contact](ctx, s.sdk, "/contacts/"+url.PathEscape(id), in)
}

func (s *ContactService) Delete(ctx context.Context, id string) error {
	_, err := campaignbridge.Delete[struct{}](ctx, s.sdk, "/contacts/"+url.PathEscape(id))
	return err
}

type CampaignService struct {
	sdk *campaignbridge.CampaignBridge
}

func (s *CampaignService) List(ctx context.Context, opts ListOptions) (Page[Campaign], error) {
	return campaignbridge.Get[Page[Campaign]](ctx, s.sdk, "/campaigns"+opts.query())
}

func (s *CampaignService) Get(ctx context.Context, id string) (Campaign, error) {
	return campaignbridge.Get[Campaign](ctx, s.sdk, "/campaigns/"+url.PathEscape(id))
}

func (s *CampaignService) Create(ctx context.Context, in CampaignInput) (Campaign, error) {
	return campaignbridge.Post[Campaign](ctx, s.sdk, "/campaigns", in)
}

func (s *CampaignService) Replace(ctx context.Context, id string, in CampaignInput) (Campaign, error) {
	return campaignbridge.Put[Campaign](ctx, s.sdk, "/campaigns/"+url.PathEscape(id), in)
}

// Schedule moves a draft campaign to scheduled for delivery at at.
func (s *CampaignService) Schedule(ctx context.Context, id string, at time.Time) (Campaign, error) {
	body := struct {
		ScheduledAt time.Time `json:"scheduledAt"`
	}{ScheduledAt: at.UTC()}
	return campaignbridge.Post[Campaign](ctx, s.sdk, "/campaigns/"+url.PathEscape(id)+"/schedule", body)
}

func (s *CampaignService) Delete(ctx context.Context, id string) error {
	_, err := campaignbridge.Delete[struct{}](ctx, s.sdk, "/campaigns/"+url.PathEscape(id))
	return err
}

type TemplateService struct {
	sdk *campaignbridge.CampaignBridge
}

func (s *TemplateService) List(ctx context.Context, opts ListOptions) (Page[Template], error) {
	return campaignbridge.Get[Page[Template]](ctx, s.sdk, "/templates"+opts.query())
}

func (s *TemplateService) Get(ctx context.Context, id string) (Template, error) {
	return campaignbridge.Get[Template](ctx, s.sdk, "/templates/"+url.PathEscape(id))
}

func (s *TemplateService) Create(ctx context.Context, in TemplateInput) (Template, error) {
	return campaignbridge.Post[Template](ctx, s.sdk, "/templates", in)
}

func (s *TemplateService) Delete(ctx context.Context, id string) error {
	_, err := campaignbridge.Delete[struct{}](ctx, s.sdk, "/templates/"+url.PathEscape(id))
	return err
}

type StatsService struct {
	sdk *campaignbridge.CampaignBridge
}

func (s *StatsService) Overview(ctx context.Context) (Overview, error) {
	return campaignbridge.Get[Overview](ctx, s.sdk, "/stats/overview")
}

func (s *StatsService) Campaign(ctx context.Context, id string) (CampaignStats, error) {
	return campaignbridge.Get[CampaignStats](ctx, s.sdk, "/stats/campaigns/"+url.PathEscape(id))
}
