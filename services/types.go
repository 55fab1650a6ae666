package services

import "time"

type ContactStatus string

const (
	ContactSubscribed   ContactStatus = "subscribed"
	ContactUnsubscribed ContactStatus = "unsubscribed"
	ContactBounced      ContactStatus = "bounced"
)

type Contact struct {
	ID        string        `json:"id"`
	Email     string        `json:"email"`
	FirstName string        `json:"firstName,omitempty"`
	LastName  string        `json:"lastName,omitempty"`
	Status    ContactStatus `json:"status"`
	Tags      []string      `json:"tags,omitempty"`
	CreatedAt time.Time     `json:"createdAt"`
}

// ContactInput is the body for creating or patching a contact. Nil fields are left untouched
// on patch.
type ContactInput struct {
	Email     *string        `json:"email,omitempty"`
	FirstName *string        `json:"firstName,omitempty"`
	LastName  *string        `json:"lastName,omitempty"`
	Status    *ContactStatus `json:"status,omitempty"`
	Tags      []string       `json:"tags,omitempty"`
}

type CampaignStatus string

const (
	CampaignDraft     CampaignStatus = "draft"
	CampaignScheduled CampaignStatus = "scheduled"
	CampaignSent      CampaignStatus = "sent"
)

type Campaign struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Subject     string         `json:"subject"`
	TemplateID  string         `json:"templateId,omitempty"`
	Status      CampaignStatus `json:"status"`
	ScheduledAt *time.Time     `json:"scheduledAt,omitempty"`
	SentAt      *time.Time     `json:"sentAt,omitempty"`
	CreatedAt   time.Time      `json:"createdAt"`
}

type CampaignInput struct {
	Name       string `json:"name"`
	Subject    string `json:"subject"`
	TemplateID string `json:"templateId,omitempty"`
}

type Template struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	HTML      string    `json:"html"`
	CreatedAt time.Time `json:"createdAt"`
}

type TemplateInput struct {
	Name string `json:"name"`
	HTML string `json:"html"`
}

type CampaignStats struct {
	CampaignID   string  `json:"campaignId"`
	Sent         int     `json:"sent"`
	Delivered    int     `json:"delivered"`
	Opened       int     `json:"opened"`
	Clicked      int     `json:"clicked"`
	Bounced      int     `json:"bounced"`
	Unsubscribed int     `json:"unsubscribed"`
	OpenRate     float64 `json:"openRate"`
	ClickRate    float64 `json:"clickRate"`
}

type Overview struct {
	TotalContacts      int     `json:"totalContacts"`
	SubscribedContacts int     `json:"subscribedContacts"`
	TotalCampaigns     int     `json:"totalCampaigns"`
	SentCampaigns      int     `json:"sentCampaigns"`
	AverageOpenRate    float64 `json:"averageOpenRate"`
	AverageClickRate   float64 `json:"averageClickRate"`
}

// Page is one page of a list endpoint.
type Page[T any] struct {
	Items    []T `json:"items"`
	Page     int `json:"page"`
	PageSize int `json:"pageSize"`
	Total    int `json:"total"`
}

type ListOptions struct {
	Page     int
	PageSize int
	Search   string
	Status   string
}
