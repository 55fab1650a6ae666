package mock

import (
	"fmt"
	"net/http"
	"net/mail"
	"sort"
	"strings"
	"time"

	"github.com/opengovern/campaign-bridge/services"
)

const defaultPageSize = 20

// store is guarded by Adapter.mu.
type store struct {
	contacts  map[string]services.Contact
	campaigns map[string]services.Campaign
	templates map[string]services.Template
	stats     map[string]services.CampaignStats
	nextID    int
}

var (
	seedEpoch  = time.Date(2024, 1, 8, 9, 0, 0, 0, time.UTC)
	firstNames = []string{"Ada", "Grace", "Linus", "Ken", "Barbara", "Dennis", "Margaret", "Alan"}
	lastNames  = []string{"Lovelace", "Hopper", "Torvalds", "Thompson", "Liskov", "Ritchie", "Hamilton", "Turing"}
)

func newSeededStore() *store {
	s := &store{
		contacts:  make(map[string]services.Contact),
		campaigns: make(map[string]services.Campaign),
		templates: make(map[string]services.Template),
		stats:     make(map[string]services.CampaignStats),
	}

	for i := 0; i < 24; i++ {
		first := firstNames[i%len(firstNames)]
		last := lastNames[(i/len(firstNames)+i)%len(lastNames)]
		status := services.ContactSubscribed
		switch {
		case i%11 == 10:
			status = services.ContactBounced
		case i%7 == 6:
			status = services.ContactUnsubscribed
		}
		id := fmt.Sprintf("ct_%03d", i+1)
		s.contacts[id] = services.Contact{
			ID:        id,
			Email:     fmt.Sprintf("%s.%s%d@example.com", strings.ToLower(first), strings.ToLower(last), i+1),
			FirstName: first,
			LastName:  last,
			Status:    status,
			Tags:      []string{[]string{"newsletter", "customer", "trial"}[i%3]},
			CreatedAt: seedEpoch.Add(time.Duration(i) * 36 * time.Hour),
		}
	}

	for i, name := range []string{"Monthly newsletter", "Product launch", "Welcome series"} {
		id := fmt.Sprintf("tp_%03d", i+1)
		s.templates[id] = services.Template{
			ID:        id,
			Name:      name,
			HTML:      fmt.Sprintf("<html><body><h1>%s</h1><p>{{content}}</p></body></html>", name),
			CreatedAt: seedEpoch.Add(time.Duration(i) * 24 * time.Hour),
		}
	}

	seeds := []struct {
		name, subject, template string
		status                  services.CampaignStatus
		sent                    int
	}{
		{"January newsletter", "What's new in January", "tp_001", services.CampaignSent, 1200},
		{"February newsletter", "What's new in February", "tp_001", services.CampaignSent, 1310},
		{"Spring launch", "Meet the spring collection", "tp_002", services.CampaignScheduled, 0},
		{"Onboarding day 1", "Welcome aboard", "tp_003", services.CampaignSent, 420},
		{"Summer teaser", "Something is coming", "tp_002", services.CampaignDraft, 0},
	}
	for i, c := range seeds {
		id := fmt.Sprintf("cp_%03d", i+1)
		created := seedEpoch.Add(time.Duration(i) * 14 * 24 * time.Hour)
		camp := services.Campaign{
			ID:         id,
			Name:       c.name,
			Subject:    c.subject,
			TemplateID: c.template,
			Status:     c.status,
			CreatedAt:  created,
		}
		switch c.status {
		case services.CampaignSent:
			sentAt := created.Add(48 * time.Hour)
			camp.SentAt = &sentAt
		case services.CampaignScheduled:
			at := created.Add(30 * 24 * time.Hour)
			camp.ScheduledAt = &at
		}
		s.campaigns[id] = camp
		if c.sent > 0 {
			delivered := c.sent - c.sent/40
			opened := delivered * (38 + i) / 100
			clicked := opened * (12 + i) / 100
			s.stats[id] = services.CampaignStats{
				CampaignID:   id,
				Sent:         c.sent,
				Delivered:    delivered,
				Opened:       opened,
				Clicked:      clicked,
				Bounced:      c.sent - delivered,
				Unsubscribed: c.sent / 200,
				OpenRate:     ratio(opened, delivered),
				ClickRate:    ratio(clicked, delivered),
			}
		}
	}
	s.nextID = 1000
	return s
}

func ratio(a, b int) float64 {
	if b == 0 {
		return 0
	}
	return float64(a) / float64(b)
}

func (s *store) newID(prefix string) string {
	s.nextID++
	return fmt.Sprintf("%s_%d", prefix, s.nextID)
}

func paginate[T any](items []T, opts services.ListOptions) services.Page[T] {
	size := opts.PageSize
	if size <= 0 {
		size = defaultPageSize
	}
	page := opts.Page
	if page <= 0 {
		page = 1
	}
	start := (page - 1) * size
	if start > len(items) {
		start = len(items)
	}
	end := start + size
	if end > len(items) {
		end = len(items)
	}
	out := make([]T, end-start)
	copy(out, items[start:end])
	return services.Page[T]{Items: out, Page: page, PageSize: size, Total: len(items)}
}

func (s *store) listContacts(opts services.ListOptions) services.Page[services.Contact] {
	search := strings.ToLower(opts.Search)
	items := make([]services.Contact, 0, len(s.contacts))
	for _, c := range s.contacts {
		if opts.Status != "" && string(c.Status) != opts.Status {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(c.Email+" "+c.FirstName+" "+c.LastName), search) {
			continue
		}
		items = append(items, c)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return paginate(items, opts)
}

func validEmail(email string) bool {
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email
}

func (s *store) emailTaken(email, exceptID string) bool {
	for id, c := range s.contacts {
		if id != exceptID && strings.EqualFold(c.Email, email) {
			return true
		}
	}
	return false
}

func (s *store) createContact(in services.ContactInput, now time.Time) (int, any) {
	fields := map[string]string{}
	if in.Email == nil || !validEmail(*in.Email) {
		fields["email"] = "a valid email address is required"
	} else if s.emailTaken(*in.Email, "") {
		fields["email"] = "already exists"
	}
	if len(fields) > 0 {
		return invalid(fields)
	}
	c := services.Contact{
		ID:        s.newID("ct"),
		Email:     *in.Email,
		Status:    services.ContactSubscribed,
		Tags:      in.Tags,
		CreatedAt: now,
	}
	if in.FirstName != nil {
		c.FirstName = *in.FirstName
	}
	if in.LastName != nil {
		c.LastName = *in.LastName
	}
	if in.Status != nil {
		c.Status = *in.Status
	}
	s.contacts[c.ID] = c
	return http.StatusCreated, c
}

func (s *store) updateContact(id string, in services.ContactInput) (int, any) {
	c, ok := s.contacts[id]
	if !ok {
		return notFound("contact")
	}
	if in.Email != nil {
		if !validEmail(*in.Email) {
			return invalid(map[string]string{"email": "a valid email address is required"})
		}
		if s.emailTaken(*in.Email, id) {
			return invalid(map[string]string{"email": "already exists"})
		}
		c.Email = *in.Email
	}
	if in.FirstName != nil {
		c.FirstName = *in.FirstName
	}
	if in.LastName != nil {
		c.LastName = *in.LastName
	}
	if in.Status != nil {
		c.Status = *in.Status
	}
	if in.Tags != nil {
		c.Tags = in.Tags
	}
	s.contacts[id] = c
	return http.StatusOK, c
}

func (s *store) listCampaigns(opts services.ListOptions) services.Page[services.Campaign] {
	search := strings.ToLower(opts.Search)
	items := make([]services.Campaign, 0, len(s.campaigns))
	for _, c := range s.campaigns {
		if opts.Status != "" && string(c.Status) != opts.Status {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(c.Name+" "+c.Subject), search) {
			continue
		}
		items = append(items, c)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return paginate(items, opts)
}

func (s *store) validateCampaign(in services.CampaignInput) map[string]string {
	fields := map[string]string{}
	if strings.TrimSpace(in.Name) == "" {
		fields["name"] = "required"
	}
	if strings.TrimSpace(in.Subject) == "" {
		fields["subject"] = "required"
	}
	if in.TemplateID != "" {
		if _, ok := s.templates[in.TemplateID]; !ok {
			fields["templateId"] = "unknown template"
		}
	}
	return fields
}

func (s *store) createCampaign(in services.CampaignInput, now time.Time) (int, any) {
	if fields := s.validateCampaign(in); len(fields) > 0 {
		return invalid(fields)
	}
	c := services.Campaign{
		ID:         s.newID("cp"),
		Name:       in.Name,
		Subject:    in.Subject,
		TemplateID: in.TemplateID,
		Status:     services.CampaignDraft,
		CreatedAt:  now,
	}
	s.campaigns[c.ID] = c
	return http.StatusCreated, c
}

func (s *store) replaceCampaign(id string, in services.CampaignInput) (int, any) {
	c, ok := s.campaigns[id]
	if !ok {
		return notFound("campaign")
	}
	if c.Status == services.CampaignSent {
		return badRequest("a sent campaign cannot be modified")
	}
	if fields := s.validateCampaign(in); len(fields) > 0 {
		return invalid(fields)
	}
	c.Name, c.Subject, c.TemplateID = in.Name, in.Subject, in.TemplateID
	s.campaigns[id] = c
	return http.StatusOK, c
}

func (s *store) scheduleCampaign(id string, at, now time.Time) (int, any) {
	c, ok := s.campaigns[id]
	if !ok {
		return notFound("campaign")
	}
	if c.Status != services.CampaignDraft {
		return badRequest("only draft campaigns can be scheduled")
	}
	if !at.After(now) {
		return invalid(map[string]string{"scheduledAt": "must be in the future"})
	}
	at = at.UTC()
	c.Status = services.CampaignScheduled
	c.ScheduledAt = &at
	s.campaigns[id] = c
	return http.StatusOK, c
}

func (s *store) listTemplates(opts services.ListOptions) services.Page[services.Template] {
	search := strings.ToLower(opts.Search)
	items := make([]services.Template, 0, len(s.templates))
	for _, t := range s.templates {
		if search != "" && !strings.Contains(strings.ToLower(t.Name), search) {
			continue
		}
		items = append(items, t)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return paginate(items, opts)
}

func (s *store) createTemplate(in services.TemplateInput, now time.Time) (int, any) {
	fields := map[string]string{}
	if strings.TrimSpace(in.Name) == "" {
		fields["name"] = "required"
	}
	if strings.TrimSpace(in.HTML) == "" {
		fields["html"] = "required"
	}
	if len(fields) > 0 {
		return invalid(fields)
	}
	t := services.Template{ID: s.newID("tp"), Name: in.Name, HTML: in.HTML, CreatedAt: now}
	s.templates[t.ID] = t
	return http.StatusCreated, t
}

func (s *store) campaignStats(id string) services.CampaignStats {
	if st, ok := s.stats[id]; ok {
		return st
	}
	return services.CampaignStats{CampaignID: id}
}

func (s *store) overview() services.Overview {
	o := services.Overview{TotalContacts: len(s.contacts), TotalCampaigns: len(s.campaigns)}
	for _, c := range s.contacts {
		if c.Status == services.ContactSubscribed {
			o.SubscribedContacts++
		}
	}
	var openSum, clickSum float64
	for _, c := range s.campaigns {
		if c.Status != services.CampaignSent {
			continue
		}
		o.SentCampaigns++
		st := s.stats[c.ID]
		openSum += st.OpenRate
		clickSum += st.ClickRate
	}
	if o.SentCampaigns > 0 {
		o.AverageOpenRate = openSum / float64(o.SentCampaigns)
		o.AverageClickRate = clickSum / float64(o.SentCampaigns)
	}
	return o
}
