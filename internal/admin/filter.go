package admin

import (
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/compleetvloeren/compleetkozijnen-premium-presentatie-sub001/internal/domain"
)

const (
	KindLeads    = "leads"
	KindContacts = "contacts"
	KindAll      = "all"
)

// Filter narrows the dashboard lists. Zero values match everything; To is
// exclusive.
type Filter struct {
	Kind   string
	Query  string
	Status string
	From   time.Time
	To     time.Time
}

const dateLayout = "2006-01-02"

func ParseFilter(c *fiber.Ctx) (Filter, error) {
	f := Filter{
		Kind:   strings.ToLower(strings.TrimSpace(c.Query("kind", KindAll))),
		Query:  strings.ToLower(strings.TrimSpace(c.Query("q"))),
		Status: strings.ToLower(strings.TrimSpace(c.Query("status"))),
	}
	switch f.Kind {
	case KindLeads, KindContacts, KindAll:
	default:
		return Filter{}, fmt.Errorf("kind must be %s, %s or %s", KindLeads, KindContacts, KindAll)
	}

	if s := strings.TrimSpace(c.Query("from")); s != "" {
		t, err := time.ParseInLocation(dateLayout, s, time.UTC)
		if err != nil {
			return Filter{}, fmt.Errorf("from must be YYYY-MM-DD")
		}
		f.From = t
	}
	if s := strings.TrimSpace(c.Query("to")); s != "" {
		t, err := time.ParseInLocation(dateLayout, s, time.UTC)
		if err != nil {
			return Filter{}, fmt.Errorf("to must be YYYY-MM-DD")
		}
		f.To = t.AddDate(0, 0, 1)
	}
	if !f.From.IsZero() && !f.To.IsZero() && !f.From.Before(f.To) {
		return Filter{}, fmt.Errorf("from must not be after to")
	}
	return f, nil
}

func (f Filter) wantLeads() bool    { return f.Kind != KindContacts }
func (f Filter) wantContacts() bool { return f.Kind != KindLeads }

func (f Filter) inRange(t time.Time) bool {
	if !f.From.IsZero() && t.Before(f.From) {
		return false
	}
	if !f.To.IsZero() && !t.Before(f.To) {
		return false
	}
	return true
}

func (f Filter) matches(status string, created time.Time, fields ...string) bool {
	if f.Status != "" && status != f.Status {
		return false
	}
	if !f.inRange(created) {
		return false
	}
	if f.Query == "" {
		return true
	}
	for _, v := range fields {
		if strings.Contains(strings.ToLower(v), f.Query) {
			return true
		}
	}
	return false
}

func (f Filter) Leads(in []domain.Lead) []domain.Lead {
	out := make([]domain.Lead, 0, len(in))
	for _, l := range in {
		if f.matches(l.Status, l.CreatedAt, l.Name, l.Email, l.Phone, l.Company, l.City, l.ProjectType) {
			out = append(out, l)
		}
	}
	return out
}

func (f Filter) Contacts(in []domain.ContactSubmission) []domain.ContactSubmission {
	out := make([]domain.ContactSubmission, 0, len(in))
	for _, m := range in {
		if f.matches(m.Status, m.CreatedAt, m.Name, m.Email, m.Phone, m.Subject) {
			out = append(out, m)
		}
	}
	return out
}
