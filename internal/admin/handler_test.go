package admin

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/compleetvloeren/compleetkozijnen-premium-presentatie-sub001/internal/audit"
	"github.com/compleetvloeren/compleetkozijnen-premium-presentatie-sub001/internal/auth"
	"github.com/compleetvloeren/compleetkozijnen-premium-presentatie-sub001/internal/domain"
	"github.com/compleetvloeren/compleetkozijnen-premium-presentatie-sub001/internal/notify"
)

var (
	secret  = []byte("admin-secret")
	adminID = uuid.NewString()
	userID  = uuid.NewString()
	apiKey  = "ops-key"
	fixedAt = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
)

type fixture struct {
	app      *fiber.App
	leads    *memLeads
	contacts *memContacts
	profiles *memProfiles
	audit    *recAudit
	notes    *notify.List
}

func newFixture(t *testing.T) *fixture {
	f := &fixture{
		leads: &memLeads{items: []domain.Lead{
			{ID: uuid.NewString(), Name: "Jan", Email: "jan@example.nl", Status: "new", CreatedAt: fixedAt},
			{ID: uuid.NewString(), Name: "Els", Email: "els@example.nl", Status: "won", CreatedAt: fixedAt.Add(time.Hour)},
		}},
		contacts: &memContacts{items: []domain.ContactSubmission{
			{ID: uuid.NewString(), Name: "Kees", Email: "kees@example.nl", Subject: "Vraag", Status: "new", CreatedAt: fixedAt},
		}},
		profiles: &memProfiles{profiles: map[string]*domain.Profile{
			adminID: {ID: adminID, Role: domain.RoleAdmin},
			userID:  {ID: userID, Role: domain.RoleUser},
		}},
		audit: &recAudit{},
		notes: notify.NewList(time.Hour),
	}

	log := zaptest.NewLogger(t)
	guard := &Guard{
		Verifier: auth.NewVerifier(secret, "authenticated", ""),
		Profiles: f.profiles,
		APIKey:   apiKey,
		Log:      log,
	}
	h := &Handler{
		Leads:    f.leads,
		Contacts: f.contacts,
		Audit:    f.audit,
		Notes:    f.notes,
		Log:      log,
		Limit:    500,
		Now:      func() time.Time { return fixedAt },
	}

	f.app = fiber.New()
	g := f.app.Group("/api/dashboard", guard.RequireAdmin())
	g.Get("/", h.Dashboard)
	g.Get("/export", h.Export)
	g.Get("/notifications", h.Notifications)
	g.Delete("/notifications/:id", h.DismissNotification)
	g.Patch("/leads/:id", h.UpdateLeadStatus)
	g.Delete("/leads/:id", h.DeleteLead)
	g.Patch("/contacts/:id", h.UpdateContactStatus)
	g.Delete("/contacts/:id", h.DeleteContact)
	return f
}

func bearer(t *testing.T, sub string) string {
	raw, err := auth.NewIssuer(secret, "authenticated", "", time.Hour).Issue(sub, "x@example.nl")
	require.NoError(t, err)
	return "Bearer " + raw
}

func (f *fixture) do(t *testing.T, method, path, authz, body string) (*http.Response, []byte) {
	t.Helper()
	var rdr io.Reader
	if body != "" {
		rdr = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rdr)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if authz != "" {
		req.Header.Set("Authorization", authz)
	}
	resp, err := f.app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, _ := io.ReadAll(resp.Body)
	return resp, raw
}

func TestGuard(t *testing.T) {
	f := newFixture(t)

	resp, _ := f.do(t, "GET", "/api/dashboard", "", "")
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode, "no credentials")

	resp, _ = f.do(t, "GET", "/api/dashboard", bearer(t, userID), "")
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode, "non-admin")

	resp, _ = f.do(t, "GET", "/api/dashboard", bearer(t, uuid.NewString()), "")
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode, "no profile")

	resp, _ = f.do(t, "GET", "/api/dashboard", bearer(t, adminID), "")
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	req := httptest.NewRequest("GET", "/api/dashboard", nil)
	req.Header.Set("X-Admin-Key", apiKey)
	r, err := f.app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, r.StatusCode)

	req = httptest.NewRequest("GET", "/api/dashboard", nil)
	req.Header.Set("X-Admin-Key", "guess")
	r, err = f.app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, r.StatusCode)

	f.profiles.err = errors.New("db down")
	resp, _ = f.do(t, "GET", "/api/dashboard", bearer(t, adminID), "")
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
}

func TestGuardWithoutAPIKeyConfigured(t *testing.T) {
	f := newFixture(t)
	guard := &Guard{Verifier: auth.NewVerifier(secret, "", ""), Profiles: f.profiles, Log: zaptest.NewLogger(t)}
	app := fiber.New()
	app.Get("/", guard.RequireAdmin(), func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("X-Admin-Key", "anything")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestDashboard(t *testing.T) {
	f := newFixture(t)

	resp, raw := f.do(t, "GET", "/api/dashboard", bearer(t, adminID), "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var got DashboardResponse
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.Len(t, got.Leads, 2)
	assert.Len(t, got.Contacts, 1)
	assert.Equal(t, 2, got.Counts.Leads)
	assert.Equal(t, 1, got.Counts.LeadsByStatus["won"])

	resp, raw = f.do(t, "GET", "/api/dashboard?kind=leads&status=won", bearer(t, adminID), "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	got = DashboardResponse{}
	require.NoError(t, json.Unmarshal(raw, &got))
	require.Len(t, got.Leads, 1)
	assert.Equal(t, "Els", got.Leads[0].Name)
	assert.Empty(t, got.Contacts)

	resp, _ = f.do(t, "GET", "/api/dashboard?from=yesterday", bearer(t, adminID), "")
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	f.contacts.listErr = errors.New("timeout")
	resp, raw = f.do(t, "GET", "/api/dashboard", bearer(t, adminID), "")
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
	assert.NotContains(t, string(raw), "timeout")
}

func TestUpdateStatus(t *testing.T) {
	f := newFixture(t)
	lead := f.leads.items[0]
	contact := f.contacts.items[0]

	resp, raw := f.do(t, "PATCH", "/api/dashboard/leads/"+lead.ID, bearer(t, adminID), `{"status":"Quoted"}`)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, domain.LeadStatusQuoted, f.leads.items[0].Status)
	var updated domain.Lead
	require.NoError(t, json.Unmarshal(raw, &updated))
	assert.Equal(t, lead.ID, updated.ID)
	assert.Equal(t, "Jan", updated.Name)
	assert.Equal(t, domain.LeadStatusQuoted, updated.Status)

	resp, _ = f.do(t, "PATCH", "/api/dashboard/leads/"+lead.ID, bearer(t, adminID), `{"status":"archived"}`)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode, "contact status on a lead")

	resp, raw = f.do(t, "PATCH", "/api/dashboard/contacts/"+contact.ID, bearer(t, adminID), `{"status":"archived"}`)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, domain.ContactStatusArchived, f.contacts.items[0].Status)
	var updatedContact domain.ContactSubmission
	require.NoError(t, json.Unmarshal(raw, &updatedContact))
	assert.Equal(t, "Vraag", updatedContact.Subject)
	assert.Equal(t, domain.ContactStatusArchived, updatedContact.Status)

	resp, _ = f.do(t, "PATCH", "/api/dashboard/leads/not-a-uuid", bearer(t, adminID), `{"status":"won"}`)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp, _ = f.do(t, "PATCH", "/api/dashboard/leads/"+uuid.NewString(), bearer(t, adminID), `{"status":"won"}`)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	require.Len(t, f.audit.entries, 2)
	assert.Equal(t, audit.ActionStatusChange, f.audit.entries[0].Action)
	require.NotNil(t, f.audit.entries[0].UserID)
	assert.Equal(t, adminID, *f.audit.entries[0].UserID)
}

func TestDelete(t *testing.T) {
	f := newFixture(t)
	lead := f.leads.items[0]
	contact := f.contacts.items[0]

	resp, _ := f.do(t, "DELETE", "/api/dashboard/leads/"+lead.ID, bearer(t, adminID), "")
	require.Equal(t, fiber.StatusNoContent, resp.StatusCode)
	assert.Len(t, f.leads.items, 1)

	resp, _ = f.do(t, "DELETE", "/api/dashboard/leads/"+lead.ID, bearer(t, adminID), "")
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	resp, _ = f.do(t, "DELETE", "/api/dashboard/contacts/"+contact.ID, bearer(t, adminID), "")
	require.Equal(t, fiber.StatusNoContent, resp.StatusCode)
	assert.Empty(t, f.contacts.items)

	resp, _ = f.do(t, "DELETE", "/api/dashboard/contacts/123", bearer(t, adminID), "")
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp, _ = f.do(t, "DELETE", "/api/dashboard/leads/"+lead.ID, bearer(t, userID), "")
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	require.Len(t, f.audit.entries, 2)
	assert.Equal(t, audit.ActionDelete, f.audit.entries[1].Action)
	assert.Equal(t, "contact", f.audit.entries[1].EntityType)
}

func TestDeleteFailureNotifies(t *testing.T) {
	f := newFixture(t)
	f.leads.opErr = errors.New("permission denied for table leads")

	resp, _ := f.do(t, "DELETE", "/api/dashboard/leads/"+f.leads.items[0].ID, bearer(t, adminID), "")
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)

	items := f.notes.Items()
	require.Len(t, items, 1)
	assert.Equal(t, notify.LevelError, items[0].Level)
	assert.Empty(t, f.audit.entries)
}

func TestExport(t *testing.T) {
	f := newFixture(t)

	resp, raw := f.do(t, "GET", "/api/dashboard/export?kind=leads&format=csv&status=new", bearer(t, adminID), "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/csv; charset=utf-8", resp.Header.Get("Content-Type"))
	assert.Equal(t, `attachment; filename="leads-2024-05-01.csv"`, resp.Header.Get("Content-Disposition"))

	records, err := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(raw, []byte{0xEF, 0xBB, 0xBF}))).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2, "header plus the one new lead")
	assert.Equal(t, "Jan", records[1][3])

	resp, raw = f.do(t, "GET", "/api/dashboard/export?kind=contacts&format=json", bearer(t, adminID), "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var contacts []domain.ContactSubmission
	require.NoError(t, json.Unmarshal(raw, &contacts))
	assert.Len(t, contacts, 1)

	resp, raw = f.do(t, "GET", "/api/dashboard/export?kind=leads&format=pdf", bearer(t, adminID), "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.True(t, bytes.HasPrefix(raw, []byte("%PDF-")))

	for _, q := range []string{"kind=all", "kind=leads&format=xlsx", ""} {
		resp, _ = f.do(t, "GET", "/api/dashboard/export?"+q, bearer(t, adminID), "")
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode, q)
	}

	require.Len(t, f.audit.entries, 3)
	assert.Equal(t, audit.ActionExport, f.audit.entries[0].Action)
	assert.Equal(t, 1, f.audit.entries[0].Metadata["count"])
}

func TestNotifications(t *testing.T) {
	f := newFixture(t)
	n := f.notes.Push(notify.LevelInfo, "New quote request", "Jan")

	resp, raw := f.do(t, "GET", "/api/dashboard/notifications", bearer(t, adminID), "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var got struct {
		Items []notify.Notification `json:"items"`
	}
	require.NoError(t, json.Unmarshal(raw, &got))
	require.Len(t, got.Items, 1)
	assert.Equal(t, n.ID, got.Items[0].ID)

	resp, _ = f.do(t, "DELETE", "/api/dashboard/notifications/"+n.ID, bearer(t, adminID), "")
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)

	resp, _ = f.do(t, "DELETE", "/api/dashboard/notifications/"+n.ID, bearer(t, adminID), "")
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}
