package admin

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/compleetvloeren/compleetkozijnen-premium-presentatie-sub001/internal/audit"
	"github.com/compleetvloeren/compleetkozijnen-premium-presentatie-sub001/internal/auth"
	"github.com/compleetvloeren/compleetkozijnen-premium-presentatie-sub001/internal/domain"
	"github.com/compleetvloeren/compleetkozijnen-premium-presentatie-sub001/internal/export"
	"github.com/compleetvloeren/compleetkozijnen-premium-presentatie-sub001/internal/notify"
)

type LeadStore interface {
	List(ctx context.Context, limit int) ([]domain.Lead, error)
	Get(ctx context.Context, id string) (*domain.Lead, error)
	UpdateStatus(ctx context.Context, id, status string) error
	Delete(ctx context.Context, id string) error
}

type ContactStore interface {
	List(ctx context.Context, limit int) ([]domain.ContactSubmission, error)
	Get(ctx context.Context, id string) (*domain.ContactSubmission, error)
	UpdateStatus(ctx context.Context, id, status string) error
	Delete(ctx context.Context, id string) error
}

type Auditor interface {
	Write(ctx context.Context, e audit.Entry) error
}

type Notes interface {
	Push(level notify.Level, title, message string) notify.Notification
	Items() []notify.Notification
	Dismiss(id string) bool
}

type Handler struct {
	Leads    LeadStore
	Contacts ContactStore
	Audit    Auditor
	Notes    Notes
	Log      *zap.Logger
	// Limit caps each dashboard list; exports are never capped.
	Limit int
	Now   func() time.Time
}

type Counts struct {
	Leads            int            `json:"leads"`
	Contacts         int            `json:"contacts"`
	LeadsByStatus    map[string]int `json:"leads_by_status"`
	ContactsByStatus map[string]int `json:"contacts_by_status"`
}

type DashboardResponse struct {
	Leads    []domain.Lead              `json:"leads"`
	Contacts []domain.ContactSubmission `json:"contacts"`
	Counts   Counts                     `json:"counts"`
}

func (h *Handler) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now()
}

func (h *Handler) fetch(ctx context.Context, f Filter, limit int) ([]domain.Lead, []domain.ContactSubmission, error) {
	leads := []domain.Lead{}
	contacts := []domain.ContactSubmission{}

	g, gctx := errgroup.WithContext(ctx)
	if f.wantLeads() {
		g.Go(func() error {
			items, err := h.Leads.List(gctx, limit)
			if err != nil {
				return err
			}
			leads = items
			return nil
		})
	}
	if f.wantContacts() {
		g.Go(func() error {
			items, err := h.Contacts.List(gctx, limit)
			if err != nil {
				return err
			}
			contacts = items
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return leads, contacts, nil
}

// Dashboard returns both record lists, filtered by the query parameters.
func (h *Handler) Dashboard(c *fiber.Ctx) error {
	f, err := ParseFilter(c)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	leads, contacts, err := h.fetch(c.UserContext(), f, h.Limit)
	if err != nil {
		h.Log.Error("dashboard fetch failed", zap.Error(err))
		return fiber.NewError(fiber.StatusInternalServerError, "could not load dashboard")
	}

	counts := Counts{
		Leads:            len(leads),
		Contacts:         len(contacts),
		LeadsByStatus:    map[string]int{},
		ContactsByStatus: map[string]int{},
	}
	for _, l := range leads {
		counts.LeadsByStatus[l.Status]++
	}
	for _, m := range contacts {
		counts.ContactsByStatus[m.Status]++
	}

	return c.JSON(DashboardResponse{
		Leads:    f.Leads(leads),
		Contacts: f.Contacts(contacts),
		Counts:   counts,
	})
}

type statusRequest struct {
	Status string `json:"status"`
}

func parseID(c *fiber.Ctx) (string, error) {
	id, err := uuid.Parse(strings.TrimSpace(c.Params("id")))
	if err != nil {
		return "", fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}
	return id.String(), nil
}

// UpdateLeadStatus responds with the updated lead.
func (h *Handler) UpdateLeadStatus(c *fiber.Ctx) error {
	return h.updateStatus(c, "lead", domain.ValidLeadStatus, domain.LeadStatuses(), h.Leads.UpdateStatus,
		func(ctx context.Context, id string) (any, error) { return h.Leads.Get(ctx, id) })
}

func (h *Handler) UpdateContactStatus(c *fiber.Ctx) error {
	return h.updateStatus(c, "contact", domain.ValidContactStatus, domain.ContactStatuses(), h.Contacts.UpdateStatus,
		func(ctx context.Context, id string) (any, error) { return h.Contacts.Get(ctx, id) })
}

func (h *Handler) updateStatus(
	c *fiber.Ctx,
	entity string,
	valid func(string) bool,
	allowed []string,
	update func(ctx context.Context, id, status string) error,
	get func(ctx context.Context, id string) (any, error),
) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	var body statusRequest
	if err := c.BodyParser(&body); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid body")
	}
	status := strings.ToLower(strings.TrimSpace(body.Status))
	if !valid(status) {
		return fiber.NewError(fiber.StatusBadRequest, "status must be one of "+strings.Join(allowed, ", "))
	}

	err = update(c.UserContext(), id, status)
	if errors.Is(err, domain.ErrNotFound) {
		return fiber.NewError(fiber.StatusNotFound, entity+" not found")
	}
	if err != nil {
		h.Log.Error("status update failed", zap.String("entity", entity), zap.String("id", id), zap.Error(err))
		return fiber.NewError(fiber.StatusInternalServerError, "could not update status")
	}

	h.audit(c, audit.ActionStatusChange, entity, id, map[string]any{"status": status})

	record, err := get(c.UserContext(), id)
	if err != nil {
		// Deleted in between, or the read failed; the update itself stands.
		h.Log.Warn("reload after status update failed", zap.String("entity", entity), zap.String("id", id), zap.Error(err))
		return c.JSON(fiber.Map{"id": id, "status": status})
	}
	return c.JSON(record)
}

func (h *Handler) DeleteLead(c *fiber.Ctx) error {
	return h.delete(c, "lead", h.Leads.Delete)
}

func (h *Handler) DeleteContact(c *fiber.Ctx) error {
	return h.delete(c, "contact", h.Contacts.Delete)
}

func (h *Handler) delete(c *fiber.Ctx, entity string, del func(ctx context.Context, id string) error) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	err = del(c.UserContext(), id)
	if errors.Is(err, domain.ErrNotFound) {
		return fiber.NewError(fiber.StatusNotFound, entity+" not found")
	}
	if err != nil {
		h.Log.Error("delete failed", zap.String("entity", entity), zap.String("id", id), zap.Error(err))
		if h.Notes != nil {
			h.Notes.Push(notify.LevelError, "Delete failed", "Could not delete "+entity+" "+id)
		}
		return fiber.NewError(fiber.StatusInternalServerError, "could not delete "+entity)
	}

	h.audit(c, audit.ActionDelete, entity, id, nil)
	return c.SendStatus(fiber.StatusNoContent)
}

// Export streams the filtered list of one record type as a file.
func (h *Handler) Export(c *fiber.Ctx) error {
	f, err := ParseFilter(c)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	if f.Kind != KindLeads && f.Kind != KindContacts {
		return fiber.NewError(fiber.StatusBadRequest, "kind must be leads or contacts")
	}
	format, err := export.ParseFormat(c.Query("format"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	leads, contacts, err := h.fetch(c.UserContext(), f, 0)
	if err != nil {
		h.Log.Error("export fetch failed", zap.Error(err))
		return fiber.NewError(fiber.StatusInternalServerError, "could not load records")
	}

	var records any
	count := 0
	if f.Kind == KindLeads {
		filtered := f.Leads(leads)
		records, count = filtered, len(filtered)
	} else {
		filtered := f.Contacts(contacts)
		records, count = filtered, len(filtered)
	}

	now := h.now()
	body, err := export.Render(format, records, now)
	if err != nil {
		h.Log.Error("export render failed", zap.String("format", string(format)), zap.Error(err))
		return fiber.NewError(fiber.StatusInternalServerError, "could not build export")
	}

	h.audit(c, audit.ActionExport, f.Kind, "", map[string]any{"format": string(format), "count": count})

	c.Set(fiber.HeaderContentType, format.ContentType())
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+export.Filename(f.Kind, format, now)+`"`)
	return c.Send(body)
}

func (h *Handler) Notifications(c *fiber.Ctx) error {
	items := []notify.Notification{}
	if h.Notes != nil {
		items = h.Notes.Items()
	}
	return c.JSON(fiber.Map{"items": items})
}

func (h *Handler) DismissNotification(c *fiber.Ctx) error {
	if h.Notes == nil || !h.Notes.Dismiss(c.Params("id")) {
		return fiber.NewError(fiber.StatusNotFound, "notification not found")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// audit is best effort: the action already happened.
func (h *Handler) audit(c *fiber.Ctx, action, entity, id string, meta map[string]any) {
	if h.Audit == nil {
		return
	}
	e := audit.Entry{
		UserID:     audit.Ptr(auth.UserID(c)),
		Action:     action,
		EntityType: entity,
		EntityID:   audit.Ptr(id),
		IP:         audit.Ptr(c.IP()),
		UserAgent:  audit.Ptr(c.Get(fiber.HeaderUserAgent)),
		Metadata:   meta,
	}
	if viaAPIKey(c) {
		if e.Metadata == nil {
			e.Metadata = map[string]any{}
		}
		e.Metadata["via"] = "api_key"
	}
	if err := h.Audit.Write(c.UserContext(), e); err != nil {
		h.Log.Warn("audit write failed", zap.String("action", action), zap.Error(err))
	}
}
