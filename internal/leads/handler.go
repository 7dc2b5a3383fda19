package leads

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/compleetvloeren/compleetkozijnen-premium-presentatie-sub001/internal/alert"
	"github.com/compleetvloeren/compleetkozijnen-premium-presentatie-sub001/internal/domain"
	"github.com/compleetvloeren/compleetkozijnen-premium-presentatie-sub001/internal/notify"
	"github.com/compleetvloeren/compleetkozijnen-premium-presentatie-sub001/internal/validate"
)

type Store interface {
	Insert(ctx context.Context, l *domain.Lead) error
}

type Catalog interface {
	HasService(slug string) bool
	ServiceTitle(slug string) string
}

type Notifier interface {
	Push(level notify.Level, title, message string) notify.Notification
}

type Alerter interface {
	Notify(e alert.Event)
}

type Handler struct {
	Store   Store
	Catalog Catalog
	Notes   Notifier
	Alerts  Alerter
	Log     *zap.Logger
}

// Submit stores a quote request from the public form.
func (h *Handler) Submit(c *fiber.Ctx) error {
	var req SubmitRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid body")
	}
	validate.TrimStrings(&req)

	if err := validate.Struct(req); err != nil {
		var verr *validate.Error
		if errors.As(err, &verr) {
			return fiber.NewError(fiber.StatusBadRequest, verr.Error())
		}
		return err
	}
	if h.Catalog != nil && !h.Catalog.HasService(req.ProjectType) {
		return fiber.NewError(fiber.StatusBadRequest, "project_type is not a service we offer")
	}

	l := &domain.Lead{
		Name:        req.Name,
		Email:       req.Email,
		Phone:       req.Phone,
		Company:     req.Company,
		ProjectType: req.ProjectType,
		Address:     req.Address,
		PostalCode:  req.PostalCode,
		City:        req.City,
		Budget:      req.Budget,
		Timeline:    req.Timeline,
		Message:     req.Message,
	}
	if err := h.Store.Insert(c.UserContext(), l); err != nil {
		h.Log.Error("insert lead failed", zap.Error(err))
		return fiber.NewError(fiber.StatusInternalServerError, "could not save your request")
	}

	h.Log.Info("lead received", zap.String("lead_id", l.ID), zap.String("project_type", l.ProjectType))

	project := l.ProjectType
	if h.Catalog != nil {
		project = h.Catalog.ServiceTitle(l.ProjectType)
	}
	if h.Notes != nil {
		h.Notes.Push(notify.LevelInfo, "New quote request", l.Name+" · "+project)
	}
	if h.Alerts != nil {
		h.Alerts.Notify(alert.Event{
			Type: "lead.created",
			ID:   l.ID,
			Text: "New quote request from " + l.Name + " (" + project + ")",
			Fields: map[string]string{
				"email":    l.Email,
				"phone":    l.Phone,
				"city":     l.City,
				"budget":   l.Budget,
				"timeline": l.Timeline,
			},
		})
	}

	return c.Status(fiber.StatusCreated).JSON(SubmitResponse{ID: l.ID, Message: "lead received"})
}
