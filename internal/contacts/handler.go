package contacts

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

type Inserter interface {
	Insert(ctx context.Context, m *domain.ContactSubmission) error
}

type Notifier interface {
	Push(level notify.Level, title, message string) notify.Notification
}

type Alerter interface {
	Notify(e alert.Event)
}

type Handler struct {
	Store  Inserter
	Notes  Notifier
	Alerts Alerter
	Log    *zap.Logger
}

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

	m := &domain.ContactSubmission{
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		Subject: req.Subject,
		Message: req.Message,
	}
	if err := h.Store.Insert(c.UserContext(), m); err != nil {
		h.Log.Error("insert contact submission failed", zap.Error(err))
		return fiber.NewError(fiber.StatusInternalServerError, "could not send your message")
	}

	h.Log.Info("contact submission received", zap.String("contact_id", m.ID))

	if h.Notes != nil {
		h.Notes.Push(notify.LevelInfo, "New message", m.Name+" · "+m.Subject)
	}
	if h.Alerts != nil {
		h.Alerts.Notify(alert.Event{
			Type: "contact.created",
			ID:   m.ID,
			Text: "New message from " + m.Name + ": " + m.Subject,
			Fields: map[string]string{
				"email": m.Email,
				"phone": m.Phone,
			},
		})
	}

	return c.Status(fiber.StatusCreated).JSON(SubmitResponse{ID: m.ID, Message: "message received"})
}
