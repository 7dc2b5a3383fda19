package profile

import (
	"context"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/compleetvloeren/compleetkozijnen-premium-presentatie-sub001/internal/auth"
	"github.com/compleetvloeren/compleetkozijnen-premium-presentatie-sub001/internal/domain"
)

type Store interface {
	Upsert(ctx context.Context, id, email string, fullName *string) (*domain.Profile, error)
	Get(ctx context.Context, id string) (*domain.Profile, error)
}

type Handler struct {
	Store Store
	Log   *zap.Logger
}

func NewHandler(store Store, log *zap.Logger) *Handler {
	return &Handler{Store: store, Log: log}
}

type bootstrapRequest struct {
	FullName string `json:"full_name"`
}

// Bootstrap creates or refreshes the caller's profile from the token claims.
func (h *Handler) Bootstrap(c *fiber.Ctx) error {
	userID := auth.UserID(c)
	if userID == "" {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}
	email := auth.Email(c)
	if email == "" {
		return fiber.NewError(fiber.StatusBadRequest, "token has no email")
	}

	var body bootstrapRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid body")
		}
	}

	var fullName *string
	if name := strings.TrimSpace(body.FullName); name != "" {
		if len(name) > 200 {
			return fiber.NewError(fiber.StatusBadRequest, "full_name must be at most 200 characters")
		}
		fullName = &name
	}

	p, err := h.Store.Upsert(c.UserContext(), userID, email, fullName)
	if err != nil {
		h.Log.Error("profile bootstrap failed", zap.String("user_id", userID), zap.Error(err))
		return fiber.NewError(fiber.StatusInternalServerError, "could not create profile")
	}
	return c.JSON(p)
}

func (h *Handler) Me(c *fiber.Ctx) error {
	userID := auth.UserID(c)
	if userID == "" {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	p, err := h.Store.Get(c.UserContext(), userID)
	if errors.Is(err, domain.ErrNotFound) {
		return fiber.NewError(fiber.StatusNotFound, "profile not found")
	}
	if err != nil {
		h.Log.Error("profile lookup failed", zap.String("user_id", userID), zap.Error(err))
		return fiber.NewError(fiber.StatusInternalServerError, "could not load profile")
	}
	return c.JSON(p)
}
