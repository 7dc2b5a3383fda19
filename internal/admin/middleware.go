package admin

import (
	"context"
	"crypto/subtle"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/compleetvloeren/compleetkozijnen-premium-presentatie-sub001/internal/auth"
	"github.com/compleetvloeren/compleetkozijnen-premium-presentatie-sub001/internal/domain"
)

type ProfileGetter interface {
	Get(ctx context.Context, id string) (*domain.Profile, error)
}

const localViaAPIKey = "admin_via_api_key"

// Guard admits dashboard callers: a bearer token whose profile has the
// admin role, or the server-side admin API key for non-browser tooling.
type Guard struct {
	Verifier *auth.Verifier
	Profiles ProfileGetter
	APIKey   string
	Log      *zap.Logger
}

func (g *Guard) RequireAdmin() fiber.Handler {
	key := strings.TrimSpace(g.APIKey)

	return func(c *fiber.Ctx) error {
		if got := strings.TrimSpace(c.Get("X-Admin-Key")); got != "" {
			if key == "" || subtle.ConstantTimeCompare([]byte(got), []byte(key)) != 1 {
				return fiber.NewError(fiber.StatusUnauthorized, "invalid admin key")
			}
			c.Locals(localViaAPIKey, true)
			return c.Next()
		}

		if err := auth.Authenticate(c, g.Verifier); err != nil {
			return err
		}
		userID := auth.UserID(c)

		p, err := g.Profiles.Get(c.UserContext(), userID)
		if errors.Is(err, domain.ErrNotFound) {
			return fiber.NewError(fiber.StatusForbidden, "admin role required")
		}
		if err != nil {
			g.Log.Error("admin role lookup failed", zap.String("user_id", userID), zap.Error(err))
			return fiber.NewError(fiber.StatusInternalServerError, "could not verify role")
		}
		if !p.IsAdmin() {
			return fiber.NewError(fiber.StatusForbidden, "admin role required")
		}
		return c.Next()
	}
}

func viaAPIKey(c *fiber.Ctx) bool {
	v, _ := c.Locals(localViaAPIKey).(bool)
	return v
}
