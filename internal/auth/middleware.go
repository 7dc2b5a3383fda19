package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

const (
	localUserID = "user_id"
	localEmail  = "email"
)

// Middleware rejects requests without a valid bearer token and stores the
// subject and email in the request locals.
func Middleware(v *Verifier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := Authenticate(c, v); err != nil {
			return err
		}
		return c.Next()
	}
}

// Authenticate does the work of Middleware without continuing the chain, for
// guards that combine the token with other checks.
func Authenticate(c *fiber.Ctx, v *Verifier) error {
	authHeader := strings.TrimSpace(c.Get(fiber.HeaderAuthorization))
	if authHeader == "" {
		return fiber.NewError(fiber.StatusUnauthorized, "missing token")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		return fiber.NewError(fiber.StatusUnauthorized, "invalid token")
	}

	claims, err := v.Verify(strings.TrimSpace(parts[1]))
	if err != nil {
		return fiber.NewError(fiber.StatusUnauthorized, "invalid token")
	}

	c.Locals(localUserID, claims.Subject)
	c.Locals(localEmail, claims.Email)
	return nil
}

// UserID returns the authenticated subject, or "" when the request did not
// pass through Middleware.
func UserID(c *fiber.Ctx) string {
	if s, ok := c.Locals(localUserID).(string); ok {
		return strings.TrimSpace(s)
	}
	return ""
}

func Email(c *fiber.Ctx) string {
	if s, ok := c.Locals(localEmail).(string); ok {
		return strings.TrimSpace(s)
	}
	return ""
}
