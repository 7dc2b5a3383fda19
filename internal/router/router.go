package router

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/compleetvloeren/compleetkozijnen-premium-presentatie-sub001/internal/admin"
	"github.com/compleetvloeren/compleetkozijnen-premium-presentatie-sub001/internal/auth"
	"github.com/compleetvloeren/compleetkozijnen-premium-presentatie-sub001/internal/contacts"
	"github.com/compleetvloeren/compleetkozijnen-premium-presentatie-sub001/internal/leads"
	"github.com/compleetvloeren/compleetkozijnen-premium-presentatie-sub001/internal/profile"
	"github.com/compleetvloeren/compleetkozijnen-premium-presentatie-sub001/internal/site"
)

type Router struct {
	LeadHandler    *leads.Handler
	ContactHandler *contacts.Handler
	ProfileHandler *profile.Handler
	AdminHandler   *admin.Handler
	LocalAuth      *auth.LocalHandler
	Catalog        *site.Catalog

	AuthMW   fiber.Handler
	AdminMW  fiber.Handler
	SubmitMW fiber.Handler
	LoginMW  fiber.Handler
}

// ErrorHandler renders every error as {"error": message}. Messages of
// non-fiber errors are not exposed.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "internal server error"

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		code = fiberErr.Code
		message = fiberErr.Message
	}

	return c.Status(code).JSON(fiber.Map{"error": message})
}

func chain(mw fiber.Handler, h fiber.Handler) []fiber.Handler {
	if mw == nil {
		return []fiber.Handler{h}
	}
	return []fiber.Handler{mw, h}
}

func (r *Router) RegisterRoutes(app *fiber.App) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"ok": true})
	})

	api := app.Group("/api")

	if r.Catalog != nil {
		api.Get("/site", site.Handler(r.Catalog))
	}

	if r.LeadHandler != nil {
		api.Post("/leads", chain(r.SubmitMW, r.LeadHandler.Submit)...)
	}
	if r.ContactHandler != nil {
		api.Post("/contact", chain(r.SubmitMW, r.ContactHandler.Submit)...)
	}

	if r.LocalAuth != nil {
		api.Post("/auth/signup", chain(r.LoginMW, r.LocalAuth.Signup)...)
		api.Post("/auth/login", chain(r.LoginMW, r.LocalAuth.Login)...)
	}

	if r.ProfileHandler != nil && r.AuthMW != nil {
		api.Post("/profile", r.AuthMW, r.ProfileHandler.Bootstrap)
		api.Get("/profile", r.AuthMW, r.ProfileHandler.Me)
	}

	if r.AdminHandler != nil && r.AdminMW != nil {
		h := r.AdminHandler
		// The guard goes on each route: a group prefix would also match
		// paths like /api/dashboardx.
		guard := r.AdminMW
		dash := api.Group("/dashboard")
		dash.Get("/", guard, h.Dashboard)
		dash.Get("/export", guard, h.Export)
		dash.Get("/notifications", guard, h.Notifications)
		dash.Delete("/notifications/:id", guard, h.DismissNotification)
		dash.Patch("/leads/:id", guard, h.UpdateLeadStatus)
		dash.Delete("/leads/:id", guard, h.DeleteLead)
		dash.Patch("/contacts/:id", guard, h.UpdateContactStatus)
		dash.Delete("/contacts/:id", guard, h.DeleteContact)
	}
}
