package site

import "github.com/gofiber/fiber/v2"

// Handler serves the catalog to the marketing pages.
func Handler(c *Catalog) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		ctx.Set(fiber.HeaderCacheControl, "public, max-age=300")
		return ctx.JSON(c)
	}
}
