package middleware

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

// statusOf reports the status a request will end with. The global error
// handler runs after the middleware chain, so a returned error decides it.
func statusOf(c *fiber.Ctx, err error) int {
	if err == nil {
		return c.Response().StatusCode()
	}
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fe.Code
	}
	return fiber.StatusInternalServerError
}

// routePattern returns the matched route (e.g. /api/books/:id), falling back
// to the raw path when no route matched.
func routePattern(c *fiber.Ctx) string {
	if r := c.Route(); r != nil && r.Path != "" {
		return r.Path
	}
	return c.Path()
}
