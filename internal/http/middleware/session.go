package middleware

import (
	"github.com/gofiber/fiber/v2"

	"bookshelf/internal/auth"
)

// Session moves a bearer token from the Authorization header onto the user
// context, where auth.IdentityProvider implementations look for it. Requests
// without a token pass through; the service decides what needs a session.
func Session() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if tok, ok := auth.BearerToken(c.Get(fiber.HeaderAuthorization)); ok {
			c.SetUserContext(auth.WithToken(c.UserContext(), tok))
		}
		return c.Next()
	}
}
