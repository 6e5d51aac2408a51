package middleware

import (
	"warlords/internal/services"
	"warlords/internal/session"

	"github.com/gofiber/fiber/v2"
)

// SessionRequired is a Fiber middleware that fully validates the encrypted
// session cookie and rejects the request when it is missing or invalid.
// Unlike RouteGuard this opens the cookie, so a tampered or expired token
// is treated the same as no token at all.
func SessionRequired(authService *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess := authService.CurrentUser(c.Cookies(session.CookieName))
		if sess == nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": services.ErrUnauthorized.Error(),
			})
		}

		// Store identity in Fiber context for subsequent handlers
		c.Locals("user_id", sess.UserID)
		c.Locals("username", sess.Username)
		c.Locals("email", sess.Email)

		return c.Next()
	}
}

// CallerID returns the authenticated user id stored by SessionRequired, or
// an empty string when the request is anonymous.
func CallerID(c *fiber.Ctx) string {
	id, _ := c.Locals("user_id").(string)
	return id
}
