package handlers

import (
	"fmt"

	"warlords/internal/services"
	"warlords/internal/session"

	"github.com/gofiber/fiber/v2"
)

// PageHandler serves the portal's page routes. Rendering is intentionally
// minimal; the pages exist to exercise the route guard and the
// resolve-identity-or-redirect flow that real templates would sit on.
type PageHandler struct {
	authService *services.AuthService
}

// NewPageHandler creates a new PageHandler.
func NewPageHandler(authService *services.AuthService) *PageHandler {
	return &PageHandler{
		authService: authService,
	}
}

// RegisterRoutes registers the page routes with the Fiber app.
func (h *PageHandler) RegisterRoutes(app *fiber.App) {
	app.Get("/", h.HandleLanding)
	app.Get("/login", h.HandleLoginPage)
	app.Get("/register", h.HandleRegisterPage)
	app.Get("/dashboard", h.HandleDashboard)
	app.Get("/dashboard/security", h.HandleDashboard)
}

// HandleLanding serves the public landing page.
func (h *PageHandler) HandleLanding(c *fiber.Ctx) error {
	return c.SendString("Legend of Warlords")
}

// HandleLoginPage serves the login page.
func (h *PageHandler) HandleLoginPage(c *fiber.Ctx) error {
	return c.SendString("Sign in")
}

// HandleRegisterPage serves the registration page.
func (h *PageHandler) HandleRegisterPage(c *fiber.Ctx) error {
	return c.SendString("Create account")
}

// HandleDashboard serves the authenticated dashboard. The route guard has
// already checked cookie presence; this is where the cookie's contents are
// actually validated, so a tampered or expired token still ends at login.
func (h *PageHandler) HandleDashboard(c *fiber.Ctx) error {
	sess := h.authService.CurrentUser(c.Cookies(session.CookieName))
	if sess == nil {
		return c.Redirect("/login", fiber.StatusFound)
	}
	return c.SendString(fmt.Sprintf("Dashboard: %s", sess.Username))
}
