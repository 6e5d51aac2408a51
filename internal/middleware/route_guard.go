package middleware

import (
	"net/url"
	"strings"

	"warlords/internal/session"

	"github.com/gofiber/fiber/v2"
)

var (
	publicPaths = []string{"/", "/login", "/register"}
	authPaths   = []string{"/login", "/register"}

	staticSuffixes = []string{".svg", ".png", ".jpg", ".jpeg", ".gif", ".webp", ".ico", ".css", ".js"}
)

func matchesPath(pathname string, paths []string) bool {
	for _, p := range paths {
		if pathname == p || (p != "/" && strings.HasPrefix(pathname, p+"/")) {
			return true
		}
	}
	return false
}

func isStaticAsset(pathname string) bool {
	for _, suffix := range staticSuffixes {
		if strings.HasSuffix(pathname, suffix) {
			return true
		}
	}
	return false
}

// RouteGuard is the coarse pre-check run on every page request. It inspects
// only the presence of the session cookie, never its contents: a request
// with a cookie on an auth page goes to the dashboard, a request without
// one on a protected page goes to login with a callbackUrl. True session
// validity is re-checked by the auth service on the page itself. API and
// health routes answer with statuses, not redirects, so they are skipped.
func RouteGuard() fiber.Handler {
	return func(c *fiber.Ctx) error {
		pathname := c.Path()
		if isStaticAsset(pathname) || strings.HasPrefix(pathname, "/api/") || pathname == "/health" {
			return c.Next()
		}

		hasSession := c.Cookies(session.CookieName) != ""

		if hasSession && matchesPath(pathname, authPaths) {
			return c.Redirect("/dashboard", fiber.StatusFound)
		}

		if matchesPath(pathname, publicPaths) {
			return c.Next()
		}

		if !hasSession {
			return c.Redirect("/login?callbackUrl="+url.QueryEscape(pathname), fiber.StatusFound)
		}

		return c.Next()
	}
}
