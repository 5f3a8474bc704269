package auth

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// NormalizeEmail lowercases and trims an email address. All ownership and
// role checks run against the normalized form.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// IsAdmin reports whether the normalized email carries the admin domain
// suffix. The suffix convention is the institution's only role signal; the
// identity provider is expected to verify domain ownership.
func IsAdmin(email, adminDomain string) bool {
	return strings.HasSuffix(NormalizeEmail(email), adminDomain)
}

// RequireAdmin rejects requests whose authenticated principal does not carry
// the admin domain suffix.
func RequireAdmin(adminDomain string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !IsAdmin(PrincipalEmail(c), adminDomain) {
				return echo.NewHTTPError(http.StatusForbidden, "Admin access required.")
			}
			return next(c)
		}
	}
}
