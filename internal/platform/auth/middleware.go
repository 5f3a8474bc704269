package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

type contextKey string

// PrincipalEmailKey is the context key carrying the authenticated email.
const PrincipalEmailKey contextKey = "principal_email"

// JWTMiddleware extracts and validates the bearer token, placing the caller's
// email in both the echo and request contexts. The API derives role from the
// email's domain suffix; no other identity attributes are consumed.
func JWTMiddleware(secret []byte) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get("Authorization")
			if header == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
			}

			parts := strings.SplitN(header, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header")
			}

			email, err := ParseToken(secret, parts[1])
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token")
			}

			setPrincipal(c, NormalizeEmail(email))
			return next(c)
		}
	}
}

// DevAuthMiddleware trusts the X-User-Email header. Development only.
func DevAuthMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if email := c.Request().Header.Get("X-User-Email"); email != "" {
				setPrincipal(c, NormalizeEmail(email))
			}
			return next(c)
		}
	}
}

func setPrincipal(c echo.Context, email string) {
	c.Set(string(PrincipalEmailKey), email)
	ctx := context.WithValue(c.Request().Context(), PrincipalEmailKey, email)
	c.SetRequest(c.Request().WithContext(ctx))
}

// PrincipalEmail returns the authenticated caller's email, or "".
func PrincipalEmail(c echo.Context) string {
	email, _ := c.Get(string(PrincipalEmailKey)).(string)
	return email
}
