package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// Context keys set by the authentication and admin middleware.
const (
	UserIDKey         = "userID"
	OrganizationIDKey = "organizationID"
)

// TokenVerifier validates a bearer token and returns the user id it was issued for.
type TokenVerifier interface {
	VerifyToken(ctx context.Context, token string) (string, error)
}

// Authenticate rejects requests without a valid bearer token and stores the
// caller's user id under UserIDKey.
func Authenticate(verifier TokenVerifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "Missing Authorization header")
			}

			parts := strings.Fields(authHeader)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				return echo.NewHTTPError(http.StatusUnauthorized, "Authorization header must be in Bearer format")
			}

			userID, err := verifier.VerifyToken(c.Request().Context(), parts[1])
			if err != nil || userID == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid or expired token")
			}

			c.Set(UserIDKey, userID)
			return next(c)
		}
	}
}

// UserID returns the authenticated user id, or "" outside an authenticated route.
func UserID(c echo.Context) string {
	uid, _ := c.Get(UserIDKey).(string)
	return uid
}

// OrganizationID returns the organization RequireAdmin resolved for the caller,
// or "" when RequireAdmin has not run.
func OrganizationID(c echo.Context) string {
	org, _ := c.Get(OrganizationIDKey).(string)
	return org
}
