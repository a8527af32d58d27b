package middleware

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/anonto42/recipe-hub/backend/internal/domain"
	"github.com/anonto42/recipe-hub/backend/internal/identity"
	"github.com/labstack/echo/v4"
)

// RequireAdmin allows the request only when the authenticated user holds the
// admin role in its primary organization. Routes carrying a :userId parameter
// must be called by that same user. Must run after Authenticate.
func RequireAdmin(provider identity.Provider, log *slog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			userID := UserID(c)
			if userID == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
			}
			if pathUser := c.Param("userId"); pathUser != "" && pathUser != userID {
				return echo.NewHTTPError(http.StatusForbidden, "Token does not belong to this admin")
			}

			membership, err := identity.PrimaryMembership(c.Request().Context(), provider, userID)
			if err != nil {
				if errors.Is(err, domain.ErrNotFound) {
					return echo.NewHTTPError(http.StatusForbidden, "Admin access required")
				}
				log.ErrorContext(c.Request().Context(), "resolve admin role", slog.String("user_id", userID), slog.Any("error", err))
				return echo.NewHTTPError(http.StatusForbidden, "Unable to verify admin role")
			}
			if !identity.IsAdminRole(membership.Role) {
				return echo.NewHTTPError(http.StatusForbidden, "Admin access required")
			}

			c.Set(OrganizationIDKey, membership.OrganizationID)
			return next(c)
		}
	}
}
