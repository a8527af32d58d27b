package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

type pinger interface {
	Ping(ctx context.Context) error
}

// HealthCheck reports whether the databases answer within two seconds.
func HealthCheck(db pinger) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
		defer cancel()

		if err := db.Ping(ctx); err != nil {
			return c.JSON(http.StatusServiceUnavailable, Envelope{
				Error: "database unavailable",
				Data:  map[string]string{"status": "unhealthy", "service": "recipe-hub"},
			})
		}
		return respond(c, http.StatusOK, map[string]string{"status": "healthy", "service": "recipe-hub"}, "")
	}
}
