package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/anonto42/recipe-hub/backend/internal/identity"
	"github.com/anonto42/recipe-hub/backend/internal/models"
	"github.com/anonto42/recipe-hub/backend/internal/repositories"
	"github.com/labstack/echo/v4"
)

// NotificationHandler handles notification-related HTTP requests
type NotificationHandler struct {
	notificationRepository repositories.NotificationRepository
	identity               identity.Provider
	log                    *slog.Logger
}

// NewNotificationHandler creates a new NotificationHandler
func NewNotificationHandler(notifRepo repositories.NotificationRepository, provider identity.Provider, log *slog.Logger) *NotificationHandler {
	return &NotificationHandler{
		notificationRepository: notifRepo,
		identity:               provider,
		log:                    log,
	}
}

// RegisterNotificationRoutes registers notification routes
func (h *NotificationHandler) RegisterNotificationRoutes(g *echo.Group) {
	g.GET("/notifications", h.GetNotifications)
	g.GET("/notifications/grouped", h.GetGroupedNotifications)
	g.GET("/notifications/unread-count", h.GetUnreadCount)
	g.PUT("/notifications/read-all", h.MarkAllAsRead)
	g.PUT("/notifications/:id/read", h.MarkAsRead)
	g.DELETE("/notifications/:id", h.DeleteNotification)
}

// EnrichedNotification includes the sender's profile
type EnrichedNotification struct {
	models.Notification
	Sender *models.UserProfile `json:"sender"`
}

func (h *NotificationHandler) enrichNotifications(ctx context.Context, notifications []models.Notification) []EnrichedNotification {
	ids := make([]string, 0, len(notifications))
	for _, n := range notifications {
		if n.SenderID != nil {
			ids = append(ids, *n.SenderID)
		}
	}
	profiles := identity.ResolveProfiles(ctx, h.identity, ids, h.log)

	enriched := make([]EnrichedNotification, len(notifications))
	for i, n := range notifications {
		enriched[i] = EnrichedNotification{Notification: n}
		if n.SenderID != nil {
			enriched[i].Sender = profiles[*n.SenderID]
		}
	}
	return enriched
}

// GetNotifications returns paginated notifications
func (h *NotificationHandler) GetNotifications(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	page, limit := parsePagination(c)

	notifications, total, err := h.notificationRepository.GetByRecipientID(c.Request().Context(), userID, page, limit)
	if err != nil {
		return err
	}
	return respondPage(c, h.enrichNotifications(c.Request().Context(), notifications), page, limit, total)
}

// GetGroupedNotifications returns notifications grouped by time period
func (h *NotificationHandler) GetGroupedNotifications(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()

	today, yesterday, thisWeek, older, err := h.notificationRepository.GetGrouped(ctx, userID)
	if err != nil {
		return err
	}
	unreadCount, err := h.notificationRepository.GetUnreadCount(ctx, userID)
	if err != nil {
		return err
	}

	return respond(c, http.StatusOK, echo.Map{
		"notifications": echo.Map{
			"today":     h.enrichNotifications(ctx, today),
			"yesterday": h.enrichNotifications(ctx, yesterday),
			"thisWeek":  h.enrichNotifications(ctx, thisWeek),
			"older":     h.enrichNotifications(ctx, older),
		},
		"unreadCount": unreadCount,
	}, "")
}

// GetUnreadCount returns the unread notification count
func (h *NotificationHandler) GetUnreadCount(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	count, err := h.notificationRepository.GetUnreadCount(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, echo.Map{"unreadCount": count}, "")
}

// MarkAsRead marks one of the caller's notifications as read
func (h *NotificationHandler) MarkAsRead(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	if err := h.notificationRepository.MarkAsRead(c.Request().Context(), userID, id); err != nil {
		return err
	}
	return respond(c, http.StatusOK, nil, "Notification marked as read")
}

// MarkAllAsRead marks all of the caller's notifications as read
func (h *NotificationHandler) MarkAllAsRead(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	if err := h.notificationRepository.MarkAllAsRead(c.Request().Context(), userID); err != nil {
		return err
	}
	return respond(c, http.StatusOK, nil, "All notifications marked as read")
}

func (h *NotificationHandler) DeleteNotification(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	if err := h.notificationRepository.Delete(c.Request().Context(), userID, id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
