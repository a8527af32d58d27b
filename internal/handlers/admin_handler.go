package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/anonto42/recipe-hub/backend/internal/identity"
	"github.com/anonto42/recipe-hub/backend/internal/middleware"
	"github.com/anonto42/recipe-hub/backend/internal/models"
	"github.com/anonto42/recipe-hub/backend/internal/moderation"
	"github.com/labstack/echo/v4"
)

type moderationDecider interface {
	Approve(ctx context.Context, adminID string, recipeID uint, comment string) (moderation.Outcome, error)
	Reject(ctx context.Context, adminID string, recipeID uint, comment string) (moderation.Outcome, error)
	ApproveDeletion(ctx context.Context, adminID string, recipeID uint, comment string) (moderation.Outcome, error)
	RejectDeletion(ctx context.Context, adminID string, recipeID uint, comment string) (moderation.Outcome, error)
	ListPending(ctx context.Context, organizationID, adminID string, page, limit int) ([]models.Recipe, int64, error)
	ListDeletionRequests(ctx context.Context, organizationID, adminID string, page, limit int) ([]models.Recipe, int64, error)
}

// AdminHandler serves the moderation queue. Routes are mounted behind RequireAdmin.
type AdminHandler struct {
	moderation moderationDecider
	identity   identity.Provider
	log        *slog.Logger
}

// NewAdminHandler creates a new AdminHandler
func NewAdminHandler(moderation moderationDecider, provider identity.Provider, log *slog.Logger) *AdminHandler {
	return &AdminHandler{moderation: moderation, identity: provider, log: log}
}

// RegisterAdminRoutes registers admin routes on a group mounted at /admin/:userId
func (h *AdminHandler) RegisterAdminRoutes(g *echo.Group) {
	g.GET("/pending", h.ListPending)
	g.GET("/deletion-requests", h.ListDeletionRequests)
	g.POST("/approve/:recipeId", h.Approve)
	g.POST("/reject/:recipeId", h.Reject)
	g.POST("/approve-deletion/:recipeId", h.ApproveDeletion)
	g.POST("/reject-deletion/:recipeId", h.RejectDeletion)
}

func (h *AdminHandler) ListPending(c echo.Context) error {
	return h.list(c, h.moderation.ListPending)
}

func (h *AdminHandler) ListDeletionRequests(c echo.Context) error {
	return h.list(c, h.moderation.ListDeletionRequests)
}

func (h *AdminHandler) Approve(c echo.Context) error {
	return h.decide(c, h.moderation.Approve, "Recipe approved")
}

func (h *AdminHandler) Reject(c echo.Context) error {
	return h.decide(c, h.moderation.Reject, "Recipe rejected")
}

func (h *AdminHandler) RejectDeletion(c echo.Context) error {
	return h.decide(c, h.moderation.RejectDeletion, "Deletion request rejected, recipe restored")
}

// ApproveDeletion removes the recipe for good. The response carries the removed recipe.
func (h *AdminHandler) ApproveDeletion(c echo.Context) error {
	return h.decide(c, h.moderation.ApproveDeletion, "Recipe deleted")
}

type decideFunc func(ctx context.Context, adminID string, recipeID uint, comment string) (moderation.Outcome, error)

func (h *AdminHandler) decide(c echo.Context, fn decideFunc, message string) error {
	recipeID, err := idParam(c, "recipeId")
	if err != nil {
		return err
	}
	adminID, err := currentUserID(c)
	if err != nil {
		return err
	}

	var req models.ModerationDecisionRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	outcome, err := fn(c.Request().Context(), adminID, recipeID, req.Comment)
	if err != nil {
		return err
	}
	if outcome.Notification.Failed() {
		h.log.WarnContext(c.Request().Context(), "decision notification not delivered",
			slog.Uint64("recipe_id", uint64(recipeID)), slog.Any("error", outcome.Notification.Err))
	}
	return respond(c, http.StatusOK, outcome.Recipe, message)
}

type listFunc func(ctx context.Context, organizationID, adminID string, page, limit int) ([]models.Recipe, int64, error)

// list shows the queue of the organization RequireAdmin resolved for the caller.
func (h *AdminHandler) list(c echo.Context, fn listFunc) error {
	adminID, err := currentUserID(c)
	if err != nil {
		return err
	}
	organizationID := middleware.OrganizationID(c)
	if organizationID == "" {
		return echo.NewHTTPError(http.StatusForbidden, "Admin access required")
	}

	page, limit := parsePagination(c)
	recipes, total, err := fn(c.Request().Context(), organizationID, adminID, page, limit)
	if err != nil {
		return err
	}
	return respondPage(c, attachAuthors(c.Request().Context(), h.identity, h.log, recipes), page, limit, total)
}
