package handlers

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/anonto42/recipe-hub/backend/internal/domain"
	"github.com/anonto42/recipe-hub/backend/internal/identity"
	"github.com/anonto42/recipe-hub/backend/internal/models"
	"github.com/anonto42/recipe-hub/backend/internal/repositories"
	"github.com/labstack/echo/v4"
)

const (
	maxSearchQueryLength = 100
	defaultHistoryLimit  = 20
)

// SearchHandler searches approved recipes and keeps the caller's search history
type SearchHandler struct {
	recipes  recipeReader
	history  repositories.SearchHistoryRepository
	identity identity.Provider
	log      *slog.Logger
}

// NewSearchHandler creates a new SearchHandler
func NewSearchHandler(recipes recipeReader, history repositories.SearchHistoryRepository, provider identity.Provider, log *slog.Logger) *SearchHandler {
	return &SearchHandler{recipes: recipes, history: history, identity: provider, log: log}
}

// RegisterSearchRoutes registers search routes
func (h *SearchHandler) RegisterSearchRoutes(g *echo.Group) {
	g.GET("/search", h.Search)
	g.GET("/search/history", h.GetHistory)
	g.DELETE("/search/history", h.ClearHistory)
	g.DELETE("/search/history/:id", h.DeleteHistoryEntry)
}

// Search matches ?q against the title and description of approved recipes.
// The first page of a search is recorded in the caller's history.
func (h *SearchHandler) Search(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	query := strings.TrimSpace(c.QueryParam("q"))
	if query == "" {
		return domain.NewValidationError("q", "is required")
	}
	if len(query) > maxSearchQueryLength {
		return domain.NewValidationError("q", "must have at most 100 characters")
	}
	page, limit := parsePagination(c)
	ctx := c.Request().Context()

	recipes, total, err := h.recipes.List(ctx, repositories.RecipeFilter{Status: models.RecipeStatusApproved, Query: query}, page, limit)
	if err != nil {
		return err
	}

	if page == 1 {
		entry := &models.SearchHistory{UserID: userID, Query: query, ResultCount: total}
		if err := h.history.Record(ctx, entry); err != nil {
			h.log.WarnContext(ctx, "search history not recorded", slog.String("user_id", userID), slog.Any("error", err))
		}
	}

	return respondPage(c, attachAuthors(ctx, h.identity, h.log, recipes), page, limit, total)
}

// GetHistory returns the caller's most recent searches
func (h *SearchHandler) GetHistory(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	if limit < 1 || limit > maxPageLimit {
		limit = defaultHistoryLimit
	}

	history, err := h.history.GetRecent(c.Request().Context(), userID, int64(limit))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, history, "")
}

func (h *SearchHandler) ClearHistory(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	deleted, err := h.history.Clear(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, echo.Map{"deleted": deleted}, "Search history cleared")
}

func (h *SearchHandler) DeleteHistoryEntry(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	if err := h.history.DeleteEntry(c.Request().Context(), userID, c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
