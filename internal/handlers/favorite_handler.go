package handlers

import (
	"log/slog"
	"net/http"

	"github.com/anonto42/recipe-hub/backend/internal/identity"
	"github.com/anonto42/recipe-hub/backend/internal/models"
	"github.com/anonto42/recipe-hub/backend/internal/repositories"
	"github.com/labstack/echo/v4"
)

// FavoriteHandler handles bookmarked recipes
type FavoriteHandler struct {
	favoriteRepository repositories.FavoriteRepository
	recipes            recipeGetter
	identity           identity.Provider
	log                *slog.Logger
}

// NewFavoriteHandler creates a new FavoriteHandler
func NewFavoriteHandler(favoriteRepo repositories.FavoriteRepository, recipes recipeGetter, provider identity.Provider, log *slog.Logger) *FavoriteHandler {
	return &FavoriteHandler{favoriteRepository: favoriteRepo, recipes: recipes, identity: provider, log: log}
}

// RegisterFavoriteRoutes registers favorite routes
func (h *FavoriteHandler) RegisterFavoriteRoutes(g *echo.Group) {
	g.POST("/recipes/:id/favorite", h.AddFavorite)
	g.DELETE("/recipes/:id/favorite", h.RemoveFavorite)
	g.GET("/recipes/:id/favorite", h.GetFavoriteStatus)
	g.GET("/favorites", h.GetFavorites)
}

func (h *FavoriteHandler) AddFavorite(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	recipeID, err := idParam(c, "id")
	if err != nil {
		return err
	}
	if _, err := approvedRecipe(c.Request().Context(), h.recipes, recipeID); err != nil {
		return err
	}

	favorite := &models.Favorite{UserID: userID, RecipeID: recipeID}
	if err := h.favoriteRepository.AddFavorite(c.Request().Context(), favorite); err != nil {
		return err
	}
	return respond(c, http.StatusCreated, favorite, "Recipe saved to favorites")
}

func (h *FavoriteHandler) RemoveFavorite(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	recipeID, err := idParam(c, "id")
	if err != nil {
		return err
	}
	if err := h.favoriteRepository.RemoveFavorite(c.Request().Context(), userID, recipeID); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *FavoriteHandler) GetFavoriteStatus(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	recipeID, err := idParam(c, "id")
	if err != nil {
		return err
	}
	isFavorite, err := h.favoriteRepository.IsFavorite(c.Request().Context(), userID, recipeID)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, echo.Map{"recipe_id": recipeID, "is_favorite": isFavorite}, "")
}

// GetFavorites lists the caller's favorite recipes that are still approved
func (h *FavoriteHandler) GetFavorites(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	page, limit := parsePagination(c)

	recipes, total, err := h.favoriteRepository.GetFavoriteRecipes(c.Request().Context(), userID, page, limit)
	if err != nil {
		return err
	}
	return respondPage(c, attachAuthors(c.Request().Context(), h.identity, h.log, recipes), page, limit, total)
}
