package handlers

import (
	"fmt"
	"net/http"

	"github.com/anonto42/recipe-hub/backend/internal/models"
	"github.com/anonto42/recipe-hub/backend/internal/repositories"
	"github.com/labstack/echo/v4"
)

// LikeHandler handles HTTP requests related to likes
type LikeHandler struct {
	likeRepository repositories.LikeRepository
	recipes        recipeGetter
	notifier       *SocialNotifier
}

// NewLikeHandler creates a new LikeHandler
func NewLikeHandler(likeRepo repositories.LikeRepository, recipes recipeGetter, notifier *SocialNotifier) *LikeHandler {
	return &LikeHandler{
		likeRepository: likeRepo,
		recipes:        recipes,
		notifier:       notifier,
	}
}

// RegisterLikeRoutes registers like-related routes
func (h *LikeHandler) RegisterLikeRoutes(g *echo.Group) {
	g.POST("/recipes/:id/likes", h.LikeRecipe)
	g.DELETE("/recipes/:id/likes", h.UnlikeRecipe)
	g.GET("/recipes/:id/likes/count", h.GetLikesCount)
	g.GET("/recipes/:id/likes/status", h.GetLikeStatus)
}

// LikeRecipe handles liking a recipe
func (h *LikeHandler) LikeRecipe(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	recipeID, err := idParam(c, "id")
	if err != nil {
		return err
	}

	recipe, err := approvedRecipe(c.Request().Context(), h.recipes, recipeID)
	if err != nil {
		return err
	}

	like := &models.Like{RecipeID: recipeID, UserID: userID}
	if err := h.likeRepository.CreateLike(c.Request().Context(), like); err != nil {
		return err
	}

	h.notifier.notify(c.Request().Context(), userID, recipe.UserID, models.NotificationLike,
		"New like", fmt.Sprintf("liked your recipe %q", recipe.Title), fmt.Sprint(recipe.ID), models.RelatedRecipe)

	return respond(c, http.StatusCreated, like, "Recipe liked")
}

// UnlikeRecipe handles unliking a recipe
func (h *LikeHandler) UnlikeRecipe(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	recipeID, err := idParam(c, "id")
	if err != nil {
		return err
	}

	if err := h.likeRepository.DeleteLike(c.Request().Context(), recipeID, userID); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// GetLikesCount returns the number of likes of a recipe
func (h *LikeHandler) GetLikesCount(c echo.Context) error {
	recipeID, err := idParam(c, "id")
	if err != nil {
		return err
	}
	if _, err := approvedRecipe(c.Request().Context(), h.recipes, recipeID); err != nil {
		return err
	}

	count, err := h.likeRepository.GetLikesCountByRecipeID(c.Request().Context(), recipeID)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, echo.Map{"recipe_id": recipeID, "likes_count": count}, "")
}

// GetLikeStatus reports whether the caller liked a recipe
func (h *LikeHandler) GetLikeStatus(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	recipeID, err := idParam(c, "id")
	if err != nil {
		return err
	}

	hasLiked, err := h.likeRepository.HasUserLikedRecipe(c.Request().Context(), recipeID, userID)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, echo.Map{"recipe_id": recipeID, "has_liked": hasLiked}, "")
}
