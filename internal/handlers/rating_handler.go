package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/anonto42/recipe-hub/backend/internal/domain"
	"github.com/anonto42/recipe-hub/backend/internal/models"
	"github.com/anonto42/recipe-hub/backend/internal/repositories"
	"github.com/labstack/echo/v4"
)

// RatingHandler handles recipe ratings
type RatingHandler struct {
	ratingRepository repositories.RatingRepository
	recipes          recipeGetter
	notifier         *SocialNotifier
}

// NewRatingHandler creates a new RatingHandler
func NewRatingHandler(ratingRepo repositories.RatingRepository, recipes recipeGetter, notifier *SocialNotifier) *RatingHandler {
	return &RatingHandler{ratingRepository: ratingRepo, recipes: recipes, notifier: notifier}
}

// RegisterRatingRoutes registers rating routes
func (h *RatingHandler) RegisterRatingRoutes(g *echo.Group) {
	g.POST("/recipes/:id/ratings", h.RateRecipe)
	g.GET("/recipes/:id/ratings", h.GetRatings)
}

// RateRecipe creates or replaces the caller's 1-5 rating. Authors cannot rate their own recipes.
func (h *RatingHandler) RateRecipe(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	recipeID, err := idParam(c, "id")
	if err != nil {
		return err
	}

	var req models.RateRecipeRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	recipe, err := approvedRecipe(c.Request().Context(), h.recipes, recipeID)
	if err != nil {
		return err
	}
	if recipe.UserID == userID {
		return domain.NewValidationError("value", "you cannot rate your own recipe")
	}

	previous, err := h.ratingRepository.GetUserRating(c.Request().Context(), recipeID, userID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return err
	}

	rating := &models.Rating{RecipeID: recipeID, UserID: userID, Value: req.Value}
	if err := h.ratingRepository.Upsert(c.Request().Context(), rating); err != nil {
		return err
	}

	// Only a new or changed rating notifies the owner.
	if previous == nil || previous.Value != req.Value {
		h.notifier.notify(c.Request().Context(), userID, recipe.UserID, models.NotificationRating,
			"New rating", fmt.Sprintf("rated your recipe %q %d/5", recipe.Title, req.Value), fmt.Sprint(recipe.ID), models.RelatedRecipe)
	}

	summary, err := h.ratingRepository.GetSummary(c.Request().Context(), recipeID)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, echo.Map{"rating": rating, "summary": summary}, "Rating saved")
}

// GetRatings returns the average rating and the caller's own rating, if any
func (h *RatingHandler) GetRatings(c echo.Context) error {
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

	summary, err := h.ratingRepository.GetSummary(c.Request().Context(), recipeID)
	if err != nil {
		return err
	}

	own, err := h.ratingRepository.GetUserRating(c.Request().Context(), recipeID, userID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return err
	}
	return respond(c, http.StatusOK, echo.Map{"summary": summary, "user_rating": own}, "")
}
