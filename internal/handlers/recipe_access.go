package handlers

import (
	"context"
	"fmt"

	"github.com/anonto42/recipe-hub/backend/internal/domain"
	"github.com/anonto42/recipe-hub/backend/internal/models"
)

type recipeGetter interface {
	GetByID(ctx context.Context, id uint) (*models.Recipe, error)
}

// approvedRecipe loads a recipe others may interact with. Unapproved recipes
// read as not found.
func approvedRecipe(ctx context.Context, recipes recipeGetter, id uint) (*models.Recipe, error) {
	recipe, err := recipes.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if recipe.Status != models.RecipeStatusApproved {
		return nil, fmt.Errorf("recipe %d is %s: %w", id, recipe.Status, domain.ErrNotFound)
	}
	return recipe, nil
}
