package repositories

import (
	"context"
	"fmt"

	"github.com/anonto42/recipe-hub/backend/internal/domain"
	"github.com/anonto42/recipe-hub/backend/internal/models"
	"gorm.io/gorm"
)

// FavoriteRepository defines the interface for favorite recipe operations
type FavoriteRepository interface {
	AddFavorite(ctx context.Context, favorite *models.Favorite) error
	RemoveFavorite(ctx context.Context, userID string, recipeID uint) error
	IsFavorite(ctx context.Context, userID string, recipeID uint) (bool, error)
	GetFavoriteRecipes(ctx context.Context, userID string, page, limit int) ([]models.Recipe, int64, error)
	GetFavoriteIDs(ctx context.Context, userID string, recipeIDs []uint) (map[uint]bool, error)
}

// PostgresFavoriteRepository implements FavoriteRepository
type PostgresFavoriteRepository struct {
	db *gorm.DB
}

func NewPostgresFavoriteRepository(db *gorm.DB) *PostgresFavoriteRepository {
	return &PostgresFavoriteRepository{db: db}
}

func (r *PostgresFavoriteRepository) AddFavorite(ctx context.Context, favorite *models.Favorite) error {
	return translate(r.db.WithContext(ctx).Create(favorite).Error, "insert favorite")
}

func (r *PostgresFavoriteRepository) RemoveFavorite(ctx context.Context, userID string, recipeID uint) error {
	res := r.db.WithContext(ctx).Where("user_id = ? AND recipe_id = ?", userID, recipeID).Delete(&models.Favorite{})
	if res.Error != nil {
		return translate(res.Error, "delete favorite")
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("favorite not found: %w", domain.ErrNotFound)
	}
	return nil
}

func (r *PostgresFavoriteRepository) IsFavorite(ctx context.Context, userID string, recipeID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Favorite{}).Where("user_id = ? AND recipe_id = ?", userID, recipeID).Count(&count).Error
	return count > 0, translate(err, "check favorite")
}

// GetFavoriteRecipes returns the user's favorites that are still publicly visible, most recently saved first.
func (r *PostgresFavoriteRepository) GetFavoriteRecipes(ctx context.Context, userID string, page, limit int) ([]models.Recipe, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Recipe{}).
		Joins("JOIN favorites ON favorites.recipe_id = recipes.id").
		Where("favorites.user_id = ? AND recipes.status = ?", userID, models.RecipeStatusApproved)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, translate(err, "count favorites")
	}

	var recipes []models.Recipe
	err := q.Order("favorites.created_at DESC").
		Offset(offset(page, limit)).Limit(limit).
		Find(&recipes).Error
	if err != nil {
		return nil, 0, translate(err, "list favorites")
	}
	return recipes, total, nil
}

func (r *PostgresFavoriteRepository) GetFavoriteIDs(ctx context.Context, userID string, recipeIDs []uint) (map[uint]bool, error) {
	result := make(map[uint]bool)
	if len(recipeIDs) == 0 {
		return result, nil
	}
	var favorites []models.Favorite
	err := r.db.WithContext(ctx).Where("user_id = ? AND recipe_id IN ?", userID, recipeIDs).Find(&favorites).Error
	if err != nil {
		return nil, translate(err, "lookup favorites")
	}
	for _, f := range favorites {
		result[f.RecipeID] = true
	}
	return result, nil
}
