package repositories

import (
	"context"
	"fmt"

	"github.com/anonto42/recipe-hub/backend/internal/domain"
	"github.com/anonto42/recipe-hub/backend/internal/models"
	"gorm.io/gorm"
)

// LikeRepository defines the interface for like data operations
type LikeRepository interface {
	CreateLike(ctx context.Context, like *models.Like) error
	DeleteLike(ctx context.Context, recipeID uint, userID string) error
	GetLikesCountByRecipeID(ctx context.Context, recipeID uint) (int64, error)
	HasUserLikedRecipe(ctx context.Context, recipeID uint, userID string) (bool, error)
}

// PostgresLikeRepository implements LikeRepository for PostgreSQL
type PostgresLikeRepository struct {
	db *gorm.DB
}

// NewPostgresLikeRepository creates a new PostgresLikeRepository
func NewPostgresLikeRepository(db *gorm.DB) *PostgresLikeRepository {
	return &PostgresLikeRepository{db: db}
}

// CreateLike returns domain.ErrAlreadyExists when the user already liked the recipe.
func (r *PostgresLikeRepository) CreateLike(ctx context.Context, like *models.Like) error {
	return translate(r.db.WithContext(ctx).Create(like).Error, "insert like")
}

func (r *PostgresLikeRepository) DeleteLike(ctx context.Context, recipeID uint, userID string) error {
	res := r.db.WithContext(ctx).Where("recipe_id = ? AND user_id = ?", recipeID, userID).Delete(&models.Like{})
	if res.Error != nil {
		return translate(res.Error, "delete like")
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("like not found: %w", domain.ErrNotFound)
	}
	return nil
}

func (r *PostgresLikeRepository) GetLikesCountByRecipeID(ctx context.Context, recipeID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Like{}).Where("recipe_id = ?", recipeID).Count(&count).Error
	return count, translate(err, "count likes")
}

func (r *PostgresLikeRepository) HasUserLikedRecipe(ctx context.Context, recipeID uint, userID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Like{}).Where("recipe_id = ? AND user_id = ?", recipeID, userID).Count(&count).Error
	if err != nil {
		return false, translate(err, "check like")
	}
	return count > 0, nil
}
