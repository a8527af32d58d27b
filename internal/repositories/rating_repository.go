package repositories

import (
	"context"
	"time"

	"github.com/anonto42/recipe-hub/backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RatingRepository defines the interface for rating data operations
type RatingRepository interface {
	Upsert(ctx context.Context, rating *models.Rating) error
	GetSummary(ctx context.Context, recipeID uint) (*models.RatingSummary, error)
	GetUserRating(ctx context.Context, recipeID uint, userID string) (*models.Rating, error)
}

// PostgresRatingRepository implements RatingRepository for PostgreSQL
type PostgresRatingRepository struct {
	db *gorm.DB
}

func NewPostgresRatingRepository(db *gorm.DB) *PostgresRatingRepository {
	return &PostgresRatingRepository{db: db}
}

// Upsert stores the user's rating, replacing an earlier one for the same recipe.
func (r *PostgresRatingRepository) Upsert(ctx context.Context, rating *models.Rating) error {
	rating.UpdatedAt = time.Now().UTC()
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "recipe_id"}, {Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(rating).Error
	return translate(err, "upsert rating")
}

func (r *PostgresRatingRepository) GetSummary(ctx context.Context, recipeID uint) (*models.RatingSummary, error) {
	var row struct {
		Average float64
		Count   int64
	}
	err := r.db.WithContext(ctx).Model(&models.Rating{}).
		Select("COALESCE(AVG(value), 0) AS average, COUNT(*) AS count").
		Where("recipe_id = ?", recipeID).
		Scan(&row).Error
	if err != nil {
		return nil, translate(err, "summarize ratings of %d", recipeID)
	}
	return &models.RatingSummary{RecipeID: recipeID, Average: row.Average, Count: row.Count}, nil
}

func (r *PostgresRatingRepository) GetUserRating(ctx context.Context, recipeID uint, userID string) (*models.Rating, error) {
	var rating models.Rating
	if err := r.db.WithContext(ctx).Where("recipe_id = ? AND user_id = ?", recipeID, userID).First(&rating).Error; err != nil {
		return nil, translate(err, "rating of %s on %d", userID, recipeID)
	}
	return &rating, nil
}
