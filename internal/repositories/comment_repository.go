package repositories

import (
	"context"
	"fmt"

	"github.com/anonto42/recipe-hub/backend/internal/domain"
	"github.com/anonto42/recipe-hub/backend/internal/models"
	"gorm.io/gorm"
)

// CommentRepository defines the interface for comment data operations
type CommentRepository interface {
	CreateComment(ctx context.Context, comment *models.Comment) error
	GetCommentByID(ctx context.Context, id uint) (*models.Comment, error)
	GetCommentsByRecipeID(ctx context.Context, recipeID uint, page, limit int) ([]models.Comment, int64, error)
	UpdateComment(ctx context.Context, comment *models.Comment) error
	DeleteComment(ctx context.Context, id uint) error
}

// PostgresCommentRepository implements CommentRepository for PostgreSQL
type PostgresCommentRepository struct {
	db *gorm.DB
}

// NewPostgresCommentRepository creates a new PostgresCommentRepository
func NewPostgresCommentRepository(db *gorm.DB) *PostgresCommentRepository {
	return &PostgresCommentRepository{db: db}
}

func (r *PostgresCommentRepository) CreateComment(ctx context.Context, comment *models.Comment) error {
	return translate(r.db.WithContext(ctx).Create(comment).Error, "insert comment")
}

func (r *PostgresCommentRepository) GetCommentByID(ctx context.Context, id uint) (*models.Comment, error) {
	var comment models.Comment
	if err := r.db.WithContext(ctx).First(&comment, id).Error; err != nil {
		return nil, translate(err, "comment %d", id)
	}
	return &comment, nil
}

// GetCommentsByRecipeID returns a page of comments, oldest first.
func (r *PostgresCommentRepository) GetCommentsByRecipeID(ctx context.Context, recipeID uint, page, limit int) ([]models.Comment, int64, error) {
	db := r.db.WithContext(ctx)

	var total int64
	if err := db.Model(&models.Comment{}).Where("recipe_id = ?", recipeID).Count(&total).Error; err != nil {
		return nil, 0, translate(err, "count comments")
	}

	var comments []models.Comment
	err := db.Where("recipe_id = ?", recipeID).
		Order("created_at ASC").
		Offset(offset(page, limit)).Limit(limit).
		Find(&comments).Error
	if err != nil {
		return nil, 0, translate(err, "list comments")
	}
	return comments, total, nil
}

func (r *PostgresCommentRepository) UpdateComment(ctx context.Context, comment *models.Comment) error {
	return translate(r.db.WithContext(ctx).Save(comment).Error, "update comment %d", comment.ID)
}

func (r *PostgresCommentRepository) DeleteComment(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.Comment{}, id)
	if res.Error != nil {
		return translate(res.Error, "delete comment %d", id)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("comment %d: %w", id, domain.ErrNotFound)
	}
	return nil
}
