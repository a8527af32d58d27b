package repositories

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/anonto42/recipe-hub/backend/internal/domain"
	"github.com/anonto42/recipe-hub/backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RecipeFilter narrows recipe listings. Zero values mean "no constraint".
type RecipeFilter struct {
	Status     models.RecipeStatus
	UserID     string
	UserIDs    []string
	CategoryID uint
	Query      string
}

// RecipeRepository defines the interface for recipe data operations.
// Status and review columns are only written through Transition, UpdateContent and DeleteCascade.
type RecipeRepository interface {
	Create(ctx context.Context, recipe *models.Recipe) error
	GetByID(ctx context.Context, id uint) (*models.Recipe, error)
	List(ctx context.Context, filter RecipeFilter, page, limit int) ([]models.Recipe, int64, error)
	ListByStatus(ctx context.Context, status models.RecipeStatus, authorIDs []string, page, limit int) ([]models.Recipe, int64, error)
	UpdateContent(ctx context.Context, id uint, content models.RecipeContent) (*models.Recipe, error)
	Transition(ctx context.Context, id uint, from []models.RecipeStatus, to models.RecipeStatus, review *models.Review) (*models.Recipe, error)
	DeleteCascade(ctx context.Context, id uint, from models.RecipeStatus) (*models.Recipe, error)
}

// PostgresRecipeRepository implements RecipeRepository for PostgreSQL
type PostgresRecipeRepository struct {
	db *gorm.DB
}

// NewPostgresRecipeRepository creates a new PostgresRecipeRepository
func NewPostgresRecipeRepository(db *gorm.DB) *PostgresRecipeRepository {
	return &PostgresRecipeRepository{db: db}
}

// Create inserts the recipe together with its ingredients and instructions.
func (r *PostgresRecipeRepository) Create(ctx context.Context, recipe *models.Recipe) error {
	if err := r.db.WithContext(ctx).Create(recipe).Error; err != nil {
		return translate(err, "insert recipe")
	}
	return nil
}

func (r *PostgresRecipeRepository) GetByID(ctx context.Context, id uint) (*models.Recipe, error) {
	var recipe models.Recipe
	err := r.db.WithContext(ctx).
		Preload("Ingredients", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Preload("Instructions", func(db *gorm.DB) *gorm.DB { return db.Order("step_number ASC") }).
		First(&recipe, id).Error
	if err != nil {
		return nil, translate(err, "recipe %d", id)
	}
	return &recipe, nil
}

// List returns a page of recipes, newest first, without ingredients and instructions.
func (r *PostgresRecipeRepository) List(ctx context.Context, filter RecipeFilter, page, limit int) ([]models.Recipe, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Recipe{})
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.UserID != "" {
		q = q.Where("user_id = ?", filter.UserID)
	}
	if len(filter.UserIDs) > 0 {
		q = q.Where("user_id IN ?", filter.UserIDs)
	}
	if filter.CategoryID != 0 {
		q = q.Where("category_id = ?", filter.CategoryID)
	}
	if term := strings.TrimSpace(filter.Query); term != "" {
		like := "%" + escapeLike(term) + "%"
		q = q.Where("title ILIKE ? OR description ILIKE ?", like, like)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, translate(err, "count recipes")
	}

	var recipes []models.Recipe
	err := q.Order("created_at DESC").Order("id DESC").
		Offset(offset(page, limit)).Limit(limit).
		Find(&recipes).Error
	if err != nil {
		return nil, 0, translate(err, "list recipes")
	}
	return recipes, total, nil
}

// ListByStatus lists recipes in status written by one of authorIDs. No authors match nothing.
func (r *PostgresRecipeRepository) ListByStatus(ctx context.Context, status models.RecipeStatus, authorIDs []string, page, limit int) ([]models.Recipe, int64, error) {
	if len(authorIDs) == 0 {
		return []models.Recipe{}, 0, nil
	}
	return r.List(ctx, RecipeFilter{Status: status, UserIDs: authorIDs}, page, limit)
}

// UpdateContent applies an author edit, resets the recipe to pending and clears the review.
func (r *PostgresRecipeRepository) UpdateContent(ctx context.Context, id uint, content models.RecipeContent) (*models.Recipe, error) {
	updates := map[string]interface{}{
		"status":         models.RecipeStatusPending,
		"reviewed_by":    nil,
		"reviewed_at":    nil,
		"review_comment": nil,
		"updated_at":     time.Now().UTC(),
	}
	if content.Title != nil {
		updates["title"] = *content.Title
	}
	if content.Description != nil {
		updates["description"] = *content.Description
	}
	if content.EstimatedTime != nil {
		updates["estimated_time"] = *content.EstimatedTime
	}
	if content.Servings != nil {
		updates["servings"] = *content.Servings
	}
	if content.ImageURL != nil {
		updates["image_url"] = *content.ImageURL
	}
	if content.MediaType != nil {
		updates["media_type"] = *content.MediaType
	}
	if content.CategoryID != nil {
		updates["category_id"] = *content.CategoryID
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Recipe{}).Where("id = ?", id).Updates(updates)
		if res.Error != nil {
			return translate(res.Error, "update recipe %d", id)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("recipe %d: %w", id, domain.ErrNotFound)
		}

		if content.Ingredients != nil {
			if err := tx.Where("recipe_id = ?", id).Delete(&models.Ingredient{}).Error; err != nil {
				return translate(err, "clear ingredients of %d", id)
			}
			if len(content.Ingredients) > 0 {
				for i := range content.Ingredients {
					content.Ingredients[i].ID = 0
					content.Ingredients[i].RecipeID = id
				}
				if err := tx.Create(&content.Ingredients).Error; err != nil {
					return translate(err, "insert ingredients of %d", id)
				}
			}
		}
		if content.Instructions != nil {
			if err := tx.Where("recipe_id = ?", id).Delete(&models.Instruction{}).Error; err != nil {
				return translate(err, "clear instructions of %d", id)
			}
			if len(content.Instructions) > 0 {
				for i := range content.Instructions {
					content.Instructions[i].ID = 0
					content.Instructions[i].RecipeID = id
				}
				if err := tx.Create(&content.Instructions).Error; err != nil {
					return translate(err, "insert instructions of %d", id)
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

// Transition moves recipe id to status to, but only while its current status is
// one of from. The check and the write are a single UPDATE, so of two racing
// transitions at most one succeeds. A nil review leaves the review columns untouched.
func (r *PostgresRecipeRepository) Transition(ctx context.Context, id uint, from []models.RecipeStatus, to models.RecipeStatus, review *models.Review) (*models.Recipe, error) {
	if len(from) == 0 {
		return nil, fmt.Errorf("transition of %d without source status: %w", id, domain.ErrInvalidTransition)
	}

	updates := map[string]interface{}{
		"status":     to,
		"updated_at": time.Now().UTC(),
	}
	if review != nil {
		updates["reviewed_by"] = review.ReviewerID
		updates["reviewed_at"] = review.At
		if review.Comment != "" {
			updates["review_comment"] = review.Comment
		} else {
			updates["review_comment"] = nil
		}
	}

	var recipe models.Recipe
	res := r.db.WithContext(ctx).
		Model(&recipe).
		Clauses(clause.Returning{}).
		Where("id = ? AND status IN ?", id, from).
		Updates(updates)
	if res.Error != nil {
		return nil, translate(res.Error, "transition recipe %d to %s", id, to)
	}
	if res.RowsAffected == 0 {
		return nil, fmt.Errorf("recipe %d in status %v: %w", id, from, domain.ErrNotFound)
	}
	return &recipe, nil
}

// recipeDependents are removed together with a recipe.
var recipeDependents = []interface{}{
	&models.Ingredient{},
	&models.Instruction{},
	&models.Rating{},
	&models.Like{},
	&models.Comment{},
	&models.Favorite{},
	&models.CollectionRecipe{},
}

// DeleteCascade removes recipe id and every row that references it, provided
// the recipe is in status from. The recipe row is locked for the duration.
func (r *PostgresRecipeRepository) DeleteCascade(ctx context.Context, id uint, from models.RecipeStatus) (*models.Recipe, error) {
	var recipe models.Recipe
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ? AND status = ?", id, from).
			First(&recipe).Error
		if err != nil {
			return translate(err, "recipe %d in status %s", id, from)
		}

		for _, dependent := range recipeDependents {
			if err := tx.Where("recipe_id = ?", id).Delete(dependent).Error; err != nil {
				return translate(err, "delete %T of recipe %d", dependent, id)
			}
		}

		if err := tx.Delete(&models.Recipe{}, id).Error; err != nil {
			return translate(err, "delete recipe %d", id)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &recipe, nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
