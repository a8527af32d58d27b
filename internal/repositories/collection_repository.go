package repositories

import (
	"context"
	"fmt"

	"github.com/anonto42/recipe-hub/backend/internal/domain"
	"github.com/anonto42/recipe-hub/backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CollectionRepository defines the interface for recipe collections
type CollectionRepository interface {
	Create(ctx context.Context, collection *models.Collection) error
	GetByID(ctx context.Context, id uint) (*models.Collection, error)
	ListByUser(ctx context.Context, userID string, publicOnly bool) ([]models.Collection, error)
	Update(ctx context.Context, collection *models.Collection) error
	Delete(ctx context.Context, id uint) error
	AddRecipe(ctx context.Context, collectionID, recipeID uint) error
	RemoveRecipe(ctx context.Context, collectionID, recipeID uint) error
	ListRecipes(ctx context.Context, collectionID uint, page, limit int) ([]models.Recipe, int64, error)
}

type PostgresCollectionRepository struct {
	db *gorm.DB
}

func NewPostgresCollectionRepository(db *gorm.DB) *PostgresCollectionRepository {
	return &PostgresCollectionRepository{db: db}
}

func (r *PostgresCollectionRepository) Create(ctx context.Context, collection *models.Collection) error {
	return translate(r.db.WithContext(ctx).Create(collection).Error, "insert collection")
}

func (r *PostgresCollectionRepository) GetByID(ctx context.Context, id uint) (*models.Collection, error) {
	var collection models.Collection
	if err := r.db.WithContext(ctx).First(&collection, id).Error; err != nil {
		return nil, translate(err, "collection %d", id)
	}
	if err := r.db.WithContext(ctx).Model(&models.CollectionRecipe{}).
		Where("collection_id = ?", id).Count(&collection.RecipeCount).Error; err != nil {
		return nil, translate(err, "count recipes of collection %d", id)
	}
	return &collection, nil
}

func (r *PostgresCollectionRepository) ListByUser(ctx context.Context, userID string, publicOnly bool) ([]models.Collection, error) {
	q := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if publicOnly {
		q = q.Where("is_public = ?", true)
	}

	var collections []models.Collection
	if err := q.Order("created_at DESC").Find(&collections).Error; err != nil {
		return nil, translate(err, "list collections of %s", userID)
	}
	if len(collections) == 0 {
		return collections, nil
	}

	ids := make([]uint, len(collections))
	for i, c := range collections {
		ids[i] = c.ID
	}
	var counts []struct {
		CollectionID uint
		Total        int64
	}
	err := r.db.WithContext(ctx).Model(&models.CollectionRecipe{}).
		Select("collection_id, COUNT(*) AS total").
		Where("collection_id IN ?", ids).
		Group("collection_id").
		Scan(&counts).Error
	if err != nil {
		return nil, translate(err, "count collection recipes")
	}
	byID := make(map[uint]int64, len(counts))
	for _, c := range counts {
		byID[c.CollectionID] = c.Total
	}
	for i := range collections {
		collections[i].RecipeCount = byID[collections[i].ID]
	}
	return collections, nil
}

func (r *PostgresCollectionRepository) Update(ctx context.Context, collection *models.Collection) error {
	return translate(r.db.WithContext(ctx).Save(collection).Error, "update collection %d", collection.ID)
}

// Delete removes the collection and its recipe links.
func (r *PostgresCollectionRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("collection_id = ?", id).Delete(&models.CollectionRecipe{}).Error; err != nil {
			return translate(err, "delete links of collection %d", id)
		}
		res := tx.Delete(&models.Collection{}, id)
		if res.Error != nil {
			return translate(res.Error, "delete collection %d", id)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("collection %d: %w", id, domain.ErrNotFound)
		}
		return nil
	})
}

// AddRecipe links a recipe into a collection; adding it twice is a no-op.
func (r *PostgresCollectionRepository) AddRecipe(ctx context.Context, collectionID, recipeID uint) error {
	link := &models.CollectionRecipe{CollectionID: collectionID, RecipeID: recipeID}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(link).Error
	return translate(err, "add recipe %d to collection %d", recipeID, collectionID)
}

func (r *PostgresCollectionRepository) RemoveRecipe(ctx context.Context, collectionID, recipeID uint) error {
	res := r.db.WithContext(ctx).
		Where("collection_id = ? AND recipe_id = ?", collectionID, recipeID).
		Delete(&models.CollectionRecipe{})
	if res.Error != nil {
		return translate(res.Error, "remove recipe %d from collection %d", recipeID, collectionID)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("recipe %d not in collection %d: %w", recipeID, collectionID, domain.ErrNotFound)
	}
	return nil
}

func (r *PostgresCollectionRepository) ListRecipes(ctx context.Context, collectionID uint, page, limit int) ([]models.Recipe, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Recipe{}).
		Joins("JOIN collection_recipes ON collection_recipes.recipe_id = recipes.id").
		Where("collection_recipes.collection_id = ?", collectionID)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, translate(err, "count recipes of collection %d", collectionID)
	}

	var recipes []models.Recipe
	err := q.Order("collection_recipes.added_at DESC").
		Offset(offset(page, limit)).Limit(limit).
		Find(&recipes).Error
	if err != nil {
		return nil, 0, translate(err, "list recipes of collection %d", collectionID)
	}
	return recipes, total, nil
}
