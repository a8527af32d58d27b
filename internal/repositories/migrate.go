package repositories

import (
	"fmt"

	"github.com/anonto42/recipe-hub/backend/internal/models"
	"gorm.io/gorm"
)

// AutoMigrate creates or updates every relational table.
func AutoMigrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.Category{},
		&models.Recipe{},
		&models.Ingredient{},
		&models.Instruction{},
		&models.Rating{},
		&models.Like{},
		&models.Comment{},
		&models.Follow{},
		&models.Favorite{},
		&models.Collection{},
		&models.CollectionRecipe{},
		&models.Notification{},
	)
	if err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}
