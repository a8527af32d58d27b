package models

import "time"

// Favorite represents a recipe bookmarked by a user
type Favorite struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    string    `json:"user_id" gorm:"size:128;index;uniqueIndex:idx_user_recipe_favorite"`
	RecipeID  uint      `json:"recipe_id" gorm:"index;uniqueIndex:idx_user_recipe_favorite"`
	CreatedAt time.Time `json:"created_at"`
}
