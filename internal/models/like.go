package models

import "time"

// Like represents a like on a recipe
type Like struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	RecipeID  uint      `json:"recipe_id" gorm:"not null;uniqueIndex:idx_like_recipe_user"`
	UserID    string    `json:"user_id" gorm:"size:128;not null;uniqueIndex:idx_like_recipe_user;index"`
	CreatedAt time.Time `json:"created_at"`
}
