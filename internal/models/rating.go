package models

import "time"

// Rating is a 1-5 score a user gives a recipe; one per user and recipe.
type Rating struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	RecipeID  uint      `json:"recipe_id" gorm:"not null;uniqueIndex:idx_rating_recipe_user"`
	UserID    string    `json:"user_id" gorm:"size:128;not null;uniqueIndex:idx_rating_recipe_user"`
	Value     int       `json:"value" gorm:"not null"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// RateRecipeRequest defines the request body for rating a recipe
type RateRecipeRequest struct {
	Value int `json:"value" validate:"required,min=1,max=5"`
}

// RatingSummary aggregates the ratings of one recipe.
type RatingSummary struct {
	RecipeID uint    `json:"recipe_id"`
	Average  float64 `json:"average"`
	Count    int64   `json:"count"`
}
