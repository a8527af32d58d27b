package models

import "time"

// Collection is a named, user-owned list of recipes
type Collection struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	UserID      string    `json:"user_id" gorm:"size:128;index;not null"`
	Name        string    `json:"name" gorm:"size:100;not null"`
	Description string    `json:"description" gorm:"type:text"`
	IsPublic    bool      `json:"is_public" gorm:"default:false"`
	RecipeCount int64     `json:"recipe_count" gorm:"-"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CollectionRecipe links a recipe into a collection
type CollectionRecipe struct {
	CollectionID uint      `json:"collection_id" gorm:"primaryKey"`
	RecipeID     uint      `json:"recipe_id" gorm:"primaryKey;index"`
	AddedAt      time.Time `json:"added_at" gorm:"autoCreateTime"`
}

// CreateCollectionRequest defines the request body for creating a collection
type CreateCollectionRequest struct {
	Name        string `json:"name" validate:"required,min=1,max=100"`
	Description string `json:"description" validate:"max=1000"`
	IsPublic    bool   `json:"is_public"`
}

// UpdateCollectionRequest defines the request body for updating a collection
type UpdateCollectionRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=100"`
	Description *string `json:"description" validate:"omitempty,max=1000"`
	IsPublic    *bool   `json:"is_public"`
}
