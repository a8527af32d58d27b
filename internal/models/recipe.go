package models

import (
	"fmt"
	"time"
)

// RecipeStatus is the moderation lifecycle stage of a recipe.
type RecipeStatus string

const (
	RecipeStatusPending       RecipeStatus = "pending"
	RecipeStatusApproved      RecipeStatus = "approved"
	RecipeStatusRejected      RecipeStatus = "rejected"
	RecipeStatusDeletePending RecipeStatus = "delete_pending"
)

// RecipeStatuses lists every status a stored recipe can hold.
var RecipeStatuses = []RecipeStatus{
	RecipeStatusPending,
	RecipeStatusApproved,
	RecipeStatusRejected,
	RecipeStatusDeletePending,
}

func (s RecipeStatus) Valid() bool {
	switch s {
	case RecipeStatusPending, RecipeStatusApproved, RecipeStatusRejected, RecipeStatusDeletePending:
		return true
	}
	return false
}

// ParseRecipeStatus converts a raw string (e.g. a query parameter) into a RecipeStatus.
func ParseRecipeStatus(raw string) (RecipeStatus, error) {
	s := RecipeStatus(raw)
	if !s.Valid() {
		return "", fmt.Errorf("unknown recipe status %q", raw)
	}
	return s, nil
}

// MediaType describes what ImageURL points at.
type MediaType string

const (
	MediaTypeImage MediaType = "image"
	MediaTypeVideo MediaType = "video"
)

// Recipe represents a user-submitted recipe (PostgreSQL)
type Recipe struct {
	ID            uint          `json:"id" gorm:"primaryKey"`
	UserID        string        `json:"user_id" gorm:"size:128;not null;index"`
	CategoryID    *uint         `json:"category_id,omitempty" gorm:"index"`
	Title         string        `json:"title" gorm:"size:200;not null"`
	Description   string        `json:"description" gorm:"type:text"`
	EstimatedTime int           `json:"estimated_time"` // minutes
	Servings      int           `json:"servings"`
	ImageURL      string        `json:"image_url"`
	MediaType     MediaType     `json:"media_type" gorm:"size:20"`
	Status        RecipeStatus  `json:"status" gorm:"size:20;not null;default:pending;index"`
	ReviewedBy    *string       `json:"reviewed_by" gorm:"size:128"`
	ReviewedAt    *time.Time    `json:"reviewed_at"`
	ReviewComment *string       `json:"review_comment" gorm:"type:text"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
	Ingredients   []Ingredient  `json:"ingredients,omitempty" gorm:"foreignKey:RecipeID"`
	Instructions  []Instruction `json:"instructions,omitempty" gorm:"foreignKey:RecipeID"`
}

// Review is an admin decision recorded on a recipe.
type Review struct {
	ReviewerID string
	Comment    string
	At         time.Time
}

// RecipeContent holds the author-editable part of a recipe. Nil fields are left unchanged;
// nil Ingredients/Instructions keep the current rows.
type RecipeContent struct {
	Title         *string
	Description   *string
	EstimatedTime *int
	Servings      *int
	ImageURL      *string
	MediaType     *MediaType
	CategoryID    *uint
	Ingredients   []Ingredient
	Instructions  []Instruction
}

// IngredientInput is a single ingredient line in a create/update request.
type IngredientInput struct {
	Name     string `json:"name" validate:"required,min=1,max=100"`
	Quantity string `json:"quantity" validate:"max=50"`
	Unit     string `json:"unit" validate:"max=30"`
}

// InstructionInput is a single preparation step in a create/update request.
type InstructionInput struct {
	Description string `json:"description" validate:"required,min=1,max=2000"`
}

// CreateRecipeRequest defines the request body for creating a recipe
type CreateRecipeRequest struct {
	Title         string             `json:"title" validate:"required,min=1,max=200"`
	Description   string             `json:"description" validate:"max=5000"`
	EstimatedTime int                `json:"estimated_time" validate:"min=0,max=10080"`
	Servings      int                `json:"servings" validate:"min=0,max=1000"`
	ImageURL      string             `json:"image_url" validate:"omitempty,url"`
	MediaType     MediaType          `json:"media_type" validate:"omitempty,oneof=image video"`
	CategoryID    *uint              `json:"category_id"`
	Ingredients   []IngredientInput  `json:"ingredients" validate:"dive"`
	Instructions  []InstructionInput `json:"instructions" validate:"dive"`
}

// UpdateRecipeRequest defines the request body for editing a recipe
type UpdateRecipeRequest struct {
	Title         *string            `json:"title" validate:"omitempty,min=1,max=200"`
	Description   *string            `json:"description" validate:"omitempty,max=5000"`
	EstimatedTime *int               `json:"estimated_time" validate:"omitempty,min=0,max=10080"`
	Servings      *int               `json:"servings" validate:"omitempty,min=0,max=1000"`
	ImageURL      *string            `json:"image_url" validate:"omitempty,url"`
	MediaType     *MediaType         `json:"media_type" validate:"omitempty,oneof=image video"`
	CategoryID    *uint              `json:"category_id"`
	Ingredients   []IngredientInput  `json:"ingredients" validate:"omitempty,dive"`
	Instructions  []InstructionInput `json:"instructions" validate:"omitempty,dive"`
}

// ModerationDecisionRequest is the body of an admin decision. Rejections require a comment.
type ModerationDecisionRequest struct {
	Comment string `json:"comment" validate:"max=1000"`
}

// ToIngredients converts request lines into rows ordered by position.
func ToIngredients(in []IngredientInput) []Ingredient {
	if in == nil {
		return nil
	}
	out := make([]Ingredient, 0, len(in))
	for i, line := range in {
		out = append(out, Ingredient{Name: line.Name, Quantity: line.Quantity, Unit: line.Unit, Position: i + 1})
	}
	return out
}

// ToInstructions converts request steps into rows numbered from 1.
func ToInstructions(in []InstructionInput) []Instruction {
	if in == nil {
		return nil
	}
	out := make([]Instruction, 0, len(in))
	for i, step := range in {
		out = append(out, Instruction{StepNumber: i + 1, Description: step.Description})
	}
	return out
}
