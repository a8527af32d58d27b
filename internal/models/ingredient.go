package models

// Ingredient is one ingredient line of a recipe
type Ingredient struct {
	ID       uint   `json:"id" gorm:"primaryKey"`
	RecipeID uint   `json:"recipe_id" gorm:"index;not null"`
	Name     string `json:"name" gorm:"size:100;not null"`
	Quantity string `json:"quantity" gorm:"size:50"`
	Unit     string `json:"unit" gorm:"size:30"`
	Position int    `json:"position"`
}

// Instruction is one preparation step of a recipe
type Instruction struct {
	ID          uint   `json:"id" gorm:"primaryKey"`
	RecipeID    uint   `json:"recipe_id" gorm:"index;not null"`
	StepNumber  int    `json:"step_number"`
	Description string `json:"description" gorm:"type:text;not null"`
}
