package models

import "time"

// Recipe holds the process parameters shared by one or more beers.
type Recipe struct {
	ID               uint                   `gorm:"primaryKey" json:"id"`
	Name             string                 `json:"name"`
	FermentationTime int                    `json:"fermentation_time"`
	AgingTime        int                    `json:"aging_time"`
	Lines            []RecipeIngredientLine `gorm:"foreignKey:RecipeID" json:"lines,omitempty"`
	CreatedAt        time.Time              `json:"created_at"`
	UpdatedAt        time.Time              `json:"updated_at"`
}

// RecipeIngredientLine is the quantity of one ingredient needed per hectoliter.
type RecipeIngredientLine struct {
	RecipeID        uint           `gorm:"primaryKey;autoIncrement:false" json:"recipe_id"`
	IngredientID    uint           `gorm:"primaryKey;autoIncrement:false" json:"ingredient_id"`
	Kind            IngredientKind `gorm:"type:varchar(16);primaryKey" json:"kind"`
	QuantityPerUnit int64          `gorm:"not null" json:"quantity_per_unit"`
}
