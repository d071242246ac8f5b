package models

import "time"

// IngredientVariety is one distinct hop, malt or yeast known to master storage.
// Identifiers are numbered per kind, so (Kind, ID) is the key.
type IngredientVariety struct {
	Kind      IngredientKind `gorm:"type:varchar(16);primaryKey" json:"kind"`
	ID        uint           `gorm:"primaryKey;autoIncrement:false" json:"id"`
	Name      string         `gorm:"not null" json:"name"`
	Country   string         `json:"country"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}
