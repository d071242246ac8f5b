package models

import "time"

type Beer struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"not null" json:"name"`
	Style     string    `json:"style"`
	RecipeID  uint      `gorm:"not null;index" json:"recipe_id"`
	Recipe    *Recipe   `gorm:"foreignKey:RecipeID" json:"recipe,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ProductionStatus tracks a production run.
type ProductionStatus string

const ProductionStarted ProductionStatus = "started"

// ProductionRun records a batch whose ingredients were taken from local stock.
type ProductionRun struct {
	ID                  uint             `gorm:"primaryKey" json:"id"`
	BeerID              uint             `gorm:"not null;index" json:"beer_id"`
	QuantityHectoliters int64            `gorm:"not null" json:"quantity_hectoliters"`
	Status              ProductionStatus `gorm:"type:varchar(32);not null" json:"status"`
	Requester           string           `json:"requester"`
	CreatedAt           time.Time        `json:"created_at"`
}
