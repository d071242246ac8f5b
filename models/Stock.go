package models

import "time"

// MasterStock is the system-wide on-hand amount for one variety.
type MasterStock struct {
	Kind         IngredientKind `gorm:"type:varchar(16);primaryKey" json:"kind"`
	IngredientID uint           `gorm:"primaryKey;autoIncrement:false" json:"ingredient_id"`
	Quantity     int64          `gorm:"not null;default:0" json:"quantity"`
	Unit         string         `gorm:"type:varchar(32)" json:"unit"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

// LocalStock is the brewery's own copy of an ingredient quantity. It shares
// the identifier with master storage but is maintained independently.
type LocalStock struct {
	Kind          IngredientKind `gorm:"type:varchar(16);primaryKey" json:"kind"`
	IngredientID  uint           `gorm:"primaryKey;autoIncrement:false" json:"ingredient_id"`
	Quantity      int64          `gorm:"not null;default:0" json:"quantity"`
	MinStockLevel int64          `gorm:"not null;default:0" json:"min_stock_level"`
	Unit          string         `gorm:"type:varchar(32)" json:"unit"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

// Ledger names a stock table.
type Ledger string

const (
	LedgerMaster Ledger = "master"
	LedgerLocal  Ledger = "local"
)

// Table returns the table backing the ledger.
func (l Ledger) Table() string {
	if l == LedgerLocal {
		return "local_stocks"
	}
	return "master_stocks"
}

// MovementType classifies a stock movement.
type MovementType string

const (
	MovementAllocation MovementType = "allocation"
	MovementRestock    MovementType = "restock"
	MovementAdjustment MovementType = "adjustment"
	MovementProduction MovementType = "production"
)

// StockMovement records one quantity change against a ledger row.
type StockMovement struct {
	ID             string         `gorm:"type:varchar(36);primaryKey" json:"id"`
	Ledger         Ledger         `gorm:"type:varchar(16);not null;index" json:"ledger"`
	Kind           IngredientKind `gorm:"type:varchar(16);not null;index:idx_movement_ingredient" json:"kind"`
	IngredientID   uint           `gorm:"not null;index:idx_movement_ingredient" json:"ingredient_id"`
	MovementType   MovementType   `gorm:"type:varchar(16);not null" json:"movement_type"`
	Change         int64          `gorm:"not null" json:"change"`
	QuantityBefore int64          `gorm:"not null" json:"quantity_before"`
	QuantityAfter  int64          `gorm:"not null" json:"quantity_after"`
	Requester      string         `json:"requester"`
	Reference      string         `json:"reference"`
	CreatedAt      time.Time      `gorm:"index" json:"created_at"`
}
