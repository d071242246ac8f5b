package storage

import (
	"context"
	"errors"
	"fmt"

	"pifko/internal/apperr"
	"pifko/internal/stock"
	"pifko/models"
)

// IngredientInfo joins a variety with its master stock.
type IngredientInfo struct {
	ID                uint                  `json:"id"`
	Kind              models.IngredientKind `json:"kind"`
	Name              string                `json:"name"`
	Country           string                `json:"country"`
	AvailableQuantity int64                 `json:"available_quantity"`
	Unit              string                `json:"unit"`
}

// InventoryReport groups IngredientInfo by kind, keyed "hops", "malts", "yeasts".
type InventoryReport map[string][]IngredientInfo

// Count returns the number of entries across all kinds.
func (r InventoryReport) Count() int {
	n := 0
	for _, items := range r {
		n += len(items)
	}
	return n
}

// StockCheck answers whether a needed quantity is on hand.
type StockCheck struct {
	Kind         models.IngredientKind `json:"kind"`
	IngredientID uint                  `json:"ingredient_id"`
	Name         string                `json:"name,omitempty"`
	Needed       int64                 `json:"needed"`
	Available    int64                 `json:"available"`
	Unit         string                `json:"unit"`
	IsSufficient bool                  `json:"is_sufficient"`
}

// InventoryReport lists every variety with its available quantity. Varieties
// without a stock row report zero.
func (s *Service) InventoryReport(ctx context.Context) (InventoryReport, error) {
	var rows []IngredientInfo
	err := s.db.WithContext(ctx).
		Table("ingredient_varieties AS v").
		Select("v.id, v.kind, v.name, v.country, COALESCE(m.quantity, 0) AS available_quantity, COALESCE(m.unit, '') AS unit").
		Joins("LEFT JOIN master_stocks AS m ON m.kind = v.kind AND m.ingredient_id = v.id").
		Order("v.kind").Order("v.id").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("inventory report: %w", err)
	}

	report := InventoryReport{}
	for _, kind := range models.IngredientKinds {
		report[kind.Plural()] = []IngredientInfo{}
	}
	for _, row := range rows {
		report[row.Kind.Plural()] = append(report[row.Kind.Plural()], row)
	}
	return report, nil
}

// CheckStock compares needed with the master quantity of one variety.
func (s *Service) CheckStock(ctx context.Context, kind models.IngredientKind, id uint, needed int64) (StockCheck, error) {
	if err := checkKind(kind); err != nil {
		return StockCheck{}, err
	}
	variety, err := s.GetVariety(ctx, kind, id)
	if err != nil {
		return StockCheck{}, err
	}
	check := StockCheck{Kind: kind, IngredientID: id, Name: variety.Name, Needed: needed}

	level, err := s.stock.Get(ctx, kind, id)
	switch {
	case err == nil:
		check.Available = level.Quantity
		check.Unit = level.Unit
	case errors.Is(err, apperr.ErrNotFound):
	default:
		return StockCheck{}, err
	}
	check.IsSufficient = check.Available >= needed
	return check, nil
}

// SetStock overwrites the master row of an existing variety.
func (s *Service) SetStock(ctx context.Context, kind models.IngredientKind, id uint, quantity int64, unit, requester string) (stock.Level, error) {
	if _, err := s.GetVariety(ctx, kind, id); err != nil {
		return stock.Level{}, err
	}
	return s.stock.Upsert(ctx, stock.Level{Kind: kind, IngredientID: id, Quantity: quantity, Unit: unit}, requester)
}

// Allocate reserves master stock for a requester.
func (s *Service) Allocate(ctx context.Context, req stock.AllocateRequest) (stock.Allocation, error) {
	return s.stock.Allocate(ctx, req)
}

// Restock adds to the master row of an existing variety, creating the row
// when needed.
func (s *Service) Restock(ctx context.Context, req stock.RestockRequest) (stock.Level, error) {
	if _, err := s.GetVariety(ctx, req.Kind, req.IngredientID); err != nil {
		return stock.Level{}, err
	}
	return s.stock.Restock(ctx, req)
}
