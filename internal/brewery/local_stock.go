package brewery

import (
	"context"

	"pifko/internal/stock"
	"pifko/models"
)

// LocalStockCheck answers whether the brewery holds a needed quantity.
type LocalStockCheck struct {
	Kind         models.IngredientKind `json:"kind"`
	IngredientID uint                  `json:"ingredient_id"`
	Needed       int64                 `json:"needed"`
	Available    int64                 `json:"available"`
	IsSufficient bool                  `json:"is_sufficient"`
}

// CheckStock compares needed with the local quantity; a missing row counts as zero.
func (s *Service) CheckStock(ctx context.Context, kind models.IngredientKind, id uint, needed int64) (LocalStockCheck, error) {
	available, err := s.stock.Available(ctx, kind, id)
	if err != nil {
		return LocalStockCheck{}, err
	}
	return LocalStockCheck{
		Kind:         kind,
		IngredientID: id,
		Needed:       needed,
		Available:    available,
		IsSufficient: available >= needed,
	}, nil
}

func (s *Service) SetLocalStock(ctx context.Context, level stock.Level, requester string) (stock.Level, error) {
	return s.stock.Upsert(ctx, level, requester)
}

func (s *Service) LowStock(ctx context.Context) ([]stock.Level, error) {
	return s.stock.ListLow(ctx)
}
