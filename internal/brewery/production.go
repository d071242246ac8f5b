package brewery

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"pifko/internal/apperr"
	applog "pifko/internal/log"
	"pifko/internal/stock"
	"pifko/models"
)

// StartProduction deducts every recipe line for hl hectoliters from local
// stock and records a production run. Either every line is taken or none;
// a short line yields a *stock.ShortfallError.
func (s *Service) StartProduction(ctx context.Context, beerID uint, hl int64, requester string) (models.ProductionRun, error) {
	if hl <= 0 {
		return models.ProductionRun{}, fmt.Errorf("quantity in hectoliters must be positive, got %d: %w", hl, apperr.ErrMalformedInput)
	}

	var run models.ProductionRun
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		feasibility, err := s.evaluate(tx, beerID, hl)
		if err != nil {
			return err
		}
		if !feasibility.Feasible {
			return &stock.ShortfallError{Shortfalls: feasibility.Shortfalls}
		}

		run = models.ProductionRun{
			BeerID:              beerID,
			QuantityHectoliters: hl,
			Status:              models.ProductionStarted,
			Requester:           requester,
		}
		if err := tx.Create(&run).Error; err != nil {
			return fmt.Errorf("create production run: %w", err)
		}

		demands := make([]stock.Demand, 0, len(feasibility.Requirements))
		for _, req := range feasibility.Requirements {
			demands = append(demands, stock.Demand{Kind: req.Kind, IngredientID: req.IngredientID, Quantity: req.Required})
		}
		_, err = s.stock.AllocateAll(tx, demands, requester, fmt.Sprintf("production-run-%d", run.ID))
		return err
	})
	if err != nil {
		var shortfall *stock.ShortfallError
		if errors.As(err, &shortfall) {
			applog.Warn(ctx, "production refused", "beer_id", beerID, "hl", hl, "shortfalls", len(shortfall.Shortfalls))
		}
		return models.ProductionRun{}, err
	}

	applog.Info(ctx, "production started", "run_id", run.ID, "beer_id", beerID, "hl", hl)
	return run, nil
}

// ListProductionRuns returns runs newest first.
func (s *Service) ListProductionRuns(ctx context.Context) ([]models.ProductionRun, error) {
	var runs []models.ProductionRun
	if err := s.db.WithContext(ctx).Order("id DESC").Find(&runs).Error; err != nil {
		return nil, fmt.Errorf("list production runs: %w", err)
	}
	return runs, nil
}
