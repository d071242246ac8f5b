// Package storage is the Storage-Catalog service: ingredient varieties and
// the master stock ledger.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"pifko/internal/apperr"
	applog "pifko/internal/log"
	"pifko/internal/stock"
	"pifko/models"
)

type Service struct {
	db    *gorm.DB
	stock *stock.Ledger
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db, stock: stock.New(db, models.LedgerMaster)}
}

// Stock exposes the master ledger.
func (s *Service) Stock() *stock.Ledger {
	return s.stock
}

// VarietyInput carries the mutable fields of a variety.
type VarietyInput struct {
	Name    string
	Country string
}

func (in VarietyInput) validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return fmt.Errorf("variety name is required: %w", apperr.ErrMalformedInput)
	}
	return nil
}

func checkKind(kind models.IngredientKind) error {
	if !kind.Valid() {
		return fmt.Errorf("ingredient kind %q: %w", kind, apperr.ErrInvalidEnumValue)
	}
	return nil
}

const createAttempts = 3

// CreateVariety adds a variety and numbers it after the highest id of its kind.
func (s *Service) CreateVariety(ctx context.Context, kind models.IngredientKind, in VarietyInput) (models.IngredientVariety, error) {
	if err := checkKind(kind); err != nil {
		return models.IngredientVariety{}, err
	}
	if err := in.validate(); err != nil {
		return models.IngredientVariety{}, err
	}

	variety := models.IngredientVariety{Kind: kind, Name: strings.TrimSpace(in.Name), Country: strings.TrimSpace(in.Country)}
	var err error
	// Two creates can pick the same next id; the loser retries with a fresh one.
	for attempt := 0; attempt < createAttempts; attempt++ {
		err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			var maxID uint
			if err := tx.Model(&models.IngredientVariety{}).Where("kind = ?", kind).Select("COALESCE(MAX(id), 0)").Scan(&maxID).Error; err != nil {
				return fmt.Errorf("next %s id: %w", kind, err)
			}
			variety.ID = maxID + 1
			if err := tx.Create(&variety).Error; err != nil {
				return fmt.Errorf("create %s: %w", kind, err)
			}
			return nil
		})
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			break
		}
		applog.Debug(ctx, "variety id taken, retrying", "kind", kind, "id", variety.ID)
	}
	if err != nil {
		return models.IngredientVariety{}, err
	}

	applog.Info(ctx, "variety created", "kind", kind, "id", variety.ID, "name", variety.Name)
	return variety, nil
}

func (s *Service) GetVariety(ctx context.Context, kind models.IngredientKind, id uint) (models.IngredientVariety, error) {
	if err := checkKind(kind); err != nil {
		return models.IngredientVariety{}, err
	}
	return getVariety(s.db.WithContext(ctx), kind, id)
}

func getVariety(tx *gorm.DB, kind models.IngredientKind, id uint) (models.IngredientVariety, error) {
	var variety models.IngredientVariety
	if err := tx.Where("kind = ? AND id = ?", kind, id).Take(&variety).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.IngredientVariety{}, fmt.Errorf("%s %d: %w", kind, id, apperr.ErrNotFound)
		}
		return models.IngredientVariety{}, fmt.Errorf("load %s %d: %w", kind, id, err)
	}
	return variety, nil
}

// ListVarieties returns varieties of one kind, or all when kind is empty.
func (s *Service) ListVarieties(ctx context.Context, kind models.IngredientKind) ([]models.IngredientVariety, error) {
	query := s.db.WithContext(ctx)
	if kind != "" {
		if err := checkKind(kind); err != nil {
			return nil, err
		}
		query = query.Where("kind = ?", kind)
	}

	var varieties []models.IngredientVariety
	if err := query.Order("kind").Order("id").Find(&varieties).Error; err != nil {
		return nil, fmt.Errorf("list varieties: %w", err)
	}
	return varieties, nil
}

// UpdateVariety overwrites name and country.
func (s *Service) UpdateVariety(ctx context.Context, kind models.IngredientKind, id uint, in VarietyInput) (models.IngredientVariety, error) {
	if err := checkKind(kind); err != nil {
		return models.IngredientVariety{}, err
	}
	if err := in.validate(); err != nil {
		return models.IngredientVariety{}, err
	}

	var variety models.IngredientVariety
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		variety, err = getVariety(tx, kind, id)
		if err != nil {
			return err
		}
		variety.Name = strings.TrimSpace(in.Name)
		variety.Country = strings.TrimSpace(in.Country)
		return tx.Model(&models.IngredientVariety{}).
			Where("kind = ? AND id = ?", kind, id).
			Updates(map[string]any{"name": variety.Name, "country": variety.Country}).Error
	})
	if err != nil {
		return models.IngredientVariety{}, err
	}
	return variety, nil
}

// DeleteVariety removes the master stock row, then the variety.
func (s *Service) DeleteVariety(ctx context.Context, kind models.IngredientKind, id uint) (models.IngredientVariety, error) {
	if err := checkKind(kind); err != nil {
		return models.IngredientVariety{}, err
	}

	var variety models.IngredientVariety
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		variety, err = getVariety(tx, kind, id)
		if err != nil {
			return err
		}
		if err := s.stock.DeleteTx(tx, kind, id); err != nil && !errors.Is(err, apperr.ErrNotFound) {
			return err
		}
		return tx.Where("kind = ? AND id = ?", kind, id).Delete(&models.IngredientVariety{}).Error
	})
	if err != nil {
		return models.IngredientVariety{}, err
	}

	applog.Info(ctx, "variety deleted", "kind", kind, "id", id)
	return variety, nil
}
