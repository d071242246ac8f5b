package brewery

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"pifko/internal/apperr"
	applog "pifko/internal/log"
	"pifko/models"
)

type BeerInput struct {
	Name     string
	Style    string
	RecipeID uint
}

func (in BeerInput) validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return fmt.Errorf("beer name is required: %w", apperr.ErrMalformedInput)
	}
	return nil
}

// CreateBeer stores a beer brewed from an existing recipe.
func (s *Service) CreateBeer(ctx context.Context, in BeerInput) (models.Beer, error) {
	if err := in.validate(); err != nil {
		return models.Beer{}, err
	}

	beer := models.Beer{Name: strings.TrimSpace(in.Name), Style: strings.TrimSpace(in.Style), RecipeID: in.RecipeID}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := getRecipe(tx, in.RecipeID); err != nil {
			return err
		}
		if err := tx.Omit("Recipe").Create(&beer).Error; err != nil {
			return fmt.Errorf("create beer: %w", err)
		}
		return nil
	})
	if err != nil {
		return models.Beer{}, err
	}

	applog.Info(ctx, "beer created", "id", beer.ID, "name", beer.Name, "recipe_id", beer.RecipeID)
	return beer, nil
}

func (s *Service) GetBeer(ctx context.Context, id uint) (models.Beer, error) {
	return getBeer(s.db.WithContext(ctx), id)
}

func getBeer(tx *gorm.DB, id uint) (models.Beer, error) {
	var beer models.Beer
	if err := tx.Preload("Recipe").Take(&beer, id).Error; err != nil {
		return models.Beer{}, notFound(err, "beer %d", id)
	}
	return beer, nil
}

func (s *Service) ListBeers(ctx context.Context) ([]models.Beer, error) {
	var beers []models.Beer
	if err := s.db.WithContext(ctx).Preload("Recipe").Order("id").Find(&beers).Error; err != nil {
		return nil, fmt.Errorf("list beers: %w", err)
	}
	return beers, nil
}

// UpdateBeer overwrites every field of the beer.
func (s *Service) UpdateBeer(ctx context.Context, id uint, in BeerInput) (models.Beer, error) {
	if err := in.validate(); err != nil {
		return models.Beer{}, err
	}

	var beer models.Beer
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := getBeer(tx, id); err != nil {
			return err
		}
		if _, err := getRecipe(tx, in.RecipeID); err != nil {
			return err
		}
		err := tx.Model(&models.Beer{}).Where("id = ?", id).Updates(map[string]any{
			"name":      strings.TrimSpace(in.Name),
			"style":     strings.TrimSpace(in.Style),
			"recipe_id": in.RecipeID,
		}).Error
		if err != nil {
			return fmt.Errorf("update beer %d: %w", id, err)
		}
		beer, err = getBeer(tx, id)
		return err
	})
	if err != nil {
		return models.Beer{}, err
	}
	return beer, nil
}

func (s *Service) DeleteBeer(ctx context.Context, id uint) (models.Beer, error) {
	var beer models.Beer
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if beer, err = getBeer(tx, id); err != nil {
			return err
		}
		return tx.Delete(&models.Beer{}, id).Error
	})
	if err != nil {
		return models.Beer{}, err
	}

	applog.Info(ctx, "beer deleted", "id", id)
	return beer, nil
}
