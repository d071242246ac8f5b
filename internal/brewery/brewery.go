// Package brewery is the Brewery-Operations service: recipes, beers, the
// local ingredient stock and production.
package brewery

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

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
	return &Service{db: db, stock: stock.New(db, models.LedgerLocal)}
}

// Stock exposes the local ledger.
func (s *Service) Stock() *stock.Ledger {
	return s.stock
}

// LineInput is one ingredient requirement per hectoliter.
type LineInput struct {
	Kind            models.IngredientKind
	IngredientID    uint
	QuantityPerUnit int64
}

func (in LineInput) validate() error {
	if !in.Kind.Valid() {
		return fmt.Errorf("ingredient kind %q: %w", in.Kind, apperr.ErrInvalidEnumValue)
	}
	if in.QuantityPerUnit <= 0 {
		return fmt.Errorf("quantity per hectoliter must be positive: %w", apperr.ErrMalformedInput)
	}
	return nil
}

type RecipeInput struct {
	Name             string
	FermentationTime int
	AgingTime        int
	Lines            []LineInput
}

func (in RecipeInput) validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return fmt.Errorf("recipe name is required: %w", apperr.ErrMalformedInput)
	}
	if in.FermentationTime < 0 || in.AgingTime < 0 {
		return fmt.Errorf("process times must not be negative: %w", apperr.ErrMalformedInput)
	}
	seen := make(map[stockKey]bool, len(in.Lines))
	for _, line := range in.Lines {
		if err := line.validate(); err != nil {
			return err
		}
		key := stockKey{line.Kind, line.IngredientID}
		if seen[key] {
			return fmt.Errorf("%s %d appears twice: %w", line.Kind, line.IngredientID, apperr.ErrMalformedInput)
		}
		seen[key] = true
	}
	return nil
}

func notFound(err error, format string, args ...any) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf(format+": %w", append(args, apperr.ErrNotFound)...)
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// CreateRecipe stores a recipe together with its lines.
func (s *Service) CreateRecipe(ctx context.Context, in RecipeInput) (models.Recipe, error) {
	if err := in.validate(); err != nil {
		return models.Recipe{}, err
	}

	recipe := models.Recipe{
		Name:             strings.TrimSpace(in.Name),
		FermentationTime: in.FermentationTime,
		AgingTime:        in.AgingTime,
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Lines").Create(&recipe).Error; err != nil {
			return fmt.Errorf("create recipe: %w", err)
		}
		for _, line := range in.Lines {
			row := models.RecipeIngredientLine{
				RecipeID:        recipe.ID,
				Kind:            line.Kind,
				IngredientID:    line.IngredientID,
				QuantityPerUnit: line.QuantityPerUnit,
			}
			if err := tx.Create(&row).Error; err != nil {
				return fmt.Errorf("create recipe line: %w", err)
			}
			recipe.Lines = append(recipe.Lines, row)
		}
		return nil
	})
	if err != nil {
		return models.Recipe{}, err
	}

	applog.Info(ctx, "recipe created", "id", recipe.ID, "name", recipe.Name, "lines", len(recipe.Lines))
	return recipe, nil
}

func (s *Service) GetRecipe(ctx context.Context, id uint) (models.Recipe, error) {
	return getRecipe(s.db.WithContext(ctx), id)
}

func getRecipe(tx *gorm.DB, id uint) (models.Recipe, error) {
	var recipe models.Recipe
	err := tx.Preload("Lines", func(db *gorm.DB) *gorm.DB {
		return db.Order("kind").Order("ingredient_id")
	}).Take(&recipe, id).Error
	if err != nil {
		return models.Recipe{}, notFound(err, "recipe %d", id)
	}
	return recipe, nil
}

func (s *Service) ListRecipes(ctx context.Context) ([]models.Recipe, error) {
	var recipes []models.Recipe
	err := s.db.WithContext(ctx).Preload("Lines", func(db *gorm.DB) *gorm.DB {
		return db.Order("kind").Order("ingredient_id")
	}).Order("id").Find(&recipes).Error
	if err != nil {
		return nil, fmt.Errorf("list recipes: %w", err)
	}
	return recipes, nil
}

// UpdateRecipe overwrites name and process times. Lines are managed with
// SetRecipeLine and RemoveRecipeLine.
func (s *Service) UpdateRecipe(ctx context.Context, id uint, in RecipeInput) (models.Recipe, error) {
	in.Lines = nil
	if err := in.validate(); err != nil {
		return models.Recipe{}, err
	}

	var recipe models.Recipe
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := getRecipe(tx, id); err != nil {
			return err
		}
		err := tx.Model(&models.Recipe{}).Where("id = ?", id).Updates(map[string]any{
			"name":              strings.TrimSpace(in.Name),
			"fermentation_time": in.FermentationTime,
			"aging_time":        in.AgingTime,
		}).Error
		if err != nil {
			return fmt.Errorf("update recipe %d: %w", id, err)
		}
		recipe, err = getRecipe(tx, id)
		return err
	})
	if err != nil {
		return models.Recipe{}, err
	}
	return recipe, nil
}

// DeleteRecipe removes the recipe and its lines. Recipes still brewed by a
// beer are kept.
func (s *Service) DeleteRecipe(ctx context.Context, id uint) (models.Recipe, error) {
	var recipe models.Recipe
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		recipe, err = getRecipe(tx, id)
		if err != nil {
			return err
		}

		var beers int64
		if err := tx.Model(&models.Beer{}).Where("recipe_id = ?", id).Count(&beers).Error; err != nil {
			return fmt.Errorf("count beers for recipe %d: %w", id, err)
		}
		if beers > 0 {
			return fmt.Errorf("recipe %d is used by %d beer(s): %w", id, beers, apperr.ErrReferenced)
		}

		if err := tx.Where("recipe_id = ?", id).Delete(&models.RecipeIngredientLine{}).Error; err != nil {
			return fmt.Errorf("delete recipe lines: %w", err)
		}
		return tx.Delete(&models.Recipe{}, id).Error
	})
	if err != nil {
		return models.Recipe{}, err
	}

	applog.Info(ctx, "recipe deleted", "id", id)
	return recipe, nil
}

// SetRecipeLine creates or overwrites one line of a recipe.
func (s *Service) SetRecipeLine(ctx context.Context, recipeID uint, in LineInput) (models.RecipeIngredientLine, error) {
	if err := in.validate(); err != nil {
		return models.RecipeIngredientLine{}, err
	}

	line := models.RecipeIngredientLine{
		RecipeID:        recipeID,
		Kind:            in.Kind,
		IngredientID:    in.IngredientID,
		QuantityPerUnit: in.QuantityPerUnit,
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := getRecipe(tx, recipeID); err != nil {
			return err
		}
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "recipe_id"}, {Name: "ingredient_id"}, {Name: "kind"}},
			DoUpdates: clause.AssignmentColumns([]string{"quantity_per_unit"}),
		}).Create(&line).Error
	})
	if err != nil {
		return models.RecipeIngredientLine{}, err
	}
	return line, nil
}

func (s *Service) RemoveRecipeLine(ctx context.Context, recipeID uint, kind models.IngredientKind, ingredientID uint) error {
	if !kind.Valid() {
		return fmt.Errorf("ingredient kind %q: %w", kind, apperr.ErrInvalidEnumValue)
	}
	res := s.db.WithContext(ctx).
		Where("recipe_id = ? AND kind = ? AND ingredient_id = ?", recipeID, kind, ingredientID).
		Delete(&models.RecipeIngredientLine{})
	if res.Error != nil {
		return fmt.Errorf("delete recipe line: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("recipe %d line %s %d: %w", recipeID, kind, ingredientID, apperr.ErrNotFound)
	}
	return nil
}
