package brewery

import (
	"context"
	"fmt"
	"math"
	"sort"

	"gorm.io/gorm"

	"pifko/internal/apperr"
	"pifko/internal/stock"
	"pifko/models"
)

// Requirement is one recipe line scaled to a production volume.
type Requirement struct {
	Kind         models.IngredientKind `json:"kind"`
	IngredientID uint                  `json:"ingredient_id"`
	Required     int64                 `json:"required"`
	Available    int64                 `json:"available"`
}

// Feasibility is the outcome of comparing a recipe against local stock.
type Feasibility struct {
	BeerID              uint              `json:"beer_id"`
	BeerName            string            `json:"beer_name"`
	QuantityHectoliters int64             `json:"quantity_hectoliters"`
	Feasible            bool              `json:"feasible"`
	Requirements        []Requirement     `json:"requirements"`
	Shortfalls          []stock.Shortfall `json:"shortfalls"`
}

type stockKey struct {
	kind models.IngredientKind
	id   uint
}

// CheckFeasibility reports whether local stock covers hl hectoliters of the
// beer. Shortfalls are ordered by kind (hop, malt, yeast) then ingredient id.
func (s *Service) CheckFeasibility(ctx context.Context, beerID uint, hl int64) (Feasibility, error) {
	if hl <= 0 {
		return Feasibility{}, fmt.Errorf("quantity in hectoliters must be positive, got %d: %w", hl, apperr.ErrMalformedInput)
	}
	return s.evaluate(s.db.WithContext(ctx), beerID, hl)
}

func (s *Service) evaluate(tx *gorm.DB, beerID uint, hl int64) (Feasibility, error) {
	beer, err := getBeer(tx, beerID)
	if err != nil {
		return Feasibility{}, err
	}

	var lines []models.RecipeIngredientLine
	if err := tx.Where("recipe_id = ?", beer.RecipeID).Find(&lines).Error; err != nil {
		return Feasibility{}, fmt.Errorf("load recipe lines: %w", err)
	}
	sort.Slice(lines, func(i, j int) bool {
		if lines[i].Kind != lines[j].Kind {
			return lines[i].Kind.Rank() < lines[j].Kind.Rank()
		}
		return lines[i].IngredientID < lines[j].IngredientID
	})

	available, err := s.onHand(tx)
	if err != nil {
		return Feasibility{}, err
	}

	result := Feasibility{
		BeerID:              beer.ID,
		BeerName:            beer.Name,
		QuantityHectoliters: hl,
		Requirements:        make([]Requirement, 0, len(lines)),
		Shortfalls:          []stock.Shortfall{},
	}
	for _, line := range lines {
		if line.QuantityPerUnit > 0 && hl > math.MaxInt64/line.QuantityPerUnit {
			return Feasibility{}, fmt.Errorf("%d hectoliters of %s #%d exceeds the representable quantity: %w",
				hl, line.Kind, line.IngredientID, apperr.ErrMalformedInput)
		}
		req := Requirement{
			Kind:         line.Kind,
			IngredientID: line.IngredientID,
			Required:     line.QuantityPerUnit * hl,
			Available:    available[stockKey{line.Kind, line.IngredientID}],
		}
		result.Requirements = append(result.Requirements, req)
		if req.Available < req.Required {
			result.Shortfalls = append(result.Shortfalls, stock.Shortfall{
				Kind:         req.Kind,
				IngredientID: req.IngredientID,
				Required:     req.Required,
				Available:    req.Available,
			})
		}
	}
	result.Feasible = len(result.Shortfalls) == 0
	return result, nil
}

// onHand indexes local stock by (kind, ingredient id). Missing rows read as 0.
func (s *Service) onHand(tx *gorm.DB) (map[stockKey]int64, error) {
	var rows []models.LocalStock
	if err := tx.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("load local stock: %w", err)
	}
	index := make(map[stockKey]int64, len(rows))
	for _, row := range rows {
		index[stockKey{row.Kind, row.IngredientID}] = row.Quantity
	}
	return index, nil
}
