// Package stock implements the allocate/restock ledger over the master and
// local stock tables. Both tables are keyed by (kind, ingredient_id), so one
// implementation serves every ingredient kind.
package stock

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"pifko/internal/apperr"
	applog "pifko/internal/log"
	"pifko/models"
)

// Level is one stock row as seen through the ledger.
type Level struct {
	Kind          models.IngredientKind `json:"kind"`
	IngredientID  uint                  `json:"ingredient_id"`
	Quantity      int64                 `json:"quantity"`
	MinStockLevel int64                 `json:"min_stock_level,omitempty"`
	Unit          string                `json:"unit"`
	UpdatedAt     time.Time             `json:"updated_at"`
}

// Low reports whether the row is at or below its minimum level.
func (l Level) Low() bool {
	return l.Quantity <= l.MinStockLevel
}

type AllocateRequest struct {
	Kind         models.IngredientKind
	IngredientID uint
	Quantity     int64
	Requester    string
}

// Allocation is the outcome of a guarded decrement. A refused allocation is
// a result with Success false, not an error.
type Allocation struct {
	ID           string                `json:"allocation_id,omitempty"`
	Kind         models.IngredientKind `json:"kind"`
	IngredientID uint                  `json:"ingredient_id"`
	Requested    int64                 `json:"quantity_requested"`
	Allocated    int64                 `json:"quantity_allocated"`
	Remaining    int64                 `json:"quantity_remaining"`
	Unit         string                `json:"unit"`
	Success      bool                  `json:"success"`
}

type RestockRequest struct {
	Kind         models.IngredientKind
	IngredientID uint
	Quantity     int64
	Unit         string
	Requester    string
}

// Demand is one line of a multi-ingredient allocation.
type Demand struct {
	Kind         models.IngredientKind
	IngredientID uint
	Quantity     int64
}

// Shortfall describes a demand that cannot be met.
type Shortfall struct {
	Kind         models.IngredientKind `json:"kind"`
	IngredientID uint                  `json:"ingredient_id"`
	Required     int64                 `json:"required"`
	Available    int64                 `json:"available"`
}

// ShortfallError carries the lines that blocked an AllocateAll call.
type ShortfallError struct {
	Shortfalls []Shortfall
}

func (e *ShortfallError) Error() string {
	parts := make([]string, 0, len(e.Shortfalls))
	for _, s := range e.Shortfalls {
		parts = append(parts, fmt.Sprintf("%s %d (required %d, available %d)", s.Kind, s.IngredientID, s.Required, s.Available))
	}
	return "insufficient stock: " + strings.Join(parts, ", ")
}

func (e *ShortfallError) Unwrap() error {
	return apperr.ErrInsufficientStock
}

// MovementFilter narrows Movements. Zero values match everything.
type MovementFilter struct {
	Kind         models.IngredientKind
	IngredientID uint
	Limit        int
}

// Ledger reads and mutates one stock table.
type Ledger struct {
	db     *gorm.DB
	ledger models.Ledger
	now    func() time.Time
}

func New(db *gorm.DB, ledger models.Ledger) *Ledger {
	return &Ledger{
		db:     db,
		ledger: ledger,
		now: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Name returns which table the ledger manages.
func (l *Ledger) Name() models.Ledger {
	return l.ledger
}

func (l *Ledger) table(tx *gorm.DB) *gorm.DB {
	return tx.Table(l.ledger.Table())
}

func (l *Ledger) columns() []string {
	cols := []string{"kind", "ingredient_id", "quantity", "unit", "updated_at"}
	if l.ledger == models.LedgerLocal {
		cols = append(cols, "min_stock_level")
	}
	return cols
}

func validKind(kind models.IngredientKind) error {
	if !kind.Valid() {
		return fmt.Errorf("ingredient kind %q: %w", kind, apperr.ErrInvalidEnumValue)
	}
	return nil
}

func (l *Ledger) get(tx *gorm.DB, kind models.IngredientKind, id uint) (Level, error) {
	var level Level
	err := l.table(tx).
		Select(l.columns()).
		Where("kind = ? AND ingredient_id = ?", kind, id).
		Take(&level).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Level{}, fmt.Errorf("%s stock for %s %d: %w", l.ledger, kind, id, apperr.ErrNotFound)
		}
		return Level{}, fmt.Errorf("load %s stock: %w", l.ledger, err)
	}
	return level, nil
}

// Get returns the stock row for one ingredient.
func (l *Ledger) Get(ctx context.Context, kind models.IngredientKind, id uint) (Level, error) {
	if err := validKind(kind); err != nil {
		return Level{}, err
	}
	return l.get(l.db.WithContext(ctx), kind, id)
}

// Available returns the on-hand quantity, or 0 when no row exists.
func (l *Ledger) Available(ctx context.Context, kind models.IngredientKind, id uint) (int64, error) {
	level, err := l.Get(ctx, kind, id)
	if errors.Is(err, apperr.ErrNotFound) {
		return 0, nil
	}
	return level.Quantity, err
}

// List returns every row ordered by kind and id. An empty kind lists all.
func (l *Ledger) List(ctx context.Context, kind models.IngredientKind) ([]Level, error) {
	query := l.table(l.db.WithContext(ctx)).Select(l.columns())
	if kind != "" {
		if err := validKind(kind); err != nil {
			return nil, err
		}
		query = query.Where("kind = ?", kind)
	}

	var levels []Level
	if err := query.Order("kind").Order("ingredient_id").Find(&levels).Error; err != nil {
		return nil, fmt.Errorf("list %s stock: %w", l.ledger, err)
	}
	return levels, nil
}

// ListLow returns local rows whose quantity is at or below min_stock_level.
func (l *Ledger) ListLow(ctx context.Context) ([]Level, error) {
	if l.ledger != models.LedgerLocal {
		return nil, fmt.Errorf("low stock levels exist only for local stock: %w", apperr.ErrMalformedInput)
	}

	var levels []Level
	err := l.table(l.db.WithContext(ctx)).
		Select(l.columns()).
		Where("quantity <= min_stock_level").
		Order("kind").Order("ingredient_id").
		Find(&levels).Error
	if err != nil {
		return nil, fmt.Errorf("list low stock: %w", err)
	}
	return levels, nil
}

// Upsert overwrites the row if present and creates it otherwise.
func (l *Ledger) Upsert(ctx context.Context, level Level, requester string) (Level, error) {
	if err := validKind(level.Kind); err != nil {
		return Level{}, err
	}
	if level.Quantity < 0 || level.MinStockLevel < 0 {
		return Level{}, fmt.Errorf("quantities must not be negative: %w", apperr.ErrMalformedInput)
	}

	var out Level
	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var before int64
		if current, err := l.get(tx, level.Kind, level.IngredientID); err == nil {
			before = current.Quantity
		} else if !errors.Is(err, apperr.ErrNotFound) {
			return err
		}

		row := map[string]any{
			"kind":          level.Kind,
			"ingredient_id": level.IngredientID,
			"quantity":      level.Quantity,
			"unit":          level.Unit,
			"updated_at":    l.now(),
		}
		update := []string{"quantity", "unit", "updated_at"}
		if l.ledger == models.LedgerLocal {
			row["min_stock_level"] = level.MinStockLevel
			update = append(update, "min_stock_level")
		}

		err := l.table(tx).Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "kind"}, {Name: "ingredient_id"}},
			DoUpdates: clause.AssignmentColumns(update),
		}).Create(row).Error
		if err != nil {
			return fmt.Errorf("upsert %s stock: %w", l.ledger, err)
		}

		if err := l.record(tx, level.Kind, level.IngredientID, models.MovementAdjustment, before, level.Quantity, requester, ""); err != nil {
			return err
		}

		out, err = l.get(tx, level.Kind, level.IngredientID)
		return err
	})
	if err != nil {
		return Level{}, err
	}

	applog.Info(ctx, "stock level set", "ledger", l.ledger, "kind", out.Kind, "ingredient_id", out.IngredientID, "quantity", out.Quantity)
	return out, nil
}

// Delete removes the row for one ingredient.
func (l *Ledger) Delete(ctx context.Context, kind models.IngredientKind, id uint) error {
	if err := validKind(kind); err != nil {
		return err
	}
	return l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return l.DeleteTx(tx, kind, id)
	})
}

// DeleteTx is Delete inside a caller owned transaction.
func (l *Ledger) DeleteTx(tx *gorm.DB, kind models.IngredientKind, id uint) error {
	res := tx.Exec("DELETE FROM "+l.ledger.Table()+" WHERE kind = ? AND ingredient_id = ?", kind, id)
	if res.Error != nil {
		return fmt.Errorf("delete %s stock: %w", l.ledger, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%s stock for %s %d: %w", l.ledger, kind, id, apperr.ErrNotFound)
	}
	return nil
}

// Allocate takes req.Quantity from the row if enough is on hand. The check
// and the decrement are a single conditional UPDATE, so concurrent callers
// can never drive the quantity below zero.
func (l *Ledger) Allocate(ctx context.Context, req AllocateRequest) (Allocation, error) {
	if err := validKind(req.Kind); err != nil {
		return Allocation{}, err
	}
	if req.Quantity <= 0 {
		return Allocation{}, fmt.Errorf("quantity must be positive, got %d: %w", req.Quantity, apperr.ErrMalformedInput)
	}

	var out Allocation
	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		out, err = l.take(tx, Demand{Kind: req.Kind, IngredientID: req.IngredientID, Quantity: req.Quantity}, models.MovementAllocation, req.Requester, "")
		return err
	})
	if err != nil {
		return Allocation{}, err
	}

	if out.Success {
		applog.Info(ctx, "stock allocated", "ledger", l.ledger, "kind", req.Kind, "ingredient_id", req.IngredientID, "quantity", req.Quantity, "remaining", out.Remaining, "requester", req.Requester)
	} else {
		applog.Warn(ctx, "allocation refused", "ledger", l.ledger, "kind", req.Kind, "ingredient_id", req.IngredientID, "quantity", req.Quantity, "available", out.Remaining, "requester", req.Requester)
	}
	return out, nil
}

func (l *Ledger) take(tx *gorm.DB, d Demand, movement models.MovementType, requester, reference string) (Allocation, error) {
	out := Allocation{Kind: d.Kind, IngredientID: d.IngredientID, Requested: d.Quantity}

	res := l.table(tx).
		Where("kind = ? AND ingredient_id = ? AND quantity >= ?", d.Kind, d.IngredientID, d.Quantity).
		Updates(map[string]any{
			"quantity":   gorm.Expr("quantity - ?", d.Quantity),
			"updated_at": l.now(),
		})
	if res.Error != nil {
		return Allocation{}, fmt.Errorf("allocate %s stock: %w", l.ledger, res.Error)
	}

	level, err := l.get(tx, d.Kind, d.IngredientID)
	if err != nil {
		return Allocation{}, err
	}
	out.Remaining = level.Quantity
	out.Unit = level.Unit

	if res.RowsAffected == 0 {
		return out, nil
	}

	id, err := l.recordID(tx, d.Kind, d.IngredientID, movement, level.Quantity+d.Quantity, level.Quantity, requester, reference)
	if err != nil {
		return Allocation{}, err
	}
	out.ID = id
	out.Allocated = d.Quantity
	out.Success = true
	return out, nil
}

// AllocateAll takes every demand inside tx or none of them. When any line
// is short the returned error is a *ShortfallError listing every short line.
func (l *Ledger) AllocateAll(tx *gorm.DB, demands []Demand, requester, reference string) ([]Allocation, error) {
	var shortfalls []Shortfall
	allocations := make([]Allocation, 0, len(demands))
	for _, d := range demands {
		if err := validKind(d.Kind); err != nil {
			return nil, err
		}
		if d.Quantity <= 0 {
			return nil, fmt.Errorf("%s #%d: quantity must be positive, got %d: %w", d.Kind, d.IngredientID, d.Quantity, apperr.ErrMalformedInput)
		}
		a, err := l.take(tx, d, models.MovementProduction, requester, reference)
		if errors.Is(err, apperr.ErrNotFound) {
			shortfalls = append(shortfalls, Shortfall{Kind: d.Kind, IngredientID: d.IngredientID, Required: d.Quantity})
			continue
		}
		if err != nil {
			return nil, err
		}
		if !a.Success {
			shortfalls = append(shortfalls, Shortfall{Kind: d.Kind, IngredientID: d.IngredientID, Required: d.Quantity, Available: a.Remaining})
			continue
		}
		allocations = append(allocations, a)
	}
	if len(shortfalls) > 0 {
		return nil, &ShortfallError{Shortfalls: shortfalls}
	}
	return allocations, nil
}

// Restock adds req.Quantity to the row, creating it at zero first when it
// does not exist yet.
func (l *Ledger) Restock(ctx context.Context, req RestockRequest) (Level, error) {
	if err := validKind(req.Kind); err != nil {
		return Level{}, err
	}
	if req.Quantity <= 0 {
		return Level{}, fmt.Errorf("quantity must be positive, got %d: %w", req.Quantity, apperr.ErrMalformedInput)
	}

	var out Level
	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := l.now()
		row := map[string]any{
			"kind":          req.Kind,
			"ingredient_id": req.IngredientID,
			"quantity":      req.Quantity,
			"unit":          req.Unit,
			"updated_at":    now,
		}
		assignments := map[string]any{
			"quantity":   gorm.Expr(l.ledger.Table()+".quantity + ?", req.Quantity),
			"updated_at": now,
		}
		if strings.TrimSpace(req.Unit) != "" {
			assignments["unit"] = req.Unit
		}
		if l.ledger == models.LedgerLocal {
			row["min_stock_level"] = 0
		}

		err := l.table(tx).Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "kind"}, {Name: "ingredient_id"}},
			DoUpdates: clause.Assignments(assignments),
		}).Create(row).Error
		if err != nil {
			return fmt.Errorf("restock %s stock: %w", l.ledger, err)
		}

		out, err = l.get(tx, req.Kind, req.IngredientID)
		if err != nil {
			return err
		}
		return l.record(tx, req.Kind, req.IngredientID, models.MovementRestock, out.Quantity-req.Quantity, out.Quantity, req.Requester, "")
	})
	if err != nil {
		return Level{}, err
	}

	applog.Info(ctx, "stock restocked", "ledger", l.ledger, "kind", req.Kind, "ingredient_id", req.IngredientID, "added", req.Quantity, "quantity", out.Quantity)
	return out, nil
}

func (l *Ledger) record(tx *gorm.DB, kind models.IngredientKind, id uint, movement models.MovementType, before, after int64, requester, reference string) error {
	_, err := l.recordID(tx, kind, id, movement, before, after, requester, reference)
	return err
}

func (l *Ledger) recordID(tx *gorm.DB, kind models.IngredientKind, id uint, movement models.MovementType, before, after int64, requester, reference string) (string, error) {
	m := models.StockMovement{
		ID:             uuid.NewString(),
		Ledger:         l.ledger,
		Kind:           kind,
		IngredientID:   id,
		MovementType:   movement,
		Change:         after - before,
		QuantityBefore: before,
		QuantityAfter:  after,
		Requester:      requester,
		Reference:      reference,
		CreatedAt:      l.now(),
	}
	if err := tx.Create(&m).Error; err != nil {
		return "", fmt.Errorf("record movement: %w", err)
	}
	return m.ID, nil
}

// Movements lists ledger history, newest first.
func (l *Ledger) Movements(ctx context.Context, filter MovementFilter) ([]models.StockMovement, error) {
	query := l.db.WithContext(ctx).Where("ledger = ?", l.ledger)
	if filter.Kind != "" {
		if err := validKind(filter.Kind); err != nil {
			return nil, err
		}
		query = query.Where("kind = ?", filter.Kind)
	}
	if filter.IngredientID != 0 {
		query = query.Where("ingredient_id = ?", filter.IngredientID)
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}

	var movements []models.StockMovement
	if err := query.Order("created_at DESC").Find(&movements).Error; err != nil {
		return nil, fmt.Errorf("list movements: %w", err)
	}
	return movements, nil
}
