// Package orders is the Orders service: customers, orders with their beer
// lines, and invoices.
package orders

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"pifko/internal/apperr"
	applog "pifko/internal/log"
	"pifko/models"
)

type Service struct {
	db       *gorm.DB
	verifier BeerVerifier
	now      func() time.Time
}

func NewService(db *gorm.DB, verifier BeerVerifier) *Service {
	if verifier == nil {
		verifier = NoopVerifier{}
	}
	return &Service{
		db:       db,
		verifier: verifier,
		now: func() time.Time {
			return time.Now().UTC()
		},
	}
}

func notFound(err error, format string, args ...any) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf(format+": %w", append(args, apperr.ErrNotFound)...)
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

func (s *Service) CreateCustomer(ctx context.Context, name string) (models.Customer, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.Customer{}, fmt.Errorf("customer name is required: %w", apperr.ErrMalformedInput)
	}
	customer := models.Customer{Name: name}
	if err := s.db.WithContext(ctx).Create(&customer).Error; err != nil {
		return models.Customer{}, fmt.Errorf("create customer: %w", err)
	}
	applog.Info(ctx, "customer created", "id", customer.ID)
	return customer, nil
}

func (s *Service) GetCustomer(ctx context.Context, id uint) (models.Customer, error) {
	return getCustomer(s.db.WithContext(ctx), id)
}

func getCustomer(tx *gorm.DB, id uint) (models.Customer, error) {
	var customer models.Customer
	if err := tx.Take(&customer, id).Error; err != nil {
		return models.Customer{}, notFound(err, "customer %d", id)
	}
	return customer, nil
}

func (s *Service) ListCustomers(ctx context.Context) ([]models.Customer, error) {
	var customers []models.Customer
	if err := s.db.WithContext(ctx).Order("id").Find(&customers).Error; err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}
	return customers, nil
}

func (s *Service) UpdateCustomer(ctx context.Context, id uint, name string) (models.Customer, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.Customer{}, fmt.Errorf("customer name is required: %w", apperr.ErrMalformedInput)
	}

	var customer models.Customer
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if customer, err = getCustomer(tx, id); err != nil {
			return err
		}
		customer.Name = name
		return tx.Model(&models.Customer{}).Where("id = ?", id).Update("name", name).Error
	})
	if err != nil {
		return models.Customer{}, err
	}
	return customer, nil
}

// DeleteCustomer removes a customer that no invoice refers to.
func (s *Service) DeleteCustomer(ctx context.Context, id uint) (models.Customer, error) {
	var customer models.Customer
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if customer, err = getCustomer(tx, id); err != nil {
			return err
		}
		var invoices int64
		if err := tx.Model(&models.Invoice{}).Where("customer_id = ?", id).Count(&invoices).Error; err != nil {
			return fmt.Errorf("count invoices for customer %d: %w", id, err)
		}
		if invoices > 0 {
			return fmt.Errorf("customer %d has %d invoice(s): %w", id, invoices, apperr.ErrReferenced)
		}
		return tx.Delete(&models.Customer{}, id).Error
	})
	if err != nil {
		return models.Customer{}, err
	}
	applog.Info(ctx, "customer deleted", "id", id)
	return customer, nil
}

// LineInput is one beer of an order.
type LineInput struct {
	BeerID        uint
	QuantityHecto int64
}

type OrderInput struct {
	CustomerID uint
	Lines      []LineInput
}

func (in OrderInput) validate() error {
	if len(in.Lines) == 0 {
		return fmt.Errorf("an order needs at least one line: %w", apperr.ErrMalformedInput)
	}
	seen := make(map[uint]bool, len(in.Lines))
	for _, line := range in.Lines {
		if line.QuantityHecto <= 0 {
			return fmt.Errorf("line for beer %d: quantity must be positive: %w", line.BeerID, apperr.ErrMalformedInput)
		}
		if seen[line.BeerID] {
			return fmt.Errorf("beer %d appears twice: %w", line.BeerID, apperr.ErrMalformedInput)
		}
		seen[line.BeerID] = true
	}
	return nil
}

// CreateOrder stores the order, its lines and a pending invoice dated today
// in one transaction. Every beer is verified with the brewery first.
func (s *Service) CreateOrder(ctx context.Context, in OrderInput) (models.Order, error) {
	if err := in.validate(); err != nil {
		return models.Order{}, err
	}
	for _, line := range in.Lines {
		if err := s.verifier.VerifyBeer(ctx, line.BeerID); err != nil {
			return models.Order{}, err
		}
	}

	var orderID uint
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := getCustomer(tx, in.CustomerID); err != nil {
			return err
		}

		order := models.Order{Status: models.OrderCreated}
		for _, line := range in.Lines {
			order.QuantitySum += line.QuantityHecto
		}
		if err := tx.Omit(clause.Associations).Create(&order).Error; err != nil {
			return fmt.Errorf("create order: %w", err)
		}

		for _, line := range in.Lines {
			row := models.OrderLine{OrderID: order.ID, BeerID: line.BeerID, QuantityHecto: line.QuantityHecto}
			if err := tx.Create(&row).Error; err != nil {
				return fmt.Errorf("create order line: %w", err)
			}
		}

		invoice := models.Invoice{
			OrderDate:  s.now().Truncate(24 * time.Hour),
			Status:     models.InvoicePending,
			CustomerID: in.CustomerID,
			OrderID:    order.ID,
		}
		if err := tx.Omit(clause.Associations).Create(&invoice).Error; err != nil {
			return fmt.Errorf("create invoice: %w", err)
		}
		orderID = order.ID
		return nil
	})
	if err != nil {
		return models.Order{}, err
	}

	applog.Info(ctx, "order created", "id", orderID, "customer_id", in.CustomerID, "lines", len(in.Lines))
	return s.GetOrder(ctx, orderID)
}

func (s *Service) GetOrder(ctx context.Context, id uint) (models.Order, error) {
	return getOrder(s.db.WithContext(ctx), id)
}

func getOrder(tx *gorm.DB, id uint) (models.Order, error) {
	var order models.Order
	err := tx.Preload("Lines", func(db *gorm.DB) *gorm.DB {
		return db.Order("beer_id")
	}).Preload("Invoice").Take(&order, id).Error
	if err != nil {
		return models.Order{}, notFound(err, "order %d", id)
	}
	return order, nil
}

// ListOrders returns orders with lines and invoice. An empty status lists all.
func (s *Service) ListOrders(ctx context.Context, status models.OrderStatus) ([]models.Order, error) {
	query := s.db.WithContext(ctx).Preload("Lines", func(db *gorm.DB) *gorm.DB {
		return db.Order("beer_id")
	}).Preload("Invoice")
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var orders []models.Order
	if err := query.Order("id").Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return orders, nil
}

// DeleteOrder removes lines, invoice and order, in that order.
func (s *Service) DeleteOrder(ctx context.Context, id uint) (models.Order, error) {
	var order models.Order
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if order, err = getOrder(tx, id); err != nil {
			return err
		}
		if err := tx.Where("order_id = ?", id).Delete(&models.OrderLine{}).Error; err != nil {
			return fmt.Errorf("delete order lines: %w", err)
		}
		if err := tx.Where("order_id = ?", id).Delete(&models.Invoice{}).Error; err != nil {
			return fmt.Errorf("delete invoice: %w", err)
		}
		return tx.Delete(&models.Order{}, id).Error
	})
	if err != nil {
		return models.Order{}, err
	}
	applog.Info(ctx, "order deleted", "id", id)
	return order, nil
}

// SetOrderStatus moves the order one step along the production pipeline.
func (s *Service) SetOrderStatus(ctx context.Context, id uint, raw string) (models.Order, error) {
	next, err := models.ParseOrderStatus(raw)
	if err != nil {
		return models.Order{}, fmt.Errorf("%v: %w", err, apperr.ErrInvalidEnumValue)
	}
	return s.transitionOrder(ctx, id, func(current models.OrderStatus) (models.OrderStatus, error) {
		if !current.CanTransition(next) {
			return "", fmt.Errorf("order %d cannot move from %s to %s: %w", id, current, next, apperr.ErrInvalidTransition)
		}
		return next, nil
	})
}

// AdvanceOrder moves the order to the status that follows its current one.
func (s *Service) AdvanceOrder(ctx context.Context, id uint) (models.Order, error) {
	return s.transitionOrder(ctx, id, func(current models.OrderStatus) (models.OrderStatus, error) {
		next, ok := current.Next()
		if !ok {
			return "", fmt.Errorf("order %d is already %s: %w", id, current, apperr.ErrInvalidTransition)
		}
		return next, nil
	})
}

func (s *Service) transitionOrder(ctx context.Context, id uint, decide func(models.OrderStatus) (models.OrderStatus, error)) (models.Order, error) {
	var order models.Order
	var from models.OrderStatus
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if order, err = getOrder(tx, id); err != nil {
			return err
		}
		from = order.Status
		next, err := decide(order.Status)
		if err != nil {
			return err
		}
		if next == order.Status {
			return nil
		}
		if err := updateStatus(tx, &models.Order{}, "order", id, order.Status, next); err != nil {
			return err
		}
		order.Status = next
		return nil
	})
	if err != nil {
		return models.Order{}, err
	}
	applog.Info(ctx, "order status changed", "id", id, "from", from, "to", order.Status)
	return order, nil
}

// SetOrderLine creates or overwrites one beer line and recomputes the sum.
func (s *Service) SetOrderLine(ctx context.Context, orderID uint, line LineInput) (models.Order, error) {
	if line.QuantityHecto <= 0 {
		return models.Order{}, fmt.Errorf("quantity must be positive: %w", apperr.ErrMalformedInput)
	}
	if err := s.verifier.VerifyBeer(ctx, line.BeerID); err != nil {
		return models.Order{}, err
	}

	return s.changeLines(ctx, orderID, func(tx *gorm.DB) error {
		row := models.OrderLine{OrderID: orderID, BeerID: line.BeerID, QuantityHecto: line.QuantityHecto}
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "order_id"}, {Name: "beer_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"quantity_hecto"}),
		}).Create(&row).Error
	})
}

func (s *Service) RemoveOrderLine(ctx context.Context, orderID, beerID uint) (models.Order, error) {
	return s.changeLines(ctx, orderID, func(tx *gorm.DB) error {
		res := tx.Where("order_id = ? AND beer_id = ?", orderID, beerID).Delete(&models.OrderLine{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("order %d line for beer %d: %w", orderID, beerID, apperr.ErrNotFound)
		}
		return nil
	})
}

func (s *Service) changeLines(ctx context.Context, orderID uint, change func(tx *gorm.DB) error) (models.Order, error) {
	var order models.Order
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := getOrder(tx, orderID); err != nil {
			return err
		}
		if err := change(tx); err != nil {
			return err
		}
		var sum int64
		if err := tx.Model(&models.OrderLine{}).Where("order_id = ?", orderID).Select("COALESCE(SUM(quantity_hecto), 0)").Scan(&sum).Error; err != nil {
			return fmt.Errorf("sum order lines: %w", err)
		}
		if err := tx.Model(&models.Order{}).Where("id = ?", orderID).Update("quantity_sum", sum).Error; err != nil {
			return fmt.Errorf("update order sum: %w", err)
		}
		var err error
		order, err = getOrder(tx, orderID)
		return err
	})
	if err != nil {
		return models.Order{}, err
	}
	return order, nil
}

// updateStatus moves a row from one status to another only if it still holds
// from. A row changed by another writer in between yields ErrInvalidTransition.
func updateStatus(tx *gorm.DB, model any, entity string, id uint, from, to any) error {
	res := tx.Model(model).Where("id = ? AND status = ?", id, from).Update("status", to)
	if res.Error != nil {
		return fmt.Errorf("update %s %d status: %w", entity, id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%s %d is no longer %v: %w", entity, id, from, apperr.ErrInvalidTransition)
	}
	return nil
}
