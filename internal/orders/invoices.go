package orders

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"pifko/internal/apperr"
	applog "pifko/internal/log"
	"pifko/models"
)

const dateLayout = "2006-01-02"

// ParseDate reads a YYYY-MM-DD date.
func ParseDate(value string) (time.Time, error) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(value))
	if err != nil {
		return time.Time{}, fmt.Errorf("date %q must be YYYY-MM-DD: %w", value, apperr.ErrMalformedInput)
	}
	return t, nil
}

func (s *Service) GetInvoice(ctx context.Context, id uint) (models.Invoice, error) {
	return getInvoice(s.db.WithContext(ctx), id)
}

func getInvoice(tx *gorm.DB, id uint) (models.Invoice, error) {
	var invoice models.Invoice
	if err := tx.Preload("Customer").Take(&invoice, id).Error; err != nil {
		return models.Invoice{}, notFound(err, "invoice %d", id)
	}
	return invoice, nil
}

// ListInvoices returns invoices, optionally only those in one status.
func (s *Service) ListInvoices(ctx context.Context, status models.InvoiceStatus) ([]models.Invoice, error) {
	query := s.db.WithContext(ctx).Preload("Customer")
	if status != "" {
		query = query.Where("status = ?", status)
	}
	var invoices []models.Invoice
	if err := query.Order("id").Find(&invoices).Error; err != nil {
		return nil, fmt.Errorf("list invoices: %w", err)
	}
	return invoices, nil
}

// InvoiceDates holds optional replacements. Empty strings keep the current value.
type InvoiceDates struct {
	OrderDate string
	ShipDate  string
}

func (s *Service) UpdateInvoiceDates(ctx context.Context, id uint, dates InvoiceDates) (models.Invoice, error) {
	updates := map[string]any{}
	if strings.TrimSpace(dates.OrderDate) != "" {
		t, err := ParseDate(dates.OrderDate)
		if err != nil {
			return models.Invoice{}, err
		}
		updates["order_date"] = t
	}
	if strings.TrimSpace(dates.ShipDate) != "" {
		t, err := ParseDate(dates.ShipDate)
		if err != nil {
			return models.Invoice{}, err
		}
		updates["ship_date"] = t
	}

	var invoice models.Invoice
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		current, err := getInvoice(tx, id)
		if err != nil {
			return err
		}
		if len(updates) == 0 {
			invoice = current
			return nil
		}
		if err := tx.Model(&models.Invoice{}).Where("id = ?", id).Updates(updates).Error; err != nil {
			return fmt.Errorf("update invoice %d: %w", id, err)
		}
		invoice, err = getInvoice(tx, id)
		return err
	})
	if err != nil {
		return models.Invoice{}, err
	}
	return invoice, nil
}

// SetInvoiceStatus applies a status change permitted by the invoice lifecycle.
func (s *Service) SetInvoiceStatus(ctx context.Context, id uint, raw string) (models.Invoice, error) {
	next, err := models.ParseInvoiceStatus(raw)
	if err != nil {
		return models.Invoice{}, fmt.Errorf("%v: %w", err, apperr.ErrInvalidEnumValue)
	}

	var invoice models.Invoice
	var from models.InvoiceStatus
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if invoice, err = getInvoice(tx, id); err != nil {
			return err
		}
		from = invoice.Status
		if !invoice.Status.CanTransition(next) {
			return fmt.Errorf("invoice %d cannot move from %s to %s: %w", id, invoice.Status, next, apperr.ErrInvalidTransition)
		}
		if next == invoice.Status {
			return nil
		}
		if err := updateStatus(tx, &models.Invoice{}, "invoice", id, invoice.Status, next); err != nil {
			return err
		}
		invoice.Status = next
		return nil
	})
	if err != nil {
		return models.Invoice{}, err
	}

	applog.Info(ctx, "invoice status changed", "id", id, "from", from, "to", next)
	return invoice, nil
}

// CancelInvoice is SetInvoiceStatus(cancelled).
func (s *Service) CancelInvoice(ctx context.Context, id uint) (models.Invoice, error) {
	return s.SetInvoiceStatus(ctx, id, string(models.InvoiceCancelled))
}
