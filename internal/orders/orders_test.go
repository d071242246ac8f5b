package orders

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"pifko/internal/apperr"
	"pifko/internal/db/mock"
	"pifko/models"
)

type stubVerifier struct {
	known map[uint]bool
}

func (v stubVerifier) VerifyBeer(_ context.Context, id uint) error {
	if !v.known[id] {
		return fmt.Errorf("beer %d: %w", id, apperr.ErrUnverifiedReference)
	}
	return nil
}

func newService(t *testing.T) *Service {
	t.Helper()

	database, err := mock.New(context.Background(), models.SchemaOrders)
	if err != nil {
		t.Fatalf("mock database: %v", err)
	}
	return NewService(database, stubVerifier{known: map[uint]bool{1: true, 2: true, 3: true, 4: true}})
}

func TestCreateOrderWritesLinesAndInvoice(t *testing.T) {
	t.Parallel()

	svc := newService(t)
	ctx := context.Background()
	svc.now = func() time.Time {
		return time.Date(2026, 3, 14, 15, 9, 26, 0, time.UTC)
	}

	order, err := svc.CreateOrder(ctx, OrderInput{
		CustomerID: 5,
		Lines:      []LineInput{{BeerID: 4, QuantityHecto: 12}, {BeerID: 1, QuantityHecto: 3}},
	})
	if err != nil {
		t.Fatalf("CreateOrder() error = %v", err)
	}
	if order.Status != models.OrderCreated || order.QuantitySum != 15 || len(order.Lines) != 2 {
		t.Fatalf("unexpected order %+v", order)
	}
	if order.Invoice == nil || order.Invoice.Status != models.InvoicePending || order.Invoice.CustomerID != 5 {
		t.Fatalf("unexpected invoice %+v", order.Invoice)
	}
	if got := order.Invoice.OrderDate.Format(dateLayout); got != "2026-03-14" {
		t.Fatalf("order date = %s", got)
	}
}

func TestCreateOrderRejects(t *testing.T) {
	t.Parallel()

	svc := newService(t)
	ctx := context.Background()

	tests := []struct {
		name string
		in   OrderInput
		want error
	}{
		{"no lines", OrderInput{CustomerID: 1}, apperr.ErrMalformedInput},
		{"zero quantity", OrderInput{CustomerID: 1, Lines: []LineInput{{BeerID: 1}}}, apperr.ErrMalformedInput},
		{"duplicate beer", OrderInput{CustomerID: 1, Lines: []LineInput{{BeerID: 1, QuantityHecto: 1}, {BeerID: 1, QuantityHecto: 2}}}, apperr.ErrMalformedInput},
		{"unknown beer", OrderInput{CustomerID: 1, Lines: []LineInput{{BeerID: 9, QuantityHecto: 1}}}, apperr.ErrUnverifiedReference},
		{"unknown customer", OrderInput{CustomerID: 99, Lines: []LineInput{{BeerID: 1, QuantityHecto: 1}}}, apperr.ErrNotFound},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.CreateOrder(ctx, tt.in); !errors.Is(err, tt.want) {
				t.Fatalf("CreateOrder() error = %v, want %v", err, tt.want)
			}
		})
	}

	orders, err := svc.ListOrders(ctx, "")
	if err != nil {
		t.Fatalf("ListOrders() error = %v", err)
	}
	if len(orders) != 5 {
		t.Fatalf("expected only seeded orders, got %d", len(orders))
	}
}

func TestOrderStatusTransitions(t *testing.T) {
	t.Parallel()

	svc := newService(t)
	ctx := context.Background()

	// Order 1 is seeded as ready_for_fermenting.
	if _, err := svc.SetOrderStatus(ctx, 1, "aging"); !errors.Is(err, apperr.ErrInvalidTransition) {
		t.Fatalf("expected invalid transition, got %v", err)
	}
	if _, err := svc.SetOrderStatus(ctx, 1, "brewing"); !errors.Is(err, apperr.ErrInvalidEnumValue) {
		t.Fatalf("expected invalid enum, got %v", err)
	}
	order, err := svc.SetOrderStatus(ctx, 1, "fermenting")
	if err != nil {
		t.Fatalf("SetOrderStatus() error = %v", err)
	}
	if order.Status != models.OrderFermenting {
		t.Fatalf("status = %s", order.Status)
	}
	order, err = svc.AdvanceOrder(ctx, 1)
	if err != nil {
		t.Fatalf("AdvanceOrder() error = %v", err)
	}
	if order.Status != models.OrderDoneFermenting {
		t.Fatalf("status = %s", order.Status)
	}

	// Order 5 is done.
	if _, err := svc.AdvanceOrder(ctx, 5); !errors.Is(err, apperr.ErrInvalidTransition) {
		t.Fatalf("expected invalid transition past done, got %v", err)
	}
}

func TestStatusUpdateLosesToConcurrentWriter(t *testing.T) {
	t.Parallel()

	svc := newService(t)
	ctx := context.Background()

	// Both writers read order 1 as ready_for_fermenting; the other one commits first.
	stale := models.OrderReadyForFermenting
	if _, err := svc.SetOrderStatus(ctx, 1, "fermenting"); err != nil {
		t.Fatalf("SetOrderStatus() error = %v", err)
	}
	err := updateStatus(svc.db.WithContext(ctx), &models.Order{}, "order", 1, stale, models.OrderFermenting)
	if !errors.Is(err, apperr.ErrInvalidTransition) {
		t.Fatalf("expected invalid transition for a stale order status, got %v", err)
	}

	// Invoice 3 is pending; a stale confirmed -> in_production must not apply.
	err = updateStatus(svc.db.WithContext(ctx), &models.Invoice{}, "invoice", 3, models.InvoiceConfirmed, models.InvoiceInProduction)
	if !errors.Is(err, apperr.ErrInvalidTransition) {
		t.Fatalf("expected invalid transition for a stale invoice status, got %v", err)
	}
	invoice, err := svc.GetInvoice(ctx, 3)
	if err != nil {
		t.Fatalf("GetInvoice() error = %v", err)
	}
	if invoice.Status != models.InvoicePending {
		t.Fatalf("invoice 3 status = %s, want pending", invoice.Status)
	}

	// Re-applying the current status is a no-op, not a conflict.
	order, err := svc.SetOrderStatus(ctx, 1, "fermenting")
	if err != nil || order.Status != models.OrderFermenting {
		t.Fatalf("same-status update: order=%+v err=%v", order, err)
	}
}

func TestInvoiceCancellation(t *testing.T) {
	t.Parallel()

	svc := newService(t)
	ctx := context.Background()

	// Seeded invoices: 1 confirmed, 2 in_production, 3 pending, 4 done.
	for _, id := range []uint{1, 2, 3} {
		invoice, err := svc.CancelInvoice(ctx, id)
		if err != nil {
			t.Fatalf("CancelInvoice(%d) error = %v", id, err)
		}
		if invoice.Status != models.InvoiceCancelled {
			t.Fatalf("invoice %d status = %s", id, invoice.Status)
		}
	}

	for _, next := range []string{"pending", "confirmed", "in_production", "done"} {
		if _, err := svc.SetInvoiceStatus(ctx, 1, next); !errors.Is(err, apperr.ErrInvalidTransition) {
			t.Fatalf("leaving cancelled to %s: expected invalid transition, got %v", next, err)
		}
	}

	if _, err := svc.CancelInvoice(ctx, 4); !errors.Is(err, apperr.ErrInvalidTransition) {
		t.Fatalf("expected done invoice to refuse cancellation, got %v", err)
	}
}

func TestUpdateInvoiceDates(t *testing.T) {
	t.Parallel()

	svc := newService(t)
	ctx := context.Background()

	if _, err := svc.UpdateInvoiceDates(ctx, 2, InvoiceDates{ShipDate: "14/03/2026"}); !errors.Is(err, apperr.ErrMalformedInput) {
		t.Fatalf("expected malformed input, got %v", err)
	}
	invoice, err := svc.UpdateInvoiceDates(ctx, 2, InvoiceDates{ShipDate: "2026-03-20"})
	if err != nil {
		t.Fatalf("UpdateInvoiceDates() error = %v", err)
	}
	if invoice.ShipDate == nil || invoice.ShipDate.Format(dateLayout) != "2026-03-20" {
		t.Fatalf("unexpected ship date %v", invoice.ShipDate)
	}
}

func TestOrderLinesRecomputeSum(t *testing.T) {
	t.Parallel()

	svc := newService(t)
	ctx := context.Background()

	order, err := svc.SetOrderLine(ctx, 2, LineInput{BeerID: 3, QuantityHecto: 5})
	if err != nil {
		t.Fatalf("SetOrderLine() error = %v", err)
	}
	if order.QuantitySum != 30 || len(order.Lines) != 2 {
		t.Fatalf("unexpected order %+v", order)
	}

	order, err = svc.SetOrderLine(ctx, 2, LineInput{BeerID: 3, QuantityHecto: 10})
	if err != nil {
		t.Fatalf("SetOrderLine() overwrite error = %v", err)
	}
	if order.QuantitySum != 35 {
		t.Fatalf("sum = %d, want 35", order.QuantitySum)
	}

	order, err = svc.RemoveOrderLine(ctx, 2, 1)
	if err != nil {
		t.Fatalf("RemoveOrderLine() error = %v", err)
	}
	if order.QuantitySum != 10 || len(order.Lines) != 1 {
		t.Fatalf("unexpected order after removal %+v", order)
	}

	if _, err := svc.RemoveOrderLine(ctx, 2, 1); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestDeleteOrderAndCustomer(t *testing.T) {
	t.Parallel()

	svc := newService(t)
	ctx := context.Background()

	if _, err := svc.DeleteCustomer(ctx, 3); !errors.Is(err, apperr.ErrReferenced) {
		t.Fatalf("expected referenced error, got %v", err)
	}
	if _, err := svc.DeleteOrder(ctx, 3); err != nil {
		t.Fatalf("DeleteOrder() error = %v", err)
	}
	if _, err := svc.GetOrder(ctx, 3); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected order gone, got %v", err)
	}
	if _, err := svc.DeleteCustomer(ctx, 3); err != nil {
		t.Fatalf("DeleteCustomer() error = %v", err)
	}
}

func TestHTTPBeerVerifier(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/beers/1":
			w.WriteHeader(http.StatusOK)
		case "/beers/2":
			w.WriteHeader(http.StatusInternalServerError)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)

	verifier := NewBeerVerifier(srv.URL+"/", time.Second)
	ctx := context.Background()

	if err := verifier.VerifyBeer(ctx, 1); err != nil {
		t.Fatalf("VerifyBeer(1) error = %v", err)
	}
	for _, id := range []uint{2, 3} {
		if err := verifier.VerifyBeer(ctx, id); !errors.Is(err, apperr.ErrUnverifiedReference) {
			t.Fatalf("VerifyBeer(%d) error = %v, want unverified", id, err)
		}
	}

	if _, ok := NewBeerVerifier("", time.Second).(NoopVerifier); !ok {
		t.Fatalf("expected noop verifier without URL")
	}
}
