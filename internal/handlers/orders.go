package handlers

import (
	"fmt"
	"net/http"

	"pifko/internal/apperr"
	"pifko/internal/orders"
	"pifko/models"
)

// Orders serves the read-only REST surface of the Orders service.
type Orders struct {
	svc *orders.Service
}

func NewOrders(svc *orders.Service) *Orders {
	return &Orders{svc: svc}
}

func (h *Orders) Routes() []Route {
	return []Route{
		{"GET /{$}", Root("Hello from Orders Service")},
		{"GET /health", Health("orders-service")},
		{"GET /orders", h.AllOrders},
		{"GET /orders/{id}", h.Order},
		{"GET /customers", h.Customers},
		{"GET /customers/{id}", h.Customer},
		{"GET /invoices", h.Invoices},
		{"GET /invoices/{id}", h.Invoice},
	}
}

func (h *Orders) AllOrders(w http.ResponseWriter, r *http.Request) {
	var status models.OrderStatus
	if raw := r.URL.Query().Get("status"); raw != "" {
		parsed, err := models.ParseOrderStatus(raw)
		if err != nil {
			writeError(w, r, fmt.Errorf("%v: %w", err, apperr.ErrInvalidEnumValue))
			return
		}
		status = parsed
	}
	list, err := h.svc.ListOrders(r.Context(), status)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeList(w, "orders", list, len(list))
}

func (h *Orders) Order(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	order, err := h.svc.GetOrder(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"order": order})
}

func (h *Orders) Customers(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.ListCustomers(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeList(w, "customers", list, len(list))
}

func (h *Orders) Customer(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	customer, err := h.svc.GetCustomer(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"customer": customer})
}

func (h *Orders) Invoices(w http.ResponseWriter, r *http.Request) {
	var status models.InvoiceStatus
	if raw := r.URL.Query().Get("status"); raw != "" {
		parsed, err := models.ParseInvoiceStatus(raw)
		if err != nil {
			writeError(w, r, fmt.Errorf("%v: %w", err, apperr.ErrInvalidEnumValue))
			return
		}
		status = parsed
	}
	list, err := h.svc.ListInvoices(r.Context(), status)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeList(w, "invoices", list, len(list))
}

func (h *Orders) Invoice(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	invoice, err := h.svc.GetInvoice(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"invoice": invoice})
}
