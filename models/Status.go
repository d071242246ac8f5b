package models

import (
	"fmt"
	"strings"
)

// OrderStatus tracks the production pipeline of an order.
type OrderStatus string

const (
	OrderCreated            OrderStatus = "created"
	OrderReadyForFermenting OrderStatus = "ready_for_fermenting"
	OrderFermenting         OrderStatus = "fermenting"
	OrderDoneFermenting     OrderStatus = "done_fermenting"
	OrderReadyForAging      OrderStatus = "ready_for_aging"
	OrderAging              OrderStatus = "aging"
	OrderDoneAging          OrderStatus = "done_aging"
	OrderReadyForProduction OrderStatus = "ready_for_production"
	OrderDone               OrderStatus = "done"
)

// OrderStatuses lists the pipeline in order.
var OrderStatuses = []OrderStatus{
	OrderCreated,
	OrderReadyForFermenting,
	OrderFermenting,
	OrderDoneFermenting,
	OrderReadyForAging,
	OrderAging,
	OrderDoneAging,
	OrderReadyForProduction,
	OrderDone,
}

// ParseOrderStatus validates a raw status value.
func ParseOrderStatus(value string) (OrderStatus, error) {
	status := OrderStatus(strings.ToLower(strings.TrimSpace(value)))
	for _, known := range OrderStatuses {
		if status == known {
			return status, nil
		}
	}
	return "", fmt.Errorf("unknown order status %q", value)
}

// Next returns the status that directly follows s, if any.
func (s OrderStatus) Next() (OrderStatus, bool) {
	for i, known := range OrderStatuses {
		if known == s && i+1 < len(OrderStatuses) {
			return OrderStatuses[i+1], true
		}
	}
	return "", false
}

// CanTransition reports whether an order may move from s to next.
// Only the adjacent forward step is allowed; staying put is a no-op.
func (s OrderStatus) CanTransition(next OrderStatus) bool {
	if s == next {
		return true
	}
	following, ok := s.Next()
	return ok && following == next
}

// InvoiceStatus tracks the commercial lifecycle of an invoice.
type InvoiceStatus string

const (
	InvoicePending      InvoiceStatus = "pending"
	InvoiceConfirmed    InvoiceStatus = "confirmed"
	InvoiceInProduction InvoiceStatus = "in_production"
	InvoiceDone         InvoiceStatus = "done"
	InvoiceCancelled    InvoiceStatus = "cancelled"
)

var InvoiceStatuses = []InvoiceStatus{
	InvoicePending,
	InvoiceConfirmed,
	InvoiceInProduction,
	InvoiceDone,
	InvoiceCancelled,
}

var invoiceTransitions = map[InvoiceStatus][]InvoiceStatus{
	InvoicePending:      {InvoiceConfirmed, InvoiceCancelled},
	InvoiceConfirmed:    {InvoiceInProduction, InvoiceCancelled},
	InvoiceInProduction: {InvoiceDone, InvoiceCancelled},
	InvoiceDone:         nil,
	InvoiceCancelled:    nil,
}

func ParseInvoiceStatus(value string) (InvoiceStatus, error) {
	status := InvoiceStatus(strings.ToLower(strings.TrimSpace(value)))
	if _, ok := invoiceTransitions[status]; !ok {
		return "", fmt.Errorf("unknown invoice status %q", value)
	}
	return status, nil
}

// CanTransition reports whether an invoice may move from s to next.
func (s InvoiceStatus) CanTransition(next InvoiceStatus) bool {
	if s == next {
		return true
	}
	for _, allowed := range invoiceTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Terminal reports whether no further transitions are possible.
func (s InvoiceStatus) Terminal() bool {
	return len(invoiceTransitions[s]) == 0
}
