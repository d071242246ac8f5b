package tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"pifko/internal/apperr"
	"pifko/internal/orders"
	"pifko/models"
)

var orderLineSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"beer_id":        map[string]any{"type": "number"},
		"quantity_hecto": map[string]any{"type": "number", "description": "Hectoliters of this beer"},
	},
	"required": []string{"beer_id", "quantity_hecto"},
}

func (a *args) orderLines(key string) []orders.LineInput {
	objs := a.Objects(key)
	lines := make([]orders.LineInput, 0, len(objs))
	for _, obj := range objs {
		lines = append(lines, orders.LineInput{
			BeerID:        uint(a.field(obj, "beer_id")),
			QuantityHecto: a.field(obj, "quantity_hecto"),
		})
	}
	return lines
}

func (a *args) orderStatus(key string) models.OrderStatus {
	raw := a.OptString(key)
	if raw == "" || a.err != nil {
		return ""
	}
	status, err := models.ParseOrderStatus(raw)
	if err != nil {
		a.err = fmt.Errorf("%v: %w", err, apperr.ErrInvalidEnumValue)
	}
	return status
}

func (a *args) invoiceStatus(key string) models.InvoiceStatus {
	raw := a.OptString(key)
	if raw == "" || a.err != nil {
		return ""
	}
	status, err := models.ParseInvoiceStatus(raw)
	if err != nil {
		a.err = fmt.Errorf("%v: %w", err, apperr.ErrInvalidEnumValue)
	}
	return status
}

func orderStatusNames() []string {
	names := make([]string, 0, len(models.OrderStatuses))
	for _, s := range models.OrderStatuses {
		names = append(names, string(s))
	}
	return names
}

func invoiceStatusNames() []string {
	names := make([]string, 0, len(models.InvoiceStatuses))
	for _, s := range models.InvoiceStatuses {
		names = append(names, string(s))
	}
	return names
}

// OrdersTools lists the Orders actions.
func OrdersTools(svc *orders.Service) []server.ServerTool {
	return []server.ServerTool{
		{
			Tool: mcp.NewTool("create_customer",
				mcp.WithDescription("Register a customer"),
				mcp.WithString("name", mcp.Required(), mcp.Description("Customer name")),
			),
			Handler: func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				a := newArgs(req)
				name := a.String("name")
				if a.err != nil {
					return respond(ctx, "create_customer", "", a.err)
				}
				c, err := svc.CreateCustomer(ctx, name)
				return respond(ctx, "create_customer", "Created "+FormatCustomer(c), err)
			},
		},
		{
			Tool: mcp.NewTool("get_customer",
				mcp.WithDescription("Show one customer"),
				idParam("customer_id", "Customer id"),
			),
			Handler: func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				a := newArgs(req)
				id := a.ID("customer_id")
				if a.err != nil {
					return respond(ctx, "get_customer", "", a.err)
				}
				c, err := svc.GetCustomer(ctx, id)
				return respond(ctx, "get_customer", FormatCustomer(c), err)
			},
		},
		{
			Tool: mcp.NewTool("list_customers", mcp.WithDescription("List every customer")),
			Handler: func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				list, err := svc.ListCustomers(ctx)
				return respond(ctx, "list_customers", FormatCustomers(list), err)
			},
		},
		{
			Tool: mcp.NewTool("update_customer",
				mcp.WithDescription("Rename a customer"),
				idParam("customer_id", "Customer id"),
				mcp.WithString("name", mcp.Required(), mcp.Description("Customer name")),
			),
			Handler: func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				a := newArgs(req)
				id, name := a.ID("customer_id"), a.String("name")
				if a.err != nil {
					return respond(ctx, "update_customer", "", a.err)
				}
				c, err := svc.UpdateCustomer(ctx, id, name)
				return respond(ctx, "update_customer", "Updated "+FormatCustomer(c), err)
			},
		},
		{
			Tool: mcp.NewTool("delete_customer",
				mcp.WithDescription("Delete a customer without invoices"),
				idParam("customer_id", "Customer id"),
			),
			Handler: func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				a := newArgs(req)
				id := a.ID("customer_id")
				if a.err != nil {
					return respond(ctx, "delete_customer", "", a.err)
				}
				c, err := svc.DeleteCustomer(ctx, id)
				return respond(ctx, "delete_customer", FormatDeleted(FormatCustomer(c)), err)
			},
		},
		{
			Tool: mcp.NewTool("create_order",
				mcp.WithDescription("Place an order for a customer. A pending invoice dated today is created with it."),
				idParam("customer_id", "Customer id"),
				mcp.WithArray("lines", mcp.Required(), mcp.Description("Beers and hectoliters"), mcp.Items(orderLineSchema)),
			),
			Handler: func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				a := newArgs(req)
				in := orders.OrderInput{CustomerID: a.ID("customer_id"), Lines: a.orderLines("lines")}
				if a.err != nil {
					return respond(ctx, "create_order", "", a.err)
				}
				o, err := svc.CreateOrder(ctx, in)
				return respond(ctx, "create_order", "Created "+FormatOrder(o), err)
			},
		},
		{
			Tool: mcp.NewTool("get_order",
				mcp.WithDescription("Show an order with its lines and invoice"),
				idParam("order_id", "Order id"),
			),
			Handler: func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				a := newArgs(req)
				id := a.ID("order_id")
				if a.err != nil {
					return respond(ctx, "get_order", "", a.err)
				}
				o, err := svc.GetOrder(ctx, id)
				return respond(ctx, "get_order", FormatOrder(o), err)
			},
		},
		{
			Tool: mcp.NewTool("list_orders",
				mcp.WithDescription("List orders, optionally in one status"),
				mcp.WithString("status", mcp.Description("Order status filter"), mcp.Enum(orderStatusNames()...)),
			),
			Handler: func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				a := newArgs(req)
				status := a.orderStatus("status")
				if a.err != nil {
					return respond(ctx, "list_orders", "", a.err)
				}
				list, err := svc.ListOrders(ctx, status)
				return respond(ctx, "list_orders", FormatOrders(list), err)
			},
		},
		{
			Tool: mcp.NewTool("delete_order",
				mcp.WithDescription("Delete an order with its lines and invoice"),
				idParam("order_id", "Order id"),
			),
			Handler: func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				a := newArgs(req)
				id := a.ID("order_id")
				if a.err != nil {
					return respond(ctx, "delete_order", "", a.err)
				}
				o, err := svc.DeleteOrder(ctx, id)
				return respond(ctx, "delete_order", FormatDeleted(fmt.Sprintf("order #%d", o.ID)), err)
			},
		},
		{
			Tool: mcp.NewTool("set_order_status",
				mcp.WithDescription("Move an order to the next production status"),
				idParam("order_id", "Order id"),
				mcp.WithString("status", mcp.Required(), mcp.Description("Target status"), mcp.Enum(orderStatusNames()...)),
			),
			Handler: func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				a := newArgs(req)
				id, status := a.ID("order_id"), a.String("status")
				if a.err != nil {
					return respond(ctx, "set_order_status", "", a.err)
				}
				o, err := svc.SetOrderStatus(ctx, id, status)
				return respond(ctx, "set_order_status", fmt.Sprintf("Order #%d is now %s.", o.ID, o.Status), err)
			},
		},
		{
			Tool: mcp.NewTool("advance_order",
				mcp.WithDescription("Move an order one step forward"),
				idParam("order_id", "Order id"),
			),
			Handler: func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				a := newArgs(req)
				id := a.ID("order_id")
				if a.err != nil {
					return respond(ctx, "advance_order", "", a.err)
				}
				o, err := svc.AdvanceOrder(ctx, id)
				return respond(ctx, "advance_order", fmt.Sprintf("Order #%d is now %s.", o.ID, o.Status), err)
			},
		},
		{
			Tool: mcp.NewTool("set_order_line",
				mcp.WithDescription("Add or change the hectoliters of one beer in an order"),
				idParam("order_id", "Order id"),
				idParam("beer_id", "Beer id"),
				mcp.WithNumber("quantity_hecto", mcp.Required(), mcp.Description("Hectoliters")),
			),
			Handler: func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				a := newArgs(req)
				id := a.ID("order_id")
				line := orders.LineInput{BeerID: a.ID("beer_id"), QuantityHecto: a.Int("quantity_hecto")}
				if a.err != nil {
					return respond(ctx, "set_order_line", "", a.err)
				}
				o, err := svc.SetOrderLine(ctx, id, line)
				return respond(ctx, "set_order_line", "Updated "+FormatOrder(o), err)
			},
		},
		{
			Tool: mcp.NewTool("remove_order_line",
				mcp.WithDescription("Remove one beer from an order"),
				idParam("order_id", "Order id"),
				idParam("beer_id", "Beer id"),
			),
			Handler: func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				a := newArgs(req)
				id, beer := a.ID("order_id"), a.ID("beer_id")
				if a.err != nil {
					return respond(ctx, "remove_order_line", "", a.err)
				}
				o, err := svc.RemoveOrderLine(ctx, id, beer)
				return respond(ctx, "remove_order_line", "Updated "+FormatOrder(o), err)
			},
		},
		{
			Tool: mcp.NewTool("get_invoice",
				mcp.WithDescription("Show one invoice"),
				idParam("invoice_id", "Invoice id"),
			),
			Handler: func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				a := newArgs(req)
				id := a.ID("invoice_id")
				if a.err != nil {
					return respond(ctx, "get_invoice", "", a.err)
				}
				inv, err := svc.GetInvoice(ctx, id)
				return respond(ctx, "get_invoice", FormatInvoice(inv), err)
			},
		},
		{
			Tool: mcp.NewTool("list_invoices",
				mcp.WithDescription("List invoices, optionally in one status"),
				mcp.WithString("status", mcp.Description("Invoice status filter"), mcp.Enum(invoiceStatusNames()...)),
			),
			Handler: func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				a := newArgs(req)
				status := a.invoiceStatus("status")
				if a.err != nil {
					return respond(ctx, "list_invoices", "", a.err)
				}
				list, err := svc.ListInvoices(ctx, status)
				return respond(ctx, "list_invoices", FormatInvoices(list), err)
			},
		},
		{
			Tool: mcp.NewTool("update_invoice_dates",
				mcp.WithDescription("Change the order or ship date of an invoice (YYYY-MM-DD)"),
				idParam("invoice_id", "Invoice id"),
				mcp.WithString("order_date", mcp.Description("New order date")),
				mcp.WithString("ship_date", mcp.Description("New ship date")),
			),
			Handler: func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				a := newArgs(req)
				id := a.ID("invoice_id")
				dates := orders.InvoiceDates{OrderDate: a.OptString("order_date"), ShipDate: a.OptString("ship_date")}
				if a.err != nil {
					return respond(ctx, "update_invoice_dates", "", a.err)
				}
				inv, err := svc.UpdateInvoiceDates(ctx, id, dates)
				return respond(ctx, "update_invoice_dates", "Updated "+FormatInvoice(inv), err)
			},
		},
		{
			Tool: mcp.NewTool("set_invoice_status",
				mcp.WithDescription("Move an invoice along its lifecycle"),
				idParam("invoice_id", "Invoice id"),
				mcp.WithString("status", mcp.Required(), mcp.Description("Target status"), mcp.Enum(invoiceStatusNames()...)),
			),
			Handler: func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				a := newArgs(req)
				id, status := a.ID("invoice_id"), a.String("status")
				if a.err != nil {
					return respond(ctx, "set_invoice_status", "", a.err)
				}
				inv, err := svc.SetInvoiceStatus(ctx, id, status)
				return respond(ctx, "set_invoice_status", fmt.Sprintf("Invoice #%d is now %s.", inv.ID, inv.Status), err)
			},
		},
		{
			Tool: mcp.NewTool("cancel_invoice",
				mcp.WithDescription("Cancel an invoice that is not done"),
				idParam("invoice_id", "Invoice id"),
			),
			Handler: func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				a := newArgs(req)
				id := a.ID("invoice_id")
				if a.err != nil {
					return respond(ctx, "cancel_invoice", "", a.err)
				}
				inv, err := svc.CancelInvoice(ctx, id)
				return respond(ctx, "cancel_invoice", fmt.Sprintf("Invoice #%d is now %s.", inv.ID, inv.Status), err)
			},
		},
	}
}
