package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"pifko/internal/stock"
	"pifko/internal/storage"
)

// StorageTools lists the Storage-Catalog actions.
func StorageTools(svc *storage.Service) []server.ServerTool {
	return []server.ServerTool{
		{
			Tool: mcp.NewTool("create_ingredient",
				mcp.WithDescription("Add a hop, malt or yeast variety to the catalog"),
				kindParam(true),
				mcp.WithString("name", mcp.Required(), mcp.Description("Variety name")),
				mcp.WithString("country", mcp.Description("Country of origin")),
			),
			Handler: func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				a := newArgs(req)
				kind, in := a.Kind("ingredient_type"), storage.VarietyInput{Name: a.String("name"), Country: a.OptString("country")}
				if a.err != nil {
					return respond(ctx, "create_ingredient", "", a.err)
				}
				v, err := svc.CreateVariety(ctx, kind, in)
				return respond(ctx, "create_ingredient", "Created "+FormatVariety(v), err)
			},
		},
		{
			Tool: mcp.NewTool("get_ingredient",
				mcp.WithDescription("Look up one ingredient variety"),
				kindParam(true),
				idParam("ingredient_id", "Variety id"),
			),
			Handler: func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				a := newArgs(req)
				kind, id := a.Kind("ingredient_type"), a.ID("ingredient_id")
				if a.err != nil {
					return respond(ctx, "get_ingredient", "", a.err)
				}
				v, err := svc.GetVariety(ctx, kind, id)
				return respond(ctx, "get_ingredient", FormatVariety(v), err)
			},
		},
		{
			Tool: mcp.NewTool("list_ingredients",
				mcp.WithDescription("List ingredient varieties, optionally of one kind"),
				kindParam(false),
			),
			Handler: func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				a := newArgs(req)
				kind := a.OptKind("ingredient_type")
				if a.err != nil {
					return respond(ctx, "list_ingredients", "", a.err)
				}
				list, err := svc.ListVarieties(ctx, kind)
				return respond(ctx, "list_ingredients", FormatVarieties(list), err)
			},
		},
		{
			Tool: mcp.NewTool("update_ingredient",
				mcp.WithDescription("Overwrite the name and country of a variety"),
				kindParam(true),
				idParam("ingredient_id", "Variety id"),
				mcp.WithString("name", mcp.Required(), mcp.Description("New name")),
				mcp.WithString("country", mcp.Description("New country of origin")),
			),
			Handler: func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				a := newArgs(req)
				kind, id := a.Kind("ingredient_type"), a.ID("ingredient_id")
				in := storage.VarietyInput{Name: a.String("name"), Country: a.OptString("country")}
				if a.err != nil {
					return respond(ctx, "update_ingredient", "", a.err)
				}
				v, err := svc.UpdateVariety(ctx, kind, id, in)
				return respond(ctx, "update_ingredient", "Updated "+FormatVariety(v), err)
			},
		},
		{
			Tool: mcp.NewTool("delete_ingredient",
				mcp.WithDescription("Remove a variety and its master stock row"),
				kindParam(true),
				idParam("ingredient_id", "Variety id"),
			),
			Handler: func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				a := newArgs(req)
				kind, id := a.Kind("ingredient_type"), a.ID("ingredient_id")
				if a.err != nil {
					return respond(ctx, "delete_ingredient", "", a.err)
				}
				v, err := svc.DeleteVariety(ctx, kind, id)
				return respond(ctx, "delete_ingredient", FormatDeleted(FormatVariety(v)), err)
			},
		},
		{
			Tool: mcp.NewTool("get_stock",
				mcp.WithDescription("Show the master stock of one ingredient"),
				kindParam(true),
				idParam("ingredient_id", "Variety id"),
			),
			Handler: func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				a := newArgs(req)
				kind, id := a.Kind("ingredient_type"), a.ID("ingredient_id")
				if a.err != nil {
					return respond(ctx, "get_stock", "", a.err)
				}
				level, err := svc.Stock().Get(ctx, kind, id)
				return respond(ctx, "get_stock", FormatStockLevel(level), err)
			},
		},
		{
			Tool: mcp.NewTool("list_stock",
				mcp.WithDescription("List master stock, optionally of one kind"),
				kindParam(false),
			),
			Handler: func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				a := newArgs(req)
				kind := a.OptKind("ingredient_type")
				if a.err != nil {
					return respond(ctx, "list_stock", "", a.err)
				}
				list, err := svc.Stock().List(ctx, kind)
				return respond(ctx, "list_stock", FormatStockLevels("Master stock", list), err)
			},
		},
		{
			Tool: mcp.NewTool("set_stock",
				mcp.WithDescription("Overwrite the master stock of a variety, creating the row if needed"),
				kindParam(true),
				idParam("ingredient_id", "Variety id"),
				mcp.WithNumber("quantity", mcp.Required(), mcp.Description("New on-hand quantity")),
				mcp.WithString("unit", mcp.Description("Unit label such as kg or packets")),
			),
			Handler: func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				a := newArgs(req)
				kind, id, q := a.Kind("ingredient_type"), a.ID("ingredient_id"), a.Int("quantity")
				if a.err != nil {
					return respond(ctx, "set_stock", "", a.err)
				}
				level, err := svc.SetStock(ctx, kind, id, q, a.OptString("unit"), "mcp")
				return respond(ctx, "set_stock", "Set "+FormatStockLevel(level), err)
			},
		},
		{
			Tool: mcp.NewTool("delete_stock",
				mcp.WithDescription("Remove the master stock row of one ingredient"),
				kindParam(true),
				idParam("ingredient_id", "Variety id"),
			),
			Handler: func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				a := newArgs(req)
				kind, id := a.Kind("ingredient_type"), a.ID("ingredient_id")
				if a.err != nil {
					return respond(ctx, "delete_stock", "", a.err)
				}
				err := svc.Stock().Delete(ctx, kind, id)
				return respond(ctx, "delete_stock", FormatDeleted("master stock of "+ingredientRef(kind, id)), err)
			},
		},
		{
			Tool: mcp.NewTool("allocate_stock",
				mcp.WithDescription("Take a quantity from master stock for a requesting facility. All or nothing."),
				kindParam(true),
				idParam("ingredient_id", "Variety id"),
				mcp.WithNumber("quantity_requested", mcp.Required(), mcp.Description("Quantity to allocate")),
				mcp.WithString("requesting_facility", mcp.Description("Who receives the allocation")),
			),
			Handler: func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				a := newArgs(req)
				r := stock.AllocateRequest{
					Kind:         a.Kind("ingredient_type"),
					IngredientID: a.ID("ingredient_id"),
					Quantity:     a.Int("quantity_requested"),
					Requester:    a.OptString("requesting_facility"),
				}
				if a.err != nil {
					return respond(ctx, "allocate_stock", "", a.err)
				}
				alloc, err := svc.Allocate(ctx, r)
				return respond(ctx, "allocate_stock", FormatAllocation(alloc, r.Requester), err)
			},
		},
		{
			Tool: mcp.NewTool("restock_ingredient",
				mcp.WithDescription("Add a quantity to master stock"),
				kindParam(true),
				idParam("ingredient_id", "Variety id"),
				mcp.WithNumber("quantity_to_add", mcp.Required(), mcp.Description("Quantity to add")),
				mcp.WithString("unit", mcp.Description("Unit label, used when the row is created")),
			),
			Handler: func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				a := newArgs(req)
				r := stock.RestockRequest{
					Kind:         a.Kind("ingredient_type"),
					IngredientID: a.ID("ingredient_id"),
					Quantity:     a.Int("quantity_to_add"),
					Unit:         a.OptString("unit"),
					Requester:    "mcp",
				}
				if a.err != nil {
					return respond(ctx, "restock_ingredient", "", a.err)
				}
				level, err := svc.Restock(ctx, r)
				return respond(ctx, "restock_ingredient", FormatRestock(level, r.Quantity), err)
			},
		},
		{
			Tool: mcp.NewTool("check_stock",
				mcp.WithDescription("Check whether master stock covers a needed quantity"),
				kindParam(true),
				idParam("ingredient_id", "Variety id"),
				mcp.WithNumber("quantity_needed", mcp.Required(), mcp.Description("Quantity needed")),
			),
			Handler: func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				a := newArgs(req)
				kind, id, needed := a.Kind("ingredient_type"), a.ID("ingredient_id"), a.Int("quantity_needed")
				if a.err != nil {
					return respond(ctx, "check_stock", "", a.err)
				}
				check, err := svc.CheckStock(ctx, kind, id, needed)
				return respond(ctx, "check_stock", FormatStockCheck(check), err)
			},
		},
		{
			Tool: mcp.NewTool("inventory_report",
				mcp.WithDescription("Report every variety with its available quantity"),
			),
			Handler: func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				report, err := svc.InventoryReport(ctx)
				return respond(ctx, "inventory_report", FormatInventory(report), err)
			},
		},
		{
			Tool: mcp.NewTool("list_movements",
				mcp.WithDescription("Show recent master stock movements"),
				kindParam(false),
				mcp.WithNumber("ingredient_id", mcp.Description("Only this variety")),
				mcp.WithNumber("limit", mcp.Description("Maximum entries, default 20")),
			),
			Handler: func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				a := newArgs(req)
				filter := stock.MovementFilter{
					Kind:         a.OptKind("ingredient_type"),
					IngredientID: uint(a.OptInt("ingredient_id", 0)),
					Limit:        int(a.OptInt("limit", 20)),
				}
				if a.err != nil {
					return respond(ctx, "list_movements", "", a.err)
				}
				list, err := svc.Stock().Movements(ctx, filter)
				return respond(ctx, "list_movements", FormatMovements(list), err)
			},
		},
	}
}
