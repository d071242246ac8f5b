package tools

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"gorm.io/gorm"

	"pifko/internal/apperr"
	"pifko/internal/brewery"
	"pifko/internal/db/mock"
	"pifko/internal/orders"
	"pifko/internal/stock"
	"pifko/internal/storage"
	"pifko/models"
)

func toolset(t *testing.T, list []server.ServerTool) map[string]server.ToolHandlerFunc {
	t.Helper()

	handlers := make(map[string]server.ToolHandlerFunc, len(list))
	for _, tool := range list {
		if _, dup := handlers[tool.Tool.Name]; dup {
			t.Fatalf("duplicate tool %q", tool.Tool.Name)
		}
		handlers[tool.Tool.Name] = tool.Handler
	}
	return handlers
}

func call(t *testing.T, tools map[string]server.ToolHandlerFunc, name string, arguments map[string]any) (string, bool) {
	t.Helper()

	handler, ok := tools[name]
	if !ok {
		t.Fatalf("tool %q not registered", name)
	}
	var req mcp.CallToolRequest
	req.Params.Name = name
	req.Params.Arguments = arguments

	result, err := handler(context.Background(), req)
	if err != nil {
		t.Fatalf("%s returned protocol error: %v", name, err)
	}
	if len(result.Content) == 0 {
		t.Fatalf("%s returned no content", name)
	}
	text, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("%s content is %T, want text", name, result.Content[0])
	}
	return text.Text, result.IsError
}

func storageTools(t *testing.T) map[string]server.ToolHandlerFunc {
	t.Helper()
	database, err := mock.New(context.Background(), models.SchemaStorage)
	if err != nil {
		t.Fatalf("mock database: %v", err)
	}
	return toolset(t, StorageTools(storage.NewService(database)))
}

func breweryTools(t *testing.T) map[string]server.ToolHandlerFunc {
	t.Helper()
	database, err := mock.New(context.Background(), models.SchemaBrewery)
	if err != nil {
		t.Fatalf("mock database: %v", err)
	}
	return toolset(t, BreweryTools(brewery.NewService(database)))
}

func ordersTools(t *testing.T) map[string]server.ToolHandlerFunc {
	t.Helper()
	database, err := mock.New(context.Background(), models.SchemaOrders)
	if err != nil {
		t.Fatalf("mock database: %v", err)
	}
	return toolset(t, OrdersTools(orders.NewService(database, nil)))
}

func TestStorageToolsAllocateAndRestock(t *testing.T) {
	t.Parallel()

	tools := storageTools(t)

	text, isErr := call(t, tools, "allocate_stock", map[string]any{
		"ingredient_type":     "hops",
		"ingredient_id":       2,
		"quantity_requested":  40,
		"requesting_facility": "brewery",
	})
	if isErr {
		t.Fatalf("allocate_stock failed: %s", text)
	}
	if !strings.Contains(text, "Allocated 40 kg of hop #2 to brewery; 110 kg remaining") {
		t.Fatalf("unexpected allocation text: %s", text)
	}

	text, isErr = call(t, tools, "allocate_stock", map[string]any{
		"ingredient_type":    "hop",
		"ingredient_id":      2,
		"quantity_requested": 500,
	})
	if isErr {
		t.Fatalf("refused allocation should not be a tool error: %s", text)
	}
	if !strings.HasPrefix(text, "Allocation refused") || !strings.Contains(text, "110 kg available") {
		t.Fatalf("unexpected refusal text: %s", text)
	}

	text, isErr = call(t, tools, "restock_ingredient", map[string]any{
		"ingredient_type": "hops",
		"ingredient_id":   2,
		"quantity_to_add": 40,
	})
	if isErr || !strings.Contains(text, "now 150 kg on hand") {
		t.Fatalf("unexpected restock result (error=%v): %s", isErr, text)
	}

	text, _ = call(t, tools, "list_movements", map[string]any{"ingredient_type": "hops", "ingredient_id": 2})
	if !strings.HasPrefix(text, "2 movement(s):") {
		t.Fatalf("unexpected movements: %s", text)
	}
}

func TestStorageToolsCatalog(t *testing.T) {
	t.Parallel()

	tools := storageTools(t)

	text, isErr := call(t, tools, "create_ingredient", map[string]any{
		"ingredient_type": "malts",
		"name":            "Munich Dark",
		"country":         "Germany",
	})
	if isErr || text != "Created malt #9: Munich Dark (Germany)" {
		t.Fatalf("unexpected create result (error=%v): %s", isErr, text)
	}

	text, _ = call(t, tools, "list_ingredients", map[string]any{"ingredient_type": "yeasts"})
	if !strings.HasPrefix(text, "8 ingredient(s):") {
		t.Fatalf("unexpected list: %s", text)
	}

	text, _ = call(t, tools, "check_stock", map[string]any{
		"ingredient_type": "hops",
		"ingredient_id":   1,
		"quantity_needed": 250,
	})
	if !strings.Contains(text, "insufficient: need 250 kg, have 200 kg") {
		t.Fatalf("unexpected check: %s", text)
	}

	text, _ = call(t, tools, "inventory_report", nil)
	// The report lists every variety, so malt #9 shows up with nothing on hand.
	if !strings.HasPrefix(text, "Inventory (25 ingredients):") || !strings.Contains(text, "Cascade (USA): 150 kg") {
		t.Fatalf("unexpected report: %s", text)
	}
	if !strings.Contains(text, "- #9 Munich Dark (Germany): 0\n") {
		t.Fatalf("expected the new malt at zero: %s", text)
	}
}

func TestStorageToolsErrors(t *testing.T) {
	t.Parallel()

	tools := storageTools(t)

	tests := []struct {
		name   string
		tool   string
		args   map[string]any
		prefix string
	}{
		{"unknown kind", "get_ingredient", map[string]any{"ingredient_type": "grains", "ingredient_id": 1}, "Invalid value"},
		{"missing id", "get_ingredient", map[string]any{"ingredient_type": "hops"}, "Malformed input"},
		{"zero id", "get_stock", map[string]any{"ingredient_type": "hops", "ingredient_id": 0}, "Malformed input"},
		{"unknown variety", "get_ingredient", map[string]any{"ingredient_type": "hops", "ingredient_id": 99}, "Not found"},
		{"negative allocation", "allocate_stock", map[string]any{"ingredient_type": "hops", "ingredient_id": 1, "quantity_requested": -5}, "Malformed input"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text, isErr := call(t, tools, tt.tool, tt.args)
			if !isErr {
				t.Fatalf("expected tool error, got %s", text)
			}
			if !strings.HasPrefix(text, tt.prefix) {
				t.Fatalf("expected %q prefix, got %s", tt.prefix, text)
			}
		})
	}
}

func TestBreweryToolsFeasibilityAndProduction(t *testing.T) {
	t.Parallel()

	tools := breweryTools(t)

	text, isErr := call(t, tools, "check_feasibility", map[string]any{"beer_id": 3, "quantity_hectoliters": 10})
	if isErr {
		t.Fatalf("check_feasibility failed: %s", text)
	}
	if !strings.Contains(text, "is NOT feasible") || !strings.Contains(text, "- hop #2: required 30, available 25 (missing 5)") {
		t.Fatalf("unexpected feasibility: %s", text)
	}

	text, isErr = call(t, tools, "start_production", map[string]any{"beer_id": 3, "quantity_hectoliters": 10})
	if !isErr || !strings.HasPrefix(text, "Production refused, local stock is short:") {
		t.Fatalf("expected refusal, got (error=%v) %s", isErr, text)
	}

	text, isErr = call(t, tools, "check_feasibility", map[string]any{"beer_id": 3, "quantity_hectoliters": 5})
	if isErr || text != "Production of 5 hl of Hoppy IPA (beer #3) is feasible with current local stock." {
		t.Fatalf("unexpected feasibility (error=%v): %s", isErr, text)
	}

	text, isErr = call(t, tools, "start_production", map[string]any{"beer_id": 3, "quantity_hectoliters": 5, "requester": "brewmaster"})
	if isErr || !strings.HasPrefix(text, "Started Production run #1") {
		t.Fatalf("unexpected production start (error=%v): %s", isErr, text)
	}

	text, _ = call(t, tools, "get_local_stock", map[string]any{"ingredient_type": "hops", "ingredient_id": 2})
	if !strings.HasPrefix(text, "hop #2: 10 kg on hand") {
		t.Fatalf("cascade not deducted: %s", text)
	}

	text, _ = call(t, tools, "list_production_runs", nil)
	if !strings.Contains(text, "5 hl of beer #3") {
		t.Fatalf("unexpected runs: %s", text)
	}
}

func TestBreweryToolsRecipes(t *testing.T) {
	t.Parallel()

	tools := breweryTools(t)

	text, isErr := call(t, tools, "create_recipe", map[string]any{
		"name":              "Session Ale",
		"fermentation_time": 10,
		"ingredients": []any{
			map[string]any{"ingredient_type": "hops", "ingredient_id": float64(4), "quantity_per_unit": float64(1)},
			map[string]any{"ingredient_type": "malt", "ingredient_id": float64(2), "quantity_per_unit": float64(30)},
		},
	})
	if isErr {
		t.Fatalf("create_recipe failed: %s", text)
	}
	if !strings.HasPrefix(text, "Created Recipe #5 Session Ale") || !strings.Contains(text, "- malt #2: 30") {
		t.Fatalf("unexpected recipe: %s", text)
	}

	text, isErr = call(t, tools, "create_recipe", map[string]any{
		"name":        "Broken",
		"ingredients": []any{map[string]any{"ingredient_type": "hops", "ingredient_id": 1.5, "quantity_per_unit": 1}},
	})
	if !isErr || !strings.HasPrefix(text, "Malformed input") {
		t.Fatalf("expected malformed line, got (error=%v) %s", isErr, text)
	}

	text, isErr = call(t, tools, "delete_recipe", map[string]any{"recipe_id": 3})
	if !isErr || !strings.HasPrefix(text, "Cannot delete") {
		t.Fatalf("expected referenced recipe refusal, got (error=%v) %s", isErr, text)
	}

	text, _ = call(t, tools, "low_stock", nil)
	if text != "Low stock: none." {
		t.Fatalf("unexpected low stock: %s", text)
	}
}

func TestOrdersTools(t *testing.T) {
	t.Parallel()

	tools := ordersTools(t)

	text, isErr := call(t, tools, "create_order", map[string]any{
		"customer_id": 2,
		"lines": []any{
			map[string]any{"beer_id": float64(1), "quantity_hecto": float64(4)},
			map[string]any{"beer_id": float64(3), "quantity_hecto": float64(6)},
		},
	})
	if isErr {
		t.Fatalf("create_order failed: %s", text)
	}
	if !strings.HasPrefix(text, "Created Order #6 created, 10 hl total") || !strings.Contains(text, "Invoice #6 for order #6, pending") {
		t.Fatalf("unexpected order: %s", text)
	}

	text, isErr = call(t, tools, "advance_order", map[string]any{"order_id": 6})
	if isErr || text != "Order #6 is now ready_for_fermenting." {
		t.Fatalf("unexpected advance (error=%v): %s", isErr, text)
	}

	text, isErr = call(t, tools, "set_order_status", map[string]any{"order_id": 6, "status": "done"})
	if !isErr || !strings.HasPrefix(text, "Transition not allowed") {
		t.Fatalf("expected rejected skip, got (error=%v) %s", isErr, text)
	}

	text, isErr = call(t, tools, "cancel_invoice", map[string]any{"invoice_id": 4})
	if !isErr || !strings.HasPrefix(text, "Transition not allowed") {
		t.Fatalf("done invoice must not cancel, got (error=%v) %s", isErr, text)
	}

	text, isErr = call(t, tools, "cancel_invoice", map[string]any{"invoice_id": 6})
	if isErr || text != "Invoice #6 is now cancelled." {
		t.Fatalf("unexpected cancel (error=%v): %s", isErr, text)
	}

	text, isErr = call(t, tools, "update_invoice_dates", map[string]any{"invoice_id": 6, "ship_date": "31/12/2026"})
	if !isErr || !strings.HasPrefix(text, "Malformed input") {
		t.Fatalf("expected bad date error, got (error=%v) %s", isErr, text)
	}

	text, isErr = call(t, tools, "list_orders", map[string]any{"status": "brewing"})
	if !isErr || !strings.HasPrefix(text, "Invalid value") {
		t.Fatalf("expected enum error, got (error=%v) %s", isErr, text)
	}

	text, isErr = call(t, tools, "delete_customer", map[string]any{"customer_id": 1})
	if !isErr || !strings.HasPrefix(text, "Cannot delete") {
		t.Fatalf("expected referenced customer refusal, got (error=%v) %s", isErr, text)
	}
}

func TestDescribe(t *testing.T) {
	t.Parallel()

	tests := []struct {
		err  error
		want string
	}{
		{fmt.Errorf("beer 9: %w", apperr.ErrUnverifiedReference), "Unverified reference: beer 9: unverified reference"},
		{errors.New("connection reset"), "Internal error, the operation was not applied."},
		{fmt.Errorf("create malt: %w", gorm.ErrDuplicatedKey), "Already exists, try again: create malt: duplicated key not allowed"},
		{&stock.ShortfallError{Shortfalls: []stock.Shortfall{{Kind: models.KindYeast, IngredientID: 3, Required: 20, Available: 18}}},
			"Production refused, local stock is short:\n- yeast #3: required 20, available 18 (missing 2)"},
	}

	for _, tt := range tests {
		if got := describe(tt.err); got != tt.want {
			t.Errorf("describe(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}

func TestNewServerRegistersTools(t *testing.T) {
	t.Parallel()

	s := NewServer("pifko-test", []server.ServerTool{{
		Tool: mcp.NewTool("ping"),
		Handler: func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return mcp.NewToolResultText("pong"), nil
		},
	}})
	if s == nil {
		t.Fatal("expected server")
	}
	if Handler(s) == nil {
		t.Fatal("expected http handler")
	}
}
