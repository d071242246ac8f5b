package tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"pifko/internal/brewery"
	"pifko/internal/stock"
)

var recipeLineSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"ingredient_type":   map[string]any{"type": "string", "enum": []string{"hops", "malts", "yeasts"}},
		"ingredient_id":     map[string]any{"type": "number"},
		"quantity_per_unit": map[string]any{"type": "number", "description": "Quantity per hectoliter"},
	},
	"required": []string{"ingredient_type", "ingredient_id", "quantity_per_unit"},
}

func (a *args) recipeLines(key string) []brewery.LineInput {
	objs := a.Objects(key)
	lines := make([]brewery.LineInput, 0, len(objs))
	for _, obj := range objs {
		lines = append(lines, brewery.LineInput{
			Kind:            a.kindField(obj, "ingredient_type"),
			IngredientID:    uint(a.field(obj, "ingredient_id")),
			QuantityPerUnit: a.field(obj, "quantity_per_unit"),
		})
	}
	return lines
}

// BreweryTools lists the Brewery-Operations actions.
func BreweryTools(svc *brewery.Service) []server.ServerTool {
	return []server.ServerTool{
		{
			Tool: mcp.NewTool("create_recipe",
				mcp.WithDescription("Create a recipe with its ingredient lines"),
				mcp.WithString("name", mcp.Required(), mcp.Description("Recipe name")),
				mcp.WithNumber("fermentation_time", mcp.Description("Fermentation time in days")),
				mcp.WithNumber("aging_time", mcp.Description("Aging time in days")),
				mcp.WithArray("ingredients", mcp.Required(), mcp.Description("Ingredient lines per hectoliter"), mcp.Items(recipeLineSchema)),
			),
			Handler: func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				a := newArgs(req)
				in := brewery.RecipeInput{
					Name:             a.String("name"),
					FermentationTime: int(a.OptInt("fermentation_time", 0)),
					AgingTime:        int(a.OptInt("aging_time", 0)),
					Lines:            a.recipeLines("ingredients"),
				}
				if a.err != nil {
					return respond(ctx, "create_recipe", "", a.err)
				}
				r, err := svc.CreateRecipe(ctx, in)
				return respond(ctx, "create_recipe", "Created "+FormatRecipe(r), err)
			},
		},
		{
			Tool: mcp.NewTool("get_recipe",
				mcp.WithDescription("Show a recipe and its ingredient lines"),
				idParam("recipe_id", "Recipe id"),
			),
			Handler: func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				a := newArgs(req)
				id := a.ID("recipe_id")
				if a.err != nil {
					return respond(ctx, "get_recipe", "", a.err)
				}
				r, err := svc.GetRecipe(ctx, id)
				return respond(ctx, "get_recipe", FormatRecipe(r), err)
			},
		},
		{
			Tool: mcp.NewTool("list_recipes", mcp.WithDescription("List every recipe")),
			Handler: func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				list, err := svc.ListRecipes(ctx)
				return respond(ctx, "list_recipes", FormatRecipes(list), err)
			},
		},
		{
			Tool: mcp.NewTool("update_recipe",
				mcp.WithDescription("Rename a recipe and change its process times"),
				idParam("recipe_id", "Recipe id"),
				mcp.WithString("name", mcp.Required(), mcp.Description("Recipe name")),
				mcp.WithNumber("fermentation_time", mcp.Description("Fermentation time in days")),
				mcp.WithNumber("aging_time", mcp.Description("Aging time in days")),
			),
			Handler: func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				a := newArgs(req)
				id := a.ID("recipe_id")
				in := brewery.RecipeInput{
					Name:             a.String("name"),
					FermentationTime: int(a.OptInt("fermentation_time", 0)),
					AgingTime:        int(a.OptInt("aging_time", 0)),
				}
				if a.err != nil {
					return respond(ctx, "update_recipe", "", a.err)
				}
				r, err := svc.UpdateRecipe(ctx, id, in)
				return respond(ctx, "update_recipe", "Updated "+FormatRecipe(r), err)
			},
		},
		{
			Tool: mcp.NewTool("delete_recipe",
				mcp.WithDescription("Delete a recipe that no beer uses"),
				idParam("recipe_id", "Recipe id"),
			),
			Handler: func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				a := newArgs(req)
				id := a.ID("recipe_id")
				if a.err != nil {
					return respond(ctx, "delete_recipe", "", a.err)
				}
				r, err := svc.DeleteRecipe(ctx, id)
				return respond(ctx, "delete_recipe", FormatDeleted(fmt.Sprintf("recipe #%d %s", r.ID, r.Name)), err)
			},
		},
		{
			Tool: mcp.NewTool("set_recipe_line",
				mcp.WithDescription("Add or replace one ingredient line of a recipe"),
				idParam("recipe_id", "Recipe id"),
				kindParam(true),
				idParam("ingredient_id", "Variety id"),
				mcp.WithNumber("quantity_per_unit", mcp.Required(), mcp.Description("Quantity per hectoliter")),
			),
			Handler: func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				a := newArgs(req)
				id := a.ID("recipe_id")
				in := brewery.LineInput{
					Kind:            a.Kind("ingredient_type"),
					IngredientID:    a.ID("ingredient_id"),
					QuantityPerUnit: a.Int("quantity_per_unit"),
				}
				if a.err != nil {
					return respond(ctx, "set_recipe_line", "", a.err)
				}
				line, err := svc.SetRecipeLine(ctx, id, in)
				return respond(ctx, "set_recipe_line", FormatRecipeLine(line), err)
			},
		},
		{
			Tool: mcp.NewTool("remove_recipe_line",
				mcp.WithDescription("Remove one ingredient line from a recipe"),
				idParam("recipe_id", "Recipe id"),
				kindParam(true),
				idParam("ingredient_id", "Variety id"),
			),
			Handler: func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				a := newArgs(req)
				id, kind, ingredient := a.ID("recipe_id"), a.Kind("ingredient_type"), a.ID("ingredient_id")
				if a.err != nil {
					return respond(ctx, "remove_recipe_line", "", a.err)
				}
				err := svc.RemoveRecipeLine(ctx, id, kind, ingredient)
				return respond(ctx, "remove_recipe_line", FormatDeleted(fmt.Sprintf("%s from recipe #%d", ingredientRef(kind, ingredient), id)), err)
			},
		},
		{
			Tool: mcp.NewTool("create_beer",
				mcp.WithDescription("Add a beer brewed from an existing recipe"),
				mcp.WithString("name", mcp.Required(), mcp.Description("Beer name")),
				mcp.WithString("style", mcp.Description("Beer style")),
				idParam("recipe_id", "Recipe id"),
			),
			Handler: func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				a := newArgs(req)
				in := brewery.BeerInput{Name: a.String("name"), Style: a.OptString("style"), RecipeID: a.ID("recipe_id")}
				if a.err != nil {
					return respond(ctx, "create_beer", "", a.err)
				}
				b, err := svc.CreateBeer(ctx, in)
				return respond(ctx, "create_beer", "Created "+FormatBeer(b), err)
			},
		},
		{
			Tool: mcp.NewTool("get_beer",
				mcp.WithDescription("Show one beer"),
				idParam("beer_id", "Beer id"),
			),
			Handler: func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				a := newArgs(req)
				id := a.ID("beer_id")
				if a.err != nil {
					return respond(ctx, "get_beer", "", a.err)
				}
				b, err := svc.GetBeer(ctx, id)
				return respond(ctx, "get_beer", FormatBeer(b), err)
			},
		},
		{
			Tool: mcp.NewTool("list_beers", mcp.WithDescription("List every beer")),
			Handler: func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				list, err := svc.ListBeers(ctx)
				return respond(ctx, "list_beers", FormatBeers(list), err)
			},
		},
		{
			Tool: mcp.NewTool("update_beer",
				mcp.WithDescription("Change the name, style or recipe of a beer"),
				idParam("beer_id", "Beer id"),
				mcp.WithString("name", mcp.Required(), mcp.Description("Beer name")),
				mcp.WithString("style", mcp.Description("Beer style")),
				idParam("recipe_id", "Recipe id"),
			),
			Handler: func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				a := newArgs(req)
				id := a.ID("beer_id")
				in := brewery.BeerInput{Name: a.String("name"), Style: a.OptString("style"), RecipeID: a.ID("recipe_id")}
				if a.err != nil {
					return respond(ctx, "update_beer", "", a.err)
				}
				b, err := svc.UpdateBeer(ctx, id, in)
				return respond(ctx, "update_beer", "Updated "+FormatBeer(b), err)
			},
		},
		{
			Tool: mcp.NewTool("delete_beer",
				mcp.WithDescription("Delete a beer"),
				idParam("beer_id", "Beer id"),
			),
			Handler: func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				a := newArgs(req)
				id := a.ID("beer_id")
				if a.err != nil {
					return respond(ctx, "delete_beer", "", a.err)
				}
				b, err := svc.DeleteBeer(ctx, id)
				return respond(ctx, "delete_beer", FormatDeleted(FormatBeer(b)), err)
			},
		},
		{
			Tool: mcp.NewTool("get_local_stock",
				mcp.WithDescription("Show the brewery stock of one ingredient"),
				kindParam(true),
				idParam("ingredient_id", "Variety id"),
			),
			Handler: func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				a := newArgs(req)
				kind, id := a.Kind("ingredient_type"), a.ID("ingredient_id")
				if a.err != nil {
					return respond(ctx, "get_local_stock", "", a.err)
				}
				level, err := svc.Stock().Get(ctx, kind, id)
				return respond(ctx, "get_local_stock", FormatStockLevel(level), err)
			},
		},
		{
			Tool: mcp.NewTool("list_local_stock",
				mcp.WithDescription("List brewery stock, optionally of one kind"),
				kindParam(false),
			),
			Handler: func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				a := newArgs(req)
				kind := a.OptKind("ingredient_type")
				if a.err != nil {
					return respond(ctx, "list_local_stock", "", a.err)
				}
				list, err := svc.Stock().List(ctx, kind)
				return respond(ctx, "list_local_stock", FormatStockLevels("Local stock", list), err)
			},
		},
		{
			Tool: mcp.NewTool("set_local_stock",
				mcp.WithDescription("Overwrite brewery stock and its minimum level, creating the row if needed"),
				kindParam(true),
				idParam("ingredient_id", "Variety id"),
				mcp.WithNumber("quantity", mcp.Required(), mcp.Description("On-hand quantity")),
				mcp.WithNumber("min_stock_level", mcp.Description("Reorder threshold")),
				mcp.WithString("unit", mcp.Description("Unit label")),
			),
			Handler: func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				a := newArgs(req)
				level := stock.Level{
					Kind:          a.Kind("ingredient_type"),
					IngredientID:  a.ID("ingredient_id"),
					Quantity:      a.Int("quantity"),
					MinStockLevel: a.OptInt("min_stock_level", 0),
					Unit:          a.OptString("unit"),
				}
				if a.err != nil {
					return respond(ctx, "set_local_stock", "", a.err)
				}
				out, err := svc.SetLocalStock(ctx, level, "mcp")
				return respond(ctx, "set_local_stock", "Set "+FormatStockLevel(out), err)
			},
		},
		{
			Tool: mcp.NewTool("delete_local_stock",
				mcp.WithDescription("Remove the brewery stock row of one ingredient"),
				kindParam(true),
				idParam("ingredient_id", "Variety id"),
			),
			Handler: func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				a := newArgs(req)
				kind, id := a.Kind("ingredient_type"), a.ID("ingredient_id")
				if a.err != nil {
					return respond(ctx, "delete_local_stock", "", a.err)
				}
				err := svc.Stock().Delete(ctx, kind, id)
				return respond(ctx, "delete_local_stock", FormatDeleted("local stock of "+ingredientRef(kind, id)), err)
			},
		},
		{
			Tool: mcp.NewTool("restock_local",
				mcp.WithDescription("Add a quantity to brewery stock"),
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
					return respond(ctx, "restock_local", "", a.err)
				}
				level, err := svc.Stock().Restock(ctx, r)
				return respond(ctx, "restock_local", FormatRestock(level, r.Quantity), err)
			},
		},
		{
			Tool: mcp.NewTool("allocate_local",
				mcp.WithDescription("Take a quantity from brewery stock. All or nothing."),
				kindParam(true),
				idParam("ingredient_id", "Variety id"),
				mcp.WithNumber("quantity_requested", mcp.Required(), mcp.Description("Quantity to take")),
				mcp.WithString("requester", mcp.Description("Who takes the stock")),
			),
			Handler: func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				a := newArgs(req)
				r := stock.AllocateRequest{
					Kind:         a.Kind("ingredient_type"),
					IngredientID: a.ID("ingredient_id"),
					Quantity:     a.Int("quantity_requested"),
					Requester:    a.OptString("requester"),
				}
				if a.err != nil {
					return respond(ctx, "allocate_local", "", a.err)
				}
				alloc, err := svc.Stock().Allocate(ctx, r)
				return respond(ctx, "allocate_local", FormatAllocation(alloc, r.Requester), err)
			},
		},
		{
			Tool: mcp.NewTool("low_stock", mcp.WithDescription("List brewery stock at or below its minimum level")),
			Handler: func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				list, err := svc.LowStock(ctx)
				return respond(ctx, "low_stock", FormatStockLevels("Low stock", list), err)
			},
		},
		{
			Tool: mcp.NewTool("check_local_stock",
				mcp.WithDescription("Check whether brewery stock covers a needed quantity"),
				kindParam(true),
				idParam("ingredient_id", "Variety id"),
				mcp.WithNumber("quantity_needed", mcp.Required(), mcp.Description("Quantity needed")),
			),
			Handler: func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				a := newArgs(req)
				kind, id, needed := a.Kind("ingredient_type"), a.ID("ingredient_id"), a.Int("quantity_needed")
				if a.err != nil {
					return respond(ctx, "check_local_stock", "", a.err)
				}
				check, err := svc.CheckStock(ctx, kind, id, needed)
				return respond(ctx, "check_local_stock", FormatLocalStockCheck(check), err)
			},
		},
		{
			Tool: mcp.NewTool("check_feasibility",
				mcp.WithDescription("Check whether brewery stock covers producing a beer"),
				idParam("beer_id", "Beer id"),
				mcp.WithNumber("quantity_hectoliters", mcp.Required(), mcp.Description("Batch size in hectoliters")),
			),
			Handler: func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				a := newArgs(req)
				id, hl := a.ID("beer_id"), a.Int("quantity_hectoliters")
				if a.err != nil {
					return respond(ctx, "check_feasibility", "", a.err)
				}
				f, err := svc.CheckFeasibility(ctx, id, hl)
				return respond(ctx, "check_feasibility", FormatFeasibility(f), err)
			},
		},
		{
			Tool: mcp.NewTool("start_production",
				mcp.WithDescription("Start a production run and deduct its ingredients from brewery stock"),
				idParam("beer_id", "Beer id"),
				mcp.WithNumber("quantity_hectoliters", mcp.Required(), mcp.Description("Batch size in hectoliters")),
				mcp.WithString("requester", mcp.Description("Who starts the run")),
			),
			Handler: func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				a := newArgs(req)
				id, hl := a.ID("beer_id"), a.Int("quantity_hectoliters")
				if a.err != nil {
					return respond(ctx, "start_production", "", a.err)
				}
				run, err := svc.StartProduction(ctx, id, hl, a.OptString("requester"))
				return respond(ctx, "start_production", "Started "+FormatProductionRun(run), err)
			},
		},
		{
			Tool: mcp.NewTool("list_production_runs", mcp.WithDescription("List production runs, newest first")),
			Handler: func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				list, err := svc.ListProductionRuns(ctx)
				return respond(ctx, "list_production_runs", FormatProductionRuns(list), err)
			},
		},
		{
			Tool: mcp.NewTool("list_local_movements",
				mcp.WithDescription("Show recent brewery stock movements"),
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
					return respond(ctx, "list_local_movements", "", a.err)
				}
				list, err := svc.Stock().Movements(ctx, filter)
				return respond(ctx, "list_local_movements", FormatMovements(list), err)
			},
		},
	}
}
