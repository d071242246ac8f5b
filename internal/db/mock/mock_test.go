package mock

import (
	"context"
	"testing"

	"pifko/models"
)

func TestNewSeedsStorage(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db, err := New(ctx, models.SchemaStorage)
	if err != nil {
		t.Fatalf("mock database initialization failed: %v", err)
	}

	for _, kind := range models.IngredientKinds {
		var count int64
		if err := db.Model(&models.IngredientVariety{}).Where("kind = ?", kind).Count(&count).Error; err != nil {
			t.Fatalf("count %s: %v", kind, err)
		}
		if count != 8 {
			t.Fatalf("expected 8 %s varieties, got %d", kind, count)
		}
	}

	var cascade models.MasterStock
	if err := db.First(&cascade, "kind = ? AND ingredient_id = ?", models.KindHop, 2).Error; err != nil {
		t.Fatalf("query cascade stock: %v", err)
	}
	if cascade.Quantity != 150 || cascade.Unit != "kg" {
		t.Fatalf("unexpected cascade stock %+v", cascade)
	}
}

func TestNewSeedsBrewery(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db, err := New(ctx, models.SchemaBrewery)
	if err != nil {
		t.Fatalf("mock database initialization failed: %v", err)
	}

	var beer models.Beer
	if err := db.Preload("Recipe.Lines").First(&beer, "name = ?", "Hoppy IPA").Error; err != nil {
		t.Fatalf("query beer: %v", err)
	}
	if beer.Recipe == nil || beer.Recipe.Name != "IPA" {
		t.Fatalf("expected IPA recipe, got %+v", beer.Recipe)
	}
	if len(beer.Recipe.Lines) != 5 {
		t.Fatalf("expected 5 recipe lines, got %d", len(beer.Recipe.Lines))
	}

	var yeast models.LocalStock
	if err := db.First(&yeast, "kind = ? AND ingredient_id = ?", models.KindYeast, 4).Error; err != nil {
		t.Fatalf("query local yeast: %v", err)
	}
	if yeast.Quantity != 10 || yeast.MinStockLevel != 2 || yeast.Unit != "packets" {
		t.Fatalf("unexpected local yeast %+v", yeast)
	}
}

func TestNewSeedsOrders(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db, err := New(ctx, models.SchemaOrders)
	if err != nil {
		t.Fatalf("mock database initialization failed: %v", err)
	}

	var orders []models.Order
	if err := db.Preload("Lines").Preload("Invoice").Order("id").Find(&orders).Error; err != nil {
		t.Fatalf("query orders: %v", err)
	}
	if len(orders) != 5 {
		t.Fatalf("expected 5 orders, got %d", len(orders))
	}
	if orders[0].QuantitySum != 15 || len(orders[0].Lines) != 2 {
		t.Fatalf("unexpected first order %+v", orders[0])
	}
	if orders[0].Invoice == nil || orders[0].Invoice.ShipDate == nil {
		t.Fatalf("expected shipped invoice on first order")
	}
	if orders[1].Invoice == nil || orders[1].Invoice.ShipDate != nil {
		t.Fatalf("expected unshipped invoice on second order")
	}
}

func TestNewDatabasesAreIsolated(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	first, err := New(ctx, models.SchemaOrders)
	if err != nil {
		t.Fatalf("first: %v", err)
	}
	second, err := New(ctx, models.SchemaOrders)
	if err != nil {
		t.Fatalf("second: %v", err)
	}

	if err := first.Exec("DELETE FROM order_lines").Error; err != nil {
		t.Fatalf("delete lines: %v", err)
	}
	var count int64
	if err := second.Model(&models.OrderLine{}).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count == 0 {
		t.Fatalf("expected second database to keep its rows")
	}
}

func TestSeedRejectsUnknownSchema(t *testing.T) {
	t.Parallel()

	db, err := Empty(context.Background(), models.SchemaStorage)
	if err != nil {
		t.Fatalf("empty: %v", err)
	}
	if err := Seed(context.Background(), db, models.Schema("billing")); err == nil {
		t.Fatalf("expected error for unknown schema")
	}
}
