package mock

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"pifko/internal/db"
	applog "pifko/internal/log"
	"pifko/models"
)

// New returns an isolated in-memory sqlite database for the schema, seeded
// with the demo brewery data.
func New(ctx context.Context, s models.Schema) (*gorm.DB, error) {
	applog.Debug(ctx, "initialising mock database", "schema", s)

	database, err := Empty(ctx, s)
	if err != nil {
		return nil, err
	}

	if err := Seed(ctx, database, s); err != nil {
		return nil, err
	}

	applog.Debug(ctx, "mock database ready", "schema", s)
	return database, nil
}

// Empty is New without the seed data.
func Empty(ctx context.Context, s models.Schema) (*gorm.DB, error) {
	dsn := fmt.Sprintf("file:pifko-%s-%s?mode=memory&cache=shared&_busy_timeout=5000", s, uuid.NewString())
	gormCfg := db.GormConfig(logger.Silent)
	// Statements are not cached: with one connection a transaction would block
	// preparing on the pool.
	gormCfg.PrepareStmt = false
	database, err := gorm.Open(sqlite.Open(dsn), gormCfg)
	if err != nil {
		return nil, err
	}

	sqlDB, err := database.DB()
	if err != nil {
		return nil, err
	}
	// A single connection keeps writers serialised and the memory database alive.
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(database.WithContext(ctx), s); err != nil {
		return nil, err
	}
	return database, nil
}

// Seed inserts the demo data for one schema in a single transaction.
func Seed(ctx context.Context, database *gorm.DB, s models.Schema) error {
	applog.Debug(ctx, "seeding mock database", "schema", s)

	return database.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		switch s {
		case models.SchemaStorage:
			return seedStorage(tx)
		case models.SchemaBrewery:
			return seedBrewery(tx)
		case models.SchemaOrders:
			return seedOrders(tx)
		}
		return fmt.Errorf("unknown schema %q", s)
	})
}

type variety struct {
	name     string
	country  string
	quantity int64
}

var storageSeed = map[models.IngredientKind][]variety{
	models.KindHop: {
		{"Hallertau Mittelfrüh", "Germany", 200},
		{"Cascade", "USA", 150},
		{"Saaz", "Czech Republic", 120},
		{"Citra", "USA", 100},
		{"Fuggle", "UK", 80},
		{"Centennial", "USA", 90},
		{"Tettnang", "Germany", 110},
		{"Chinook", "USA", 75},
	},
	models.KindMalt: {
		{"Pilsner Malt", "Germany", 2000},
		{"Wheat Malt", "Germany", 1500},
		{"Munich Malt", "Germany", 1200},
		{"Caramel Malt 60L", "Germany", 800},
		{"Vienna Malt", "Austria", 600},
		{"Chocolate Malt", "UK", 400},
		{"Roasted Barley", "Ireland", 300},
		{"Crystal Malt 40L", "UK", 500},
	},
	models.KindYeast: {
		{"Saflager W-34/70", "Germany", 50},
		{"Safspirit Wheat", "France", 40},
		{"Safale US-05", "USA", 45},
		{"Belgian Abbey Yeast", "Belgium", 30},
		{"London ESB Yeast", "UK", 35},
		{"California Ale Yeast", "USA", 42},
		{"Kölsch Yeast", "Germany", 25},
		{"Bavarian Lager Yeast", "Germany", 38},
	},
}

// DefaultUnit is the label carried by seeded stock rows of each kind.
var DefaultUnit = map[models.IngredientKind]string{
	models.KindHop:   "kg",
	models.KindMalt:  "kg",
	models.KindYeast: "packets",
}

func seedStorage(tx *gorm.DB) error {
	for _, kind := range models.IngredientKinds {
		for i, v := range storageSeed[kind] {
			id := uint(i + 1)
			if err := tx.Create(&models.IngredientVariety{Kind: kind, ID: id, Name: v.name, Country: v.country}).Error; err != nil {
				return fmt.Errorf("seed %s %q: %w", kind, v.name, err)
			}
			stock := models.MasterStock{Kind: kind, IngredientID: id, Quantity: v.quantity, Unit: DefaultUnit[kind]}
			if err := tx.Create(&stock).Error; err != nil {
				return fmt.Errorf("seed %s stock %d: %w", kind, id, err)
			}
		}
	}
	return nil
}

type localSeed struct {
	quantity int64
	min      int64
}

var localStockSeed = map[models.IngredientKind][]localSeed{
	models.KindHop:   {{50, 10}, {25, 5}, {30, 8}, {15, 5}},
	models.KindMalt:  {{500, 100}, {300, 50}, {200, 40}, {150, 30}},
	models.KindYeast: {{20, 5}, {15, 3}, {18, 4}, {10, 2}},
}

func seedBrewery(tx *gorm.DB) error {
	recipes := []models.Recipe{
		{Name: "Pilsner", FermentationTime: 14, AgingTime: 30},
		{Name: "Weissbier", FermentationTime: 21, AgingTime: 60},
		{Name: "IPA", FermentationTime: 18, AgingTime: 45},
		{Name: "Märzen", FermentationTime: 28, AgingTime: 90},
	}
	for i := range recipes {
		if err := tx.Create(&recipes[i]).Error; err != nil {
			return fmt.Errorf("seed recipe %q: %w", recipes[i].Name, err)
		}
	}

	beers := []models.Beer{
		{Name: "Pifko Premium Pilsner", Style: "Pilsner", RecipeID: recipes[0].ID},
		{Name: "Bavarian Weissbier", Style: "Weissbier", RecipeID: recipes[1].ID},
		{Name: "Hoppy IPA", Style: "IPA", RecipeID: recipes[2].ID},
		{Name: "Oktoberfest Märzen", Style: "Märzen", RecipeID: recipes[3].ID},
	}
	for i := range beers {
		if err := tx.Create(&beers[i]).Error; err != nil {
			return fmt.Errorf("seed beer %q: %w", beers[i].Name, err)
		}
	}

	for _, kind := range models.IngredientKinds {
		for i, s := range localStockSeed[kind] {
			row := models.LocalStock{
				Kind:          kind,
				IngredientID:  uint(i + 1),
				Quantity:      s.quantity,
				MinStockLevel: s.min,
				Unit:          DefaultUnit[kind],
			}
			if err := tx.Create(&row).Error; err != nil {
				return fmt.Errorf("seed local %s %d: %w", kind, row.IngredientID, err)
			}
		}
	}

	pils, weiss, ipa, maerzen := recipes[0].ID, recipes[1].ID, recipes[2].ID, recipes[3].ID
	lines := []models.RecipeIngredientLine{
		{RecipeID: pils, Kind: models.KindHop, IngredientID: 1, QuantityPerUnit: 2},
		{RecipeID: pils, Kind: models.KindHop, IngredientID: 3, QuantityPerUnit: 1},
		{RecipeID: weiss, Kind: models.KindHop, IngredientID: 1, QuantityPerUnit: 1},
		{RecipeID: ipa, Kind: models.KindHop, IngredientID: 2, QuantityPerUnit: 3},
		{RecipeID: ipa, Kind: models.KindHop, IngredientID: 4, QuantityPerUnit: 2},
		{RecipeID: maerzen, Kind: models.KindHop, IngredientID: 1, QuantityPerUnit: 2},

		{RecipeID: pils, Kind: models.KindMalt, IngredientID: 1, QuantityPerUnit: 50},
		{RecipeID: weiss, Kind: models.KindMalt, IngredientID: 1, QuantityPerUnit: 25},
		{RecipeID: weiss, Kind: models.KindMalt, IngredientID: 2, QuantityPerUnit: 25},
		{RecipeID: ipa, Kind: models.KindMalt, IngredientID: 1, QuantityPerUnit: 40},
		{RecipeID: ipa, Kind: models.KindMalt, IngredientID: 4, QuantityPerUnit: 10},
		{RecipeID: maerzen, Kind: models.KindMalt, IngredientID: 1, QuantityPerUnit: 30},
		{RecipeID: maerzen, Kind: models.KindMalt, IngredientID: 3, QuantityPerUnit: 20},

		{RecipeID: pils, Kind: models.KindYeast, IngredientID: 1, QuantityPerUnit: 2},
		{RecipeID: weiss, Kind: models.KindYeast, IngredientID: 2, QuantityPerUnit: 2},
		{RecipeID: ipa, Kind: models.KindYeast, IngredientID: 3, QuantityPerUnit: 2},
		{RecipeID: maerzen, Kind: models.KindYeast, IngredientID: 1, QuantityPerUnit: 2},
	}
	if err := tx.Create(&lines).Error; err != nil {
		return fmt.Errorf("seed recipe lines: %w", err)
	}
	return nil
}

func seedOrders(tx *gorm.DB) error {
	customers := []models.Customer{
		{Name: "Brewery Store München"},
		{Name: "Beer Garden Berlin"},
		{Name: "Pub & Grill Hamburg"},
		{Name: "Oktoberfest Supplies"},
		{Name: "Local Beer Shop"},
	}
	if err := tx.Create(&customers).Error; err != nil {
		return fmt.Errorf("seed customers: %w", err)
	}

	type orderSeed struct {
		status  models.OrderStatus
		daysAgo int
		shipAgo int
		invoice models.InvoiceStatus
		lines   map[uint]int64
	}
	seeds := []orderSeed{
		{models.OrderReadyForFermenting, 5, 2, models.InvoiceConfirmed, map[uint]int64{1: 10, 2: 5}},
		{models.OrderFermenting, 3, -1, models.InvoiceInProduction, map[uint]int64{1: 25}},
		{models.OrderReadyForAging, 1, -1, models.InvoicePending, map[uint]int64{3: 10}},
		{models.OrderAging, 7, 4, models.InvoiceDone, map[uint]int64{2: 15, 3: 15}},
		{models.OrderDone, 10, 8, models.InvoiceConfirmed, map[uint]int64{1: 20}},
	}

	today := time.Now().UTC().Truncate(24 * time.Hour)
	for i, s := range seeds {
		var sum int64
		for _, q := range s.lines {
			sum += q
		}
		order := models.Order{Status: s.status, QuantitySum: sum}
		if err := tx.Create(&order).Error; err != nil {
			return fmt.Errorf("seed order %d: %w", i+1, err)
		}
		for beerID, q := range s.lines {
			if err := tx.Create(&models.OrderLine{OrderID: order.ID, BeerID: beerID, QuantityHecto: q}).Error; err != nil {
				return fmt.Errorf("seed order line %d/%d: %w", order.ID, beerID, err)
			}
		}

		invoice := models.Invoice{
			OrderDate:  today.AddDate(0, 0, -s.daysAgo),
			Status:     s.invoice,
			CustomerID: customers[i].ID,
			OrderID:    order.ID,
		}
		if s.shipAgo >= 0 {
			ship := today.AddDate(0, 0, -s.shipAgo)
			invoice.ShipDate = &ship
		}
		if err := tx.Create(&invoice).Error; err != nil {
			return fmt.Errorf("seed invoice for order %d: %w", order.ID, err)
		}
	}
	return nil
}
