package models

// Schema identifies the database owned by one service.
type Schema string

const (
	SchemaStorage Schema = "storage"
	SchemaBrewery Schema = "brewery"
	SchemaOrders  Schema = "orders"
)

var Schemas = []Schema{SchemaStorage, SchemaBrewery, SchemaOrders}

// Tables returns the models migrated into s, parents before children.
func (s Schema) Tables() []any {
	switch s {
	case SchemaStorage:
		return []any{&IngredientVariety{}, &MasterStock{}, &StockMovement{}}
	case SchemaBrewery:
		return []any{&Recipe{}, &RecipeIngredientLine{}, &Beer{}, &LocalStock{}, &StockMovement{}, &ProductionRun{}}
	case SchemaOrders:
		return []any{&Customer{}, &Order{}, &Invoice{}, &OrderLine{}}
	}
	return nil
}

// Valid reports whether s names a known schema.
func (s Schema) Valid() bool {
	return s.Tables() != nil
}
