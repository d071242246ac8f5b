package models

import (
	"database/sql/driver"
	"fmt"
	"strings"
)

// IngredientKind names one of the three parallel ingredient taxonomies.
type IngredientKind string

const (
	KindHop   IngredientKind = "hop"
	KindMalt  IngredientKind = "malt"
	KindYeast IngredientKind = "yeast"
)

// IngredientKinds lists every kind in reporting order.
var IngredientKinds = []IngredientKind{KindHop, KindMalt, KindYeast}

var kindAliases = map[string]IngredientKind{
	"hop":    KindHop,
	"hops":   KindHop,
	"malt":   KindMalt,
	"malts":  KindMalt,
	"yeast":  KindYeast,
	"yeasts": KindYeast,
}

// ParseIngredientKind accepts singular or plural kind names, case-insensitively.
func ParseIngredientKind(value string) (IngredientKind, error) {
	kind, ok := kindAliases[strings.ToLower(strings.TrimSpace(value))]
	if !ok {
		return "", fmt.Errorf("unknown ingredient kind %q", value)
	}
	return kind, nil
}

// Valid reports whether k is one of the known kinds.
func (k IngredientKind) Valid() bool {
	switch k {
	case KindHop, KindMalt, KindYeast:
		return true
	}
	return false
}

// Plural returns the collection name used by the REST surface ("hops", "malts", "yeasts").
func (k IngredientKind) Plural() string {
	return string(k) + "s"
}

// Rank orders kinds for stable reporting.
func (k IngredientKind) Rank() int {
	for i, kind := range IngredientKinds {
		if kind == k {
			return i
		}
	}
	return len(IngredientKinds)
}

func (k IngredientKind) Value() (driver.Value, error) {
	if !k.Valid() {
		return nil, fmt.Errorf("invalid ingredient kind %q", string(k))
	}
	return string(k), nil
}

func (k *IngredientKind) Scan(src any) error {
	switch v := src.(type) {
	case string:
		*k = IngredientKind(v)
	case []byte:
		*k = IngredientKind(v)
	case nil:
		*k = ""
	default:
		return fmt.Errorf("scan ingredient kind from %T", src)
	}
	return nil
}
