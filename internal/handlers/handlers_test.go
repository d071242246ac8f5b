package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"pifko/internal/brewery"
	"pifko/internal/db/mock"
	"pifko/internal/orders"
	"pifko/internal/storage"
	"pifko/models"
)

func mux(t *testing.T, routes []Route) http.Handler {
	t.Helper()

	m := http.NewServeMux()
	for _, route := range routes {
		m.HandleFunc(route.Pattern, route.Handler)
	}
	return m
}

func storageMux(t *testing.T) http.Handler {
	t.Helper()
	database, err := mock.New(context.Background(), models.SchemaStorage)
	if err != nil {
		t.Fatalf("mock database: %v", err)
	}
	return mux(t, NewStorage(storage.NewService(database)).Routes())
}

func breweryMux(t *testing.T) http.Handler {
	t.Helper()
	database, err := mock.New(context.Background(), models.SchemaBrewery)
	if err != nil {
		t.Fatalf("mock database: %v", err)
	}
	return mux(t, NewBrewery(brewery.NewService(database)).Routes())
}

func ordersMux(t *testing.T) http.Handler {
	t.Helper()
	database, err := mock.New(context.Background(), models.SchemaOrders)
	if err != nil {
		t.Fatalf("mock database: %v", err)
	}
	return mux(t, NewOrders(orders.NewService(database, nil)).Routes())
}

func get(t *testing.T, h http.Handler, target string) (int, map[string]json.RawMessage) {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, target, nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("GET %s: expected application/json, got %q", target, ct)
	}
	body := map[string]json.RawMessage{}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("GET %s: decode body: %v", target, err)
	}
	return w.Code, body
}

func count(t *testing.T, body map[string]json.RawMessage) int {
	t.Helper()
	var n int
	if err := json.Unmarshal(body["count"], &n); err != nil {
		t.Fatalf("decode count: %v", err)
	}
	return n
}

func TestStorageRoutes(t *testing.T) {
	t.Parallel()

	h := storageMux(t)
	tests := []struct {
		target string
		status int
		key    string
		count  int
	}{
		{"/", http.StatusOK, "message", -1},
		{"/inventory", http.StatusOK, "inventory", 24},
		{"/ingredients", http.StatusOK, "ingredients", 24},
		{"/ingredients/hops", http.StatusOK, "hops", 8},
		{"/ingredients/yeast", http.StatusOK, "yeasts", 8},
		{"/ingredients/grain", http.StatusBadRequest, "error", -1},
		{"/ingredients/malts/3", http.StatusOK, "ingredient", -1},
		{"/ingredients/malts/30", http.StatusNotFound, "error", -1},
		{"/ingredients/malts/abc", http.StatusBadRequest, "error", -1},
		{"/storage", http.StatusOK, "storage", 24},
		{"/storage/malts", http.StatusOK, "storage", 8},
		{"/storage/hops/2", http.StatusOK, "stock", -1},
		{"/storage/hops/2/check?needed=151", http.StatusOK, "check", -1},
		{"/movements", http.StatusOK, "movements", 0},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.target, func(t *testing.T) {
			status, body := get(t, h, tt.target)
			if status != tt.status {
				t.Fatalf("status = %d, want %d", status, tt.status)
			}
			if _, ok := body[tt.key]; !ok {
				t.Fatalf("missing key %q in %v", tt.key, body)
			}
			if tt.count >= 0 && count(t, body) != tt.count {
				t.Fatalf("count = %d, want %d", count(t, body), tt.count)
			}
		})
	}
}

func TestBreweryFeasibilityRoute(t *testing.T) {
	t.Parallel()

	h := breweryMux(t)

	status, body := get(t, h, "/production/feasibility?beer_id=3&hl=5")
	if status != http.StatusOK {
		t.Fatalf("status = %d", status)
	}
	var result brewery.Feasibility
	if err := json.Unmarshal(body["feasibility"], &result); err != nil {
		t.Fatalf("decode feasibility: %v", err)
	}
	if !result.Feasible || result.BeerName != "Hoppy IPA" {
		t.Fatalf("unexpected feasibility %+v", result)
	}

	if status, _ := get(t, h, "/production/feasibility?beer_id=99&hl=5"); status != http.StatusNotFound {
		t.Fatalf("unknown beer status = %d", status)
	}
	if status, _ := get(t, h, "/production/feasibility?beer_id=3&hl=0"); status != http.StatusBadRequest {
		t.Fatalf("zero volume status = %d", status)
	}
}

func TestBreweryListRoutes(t *testing.T) {
	t.Parallel()

	h := breweryMux(t)
	for target, want := range map[string]struct {
		key   string
		count int
	}{
		"/beers":             {"beers", 4},
		"/recipes":           {"recipes", 4},
		"/local-storage":     {"local_storage", 12},
		"/local-storage/low": {"low_stock", 0},
		"/production":        {"production_runs", 0},
	} {
		status, body := get(t, h, target)
		if status != http.StatusOK {
			t.Fatalf("GET %s status = %d", target, status)
		}
		if _, ok := body[want.key]; !ok {
			t.Fatalf("GET %s missing %q", target, want.key)
		}
		if got := count(t, body); got != want.count {
			t.Fatalf("GET %s count = %d, want %d", target, got, want.count)
		}
	}

	if status, _ := get(t, h, "/beers/4"); status != http.StatusOK {
		t.Fatalf("GET /beers/4 status = %d", status)
	}
	if status, _ := get(t, h, "/local-storage/hops/1"); status != http.StatusOK {
		t.Fatalf("GET /local-storage/hops/1 status = %d", status)
	}
}

func TestOrdersRoutes(t *testing.T) {
	t.Parallel()

	h := ordersMux(t)

	status, body := get(t, h, "/orders")
	if status != http.StatusOK || count(t, body) != 5 {
		t.Fatalf("GET /orders = %d %v", status, body)
	}
	status, body = get(t, h, "/orders?status=aging")
	if status != http.StatusOK || count(t, body) != 1 {
		t.Fatalf("GET /orders?status=aging = %d %v", status, body)
	}
	if status, _ := get(t, h, "/orders?status=brewing"); status != http.StatusBadRequest {
		t.Fatalf("invalid status filter = %d", status)
	}
	if status, _ := get(t, h, "/orders/42"); status != http.StatusNotFound {
		t.Fatalf("GET /orders/42 = %d", status)
	}

	status, body = get(t, h, "/invoices?status=confirmed")
	if status != http.StatusOK || count(t, body) != 2 {
		t.Fatalf("GET /invoices?status=confirmed = %d %v", status, body)
	}

	status, body = get(t, h, "/customers/2")
	if status != http.StatusOK {
		t.Fatalf("GET /customers/2 = %d", status)
	}
	var customer models.Customer
	if err := json.Unmarshal(body["customer"], &customer); err != nil {
		t.Fatalf("decode customer: %v", err)
	}
	if customer.Name != "Beer Garden Berlin" {
		t.Fatalf("unexpected customer %+v", customer)
	}
}
