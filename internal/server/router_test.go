package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"pifko/internal/handlers"
)

func TestNewRouterRegistersRoutes(t *testing.T) {
	routes := []handlers.Route{{Pattern: "GET /health", Handler: handlers.Health("storage")}}
	router := newRouter(routes, nil)

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected /health to return 200, got %d", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("expected application/json content type, got %q", ct)
	}
}

func TestNewRouterMountsMCP(t *testing.T) {
	called := false
	mcp := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusAccepted)
	})
	router := newRouter([]handlers.Route{{Pattern: "GET /health", Handler: handlers.Health("orders")}}, mcp)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/mcp", nil))

	if !called || rr.Code != http.StatusAccepted {
		t.Fatalf("expected mcp handler to serve /mcp, got called=%v code=%d", called, rr.Code)
	}
}

func TestNewRouterRecoversFromPanics(t *testing.T) {
	routes := []handlers.Route{{Pattern: "GET /boom", Handler: func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}}}
	router := newRouter(routes, nil)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/boom", nil))

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 after panic, got %d", rr.Code)
	}
}

func TestNewRouterUnknownRoute(t *testing.T) {
	router := newRouter([]handlers.Route{{Pattern: "GET /health", Handler: handlers.Health("brewery")}}, nil)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/nope", nil))

	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
}
