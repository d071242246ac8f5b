package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"pifko/internal/handlers"
	applog "pifko/internal/log"
)

const mcpPath = "/mcp"

func newRouter(routes []handlers.Route, mcp http.Handler) http.Handler {
	mux := http.NewServeMux()
	applog.Debug(context.Background(), "registering http routes", "count", len(routes))
	for _, route := range routes {
		mux.HandleFunc(route.Pattern, route.Handler)
		applog.Debug(context.Background(), "route registered", "pattern", route.Pattern)
	}
	if mcp != nil {
		mux.Handle(mcpPath, mcp)
		applog.Debug(context.Background(), "route registered", "pattern", mcpPath, "mcp", true)
	}
	return chi.Chain(chimw.RealIP, chimw.RequestID, chimw.Recoverer, requestLogger).Handler(mux)
}

// requestLogger writes one debug line per request with its outcome.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		applog.Debug(r.Context(), "request served",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start).String(),
		)
	})
}
