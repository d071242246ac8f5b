package server

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"pifko/internal/handlers"
	applog "pifko/internal/log"
)

// Config captures the runtime configuration for the HTTP server.
type Config struct {
	Addr   string
	Routes []handlers.Route
	// MCP is mounted at /mcp when set.
	MCP http.Handler
}

// Server wraps an http.Server and exposes helpers for bootstrapping a
// production-ready web service.
type Server struct {
	config     Config
	httpServer *http.Server
}

// New builds a new Server using the provided configuration.
func New(cfg Config) (*Server, error) {
	applog.Debug(context.Background(), "initializing server",
		"addr", cfg.Addr,
		"routes", len(cfg.Routes),
		"mcp", cfg.MCP != nil,
	)

	if strings.TrimSpace(cfg.Addr) == "" {
		return nil, errors.New("server address is required")
	}
	if len(cfg.Routes) == 0 {
		return nil, errors.New("at least one route is required")
	}

	handler := newRouter(cfg.Routes, cfg.MCP)

	applog.Debug(context.Background(), "http handler chain prepared")

	return &Server{
		config: cfg,
		httpServer: &http.Server{
			Addr:              cfg.Addr,
			Handler:           handler,
			ReadHeaderTimeout: 5 * time.Second,
		},
	}, nil
}

// Start begins serving HTTP traffic using the underlying http.Server.
func (s *Server) Start() error {
	applog.Info(context.Background(), "server listening", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Stop gracefully shuts down the HTTP server with a timeout.
func (s *Server) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	applog.Debug(ctx, "server initiating graceful shutdown")
	return s.httpServer.Shutdown(ctx)
}

// Handler exposes the configured HTTP handler, enabling integration tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}
