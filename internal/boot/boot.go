// Package boot runs one Pifko service process: configuration, database,
// REST routes, MCP tools and graceful shutdown.
package boot

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"gorm.io/gorm"

	"pifko/internal/brewery"
	"pifko/internal/config"
	"pifko/internal/db"
	"pifko/internal/db/mock"
	"pifko/internal/handlers"
	applog "pifko/internal/log"
	"pifko/internal/orders"
	"pifko/internal/server"
	"pifko/internal/storage"
	"pifko/internal/tools"
	"pifko/models"
)

// Service describes one deployable process.
type Service struct {
	Name        string
	DefaultAddr string
	Schema      models.Schema
	Build       func(cfg config.Config, database *gorm.DB) ([]handlers.Route, []mcpserver.ServerTool)
}

var Storage = Service{
	Name:        "storage-service",
	DefaultAddr: ":8003",
	Schema:      models.SchemaStorage,
	Build: func(_ config.Config, database *gorm.DB) ([]handlers.Route, []mcpserver.ServerTool) {
		svc := storage.NewService(database)
		return handlers.NewStorage(svc).Routes(), tools.StorageTools(svc)
	},
}

var Brewery = Service{
	Name:        "brewery-service",
	DefaultAddr: ":8002",
	Schema:      models.SchemaBrewery,
	Build: func(_ config.Config, database *gorm.DB) ([]handlers.Route, []mcpserver.ServerTool) {
		svc := brewery.NewService(database)
		return handlers.NewBrewery(svc).Routes(), tools.BreweryTools(svc)
	},
}

var Orders = Service{
	Name:        "orders-service",
	DefaultAddr: ":8001",
	Schema:      models.SchemaOrders,
	Build: func(cfg config.Config, database *gorm.DB) ([]handlers.Route, []mcpserver.ServerTool) {
		verifier := orders.NewBeerVerifier(cfg.Brewery.URL, cfg.Brewery.Timeout)
		svc := orders.NewService(database, verifier)
		return handlers.NewOrders(svc).Routes(), tools.OrdersTools(svc)
	},
}

type serverLifecycle interface {
	Start() error
	Stop() error
}

var (
	loadConfigFunc      = config.LoadWithDefaultAddr
	setLogLevelFunc     = applog.SetLevel
	newMockDatabaseFunc = mock.New
	configureDatabase   = db.Configure
	newServerFunc       = func(cfg server.Config) (serverLifecycle, error) {
		return server.New(cfg)
	}
	subscribeShutdownSig = func() (<-chan os.Signal, func()) {
		ch := make(chan os.Signal, 1)
		signal.Notify(ch, syscall.SIGTERM, syscall.SIGINT)
		return ch, func() { signal.Stop(ch) }
	}
)

// Run serves svc until a shutdown signal arrives and returns the exit code.
func Run(ctx context.Context, svc Service) int {
	cfg, err := loadConfigFunc(svc.DefaultAddr)
	if err != nil {
		applog.Error(ctx, "failed to load configuration", "service", svc.Name, "error", err)
		return 1
	}

	if err := setLogLevelFunc(cfg.Logging.Level); err != nil {
		applog.Error(ctx, "invalid log level", "level", cfg.Logging.Level, "error", err)
		return 1
	}
	applog.SetService(svc.Name)

	database, err := openDatabase(ctx, cfg, svc.Schema)
	if err != nil {
		applog.Error(ctx, "failed to configure database", "service", svc.Name, "error", err)
		return 1
	}

	routes, toolset := svc.Build(cfg, database)

	srvCfg := server.Config{Addr: cfg.Server.Addr, Routes: routes}
	if cfg.MCP.Enabled {
		srvCfg.MCP = tools.Handler(tools.NewServer(svc.Name, toolset))
	}

	srv, err := newServerFunc(srvCfg)
	if err != nil {
		applog.Error(ctx, "failed to build server", "service", svc.Name, "error", err)
		return 1
	}

	sigCh, stopSignals := subscribeShutdownSig()
	defer stopSignals()

	errCh := make(chan error, 1)
	go func() {
		applog.Info(ctx, "starting service", "service", svc.Name, "addr", cfg.Server.Addr, "mcp", cfg.MCP.Enabled)
		errCh <- srv.Start()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			applog.Error(ctx, "server encountered an error", "service", svc.Name, "error", err)
			return 1
		}
		return 0
	case sig := <-sigCh:
		applog.Info(ctx, "shutting down", "service", svc.Name, "signal", sig.String())
	case <-ctx.Done():
		applog.Info(ctx, "context cancelled, shutting down", "service", svc.Name)
	}

	if err := srv.Stop(); err != nil {
		applog.Error(ctx, "graceful shutdown failed", "service", svc.Name, "error", err)
		return 1
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		applog.Error(ctx, "server exited with error", "service", svc.Name, "error", err)
		return 1
	}
	return 0
}

func openDatabase(ctx context.Context, cfg config.Config, schema models.Schema) (*gorm.DB, error) {
	if cfg.Database.UseMock {
		applog.Info(ctx, "using seeded in-memory database", "schema", schema)
		return newMockDatabaseFunc(ctx, schema)
	}
	return configureDatabase(cfg.Database, schema)
}
