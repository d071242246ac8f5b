package db

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"pifko/internal/config"
	applog "pifko/internal/log"
	"pifko/models"
)

// Target is one schema and the database URL that holds it.
type Target struct {
	Schema models.Schema
	URL    string
}

// Targets resolves the host-side URL of every schema, falling back to the
// shared DATABASE_URL.
func Targets(cfg config.Config) ([]Target, error) {
	hosts := map[models.Schema]string{
		models.SchemaStorage: cfg.Hosts.Storage,
		models.SchemaBrewery: cfg.Hosts.Brewery,
		models.SchemaOrders:  cfg.Hosts.Orders,
	}

	targets := make([]Target, 0, len(models.Schemas))
	for _, s := range models.Schemas {
		url := strings.TrimSpace(hosts[s])
		if url == "" {
			url = strings.TrimSpace(cfg.Database.URL)
		}
		if url == "" {
			return nil, fmt.Errorf("no database url for %s schema", s)
		}
		targets = append(targets, Target{Schema: s, URL: url})
	}
	return targets, nil
}

// Opener connects to one database.
type Opener func(cfg config.DatabaseConfig) (*gorm.DB, error)

// ForEach opens every target with open and runs fn on all of them
// concurrently. The first failure cancels the rest.
func ForEach(ctx context.Context, base config.DatabaseConfig, targets []Target, open Opener, fn func(ctx context.Context, db *gorm.DB, s models.Schema) error) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, target := range targets {
		g.Go(func() error {
			cfg := base
			cfg.URL = target.URL
			database, err := open(cfg)
			if err != nil {
				return fmt.Errorf("open %s database: %w", target.Schema, err)
			}
			defer closeDB(ctx, database)

			if err := fn(ctx, database, target.Schema); err != nil {
				return fmt.Errorf("%s: %w", target.Schema, err)
			}
			applog.Info(ctx, "schema done", "schema", target.Schema)
			return nil
		})
	}
	return g.Wait()
}

func closeDB(ctx context.Context, database *gorm.DB) {
	sqlDB, err := database.DB()
	if err != nil {
		return
	}
	if err := sqlDB.Close(); err != nil {
		applog.Warn(ctx, "close database", "error", err)
	}
}
