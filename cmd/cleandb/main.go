package main

import (
	"context"
	"fmt"
	"os"

	"gorm.io/gorm"

	"pifko/internal/config"
	"pifko/internal/db"
	applog "pifko/internal/log"
	"pifko/models"
)

var openDatabase db.Opener = db.Initialize

func main() {
	if err := run(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "cleaning failed: %v\n", err)
		os.Exit(1)
	}
}

// run deletes every row of the three databases and keeps their tables.
func run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := applog.SetLevel(cfg.Logging.Level); err != nil {
		return fmt.Errorf("set log level: %w", err)
	}

	targets, err := db.Targets(cfg)
	if err != nil {
		return err
	}

	err = db.ForEach(ctx, cfg.Database, targets, openDatabase, func(ctx context.Context, database *gorm.DB, s models.Schema) error {
		return db.Wipe(ctx, database, s)
	})
	if err != nil {
		return err
	}

	applog.Info(ctx, "all databases cleaned", "schemas", len(targets))
	return nil
}
