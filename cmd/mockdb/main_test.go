package main

import (
	"context"
	"path/filepath"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"pifko/internal/config"
	"pifko/internal/db"
	"pifko/models"
)

func sqliteFiles(t *testing.T) map[models.Schema]string {
	t.Helper()

	dir := t.TempDir()
	files := map[models.Schema]string{
		models.SchemaStorage: filepath.Join(dir, "storage.db"),
		models.SchemaBrewery: filepath.Join(dir, "brewery.db"),
		models.SchemaOrders:  filepath.Join(dir, "orders.db"),
	}
	t.Setenv("PIFKO_ENV_FILE", "")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("DATABASE_URL_HOST_STORAGE", files[models.SchemaStorage])
	t.Setenv("DATABASE_URL_HOST_BREWERY", files[models.SchemaBrewery])
	t.Setenv("DATABASE_URL_HOST_ORDERS", files[models.SchemaOrders])

	original := openDatabase
	openDatabase = func(cfg config.DatabaseConfig) (*gorm.DB, error) {
		return gorm.Open(sqlite.Open(cfg.URL), db.GormConfig(logger.Silent))
	}
	t.Cleanup(func() { openDatabase = original })
	return files
}

func count(t *testing.T, path string, model any) int64 {
	t.Helper()

	database, err := gorm.Open(sqlite.Open(path), db.GormConfig(logger.Silent))
	if err != nil {
		t.Fatalf("reopen %s: %v", path, err)
	}
	t.Cleanup(func() {
		if sqlDB, err := database.DB(); err == nil {
			sqlDB.Close()
		}
	})

	var n int64
	if err := database.Model(model).Count(&n).Error; err != nil {
		t.Fatalf("count %T: %v", model, err)
	}
	return n
}

func TestRunSeedsEverySchema(t *testing.T) {
	files := sqliteFiles(t)

	for i := 0; i < 2; i++ {
		if err := run(context.Background()); err != nil {
			t.Fatalf("run #%d: %v", i+1, err)
		}
	}

	if n := count(t, files[models.SchemaStorage], &models.IngredientVariety{}); n != 24 {
		t.Fatalf("expected 24 varieties after reseeding, got %d", n)
	}
	if n := count(t, files[models.SchemaBrewery], &models.Beer{}); n != 4 {
		t.Fatalf("expected 4 beers, got %d", n)
	}
	if n := count(t, files[models.SchemaOrders], &models.Invoice{}); n != 5 {
		t.Fatalf("expected 5 invoices, got %d", n)
	}
}

func TestRunRequiresDatabaseURLs(t *testing.T) {
	t.Setenv("PIFKO_ENV_FILE", "")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("DATABASE_URL_HOST_STORAGE", "")
	t.Setenv("DATABASE_URL_HOST_BREWERY", "")
	t.Setenv("DATABASE_URL_HOST_ORDERS", "")

	if err := run(context.Background()); err == nil {
		t.Fatal("expected error without database urls")
	}
}
