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
	"pifko/internal/db/mock"
	"pifko/models"
)

func openFile(path string) (*gorm.DB, error) {
	return gorm.Open(sqlite.Open(path), db.GormConfig(logger.Silent))
}

func closeFile(database *gorm.DB) {
	if sqlDB, err := database.DB(); err == nil {
		sqlDB.Close()
	}
}

func TestRunEmptiesEverySchema(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	files := map[models.Schema]string{}
	for _, s := range models.Schemas {
		files[s] = filepath.Join(dir, string(s)+".db")
		database, err := openFile(files[s])
		if err != nil {
			t.Fatalf("open %s: %v", s, err)
		}
		if err := db.AutoMigrate(database, s); err != nil {
			t.Fatalf("migrate %s: %v", s, err)
		}
		if err := mock.Seed(ctx, database, s); err != nil {
			t.Fatalf("seed %s: %v", s, err)
		}
		closeFile(database)
	}

	t.Setenv("PIFKO_ENV_FILE", "")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("DATABASE_URL_HOST_STORAGE", files[models.SchemaStorage])
	t.Setenv("DATABASE_URL_HOST_BREWERY", files[models.SchemaBrewery])
	t.Setenv("DATABASE_URL_HOST_ORDERS", files[models.SchemaOrders])

	original := openDatabase
	openDatabase = func(cfg config.DatabaseConfig) (*gorm.DB, error) { return openFile(cfg.URL) }
	t.Cleanup(func() { openDatabase = original })

	if err := run(ctx); err != nil {
		t.Fatalf("run: %v", err)
	}

	for _, s := range models.Schemas {
		database, err := openFile(files[s])
		if err != nil {
			t.Fatalf("reopen %s: %v", s, err)
		}
		for _, table := range s.Tables() {
			var n int64
			if err := database.Model(table).Count(&n).Error; err != nil {
				t.Fatalf("count %T: %v", table, err)
			}
			if n != 0 {
				t.Fatalf("%s: expected %T to be empty, got %d rows", s, table, n)
			}
		}
		closeFile(database)
	}
}
