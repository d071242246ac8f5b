package db

import (
	"context"
	"fmt"
	"strings"
	"time"

	"pifko/internal/config"
	"pifko/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/gorm/schema"
)

var DB *gorm.DB

// GormConfig is shared by the postgres and sqlite openers.
func GormConfig(level logger.LogLevel) *gorm.Config {
	return &gorm.Config{
		PrepareStmt:            true,
		SkipDefaultTransaction: true,
		TranslateError:         true,
		Logger:                 logger.Default.LogMode(level),
		NamingStrategy: schema.NamingStrategy{
			SingularTable: false,
		},
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
		DisableForeignKeyConstraintWhenMigrating: true,
	}
}

func Initialize(cfg config.DatabaseConfig) (*gorm.DB, error) {
	if strings.TrimSpace(cfg.URL) == "" {
		return nil, fmt.Errorf("database URL must not be empty")
	}

	db, err := gorm.Open(postgres.Open(cfg.URL), GormConfig(logger.Warn))
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql db: %w", err)
	}

	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}

	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}

	if cfg.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	if cfg.ConnMaxIdleTime > 0 {
		sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)
	}

	return db, nil
}

// AutoMigrate creates or updates the tables owned by the given schema.
func AutoMigrate(db *gorm.DB, s models.Schema) error {
	if db == nil {
		return fmt.Errorf("database handle is nil")
	}
	if !s.Valid() {
		return fmt.Errorf("unknown schema %q", s)
	}

	return db.AutoMigrate(s.Tables()...)
}

func Configure(cfg config.DatabaseConfig, s models.Schema) (*gorm.DB, error) {
	database, err := Initialize(cfg)
	if err != nil {
		return nil, err
	}

	if err := AutoMigrate(database, s); err != nil {
		return nil, err
	}

	DB = database

	return database, nil
}

func MustConfigure(cfg config.DatabaseConfig, s models.Schema) *gorm.DB {
	database, err := Configure(cfg, s)
	if err != nil {
		panic(err)
	}

	return database
}

func Get() *gorm.DB {
	return DB
}

// Wipe deletes every row of the schema's tables, children first, in one
// transaction. Table definitions are kept.
func Wipe(ctx context.Context, db *gorm.DB, s models.Schema) error {
	if db == nil {
		return fmt.Errorf("database handle is nil")
	}
	tables := s.Tables()
	if tables == nil {
		return fmt.Errorf("unknown schema %q", s)
	}

	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i := len(tables) - 1; i >= 0; i-- {
			if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(tables[i]).Error; err != nil {
				return fmt.Errorf("wipe %s: %w", s, err)
			}
		}
		return nil
	})
}

// Reset empties the schema like Wipe and, on postgres, restarts the id
// sequences so a fresh seed gets the same ids every time.
func Reset(ctx context.Context, db *gorm.DB, s models.Schema) error {
	if db == nil {
		return fmt.Errorf("database handle is nil")
	}
	if db.Dialector.Name() != "postgres" {
		return Wipe(ctx, db, s)
	}
	tables := s.Tables()
	if tables == nil {
		return fmt.Errorf("unknown schema %q", s)
	}

	names := make([]string, 0, len(tables))
	for _, model := range tables {
		stmt := &gorm.Statement{DB: db}
		if err := stmt.Parse(model); err != nil {
			return fmt.Errorf("resolve table for %T: %w", model, err)
		}
		names = append(names, stmt.Schema.Table)
	}
	if err := db.WithContext(ctx).Exec("TRUNCATE TABLE " + strings.Join(names, ", ") + " RESTART IDENTITY CASCADE").Error; err != nil {
		return fmt.Errorf("reset %s: %w", s, err)
	}
	return nil
}
