package database

import (
	"context"
	"fmt"
	"time"

	"github.com/sandeepkv93/inventory-crud-api/internal/config"
	"github.com/sandeepkv93/inventory-crud-api/internal/observability"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open builds the shared connection pool for the configured driver. Unique
// constraint violations are translated to gorm.ErrDuplicatedKey.
func Open(cfg *config.Config) (*gorm.DB, error) {
	start := time.Now()
	outcome := "success"
	defer func() {
		observability.RecordDatabaseStartupEvent(context.Background(), "connect", outcome)
		observability.RecordDatabaseStartupDuration(context.Background(), "connect", time.Since(start))
	}()

	dialector, err := dialectorFor(cfg)
	if err != nil {
		outcome = "error"
		return nil, err
	}
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Warn),
		TranslateError: true,
	})
	if err != nil {
		outcome = "error"
		return nil, fmt.Errorf("open %s database: %w", cfg.DBDriver, err)
	}
	if cfg.DBDriver == config.DriverSQLite {
		// One connection: sqlite allows a single writer and each :memory: connection is its own database.
		sqlDB, err := db.DB()
		if err != nil {
			outcome = "error"
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}
	return db, nil
}

func dialectorFor(cfg *config.Config) (gorm.Dialector, error) {
	dsn := cfg.DSN()
	switch cfg.DBDriver {
	case config.DriverMySQL:
		return mysql.Open(dsn), nil
	case config.DriverPostgres:
		return postgres.Open(dsn), nil
	case config.DriverSQLite:
		return sqlite.Open(dsn), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.DBDriver)
	}
}

func Ping(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close releases the pool. It is safe to call with a nil db.
func Close(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
