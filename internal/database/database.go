// Package database opens the configured gorm backend and migrates the schema.
package database

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/parthasarathygopu/orca/internal/config"
	"github.com/parthasarathygopu/orca/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open connects to the database described by cfg.
func Open(cfg config.DatabaseConfig, logLevel string) (*gorm.DB, error) {
	gormCfg := &gorm.Config{Logger: logger.Default.LogMode(gormLogLevel(logLevel))}

	switch cfg.Type {
	case "sqlite":
		// Ensure data directory exists
		if dir := filepath.Dir(cfg.DSN); dir != "." && dir != "" {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("failed to create data directory: %w", err)
			}
		}
		db, err := gorm.Open(sqlite.Open(sqliteDSN(cfg)), gormCfg)
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite database: %w", err)
		}
		return db, nil

	case "postgres":
		db, err := gorm.Open(postgres.Open(cfg.DSN), gormCfg)
		if err != nil {
			return nil, fmt.Errorf("failed to open postgres database: %w", err)
		}
		return db, nil

	default:
		return nil, fmt.Errorf("unsupported database type: %s", cfg.Type)
	}
}

// sqliteDSN enables WAL so history reads never wait on a run, and sets the busy
// timeout writers spend waiting for a run's transaction to commit.
func sqliteDSN(cfg config.DatabaseConfig) string {
	dsn := cfg.DSN
	if strings.Contains(dsn, "mode=memory") || strings.HasPrefix(dsn, ":memory:") {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	if !strings.Contains(dsn, "_journal_mode=") {
		dsn += sep + "_journal_mode=WAL"
		sep = "&"
	}
	if !strings.Contains(dsn, "_busy_timeout=") && cfg.BusyTimeoutSeconds > 0 {
		dsn += sep + "_busy_timeout=" + strconv.FormatInt(cfg.BusyTimeout().Milliseconds(), 10)
	}
	return dsn
}

// Migrate creates or updates every table.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}

func gormLogLevel(level string) logger.LogLevel {
	switch level {
	case "debug":
		return logger.Info
	case "warn", "info":
		return logger.Warn
	default:
		return logger.Error
	}
}
