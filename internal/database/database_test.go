package database

import (
	"path/filepath"
	"testing"

	"github.com/parthasarathygopu/orca/internal/config"
	"github.com/parthasarathygopu/orca/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen_SQLiteCreatesDirectory(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "nested", "orca.db")

	db, err := Open(config.DatabaseConfig{Type: "sqlite", DSN: dsn}, "error")
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, Migrate(db))
	assert.True(t, db.Migrator().HasTable(&models.ItemLog{}))
	assert.True(t, db.Migrator().HasTable(&models.SuiteBlock{}))
}

func TestOpen_UnsupportedType(t *testing.T) {
	_, err := Open(config.DatabaseConfig{Type: "oracle"}, "info")
	assert.EqualError(t, err, "unsupported database type: oracle")
}

func TestOpen_SQLiteUsesWALAndBusyTimeout(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "orca.db")

	db, err := Open(config.DatabaseConfig{Type: "sqlite", DSN: dsn, BusyTimeoutSeconds: 90}, "error")
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	var mode string
	require.NoError(t, db.Raw("PRAGMA journal_mode").Scan(&mode).Error)
	assert.Equal(t, "wal", mode)

	var timeout int
	require.NoError(t, db.Raw("PRAGMA busy_timeout").Scan(&timeout).Error)
	assert.Equal(t, 90000, timeout)
}

func TestSqliteDSN(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.DatabaseConfig
		want string
	}{
		{"plain path", config.DatabaseConfig{DSN: "./data/orca.db", BusyTimeoutSeconds: 60}, "./data/orca.db?_journal_mode=WAL&_busy_timeout=60000"},
		{"existing params", config.DatabaseConfig{DSN: "orca.db?cache=shared", BusyTimeoutSeconds: 1}, "orca.db?cache=shared&_journal_mode=WAL&_busy_timeout=1000"},
		{"explicit settings win", config.DatabaseConfig{DSN: "orca.db?_journal_mode=DELETE&_busy_timeout=5", BusyTimeoutSeconds: 60}, "orca.db?_journal_mode=DELETE&_busy_timeout=5"},
		{"memory untouched", config.DatabaseConfig{DSN: "file:x?mode=memory&cache=shared", BusyTimeoutSeconds: 60}, "file:x?mode=memory&cache=shared"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, sqliteDSN(tt.cfg))
		})
	}
}
