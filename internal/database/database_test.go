package database

import (
	"context"
	"io/fs"
	"strings"
	"testing"
	"time"

	"rekaloka/internal/config"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnhanceDatabaseConfig(t *testing.T) {
	t.Run("requires url", func(t *testing.T) {
		cfg := config.DatabaseConfig{}
		assert.Error(t, enhanceDatabaseConfig(&cfg, "development"))
	})

	t.Run("production forces ssl", func(t *testing.T) {
		cfg := config.DatabaseConfig{URL: "postgres://db/rekaloka?connect_timeout=5"}
		require.NoError(t, enhanceDatabaseConfig(&cfg, "production"))
		assert.True(t, strings.HasSuffix(cfg.URL, "&sslmode=require"))
		assert.Equal(t, 50, cfg.MaxOpenConns)
	})

	t.Run("idle capped by open", func(t *testing.T) {
		cfg := config.DatabaseConfig{URL: "postgres://db", MaxOpenConns: 2, MaxIdleConns: 8}
		require.NoError(t, enhanceDatabaseConfig(&cfg, "development"))
		assert.Equal(t, 2, cfg.MaxIdleConns)
		assert.Equal(t, 5*time.Minute, cfg.ConnMaxLifetime)
	})
}

func TestEmbeddedMigrations(t *testing.T) {
	up, err := fs.ReadFile(migrationFS, "migrations/000001_init.up.sql")
	require.NoError(t, err)

	schema := string(up)
	for _, table := range []string{"users", "provinces", "hotspots", "checkins", "badges"} {
		assert.Contains(t, schema, "CREATE TABLE IF NOT EXISTS "+table)
	}
	assert.Contains(t, schema, "ON checkins (user_id, hotspot_id) WHERE is_validated")
	assert.Contains(t, schema, "UNIQUE (user_id, name)")

	_, err = fs.ReadFile(migrationFS, "migrations/000001_init.down.sql")
	assert.NoError(t, err)
}

func TestManager_HealthAndClose(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)

	m := NewManagerFromDB(db, nil)
	mock.ExpectPing()
	assert.NoError(t, m.Health(context.Background()))

	mock.ExpectClose()
	require.NoError(t, m.Close())
	assert.Error(t, m.Health(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}
