package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("GO_ENV", "test")
	t.Setenv("DATABASE_URL", "postgres://localhost/rekaloka?sslmode=disable")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 100.0, cfg.Game.GeofenceRadiusMeters)
	assert.Equal(t, int64(100), cfg.Game.CheckInExpReward)
	assert.Equal(t, int64(100), cfg.Game.LevelConstant)
	assert.Equal(t, "rekaloka_proofs", cfg.Game.ProofFolder)
	assert.Equal(t, time.Hour, cfg.Cache.GeoTTL)
	assert.Equal(t, 10*time.Minute, cfg.Cache.LeaderboardTTL)
	assert.Equal(t, 7*24*time.Hour, cfg.Auth.JWTExpiry)
	assert.False(t, cfg.Vision.FailOpen)
	assert.Equal(t, 5*time.Second, cfg.Geocoding.Timeout)
	assert.Equal(t, "cloudinary", cfg.Storage.Provider)
	assert.NotEmpty(t, cfg.Auth.JWTSecret)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("GO_ENV", "test")
	t.Setenv("DATABASE_URL", "postgres://localhost/rekaloka")
	t.Setenv("GEOFENCE_RADIUS_METERS", "200")
	t.Setenv("VISION_FAIL_OPEN", "true")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("LEADERBOARD_CACHE_TTL", "30s")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 200.0, cfg.Game.GeofenceRadiusMeters)
	assert.True(t, cfg.Vision.FailOpen)
	assert.Equal(t, "redis", cfg.Cache.Provider)
	assert.Equal(t, 30*time.Second, cfg.Cache.LeaderboardTTL)
}

func TestLoad_MissingDatabaseURL(t *testing.T) {
	t.Setenv("GO_ENV", "test")
	t.Setenv("DATABASE_URL", "")

	_, err := Load()
	assert.ErrorContains(t, err, "DATABASE_URL")
}

func TestValidate_ProductionRequiresSecret(t *testing.T) {
	a := AuthConfig{BCryptCost: 10, JWTExpiry: time.Hour}
	assert.Error(t, a.Validate("production"))
	assert.NoError(t, a.Validate("development"))
}

func TestValidate_GameConfig(t *testing.T) {
	g := GameConfig{GeofenceRadiusMeters: 0, LevelConstant: 100}
	assert.Error(t, g.Validate())

	g = GameConfig{GeofenceRadiusMeters: 100, CheckInExpReward: -1, LevelConstant: 100}
	assert.Error(t, g.Validate())

	g = GameConfig{GeofenceRadiusMeters: 100, CheckInExpReward: 100, LevelConstant: 0}
	assert.Error(t, g.Validate())

	g = GameConfig{GeofenceRadiusMeters: 100, CheckInExpReward: 100, LevelConstant: 100}
	assert.NoError(t, g.Validate())
}
