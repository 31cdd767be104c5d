package database

import (
	"context"
	"fmt"
	"strings"
	"time"

	"rekaloka/internal/config"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
)

// Open connects to postgres, retrying with exponential backoff until
// cfg.StartupTimeout elapses, then runs migrations when enabled.
func Open(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Manager, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	dbCfg := cfg.Database
	if err := enhanceDatabaseConfig(&dbCfg, cfg.Server.Environment); err != nil {
		return nil, fmt.Errorf("invalid database configuration: %w", err)
	}

	logger.Info("Starting database initialization",
		zap.String("environment", cfg.Server.Environment))

	var manager *Manager
	operation := func() error {
		m, err := NewManager(ctx, &dbCfg, logger)
		if err != nil {
			return err
		}
		manager = m
		return nil
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = time.Second
	b.MaxInterval = 10 * time.Second
	b.MaxElapsedTime = dbCfg.StartupTimeout

	notify := func(err error, wait time.Duration) {
		logger.Warn("Database not ready, retrying",
			zap.Error(err),
			zap.Duration("retry_in", wait))
	}

	if err := backoff.RetryNotify(operation, backoff.WithContext(b, ctx), notify); err != nil {
		return nil, fmt.Errorf("database failed to become available: %w", err)
	}

	if dbCfg.MigrationsEnabled {
		if err := manager.Migrate(); err != nil {
			manager.Close()
			return nil, fmt.Errorf("failed to run database migrations: %w", err)
		}
	}

	stats := manager.Stats()
	logger.Info("Database initialized successfully",
		zap.Bool("migrations", dbCfg.MigrationsEnabled),
		zap.Int("max_open_connections", stats.MaxOpenConnections),
		zap.Int("open_connections", stats.OpenConnections),
	)

	return manager, nil
}

func enhanceDatabaseConfig(cfg *config.DatabaseConfig, environment string) error {
	if cfg.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	switch environment {
	case "production":
		if cfg.MaxOpenConns == 0 {
			cfg.MaxOpenConns = 50
		}
		if cfg.MaxIdleConns == 0 {
			cfg.MaxIdleConns = 20
		}
		if !strings.Contains(cfg.URL, "sslmode=") {
			sep := "?"
			if strings.Contains(cfg.URL, "?") {
				sep = "&"
			}
			cfg.URL += sep + "sslmode=require"
		}
	default:
		if cfg.MaxOpenConns == 0 {
			cfg.MaxOpenConns = 10
		}
		if cfg.MaxIdleConns == 0 {
			cfg.MaxIdleConns = 5
		}
	}

	if cfg.ConnMaxLifetime == 0 {
		cfg.ConnMaxLifetime = 5 * time.Minute
	}
	if cfg.StartupTimeout == 0 {
		cfg.StartupTimeout = 30 * time.Second
	}
	if cfg.MaxIdleConns > cfg.MaxOpenConns {
		cfg.MaxIdleConns = cfg.MaxOpenConns
	}

	return nil
}
