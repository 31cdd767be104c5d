package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"rekaloka/internal/cache"
	"rekaloka/internal/config"
	"rekaloka/internal/database"
	"rekaloka/internal/middleware"
	"rekaloka/internal/response"
	"rekaloka/internal/router"
	"rekaloka/internal/services"
	"rekaloka/internal/utils/appinfo"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger, err := initLogger(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting Rekaloka API",
		zap.String("version", appinfo.GetVersion()),
		zap.String("environment", cfg.Server.Environment),
		zap.String("port", cfg.Server.Port),
	)

	// Initialize database
	startupCtx, cancelStartup := context.WithTimeout(context.Background(), cfg.Database.StartupTimeout+10*time.Second)
	dbManager, err := database.Open(startupCtx, cfg, logger)
	cancelStartup()
	if err != nil {
		logger.Fatal("Failed to initialize database", zap.Error(err))
	}

	// Create cache
	cacheInstance := initCache(cfg.Cache, logger)

	// Initialize services
	serviceCollection, err := services.NewServiceCollection(context.Background(), dbManager, cacheInstance, cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize services", zap.Error(err))
	}
	if err := serviceCollection.Start(context.Background()); err != nil {
		logger.Fatal("Failed to start background workers", zap.Error(err))
	}

	// Create Response Builder for API controllers
	responseConfig := response.DefaultConfig()
	if !cfg.IsProduction() {
		responseConfig = response.DevelopmentConfig()
	}
	responseBuilder := response.NewBuilder(responseConfig, logger)
	logger.Info("Response builder initialized",
		zap.String("api_version", responseConfig.APIVersion),
		zap.Bool("mask_internal_errors", responseConfig.MaskInternalErrors),
	)

	authMiddleware := middleware.NewAuthMiddleware(serviceCollection.Tokens, responseBuilder, logger)
	handler := router.SetupRouter(serviceCollection, authMiddleware, responseBuilder, logger)

	// HTTP server
	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:           handler,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
		MaxHeaderBytes:    1 << 20,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful shutdown setup
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server",
			zap.String("address", server.Addr),
			zap.String("environment", cfg.Server.Environment),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Shutting down application...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.GracefulTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	} else {
		logger.Info("Server shutdown completed")
	}

	if err := serviceCollection.Shutdown(shutdownCtx); err != nil {
		logger.Error("Service shutdown failed", zap.Error(err))
	}

	logger.Info("Application shutdown completed")
}

// initCache connects the configured backend. An unreachable redis falls back
// to the in-memory cache so the API keeps serving from the database.
func initCache(cfg config.CacheConfig, logger *zap.Logger) cache.Cache {
	cacheConfig := cache.DefaultConfig()
	cacheConfig.Provider = cfg.Provider
	cacheConfig.RedisURL = cfg.RedisURL
	cacheConfig.RedisAddr = cfg.RedisAddr()
	cacheConfig.RedisPassword = cfg.RedisPassword
	cacheConfig.RedisDB = cfg.RedisDB
	cacheConfig.PoolSize = cfg.PoolSize

	cacheInstance, err := cache.NewCache(cacheConfig, logger)
	if err != nil {
		logger.Warn("Cache backend unavailable, using in-memory cache",
			zap.String("provider", cfg.Provider),
			zap.Error(err))
		cacheConfig.Provider = "memory"
		return cache.NewMemoryCache(cacheConfig, logger)
	}

	logger.Info("Cache initialized", zap.String("provider", cacheConfig.Provider))
	return cacheInstance
}

// initLogger initializes the structured logger based on environment
func initLogger(cfg *config.Config) (*zap.Logger, error) {
	var zapConfig zap.Config

	switch cfg.Server.Environment {
	case "production":
		zapConfig = zap.NewProductionConfig()
		zapConfig.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	case "staging":
		zapConfig = zap.NewProductionConfig()
		zapConfig.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	default:
		zapConfig = zap.NewDevelopmentConfig()
		zapConfig.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}

	if cfg.Logging.Level != "" {
		level, err := zapcore.ParseLevel(cfg.Logging.Level)
		if err != nil {
			return nil, fmt.Errorf("invalid LOG_LEVEL %q: %w", cfg.Logging.Level, err)
		}
		zapConfig.Level = zap.NewAtomicLevelAt(level)
	}
	switch cfg.Logging.Format {
	case "json":
		zapConfig.Encoding = "json"
		zapConfig.EncoderConfig = zap.NewProductionEncoderConfig()
	case "console":
		zapConfig.Encoding = "console"
	}

	logger, err := zapConfig.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	return logger, nil
}
