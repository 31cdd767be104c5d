// file: internal/services/service_collection.go
package services

import (
	"context"
	"fmt"
	"time"

	"rekaloka/internal/ai"
	"rekaloka/internal/auth"
	"rekaloka/internal/cache"
	"rekaloka/internal/config"
	"rekaloka/internal/database"
	"rekaloka/internal/events"
	"rekaloka/internal/geocoding"
	"rekaloka/internal/leveling"
	"rekaloka/internal/repositories"
	"rekaloka/internal/storage"

	"go.uber.org/zap"
)

// ServiceCollection holds every service with its dependencies injected
type ServiceCollection struct {
	// Core Services
	AuthService        AuthService
	ProfileService     ProfileService
	ProvinceService    ProvinceService
	HotspotService     HotspotService
	CheckInService     CheckInService
	BadgeService       BadgeService
	LeaderboardService LeaderboardService
	LocationService    LocationService
	UploadService      UploadService
	AIService          AIService
	EmailService       EmailService

	// Infrastructure Components
	Repositories *repositories.Collection
	Cache        cache.Cache
	Store        *cache.Store
	Events       events.EventBus
	Tokens       *auth.TokenManager
	Levels       leveling.Engine
	Logger       *zap.Logger
	Config       *config.Config
	DBManager    *database.Manager

	startTime time.Time
}

// Dependencies are the collaborators a service collection is built from.
// A nil Cache disables caching.
type Dependencies struct {
	Repositories *repositories.Collection
	Transactor   Transactor
	Cache        cache.Cache
	Storage      storage.ObjectStorage
	Verifier     LandmarkVerifier
	Images       ImageGenerator
	Geocoder     ReverseGeocoder
	Email        EmailService
	// Events is optional. Without one a bus is created that delivers
	// synchronously until started.
	Events events.EventBus
}

// ServiceHealth represents the health of the service's dependencies
type ServiceHealth struct {
	Status       string                   `json:"status"`
	Version      string                   `json:"version,omitempty"`
	Timestamp    time.Time                `json:"timestamp"`
	Dependencies map[string]ServiceStatus `json:"dependencies"`
	Uptime       string                   `json:"uptime"`
	Issues       []string                 `json:"issues,omitempty"`
}

// ServiceStatus represents the status of one dependency
type ServiceStatus struct {
	Name         string        `json:"name"`
	Status       string        `json:"status"` // healthy, unhealthy, disabled
	LastCheck    time.Time     `json:"last_check"`
	ResponseTime time.Duration `json:"response_time"`
	Error        string        `json:"error,omitempty"`
}

// NewServiceCollection wires the production collaborators from configuration
func NewServiceCollection(
	ctx context.Context,
	dbManager *database.Manager,
	cacheBackend cache.Cache,
	cfg *config.Config,
	logger *zap.Logger,
) (*ServiceCollection, error) {
	if dbManager == nil {
		return nil, fmt.Errorf("database connection is required")
	}
	if cfg == nil {
		return nil, fmt.Errorf("configuration is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	logger.Info("Initializing infrastructure components")

	repos, err := repositories.NewCollection(dbManager, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create repository collection: %w", err)
	}

	objectStorage, err := storage.New(ctx, cfg.Storage, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	aiClient := ai.NewClient(cfg.Vision, logger)

	sc := NewServiceCollectionFromDeps(cfg, Dependencies{
		Repositories: repos,
		Transactor:   repos,
		Cache:        cacheBackend,
		Storage:      objectStorage,
		Verifier:     aiClient,
		Images:       aiClient,
		Geocoder:     geocoding.NewNominatimClient(cfg.Geocoding, logger),
		Email:        NewEmailService(cfg.Mail, logger),
		Events:       events.NewInMemoryEventBus(events.DefaultEventBusConfig(), logger),
	}, logger)
	sc.DBManager = dbManager

	logger.Info("Service collection initialized successfully",
		zap.String("storage_provider", cfg.Storage.Provider),
		zap.Bool("cache_enabled", cacheBackend != nil),
		zap.Bool("vision_fail_open", cfg.Vision.FailOpen))

	return sc, nil
}

// NewServiceCollectionFromDeps builds every service in dependency order
func NewServiceCollectionFromDeps(cfg *config.Config, deps Dependencies, logger *zap.Logger) *ServiceCollection {
	repos := deps.Repositories
	store := cache.NewStore(deps.Cache, logger)
	levels := leveling.New(cfg.Game.LevelConstant)
	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.JWTExpiry)
	bus := deps.Events
	if bus == nil {
		bus = events.NewInMemoryEventBus(events.DefaultEventBusConfig(), logger)
	}

	sc := &ServiceCollection{
		Repositories: repos,
		Cache:        deps.Cache,
		Store:        store,
		Events:       bus,
		Tokens:       tokens,
		Levels:       levels,
		Logger:       logger,
		Config:       cfg,
		EmailService: deps.Email,
		startTime:    time.Now(),
	}

	sc.BadgeService = NewBadgeService(repos.User, repos.CheckIn, repos.Badge, levels, logger)
	sc.AuthService = NewAuthService(repos.User, deps.Email, tokens, bus, cfg.Auth.BCryptCost, logger)
	sc.ProfileService = NewProfileService(repos.User, repos.CheckIn, levels, cfg.Auth.BCryptCost, logger)
	sc.ProvinceService = NewProvinceService(repos.Province, repos.Hotspot, store, cfg.Cache.GeoTTL, logger)
	sc.HotspotService = NewHotspotService(repos.Hotspot, repos.Province, store, cfg.Cache.GeoTTL, logger)
	sc.LeaderboardService = NewLeaderboardService(repos.User, levels, store, cfg.Cache.LeaderboardTTL, logger)
	sc.LocationService = NewLocationService(deps.Geocoder, sc.ProvinceService, logger)
	sc.UploadService = NewUploadService(deps.Storage, cfg.Game.UploadFolder, logger)
	sc.AIService = NewAIService(deps.Images, logger)
	sc.CheckInService = NewCheckInService(
		repos.Hotspot,
		repos.CheckIn,
		deps.Transactor,
		deps.Verifier,
		deps.Storage,
		sc.BadgeService,
		levels,
		store,
		bus,
		CheckInConfig{
			GeofenceRadiusMeters: cfg.Game.GeofenceRadiusMeters,
			ExpReward:            cfg.Game.CheckInExpReward,
			ProofFolder:          cfg.Game.ProofFolder,
			VisionFailOpen:       cfg.Vision.FailOpen,
		},
		logger,
	)

	sc.registerEventHandlers()

	return sc
}

// registerEventHandlers subscribes the audit log to every event and re-warms
// the default leaderboard page after each committed check-in
func (sc *ServiceCollection) registerEventHandlers() {
	_ = sc.Events.SubscribePattern("*", events.EventHandlerFunc{
		ID: "audit-log",
		Func: func(ctx context.Context, event events.Event) error {
			sc.Logger.Info("Domain event",
				zap.String("event_id", event.GetEventID()),
				zap.String("event_type", event.GetEventType()),
				zap.String("user_id", event.GetUserID()))
			return nil
		},
	})

	_ = sc.Events.Subscribe(events.TypeCheckInCompleted, events.EventHandlerFunc{
		ID: "leaderboard-warmup",
		Func: func(ctx context.Context, event events.Event) error {
			_, err := sc.LeaderboardService.Top(ctx, DefaultLeaderboardLimit)
			return err
		},
	})
}

// Start launches background workers
func (sc *ServiceCollection) Start(ctx context.Context) error {
	return sc.Events.Start(ctx)
}

// ===============================
// HEALTH & LIFECYCLE
// ===============================

// HealthCheck probes the database and the cache. A missing cache is reported
// as disabled rather than unhealthy because reads fall through to storage.
func (sc *ServiceCollection) HealthCheck(ctx context.Context) *ServiceHealth {
	health := &ServiceHealth{
		Status:       "healthy",
		Timestamp:    time.Now(),
		Dependencies: make(map[string]ServiceStatus),
		Uptime:       time.Since(sc.startTime).Round(time.Second).String(),
	}

	dbStatus := sc.checkDatabaseHealth(ctx)
	health.Dependencies["database"] = dbStatus
	if dbStatus.Status != "healthy" {
		health.Status = "unhealthy"
		health.Issues = append(health.Issues, fmt.Sprintf("Database: %s", dbStatus.Error))
	}

	cacheStatus := sc.checkCacheHealth(ctx)
	health.Dependencies["cache"] = cacheStatus
	if cacheStatus.Status == "unhealthy" {
		if health.Status == "healthy" {
			health.Status = "degraded"
		}
		health.Issues = append(health.Issues, fmt.Sprintf("Cache: %s", cacheStatus.Error))
	}

	sc.Logger.Debug("Health check completed",
		zap.String("status", health.Status),
		zap.Int("issues", len(health.Issues)))

	return health
}

func (sc *ServiceCollection) checkDatabaseHealth(ctx context.Context) ServiceStatus {
	start := time.Now()
	status := ServiceStatus{Name: "database", Status: "healthy", LastCheck: start}

	if sc.DBManager == nil {
		status.Status = "unhealthy"
		status.Error = "database not initialized"
	} else if err := sc.DBManager.Health(ctx); err != nil {
		status.Status = "unhealthy"
		status.Error = err.Error()
	}

	status.ResponseTime = time.Since(start)
	return status
}

func (sc *ServiceCollection) checkCacheHealth(ctx context.Context) ServiceStatus {
	start := time.Now()
	status := ServiceStatus{Name: "cache", Status: "healthy", LastCheck: start}

	if sc.Cache == nil {
		status.Status = "disabled"
	} else if err := sc.Cache.Health(ctx); err != nil {
		status.Status = "unhealthy"
		status.Error = err.Error()
	}

	status.ResponseTime = time.Since(start)
	return status
}

// Shutdown closes the cache and the database pool
func (sc *ServiceCollection) Shutdown(ctx context.Context) error {
	sc.Logger.Info("Shutting down service collection")

	var shutdownErrors []error

	if sc.Events != nil {
		if err := sc.Events.Stop(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("event bus stop: %w", err))
		}
	}

	if sc.Cache != nil {
		if err := sc.Cache.Close(); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("cache close: %w", err))
		}
	}

	if sc.DBManager != nil {
		if err := sc.DBManager.Close(); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("database close: %w", err))
		}
	}

	if len(shutdownErrors) > 0 {
		sc.Logger.Error("Errors occurred during shutdown",
			zap.Int("error_count", len(shutdownErrors)),
		)
		return fmt.Errorf("shutdown completed with %d errors", len(shutdownErrors))
	}

	sc.Logger.Info("Service collection shutdown completed successfully")
	return nil
}
