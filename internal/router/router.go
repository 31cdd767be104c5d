package router

import (
	"net/http"

	"rekaloka/internal/handlers/api/v1/auth"
	"rekaloka/internal/handlers/api/v1/game"
	"rekaloka/internal/handlers/api/v1/hotspots"
	"rekaloka/internal/handlers/api/v1/location"
	"rekaloka/internal/handlers/api/v1/media"
	"rekaloka/internal/handlers/api/v1/provinces"
	"rekaloka/internal/handlers/api/v1/users"
	"rekaloka/internal/middleware"
	"rekaloka/internal/response"
	"rekaloka/internal/services"
	"rekaloka/internal/utils/appinfo"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// SetupRouter configures all HTTP routes and returns the main handler
func SetupRouter(serviceCollection *services.ServiceCollection, authMiddleware *middleware.AuthMiddleware, responseBuilder *response.Builder, logger *zap.Logger) http.Handler {
	cfg := serviceCollection.Config

	r := chi.NewRouter()

	// Global middleware, outermost first
	r.Use(middleware.RequestID(logger))
	r.Use(middleware.Logging)
	r.Use(middleware.Recovery(responseBuilder))
	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.StripSlashes)
	r.Use(middleware.SecureHeaders)
	r.Use(middleware.CORS(cfg.Server.CORSOrigins))
	r.Use(middleware.MaxBodySize(cfg.Server.MaxBodyBytes))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		responseBuilder.WriteNotFound(w, r, "Route not found")
	})
	r.MethodNotAllowed(responseBuilder.WriteMethodNotAllowed)

	r.Get("/health", healthHandler(serviceCollection, responseBuilder))

	// Auth and AI generation are the expensive or abuse-prone endpoints
	authLimiter := middleware.NewRateLimiter(serviceCollection.Cache, "auth",
		cfg.Server.RateLimitRequests, cfg.Server.RateLimitWindow, logger)
	aiLimiter := middleware.NewRateLimiter(serviceCollection.Cache, "ai",
		cfg.Server.RateLimitRequests, cfg.Server.RateLimitWindow, logger)

	authController := auth.NewAuthController(serviceCollection, logger, responseBuilder)
	userController := users.NewUserController(serviceCollection, logger, responseBuilder)
	provinceController := provinces.NewProvinceController(serviceCollection, logger, responseBuilder)
	hotspotController := hotspots.NewHotspotController(serviceCollection, logger, responseBuilder)
	gameController := game.NewGameController(serviceCollection, logger, responseBuilder)
	locationController := location.NewLocationController(serviceCollection, logger, responseBuilder)
	mediaController := media.NewMediaController(serviceCollection, logger, responseBuilder)

	r.Route("/api/v1", func(r chi.Router) {
		// ===============================
		// AUTHENTICATION ROUTES
		// ===============================
		r.Route("/auth", func(r chi.Router) {
			r.Use(authLimiter.Middleware(responseBuilder))
			r.Post("/register", authController.Register)
			r.Post("/verify", authController.Verify)
			r.Post("/login", authController.Login)
		})

		// ===============================
		// GEO CONTENT ROUTES
		// ===============================
		r.Route("/provinces", func(r chi.Router) {
			r.Get("/", provinceController.List)
			r.Get("/{id}", provinceController.Get)

			r.Group(func(r chi.Router) {
				r.Use(authMiddleware.RequireAdmin)
				r.Post("/", provinceController.Create)
				r.Put("/{id}", provinceController.Update)
				r.Delete("/{id}", provinceController.Delete)
			})
		})

		r.Route("/hotspots", func(r chi.Router) {
			r.Get("/", hotspotController.List)
			r.Get("/by-province/{provinceId}", hotspotController.ListByProvince)
			r.Get("/{id}", hotspotController.Get)

			r.Group(func(r chi.Router) {
				r.Use(authMiddleware.RequireAdmin)
				r.Post("/", hotspotController.Create)
				r.Put("/{id}", hotspotController.Update)
				r.Delete("/{id}", hotspotController.Delete)
			})
		})

		r.Get("/location/detect", locationController.Detect)

		// ===============================
		// GAME ROUTES
		// ===============================
		r.Get("/badges/catalog", gameController.Catalog)
		r.Get("/badges/{userId}", gameController.UserBadges)

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.RequireAuth)

			r.Post("/game/check-in", gameController.CheckIn)
			r.Get("/badges/my", gameController.MyBadges)
			r.Get("/leaderboard", userController.GetLeaderboard)

			// ===============================
			// PROFILE ROUTES
			// ===============================
			r.Route("/profile", func(r chi.Router) {
				r.Get("/", userController.GetProfile)
				r.Get("/exp-level", userController.GetExpLevel)
				r.Get("/check-in-history", userController.GetCheckInHistory)
				r.Put("/update", userController.UpdateProfile)
				r.Put("/change-password", userController.ChangePassword)
			})

			// ===============================
			// MEDIA ROUTES
			// ===============================
			r.Post("/upload", mediaController.Upload)
			r.With(aiLimiter.Middleware(responseBuilder)).Post("/ai/generate-image", mediaController.GenerateImage)
		})
	})

	logger.Info("Router setup completed",
		zap.Int("rate_limit_requests", cfg.Server.RateLimitRequests),
		zap.Duration("rate_limit_window", cfg.Server.RateLimitWindow),
		zap.Strings("cors_origins", cfg.Server.CORSOrigins),
	)

	return r
}

// healthHandler reports database and cache health; 503 when unhealthy
func healthHandler(serviceCollection *services.ServiceCollection, responseBuilder *response.Builder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		health := serviceCollection.HealthCheck(r.Context())
		health.Version = appinfo.GetVersion()
		responseBuilder.WriteHealthCheck(w, r, health)
	}
}
