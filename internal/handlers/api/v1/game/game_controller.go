// ===============================
// FILE: internal/handlers/api/v1/game/game_controller.go
// ===============================

package game

import (
	"net/http"

	"rekaloka/internal/middleware"
	"rekaloka/internal/response"
	"rekaloka/internal/services"
	"rekaloka/internal/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// GameController handles check-ins and badge listings
type GameController struct {
	serviceCollection *services.ServiceCollection
	logger            *zap.Logger
	responseBuilder   *response.Builder
}

// NewGameController creates a new game controller
func NewGameController(
	serviceCollection *services.ServiceCollection,
	logger *zap.Logger,
	responseBuilder *response.Builder,
) *GameController {
	return &GameController{
		serviceCollection: serviceCollection,
		logger:            logger,
		responseBuilder:   responseBuilder,
	}
}

// ===============================
// CHECK-IN
// ===============================

// CheckIn handles POST /api/v1/game/check-in
func (c *GameController) CheckIn(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		c.responseBuilder.WriteUnauthorized(w, r, "Authentication required")
		return
	}

	var req services.CheckInRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	result, err := c.serviceCollection.CheckInService.CheckIn(r.Context(), userID, &req)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	middleware.GetRequestLogger(r.Context()).Info("Check-in accepted",
		zap.String("user_id", userID),
		zap.String("hotspot_id", req.HotspotID),
		zap.Int("level", result.Level),
		zap.Int("new_badges", len(result.NewBadges)))

	c.responseBuilder.WriteSuccess(w, r, result)
}

// ===============================
// BADGES
// ===============================

// Catalog handles GET /api/v1/badges/catalog
func (c *GameController) Catalog(w http.ResponseWriter, r *http.Request) {
	c.responseBuilder.WriteSuccess(w, r, c.serviceCollection.BadgeService.Catalog())
}

// MyBadges handles GET /api/v1/badges/my
func (c *GameController) MyBadges(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		c.responseBuilder.WriteUnauthorized(w, r, "Authentication required")
		return
	}
	c.writeBadges(w, r, userID)
}

// UserBadges handles GET /api/v1/badges/{userId}
func (c *GameController) UserBadges(w http.ResponseWriter, r *http.Request) {
	c.writeBadges(w, r, chi.URLParam(r, "userId"))
}

func (c *GameController) writeBadges(w http.ResponseWriter, r *http.Request, userID string) {
	badges, err := c.serviceCollection.BadgeService.ListByUser(r.Context(), userID)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	c.responseBuilder.WriteSuccess(w, r, map[string]interface{}{
		"count":  len(badges),
		"badges": badges,
	})
}
