// ===============================
// FILE: internal/handlers/api/v1/users/users_controller.go
// ===============================

package users

import (
	"net/http"

	"rekaloka/internal/middleware"
	"rekaloka/internal/response"
	"rekaloka/internal/services"
	"rekaloka/internal/utils"

	"go.uber.org/zap"
)

// UserController serves the caller's profile and the public leaderboard
type UserController struct {
	serviceCollection *services.ServiceCollection
	responseBuilder   *response.Builder
	logger            *zap.Logger
}

// NewUserController creates a new user API controller
func NewUserController(
	serviceCollection *services.ServiceCollection,
	logger *zap.Logger,
	responseBuilder *response.Builder,
) *UserController {
	return &UserController{
		serviceCollection: serviceCollection,
		responseBuilder:   responseBuilder,
		logger:            logger,
	}
}

// ===============================
// PROFILE
// ===============================

// GetProfile handles GET /api/v1/profile
func (c *UserController) GetProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := c.requireUser(w, r)
	if !ok {
		return
	}

	profile, err := c.serviceCollection.ProfileService.GetProfile(r.Context(), userID)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	c.responseBuilder.WriteSuccess(w, r, profile)
}

// GetExpLevel handles GET /api/v1/profile/exp-level
func (c *UserController) GetExpLevel(w http.ResponseWriter, r *http.Request) {
	userID, ok := c.requireUser(w, r)
	if !ok {
		return
	}

	expLevel, err := c.serviceCollection.ProfileService.GetExpLevel(r.Context(), userID)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	c.responseBuilder.WriteSuccess(w, r, expLevel)
}

// GetCheckInHistory handles GET /api/v1/profile/check-in-history
func (c *UserController) GetCheckInHistory(w http.ResponseWriter, r *http.Request) {
	userID, ok := c.requireUser(w, r)
	if !ok {
		return
	}

	history, err := c.serviceCollection.ProfileService.GetCheckInHistory(r.Context(), userID)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	c.responseBuilder.WriteSuccess(w, r, map[string]interface{}{
		"count":   len(history),
		"history": history,
	})
}

// UpdateProfile handles PUT /api/v1/profile/update
func (c *UserController) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := c.requireUser(w, r)
	if !ok {
		return
	}

	var req services.UpdateProfileRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	user, err := c.serviceCollection.ProfileService.UpdateProfile(r.Context(), userID, &req)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	c.responseBuilder.WriteSuccess(w, r, user)
}

// ChangePassword handles PUT /api/v1/profile/change-password
func (c *UserController) ChangePassword(w http.ResponseWriter, r *http.Request) {
	userID, ok := c.requireUser(w, r)
	if !ok {
		return
	}

	var req services.ChangePasswordRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	if err := c.serviceCollection.ProfileService.ChangePassword(r.Context(), userID, &req); err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	middleware.GetRequestLogger(r.Context()).Info("Password changed", zap.String("user_id", userID))
	c.responseBuilder.WriteMessage(w, r, "Password updated")
}

// ===============================
// LEADERBOARD
// ===============================

// GetLeaderboard handles GET /api/v1/leaderboard?limit=
func (c *UserController) GetLeaderboard(w http.ResponseWriter, r *http.Request) {
	limit, err := utils.QueryInt(r, "limit", services.DefaultLeaderboardLimit)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}
	limit = services.NormalizeLeaderboardLimit(limit)

	entries, err := c.serviceCollection.LeaderboardService.Top(r.Context(), limit)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	c.responseBuilder.WriteSuccess(w, r, map[string]interface{}{
		"leaderboard": entries,
		"count":       len(entries),
		"limit":       limit,
	})
}

func (c *UserController) requireUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		c.responseBuilder.WriteUnauthorized(w, r, "Authentication required")
		return "", false
	}
	return userID, true
}
