// ===============================
// FILE: internal/handlers/api/v1/auth/auth_controller.go
// ===============================

package auth

import (
	"net/http"

	"rekaloka/internal/middleware"
	"rekaloka/internal/response"
	"rekaloka/internal/services"
	"rekaloka/internal/utils"

	"go.uber.org/zap"
)

// AuthController handles registration, verification and login
type AuthController struct {
	serviceCollection *services.ServiceCollection
	logger            *zap.Logger
	responseBuilder   *response.Builder
}

// NewAuthController creates a new authentication controller
func NewAuthController(
	serviceCollection *services.ServiceCollection,
	logger *zap.Logger,
	responseBuilder *response.Builder,
) *AuthController {
	return &AuthController{
		serviceCollection: serviceCollection,
		logger:            logger,
		responseBuilder:   responseBuilder,
	}
}

// ===============================
// AUTHENTICATION ENDPOINTS
// ===============================

// Register handles POST /api/v1/auth/register
func (c *AuthController) Register(w http.ResponseWriter, r *http.Request) {
	var req services.RegisterRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	result, err := c.serviceCollection.AuthService.Register(r.Context(), &req)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	middleware.GetRequestLogger(r.Context()).Info("User registered via API",
		zap.String("user_id", result.UserID))

	c.responseBuilder.WriteCreated(w, r, map[string]interface{}{
		"message": "Registration successful. Check your email for the verification code.",
		"userId":  result.UserID,
		"email":   result.Email,
	})
}

// Verify handles POST /api/v1/auth/verify
func (c *AuthController) Verify(w http.ResponseWriter, r *http.Request) {
	var req services.VerifyRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	if err := c.serviceCollection.AuthService.Verify(r.Context(), &req); err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	c.responseBuilder.WriteMessage(w, r, "Account verified. Please log in.")
}

// Login handles POST /api/v1/auth/login
func (c *AuthController) Login(w http.ResponseWriter, r *http.Request) {
	var req services.LoginRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	result, err := c.serviceCollection.AuthService.Login(r.Context(), &req)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	c.responseBuilder.WriteSuccess(w, r, map[string]interface{}{
		"message":   "Login successful",
		"token":     result.Token,
		"tokenType": "Bearer",
		"expiresIn": result.ExpiresIn,
		"user":      result.User,
	})
}
