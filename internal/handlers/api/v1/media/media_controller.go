// ===============================
// FILE: internal/handlers/api/v1/media/media_controller.go
// ===============================

package media

import (
	"net/http"

	"rekaloka/internal/middleware"
	"rekaloka/internal/response"
	"rekaloka/internal/services"
	"rekaloka/internal/utils"

	"go.uber.org/zap"
)

// MediaController handles uploads and AI image generation
type MediaController struct {
	serviceCollection *services.ServiceCollection
	logger            *zap.Logger
	responseBuilder   *response.Builder
}

// NewMediaController creates a new media controller
func NewMediaController(
	serviceCollection *services.ServiceCollection,
	logger *zap.Logger,
	responseBuilder *response.Builder,
) *MediaController {
	return &MediaController{
		serviceCollection: serviceCollection,
		logger:            logger,
		responseBuilder:   responseBuilder,
	}
}

// Upload handles POST /api/v1/upload
func (c *MediaController) Upload(w http.ResponseWriter, r *http.Request) {
	var req services.UploadRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	result, err := c.serviceCollection.UploadService.Upload(r.Context(), &req)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	middleware.GetRequestLogger(r.Context()).Info("Media uploaded",
		zap.String("user_id", middleware.GetUserID(r.Context())),
		zap.String("folder", result.Folder))

	c.responseBuilder.WriteSuccess(w, r, result)
}

// GenerateImage handles POST /api/v1/ai/generate-image
func (c *MediaController) GenerateImage(w http.ResponseWriter, r *http.Request) {
	var req services.GenerateImageRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	result, err := c.serviceCollection.AIService.GenerateImage(r.Context(), &req)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	c.responseBuilder.WriteSuccess(w, r, result)
}
