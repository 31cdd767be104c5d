package location

import (
	"net/http"

	"rekaloka/internal/response"
	"rekaloka/internal/services"
	"rekaloka/internal/utils"

	"go.uber.org/zap"
)

// LocationController resolves coordinates to provinces
type LocationController struct {
	serviceCollection *services.ServiceCollection
	logger            *zap.Logger
	responseBuilder   *response.Builder
}

// NewLocationController creates a new location controller
func NewLocationController(
	serviceCollection *services.ServiceCollection,
	logger *zap.Logger,
	responseBuilder *response.Builder,
) *LocationController {
	return &LocationController{
		serviceCollection: serviceCollection,
		logger:            logger,
		responseBuilder:   responseBuilder,
	}
}

// Detect handles GET /api/v1/location/detect?lat=&long=
func (c *LocationController) Detect(w http.ResponseWriter, r *http.Request) {
	lat, err := utils.QueryFloat(r, "lat")
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}
	long, err := utils.QueryFloat(r, "long")
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	result, err := c.serviceCollection.LocationService.DetectProvince(r.Context(), lat, long)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	c.responseBuilder.WriteSuccess(w, r, result)
}
