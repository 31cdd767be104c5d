// ===============================
// FILE: internal/handlers/api/v1/hotspots/hotspots_controller.go
// ===============================

package hotspots

import (
	"net/http"

	"rekaloka/internal/middleware"
	"rekaloka/internal/response"
	"rekaloka/internal/services"
	"rekaloka/internal/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// HotspotController exposes hotspot reads and admin writes
type HotspotController struct {
	serviceCollection *services.ServiceCollection
	logger            *zap.Logger
	responseBuilder   *response.Builder
}

// NewHotspotController creates a new hotspot controller
func NewHotspotController(
	serviceCollection *services.ServiceCollection,
	logger *zap.Logger,
	responseBuilder *response.Builder,
) *HotspotController {
	return &HotspotController{
		serviceCollection: serviceCollection,
		logger:            logger,
		responseBuilder:   responseBuilder,
	}
}

// List handles GET /api/v1/hotspots
func (c *HotspotController) List(w http.ResponseWriter, r *http.Request) {
	hotspots, err := c.serviceCollection.HotspotService.List(r.Context())
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	c.responseBuilder.WriteSuccess(w, r, hotspots)
}

// Get handles GET /api/v1/hotspots/{id}
func (c *HotspotController) Get(w http.ResponseWriter, r *http.Request) {
	hotspot, err := c.serviceCollection.HotspotService.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	c.responseBuilder.WriteSuccess(w, r, hotspot)
}

// Create handles POST /api/v1/hotspots
func (c *HotspotController) Create(w http.ResponseWriter, r *http.Request) {
	var req services.CreateHotspotRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	hotspot, err := c.serviceCollection.HotspotService.Create(r.Context(), &req)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	middleware.GetRequestLogger(r.Context()).Info("Hotspot created",
		zap.String("hotspot_id", hotspot.ID),
		zap.String("admin_id", middleware.GetUserID(r.Context())))

	c.responseBuilder.WriteCreated(w, r, hotspot)
}

// Update handles PUT /api/v1/hotspots/{id}
func (c *HotspotController) Update(w http.ResponseWriter, r *http.Request) {
	var req services.UpdateHotspotRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	hotspot, err := c.serviceCollection.HotspotService.Update(r.Context(), chi.URLParam(r, "id"), &req)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	c.responseBuilder.WriteSuccess(w, r, hotspot)
}

// Delete handles DELETE /api/v1/hotspots/{id}
func (c *HotspotController) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := c.serviceCollection.HotspotService.Delete(r.Context(), id); err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	middleware.GetRequestLogger(r.Context()).Info("Hotspot deleted",
		zap.String("hotspot_id", id),
		zap.String("admin_id", middleware.GetUserID(r.Context())))

	c.responseBuilder.WriteMessage(w, r, "Hotspot deleted")
}

// ListByProvince handles GET /api/v1/hotspots/by-province/{provinceId}
func (c *HotspotController) ListByProvince(w http.ResponseWriter, r *http.Request) {
	hotspots, err := c.serviceCollection.HotspotService.ListByProvince(r.Context(), chi.URLParam(r, "provinceId"))
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	c.responseBuilder.WriteSuccess(w, r, hotspots)
}
