// ===============================
// FILE: internal/handlers/api/v1/provinces/provinces_controller.go
// ===============================

package provinces

import (
	"net/http"

	"rekaloka/internal/middleware"
	"rekaloka/internal/response"
	"rekaloka/internal/services"
	"rekaloka/internal/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ProvinceController exposes province reads and admin writes
type ProvinceController struct {
	serviceCollection *services.ServiceCollection
	logger            *zap.Logger
	responseBuilder   *response.Builder
}

// NewProvinceController creates a new province controller
func NewProvinceController(
	serviceCollection *services.ServiceCollection,
	logger *zap.Logger,
	responseBuilder *response.Builder,
) *ProvinceController {
	return &ProvinceController{
		serviceCollection: serviceCollection,
		logger:            logger,
		responseBuilder:   responseBuilder,
	}
}

// List handles GET /api/v1/provinces
func (c *ProvinceController) List(w http.ResponseWriter, r *http.Request) {
	provinces, err := c.serviceCollection.ProvinceService.List(r.Context())
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	c.responseBuilder.WriteSuccess(w, r, provinces)
}

// Get handles GET /api/v1/provinces/{id}
func (c *ProvinceController) Get(w http.ResponseWriter, r *http.Request) {
	province, err := c.serviceCollection.ProvinceService.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	c.responseBuilder.WriteSuccess(w, r, province)
}

// Create handles POST /api/v1/provinces
func (c *ProvinceController) Create(w http.ResponseWriter, r *http.Request) {
	var req services.CreateProvinceRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	province, err := c.serviceCollection.ProvinceService.Create(r.Context(), &req)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	middleware.GetRequestLogger(r.Context()).Info("Province created",
		zap.String("province_id", province.ID),
		zap.String("admin_id", middleware.GetUserID(r.Context())))

	c.responseBuilder.WriteCreated(w, r, province)
}

// Update handles PUT /api/v1/provinces/{id}
func (c *ProvinceController) Update(w http.ResponseWriter, r *http.Request) {
	var req services.UpdateProvinceRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	province, err := c.serviceCollection.ProvinceService.Update(r.Context(), chi.URLParam(r, "id"), &req)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	c.responseBuilder.WriteSuccess(w, r, province)
}

// Delete handles DELETE /api/v1/provinces/{id}
func (c *ProvinceController) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := c.serviceCollection.ProvinceService.Delete(r.Context(), id); err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	middleware.GetRequestLogger(r.Context()).Info("Province deleted",
		zap.String("province_id", id),
		zap.String("admin_id", middleware.GetUserID(r.Context())))

	c.responseBuilder.WriteMessage(w, r, "Province deleted")
}
