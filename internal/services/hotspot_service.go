// file: internal/services/hotspot_service.go
package services

import (
	"context"
	"time"

	"rekaloka/internal/cache"
	"rekaloka/internal/models"
	"rekaloka/internal/repositories"
	"rekaloka/internal/validation"

	"go.uber.org/zap"
)

// hotspotService implements HotspotService
type hotspotService struct {
	hotspots  repositories.HotspotRepository
	provinces repositories.ProvinceRepository
	store     *cache.Store
	ttl       time.Duration
	logger    *zap.Logger
}

// NewHotspotService creates a cached hotspot service
func NewHotspotService(
	hotspots repositories.HotspotRepository,
	provinces repositories.ProvinceRepository,
	store *cache.Store,
	ttl time.Duration,
	logger *zap.Logger,
) HotspotService {
	if ttl <= 0 {
		ttl = DefaultGeoCacheTTL
	}
	return &hotspotService{
		hotspots:  hotspots,
		provinces: provinces,
		store:     store,
		ttl:       ttl,
		logger:    logger,
	}
}

// List returns every hotspot
func (s *hotspotService) List(ctx context.Context) ([]*models.Hotspot, error) {
	hotspots, err := cache.GetOrLoad(ctx, s.store, cache.HotspotsAllKey, s.ttl, s.loadList(s.hotspots.List))
	if err != nil {
		return nil, NewInternalError("failed to list hotspots").WithCause(err)
	}
	return hotspots, nil
}

// Get returns one hotspot
func (s *hotspotService) Get(ctx context.Context, id string) (*models.Hotspot, error) {
	hotspot, err := cache.GetOrLoad(ctx, s.store, cache.HotspotKey(id), s.ttl, func(ctx context.Context) (*models.Hotspot, error) {
		return s.hotspots.GetByID(ctx, id)
	})
	if err != nil {
		return nil, storeError(err, "hotspot", id, "failed to load hotspot")
	}
	return hotspot, nil
}

// ListByProvince returns the hotspots of one province
func (s *hotspotService) ListByProvince(ctx context.Context, provinceID string) ([]*models.Hotspot, error) {
	load := func(ctx context.Context) ([]*models.Hotspot, error) {
		return s.hotspots.ListByProvince(ctx, provinceID)
	}
	hotspots, err := cache.GetOrLoad(ctx, s.store, cache.HotspotsByProvinceKey(provinceID), s.ttl, s.loadList(load))
	if err != nil {
		return nil, NewInternalError("failed to list hotspots").WithCause(err)
	}
	return hotspots, nil
}

// loadList normalizes nil results so cached snapshots encode as []
func (s *hotspotService) loadList(load func(context.Context) ([]*models.Hotspot, error)) func(context.Context) ([]*models.Hotspot, error) {
	return func(ctx context.Context) ([]*models.Hotspot, error) {
		hotspots, err := load(ctx)
		if err != nil {
			return nil, err
		}
		if hotspots == nil {
			hotspots = []*models.Hotspot{}
		}
		return hotspots, nil
	}
}

// Create adds a hotspot to an existing province
func (s *hotspotService) Create(ctx context.Context, req *CreateHotspotRequest) (*models.Hotspot, error) {
	if err := validation.ValidateStruct(req); err != nil {
		return nil, NewValidationError("invalid hotspot", err)
	}
	if err := s.ensureProvince(ctx, req.ProvinceID); err != nil {
		return nil, err
	}

	hotspot := &models.Hotspot{
		Name:        req.Name,
		Description: req.Description,
		Latitude:    *req.Latitude,
		Longitude:   *req.Longitude,
		Type:        req.Type,
		ProvinceID:  req.ProvinceID,
		ImageURL:    req.ImageURL,
	}
	if err := s.hotspots.Create(ctx, hotspot); err != nil {
		return nil, NewInternalError("failed to create hotspot").WithCause(err)
	}

	s.store.Invalidate(ctx, cache.HotspotKeys("", hotspot.ProvinceID)...)

	s.logger.Info("Hotspot created",
		zap.String("hotspot_id", hotspot.ID),
		zap.String("province_id", hotspot.ProvinceID))
	return hotspot, nil
}

// Update applies a partial update. Moving a hotspot invalidates the views of
// both the old and the new province.
func (s *hotspotService) Update(ctx context.Context, id string, req *UpdateHotspotRequest) (*models.Hotspot, error) {
	if err := validation.ValidateStruct(req); err != nil {
		return nil, NewValidationError("invalid hotspot", err)
	}

	hotspot, err := s.hotspots.GetByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "hotspot", id, "failed to load hotspot")
	}
	oldProvinceID := hotspot.ProvinceID

	if req.ProvinceID != nil && *req.ProvinceID != oldProvinceID {
		if err := s.ensureProvince(ctx, *req.ProvinceID); err != nil {
			return nil, err
		}
		hotspot.ProvinceID = *req.ProvinceID
	}
	if req.Name != nil {
		hotspot.Name = *req.Name
	}
	if req.Description != nil {
		hotspot.Description = *req.Description
	}
	if req.Latitude != nil {
		hotspot.Latitude = *req.Latitude
	}
	if req.Longitude != nil {
		hotspot.Longitude = *req.Longitude
	}
	if req.Type != nil {
		hotspot.Type = *req.Type
	}
	if req.ImageURL != nil {
		hotspot.ImageURL = req.ImageURL
	}

	if err := s.hotspots.Update(ctx, hotspot); err != nil {
		return nil, storeError(err, "hotspot", id, "failed to update hotspot")
	}

	keys := cache.HotspotKeys(id, hotspot.ProvinceID)
	if oldProvinceID != hotspot.ProvinceID {
		keys = append(keys, cache.HotspotsByProvinceKey(oldProvinceID), cache.ProvinceKey(oldProvinceID))
	}
	s.store.Invalidate(ctx, keys...)

	s.logger.Info("Hotspot updated",
		zap.String("hotspot_id", id),
		zap.String("province_id", hotspot.ProvinceID))
	return hotspot, nil
}

// Delete removes a hotspot
func (s *hotspotService) Delete(ctx context.Context, id string) error {
	hotspot, err := s.hotspots.GetByID(ctx, id)
	if err != nil {
		return storeError(err, "hotspot", id, "failed to load hotspot")
	}

	if err := s.hotspots.Delete(ctx, id); err != nil {
		return storeError(err, "hotspot", id, "failed to delete hotspot")
	}

	s.store.Invalidate(ctx, cache.HotspotKeys(id, hotspot.ProvinceID)...)

	s.logger.Info("Hotspot deleted", zap.String("hotspot_id", id))
	return nil
}

func (s *hotspotService) ensureProvince(ctx context.Context, provinceID string) error {
	if _, err := s.provinces.GetByID(ctx, provinceID); err != nil {
		if repositories.IsNotFound(err) {
			return InvalidInputError("provinceId", "province does not exist")
		}
		return NewInternalError("failed to load province").WithCause(err)
	}
	return nil
}
