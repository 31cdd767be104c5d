// file: internal/services/province_service.go
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

// DefaultGeoCacheTTL bounds staleness of province and hotspot reads
const DefaultGeoCacheTTL = time.Hour

// provinceService implements ProvinceService
type provinceService struct {
	provinces repositories.ProvinceRepository
	hotspots  repositories.HotspotRepository
	store     *cache.Store
	ttl       time.Duration
	logger    *zap.Logger
}

// NewProvinceService creates a cached province service
func NewProvinceService(
	provinces repositories.ProvinceRepository,
	hotspots repositories.HotspotRepository,
	store *cache.Store,
	ttl time.Duration,
	logger *zap.Logger,
) ProvinceService {
	if ttl <= 0 {
		ttl = DefaultGeoCacheTTL
	}
	return &provinceService{
		provinces: provinces,
		hotspots:  hotspots,
		store:     store,
		ttl:       ttl,
		logger:    logger,
	}
}

// List returns every province with its hotspot count, ordered by name
func (s *provinceService) List(ctx context.Context) ([]*models.Province, error) {
	provinces, err := cache.GetOrLoad(ctx, s.store, cache.ProvincesAllKey, s.ttl, func(ctx context.Context) ([]*models.Province, error) {
		provinces, err := s.provinces.List(ctx)
		if err != nil {
			return nil, err
		}
		if provinces == nil {
			provinces = []*models.Province{}
		}
		return provinces, nil
	})
	if err != nil {
		return nil, NewInternalError("failed to list provinces").WithCause(err)
	}
	return provinces, nil
}

// Get returns a province with its hotspots embedded
func (s *provinceService) Get(ctx context.Context, id string) (*models.Province, error) {
	province, err := cache.GetOrLoad(ctx, s.store, cache.ProvinceKey(id), s.ttl, func(ctx context.Context) (*models.Province, error) {
		province, err := s.provinces.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		hotspots, err := s.hotspots.ListByProvince(ctx, id)
		if err != nil {
			return nil, err
		}
		if hotspots == nil {
			hotspots = []*models.Hotspot{}
		}
		province.Hotspots = hotspots
		province.HotspotCount = len(hotspots)
		return province, nil
	})
	if err != nil {
		return nil, storeError(err, "province", id, "failed to load province")
	}
	return province, nil
}

// Create adds a province
func (s *provinceService) Create(ctx context.Context, req *CreateProvinceRequest) (*models.Province, error) {
	if err := validation.ValidateStruct(req); err != nil {
		return nil, NewValidationError("invalid province", err)
	}

	province := &models.Province{
		Name:          req.Name,
		Description:   req.Description,
		Latitude:      req.Latitude,
		Longitude:     req.Longitude,
		LogoURL:       req.LogoURL,
		BackgroundURL: req.BackgroundURL,
		BacksoundURL:  req.BacksoundURL,
		IconicInfo:    req.IconicInfo,
	}
	if err := s.provinces.Create(ctx, province); err != nil {
		if repositories.IsDuplicateKey(err) {
			return nil, EntityAlreadyExistsError("province", "name", req.Name)
		}
		return nil, NewInternalError("failed to create province").WithCause(err)
	}

	s.store.Invalidate(ctx, cache.ProvincesAllKey)

	s.logger.Info("Province created",
		zap.String("province_id", province.ID),
		zap.String("name", province.Name))
	return province, nil
}

// Update applies a partial update. Iconic info is merged key-wise.
func (s *provinceService) Update(ctx context.Context, id string, req *UpdateProvinceRequest) (*models.Province, error) {
	if err := validation.ValidateStruct(req); err != nil {
		return nil, NewValidationError("invalid province", err)
	}

	province, err := s.provinces.GetByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "province", id, "failed to load province")
	}

	if req.Name != nil {
		province.Name = *req.Name
	}
	if req.Description != nil {
		province.Description = *req.Description
	}
	if req.Latitude != nil {
		province.Latitude = req.Latitude
	}
	if req.Longitude != nil {
		province.Longitude = req.Longitude
	}
	if req.LogoURL != nil {
		province.LogoURL = req.LogoURL
	}
	if req.BackgroundURL != nil {
		province.BackgroundURL = req.BackgroundURL
	}
	if req.BacksoundURL != nil {
		province.BacksoundURL = req.BacksoundURL
	}
	if req.IconicInfo != nil {
		province.IconicInfo = province.IconicInfo.Merge(req.IconicInfo)
	}

	if err := s.provinces.Update(ctx, province); err != nil {
		if repositories.IsDuplicateKey(err) {
			return nil, EntityAlreadyExistsError("province", "name", province.Name)
		}
		return nil, storeError(err, "province", id, "failed to update province")
	}

	s.store.Invalidate(ctx, cache.ProvinceKeys(id)...)

	s.logger.Info("Province updated", zap.String("province_id", id))
	return province, nil
}

// Delete removes a province. Its hotspots go with it, so their cached views
// are dropped as well.
func (s *provinceService) Delete(ctx context.Context, id string) error {
	if _, err := s.provinces.GetByID(ctx, id); err != nil {
		return storeError(err, "province", id, "failed to load province")
	}

	hotspots, err := s.hotspots.ListByProvince(ctx, id)
	if err != nil {
		return NewInternalError("failed to load province hotspots").WithCause(err)
	}

	if err := s.provinces.Delete(ctx, id); err != nil {
		return storeError(err, "province", id, "failed to delete province")
	}

	keys := append(cache.ProvinceKeys(id), cache.HotspotsAllKey)
	for _, h := range hotspots {
		keys = append(keys, cache.HotspotKey(h.ID))
	}
	s.store.Invalidate(ctx, keys...)

	s.logger.Info("Province deleted",
		zap.String("province_id", id),
		zap.Int("hotspots_removed", len(hotspots)))
	return nil
}
