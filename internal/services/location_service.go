// file: internal/services/location_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"rekaloka/internal/geocoding"
	"rekaloka/internal/models"

	"go.uber.org/zap"
)

// locationService implements LocationService
type locationService struct {
	geocoder  ReverseGeocoder
	provinces ProvinceService
	logger    *zap.Logger
}

// NewLocationService creates a province detector
func NewLocationService(geocoder ReverseGeocoder, provinces ProvinceService, logger *zap.Logger) LocationService {
	return &locationService{
		geocoder:  geocoder,
		provinces: provinces,
		logger:    logger,
	}
}

// DetectProvince reverse-geocodes the point and matches the resulting region
// against known provinces. When the geocoder cannot be reached the first
// known province is returned flagged as offline.
func (s *locationService) DetectProvince(ctx context.Context, lat, long float64) (*DetectProvinceResponse, error) {
	if err := validateCoordinates(lat, long); err != nil {
		return nil, err
	}

	provinces, err := s.provinces.List(ctx)
	if err != nil {
		return nil, err
	}

	state, err := s.geocoder.ReverseState(ctx, lat, long)
	switch {
	case errors.Is(err, geocoding.ErrNoState):
		return nil, NewNotFoundError("Location not found.")
	case errors.Is(err, geocoding.ErrUnavailable):
		return s.offlineFallback(provinces, err)
	case err != nil:
		s.logger.Error("Reverse geocoding failed", zap.Error(err))
		return nil, NewInternalError("failed to detect location").WithCause(err)
	}

	province := MatchProvince(provinces, state)
	if province == nil {
		return &DetectProvinceResponse{
			Found:       false,
			Message:     fmt.Sprintf("Detected '%s', but this province is not available yet.", state),
			DetectedRaw: state,
		}, nil
	}

	return &DetectProvinceResponse{
		Found:       true,
		Message:     fmt.Sprintf("You are in %s", province.Name),
		DetectedRaw: state,
		Province:    province,
	}, nil
}

func (s *locationService) offlineFallback(provinces []*models.Province, cause error) (*DetectProvinceResponse, error) {
	if len(provinces) == 0 {
		return nil, NewServiceUnavailableError("location service is unavailable").WithCause(cause)
	}

	s.logger.Warn("Geocoder unavailable, using fallback province",
		zap.String("province", provinces[0].Name),
		zap.Error(cause))

	return &DetectProvinceResponse{
		Found:       true,
		Offline:     true,
		Message:     fmt.Sprintf("(OFFLINE MODE) Assuming you are in %s", provinces[0].Name),
		DetectedRaw: "Signal Lost - Fallback",
		Province:    provinces[0],
	}, nil
}

// MatchProvince returns the first province whose name contains the cleaned
// region name, ignoring case
func MatchProvince(provinces []*models.Province, state string) *models.Province {
	clean := strings.ToLower(geocoding.CleanRegionName(state))
	if clean == "" {
		return nil
	}
	for _, p := range provinces {
		if strings.Contains(strings.ToLower(p.Name), clean) {
			return p
		}
	}
	return nil
}

func validateCoordinates(lat, long float64) error {
	if lat < -90 || lat > 90 {
		return InvalidInputError("lat", "must be between -90 and 90")
	}
	if long < -180 || long > 180 {
		return InvalidInputError("long", "must be between -180 and 180")
	}
	return nil
}
