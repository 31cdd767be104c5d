package location

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"rekaloka/internal/models"
	"rekaloka/internal/response"
	"rekaloka/internal/services"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type stubLocation struct {
	lat, long float64
	calls     int
}

func (s *stubLocation) DetectProvince(ctx context.Context, lat, long float64) (*services.DetectProvinceResponse, error) {
	s.calls++
	s.lat, s.long = lat, long
	return &services.DetectProvinceResponse{
		Found:       true,
		Message:     "Province detected",
		DetectedRaw: "Jawa Tengah",
		Province:    &models.Province{ID: "p1", Name: "Jawa Tengah"},
	}, nil
}

func newController(svc services.LocationService) *LocationController {
	sc := &services.ServiceCollection{LocationService: svc}
	return NewLocationController(sc, zap.NewNop(), response.NewBuilder(response.DefaultConfig(), zap.NewNop()))
}

func TestDetect(t *testing.T) {
	stub := &stubLocation{}
	rec := httptest.NewRecorder()
	newController(stub).Detect(rec, httptest.NewRequest(http.MethodGet, "/api/v1/location/detect?lat=-7.6079&long=110.2038", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.InDelta(t, -7.6079, stub.lat, 1e-9)
	assert.InDelta(t, 110.2038, stub.long, 1e-9)
	assert.Contains(t, rec.Body.String(), `"found":true`)
}

func TestDetectRejectsBadCoordinates(t *testing.T) {
	stub := &stubLocation{}
	c := newController(stub)

	for _, target := range []string{
		"/api/v1/location/detect",
		"/api/v1/location/detect?lat=-7.6",
		"/api/v1/location/detect?lat=abc&long=110",
	} {
		rec := httptest.NewRecorder()
		c.Detect(rec, httptest.NewRequest(http.MethodGet, target, nil))
		assert.Equal(t, http.StatusBadRequest, rec.Code, target)
	}
	assert.Zero(t, stub.calls)
}
