package validation

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type checkIn struct {
	HotspotID string   `json:"hotspotId" validate:"required"`
	UserLat   *float64 `json:"userLat" validate:"required,latitude"`
	UserLong  *float64 `json:"userLong" validate:"required,longitude"`
}

func ptr(f float64) *float64 { return &f }

func TestValidateStruct(t *testing.T) {
	assert.NoError(t, ValidateStruct(&checkIn{HotspotID: "h1", UserLat: ptr(0), UserLong: ptr(0)}))

	err := ValidateStruct(&checkIn{UserLat: ptr(91), UserLong: nil})
	require.Error(t, err)

	var ve Errors
	require.True(t, errors.As(err, &ve))
	assert.ElementsMatch(t, []string{"hotspotId", "userLat", "userLong"}, ve.Fields())
	assert.Contains(t, err.Error(), "userLat must be a latitude")
}

func TestValidateStruct_NonStruct(t *testing.T) {
	assert.NoError(t, ValidateStruct(nil))
	assert.Error(t, ValidateStruct("nope"))
}
