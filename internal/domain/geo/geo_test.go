package geo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDistanceMeters_IdenticalPoints(t *testing.T) {
	t.Parallel()

	d, err := DistanceMeters(25.033, 121.565, 25.033, 121.565)
	require.NoError(t, err)
	assert.Zero(t, d)
}

func TestDistanceMeters_Symmetric(t *testing.T) {
	t.Parallel()

	d1, err := DistanceMeters(25.033, 121.565, 24.137, 120.686)
	require.NoError(t, err)
	d2, err := DistanceMeters(24.137, 120.686, 25.033, 121.565)
	require.NoError(t, err)
	assert.InDelta(t, d1, d2, 1e-9)
}

func TestDistanceMeters_KnownDistance(t *testing.T) {
	t.Parallel()

	// 0.001 degrees of latitude is roughly 111 meters.
	d, err := DistanceMeters(0, 0, 0.001, 0)
	require.NoError(t, err)
	assert.InDelta(t, 111.2, d, 0.5)
}

func TestDistanceMeters_InvalidCoordinates(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name                   string
		lat1, lon1, lat2, lon2 float64
	}{
		{name: "latitude above range", lat1: 200, lon1: 0, lat2: 0, lon2: 0},
		{name: "latitude below range", lat1: -90.5, lon1: 0, lat2: 0, lon2: 0},
		{name: "longitude above range", lat1: 0, lon1: 181, lat2: 0, lon2: 0},
		{name: "invalid second point", lat1: 0, lon1: 0, lat2: 0, lon2: -200},
		{name: "NaN latitude", lat1: math.NaN(), lon1: 0, lat2: 0, lon2: 0},
		{name: "infinite longitude", lat1: 0, lon1: math.Inf(1), lat2: 0, lon2: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := DistanceMeters(tt.lat1, tt.lon1, tt.lat2, tt.lon2)
			require.ErrorIs(t, err, ErrInvalidCoordinate)
		})
	}
}

func TestValidCoordinate_Boundaries(t *testing.T) {
	t.Parallel()

	assert.True(t, ValidCoordinate(90, 180))
	assert.True(t, ValidCoordinate(-90, -180))
	assert.False(t, ValidCoordinate(90.0001, 0))
	assert.False(t, ValidCoordinate(0, 180.0001))
}
