// Package geo provides great-circle distance computation for proximity
// evaluation. It depends on nothing but the standard math library.
package geo

import (
	"math"

	"github.com/pkg/errors"
)

// earthRadiusMeters is the spherical-Earth approximation radius.
const earthRadiusMeters = 6371000.0

// ErrInvalidCoordinate is returned when a latitude or longitude is outside
// the valid WGS-84 range, or is NaN or infinite. Callers must not compute
// distances over such values; earlier revisions merely logged and carried
// on, which is exactly the bug this guard closes.
var ErrInvalidCoordinate = errors.New("coordinate outside valid range")

// ValidCoordinate reports whether the pair is a usable WGS-84 coordinate.
func ValidCoordinate(lat, lon float64) bool {
	if math.IsNaN(lat) || math.IsNaN(lon) || math.IsInf(lat, 0) || math.IsInf(lon, 0) {
		return false
	}

	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}

// DistanceMeters returns the haversine great-circle distance between two
// points in meters. The result is non-negative, zero for identical points
// and symmetric in its two point arguments.
func DistanceMeters(lat1, lon1, lat2, lon2 float64) (float64, error) {
	if !ValidCoordinate(lat1, lon1) {
		return 0, errors.Wrapf(ErrInvalidCoordinate, "(%f, %f)", lat1, lon1)
	}
	if !ValidCoordinate(lat2, lon2) {
		return 0, errors.Wrapf(ErrInvalidCoordinate, "(%f, %f)", lat2, lon2)
	}

	lat1Rad := lat1 * math.Pi / 180
	lat2Rad := lat2 * math.Pi / 180
	deltaLat := (lat2 - lat1) * math.Pi / 180
	deltaLon := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(deltaLat/2)*math.Sin(deltaLat/2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*
			math.Sin(deltaLon/2)*math.Sin(deltaLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusMeters * c, nil
}
