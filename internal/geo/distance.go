// internal/geo/distance.go
package geo

import "math"

// EarthRadiusMeters is the mean Earth radius used by the Haversine formula
const EarthRadiusMeters = 6371000.0

// Point is a coordinate pair in decimal degrees
type Point struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Distance returns the great-circle surface distance between two points in meters
func Distance(a, b Point) float64 {
	return Haversine(a.Latitude, a.Longitude, b.Latitude, b.Longitude)
}

// Haversine returns the distance in meters between (lat1, lon1) and (lat2, lon2).
// Inputs are decimal degrees. Non-numeric input yields NaN.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	phi1 := toRadians(lat1)
	phi2 := toRadians(lat2)
	dPhi := toRadians(lat2 - lat1)
	dLambda := toRadians(lon2 - lon1)

	sinPhi := math.Sin(dPhi / 2)
	sinLambda := math.Sin(dLambda / 2)

	h := sinPhi*sinPhi + math.Cos(phi1)*math.Cos(phi2)*sinLambda*sinLambda
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return EarthRadiusMeters * c
}

// WithinRadius reports whether b lies within radiusMeters of a, along with the computed distance
func WithinRadius(a, b Point, radiusMeters float64) (bool, float64) {
	d := Distance(a, b)
	return d <= radiusMeters, d
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}
