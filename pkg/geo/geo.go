// Package geo provides great-circle distance math and bounding-box
// helpers shared by the facility pipeline and the road network.
package geo

import "math"

const earthRadiusMeters = 6_371_000.0

// Haversine returns the great-circle distance in meters between two points.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	lat1r := lat1 * math.Pi / 180
	lat2r := lat2 * math.Pi / 180
	dLat := (lat2 - lat1) * math.Pi / 180
	dLon := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1r)*math.Cos(lat2r)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusMeters * c
}

// IsFiniteLatLon reports whether lat/lon are finite and inside the
// WGS84 coordinate ranges.
func IsFiniteLatLon(lat, lon float64) bool {
	if math.IsNaN(lat) || math.IsNaN(lon) || math.IsInf(lat, 0) || math.IsInf(lon, 0) {
		return false
	}
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}

// BBox defines a geographic bounding region (west/south/east/north in degrees).
type BBox struct {
	West  float64
	South float64
	East  float64
	North float64
}

// IsZero returns true if the bbox is unset.
func (b BBox) IsZero() bool {
	return b.West == 0 && b.South == 0 && b.East == 0 && b.North == 0
}

// Valid reports whether the bbox has finite, ordered, in-range corners.
func (b BBox) Valid() bool {
	return IsFiniteLatLon(b.South, b.West) &&
		IsFiniteLatLon(b.North, b.East) &&
		b.South < b.North && b.West < b.East
}

// Contains returns true if the point is inside the bounding box.
func (b BBox) Contains(lat, lon float64) bool {
	return lat >= b.South && lat <= b.North && lon >= b.West && lon <= b.East
}

// Center returns the midpoint of the box.
func (b BBox) Center() (lat, lon float64) {
	return (b.South + b.North) / 2, (b.West + b.East) / 2
}
