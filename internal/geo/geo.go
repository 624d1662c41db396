// Package geo holds coordinates and great-circle distance helpers.
package geo

import (
	"fmt"
	"math"
)

const (
	// EarthRadiusMiles is the mean Earth radius used for every great-circle distance.
	EarthRadiusMiles = 3959.0

	// MovementThresholdMiles is how far the user may move before cached distances are recomputed.
	MovementThresholdMiles = 0.25

	// StaticProximityMiles is how close the user must be to the static table origin to use it.
	StaticProximityMiles = 0.1
)

// Coordinate is a WGS 84 point.
type Coordinate struct {
	Lat float64 `json:"lat" yaml:"lat"`
	Lng float64 `json:"lng" yaml:"lng"`
}

// String formats the coordinate to six decimals.
func (c Coordinate) String() string {
	return fmt.Sprintf("%.6f,%.6f", c.Lat, c.Lng)
}

// Valid reports whether the coordinate is within latitude/longitude bounds.
func (c Coordinate) Valid() bool {
	return c.Lat >= -90 && c.Lat <= 90 && c.Lng >= -180 && c.Lng <= 180 &&
		!math.IsNaN(c.Lat) && !math.IsNaN(c.Lng)
}

// Miles returns the haversine distance between two coordinates in miles.
func Miles(a, b Coordinate) float64 {
	φ1 := a.Lat * math.Pi / 180.0
	φ2 := b.Lat * math.Pi / 180.0
	dφ := (b.Lat - a.Lat) * math.Pi / 180.0
	dλ := (b.Lng - a.Lng) * math.Pi / 180.0
	h := math.Sin(dφ/2)*math.Sin(dφ/2) + math.Cos(φ1)*math.Cos(φ2)*math.Sin(dλ/2)*math.Sin(dλ/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return EarthRadiusMiles * c
}

// Within reports whether b lies within limit miles of a (inclusive).
func Within(a, b Coordinate, limit float64) bool {
	return Miles(a, b) <= limit
}

// Quantize rounds a coordinate to 4 decimal places (~11m), for use in cache keys.
func Quantize(c Coordinate) Coordinate {
	return Coordinate{
		Lat: math.Round(c.Lat*10000) / 10000,
		Lng: math.Round(c.Lng*10000) / 10000,
	}
}
