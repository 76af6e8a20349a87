package models

import (
	"math"
	"strings"
)

const (
	MinLatitude  = -90.0
	MaxLatitude  = 90.0
	MinLongitude = -180.0
	MaxLongitude = 180.0
)

// NewCoordinate returns an *InvalidCoordinateError when either value is out of range or not finite.
func NewCoordinate(lat, lon float64) (Coordinate, error) {
	if !inRange(lat, MinLatitude, MaxLatitude) {
		return Coordinate{}, &InvalidCoordinateError{Field: "latitude", Value: lat}
	}
	if !inRange(lon, MinLongitude, MaxLongitude) {
		return Coordinate{}, &InvalidCoordinateError{Field: "longitude", Value: lon}
	}
	return Coordinate{Lat: lat, Lon: lon}, nil
}

// MustCoordinate is for literals in seeds and tests.
func MustCoordinate(lat, lon float64) Coordinate {
	c, err := NewCoordinate(lat, lon)
	if err != nil {
		panic(err)
	}
	return c
}

func inRange(v, min, max float64) bool {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return false
	}
	return v >= min && v <= max
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
