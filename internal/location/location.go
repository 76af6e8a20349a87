package location

import "tech-dispatch/internal/models"

// Resolved is the coordinate used for an issue and whether it came from the fallback.
type Resolved struct {
	Coordinate  models.Coordinate
	UsedDefault bool
}

// Resolve turns an optional latitude/longitude pair into a coordinate.
// If either half is missing the location is treated as unavailable and fallback is used.
// Values that are present but out of range fail with *models.InvalidCoordinateError.
func Resolve(lat, lon *float64, fallback models.Coordinate) (Resolved, error) {
	if lat == nil || lon == nil {
		return Resolved{Coordinate: fallback, UsedDefault: true}, nil
	}
	c, err := models.NewCoordinate(*lat, *lon)
	if err != nil {
		return Resolved{}, err
	}
	return Resolved{Coordinate: c}, nil
}
