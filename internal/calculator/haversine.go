package calculator

import (
	"math"

	"tech-dispatch/internal/models"
)

const earthRadius = 6371000.0 // meters

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180.0
}

// Haversine computes the distance between two points in meters
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	return earthRadius * centralAngle(lat1, lon1, lat2, lon2)
}

// Distance is the great-circle distance between a and b in kilometers.
func Distance(a, b models.Coordinate) float64 {
	return Haversine(a.Lat, a.Lon, b.Lat, b.Lon) / 1000.0
}

func centralAngle(lat1, lon1, lat2, lon2 float64) float64 {
	lat1Rad := toRadians(lat1)
	lat2Rad := toRadians(lat2)

	dLat := lat2Rad - lat1Rad
	dLon := toRadians(lon2) - toRadians(lon1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*
			math.Sin(dLon/2)*math.Sin(dLon/2)

	// rounding can push a just outside [0,1] for antipodal points
	a = math.Min(1, math.Max(0, a))

	return 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}
