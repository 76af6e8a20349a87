package mapview

import (
	"tech-dispatch/internal/models"
	"tech-dispatch/internal/session"
)

const DefaultZoom = 13

// FeatureCollection is the GeoJSON document a map widget draws.
type FeatureCollection struct {
	Type     string    `json:"type"`
	Center   []float64 `json:"center"` // [lat, lon], as map widgets take it
	Zoom     int       `json:"zoom"`
	Features []Feature `json:"features"`
}

type Feature struct {
	Type       string            `json:"type"`
	Geometry   Geometry          `json:"geometry"`
	Properties map[string]string `json:"properties"`
}

type Geometry struct {
	Type        string `json:"type"`
	Coordinates any    `json:"coordinates"`
}

// Build draws the station, the assigned technician and a straight route between them.
// An idle session gives an empty collection centered on fallback.
func Build(v session.View, fallback models.Coordinate) FeatureCollection {
	fc := FeatureCollection{
		Type:     "FeatureCollection",
		Center:   []float64{fallback.Lat, fallback.Lon},
		Zoom:     DefaultZoom,
		Features: []Feature{},
	}
	if v.Issue == nil {
		return fc
	}

	station := v.Issue.Location
	fc.Center = []float64{station.Lat, station.Lon}

	popup := "Petrol Station"
	if v.Issue.StationName != "" {
		popup = v.Issue.StationName
	}
	fc.Features = append(fc.Features, marker(station, map[string]string{
		"kind":  "station",
		"popup": popup,
		"color": "red",
		"icon":  "info-sign",
	}))

	if v.Assignment == nil {
		return fc
	}

	tech := v.Assignment.Technician
	fc.Features = append(fc.Features,
		marker(tech.Location, map[string]string{
			"kind":  "technician",
			"popup": "Technician: " + tech.Name,
			"color": "green",
			"icon":  "wrench",
		}),
		Feature{
			Type: "Feature",
			Geometry: Geometry{
				Type:        "LineString",
				Coordinates: [][]float64{point(tech.Location), point(station)},
			},
			Properties: map[string]string{
				"kind":    "route",
				"color":   "blue",
				"tooltip": "Technician Route",
			},
		},
	)
	return fc
}

func marker(c models.Coordinate, props map[string]string) Feature {
	return Feature{
		Type:       "Feature",
		Geometry:   Geometry{Type: "Point", Coordinates: point(c)},
		Properties: props,
	}
}

// point is in GeoJSON order, [lon, lat].
func point(c models.Coordinate) []float64 {
	return []float64{c.Lon, c.Lat}
}
