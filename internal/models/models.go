package models

import (
	"time"

	"github.com/google/uuid"
)

// Coordinate is a WGS84 point. Build it with NewCoordinate so the range is checked once.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

type Status string

const (
	StatusAvailable Status = "Available"
	StatusBusy      Status = "Busy"
)

// ParseStatus accepts the status names case-insensitively.
func ParseStatus(s string) (Status, error) {
	switch normalize(s) {
	case "available":
		return StatusAvailable, nil
	case "busy":
		return StatusBusy, nil
	}
	return "", &InvalidStatusError{Value: s}
}

func (s Status) Valid() bool {
	return s == StatusAvailable || s == StatusBusy
}

type Technician struct {
	Name     string     `json:"name"`
	Location Coordinate `json:"location"`
	Status   Status     `json:"status"`
}

func (t Technician) IsAvailable() bool {
	return t.Status == StatusAvailable
}

// Issue is a reported station problem. It is never modified after NewIssue;
// a new submission replaces it.
type Issue struct {
	ID                 string     `json:"id"`
	StationName        string     `json:"station_name"`
	ProblemDescription string     `json:"problem_description"`
	Location           Coordinate `json:"location"`
	ReportedAt         time.Time  `json:"reported_at"`
}

func NewIssue(stationName, problem string, loc Coordinate) Issue {
	return Issue{
		ID:                 uuid.New().String(),
		StationName:        stationName,
		ProblemDescription: problem,
		Location:           loc,
		ReportedAt:         time.Now(),
	}
}

// Assignment pairs an issue with the technician chosen for it.
// Technician is a copy taken at selection time.
type Assignment struct {
	Issue      Issue      `json:"issue"`
	Technician Technician `json:"technician"`
	DistanceKm float64    `json:"distance_km"`
}
