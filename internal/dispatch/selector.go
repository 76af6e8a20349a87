package dispatch

import (
	"tech-dispatch/internal/calculator"
	"tech-dispatch/internal/models"
)

// TechnicianSource is the read side of the registry the selector needs.
type TechnicianSource interface {
	Available() []models.Technician
}

// Selector picks the nearest available technician for an issue.
// It only reads from the source.
//
// Results depend only on the issue location and the registry contents, so a
// cache keyed on the location rounded to a fixed precision could sit in front
// of Select if registries grow large.
type Selector struct {
	logger calculator.LoggerCallback
}

func NewSelector(logger calculator.LoggerCallback) *Selector {
	return &Selector{logger: logger}
}

// Select returns models.ErrNoAvailableTechnician when nobody is Available.
// Equidistant technicians resolve to the one registered first.
func (s *Selector) Select(issue models.Issue, src TechnicianSource) (models.Assignment, error) {
	available := src.Available()
	if len(available) == 0 {
		s.log("No available technician for issue " + issue.ID)
		return models.Assignment{}, models.ErrNoAvailableTechnician
	}

	best, _ := calculator.ComputeNearest(issue.Location, available, s.logger)

	return models.Assignment{
		Issue:      issue,
		Technician: best.Technician,
		DistanceKm: best.DistanceKm,
	}, nil
}

// Nearby lists available technicians within radiusKm of loc, closest first.
func (s *Selector) Nearby(loc models.Coordinate, src TechnicianSource, radiusKm float64) []calculator.Candidate {
	return calculator.ComputeRadius(loc, src.Available(), radiusKm, s.logger)
}

func (s *Selector) log(msg string) {
	if s.logger != nil {
		s.logger(msg)
	}
}
