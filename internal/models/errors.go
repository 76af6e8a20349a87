package models

import (
	"errors"
	"fmt"
)

var (
	// ErrNoAvailableTechnician means every technician in the registry is Busy.
	// It is an expected outcome, not a failure of the session.
	ErrNoAvailableTechnician = errors.New("no technician available")

	ErrUnknownTechnician   = errors.New("unknown technician")
	ErrDuplicateTechnician = errors.New("duplicate technician")
)

type InvalidCoordinateError struct {
	Field string
	Value float64
}

func (e *InvalidCoordinateError) Error() string {
	return fmt.Sprintf("invalid coordinate: %s %v out of range", e.Field, e.Value)
}

type InvalidStatusError struct {
	Value string
}

func (e *InvalidStatusError) Error() string {
	return fmt.Sprintf("invalid technician status %q", e.Value)
}
