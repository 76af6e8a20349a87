package session

import (
	"errors"
	"sync"
	"time"

	"tech-dispatch/internal/dispatch"
	"tech-dispatch/internal/models"
)

// Condition tells the presentation layer which of the three situations it is rendering.
type Condition string

const (
	ConditionIdle         Condition = "idle"
	ConditionNoTechnician Condition = "no_technician"
	ConditionAssigned     Condition = "assigned"
)

// Assigner is satisfied by *dispatch.Selector.
type Assigner interface {
	Select(issue models.Issue, src dispatch.TechnicianSource) (models.Assignment, error)
}

// State is one session's issue and assignment. Submit and Reset are the only
// transitions; each runs to completion before the next is let in.
//
// Invariant: assignment != nil implies assignment.Issue == *issue.
type State struct {
	mu         sync.Mutex
	assigner   Assigner
	source     dispatch.TechnicianSource
	issue      *models.Issue
	assignment *models.Assignment
	condition  Condition
	touchedAt  time.Time
}

func NewState(assigner Assigner, source dispatch.TechnicianSource) *State {
	return &State{
		assigner:  assigner,
		source:    source,
		condition: ConditionIdle,
		touchedAt: time.Now(),
	}
}

// Submit replaces whatever the session held with issue and assigns it.
// Running out of technicians is reported through the view's Condition, not as an error.
func (s *State) Submit(issue models.Issue) (View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touchedAt = time.Now()

	a, err := s.assigner.Select(issue, s.source)
	switch {
	case err == nil:
		s.issue = &issue
		s.assignment = &a
		s.condition = ConditionAssigned
	case errors.Is(err, models.ErrNoAvailableTechnician):
		s.issue = &issue
		s.assignment = nil
		s.condition = ConditionNoTechnician
	default:
		return s.view(), err
	}
	return s.view(), nil
}

// Reset returns the session to Idle. Calling it again changes nothing.
func (s *State) Reset() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touchedAt = time.Now()
	s.issue = nil
	s.assignment = nil
	s.condition = ConditionIdle
	return s.view()
}

func (s *State) Snapshot() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touchedAt = time.Now()
	return s.view()
}

func (s *State) lastTouched() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.touchedAt
}
