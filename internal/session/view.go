package session

import "tech-dispatch/internal/models"

const (
	StatusOnTheWay = "On the way"

	MessageSubmitted    = "Issue reported successfully!"
	MessageIdle         = "Please submit a technical issue to start tracking."
	MessageNoTechnician = "No technician available. Please try again later."
)

// View is a read-only copy of a session for rendering.
type View struct {
	Condition  Condition          `json:"condition"`
	Message    string             `json:"message"`
	Issue      *models.Issue      `json:"issue,omitempty"`
	Assignment *models.Assignment `json:"assignment,omitempty"`
	Technician string             `json:"technician,omitempty"`
	DistanceKm *float64           `json:"distance_km,omitempty"` // set whenever there is an assignment, even at 0
	Status     string             `json:"status,omitempty"`
}

func (v View) HasAssignment() bool {
	return v.Assignment != nil
}

// view must be called with s.mu held.
func (s *State) view() View {
	v := View{Condition: s.condition}

	switch s.condition {
	case ConditionAssigned:
		v.Message = MessageSubmitted
	case ConditionNoTechnician:
		v.Message = MessageNoTechnician
	default:
		v.Message = MessageIdle
	}

	if s.issue != nil {
		issue := *s.issue
		v.Issue = &issue
	}
	if s.assignment != nil {
		a := *s.assignment
		v.Assignment = &a
		v.Technician = a.Technician.Name
		d := a.DistanceKm
		v.DistanceKm = &d
		v.Status = StatusOnTheWay
	}
	return v
}
