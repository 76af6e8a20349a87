package registry

import (
	"fmt"
	"strings"
	"sync"

	"tech-dispatch/internal/models"
)

// Registry is the fixed set of known technicians keyed by name.
// Membership never changes after New; only Status can be updated.
// Reads return copies, so callers cannot change registry state through them.
type Registry struct {
	mu     sync.RWMutex
	order  []string
	byName map[string]*models.Technician
}

func New(techs ...models.Technician) (*Registry, error) {
	r := &Registry{
		order:  make([]string, 0, len(techs)),
		byName: make(map[string]*models.Technician, len(techs)),
	}
	for _, t := range techs {
		name := strings.TrimSpace(t.Name)
		if name == "" {
			return nil, fmt.Errorf("technician at position %d: empty name", len(r.order))
		}
		if _, ok := r.byName[name]; ok {
			return nil, fmt.Errorf("%w: %s", models.ErrDuplicateTechnician, name)
		}
		if !t.Status.Valid() {
			return nil, fmt.Errorf("technician %s: %w", name, &models.InvalidStatusError{Value: string(t.Status)})
		}
		t.Name = name
		tc := t
		r.byName[name] = &tc
		r.order = append(r.order, name)
	}
	return r, nil
}

// All returns every technician in insertion order.
func (r *Registry) All() []models.Technician {
	return r.filter(func(models.Technician) bool { return true })
}

// Available returns the technicians with status Available in insertion order.
// The result is empty, not nil-with-error, when nobody qualifies.
func (r *Registry) Available() []models.Technician {
	return r.filter(models.Technician.IsAvailable)
}

func (r *Registry) Get(name string) (models.Technician, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.byName[name]
	if !ok {
		return models.Technician{}, false
	}
	return *t, true
}

// SetStatus is the administrative status change. It does not touch
// assignments that were already made.
func (r *Registry) SetStatus(name string, status models.Status) error {
	if !status.Valid() {
		return &models.InvalidStatusError{Value: string(status)}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.byName[name]
	if !ok {
		return fmt.Errorf("%w: %s", models.ErrUnknownTechnician, name)
	}
	t.Status = status
	return nil
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}

func (r *Registry) filter(keep func(models.Technician) bool) []models.Technician {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]models.Technician, 0, len(r.order))
	for _, name := range r.order {
		if t := r.byName[name]; keep(*t) {
			out = append(out, *t)
		}
	}
	return out
}
