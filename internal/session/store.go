package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Store keeps one independent State per session id. States never share data,
// so the lock here guards only the map.
type Store struct {
	mu      sync.RWMutex
	states  map[string]*State
	factory func() *State
}

func NewStore(factory func() *State) *Store {
	return &Store{
		states:  make(map[string]*State),
		factory: factory,
	}
}

func NewID() string {
	return uuid.New().String()
}

func (s *Store) Get(id string) *State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.states[id]
}

// GetOrCreate returns the state for id, starting a fresh Idle one when id is unknown.
func (s *Store) GetOrCreate(id string) *State {
	if st := s.Get(id); st != nil {
		return st
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if st, ok := s.states[id]; ok {
		return st
	}
	st := s.factory()
	s.states[id] = st
	return st
}

func (s *Store) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.states, id)
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.states)
}

// Prune drops sessions untouched for longer than maxIdle and reports how many went.
func (s *Store) Prune(maxIdle time.Duration) int {
	cutoff := time.Now().Add(-maxIdle)
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for id, st := range s.states {
		if st.lastTouched().Before(cutoff) {
			delete(s.states, id)
			n++
		}
	}
	return n
}
