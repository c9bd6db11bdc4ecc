package weather

import "sync"

// LocationState is the process-wide record of the currently observed
// location. It is shared by every connected session: a change made through
// one session is visible to all others on their next snapshot pull. This is
// intentional — the system displays one "current" place — and is passed as an
// explicit handle rather than ambient package state so the shared-mutation
// hazard stays visible in constructor signatures.
type LocationState struct {
	mu  sync.RWMutex
	loc Location
}

// NewLocationState creates a LocationState with an initial location.
func NewLocationState(initial Location) *LocationState {
	return &LocationState{loc: initial}
}

// Get returns the current location.
func (s *LocationState) Get() Location {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loc
}

// Set replaces the current location.
func (s *LocationState) Set(loc Location) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loc = loc
}
