package stream

import (
	"sync"

	"github.com/rs/zerolog"
)

// Hub tracks connected sessions. Removal closes the session before it is
// forgotten, so no event can be delivered to a removed session.
type Hub struct {
	logger zerolog.Logger

	mu       sync.Mutex
	sessions map[string]*Session
	closed   bool
}

// NewHub creates a new session hub.
func NewHub(logger zerolog.Logger) *Hub {
	return &Hub{
		logger:   logger,
		sessions: make(map[string]*Session),
	}
}

// Add registers a session and returns false when the hub is already
// closed (the session is closed instead of registered).
func (h *Hub) Add(s *Session) bool {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		s.Close()
		return false
	}
	h.sessions[s.ID()] = s
	n := len(h.sessions)
	h.mu.Unlock()

	h.logger.Info().Str("session_id", s.ID()).Int("sessions", n).Msg("session connected")
	return true
}

// Remove closes a session and removes it from the hub.
func (h *Hub) Remove(id string) {
	h.mu.Lock()
	s, ok := h.sessions[id]
	if ok {
		delete(h.sessions, id)
	}
	n := len(h.sessions)
	h.mu.Unlock()

	if !ok {
		return
	}
	s.Close()
	h.logger.Info().Str("session_id", id).Int("sessions", n).Msg("session disconnected")
}

// Len returns the number of connected sessions.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.sessions)
}

// Close shuts down all sessions and waits for their run loops to exit.
// Further Adds are rejected. Every added session must have Run called,
// otherwise Close blocks.
func (h *Hub) Close() {
	h.mu.Lock()
	h.closed = true
	sessions := make([]*Session, 0, len(h.sessions))
	for _, s := range h.sessions {
		sessions = append(sessions, s)
	}
	h.sessions = make(map[string]*Session)
	h.mu.Unlock()

	for _, s := range sessions {
		s.Close()
		<-s.Done()
	}
}
