package auth

import "sync"

// Listener observes current-session changes. A nil session means signed out.
type Listener func(*Session)

// SessionState is the process-wide current-session holder. It is mutated only
// by the authenticator's SignIn/SignOut; everything else reads through
// Current or registers a listener.
type SessionState struct {
	mu        sync.RWMutex
	current   *Session
	listeners map[int]Listener
	nextID    int
}

// NewSessionState builds an empty (signed out) state.
func NewSessionState() *SessionState {
	return &SessionState{listeners: make(map[int]Listener)}
}

// Current returns the current session, or nil when signed out.
func (s *SessionState) Current() *Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// OnChange registers a listener and returns an unsubscribe function for
// teardown. The listener is invoked immediately with the current value.
func (s *SessionState) OnChange(listener Listener) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = listener
	current := s.current
	s.mu.Unlock()

	listener(current)

	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

func (s *SessionState) set(session *Session) {
	s.mu.Lock()
	s.current = session
	listeners := make([]Listener, 0, len(s.listeners))
	for _, l := range s.listeners {
		listeners = append(listeners, l)
	}
	s.mu.Unlock()

	for _, l := range listeners {
		l(session)
	}
}
