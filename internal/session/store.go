package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Store keeps session states in memory, keyed by a random UUID. Sessions
// idle for longer than the configured duration are dropped on access.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*State
	idle     time.Duration
	now      func() time.Time
}

func NewStore(idle time.Duration) *Store {
	return &Store{
		sessions: make(map[string]*State),
		idle:     idle,
		now:      time.Now,
	}
}

// Get returns the session for id, creating a new one when id is empty,
// malformed, unknown or expired. The returned state's ID is authoritative.
func (s *Store) Get(id string) *State {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.evictLocked(now)

	if _, err := uuid.Parse(id); err == nil {
		if st, ok := s.sessions[id]; ok {
			st.touch(now)
			return st
		}
	}

	st := newState(uuid.NewString(), now)
	s.sessions[st.id] = st
	return st
}

// Len returns the number of live sessions.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.evictLocked(s.now())
	return len(s.sessions)
}

func (s *Store) evictLocked(now time.Time) {
	if s.idle <= 0 {
		return
	}
	for id, st := range s.sessions {
		if now.Sub(st.lastActive()) > s.idle {
			delete(s.sessions, id)
		}
	}
}
