package session

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"carscout/internal/models"
)

// State is what one browser tab knows between actions: the page count
// detected for a query and the last file it produced. A page count is only
// usable for the exact query it was detected for.
type State struct {
	mu        sync.Mutex
	id        string
	query     models.Query
	pageCount int
	lastFile  string
	updatedAt time.Time
}

// Snapshot is a read-only copy of a State.
type Snapshot struct {
	ID        string        `json:"id"`
	Query     *models.Query `json:"query,omitempty"`
	PageCount int           `json:"pageCount"`
	LastFile  string        `json:"lastFile,omitempty"`
	UpdatedAt time.Time     `json:"updatedAt"`
}

func newState(id string, now time.Time) *State {
	return &State{id: id, updatedAt: now}
}

// NewState returns a detached state, for callers without a Store such as
// the CLI.
func NewState() *State {
	return newState(uuid.NewString(), time.Now())
}

func (s *State) ID() string {
	return s.id
}

// PageCount returns the detected page count for q, or 0 when none is known
// for that query.
func (s *State) PageCount(q models.Query) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pageCount == 0 || !s.query.Equal(q) {
		return 0
	}
	return s.pageCount
}

func (s *State) SetPageCount(q models.Query, n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.query = q
	s.pageCount = n
	s.updatedAt = time.Now()
}

// ResetPageCount forgets the detected count.
func (s *State) ResetPageCount() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pageCount = 0
	s.updatedAt = time.Now()
}

func (s *State) SetLastFile(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastFile = name
	s.updatedAt = time.Now()
}

func (s *State) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		ID:        s.id,
		PageCount: s.pageCount,
		LastFile:  s.lastFile,
		UpdatedAt: s.updatedAt,
	}
	if s.pageCount > 0 {
		q := s.query
		snap.Query = &q
	}
	return snap
}

func (s *State) lastActive() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updatedAt
}

func (s *State) touch(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.updatedAt = now
}
