// Package inflight drops duplicate mutations for a task while an earlier one
// is still being written.
package inflight

import (
	"sync"
	"time"

	"github.com/julianstephens/nextup/internal/constants"
)

// DefaultTTL is how long a marker is honoured without a matching Done.
const DefaultTTL = constants.InFlightTTL

// Set holds task ids with an outstanding write.
type Set struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	started map[string]time.Time
}

func New(ttl time.Duration) *Set {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Set{ttl: ttl, now: time.Now, started: make(map[string]time.Time)}
}

// WithClock replaces the set's time source.
func (s *Set) WithClock(now func() time.Time) *Set {
	s.now = now
	return s
}

// Begin marks id as in flight. It returns false when id is already in flight
// and its marker has not expired; the caller should drop the request.
func (s *Set) Begin(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if at, ok := s.started[id]; ok && now.Sub(at) < s.ttl {
		return false
	}
	s.started[id] = now
	return true
}

// Done clears the marker for id.
func (s *Set) Done(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.started, id)
}

// Active reports whether id is in flight.
func (s *Set) Active(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	at, ok := s.started[id]
	return ok && s.now().Sub(at) < s.ttl
}
