package app

import (
	"sync"
	"time"
)

// StickyEntry is a per-user record that only changes when explicitly
// written. LastRefreshAt is zero until the user's first successful refresh.
type StickyEntry[V any] struct {
	Value         V
	UpdatedAt     time.Time
	LastRefreshAt time.Time
}

// StickyStore holds per-user values that stay stable between explicit
// refreshes. Reads never touch the network and do not count toward eviction
// order; only writes do, since the bound exists to cap memory for active
// writers. When inserting a new user would exceed capacity, the entry with
// the oldest write is evicted first.
type StickyStore[V any] struct {
	mu         sync.Mutex
	entries    map[string]StickyEntry[V]
	capacity   int
	minRefresh time.Duration
	now        func() time.Time
}

func NewStickyStore[V any](capacity int, minRefresh time.Duration) *StickyStore[V] {
	return &StickyStore[V]{
		entries:    make(map[string]StickyEntry[V]),
		capacity:   capacity,
		minRefresh: minRefresh,
		now:        time.Now,
	}
}

// Read returns the stored entry for the user, if any. Pure lookup.
func (s *StickyStore[V]) Read(userID string) (StickyEntry[V], bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[userID]
	return e, ok
}

// Write unconditionally replaces the user's value and stamps both
// timestamps. Used on successful refresh, so it also consumes the user's
// refresh budget.
func (s *StickyStore[V]) Write(userID string, value V) StickyEntry[V] {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.entries[userID]; !exists && len(s.entries) >= s.capacity {
		s.evictOldestLocked()
	}
	now := s.now()
	e := StickyEntry[V]{Value: value, UpdatedAt: now, LastRefreshAt: now}
	s.entries[userID] = e
	return e
}

// Seed stores a starter value for a user that has none, without consuming
// the refresh budget: a seeded user may refresh immediately. Returns the
// existing entry unchanged when one is already present.
func (s *StickyStore[V]) Seed(userID string, value V) StickyEntry[V] {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.entries[userID]; ok {
		return e
	}
	if len(s.entries) >= s.capacity {
		s.evictOldestLocked()
	}
	e := StickyEntry[V]{Value: value, UpdatedAt: s.now()}
	s.entries[userID] = e
	return e
}

// TryRefresh reports whether a manual refresh is currently allowed for the
// user. When throttled it returns the remaining wait.
func (s *StickyStore[V]) TryRefresh(userID string) (time.Duration, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[userID]
	if !ok || e.LastRefreshAt.IsZero() {
		return 0, true
	}
	elapsed := s.now().Sub(e.LastRefreshAt)
	if elapsed < s.minRefresh {
		return s.minRefresh - elapsed, false
	}
	return 0, true
}

// evictOldestLocked drops the entry with the oldest UpdatedAt. Callers must
// hold s.mu.
func (s *StickyStore[V]) evictOldestLocked() {
	var victim string
	var oldest time.Time
	first := true
	for userID, e := range s.entries {
		if first || e.UpdatedAt.Before(oldest) {
			victim = userID
			oldest = e.UpdatedAt
			first = false
		}
	}
	if !first {
		delete(s.entries, victim)
	}
}

// Len reports the number of stored entries.
func (s *StickyStore[V]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
