package ratelimit

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// cleanupEvery bounds memory: every Nth Check drops keys whose timestamps
// have all left their window.
const cleanupEvery = 100

// MemoryStore is the in-process sliding-window store. State is per-process,
// so in a multi-instance deployment the effective limit scales with instance
// count; use the Redis store there.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]*memoryEntry
	calls   atomic.Uint64
	now     func() time.Time
}

type memoryEntry struct {
	mu   sync.Mutex
	hits []time.Time
	gone bool
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]*memoryEntry),
		now:     time.Now,
	}
}

func (s *MemoryStore) Check(_ context.Context, key string, window time.Duration, max int) (bool, error) {
	if s.calls.Add(1)%cleanupEvery == 0 {
		s.cleanup(window)
	}

	for {
		s.mu.Lock()
		e, ok := s.entries[key]
		if !ok {
			e = &memoryEntry{}
			s.entries[key] = e
		}
		s.mu.Unlock()

		// The read-modify-write of one key's timestamp list is serialized:
		// unsynchronized concurrent appends would under-count and over-admit.
		e.mu.Lock()
		if e.gone {
			// Cleanup removed this entry between the map lookup and the
			// lock; retry against the live map.
			e.mu.Unlock()
			continue
		}

		now := s.now()
		cutoff := now.Add(-window)

		live := e.hits[:0]
		for _, t := range e.hits {
			if !t.Before(cutoff) {
				live = append(live, t)
			}
		}
		e.hits = live

		if len(e.hits) >= max {
			e.mu.Unlock()
			return false, nil
		}
		e.hits = append(e.hits, now)
		e.mu.Unlock()
		return true, nil
	}
}

// cleanup drops keys with no timestamp newer than window before now. Using
// the caller's window is approximate when routes use different windows, but
// a prematurely dropped key only forgets a few hits; it never blocks anyone.
func (s *MemoryStore) cleanup(window time.Duration) {
	cutoff := s.now().Add(-window)

	s.mu.Lock()
	defer s.mu.Unlock()
	for key, e := range s.entries {
		e.mu.Lock()
		if len(e.hits) == 0 || !e.hits[len(e.hits)-1].After(cutoff) {
			e.gone = true
			delete(s.entries, key)
		}
		e.mu.Unlock()
	}
}
