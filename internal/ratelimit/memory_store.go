package ratelimit

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is the process-local fallback window store used when
// Redis is unavailable. Under horizontal scale-out it degrades to a
// soft per-instance throttle rather than a shared cap, which is
// acceptable for an abuse deterrent.
type MemoryStore struct {
	mu        sync.Mutex
	entries   map[string][]time.Time
	now       func() time.Time
	lastSweep time.Time
}

// sweepInterval bounds how long a one-off identity can linger in the
// map after its window expired.
const sweepInterval = time.Minute

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string][]time.Time),
		now:     time.Now,
	}
}

// Take discards timestamps older than the window, compares the rest to
// the cap and records the new request when under it. When denied it
// reports how long until the oldest timestamp leaves the window.
func (s *MemoryStore) Take(_ context.Context, key string, max int, window time.Duration) (bool, int, time.Duration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	cutoff := now.Add(-window)
	s.sweep(now, cutoff)
	kept := s.entries[key][:0]
	for _, t := range s.entries[key] {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}

	if len(kept) >= max {
		s.entries[key] = kept
		retry := kept[0].Add(window).Sub(now)
		if retry < 0 {
			retry = 0
		}
		return false, 0, retry, nil
	}

	s.entries[key] = append(kept, now)
	return true, max - len(kept) - 1, 0, nil
}

// sweep drops identities whose last request left the window, so keys
// that are never seen again do not accumulate. Runs at most once per
// sweepInterval; the caller holds the lock. The limiters sharing a
// store use the same window length, so one cutoff serves every key.
func (s *MemoryStore) sweep(now, cutoff time.Time) {
	if now.Sub(s.lastSweep) < sweepInterval {
		return
	}
	s.lastSweep = now
	for key, stamps := range s.entries {
		live := false
		for _, t := range stamps {
			if t.After(cutoff) {
				live = true
				break
			}
		}
		if !live {
			delete(s.entries, key)
		}
	}
}
