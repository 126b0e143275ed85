package store

import (
	"context"
	"sync"
	"time"
)

// MemoryRevocationStore is the single-node fallback used when no redis is
// configured, and the fake the tests inject. Entries expire like their
// redis counterparts; expired entries are pruned lazily on read.
type MemoryRevocationStore struct {
	mu      sync.Mutex
	entries map[string]time.Time // tokenID -> expiry
	now     func() time.Time
}

func NewMemoryRevocationStore() *MemoryRevocationStore {
	return &MemoryRevocationStore{
		entries: make(map[string]time.Time),
		now:     time.Now,
	}
}

func (s *MemoryRevocationStore) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	exp, ok := s.entries[tokenID]
	if !ok {
		return false, nil
	}
	if s.now().After(exp) {
		delete(s.entries, tokenID)
		return false, nil
	}
	return true, nil
}

func (s *MemoryRevocationStore) Revoke(_ context.Context, tokenID string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[tokenID] = s.now().Add(ttl)
	return nil
}

type window struct {
	count int64
	start time.Time
}

// MemoryRateLimitStore mirrors the redis INCR+EXPIRE semantics behind a
// mutex: the window starts at the first increment and the count resets to 1
// once it elapses.
type MemoryRateLimitStore struct {
	mu      sync.Mutex
	windows map[string]*window
	now     func() time.Time
}

func NewMemoryRateLimitStore() *MemoryRateLimitStore {
	return &MemoryRateLimitStore{
		windows: make(map[string]*window),
		now:     time.Now,
	}
}

func (s *MemoryRateLimitStore) Increment(_ context.Context, key string, windowDur time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	nowT := s.now()
	w, ok := s.windows[key]
	if !ok || nowT.Sub(w.start) >= windowDur {
		w = &window{start: nowT}
		s.windows[key] = w
	}
	w.count++
	return w.count, nil
}
