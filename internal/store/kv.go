package store

import (
	"context"
	"sync"
	"time"
)

// KV is a small key-value cache with per-entry TTL, injected into request
// handling code instead of ambient package-level maps.
type KV interface {
	Get(key string) (any, bool)
	Set(key string, value any, ttl time.Duration)
	Delete(key string)
}

type entry struct {
	value     any
	expiresAt time.Time
}

// InMem is a mutex-guarded in-memory KV implementation. Expired entries are
// dropped lazily on read and eagerly by the eviction sweeper.
type InMem struct {
	mu      sync.RWMutex
	entries map[string]entry
	now     func() time.Time
}

func NewInMem() *InMem {
	return &InMem{
		entries: make(map[string]entry),
		now:     time.Now,
	}
}

func (s *InMem) Get(key string) (any, bool) {
	s.mu.RLock()
	e, ok := s.entries[key]
	s.mu.RUnlock()

	if !ok {
		return nil, false
	}

	if !e.expiresAt.IsZero() && s.now().After(e.expiresAt) {
		s.Delete(key)
		return nil, false
	}

	return e.value, true
}

// Set stores a value. A non-positive ttl means the entry never expires.
func (s *InMem) Set(key string, value any, ttl time.Duration) {
	e := entry{value: value}
	if ttl > 0 {
		e.expiresAt = s.now().Add(ttl)
	}

	s.mu.Lock()
	s.entries[key] = e
	s.mu.Unlock()
}

func (s *InMem) Delete(key string) {
	s.mu.Lock()
	delete(s.entries, key)
	s.mu.Unlock()
}

// Len reports the number of stored entries, expired ones included until the
// next sweep.
func (s *InMem) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// StartEviction runs a background sweeper that drops expired entries every
// interval until the context is done.
func (s *InMem) StartEviction(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.sweep()
			}
		}
	}()
}

func (s *InMem) sweep() {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	for key, e := range s.entries {
		if !e.expiresAt.IsZero() && now.After(e.expiresAt) {
			delete(s.entries, key)
		}
	}
}
