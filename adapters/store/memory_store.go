package store

import (
	"context"
	"sync"
	"time"

	"github.com/questline/questline/core"
	"github.com/questline/questline/ports"
)

// MemoryStore is an in-memory implementation of the EphemeralStore interface
// with real per-key expiry. It backs tests and single-node development runs.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]entry
	now     func() time.Time
}

type entry struct {
	value     string
	expiresAt time.Time
}

// NewMemoryStore creates a new in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]entry),
		now:     time.Now,
	}
}

// SetClock replaces the store's time source. Tests use this to step through
// TTL expiry without sleeping.
func (s *MemoryStore) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// SetWithTTL stores value under key, replacing any previous entry.
func (s *MemoryStore) SetWithTTL(ctx context.Context, key, value string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.evictExpiredLocked()
	s.entries[key] = entry{
		value:     value,
		expiresAt: s.now().Add(ttl),
	}
	return nil
}

// Get returns the value for key, or core.ErrNotFound.
func (s *MemoryStore) Get(ctx context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok || s.now().After(e.expiresAt) {
		return "", core.ErrNotFound
	}
	return e.value, nil
}

// Take reads and deletes key under a single lock hold, mirroring the
// atomicity Redis gives via GETDEL.
func (s *MemoryStore) Take(ctx context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok || s.now().After(e.expiresAt) {
		delete(s.entries, key)
		return "", core.ErrNotFound
	}
	delete(s.entries, key)
	return e.value, nil
}

// Delete removes key; absent keys are not an error.
func (s *MemoryStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, key)
	return nil
}

// Ping always succeeds for the in-memory store.
func (s *MemoryStore) Ping(ctx context.Context) error {
	return nil
}

// evictExpiredLocked removes expired entries. Caller must hold mu.
func (s *MemoryStore) evictExpiredLocked() {
	now := s.now()
	for k, e := range s.entries {
		if now.After(e.expiresAt) {
			delete(s.entries, k)
		}
	}
}

var _ ports.EphemeralStore = (*MemoryStore)(nil)
