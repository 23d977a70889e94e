package storage

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

// MemoryStore is a process-local Store guarded by a single mutex.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	clock   Clock
}

// NewMemoryStore creates an empty in-memory store. A nil clock uses time.Now.
func NewMemoryStore(clock Clock) *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]memoryEntry),
		clock:   clock,
	}
}

func (s *MemoryStore) Name() string { return "memory" }

// lookup must be called with s.mu held. Expired entries are evicted.
func (s *MemoryStore) lookup(key string, now time.Time) ([]byte, bool) {
	entry, ok := s.entries[key]
	if !ok {
		return nil, false
	}
	if !now.Before(entry.expiresAt) {
		delete(s.entries, key)
		return nil, false
	}
	return entry.value, true
}

func (s *MemoryStore) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	value, ok := s.lookup(key, s.clock.Now())
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), value...), nil
}

func (s *MemoryStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[key] = memoryEntry{
		value:     append([]byte(nil), value...),
		expiresAt: s.clock.Now().Add(ttl),
	}
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, key)
	return nil
}

func (s *MemoryStore) Mutate(ctx context.Context, key string, fn MutateFunc) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current, found := s.lookup(key, s.clock.Now())
	next, expiresAt, err := fn(current, found)
	if err != nil {
		return err
	}
	if next == nil {
		delete(s.entries, key)
		return nil
	}
	s.entries[key] = memoryEntry{value: append([]byte(nil), next...), expiresAt: expiresAt}
	return nil
}

func (s *MemoryStore) Sweep(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	removed := 0
	for key, entry := range s.entries {
		if !now.Before(entry.expiresAt) {
			delete(s.entries, key)
			removed++
		}
	}
	return removed, nil
}

// Len reports the number of entries, expired ones included until swept.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

func (s *MemoryStore) Ping(ctx context.Context) error { return ctx.Err() }

func (s *MemoryStore) Close() error { return nil }
