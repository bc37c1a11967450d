package store

import (
	"context"
	"sync"
)

// MemoryStore is an in-process Store for tests and storeless embeds.
type MemoryStore struct {
	mu    sync.RWMutex
	state map[string]bool
}

// NewMemory creates an empty in-memory store.
func NewMemory() *MemoryStore {
	return &MemoryStore{state: make(map[string]bool)}
}

// GetOpenState returns the stored flag for key.
func (s *MemoryStore) GetOpenState(_ context.Context, key string) (bool, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	open, ok := s.state[key]
	return open, ok, nil
}

// SetOpenState stores the flag for key.
func (s *MemoryStore) SetOpenState(_ context.Context, key string, open bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state[key] = open
	return nil
}

// Ping always succeeds.
func (s *MemoryStore) Ping(context.Context) error { return nil }

// Close is a no-op.
func (s *MemoryStore) Close() error { return nil }
