package repo

import (
	"context"
	"sync"
)

// MemStore keeps the selection in process memory.
type MemStore struct {
	mu  sync.RWMutex
	id  string
	set bool
}

// NewMemStore returns an empty in-memory store.
func NewMemStore() *MemStore { return &MemStore{} }

func (s *MemStore) Get(_ context.Context) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.id, s.set, nil
}

func (s *MemStore) Set(_ context.Context, id string) error {
	s.mu.Lock()
	s.id, s.set = id, true
	s.mu.Unlock()
	return nil
}

func (s *MemStore) Close() error { return nil }
