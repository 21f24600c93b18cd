// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package state

import (
	"context"
	"sync"
)

// MemoryStore keeps the registry in process memory.
type MemoryStore struct {
	mu    sync.RWMutex
	pages map[string]Page
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{pages: make(map[string]Page)}
}

func (s *MemoryStore) Exists(_ context.Context, name string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.pages[name]
	return ok, nil
}

func (s *MemoryStore) Mark(_ context.Context, pages ...Page) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range pages {
		s.pages[p.Name] = p
	}
	return nil
}

func (s *MemoryStore) Forget(_ context.Context, names ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, n := range names {
		delete(s.pages, n)
	}
	return nil
}

// Get returns the entry of page name.
func (s *MemoryStore) Get(name string) (Page, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.pages[name]
	return p, ok
}

func (s *MemoryStore) Close() error { return nil }
