package memory

import (
	"context"
	"sync"
)

// Store is an in-process key-value map. Values vanish with the process.
type Store struct {
	mu     sync.Mutex
	values map[string]string
}

func New() *Store {
	return &Store{values: make(map[string]string)}
}

// NewWith seeds the store, mainly for tests.
func NewWith(seed map[string]string) *Store {
	s := New()
	for k, v := range seed {
		s.values[k] = v
	}
	return s
}

// Get implements storage.KV.
func (s *Store) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.values[key]
	return v, ok, nil
}

// Set implements storage.KV.
func (s *Store) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}
