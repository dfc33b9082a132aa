// Package store provides the durable key-value storage backing client-side
// state (auth session, cart). Values are plain JSON strings under fixed keys.
package store

import "sync"

// Store is a durable key-value store for client-side state.
type Store interface {
	// Get returns the value for key and whether it exists.
	Get(key string) (string, bool, error)
	// Set persists a value under key, replacing any previous value.
	Set(key, value string) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(key string) error
}

// memStore implements Store in memory, for tests and ephemeral sessions.
type memStore struct {
	mu     sync.Mutex
	values map[string]string
}

// NewMemStore creates a new in-memory store.
func NewMemStore() Store {
	return &memStore{values: make(map[string]string)}
}

func (s *memStore) Get(key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	value, ok := s.values[key]
	return value, ok, nil
}

func (s *memStore) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.values[key] = value
	return nil
}

func (s *memStore) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.values, key)
	return nil
}
