// Package kv provides the durable key-value storage backing the client's
// credential and guest-cart state. Values are opaque strings; callers own
// serialization.
package kv

import "sync"

// Store is the persistence contract shared by all state stores.
type Store interface {
	// Get returns the value for key and whether it was present.
	Get(key string) (string, bool)
	// Set stores value under key.
	Set(key, value string) error
	// Delete removes key. Deleting an absent key is a no-op.
	Delete(key string) error
}

// MemStore is an in-process Store with no persistence. Used as the default
// when no state path is configured, and in tests.
type MemStore struct {
	mu   sync.RWMutex
	data map[string]string
}

// NewMemStore returns an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{data: make(map[string]string)}
}

func (m *MemStore) Get(key string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	return v, ok
}

func (m *MemStore) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *MemStore) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}
