// Package cache implements the read-state overlay for the notification
// feed: a namespaced key-value store holding the last generated list, the
// per-id read flags, the removed set, and a freshness timestamp.
package cache

import (
	"errors"
	"sync"
)

// ErrNotFound is returned by a KV when a key has no value.
var ErrNotFound = errors.New("cache: key not found")

// KV is the minimal key-value contract the read-state overlay persists
// through. Implementations must be safe for concurrent use.
type KV interface {
	Get(key string) ([]byte, error)
	Set(key string, value []byte) error
	Delete(key string) error
}

// Memory is an in-process KV, used in tests and as a fallback when no cache
// directory is configured.
type Memory struct {
	mu   sync.RWMutex
	data map[string][]byte
}

func NewMemory() *Memory {
	return &Memory{data: make(map[string][]byte)}
}

func (m *Memory) Get(key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	val, ok := m.data[key]
	if !ok {
		return nil, ErrNotFound
	}
	out := make([]byte, len(val))
	copy(out, val)
	return out, nil
}

func (m *Memory) Set(key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored := make([]byte, len(value))
	copy(stored, value)
	m.data[key] = stored
	return nil
}

func (m *Memory) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}
