// Package kv stores small string values by key, such as UI preferences.
package kv

import (
	"context"
	"sync"
)

// Store is a string key-value store.
type Store interface {
	// Get returns the value for key and whether it was set.
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}

// Memory is a Store kept in process memory.
type Memory struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{values: make(map[string]string)}
}

func (m *Memory) Get(ctx context.Context, key string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *Memory) Set(ctx context.Context, key, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

func (m *Memory) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
	return nil
}

// Len returns the number of stored keys.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.values)
}

// Noop is a Store that keeps nothing. Get always reports a miss.
type Noop struct{}

func (Noop) Get(context.Context, string) (string, bool, error) { return "", false, nil }
func (Noop) Set(context.Context, string, string) error         { return nil }
func (Noop) Delete(context.Context, string) error              { return nil }

// New returns the store named by backend: "memory" or "none".
// Unknown names fall back to memory.
func New(backend string) Store {
	if backend == "none" {
		return Noop{}
	}
	return NewMemory()
}
