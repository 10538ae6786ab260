package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

// MemStore is an in-memory Store. Values round-trip through JSON so callers
// see the same encoding behavior as with SQLiteStore.
type MemStore struct {
	mu     sync.Mutex
	data   map[string]map[string][]byte
	saves  int
	closed bool

	// SaveErr, when set, is returned from every Save.
	SaveErr error
}

// NewMemStore returns an empty MemStore.
func NewMemStore() *MemStore {
	return &MemStore{data: make(map[string]map[string][]byte)}
}

func (m *MemStore) Load(_ context.Context, ns, key string, dst any) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return false, ErrClosed
	}
	raw, ok := m.data[ns][key]
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return true, fmt.Errorf("decode %s/%s: %w", ns, key, err)
	}
	return true, nil
}

func (m *MemStore) Save(_ context.Context, ns, key string, v any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	if m.SaveErr != nil {
		return m.SaveErr
	}
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s/%s: %w", ns, key, err)
	}
	if m.data[ns] == nil {
		m.data[ns] = make(map[string][]byte)
	}
	m.data[ns][key] = b
	m.saves++
	return nil
}

// Saves returns the number of successful Save calls.
func (m *MemStore) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}


func (m *MemStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}
