package state

import (
	"context"
	"sync"

	"github.com/HuyGoodBoy/yogalanding-sub000/internal/domain"
)

// Memory is an in-process Repository, used in tests and with STATE_BACKEND=memory.
type Memory struct {
	mu     sync.RWMutex
	values map[string]map[string][]byte
}

func NewMemory() *Memory {
	return &Memory{values: make(map[string]map[string][]byte)}
}

func (m *Memory) Get(_ context.Context, clientID, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[clientID][key]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return append([]byte(nil), v...), nil
}

func (m *Memory) Set(_ context.Context, clientID, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.values[clientID] == nil {
		m.values[clientID] = make(map[string][]byte)
	}
	m.values[clientID][key] = append([]byte(nil), value...)
	return nil
}

func (m *Memory) Delete(_ context.Context, clientID, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values[clientID], key)
	return nil
}
