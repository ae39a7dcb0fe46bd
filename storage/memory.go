package storage

import (
	"context"
	"sync"
)

// Memory is the development fallback. State is lost on restart, which
// makes it unsuitable for anything but local runs.
type Memory struct {
	blobs map[string][]byte
	mu    sync.RWMutex
}

func NewMemory() *Memory {
	return &Memory{blobs: map[string][]byte{}}
}

func (m *Memory) GetBlob(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	blob, ok := m.blobs[key]
	if !ok {
		return nil, nil
	}
	cp := make([]byte, len(blob))
	copy(cp, blob)

	return cp, nil
}

func (m *Memory) SetBlob(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cp := make([]byte, len(value))
	copy(cp, value)
	m.blobs[key] = cp

	return nil
}
