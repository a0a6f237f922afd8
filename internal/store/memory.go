package store

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// MemoryStore is an in-memory SnapshotStore. It backs tests and the
// "memory" storage type for throwaway local runs; nothing survives a restart.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
}

type memoryEntry struct {
	data     []byte
	revision string
}

// NewMemoryStore creates an empty in-memory snapshot store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]memoryEntry)}
}

func (m *MemoryStore) Load(_ context.Context, key string) ([]byte, string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	entry, ok := m.entries[key]
	if !ok {
		return nil, "", ErrNotFound
	}
	data := make([]byte, len(entry.data))
	copy(data, entry.data)
	return data, entry.revision, nil
}

func (m *MemoryStore) Save(_ context.Context, key string, data []byte, expectedRevision string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	current := ""
	if entry, ok := m.entries[key]; ok {
		current = entry.revision
	}
	if current != expectedRevision {
		return "", ErrRevisionMismatch
	}

	stored := make([]byte, len(data))
	copy(stored, data)
	revision := uuid.NewString()
	m.entries[key] = memoryEntry{data: stored, revision: revision}
	return revision, nil
}

func (m *MemoryStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
	return nil
}

func (m *MemoryStore) Ping(_ context.Context) error {
	return nil
}
