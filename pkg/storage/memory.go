package storage

import "sync"

// MemoryStorage is a map-backed Storage. Failure fields let tests simulate a
// broken substrate.
type MemoryStorage struct {
	mu     sync.Mutex
	data   map[string]string
	closed bool

	FailGet    error
	FailSet    error
	FailRemove error
}

// NewMemory creates an empty MemoryStorage.
func NewMemory() *MemoryStorage {
	return &MemoryStorage{data: make(map[string]string)}
}

func (m *MemoryStorage) Get(key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return "", false, ErrClosed
	}
	if m.FailGet != nil {
		return "", false, m.FailGet
	}
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *MemoryStorage) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	if m.FailSet != nil {
		return m.FailSet
	}
	m.data[key] = value
	return nil
}

func (m *MemoryStorage) Remove(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	if m.FailRemove != nil {
		return m.FailRemove
	}
	delete(m.data, key)
	return nil
}

func (m *MemoryStorage) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}
