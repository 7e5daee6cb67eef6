package archive

import (
	"context"
	"sync"
)

// MemoryStore is an in-memory Archiver used for tests and one-shot CLI runs
// where no object store is configured
type MemoryStore struct {
	mu      sync.RWMutex
	objects map[string][]byte
}

// NewMemoryStore creates an empty in-memory archive
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		objects: map[string][]byte{},
	}
}

// Save stores body under key; the location is mem://<key>
func (s *MemoryStore) Save(_ context.Context, key string, _ string, body []byte) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := make([]byte, len(body))
	copy(stored, body)

	s.objects["mem://"+key] = stored

	return "mem://" + key, nil
}

// Read returns the bytes stored at location
func (s *MemoryStore) Read(_ context.Context, location string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	body, ok := s.objects[location]
	if !ok {
		return nil, ErrNotFound
	}

	return body, nil
}

// Len reports the number of archived objects
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.objects)
}
