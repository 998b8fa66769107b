package storage

import (
	"context"
	"fmt"
	"sync"

	"ad-aid-platform/models"
)

// MemoryStore keeps objects in a map. Used by tests and the in-memory run mode.
type MemoryStore struct {
	prefixer

	mu      sync.RWMutex
	objects map[string][]byte
	writes  int

	// FailWrites makes every Write return an error
	FailWrites bool
}

// NewMemoryStore creates an empty MemoryStore
func NewMemoryStore(publicPrefix string) *MemoryStore {
	return &MemoryStore{
		prefixer: newPrefixer(publicPrefix),
		objects:  make(map[string][]byte),
	}
}

// Ensure MemoryStore implements ByteStore
var _ ByteStore = (*MemoryStore)(nil)

func (s *MemoryStore) Write(ctx context.Context, p string, data []byte) error {
	cleaned, err := CleanPath(p)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailWrites {
		return fmt.Errorf("memory store: write to %s rejected", cleaned)
	}
	s.objects[cleaned] = append([]byte(nil), data...)
	s.writes++
	return nil
}

func (s *MemoryStore) Read(ctx context.Context, p string) ([]byte, error) {
	cleaned, err := CleanPath(p)
	if err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.objects[cleaned]
	if !ok {
		return nil, fmt.Errorf("object %s: %w", cleaned, models.ErrNotFound)
	}
	return append([]byte(nil), data...), nil
}

func (s *MemoryStore) Delete(ctx context.Context, p string) error {
	cleaned, err := CleanPath(p)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, cleaned)
	return nil
}

// Paths returns the stored object paths
func (s *MemoryStore) Paths() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	paths := make([]string, 0, len(s.objects))
	for p := range s.objects {
		paths = append(paths, p)
	}
	return paths
}

// Writes returns the number of successful writes
func (s *MemoryStore) Writes() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.writes
}
