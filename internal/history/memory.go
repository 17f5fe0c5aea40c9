package history

import (
	"sync"

	"github.com/iwvelando/signal-timing/internal/simulation"
)

// MemoryStore is a process-local Repository.
type MemoryStore struct {
	mu       sync.Mutex
	capacity int
	items    []simulation.Result
}

// NewMemoryStore returns an empty store holding at most capacity results.
// A non-positive capacity selects the default.
func NewMemoryStore(capacity int) *MemoryStore {
	return &MemoryStore{capacity: normalizeCapacity(capacity)}
}

func (s *MemoryStore) Append(result simulation.Result) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = prepend(s.items, result, s.capacity)
	return nil
}

func (s *MemoryStore) List() ([]simulation.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]simulation.Result{}, s.items...), nil
}

func (s *MemoryStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = nil
	return nil
}

func (s *MemoryStore) Close() error {
	return nil
}
