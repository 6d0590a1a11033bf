package treasury

import (
	"context"
	"sync"

	dErrors "fundgate/pkg/domain-errors"
)

// InMemoryStore keeps treasury records in a mutex-guarded map. It is the
// default store for development and tests.
type InMemoryStore struct {
	mu         sync.RWMutex
	treasuries map[Purpose]Treasury
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{treasuries: make(map[Purpose]Treasury)}
}

func (s *InMemoryStore) Get(_ context.Context, purpose Purpose) (Treasury, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if t, ok := s.treasuries[purpose]; ok {
		return t, nil
	}
	return Treasury{}, dErrors.Newf(dErrors.CodeNotFound, "treasury %s not found", purpose)
}

func (s *InMemoryStore) Save(_ context.Context, t Treasury) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.treasuries[t.Purpose] = t
	return nil
}

func (s *InMemoryStore) List(_ context.Context) ([]Treasury, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Treasury, 0, len(s.treasuries))
	for _, purpose := range Purposes() {
		if t, ok := s.treasuries[purpose]; ok {
			out = append(out, t)
		}
	}
	return out, nil
}
