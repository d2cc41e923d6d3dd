package vault

import (
	"context"
	"sort"
	"sync"

	"geovault/pkg/domain"
	dErrors "geovault/pkg/domain-errors"
)

// InMemoryStore keeps sealed containers in a map. It favors clarity over
// performance and backs tests and the demo binary.
type InMemoryStore struct {
	mu         sync.RWMutex
	containers map[domain.ContainerID]Container
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{containers: make(map[domain.ContainerID]Container)}
}

func (s *InMemoryStore) Save(_ context.Context, container Container) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.containers[container.Meta.ID]; exists {
		return dErrors.New(dErrors.CodeInvalidState, "container already sealed")
	}
	s.containers[container.Meta.ID] = container
	return nil
}

func (s *InMemoryStore) Find(_ context.Context, id domain.ContainerID) (Container, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if c, ok := s.containers[id]; ok {
		return c, nil
	}
	return Container{}, ErrNotFound
}

func (s *InMemoryStore) Meta(_ context.Context, id domain.ContainerID) (Metadata, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if c, ok := s.containers[id]; ok {
		return c.Meta, nil
	}
	return Metadata{}, ErrNotFound
}

func (s *InMemoryStore) List(_ context.Context) ([]Metadata, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Metadata, 0, len(s.containers))
	for _, c := range s.containers {
		out = append(out, c.Meta)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}
