package governance

import (
	"context"
	"sort"
	"sync"

	"geovault/pkg/domain"
	dErrors "geovault/pkg/domain-errors"
)

// InMemoryStore keeps requests in a map. It backs unit tests and the
// single-process demo.
type InMemoryStore struct {
	mu       sync.RWMutex
	requests map[domain.RequestID]AnalysisRequest
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{requests: make(map[domain.RequestID]AnalysisRequest)}
}

func (s *InMemoryStore) Save(_ context.Context, req AnalysisRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.requests[req.ID]; ok {
		return dErrors.New(dErrors.CodeInvalidState, "analysis request already exists")
	}
	s.requests[req.ID] = req
	return nil
}

func (s *InMemoryStore) Update(_ context.Context, req AnalysisRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.requests[req.ID]; !ok {
		return ErrNotFound
	}
	s.requests[req.ID] = req
	return nil
}

func (s *InMemoryStore) Find(_ context.Context, id domain.RequestID) (AnalysisRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	req, ok := s.requests[id]
	if !ok {
		return AnalysisRequest{}, ErrNotFound
	}
	return req, nil
}

func (s *InMemoryStore) ListByContainer(_ context.Context, id domain.ContainerID) ([]AnalysisRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []AnalysisRequest
	for _, req := range s.requests {
		if req.ContainerID == id {
			out = append(out, req)
		}
	}
	sortBySubmission(out)
	return out, nil
}

func (s *InMemoryStore) List(_ context.Context) ([]AnalysisRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]AnalysisRequest, 0, len(s.requests))
	for _, req := range s.requests {
		out = append(out, req)
	}
	sortBySubmission(out)
	return out, nil
}

func sortBySubmission(reqs []AnalysisRequest) {
	sort.Slice(reqs, func(i, j int) bool {
		if reqs[i].SubmittedAt.Equal(reqs[j].SubmittedAt) {
			return reqs[i].ID.String() < reqs[j].ID.String()
		}
		return reqs[i].SubmittedAt.Before(reqs[j].SubmittedAt)
	})
}
