package memory

import (
	"context"
	"slices"
	"sort"
	"sync"

	"github.com/google/uuid"

	"kanguru-service/internal/domain"
)

// ResultStore keeps test results per user in memory.
type ResultStore struct {
	mu      sync.RWMutex
	results map[string][]domain.TestResult
}

func NewResultStore() *ResultStore {
	return &ResultStore{results: make(map[string][]domain.TestResult)}
}

func (s *ResultStore) Save(_ context.Context, ownerID string, result domain.TestResult) (string, error) {
	result.ID = uuid.NewString()
	result.Answers = slices.Clone(result.Answers)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.results[ownerID] = append(s.results[ownerID], result)
	return result.ID, nil
}

func (s *ResultStore) List(_ context.Context, ownerID string, max int) ([]domain.TestResult, error) {
	s.mu.RLock()
	out := slices.Clone(s.results[ownerID])
	s.mu.RUnlock()

	// newest insert first among equal completion times
	slices.Reverse(out)

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CompletedAt.After(out[j].CompletedAt)
	})
	if max > 0 && len(out) > max {
		out = out[:max]
	}
	if out == nil {
		out = []domain.TestResult{}
	}
	return out, nil
}
