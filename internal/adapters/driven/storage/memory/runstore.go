package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/custodia-labs/naiverag/internal/core/domain"
	"github.com/custodia-labs/naiverag/internal/core/ports/driven"
)

// Ensure RunStore implements the interface.
var _ driven.IngestRunStore = (*RunStore)(nil)

// RunStore is an in-memory implementation of driven.IngestRunStore.
type RunStore struct {
	mu   sync.RWMutex
	runs map[string]domain.IngestRun
}

// NewRunStore creates a new in-memory run store.
func NewRunStore() *RunStore {
	return &RunStore{
		runs: make(map[string]domain.IngestRun),
	}
}

// Save stores or updates a run.
func (s *RunStore) Save(_ context.Context, run domain.IngestRun) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs[run.ID] = run
	return nil
}

// Latest returns the most recently started run.
func (s *RunStore) Latest(ctx context.Context) (domain.IngestRun, bool, error) {
	runs, _ := s.List(ctx, 1)
	if len(runs) == 0 {
		return domain.IngestRun{}, false, nil
	}
	return runs[0], true, nil
}

// List returns up to limit runs, newest first.
func (s *RunStore) List(_ context.Context, limit int) ([]domain.IngestRun, error) {
	s.mu.RLock()
	runs := make([]domain.IngestRun, 0, len(s.runs))
	for _, r := range s.runs {
		runs = append(runs, r)
	}
	s.mu.RUnlock()

	sort.Slice(runs, func(i, j int) bool {
		return runs[i].StartedAt.After(runs[j].StartedAt)
	})
	if limit > 0 && len(runs) > limit {
		runs = runs[:limit]
	}
	return runs, nil
}

// Prune deletes all but the newest keep runs.
func (s *RunStore) Prune(ctx context.Context, keep int) error {
	var newest []domain.IngestRun
	if keep > 0 {
		newest, _ = s.List(ctx, keep)
	}
	kept := make(map[string]domain.IngestRun, len(newest))
	for _, r := range newest {
		kept[r.ID] = r
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs = kept
	return nil
}
