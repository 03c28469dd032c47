package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/naiverag/internal/core/domain"
	"github.com/custodia-labs/naiverag/internal/core/ports/driven"
	"github.com/custodia-labs/naiverag/internal/core/ports/driving"
)

// Ensure StatusService implements the interface.
var _ driving.StatusService = (*StatusService)(nil)

// StatusService reads index status from the stores.
type StatusService struct {
	vectors  driven.VectorStore
	runs     driven.IngestRunStore
	settings domain.AppSettings
	location string
}

// NewStatusService creates a StatusService. runs may be nil.
func NewStatusService(
	vectors driven.VectorStore,
	runs driven.IngestRunStore,
	settings domain.AppSettings,
	location string,
) *StatusService {
	return &StatusService{
		vectors:  vectors,
		runs:     runs,
		settings: settings,
		location: location,
	}
}

// Status returns the store backend, entry count and last ingest run.
func (s *StatusService) Status(ctx context.Context) (*domain.Status, error) {
	count, err := s.vectors.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count entries: %w", err)
	}

	status := &domain.Status{
		Backend:        s.settings.Store.Backend,
		Location:       s.location,
		Entries:        count,
		EmbeddingModel: s.settings.Embedding.Model,
		LLMModel:       s.settings.LLM.Model,
	}

	if dr, ok := s.vectors.(driven.DimensionReporter); ok {
		dims, err := dr.Dimensions(ctx)
		if err != nil {
			return nil, fmt.Errorf("vector dimensions: %w", err)
		}
		status.Dimensions = dims
	}

	if s.runs != nil {
		run, found, err := s.runs.Latest(ctx)
		if err != nil {
			return nil, fmt.Errorf("latest run: %w", err)
		}
		if found {
			status.LastRun = &run
		}
	}
	return status, nil
}

// RecentRuns returns up to limit ingest runs, newest first.
func (s *StatusService) RecentRuns(ctx context.Context, limit int) ([]domain.IngestRun, error) {
	if s.runs == nil {
		return []domain.IngestRun{}, nil
	}
	runs, err := s.runs.List(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	return runs, nil
}
