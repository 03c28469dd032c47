package driving

import (
	"context"

	"github.com/custodia-labs/naiverag/internal/core/domain"
)

// StatusService reports on the index and its ingest history.
type StatusService interface {
	// Status returns the store backend, entry count and last ingest run.
	Status(ctx context.Context) (*domain.Status, error)

	// RecentRuns returns up to limit ingest runs, newest first.
	RecentRuns(ctx context.Context, limit int) ([]domain.IngestRun, error)
}
