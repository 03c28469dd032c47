package driven

import (
	"context"

	"github.com/custodia-labs/naiverag/internal/core/domain"
)

// IngestRunStore persists the history of ingest runs.
type IngestRunStore interface {
	// Save inserts or updates a run by ID.
	Save(ctx context.Context, run domain.IngestRun) error

	// Latest returns the most recently started run.
	// Returns false if no run has been recorded.
	Latest(ctx context.Context) (domain.IngestRun, bool, error)

	// List returns up to limit runs, newest first.
	List(ctx context.Context, limit int) ([]domain.IngestRun, error)

	// Prune deletes all but the newest keep runs.
	Prune(ctx context.Context, keep int) error
}
