package driven

import (
	"context"

	"github.com/custodia-labs/naiverag/internal/core/domain"
)

// DocumentLoader reads the documents of a source directory.
type DocumentLoader interface {
	// Load returns the documents in dir in a stable order with 1-based
	// indices assigned. A missing directory yields domain.ErrDirectoryNotFound.
	Load(ctx context.Context, dir string) ([]domain.Document, error)
}
