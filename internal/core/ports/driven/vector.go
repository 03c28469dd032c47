package driven

import (
	"context"

	"github.com/custodia-labs/naiverag/internal/core/domain"
)

// VectorStore persists chunk vectors and answers nearest-neighbour queries.
// Implementations must be safe for concurrent use.
type VectorStore interface {
	// Upsert stores text and vector under id, overwriting any existing entry.
	// Each call is an independent atomic write.
	Upsert(ctx context.Context, id, text string, vector []float32) error

	// Query returns up to n entries ordered by increasing distance to vector.
	// An empty store returns an empty slice and no error.
	Query(ctx context.Context, vector []float32, n int) ([]domain.Hit, error)

	// Count returns the number of stored entries.
	Count(ctx context.Context) (int, error)

	// Close releases resources.
	Close() error
}

// DimensionReporter is implemented by vector stores that record the
// dimensionality of the vectors they hold.
type DimensionReporter interface {
	// Dimensions returns the stored dimensionality, or 0 if the store is empty.
	Dimensions(ctx context.Context) (int, error)
}
