package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/naiverag/internal/core/domain"
	"github.com/custodia-labs/naiverag/internal/core/ports/driven"
	"github.com/custodia-labs/naiverag/internal/core/ports/driving"
	"github.com/custodia-labs/naiverag/internal/logger"
)

// Ensure Retriever implements the interface.
var _ driving.Retriever = (*Retriever)(nil)

// Retriever embeds a question and returns the nearest stored chunks.
type Retriever struct {
	embedder driven.EmbeddingService
	store    driven.VectorStore
}

// NewRetriever creates a Retriever.
func NewRetriever(embedder driven.EmbeddingService, store driven.VectorStore) *Retriever {
	return &Retriever{embedder: embedder, store: store}
}

// Query returns at most n chunk texts, nearest first.
func (r *Retriever) Query(ctx context.Context, question string, n int) ([]string, error) {
	hits, err := r.Search(ctx, domain.Query{Question: question, N: n})
	if err != nil {
		return nil, err
	}
	return domain.Texts(hits), nil
}

// Search is Query with ids and distances kept, for display.
func (r *Retriever) Search(ctx context.Context, q domain.Query) ([]domain.Hit, error) {
	q = q.Normalise()
	logger.Section("Retrieve")

	vector, err := r.embedder.Embed(ctx, q.Question)
	if err != nil {
		return nil, fmt.Errorf("embed question: %w", err)
	}

	hits, err := r.store.Query(ctx, vector, q.N)
	if err != nil {
		return nil, fmt.Errorf("query store: %w", err)
	}
	if hits == nil {
		hits = []domain.Hit{}
	}

	for i, h := range hits {
		logger.Debug("  %d. %s (distance %.4f)", i+1, h.ID, h.Distance)
	}
	return hits, nil
}
