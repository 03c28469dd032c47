package driving

import "context"

// Retriever finds the chunks most similar to a question.
type Retriever interface {
	// Query returns at most n chunk texts, most similar first.
	// n <= 0 means domain.DefaultResultCount.
	Query(ctx context.Context, question string, n int) ([]string, error)
}
