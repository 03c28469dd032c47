package driving

import "context"

// Answerer generates an answer to a question from retrieved chunks.
type Answerer interface {
	// Generate builds the prompt from chunks and question and returns
	// the model's reply. Empty chunks are allowed.
	Generate(ctx context.Context, question string, chunks []string) (string, error)
}
