package mcp

import (
	"github.com/custodia-labs/naiverag/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Retriever finds the chunks most similar to a question.
	Retriever driving.Retriever

	// Answerer generates answers from retrieved chunks.
	Answerer driving.Answerer

	// Status reports on the index. Optional.
	Status driving.StatusService
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Retriever == nil {
		return ErrMissingRetriever
	}
	if p.Answerer == nil {
		return ErrMissingAnswerer
	}
	return nil
}
