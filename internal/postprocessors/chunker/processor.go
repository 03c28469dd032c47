// Package chunker provides a fixed-size text chunking processor.
package chunker

import (
	"fmt"

	"github.com/custodia-labs/naiverag/internal/core/domain"
	"github.com/custodia-labs/naiverag/internal/core/ports/driven"
)

// Ensure Processor implements the interface.
var _ driven.Splitter = (*Processor)(nil)

// DefaultChunkSize is the default number of characters per chunk.
const DefaultChunkSize = 1000

// DefaultChunkOverlap is the default number of overlapping characters.
const DefaultChunkOverlap = 20

// Processor splits text into fixed-size overlapping windows.
// Sizes are counted in runes, so a multi-byte character is never split.
type Processor struct {
	chunkSize int
	overlap   int
}

// Option configures the chunker processor.
type Option func(*Processor)

// WithChunkSize sets the chunk size in characters.
func WithChunkSize(size int) Option {
	return func(p *Processor) {
		p.chunkSize = size
	}
}

// WithOverlap sets the overlap between chunks in characters.
func WithOverlap(overlap int) Option {
	return func(p *Processor) {
		p.overlap = overlap
	}
}

// New creates a new chunker processor with the given options.
// Returns domain.ErrInvalidConfiguration for a size or overlap that
// would not terminate.
func New(opts ...Option) (*Processor, error) {
	p := &Processor{
		chunkSize: DefaultChunkSize,
		overlap:   DefaultChunkOverlap,
	}

	for _, opt := range opts {
		opt(p)
	}

	if err := p.validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "chunker"
}

// Split cuts text into windows of chunkSize characters, each starting
// chunkSize-overlap characters after the previous one. The last window
// may be shorter. Empty text produces no chunks.
func (p *Processor) Split(text string) ([]string, error) {
	// A zero-value Processor bypasses New.
	if err := p.validate(); err != nil {
		return nil, err
	}
	if text == "" {
		return nil, nil
	}

	runes := []rune(text)
	n := len(runes)
	stride := p.chunkSize - p.overlap

	chunks := make([]string, 0, (n+stride-1)/stride)
	for start := 0; start < n; start += stride {
		end := min(start+p.chunkSize, n)
		chunks = append(chunks, string(runes[start:end]))
	}

	return chunks, nil
}

func (p *Processor) validate() error {
	switch {
	case p.chunkSize <= 0:
		return fmt.Errorf("%w: chunk size must be positive, got %d",
			domain.ErrInvalidConfiguration, p.chunkSize)
	case p.overlap < 0:
		return fmt.Errorf("%w: chunk overlap must not be negative, got %d",
			domain.ErrInvalidConfiguration, p.overlap)
	case p.overlap >= p.chunkSize:
		return fmt.Errorf("%w: chunk overlap %d must be less than chunk size %d",
			domain.ErrInvalidConfiguration, p.overlap, p.chunkSize)
	}
	return nil
}
