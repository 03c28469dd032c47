package domain

import "fmt"

// Document is a text file read from the source directory.
// It is immutable once loaded and discarded after chunking.
type Document struct {
	// Index is the 1-based position of the document in the load order.
	// Chunk IDs are derived from it, so the load order must be stable.
	Index int

	// Name is the base file name (e.g. "a.txt").
	Name string

	// Path is the full path the document was read from.
	Path string

	// Content is the decoded UTF-8 text of the file.
	Content string
}

// Chunk is a contiguous window of a document's text.
type Chunk struct {
	// ID is "doc<N>_chunk<M>", see ChunkID.
	ID string

	// DocumentIndex is the Index of the parent Document.
	DocumentIndex int

	// Position is the 1-based ordinal of the chunk within its document.
	Position int

	// Text is the chunk content.
	Text string

	// Embedding is attached once by the embedding service.
	Embedding []float32
}

// ChunkID returns the deterministic identifier for the chunk at position
// chunk (1-based) of document doc (1-based).
func ChunkID(doc, chunk int) string {
	return fmt.Sprintf("doc%d_chunk%d", doc, chunk)
}

// NewChunks builds the chunks of a document from its split texts,
// assigning IDs in order.
func NewChunks(doc Document, texts []string) []Chunk {
	chunks := make([]Chunk, len(texts))
	for i, text := range texts {
		chunks[i] = Chunk{
			ID:            ChunkID(doc.Index, i+1),
			DocumentIndex: doc.Index,
			Position:      i + 1,
			Text:          text,
		}
	}
	return chunks
}
