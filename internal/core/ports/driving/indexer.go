package driving

import "context"

// ProgressFunc is called after each chunk is upserted.
// done counts upserted chunks so far out of total.
type ProgressFunc func(done, total int, chunkID string)

// Indexer loads, chunks, embeds and stores the documents of a directory.
type Indexer interface {
	// ProcessDocuments indexes every document in dir and returns the
	// number of chunks upserted.
	ProcessDocuments(ctx context.Context, dir string) (int, error)
}
