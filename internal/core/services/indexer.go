package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/naiverag/internal/core/domain"
	"github.com/custodia-labs/naiverag/internal/core/ports/driven"
	"github.com/custodia-labs/naiverag/internal/core/ports/driving"
	"github.com/custodia-labs/naiverag/internal/logger"
)

// Ensure Indexer implements the interface.
var _ driving.Indexer = (*Indexer)(nil)

// Default worker pool sizing.
const (
	DefaultIndexWorkers = 8
	DefaultIndexQueue   = 32
)

// runHistory is how many ingest runs are kept.
const runHistory = 50

// Indexer loads a directory, splits each document into chunks, embeds
// every chunk through a bounded worker pool and upserts the vectors.
type Indexer struct {
	loader   driven.DocumentLoader
	splitter driven.Splitter
	embedder driven.EmbeddingService
	store    driven.VectorStore

	runs     driven.IngestRunStore
	progress driving.ProgressFunc
	workers  int
	queue    int
}

// IndexerOption configures an Indexer.
type IndexerOption func(*Indexer)

// WithWorkers sets the number of concurrent embedding workers.
func WithWorkers(n int) IndexerOption {
	return func(ix *Indexer) {
		if n > 0 {
			ix.workers = n
		}
	}
}

// WithQueueSize sets the job queue capacity.
func WithQueueSize(n int) IndexerOption {
	return func(ix *Indexer) {
		if n > 0 {
			ix.queue = n
		}
	}
}

// WithRunStore records each ProcessDocuments call as an IngestRun.
func WithRunStore(runs driven.IngestRunStore) IndexerOption {
	return func(ix *Indexer) {
		ix.runs = runs
	}
}

// WithProgress reports every upserted chunk to fn.
func WithProgress(fn driving.ProgressFunc) IndexerOption {
	return func(ix *Indexer) {
		ix.progress = fn
	}
}

// NewIndexer creates an Indexer over the given ports.
func NewIndexer(
	loader driven.DocumentLoader,
	splitter driven.Splitter,
	embedder driven.EmbeddingService,
	store driven.VectorStore,
	opts ...IndexerOption,
) *Indexer {
	ix := &Indexer{
		loader:   loader,
		splitter: splitter,
		embedder: embedder,
		store:    store,
		workers:  DefaultIndexWorkers,
		queue:    DefaultIndexQueue,
	}
	for _, opt := range opts {
		opt(ix)
	}
	return ix
}

// ProcessDocuments indexes every document in dir and returns the number
// of chunks upserted. On failure the count covers chunks already stored.
func (ix *Indexer) ProcessDocuments(ctx context.Context, dir string) (int, error) {
	logger.Section("Ingest")
	run := ix.startRun(ctx, dir)

	// 1. Load documents in stable order
	docs, err := ix.loader.Load(ctx, dir)
	if err != nil {
		err = fmt.Errorf("load documents: %w", err)
		ix.finishRun(ctx, run, 0, err)
		return 0, err
	}
	run.Documents = len(docs)
	logger.Debug("Loaded %d documents from %s", len(docs), dir)

	// 2. Split into chunks with deterministic IDs
	chunks, err := ix.split(docs)
	if err != nil {
		ix.finishRun(ctx, run, 0, err)
		return 0, err
	}
	logger.Debug("Split into %d chunks using %s", len(chunks), ix.splitter.Name())

	// 3. Embed and upsert
	n, err := ix.index(ctx, chunks)
	ix.finishRun(ctx, run, n, err)
	if err != nil {
		return n, err
	}

	logger.Info("Indexed %d chunks from %d documents", n, len(docs))
	return n, nil
}

func (ix *Indexer) split(docs []domain.Document) ([]domain.Chunk, error) {
	var chunks []domain.Chunk
	for _, doc := range docs {
		texts, err := ix.splitter.Split(doc.Content)
		if err != nil {
			return nil, fmt.Errorf("split %s: %w", doc.Name, err)
		}
		chunks = append(chunks, domain.NewChunks(doc, texts)...)
	}
	return chunks, nil
}

type embedResult struct {
	chunk  domain.Chunk
	vector []float32
	err    error
}

// index fans chunks out to the embedding workers and upserts results on
// this goroutine as they arrive. The first failure cancels the pool; no
// chunk is upserted after it.
func (ix *Indexer) index(parent context.Context, chunks []domain.Chunk) (int, error) {
	if len(chunks) == 0 {
		return 0, nil
	}
	defer logger.Timed("embed and upsert")()

	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	jobs := make(chan domain.Chunk, ix.queue)
	results := make(chan embedResult, ix.queue)

	// Producer
	go func() {
		defer close(jobs)
		for _, c := range chunks {
			select {
			case jobs <- c:
			case <-ctx.Done():
				return
			}
		}
	}()

	// Embedding workers
	var wg sync.WaitGroup
	for i := 0; i < min(ix.workers, len(chunks)); i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for c := range jobs {
				if ctx.Err() != nil {
					return
				}
				vec, err := ix.embedder.Embed(ctx, c.Text)
				select {
				case results <- embedResult{chunk: c, vector: vec, err: err}:
				case <-ctx.Done():
					return
				}
			}
		}()
	}
	go func() {
		wg.Wait()
		close(results)
	}()

	// Collector
	done := 0
	var firstErr error
	for r := range results {
		if firstErr != nil {
			continue
		}
		if r.err != nil {
			firstErr = ix.chunkErr(parent, domain.OpEmbed, r.chunk.ID, r.err)
			cancel()
			continue
		}
		if err := ix.store.Upsert(ctx, r.chunk.ID, r.chunk.Text, r.vector); err != nil {
			firstErr = ix.chunkErr(parent, domain.OpUpsert, r.chunk.ID, err)
			cancel()
			continue
		}
		done++
		logger.Debug("Upserted %s (%d/%d)", r.chunk.ID, done, len(chunks))
		if ix.progress != nil {
			ix.progress(done, len(chunks), r.chunk.ID)
		}
	}

	if firstErr != nil {
		return done, firstErr
	}
	if err := parent.Err(); err != nil {
		return done, err
	}
	return done, nil
}

// chunkErr reports the caller's cancellation as itself rather than as a
// chunk failure.
func (ix *Indexer) chunkErr(parent context.Context, op, id string, err error) error {
	if perr := parent.Err(); perr != nil {
		return perr
	}
	return &domain.ChunkError{Op: op, ChunkID: id, Err: err}
}

// startRun always returns a run; it is only persisted when a run store
// is attached.
func (ix *Indexer) startRun(ctx context.Context, dir string) *domain.IngestRun {
	run := &domain.IngestRun{
		ID:        uuid.NewString(),
		Directory: dir,
		Status:    domain.RunStatusRunning,
		StartedAt: time.Now(),
	}
	if ix.runs == nil {
		return run
	}
	if err := ix.runs.Save(ctx, *run); err != nil {
		logger.Warn("Failed to record ingest run: %v", err)
	}
	return run
}

func (ix *Indexer) finishRun(ctx context.Context, run *domain.IngestRun, chunks int, err error) {
	run.Chunks = chunks
	run.FinishedAt = time.Now()
	switch {
	case err == nil:
		run.Status = domain.RunStatusCompleted
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		run.Status = domain.RunStatusCancelled
		run.Error = err.Error()
	default:
		run.Status = domain.RunStatusFailed
		run.Error = err.Error()
	}

	if ix.runs == nil {
		return
	}

	// Record the outcome even when ctx is already cancelled.
	saveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if serr := ix.runs.Save(saveCtx, *run); serr != nil {
		logger.Warn("Failed to record ingest run: %v", serr)
		return
	}
	if perr := ix.runs.Prune(saveCtx, runHistory); perr != nil {
		logger.Warn("Failed to prune ingest runs: %v", perr)
	}
}
