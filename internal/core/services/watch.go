package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/custodia-labs/naiverag/internal/core/domain"
	"github.com/custodia-labs/naiverag/internal/core/ports/driven"
	"github.com/custodia-labs/naiverag/internal/core/ports/driving"
	"github.com/custodia-labs/naiverag/internal/logger"
)

// Ensure IngestWatcher implements the interface.
var _ driving.IngestWatcher = (*IngestWatcher)(nil)

// IngestWatcher re-runs the Indexer over a directory whenever the
// ChangeNotifier reports a change. Runs never overlap; changes that
// arrive during a run trigger exactly one further run.
type IngestWatcher struct {
	indexer  driving.Indexer
	notifier driven.ChangeNotifier
	dir      string
	onResult func(domain.WatchResult)

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	wg      sync.WaitGroup
}

// NewIngestWatcher creates a watcher. onResult may be nil.
func NewIngestWatcher(
	indexer driving.Indexer,
	notifier driven.ChangeNotifier,
	dir string,
	onResult func(domain.WatchResult),
) *IngestWatcher {
	return &IngestWatcher{
		indexer:  indexer,
		notifier: notifier,
		dir:      dir,
		onResult: onResult,
	}
}

// errAlreadyRunning is returned by Start on a running watcher.
var errAlreadyRunning = errors.New("watcher already running")

// Start ingests once, then re-ingests on every change. It blocks until
// ctx is done or Stop is called. A failed ingest is reported through
// onResult and does not stop the loop.
func (w *IngestWatcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return errAlreadyRunning
	}
	w.running = true
	w.stopCh = make(chan struct{})
	stopCh := w.stopCh
	w.wg.Add(1)
	w.mu.Unlock()
	defer w.wg.Done()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	changes, err := w.notifier.Watch(ctx)
	if err != nil {
		w.markStopped()
		return err
	}

	w.runOnce(ctx)
	for {
		select {
		case <-ctx.Done():
			w.markStopped()
			return ctx.Err()
		case <-stopCh:
			return nil
		case _, ok := <-changes:
			if !ok {
				w.markStopped()
				if ctx.Err() != nil {
					return ctx.Err()
				}
				return errors.New("change notifier stopped")
			}
			logger.Debug("watch: change detected in %s", w.dir)
			w.runOnce(ctx)
		}
	}
}

// Stop ends the loop and waits for an in-flight run to finish.
func (w *IngestWatcher) Stop() error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = false
	close(w.stopCh)
	w.mu.Unlock()

	w.wg.Wait()
	return nil
}

func (w *IngestWatcher) markStopped() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.running = false
}

func (w *IngestWatcher) runOnce(ctx context.Context) {
	result := domain.WatchResult{StartedAt: time.Now()}
	result.Chunks, result.Err = w.indexer.ProcessDocuments(ctx, w.dir)
	result.EndedAt = time.Now()

	if result.Err != nil {
		logger.Warn("watch: ingest of %s failed: %v", w.dir, result.Err)
	}
	if w.onResult != nil {
		w.onResult(result)
	}
}
