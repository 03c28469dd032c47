package filesystem

import (
	"context"
	"fmt"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/naiverag/internal/core/ports/driven"
	"github.com/custodia-labs/naiverag/internal/logger"
)

// Ensure Watcher implements the interface.
var _ driven.ChangeNotifier = (*Watcher)(nil)

// DefaultDebounce is how long the watcher waits for events to settle
// before signalling a change.
const DefaultDebounce = 500 * time.Millisecond

// Watcher signals when the .txt files of a directory change.
// Bursts of events are coalesced into a single signal.
type Watcher struct {
	dir      string
	debounce time.Duration
}

// NewWatcher creates a watcher for dir. A non-positive debounce uses
// DefaultDebounce.
func NewWatcher(dir string, debounce time.Duration) *Watcher {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Watcher{dir: dir, debounce: debounce}
}

// Watch starts watching and returns a channel that receives a value
// after each settled batch of relevant changes. The channel is closed
// when ctx is cancelled or the underlying watcher fails.
func (w *Watcher) Watch(ctx context.Context) (<-chan struct{}, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := fsw.Add(w.dir); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("watch %s: %w", w.dir, err)
	}

	changes := make(chan struct{}, 1)
	go w.run(ctx, fsw, changes)
	return changes, nil
}

func (w *Watcher) run(ctx context.Context, fsw *fsnotify.Watcher, changes chan<- struct{}) {
	defer close(changes)
	defer fsw.Close()

	timer := time.NewTimer(w.debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-fsw.Events:
			if !ok {
				return
			}
			if !isRelevant(event) {
				continue
			}
			logger.Debug("watch: %s %s", event.Op, event.Name)
			timer.Reset(w.debounce)

		case err, ok := <-fsw.Errors:
			if !ok {
				return
			}
			logger.Warn("watch error: %v", err)

		case <-timer.C:
			// Non-blocking: a pending signal already covers this batch.
			select {
			case changes <- struct{}{}:
			default:
			}
		}
	}
}

// isRelevant reports whether an event affects the set or content of
// loadable documents.
func isRelevant(event fsnotify.Event) bool {
	if !isTextName(event.Name) {
		return false
	}
	return event.Has(fsnotify.Create) || event.Has(fsnotify.Write) ||
		event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename)
}
