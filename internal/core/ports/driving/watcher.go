package driving

import "context"

// IngestWatcher keeps an index in step with a directory.
type IngestWatcher interface {
	// Start ingests once and again after every change. It blocks until
	// ctx is done or Stop is called.
	Start(ctx context.Context) error

	// Stop ends a running Start and waits for it to return.
	Stop() error
}
