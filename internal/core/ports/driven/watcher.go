package driven

import "context"

// ChangeNotifier reports that the source directory changed.
type ChangeNotifier interface {
	// Watch returns a channel that receives a value after each burst of
	// changes. The channel is closed when ctx is done.
	Watch(ctx context.Context) (<-chan struct{}, error)
}
