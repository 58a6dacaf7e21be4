package driven

import (
	"context"

	"github.com/custodia-labs/railkm/internal/core/domain"
)

// CorpusWatcher reports changes to corpus documents.
type CorpusWatcher interface {
	// Watch starts watching and returns a channel of debounced changes.
	// The channel is closed when ctx is cancelled or the watcher is closed.
	Watch(ctx context.Context) (<-chan domain.FileChange, error)

	// Close stops watching and releases resources.
	Close() error
}
