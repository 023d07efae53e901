package registry

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher invalidates a FileStore's read cache when another process
// (typically the admin CLI) touches the registry directory. Without it
// a long-running gateway could keep serving a revoked approval from
// cache.
type Watcher struct {
	watcher *fsnotify.Watcher
	store   *FileStore
}

// NewWatcher creates a directory watcher for the store.
func NewWatcher(store *FileStore) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create registry watcher: %w", err)
	}
	if err := w.Add(store.Dir()); err != nil {
		w.Close()
		return nil, fmt.Errorf("watch %q: %w", store.Dir(), err)
	}
	return &Watcher{watcher: w, store: store}, nil
}

// Run watches for record changes and invalidates the cache. Blocks
// until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.watcher.Close()

	// Debounce: wait 500ms after the last event before invalidating
	var debounce *time.Timer

	for {
		select {
		case <-ctx.Done():
			if debounce != nil {
				debounce.Stop()
			}
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Remove) {
				if debounce != nil {
					debounce.Stop()
				}
				debounce = time.AfterFunc(500*time.Millisecond, w.store.Invalidate)
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintf(os.Stderr, "registry watcher error: %v\n", err)
		}
	}
}
