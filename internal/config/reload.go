package config

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Reloader watches the config file and hot-reloads vault authorities,
// so a strategist rotation or pause issued by the admin takes effect
// in a long-lived gateway without a restart.
type Reloader struct {
	watcher *fsnotify.Watcher
	cfg     *Config
	path    string
}

// NewReloader creates a file watcher for the given config path.
func NewReloader(cfg *Config, path string) (*Reloader, error) {
	if path == "" {
		path = DefaultPath()
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create config watcher: %w", err)
	}
	if err := watcher.Add(path); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("watch %q: %w", path, err)
	}
	return &Reloader{watcher: watcher, cfg: cfg, path: path}, nil
}

// Run watches for config changes and reloads vault authorities. Blocks
// until ctx is cancelled.
func (r *Reloader) Run(ctx context.Context) error {
	defer r.watcher.Close()

	// Debounce: wait 500ms after the last write before reloading
	var debounce *time.Timer

	for {
		select {
		case <-ctx.Done():
			if debounce != nil {
				debounce.Stop()
			}
			return nil

		case event, ok := <-r.watcher.Events:
			if !ok {
				return nil
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				if debounce != nil {
					debounce.Stop()
				}
				debounce = time.AfterFunc(500*time.Millisecond, func() {
					if err := r.cfg.Reload(r.path); err != nil {
						fmt.Fprintf(os.Stderr, "config reload failed: %v\n", err)
					} else {
						fmt.Fprintf(os.Stderr, "config reloaded: vault authorities refreshed\n")
					}
				})
			}

		case err, ok := <-r.watcher.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintf(os.Stderr, "config watcher error: %v\n", err)
		}
	}
}
