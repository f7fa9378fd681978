package derive

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/resmod/resmod/pkg/telemetry"
)

// Watcher re-runs derivation when watched model documents change.
type Watcher struct {
	watcher *fsnotify.Watcher

	// Debounce is how long to wait after the last event before re-deriving.
	Debounce time.Duration
}

// NewWatcher creates a file watcher with the default debounce interval.
func NewWatcher() *Watcher {
	return &Watcher{Debounce: 500 * time.Millisecond}
}

// Watch registers the paths and invokes onChange after changes settle.
// Directories are watched non-recursively; only .json documents trigger a
// re-derivation. Watch blocks until the context is cancelled.
func (w *Watcher) Watch(ctx context.Context, paths []string, onChange func()) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()
	w.watcher = watcher

	logger := telemetry.FromContext(ctx).NewComponentLogger("watch")

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			logger.WithError(err).WithField("path", path).Warn("Failed to stat path for watching")
			continue
		}
		// Watching the parent directory catches editors that replace files
		// instead of writing in place.
		target := path
		if !info.IsDir() {
			target = filepath.Dir(path)
		}
		if err := watcher.Add(target); err != nil {
			logger.WithError(err).WithField("path", target).Warn("Failed to watch path")
		}
	}

	logger.WithField("paths", len(paths)).Info("Watching model documents")

	var debounce *time.Timer
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if !strings.HasSuffix(event.Name, ".json") {
				continue
			}
			logger.WithFields(map[string]interface{}{
				"file": event.Name,
				"op":   event.Op.String(),
			}).Debug("Model document changed")

			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(w.Debounce, onChange)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.WithError(err).Error("Watcher error")
		}
	}
}
