package session

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/marmos91/kioskd/internal/logger"
)

// WatchScript invalidates the reconciler's cached mode whenever the
// kiosk-mode script at path is written, replaced, or removed. A deployment
// that swaps the script out from under a running daemon would otherwise
// leave the cached mode describing what the old script applied.
//
// The parent directory is watched rather than the file itself so atomic
// replace (write temp + rename) is observed. WatchScript blocks until ctx
// is cancelled; run it in its own goroutine.
func WatchScript(ctx context.Context, path string, r *Reconciler) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create script watcher: %w", err)
	}
	defer watcher.Close()

	dir := filepath.Dir(path)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}
	logger.Debug("watching kiosk script", "path", path)

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != filepath.Clean(path) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) != 0 {
				r.InvalidateMode("script changed on disk")
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("script watcher error", "error", err)
		}
	}
}
