package modelmanager

import (
	"context"
	"log/slog"
	"os"

	"github.com/fsnotify/fsnotify"
)

// watchCacheRoot watches root for out-of-band deletions (a user manually
// rm -rf'ing a model directory, an external process reclaiming disk
// space) and invokes onRemoved with the model id whenever a tracked
// model directory disappears. Mirrors the teacher's canvas.Host watch
// loop: a single watcher on the root directory, dispatching on
// fsnotify.Remove/Rename, logging and continuing on watcher errors
// rather than tearing down the loop.
func watchCacheRoot(ctx context.Context, root string, onRemoved func(modelID string)) (*fsnotify.Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := watcher.Add(root); err != nil {
		watcher.Close()
		return nil, err
	}

	go func() {
		for {
			select {
			case <-ctx.Done():
				watcher.Close()
				return
			case evt, ok := <-watcher.Events:
				if !ok {
					return
				}
				if evt.Op&(fsnotify.Remove|fsnotify.Rename) == 0 {
					continue
				}
				modelID := modelIDFromPath(evt.Name)
				if modelID == "" {
					continue
				}
				if _, statErr := os.Stat(evt.Name); statErr == nil {
					continue // renamed/recreated in place, not actually gone
				}
				onRemoved(modelID)
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				slog.Warn("modelmanager: cache watch error", "error", err)
			}
		}
	}()

	return watcher, nil
}
