package main

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/cwbudde/algo-additive/additive"
	"github.com/cwbudde/algo-additive/preset"
	"github.com/fsnotify/fsnotify"
)

// watchPreset reloads path into store whenever it changes. Invalid edits are
// logged and the previous parameters stay live.
func watchPreset(ctx context.Context, path string, store *additive.ParamStore) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("can't create watcher: %w", err)
	}
	defer watcher.Close()

	// Editors often replace the file, so watch the directory.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("watch %s: %w", path, err)
	}
	target := filepath.Clean(path)

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			reloadPreset(path, store)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("preset watcher error", "err", err)
		}
	}
}

func reloadPreset(path string, store *additive.ParamStore) bool {
	p, err := preset.LoadJSON(path)
	if err != nil {
		logger.Warn("preset reload failed", "path", path, "err", err)
		return false
	}
	store.Store(p)
	logger.Info("preset reloaded", "path", path, "partials", p.ActivePartials)
	return true
}
