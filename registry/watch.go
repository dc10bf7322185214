/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package registry

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DebounceDelay is how long Watch waits after the last file event before
// reloading.
var DebounceDelay = 200 * time.Millisecond

// Watch reloads the definitions file at path whenever it changes and passes
// the result to onChange. The parent directory is watched so editors that
// replace the file on save are picked up. A file that fails to parse is
// logged and skipped. Watching stops when ctx is done. onChange calls never
// overlap, and a slow onChange does not hold up the event loop.
func Watch(ctx context.Context, path string, onChange func(Definitions), logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("failed to resolve %s: %w", path, err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(abs), err)
	}

	delay := DebounceDelay

	go func() {
		var debounceTimer *time.Timer
		var mu sync.Mutex
		var closed bool
		// serializes reloads so callbacks see files in the order they changed;
		// the event loop never takes it
		var reloadMu sync.Mutex

		defer func() {
			mu.Lock()
			closed = true
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			mu.Unlock()
			_ = watcher.Close()
		}()

		reload := func() {
			reloadMu.Lock()
			defer reloadMu.Unlock()

			mu.Lock()
			stopped := closed
			mu.Unlock()
			if stopped {
				return
			}

			defs, err := LoadFile(abs)
			if err != nil {
				logger.Warn("definitions reload failed, keeping previous definitions",
					"path", abs,
					"error", err,
				)
				return
			}
			logger.Debug("definitions reloaded", "path", abs, "flags", len(defs))
			onChange(defs)
		}

		for {
			select {
			case <-ctx.Done():
				return

			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != abs {
					continue
				}
				if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
					continue
				}

				mu.Lock()
				if debounceTimer != nil {
					debounceTimer.Stop()
				}
				debounceTimer = time.AfterFunc(delay, reload)
				mu.Unlock()

			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Warn("definitions watcher error", "path", abs, "error", err)
			}
		}
	}()

	return nil
}
