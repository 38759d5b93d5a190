// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// =============================================================================
// FILE WATCHER
// =============================================================================

// WatchDebounce is the quiet period after the last event before a reload.
const WatchDebounce = 150 * time.Millisecond

// Watch reloads the config file at path whenever it changes and passes the
// result to onChange. A failed reload reports the error with a nil Config.
//
// The parent directory is watched, not the file, so editors that replace
// the file by rename are seen. Watch blocks until ctx is done.
func Watch(ctx context.Context, path string, onChange func(*Config, error)) error {
	return watchPaths(ctx, []string{path}, func(string) {
		onChange(LoadFromPath(path))
	})
}

// WatchDir calls onChange with the changed file whenever a file under dir
// is written, created, renamed or removed. It blocks until ctx is done.
func WatchDir(ctx context.Context, dir string, onChange func(name string)) error {
	return watchPaths(ctx, []string{dir}, onChange)
}

// watchPaths shares the debounce loop between Watch and WatchDir. A target
// that is a file is matched by name inside its directory.
func watchPaths(ctx context.Context, targets []string, fire func(name string)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	files := make(map[string]bool)
	for _, target := range targets {
		abs, err := filepath.Abs(target)
		if err != nil {
			return fmt.Errorf("resolve %s: %w", target, err)
		}
		dir := abs
		if info, err := os.Stat(abs); err != nil || !info.IsDir() {
			files[abs] = true
			dir = filepath.Dir(abs)
		}
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("watch %s: %w", dir, err)
		}
	}

	relevant := func(name string) bool {
		if len(files) == 0 {
			return true
		}
		abs, err := filepath.Abs(name)
		return err == nil && files[abs]
	}

	timer := time.NewTimer(WatchDebounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()
	var pending string

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !relevant(event.Name) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			pending = event.Name
			timer.Reset(WatchDebounce)

		case <-timer.C:
			if pending != "" {
				fire(pending)
				pending = ""
			}

		case _, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
		}
	}
}
