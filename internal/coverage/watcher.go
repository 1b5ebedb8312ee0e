// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package coverage

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// =============================================================================
// REPORT WATCHER
// =============================================================================

// Watcher invalidates a Provider's cached reports when the report files
// change on disk, and optionally notifies a callback once per burst of
// changes.
type Watcher struct {
	provider *Provider
	watcher  *fsnotify.Watcher
	debounce time.Duration

	mu      sync.Mutex
	paths   map[string]struct{}  // Watched report paths (absolute)
	pending map[string]time.Time // Report path -> last change time

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	// OnChange is called with the report path after changes settle.
	OnChange func(reportPath string)

	// Logf receives watcher errors. Nil means silent.
	Logf func(format string, args ...any)
}

// NewWatcher creates a watcher for provider. Call Add for each report and
// then Watch.
func NewWatcher(provider *Provider, debounce time.Duration) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create file watcher: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Watcher{
		provider: provider,
		watcher:  fw,
		debounce: debounce,
		paths:    make(map[string]struct{}),
		pending:  make(map[string]time.Time),
		ctx:      ctx,
		cancel:   cancel,
	}, nil
}

// Add watches a report path. The parent directory is watched so that
// editors and tools that replace the file by rename are seen too.
func (w *Watcher) Add(reportPath string) error {
	key := reportKey(reportPath)
	if err := w.watcher.Add(filepath.Dir(key)); err != nil {
		return fmt.Errorf("watch %s: %w", reportPath, err)
	}

	w.mu.Lock()
	w.paths[key] = struct{}{}
	w.mu.Unlock()
	return nil
}

// Watch starts processing events in the background.
func (w *Watcher) Watch() error {
	w.wg.Add(2)
	go w.processEvents()
	go w.processPending()
	return nil
}

// Close stops watching and releases resources.
func (w *Watcher) Close() error {
	w.cancel()
	err := w.watcher.Close()
	w.wg.Wait()
	return err
}

func (w *Watcher) processEvents() {
	defer w.wg.Done()

	for {
		select {
		case <-w.ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
				!event.Has(fsnotify.Rename) && !event.Has(fsnotify.Remove) {
				continue
			}
			w.handleChange(filepath.Clean(event.Name))

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			if w.Logf != nil {
				w.Logf("COVERAGE_WATCH_ERROR | err=%v", err)
			}
		}
	}
}

func (w *Watcher) handleChange(name string) {
	w.mu.Lock()
	_, watched := w.paths[name]
	if watched {
		w.pending[name] = time.Now()
	}
	w.mu.Unlock()

	if watched {
		// Drop the cache right away so a render started before the
		// debounce fires never sees the old report.
		w.provider.Invalidate(name)
	}
}

func (w *Watcher) processPending() {
	defer w.wg.Done()

	interval := w.debounce / 2
	if interval < 10*time.Millisecond {
		interval = 10 * time.Millisecond
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.ctx.Done():
			return

		case <-ticker.C:
			now := time.Now()

			w.mu.Lock()
			var settled []string
			for name, changed := range w.pending {
				if now.Sub(changed) >= w.debounce {
					settled = append(settled, name)
					delete(w.pending, name)
				}
			}
			w.mu.Unlock()

			for _, name := range settled {
				// A write may land after the event that invalidated.
				w.provider.Invalidate(name)
				if w.OnChange != nil {
					w.OnChange(name)
				}
			}
		}
	}
}
