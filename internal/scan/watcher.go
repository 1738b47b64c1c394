// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package scan

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/jeranaias/bookshelf-tui/internal/extract"
)

// =============================================================================
// FILE WATCHER INTERFACE
// =============================================================================

// FileWatcher reports book files that appear or change under watched roots.
type FileWatcher interface {
	// Watch starts watching for file changes
	Watch() error

	// Changes delivers debounced batches of changed book files. It is
	// closed by Close.
	Changes() <-chan []string

	// Close stops watching and releases resources
	Close() error
}

// PollInterval is how often the polling fallback rescans.
const PollInterval = 5 * time.Second

// =============================================================================
// FSNOTIFY WATCHER
// =============================================================================

// FsnotifyWatcher implements FileWatcher using fsnotify
type FsnotifyWatcher struct {
	roots    []string
	watcher  *fsnotify.Watcher
	debounce time.Duration
	logger   *slog.Logger

	mu      sync.Mutex
	pending map[string]time.Time // File path -> last change time

	out    chan []string
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewFsnotifyWatcher creates a new fsnotify-based watcher
func NewFsnotifyWatcher(roots []string, debounce time.Duration, logger *slog.Logger) (*FsnotifyWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &FsnotifyWatcher{
		roots:    roots,
		watcher:  watcher,
		debounce: debounce,
		logger:   logger,
		pending:  make(map[string]time.Time),
		out:      make(chan []string, 16),
		ctx:      ctx,
		cancel:   cancel,
	}, nil
}

// Watch starts watching for file changes
func (fw *FsnotifyWatcher) Watch() error {
	for _, root := range fw.roots {
		if err := fw.addRecursive(root); err != nil {
			return err
		}
	}

	fw.wg.Add(2)
	go fw.processEvents()
	go fw.processPending()
	return nil
}

// Changes implements FileWatcher.
func (fw *FsnotifyWatcher) Changes() <-chan []string {
	return fw.out
}

// addRecursive adds a directory and all its subdirectories to the watch list
func (fw *FsnotifyWatcher) addRecursive(dir string) error {
	if _, err := os.Stat(dir); err != nil {
		return err
	}
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // Skip errors
		}
		if !d.IsDir() {
			return nil
		}
		if path != dir && shouldIgnore(d.Name()) {
			return filepath.SkipDir
		}
		if err := fw.watcher.Add(path); err != nil {
			fw.logger.Debug("watch add failed", "path", path, "err", err)
		}
		return nil
	})
}

// processEvents processes file system events
func (fw *FsnotifyWatcher) processEvents() {
	defer fw.wg.Done()

	for {
		select {
		case <-fw.ctx.Done():
			return

		case event, ok := <-fw.watcher.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}

			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if !shouldIgnore(filepath.Base(event.Name)) {
						if err := fw.addRecursive(event.Name); err != nil {
							fw.logger.Warn("watch new directory failed", "path", event.Name, "err", err)
						}
						fw.queueExisting(event.Name)
					}
					continue
				}
			}
			fw.handleFileChange(event.Name)

		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			fw.logger.Warn("watcher error", "err", err)
		}
	}
}

// queueExisting queues the files of a directory that was moved in whole,
// since fsnotify reports only the directory itself.
func (fw *FsnotifyWatcher) queueExisting(dir string) {
	paths, err := Walk(fw.ctx, dir)
	if err != nil {
		return
	}
	for _, p := range paths {
		fw.handleFileChange(p)
	}
}

// handleFileChange handles a file change event
func (fw *FsnotifyWatcher) handleFileChange(path string) {
	if !extract.Supported(path) {
		return
	}

	fw.mu.Lock()
	fw.pending[path] = time.Now()
	fw.mu.Unlock()
}

// processPending flushes paths that have been quiet for the debounce period
func (fw *FsnotifyWatcher) processPending() {
	defer fw.wg.Done()

	ticker := time.NewTicker(tickFor(fw.debounce))
	defer ticker.Stop()

	for {
		select {
		case <-fw.ctx.Done():
			return

		case <-ticker.C:
			now := time.Now()

			fw.mu.Lock()
			var ready []string
			for path, changeTime := range fw.pending {
				if now.Sub(changeTime) >= fw.debounce {
					ready = append(ready, path)
					delete(fw.pending, path)
				}
			}
			fw.mu.Unlock()

			if len(ready) > 0 {
				slices.Sort(ready)
				if !send(fw.ctx, fw.out, ready) {
					return
				}
			}
		}
	}
}

// Close stops watching and releases resources
func (fw *FsnotifyWatcher) Close() error {
	fw.cancel()
	err := fw.watcher.Close()
	fw.wg.Wait()
	close(fw.out)
	return err
}

// =============================================================================
// POLLING WATCHER (FALLBACK)
// =============================================================================

// PollingWatcher implements FileWatcher using periodic polling
type PollingWatcher struct {
	roots    []string
	interval time.Duration
	logger   *slog.Logger

	mu    sync.Mutex
	files map[string]time.Time // File path -> mod time

	out    chan []string
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewPollingWatcher creates a new polling-based watcher
func NewPollingWatcher(roots []string, interval time.Duration, logger *slog.Logger) *PollingWatcher {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &PollingWatcher{
		roots:    roots,
		interval: interval,
		logger:   logger,
		files:    make(map[string]time.Time),
		out:      make(chan []string, 16),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Watch starts watching for file changes
func (pw *PollingWatcher) Watch() error {
	files, err := pw.scan()
	if err != nil {
		return err
	}
	pw.mu.Lock()
	pw.files = files
	pw.mu.Unlock()

	pw.wg.Add(1)
	go pw.poll()
	return nil
}

// Changes implements FileWatcher.
func (pw *PollingWatcher) Changes() <-chan []string {
	return pw.out
}

// scan records the modification time of every book file under the roots
func (pw *PollingWatcher) scan() (map[string]time.Time, error) {
	paths, err := WalkAll(pw.ctx, pw.roots)
	if err != nil {
		return nil, err
	}
	files := make(map[string]time.Time, len(paths))
	for _, p := range paths {
		if info, err := os.Stat(p); err == nil {
			files[p] = info.ModTime()
		}
	}
	return files, nil
}

// poll periodically checks for file changes
func (pw *PollingWatcher) poll() {
	defer pw.wg.Done()

	ticker := time.NewTicker(pw.interval)
	defer ticker.Stop()

	for {
		select {
		case <-pw.ctx.Done():
			return
		case <-ticker.C:
			changed := pw.checkChanges()
			if len(changed) > 0 && !send(pw.ctx, pw.out, changed) {
				return
			}
		}
	}
}

// checkChanges rescans and returns new or modified files
func (pw *PollingWatcher) checkChanges() []string {
	current, err := pw.scan()
	if err != nil {
		pw.logger.Debug("poll scan failed", "err", err)
		return nil
	}

	pw.mu.Lock()
	defer pw.mu.Unlock()

	var changed []string
	for path, modTime := range current {
		if oldTime, exists := pw.files[path]; !exists || !oldTime.Equal(modTime) {
			changed = append(changed, path)
		}
	}
	pw.files = current
	slices.Sort(changed)
	return changed
}

// Close stops watching
func (pw *PollingWatcher) Close() error {
	pw.cancel()
	pw.wg.Wait()
	close(pw.out)
	return nil
}

// =============================================================================
// WATCHER FACTORY
// =============================================================================

// Start watches roots with fsnotify, falling back to polling when fsnotify
// is unavailable or cannot watch the roots.
func Start(roots []string, debounce time.Duration, logger *slog.Logger) (FileWatcher, error) {
	fw, err := NewFsnotifyWatcher(roots, debounce, logger)
	if err == nil {
		if err = fw.Watch(); err == nil {
			return fw, nil
		}
		fw.Close()
	}
	if logger != nil {
		logger.Info("fsnotify unavailable, polling for changes", "err", err, "interval", PollInterval)
	}

	pw := NewPollingWatcher(roots, PollInterval, logger)
	if err := pw.Watch(); err != nil {
		return nil, err
	}
	return pw, nil
}

func tickFor(debounce time.Duration) time.Duration {
	tick := debounce / 2
	if tick <= 0 || tick > 100*time.Millisecond {
		tick = 100 * time.Millisecond
	}
	return tick
}

func send(ctx context.Context, out chan<- []string, batch []string) bool {
	select {
	case out <- batch:
		return true
	case <-ctx.Done():
		return false
	}
}
