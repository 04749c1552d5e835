package watcher

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"go.trai.ch/xs/internal/core/ports"
	"go.trai.ch/zerr"
)

// Watcher reports changes of individual files.
// It watches the parent directories so that editors replacing files by rename
// are still observed.
type Watcher struct {
	fsWatcher *fsnotify.Watcher
	logger    ports.Logger

	mu      sync.Mutex
	targets map[string]struct{}
	dirs    map[string]struct{}
}

// NewWatcher creates a new file watcher.
func NewWatcher(logger ports.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, zerr.Wrap(err, "failed to create file watcher")
	}
	return &Watcher{
		fsWatcher: fsw,
		logger:    logger,
		targets:   make(map[string]struct{}),
		dirs:      make(map[string]struct{}),
	}, nil
}

// Add starts watching the file at path.
func (w *Watcher) Add(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return zerr.With(zerr.Wrap(err, "failed to resolve watched path"), "path", path)
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	w.targets[abs] = struct{}{}
	dir := filepath.Dir(abs)
	if _, ok := w.dirs[dir]; ok {
		return nil
	}
	if err := w.fsWatcher.Add(dir); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to watch directory"), "path", dir)
	}
	w.dirs[dir] = struct{}{}
	return nil
}

// Run feeds changes of the watched files into d until ctx is done or the
// watcher is closed.
func (w *Watcher) Run(ctx context.Context, d *Debouncer) error {
	defer d.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return nil
			}
			if path, ok := w.relevant(event); ok {
				d.Add(path)
			}
		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return nil
			}
			if w.logger != nil {
				w.logger.Warn(fmt.Sprintf("watcher: file system error: %v", err))
			}
		}
	}
}

// Close stops the watcher and releases all resources.
func (w *Watcher) Close() error {
	return w.fsWatcher.Close()
}

func (w *Watcher) relevant(event fsnotify.Event) (string, bool) {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
		return "", false
	}
	path := filepath.Clean(event.Name)

	w.mu.Lock()
	defer w.mu.Unlock()
	_, ok := w.targets[path]
	return path, ok
}
