package daemon

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// StateWatcher watches the shared state file so Do Not Disturb changes made
// by the CLI reach the running daemon.
type StateWatcher struct {
	mu     sync.Mutex
	logger *slog.Logger
	path   string

	watcher  *fsnotify.Watcher
	onChange func()

	stop    chan struct{}
	exited  chan struct{}
	running bool
}

// NewStateWatcher creates a watcher for the state file at path.
func NewStateWatcher(path string, logger *slog.Logger) *StateWatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &StateWatcher{logger: logger, path: path}
}

// SetChangeCallback sets the callback invoked after the state file is written.
func (w *StateWatcher) SetChangeCallback(callback func()) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onChange = callback
}

// Start watches the state file's directory, creating it when missing. It
// stops when ctx is cancelled or Stop is called.
func (w *StateWatcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		return nil
	}

	// The CLI saves through a rename, so the directory is watched.
	dir := filepath.Dir(w.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	if err := fw.Add(dir); err != nil {
		_ = fw.Close()
		return fmt.Errorf("failed to watch state directory: %w", err)
	}

	w.watcher = fw
	w.stop = make(chan struct{})
	w.exited = make(chan struct{})
	w.running = true
	go w.watch(ctx, fw, w.stop, w.exited)

	w.logger.Debug("state watcher started", "path", w.path)
	return nil
}

func (w *StateWatcher) watch(ctx context.Context, fw *fsnotify.Watcher, stop, exited chan struct{}) {
	defer close(exited)
	filename := filepath.Base(w.path)

	for {
		select {
		case event, ok := <-fw.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != filename {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				w.changed()
			}

		case err, ok := <-fw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("state watcher error", "error", err)

		case <-ctx.Done():
			return
		case <-stop:
			return
		}
	}
}

func (w *StateWatcher) changed() {
	w.mu.Lock()
	callback := w.onChange
	w.mu.Unlock()

	w.logger.Debug("state file changed", "path", w.path)
	if callback != nil {
		callback()
	}
}

// Stop stops watching and waits for the watch loop to exit.
func (w *StateWatcher) Stop() error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = false
	close(w.stop)
	exited, fw := w.exited, w.watcher
	w.mu.Unlock()

	<-exited
	w.logger.Debug("state watcher stopped")
	return fw.Close()
}
