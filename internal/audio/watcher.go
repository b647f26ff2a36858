package audio

import (
	"context"
	"log/slog"
	"maps"
	"os"
	"sync"
	"time"
)

// Watcher polls sound files and evicts changed ones from the player cache, so
// a replaced sound file is picked up without restarting the daemon.
type Watcher struct {
	mu       sync.RWMutex
	logger   *slog.Logger
	player   *Player
	modTimes map[string]time.Time
	interval time.Duration

	stopCh  chan struct{}
	doneCh  chan struct{}
	running bool
}

// NewWatcher creates a watcher evicting from player.
func NewWatcher(player *Player, logger *slog.Logger) *Watcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Watcher{
		logger:   logger,
		player:   player,
		modTimes: make(map[string]time.Time),
		interval: 2 * time.Second,
	}
}

// SetPollInterval sets the polling interval.
func (w *Watcher) SetPollInterval(interval time.Duration) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.interval = interval
}

// Watch adds path to the watch list.
func (w *Watcher) Watch(path string) {
	if path == "" {
		return
	}
	var mod time.Time
	if info, err := os.Stat(path); err == nil {
		mod = info.ModTime()
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.modTimes[path] = mod
}

// Reset forgets every watched path.
func (w *Watcher) Reset() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.modTimes = make(map[string]time.Time)
}

// Start begins polling until ctx is cancelled or Stop is called.
func (w *Watcher) Start(ctx context.Context) {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return
	}
	w.running = true
	w.stopCh = make(chan struct{})
	w.doneCh = make(chan struct{})
	interval := w.interval
	w.mu.Unlock()

	go w.loop(ctx, interval)
}

// Stop stops polling and waits for the loop to exit.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	close(w.stopCh)
	doneCh := w.doneCh
	w.mu.Unlock()

	<-doneCh
}

func (w *Watcher) loop(ctx context.Context, interval time.Duration) {
	defer close(w.doneCh)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case <-ticker.C:
			w.poll()
		}
	}
}

// poll evicts every watched file whose modification time moved forward.
func (w *Watcher) poll() {
	w.mu.RLock()
	paths := maps.Clone(w.modTimes)
	w.mu.RUnlock()

	for path, last := range paths {
		info, err := os.Stat(path)
		if err != nil || !info.ModTime().After(last) {
			continue
		}

		w.mu.Lock()
		w.modTimes[path] = info.ModTime()
		w.mu.Unlock()

		w.logger.Debug("sound file changed", "path", path)
		if w.player != nil {
			w.player.Invalidate(path)
		}
	}
}
