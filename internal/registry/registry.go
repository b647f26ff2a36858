// Package registry tracks the current notification of each conversation on
// platforms that stack notifications instead of replacing them.
package registry

import (
	"log/slog"
	"sync"

	"github.com/jmylchreest/desknotify/internal/notification"
)

// Registry maps a conversation identity key to its current notification.
type Registry struct {
	mu      sync.Mutex
	logger  *slog.Logger
	current map[string]*notification.Notification
}

// New creates an empty Registry.
func New(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		logger:  logger,
		current: make(map[string]*notification.Notification),
	}
}

// Current returns the notification registered under key.
func (r *Registry) Current(key string) (*notification.Notification, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n, ok := r.current[key]
	return n, ok
}

// SetCurrent installs n under key. Any other notification registered under
// the same key is removed and then closed outside the lock.
func (r *Registry) SetCurrent(key string, n *notification.Notification) {
	r.mu.Lock()
	old, ok := r.current[key]
	r.current[key] = n
	r.mu.Unlock()

	if !ok || old == n {
		return
	}
	r.logger.Debug("closing superseded notification", "key", key, "id", old.ID)
	if err := old.Close(); err != nil {
		r.logger.Warn("failed to close superseded notification", "key", key, "error", err)
	}
}

// Remove drops the entry for key without closing it.
func (r *Registry) Remove(key string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.current, key)
}

// Len returns the number of registered keys.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.current)
}

// CloseAll closes and removes every registered notification.
func (r *Registry) CloseAll() {
	r.mu.Lock()
	entries := r.current
	r.current = make(map[string]*notification.Notification)
	r.mu.Unlock()

	for key, n := range entries {
		if err := n.Close(); err != nil {
			r.logger.Warn("failed to close notification", "key", key, "error", err)
		}
	}
}
