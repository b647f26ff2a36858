package daemon

import (
	"log/slog"
	"sync"
	"time"

	"github.com/jmylchreest/desknotify/internal/notification"
)

// NotificationLevel indicates the urgency/severity of an internal notification.
type NotificationLevel int

const (
	// NotificationLevelInfo is for informational messages (low urgency).
	NotificationLevelInfo NotificationLevel = iota
	// NotificationLevelWarning is for warning messages (normal urgency).
	NotificationLevelWarning
	// NotificationLevelError is for error messages (critical urgency).
	NotificationLevelError
)

// InternalNotifier reports desknotifyd's own events through the native
// backend. Repeats of the same key are rate limited.
type InternalNotifier struct {
	mu     sync.Mutex
	logger *slog.Logger

	backend notification.Backend

	lastNotifyTime map[string]time.Time
	minInterval    time.Duration

	enabled bool
}

// NewInternalNotifier creates an InternalNotifier showing through backend.
func NewInternalNotifier(backend notification.Backend, logger *slog.Logger) *InternalNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &InternalNotifier{
		logger:         logger,
		backend:        backend,
		lastNotifyTime: make(map[string]time.Time),
		minInterval:    5 * time.Second,
		enabled:        true,
	}
}

// SetEnabled enables or disables internal notifications.
func (n *InternalNotifier) SetEnabled(enabled bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.enabled = enabled
}

// SetMinInterval sets the minimum interval between duplicate notifications.
func (n *InternalNotifier) SetMinInterval(interval time.Duration) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.minInterval = interval
}

// Notify shows an internal notification unless key was used within the
// minimum interval.
func (n *InternalNotifier) Notify(key, summary, body string, level NotificationLevel) {
	n.mu.Lock()
	if !n.enabled || n.backend == nil {
		n.mu.Unlock()
		return
	}
	if last, ok := n.lastNotifyTime[key]; ok && time.Since(last) < n.minInterval {
		n.mu.Unlock()
		n.logger.Debug("internal notification rate-limited", "key", key, "summary", summary)
		return
	}
	n.lastNotifyTime[key] = time.Now()
	backend := n.backend
	n.mu.Unlock()

	if !backend.IsNotificationCapable() {
		return
	}

	content := notification.Content{
		Title:    summary,
		Body:     body,
		Silent:   true,
		Category: "device",
	}
	switch level {
	case NotificationLevelInfo:
		content.Urgency = notification.UrgencyLow
		content.Icon = "dialog-information"
	case NotificationLevelWarning:
		content.Urgency = notification.UrgencyNormal
		content.Icon = "dialog-warning"
	case NotificationLevelError:
		content.Urgency = notification.UrgencyCritical
		content.Icon = "dialog-error"
	}

	n.logger.Debug("sending internal notification", "key", key, "summary", summary, "level", level)
	if err := backend.NewToast(content, nil).Show(); err != nil {
		n.logger.Warn("failed to show internal notification", "key", key, "error", err)
	}
}

// NotifyConfigReloaded reports a successful config reload.
func (n *InternalNotifier) NotifyConfigReloaded() {
	n.Notify(
		"config-reload",
		"Configuration Reloaded",
		"desknotifyd configuration has been successfully reloaded.",
		NotificationLevelInfo,
	)
}

// NotifyConfigError reports a config file that failed validation.
func (n *InternalNotifier) NotifyConfigError(err error) {
	n.Notify(
		"config-error",
		"Configuration Error",
		"Failed to reload configuration: "+err.Error(),
		NotificationLevelWarning,
	)
}

// NotifyDnDChanged reports a Do Not Disturb mode change.
func (n *InternalNotifier) NotifyDnDChanged(mode, reason string) {
	var summary, body string
	switch mode {
	case "on":
		summary = "Do Not Disturb Enabled"
		body = "Notifications will be suppressed."
	case "off":
		summary = "Do Not Disturb Disabled"
		body = "Notifications will now be displayed."
	default:
		summary = "Do Not Disturb Automatic"
		body = "Following the system focus setting."
	}
	if reason != "" {
		body += " (" + reason + ")"
	}
	n.Notify("dnd-change", summary, body, NotificationLevelInfo)
}

// NotifyAudioError reports a failed sound playback.
func (n *InternalNotifier) NotifyAudioError(err error) {
	n.Notify(
		"audio-error",
		"Audio Error",
		"Failed to play notification sound: "+err.Error(),
		NotificationLevelWarning,
	)
}
