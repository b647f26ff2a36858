package daemon

import (
	"log/slog"
	"maps"
	"slices"
	"sync"

	"github.com/jmylchreest/desknotify/internal/notification"
	"github.com/jmylchreest/desknotify/internal/orchestrator"
)

// Emitter sends window side effects to the host application.
type Emitter interface {
	EmitNotificationClicked(surfaceID, channelID, teamID, url string) error
	EmitPlaySound(name string) error
	EmitFlashAttention(flash bool) error
	EmitSwitchContext(source, context string) error
}

// SoundPlayer plays named sounds locally.
type SoundPlayer interface {
	HasSound(name string) bool
	PlaySound(name string) error
}

// Window is the orchestrator's window manager. Surfaces are the host
// application's views, labelled either in the config file or at runtime
// through RegisterSurface.
type Window struct {
	mu         sync.RWMutex
	logger     *slog.Logger
	emitter    Emitter
	sounds     SoundPlayer
	onSoundErr func(error)

	configured map[string]string
	registered map[string]string
}

var _ orchestrator.Window = (*Window)(nil)

// NewWindow creates a Window. sounds may be nil.
func NewWindow(emitter Emitter, sounds SoundPlayer, logger *slog.Logger) *Window {
	if logger == nil {
		logger = slog.Default()
	}
	return &Window{
		logger:     logger,
		emitter:    emitter,
		sounds:     sounds,
		configured: make(map[string]string),
		registered: make(map[string]string),
	}
}

// SetSoundErrorCallback sets the callback invoked when local playback fails.
func (w *Window) SetSoundErrorCallback(fn func(error)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onSoundErr = fn
}

// SetConfigured replaces the labels read from the config file.
func (w *Window) SetConfigured(labels map[string]string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.configured = maps.Clone(labels)
	if w.configured == nil {
		w.configured = make(map[string]string)
	}
}

// Register records the label of a surface.
func (w *Window) Register(surfaceID, label string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.registered[surfaceID] = label
	w.logger.Debug("surface registered", "surface", surfaceID, "label", label)
}

// Unregister forgets a surface.
func (w *Window) Unregister(surfaceID string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.registered, surfaceID)
	w.logger.Debug("surface unregistered", "surface", surfaceID)
}

// Surfaces returns the ids of all known surfaces, sorted.
func (w *Window) Surfaces() []string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	ids := make([]string, 0, len(w.registered)+len(w.configured))
	for id := range w.registered {
		ids = append(ids, id)
	}
	for id := range w.configured {
		if _, ok := w.registered[id]; !ok {
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)
	return ids
}

// ResolveLabelForSurface returns the registered label, then the configured
// one, or an empty string.
func (w *Window) ResolveLabelForSurface(surfaceID string) string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if label, ok := w.registered[surfaceID]; ok {
		return label
	}
	return w.configured[surfaceID]
}

// SendToActiveSurface handles signals addressed to whichever surface is
// in front. Sounds are also played locally when configured.
func (w *Window) SendToActiveSurface(signal string, payload any) {
	switch signal {
	case orchestrator.SignalPlaySound:
		name, _ := payload.(string)
		if name == "" {
			return
		}
		if err := w.emitter.EmitPlaySound(name); err != nil {
			w.logger.Warn("failed to emit PlaySound", "sound", name, "error", err)
		}
		w.playLocal(name)
	default:
		w.logger.Debug("unhandled surface signal", "signal", signal)
	}
}

func (w *Window) playLocal(name string) {
	w.mu.RLock()
	sounds, onErr := w.sounds, w.onSoundErr
	w.mu.RUnlock()

	if sounds == nil || !sounds.HasSound(name) {
		return
	}
	if err := sounds.PlaySound(name); err != nil {
		w.logger.Warn("failed to play sound", "sound", name, "error", err)
		if onErr != nil {
			onErr(err)
		}
	}
}

// SendToSurface handles signals addressed to one surface.
func (w *Window) SendToSurface(surfaceID, signal string, payload any) {
	switch signal {
	case orchestrator.SignalNotificationClicked:
		click, ok := payload.(notification.ClickPayload)
		if !ok {
			w.logger.Warn("unexpected click payload", "surface", surfaceID)
			return
		}
		if err := w.emitter.EmitNotificationClicked(surfaceID, click.ChannelID, click.TeamID, click.URL); err != nil {
			w.logger.Warn("failed to emit NotificationClicked", "surface", surfaceID, "error", err)
		}
	default:
		w.logger.Debug("unhandled surface signal", "surface", surfaceID, "signal", signal)
	}
}

// FlashAttention asks the host to flash its window.
func (w *Window) FlashAttention(flash bool) {
	if err := w.emitter.EmitFlashAttention(flash); err != nil {
		w.logger.Warn("failed to emit FlashAttention", "error", err)
	}
}

// SwitchToConversationContext asks the host to bring source forward in context.
func (w *Window) SwitchToConversationContext(source, context string) {
	if err := w.emitter.EmitSwitchContext(source, context); err != nil {
		w.logger.Warn("failed to emit SwitchContext", "source", source, "error", err)
	}
}
