// Package notificationtest provides an in-memory notification.Backend for tests.
package notificationtest

import (
	"errors"
	"sync"

	"github.com/jmylchreest/desknotify/internal/notification"
)

// ErrShowFailed is returned by toasts of a backend with FailShow set.
var ErrShowFailed = errors.New("show failed")

// Backend records every toast it creates.
type Backend struct {
	mu sync.Mutex

	// Capable is returned by IsNotificationCapable.
	Capable bool
	// FailShow makes every Show call fail.
	FailShow bool
	// ManualShow stops Show from reporting RawShow; call Toast.Emit instead.
	ManualShow bool
	// OnClose, when set, runs inside every Close call.
	OnClose func(t *Toast)

	toasts []*Toast
	log    []string
}

// NewBackend returns a capable backend that reports RawShow on Show.
func NewBackend() *Backend {
	return &Backend{Capable: true}
}

// IsNotificationCapable implements notification.Backend.
func (b *Backend) IsNotificationCapable() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.Capable
}

// NewToast implements notification.Backend.
func (b *Backend) NewToast(content notification.Content, sink notification.EventSink) notification.Toast {
	b.mu.Lock()
	defer b.mu.Unlock()
	t := &Toast{backend: b, Content: content, sink: sink}
	b.toasts = append(b.toasts, t)
	return t
}

// Toasts returns all toasts created so far, in creation order.
func (b *Backend) Toasts() []*Toast {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]*Toast, len(b.toasts))
	copy(out, b.toasts)
	return out
}

// Live returns the toasts that were shown and not closed.
func (b *Backend) Live() []*Toast {
	var live []*Toast
	for _, t := range b.Toasts() {
		if t.Shown() && !t.Closed() {
			live = append(live, t)
		}
	}
	return live
}

// Log returns the ordered list of native calls, e.g. "show:Title" or "close:Title".
func (b *Backend) Log() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]string, len(b.log))
	copy(out, b.log)
	return out
}

func (b *Backend) record(entry string) {
	b.mu.Lock()
	b.log = append(b.log, entry)
	b.mu.Unlock()
}

// Toast is a recorded native toast.
type Toast struct {
	backend *Backend
	Content notification.Content
	sink    notification.EventSink

	mu     sync.Mutex
	shown  bool
	closed bool
}

// Show implements notification.Toast.
func (t *Toast) Show() error {
	t.backend.mu.Lock()
	fail, manual := t.backend.FailShow, t.backend.ManualShow
	t.backend.mu.Unlock()

	if fail {
		return ErrShowFailed
	}
	t.mu.Lock()
	t.shown = true
	t.mu.Unlock()
	t.backend.record("show:" + t.Content.Title)

	if !manual {
		t.sink(notification.RawEvent{Type: notification.RawShow})
	}
	return nil
}

// Close implements notification.Toast.
func (t *Toast) Close() error {
	t.mu.Lock()
	t.closed = true
	t.mu.Unlock()
	t.backend.record("close:" + t.Content.Title)

	t.backend.mu.Lock()
	onClose := t.backend.OnClose
	t.backend.mu.Unlock()
	if onClose != nil {
		onClose(t)
	}
	return nil
}

// Shown reports whether Show succeeded.
func (t *Toast) Shown() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.shown
}

// Closed reports whether Close was called.
func (t *Toast) Closed() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.closed
}

// Emit delivers a raw event as the platform would.
func (t *Toast) Emit(typ notification.RawEventType) {
	t.sink(notification.RawEvent{Type: typ})
}

// Click delivers a body click.
func (t *Toast) Click() {
	t.Emit(notification.RawClick)
}

// Action delivers an action-button activation.
func (t *Toast) Action(index int) {
	t.sink(notification.RawEvent{Type: notification.RawAction, ActionIndex: index})
}
