package notification

import (
	"crypto/rand"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// Kind identifies a notification variant.
type Kind string

const (
	KindMention          Kind = "mention"
	KindDownloadComplete Kind = "download-complete"
	KindNewVersion       Kind = "upgrade-available"
	KindRestartToUpgrade Kind = "upgrade-now"
	KindTest             Kind = "test"
)

// State is the lifecycle state of a Notification.
type State int

const (
	// StateCreated means Show has not displayed the notification yet.
	StateCreated State = iota
	// StateShown means the notification is on screen.
	StateShown
	// StateClicked means the user activated the notification. Terminal.
	StateClicked
	// StateClosed means the notification was closed, superseded, dismissed
	// or failed to display. Terminal.
	StateClosed
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StateShown:
		return "shown"
	case StateClicked:
		return "clicked"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further semantic events can fire.
func (s State) Terminal() bool {
	return s == StateClicked || s == StateClosed
}

// Lifecycle errors.
var (
	ErrAlreadyShown = errors.New("notification already shown")
	ErrClosed       = errors.New("notification closed")
	ErrNoBackend    = errors.New("no notification backend")
)

// Notification is one notification and its lifecycle.
type Notification struct {
	ID        string
	Kind      Kind
	Title     string
	Body      string
	Silent    bool
	Data      map[string]any
	Key       string // conversation identity key, mention only
	Content   Content
	CreatedAt time.Time

	sound   string
	backend Backend

	mu        sync.Mutex
	state     State
	toast     Toast
	dismissed bool
	onShow    func()
	onClick   func()
	onAction  func(index int)
}

func newNotification(backend Backend, kind Kind, content Content) *Notification {
	now := time.Now()
	n := &Notification{
		Kind:      kind,
		Title:     content.Title,
		Body:      content.Body,
		Silent:    content.Silent,
		Content:   content,
		CreatedAt: now,
		backend:   backend,
	}
	if id, err := ulid.New(ulid.Timestamp(now), rand.Reader); err == nil {
		n.ID = id.String()
	}
	return n
}

// State returns the current lifecycle state.
func (n *Notification) State() State {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.state
}

// OnShow sets the handler fired once the notification is on screen.
func (n *Notification) OnShow(fn func()) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.onShow = fn
}

// OnClick sets the handler fired when the user activates the notification.
func (n *Notification) OnClick(fn func()) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.onClick = fn
}

// OnAction sets the handler fired when an action button is activated.
// Without one, action activations are reported through OnClick.
func (n *Notification) OnAction(fn func(index int)) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.onAction = fn
}

// NotificationSound returns the sound to play alongside the notification,
// or an empty string when the native primitive takes care of it.
func (n *Notification) NotificationSound() string {
	return n.sound
}

// Show hands the notification to the native backend.
func (n *Notification) Show() error {
	n.mu.Lock()
	if n.state == StateClosed {
		n.mu.Unlock()
		return ErrClosed
	}
	if n.toast != nil || n.state != StateCreated {
		n.mu.Unlock()
		return ErrAlreadyShown
	}
	if n.backend == nil {
		n.state = StateClosed
		n.mu.Unlock()
		return ErrNoBackend
	}
	toast := n.backend.NewToast(n.Content, n.handleRaw)
	n.toast = toast
	n.mu.Unlock()

	if err := toast.Show(); err != nil {
		n.mu.Lock()
		n.state = StateClosed
		n.mu.Unlock()
		return fmt.Errorf("failed to show %s notification: %w", n.Kind, err)
	}
	return nil
}

// Close dismisses the notification. Events arriving afterwards are dropped.
func (n *Notification) Close() error {
	n.mu.Lock()
	if !n.state.Terminal() {
		n.state = StateClosed
	}
	toast := n.toast
	already := n.dismissed
	n.dismissed = true
	n.onShow, n.onClick, n.onAction = nil, nil, nil
	n.mu.Unlock()

	if toast == nil || already {
		return nil
	}
	if err := toast.Close(); err != nil {
		return fmt.Errorf("failed to close %s notification: %w", n.Kind, err)
	}
	return nil
}

// handleRaw translates native events into semantic ones.
func (n *Notification) handleRaw(ev RawEvent) {
	var fire []func()

	n.mu.Lock()
	switch ev.Type {
	case RawShow:
		if n.state == StateCreated {
			fire = append(fire, n.markShownLocked()...)
		}
	case RawClick, RawAction:
		if n.state == StateCreated {
			// A click implies the notification was shown.
			fire = append(fire, n.markShownLocked()...)
		}
		if n.state != StateShown {
			break
		}
		n.state = StateClicked
		if ev.Type == RawAction && n.onAction != nil {
			fn, idx := n.onAction, ev.ActionIndex
			fire = append(fire, func() { fn(idx) })
		} else if n.onClick != nil {
			fire = append(fire, n.onClick)
		}
		n.onClick, n.onAction = nil, nil
	case RawClosed, RawFailed:
		if !n.state.Terminal() {
			n.state = StateClosed
		}
	}
	n.mu.Unlock()

	for _, fn := range fire {
		fn()
	}
}

func (n *Notification) markShownLocked() []func() {
	n.state = StateShown
	fn := n.onShow
	n.onShow = nil
	if fn == nil {
		return nil
	}
	return []func(){fn}
}
