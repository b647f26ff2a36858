package notification

// Urgency levels matching the freedesktop notification spec.
type Urgency byte

const (
	UrgencyLow      Urgency = 0
	UrgencyNormal   Urgency = 1
	UrgencyCritical Urgency = 2
)

// String returns the human-readable urgency name.
func (u Urgency) String() string {
	switch u {
	case UrgencyLow:
		return "low"
	case UrgencyCritical:
		return "critical"
	default:
		return "normal"
	}
}

// DefaultActionKey is the action invoked when the notification body itself is clicked.
const DefaultActionKey = "default"

// Action is an interactive button on a notification.
type Action struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}

// Content is everything the native primitive needs to render a notification.
type Content struct {
	Title    string
	Body     string
	Silent   bool
	Icon     string
	Category string
	Urgency  Urgency
	Actions  []Action

	// ToastXML, when set, replaces Title/Body on backends that understand
	// Windows toast templates.
	ToastXML string
}

// RawEventType is an event reported by a native backend.
type RawEventType int

const (
	// RawShow is reported once the notification is on screen.
	RawShow RawEventType = iota
	// RawClick is reported when the notification body is activated.
	RawClick
	// RawAction is reported when an action button is activated.
	RawAction
	// RawClosed is reported when the notification went away without activation.
	RawClosed
	// RawFailed is reported when the backend could not display the notification.
	RawFailed
)

// String returns the event name.
func (t RawEventType) String() string {
	switch t {
	case RawShow:
		return "show"
	case RawClick:
		return "click"
	case RawAction:
		return "action"
	case RawClosed:
		return "closed"
	case RawFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// RawEvent is a single native lifecycle event.
type RawEvent struct {
	Type RawEventType
	// ActionIndex is the index into Content.Actions for RawAction events.
	ActionIndex int
}

// EventSink receives raw events for one toast.
type EventSink func(ev RawEvent)

// Toast is a native notification handle.
type Toast interface {
	// Show displays the toast. Backends report RawShow through the sink once
	// the toast is visible, which may happen before Show returns.
	Show() error
	// Close dismisses the toast.
	Close() error
}

// Backend is the native show primitive of the host platform.
type Backend interface {
	// IsNotificationCapable reports whether the host can display notifications at all.
	IsNotificationCapable() bool
	// NewToast prepares a toast; nothing is displayed until Show is called.
	NewToast(content Content, sink EventSink) Toast
}
