package dbus

import (
	"strings"

	"github.com/godbus/dbus/v5"

	"github.com/jmylchreest/desknotify/internal/notification"
)

// The desknotify service.
const (
	// ServiceInterface is the desknotify interface name.
	ServiceInterface = "io.github.jmylchreest.Desknotify"
	// ServicePath is the desknotify object path.
	ServicePath = "/io/github/jmylchreest/Desknotify"
	// ServiceBusName is the bus name desknotifyd claims.
	ServiceBusName = "io.github.jmylchreest.Desknotify"
)

// The freedesktop notification server.
const (
	NotificationsInterface = "org.freedesktop.Notifications"
	NotificationsPath      = "/org/freedesktop/Notifications"
	NotificationsBusName   = "org.freedesktop.Notifications"
)

// CloseReason represents the reason for closing a notification.
// These values are defined by the freedesktop.org notification specification.
type CloseReason uint32

const (
	// CloseReasonExpired indicates the notification expired (timeout reached).
	CloseReasonExpired CloseReason = 1
	// CloseReasonDismissed indicates the user dismissed the notification.
	CloseReasonDismissed CloseReason = 2
	// CloseReasonClosed indicates the notification was closed via CloseNotification.
	CloseReasonClosed CloseReason = 3
	// CloseReasonUndefined is reserved/undefined per the freedesktop protocol.
	CloseReasonUndefined CloseReason = 4
)

// String returns the string representation of the close reason.
func (r CloseReason) String() string {
	switch r {
	case CloseReasonExpired:
		return "expired"
	case CloseReasonDismissed:
		return "dismissed"
	case CloseReasonClosed:
		return "closed"
	case CloseReasonUndefined:
		return "undefined"
	default:
		return "unknown"
	}
}

// FlattenActions converts actions to the alternating key/label array
// expected by Notify.
func FlattenActions(actions []notification.Action) []string {
	flat := make([]string, 0, len(actions)*2)
	for _, a := range actions {
		flat = append(flat, a.Key, a.Label)
	}
	return flat
}

// ActionIndex returns the index of key within actions, or -1.
func ActionIndex(actions []notification.Action, key string) int {
	for i, a := range actions {
		if a.Key == key {
			return i
		}
	}
	return -1
}

// BuildHints returns the Notify hints for content.
func BuildHints(content notification.Content, desktopEntry string) map[string]dbus.Variant {
	hints := map[string]dbus.Variant{
		"urgency": dbus.MakeVariant(byte(content.Urgency)),
	}
	if content.Category != "" {
		hints["category"] = dbus.MakeVariant(content.Category)
	}
	if content.Silent {
		hints["suppress-sound"] = dbus.MakeVariant(true)
	}
	if desktopEntry != "" {
		hints["desktop-entry"] = dbus.MakeVariant(desktopEntry)
	}
	if content.Icon != "" && isPath(content.Icon) {
		hints["image-path"] = dbus.MakeVariant(content.Icon)
	}
	return hints
}

func isPath(icon string) bool {
	return strings.HasPrefix(icon, "/") || strings.HasPrefix(icon, "file://")
}

// Status is the daemon state reported by GetStatus.
type Status struct {
	Platform      string   `json:"platform" yaml:"platform"`
	Capable       bool     `json:"capable" yaml:"capable"`
	DnDActive     bool     `json:"dnd_active" yaml:"dnd_active"`
	DnDSystem     bool     `json:"dnd_system" yaml:"dnd_system"`
	DnDMode       string   `json:"dnd_mode" yaml:"dnd_mode"`
	Surfaces      []string `json:"surfaces,omitempty" yaml:"surfaces,omitempty"`
	Shown         uint64   `json:"shown" yaml:"shown"`
	Clicked       uint64   `json:"clicked" yaml:"clicked"`
	Suppressed    uint64   `json:"suppressed" yaml:"suppressed"`
	Unsupported   uint64   `json:"unsupported" yaml:"unsupported"`
	Tracked       int      `json:"tracked" yaml:"tracked"`
	LastShownUnix int64    `json:"last_shown,omitempty" yaml:"last_shown,omitempty"`
	StartedAtUnix int64    `json:"started_at" yaml:"started_at"`
	ConfigPath    string   `json:"config_path" yaml:"config_path"`
	SoundsEnabled bool     `json:"sounds_enabled" yaml:"sounds_enabled"`
}
