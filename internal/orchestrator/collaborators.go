package orchestrator

// Signals sent to application surfaces.
const (
	// SignalPlaySound asks the active surface to play a named sound.
	SignalPlaySound = "play-sound"
	// SignalNotificationClicked tells a surface one of its mentions was clicked.
	SignalNotificationClicked = "notification-clicked"
)

// ContextMessaging is the conversation context a mention click switches to.
const ContextMessaging = "messaging"

// Gate reports whether notifications are suppressed.
type Gate interface {
	IsActive() bool
}

// Window is the application's window manager.
type Window interface {
	// ResolveLabelForSurface returns the human-readable source name of a
	// surface, or an empty string when it is unknown.
	ResolveLabelForSurface(surfaceID string) string
	SendToActiveSurface(signal string, payload any)
	SendToSurface(surfaceID, signal string, payload any)
	FlashAttention(flash bool)
	SwitchToConversationContext(source, context string)
}

// Shell reveals files in the desktop's file manager.
type Shell interface {
	RevealFile(path string) error
}

type nopGate struct{}

func (nopGate) IsActive() bool { return false }

type nopWindow struct{}

func (nopWindow) ResolveLabelForSurface(string) string { return "" }
func (nopWindow) SendToActiveSurface(string, any) {}
func (nopWindow) SendToSurface(string, string, any) {}
func (nopWindow) FlashAttention(bool) {}
func (nopWindow) SwitchToConversationContext(string, string) {}

type nopShell struct{}

func (nopShell) RevealFile(string) error { return nil }
