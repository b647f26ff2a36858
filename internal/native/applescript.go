package native

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/jmylchreest/desknotify/internal/notification"
)

// DefaultAppleSound is played by non-silent notifications on macOS.
const DefaultAppleSound = "Glass"

// AppleScript displays notifications with osascript. macOS does not report
// clicks back to osascript, so toasts only ever emit RawShow.
type AppleScript struct {
	logger *slog.Logger
	Sound  string
}

// NewAppleScript creates an osascript backend.
func NewAppleScript(logger *slog.Logger) *AppleScript {
	if logger == nil {
		logger = slog.Default()
	}
	return &AppleScript{logger: logger, Sound: DefaultAppleSound}
}

// IsNotificationCapable reports whether osascript is available.
func (a *AppleScript) IsNotificationCapable() bool {
	_, err := lookPath("osascript")
	return err == nil
}

// NewToast prepares a toast for content.
func (a *AppleScript) NewToast(content notification.Content, sink notification.EventSink) notification.Toast {
	return &appleToast{backend: a, content: content, sink: sink}
}

type appleToast struct {
	backend *AppleScript
	content notification.Content
	sink    notification.EventSink
}

func (t *appleToast) Show() error {
	script := appleScript(t.content, t.backend.Sound)
	if err := runCommand("osascript", "-e", script); err != nil {
		return fmt.Errorf("osascript failed: %w", err)
	}
	t.backend.logger.Debug("displayed notification", "backend", "osascript", "title", t.content.Title)
	if t.sink != nil {
		t.sink(notification.RawEvent{Type: notification.RawShow})
	}
	return nil
}

// Close is a no-op; delivered macOS notifications cannot be withdrawn by osascript.
func (t *appleToast) Close() error { return nil }

// appleScript builds the display notification statement.
func appleScript(content notification.Content, sound string) string {
	var b strings.Builder
	b.WriteString("display notification ")
	b.WriteString(appleQuote(content.Body))
	b.WriteString(" with title ")
	b.WriteString(appleQuote(content.Title))
	if !content.Silent && sound != "" {
		b.WriteString(" sound name ")
		b.WriteString(appleQuote(sound))
	}
	return b.String()
}

// appleQuote returns s as an AppleScript string literal.
func appleQuote(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	return `"` + s + `"`
}
