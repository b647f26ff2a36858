package native

import (
	"bufio"
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/jmylchreest/desknotify/internal/notification"
)

// DefaultAppID is the AppUserModelID toasts are raised under.
const DefaultAppID = "io.github.jmylchreest.Desknotify"

const toastGroup = "desknotify"

// toastWaitTimeout bounds how long a shown toast's helper process waits for
// the user. Windows dismisses banners long before that.
const toastWaitTimeout = 15 * time.Minute

// Lines printed by the show script.
const (
	toastShownLine     = "shown"
	toastActivatedLine = "activated:"
	toastDismissedLine = "dismissed:"
	toastFailedLine    = "failed"
)

// PowerShell displays Windows toasts by loading a toast template through
// the WinRT ToastNotificationManager from powershell.exe. The helper process
// stays alive after showing and reports the toast's Activated, Dismissed and
// Failed events on stdout.
type PowerShell struct {
	logger *slog.Logger
	AppID  string
}

// NewPowerShell creates a PowerShell toast backend.
func NewPowerShell(logger *slog.Logger) *PowerShell {
	if logger == nil {
		logger = slog.Default()
	}
	return &PowerShell{logger: logger, AppID: DefaultAppID}
}

// IsNotificationCapable reports whether powershell.exe is available.
func (p *PowerShell) IsNotificationCapable() bool {
	_, err := lookPath("powershell")
	return err == nil
}

// NewToast prepares a toast for content. Each toast gets a unique tag so it
// can be removed from the action center later.
func (p *PowerShell) NewToast(content notification.Content, sink notification.EventSink) notification.Toast {
	return &windowsToast{
		backend: p,
		content: content,
		sink:    sink,
		tag:     ulid.Make().String(),
	}
}

type windowsToast struct {
	backend *PowerShell
	content notification.Content
	sink    notification.EventSink
	tag     string

	mu     sync.Mutex
	cancel context.CancelFunc
	closed bool
}

func (t *windowsToast) Show() error {
	ctx, cancel := context.WithTimeout(context.Background(), toastWaitTimeout)
	script := showScript(toastXML(t.content), t.tag, t.backend.AppID)
	out, err := startStream(ctx, "powershell", powerShellArgs(script)...)
	if err != nil {
		cancel()
		return fmt.Errorf("toast failed: %w", err)
	}

	scanner := bufio.NewScanner(out)
	if !scanner.Scan() || scanner.Text() != toastShownLine {
		cancel()
		if err := out.Close(); err != nil {
			return fmt.Errorf("toast failed: %w", err)
		}
		return errors.New("toast failed: helper exited before showing")
	}

	t.mu.Lock()
	t.cancel = cancel
	t.mu.Unlock()

	t.backend.logger.Debug("displayed notification", "backend", "powershell", "tag", t.tag)
	t.emit(notification.RawEvent{Type: notification.RawShow})

	go t.wait(scanner, out, cancel)
	return nil
}

// wait forwards the first toast event printed by the helper.
func (t *windowsToast) wait(scanner *bufio.Scanner, out io.Closer, cancel context.CancelFunc) {
	defer func() { _ = out.Close() }()
	defer cancel()

	for scanner.Scan() {
		ev, ok := toastEvent(t.content.Actions, scanner.Text())
		if !ok {
			continue
		}
		t.mu.Lock()
		closed := t.closed
		t.mu.Unlock()
		if closed {
			return
		}
		t.backend.logger.Debug("toast event", "tag", t.tag, "event", ev.Type)
		t.emit(ev)
		return
	}
}

func (t *windowsToast) emit(ev notification.RawEvent) {
	if t.sink != nil {
		t.sink(ev)
	}
}

// Close stops waiting for the user and removes the toast from the action
// center. Events arriving afterwards are dropped.
func (t *windowsToast) Close() error {
	t.mu.Lock()
	t.closed = true
	cancel := t.cancel
	t.mu.Unlock()
	if cancel != nil {
		cancel()
	}

	if err := runPowerShell(removeScript(t.tag, t.backend.AppID)); err != nil {
		return fmt.Errorf("toast removal failed: %w", err)
	}
	return nil
}

// toastEvent maps a line printed by the show script to a raw event. An
// activation carries the action's arguments; empty or unknown arguments are
// a click on the toast body.
func toastEvent(actions []notification.Action, line string) (notification.RawEvent, bool) {
	switch {
	case strings.HasPrefix(line, toastActivatedLine):
		key := strings.TrimPrefix(line, toastActivatedLine)
		if key != "" && key != notification.DefaultActionKey {
			for i, a := range actions {
				if a.Key == key {
					return notification.RawEvent{Type: notification.RawAction, ActionIndex: i}, true
				}
			}
		}
		return notification.RawEvent{Type: notification.RawClick}, true
	case strings.HasPrefix(line, toastDismissedLine):
		return notification.RawEvent{Type: notification.RawClosed}, true
	case line == toastFailedLine:
		return notification.RawEvent{Type: notification.RawFailed}, true
	default:
		return notification.RawEvent{}, false
	}
}

func powerShellArgs(script string) []string {
	return []string{"-NoProfile", "-NonInteractive", "-Command", script}
}

func runPowerShell(script string) error {
	return runCommand("powershell", powerShellArgs(script)...)
}

// toastXML returns the toast template for content. Prebuilt templates are
// used as-is.
func toastXML(content notification.Content) string {
	if content.ToastXML != "" {
		return content.ToastXML
	}

	var b bytes.Buffer
	b.WriteString(`<toast><visual><binding template="ToastGeneric">`)
	writeElement(&b, "text", content.Title)
	for _, line := range strings.Split(content.Body, "\n") {
		writeElement(&b, "text", line)
	}
	b.WriteString(`</binding></visual>`)

	if len(content.Actions) > 0 {
		b.WriteString(`<actions>`)
		for _, a := range content.Actions {
			b.WriteString(`<action content="`)
			_ = xml.EscapeText(&b, []byte(a.Label))
			b.WriteString(`" arguments="`)
			_ = xml.EscapeText(&b, []byte(a.Key))
			b.WriteString(`" />`)
		}
		b.WriteString(`</actions>`)
	}
	if content.Silent {
		b.WriteString(`<audio silent="true" />`)
	}
	b.WriteString(`</toast>`)
	return b.String()
}

func writeElement(b *bytes.Buffer, name, text string) {
	b.WriteString("<" + name + ">")
	_ = xml.EscapeText(b, []byte(text))
	b.WriteString("</" + name + ">")
}

// psQuote returns s as a single-quoted PowerShell literal.
func psQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

func showScript(template, tag, appID string) string {
	return strings.Join([]string{
		`[Windows.UI.Notifications.ToastNotificationManager, Windows.UI.Notifications, ContentType = WindowsRuntime] | Out-Null`,
		`[Windows.Data.Xml.Dom.XmlDocument, Windows.Data.Xml.Dom.XmlDocument, ContentType = WindowsRuntime] | Out-Null`,
		`$xml = New-Object Windows.Data.Xml.Dom.XmlDocument`,
		`$xml.LoadXml(` + psQuote(template) + `)`,
		`$toast = New-Object Windows.UI.Notifications.ToastNotification $xml`,
		`$toast.Tag = ` + psQuote(tag),
		`$toast.Group = ` + psQuote(toastGroup),
		`Register-ObjectEvent -InputObject $toast -EventName Activated -SourceIdentifier toast.activated | Out-Null`,
		`Register-ObjectEvent -InputObject $toast -EventName Dismissed -SourceIdentifier toast.dismissed | Out-Null`,
		`Register-ObjectEvent -InputObject $toast -EventName Failed -SourceIdentifier toast.failed | Out-Null`,
		`[Windows.UI.Notifications.ToastNotificationManager]::CreateToastNotifier(` + psQuote(appID) + `).Show($toast)`,
		`[Console]::Out.WriteLine('` + toastShownLine + `'); [Console]::Out.Flush()`,
		`$ev = Wait-Event`,
		`switch ($ev.SourceIdentifier) {`,
		`  'toast.activated' { [Console]::Out.WriteLine('` + toastActivatedLine + `' + $ev.SourceArgs[1].Arguments) }`,
		`  'toast.dismissed' { [Console]::Out.WriteLine('` + toastDismissedLine + `' + $ev.SourceArgs[1].Reason) }`,
		`  'toast.failed' { [Console]::Out.WriteLine('` + toastFailedLine + `') }`,
		`}`,
		`[Console]::Out.Flush()`,
	}, "\n")
}

func removeScript(tag, appID string) string {
	return strings.Join([]string{
		`[Windows.UI.Notifications.ToastNotificationManager, Windows.UI.Notifications, ContentType = WindowsRuntime] | Out-Null`,
		`[Windows.UI.Notifications.ToastNotificationManager]::History.Remove(` +
			psQuote(tag) + `, ` + psQuote(toastGroup) + `, ` + psQuote(appID) + `)`,
	}, "\n")
}
