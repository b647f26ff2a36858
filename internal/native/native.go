package native

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os/exec"
	"time"

	"github.com/jmylchreest/desknotify/internal/notification"
	"github.com/jmylchreest/desknotify/internal/platform"
)

var errUnsupported = errors.New("notifications are not supported on this host")

// commandTimeout bounds every helper process.
const commandTimeout = 10 * time.Second

// runCommand runs a helper process. Tests replace it.
var runCommand = func(name string, args ...string) error {
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()
	return exec.CommandContext(ctx, name, args...).Run()
}

// startStream starts a long-lived helper process and returns its stdout.
// Closing the reader waits for the process; cancelling ctx kills it. Tests
// replace it.
var startStream = func(ctx context.Context, name string, args ...string) (io.ReadCloser, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	out, err := cmd.StdoutPipe()
	if err != nil {
		return nil, err
	}
	if err := cmd.Start(); err != nil {
		return nil, err
	}
	return &processOutput{ReadCloser: out, cmd: cmd}, nil
}

type processOutput struct {
	io.ReadCloser
	cmd *exec.Cmd
}

func (p *processOutput) Close() error {
	return p.cmd.Wait()
}

// lookPath is exec.LookPath. Tests replace it.
var lookPath = exec.LookPath

// Select returns the backend for p. linux is used for Linux hosts; it is
// normally the freedesktop notifier from the dbus package.
func Select(p platform.Platform, linux notification.Backend, logger *slog.Logger) notification.Backend {
	if logger == nil {
		logger = slog.Default()
	}
	switch p {
	case platform.Darwin:
		return NewAppleScript(logger)
	case platform.Windows:
		return NewPowerShell(logger)
	case platform.Linux:
		if linux != nil {
			return linux
		}
	}
	logger.Warn("no notification backend for platform", "platform", p)
	return Unsupported{}
}

// Unsupported is the backend of hosts that cannot display notifications.
type Unsupported struct{}

// IsNotificationCapable always reports false.
func (Unsupported) IsNotificationCapable() bool { return false }

// NewToast returns a toast that never shows.
func (Unsupported) NewToast(notification.Content, notification.EventSink) notification.Toast {
	return unsupportedToast{}
}

type unsupportedToast struct{}

func (unsupportedToast) Show() error  { return errUnsupported }
func (unsupportedToast) Close() error { return nil }
