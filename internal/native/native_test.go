package native

import (
	"bufio"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/desknotify/internal/notification"
	"github.com/jmylchreest/desknotify/internal/notification/notificationtest"
	"github.com/jmylchreest/desknotify/internal/platform"
)

type commandRecorder struct {
	calls [][]string
	err   error
}

func stubCommands(t *testing.T, err error) *commandRecorder {
	t.Helper()
	rec := &commandRecorder{err: err}
	orig := runCommand
	runCommand = func(name string, args ...string) error {
		rec.calls = append(rec.calls, append([]string{name}, args...))
		return rec.err
	}
	t.Cleanup(func() { runCommand = orig })
	return rec
}

func stubLookPath(t *testing.T, found bool) {
	t.Helper()
	orig := lookPath
	lookPath = func(file string) (string, error) {
		if found {
			return "/usr/bin/" + file, nil
		}
		return "", errors.New("not found")
	}
	t.Cleanup(func() { lookPath = orig })
}

func TestSelect(t *testing.T) {
	linux := &notificationtest.Backend{Capable: true}

	assert.IsType(t, &AppleScript{}, Select(platform.Darwin, linux, nil))
	assert.IsType(t, &PowerShell{}, Select(platform.Windows, linux, nil))
	assert.Same(t, linux, Select(platform.Linux, linux, nil))
	assert.IsType(t, Unsupported{}, Select(platform.Linux, nil, nil))
	assert.IsType(t, Unsupported{}, Select(platform.Unknown, linux, nil))
}

func TestUnsupported(t *testing.T) {
	var b Unsupported
	assert.False(t, b.IsNotificationCapable())

	toast := b.NewToast(notification.Content{}, nil)
	assert.Error(t, toast.Show())
	assert.NoError(t, toast.Close())
}

func TestAppleScript_Script(t *testing.T) {
	tests := []struct {
		name    string
		content notification.Content
		sound   string
		want    string
	}{
		{
			name:    "with sound",
			content: notification.Content{Title: "Work: Alice", Body: "hello"},
			sound:   "Glass",
			want:    `display notification "hello" with title "Work: Alice" sound name "Glass"`,
		},
		{
			name:    "silent",
			content: notification.Content{Title: "t", Body: "b", Silent: true},
			sound:   "Glass",
			want:    `display notification "b" with title "t"`,
		},
		{
			name:    "escaped",
			content: notification.Content{Title: `say "hi"`, Body: `C:\path`},
			want:    `display notification "C:\\path" with title "say \"hi\""`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, appleScript(tt.content, tt.sound))
		})
	}
}

func TestAppleScript_Show(t *testing.T) {
	rec := stubCommands(t, nil)
	var events []notification.RawEvent

	b := NewAppleScript(nil)
	toast := b.NewToast(notification.Content{Title: "t", Body: "b"}, func(ev notification.RawEvent) {
		events = append(events, ev)
	})
	require.NoError(t, toast.Show())

	require.Len(t, rec.calls, 1)
	assert.Equal(t, "osascript", rec.calls[0][0])
	assert.Equal(t, []notification.RawEvent{{Type: notification.RawShow}}, events)
	assert.NoError(t, toast.Close())
}

func TestAppleScript_ShowFailure(t *testing.T) {
	stubCommands(t, errors.New("exit status 1"))
	var events []notification.RawEvent

	toast := NewAppleScript(nil).NewToast(notification.Content{}, func(ev notification.RawEvent) {
		events = append(events, ev)
	})
	assert.Error(t, toast.Show())
	assert.Empty(t, events)
}

func TestCapability(t *testing.T) {
	stubLookPath(t, true)
	assert.True(t, NewAppleScript(nil).IsNotificationCapable())
	assert.True(t, NewPowerShell(nil).IsNotificationCapable())

	stubLookPath(t, false)
	assert.False(t, NewAppleScript(nil).IsNotificationCapable())
	assert.False(t, NewPowerShell(nil).IsNotificationCapable())
}

func TestToastXML(t *testing.T) {
	t.Run("generic", func(t *testing.T) {
		xml := toastXML(notification.Content{
			Title:   "Work",
			Body:    "Download Complete\nreport <1>.pdf",
			Silent:  true,
			Actions: []notification.Action{{Key: "sounds-good", Label: "Sounds good"}},
		})
		assert.Contains(t, xml, `<text>Work</text>`)
		assert.Contains(t, xml, `<text>Download Complete</text>`)
		assert.Contains(t, xml, `<text>report &lt;1&gt;.pdf</text>`)
		assert.Contains(t, xml, `<action content="Sounds good" arguments="sounds-good" />`)
		assert.Contains(t, xml, `<audio silent="true" />`)
	})

	t.Run("prebuilt template", func(t *testing.T) {
		content := notification.Content{Title: "ignored", ToastXML: "<toast/>"}
		assert.Equal(t, "<toast/>", toastXML(content))
	})
}

type streamRecorder struct {
	args   []string
	output string
	err    error
	ctx    context.Context
}

func stubStream(t *testing.T, output string, err error) *streamRecorder {
	t.Helper()
	rec := &streamRecorder{output: output, err: err}
	orig := startStream
	startStream = func(ctx context.Context, name string, args ...string) (io.ReadCloser, error) {
		rec.args = append([]string{name}, args...)
		rec.ctx = ctx
		if rec.err != nil {
			return nil, rec.err
		}
		return io.NopCloser(strings.NewReader(rec.output)), nil
	}
	t.Cleanup(func() { startStream = orig })
	return rec
}

func eventChannel() (chan notification.RawEvent, notification.EventSink) {
	ch := make(chan notification.RawEvent, 4)
	return ch, func(ev notification.RawEvent) { ch <- ev }
}

func TestPowerShell_ShowAndClose(t *testing.T) {
	stream := stubStream(t, "shown\n", nil)
	rec := stubCommands(t, nil)
	events, sink := eventChannel()

	b := NewPowerShell(nil)
	toast := b.NewToast(notification.Content{Title: "it's here"}, sink)
	require.NoError(t, toast.Show())
	assert.Equal(t, notification.RawEvent{Type: notification.RawShow}, <-events)

	require.NoError(t, toast.Close())

	assert.Equal(t, "powershell", stream.args[0])
	script := stream.args[len(stream.args)-1]
	assert.Contains(t, script, "it''s here", "single quotes are doubled")
	assert.Contains(t, script, `CreateToastNotifier('io.github.jmylchreest.Desknotify')`)
	assert.Contains(t, script, "-EventName Activated")
	assert.Contains(t, script, "Wait-Event")

	tag := toast.(*windowsToast).tag
	assert.Len(t, tag, 26)
	require.Len(t, rec.calls, 1)
	assert.True(t, strings.Contains(rec.calls[0][len(rec.calls[0])-1], "History.Remove('"+tag+"'"))
	assert.Error(t, stream.ctx.Err(), "closing stops the helper process")
}

func TestPowerShell_ReportsUserEvents(t *testing.T) {
	actions := []notification.Action{
		{Key: notification.DefaultActionKey, Label: "Open"},
		{Key: "sounds-good", Label: "Sounds good"},
	}

	tests := []struct {
		name   string
		output string
		want   notification.RawEvent
	}{
		{
			name:   "body click",
			output: "shown\nactivated:\n",
			want:   notification.RawEvent{Type: notification.RawClick},
		},
		{
			name:   "default button",
			output: "shown\nactivated:default\n",
			want:   notification.RawEvent{Type: notification.RawClick},
		},
		{
			name:   "action button",
			output: "shown\nactivated:sounds-good\n",
			want:   notification.RawEvent{Type: notification.RawAction, ActionIndex: 1},
		},
		{
			name:   "unknown arguments",
			output: "shown\nactivated:desknotify://replyOk\n",
			want:   notification.RawEvent{Type: notification.RawClick},
		},
		{
			name:   "dismissed",
			output: "shown\ndismissed:UserCanceled\n",
			want:   notification.RawEvent{Type: notification.RawClosed},
		},
		{
			name:   "failed",
			output: "shown\nnoise\nfailed\n",
			want:   notification.RawEvent{Type: notification.RawFailed},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stubStream(t, tt.output, nil)
			events, sink := eventChannel()

			require.NoError(t, NewPowerShell(nil).NewToast(notification.Content{Actions: actions}, sink).Show())

			assert.Equal(t, notification.RawEvent{Type: notification.RawShow}, <-events)
			select {
			case ev := <-events:
				assert.Equal(t, tt.want, ev)
			case <-time.After(time.Second):
				t.Fatal("no event after show")
			}
		})
	}
}

func TestPowerShell_ShowFailure(t *testing.T) {
	t.Run("helper did not start", func(t *testing.T) {
		stubStream(t, "", errors.New("executable not found"))
		events, sink := eventChannel()

		assert.Error(t, NewPowerShell(nil).NewToast(notification.Content{}, sink).Show())
		assert.Empty(t, events)
	})

	t.Run("helper exited before showing", func(t *testing.T) {
		stubStream(t, "", nil)
		events, sink := eventChannel()

		assert.Error(t, NewPowerShell(nil).NewToast(notification.Content{}, sink).Show())
		assert.Empty(t, events)
	})
}

func TestPowerShell_ClosedToastDropsEvents(t *testing.T) {
	stubCommands(t, nil)
	b := NewPowerShell(nil)
	events, sink := eventChannel()
	toast := b.NewToast(notification.Content{}, sink).(*windowsToast)

	require.NoError(t, toast.Close())
	out := io.NopCloser(strings.NewReader("dismissed:ApplicationHidden\n"))
	toast.wait(bufio.NewScanner(out), out, func() {})

	assert.Empty(t, events)
}
