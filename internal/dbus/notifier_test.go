package dbus

import (
	"errors"
	"sync"
	"testing"

	"github.com/godbus/dbus/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/desknotify/internal/notification"
)

type recordedCall struct {
	method string
	args   []any
}

type fakeCaller struct {
	mu     sync.Mutex
	calls  []recordedCall
	nextID uint32
	owned  bool
	err    error
}

func (f *fakeCaller) Call(method string, _ dbus.Flags, args ...any) *dbus.Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, recordedCall{method: method, args: args})

	if f.err != nil {
		return &dbus.Call{Err: f.err}
	}
	switch method {
	case NotificationsInterface + ".Notify":
		f.nextID++
		return &dbus.Call{Body: []any{f.nextID}}
	case "org.freedesktop.DBus.NameHasOwner":
		return &dbus.Call{Body: []any{f.owned}}
	default:
		return &dbus.Call{}
	}
}

func (f *fakeCaller) methods() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.calls))
	for i, c := range f.calls {
		out[i] = c.method
	}
	return out
}

type eventLog struct {
	mu     sync.Mutex
	events []notification.RawEvent
}

func (l *eventLog) sink(ev notification.RawEvent) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, ev)
}

func newTestNotifier(server, bus *fakeCaller) *Notifier {
	return newNotifier(server, bus, NotifierOptions{AppName: "desknotify", ExpireTimeout: -1}, nil)
}

func signal(member string, body ...any) *dbus.Signal {
	return &dbus.Signal{Name: NotificationsInterface + "." + member, Body: body}
}

func TestNotifier_ShowEmitsShowAndTracks(t *testing.T) {
	server := &fakeCaller{}
	n := newTestNotifier(server, &fakeCaller{})
	log := &eventLog{}

	toast := n.NewToast(notification.Content{Title: "Hello", Body: "World"}, log.sink)
	require.NoError(t, toast.Show())

	assert.Equal(t, []notification.RawEvent{{Type: notification.RawShow}}, log.events)
	assert.Len(t, n.toasts, 1)

	args := server.calls[0].args
	assert.Equal(t, "desknotify", args[0])
	assert.Equal(t, "Hello", args[3])
	assert.Equal(t, "World", args[4])
	assert.Equal(t, []string{"default", "Open"}, args[5])
	assert.Equal(t, int32(-1), args[7])
}

func TestNotifier_ShowError(t *testing.T) {
	server := &fakeCaller{err: errors.New("no server")}
	n := newTestNotifier(server, &fakeCaller{})
	log := &eventLog{}

	err := n.NewToast(notification.Content{Title: "x"}, log.sink).Show()
	assert.Error(t, err)
	assert.Empty(t, log.events)
	assert.Empty(t, n.toasts)
}

func TestNotifier_DispatchRouting(t *testing.T) {
	actions := []notification.Action{{Key: "sounds-good", Label: "Sounds good"}}

	tests := []struct {
		name string
		sig  func(id uint32) *dbus.Signal
		want notification.RawEvent
	}{
		{
			name: "default action is a click",
			sig:  func(id uint32) *dbus.Signal { return signal("ActionInvoked", id, "default") },
			want: notification.RawEvent{Type: notification.RawClick},
		},
		{
			name: "named action carries its index",
			sig:  func(id uint32) *dbus.Signal { return signal("ActionInvoked", id, "sounds-good") },
			want: notification.RawEvent{Type: notification.RawAction, ActionIndex: 0},
		},
		{
			name: "unknown action is a click",
			sig:  func(id uint32) *dbus.Signal { return signal("ActionInvoked", id, "other") },
			want: notification.RawEvent{Type: notification.RawClick},
		},
		{
			name: "closed",
			sig: func(id uint32) *dbus.Signal {
				return signal("NotificationClosed", id, uint32(CloseReasonDismissed))
			},
			want: notification.RawEvent{Type: notification.RawClosed},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := newTestNotifier(&fakeCaller{}, &fakeCaller{})
			log := &eventLog{}
			require.NoError(t, n.NewToast(notification.Content{Actions: actions}, log.sink).Show())

			n.dispatch(tt.sig(1))

			require.Len(t, log.events, 2)
			assert.Equal(t, tt.want, log.events[1])
			assert.Empty(t, n.toasts, "toast is untracked after a terminal signal")
		})
	}
}

func TestNotifier_DispatchIgnoresForeignIDs(t *testing.T) {
	n := newTestNotifier(&fakeCaller{}, &fakeCaller{})
	log := &eventLog{}
	require.NoError(t, n.NewToast(notification.Content{}, log.sink).Show())

	n.dispatch(signal("ActionInvoked", uint32(42), "default"))
	n.dispatch(signal("NotificationClosed", uint32(42), uint32(1)))
	n.dispatch(signal("ActionInvoked", "malformed"))
	n.dispatch(&dbus.Signal{Name: "org.example.Other", Body: []any{uint32(1)}})

	assert.Len(t, log.events, 1)
	assert.Len(t, n.toasts, 1)
}

func TestNotifier_CloseSuppressesEcho(t *testing.T) {
	server := &fakeCaller{}
	n := newTestNotifier(server, &fakeCaller{})
	log := &eventLog{}

	toast := n.NewToast(notification.Content{}, log.sink)
	require.NoError(t, toast.Show())
	require.NoError(t, toast.Close())
	require.NoError(t, toast.Close(), "second close is a no-op")

	n.dispatch(signal("NotificationClosed", uint32(1), uint32(CloseReasonClosed)))

	assert.Len(t, log.events, 1)
	assert.Equal(t, []string{
		NotificationsInterface + ".Notify",
		NotificationsInterface + ".CloseNotification",
	}, server.methods())
}

func TestNotifier_IsNotificationCapable(t *testing.T) {
	assert.True(t, newTestNotifier(&fakeCaller{}, &fakeCaller{owned: true}).IsNotificationCapable())
	assert.False(t, newTestNotifier(&fakeCaller{}, &fakeCaller{owned: false}).IsNotificationCapable())
	assert.False(t, newTestNotifier(&fakeCaller{}, &fakeCaller{err: errors.New("bus down")}).IsNotificationCapable())
}

func TestNotifier_SetOptions(t *testing.T) {
	server := &fakeCaller{}
	n := newTestNotifier(server, &fakeCaller{})
	n.SetOptions(NotifierOptions{AppName: "renamed", Icon: "chat", ExpireTimeout: 5000})

	require.NoError(t, n.NewToast(notification.Content{}, nil).Show())
	args := server.calls[0].args
	assert.Equal(t, "renamed", args[0])
	assert.Equal(t, "chat", args[2])
	assert.Equal(t, int32(5000), args[7])
}

func TestFileManager_RevealFile(t *testing.T) {
	obj := &fakeCaller{}
	fm := &FileManager{obj: obj}

	require.NoError(t, fm.RevealFile("/home/user/Downloads/report 1.pdf"))
	require.Len(t, obj.calls, 1)
	assert.Equal(t, "org.freedesktop.FileManager1.ShowItems", obj.calls[0].method)
	assert.Equal(t, []string{"file:///home/user/Downloads/report%201.pdf"}, obj.calls[0].args[0])
}

func TestNotifier_KeepsExistingDefaultAction(t *testing.T) {
	server := &fakeCaller{}
	n := newTestNotifier(server, &fakeCaller{})

	content := notification.Content{Actions: []notification.Action{{Key: notification.DefaultActionKey, Label: "Show in folder"}}}
	require.NoError(t, n.NewToast(content, (&eventLog{}).sink).Show())

	assert.Equal(t, []string{"default", "Show in folder"}, server.calls[0].args[5])
}
