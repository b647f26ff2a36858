package dbus

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/godbus/dbus/v5"

	"github.com/jmylchreest/desknotify/internal/notification"
)

// defaultActionLabel is shown by servers that render the default action as a button.
const defaultActionLabel = "Open"

// caller is the subset of dbus.BusObject the notifier uses.
type caller interface {
	Call(method string, flags dbus.Flags, args ...any) *dbus.Call
}

// NotifierOptions are passed with every Notify call.
type NotifierOptions struct {
	AppName       string
	Icon          string
	DesktopEntry  string
	ExpireTimeout int32 // milliseconds, -1 = server default
}

// Notifier is the Linux native backend. It displays notifications through
// the org.freedesktop.Notifications server and turns its ActionInvoked and
// NotificationClosed signals into raw events for the owning toast.
type Notifier struct {
	conn   *dbus.Conn
	server caller
	bus    caller
	logger *slog.Logger

	mu      sync.RWMutex
	opts    NotifierOptions
	toasts  map[uint32]*toast
	signals chan *dbus.Signal
}

// NewNotifier creates a Notifier on conn.
func NewNotifier(conn *dbus.Conn, opts NotifierOptions, logger *slog.Logger) *Notifier {
	n := newNotifier(conn.Object(NotificationsBusName, NotificationsPath), conn.BusObject(), opts, logger)
	n.conn = conn
	return n
}

func newNotifier(server, bus caller, opts NotifierOptions, logger *slog.Logger) *Notifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Notifier{
		server: server,
		bus:    bus,
		logger: logger,
		opts:   opts,
		toasts: make(map[uint32]*toast),
	}
}

// Start subscribes to the notification server's signals.
func (n *Notifier) Start() error {
	for _, member := range []string{"ActionInvoked", "NotificationClosed"} {
		if err := n.conn.AddMatchSignal(
			dbus.WithMatchInterface(NotificationsInterface),
			dbus.WithMatchMember(member),
			dbus.WithMatchObjectPath(NotificationsPath),
		); err != nil {
			return fmt.Errorf("failed to subscribe to %s: %w", member, err)
		}
	}

	n.signals = make(chan *dbus.Signal, 32)
	n.conn.Signal(n.signals)
	go func() {
		for sig := range n.signals {
			n.dispatch(sig)
		}
	}()

	n.logger.Debug("notifier started")
	return nil
}

// Stop unsubscribes from signals.
func (n *Notifier) Stop() {
	if n.signals == nil {
		return
	}
	n.conn.RemoveSignal(n.signals)
	close(n.signals)
	n.signals = nil
}

// SetOptions replaces the Notify options, e.g. after a config reload.
func (n *Notifier) SetOptions(opts NotifierOptions) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.opts = opts
}

// IsNotificationCapable reports whether a notification server owns its bus name.
func (n *Notifier) IsNotificationCapable() bool {
	var owned bool
	err := n.bus.Call("org.freedesktop.DBus.NameHasOwner", 0, NotificationsBusName).Store(&owned)
	if err != nil {
		n.logger.Debug("NameHasOwner failed", "error", err)
		return false
	}
	return owned
}

// NewToast prepares a toast for content.
func (n *Notifier) NewToast(content notification.Content, sink notification.EventSink) notification.Toast {
	return &toast{notifier: n, content: content, sink: sink}
}

func (n *Notifier) track(id uint32, t *toast) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.toasts[id] = t
}

func (n *Notifier) untrack(id uint32) *toast {
	n.mu.Lock()
	defer n.mu.Unlock()
	t, ok := n.toasts[id]
	if !ok {
		return nil
	}
	delete(n.toasts, id)
	return t
}

// dispatch routes a notification server signal to its toast.
func (n *Notifier) dispatch(sig *dbus.Signal) {
	switch sig.Name {
	case NotificationsInterface + ".ActionInvoked":
		if len(sig.Body) < 2 {
			return
		}
		id, ok1 := sig.Body[0].(uint32)
		key, ok2 := sig.Body[1].(string)
		if !ok1 || !ok2 {
			return
		}
		t := n.untrack(id)
		if t == nil {
			return
		}
		n.logger.Debug("action invoked", "id", id, "action_key", key)
		t.emit(actionEvent(t.content.Actions, key))

	case NotificationsInterface + ".NotificationClosed":
		if len(sig.Body) < 2 {
			return
		}
		id, ok1 := sig.Body[0].(uint32)
		reason, ok2 := sig.Body[1].(uint32)
		if !ok1 || !ok2 {
			return
		}
		t := n.untrack(id)
		if t == nil {
			return
		}
		n.logger.Debug("notification closed", "id", id, "reason", CloseReason(reason).String())
		t.emit(notification.RawEvent{Type: notification.RawClosed})
	}
}

// actionEvent maps an invoked action key to a raw event. Unknown keys count
// as a click on the notification body.
func actionEvent(actions []notification.Action, key string) notification.RawEvent {
	if key != notification.DefaultActionKey {
		if idx := ActionIndex(actions, key); idx >= 0 {
			return notification.RawEvent{Type: notification.RawAction, ActionIndex: idx}
		}
	}
	return notification.RawEvent{Type: notification.RawClick}
}

// toast is a single freedesktop notification.
type toast struct {
	notifier *Notifier
	content  notification.Content
	sink     notification.EventSink

	mu sync.Mutex
	id uint32
}

func (t *toast) emit(ev notification.RawEvent) {
	if t.sink != nil {
		t.sink(ev)
	}
}

// Show calls Notify and reports RawShow once the server assigned an id.
func (t *toast) Show() error {
	t.notifier.mu.RLock()
	opts := t.notifier.opts
	t.notifier.mu.RUnlock()

	icon := opts.Icon
	if t.content.Icon != "" {
		icon = t.content.Icon
	}

	actions := withDefaultAction(t.content.Actions)

	var id uint32
	err := t.notifier.server.Call(NotificationsInterface+".Notify", 0,
		opts.AppName,
		uint32(0),
		icon,
		t.content.Title,
		t.content.Body,
		FlattenActions(actions),
		BuildHints(t.content, opts.DesktopEntry),
		opts.ExpireTimeout,
	).Store(&id)
	if err != nil {
		return fmt.Errorf("failed to call Notify: %w", err)
	}

	t.mu.Lock()
	t.id = id
	t.mu.Unlock()

	t.notifier.track(id, t)
	t.emit(notification.RawEvent{Type: notification.RawShow})
	return nil
}

// withDefaultAction makes sure a body click is reported as the "default" action.
func withDefaultAction(actions []notification.Action) []notification.Action {
	for _, a := range actions {
		if a.Key == notification.DefaultActionKey {
			return actions
		}
	}
	return append([]notification.Action{{Key: notification.DefaultActionKey, Label: defaultActionLabel}}, actions...)
}

// Close asks the server to close the notification.
func (t *toast) Close() error {
	t.mu.Lock()
	id := t.id
	t.id = 0
	t.mu.Unlock()

	if id == 0 {
		return nil
	}
	t.notifier.untrack(id)

	if err := t.notifier.server.Call(NotificationsInterface+".CloseNotification", 0, id).Err; err != nil {
		return fmt.Errorf("failed to call CloseNotification: %w", err)
	}
	return nil
}
