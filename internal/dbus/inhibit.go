package dbus

import (
	"context"
	"time"

	"github.com/godbus/dbus/v5"
)

// inhibitTimeout bounds the Inhibited property read so a stalled
// notification server cannot hold up dispatch.
var inhibitTimeout = 2 * time.Second

type contextCaller interface {
	CallWithContext(ctx context.Context, method string, flags dbus.Flags, args ...any) *dbus.Call
}

// InhibitedProbe returns a probe reading the notification server's Inhibited
// property. Servers without the property are treated as not inhibited.
func InhibitedProbe(conn *dbus.Conn) func() bool {
	return inhibitedProbe(conn.Object(NotificationsBusName, NotificationsPath))
}

func inhibitedProbe(obj contextCaller) func() bool {
	return func() bool {
		ctx, cancel := context.WithTimeout(context.Background(), inhibitTimeout)
		defer cancel()

		var v dbus.Variant
		err := obj.CallWithContext(ctx, "org.freedesktop.DBus.Properties.Get", 0,
			NotificationsInterface, "Inhibited").Store(&v)
		if err != nil {
			return false
		}
		inhibited, _ := v.Value().(bool)
		return inhibited
	}
}
