package dbus

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/godbus/dbus/v5"

	"github.com/jmylchreest/desknotify/internal/notification"
)

// ErrDaemonNotRunning is returned when nothing owns the desknotify bus name.
var ErrDaemonNotRunning = errors.New("desknotifyd is not running")

// Client calls the desknotify service.
type Client struct {
	conn *dbus.Conn
	obj  dbus.BusObject
}

// Connect opens a private session bus connection and checks the daemon is up.
func Connect() (*Client, error) {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to session bus: %w", err)
	}

	var owned bool
	if err := conn.BusObject().Call("org.freedesktop.DBus.NameHasOwner", 0, ServiceBusName).Store(&owned); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to query bus name owner: %w", err)
	}
	if !owned {
		_ = conn.Close()
		return nil, ErrDaemonNotRunning
	}

	return &Client{
		conn: conn,
		obj:  conn.Object(ServiceBusName, ServicePath),
	}, nil
}

// Close closes the connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

func (c *Client) call(method string, args ...any) error {
	if err := c.obj.Call(ServiceInterface+"."+method, 0, args...).Err; err != nil {
		return fmt.Errorf("%s failed: %w", method, err)
	}
	return nil
}

// DisplayMention asks the daemon to show a mention.
func (c *Client) DisplayMention(req notification.MentionRequest) error {
	return c.call("DisplayMention",
		req.Title, req.Body, req.ChannelID, req.TeamID, req.URL, req.Silent, req.SurfaceID,
		mapToVariants(req.Data))
}

// DisplayDownloadCompleted asks the daemon to show a download-complete notification.
func (c *Client) DisplayDownloadCompleted(fileName, path, label string) error {
	return c.call("DisplayDownloadCompleted", fileName, path, label)
}

// DisplayUpgrade asks the daemon to show the new-version notification.
func (c *Client) DisplayUpgrade(version string) error {
	return c.call("DisplayUpgrade", version)
}

// DisplayRestartToUpgrade asks the daemon to show the restart-to-upgrade notification.
func (c *Client) DisplayRestartToUpgrade(version string) error {
	return c.call("DisplayRestartToUpgrade", version)
}

// SendTestNotification asks the daemon to show its test notification.
func (c *Client) SendTestNotification() error {
	return c.call("SendTestNotification")
}

// RegisterSurface registers a surface label.
func (c *Client) RegisterSurface(surfaceID, label string) error {
	return c.call("RegisterSurface", surfaceID, label)
}

// UnregisterSurface removes a surface.
func (c *Client) UnregisterSurface(surfaceID string) error {
	return c.call("UnregisterSurface", surfaceID)
}

// GetStatus returns the daemon status.
func (c *Client) GetStatus() (Status, error) {
	var raw string
	if err := c.obj.Call(ServiceInterface+".GetStatus", 0).Store(&raw); err != nil {
		return Status{}, fmt.Errorf("GetStatus failed: %w", err)
	}
	var status Status
	if err := json.Unmarshal([]byte(raw), &status); err != nil {
		return Status{}, fmt.Errorf("failed to decode status: %w", err)
	}
	return status, nil
}

// mapToVariants wraps values for an a{sv} argument.
func mapToVariants(data map[string]any) map[string]dbus.Variant {
	out := make(map[string]dbus.Variant, len(data))
	for k, v := range data {
		out[k] = dbus.MakeVariant(v)
	}
	return out
}
