package dbus

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/godbus/dbus/v5"
	"github.com/godbus/dbus/v5/introspect"

	"github.com/jmylchreest/desknotify/internal/notification"
)

// Handler is the daemon side of the desknotify service.
type Handler interface {
	DisplayMention(req notification.MentionRequest)
	DisplayDownloadCompleted(fileName, path, label string)
	DisplayUpgrade(version string, onUpgrade func())
	DisplayRestartToUpgrade(version string, onUpgrade func())
	SendTestNotification()
	RegisterSurface(surfaceID, label string)
	UnregisterSurface(surfaceID string)
	Status() Status
}

// Server exports the io.github.jmylchreest.Desknotify interface.
// Only methods returning *dbus.Error are visible on the bus.
type Server struct {
	conn    *dbus.Conn
	logger  *slog.Logger
	handler Handler

	mu      sync.Mutex
	running bool
}

// NewServer creates a Server dispatching calls to handler.
func NewServer(handler Handler, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		logger:  logger,
		handler: handler,
	}
}

// Start exports the service on conn and claims the bus name.
func (s *Server) Start(conn *dbus.Conn) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return fmt.Errorf("server already running")
	}

	if err := conn.Export(s, ServicePath, ServiceInterface); err != nil {
		return fmt.Errorf("failed to export object: %w", err)
	}

	node := &introspect.Node{
		Name: ServicePath,
		Interfaces: []introspect.Interface{
			introspect.IntrospectData,
			{
				Name:    ServiceInterface,
				Methods: serviceMethods(),
				Signals: serviceSignals(),
			},
		},
	}
	if err := conn.Export(introspect.NewIntrospectable(node), ServicePath,
		"org.freedesktop.DBus.Introspectable"); err != nil {
		return fmt.Errorf("failed to export introspectable: %w", err)
	}

	reply, err := conn.RequestName(ServiceBusName, dbus.NameFlagDoNotQueue)
	if err != nil {
		return fmt.Errorf("failed to request bus name: %w", err)
	}
	if reply != dbus.RequestNameReplyPrimaryOwner {
		return fmt.Errorf("bus name %s already taken", ServiceBusName)
	}

	s.conn = conn
	s.running = true
	s.logger.Info("D-Bus service started", "interface", ServiceInterface, "path", ServicePath)
	return nil
}

// Stop releases the bus name and unexports the service.
func (s *Server) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return nil
	}
	s.running = false

	if _, err := s.conn.ReleaseName(ServiceBusName); err != nil {
		s.logger.Warn("failed to release bus name", "error", err)
	}
	_ = s.conn.Export(nil, ServicePath, ServiceInterface)
	_ = s.conn.Export(nil, ServicePath, "org.freedesktop.DBus.Introspectable")

	s.logger.Info("D-Bus service stopped")
	return nil
}

// DisplayMention shows a mention notification.
// D-Bus method: DisplayMention(sssssbsa{sv})
func (s *Server) DisplayMention(
	title string,
	body string,
	channelID string,
	teamID string,
	url string,
	silent bool,
	surfaceID string,
	data map[string]dbus.Variant,
) *dbus.Error {
	s.logger.Debug("DisplayMention called", "channel", channelID, "team", teamID, "surface", surfaceID)
	s.handler.DisplayMention(notification.MentionRequest{
		Title:     title,
		Body:      body,
		ChannelID: channelID,
		TeamID:    teamID,
		URL:       url,
		Silent:    silent,
		SurfaceID: surfaceID,
		Data:      variantsToMap(data),
	})
	return nil
}

// DisplayDownloadCompleted shows a download-complete notification.
// D-Bus method: DisplayDownloadCompleted(sss)
func (s *Server) DisplayDownloadCompleted(fileName, path, label string) *dbus.Error {
	s.logger.Debug("DisplayDownloadCompleted called", "file", fileName)
	s.handler.DisplayDownloadCompleted(fileName, path, label)
	return nil
}

// DisplayUpgrade shows the new-version notification. A click emits
// UpgradeRequested(version, false).
// D-Bus method: DisplayUpgrade(s)
func (s *Server) DisplayUpgrade(version string) *dbus.Error {
	s.logger.Debug("DisplayUpgrade called", "version", version)
	s.handler.DisplayUpgrade(version, func() {
		if err := s.EmitUpgradeRequested(version, false); err != nil {
			s.logger.Warn("failed to emit UpgradeRequested", "error", err)
		}
	})
	return nil
}

// DisplayRestartToUpgrade shows the restart-to-upgrade notification. A click
// emits UpgradeRequested(version, true).
// D-Bus method: DisplayRestartToUpgrade(s)
func (s *Server) DisplayRestartToUpgrade(version string) *dbus.Error {
	s.logger.Debug("DisplayRestartToUpgrade called", "version", version)
	s.handler.DisplayRestartToUpgrade(version, func() {
		if err := s.EmitUpgradeRequested(version, true); err != nil {
			s.logger.Warn("failed to emit UpgradeRequested", "error", err)
		}
	})
	return nil
}

// SendTestNotification shows the platform's test notification.
// D-Bus method: SendTestNotification()
func (s *Server) SendTestNotification() *dbus.Error {
	s.logger.Debug("SendTestNotification called")
	s.handler.SendTestNotification()
	return nil
}

// RegisterSurface records the label of an application surface.
// D-Bus method: RegisterSurface(ss)
func (s *Server) RegisterSurface(surfaceID, label string) *dbus.Error {
	if surfaceID == "" {
		return dbus.MakeFailedError(fmt.Errorf("surface id must not be empty"))
	}
	s.handler.RegisterSurface(surfaceID, label)
	return nil
}

// UnregisterSurface forgets an application surface.
// D-Bus method: UnregisterSurface(s)
func (s *Server) UnregisterSurface(surfaceID string) *dbus.Error {
	s.handler.UnregisterSurface(surfaceID)
	return nil
}

// GetStatus returns the daemon status as JSON.
// D-Bus method: GetStatus() -> s
func (s *Server) GetStatus() (string, *dbus.Error) {
	data, err := json.Marshal(s.handler.Status())
	if err != nil {
		return "", dbus.MakeFailedError(err)
	}
	return string(data), nil
}

// variantsToMap unwraps the values of a D-Bus dictionary.
func variantsToMap(data map[string]dbus.Variant) map[string]any {
	if len(data) == 0 {
		return nil
	}
	out := make(map[string]any, len(data))
	for k, v := range data {
		out[k] = v.Value()
	}
	return out
}

// serviceMethods returns the D-Bus method introspection data.
func serviceMethods() []introspect.Method {
	return []introspect.Method{
		{
			Name: "DisplayMention",
			Args: []introspect.Arg{
				{Name: "title", Type: "s", Direction: "in"},
				{Name: "body", Type: "s", Direction: "in"},
				{Name: "channel_id", Type: "s", Direction: "in"},
				{Name: "team_id", Type: "s", Direction: "in"},
				{Name: "url", Type: "s", Direction: "in"},
				{Name: "silent", Type: "b", Direction: "in"},
				{Name: "surface_id", Type: "s", Direction: "in"},
				{Name: "data", Type: "a{sv}", Direction: "in"},
			},
		},
		{
			Name: "DisplayDownloadCompleted",
			Args: []introspect.Arg{
				{Name: "file_name", Type: "s", Direction: "in"},
				{Name: "path", Type: "s", Direction: "in"},
				{Name: "label", Type: "s", Direction: "in"},
			},
		},
		{
			Name: "DisplayUpgrade",
			Args: []introspect.Arg{
				{Name: "version", Type: "s", Direction: "in"},
			},
		},
		{
			Name: "DisplayRestartToUpgrade",
			Args: []introspect.Arg{
				{Name: "version", Type: "s", Direction: "in"},
			},
		},
		{
			Name: "SendTestNotification",
		},
		{
			Name: "RegisterSurface",
			Args: []introspect.Arg{
				{Name: "surface_id", Type: "s", Direction: "in"},
				{Name: "label", Type: "s", Direction: "in"},
			},
		},
		{
			Name: "UnregisterSurface",
			Args: []introspect.Arg{
				{Name: "surface_id", Type: "s", Direction: "in"},
			},
		},
		{
			Name: "GetStatus",
			Args: []introspect.Arg{
				{Name: "status", Type: "s", Direction: "out"},
			},
		},
	}
}

// serviceSignals returns the D-Bus signal introspection data.
func serviceSignals() []introspect.Signal {
	return []introspect.Signal{
		{
			Name: "NotificationClicked",
			Args: []introspect.Arg{
				{Name: "surface_id", Type: "s"},
				{Name: "channel_id", Type: "s"},
				{Name: "team_id", Type: "s"},
				{Name: "url", Type: "s"},
			},
		},
		{
			Name: "PlaySound",
			Args: []introspect.Arg{
				{Name: "name", Type: "s"},
			},
		},
		{
			Name: "FlashAttention",
			Args: []introspect.Arg{
				{Name: "flash", Type: "b"},
			},
		},
		{
			Name: "SwitchContext",
			Args: []introspect.Arg{
				{Name: "source", Type: "s"},
				{Name: "context", Type: "s"},
			},
		},
		{
			Name: "UpgradeRequested",
			Args: []introspect.Arg{
				{Name: "version", Type: "s"},
				{Name: "restart", Type: "b"},
			},
		},
	}
}
