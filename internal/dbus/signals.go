package dbus

import (
	"fmt"
)

func (s *Server) emit(name string, values ...any) error {
	s.mu.Lock()
	conn, running := s.conn, s.running
	s.mu.Unlock()

	if !running || conn == nil {
		return fmt.Errorf("not connected to D-Bus")
	}
	if err := conn.Emit(ServicePath, ServiceInterface+"."+name, values...); err != nil {
		return fmt.Errorf("failed to emit %s signal: %w", name, err)
	}
	return nil
}

// EmitNotificationClicked tells the host a mention from surfaceID was clicked.
func (s *Server) EmitNotificationClicked(surfaceID, channelID, teamID, url string) error {
	if err := s.emit("NotificationClicked", surfaceID, channelID, teamID, url); err != nil {
		return err
	}
	s.logger.Debug("emitted NotificationClicked signal", "surface", surfaceID, "channel", channelID)
	return nil
}

// EmitPlaySound asks the active surface to play a named sound.
func (s *Server) EmitPlaySound(name string) error {
	if err := s.emit("PlaySound", name); err != nil {
		return err
	}
	s.logger.Debug("emitted PlaySound signal", "sound", name)
	return nil
}

// EmitFlashAttention asks the host to flash (or stop flashing) its window.
func (s *Server) EmitFlashAttention(flash bool) error {
	if err := s.emit("FlashAttention", flash); err != nil {
		return err
	}
	s.logger.Debug("emitted FlashAttention signal", "flash", flash)
	return nil
}

// EmitSwitchContext asks the host to show a source in the given context.
func (s *Server) EmitSwitchContext(source, context string) error {
	if err := s.emit("SwitchContext", source, context); err != nil {
		return err
	}
	s.logger.Debug("emitted SwitchContext signal", "source", source, "context", context)
	return nil
}

// EmitUpgradeRequested tells the host the user accepted an upgrade.
func (s *Server) EmitUpgradeRequested(version string, restart bool) error {
	if err := s.emit("UpgradeRequested", version, restart); err != nil {
		return err
	}
	s.logger.Debug("emitted UpgradeRequested signal", "version", version, "restart", restart)
	return nil
}
