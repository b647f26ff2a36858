// Package shell reveals downloaded files in the desktop's file manager.
package shell

import (
	"fmt"
	"log/slog"
	"os/exec"
	"path/filepath"

	"github.com/jmylchreest/desknotify/internal/platform"
)

// startCommand launches a helper without waiting for it. Tests replace it.
var startCommand = func(name string, args ...string) error {
	return exec.Command(name, args...).Start()
}

// Revealer reveals a file through a desktop service.
type Revealer interface {
	RevealFile(path string) error
}

// Shell reveals files using the host's file manager.
type Shell struct {
	platform    platform.Platform
	fileManager Revealer
	logger      *slog.Logger
}

// New creates a Shell for p. fileManager is tried first on Linux and may be nil.
func New(p platform.Platform, fileManager Revealer, logger *slog.Logger) *Shell {
	if logger == nil {
		logger = slog.Default()
	}
	return &Shell{platform: p, fileManager: fileManager, logger: logger}
}

// RevealFile opens the folder containing path with the file selected where
// the platform supports it.
func (s *Shell) RevealFile(path string) error {
	path = filepath.Clean(path)

	switch s.platform {
	case platform.Darwin:
		return run("open", "-R", path)
	case platform.Windows:
		return run("explorer", "/select,"+path)
	case platform.Linux:
		if s.fileManager != nil {
			err := s.fileManager.RevealFile(path)
			if err == nil {
				return nil
			}
			s.logger.Debug("file manager reveal failed, opening folder", "error", err)
		}
		return run("xdg-open", filepath.Dir(path))
	default:
		return fmt.Errorf("revealing files is not supported on %s", s.platform)
	}
}

func run(name string, args ...string) error {
	if err := startCommand(name, args...); err != nil {
		return fmt.Errorf("failed to start %s: %w", name, err)
	}
	return nil
}
