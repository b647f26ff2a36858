// Package state holds the small amount of state shared between desknotify and
// desknotifyd, currently the user's Do Not Disturb override.
package state

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/adrg/xdg"
)

// DnDMode is the user's Do Not Disturb override.
type DnDMode string

const (
	// DnDAuto follows the operating system's focus state.
	DnDAuto DnDMode = "auto"
	// DnDOn suppresses notifications regardless of the operating system.
	DnDOn DnDMode = "on"
	// DnDOff shows notifications regardless of the operating system.
	DnDOff DnDMode = "off"
)

// ParseDnDMode parses a mode name.
func ParseDnDMode(s string) (DnDMode, error) {
	switch DnDMode(s) {
	case DnDAuto, DnDOn, DnDOff:
		return DnDMode(s), nil
	case "":
		return DnDAuto, nil
	default:
		return "", fmt.Errorf("invalid dnd mode %q, must be one of: auto, on, off", s)
	}
}

// DnDTransition records details about a DnD override change.
type DnDTransition struct {
	Mode      DnDMode `json:"mode"`
	Reason    string  `json:"reason"`
	Source    string  `json:"source,omitempty"` // e.g. "cli", "desknotifyd"
	Timestamp int64   `json:"timestamp"`
}

// SharedState is persisted to $XDG_STATE_HOME/desknotify/state.json.
type SharedState struct {
	DnDMode           DnDMode        `json:"dnd_mode"`
	DnDLastTransition *DnDTransition `json:"dnd_last_transition,omitempty"`

	SchemaVersion int `json:"schema_version"`
}

// CurrentSchemaVersion is the current version of the state schema.
const CurrentSchemaVersion = 1

// stateFileMutex protects concurrent access to the state file within a process.
var stateFileMutex sync.RWMutex

// Default returns a SharedState with default values.
func Default() *SharedState {
	return &SharedState{
		DnDMode:       DnDAuto,
		SchemaVersion: CurrentSchemaVersion,
	}
}

// FilePath returns the default state file path.
func FilePath() string {
	return filepath.Join(xdg.StateHome, "desknotify", "state.json")
}

// Load reads the state file at path. A missing or corrupt file yields the
// default state.
func Load(path string) (*SharedState, error) {
	stateFileMutex.RLock()
	defer stateFileMutex.RUnlock()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, fmt.Errorf("failed to read state file: %w", err)
	}

	var s SharedState
	if err := json.Unmarshal(data, &s); err != nil {
		return Default(), nil
	}
	if s.SchemaVersion == 0 {
		s.SchemaVersion = CurrentSchemaVersion
	}
	if _, err := ParseDnDMode(string(s.DnDMode)); err != nil || s.DnDMode == "" {
		s.DnDMode = DnDAuto
	}
	return &s, nil
}

// Save writes the state atomically to path.
func Save(path string, s *SharedState) error {
	stateFileMutex.Lock()
	defer stateFileMutex.Unlock()

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}
	if s.SchemaVersion == 0 {
		s.SchemaVersion = CurrentSchemaVersion
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write state file: %w", err)
	}
	return os.Rename(tmpPath, path)
}

// SetDnD updates the override and records the transition.
func (s *SharedState) SetDnD(mode DnDMode, reason, source string) {
	s.DnDMode = mode
	s.DnDLastTransition = &DnDTransition{
		Mode:      mode,
		Reason:    reason,
		Source:    source,
		Timestamp: time.Now().Unix(),
	}
}

// Override returns the forced DnD value and whether the mode forces one.
func (s *SharedState) Override() (active bool, forced bool) {
	switch s.DnDMode {
	case DnDOn:
		return true, true
	case DnDOff:
		return false, true
	default:
		return false, false
	}
}
