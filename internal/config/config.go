// Package config handles configuration file loading and parsing.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/pelletier/go-toml/v2"

	"github.com/jmylchreest/desknotify/internal/platform"
	"github.com/jmylchreest/desknotify/internal/state"
)

// Default configuration values.
const (
	DefaultAppName  = "desknotify"
	DefaultVolume   = 80
	DefaultLogLevel = "info"
	PlatformAuto    = "auto"
)

// Duration is a time.Duration that can be unmarshaled from human-readable strings.
// Supports formats like "5s", "1m", "1h30m", or integer milliseconds.
// A value of "0" or 0 leaves expiry to the notification server.
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler for TOML parsing.
func (d *Duration) UnmarshalText(text []byte) error {
	s := string(text)

	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		*d = Duration(time.Duration(ms) * time.Millisecond)
		return nil
	}

	dur, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: must be like '5s', '1m', '1h30m' or milliseconds: %w", s, err)
	}
	*d = Duration(dur)
	return nil
}

// MarshalText implements encoding.TextMarshaler for TOML output.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Milliseconds returns the duration in milliseconds.
func (d Duration) Milliseconds() int32 {
	return int32(time.Duration(d).Milliseconds())
}

// Duration returns the underlying time.Duration.
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// Config is the configuration for desknotifyd.
// Loaded from ~/.config/desknotify/desknotifyd.toml
type Config struct {
	Notifications NotificationsConfig `toml:"notifications"`
	Audio         AudioConfig         `toml:"audio"`
	DnD           DnDConfig           `toml:"dnd"`
	Log           LogConfig           `toml:"log"`

	// Surfaces maps surface ids to the label shown in front of mention titles.
	// Surfaces registered over D-Bus take precedence.
	Surfaces map[string]string `toml:"surfaces"`
}

// NotificationsConfig contains settings passed to the native primitive.
type NotificationsConfig struct {
	AppName             string   `toml:"app_name"`
	Icon                string   `toml:"icon"`                  // Icon name or path
	ExpireTimeout       Duration `toml:"expire_timeout"`        // 0 = server default
	DefaultMentionSound string   `toml:"default_mention_sound"` // Played when a mention names no sound
	Platform            string   `toml:"platform"`              // "auto", "windows", "darwin", "linux"
}

// AudioConfig contains local sound playback settings.
type AudioConfig struct {
	Enabled bool              `toml:"enabled"`
	Volume  int               `toml:"volume"` // 0-100
	Sounds  map[string]string `toml:"sounds"` // sound name -> file path
}

// DnDConfig contains Do Not Disturb settings.
type DnDConfig struct {
	RespectSystem bool   `toml:"respect_system"` // Honour the OS focus state
	StatePath     string `toml:"state_path"`     // Empty = $XDG_STATE_HOME/desknotify/state.json
}

// LogConfig contains logging settings.
type LogConfig struct {
	Level string `toml:"level"` // debug, info, warn, error
}

// Default returns a Config with default values.
func Default() *Config {
	return &Config{
		Notifications: NotificationsConfig{
			AppName:  DefaultAppName,
			Platform: PlatformAuto,
		},
		Audio: AudioConfig{
			Enabled: true,
			Volume:  DefaultVolume,
			Sounds:  make(map[string]string),
		},
		DnD: DnDConfig{
			RespectSystem: true,
		},
		Log: LogConfig{
			Level: DefaultLogLevel,
		},
		Surfaces: make(map[string]string),
	}
}

// Path returns the default config file path.
func Path() string {
	return filepath.Join(xdg.ConfigHome, "desknotify", "desknotifyd.toml")
}

// Load loads configuration from path, or from Path() when path is empty.
// Returns the default config if the file doesn't exist.
func Load(path string) (*Config, error) {
	if path == "" {
		path = Path()
	}

	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Save writes the configuration to path, creating parent directories.
func (c *Config) Save(path string) error {
	if path == "" {
		path = Path()
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return os.Rename(tmpPath, path)
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Audio.Volume < 0 || c.Audio.Volume > 100 {
		return fmt.Errorf("volume must be between 0 and 100, got %d", c.Audio.Volume)
	}
	if c.Notifications.ExpireTimeout < 0 {
		return fmt.Errorf("expire_timeout must not be negative, got %s", c.Notifications.ExpireTimeout.Duration())
	}
	if c.Notifications.AppName == "" {
		return errors.New("app_name must not be empty")
	}

	switch c.Notifications.Platform {
	case "", PlatformAuto, string(platform.Windows), string(platform.Darwin), string(platform.Linux):
	default:
		return fmt.Errorf("invalid platform %q, must be one of: auto, windows, darwin, linux", c.Notifications.Platform)
	}

	if _, err := ParseLevel(c.Log.Level); err != nil {
		return err
	}
	return nil
}

// Policy returns the platform policy selected by the configuration.
func (c *Config) Policy() platform.Policy {
	p := platform.Detect()
	if c.Notifications.Platform != "" && c.Notifications.Platform != PlatformAuto {
		p = platform.Platform(c.Notifications.Platform)
	}
	policy := platform.PolicyFor(p)
	policy.DefaultMentionSound = c.Notifications.DefaultMentionSound
	return policy
}

// SoundPath returns the expanded file path configured for a sound name.
func (c *Config) SoundPath(name string) (string, bool) {
	path, ok := c.Audio.Sounds[name]
	if !ok || path == "" {
		return "", false
	}
	return ExpandPath(path), true
}

// StatePath returns the shared state file path.
func (c *Config) StatePath() string {
	if c.DnD.StatePath == "" {
		return state.FilePath()
	}
	return ExpandPath(c.DnD.StatePath)
}

// ParseLevel maps a level name to a slog.Level.
func ParseLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid log level %q", level)
	}
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}
