package audio

import (
	"context"
	"log/slog"
	"os"
	"sync"

	"github.com/jmylchreest/desknotify/internal/config"
)

// Manager plays sounds by name using the paths from the configuration.
type Manager struct {
	mu      sync.RWMutex
	logger  *slog.Logger
	player  *Player
	watcher *Watcher
	enabled bool
	sounds  map[string]string // name -> expanded path
}

// NewManager creates a Manager for cfg.
func NewManager(cfg *config.Config, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	player := NewPlayer(logger)
	m := &Manager{
		logger:  logger,
		player:  player,
		watcher: NewWatcher(player, logger),
		sounds:  make(map[string]string),
	}
	m.apply(cfg)
	return m
}

// apply loads volume and the name -> file table from cfg.
func (m *Manager) apply(cfg *config.Config) {
	if cfg == nil {
		return
	}

	sounds := make(map[string]string, len(cfg.Audio.Sounds))
	for name := range cfg.Audio.Sounds {
		path, ok := cfg.SoundPath(name)
		if !ok {
			continue
		}
		if _, err := os.Stat(path); err != nil {
			m.logger.Warn("sound file not found", "sound", name, "path", path)
			continue
		}
		sounds[name] = path
	}

	m.player.SetVolume(float64(cfg.Audio.Volume) / 100.0)

	m.mu.Lock()
	m.enabled = cfg.Audio.Enabled
	m.sounds = sounds
	m.mu.Unlock()

	m.watcher.Reset()
	for _, path := range sounds {
		m.watcher.Watch(path)
	}
}

// Start preloads the configured sounds and starts watching them.
func (m *Manager) Start(ctx context.Context) {
	m.preload()
	m.watcher.Start(ctx)

	m.mu.RLock()
	count := len(m.sounds)
	m.mu.RUnlock()
	m.logger.Info("audio manager started", "sounds", count)
}

func (m *Manager) preload() {
	m.mu.RLock()
	enabled := m.enabled
	paths := make([]string, 0, len(m.sounds))
	for _, path := range m.sounds {
		paths = append(paths, path)
	}
	m.mu.RUnlock()

	if !enabled {
		return
	}
	for _, path := range paths {
		if err := m.player.Preload(path); err != nil {
			m.logger.Warn("failed to preload sound", "path", path, "error", err)
		}
	}
}

// Stop shuts down playback and the watcher.
func (m *Manager) Stop() {
	m.watcher.Stop()
	m.player.Close()
	m.logger.Debug("audio manager stopped")
}

// HasSound reports whether name maps to a playable file.
func (m *Manager) HasSound(name string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.sounds[name]
	return ok
}

// PlaySound plays the sound configured for name. Unknown names and disabled
// audio are not errors.
func (m *Manager) PlaySound(name string) error {
	m.mu.RLock()
	enabled := m.enabled
	path, ok := m.sounds[name]
	m.mu.RUnlock()

	if !enabled {
		return nil
	}
	if !ok {
		m.logger.Debug("no sound configured", "sound", name)
		return nil
	}
	return m.player.Play(path)
}

// UpdateConfig applies a reloaded configuration.
func (m *Manager) UpdateConfig(cfg *config.Config) {
	m.player.ClearCache()
	m.apply(cfg)
	m.preload()
	m.logger.Debug("audio manager config updated")
}
