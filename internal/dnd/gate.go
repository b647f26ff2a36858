package dnd

import (
	"log/slog"
	"sync"

	"github.com/jmylchreest/desknotify/internal/platform"
	"github.com/jmylchreest/desknotify/internal/state"
)

// Probe reports whether the OS is in a do-not-disturb state. Probes never
// fail: when the state cannot be determined they return false.
type Probe func() bool

// Any returns a probe that is active when any of probes is.
func Any(probes ...Probe) Probe {
	return func() bool {
		for _, p := range probes {
			if p != nil && p() {
				return true
			}
		}
		return false
	}
}

// Probes holds one probe per platform family.
type Probes struct {
	Windows Probe
	Darwin  Probe
	Linux   Probe
}

// For returns the probe for p, or nil for platforms without one.
func (ps Probes) For(p platform.Platform) Probe {
	switch p {
	case platform.Windows:
		return ps.Windows
	case platform.Darwin:
		return ps.Darwin
	case platform.Linux:
		return ps.Linux
	default:
		return nil
	}
}

// OverrideFunc returns the forced gate value and whether one is forced.
type OverrideFunc func() (active bool, forced bool)

// Gate decides whether notifications are currently suppressed.
type Gate struct {
	mu            sync.RWMutex
	logger        *slog.Logger
	platform      platform.Platform
	probe         Probe
	override      OverrideFunc
	respectSystem bool
}

// NewGate resolves the probe for p from probes.
func NewGate(p platform.Platform, probes Probes, logger *slog.Logger) *Gate {
	if logger == nil {
		logger = slog.Default()
	}
	return &Gate{
		logger:        logger,
		platform:      p,
		probe:         probes.For(p),
		respectSystem: true,
	}
}

// SetOverride sets the user override consulted before the system probe.
func (g *Gate) SetOverride(fn OverrideFunc) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.override = fn
}

// SetRespectSystem controls whether the system probe is consulted at all.
func (g *Gate) SetRespectSystem(respect bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.respectSystem = respect
}

// IsActive reports whether notifications must be suppressed right now.
func (g *Gate) IsActive() bool {
	g.mu.RLock()
	override, probe, respect := g.override, g.probe, g.respectSystem
	g.mu.RUnlock()

	if override != nil {
		if active, forced := override(); forced {
			return active
		}
	}
	if !respect || probe == nil {
		return false
	}
	return probe()
}

// SystemActive reports the raw probe result, ignoring override and config.
func (g *Gate) SystemActive() bool {
	g.mu.RLock()
	probe := g.probe
	g.mu.RUnlock()
	if probe == nil {
		return false
	}
	return probe()
}

// Platform returns the platform the gate was resolved for.
func (g *Gate) Platform() platform.Platform {
	return g.platform
}

// StateOverride returns an OverrideFunc backed by the shared state file at
// path. The file is re-read on every call.
func StateOverride(path string, logger *slog.Logger) OverrideFunc {
	if logger == nil {
		logger = slog.Default()
	}
	return func() (bool, bool) {
		s, err := state.Load(path)
		if err != nil {
			logger.Debug("failed to load dnd override", "path", path, "error", err)
			return false, false
		}
		return s.Override()
	}
}
