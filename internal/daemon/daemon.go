package daemon

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	godbus "github.com/godbus/dbus/v5"

	"github.com/jmylchreest/desknotify/internal/audio"
	"github.com/jmylchreest/desknotify/internal/config"
	"github.com/jmylchreest/desknotify/internal/dbus"
	"github.com/jmylchreest/desknotify/internal/dnd"
	"github.com/jmylchreest/desknotify/internal/native"
	"github.com/jmylchreest/desknotify/internal/notification"
	"github.com/jmylchreest/desknotify/internal/orchestrator"
	"github.com/jmylchreest/desknotify/internal/platform"
	"github.com/jmylchreest/desknotify/internal/shell"
	"github.com/jmylchreest/desknotify/internal/state"
)

// Options configures a Daemon.
type Options struct {
	// ConfigPath is the file watched for reloads. Empty means config.Path().
	ConfigPath string
	Logger     *slog.Logger
	// LevelVar, when set, follows log.level across reloads.
	LevelVar *slog.LevelVar
}

// Daemon is a running desknotifyd instance.
type Daemon struct {
	logger     *slog.Logger
	levelVar   *slog.LevelVar
	configPath string
	startedAt  time.Time

	mu  sync.RWMutex
	cfg *config.Config

	policy   platform.Policy
	backend  notification.Backend
	gate     *dnd.Gate
	window   *Window
	sounds   *audio.Manager
	orch     *orchestrator.Orchestrator
	internal *InternalNotifier

	dndMode state.DnDMode

	conn          *godbus.Conn
	server        *dbus.Server
	notifier      *dbus.Notifier
	configWatcher *config.Watcher
	stateWatcher  *StateWatcher
}

var _ dbus.Handler = (*Daemon)(nil)

// New creates a Daemon for cfg. Nothing is started until Run.
func New(cfg *config.Config, opts Options) *Daemon {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	path := opts.ConfigPath
	if path == "" {
		path = config.Path()
	}
	return &Daemon{
		logger:     logger,
		levelVar:   opts.LevelVar,
		configPath: path,
		cfg:        cfg,
		policy:     cfg.Policy(),
		dndMode:    state.DnDAuto,
	}
}

// assemble builds the platform independent components around backend.
func (d *Daemon) assemble(backend notification.Backend, emitter Emitter, revealer shell.Revealer, probes dnd.Probes) {
	cfg := d.config()

	d.backend = backend
	d.sounds = audio.NewManager(cfg, d.logger)
	d.internal = NewInternalNotifier(backend, d.logger)

	d.window = NewWindow(emitter, d.sounds, d.logger)
	d.window.SetConfigured(cfg.Surfaces)
	d.window.SetSoundErrorCallback(d.internal.NotifyAudioError)

	d.gate = dnd.NewGate(d.policy.Platform, probes, d.logger)
	d.gate.SetRespectSystem(cfg.DnD.RespectSystem)
	d.gate.SetOverride(dnd.StateOverride(cfg.StatePath(), d.logger))

	d.orch = orchestrator.New(orchestrator.Options{
		Policy:  d.policy,
		Backend: backend,
		Gate:    d.gate,
		Window:  d.window,
		Shell:   shell.New(d.policy.Platform, revealer, d.logger),
		Logger:  d.logger,
	})

	d.refreshDnDMode(false)
}

// connectSessionBus is godbus.ConnectSessionBus. Tests replace it.
var connectSessionBus = godbus.ConnectSessionBus

// Run connects to the session bus, serves until ctx is cancelled and then
// shuts everything down. Linux requires the bus for its notification
// server. Elsewhere a missing bus only disables the inbound service: the
// native backend still shows the daemon's own notices.
func (d *Daemon) Run(ctx context.Context) error {
	d.startedAt = time.Now()
	d.logger.Info("starting desknotifyd", "platform", d.policy.Platform)

	conn, err := connectSessionBus()
	if err != nil {
		if d.policy.Platform == platform.Linux {
			return fmt.Errorf("failed to connect to session bus: %w", err)
		}
		d.logger.Warn("no session bus, inbound calls disabled", "error", err)
		conn = nil
	} else {
		d.conn = conn
		defer func() { _ = conn.Close() }()
	}

	cfg := d.config()

	var linux notification.Backend
	if d.policy.Platform == platform.Linux {
		d.notifier = dbus.NewNotifier(conn, notifierOptions(cfg), d.logger)
		if err := d.notifier.Start(); err != nil {
			return err
		}
		defer d.notifier.Stop()
		linux = d.notifier
	}

	var revealer shell.Revealer
	if conn != nil {
		revealer = dbus.NewFileManager(conn)
	}

	d.server = dbus.NewServer(d, d.logger)
	d.assemble(
		native.Select(d.policy.Platform, linux, d.logger),
		d.server,
		revealer,
		systemProbes(conn),
	)
	defer d.orch.Close()

	if !d.backend.IsNotificationCapable() {
		d.logger.Warn("host cannot display notifications", "platform", d.policy.Platform)
	}

	d.sounds.Start(ctx)
	defer d.sounds.Stop()

	d.configWatcher, err = config.NewWatcher(d.configPath, cfg, d.logger)
	if err != nil {
		d.logger.Warn("config hot reload disabled", "error", err)
	} else {
		d.configWatcher.SetReloadCallback(d.applyConfig)
		d.configWatcher.SetErrorCallback(d.internal.NotifyConfigError)
		if err := d.configWatcher.Start(ctx); err != nil {
			d.logger.Warn("failed to start config watcher", "error", err)
		}
		defer func() { _ = d.configWatcher.Stop() }()
	}

	d.stateWatcher = NewStateWatcher(cfg.StatePath(), d.logger)
	d.stateWatcher.SetChangeCallback(func() { d.refreshDnDMode(true) })
	if err := d.stateWatcher.Start(ctx); err != nil {
		d.logger.Warn("failed to start state watcher", "error", err)
	}
	defer func() { _ = d.stateWatcher.Stop() }()

	if conn != nil {
		if err := d.server.Start(conn); err != nil {
			return err
		}
		defer func() { _ = d.server.Stop() }()
	}

	d.logger.Info("desknotifyd ready",
		"bus_name", dbus.ServiceBusName,
		"service", conn != nil,
		"dnd_system", d.gate.SystemActive(),
	)
	<-ctx.Done()
	d.logger.Info("shutting down")
	return nil
}

// systemProbes returns the operating system focus probes. conn may be nil
// when no session bus is available.
func systemProbes(conn *godbus.Conn) dnd.Probes {
	home, _ := os.UserHomeDir()
	linux := dnd.GnomeBannersProbe()
	if conn != nil {
		linux = dnd.Any(dbus.InhibitedProbe(conn), linux)
	}
	return dnd.Probes{
		Windows: dnd.WindowsFocusProbe(),
		Darwin:  dnd.DarwinFocusProbe(home),
		Linux:   linux,
	}
}

func notifierOptions(cfg *config.Config) dbus.NotifierOptions {
	expire := int32(-1)
	if cfg.Notifications.ExpireTimeout > 0 {
		expire = cfg.Notifications.ExpireTimeout.Milliseconds()
	}
	return dbus.NotifierOptions{
		AppName:       cfg.Notifications.AppName,
		Icon:          cfg.Notifications.Icon,
		DesktopEntry:  cfg.Notifications.AppName,
		ExpireTimeout: expire,
	}
}

func (d *Daemon) config() *config.Config {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.cfg
}

// applyConfig applies a reloaded configuration. The platform policy is
// resolved once at startup and is not changed by a reload.
func (d *Daemon) applyConfig(cfg *config.Config) {
	d.mu.Lock()
	d.cfg = cfg
	d.mu.Unlock()

	if d.levelVar != nil {
		if level, err := config.ParseLevel(cfg.Log.Level); err == nil {
			d.levelVar.Set(level)
		}
	}
	d.gate.SetRespectSystem(cfg.DnD.RespectSystem)
	d.gate.SetOverride(dnd.StateOverride(cfg.StatePath(), d.logger))
	d.window.SetConfigured(cfg.Surfaces)
	d.sounds.UpdateConfig(cfg)
	if d.notifier != nil {
		d.notifier.SetOptions(notifierOptions(cfg))
	}

	d.logger.Info("configuration applied")
	d.internal.NotifyConfigReloaded()
}

// refreshDnDMode re-reads the override from the state file and reports
// changes when announce is set.
func (d *Daemon) refreshDnDMode(announce bool) {
	s, err := state.Load(d.config().StatePath())
	if err != nil {
		d.logger.Debug("failed to load state", "error", err)
		return
	}

	d.mu.Lock()
	changed := s.DnDMode != d.dndMode
	d.dndMode = s.DnDMode
	d.mu.Unlock()

	if !changed || !announce {
		return
	}

	reason := ""
	if s.DnDLastTransition != nil {
		reason = s.DnDLastTransition.Reason
	}
	d.logger.Info("dnd mode changed", "mode", s.DnDMode, "reason", reason)
	d.internal.NotifyDnDChanged(string(s.DnDMode), reason)
}

// DisplayMention implements dbus.Handler.
func (d *Daemon) DisplayMention(req notification.MentionRequest) {
	d.orch.DisplayMention(req)
}

// DisplayDownloadCompleted implements dbus.Handler.
func (d *Daemon) DisplayDownloadCompleted(fileName, path, label string) {
	d.orch.DisplayDownloadCompleted(fileName, path, label)
}

// DisplayUpgrade implements dbus.Handler.
func (d *Daemon) DisplayUpgrade(version string, onUpgrade func()) {
	d.orch.DisplayUpgrade(version, onUpgrade)
}

// DisplayRestartToUpgrade implements dbus.Handler.
func (d *Daemon) DisplayRestartToUpgrade(version string, onUpgrade func()) {
	d.orch.DisplayRestartToUpgrade(version, onUpgrade)
}

// SendTestNotification implements dbus.Handler.
func (d *Daemon) SendTestNotification() {
	d.orch.SendTestNotification()
}

// RegisterSurface implements dbus.Handler.
func (d *Daemon) RegisterSurface(surfaceID, label string) {
	d.window.Register(surfaceID, label)
}

// UnregisterSurface implements dbus.Handler.
func (d *Daemon) UnregisterSurface(surfaceID string) {
	d.window.Unregister(surfaceID)
}

// Status implements dbus.Handler.
func (d *Daemon) Status() dbus.Status {
	stats := d.orch.Stats()
	cfg := d.config()

	d.mu.RLock()
	mode := d.dndMode
	d.mu.RUnlock()

	status := dbus.Status{
		Platform:      string(d.policy.Platform),
		Capable:       d.backend.IsNotificationCapable(),
		DnDActive:     d.gate.IsActive(),
		DnDSystem:     d.gate.SystemActive(),
		DnDMode:       string(mode),
		Surfaces:      d.window.Surfaces(),
		Shown:         stats.Shown,
		Clicked:       stats.Clicked,
		Suppressed:    stats.Suppressed,
		Unsupported:   stats.Unsupported,
		Tracked:       stats.Tracked,
		StartedAtUnix: d.startedAt.Unix(),
		ConfigPath:    d.configPath,
		SoundsEnabled: cfg.Audio.Enabled,
	}
	if !stats.LastShown.IsZero() {
		status.LastShownUnix = stats.LastShown.Unix()
	}
	return status
}
