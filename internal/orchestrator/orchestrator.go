package orchestrator

import (
	"errors"
	"log/slog"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jmylchreest/desknotify/internal/notification"
	"github.com/jmylchreest/desknotify/internal/platform"
	"github.com/jmylchreest/desknotify/internal/registry"
)

// Reasons a notification is not shown.
var (
	// ErrUnsupportedCapability means the host cannot display notifications.
	ErrUnsupportedCapability = errors.New("notifications not supported")
	// ErrSuppressed means Do Not Disturb is active.
	ErrSuppressed = errors.New("notifications suppressed by do not disturb")
)

// Options configures an Orchestrator. Backend is required; the other
// collaborators default to no-ops.
type Options struct {
	Policy  platform.Policy
	Backend notification.Backend
	Gate    Gate
	Window  Window
	Shell   Shell
	Logger  *slog.Logger
}

// Orchestrator dispatches notifications. One instance lives as long as the
// application.
type Orchestrator struct {
	logger   *slog.Logger
	policy   platform.Policy
	backend  notification.Backend
	gate     Gate
	window   Window
	shell    Shell
	registry *registry.Registry

	// Singleton slots; slotMu serializes the replace-and-show sequence.
	slotMu           sync.Mutex
	upgrade          *notification.Notification
	restartToUpgrade *notification.Notification

	shown       atomic.Uint64
	clicked     atomic.Uint64
	suppressed  atomic.Uint64
	unsupported atomic.Uint64
	lastShown   atomic.Int64
}

// New creates an Orchestrator.
func New(opts Options) *Orchestrator {
	o := &Orchestrator{
		logger:  opts.Logger,
		policy:  opts.Policy,
		backend: opts.Backend,
		gate:    opts.Gate,
		window:  opts.Window,
		shell:   opts.Shell,
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	if o.gate == nil {
		o.gate = nopGate{}
	}
	if o.window == nil {
		o.window = nopWindow{}
	}
	if o.shell == nil {
		o.shell = nopShell{}
	}
	o.registry = registry.New(o.logger)
	return o
}

// Registry returns the mention registry.
func (o *Orchestrator) Registry() *registry.Registry {
	return o.registry
}

// Policy returns the platform policy in use.
func (o *Orchestrator) Policy() platform.Policy {
	return o.policy
}

// check runs the capability and Do Not Disturb gates.
func (o *Orchestrator) check(kind notification.Kind) error {
	if o.backend == nil || !o.backend.IsNotificationCapable() {
		o.unsupported.Add(1)
		o.logger.Error("notification not supported", "kind", kind, "error", ErrUnsupportedCapability)
		return ErrUnsupportedCapability
	}
	if o.gate.IsActive() {
		o.suppressed.Add(1)
		o.logger.Debug("notification suppressed", "kind", kind)
		return ErrSuppressed
	}
	return nil
}

// show hands n to the backend and logs failures.
func (o *Orchestrator) show(n *notification.Notification) {
	if err := n.Show(); err != nil {
		o.logger.Warn("failed to show notification", "kind", n.Kind, "id", n.ID, "error", err)
		return
	}
	o.shown.Add(1)
	o.lastShown.Store(time.Now().Unix())
}

// DisplayMention shows a mention notification.
func (o *Orchestrator) DisplayMention(req notification.MentionRequest) {
	o.logger.Debug("display mention",
		"title", req.Title,
		"channel", req.ChannelID,
		"team", req.TeamID,
		"url", req.URL,
		"silent", req.Silent,
		"surface", req.SurfaceID,
	)

	if err := o.check(notification.KindMention); err != nil {
		return
	}

	label := o.window.ResolveLabelForSurface(req.SurfaceID)
	mention := notification.NewMention(o.backend, req, label, o.policy)
	key := mention.Key

	mention.OnShow(func() {
		o.logger.Debug("mention shown", "id", mention.ID, "key", key)

		if o.policy.ReplaceByKey {
			o.registry.SetCurrent(key, mention)
		}
		if sound := mention.NotificationSound(); sound != "" {
			o.window.SendToActiveSurface(SignalPlaySound, sound)
		}
		o.window.FlashAttention(true)
	})

	mention.OnClick(func() {
		o.clicked.Add(1)
		o.logger.Debug("mention clicked", "id", mention.ID, "label", label)

		if label != "" {
			o.window.SwitchToConversationContext(label, ContextMessaging)
		} else {
			o.logger.Debug("no label for surface, not switching context", "surface", req.SurfaceID)
		}
		o.window.SendToSurface(req.SurfaceID, SignalNotificationClicked, notification.ClickPayload{
			ChannelID: req.ChannelID,
			TeamID:    req.TeamID,
			URL:       req.URL,
		})
	})

	o.show(mention)
}

// DisplayDownloadCompleted shows a download-complete notification; clicking
// it reveals path in the file manager.
func (o *Orchestrator) DisplayDownloadCompleted(fileName, path, label string) {
	o.logger.Debug("display download completed", "file", fileName, "path", path, "label", label)

	if err := o.check(notification.KindDownloadComplete); err != nil {
		return
	}

	download := notification.NewDownload(o.backend, fileName, label, o.policy)
	download.OnShow(func() {
		o.window.FlashAttention(true)
	})
	download.OnClick(func() {
		o.clicked.Add(1)
		clean := filepath.Clean(path)
		if err := o.shell.RevealFile(clean); err != nil {
			o.logger.Warn("failed to reveal downloaded file", "path", clean, "error", err)
		}
	})

	o.show(download)
}

// DisplayUpgrade shows the "new version available" notification, replacing
// any previous one. onUpgrade runs when it is clicked.
func (o *Orchestrator) DisplayUpgrade(version string, onUpgrade func()) {
	o.logger.Debug("display upgrade", "version", version)

	if err := o.check(notification.KindNewVersion); err != nil {
		return
	}

	o.slotMu.Lock()
	defer o.slotMu.Unlock()

	o.closeSlot(o.upgrade)
	o.upgrade = nil

	n := notification.NewNewVersion(o.backend, version)
	n.OnClick(func() {
		o.clicked.Add(1)
		o.logger.Info("user clicked to upgrade", "version", version)
		if onUpgrade != nil {
			onUpgrade()
		}
	})
	o.upgrade = n
	o.show(n)
}

// DisplayRestartToUpgrade shows the "restart to install" notification,
// replacing any previous one. onUpgrade runs when it is clicked.
func (o *Orchestrator) DisplayRestartToUpgrade(version string, onUpgrade func()) {
	o.logger.Debug("display restart to upgrade", "version", version)

	if err := o.check(notification.KindRestartToUpgrade); err != nil {
		return
	}

	o.slotMu.Lock()
	defer o.slotMu.Unlock()

	o.closeSlot(o.restartToUpgrade)
	o.restartToUpgrade = nil

	n := notification.NewRestartToUpgrade(o.backend, version)
	n.OnClick(func() {
		o.clicked.Add(1)
		o.logger.Info("user requested to perform the upgrade now", "version", version)
		if onUpgrade != nil {
			onUpgrade()
		}
	})
	o.restartToUpgrade = n
	o.show(n)
}

// SendTestNotification shows the platform's test notification.
func (o *Orchestrator) SendTestNotification() {
	o.logger.Debug("send test notification", "platform", o.policy.Platform)

	if err := o.check(notification.KindTest); err != nil {
		return
	}

	n, ok := notification.NewTest(o.backend, o.policy)
	if !ok {
		o.logger.Debug("no test notification for platform", "platform", o.policy.Platform)
		return
	}
	n.OnAction(func(index int) {
		o.logger.Debug("test notification action", "index", index)
	})
	n.OnClick(func() {
		o.logger.Debug("test notification clicked")
	})
	o.show(n)
}

func (o *Orchestrator) closeSlot(n *notification.Notification) {
	if n == nil {
		return
	}
	if err := n.Close(); err != nil {
		o.logger.Warn("failed to close previous notification", "kind", n.Kind, "error", err)
	}
}

// Close dismisses the singleton notifications and every registered mention.
func (o *Orchestrator) Close() {
	o.slotMu.Lock()
	o.closeSlot(o.upgrade)
	o.closeSlot(o.restartToUpgrade)
	o.upgrade, o.restartToUpgrade = nil, nil
	o.slotMu.Unlock()

	o.registry.CloseAll()
}

// Stats is a snapshot of dispatch counters.
type Stats struct {
	Shown       uint64    `json:"shown" yaml:"shown"`
	Clicked     uint64    `json:"clicked" yaml:"clicked"`
	Suppressed  uint64    `json:"suppressed" yaml:"suppressed"`
	Unsupported uint64    `json:"unsupported" yaml:"unsupported"`
	LastShown   time.Time `json:"last_shown,omitzero" yaml:"last_shown,omitempty"`
	Tracked     int       `json:"tracked" yaml:"tracked"`
}

// Stats returns the current counters.
func (o *Orchestrator) Stats() Stats {
	s := Stats{
		Shown:       o.shown.Load(),
		Clicked:     o.clicked.Load(),
		Suppressed:  o.suppressed.Load(),
		Unsupported: o.unsupported.Load(),
		Tracked:     o.registry.Len(),
	}
	if ts := o.lastShown.Load(); ts > 0 {
		s.LastShown = time.Unix(ts, 0)
	}
	return s
}
