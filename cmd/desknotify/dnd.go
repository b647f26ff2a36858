package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/jmylchreest/desknotify/internal/dbus"
	"github.com/jmylchreest/desknotify/internal/state"
)

var dndOpts struct {
	quiet  bool // Suppress output, return exit code only
	reason string
}

// dndCmd represents the dnd command group.
var dndCmd = &cobra.Command{
	Use:   "dnd",
	Short: "Manage Do Not Disturb mode",
	Long: `Manage the Do Not Disturb (DnD) override for desknotifyd.

In auto mode desknotifyd follows the operating system's focus setting.
'on' suppresses every notification and 'off' shows them regardless of
the operating system.

Use 'desknotify dnd status' to check the current state.
Use 'desknotify dnd on', 'off' or 'auto' to change the override.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return dndStatusRun(cmd, args)
	},
}

var dndOnCmd = &cobra.Command{
	Use:   "on",
	Short: "Suppress all notifications",
	RunE:  func(cmd *cobra.Command, args []string) error { return setDnD(state.DnDOn) },
}

var dndOffCmd = &cobra.Command{
	Use:   "off",
	Short: "Show notifications regardless of the system setting",
	RunE:  func(cmd *cobra.Command, args []string) error { return setDnD(state.DnDOff) },
}

var dndAutoCmd = &cobra.Command{
	Use:   "auto",
	Short: "Follow the operating system's focus setting",
	RunE:  func(cmd *cobra.Command, args []string) error { return setDnD(state.DnDAuto) },
}

var dndStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show Do Not Disturb status",
	Long: `Show the Do Not Disturb override and, when desknotifyd is running,
whether notifications are currently suppressed. Exits 1 while suppressed.`,
	RunE: dndStatusRun,
}

func init() {
	dndCmd.AddCommand(dndOnCmd)
	dndCmd.AddCommand(dndOffCmd)
	dndCmd.AddCommand(dndAutoCmd)
	dndCmd.AddCommand(dndStatusCmd)

	for _, cmd := range []*cobra.Command{dndCmd, dndOnCmd, dndOffCmd, dndAutoCmd, dndStatusCmd} {
		cmd.Flags().BoolVarP(&dndOpts.quiet, "quiet", "q", false,
			"Suppress output, return exit code only (0=showing, 1=suppressed)")
	}
	for _, cmd := range []*cobra.Command{dndOnCmd, dndOffCmd, dndAutoCmd} {
		cmd.Flags().StringVar(&dndOpts.reason, "reason", "", "Reason recorded with the change")
	}

	rootCmd.AddCommand(dndCmd)
}

func setDnD(mode state.DnDMode) error {
	path := cfg.StatePath()
	s, err := state.Load(path)
	if err != nil {
		return fmt.Errorf("failed to load state: %w", err)
	}

	reason := dndOpts.reason
	if reason == "" {
		reason = "dnd " + string(mode)
	}
	s.SetDnD(mode, reason, "cli")
	if err := state.Save(path, s); err != nil {
		return fmt.Errorf("failed to save state: %w", err)
	}
	logger.Debug("dnd mode saved", "mode", mode, "path", path)

	if !dndOpts.quiet {
		fmt.Printf("Do Not Disturb: %s\n", mode)
	}
	return nil
}

func dndStatusRun(cmd *cobra.Command, args []string) error {
	s, err := state.Load(cfg.StatePath())
	if err != nil {
		return fmt.Errorf("failed to load state: %w", err)
	}

	active, forced := s.Override()
	var live *dbus.Status
	if client, err := dbus.Connect(); err == nil {
		if status, err := client.GetStatus(); err == nil {
			live = &status
			active = status.DnDActive
		}
		_ = client.Close()
	} else {
		logger.Debug("daemon not reachable", "error", err)
	}

	if !dndOpts.quiet {
		writeDnDStatus(os.Stdout, s, live, forced, time.Now())
	}

	// Exit code: 0=showing, 1=suppressed
	if active {
		os.Exit(1)
	}
	return nil
}

// writeDnDStatus prints the override and, if known, the daemon's live view.
func writeDnDStatus(w io.Writer, s *state.SharedState, live *dbus.Status, forced bool, now time.Time) {
	fmt.Fprintf(w, "Do Not Disturb: %s\n", s.DnDMode)

	switch {
	case live != nil && live.DnDActive:
		fmt.Fprintln(w, "  Notifications: suppressed")
	case live != nil:
		fmt.Fprintln(w, "  Notifications: showing")
	case forced:
		fmt.Fprintln(w, "  Notifications: forced by override (desknotifyd not running)")
	default:
		fmt.Fprintln(w, "  Notifications: unknown (desknotifyd not running)")
	}
	if live != nil && s.DnDMode == state.DnDAuto {
		fmt.Fprintf(w, "  System focus: %s\n", onOff(live.DnDSystem))
	}

	if t := s.DnDLastTransition; t != nil {
		fmt.Fprintf(w, "  Last change: %s\n", humanize.RelTime(time.Unix(t.Timestamp, 0), now, "ago", "from now"))
		if t.Reason != "" {
			fmt.Fprintf(w, "  Reason: %s\n", t.Reason)
		}
		if t.Source != "" {
			fmt.Fprintf(w, "  Source: %s\n", t.Source)
		}
	}
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}
