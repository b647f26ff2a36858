package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/jmylchreest/desknotify/internal/dbus"
)

var statusOpts struct {
	format string
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show desknotifyd status",
	Long: `Show the platform, capability, Do Not Disturb state and counters of the
running desknotifyd.

Formats:
  text  human-readable summary (default)
  json  machine-readable JSON
  yaml  machine-readable YAML`,
	Args: cobra.NoArgs,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)

	statusCmd.Flags().StringVarP(&statusOpts.format, "format", "f", "text",
		"Output format (text, json, yaml)")
}

func runStatus(cmd *cobra.Command, args []string) error {
	var status dbus.Status
	err := withClient(func(c *dbus.Client) error {
		var err error
		status, err = c.GetStatus()
		return err
	})
	if err != nil {
		return err
	}
	return writeStatus(os.Stdout, status, statusOpts.format, time.Now())
}

// writeStatus renders status in the requested format.
func writeStatus(w io.Writer, status dbus.Status, format string, now time.Time) error {
	switch strings.ToLower(format) {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(status)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(status); err != nil {
			return err
		}
		return enc.Close()
	case "text", "":
		writeStatusText(w, status, now)
		return nil
	default:
		return fmt.Errorf("unknown format %q (want text, json or yaml)", format)
	}
}

func writeStatusText(w io.Writer, s dbus.Status, now time.Time) {
	capable := "available"
	if !s.Capable {
		capable = "unavailable"
	}
	dnd := "inactive"
	if s.DnDActive {
		dnd = "active"
	}

	fmt.Fprintln(w, "desknotifyd: running")
	fmt.Fprintf(w, "  Platform:   %s (notifications %s)\n", s.Platform, capable)
	fmt.Fprintf(w, "  DnD:        %s, mode %s, system %s\n", dnd, s.DnDMode, onOff(s.DnDSystem))
	if s.StartedAtUnix > 0 {
		fmt.Fprintf(w, "  Started:    %s\n", humanize.RelTime(time.Unix(s.StartedAtUnix, 0), now, "ago", "from now"))
	}
	fmt.Fprintf(w, "  Shown:      %s (%s clicked, %s suppressed, %s unsupported)\n",
		humanize.Comma(int64(s.Shown)),
		humanize.Comma(int64(s.Clicked)),
		humanize.Comma(int64(s.Suppressed)),
		humanize.Comma(int64(s.Unsupported)))
	if s.LastShownUnix > 0 {
		fmt.Fprintf(w, "  Last shown: %s\n", humanize.RelTime(time.Unix(s.LastShownUnix, 0), now, "ago", "from now"))
	}
	fmt.Fprintf(w, "  Tracked:    %d\n", s.Tracked)
	if len(s.Surfaces) > 0 {
		fmt.Fprintf(w, "  Surfaces:   %s\n", strings.Join(s.Surfaces, ", "))
	}
	fmt.Fprintf(w, "  Sounds:     %s\n", onOff(s.SoundsEnabled))
	fmt.Fprintf(w, "  Config:     %s\n", s.ConfigPath)
}
