package main

import (
	"github.com/spf13/cobra"

	"github.com/jmylchreest/desknotify/internal/dbus"
)

var upgradeOpts struct {
	restart bool
}

var upgradeCmd = &cobra.Command{
	Use:   "upgrade <version>",
	Short: "Display an upgrade notification",
	Long: `Display the "new version available" notification, or with --restart
the "restart to upgrade" notification. A newer notification of the same
kind replaces the previous one. Clicking emits UpgradeRequested.`,
	Args: cobra.ExactArgs(1),
	RunE: runUpgrade,
}

func init() {
	rootCmd.AddCommand(upgradeCmd)

	upgradeCmd.Flags().BoolVar(&upgradeOpts.restart, "restart", false,
		"Show the restart-to-upgrade notification instead")
}

func runUpgrade(cmd *cobra.Command, args []string) error {
	version := args[0]
	return withClient(func(c *dbus.Client) error {
		if upgradeOpts.restart {
			return c.DisplayRestartToUpgrade(version)
		}
		return c.DisplayUpgrade(version)
	})
}
