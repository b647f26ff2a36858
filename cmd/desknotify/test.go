package main

import (
	"github.com/spf13/cobra"

	"github.com/jmylchreest/desknotify/internal/dbus"
)

var testCmd = &cobra.Command{
	Use:   "test",
	Short: "Display the test notification",
	Long: `Display the platform's test notification. Nothing is shown on hosts
without a test notification or while Do Not Disturb is active.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withClient(func(c *dbus.Client) error {
			return c.SendTestNotification()
		})
	},
}

func init() {
	rootCmd.AddCommand(testCmd)
}
