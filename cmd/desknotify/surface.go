package main

import (
	"github.com/spf13/cobra"

	"github.com/jmylchreest/desknotify/internal/dbus"
)

var surfaceCmd = &cobra.Command{
	Use:   "surface",
	Short: "Manage surface labels",
	Long: `Register or unregister the label of an application surface.

The label is shown in front of mention titles from that surface and is
the source a click switches to. Registered labels take precedence over
the [surfaces] table in the config file.`,
}

var surfaceRegisterCmd = &cobra.Command{
	Use:   "register <id> <label>",
	Short: "Register a surface label",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withClient(func(c *dbus.Client) error {
			return c.RegisterSurface(args[0], args[1])
		})
	},
}

var surfaceUnregisterCmd = &cobra.Command{
	Use:   "unregister <id>",
	Short: "Unregister a surface",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withClient(func(c *dbus.Client) error {
			return c.UnregisterSurface(args[0])
		})
	},
}

func init() {
	surfaceCmd.AddCommand(surfaceRegisterCmd)
	surfaceCmd.AddCommand(surfaceUnregisterCmd)
	rootCmd.AddCommand(surfaceCmd)
}
