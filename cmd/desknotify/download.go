package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/desknotify/internal/dbus"
)

var downloadOpts struct {
	name  string
	label string
}

var downloadCmd = &cobra.Command{
	Use:   "download <path>",
	Short: "Display a download-complete notification",
	Long: `Display a download-complete notification for the file at path.
Clicking the notification reveals the file in the file manager.`,
	Args: cobra.ExactArgs(1),
	RunE: runDownload,
}

func init() {
	rootCmd.AddCommand(downloadCmd)

	downloadCmd.Flags().StringVar(&downloadOpts.name, "name", "",
		"Displayed file name (default: base name of path)")
	downloadCmd.Flags().StringVar(&downloadOpts.label, "label", "",
		"Source label shown with the file name")
}

func runDownload(cmd *cobra.Command, args []string) error {
	path, err := filepath.Abs(args[0])
	if err != nil {
		return fmt.Errorf("invalid path: %w", err)
	}
	name := downloadOpts.name
	if name == "" {
		name = filepath.Base(path)
	}

	return withClient(func(c *dbus.Client) error {
		return c.DisplayDownloadCompleted(name, path, downloadOpts.label)
	})
}
