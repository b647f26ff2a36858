package main

import (
	"github.com/spf13/cobra"

	"github.com/jmylchreest/desknotify/internal/dbus"
	"github.com/jmylchreest/desknotify/internal/notification"
)

type mentionFlags struct {
	title   string
	body    string
	channel string
	team    string
	url     string
	surface string
	sound   string
	silent  bool
}

var mentionOpts mentionFlags

var mentionCmd = &cobra.Command{
	Use:   "mention",
	Short: "Display a mention notification",
	Long: `Display a mention notification through desknotifyd.

Mentions of the same team and channel replace each other on platforms
that support it. Clicking the notification emits NotificationClicked
for the given surface.

Examples:
  desknotify mention --title Alice --body "standup?" --team t1 --channel c1
  desknotify mention --title Bob --body hi --surface main --sound None`,
	Args: cobra.NoArgs,
	RunE: runMention,
}

func init() {
	rootCmd.AddCommand(mentionCmd)

	mentionCmd.Flags().StringVar(&mentionOpts.title, "title", "", "Notification title")
	mentionCmd.Flags().StringVar(&mentionOpts.body, "body", "", "Notification body")
	mentionCmd.Flags().StringVar(&mentionOpts.channel, "channel", "", "Channel id")
	mentionCmd.Flags().StringVar(&mentionOpts.team, "team", "", "Team id")
	mentionCmd.Flags().StringVar(&mentionOpts.url, "url", "", "Link opened by the host on click")
	mentionCmd.Flags().StringVar(&mentionOpts.surface, "surface", "", "Originating surface id")
	mentionCmd.Flags().StringVar(&mentionOpts.sound, "sound", "",
		"Sound name to request (\"None\" for no sound)")
	mentionCmd.Flags().BoolVar(&mentionOpts.silent, "silent", false, "Display without sound")
}

func mentionRequest() notification.MentionRequest {
	req := notification.MentionRequest{
		Title:     mentionOpts.title,
		Body:      mentionOpts.body,
		ChannelID: mentionOpts.channel,
		TeamID:    mentionOpts.team,
		URL:       mentionOpts.url,
		Silent:    mentionOpts.silent,
		SurfaceID: mentionOpts.surface,
	}
	if mentionOpts.sound != "" {
		req.Data = map[string]any{notification.DataKeySoundName: mentionOpts.sound}
	}
	return req
}

func runMention(cmd *cobra.Command, args []string) error {
	req := mentionRequest()
	return withClient(func(c *dbus.Client) error {
		return c.DisplayMention(req)
	})
}
