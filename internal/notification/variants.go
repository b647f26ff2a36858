package notification

import (
	"fmt"

	"github.com/jmylchreest/desknotify/internal/platform"
)

const (
	defaultMentionText = "Someone mentioned you"
	downloadTitle      = "Download Complete"

	newVersionTitle = "New desktop version available"
	restartTitle    = "Click to restart and install update"

	testTitle       = "Test Notification"
	testBody        = "Body of the notification"
	testActionKey   = "sounds-good"
	testActionLabel = "Sounds good"

	// SoundNameNone disables the per-mention sound.
	SoundNameNone = "None"
	// DataKeySoundName is the Data key carrying the per-mention sound name.
	DataKeySoundName = "soundName"
)

// testToastXML is the payload of the Windows test notification.
const testToastXML = `<toast>
    <visual>
        <binding template="ToastText02">
            <text id="1">The counter needs to be updated</text>
            <text id="2">You can count down or up.</text>
        </binding>
    </visual>
    <actions>
        <action content="Count up" activationType="protocol" arguments="desknotify://replyOk" />
    </actions>
</toast>`

// MentionRequest is the input of a mention notification.
type MentionRequest struct {
	Title     string
	Body      string
	ChannelID string
	TeamID    string
	URL       string
	Silent    bool
	SurfaceID string
	Data      map[string]any
}

// ClickPayload is forwarded to the originating surface when a mention is clicked.
type ClickPayload struct {
	ChannelID string `json:"channel"`
	TeamID    string `json:"teamId"`
	URL       string `json:"url"`
}

// MentionKey returns the identity key of a conversation.
func MentionKey(teamID, channelID string) string {
	return teamID + ":" + channelID
}

// LabeledTitle prefixes title with a resolved source label.
func LabeledTitle(label, title string) string {
	if label == "" {
		return title
	}
	return label + ": " + title
}

// NewMention builds a mention notification. label is the resolved source
// name and may be empty.
func NewMention(backend Backend, req MentionRequest, label string, policy platform.Policy) *Notification {
	title := req.Title
	if title == "" {
		title = defaultMentionText
	}
	body := req.Body
	if body == "" {
		body = defaultMentionText
	}

	sound := mentionSound(req, policy)

	n := newNotification(backend, KindMention, Content{
		Title:    LabeledTitle(label, title),
		Body:     body,
		Silent:   req.Silent || sound != "",
		Category: "im.received",
		Urgency:  UrgencyNormal,
		Actions:  []Action{{Key: DefaultActionKey, Label: "Open"}},
	})
	// The request's own silence flag, not the rendered one.
	n.Silent = req.Silent
	n.Data = req.Data
	n.Key = MentionKey(req.TeamID, req.ChannelID)
	n.sound = sound
	return n
}

// mentionSound picks the custom sound for a mention. A custom sound is
// played by the application, so the native content is rendered silent.
func mentionSound(req MentionRequest, policy platform.Policy) string {
	if req.Silent {
		return ""
	}
	if name, ok := req.Data[DataKeySoundName].(string); ok && name != "" {
		if name == SoundNameNone {
			return ""
		}
		return name
	}
	return policy.DefaultMentionSound
}

// NewDownload builds a download-complete notification.
func NewDownload(backend Backend, fileName, label string, policy platform.Policy) *Notification {
	content := Content{
		Title:    downloadTitle,
		Body:     LabeledTitle(label, fileName),
		Category: "transfer.complete",
		Urgency:  UrgencyLow,
		Actions:  []Action{{Key: DefaultActionKey, Label: "Show in folder"}},
	}
	if policy.DownloadLayout == platform.DownloadLayoutLabelTitle {
		content.Title = label
		if content.Title == "" {
			content.Title = downloadTitle
		}
		content.Body = downloadTitle + "\n" + fileName
	}
	n := newNotification(backend, KindDownloadComplete, content)
	n.Data = map[string]any{"fileName": fileName}
	return n
}

// NewNewVersion builds the "update available" notification.
func NewNewVersion(backend Backend, version string) *Notification {
	n := newNotification(backend, KindNewVersion, Content{
		Title:    newVersionTitle,
		Body:     fmt.Sprintf("A new version (%s) is available for you to download now.", version),
		Category: "x-desknotify.upgrade",
		Urgency:  UrgencyNormal,
		Actions:  []Action{{Key: DefaultActionKey, Label: "Download"}},
	})
	n.Data = map[string]any{"version": version}
	return n
}

// NewRestartToUpgrade builds the "restart to install" notification.
func NewRestartToUpgrade(backend Backend, version string) *Notification {
	n := newNotification(backend, KindRestartToUpgrade, Content{
		Title:    restartTitle,
		Body:     fmt.Sprintf("A new desktop version (%s) is ready to install now.", version),
		Category: "x-desknotify.upgrade",
		Urgency:  UrgencyCritical,
		Actions:  []Action{{Key: DefaultActionKey, Label: "Restart"}},
	})
	n.Data = map[string]any{"version": version}
	return n
}

// NewTest builds the platform's test notification. It reports false when the
// platform has no test content.
func NewTest(backend Backend, policy platform.Policy) (*Notification, bool) {
	switch policy.TestContent {
	case platform.TestContentAction:
		return newNotification(backend, KindTest, Content{
			Title:   testTitle,
			Body:    testBody,
			Urgency: UrgencyNormal,
			Actions: []Action{{Key: testActionKey, Label: testActionLabel}},
		}), true
	case platform.TestContentToastXML:
		return newNotification(backend, KindTest, Content{
			Title:    testTitle,
			Body:     testBody,
			Urgency:  UrgencyNormal,
			ToastXML: testToastXML,
		}), true
	default:
		return nil, false
	}
}
