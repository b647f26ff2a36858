package platform

import "runtime"

// Platform identifies a host platform family.
type Platform string

const (
	Windows Platform = "windows"
	Darwin  Platform = "darwin"
	Linux   Platform = "linux"
	Unknown Platform = "unknown"
)

// String returns the platform name.
func (p Platform) String() string {
	return string(p)
}

// TestContent selects what the test notification carries.
type TestContent int

const (
	// TestContentNone means no test notification is shown.
	TestContentNone TestContent = iota
	// TestContentAction shows a notification with one interactive button.
	TestContentAction
	// TestContentToastXML shows a templated toast payload.
	TestContentToastXML
)

// DownloadLayout selects how a download-complete notification is laid out.
type DownloadLayout int

const (
	// DownloadLayoutTitled puts "Download Complete" in the title.
	DownloadLayoutTitled DownloadLayout = iota
	// DownloadLayoutLabelTitle puts the source label in the title.
	DownloadLayoutLabelTitle
)

// Policy is the per-platform behaviour table.
type Policy struct {
	Platform Platform

	// ReplaceByKey means mention notifications for the same conversation must
	// be closed explicitly before a new one is shown; the platform stacks them
	// otherwise.
	ReplaceByKey bool

	TestContent    TestContent
	DownloadLayout DownloadLayout

	// DefaultMentionSound is played for non-silent mentions that carry no
	// sound of their own. Empty means the native primitive plays its default.
	DefaultMentionSound string
}

var policies = map[Platform]Policy{
	Windows: {
		Platform:       Windows,
		ReplaceByKey:   true,
		TestContent:    TestContentToastXML,
		DownloadLayout: DownloadLayoutLabelTitle,
	},
	Darwin: {
		Platform:       Darwin,
		TestContent:    TestContentAction,
		DownloadLayout: DownloadLayoutTitled,
	},
	Linux: {
		Platform:       Linux,
		TestContent:    TestContentAction,
		DownloadLayout: DownloadLayoutTitled,
	},
	Unknown: {
		Platform:       Unknown,
		TestContent:    TestContentNone,
		DownloadLayout: DownloadLayoutTitled,
	},
}

// Parse maps a GOOS value to a Platform.
func Parse(goos string) Platform {
	switch goos {
	case "windows":
		return Windows
	case "darwin":
		return Darwin
	case "linux", "freebsd", "openbsd", "netbsd", "dragonfly":
		// The BSD desktops speak the same freedesktop D-Bus protocol.
		return Linux
	default:
		return Unknown
	}
}

// Detect returns the platform the binary is running on.
func Detect() Platform {
	return Parse(runtime.GOOS)
}

// PolicyFor returns the policy table entry for p.
func PolicyFor(p Platform) Policy {
	if policy, ok := policies[p]; ok {
		return policy
	}
	return policies[Unknown]
}

// Current returns the policy for the detected platform.
func Current() Policy {
	return PolicyFor(Detect())
}
