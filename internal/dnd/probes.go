package dnd

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// probeTimeout bounds every external command a probe runs.
const probeTimeout = 2 * time.Second

// commandOutput runs a command and returns its trimmed stdout.
var commandOutput = func(name string, args ...string) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), probeTimeout)
	defer cancel()

	out, err := exec.CommandContext(ctx, name, args...).Output()
	if err != nil {
		return "", err
	}
	return string(bytes.TrimSpace(out)), nil
}

// GnomeBannersProbe reports GNOME's "show-banners" switch being off.
func GnomeBannersProbe() Probe {
	return func() bool {
		out, err := commandOutput("gsettings", "get", "org.gnome.desktop.notifications", "show-banners")
		if err != nil {
			return false
		}
		return out == "false"
	}
}

// focusAssertions is the subset of macOS's DoNotDisturb Assertions.json we read.
type focusAssertions struct {
	Data []struct {
		StoreAssertionRecords []json.RawMessage `json:"storeAssertionRecords"`
	} `json:"data"`
}

// DarwinFocusProbe reports an active Focus mode on macOS. home is the user's
// home directory; empty means os.UserHomeDir.
func DarwinFocusProbe(home string) Probe {
	return func() bool {
		dir := home
		if dir == "" {
			var err error
			if dir, err = os.UserHomeDir(); err != nil {
				return legacyDarwinDoNotDisturb()
			}
		}

		data, err := os.ReadFile(filepath.Join(dir, "Library", "DoNotDisturb", "DB", "Assertions.json"))
		if err != nil {
			return legacyDarwinDoNotDisturb()
		}
		var assertions focusAssertions
		if err := json.Unmarshal(data, &assertions); err != nil {
			return false
		}
		for _, d := range assertions.Data {
			if len(d.StoreAssertionRecords) > 0 {
				return true
			}
		}
		return false
	}
}

// legacyDarwinDoNotDisturb reads the pre-Monterey notification center flag.
func legacyDarwinDoNotDisturb() bool {
	out, err := commandOutput("defaults", "-currentHost", "read", "com.apple.notificationcenterui", "doNotDisturb")
	if err != nil {
		return false
	}
	return strings.TrimSpace(out) == "1"
}
