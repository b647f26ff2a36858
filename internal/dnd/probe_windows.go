//go:build windows

package dnd

import (
	"golang.org/x/sys/windows/registry"
)

const toastSettingsKey = `Software\Microsoft\Windows\CurrentVersion\Notifications\Settings`

// WindowsFocusProbe reports toasts being globally disabled (Focus Assist /
// Do Not Disturb).
func WindowsFocusProbe() Probe {
	return func() bool {
		k, err := registry.OpenKey(registry.CURRENT_USER, toastSettingsKey, registry.QUERY_VALUE)
		if err != nil {
			return false
		}
		defer func() { _ = k.Close() }()

		v, _, err := k.GetIntegerValue("NOC_GLOBAL_SETTING_TOASTS_ENABLED")
		if err != nil {
			return false
		}
		return v == 0
	}
}
