//go:build !windows

package dnd

// WindowsFocusProbe is only meaningful on Windows.
func WindowsFocusProbe() Probe {
	return func() bool { return false }
}
