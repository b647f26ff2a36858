// Package native provides the show primitives of hosts without a
// notification server on the session bus: AppleScript on macOS and
// PowerShell toast templates on Windows.
package native
