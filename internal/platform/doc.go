// Package platform resolves the host platform once at startup and exposes the
// notification policy that differs between Windows, macOS and Linux desktops.
package platform
