// Package dbus is the session bus layer of desknotify. It exports the
// io.github.jmylchreest.Desknotify service the host application calls,
// emits the signals that report side effects back to it, and drives the
// org.freedesktop.Notifications server as the Linux native backend.
package dbus
