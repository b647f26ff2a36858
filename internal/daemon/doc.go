// Package daemon wires desknotifyd together. It connects the session bus
// service to the orchestrator, bridges window side effects back to the host
// application as signals and local sounds, and applies configuration and
// Do Not Disturb changes while running.
package daemon
