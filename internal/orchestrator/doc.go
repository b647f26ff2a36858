// Package orchestrator is the public face of desknotify. Each Display* call
// checks that the host can show notifications and that Do Not Disturb is off,
// builds the matching notification, attaches the side effects of its show and
// click events, and hands it to the native backend.
//
// None of the operations report failure to the caller: a notification that
// cannot be shown is logged and dropped.
package orchestrator
