// Package notification defines the notification model: one value object per
// shown notification, built from a request, rendered through a native Backend
// and translating the backend's raw events into once-only show and click
// callbacks.
package notification
