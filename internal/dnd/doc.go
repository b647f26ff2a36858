// Package dnd implements the Do Not Disturb gate. Each platform family has one
// probe asking the operating system whether the user is in a focus or quiet
// mode; the gate picks the probe for the detected platform once and queries it
// fresh on every notification.
package dnd
