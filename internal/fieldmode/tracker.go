// Package fieldmode tracks, per editable field, whether its value is derived
// automatically or was typed by the operator. It is a pure state machine
// keyed by field identity; the UI layer is a thin adapter over it.
package fieldmode

import "strings"

// Mode says who owns a field's value right now.
type Mode string

const (
	// Auto: the value is derived and will be overwritten when its upstream
	// source (the team name) changes.
	Auto Mode = "auto"
	// Manual: the value was typed by the operator and is immune to
	// derivation until it is cleared again.
	Manual Mode = "manual"
)

// Tracker holds the mode per field key. Not persisted; it lives for one
// controller session and is rebuilt from values on every full reload.
type Tracker struct {
	modes map[string]Mode
}

// NewTracker returns an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{modes: make(map[string]Mode)}
}

// Observe re-evaluates a field's mode from its current value: blank means
// Auto, anything else Manual. Called on load and on every submit, so the
// mode can never go stale relative to the value.
func (t *Tracker) Observe(field, value string) Mode {
	m := Manual
	if strings.TrimSpace(value) == "" {
		m = Auto
	}
	t.modes[field] = m
	return m
}

// Set forces a field into a mode. Used when a derivation fills a blank
// field: the value is no longer blank but ownership stays Auto.
func (t *Tracker) Set(field string, m Mode) {
	t.modes[field] = m
}

// Mode reports the current mode for a field. Fields never observed default
// to Auto, matching a blank initial value.
func (t *Tracker) Mode(field string) Mode {
	if m, ok := t.modes[field]; ok {
		return m
	}
	return Auto
}

// Reset drops all tracked fields, for a full snapshot replacement.
func (t *Tracker) Reset() {
	t.modes = make(map[string]Mode)
}
