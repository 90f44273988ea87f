// Copyright (c) 2026 fxview Team
// fxview - terminal currency converter
// This source code is licensed under the MIT license found in the LICENSE file.

package converter

import "time"

// DefaultDebounce is the trailing delay applied to amount input.
const DefaultDebounce = 25 * time.Millisecond

// Debouncer implements a trailing debounce as a cancel-on-reinvoke policy.
// Every Trigger supersedes the pending one; when the timer for a trigger
// fires, the caller hands its token to Settle, which only succeeds for the
// last trigger. The timer itself is owned by the caller (a tea.Tick in the
// TUI).
type Debouncer struct {
	Delay time.Duration

	token   uint64
	pending string
	armed   bool
}

// NewDebouncer returns a debouncer with the given delay. Non-positive delays
// fall back to DefaultDebounce.
func NewDebouncer(delay time.Duration) *Debouncer {
	if delay <= 0 {
		delay = DefaultDebounce
	}
	return &Debouncer{Delay: delay}
}

// Trigger records value as the pending input and returns the token the
// caller must present to Settle once Delay has elapsed.
func (d *Debouncer) Trigger(value string) uint64 {
	d.token++
	d.pending = value
	d.armed = true
	return d.token
}

// Settle returns the pending value if token belongs to the last trigger.
// A settled value is consumed; settling the same token twice fails.
func (d *Debouncer) Settle(token uint64) (string, bool) {
	if !d.armed || token != d.token {
		return "", false
	}
	d.armed = false
	return d.pending, true
}

// Cancel drops any pending input.
func (d *Debouncer) Cancel() {
	d.armed = false
	d.pending = ""
}

// Pending reports whether a trigger is waiting to settle.
func (d *Debouncer) Pending() bool {
	return d.armed
}
