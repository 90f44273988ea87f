// Copyright (c) 2026 fxview Team
// fxview - terminal currency converter
// This source code is licensed under the MIT license found in the LICENSE file.

package converter

// FetchRequest asks a rate loader for the table of Base. Token identifies the
// request so that out-of-order completions can be told apart.
type FetchRequest struct {
	Base  string
	Token uint64
}

// Requests issues monotonically increasing tokens. Only the most recently
// issued token is current; completions carrying any other token are stale.
// The zero value is ready to use and has issued nothing.
type Requests struct {
	latest uint64
}

// Next issues a new token, invalidating every token issued before it.
func (r *Requests) Next() uint64 {
	r.latest++
	return r.latest
}

// Latest returns the most recently issued token, or 0.
func (r *Requests) Latest() uint64 {
	return r.latest
}

// IsCurrent reports whether token is the most recently issued one.
func (r *Requests) IsCurrent(token uint64) bool {
	return token != 0 && token == r.latest
}
