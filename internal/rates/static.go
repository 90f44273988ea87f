// Copyright (c) 2026 fxview Team
// fxview - terminal currency converter
// This source code is licensed under the MIT license found in the LICENSE file.

package rates

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/toeirei/fxview/internal/model"
)

// StaticLoader serves tables derived from one anchor table by cross rates:
// the rate from B to X is rate(anchor→X) / rate(anchor→B). It backs the
// --offline mode and the tests.
type StaticLoader struct {
	mu     sync.Mutex
	anchor *model.RateTable
	err    error
	delay  time.Duration
	calls  []string
}

var _ Loader = (*StaticLoader)(nil)

// NewStaticLoader returns a loader over anchor.
func NewStaticLoader(anchor *model.RateTable) *StaticLoader {
	return &StaticLoader{anchor: anchor}
}

// SetError makes every subsequent Fetch fail with err (nil clears it).
func (s *StaticLoader) SetError(err error) {
	s.mu.Lock()
	s.err = err
	s.mu.Unlock()
}

// SetDelay makes every subsequent Fetch wait d (or until ctx is done).
func (s *StaticLoader) SetDelay(d time.Duration) {
	s.mu.Lock()
	s.delay = d
	s.mu.Unlock()
}

// Calls returns the bases requested so far, in order.
func (s *StaticLoader) Calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.calls...)
}

// Fetch derives the table for base.
func (s *StaticLoader) Fetch(ctx context.Context, base string) (*model.RateTable, error) {
	base = model.NormalizeCode(base)
	s.mu.Lock()
	s.calls = append(s.calls, base)
	err, delay, anchor := s.err, s.delay, s.anchor
	s.mu.Unlock()

	if delay > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
	}
	if err != nil {
		return nil, err
	}
	return Cross(anchor, base)
}

// Cross derives the table for base from anchor.
func Cross(anchor *model.RateTable, base string) (*model.RateTable, error) {
	base = model.NormalizeCode(base)
	pivot, ok := anchor.Rate(base)
	if !ok || pivot == 0 {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCurrency, base)
	}
	rates := make(map[string]float64, len(anchor.Rates))
	for code, r := range anchor.Rates {
		rates[code] = r / pivot
	}
	return model.NewRateTable(base, anchor.Date, rates, time.Now()), nil
}

// DemoTable returns a built-in USD table used when running with --offline.
// The figures are illustrative, not live.
func DemoTable() *model.RateTable {
	return model.NewRateTable("USD", "demo", map[string]float64{
		"AUD": 1.52,
		"BRL": 5.05,
		"CAD": 1.36,
		"CHF": 0.88,
		"CNY": 7.19,
		"CZK": 23.1,
		"DKK": 6.86,
		"EUR": 0.92,
		"GBP": 0.79,
		"HKD": 7.82,
		"INR": 83.2,
		"JPY": 151.4,
		"KRW": 1345,
		"MXN": 16.9,
		"NOK": 10.7,
		"NZD": 1.66,
		"PLN": 3.97,
		"SEK": 10.6,
		"SGD": 1.35,
		"TRY": 32.2,
		"ZAR": 18.7,
	}, time.Now())
}
