// Copyright (c) 2026 fxview Team
// fxview - terminal currency converter
// This source code is licensed under the MIT license found in the LICENSE file.

package converter

import (
	"fmt"

	"github.com/toeirei/fxview/internal/model"
	"github.com/toeirei/fxview/internal/money"
)

// LoadStatus tracks the rate table fetch lifecycle.
type LoadStatus int

const (
	StatusIdle LoadStatus = iota
	StatusLoading
	StatusLoaded
	StatusError
)

func (s LoadStatus) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusLoading:
		return "loading"
	case StatusLoaded:
		return "loaded"
	case StatusError:
		return "error"
	default:
		return fmt.Sprintf("LoadStatus(%d)", int(s))
	}
}

// Outcome describes what ApplyRateTable did with a completed fetch.
type Outcome int

const (
	// Applied means the table replaced the current one and rows were recomputed.
	Applied Outcome = iota
	// Unchanged means the same table was delivered again; nothing was recomputed.
	Unchanged
	// Failed means the fetch errored; the previous table stays in place.
	Failed
	// Discarded means the completion belonged to a superseded request.
	Discarded
)

// Row is a displayed currency priced against the current base amount.
type Row struct {
	model.DisplayedCurrency
	Amount float64
}

// State is the converter's local state. The zero value is not useful; use New.
type State struct {
	BaseCurrency  string
	BaseAmount    float64
	PendingTarget string
	Displayed     []model.DisplayedCurrency
	Table         *model.RateTable
	Status        LoadStatus
	Err           error

	requests Requests
}

// New returns a state for base and amount with an empty target list. An
// empty base falls back to model.DefaultBaseCurrency and negative amounts are
// stored as their absolute value.
func New(base string, amount float64) *State {
	base = model.NormalizeCode(base)
	if base == "" {
		base = model.DefaultBaseCurrency
	}
	if amount < 0 {
		amount = -amount
	}
	return &State{BaseCurrency: base, BaseAmount: amount}
}

// Mount issues the initial fetch for the current base currency.
func (s *State) Mount() FetchRequest {
	return s.beginFetch()
}

// Refresh re-issues a fetch for the current base currency.
func (s *State) Refresh() FetchRequest {
	return s.beginFetch()
}

func (s *State) beginFetch() FetchRequest {
	s.Status = StatusLoading
	return FetchRequest{Base: s.BaseCurrency, Token: s.requests.Next()}
}

// SetBaseAmount stores the absolute value of v.
func (s *State) SetBaseAmount(v float64) {
	if v < 0 {
		v = -v
	}
	s.BaseAmount = v
}

// ApplyAmountInput parses raw user input and stores it. Unparseable input
// leaves the amount untouched and reports false.
func (s *State) ApplyAmountInput(input string) bool {
	v, err := money.ParseAmount(input)
	if err != nil {
		return false
	}
	s.SetBaseAmount(v)
	return true
}

// SetBaseCurrency switches the base. It is a no-op (ok=false) when code is
// empty or equal to the current base; otherwise exactly one fetch request
// for the new base is returned.
func (s *State) SetBaseCurrency(code string) (req FetchRequest, ok bool) {
	code = model.NormalizeCode(code)
	if code == "" || code == s.BaseCurrency {
		return FetchRequest{}, false
	}
	s.BaseCurrency = code
	return s.beginFetch(), true
}

// SelectPendingTarget records a candidate target currency. An empty code
// clears the selection.
func (s *State) SelectPendingTarget(code string) {
	s.PendingTarget = model.NormalizeCode(code)
}

// AddPendingTarget appends the pending target to the displayed list. It
// reports false when nothing is pending or the code is already displayed.
func (s *State) AddPendingTarget() bool {
	if s.PendingTarget == "" {
		return false
	}
	return s.AddTarget(s.PendingTarget)
}

// AddTarget appends code priced from the current table. Duplicate and
// empty codes are ignored.
func (s *State) AddTarget(code string) bool {
	code = model.NormalizeCode(code)
	if code == "" || s.IndexOf(code) >= 0 {
		return false
	}
	s.Displayed = append(s.Displayed, lookup(code, s.Table))
	return true
}

// RemoveTarget drops code from the displayed list. Unknown codes are a no-op.
func (s *State) RemoveTarget(code string) bool {
	i := s.IndexOf(code)
	if i < 0 {
		return false
	}
	next := make([]model.DisplayedCurrency, 0, len(s.Displayed)-1)
	next = append(next, s.Displayed[:i]...)
	next = append(next, s.Displayed[i+1:]...)
	s.Displayed = next
	return true
}

// IndexOf returns the position of code in the displayed list, or -1.
func (s *State) IndexOf(code string) int {
	code = model.NormalizeCode(code)
	for i, d := range s.Displayed {
		if d.Currency == code {
			return i
		}
	}
	return -1
}

// ApplyRateTable hands a completed fetch back to the state. Completions for
// anything but the latest request are discarded, failures keep the previous
// table, and a table that differs by identity from the current one replaces
// it and reprices every displayed row.
func (s *State) ApplyRateTable(token uint64, table *model.RateTable, err error) Outcome {
	if !s.requests.IsCurrent(token) {
		return Discarded
	}
	if err != nil {
		s.Status = StatusError
		s.Err = err
		return Failed
	}
	s.Status = StatusLoaded
	s.Err = nil
	if table == s.Table {
		return Unchanged
	}
	s.Table = table
	s.Displayed = RecomputeDisplayed(s.Displayed, table)
	return Applied
}

// Loading reports whether a fetch is in flight.
func (s *State) Loading() bool {
	return s.Status == StatusLoading
}

// Rows prices every displayed currency against the current base amount.
func (s *State) Rows() []Row {
	rows := make([]Row, len(s.Displayed))
	for i, d := range s.Displayed {
		rows[i] = Row{DisplayedCurrency: d, Amount: d.Amount(s.BaseAmount)}
	}
	return rows
}

// Targets returns the displayed currency codes in display order.
func (s *State) Targets() []string {
	codes := make([]string, len(s.Displayed))
	for i, d := range s.Displayed {
		codes[i] = d.Currency
	}
	return codes
}

// Session captures the persisted part of the state under name.
func (s *State) Session(name string) model.Session {
	return model.Session{
		Name:         name,
		BaseCurrency: s.BaseCurrency,
		BaseAmount:   s.BaseAmount,
		Targets:      s.Targets(),
	}
}

// Restore builds a state from a saved session. Rates are unknown until the
// first table arrives.
func Restore(sess model.Session) *State {
	s := New(sess.BaseCurrency, sess.BaseAmount)
	for _, code := range sess.Targets {
		s.AddTarget(code)
	}
	return s
}

// RecomputeDisplayed returns a new list with every entry repriced from
// table, preserving order. The input slice is not modified.
func RecomputeDisplayed(displayed []model.DisplayedCurrency, table *model.RateTable) []model.DisplayedCurrency {
	if len(displayed) == 0 {
		return nil
	}
	out := make([]model.DisplayedCurrency, len(displayed))
	for i, d := range displayed {
		out[i] = lookup(d.Currency, table)
	}
	return out
}

func lookup(code string, table *model.RateTable) model.DisplayedCurrency {
	rate, ok := table.Rate(code)
	return model.DisplayedCurrency{Currency: code, Rate: rate, Known: ok}
}
