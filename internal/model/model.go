// Copyright (c) 2026 fxview Team
// fxview - terminal currency converter
// This source code is licensed under the MIT license found in the LICENSE file.

// package model defines the core data structures used throughout fxview.
// These structs represent rate tables, converter rows and saved sessions and
// are shared by the converter core, the rate loaders, the store and the UIs.
package model // import "github.com/toeirei/fxview/internal/model"

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

// DefaultBaseCurrency is the base currency used when nothing else is configured.
const DefaultBaseCurrency = "USD"

// RateTable holds the conversion factors from Base to every supported
// currency, plus the ordered list of selectable currency codes.
// A RateTable is never mutated after construction; a new fetch produces a
// new table and callers compare tables by pointer identity.
type RateTable struct {
	Base         string             `json:"base"`
	Date         string             `json:"date,omitempty"`
	Rates        map[string]float64 `json:"rates"`
	CurrencyList []string           `json:"currency_list"`
	FetchedAt    time.Time          `json:"fetched_at"`
	// Stale is set when the table was served from the local cache after the
	// remote feed failed.
	Stale bool `json:"stale,omitempty"`
}

// NewRateTable builds a RateTable from a base code and its rates. Codes are
// upper-cased, the base is always present with rate 1, and CurrencyList is
// sorted.
func NewRateTable(base, date string, rates map[string]float64, fetchedAt time.Time) *RateTable {
	base = NormalizeCode(base)
	normalized := make(map[string]float64, len(rates)+1)
	for code, rate := range rates {
		normalized[NormalizeCode(code)] = rate
	}
	normalized[base] = 1

	list := make([]string, 0, len(normalized))
	for code := range normalized {
		list = append(list, code)
	}
	slices.Sort(list)

	return &RateTable{
		Base:         base,
		Date:         date,
		Rates:        normalized,
		CurrencyList: list,
		FetchedAt:    fetchedAt,
	}
}

// Rate returns the conversion factor for code and whether the table knows it.
// A nil table knows nothing.
func (t *RateTable) Rate(code string) (float64, bool) {
	if t == nil {
		return 0, false
	}
	r, ok := t.Rates[NormalizeCode(code)]
	return r, ok
}

// Has reports whether code is a selectable currency in this table.
func (t *RateTable) Has(code string) bool {
	_, ok := t.Rate(code)
	return ok
}

// Len returns the number of currencies in the table.
func (t *RateTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.CurrencyList)
}

// WithStale returns a shallow copy of t flagged as stale. The rate map is
// shared, which is fine because tables are never mutated.
func (t *RateTable) WithStale() *RateTable {
	c := *t
	c.Stale = true
	return &c
}

// DisplayedCurrency is one row of the converter list.
type DisplayedCurrency struct {
	Currency string  `json:"currency"`
	Rate     float64 `json:"rate"`
	// Known is false when the current rate table has no entry for Currency.
	Known bool `json:"known"`
}

// Amount returns the converted value of baseAmount in this row's currency.
func (d DisplayedCurrency) Amount(baseAmount float64) float64 {
	return baseAmount * d.Rate
}

// String returns a compact "EUR@0.9" representation, used in logs.
func (d DisplayedCurrency) String() string {
	return fmt.Sprintf("%s@%g", d.Currency, d.Rate)
}

// Session is the persisted part of the converter state: what the user had on
// screen when they last quit.
type Session struct {
	Name         string    `json:"name"`
	BaseCurrency string    `json:"base_currency"`
	BaseAmount   float64   `json:"base_amount"`
	Targets      []string  `json:"targets"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// NormalizeCode trims and upper-cases a currency code.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
