// Copyright (c) 2026 fxview Team
// fxview - terminal currency converter
// This source code is licensed under the MIT license found in the LICENSE file.

// Package money parses user-entered amounts and formats converted amounts
// for display.
package money

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// ErrInvalidAmount is returned when input cannot be read as a finite number.
var ErrInvalidAmount = errors.New("invalid amount")

// ParseAmount reads a user-entered amount. The sign is dropped, so "-5"
// parses as 5. A lone comma is accepted as decimal separator ("2,5").
func ParseAmount(input string) (float64, error) {
	s := strings.TrimSpace(input)
	if s == "" {
		return 0, fmt.Errorf("%w: empty input", ErrInvalidAmount)
	}
	s = strings.ReplaceAll(s, "_", "")
	if strings.Count(s, ",") == 1 && !strings.Contains(s, ".") {
		s = strings.Replace(s, ",", ".", 1)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, input)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: %q is not finite", ErrInvalidAmount, input)
	}
	return math.Abs(v), nil
}

// Formatter renders amounts for one display language.
type Formatter struct {
	tag     language.Tag
	printer *message.Printer
}

// NewFormatter returns a formatter for lang ("en", "de", ...). Unknown
// languages format like English.
func NewFormatter(lang string) *Formatter {
	tag, err := language.Parse(lang)
	if err != nil {
		tag = language.English
	}
	return &Formatter{tag: tag, printer: message.NewPrinter(tag)}
}

// Amount formats amount in the currency code, e.g. "€ 9.00". Codes that are
// not ISO 4217 currencies fall back to four decimals and the raw code.
func (f *Formatter) Amount(code string, amount float64) string {
	unit, err := currency.ParseISO(code)
	if err != nil {
		return f.printer.Sprintf("%.4f %s", amount, code)
	}
	scale, _ := currency.Standard.Rounding(unit)
	symbol := f.printer.Sprint(currency.Symbol(unit))
	return f.printer.Sprintf(fmt.Sprintf("%%s %%.%df", scale), symbol, amount)
}

// Rate formats a conversion factor with enough precision to be useful for
// both strong and weak currencies.
func (f *Formatter) Rate(rate float64) string {
	switch {
	case rate == 0:
		return "0"
	case math.Abs(rate) >= 100:
		return f.printer.Sprintf("%.2f", rate)
	default:
		return f.printer.Sprintf("%.6f", rate)
	}
}

// Number formats a plain number with the language's grouping.
func (f *Formatter) Number(v float64) string {
	return f.printer.Sprintf("%.2f", v)
}
