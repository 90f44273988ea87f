// Copyright (c) 2026 fxview Team
// fxview - terminal currency converter
// This source code is licensed under the MIT license found in the LICENSE file.

package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/toeirei/fxview/internal/i18n"
	"github.com/toeirei/fxview/internal/money"
)

// CurrencyPanel renders one converted row. It holds no state of its own;
// removal is handled by the converter view acting on the selected panel.
type CurrencyPanel struct {
	Currency     string
	Rate         float64
	Known        bool
	BaseAmount   float64
	BaseCurrency string
	Selected     bool
}

// panelHeight is the number of lines a rendered panel occupies.
const panelHeight = 2

// View renders the panel: the converted amount on the first line and the
// unit rate below it.
func (p CurrencyPanel) View(f *money.Formatter, width int) string {
	var amount, unit string
	if p.Known {
		amount = f.Amount(p.Currency, p.BaseAmount*p.Rate)
		unit = i18n.T("converter.unit_rate", p.BaseCurrency, f.Rate(p.Rate), p.Currency)
	} else {
		amount = "—"
		unit = i18n.T("converter.unknown_rate")
	}

	code := p.Currency
	if p.Selected {
		code = selectedItemStyle.Render(code)
	}
	inner := max(width-3, 10)
	top := AlignFooter(code, panelAmountStyle.Render(amount), inner)
	bottom := helpStyle.Render(unit)

	style := panelStyle
	if p.Selected {
		style = selectedPanelStyle
	}
	return style.Render(lipgloss.JoinVertical(lipgloss.Left, top, bottom))
}

// String is the plain one-line form used in logs.
func (p CurrencyPanel) String() string {
	return fmt.Sprintf("%s %g×%g", p.Currency, p.BaseAmount, p.Rate)
}
