// Copyright (c) 2026 fxview Team
// fxview - terminal currency converter
// This source code is licensed under the MIT license found in the LICENSE file.

package tui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/toeirei/fxview/internal/i18n"
)

type pickerResult int

const (
	pickerOpen pickerResult = iota
	pickerPicked
	pickerCancelled
)

// pickerModel is a searchable single-choice list of currency codes.
type pickerModel struct {
	title   string
	input   textinput.Model
	options []string
	matches []string
	marked  map[string]bool // shown with a check mark
	cursor  int
	height  int
}

func newPickerModel(title string, options []string, marked map[string]bool) pickerModel {
	ti := textinput.New()
	ti.Placeholder = i18n.T("picker.placeholder")
	ti.Prompt = "› "
	ti.CharLimit = 16
	ti.Width = 20
	ti.Cursor.Style = focusedStyle
	ti.Focus()

	p := pickerModel{title: title, input: ti, marked: marked, height: 8}
	p.SetOptions(options)
	return p
}

// SetOptions replaces the option list, keeping the current query.
func (p *pickerModel) SetOptions(options []string) {
	p.options = options
	p.refilter()
}

// Selected returns the highlighted code, or "".
func (p pickerModel) Selected() string {
	if p.cursor < 0 || p.cursor >= len(p.matches) {
		return ""
	}
	return p.matches[p.cursor]
}

func (p *pickerModel) refilter() {
	p.matches = rankCurrencies(p.options, p.input.Value())
	if p.cursor >= len(p.matches) {
		p.cursor = 0
	}
}

// Update handles one message. The returned code is set when the result is
// pickerPicked.
func (p pickerModel) Update(msg tea.Msg) (pickerModel, pickerResult, string, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.Type {
		case tea.KeyEsc:
			return p, pickerCancelled, "", nil
		case tea.KeyEnter:
			if code := p.Selected(); code != "" {
				return p, pickerPicked, code, nil
			}
			return p, pickerOpen, "", nil
		case tea.KeyUp, tea.KeyCtrlP:
			if p.cursor > 0 {
				p.cursor--
			}
			return p, pickerOpen, "", nil
		case tea.KeyDown, tea.KeyCtrlN:
			if p.cursor < len(p.matches)-1 {
				p.cursor++
			}
			return p, pickerOpen, "", nil
		}
	}

	before := p.input.Value()
	var cmd tea.Cmd
	p.input, cmd = p.input.Update(msg)
	if p.input.Value() != before {
		p.cursor = 0
		p.refilter()
	}
	return p, pickerOpen, "", cmd
}

func (p pickerModel) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(p.title))
	b.WriteString("\n")
	b.WriteString(p.input.View())
	b.WriteString("\n\n")

	if len(p.matches) == 0 {
		b.WriteString(helpStyle.Render(i18n.T("picker.no_match")))
		return dialogBoxStyle.Render(b.String())
	}

	// Window the list around the cursor.
	start := 0
	if p.cursor >= p.height {
		start = p.cursor - p.height + 1
	}
	end := min(start+p.height, len(p.matches))

	lines := make([]string, 0, end-start)
	for i := start; i < end; i++ {
		code := p.matches[i]
		mark := " "
		if p.marked[code] {
			mark = "✓"
		}
		line := fmt.Sprintf("%s %s", mark, code)
		if i == p.cursor {
			lines = append(lines, selectedItemStyle.Render("▸ "+line))
		} else {
			lines = append(lines, itemStyle.Render("  "+line))
		}
	}
	b.WriteString(lipgloss.JoinVertical(lipgloss.Left, lines...))
	if len(p.matches) > end {
		b.WriteString("\n" + helpStyle.Render(fmt.Sprintf("  … %d more", len(p.matches)-end)))
	}
	return dialogBoxStyle.Render(b.String())
}

// rankCurrencies filters options by query. Prefix matches come first, then
// substring matches, then codes within edit distance 1 (typos such as
// "EUT" for "EUR"). Ties keep the option order. An empty query returns all
// options.
func rankCurrencies(options []string, query string) []string {
	query = strings.ToUpper(strings.TrimSpace(query))
	if query == "" {
		return append([]string(nil), options...)
	}

	type scored struct {
		code  string
		score int
		idx   int
	}
	var hits []scored
	for i, code := range options {
		switch {
		case strings.HasPrefix(code, query):
			hits = append(hits, scored{code, 0, i})
		case strings.Contains(code, query):
			hits = append(hits, scored{code, 1, i})
		default:
			if d := levenshtein.ComputeDistance(query, code); d <= 1 {
				hits = append(hits, scored{code, 1 + d, i})
			}
		}
	}
	sort.SliceStable(hits, func(a, b int) bool {
		if hits[a].score != hits[b].score {
			return hits[a].score < hits[b].score
		}
		return hits[a].idx < hits[b].idx
	})

	out := make([]string, len(hits))
	for i, h := range hits {
		out[i] = h.code
	}
	return out
}
