// Copyright (c) 2026 fxview Team
// fxview - terminal currency converter
// This source code is licensed under the MIT license found in the LICENSE file.

package tui

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/toeirei/fxview/internal/i18n"
)

// keyMap holds the converter key bindings. Help texts are translated when the
// map is built, so rebuild it after a language change.
type keyMap struct {
	Up      key.Binding
	Down    key.Binding
	Amount  key.Binding
	Base    key.Binding
	Target  key.Binding
	Remove  key.Binding
	Copy    key.Binding
	Refresh key.Binding
	Help    key.Binding
	Quit    key.Binding

	// Picker
	Select key.Binding
	Cancel key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		Up:      key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", i18n.T("help.up"))),
		Down:    key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", i18n.T("help.down"))),
		Amount:  key.NewBinding(key.WithKeys("tab", "i"), key.WithHelp("tab/i", i18n.T("help.amount"))),
		Base:    key.NewBinding(key.WithKeys("/", "b"), key.WithHelp("/ b", i18n.T("help.base"))),
		Target:  key.NewBinding(key.WithKeys("a", "+"), key.WithHelp("a +", i18n.T("help.add"))),
		Remove:  key.NewBinding(key.WithKeys("d", "x", "delete"), key.WithHelp("d x", i18n.T("help.remove"))),
		Copy:    key.NewBinding(key.WithKeys("y"), key.WithHelp("y", i18n.T("help.copy"))),
		Refresh: key.NewBinding(key.WithKeys("r", "ctrl+r"), key.WithHelp("r", i18n.T("help.refresh"))),
		Help:    key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:    key.NewBinding(key.WithKeys("q", "esc", "ctrl+c"), key.WithHelp("q", i18n.T("help.quit"))),
		Select:  key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", i18n.T("help.select"))),
		Cancel:  key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", i18n.T("help.cancel"))),
	}
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Amount, k.Base, k.Target, k.Remove, k.Copy, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Amount},
		{k.Base, k.Target, k.Remove},
		{k.Copy, k.Refresh, k.Help, k.Quit},
	}
}

// pickerKeys is the help shown while a picker is open.
type pickerKeys struct{ k keyMap }

func (p pickerKeys) ShortHelp() []key.Binding {
	return []key.Binding{p.k.Select, p.k.Cancel}
}

func (p pickerKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{p.ShortHelp()}
}
