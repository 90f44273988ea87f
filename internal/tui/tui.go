// Copyright (c) 2026 fxview Team
// fxview - terminal currency converter
// This source code is licensed under the MIT license found in the LICENSE file.

// package tui provides the terminal user interface for fxview.
// This file, tui.go, holds the converter view: the top-level model that owns
// the converter state, dispatches rate fetches and routes keys to the amount
// input, the currency list and the pickers.
package tui // import "github.com/toeirei/fxview/internal/tui"

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/toeirei/fxview/internal/converter"
	"github.com/toeirei/fxview/internal/i18n"
	"github.com/toeirei/fxview/internal/logging"
	"github.com/toeirei/fxview/internal/model"
	"github.com/toeirei/fxview/internal/money"
	"github.com/toeirei/fxview/internal/rates"
)

// DefaultSession is the session name used when none is configured.
const DefaultSession = "default"

// focusState represents which part of the UI receives keys.
type focusState int

const (
	focusList focusState = iota
	focusAmount
	focusBasePicker
	focusTargetPicker
)

// chromeHeight is the number of lines used by everything but the list.
const chromeHeight = 10

// rateTableMsg reports a completed fetch.
type rateTableMsg struct {
	token uint64
	base  string
	table *model.RateTable
	err   error
}

// debounceMsg fires when the amount debounce delay has elapsed.
type debounceMsg struct {
	token uint64
}

// copyResultMsg reports the outcome of a clipboard write.
type copyResultMsg struct {
	text string
	err  error
}

// SessionStore persists the converter session between runs.
type SessionStore interface {
	SaveSession(ctx context.Context, s model.Session) error
	GetSession(ctx context.Context, name string) (*model.Session, error)
}

// Options configures the converter view.
type Options struct {
	Loader rates.Loader
	// Sessions is optional; without it nothing is restored or saved.
	Sessions     SessionStore
	SessionName  string
	BaseCurrency string
	// OverrideBase makes BaseCurrency win over a restored session.
	OverrideBase bool
	BaseAmount   float64
	Debounce     time.Duration
	Lang         string
	// Clipboard overrides the clipboard writer (tests).
	Clipboard func(string) error
	// LogFile receives log output while the TUI owns the terminal.
	LogFile string
}

// converterModel is the top-level model for the TUI.
type converterModel struct {
	opts     Options
	ctx      context.Context
	cancel   context.CancelFunc
	state    *converter.State
	debounce *converter.Debouncer
	format   *money.Formatter

	focus  focusState
	amount textinput.Model
	picker pickerModel
	list   viewport.Model
	cursor int
	keys   keyMap
	help   help.Model

	flash    string
	flashErr bool
	width    int
	height   int
}

// newConverterModel builds the view, restoring the saved session when one
// exists.
func newConverterModel(ctx context.Context, opts Options) *converterModel {
	if opts.SessionName == "" {
		opts.SessionName = DefaultSession
	}
	if opts.Clipboard == nil {
		opts.Clipboard = clipboard.WriteAll
	}
	amount := opts.BaseAmount
	if amount == 0 {
		amount = 1
	}

	state := converter.New(opts.BaseCurrency, amount)
	if opts.Sessions != nil {
		sess, err := opts.Sessions.GetSession(ctx, opts.SessionName)
		switch {
		case err == nil && sess != nil:
			restored := *sess
			if opts.OverrideBase && opts.BaseCurrency != "" {
				restored.BaseCurrency = opts.BaseCurrency
			}
			state = converter.Restore(restored)
			logging.Debugf("tui: restored session %q (%s, %d targets)", sess.Name, state.BaseCurrency, len(sess.Targets))
		case err != nil:
			logging.Debugf("tui: no session %q: %v", opts.SessionName, err)
		}
	}

	ti := textinput.New()
	ti.Prompt = ""
	ti.CharLimit = 32
	ti.Width = 18
	ti.Cursor.Style = focusedStyle
	ti.SetValue(strconv.FormatFloat(state.BaseAmount, 'f', -1, 64))

	m := &converterModel{
		opts:     opts,
		ctx:      ctx,
		state:    state,
		debounce: converter.NewDebouncer(opts.Debounce),
		format:   money.NewFormatter(opts.Lang),
		focus:    focusList,
		amount:   ti,
		list:     viewport.New(60, 10),
		keys:     newKeyMap(),
		help:     help.New(),
	}
	m.syncList()
	return m
}

// Init is the first function that will be called by the Bubble Tea runtime.
// It issues the initial fetch for the base currency.
func (m *converterModel) Init() tea.Cmd {
	return m.fetch(m.state.Mount())
}

// fetch returns a command running req against the loader. A fetch still in
// flight is cancelled; its late completion would be discarded anyway.
func (m *converterModel) fetch(req converter.FetchRequest) tea.Cmd {
	if m.cancel != nil {
		m.cancel()
	}
	ctx, cancel := context.WithCancel(m.ctx)
	m.cancel = cancel
	loader := m.opts.Loader
	logging.Debugf("tui: fetch %s (token %d)", req.Base, req.Token)
	return func() tea.Msg {
		defer cancel()
		t, err := loader.Fetch(ctx, req.Base)
		return rateTableMsg{token: req.Token, base: req.Base, table: t, err: err}
	}
}

// Update is the main message loop.
func (m *converterModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.list.Width = max(msg.Width-4, 20)
		m.list.Height = max(msg.Height-chromeHeight, panelHeight)
		m.help.Width = msg.Width
		m.picker.height = max(msg.Height-chromeHeight, 3)
		m.syncList()
		return m, nil

	case rateTableMsg:
		m.applyRateTable(msg)
		return m, nil

	case debounceMsg:
		if v, ok := m.debounce.Settle(msg.token); ok {
			if m.state.ApplyAmountInput(v) {
				m.syncList()
			}
		}
		return m, nil

	case copyResultMsg:
		if msg.err != nil {
			m.setFlash(i18n.T("converter.copy_failed", msg.err), true)
		} else {
			m.setFlash(i18n.T("converter.copied", msg.text), false)
		}
		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		switch m.focus {
		case focusBasePicker, focusTargetPicker:
			return m.updatePicker(msg)
		case focusAmount:
			return m.updateAmount(msg)
		default:
			return m.updateList(msg)
		}
	}

	if m.focus == focusAmount {
		var cmd tea.Cmd
		m.amount, cmd = m.amount.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *converterModel) applyRateTable(msg rateTableMsg) {
	switch m.state.ApplyRateTable(msg.token, msg.table, msg.err) {
	case converter.Discarded:
		logging.Debugf("tui: discarded stale %s table (token %d)", msg.base, msg.token)
		return
	case converter.Failed:
		logging.Warnf("tui: fetching %s failed: %v", msg.base, msg.err)
	case converter.Applied:
		logging.Debugf("tui: applied %s table with %d rates", msg.base, m.state.Table.Len())
		if m.focus == focusBasePicker || m.focus == focusTargetPicker {
			m.picker.SetOptions(m.state.Table.CurrencyList)
		}
	}
	m.syncList()
}

func (m *converterModel) updateAmount(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "tab", "enter", "down", "esc":
		m.focus = focusList
		m.amount.Blur()
		return m, nil
	case "/":
		return m, m.openPicker(focusBasePicker)
	}

	before := m.amount.Value()
	var cmd tea.Cmd
	m.amount, cmd = m.amount.Update(msg)
	if v := m.amount.Value(); v != before {
		token := m.debounce.Trigger(v)
		cmd = tea.Batch(cmd, tea.Tick(m.debounce.Delay, func(time.Time) tea.Msg {
			return debounceMsg{token: token}
		}))
	}
	return m, cmd
}

func (m *converterModel) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
			m.syncList()
		}
	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.state.Displayed)-1 {
			m.cursor++
			m.syncList()
		}
	case key.Matches(msg, m.keys.Amount):
		m.focus = focusAmount
		return m, m.amount.Focus()
	case key.Matches(msg, m.keys.Base):
		return m, m.openPicker(focusBasePicker)
	case key.Matches(msg, m.keys.Target):
		return m, m.openPicker(focusTargetPicker)
	case key.Matches(msg, m.keys.Remove):
		m.removeSelected()
	case key.Matches(msg, m.keys.Copy):
		return m, m.copySelected()
	case key.Matches(msg, m.keys.Refresh):
		return m, m.fetch(m.state.Refresh())
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	}
	return m, nil
}

func (m *converterModel) openPicker(which focusState) tea.Cmd {
	var options []string
	if m.state.Table != nil {
		options = m.state.Table.CurrencyList
	}
	title := i18n.T("picker.base_title")
	marked := map[string]bool{m.state.BaseCurrency: true}
	if which == focusTargetPicker {
		title = i18n.T("picker.target_title")
		marked = make(map[string]bool, len(m.state.Displayed))
		for _, code := range m.state.Targets() {
			marked[code] = true
		}
	}
	m.amount.Blur()
	m.picker = newPickerModel(title, options, marked)
	if m.height > 0 {
		m.picker.height = max(m.height-chromeHeight, 3)
	}
	m.focus = which
	return textinput.Blink
}

func (m *converterModel) updatePicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	which := m.focus
	var (
		res  pickerResult
		code string
		cmd  tea.Cmd
	)
	m.picker, res, code, cmd = m.picker.Update(msg)
	switch res {
	case pickerCancelled:
		m.focus = focusList
		return m, nil
	case pickerPicked:
		m.focus = focusList
		if which == focusBasePicker {
			if req, ok := m.state.SetBaseCurrency(code); ok {
				m.syncList()
				return m, m.fetch(req)
			}
			return m, nil
		}
		m.addTarget(code)
		return m, nil
	}
	return m, cmd
}

func (m *converterModel) addTarget(code string) {
	m.state.SelectPendingTarget(code)
	if !m.state.AddPendingTarget() {
		m.setFlash(i18n.T("converter.already_added", code), false)
		return
	}
	m.cursor = len(m.state.Displayed) - 1
	m.setFlash(i18n.T("converter.added", code), false)
	m.syncList()
	m.list.GotoBottom()
}

func (m *converterModel) removeSelected() {
	rows := m.state.Displayed
	if m.cursor < 0 || m.cursor >= len(rows) {
		return
	}
	code := rows[m.cursor].Currency
	if m.state.RemoveTarget(code) {
		if m.cursor >= len(m.state.Displayed) && m.cursor > 0 {
			m.cursor--
		}
		m.setFlash(i18n.T("converter.removed", code), false)
		m.syncList()
	}
}

func (m *converterModel) copySelected() tea.Cmd {
	rows := m.state.Rows()
	if m.cursor < 0 || m.cursor >= len(rows) || !rows[m.cursor].Known {
		return nil
	}
	text := strconv.FormatFloat(rows[m.cursor].Amount, 'f', 2, 64)
	write := m.opts.Clipboard
	return func() tea.Msg {
		return copyResultMsg{text: text, err: write(text)}
	}
}

func (m *converterModel) setFlash(s string, isErr bool) {
	m.flash = s
	m.flashErr = isErr
}

// panels builds the presentational rows for the current state.
func (m *converterModel) panels() []CurrencyPanel {
	rows := m.state.Displayed
	out := make([]CurrencyPanel, len(rows))
	for i, d := range rows {
		out[i] = CurrencyPanel{
			Currency:     d.Currency,
			Rate:         d.Rate,
			Known:        d.Known,
			BaseAmount:   m.state.BaseAmount,
			BaseCurrency: m.state.BaseCurrency,
			Selected:     i == m.cursor && m.focus == focusList,
		}
	}
	return out
}

// syncList re-renders the list content and keeps the cursor row visible.
func (m *converterModel) syncList() {
	if m.cursor >= len(m.state.Displayed) {
		m.cursor = max(len(m.state.Displayed)-1, 0)
	}
	panels := m.panels()
	views := make([]string, len(panels))
	for i, p := range panels {
		views[i] = p.View(m.format, m.list.Width)
	}
	m.list.SetContent(strings.Join(views, "\n"))

	top := m.cursor * panelHeight
	switch {
	case top < m.list.YOffset:
		m.list.SetYOffset(top)
	case top+panelHeight > m.list.YOffset+m.list.Height:
		m.list.SetYOffset(top + panelHeight - m.list.Height)
	}
}

// statusLine describes the fetch state above the list.
func (m *converterModel) statusLine() string {
	s := m.state
	switch {
	case s.Loading():
		return helpStyle.Render(i18n.T("general.loading"))
	case s.Status == converter.StatusError && len(s.Displayed) > 0:
		return errorStyle.Render(i18n.T("converter.error", errText(s.Err)))
	case s.Table != nil && s.Table.Stale:
		return specialStyle.Render(i18n.T("converter.stale", s.Table.FetchedAt.Local().Format(time.DateTime)))
	case s.Table != nil && s.Table.Date != "":
		return helpStyle.Render(i18n.T("converter.rates_as_of", s.Table.Date))
	}
	return ""
}

// emptyMessage is shown instead of the list when nothing is displayed. A
// failed fetch is reported as such rather than as an empty selection.
func (m *converterModel) emptyMessage() string {
	if m.state.Status == converter.StatusError {
		return errorStyle.Render(i18n.T("converter.error", errText(m.state.Err)))
	}
	return helpStyle.Render(i18n.T("general.please.select.currency"))
}

func errText(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

// View renders the converter.
func (m *converterModel) View() string {
	title := mainTitleStyle.Render("💱 " + i18n.T("general.app_title"))

	baseStyle := baseButtonStyle
	if m.focus == focusBasePicker {
		baseStyle = activeBaseButtonStyle
	}
	amountLabel := i18n.T("general.amount") + ": "
	if m.focus == focusAmount {
		amountLabel = focusedStyle.Render(amountLabel)
	}
	controls := lipgloss.JoinHorizontal(lipgloss.Center,
		i18n.T("general.base")+": ", baseStyle.Render(m.state.BaseCurrency+" ▾"),
		"   ", amountLabel, m.amount.View(),
	)

	var body string
	switch {
	case m.focus == focusBasePicker || m.focus == focusTargetPicker:
		body = m.picker.View()
	case len(m.state.Displayed) == 0:
		body = m.emptyMessage()
	default:
		body = m.list.View()
	}

	var flash string
	if m.flash != "" {
		if m.flashErr {
			flash = errorStyle.Render(m.flash)
		} else {
			flash = statusMessageStyle.Render(m.flash)
		}
	}

	var helpView string
	if m.focus == focusBasePicker || m.focus == focusTargetPicker {
		helpView = m.help.View(pickerKeys{m.keys})
	} else {
		helpView = m.help.View(m.keys)
	}

	width := m.width
	if width == 0 {
		width = 60
	}
	header := AlignFooter(title, m.statusLine(), max(width-4, 20))
	return docStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
		header, "", controls, "", body, "", flash, helpView,
	))
}

// saveSession stores the current base, amount and targets.
func (m *converterModel) saveSession(ctx context.Context) error {
	if m.opts.Sessions == nil {
		return nil
	}
	sess := m.state.Session(m.opts.SessionName)
	sess.UpdatedAt = time.Now()
	if err := m.opts.Sessions.SaveSession(ctx, sess); err != nil {
		return fmt.Errorf("failed to save session %q: %w", sess.Name, err)
	}
	logging.Debugf("tui: saved session %q", sess.Name)
	return nil
}

// Run starts the converter TUI and blocks until the user quits. Logs are
// redirected to opts.LogFile for the lifetime of the program.
func Run(ctx context.Context, opts Options) error {
	if opts.Loader == nil {
		return errors.New("tui: no rate loader configured")
	}
	if opts.LogFile != "" {
		closer, err := logging.ToFile(opts.LogFile)
		if err != nil {
			return err
		}
		defer closer.Close() //nolint:errcheck
	}

	m := newConverterModel(ctx, opts)
	final, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	if m.cancel != nil {
		m.cancel()
	}
	if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("TUI run error: %w", err)
	}
	if fm, ok := final.(*converterModel); ok {
		if serr := fm.saveSession(context.WithoutCancel(ctx)); serr != nil {
			logging.Warnf("%v", serr)
		}
	}
	return nil
}
