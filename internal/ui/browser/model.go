// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package browser

import (
	"context"
	"errors"
	"log/slog"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	"github.com/jeranaias/bookshelf-tui/internal/app"
	"github.com/jeranaias/bookshelf-tui/internal/commands"
	"github.com/jeranaias/bookshelf-tui/internal/export"
	"github.com/jeranaias/bookshelf-tui/internal/library"
	"github.com/jeranaias/bookshelf-tui/internal/logging"
	"github.com/jeranaias/bookshelf-tui/internal/record"
	"github.com/jeranaias/bookshelf-tui/internal/search"
	"github.com/jeranaias/bookshelf-tui/internal/ui/styles"
)

// =============================================================================
// BROWSER STATE
// =============================================================================

// Mode is what the keyboard currently drives.
type Mode int

const (
	ModeBrowse      Mode = iota // Moving through the table
	ModeCommand                 // Typing a : command
	ModeQuickFilter             // Typing a / title filter
	ModeHelp                    // Reading the help pane
	ModeDetail                  // Reading the selected book
)

type statusKind int

const (
	statusInfo statusKind = iota
	statusSuccess
	statusError
)

// chromeLines is the number of rows outside the table: header, column
// header, status bar and command line.
const chromeLines = 4

// =============================================================================
// BROWSER MODEL
// =============================================================================

// Options configures a browser Model.
type Options struct {
	Theme  *styles.Theme
	Logger *slog.Logger

	// Changes delivers watcher batches. Nil disables live import.
	Changes <-chan []string
}

// Model is the Bubble Tea model for the book table.
type Model struct {
	ctx    context.Context
	app    *app.App
	theme  *styles.Theme
	logger *slog.Logger

	registry   *commands.Registry
	completer  *commands.Completer
	completion *commands.CompletionState

	keys  KeyMap
	help  help.Model
	input textinput.Model
	pane  viewport.Model

	// renderer is rebuilt when the width changes
	renderer      *glamour.TermRenderer
	rendererWidth int

	changes <-chan []string

	mode   Mode
	width  int
	height int

	status     string
	statusKind statusKind
	statusSeq  int

	// err is set when the browser quit because the index broke.
	err error
}

// New creates a browser over a.
func New(ctx context.Context, a *app.App, opts Options) Model {
	theme := opts.Theme
	if theme == nil {
		theme = styles.NewTheme()
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
	}

	input := textinput.New()
	input.PromptStyle = theme.InputPrompt
	input.TextStyle = theme.InputText
	input.CharLimit = 1024

	registry := commands.NewRegistry()
	return Model{
		ctx:        ctx,
		app:        a,
		theme:      theme,
		logger:     logger,
		registry:   registry,
		completer:  commands.NewCompleter(registry, a.Library().Columns),
		completion: commands.NewCompletionState(),
		keys:       DefaultKeyMap(),
		help:       help.New(),
		input:      input,
		pane:       viewport.New(0, 0),
		changes:    opts.Changes,
	}
}

// Init starts listening for watcher batches.
func (m Model) Init() tea.Cmd {
	return waitForChanges(m.changes)
}

// Update handles Bubble Tea messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleResize(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case FilesChangedMsg:
		return m.handleFilesChanged(msg)

	case watcherClosedMsg:
		m.changes = nil
		return m, nil

	case statusExpiredMsg:
		if msg.seq == m.statusSeq {
			m.status = ""
		}
		return m, nil
	}

	if m.mode == ModeCommand || m.mode == ModeQuickFilter {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

// Mode returns what the keyboard currently drives.
func (m Model) Mode() Mode {
	return m.mode
}

// Err returns the error that made the browser quit, if any.
func (m Model) Err() error {
	return m.err
}

// Status returns the status line text.
func (m Model) Status() string {
	return m.status
}

// =============================================================================
// MESSAGE HANDLERS
// =============================================================================

func (m Model) handleResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.width = msg.Width
	m.height = msg.Height
	m.theme.SetSize(msg.Width, msg.Height)
	m.help.Width = msg.Width
	m.input.Width = max(msg.Width-4, 1)
	m.app.SetWindowSize(max(msg.Height-chromeLines, 1))

	m.pane.Width = max(msg.Width-2, 1)
	// Pane title and border take three of the table's rows.
	m.pane.Height = max(msg.Height-chromeLines-2, 1)
	switch m.mode {
	case ModeHelp:
		m.pane.SetContent(m.renderMarkdown(m.registry.HelpMarkdown("")))
	case ModeDetail:
		m.refreshDetail()
	}
	return m, nil
}

func (m Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if m.mode == ModeHelp || m.mode == ModeDetail {
		var cmd tea.Cmd
		m.pane, cmd = m.pane.Update(msg)
		return m, cmd
	}
	switch msg.Type {
	case tea.MouseWheelUp:
		m.app.Cursor().ScrollUp(3)
	case tea.MouseWheelDown:
		m.app.Cursor().ScrollDown(3)
	}
	return m, nil
}

func (m Model) handleFilesChanged(msg FilesChangedMsg) (tea.Model, tea.Cmd) {
	report, err := m.app.Import(m.ctx, msg.Paths)
	var cmd tea.Cmd
	if m.fatal(err) {
		return m, tea.Quit
	}
	if err != nil {
		m.logger.Error("watch import failed", "error", err)
		cmd = m.setStatus(statusError, err.Error())
	} else if report.Added+report.Updated > 0 {
		cmd = m.setStatus(statusSuccess, report.String())
	}
	return m, tea.Batch(cmd, waitForChanges(m.changes))
}

// =============================================================================
// KEY HANDLING
// =============================================================================

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.mode {
	case ModeCommand, ModeQuickFilter:
		return m.handleInputKey(msg)
	case ModeHelp, ModeDetail:
		return m.handlePaneKey(msg)
	}

	c := m.app.Cursor()
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Up):
		c.SelectUp()
	case key.Matches(msg, m.keys.Down):
		c.SelectDown()
	case key.Matches(msg, m.keys.PageUp):
		c.PageUp()
	case key.Matches(msg, m.keys.PageDown):
		c.PageDown()
	case key.Matches(msg, m.keys.HalfUp):
		c.ScrollUp(max(c.WindowSize()/2, 1))
	case key.Matches(msg, m.keys.HalfDown):
		c.ScrollDown(max(c.WindowSize()/2, 1))
	case key.Matches(msg, m.keys.Home):
		c.Home()
	case key.Matches(msg, m.keys.End):
		c.End()
	case key.Matches(msg, m.keys.Command):
		return m.openInput(ModeCommand, ":")
	case key.Matches(msg, m.keys.QuickFilter):
		return m.openInput(ModeQuickFilter, "/")
	case key.Matches(msg, m.keys.Detail):
		return m.openDetail()
	case key.Matches(msg, m.keys.Help):
		return m.openHelp("")
	case key.Matches(msg, m.keys.Cancel):
		if m.app.Filtered() {
			m.app.ClearFilter()
			return m, m.setStatus(statusInfo, "filter cleared")
		}
		m.app.Cursor().Deselect()
	}
	return m, nil
}

func (m Model) handleInputKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Cancel):
		return m.closeInput(), nil

	case key.Matches(msg, m.keys.Submit):
		value := m.input.Value()
		mode := m.mode
		m = m.closeInput()
		if mode == ModeQuickFilter {
			return m.runQuickFilter(value)
		}
		return m.runCommand(value)

	case m.mode == ModeCommand && key.Matches(msg, m.keys.Complete, m.keys.Previous):
		if !m.completion.Visible {
			m.completion.Update(m.input.Value(), m.completer.Complete(m.input.Value()))
			if !m.completion.Visible {
				return m, nil
			}
		} else if key.Matches(msg, m.keys.Previous) {
			m.completion.Prev()
		} else {
			m.completion.Next()
		}
		m.input.SetValue(m.completion.Accept())
		m.input.CursorEnd()
		if len(m.completion.Completions) == 1 {
			m.completion.Clear()
		}
		return m, nil
	}

	m.completion.Clear()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) handlePaneKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Cancel),
		key.Matches(msg, m.keys.Help) && m.mode == ModeHelp,
		key.Matches(msg, m.keys.Detail) && m.mode == ModeDetail:
		m.mode = ModeBrowse
		return m, nil
	case key.Matches(msg, m.keys.Quit):
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		m.mode = ModeBrowse
		return m, nil
	}
	var cmd tea.Cmd
	m.pane, cmd = m.pane.Update(msg)
	return m, cmd
}

// =============================================================================
// ACTIONS
// =============================================================================

func (m Model) openInput(mode Mode, prompt string) (tea.Model, tea.Cmd) {
	m.mode = mode
	m.input.Prompt = prompt
	m.input.SetValue("")
	m.completion.Clear()
	return m, m.input.Focus()
}

func (m Model) closeInput() Model {
	m.mode = ModeBrowse
	m.input.Blur()
	m.input.SetValue("")
	m.completion.Clear()
	return m
}

func (m Model) runCommand(line string) (tea.Model, tea.Cmd) {
	res, err := m.registry.Execute(m.ctx, m.app, line)
	if m.fatal(err) {
		return m, tea.Quit
	}
	if err != nil {
		level := slog.LevelWarn
		if errors.Is(err, app.ErrNoMatches) || errors.Is(err, app.ErrNoSelection) {
			level = slog.LevelDebug
		}
		m.logger.Log(m.ctx, level, "command failed", "command", line, "error", err)
		return m, m.setStatus(statusError, err.Error())
	}

	switch res.Action {
	case commands.ActionQuit:
		return m, tea.Quit
	case commands.ActionHelp:
		return m.openHelp(res.HelpTopic)
	}
	if res.Message == "" {
		return m, nil
	}
	return m, m.setStatus(statusSuccess, res.Message)
}

func (m Model) runQuickFilter(pattern string) (tea.Model, tea.Cmd) {
	if pattern == "" {
		m.app.ClearFilter()
		return m, nil
	}
	n, err := m.app.Filter([]search.Description{{Mode: search.ModeFuzzy, Column: record.Title, Pattern: pattern}})
	if m.fatal(err) {
		return m, tea.Quit
	}
	if err != nil {
		return m, m.setStatus(statusError, err.Error())
	}
	return m, m.setStatus(statusInfo, pluralBooks(n)+" match")
}

func (m Model) openHelp(topic string) (tea.Model, tea.Cmd) {
	m.mode = ModeHelp
	m.pane.SetContent(m.renderMarkdown(m.registry.HelpMarkdown(topic)))
	m.pane.GotoTop()
	return m, nil
}

func (m Model) openDetail() (tea.Model, tea.Cmd) {
	if _, ok := m.app.Selected(); !ok {
		return m, m.setStatus(statusError, app.ErrNoSelection.Error())
	}
	m.mode = ModeDetail
	m.refreshDetail()
	m.pane.GotoTop()
	return m, nil
}

func (m *Model) refreshDetail() {
	b, ok := m.app.Selected()
	if !ok {
		m.mode = ModeBrowse
		return
	}
	m.pane.SetContent(m.renderMarkdown(export.BookMarkdown(b, true)))
}

// renderMarkdown renders md with glamour, falling back to the raw text.
func (m *Model) renderMarkdown(md string) string {
	width := max(m.pane.Width-2, 20)
	if m.renderer == nil || m.rendererWidth != width {
		r, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle(m.theme.GlamourStyle()),
			glamour.WithWordWrap(width),
		)
		if err != nil {
			m.logger.Warn("markdown renderer unavailable", "error", err)
			return md
		}
		m.renderer, m.rendererWidth = r, width
	}
	out, err := m.renderer.Render(md)
	if err != nil {
		m.logger.Warn("markdown render failed", "error", err)
		return md
	}
	return out
}

// fatal records err and reports true when it means the index can no longer
// be trusted.
func (m *Model) fatal(err error) bool {
	if !errors.Is(err, library.ErrInternalInconsistency) {
		return false
	}
	m.logger.Error("catalog index is inconsistent, quitting", "error", err)
	m.err = err
	return true
}

func (m *Model) setStatus(kind statusKind, text string) tea.Cmd {
	m.statusSeq++
	m.status = text
	m.statusKind = kind
	return expireStatus(m.statusSeq)
}
