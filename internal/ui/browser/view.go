// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package browser

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/bookshelf-tui/internal/record"
	"github.com/jeranaias/bookshelf-tui/internal/ui/styles"
	"github.com/jeranaias/bookshelf-tui/internal/util"
)

// idWidth is the fixed width of the id column.
const idWidth = 8

// View renders the browser.
func (m Model) View() string {
	if m.width == 0 {
		return ""
	}

	var body string
	switch m.mode {
	case ModeHelp:
		body = m.renderPane("Help")
	case ModeDetail:
		body = m.renderPane("Book")
	default:
		body = m.renderTable()
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		m.renderHeader(),
		body,
		m.renderStatus(),
		m.renderFooter(),
	)
}

// =============================================================================
// HEADER
// =============================================================================

func (m Model) renderHeader() string {
	t := m.theme
	parts := []string{
		t.HeaderBrand.Render("bookshelf"),
		t.HeaderInfo.Render(" " + pluralBooks(m.app.Library().Len())),
	}

	if m.app.Filtered() {
		descs := m.app.FilterDescriptions()
		texts := make([]string, len(descs))
		for i, d := range descs {
			texts[i] = d.String()
		}
		parts = append(parts, " ", t.FilterBadge.Render(
			fmt.Sprintf("%d shown: %s", m.app.Len(), strings.Join(texts, " & "))))
	}

	if keys := m.app.SortKeys(); len(keys) > 0 && t.GetLayoutMode() != styles.LayoutNarrow {
		texts := make([]string, len(keys))
		for i, k := range keys {
			texts[i] = k.String()
		}
		parts = append(parts, " ", t.SortBadge.Render("sort "+strings.Join(texts, ",")))
	}

	line := lipgloss.JoinHorizontal(lipgloss.Top, parts...)
	return t.Header.Width(m.width).MaxWidth(m.width).MaxHeight(1).Render(line)
}

// =============================================================================
// TABLE
// =============================================================================

// columnWidths splits width between columns. The id column stays narrow
// and the remainder is shared evenly, the last column taking the slack.
func columnWidths(cols []string, width int) []int {
	widths := make([]int, len(cols))
	if len(cols) == 0 {
		return widths
	}
	avail := width - (len(cols) - 1)
	flexible := 0
	for i, c := range cols {
		if record.ParseColumn(c).Kind == record.ColumnID {
			widths[i] = min(idWidth, max(avail, 0))
			avail -= widths[i]
		} else {
			flexible++
		}
	}
	if flexible == 0 || avail <= 0 {
		return widths
	}
	share := avail / flexible
	last := -1
	for i, c := range cols {
		if record.ParseColumn(c).Kind != record.ColumnID {
			widths[i] = share
			last = i
		}
	}
	widths[last] += avail - share*flexible
	return widths
}

func (m Model) renderTable() string {
	t := m.theme
	cols := m.app.Columns()
	if len(cols) == 0 {
		cols = []string{record.Title.String()}
	}
	widths := columnWidths(cols, m.width)
	parsed := make([]record.Column, len(cols))
	headers := make([]string, len(cols))
	for i, c := range cols {
		parsed[i] = record.ParseColumn(c)
		headers[i] = util.FitWidth(c, widths[i])
	}

	rowsHeight := m.app.Cursor().WindowSize()
	lines := make([]string, 0, rowsHeight+1)
	lines = append(lines, t.ColumnHeader.Render(util.FitWidth(strings.Join(headers, " "), m.width)))

	rows := m.app.Rows()
	if len(rows) == 0 {
		msg := "No books yet. Import some with :import <path>."
		if m.app.Filtered() {
			msg = "No books match the filter."
		}
		lines = append(lines, t.EmptyTable.Render(msg))
	}

	start, _ := m.app.Cursor().Range()
	selected, hasSel := m.app.Cursor().Selected()
	cells := make([]string, len(cols))
	for i, b := range rows {
		for j, c := range parsed {
			v, _ := b.Value(c)
			cells[j] = util.FitWidth(util.SingleLine(v), widths[j])
		}
		line := util.FitWidth(strings.Join(cells, " "), m.width)

		style := t.Row
		switch {
		case hasSel && start+i == selected:
			style = t.RowSelected
		case i%2 == 1:
			style = t.RowAlt
		}
		lines = append(lines, style.Render(line))
	}

	return lipgloss.NewStyle().Height(rowsHeight + 1).MaxHeight(rowsHeight + 1).
		Render(strings.Join(lines, "\n"))
}

// =============================================================================
// PANES
// =============================================================================

func (m Model) renderPane(title string) string {
	t := m.theme
	percent := fmt.Sprintf("%3.0f%%", m.pane.ScrollPercent()*100)
	top := t.PaneTitle.Render(title) + strings.Repeat(" ", max(m.width-lipgloss.Width(title)-len(percent)-4, 1)) + percent
	box := t.Pane.Width(max(m.width-2, 1)).Render(m.pane.View())
	return lipgloss.NewStyle().MaxHeight(m.app.Cursor().WindowSize() + 1).
		Render(lipgloss.JoinVertical(lipgloss.Left, top, box))
}

// =============================================================================
// STATUS AND FOOTER
// =============================================================================

func (m Model) renderStatus() string {
	t := m.theme
	c := m.app.Cursor()
	pos := fmt.Sprintf("-/%d", c.Height())
	if i, ok := c.Selected(); ok {
		pos = fmt.Sprintf("%d/%d", i+1, c.Height())
	}
	right := t.StatusPos.Render(pos)

	leftWidth := max(m.width-lipgloss.Width(right), 0)
	// Indicator plus a space.
	textWidth := max(leftWidth-5, 0)

	var left string
	switch {
	case m.mode == ModeCommand && m.completion.Visible:
		left = m.renderCompletions(leftWidth)
	case m.status == "":
	case m.statusKind == statusError:
		left = styles.RenderError(util.TruncateWidth(m.status, textWidth))
	case m.statusKind == statusSuccess:
		left = styles.RenderSuccess(util.TruncateWidth(m.status, textWidth))
	default:
		left = styles.RenderInfo(util.TruncateWidth(m.status, textWidth))
	}

	left = t.StatusBar.Width(leftWidth).MaxWidth(leftWidth).MaxHeight(1).Render(left)
	return lipgloss.JoinHorizontal(lipgloss.Top, left, right)
}

func (m Model) renderCompletions(width int) string {
	t := m.theme
	var b strings.Builder
	used := 0
	for i, comp := range m.completion.Completions {
		label := comp.Display
		style := t.Completion
		if i == m.completion.Selected {
			style = t.CompletionOn
		}
		item := style.Render(label)
		if used+lipgloss.Width(item) > width {
			break
		}
		b.WriteString(item)
		used += lipgloss.Width(item)
	}
	if sel := m.completion.GetSelected(); sel != nil && sel.Description != "" {
		note := " " + sel.Description
		if used+lipgloss.Width(note) <= width {
			b.WriteString(t.CompletionNote.Render(note))
		}
	}
	return b.String()
}

func (m Model) renderFooter() string {
	switch m.mode {
	case ModeCommand, ModeQuickFilter:
		return m.input.View()
	case ModeHelp, ModeDetail:
		return m.help.ShortHelpView([]key.Binding{m.keys.Cancel})
	}
	if !m.app.Config().UI.ShowHelp {
		return ""
	}
	return m.help.ShortHelpView(m.keys.ShortHelp())
}

func pluralBooks(n int) string {
	if n == 1 {
		return "1 book"
	}
	return fmt.Sprintf("%d books", n)
}
