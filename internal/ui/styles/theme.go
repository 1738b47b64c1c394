// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Theme holds all the styled components for the application.
// It detects the terminal's color capability and adjusts accordingly.
type Theme struct {
	// Terminal capabilities
	IsDark       bool
	HasTrueColor bool
	ColorProfile termenv.Profile

	// Layout dimensions
	Width  int
	Height int

	// ==========================================================================
	// HEADER STYLES
	// ==========================================================================

	Header      lipgloss.Style
	HeaderBrand lipgloss.Style
	HeaderInfo  lipgloss.Style
	FilterBadge lipgloss.Style
	SortBadge   lipgloss.Style

	// ==========================================================================
	// TABLE STYLES
	// ==========================================================================

	ColumnHeader lipgloss.Style
	Row          lipgloss.Style
	RowAlt       lipgloss.Style
	RowSelected  lipgloss.Style
	EmptyCell    lipgloss.Style
	EmptyTable   lipgloss.Style

	// ==========================================================================
	// STATUS AND COMMAND LINE STYLES
	// ==========================================================================

	StatusBar      lipgloss.Style
	StatusPos      lipgloss.Style
	InputPrompt    lipgloss.Style
	InputText      lipgloss.Style
	Completion     lipgloss.Style
	CompletionOn   lipgloss.Style
	CompletionNote lipgloss.Style

	// ==========================================================================
	// PANE STYLES
	// ==========================================================================

	Pane      lipgloss.Style
	PaneTitle lipgloss.Style
}

// NewTheme creates a new theme with all styles configured.
func NewTheme() *Theme {
	colorProfile := termenv.ColorProfile()
	t := &Theme{
		IsDark:       termenv.HasDarkBackground(),
		HasTrueColor: colorProfile == termenv.TrueColor,
		ColorProfile: colorProfile,
	}
	t.initStyles()
	return t
}

// GlamourStyle names the glamour style matching the terminal background.
func (t *Theme) GlamourStyle() string {
	if t.ColorProfile == termenv.Ascii {
		return "notty"
	}
	if t.IsDark {
		return "dark"
	}
	return "light"
}

// initStyles initializes all the lip gloss styles.
func (t *Theme) initStyles() {
	// Header
	t.Header = lipgloss.NewStyle().
		Background(SurfaceDim).
		Padding(0, 1)

	t.HeaderBrand = lipgloss.NewStyle().
		Bold(true).
		Foreground(Cyan).
		Background(SurfaceDim)

	t.HeaderInfo = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Background(SurfaceDim)

	t.FilterBadge = lipgloss.NewStyle().
		Foreground(TextInverse).
		Background(Emerald).
		Padding(0, 1)

	t.SortBadge = lipgloss.NewStyle().
		Foreground(TextInverse).
		Background(Amber).
		Padding(0, 1)

	// Table
	t.ColumnHeader = lipgloss.NewStyle().
		Bold(true).
		Foreground(Cyan).
		BorderStyle(lipgloss.NormalBorder()).
		BorderBottom(true).
		BorderForeground(Overlay)

	t.Row = lipgloss.NewStyle().
		Foreground(TextPrimary)

	t.RowAlt = lipgloss.NewStyle().
		Foreground(TextPrimary).
		Background(SurfaceBright)

	t.RowSelected = lipgloss.NewStyle().
		Bold(true).
		Foreground(Purple).
		Background(PurpleDeep)

	t.EmptyCell = lipgloss.NewStyle().
		Foreground(TextMuted)

	t.EmptyTable = lipgloss.NewStyle().
		Foreground(TextMuted).
		Italic(true).
		Padding(1, 2)

	// Status bar and command line
	t.StatusBar = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Background(SurfaceDim)

	t.StatusPos = lipgloss.NewStyle().
		Foreground(TextMuted).
		Background(SurfaceDim).
		Padding(0, 1)

	t.InputPrompt = lipgloss.NewStyle().
		Bold(true).
		Foreground(Cyan)

	t.InputText = lipgloss.NewStyle().
		Foreground(TextPrimary)

	t.Completion = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Padding(0, 1)

	t.CompletionOn = lipgloss.NewStyle().
		Foreground(TextInverse).
		Background(Cyan).
		Padding(0, 1)

	t.CompletionNote = lipgloss.NewStyle().
		Foreground(TextMuted).
		Italic(true)

	// Help and detail panes
	t.Pane = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Purple)

	t.PaneTitle = lipgloss.NewStyle().
		Bold(true).
		Foreground(Purple).
		Padding(0, 1)
}

// SetSize updates the theme dimensions for responsive layouts.
func (t *Theme) SetSize(width, height int) {
	t.Width = width
	t.Height = height
}

// GetLayoutMode returns the current layout mode based on width.
func (t *Theme) GetLayoutMode() LayoutMode {
	if t.Width < 60 {
		return LayoutNarrow
	}
	if t.Width < 100 {
		return LayoutMedium
	}
	return LayoutWide
}

// LayoutMode represents the current responsive layout mode.
type LayoutMode int

const (
	LayoutNarrow LayoutMode = iota // < 60 columns
	LayoutMedium                   // 60-100 columns
	LayoutWide                     // > 100 columns
)
