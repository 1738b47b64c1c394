// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

func TestThemeInitStyles(t *testing.T) {
	theme := NewTheme()

	styles := []struct {
		name  string
		style lipgloss.Style
	}{
		{"Header", theme.Header},
		{"ColumnHeader", theme.ColumnHeader},
		{"Row", theme.Row},
		{"RowSelected", theme.RowSelected},
		{"StatusBar", theme.StatusBar},
		{"InputPrompt", theme.InputPrompt},
		{"Pane", theme.Pane},
	}

	for _, s := range styles {
		if rendered := s.style.Render("test"); !strings.Contains(rendered, "test") {
			t.Errorf("%s style lost its content: %q", s.name, rendered)
		}
	}
}

func TestGetLayoutMode(t *testing.T) {
	tests := []struct {
		width int
		want  LayoutMode
	}{
		{40, LayoutNarrow},
		{59, LayoutNarrow},
		{60, LayoutMedium},
		{99, LayoutMedium},
		{100, LayoutWide},
		{200, LayoutWide},
	}

	theme := NewTheme()
	for _, tt := range tests {
		theme.SetSize(tt.width, 24)
		if got := theme.GetLayoutMode(); got != tt.want {
			t.Errorf("width %d: GetLayoutMode() = %v, want %v", tt.width, got, tt.want)
		}
	}
}

func TestGlamourStyle(t *testing.T) {
	theme := &Theme{ColorProfile: termenv.Ascii}
	if got := theme.GlamourStyle(); got != "notty" {
		t.Errorf("Ascii profile: got %q, want notty", got)
	}

	theme = &Theme{ColorProfile: termenv.TrueColor, IsDark: true}
	if got := theme.GlamourStyle(); got != "dark" {
		t.Errorf("dark background: got %q, want dark", got)
	}

	theme.IsDark = false
	if got := theme.GlamourStyle(); got != "light" {
		t.Errorf("light background: got %q, want light", got)
	}
}

func TestStatusRenderersKeepIndicators(t *testing.T) {
	if got := RenderError("boom"); !strings.Contains(got, StatusIndicators.Error+" boom") {
		t.Errorf("RenderError = %q", got)
	}
	if got := RenderSuccess("done"); !strings.Contains(got, StatusIndicators.Success+" done") {
		t.Errorf("RenderSuccess = %q", got)
	}
	if got := RenderInfo("note"); !strings.Contains(got, StatusIndicators.Info+" note") {
		t.Errorf("RenderInfo = %q", got)
	}
}
