// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package browser

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/bookshelf-tui/internal/app"
	"github.com/jeranaias/bookshelf-tui/internal/commands"
	"github.com/jeranaias/bookshelf-tui/internal/config"
	"github.com/jeranaias/bookshelf-tui/internal/library"
	"github.com/jeranaias/bookshelf-tui/internal/storage"
)

func newTestApp(t *testing.T) *app.App {
	t.Helper()
	store := storage.NewSQLiteStore(filepath.Join(t.TempDir(), "library.db"))
	require.NoError(t, store.Open(context.Background()))
	t.Cleanup(func() { store.Close() })

	cfg := config.Default()
	cfg.Sort.DefaultKeys = []string{"title"}
	a := app.New(cfg, store, nil)
	require.NoError(t, a.Open(context.Background()))
	return a
}

func bookDir(t *testing.T, names ...string) string {
	t.Helper()
	dir := t.TempDir()
	for _, name := range names {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(name), 0o644))
	}
	return dir
}

func newTestModel(t *testing.T, names ...string) (Model, *app.App) {
	t.Helper()
	a := newTestApp(t)
	if len(names) > 0 {
		_, err := a.Import(context.Background(), []string{bookDir(t, names...)})
		require.NoError(t, err)
	}
	m := New(context.Background(), a, Options{})
	return send(t, m, tea.WindowSizeMsg{Width: 100, Height: 20}), a
}

func send(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	out, ok := next.(Model)
	require.True(t, ok)
	return out
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func typeText(t *testing.T, m Model, s string) Model {
	t.Helper()
	for _, r := range s {
		m = send(t, m, runes(string(r)))
	}
	return m
}

func selectedTitle(t *testing.T, a *app.App) string {
	t.Helper()
	b, ok := a.Selected()
	require.True(t, ok, "no selection")
	return b.Title
}

func TestBrowser_ResizeSetsWindow(t *testing.T) {
	_, a := newTestModel(t)
	assert.Equal(t, 20-chromeLines, a.Cursor().WindowSize())
}

func TestBrowser_NavigateAndDetail(t *testing.T) {
	m, a := newTestModel(t, "Alpha.txt", "Beta.txt", "Gamma.txt")

	m = send(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, ModeBrowse, m.Mode(), "detail needs a selection")
	assert.NotEmpty(t, m.Status())

	m = send(t, m, runes("j"))
	assert.Equal(t, "Alpha", selectedTitle(t, a))
	m = send(t, m, runes("j"))
	assert.Equal(t, "Beta", selectedTitle(t, a))
	m = send(t, m, runes("G"))
	assert.Equal(t, "Gamma", selectedTitle(t, a), "End moves an existing selection")
	m = send(t, m, runes("k"))
	assert.Equal(t, "Beta", selectedTitle(t, a))

	m = send(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.Equal(t, ModeDetail, m.Mode())
	assert.Contains(t, m.View(), "Beta")

	m = send(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, ModeBrowse, m.Mode())
}

func TestBrowser_CommandLine(t *testing.T) {
	m, a := newTestModel(t, "Alpha.txt", "Beta.txt", "Gamma.txt")

	m = send(t, m, runes(":"))
	require.Equal(t, ModeCommand, m.Mode())
	m = typeText(t, m, "sort -title")
	m = send(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	assert.Equal(t, ModeBrowse, m.Mode())
	assert.Equal(t, "sorted by -title", m.Status())
	assert.Equal(t, "Gamma", a.Rows()[0].Title)

	m = send(t, m, runes(":"))
	m = typeText(t, m, "frobnicate")
	m = send(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Contains(t, m.Status(), "unknown command")
}

func TestBrowser_InconsistentIndexQuits(t *testing.T) {
	m, _ := newTestModel(t, "Alpha.txt")

	jump := *m.registry.Get("jump")
	jump.Handler = func(ctx *commands.Context, args []string) (commands.Result, error) {
		return commands.Result{}, fmt.Errorf("jump: %w: slot 3 out of range", library.ErrInternalInconsistency)
	}
	m.registry.Register(&jump)

	m = send(t, m, runes(":"))
	m = typeText(t, m, "jump title alpha")
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(Model)

	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.ErrorIs(t, m.Err(), library.ErrInternalInconsistency)
}

func TestBrowser_CommandErrorKeepsRunning(t *testing.T) {
	m, _ := newTestModel(t, "Alpha.txt")
	m = send(t, m, runes(":"))
	m = typeText(t, m, "jump title zzzz")
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(Model)

	assert.NoError(t, m.Err())
	assert.NotEmpty(t, m.Status())
}

func TestBrowser_CommandCancel(t *testing.T) {
	m, a := newTestModel(t, "Alpha.txt")
	m = send(t, m, runes(":"))
	m = typeText(t, m, "delete")
	m = send(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, ModeBrowse, m.Mode())
	assert.Equal(t, 1, a.Len())
}

func TestBrowser_TabCompletion(t *testing.T) {
	m, _ := newTestModel(t)
	m = send(t, m, runes(":"))
	m = typeText(t, m, "so")
	m = send(t, m, tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, "sort ", m.input.Value())
}

func TestBrowser_QuickFilter(t *testing.T) {
	m, a := newTestModel(t, "Dune.txt", "Dune Messiah.txt", "Emma.txt")

	m = send(t, m, runes("/"))
	require.Equal(t, ModeQuickFilter, m.Mode())
	m = typeText(t, m, "dune")
	m = send(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	assert.True(t, a.Filtered())
	assert.Equal(t, 2, a.Len())
	assert.Contains(t, m.View(), "2 shown")

	m = send(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.False(t, a.Filtered())
	assert.Equal(t, 3, a.Len())
}

func TestBrowser_HelpPane(t *testing.T) {
	m, _ := newTestModel(t)
	m = send(t, m, runes("?"))
	require.Equal(t, ModeHelp, m.Mode())
	assert.Contains(t, m.View(), "Commands")

	m = send(t, m, runes("?"))
	assert.Equal(t, ModeBrowse, m.Mode())
}

func TestBrowser_FilesChangedImports(t *testing.T) {
	m, a := newTestModel(t)
	dir := bookDir(t, "Persuasion.txt")

	m = send(t, m, FilesChangedMsg{Paths: []string{filepath.Join(dir, "Persuasion.txt")}})
	assert.Equal(t, 1, a.Len())
	assert.Contains(t, m.Status(), "imported 1 new")
}

func TestBrowser_StatusExpires(t *testing.T) {
	m, _ := newTestModel(t)
	m = send(t, m, runes(":"))
	m = typeText(t, m, "clear")
	m = send(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.NotEmpty(t, m.Status())

	m = send(t, m, statusExpiredMsg{seq: m.statusSeq - 1})
	assert.NotEmpty(t, m.Status(), "stale expiry ignored")
	m = send(t, m, statusExpiredMsg{seq: m.statusSeq})
	assert.Empty(t, m.Status())
}

func TestBrowser_Quit(t *testing.T) {
	m, _ := newTestModel(t)
	_, cmd := m.Update(runes("q"))
	require.NotNil(t, cmd)
	_, ok := cmd().(tea.QuitMsg)
	assert.True(t, ok)
}

func TestColumnWidths(t *testing.T) {
	widths := columnWidths([]string{"id", "title", "authors"}, 50)
	assert.Equal(t, []int{idWidth, 20, 20}, widths)

	widths = columnWidths([]string{"title", "authors", "series"}, 31)
	assert.Equal(t, []int{9, 9, 11}, widths)

	assert.Empty(t, columnWidths(nil, 80))
}
