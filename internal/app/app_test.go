// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/bookshelf-tui/internal/config"
	"github.com/jeranaias/bookshelf-tui/internal/export"
	"github.com/jeranaias/bookshelf-tui/internal/record"
	"github.com/jeranaias/bookshelf-tui/internal/search"
	"github.com/jeranaias/bookshelf-tui/internal/sorting"
	"github.com/jeranaias/bookshelf-tui/internal/storage"
)

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Sort.DefaultKeys = []string{"title"}
	return cfg
}

func openStore(t *testing.T) *storage.SQLiteStore {
	t.Helper()
	store := storage.NewSQLiteStore(filepath.Join(t.TempDir(), "library.db"))
	require.NoError(t, store.Open(context.Background()))
	t.Cleanup(func() { store.Close() })
	return store
}

func openApp(t *testing.T, store *storage.SQLiteStore) *App {
	t.Helper()
	a := New(testConfig(), store, nil)
	require.NoError(t, a.Open(context.Background()))
	a.SetWindowSize(10)
	return a
}

func writeBooks(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, name := range names {
		p := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(name), 0o644))
	}
}

func titles(books []*record.Book) []string {
	out := make([]string, len(books))
	for i, b := range books {
		out[i] = b.Title
	}
	return out
}

func importDir(t *testing.T, a *App, names ...string) string {
	t.Helper()
	dir := t.TempDir()
	writeBooks(t, dir, names...)
	_, err := a.Import(context.Background(), []string{dir})
	require.NoError(t, err)
	return dir
}

func TestImport_AddsUpdatesAndSkips(t *testing.T) {
	ctx := context.Background()
	a := openApp(t, openStore(t))
	dir := t.TempDir()
	writeBooks(t, dir, "Emma.pdf", "Dune.txt", "notes.docx")

	report, err := a.Import(ctx, []string{dir})
	require.NoError(t, err)
	assert.NotEmpty(t, report.BatchID)
	assert.Equal(t, 2, report.Scanned)
	assert.Equal(t, 2, report.Added)
	assert.Empty(t, report.Failures)
	assert.Equal(t, []string{"Dune", "Emma"}, titles(a.Rows()))

	report, err = a.Import(ctx, []string{dir})
	require.NoError(t, err)
	assert.Equal(t, 0, report.Added)
	assert.Equal(t, 2, report.Unchanged)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "Dune.txt"), []byte("second edition"), 0o644))
	report, err = a.Import(ctx, []string{dir})
	require.NoError(t, err)
	assert.Equal(t, 1, report.Updated)
	assert.Equal(t, 1, report.Unchanged)
	assert.Equal(t, 2, a.Len())
}

func TestImport_UnreadableAddedWithFileName(t *testing.T) {
	a := openApp(t, openStore(t))
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Broken.epub"), []byte("not a zip"), 0o644))

	report, err := a.Import(context.Background(), []string{dir})
	require.NoError(t, err)
	assert.Equal(t, 1, report.Added)
	require.Len(t, report.Failures, 1)
	assert.Equal(t, []string{"Broken"}, titles(a.Rows()))
}

func TestImport_UnreadableKnownFileKeepsVariant(t *testing.T) {
	ctx := context.Background()
	a := openApp(t, openStore(t))
	dir := t.TempDir()
	path := filepath.Join(dir, "Broken.epub")
	require.NoError(t, os.WriteFile(path, []byte("not a zip"), 0o644))

	_, err := a.Import(ctx, []string{dir})
	require.NoError(t, err)
	before, ok := a.Library().GetByPosition(0)
	require.True(t, ok)
	require.Len(t, before.Variants, 1)

	require.NoError(t, os.WriteFile(path, []byte("still not a zip"), 0o644))
	report, err := a.Import(ctx, []string{dir})
	require.NoError(t, err)
	assert.Equal(t, 0, report.Added)
	assert.Equal(t, 0, report.Updated)
	require.Len(t, report.Failures, 1)

	after, ok := a.Library().GetByPosition(0)
	require.True(t, ok)
	assert.Equal(t, before.Variants[0].Hash, after.Variants[0].Hash)
	assert.Equal(t, 1, a.Len())
}

func TestOpen_ReloadsCatalog(t *testing.T) {
	store := openStore(t)
	a := openApp(t, store)
	importDir(t, a, "b.txt", "a.txt", "c.txt")

	reopened := openApp(t, store)
	assert.Equal(t, 3, reopened.Len())
	assert.Equal(t, []string{"a", "b", "c"}, titles(reopened.Rows()))

	importDir(t, reopened, "d.txt")
	all, err := store.GetAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, 4, "new ids must not collide with stored ones")
}

func TestEdit_PersistsAndRequiresSelection(t *testing.T) {
	ctx := context.Background()
	store := openStore(t)
	a := openApp(t, store)
	importDir(t, a, "Dune.txt", "Emma.txt")

	_, err := a.Edit(ctx, record.ColumnEdit{Column: record.Title, Edit: record.Replace("x")})
	assert.ErrorIs(t, err, ErrNoSelection)

	a.Cursor().SelectDown()
	edited, err := a.Edit(ctx,
		record.ColumnEdit{Column: record.Title, Edit: record.Append(" Messiah")},
		record.ColumnEdit{Column: record.NamedTag("publisher"), Edit: record.Replace("Ace")},
	)
	require.NoError(t, err)
	assert.Equal(t, "Dune Messiah", edited.Title)

	stored, err := store.Get(ctx, edited.ID)
	require.NoError(t, err)
	assert.Equal(t, "Dune Messiah", stored.Title)

	sel, ok := a.Selected()
	require.True(t, ok)
	assert.Equal(t, edited.ID, sel.ID, "selection follows the edited book")

	_, err = a.Edit(ctx, record.ColumnEdit{Column: record.ID, Edit: record.Replace("9")})
	assert.ErrorIs(t, err, record.ErrImmutableColumn)
}

func TestDeleteSelected(t *testing.T) {
	ctx := context.Background()
	store := openStore(t)
	a := openApp(t, store)
	importDir(t, a, "a.txt", "b.txt")

	a.Cursor().SelectDown()
	deleted, err := a.DeleteSelected(ctx)
	require.NoError(t, err)
	assert.Equal(t, "a", deleted.Title)
	assert.Equal(t, []string{"b"}, titles(a.Rows()))

	_, err = store.Get(ctx, deleted.ID)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestSort_KeepsSelection(t *testing.T) {
	a := openApp(t, openStore(t))
	importDir(t, a, "a.txt", "b.txt", "c.txt")
	a.Cursor().SelectDown()

	keys, err := sorting.ParseKeys([]string{"-title"})
	require.NoError(t, err)
	a.Sort(keys)

	assert.Equal(t, []string{"c", "b", "a"}, titles(a.Rows()))
	sel, ok := a.Selected()
	require.True(t, ok)
	assert.Equal(t, "a", sel.Title)
}

func TestFilterJumpAndClear(t *testing.T) {
	a := openApp(t, openStore(t))
	importDir(t, a, "Dune.txt", "Dune Messiah.txt", "Emma.txt")

	n, err := a.Filter([]search.Description{{Mode: search.ModeExactSubstring, Column: record.Title, Pattern: "Dune"}})
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.True(t, a.Filtered())
	assert.Equal(t, []string{"Dune", "Dune Messiah"}, titles(a.Rows()))

	b, err := a.Jump([]search.Description{{Mode: search.ModeExactString, Column: record.Title, Pattern: "Dune Messiah"}})
	require.NoError(t, err)
	assert.Equal(t, "Dune Messiah", b.Title)

	_, err = a.Jump([]search.Description{{Mode: search.ModeExactString, Column: record.Title, Pattern: "Emma"}})
	assert.ErrorIs(t, err, ErrNoMatches, "jump searches only the filtered view")

	_, err = a.Filter([]search.Description{{Mode: search.ModeExactString, Column: record.Title, Pattern: "Ulysses"}})
	assert.ErrorIs(t, err, ErrNoMatches)
	assert.Equal(t, 2, a.Len(), "a failed filter leaves the view alone")

	_, err = a.Filter([]search.Description{{Mode: search.ModeRegex, Column: record.Title, Pattern: "("}})
	assert.ErrorIs(t, err, search.ErrInvalidPattern)

	a.ClearFilter()
	assert.False(t, a.Filtered())
	assert.Equal(t, 3, a.Len())
	sel, ok := a.Selected()
	require.True(t, ok)
	assert.Equal(t, "Dune Messiah", sel.Title)
}

func TestFilter_RefreshesAfterEdit(t *testing.T) {
	ctx := context.Background()
	a := openApp(t, openStore(t))
	importDir(t, a, "Dune.txt", "Dune Messiah.txt")

	_, err := a.Filter([]search.Description{{Mode: search.ModeExactSubstring, Column: record.Title, Pattern: "Dune"}})
	require.NoError(t, err)
	a.Cursor().SelectDown()
	_, err = a.Edit(ctx, record.ColumnEdit{Column: record.Title, Edit: record.Replace("Arrakis")})
	require.NoError(t, err)

	assert.Equal(t, []string{"Dune Messiah"}, titles(a.Rows()))
}

func TestMerge_PersistsSurvivors(t *testing.T) {
	ctx := context.Background()
	store := openStore(t)
	for _, path := range []string{"/b/dune.epub", "/b/dune.pdf", "/b/emma.txt"} {
		title := "Dune"
		if filepath.Ext(path) == ".txt" {
			title = "Emma"
		}
		_, err := store.Insert(ctx, &record.Book{
			Title:    title,
			Authors:  []string{"Author"},
			Variants: []record.Variant{{Format: record.FormatFromPath(path), Path: path}},
		})
		require.NoError(t, err)
	}
	a := openApp(t, store)

	pairs, err := a.Merge(ctx)
	require.NoError(t, err)
	require.Len(t, pairs, 1)
	assert.Equal(t, 2, a.Len())

	all, err := store.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	survivor, err := store.Get(ctx, pairs[0].Survivor)
	require.NoError(t, err)
	assert.Len(t, survivor.Variants, 2)

	pairs, err = a.Merge(ctx)
	require.NoError(t, err)
	assert.Empty(t, pairs)
}

type failingMergeStore struct {
	*storage.SQLiteStore
}

func (failingMergeStore) ReplaceMerged(context.Context, []*record.Book, []record.BookID) error {
	return errors.New("disk full")
}

func TestMerge_FailedSaveReloadsIndex(t *testing.T) {
	ctx := context.Background()
	store := openStore(t)
	for _, path := range []string{"/b/dune.epub", "/b/dune.pdf"} {
		_, err := store.Insert(ctx, &record.Book{
			Title:    "Dune",
			Authors:  []string{"Frank Herbert"},
			Variants: []record.Variant{{Format: record.FormatFromPath(path), Path: path}},
		})
		require.NoError(t, err)
	}
	a := New(testConfig(), failingMergeStore{store}, nil)
	require.NoError(t, a.Open(ctx))
	a.SetWindowSize(10)

	pairs, err := a.Merge(ctx)
	require.Error(t, err)
	assert.Empty(t, pairs)
	assert.Equal(t, 2, a.Len(), "index must match the unchanged store")
	for _, b := range a.Books() {
		assert.Len(t, b.Variants, 1)
	}

	all, err := store.GetAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestColumns(t *testing.T) {
	ctx := context.Background()
	a := openApp(t, openStore(t))
	importDir(t, a, "Dune.txt")

	assert.ErrorIs(t, a.AddColumn("publisher"), ErrUnknownColumn)

	a.Cursor().SelectDown()
	_, err := a.Edit(ctx, record.ColumnEdit{Column: record.NamedTag("publisher"), Edit: record.Replace("Ace")})
	require.NoError(t, err)

	require.NoError(t, a.AddColumn("Publisher"))
	require.NoError(t, a.AddColumn("PUBLISHER"))
	assert.Equal(t, []string{"title", "authors", "series", "tags", "Publisher"}, a.Columns())

	require.NoError(t, a.RemoveColumn("series"))
	assert.ErrorIs(t, a.RemoveColumn("series"), ErrUnknownColumn)
	assert.NotContains(t, a.Columns(), "series")
}

func TestExport_CurrentView(t *testing.T) {
	a := openApp(t, openStore(t))
	importDir(t, a, "Dune.txt", "Emma.txt")
	_, err := a.Filter([]search.Description{{Mode: search.ModeExactString, Column: record.Title, Pattern: "Emma"}})
	require.NoError(t, err)

	var buf bytes.Buffer
	n, err := a.Export(&buf, export.DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	books, err := export.ReadJSONL(&buf)
	require.NoError(t, err)
	require.Len(t, books, 1)
	assert.Equal(t, "Emma", books[0].Title)
}

func TestRows_Window(t *testing.T) {
	a := openApp(t, openStore(t))
	importDir(t, a, "a.txt", "b.txt", "c.txt", "d.txt")
	a.SetWindowSize(2)

	assert.Equal(t, []string{"a", "b"}, titles(a.Rows()))
	a.Cursor().PageDown()
	assert.Equal(t, []string{"c", "d"}, titles(a.Rows()))
}
