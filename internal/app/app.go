// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package app is the controller between the terminal UI and the catalog.
//
// It owns the in-memory library, the persistent store behind it, the cursor
// over the visible rows, and the active sort and filter. All methods must be
// called from a single goroutine.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/jeranaias/bookshelf-tui/internal/config"
	"github.com/jeranaias/bookshelf-tui/internal/cursor"
	"github.com/jeranaias/bookshelf-tui/internal/library"
	"github.com/jeranaias/bookshelf-tui/internal/record"
	"github.com/jeranaias/bookshelf-tui/internal/search"
	"github.com/jeranaias/bookshelf-tui/internal/sorting"
	"github.com/jeranaias/bookshelf-tui/internal/storage"
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrNoSelection is returned by operations that act on the selected book
	// when nothing is selected.
	ErrNoSelection = errors.New("no book selected")
	// ErrNoMatches is returned by Filter and Jump when nothing matches.
	ErrNoMatches = errors.New("no matching books")
	// ErrUnknownColumn is returned when adding a column no book has.
	ErrUnknownColumn = errors.New("unknown column")
)

// =============================================================================
// STORE
// =============================================================================

// Store is the persistence the controller needs. *storage.SQLiteStore
// implements it.
type Store interface {
	storage.Backend

	// InsertMany stores books that already carry ids in one transaction.
	InsertMany(ctx context.Context, books []*record.Book) error

	// MaxID returns the largest stored id.
	MaxID(ctx context.Context) (record.BookID, error)

	// Paths maps every stored file path to its book.
	Paths(ctx context.Context) (map[string]record.BookID, error)

	// ReplaceMerged writes merge survivors and deletes the absorbed ids
	// atomically.
	ReplaceMerged(ctx context.Context, survivors []*record.Book, absorbed []record.BookID) error
}

// =============================================================================
// APP
// =============================================================================

// App is the catalog controller.
type App struct {
	cfg    *config.Config
	logger *slog.Logger
	store  Store
	lib    *library.Library
	cursor *cursor.Cursor

	columns  []string
	sortKeys []sorting.Key
	filter   []search.Description
	scope    []record.BookID // nil when no filter is active
	nextID   record.BookID
}

// New creates a controller over store. Call Open before anything else.
func New(cfg *config.Config, store Store, logger *slog.Logger) *App {
	if cfg == nil {
		cfg = config.Default()
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &App{
		cfg:    cfg,
		logger: logger,
		store:  store,
		lib: library.New(library.Options{
			Capacity:      cfg.Library.Capacity,
			SortThreshold: cfg.Sort.ParallelThreshold,
			SortWorkers:   cfg.Sort.Workers,
			Logger:        logger.With("component", "library"),
		}),
		cursor:  cursor.New(0, 0),
		columns: dedupeColumns(cfg.UI.Columns),
		nextID:  1,
	}
}

// Open loads every stored book into the index and applies the configured
// default sort.
func (a *App) Open(ctx context.Context) error {
	keys, err := sorting.ParseKeys(a.cfg.Sort.DefaultKeys)
	if err != nil {
		return fmt.Errorf("invalid default sort: %w", err)
	}
	a.sortKeys = keys

	n, err := a.load(ctx)
	if err != nil {
		return err
	}

	maxID, err := a.store.MaxID(ctx)
	if err != nil {
		return fmt.Errorf("failed to load catalog: %w", err)
	}
	a.nextID = max(a.lib.NextID(), maxID+1)

	a.logger.Info("catalog loaded", "books", n, "indexed", a.lib.Len())
	return nil
}

// load replaces the index with the stored catalog in the active sort order.
func (a *App) load(ctx context.Context) (int, error) {
	books, err := a.store.GetAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to load catalog: %w", err)
	}
	a.lib.Clear()
	a.lib.InsertMany(books)
	a.lib.Sort(a.sortKeys)
	a.refresh()
	return len(books), nil
}

// Close saves and closes the store.
func (a *App) Close(ctx context.Context) error {
	saveErr := a.store.Save(ctx)
	closeErr := a.store.Close()
	return errors.Join(saveErr, closeErr)
}

// Library exposes the in-memory index.
func (a *App) Library() *library.Library {
	return a.lib
}

// Config returns the active configuration.
func (a *App) Config() *config.Config {
	return a.cfg
}

// =============================================================================
// VIEW
// =============================================================================

// Len returns the number of rows in the current view.
func (a *App) Len() int {
	if a.scope != nil {
		return len(a.scope)
	}
	return a.lib.Len()
}

// Filtered reports whether a filter narrows the view.
func (a *App) Filtered() bool {
	return a.scope != nil
}

// FilterDescriptions returns the active filter.
func (a *App) FilterDescriptions() []search.Description {
	return slices.Clone(a.filter)
}

// SortKeys returns the active sort order.
func (a *App) SortKeys() []sorting.Key {
	return slices.Clone(a.sortKeys)
}

// Cursor exposes the scroll state of the view.
func (a *App) Cursor() *cursor.Cursor {
	return a.cursor
}

// SetWindowSize records how many rows the UI can show.
func (a *App) SetWindowSize(n int) {
	a.cursor.RefreshWindowSize(n)
}

// Rows returns the visible books. Reading rows does not mark them as
// recently used.
func (a *App) Rows() []*record.Book {
	start, end := a.cursor.Range()
	if a.scope == nil {
		return a.lib.Window(start, end)
	}
	rows := make([]*record.Book, 0, max(end-start, 0))
	for _, id := range a.scope[start:end] {
		if b, ok := a.lib.Peek(id); ok {
			rows = append(rows, b)
		}
	}
	return rows
}

// Selected returns the selected book.
func (a *App) Selected() (*record.Book, bool) {
	i, ok := a.cursor.Selected()
	if !ok {
		return nil, false
	}
	return a.at(i)
}

func (a *App) at(i int) (*record.Book, bool) {
	if a.scope == nil {
		return a.lib.GetByPosition(i)
	}
	if i < 0 || i >= len(a.scope) {
		return nil, false
	}
	return a.lib.Get(a.scope[i])
}

func (a *App) selectedID() (record.BookID, error) {
	b, ok := a.Selected()
	if !ok {
		return 0, ErrNoSelection
	}
	return b.ID, nil
}

// indexOf returns the view row holding id.
func (a *App) indexOf(id record.BookID) (int, bool) {
	if a.scope == nil {
		return a.lib.Position(id)
	}
	i := slices.Index(a.scope, id)
	return i, i >= 0
}

// refresh rebuilds the filter scope after the library changed and keeps the
// selected book selected when it is still visible.
func (a *App) refresh() {
	var keep record.BookID
	if b, ok := a.Selected(); ok {
		keep = b.ID
	}

	if a.filter != nil {
		matches, err := a.lib.FindMatches(a.filter...)
		if err != nil {
			// Compiled once already in Filter.
			a.logger.Error("filter no longer compiles", "err", err)
			a.filter, a.scope = nil, nil
		} else {
			a.setScope(matches)
		}
	}

	a.cursor.RefreshHeight(a.Len())
	if keep != 0 {
		if i, ok := a.indexOf(keep); ok {
			a.cursor.Select(i)
		}
	}
}

func (a *App) setScope(matches []*record.Book) {
	a.scope = make([]record.BookID, len(matches))
	for i, b := range matches {
		a.scope[i] = b.ID
	}
}

// =============================================================================
// COLUMNS
// =============================================================================

// Columns returns the visible columns in display order.
func (a *App) Columns() []string {
	return slices.Clone(a.columns)
}

// AddColumn appends a column to the table. Only columns some book has can be
// shown. Adding a visible column is a no-op.
func (a *App) AddColumn(name string) error {
	if !a.lib.HasColumn(name) {
		return fmt.Errorf("%w: %s", ErrUnknownColumn, name)
	}
	key := record.ParseColumn(name).Key()
	for _, c := range a.columns {
		if record.ParseColumn(c).Key() == key {
			return nil
		}
	}
	a.columns = append(a.columns, name)
	return nil
}

// RemoveColumn hides a visible column.
func (a *App) RemoveColumn(name string) error {
	key := record.ParseColumn(name).Key()
	for i, c := range a.columns {
		if record.ParseColumn(c).Key() == key {
			a.columns = slices.Delete(a.columns, i, i+1)
			return nil
		}
	}
	return fmt.Errorf("%w: %s is not shown", ErrUnknownColumn, name)
}

func dedupeColumns(names []string) []string {
	seen := make(map[string]bool, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		key := record.ParseColumn(n).Key()
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, n)
	}
	return out
}
