// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/jeranaias/bookshelf-tui/internal/export"
	"github.com/jeranaias/bookshelf-tui/internal/library"
	"github.com/jeranaias/bookshelf-tui/internal/record"
	"github.com/jeranaias/bookshelf-tui/internal/search"
	"github.com/jeranaias/bookshelf-tui/internal/sorting"
)

// =============================================================================
// EDITING
// =============================================================================

// Edit applies edits to the selected book and persists the result. Either
// every edit lands or none does.
func (a *App) Edit(ctx context.Context, edits ...record.ColumnEdit) (*record.Book, error) {
	id, err := a.selectedID()
	if err != nil {
		return nil, err
	}
	edited, err := a.lib.Edit(id, edits...)
	if err != nil {
		return nil, err
	}
	if err := a.store.Update(ctx, edited); err != nil {
		return nil, fmt.Errorf("failed to save edit: %w", err)
	}
	a.logger.Debug("edited book", "id", id, "edits", len(edits))
	a.refresh()
	return edited, nil
}

// DeleteSelected removes the selected book from the index and the store.
func (a *App) DeleteSelected(ctx context.Context) (*record.Book, error) {
	b, ok := a.Selected()
	if !ok {
		return nil, ErrNoSelection
	}
	if err := a.store.Remove(ctx, b.ID); err != nil {
		return nil, fmt.Errorf("failed to delete book: %w", err)
	}
	a.lib.Remove(b.ID)
	a.logger.Info("deleted book", "id", b.ID, "title", b.Title)
	a.refresh()
	return b, nil
}

// =============================================================================
// ORDERING AND SEARCH
// =============================================================================

// Sort reorders the library by keys and keeps them for later imports. An
// empty key list keeps the current order.
func (a *App) Sort(keys []sorting.Key) {
	a.sortKeys = keys
	a.lib.Sort(keys)
	a.refresh()
}

// Filter narrows the view to books matching every description. When nothing
// matches the view is left unchanged and ErrNoMatches is returned.
func (a *App) Filter(descs []search.Description) (int, error) {
	matches, err := a.lib.FindMatches(descs...)
	if err != nil {
		return 0, err
	}
	if len(matches) == 0 {
		return 0, ErrNoMatches
	}
	a.filter = descs
	a.setScope(matches)
	a.cursor.Deselect()
	a.cursor.RefreshHeight(len(a.scope))
	a.cursor.Home()
	return len(matches), nil
}

// ClearFilter restores the full view, keeping the selected book selected.
func (a *App) ClearFilter() {
	if a.scope == nil {
		return
	}
	var keep record.BookID
	if b, ok := a.Selected(); ok {
		keep = b.ID
	}
	a.filter, a.scope = nil, nil
	a.cursor.RefreshHeight(a.Len())
	if pos, ok := a.lib.Position(keep); keep != 0 && ok {
		a.cursor.Select(pos)
	}
}

// Jump selects the first book in the view matching every description.
func (a *App) Jump(descs []search.Description) (*record.Book, error) {
	var pos int
	if a.scope == nil {
		p, ok, err := a.lib.FindFirstMatchPosition(descs...)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, ErrNoMatches
		}
		pos = p
	} else {
		matchers, err := search.CompileAll(descs)
		if err != nil {
			return nil, err
		}
		pos = -1
		for i, id := range a.scope {
			if b, ok := a.lib.Peek(id); ok && matchesAll(b, matchers) {
				pos = i
				break
			}
		}
		if pos < 0 {
			return nil, ErrNoMatches
		}
	}
	a.cursor.Select(pos)
	b, _ := a.Selected()
	return b, nil
}

func matchesAll(b *record.Book, matchers []*search.Matcher) bool {
	for _, m := range matchers {
		if !m.Match(b) {
			return false
		}
	}
	return true
}

// =============================================================================
// MERGING
// =============================================================================

// Merge folds together books with the same title and authors and persists
// the survivors and deletions in one transaction. When that fails the index
// is reloaded from the store so both still agree.
func (a *App) Merge(ctx context.Context) ([]library.MergePair, error) {
	pairs := a.lib.MergeSimilar()
	if len(pairs) == 0 {
		return nil, nil
	}

	seen := make(map[record.BookID]bool)
	var survivors []*record.Book
	absorbed := make([]record.BookID, 0, len(pairs))
	for _, p := range pairs {
		absorbed = append(absorbed, p.Absorbed)
		if seen[p.Survivor] {
			continue
		}
		seen[p.Survivor] = true
		if survivor, ok := a.lib.Peek(p.Survivor); ok {
			survivors = append(survivors, survivor)
		}
	}

	if err := a.store.ReplaceMerged(ctx, survivors, absorbed); err != nil {
		a.logger.Error("failed to save merge, reloading catalog", "err", err)
		if _, rerr := a.load(ctx); rerr != nil {
			return nil, errors.Join(fmt.Errorf("failed to save merge: %w", err), rerr)
		}
		return nil, fmt.Errorf("failed to save merge: %w", err)
	}

	a.logger.Info("merged similar books", "survivors", len(survivors), "absorbed", len(absorbed))
	a.refresh()
	return pairs, nil
}

// =============================================================================
// PERSISTENCE
// =============================================================================

// Save flushes the store.
func (a *App) Save(ctx context.Context) error {
	if err := a.store.Save(ctx); err != nil {
		return fmt.Errorf("failed to save catalog: %w", err)
	}
	a.logger.Debug("catalog saved")
	return nil
}

// Export writes the current view to w.
func (a *App) Export(w io.Writer, opts *export.Options) (int, error) {
	books := a.Books()
	if err := export.Write(w, books, opts); err != nil {
		return 0, err
	}
	return len(books), nil
}

// ExportFile writes the current view to path atomically.
func (a *App) ExportFile(path string, opts *export.Options) (int, error) {
	books := a.Books()
	if err := export.ToFile(path, books, opts); err != nil {
		return 0, err
	}
	a.logger.Info("exported catalog", "path", path, "books", len(books))
	return len(books), nil
}

// Books returns every book in the current view in view order.
func (a *App) Books() []*record.Book {
	if a.scope == nil {
		return a.lib.AllRecords()
	}
	books := make([]*record.Book, 0, len(a.scope))
	for _, id := range a.scope {
		if b, ok := a.lib.Peek(id); ok {
			books = append(books, b)
		}
	}
	return books
}
