// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package library is the in-memory book index.
package library

import (
	"fmt"

	"github.com/jeranaias/bookshelf-tui/internal/record"
)

// =============================================================================
// EDITING
// =============================================================================

// Edit applies edits to the book with id and returns the new snapshot. The
// edits are applied in order to a copy; if any fails the stored book is
// unchanged and the error is a *record.RecordError. A missing id returns
// ErrNotFound.
func (l *Library) Edit(id record.BookID, edits ...record.ColumnEdit) (*record.Book, error) {
	pos, ok := l.slots[id]
	if !ok {
		return nil, fmt.Errorf("%w: id %d", ErrNotFound, id)
	}
	return l.editAt(pos, edits)
}

// EditByPosition is Edit addressed by position. A position past the end
// returns ErrIndexOutOfBounds.
func (l *Library) EditByPosition(i int, edits ...record.ColumnEdit) (*record.Book, error) {
	if i < 0 || i >= len(l.books) {
		return nil, fmt.Errorf("%w: %d (len %d)", ErrIndexOutOfBounds, i, len(l.books))
	}
	return l.editAt(i, edits)
}

func (l *Library) editAt(pos int, edits []record.ColumnEdit) (*record.Book, error) {
	next := l.books[pos].Clone()
	for _, e := range edits {
		if err := next.ApplyEdit(e.Column, e.Edit); err != nil {
			return nil, err
		}
	}
	for _, e := range edits {
		if e.Column.Kind == record.ColumnNamedTag && e.Edit.Kind != record.EditDelete {
			l.columns.Add(e.Column.Name)
		}
	}
	l.books[pos] = next
	l.touch(next.ID)
	return next, nil
}
