// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package library is the in-memory book index.
package library

import (
	"fmt"

	"github.com/jeranaias/bookshelf-tui/internal/record"
	"github.com/jeranaias/bookshelf-tui/internal/search"
	"github.com/jeranaias/bookshelf-tui/internal/sorting"
)

// =============================================================================
// SEARCH
// =============================================================================

// FindMatches returns the books satisfying every description, in library
// order. Descriptions narrow the result one after another.
func (l *Library) FindMatches(descs ...search.Description) ([]*record.Book, error) {
	matchers, err := search.CompileAll(descs)
	if err != nil {
		return nil, err
	}
	return search.Filter(l.books, matchers...), nil
}

// FindFirstMatchPosition returns the position of the first book satisfying
// every description. ok is false when nothing matches.
func (l *Library) FindFirstMatchPosition(descs ...search.Description) (pos int, ok bool, err error) {
	matches, err := l.FindMatches(descs...)
	if err != nil {
		return 0, false, err
	}
	if len(matches) == 0 {
		return 0, false, nil
	}
	id := matches[0].ID
	pos, ok = l.slots[id]
	if !ok || l.books[pos] != matches[0] {
		l.logger.Error("search result has no position in the index", "id", id)
		return 0, false, fmt.Errorf("%w: book %d matched but is not indexed", ErrInternalInconsistency, id)
	}
	return pos, true, nil
}

// =============================================================================
// SORTING
// =============================================================================

// Sort reorders the library by keys. Books that compare equal keep their
// relative order.
func (l *Library) Sort(keys []sorting.Key) {
	if len(keys) == 0 {
		return
	}
	l.sorter.Sort(l.books, keys)
	l.reindex()
}
