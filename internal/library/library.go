// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package library is the in-memory book index.
package library

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/RoaringBitmap/roaring/v2/roaring64"

	"github.com/jeranaias/bookshelf-tui/internal/record"
	"github.com/jeranaias/bookshelf-tui/internal/sorting"
)

// =============================================================================
// LIBRARY
// =============================================================================

// Options configures a Library.
type Options struct {
	// Capacity bounds the number of books. Zero means unbounded.
	Capacity int

	// SortThreshold is the size at which sorting runs in parallel.
	SortThreshold int

	// SortWorkers bounds parallel sort goroutines.
	SortWorkers int

	// Logger receives eviction and consistency messages. Nil discards them.
	Logger *slog.Logger
}

// Library is an ordered, id-addressable collection of books.
type Library struct {
	books   []*record.Book
	slots   map[record.BookID]int
	columns *Columns
	nextID  record.BookID

	recency *recency
	sorter  *sorting.Sorter
	logger  *slog.Logger
}

// New creates an empty library.
func New(opts Options) *Library {
	l := &Library{
		slots:   make(map[record.BookID]int),
		columns: NewColumns(),
		nextID:  1,
		sorter:  sorting.New(opts.SortThreshold, opts.SortWorkers),
		logger:  opts.Logger,
	}
	if l.logger == nil {
		l.logger = slog.New(slog.DiscardHandler)
	}
	if opts.Capacity > 0 {
		l.recency = newRecency(opts.Capacity)
	}
	return l
}

// Len returns the number of books.
func (l *Library) Len() int {
	return len(l.books)
}

// Capacity returns the configured bound, or zero when unbounded.
func (l *Library) Capacity() int {
	if l.recency == nil {
		return 0
	}
	return l.recency.capacity
}

// NextID returns the id the next anonymous insert will receive.
func (l *Library) NextID() record.BookID {
	return l.nextID
}

// =============================================================================
// INSERTION
// =============================================================================

// Insert stores b and returns its id. A zero id is replaced by the next
// unused one. Inserting an id that is already present replaces that book in
// place. The largest possible id never advances the counter, so assigned
// ids cannot wrap to zero. The library takes ownership of b.
func (l *Library) Insert(b *record.Book) record.BookID {
	if b.ID == 0 {
		b.ID = l.nextID
		l.nextID++
	} else if b.ID >= l.nextID && b.ID != math.MaxUint64 {
		l.nextID = b.ID + 1
	}
	l.columns.AddBook(b)

	if pos, ok := l.slots[b.ID]; ok {
		l.books[pos] = b
		l.touch(b.ID)
		return b.ID
	}

	if l.recency != nil && len(l.books) >= l.recency.capacity {
		if victim, ok := l.recency.oldest(); ok {
			l.Remove(victim)
			l.logger.Debug("evicted least recently used book", "id", victim, "capacity", l.recency.capacity)
		}
	}

	l.slots[b.ID] = len(l.books)
	l.books = append(l.books, b)
	l.touch(b.ID)
	return b.ID
}

// InsertMany inserts books in order and returns their ids.
func (l *Library) InsertMany(books []*record.Book) []record.BookID {
	ids := make([]record.BookID, len(books))
	for i, b := range books {
		ids[i] = l.Insert(b)
	}
	return ids
}

// =============================================================================
// LOOKUP
// =============================================================================

// Get returns the book with id.
func (l *Library) Get(id record.BookID) (*record.Book, bool) {
	pos, ok := l.slots[id]
	if !ok {
		return nil, false
	}
	l.touch(id)
	return l.books[pos], true
}

// Peek returns the book with id without marking it recently used.
func (l *Library) Peek(id record.BookID) (*record.Book, bool) {
	pos, ok := l.slots[id]
	if !ok {
		return nil, false
	}
	return l.books[pos], true
}

// GetByPosition returns the book at position i.
func (l *Library) GetByPosition(i int) (*record.Book, bool) {
	if i < 0 || i >= len(l.books) {
		return nil, false
	}
	b := l.books[i]
	l.touch(b.ID)
	return b, true
}

// Position returns the position of id.
func (l *Library) Position(id record.BookID) (int, bool) {
	pos, ok := l.slots[id]
	return pos, ok
}

// Window returns the books in [start, end), clamped to the library.
func (l *Library) Window(start, end int) []*record.Book {
	start = max(start, 0)
	end = min(end, len(l.books))
	if start >= end {
		return nil
	}
	return append([]*record.Book(nil), l.books[start:end]...)
}

// AllRecords returns a snapshot of every book in order.
func (l *Library) AllRecords() []*record.Book {
	return append([]*record.Book(nil), l.books...)
}

// HasColumn reports whether name is a known column.
func (l *Library) HasColumn(name string) bool {
	return l.columns.Has(name)
}

// Columns returns the known column names.
func (l *Library) Columns() []string {
	return l.columns.Names()
}

// =============================================================================
// REMOVAL
// =============================================================================

// Remove deletes id and reports whether it was present. Later books move up
// one position.
func (l *Library) Remove(id record.BookID) bool {
	pos, ok := l.slots[id]
	if !ok {
		return false
	}
	l.removeAt(pos)
	return true
}

// RemoveByPosition deletes the book at position i and returns it.
func (l *Library) RemoveByPosition(i int) (*record.Book, error) {
	if i < 0 || i >= len(l.books) {
		return nil, fmt.Errorf("%w: %d (len %d)", ErrIndexOutOfBounds, i, len(l.books))
	}
	b := l.books[i]
	l.removeAt(i)
	return b, nil
}

// RemoveMany deletes every listed id in one pass and returns how many were
// present.
func (l *Library) RemoveMany(ids ...record.BookID) int {
	victims := roaring64.New()
	for _, id := range ids {
		if _, ok := l.slots[id]; ok {
			victims.Add(uint64(id))
		}
	}
	if victims.IsEmpty() {
		return 0
	}
	return l.compact(func(_ int, b *record.Book) bool {
		return victims.Contains(uint64(b.ID))
	})
}

// Clear removes every book. Ids are not reused.
func (l *Library) Clear() {
	clear(l.books)
	l.books = l.books[:0]
	clear(l.slots)
	if l.recency != nil {
		l.recency.reset()
	}
}

func (l *Library) removeAt(pos int) {
	id := l.books[pos].ID
	copy(l.books[pos:], l.books[pos+1:])
	l.books[len(l.books)-1] = nil
	l.books = l.books[:len(l.books)-1]
	delete(l.slots, id)
	for i := pos; i < len(l.books); i++ {
		l.slots[l.books[i].ID] = i
	}
	if l.recency != nil {
		l.recency.remove(id)
	}
}

// compact drops every book for which drop returns true, keeping the order
// of the rest, and returns the number dropped.
func (l *Library) compact(drop func(pos int, b *record.Book) bool) int {
	w := 0
	for pos, b := range l.books {
		if drop(pos, b) {
			delete(l.slots, b.ID)
			if l.recency != nil {
				l.recency.remove(b.ID)
			}
			continue
		}
		l.books[w] = b
		l.slots[b.ID] = w
		w++
	}
	removed := len(l.books) - w
	clear(l.books[w:])
	l.books = l.books[:w]
	return removed
}

// reindex rebuilds the id map from the slice order.
func (l *Library) reindex() {
	for i, b := range l.books {
		l.slots[b.ID] = i
	}
}

func (l *Library) touch(id record.BookID) {
	if l.recency != nil {
		l.recency.touch(id)
	}
}
