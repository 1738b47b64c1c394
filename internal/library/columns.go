// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package library is the in-memory book index.
package library

import (
	"maps"
	"slices"

	"github.com/jeranaias/bookshelf-tui/internal/record"
)

// Columns is the set of known column names. Names are deduplicated by
// Unicode case folding and the first spelling seen is kept. The set only
// grows.
type Columns struct {
	names map[string]string
	order []string
}

// NewColumns returns a registry holding the built-in columns.
func NewColumns() *Columns {
	c := &Columns{names: make(map[string]string)}
	for _, col := range record.BuiltinColumns() {
		c.Add(col.String())
	}
	return c
}

// Add registers name and reports whether it was new.
func (c *Columns) Add(name string) bool {
	key := record.Fold(name)
	if key == "" {
		return false
	}
	if _, ok := c.names[key]; ok {
		return false
	}
	c.names[key] = name
	c.order = append(c.order, name)
	return true
}

// Has reports whether name is registered. Built-in aliases such as
// "author" resolve to their column.
func (c *Columns) Has(name string) bool {
	col := record.ParseColumn(name)
	_, ok := c.names[col.Key()]
	return ok
}

// Names returns the registered spellings in registration order.
func (c *Columns) Names() []string {
	return slices.Clone(c.order)
}

// Len returns the number of registered columns.
func (c *Columns) Len() int {
	return len(c.order)
}

// AddBook registers every named tag key of b.
func (c *Columns) AddBook(b *record.Book) {
	for _, k := range slices.Sorted(maps.Keys(b.NamedTags)) {
		c.Add(k)
	}
}
