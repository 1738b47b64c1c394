// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package record defines the book entity stored in the library.
package record

import (
	"strings"

	"golang.org/x/text/cases"
)

// =============================================================================
// COLUMN IDENTIFIERS
// =============================================================================

// ColumnKind selects the accessor a Column resolves to.
type ColumnKind uint8

const (
	ColumnTitle ColumnKind = iota
	ColumnAuthors
	ColumnSeries
	ColumnID
	ColumnDescription
	ColumnTags
	ColumnNamedTag
)

// Column is a logical field name. Built-in columns carry no name; named tag
// columns carry the tag key as the user spelled it.
type Column struct {
	Kind ColumnKind
	Name string
}

// Built-in columns.
var (
	Title       = Column{Kind: ColumnTitle}
	Authors     = Column{Kind: ColumnAuthors}
	SeriesCol   = Column{Kind: ColumnSeries}
	ID          = Column{Kind: ColumnID}
	Description = Column{Kind: ColumnDescription}
	Tags        = Column{Kind: ColumnTags}
)

// BuiltinColumns returns the fixed columns in display order.
func BuiltinColumns() []Column {
	return []Column{Title, Authors, SeriesCol, ID, Description, Tags}
}

// NamedTag returns the column for a named tag key.
func NamedTag(name string) Column {
	return Column{Kind: ColumnNamedTag, Name: name}
}

// Fold returns the case-folded form of a column name. Two names refer to the
// same column exactly when their folded forms are equal.
func Fold(name string) string {
	// A Caser carries state, so each call gets its own.
	return cases.Fold().String(strings.TrimSpace(name))
}

// ParseColumn resolves a user-supplied column name. Unknown names become
// named tag columns.
func ParseColumn(name string) Column {
	name = strings.TrimSpace(name)
	switch Fold(name) {
	case "title":
		return Title
	case "author", "authors":
		return Authors
	case "series":
		return SeriesCol
	case "id":
		return ID
	case "description":
		return Description
	case "tag", "tags":
		return Tags
	}
	return NamedTag(name)
}

// String returns the canonical column name.
func (c Column) String() string {
	switch c.Kind {
	case ColumnTitle:
		return "title"
	case ColumnAuthors:
		return "authors"
	case ColumnSeries:
		return "series"
	case ColumnID:
		return "id"
	case ColumnDescription:
		return "description"
	case ColumnTags:
		return "tags"
	default:
		return c.Name
	}
}

// Equal reports whether c and other name the same column.
func (c Column) Equal(other Column) bool {
	if c.Kind != other.Kind {
		return false
	}
	if c.Kind != ColumnNamedTag {
		return true
	}
	return Fold(c.Name) == Fold(other.Name)
}

// Key returns the folded name used for registry lookups.
func (c Column) Key() string {
	return Fold(c.String())
}
