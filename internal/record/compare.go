// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package record defines the book entity stored in the library.
package record

import (
	"cmp"
	"slices"
	"strings"
)

// CompareColumn orders two books by one column. A missing value sorts before
// a present one. Strings compare bytewise, ids numerically, author lists
// element by element.
func CompareColumn(a, b *Book, c Column) int {
	switch c.Kind {
	case ColumnID:
		return cmp.Compare(a.ID, b.ID)
	case ColumnTitle:
		return compareOptional(a.Title, b.Title)
	case ColumnAuthors:
		return compareLists(a.Authors, b.Authors)
	case ColumnSeries:
		return CompareSeries(a.Series, b.Series)
	case ColumnDescription:
		return compareOptional(a.Description, b.Description)
	case ColumnTags:
		return compareLists(a.FreeTags, b.FreeTags)
	default:
		av, aok := a.Tag(c.Name)
		bv, bok := b.Tag(c.Name)
		return comparePresence(aok, bok, av, bv)
	}
}

func compareOptional(a, b string) int {
	return comparePresence(a != "", b != "", a, b)
}

func comparePresence(aok, bok bool, a, b string) int {
	switch {
	case !aok && !bok:
		return 0
	case !aok:
		return -1
	case !bok:
		return 1
	}
	return strings.Compare(a, b)
}

func compareLists(a, b []string) int {
	switch {
	case len(a) == 0 && len(b) == 0:
		return 0
	case len(a) == 0:
		return -1
	case len(b) == 0:
		return 1
	}
	return slices.Compare(a, b)
}
