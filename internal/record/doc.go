// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package record defines the book entity stored in the library.
//
// A Book has a stable identity (BookID) and a mix of fixed fields (title,
// authors, series, description) and dynamic ones (named tags and free tags).
// Each Book may have several variants, one per file realization on disk.
//
// Books are values owned by the library. Code outside the library treats a
// *Book as a read-only snapshot: edits are applied to a Clone and the clone
// replaces the original.
//
// # Key Types
//
//   - Book: the catalogued entity
//   - BookID: identity assigned by the library
//   - Column: case-insensitive logical field name
//   - Series: series name with an optional fractional index
//   - Edit: a single field edit (delete, replace, append, sequence)
//   - RecordError: an edit rejected by the column it targets
//
// # Usage
//
// Resolve a column and read a value:
//
//	col := record.ParseColumn("Authors")
//	value, ok := book.Value(col)
//
// Edit a copy:
//
//	next := book.Clone()
//	err := next.ApplyEdit(record.ParseColumn("series"), record.Replace("Dune [1]"))
package record
