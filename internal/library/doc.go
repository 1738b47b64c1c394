// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package library is the in-memory book index.
//
// A Library stores books in insertion order and addresses them two ways:
// by BookID through a hashed map and by position through the ordered slice.
// Both views are updated together on every mutation, so a position read
// after an edit or removal always agrees with the id lookup.
//
// The library also owns the column registry, a case-insensitive set of
// column names seeded with the built-in columns and grown whenever a book
// brings a new named tag.
//
// # Ownership
//
// Books returned by the library are snapshots. Edits clone the stored book,
// apply the changes to the clone and swap it in, so a caller still holding
// the old pointer keeps reading the pre-edit values. Callers must not modify
// returned books.
//
// # Capacity
//
// A library created with a positive capacity evicts its least recently used
// book before inserting past the limit. Insertion, Get, GetByPosition and
// edits count as use.
//
// # Key Types
//
//   - Library: the index
//   - Columns: the column registry
//   - MergePair: a survivor and the duplicate folded into it
//
// # Usage
//
//	lib := library.New(library.Options{Capacity: 32768})
//	id := lib.Insert(&record.Book{Title: "Dune", Authors: []string{"Frank Herbert"}})
//	_, err := lib.Edit(id, record.ColumnEdit{Column: record.NamedTag("Publisher"), Edit: record.Replace("Ace")})
//	pos, ok, err := lib.FindFirstMatchPosition(search.Description{Column: record.Title, Pattern: "dune"})
package library
