// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage persists the book catalog.
//
// The in-memory library is loaded from a Backend when a session starts and
// every later mutation is written through to it. SQLiteStore is the
// Backend used by the application: a single SQLite file in WAL mode with
// one table per repeated field.
//
// # Key Types
//
//   - Backend: persistence contract keyed by BookID
//   - SQLiteStore: SQLite implementation (pure Go driver)
//
// # Usage
//
//	store := storage.NewSQLiteStore(cfg.Library.DatabasePath)
//	if err := store.Open(ctx); err != nil {
//	    return err
//	}
//	defer store.Close()
//	books, err := store.GetAll(ctx)
package storage
