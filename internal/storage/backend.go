// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage persists the book catalog.
package storage

import (
	"context"
	"errors"

	"github.com/jeranaias/bookshelf-tui/internal/record"
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	ErrNotFound      = errors.New("book not found in catalog")
	ErrNotOpen       = errors.New("catalog is not open")
	ErrDatabaseError = errors.New("database error")
)

// =============================================================================
// BACKEND
// =============================================================================

// Backend is the system of record behind the in-memory library. Calls may
// block on disk I/O.
type Backend interface {
	// Open prepares the backend for use.
	Open(ctx context.Context) error

	// Save flushes pending writes to durable storage.
	Save(ctx context.Context) error

	// Insert stores b, assigning an id when b.ID is zero, and returns the id.
	// An existing id is overwritten.
	Insert(ctx context.Context, b *record.Book) (record.BookID, error)

	// Update overwrites an existing book. A missing id returns ErrNotFound.
	Update(ctx context.Context, b *record.Book) error

	// Remove deletes the listed ids. Missing ids are ignored.
	Remove(ctx context.Context, ids ...record.BookID) error

	// Get loads one book. A missing id returns ErrNotFound.
	Get(ctx context.Context, id record.BookID) (*record.Book, error)

	// GetAll loads every book ordered by id.
	GetAll(ctx context.Context) ([]*record.Book, error)

	// Close releases the backend.
	Close() error
}
