// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package library is the in-memory book index.
package library

import "errors"

var (
	// ErrNotFound is returned when no book has the requested id.
	ErrNotFound = errors.New("book not found")

	// ErrIndexOutOfBounds is returned when a position is past the end.
	ErrIndexOutOfBounds = errors.New("position out of bounds")

	// ErrInternalInconsistency reports a broken index invariant. It is a
	// defect, never a user error.
	ErrInternalInconsistency = errors.New("library index is inconsistent")
)
