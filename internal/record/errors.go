// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package record defines the book entity stored in the library.
package record

import (
	"errors"
	"fmt"
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrImmutableColumn is returned when an edit targets a read-only column such as id.
	ErrImmutableColumn = errors.New("column is immutable")

	// ErrInextensibleColumn is returned when Append targets a column that cannot grow.
	ErrInextensibleColumn = errors.New("column can not be extended")
)

// RecordError reports an edit rejected by the column it targets.
type RecordError struct {
	Column Column
	Err    error
}

func (e *RecordError) Error() string {
	return fmt.Sprintf("%s: %v", e.Column, e.Err)
}

func (e *RecordError) Unwrap() error {
	return e.Err
}
