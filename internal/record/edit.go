// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package record defines the book entity stored in the library.
package record

// =============================================================================
// EDITS
// =============================================================================

// EditKind selects what an Edit does to a column.
type EditKind uint8

const (
	EditDelete EditKind = iota
	EditReplace
	EditAppend
	EditSequence
)

// Edit is a single change to one column.
type Edit struct {
	Kind  EditKind
	Value string
	// Sequence produces the final value from the current one. Used by EditSequence.
	Sequence func(current string) string
}

// Delete clears a column.
func Delete() Edit { return Edit{Kind: EditDelete} }

// Replace overwrites a column.
func Replace(value string) Edit { return Edit{Kind: EditReplace, Value: value} }

// Append extends a column.
func Append(value string) Edit { return Edit{Kind: EditAppend, Value: value} }

// Sequence rewrites a column from its current value.
func Sequence(fn func(current string) string) Edit {
	return Edit{Kind: EditSequence, Sequence: fn}
}

// ColumnEdit pairs an edit with the column it targets.
type ColumnEdit struct {
	Column Column
	Edit   Edit
}

// ApplyEdit applies e to column c in place. Callers that share b with
// readers must apply edits to a Clone.
func (b *Book) ApplyEdit(c Column, e Edit) error {
	if c.Kind == ColumnID {
		return &RecordError{Column: c, Err: ErrImmutableColumn}
	}
	switch e.Kind {
	case EditDelete:
		b.deleteColumn(c)
		return nil
	case EditReplace:
		b.setColumn(c, e.Value)
		return nil
	case EditAppend:
		return b.extendColumn(c, e.Value)
	case EditSequence:
		current, _ := b.Value(c)
		if e.Sequence != nil {
			current = e.Sequence(current)
		}
		b.setColumn(c, current)
		return nil
	}
	return nil
}

func (b *Book) setColumn(c Column, value string) {
	switch c.Kind {
	case ColumnTitle:
		b.Title = value
	case ColumnAuthors:
		b.Authors = []string{value}
	case ColumnSeries:
		s := ParseSeries(value)
		b.Series = &s
	case ColumnDescription:
		b.Description = value
	case ColumnTags:
		b.AddFreeTag(value)
	case ColumnNamedTag:
		b.SetTag(c.Name, value)
	}
}

func (b *Book) extendColumn(c Column, value string) error {
	switch c.Kind {
	case ColumnTitle:
		b.Title += value
	case ColumnAuthors:
		b.Authors = append(b.Authors, value)
	case ColumnSeries:
		return &RecordError{Column: c, Err: ErrInextensibleColumn}
	case ColumnDescription:
		b.Description += value
	case ColumnTags:
		b.AddFreeTag(value)
	case ColumnNamedTag:
		current, _ := b.Tag(c.Name)
		b.SetTag(c.Name, current+value)
	}
	return nil
}

func (b *Book) deleteColumn(c Column) {
	switch c.Kind {
	case ColumnTitle:
		b.Title = ""
	case ColumnAuthors:
		b.Authors = nil
	case ColumnSeries:
		b.Series = nil
	case ColumnDescription:
		b.Description = ""
	case ColumnTags:
		b.FreeTags = nil
	case ColumnNamedTag:
		b.DeleteTag(c.Name)
	}
}
