// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package sorting orders books by a list of column keys.
package sorting

import (
	"errors"
	"strings"

	"github.com/jeranaias/bookshelf-tui/internal/record"
)

// ErrEmptyKey is returned when a sort key names no column.
var ErrEmptyKey = errors.New("sort key is empty")

// Direction is ascending or descending.
type Direction uint8

const (
	Ascending Direction = iota
	Descending
)

// Key is one column of a sort order.
type Key struct {
	Column    record.Column
	Direction Direction
}

// String formats the key the way ParseKey reads it.
func (k Key) String() string {
	if k.Direction == Descending {
		return "-" + k.Column.String()
	}
	return k.Column.String()
}

// ParseKey parses a column name; a leading "-" sorts descending and a
// leading "+" is accepted for ascending.
func ParseKey(s string) (Key, error) {
	s = strings.TrimSpace(s)
	dir := Ascending
	switch {
	case strings.HasPrefix(s, "-"):
		dir = Descending
		s = s[1:]
	case strings.HasPrefix(s, "+"):
		s = s[1:]
	}
	if strings.TrimSpace(s) == "" {
		return Key{}, ErrEmptyKey
	}
	return Key{Column: record.ParseColumn(s), Direction: dir}, nil
}

// ParseKeys parses each entry with ParseKey.
func ParseKeys(specs []string) ([]Key, error) {
	keys := make([]Key, 0, len(specs))
	for _, s := range specs {
		k, err := ParseKey(s)
		if err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, nil
}

// Compare orders a and b by keys. The first non-equal column decides.
func Compare(a, b *record.Book, keys []Key) int {
	for _, k := range keys {
		c := record.CompareColumn(a, b, k.Column)
		if c == 0 {
			continue
		}
		if k.Direction == Descending {
			return -c
		}
		return c
	}
	return 0
}
