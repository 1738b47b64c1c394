// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package record defines the book entity stored in the library.
package record

import (
	"maps"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
)

// =============================================================================
// IDENTITY
// =============================================================================

// BookID identifies a Book within a library. Zero means unassigned.
type BookID uint64

// String returns the decimal form of the ID.
func (id BookID) String() string {
	return strconv.FormatUint(uint64(id), 10)
}

// ParseBookID parses a decimal BookID.
func ParseBookID(s string) (BookID, error) {
	v, err := strconv.ParseUint(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, err
	}
	return BookID(v), nil
}

// =============================================================================
// FORMATS AND VARIANTS
// =============================================================================

// Format is the file format of a variant.
type Format string

const (
	FormatEPUB    Format = "epub"
	FormatMOBI    Format = "mobi"
	FormatAZW3    Format = "azw3"
	FormatPDF     Format = "pdf"
	FormatTXT     Format = "txt"
	FormatUnknown Format = "unknown"
)

// FormatFromPath returns the format implied by a file extension.
func FormatFromPath(path string) Format {
	switch strings.ToLower(strings.TrimPrefix(filepath.Ext(path), ".")) {
	case "epub":
		return FormatEPUB
	case "mobi":
		return FormatMOBI
	case "azw3":
		return FormatAZW3
	case "pdf":
		return FormatPDF
	case "txt":
		return FormatTXT
	default:
		return FormatUnknown
	}
}

// Variant is one file realization of a book.
type Variant struct {
	Format      Format   `json:"format"`
	Path        string   `json:"path"`
	Title       string   `json:"title,omitempty"`
	Authors     []string `json:"authors,omitempty"`
	Language    string   `json:"language,omitempty"`
	Identifier  string   `json:"identifier,omitempty"`
	Description string   `json:"description,omitempty"`
	FileSize    int64    `json:"file_size,omitempty"`
	Hash        string   `json:"hash,omitempty"`
}

// =============================================================================
// BOOK
// =============================================================================

// Book is a catalogued book. Empty strings and nil slices mean the field is
// absent.
type Book struct {
	ID          BookID            `json:"id"`
	Title       string            `json:"title,omitempty"`
	Authors     []string          `json:"authors,omitempty"`
	Series      *Series           `json:"series,omitempty"`
	Description string            `json:"description,omitempty"`
	NamedTags   map[string]string `json:"named_tags,omitempty"`
	FreeTags    []string          `json:"tags,omitempty"`
	Variants    []Variant         `json:"variants,omitempty"`
}

// FromVariant builds a book whose fields come from a single variant.
func FromVariant(v Variant) *Book {
	b := &Book{
		Title:       v.Title,
		Description: v.Description,
		Variants:    []Variant{v},
	}
	if len(v.Authors) > 0 {
		b.Authors = slices.Clone(v.Authors)
	}
	return b
}

// Clone returns a deep copy of b.
func (b *Book) Clone() *Book {
	out := &Book{
		ID:          b.ID,
		Title:       b.Title,
		Authors:     slices.Clone(b.Authors),
		Series:      b.Series.clone(),
		Description: b.Description,
		NamedTags:   maps.Clone(b.NamedTags),
		FreeTags:    slices.Clone(b.FreeTags),
	}
	if b.Variants != nil {
		out.Variants = make([]Variant, len(b.Variants))
		for i, v := range b.Variants {
			v.Authors = slices.Clone(v.Authors)
			out.Variants[i] = v
		}
	}
	return out
}

// Tag returns the value of a named tag. Keys match case-insensitively.
func (b *Book) Tag(name string) (string, bool) {
	if v, ok := b.NamedTags[name]; ok {
		return v, true
	}
	if k, ok := b.tagKey(name); ok {
		return b.NamedTags[k], true
	}
	return "", false
}

// SetTag sets a named tag, reusing the spelling of an existing key.
func (b *Book) SetTag(name, value string) {
	if b.NamedTags == nil {
		b.NamedTags = make(map[string]string)
	}
	if k, ok := b.tagKey(name); ok {
		name = k
	}
	b.NamedTags[name] = value
}

// DeleteTag removes a named tag.
func (b *Book) DeleteTag(name string) {
	if k, ok := b.tagKey(name); ok {
		delete(b.NamedTags, k)
	}
}

func (b *Book) tagKey(name string) (string, bool) {
	if _, ok := b.NamedTags[name]; ok {
		return name, true
	}
	folded := Fold(name)
	for k := range b.NamedTags {
		if Fold(k) == folded {
			return k, true
		}
	}
	return "", false
}

// AddFreeTag inserts a free tag, keeping FreeTags sorted and unique.
func (b *Book) AddFreeTag(tag string) {
	i, found := slices.BinarySearch(b.FreeTags, tag)
	if found {
		return
	}
	b.FreeTags = slices.Insert(b.FreeTags, i, tag)
}

// HasFreeTag reports whether tag is in the free tag set.
func (b *Book) HasFreeTag(tag string) bool {
	_, found := slices.BinarySearch(b.FreeTags, tag)
	return found
}

// Value returns the string form of a column. The boolean is false when the
// column is absent from this book.
func (b *Book) Value(c Column) (string, bool) {
	switch c.Kind {
	case ColumnTitle:
		return b.Title, b.Title != ""
	case ColumnAuthors:
		return strings.Join(b.Authors, ", "), len(b.Authors) > 0
	case ColumnSeries:
		if b.Series == nil {
			return "", false
		}
		return b.Series.String(), true
	case ColumnID:
		return b.ID.String(), b.ID != 0
	case ColumnDescription:
		return b.Description, b.Description != ""
	case ColumnTags:
		return strings.Join(b.FreeTags, ", "), len(b.FreeTags) > 0
	default:
		return b.Tag(c.Name)
	}
}

// Merge folds a duplicate into b. Fields b lacks are taken from other,
// variants are appended, and tags are unioned with b winning conflicts.
func (b *Book) Merge(other *Book) {
	if b.Title == "" {
		b.Title = other.Title
	}
	if len(b.Authors) == 0 {
		b.Authors = slices.Clone(other.Authors)
	}
	if b.Series == nil {
		b.Series = other.Series.clone()
	}
	if b.Description == "" {
		b.Description = other.Description
	}
	for k, v := range other.NamedTags {
		if _, ok := b.Tag(k); !ok {
			b.SetTag(k, v)
		}
	}
	for _, t := range other.FreeTags {
		b.AddFreeTag(t)
	}
	for _, v := range other.Variants {
		v.Authors = slices.Clone(v.Authors)
		b.Variants = append(b.Variants, v)
	}
}

// MergeKey returns the dedup key used to find similar books: the lower-cased
// title and the lower-cased comma-joined authors. ok is false when either
// field is absent.
func (b *Book) MergeKey() (key [2]string, ok bool) {
	if b.Title == "" || len(b.Authors) == 0 {
		return key, false
	}
	return [2]string{
		strings.ToLower(b.Title),
		strings.ToLower(strings.Join(b.Authors, ", ")),
	}, true
}
