// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package extract reads book metadata from files on disk.
//
// Extract always returns a usable book: when metadata cannot be read the
// title falls back to the file name and the error says why.
package extract

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/zeebo/xxh3"

	"github.com/jeranaias/bookshelf-tui/internal/record"
)

var (
	// ErrUnsupportedFormat is returned for files whose extension is not a
	// known book format.
	ErrUnsupportedFormat = errors.New("unsupported format")
	// ErrUnreadable is returned when a file cannot be opened or parsed.
	ErrUnreadable = errors.New("unreadable file")
)

// ExtractError records the file an extraction failed on.
type ExtractError struct {
	Path string
	Err  error
}

func (e *ExtractError) Error() string {
	return fmt.Sprintf("extract %s: %v", e.Path, e.Err)
}

func (e *ExtractError) Unwrap() error {
	return e.Err
}

// Supported reports whether path has an extension Extract recognizes.
func Supported(path string) bool {
	return record.FormatFromPath(path) != record.FormatUnknown
}

// Extract builds a book from the file at path. The returned book is never
// nil; on failure err is an *ExtractError wrapping ErrUnsupportedFormat or
// ErrUnreadable and the book carries only the file name title and a single
// variant.
func Extract(path string) (*record.Book, error) {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	v := record.Variant{
		Format: record.FormatFromPath(path),
		Path:   path,
		Title:  titleFromPath(path),
	}
	if v.Format == record.FormatUnknown {
		return record.FromVariant(v), &ExtractError{Path: path, Err: ErrUnsupportedFormat}
	}

	size, hash, err := hashFile(path)
	if err != nil {
		return record.FromVariant(v), &ExtractError{Path: path, Err: fmt.Errorf("%w: %v", ErrUnreadable, err)}
	}
	v.FileSize = size
	v.Hash = hash

	if v.Format != record.FormatEPUB {
		return record.FromVariant(v), nil
	}

	meta, err := readEPUB(path)
	if err != nil {
		return record.FromVariant(v), &ExtractError{Path: path, Err: fmt.Errorf("%w: %v", ErrUnreadable, err)}
	}
	if meta.Title != "" {
		v.Title = meta.Title
	}
	v.Authors = meta.Authors
	v.Description = meta.Description
	v.Language = meta.Language
	v.Identifier = meta.Identifier

	book := record.FromVariant(v)
	book.Series = meta.Series
	if meta.ISBN != "" {
		book.SetTag("isbn", meta.ISBN)
	}
	return book, nil
}

// titleFromPath returns the file name without its extension.
func titleFromPath(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// hashFile returns the size and xxh3 digest of the file contents.
func hashFile(path string) (int64, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, "", err
	}
	defer f.Close()

	h := xxh3.New()
	n, err := io.Copy(h, f)
	if err != nil {
		return 0, "", err
	}
	return n, fmt.Sprintf("%016x", h.Sum64()), nil
}

// UnravelAuthor turns "Herbert, Frank" into "Frank Herbert". Names without
// a comma are returned trimmed.
func UnravelAuthor(name string) string {
	name = strings.TrimSpace(name)
	last, first, ok := strings.Cut(name, ",")
	if !ok {
		return name
	}
	first = strings.TrimSpace(first)
	last = strings.TrimSpace(last)
	if first == "" {
		return last
	}
	return first + " " + last
}
