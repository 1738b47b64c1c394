// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"bufio"
	"io"

	"github.com/goccy/go-json"

	"github.com/jeranaias/bookshelf-tui/internal/record"
)

// =============================================================================
// JSON LINES EXPORTER
// =============================================================================

// JSONLExporter writes one JSON object per book per line.
type JSONLExporter struct {
	options *Options
}

// NewJSONLExporter creates a new JSON Lines exporter.
func NewJSONLExporter(opts *Options) *JSONLExporter {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &JSONLExporter{options: opts}
}

// Export writes books as JSON Lines.
func (e *JSONLExporter) Export(w io.Writer, books []*record.Book) error {
	bw := bufio.NewWriter(w)
	enc := json.NewEncoder(bw)
	for _, b := range books {
		if !e.options.IncludeVariants && len(b.Variants) > 0 {
			c := b.Clone()
			c.Variants = nil
			b = c
		}
		if err := enc.Encode(b); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// ReadJSONL decodes books written by JSONLExporter.
func ReadJSONL(r io.Reader) ([]*record.Book, error) {
	dec := json.NewDecoder(r)
	var books []*record.Book
	for {
		var b record.Book
		if err := dec.Decode(&b); err != nil {
			if err == io.EOF {
				return books, nil
			}
			return nil, err
		}
		books = append(books, &b)
	}
}

// FileExtension returns the file extension for JSON Lines.
func (e *JSONLExporter) FileExtension() string {
	return ".jsonl"
}

// MimeType returns the MIME type for JSON Lines.
func (e *JSONLExporter) MimeType() string {
	return "application/jsonl"
}
