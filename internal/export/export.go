// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package export writes the catalog out in portable formats.
package export

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/zstd"

	"github.com/jeranaias/bookshelf-tui/internal/record"
	"github.com/jeranaias/bookshelf-tui/internal/util"
)

// =============================================================================
// EXPORT INTERFACE
// =============================================================================

// Exporter writes books in one format.
type Exporter interface {
	// Export writes books to w in order.
	Export(w io.Writer, books []*record.Book) error

	// FileExtension returns the appropriate file extension (e.g., ".jsonl").
	FileExtension() string

	// MimeType returns the MIME type for the exported format.
	MimeType() string
}

// =============================================================================
// EXPORT OPTIONS
// =============================================================================

// Options configures export behavior.
type Options struct {
	// Format is "jsonl" or "markdown".
	Format string

	// Compress wraps the output in a zstd stream.
	Compress bool

	// IncludeVariants includes per-file metadata.
	IncludeVariants bool
}

// DefaultOptions returns default export options.
func DefaultOptions() *Options {
	return &Options{
		Format:          "jsonl",
		IncludeVariants: true,
	}
}

// New returns the exporter for opts.Format.
func New(opts *Options) (Exporter, error) {
	if opts == nil {
		opts = DefaultOptions()
	}
	switch strings.ToLower(opts.Format) {
	case "", "jsonl", "json":
		return NewJSONLExporter(opts), nil
	case "markdown", "md":
		return NewMarkdownExporter(opts), nil
	}
	return nil, fmt.Errorf("unknown export format %q", opts.Format)
}

// =============================================================================
// EXPORT FUNCTIONS
// =============================================================================

// Write exports books to w, compressing when opts.Compress is set.
func Write(w io.Writer, books []*record.Book, opts *Options) error {
	if opts == nil {
		opts = DefaultOptions()
	}
	exporter, err := New(opts)
	if err != nil {
		return err
	}
	if !opts.Compress {
		return exporter.Export(w, books)
	}

	enc, err := zstd.NewWriter(w)
	if err != nil {
		return fmt.Errorf("zstd writer: %w", err)
	}
	if err := exporter.Export(enc, books); err != nil {
		enc.Close()
		return fmt.Errorf("export failed: %w", err)
	}
	return enc.Close()
}

// ToFile exports books to path atomically.
func ToFile(path string, books []*record.Book, opts *Options) error {
	return util.AtomicWrite(path, 0644, func(w io.Writer) error {
		return Write(w, books, opts)
	})
}

// FileName returns a default output name for opts.
func FileName(base string, opts *Options) string {
	if opts == nil {
		opts = DefaultOptions()
	}
	exporter, err := New(opts)
	if err != nil {
		return base
	}
	name := base + exporter.FileExtension()
	if opts.Compress {
		name += ".zst"
	}
	return name
}

// Open reads an export back, transparently decompressing zstd files.
func Open(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	if !strings.HasSuffix(path, ".zst") {
		return f, nil
	}
	dec, err := zstd.NewReader(f)
	if err != nil {
		f.Close()
		return nil, err
	}
	return &zstdReadCloser{dec: dec, f: f}, nil
}

type zstdReadCloser struct {
	dec *zstd.Decoder
	f   *os.File
}

func (z *zstdReadCloser) Read(p []byte) (int, error) { return z.dec.Read(p) }

func (z *zstdReadCloser) Close() error {
	z.dec.Close()
	return z.f.Close()
}
