// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"bytes"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jeranaias/bookshelf-tui/internal/record"
)

func sampleBooks() []*record.Book {
	idx := 1.0
	return []*record.Book{
		{
			ID:        1,
			Title:     "Dune",
			Authors:   []string{"Frank Herbert"},
			Series:    &record.Series{Name: "Dune", Index: &idx},
			NamedTags: map[string]string{"Publisher": "Ace"},
			FreeTags:  []string{"scifi"},
			Variants:  []record.Variant{{Format: record.FormatEPUB, Path: "/b/dune.epub", FileSize: 2048}},
		},
		{ID: 2, Title: "Emma_*"},
	}
}

func TestJSONL_RoundTrip(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, sampleBooks(), DefaultOptions()); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if lines := strings.Count(buf.String(), "\n"); lines != 2 {
		t.Errorf("line count = %d, want 2", lines)
	}

	books, err := ReadJSONL(&buf)
	if err != nil {
		t.Fatalf("ReadJSONL failed: %v", err)
	}
	if len(books) != 2 || books[0].Title != "Dune" || *books[0].Series.Index != 1 ||
		books[0].NamedTags["Publisher"] != "Ace" || len(books[0].Variants) != 1 {
		t.Errorf("round trip = %+v", books[0])
	}
}

func TestJSONL_WithoutVariants(t *testing.T) {
	books := sampleBooks()
	var buf bytes.Buffer
	if err := Write(&buf, books, &Options{Format: "jsonl"}); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if strings.Contains(buf.String(), "dune.epub") {
		t.Error("variants should be omitted")
	}
	if len(books[0].Variants) != 1 {
		t.Error("export must not modify the input books")
	}
}

func TestToFile_Compressed(t *testing.T) {
	opts := &Options{Format: "jsonl", Compress: true, IncludeVariants: true}
	path := filepath.Join(t.TempDir(), FileName("library", opts))
	if !strings.HasSuffix(path, ".jsonl.zst") {
		t.Fatalf("FileName() = %q, want .jsonl.zst suffix", path)
	}

	if err := ToFile(path, sampleBooks(), opts); err != nil {
		t.Fatalf("ToFile failed: %v", err)
	}

	rc, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}
	books, err := ReadJSONL(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("ReadJSONL failed: %v", err)
	}
	if len(books) != 2 {
		t.Errorf("decompressed %d books, want 2", len(books))
	}
}

func TestMarkdown(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, sampleBooks(), &Options{Format: "md", IncludeVariants: true}); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"## Dune", "**Series:** Dune \\[1\\]", "**Publisher:** Ace", "2.0 KB", `## Emma\_\*`} {
		if !strings.Contains(out, want) {
			t.Errorf("markdown missing %q:\n%s", want, out)
		}
	}
}

func TestNew_UnknownFormat(t *testing.T) {
	if _, err := New(&Options{Format: "xml"}); err == nil {
		t.Error("New(xml) should fail")
	}
}
