// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package extract

import (
	"archive/zip"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

const testContainer = `<?xml version="1.0"?>
<container version="1.0" xmlns="urn:oasis:names:tc:opendocument:xmlns:container">
  <rootfiles>
    <rootfile full-path="OEBPS/content.opf" media-type="application/oebps-package+xml"/>
  </rootfiles>
</container>`

const testOPF = `<?xml version="1.0" encoding="UTF-8"?>
<package xmlns="http://www.idpf.org/2007/opf" version="2.0" unique-identifier="uid">
  <metadata xmlns:dc="http://purl.org/dc/elements/1.1/" xmlns:opf="http://www.idpf.org/2007/opf">
    <dc:title>Dune</dc:title>
    <dc:creator opf:role="aut" opf:file-as="Herbert, Frank">Herbert, Frank</dc:creator>
    <dc:creator opf:role="ill">John Schoenherr</dc:creator>
    <dc:description>Desert planet &amp; spice.</dc:description>
    <dc:language>en</dc:language>
    <dc:identifier id="uid" opf:scheme="ISBN">978-0-441-17271-9</dc:identifier>
    <meta name="calibre:series" content="Dune Chronicles"/>
    <meta name="calibre:series_index" content="1.0"/>
  </metadata>
</package>`

func writeEPUB(t *testing.T, dir, name string, files map[string]string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	f, err := os.Create(p)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	zw := zip.NewWriter(f)
	for entry, body := range files {
		w, err := zw.Create(entry)
		if err != nil {
			t.Fatalf("zip create %s: %v", entry, err)
		}
		if _, err := w.Write([]byte(body)); err != nil {
			t.Fatalf("zip write %s: %v", entry, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("zip close: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	return p
}

func TestExtract_EPUB(t *testing.T) {
	p := writeEPUB(t, t.TempDir(), "dune.epub", map[string]string{
		"mimetype":               "application/epub+zip",
		"META-INF/container.xml": testContainer,
		"OEBPS/content.opf":      testOPF,
	})

	book, err := Extract(p)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if book.Title != "Dune" {
		t.Errorf("Title = %q, want Dune", book.Title)
	}
	if len(book.Authors) != 1 || book.Authors[0] != "Frank Herbert" {
		t.Errorf("Authors = %v, want [Frank Herbert]", book.Authors)
	}
	if book.Description != "Desert planet & spice." {
		t.Errorf("Description = %q", book.Description)
	}
	if book.Series == nil || book.Series.Name != "Dune Chronicles" || book.Series.Index == nil || *book.Series.Index != 1 {
		t.Errorf("Series = %+v, want Dune Chronicles [1]", book.Series)
	}
	if isbn, ok := book.Tag("isbn"); !ok || isbn != "9780441172719" {
		t.Errorf("isbn tag = %q, %v", isbn, ok)
	}
	if len(book.Variants) != 1 {
		t.Fatalf("got %d variants, want 1", len(book.Variants))
	}
	v := book.Variants[0]
	if v.Language != "en" || v.Identifier != "isbn:9780441172719" {
		t.Errorf("variant language/identifier = %q/%q", v.Language, v.Identifier)
	}
	if v.Hash == "" || v.FileSize == 0 {
		t.Errorf("variant hash/size not set: %+v", v)
	}
}

func TestExtract_EPUB3Collection(t *testing.T) {
	opf := `<package xmlns="http://www.idpf.org/2007/opf" version="3.0">
  <metadata xmlns:dc="http://purl.org/dc/elements/1.1/">
    <dc:title>Leviathan Wakes</dc:title>
    <dc:creator>James S. A. Corey</dc:creator>
    <dc:identifier>urn:uuid:0f5c3c1e-1111-2222-3333-444455556666</dc:identifier>
    <meta property="belongs-to-collection" id="c01">The Expanse</meta>
    <meta refines="#c01" property="collection-type">series</meta>
    <meta refines="#c01" property="group-position">1</meta>
  </metadata>
</package>`
	p := writeEPUB(t, t.TempDir(), "lw.epub", map[string]string{
		"META-INF/container.xml": testContainer,
		"OEBPS/content.opf":      opf,
	})

	book, err := Extract(p)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if book.Series == nil || book.Series.String() != "The Expanse [1]" {
		t.Errorf("Series = %+v, want The Expanse [1]", book.Series)
	}
	if got := book.Variants[0].Identifier; got != "uuid:0f5c3c1e-1111-2222-3333-444455556666" {
		t.Errorf("Identifier = %q", got)
	}
}

func TestExtract_UnsupportedFormat(t *testing.T) {
	p := filepath.Join(t.TempDir(), "notes.docx")
	if err := os.WriteFile(p, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	book, err := Extract(p)
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("err = %v, want ErrUnsupportedFormat", err)
	}
	var xerr *ExtractError
	if !errors.As(err, &xerr) || xerr.Path != p {
		t.Errorf("err = %v, want *ExtractError for %s", err, p)
	}
	if book == nil || book.Title != "notes" || len(book.Variants) != 1 {
		t.Errorf("minimal book = %+v", book)
	}
}

func TestExtract_CorruptEPUB(t *testing.T) {
	p := filepath.Join(t.TempDir(), "Broken Book.epub")
	if err := os.WriteFile(p, []byte("not a zip"), 0o644); err != nil {
		t.Fatal(err)
	}

	book, err := Extract(p)
	if !errors.Is(err, ErrUnreadable) {
		t.Fatalf("err = %v, want ErrUnreadable", err)
	}
	if book.Title != "Broken Book" {
		t.Errorf("Title = %q, want file name stem", book.Title)
	}
	if book.Variants[0].Hash == "" {
		t.Error("hash should still be recorded when only parsing fails")
	}
}

func TestExtract_MissingContainer(t *testing.T) {
	p := writeEPUB(t, t.TempDir(), "bare.epub", map[string]string{"mimetype": "application/epub+zip"})

	_, err := Extract(p)
	if !errors.Is(err, ErrUnreadable) {
		t.Fatalf("err = %v, want ErrUnreadable", err)
	}
}

func TestExtract_MissingFile(t *testing.T) {
	_, err := Extract(filepath.Join(t.TempDir(), "gone.pdf"))
	if !errors.Is(err, ErrUnreadable) {
		t.Fatalf("err = %v, want ErrUnreadable", err)
	}
}

func TestExtract_PDFUsesFileName(t *testing.T) {
	p := filepath.Join(t.TempDir(), "Manual.pdf")
	if err := os.WriteFile(p, []byte("%PDF-1.4"), 0o644); err != nil {
		t.Fatal(err)
	}

	book, err := Extract(p)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if book.Title != "Manual" || book.Variants[0].Format != "pdf" {
		t.Errorf("book = %+v", book)
	}
}

func TestExtract_SameContentSameHash(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.txt")
	b := filepath.Join(dir, "b.txt")
	for _, p := range []string{a, b} {
		if err := os.WriteFile(p, []byte("same bytes"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	ba, _ := Extract(a)
	bb, _ := Extract(b)
	if ba.Variants[0].Hash != bb.Variants[0].Hash {
		t.Error("identical files hashed differently")
	}
}

func TestUnravelAuthor(t *testing.T) {
	tests := map[string]string{
		"Herbert, Frank":     "Frank Herbert",
		"Le Guin, Ursula K.": "Ursula K. Le Guin",
		"  Iain M. Banks ":   "Iain M. Banks",
		"Plato,":             "Plato",
	}
	for in, want := range tests {
		if got := UnravelAuthor(in); got != want {
			t.Errorf("UnravelAuthor(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestSupported(t *testing.T) {
	if !Supported("x.EPUB") || !Supported("x.azw3") || Supported("x.docx") {
		t.Error("Supported returned wrong result")
	}
}
