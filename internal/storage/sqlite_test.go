// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"context"
	"errors"
	"math"
	"path/filepath"
	"testing"

	"github.com/jeranaias/bookshelf-tui/internal/record"
)

func openStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store := NewSQLiteStore(filepath.Join(t.TempDir(), "catalog.db"))
	if err := store.Open(context.Background()); err != nil {
		t.Fatalf("Failed to open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func sampleBook() *record.Book {
	idx := 1.5
	return &record.Book{
		ID:          4,
		Title:       "Dune",
		Authors:     []string{"Frank Herbert", "Someone Else"},
		Series:      &record.Series{Name: "Dune Chronicles", Index: &idx},
		Description: "Spice must flow",
		NamedTags:   map[string]string{"Publisher": "Ace"},
		FreeTags:    []string{"classic", "scifi"},
		Variants: []record.Variant{
			{Format: record.FormatEPUB, Path: "/books/dune.epub", Authors: []string{"Frank Herbert"}, FileSize: 1024, Hash: "abc"},
			{Format: record.FormatMOBI, Path: "/books/dune.mobi"},
		},
	}
}

func TestSQLiteStore_InsertAndGet(t *testing.T) {
	ctx := context.Background()
	store := openStore(t)

	id, err := store.Insert(ctx, sampleBook())
	if err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	if id != 4 {
		t.Errorf("Insert id = %d, want 4", id)
	}

	got, err := store.Get(ctx, 4)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	want := sampleBook()
	if got.Title != want.Title || got.Description != want.Description {
		t.Errorf("Get() = %+v, want %+v", got, want)
	}
	if len(got.Authors) != 2 || got.Authors[0] != "Frank Herbert" || got.Authors[1] != "Someone Else" {
		t.Errorf("Authors = %v, want order preserved", got.Authors)
	}
	if got.Series == nil || got.Series.Name != "Dune Chronicles" || got.Series.Index == nil || *got.Series.Index != 1.5 {
		t.Errorf("Series = %+v", got.Series)
	}
	if v, _ := got.Tag("publisher"); v != "Ace" {
		t.Errorf("Tag(publisher) = %q, want Ace", v)
	}
	if len(got.FreeTags) != 2 || !got.HasFreeTag("scifi") {
		t.Errorf("FreeTags = %v", got.FreeTags)
	}
	if len(got.Variants) != 2 || got.Variants[0].Path != "/books/dune.epub" ||
		got.Variants[0].FileSize != 1024 || len(got.Variants[0].Authors) != 1 {
		t.Errorf("Variants = %+v", got.Variants)
	}
}

func TestSQLiteStore_InsertAssignsID(t *testing.T) {
	ctx := context.Background()
	store := openStore(t)

	if _, err := store.Insert(ctx, &record.Book{ID: 7, Title: "A"}); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	b := &record.Book{Title: "B"}
	id, err := store.Insert(ctx, b)
	if err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	if id != 8 || b.ID != 8 {
		t.Errorf("Insert id = %d (book %d), want 8", id, b.ID)
	}

	maxID, err := store.MaxID(ctx)
	if err != nil {
		t.Fatalf("MaxID failed: %v", err)
	}
	if maxID != 8 {
		t.Errorf("MaxID = %d, want 8", maxID)
	}
}

func TestSQLiteStore_GetNotFound(t *testing.T) {
	store := openStore(t)
	_, err := store.Get(context.Background(), 99)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Get(99) error = %v, want ErrNotFound", err)
	}
}

func TestSQLiteStore_Update(t *testing.T) {
	ctx := context.Background()
	store := openStore(t)

	b := sampleBook()
	if _, err := store.Insert(ctx, b); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	b.Title = "Dune Messiah"
	b.Authors = []string{"Frank Herbert"}
	b.Series = nil
	b.NamedTags = nil
	b.Variants = b.Variants[:1]
	if err := store.Update(ctx, b); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	got, err := store.Get(ctx, b.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Title != "Dune Messiah" || len(got.Authors) != 1 || got.Series != nil ||
		len(got.NamedTags) != 0 || len(got.Variants) != 1 {
		t.Errorf("Get() after update = %+v", got)
	}

	err = store.Update(ctx, &record.Book{ID: 1000, Title: "Missing"})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Update(missing) error = %v, want ErrNotFound", err)
	}
}

func TestSQLiteStore_RemoveAndGetAll(t *testing.T) {
	ctx := context.Background()
	store := openStore(t)

	for i := 1; i <= 4; i++ {
		if _, err := store.Insert(ctx, &record.Book{ID: record.BookID(i), Title: "T", Authors: []string{"A"}}); err != nil {
			t.Fatalf("Insert failed: %v", err)
		}
	}
	if err := store.Remove(ctx, 2, 4, 99); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}

	all, err := store.GetAll(ctx)
	if err != nil {
		t.Fatalf("GetAll failed: %v", err)
	}
	if len(all) != 2 || all[0].ID != 1 || all[1].ID != 3 {
		t.Fatalf("GetAll() ids = %v, want [1 3]", all)
	}
	if len(all[1].Authors) != 1 {
		t.Errorf("children of remaining books should survive: %+v", all[1])
	}
}

func TestSQLiteStore_ReplaceMerged(t *testing.T) {
	ctx := context.Background()
	store := openStore(t)

	for i := 1; i <= 3; i++ {
		if _, err := store.Insert(ctx, &record.Book{ID: record.BookID(i), Title: "Dune", Authors: []string{"Frank Herbert"}}); err != nil {
			t.Fatalf("Insert failed: %v", err)
		}
	}

	survivor := &record.Book{ID: 1, Title: "Dune", Authors: []string{"Frank Herbert"}, FreeTags: []string{"merged"}}
	if err := store.ReplaceMerged(ctx, []*record.Book{survivor}, []record.BookID{2, 3}); err != nil {
		t.Fatalf("ReplaceMerged failed: %v", err)
	}

	all, err := store.GetAll(ctx)
	if err != nil {
		t.Fatalf("GetAll failed: %v", err)
	}
	if len(all) != 1 || all[0].ID != 1 {
		t.Fatalf("GetAll() = %v, want only the survivor", all)
	}
	if len(all[0].FreeTags) != 1 || all[0].FreeTags[0] != "merged" {
		t.Errorf("survivor tags = %v, want [merged]", all[0].FreeTags)
	}
}

func TestSQLiteStore_NaNSeriesIndex(t *testing.T) {
	ctx := context.Background()
	store := openStore(t)

	nan := math.NaN()
	if _, err := store.Insert(ctx, &record.Book{ID: 1, Series: &record.Series{Name: "S", Index: &nan}}); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	got, err := store.Get(ctx, 1)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Series == nil || got.Series.Index == nil || !math.IsNaN(*got.Series.Index) {
		t.Errorf("Series = %+v, want NaN index", got.Series)
	}
}

func TestSQLiteStore_PersistsAcrossOpen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "catalog.db")

	first := NewSQLiteStore(path)
	if err := first.Open(ctx); err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	catalogID := first.CatalogID()
	if catalogID == "" {
		t.Error("CatalogID should be generated on first open")
	}
	if _, err := first.Insert(ctx, sampleBook()); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	if err := first.Save(ctx); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	first.Close()

	second := NewSQLiteStore(path)
	if err := second.Open(ctx); err != nil {
		t.Fatalf("Reopen failed: %v", err)
	}
	defer second.Close()

	if second.CatalogID() != catalogID {
		t.Errorf("CatalogID = %q, want %q", second.CatalogID(), catalogID)
	}
	paths, err := second.Paths(ctx)
	if err != nil {
		t.Fatalf("Paths failed: %v", err)
	}
	if paths["/books/dune.mobi"] != 4 {
		t.Errorf("Paths() = %v", paths)
	}
}

func TestSQLiteStore_NotOpen(t *testing.T) {
	store := NewSQLiteStore(filepath.Join(t.TempDir(), "x.db"))
	if _, err := store.GetAll(context.Background()); !errors.Is(err, ErrNotOpen) {
		t.Errorf("GetAll() before Open error = %v, want ErrNotOpen", err)
	}
}
