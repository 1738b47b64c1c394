// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package scan

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"
)

func touch(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte("book"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func TestWalk_FiltersAndSkipsHidden(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "b.epub"))
	touch(t, filepath.Join(root, "a.pdf"))
	touch(t, filepath.Join(root, "notes.docx"))
	touch(t, filepath.Join(root, "sub", "c.MOBI"))
	touch(t, filepath.Join(root, ".cache", "d.epub"))

	got, err := Walk(context.Background(), root)
	if err != nil {
		t.Fatalf("Walk failed: %v", err)
	}
	want := []string{
		filepath.Join(root, "a.pdf"),
		filepath.Join(root, "b.epub"),
		filepath.Join(root, "sub", "c.MOBI"),
	}
	if !slices.Equal(got, want) {
		t.Errorf("Walk = %v, want %v", got, want)
	}
}

func TestWalk_SingleFile(t *testing.T) {
	p := filepath.Join(t.TempDir(), "one.txt")
	touch(t, p)

	got, err := Walk(context.Background(), p)
	if err != nil {
		t.Fatalf("Walk failed: %v", err)
	}
	if len(got) != 1 || got[0] != p {
		t.Errorf("Walk = %v, want [%s]", got, p)
	}
}

func TestWalk_MissingRoot(t *testing.T) {
	if _, err := Walk(context.Background(), filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Error("expected error for missing root")
	}
}

func TestWalk_Cancelled(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "a.epub"))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := Walk(ctx, root); err == nil {
		t.Error("expected context error")
	}
}

func TestWalkAll_Dedupes(t *testing.T) {
	root := t.TempDir()
	p := filepath.Join(root, "a.epub")
	touch(t, p)

	got, err := WalkAll(context.Background(), []string{root, p})
	if err != nil {
		t.Fatalf("WalkAll failed: %v", err)
	}
	if len(got) != 1 {
		t.Errorf("WalkAll = %v, want one path", got)
	}
}

func waitBatch(t *testing.T, ch <-chan []string, want string) {
	t.Helper()
	deadline := time.After(5 * time.Second)
	for {
		select {
		case batch, ok := <-ch:
			if !ok {
				t.Fatal("changes channel closed")
			}
			if slices.Contains(batch, want) {
				return
			}
		case <-deadline:
			t.Fatalf("timed out waiting for %s", want)
		}
	}
}

func TestFsnotifyWatcher_ReportsNewBook(t *testing.T) {
	root := t.TempDir()
	fw, err := NewFsnotifyWatcher([]string{root}, 20*time.Millisecond, nil)
	if err != nil {
		t.Skipf("fsnotify unavailable: %v", err)
	}
	if err := fw.Watch(); err != nil {
		t.Fatalf("Watch failed: %v", err)
	}
	defer fw.Close()

	touch(t, filepath.Join(root, "ignored.docx"))
	p := filepath.Join(root, "new.epub")
	touch(t, p)

	waitBatch(t, fw.Changes(), p)
}

func TestPollingWatcher_ReportsNewBook(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "old.epub"))

	pw := NewPollingWatcher([]string{root}, 10*time.Millisecond, nil)
	if err := pw.Watch(); err != nil {
		t.Fatalf("Watch failed: %v", err)
	}
	defer pw.Close()

	p := filepath.Join(root, "new.pdf")
	touch(t, p)

	waitBatch(t, pw.Changes(), p)
}

func TestClose_ClosesChanges(t *testing.T) {
	pw := NewPollingWatcher([]string{t.TempDir()}, time.Hour, nil)
	if err := pw.Watch(); err != nil {
		t.Fatalf("Watch failed: %v", err)
	}
	if err := pw.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if _, ok := <-pw.Changes(); ok {
		t.Error("Changes should be closed after Close")
	}
}
