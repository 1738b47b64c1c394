// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"os"
	"path/filepath"
	"testing"
)

func testCompleter() *Completer {
	return NewCompleter(NewRegistry(), func() []string {
		return []string{"title", "authors", "series", "id", "description", "tags", "publisher"}
	})
}

func values(comps []Completion) []string {
	out := make([]string, len(comps))
	for i, c := range comps {
		out[i] = c.Value
	}
	return out
}

func contains(list []string, want string) bool {
	for _, v := range list {
		if v == want {
			return true
		}
	}
	return false
}

func TestComplete_CommandNames(t *testing.T) {
	c := testCompleter()

	got := values(c.Complete(":so"))
	if len(got) != 1 || got[0] != "sort" {
		t.Errorf("Complete(:so) = %v, want [sort]", got)
	}

	// Aliases complete to the primary name.
	got = values(c.Complete("df"))
	if len(got) == 0 || got[0] != "delete-field" {
		t.Errorf("Complete(df) = %v, want delete-field first", got)
	}

	if got := c.Complete(":"); len(got) != len(NewRegistry().All()) {
		t.Errorf("Complete(:) returned %d commands, want all", len(got))
	}
}

func TestComplete_ColumnsCycleThroughPairs(t *testing.T) {
	c := testCompleter()

	got := values(c.Complete(":find pub"))
	if len(got) == 0 || got[0] != "publisher" {
		t.Errorf("Complete(find pub) = %v, want publisher first", got)
	}

	// Pattern position has no candidates.
	if got := c.Complete(":find title "); len(got) != 0 {
		t.Errorf("pattern position should not complete, got %v", values(got))
	}

	// Flags are skipped when counting positions.
	got = values(c.Complete(":find title dune -r ser"))
	if !contains(got, "series") {
		t.Errorf("third pair column = %v, want series", got)
	}
}

func TestComplete_SortKeysKeepDash(t *testing.T) {
	c := testCompleter()
	got := values(c.Complete(":sort title -aut"))
	if len(got) == 0 || got[0] != "-authors" {
		t.Errorf("Complete(sort -aut) = %v, want -authors", got)
	}
}

func TestComplete_Enum(t *testing.T) {
	c := testCompleter()
	got := values(c.Complete(":column r"))
	if len(got) != 1 || got[0] != "remove" {
		t.Errorf("Complete(column r) = %v, want [remove]", got)
	}
}

func TestComplete_Files(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "dune.epub"), nil, 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.Mkdir(filepath.Join(dir, "drafts"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, ".hidden"), nil, 0o644); err != nil {
		t.Fatal(err)
	}

	c := testCompleter()
	got := values(c.Complete(":import " + dir + string(os.PathSeparator)))
	if len(got) != 2 {
		t.Fatalf("got %v, want drafts/ and dune.epub", got)
	}
	if got[0] != filepath.Join(dir, "drafts")+string(os.PathSeparator) {
		t.Errorf("directories should rank first, got %v", got)
	}
}

func TestApply(t *testing.T) {
	tests := []struct {
		input string
		comp  string
		want  string
	}{
		{":so", "sort", ":sort "},
		{":find ti", "title", ":find title"},
		{":find title dune ", "authors", ":find title dune authors"},
		{"edit ", "named tag", `edit "named tag"`},
	}
	for _, tt := range tests {
		if got := Apply(tt.input, Completion{Value: tt.comp}); got != tt.want {
			t.Errorf("Apply(%q, %q) = %q, want %q", tt.input, tt.comp, got, tt.want)
		}
	}
}

func TestCompletionState(t *testing.T) {
	cs := NewCompletionState()
	if cs.Accept() != "" {
		t.Error("empty state should accept the original input")
	}

	cs.Update(":find ti", []Completion{{Value: "title"}, {Value: "tags"}})
	if !cs.Visible {
		t.Error("state with completions should be visible")
	}
	cs.Next()
	if got := cs.Accept(); got != ":find tags" {
		t.Errorf("Accept() = %q, want :find tags", got)
	}
	cs.Prev()
	cs.Prev()
	if got := cs.GetSelected().Value; got != "tags" {
		t.Errorf("Prev wraps to %q, want tags", got)
	}
	cs.Clear()
	if cs.GetSelected() != nil || cs.Visible {
		t.Error("Clear should reset the state")
	}
}
