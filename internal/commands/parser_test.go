// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"errors"
	"reflect"
	"testing"

	"github.com/jeranaias/bookshelf-tui/internal/record"
	"github.com/jeranaias/bookshelf-tui/internal/search"
)

func TestSplitCommandLine(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{"", nil},
		{"find title dune", []string{"find", "title", "dune"}},
		{`edit title "Children of Dune"`, []string{"edit", "title", "Children of Dune"}},
		{`edit title 'It\'s here'`, []string{"edit", "title", "It's here"}},
		{`edit description ""`, []string{"edit", "description", ""}},
		{"find  authors   Pérez", []string{"find", "authors", "Pérez"}},
		{`find title "日本語 の本"`, []string{"find", "title", "日本語 の本"}},
	}

	for _, tt := range tests {
		got := splitCommandLine(tt.input)
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("splitCommandLine(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		input    string
		wantName string
		wantArgs []string
	}{
		{":find title dune", ":find", []string{"title", "dune"}},
		{"sort -title", ":sort", []string{"-title"}},
		{"  :Q  ", ":q", nil},
		{"", "", nil},
	}

	for _, tt := range tests {
		got := Parse(tt.input)
		if got.CommandName != tt.wantName {
			t.Errorf("Parse(%q).CommandName = %q, want %q", tt.input, got.CommandName, tt.wantName)
		}
		if !reflect.DeepEqual(got.Args, tt.wantArgs) {
			t.Errorf("Parse(%q).Args = %q, want %q", tt.input, got.Args, tt.wantArgs)
		}
	}
}

func TestGetPartialArg(t *testing.T) {
	tests := []struct {
		input     string
		wantIndex int
		wantText  string
	}{
		{"find", 0, ""},
		{"find ", 0, ""},
		{"find ti", 0, "ti"},
		{"find title ", 1, ""},
		{"find title du", 1, "du"},
	}

	for _, tt := range tests {
		idx, text := GetPartialArg(tt.input)
		if idx != tt.wantIndex || text != tt.wantText {
			t.Errorf("GetPartialArg(%q) = (%d, %q), want (%d, %q)", tt.input, idx, text, tt.wantIndex, tt.wantText)
		}
	}
}

func TestParseSearches_FlagAppliesToNextPair(t *testing.T) {
	descs, err := ParseSearches([]string{"-r", "title", "^Dune", "authors", "herbert", "-x", "series", "Dune"})
	if err != nil {
		t.Fatalf("ParseSearches failed: %v", err)
	}

	want := []search.Description{
		{Mode: search.ModeRegex, Column: record.Title, Pattern: "^Dune"},
		{Mode: search.ModeFuzzy, Column: record.Authors, Pattern: "herbert"},
		{Mode: search.ModeExactString, Column: record.SeriesCol, Pattern: "Dune"},
	}
	if len(descs) != len(want) {
		t.Fatalf("got %d descriptions, want %d", len(descs), len(want))
	}
	for i := range want {
		if descs[i].Mode != want[i].Mode || !descs[i].Column.Equal(want[i].Column) || descs[i].Pattern != want[i].Pattern {
			t.Errorf("descs[%d] = %v, want %v", i, descs[i], want[i])
		}
	}
}

func TestParseSearchesMode_DefaultForUnflaggedPairs(t *testing.T) {
	descs, err := ParseSearchesMode([]string{"title", "dune", "-r", "authors", "^Her", "series", "Dune"}, search.ModeExactSubstring)
	if err != nil {
		t.Fatalf("ParseSearchesMode failed: %v", err)
	}

	want := []search.Mode{search.ModeExactSubstring, search.ModeRegex, search.ModeExactSubstring}
	if len(descs) != len(want) {
		t.Fatalf("got %d descriptions, want %d", len(descs), len(want))
	}
	for i, mode := range want {
		if descs[i].Mode != mode {
			t.Errorf("descs[%d].Mode = %v, want %v", i, descs[i].Mode, mode)
		}
	}
}

func TestParseSearches_Errors(t *testing.T) {
	for _, args := range [][]string{nil, {"title"}, {"-r"}, {"title", "dune", "authors"}} {
		if _, err := ParseSearches(args); !errors.Is(err, ErrUsage) {
			t.Errorf("ParseSearches(%q) error = %v, want ErrUsage", args, err)
		}
	}
}

func TestValidateArgs(t *testing.T) {
	r := NewRegistry()

	if err := ValidateArgs(r.Get("sort"), nil); err == nil {
		t.Error("expected missing argument error for :sort")
	}

	err := ValidateArgs(r.Get("column"), []string{"toggle", "title"})
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("error = %v, want *ValidationError", err)
	}
	if verr.Got != "toggle" {
		t.Errorf("Got = %q, want toggle", verr.Got)
	}

	if err := ValidateArgs(r.Get("column"), []string{"ADD", "title"}); err != nil {
		t.Errorf("enum match should ignore case: %v", err)
	}
}
