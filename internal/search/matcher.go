// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package search compiles search descriptions into predicates over books.
package search

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/jeranaias/bookshelf-tui/internal/record"
)

// ErrInvalidPattern is returned when a regular expression fails to compile.
var ErrInvalidPattern = errors.New("invalid search pattern")

// =============================================================================
// DESCRIPTIONS
// =============================================================================

// Mode selects a matching strategy.
type Mode uint8

const (
	ModeFuzzy Mode = iota
	ModeRegex
	ModeExactSubstring
	ModeExactString
)

// String returns the mode name.
func (m Mode) String() string {
	switch m {
	case ModeRegex:
		return "regex"
	case ModeExactSubstring:
		return "substring"
	case ModeExactString:
		return "exact"
	default:
		return "fuzzy"
	}
}

// ParseMode resolves a mode name. Unknown names yield ModeFuzzy and false.
func ParseMode(s string) (Mode, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "fuzzy", "default", "":
		return ModeFuzzy, true
	case "regex", "re":
		return ModeRegex, true
	case "substring", "sub":
		return ModeExactSubstring, true
	case "exact", "string":
		return ModeExactString, true
	}
	return ModeFuzzy, false
}

// Description is an uncompiled search.
type Description struct {
	Mode    Mode
	Column  record.Column
	Pattern string
}

func (d Description) String() string {
	return fmt.Sprintf("%s %s %q", d.Mode, d.Column, d.Pattern)
}

// =============================================================================
// MATCHER
// =============================================================================

// Matcher is a compiled Description.
type Matcher struct {
	desc Description
	re   *regexp.Regexp
}

// Compile builds a Matcher. Regex patterns that do not parse return an error
// wrapping ErrInvalidPattern; no other mode fails.
func Compile(d Description) (*Matcher, error) {
	m := &Matcher{desc: d}
	switch d.Mode {
	case ModeRegex:
		re, err := regexp.Compile(d.Pattern)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidPattern, err)
		}
		m.re = re
	case ModeExactSubstring:
		m.re = regexp.MustCompile(regexp.QuoteMeta(d.Pattern))
	}
	return m, nil
}

// CompileAll compiles every description, stopping at the first failure.
func CompileAll(ds []Description) ([]*Matcher, error) {
	out := make([]*Matcher, 0, len(ds))
	for _, d := range ds {
		m, err := Compile(d)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}

// Description returns the description m was compiled from.
func (m *Matcher) Description() Description {
	return m.desc
}

// MatchString reports whether a single value matches.
func (m *Matcher) MatchString(s string) bool {
	switch m.desc.Mode {
	case ModeRegex, ModeExactSubstring:
		return m.re.MatchString(s)
	case ModeExactString:
		return s == m.desc.Pattern
	default:
		_, ok := FuzzyScore(m.desc.Pattern, s)
		return ok
	}
}

// Match reports whether book satisfies the search.
func (m *Matcher) Match(book *record.Book) bool {
	if m.desc.Column.Kind == record.ColumnTags {
		for _, tag := range book.FreeTags {
			if m.MatchString(tag) {
				return true
			}
		}
		return m.MatchString("")
	}
	value, _ := book.Value(m.desc.Column)
	return m.MatchString(value)
}

// Filter keeps the books that satisfy every matcher. Matchers are applied
// one after another, each narrowing the previous result.
func Filter(books []*record.Book, matchers ...*Matcher) []*record.Book {
	candidates := append([]*record.Book(nil), books...)
	for _, m := range matchers {
		if len(candidates) == 0 {
			break
		}
		kept := candidates[:0]
		for _, b := range candidates {
			if m.Match(b) {
				kept = append(kept, b)
			}
		}
		candidates = kept
	}
	return candidates
}
