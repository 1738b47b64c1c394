// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package search compiles search descriptions into predicates over books.
//
// A Description names a mode, a column and a pattern. Compile turns it into
// a Matcher; only regular expressions can fail to compile.
//
// # Modes
//
//   - Fuzzy (default): case-insensitive subsequence match, scored by best alignment
//   - Regex: the pattern is a Go regular expression
//   - ExactSubstring: the pattern must appear literally
//   - ExactString: the value must equal the pattern
//
// # Missing Values
//
// A book without the target column is matched against the empty string, so
// an empty pattern matches every book. For the tags column a book matches if
// any of its tags matches or if the empty string matches.
//
// # Usage
//
//	m, err := search.Compile(search.Description{
//	    Mode:    search.ModeRegex,
//	    Column:  record.Title,
//	    Pattern: "^Dune",
//	})
//	hits := search.Filter(books, m)
package search
