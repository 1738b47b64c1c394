// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package search compiles search descriptions into predicates over books.
package search

import (
	"math"
	"unicode"
)

// =============================================================================
// FUZZY SCORING
// =============================================================================

const (
	scoreMatch       = 1
	bonusConsecutive = 5
	bonusStart       = 10
	bonusBoundary    = 7
	bonusExactCase   = 2
)

// FuzzyScore scores query against target. Every rune of query must appear in
// target in order, compared case-insensitively. Among all such alignments
// the best-scoring one is used: consecutive runs, word starts and exact case
// earn bonuses, and long targets are penalized.
//
// An empty query matches with score 0.
func FuzzyScore(query, target string) (score int, matched bool) {
	if query == "" {
		return 0, true
	}

	q := []rune(query)
	t := []rune(target)
	if len(q) > len(t) {
		return 0, false
	}

	ql := lowerRunes(q)
	tl := lowerRunes(t)
	if !isSubsequence(ql, tl) {
		return 0, false
	}

	const none = math.MinInt / 2
	prev := make([]int, len(t))
	cur := make([]int, len(t))

	for j := range tl {
		prev[j] = none
		if tl[j] == ql[0] {
			prev[j] = runeBonus(q, t, 0, j)
		}
	}

	for i := 1; i < len(ql); i++ {
		// best holds the max of prev[k] for k <= j-2.
		best := none
		for j := range tl {
			cur[j] = none
			if j >= 2 && prev[j-2] > best {
				best = prev[j-2]
			}
			if j < i || tl[j] != ql[i] {
				continue
			}
			s := best
			if j >= 1 && prev[j-1] != none && prev[j-1]+bonusConsecutive > s {
				s = prev[j-1] + bonusConsecutive
			}
			if s == none {
				continue
			}
			cur[j] = s + runeBonus(q, t, i, j)
		}
		prev, cur = cur, prev
	}

	score = none
	for _, s := range prev {
		if s > score {
			score = s
		}
	}
	if score == none {
		return 0, false
	}
	return score - len(t)/4, true
}

func runeBonus(q, t []rune, qi, tj int) int {
	s := scoreMatch
	if tj == 0 {
		s += bonusStart
	}
	if isWordBoundary(t, tj) {
		s += bonusBoundary
	}
	if q[qi] == t[tj] {
		s += bonusExactCase
	}
	return s
}

// isWordBoundary reports whether pos starts a word: the first rune, a rune
// after a separator, or an upper-case rune after a lower-case one.
func isWordBoundary(runes []rune, pos int) bool {
	if pos == 0 {
		return true
	}
	if pos >= len(runes) {
		return false
	}
	prev := runes[pos-1]
	if unicode.IsSpace(prev) || prev == '/' || prev == '-' || prev == '_' || prev == '.' || prev == ':' {
		return true
	}
	return unicode.IsLower(prev) && unicode.IsUpper(runes[pos])
}

func lowerRunes(rs []rune) []rune {
	out := make([]rune, len(rs))
	for i, r := range rs {
		out[i] = unicode.ToLower(r)
	}
	return out
}

func isSubsequence(q, t []rune) bool {
	i := 0
	for _, r := range t {
		if i < len(q) && r == q[i] {
			i++
		}
	}
	return i == len(q)
}
