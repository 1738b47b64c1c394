// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package record defines the book entity stored in the library.
package record

import (
	"cmp"
	"math"
	"strconv"
	"strings"
	"unicode"

	"github.com/goccy/go-json"
)

// Series is a series name with an optional position in the series.
type Series struct {
	Name  string
	Index *float64
}

// ParseSeries parses "Name [1.5]". When the trailing bracket is missing or
// does not hold a number, the whole string is the name.
func ParseSeries(s string) Series {
	if strings.HasSuffix(s, "]") {
		if cut := strings.LastIndexFunc(s, unicode.IsSpace); cut >= 0 {
			word := s[cut+1:]
			if strings.HasPrefix(word, "[") && len(word) >= 2 {
				if v, err := strconv.ParseFloat(word[1:len(word)-1], 64); err == nil {
					name := s[:cut]
					return Series{Name: name, Index: &v}
				}
			}
		}
	}
	return Series{Name: s}
}

// String formats the series the way ParseSeries reads it.
func (s Series) String() string {
	if s.Index == nil {
		return s.Name
	}
	return s.Name + " [" + strconv.FormatFloat(*s.Index, 'f', -1, 64) + "]"
}

// MarshalJSON encodes the series in its "Name [index]" form, which also
// carries a NaN index.
func (s Series) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON decodes the form written by MarshalJSON.
func (s *Series) UnmarshalJSON(data []byte) error {
	var text string
	if err := json.Unmarshal(data, &text); err != nil {
		return err
	}
	*s = ParseSeries(text)
	return nil
}

// clone returns a copy that shares no memory with s.
func (s *Series) clone() *Series {
	if s == nil {
		return nil
	}
	out := Series{Name: s.Name}
	if s.Index != nil {
		idx := *s.Index
		out.Index = &idx
	}
	return &out
}

// CompareSeries orders by name, then index. A missing series or index sorts
// first. NaN equals NaN and sorts after every number.
func CompareSeries(a, b *Series) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}
	if c := strings.Compare(a.Name, b.Name); c != 0 {
		return c
	}
	switch {
	case a.Index == nil && b.Index == nil:
		return 0
	case a.Index == nil:
		return -1
	case b.Index == nil:
		return 1
	}
	return compareIndex(*a.Index, *b.Index)
}

func compareIndex(x, y float64) int {
	xn, yn := math.IsNaN(x), math.IsNaN(y)
	switch {
	case xn && yn:
		return 0
	case xn:
		return 1
	case yn:
		return -1
	}
	return cmp.Compare(x, y)
}
