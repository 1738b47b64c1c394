// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package record

import (
	"math"
	"testing"
)

func ptr(v float64) *float64 { return &v }

func TestParseSeries(t *testing.T) {
	tests := []struct {
		input string
		name  string
		index *float64
	}{
		{"Dune [1]", "Dune", ptr(1)},
		{"The Expanse [2.5]", "The Expanse", ptr(2.5)},
		{"Discworld", "Discworld", nil},
		{"Broken [x]", "Broken [x]", nil},
		{"[3]", "[3]", nil},
		{"", "", nil},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := ParseSeries(tt.input)
			if got.Name != tt.name {
				t.Errorf("ParseSeries(%q).Name = %q, want %q", tt.input, got.Name, tt.name)
			}
			switch {
			case tt.index == nil && got.Index != nil:
				t.Errorf("ParseSeries(%q).Index = %v, want nil", tt.input, *got.Index)
			case tt.index != nil && got.Index == nil:
				t.Errorf("ParseSeries(%q).Index = nil, want %v", tt.input, *tt.index)
			case tt.index != nil && *got.Index != *tt.index:
				t.Errorf("ParseSeries(%q).Index = %v, want %v", tt.input, *got.Index, *tt.index)
			}
		})
	}
}

func TestSeries_StringRoundTrip(t *testing.T) {
	for _, s := range []string{"Dune [1]", "Foundation [0.5]", "Standalone"} {
		if got := ParseSeries(s).String(); got != s {
			t.Errorf("ParseSeries(%q).String() = %q", s, got)
		}
	}
}

func TestCompareSeries(t *testing.T) {
	nan := math.NaN()
	tests := []struct {
		name string
		a, b *Series
		want int
	}{
		{"both nil", nil, nil, 0},
		{"nil first", nil, &Series{Name: "A"}, -1},
		{"name decides", &Series{Name: "B", Index: ptr(1)}, &Series{Name: "A", Index: ptr(9)}, 1},
		{"missing index first", &Series{Name: "A"}, &Series{Name: "A", Index: ptr(1)}, -1},
		{"index order", &Series{Name: "A", Index: ptr(1)}, &Series{Name: "A", Index: ptr(2)}, -1},
		{"nan equals nan", &Series{Name: "A", Index: &nan}, &Series{Name: "A", Index: &nan}, 0},
		{"nan after number", &Series{Name: "A", Index: &nan}, &Series{Name: "A", Index: ptr(1e9)}, 1},
		{"number before nan", &Series{Name: "A", Index: ptr(-1)}, &Series{Name: "A", Index: &nan}, -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CompareSeries(tt.a, tt.b); got != tt.want {
				t.Errorf("CompareSeries() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestSeries_JSON(t *testing.T) {
	nan := math.NaN()
	in := Series{Name: "Dune", Index: &nan}
	data, err := in.MarshalJSON()
	if err != nil {
		t.Fatalf("MarshalJSON failed: %v", err)
	}
	if string(data) != `"Dune [NaN]"` {
		t.Errorf("MarshalJSON() = %s", data)
	}

	var out Series
	if err := out.UnmarshalJSON(data); err != nil {
		t.Fatalf("UnmarshalJSON failed: %v", err)
	}
	if out.Name != "Dune" || out.Index == nil || !math.IsNaN(*out.Index) {
		t.Errorf("UnmarshalJSON() = %+v", out)
	}
}
