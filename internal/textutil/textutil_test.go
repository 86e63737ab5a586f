// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package textutil

import (
	"math"
	"testing"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"lowercases", "Труба Стальная", "труба стальная"},
		{"collapses whitespace", "труба   стальная\t d=110", "труба стальная d=110"},
		{"trims", "  бетон  ", "бетон"},
		{"folds superscript", "м³", "м3"},
		{"empty", "", ""},
		{"whitespace only", "   \t ", ""},
		{"latin mixed case", "PE Pipe SDR17", "pe pipe sdr17"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.in); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestTokens(t *testing.T) {
	got := Tokens("Труба, труба стальная d=110мм")
	want := []string{"труба", "стальная", "d", "110мм"}
	if len(got) != len(want) {
		t.Fatalf("len(Tokens) = %d, want %d (%v)", len(got), len(want), got)
	}
	for _, tok := range want {
		if _, ok := got[tok]; !ok {
			t.Errorf("Tokens missing %q (got %v)", tok, got)
		}
	}
}

func TestTokenSetRatio(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want float64
	}{
		{"identical", "труба стальная", "труба стальная", 1.0},
		{"order insensitive", "стальная труба", "труба стальная", 1.0},
		{"duplication insensitive", "труба труба стальная", "труба стальная", 1.0},
		{"half overlap", "труба стальная", "труба медная", 0.5},
		{"disjoint", "бетон", "арматура", 0.0},
		{"empty left", "", "труба", 0.0},
		{"both empty", "", "", 0.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TokenSetRatio(tt.a, tt.b)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("TokenSetRatio(%q, %q) = %f, want %f", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestNormalizeUnit(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"cubic meter superscript", "м³", "м³"},
		{"cubic meter digit", "м3", "м³"},
		{"cubic meter verbose", "куб.м", "м³"},
		{"square meter digit", "м2", "м²"},
		{"running meter", "п.м", "м"},
		{"man hour dot", "чел.ч", "чел·ч"},
		{"man hour dash", "чел.-ч", "чел·ч"},
		{"machine hour", "маш.-ч", "маш·ч"},
		{"pieces with dot", "шт.", "шт"},
		{"tonne with dot", "т.", "т"},
		{"case and spaces", " Куб.М ", "м³"},
		{"unknown passthrough", "рулон", "рулон"},
		{"unknown trailing dot stripped", "рулон.", "рулон"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeUnit(tt.in); got != tt.want {
				t.Errorf("NormalizeUnit(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestUnitsEqual(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want bool
	}{
		{"aliased equal", "м3", "м³", true},
		{"verbose alias", "куб.м", "м³", true},
		{"identical", "шт", "шт", true},
		{"different", "м²", "м³", false},
		{"empty expected never matches", "", "м³", false},
		{"empty entry never matches", "м³", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := UnitsEqual(tt.a, tt.b); got != tt.want {
				t.Errorf("UnitsEqual(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestExtractNumbers(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []float64
	}{
		{"integer glued to unit", "труба d=110мм", []float64{110}},
		{"comma decimal", "вес 2,5 т", []float64{2.5}},
		{"dot decimal", "толщина 0.8 мм", []float64{0.8}},
		{"multiple", "труба 110мм длина 12м", []float64{110, 12}},
		{"none", "бетонная смесь", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractNumbers(tt.in)
			if len(got) != len(tt.want) {
				t.Fatalf("ExtractNumbers(%q) = %v, want %v", tt.in, got, tt.want)
			}
			for i := range got {
				if math.Abs(got[i]-tt.want[i]) > 1e-9 {
					t.Errorf("ExtractNumbers(%q)[%d] = %f, want %f", tt.in, i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestParseNumber(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    float64
		wantErr bool
	}{
		{"dot", "12.5", 12.5, false},
		{"comma", "12,5", 12.5, false},
		{"integer", "100", 100, false},
		{"spaces", " 7 ", 7, false},
		{"garbage", "труба", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseNumber(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseNumber(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("ParseNumber(%q) = %f, want %f", tt.in, got, tt.want)
			}
		})
	}
}
