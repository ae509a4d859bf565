package util

import (
	"testing"

	"recyvoice/internal"
)

func TestNormalizeUnit(t *testing.T) {
	cases := []struct {
		token string
		want  internal.Unit
	}{
		{"kg", internal.UnitKG},
		{"KG", internal.UnitKG},
		{"kilogram", internal.UnitKG},
		{"kilos", internal.UnitKG},
		{"كيلو", internal.UnitKG},
		{"كجم", internal.UnitKG},
		{"piece", internal.UnitPiece},
		{"قطعة", internal.UnitPiece},
		{"box", internal.UnitPiece},
	}
	for _, tc := range cases {
		if got := NormalizeUnit(tc.token, internal.UnitPiece); got != tc.want {
			t.Fatalf("NormalizeUnit(%q) = %s want %s", tc.token, got, tc.want)
		}
	}
}

func TestNormalizeUnitFallback(t *testing.T) {
	if got := NormalizeUnit("", internal.UnitKG); got != internal.UnitKG {
		t.Fatalf("empty token should use fallback, got %s", got)
	}
	if got := NormalizeUnit("  ", internal.UnitPiece); got != internal.UnitPiece {
		t.Fatalf("blank token should use fallback, got %s", got)
	}
}

func TestCoerceQuantity(t *testing.T) {
	cases := []struct {
		name  string
		input any
		want  float64
		ok    bool
	}{
		{"float", 3.0, 3, true},
		{"string", "2", 2, true},
		{"string decimal comma", "1,5", 1.5, true},
		{"arabic digits", "٣", 3, true},
		{"zero", 0.0, 0, false},
		{"negative", -2.0, -2, false},
		{"garbage", "many", 0, false},
		{"nil", nil, 0, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := CoerceQuantity(tc.input)
			if ok != tc.ok {
				t.Fatalf("ok=%v want %v", ok, tc.ok)
			}
			if ok && got != tc.want {
				t.Fatalf("got %v want %v", got, tc.want)
			}
		})
	}
}
