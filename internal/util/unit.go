package util

import (
	"encoding/json"
	"strconv"
	"strings"

	"recyvoice/internal"
)

var kgTokens = map[string]struct{}{
	"kg": {}, "kgs": {}, "kilo": {}, "kilos": {}, "kilogram": {}, "kilograms": {},
	"كيلو": {}, "كجم": {}, "كغ": {}, "كيلوغرام": {}, "كيلوجرام": {}, "كيلو جرام": {},
}

// NormalizeUnit maps a free-form unit token onto KG or PIECE. An empty token
// falls back to the supplied default.
func NormalizeUnit(token string, fallback internal.Unit) internal.Unit {
	t := NormalizeName(token)
	if t == "" {
		return fallback
	}
	if _, ok := kgTokens[t]; ok {
		return internal.UnitKG
	}
	if strings.HasPrefix(t, "kilo") || strings.HasPrefix(t, "كيلو") {
		return internal.UnitKG
	}
	return internal.UnitPiece
}

// CoerceQuantity turns a loosely typed JSON quantity into a float64.
// The model occasionally emits quantities as strings, sometimes with
// Arabic-Indic digits.
func CoerceQuantity(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, t > 0
	case int:
		return float64(t), t > 0
	case json.Number:
		f, err := t.Float64()
		return f, err == nil && f > 0
	case string:
		s := strings.TrimSpace(asciiDigits(t))
		s = strings.ReplaceAll(s, ",", ".")
		f, err := strconv.ParseFloat(s, 64)
		return f, err == nil && f > 0
	default:
		return 0, false
	}
}

// asciiDigits rewrites Arabic-Indic and Eastern Arabic-Indic digits to ASCII.
func asciiDigits(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= '٠' && r <= '٩':
			b.WriteRune('0' + (r - '٠'))
		case r >= '۰' && r <= '۹':
			b.WriteRune('0' + (r - '۰'))
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
