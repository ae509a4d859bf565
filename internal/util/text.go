package util

import (
	"regexp"
	"strings"
)

var (
	reNonWord = regexp.MustCompile(`[^\p{L}\p{N}\s]+`)
	reSpaces  = regexp.MustCompile(`\s+`)
)

// NormalizeName lowercases, strips punctuation and collapses whitespace.
// Arabic letters pass through untouched so the same function serves both
// halves of the bilingual vocabulary.
func NormalizeName(input string) string {
	s := strings.ToLower(input)
	s = reNonWord.ReplaceAllString(s, " ")
	s = reSpaces.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

func StripSpaces(input string) string {
	return strings.ReplaceAll(input, " ", "")
}

// Singular strips a trailing ASCII "s". Arabic plurals are irregular and are
// left alone.
func Singular(input string) string {
	if len(input) > 1 && strings.HasSuffix(input, "s") {
		return strings.TrimSuffix(input, "s")
	}
	return input
}

func Plural(input string) string {
	if input == "" || strings.HasSuffix(input, "s") {
		return input
	}
	last, _ := lastRune(input)
	if last >= 'a' && last <= 'z' {
		return input + "s"
	}
	return input
}

func Tokenize(input string) []string {
	norm := NormalizeName(input)
	if norm == "" {
		return nil
	}
	return strings.Fields(norm)
}

func lastRune(s string) (rune, bool) {
	var r rune
	found := false
	for _, c := range s {
		r = c
		found = true
	}
	return r, found
}

func StringPtr(v string) *string { return &v }

func FloatPtr(v float64) *float64 { return &v }
