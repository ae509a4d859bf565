package extract

import (
	"strings"

	"recyvoice/internal/vocab"
)

// systemPrompt enumerates the whole vocabulary and pins the output to a
// strict JSON shape. The transcript goes in as the user message untouched.
func systemPrompt(v *vocab.Catalog) string {
	var b strings.Builder
	b.WriteString("You extract recyclable materials from a voice transcript that mixes Arabic and English.\n")
	b.WriteString("Only these materials exist. Use the exact English name from this list:\n")
	for _, e := range v.Entries() {
		b.WriteString("- ")
		b.WriteString(e.EnglishName)
		b.WriteString(" (")
		b.WriteString(e.ArabicName)
		b.WriteString(", default unit ")
		b.WriteString(string(e.DefaultUnit))
		b.WriteString(")\n")
	}
	b.WriteString("\nRespond with JSON only, no prose, exactly this shape:\n")
	b.WriteString(`{"items":[{"material":"<English name>","quantity":<number>,"unit":"KG"|"PIECE"}]}`)
	b.WriteString("\nRules:\n")
	b.WriteString("- Skip anything not on the list. Never invent materials.\n")
	b.WriteString("- Convert Arabic numerals and number words to plain numbers.\n")
	b.WriteString("- kilo/كيلو style units mean KG; countable objects are PIECE.\n")
	b.WriteString("- If quantity or unit is unclear, omit the field.\n")
	b.WriteString("- If the transcript mentions no listed material, return {\"items\":[]}.")
	return b.String()
}
