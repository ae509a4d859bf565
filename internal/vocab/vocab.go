// Package vocab holds the fixed bilingual vocabulary of recyclable
// materials. Extraction is closed over this list: a material the vocabulary
// does not know is never emitted by the pipeline.
package vocab

import (
	"strings"

	"recyvoice/internal"
	"recyvoice/internal/util"
)

type Entry struct {
	EnglishName string
	ArabicName  string
	DefaultUnit internal.Unit
}

// English names are unique, as are Arabic names. Weighable scrap defaults to
// KG, appliances and furniture to PIECE.
var entries = []Entry{
	{"Plastics", "بلاستيك", internal.UnitKG},
	{"Paper", "ورق", internal.UnitKG},
	{"Cardboard", "كرتون", internal.UnitKG},
	{"Glass", "زجاج", internal.UnitKG},
	{"Iron", "حديد", internal.UnitKG},
	{"Aluminum", "المنيوم", internal.UnitKG},
	{"Copper", "نحاس", internal.UnitKG},
	{"Stainless Steel", "ستانلس", internal.UnitKG},
	{"Cans", "علب", internal.UnitKG},
	{"Cooking Oil", "زيت", internal.UnitKG},
	{"Clothes", "ملابس", internal.UnitKG},
	{"Books", "كتب", internal.UnitKG},
	{"Newspaper", "جرائد", internal.UnitKG},
	{"Electronic Scrap", "سكراب الكترونيات", internal.UnitKG},
	{"Chair", "كرسي", internal.UnitPiece},
	{"Table", "طاولة", internal.UnitPiece},
	{"Sofa", "كنبة", internal.UnitPiece},
	{"Mattress", "مرتبة", internal.UnitPiece},
	{"Washing Machine", "غسالة", internal.UnitPiece},
	{"Refrigerator", "ثلاجة", internal.UnitPiece},
	{"Television", "تلفزيون", internal.UnitPiece},
	{"Air Conditioner", "مكيف", internal.UnitPiece},
	{"Oven", "فرن", internal.UnitPiece},
	{"Microwave", "ميكروويف", internal.UnitPiece},
	{"Water Heater", "سخان", internal.UnitPiece},
	{"Fan", "مروحة", internal.UnitPiece},
	{"Laptop", "لابتوب", internal.UnitPiece},
	{"Mobile Phone", "موبايل", internal.UnitPiece},
	{"Printer", "طابعة", internal.UnitPiece},
	{"Battery", "بطارية", internal.UnitPiece},
	{"Tire", "كاوتش", internal.UnitPiece},
}

type Catalog struct {
	list      []Entry
	byEnglish map[string]Entry
}

var defaultCatalog = build(entries)

func Default() *Catalog { return defaultCatalog }

func build(list []Entry) *Catalog {
	c := &Catalog{list: list, byEnglish: make(map[string]Entry, len(list))}
	for _, e := range list {
		c.byEnglish[util.NormalizeName(e.EnglishName)] = e
	}
	return c
}

func (c *Catalog) Entries() []Entry { return c.list }

// Lookup is the exact lowercase English-name lookup.
func (c *Catalog) Lookup(name string) (Entry, bool) {
	e, ok := c.byEnglish[util.NormalizeName(name)]
	return e, ok
}

// Resolve canonicalizes a raw material string: exact English lookup first,
// then a fuzzy scan over both English and Arabic names. Names scoring below
// threshold resolve to nothing; callers drop those silently.
func (c *Catalog) Resolve(raw string, threshold float64) (Entry, float64, bool) {
	norm := util.NormalizeName(raw)
	if norm == "" {
		return Entry{}, 0, false
	}
	if e, ok := c.byEnglish[norm]; ok {
		return e, 100, true
	}

	var best Entry
	bestScore := 0.0
	for _, e := range c.list {
		score := nameSimilarity(norm, util.NormalizeName(e.EnglishName))
		if s := nameSimilarity(norm, util.NormalizeName(e.ArabicName)); s > score {
			score = s
		}
		if score > bestScore {
			best, bestScore = e, score
		}
	}
	if bestScore >= threshold {
		return best, bestScore, true
	}
	return Entry{}, 0, false
}

// nameSimilarity scores two normalized names: identical strings score 100,
// substring containment scores by the length ratio of the shorter to the
// longer string, anything else scores 0.
func nameSimilarity(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}
	if a == b {
		return 100
	}
	ar := []rune(a)
	br := []rune(b)
	shorter, longer := len(ar), len(br)
	if shorter > longer {
		shorter, longer = longer, shorter
	}
	if strings.Contains(a, b) || strings.Contains(b, a) {
		return 100 * float64(shorter) / float64(longer)
	}
	return 0
}
