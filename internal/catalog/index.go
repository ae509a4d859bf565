package catalog

import (
	"recyvoice/internal"
	"recyvoice/internal/util"
)

// Index is the search structure the resolver works against. ByExactKey holds
// four key variants per item: the normalized English name, the name with
// spaces removed, the singular form and the plural form. Items is the flat
// list scanned when every exact key misses. An Index is immutable once built;
// the cache swaps whole indexes on refresh.
type Index struct {
	ByExactKey map[string]*internal.LiveCatalogItem
	Items      []*internal.LiveCatalogItem
}

func BuildIndex(items []*internal.LiveCatalogItem) *Index {
	idx := &Index{
		ByExactKey: make(map[string]*internal.LiveCatalogItem, len(items)*4),
		Items:      items,
	}

	for _, item := range items {
		norm := util.NormalizeName(item.EnglishName())
		if norm == "" {
			continue
		}
		addKey := func(key string) {
			if key == "" {
				return
			}
			// First writer wins so earlier catalog entries keep priority.
			if _, exists := idx.ByExactKey[key]; !exists {
				idx.ByExactKey[key] = item
			}
		}
		addKey(norm)
		addKey(util.StripSpaces(norm))
		addKey(util.Singular(norm))
		addKey(util.Plural(norm))
	}

	return idx
}
