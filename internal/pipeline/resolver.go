package pipeline

import (
	"context"
	"math"
	"sort"
	"strings"

	"recyvoice/internal"
	"recyvoice/internal/catalog"
	"recyvoice/internal/config"
	"recyvoice/internal/util"
)

// Resolver matches extracted materials against the live catalog for a role.
type Resolver struct {
	cfg   config.Config
	cache *catalog.Cache
}

func NewResolver(cfg config.Config, cache *catalog.Cache) *Resolver {
	return &Resolver{cfg: cfg, cache: cache}
}

// Verify resolves every material against the role's catalog index. A catalog
// fetch failure fails the whole batch; per-item misses do not.
func (r *Resolver) Verify(ctx context.Context, materials []internal.ExtractedMaterial, role string) ([]internal.VerifiedMaterial, error) {
	idx, err := r.cache.Get(ctx, role)
	if err != nil {
		return nil, err
	}

	out := make([]internal.VerifiedMaterial, 0, len(materials))
	for _, m := range materials {
		out = append(out, r.verifyOne(idx, m))
	}
	return out, nil
}

type candidate struct {
	item  *internal.LiveCatalogItem
	name  string
	score float64
}

func (r *Resolver) verifyOne(idx *catalog.Index, m internal.ExtractedMaterial) internal.VerifiedMaterial {
	norm := util.NormalizeName(m.Material)

	// Exact pass. A direct key hit needs no scoring at all.
	if item, ok := idx.ByExactKey[norm]; ok {
		return r.accepted(m, item, 100)
	}
	if item, ok := idx.ByExactKey[util.StripSpaces(norm)]; ok {
		return r.accepted(m, item, r.cfg.ExactNoSpaceSim)
	}

	// Fuzzy pass over the flat list.
	cands := make([]candidate, 0, 4)
	for _, item := range idx.Items {
		name := util.NormalizeName(item.EnglishName())
		score := similarity(norm, name)
		if score >= r.cfg.MatchThreshold {
			cands = append(cands, candidate{item: item, name: name, score: score})
		}
	}
	if len(cands) == 0 {
		return notFound(m)
	}

	sort.SliceStable(cands, func(i, j int) bool { return cands[i].score > cands[j].score })
	best := r.pickBest(norm, cands)
	return r.accepted(m, best.item, best.score)
}

// pickBest applies the tie-break: when the top two scores sit within the tie
// window, the more specific catalog name wins, except when the less specific
// candidate has no substring relationship with the input and the raw gap is
// at least the minimum — then the raw score stands.
func (r *Resolver) pickBest(input string, cands []candidate) candidate {
	top := cands[0]
	if len(cands) == 1 {
		return top
	}
	second := cands[1]
	gap := top.score - second.score
	if gap > r.cfg.MatchTieWindow {
		return top
	}

	moreSpecific, lessSpecific := top, second
	if specificity(second.name) > specificity(top.name) {
		moreSpecific, lessSpecific = second, top
	}

	if !substringRelated(input, lessSpecific.name) && gap >= r.cfg.MatchTieMinGap {
		return top
	}
	return moreSpecific
}

// specificity orders names by length, with a strong weight on word count so
// "plastic bottles" beats "plastics".
func specificity(name string) int {
	return len([]rune(name)) + 10*len(util.Tokenize(name))
}

func substringRelated(a, b string) bool {
	return strings.Contains(a, b) || strings.Contains(b, a)
}

// accepted reconciles units: the catalog item's measurement unit is
// authoritative, UnitMatched records whether the extractor agreed.
func (r *Resolver) accepted(m internal.ExtractedMaterial, item *internal.LiveCatalogItem, score float64) internal.VerifiedMaterial {
	unit := internal.UnitFromMeasurement(item.MeasurementUnit)
	qty := m.Quantity
	if unit == internal.UnitPiece {
		qty = math.Round(qty)
		if qty < 1 {
			qty = 1
		}
	}
	return internal.VerifiedMaterial{
		Material:        m.Material,
		Quantity:        qty,
		Unit:            unit,
		Available:       true,
		MatchedItem:     item,
		MatchSimilarity: score,
		UnitMatched:     unit == m.Unit,
	}
}

func notFound(m internal.ExtractedMaterial) internal.VerifiedMaterial {
	return internal.VerifiedMaterial{
		Material:        m.Material,
		Quantity:        m.Quantity,
		Unit:            m.Unit,
		Available:       false,
		MatchedItem:     nil,
		MatchSimilarity: 0,
		UnitMatched:     false,
	}
}
