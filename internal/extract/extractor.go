// Package extract turns a noisy transcript into structured materials,
// constrained to the canonical vocabulary.
package extract

import (
	"context"
	"encoding/json"
	"math"
	"strings"

	"recyvoice/internal"
	"recyvoice/internal/util"
	"recyvoice/internal/vocab"
)

type Extractor struct {
	completer Completer
	vocab     *vocab.Catalog
	threshold float64
}

func New(completer Completer, v *vocab.Catalog, threshold float64) *Extractor {
	if v == nil {
		v = vocab.Default()
	}
	return &Extractor{completer: completer, vocab: v, threshold: threshold}
}

// Extract calls the language model and canonicalizes its output. Transport
// and API failures propagate as ExtractionError; malformed model output
// degrades to an empty result instead.
func (e *Extractor) Extract(ctx context.Context, transcript string) ([]internal.ExtractedMaterial, error) {
	if strings.TrimSpace(transcript) == "" {
		return []internal.ExtractedMaterial{}, nil
	}

	raw, err := e.completer.Complete(ctx, systemPrompt(e.vocab), transcript)
	if err != nil {
		return nil, &internal.ExtractionError{Err: err}
	}

	return e.canonicalize(parseItems(raw)), nil
}

type rawItem struct {
	Material string `json:"material"`
	Name     string `json:"name"`
	Quantity any    `json:"quantity"`
	Unit     string `json:"unit"`
}

type rawPayload struct {
	Items     []rawItem `json:"items"`
	Materials []rawItem `json:"materials"`
}

// parseItems is deliberately forgiving: fenced output, a bare array, or an
// object keyed "items"/"materials" all parse; everything else is an empty
// extraction, never an error.
func parseItems(raw string) []rawItem {
	body := stripFences(raw)

	var payload rawPayload
	if err := json.Unmarshal([]byte(body), &payload); err == nil {
		if len(payload.Items) > 0 {
			return payload.Items
		}
		if len(payload.Materials) > 0 {
			return payload.Materials
		}
		// A valid object without either array is still an empty extraction.
		if strings.HasPrefix(strings.TrimSpace(body), "{") {
			return nil
		}
	}

	var list []rawItem
	if err := json.Unmarshal([]byte(body), &list); err == nil {
		return list
	}
	return nil
}

func stripFences(raw string) string {
	s := strings.TrimSpace(raw)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		if idx := strings.LastIndex(s, "```"); idx >= 0 {
			s = s[:idx]
		}
	}
	// Some models wrap JSON in prose; keep the outermost object if present.
	if !strings.HasPrefix(strings.TrimSpace(s), "{") && !strings.HasPrefix(strings.TrimSpace(s), "[") {
		start := strings.Index(s, "{")
		end := strings.LastIndex(s, "}")
		if start >= 0 && end > start {
			s = s[start : end+1]
		}
	}
	return strings.TrimSpace(s)
}

// canonicalize resolves every raw material against the vocabulary, fixes
// units and quantities, and merges duplicate (material, unit) pairs.
func (e *Extractor) canonicalize(items []rawItem) []internal.ExtractedMaterial {
	out := make([]internal.ExtractedMaterial, 0, len(items))
	index := map[string]int{}

	for _, item := range items {
		name := item.Material
		if name == "" {
			name = item.Name
		}
		entry, _, ok := e.vocab.Resolve(name, e.threshold)
		if !ok {
			continue
		}

		unit := util.NormalizeUnit(item.Unit, entry.DefaultUnit)
		qty, valid := util.CoerceQuantity(item.Quantity)
		if !valid {
			qty = 1
		}
		if unit == internal.UnitPiece {
			qty = math.Round(qty)
			if qty < 1 {
				qty = 1
			}
		}

		key := entry.EnglishName + "|" + string(unit)
		if pos, seen := index[key]; seen {
			out[pos].Quantity += qty
			continue
		}
		index[key] = len(out)
		out = append(out, internal.ExtractedMaterial{
			Material: entry.EnglishName,
			Quantity: qty,
			Unit:     unit,
		})
	}

	return out
}
