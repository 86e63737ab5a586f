// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package retrieval ranks normative catalog entries against a work-volume
// line item. Each entry is scored by four independent signals (lexical,
// semantic, unit, parameter) combined into a weighted composite, and the
// top-K candidates are returned in deterministic order.
package retrieval

import (
	"context"
	"fmt"
	"sort"

	"github.com/pdiddy/estimate-engine/internal/catalog"
	"github.com/pdiddy/estimate-engine/internal/embedding"
	"github.com/pdiddy/estimate-engine/pkg/types"
)

// Composite score weights. The unit signal contributes its full weight on
// a match and half weight otherwise, so a wrong unit dampens rather than
// zeroes a candidate.
const (
	weightLexical   = 0.35
	weightSemantic  = 0.45
	weightUnit      = 0.10
	weightParameter = 0.10

	defaultTopK = 5
)

// Candidate is one scored catalog entry. Candidates live only from
// retrieval to arbitration.
type Candidate struct {
	Entry          types.CatalogEntry
	Lexical        float64
	Semantic       float64
	UnitMatch      bool
	ParameterMatch float64
	Composite      float64
}

// Engine scores catalog entries against line items. It holds only
// read-only collaborators and is safe for concurrent use.
type Engine struct {
	catalog  catalog.Lookup
	embedder embedding.Embedder
}

// NewEngine creates a retrieval engine over the given catalog and embedder.
func NewEngine(cat catalog.Lookup, emb embedding.Embedder) *Engine {
	return &Engine{catalog: cat, embedder: emb}
}

// Search returns up to topK candidates for the line item, ordered by
// composite score descending with ties broken by catalog code ascending.
// An empty result is valid: the catalog may be empty or filtered to
// nothing. A catalog read failure or a failure to embed the line item
// itself is an error; a scoring failure on a single entry skips that
// entry only.
func (e *Engine) Search(ctx context.Context, item types.LineItem, expectedUnit string, topK int, sections []string) ([]Candidate, error) {
	if topK <= 0 {
		topK = defaultTopK
	}

	entries, err := e.catalog.FindBySection(ctx, sections)
	if err != nil {
		return nil, fmt.Errorf("reading catalog: %w", err)
	}
	if len(entries) == 0 {
		return nil, nil
	}

	itemVec, err := e.embedder.Embed(ctx, item.Name)
	if err != nil {
		// Without the item vector nothing can be scored.
		return nil, fmt.Errorf("embedding line item %q: %w", item.Name, err)
	}

	candidates := make([]Candidate, 0, len(entries))
	for _, entry := range entries {
		entryVec, err := e.embedder.Embed(ctx, entry.Name)
		if err != nil {
			// Per-entry scoring failures skip the entry, never the search.
			continue
		}

		c := Candidate{
			Entry:          entry,
			Lexical:        lexicalScore(item.Name, entry.Name),
			Semantic:       embedding.Similarity(itemVec, entryVec),
			UnitMatch:      unitMatch(expectedUnit, entry.Unit),
			ParameterMatch: parameterScore(entry, itemText(item)),
		}
		c.Composite = composite(c)
		candidates = append(candidates, c)
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].Composite != candidates[j].Composite {
			return candidates[i].Composite > candidates[j].Composite
		}
		return candidates[i].Entry.Code < candidates[j].Entry.Code
	})

	if len(candidates) > topK {
		candidates = candidates[:topK]
	}
	return candidates, nil
}

// Best returns the candidate with the highest composite score, with ties
// broken by catalog code ascending. This is the deterministic fallback
// order used when verification is unavailable.
func Best(candidates []Candidate) Candidate {
	best := candidates[0]
	for _, c := range candidates[1:] {
		if c.Composite > best.Composite ||
			(c.Composite == best.Composite && c.Entry.Code < best.Entry.Code) {
			best = c
		}
	}
	return best
}

func composite(c Candidate) float64 {
	unitComponent := 0.5
	if c.UnitMatch {
		unitComponent = 1.0
	}
	return weightLexical*c.Lexical +
		weightSemantic*c.Semantic +
		weightUnit*unitComponent +
		weightParameter*c.ParameterMatch
}

// itemText is the searchable text of a line item: the extracted name plus
// the original source line when present.
func itemText(item types.LineItem) string {
	if item.SourceLine == "" {
		return item.Name
	}
	return item.Name + " " + item.SourceLine
}
