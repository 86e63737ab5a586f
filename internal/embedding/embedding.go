// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package embedding provides sentence-level text embeddings for semantic
// candidate scoring. The production engine calls the Gemini embedding API;
// an offline deterministic engine serves tests and air-gapped runs. Both
// keep a process-wide in-memory vector cache so repeated catalog scoring
// does not re-embed the same names.
package embedding

import (
	"context"
	"math"
)

// Embedder produces a fixed-dimension vector for a piece of text.
// Implementations must be safe for concurrent use.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	ModelID() string
}

// Cosine returns the cosine similarity of two vectors in [-1,1].
// Mismatched or zero-length vectors score 0.
func Cosine(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		af, bf := float64(a[i]), float64(b[i])
		dot += af * bf
		na += af * af
		nb += bf * bf
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

// Similarity rescales cosine similarity from [-1,1] to [0,1].
func Similarity(a, b []float32) float64 {
	return (Cosine(a, b) + 1) / 2
}
