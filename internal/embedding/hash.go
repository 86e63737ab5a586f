// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package embedding

import (
	"context"
	"hash/fnv"
	"math"

	"github.com/pdiddy/estimate-engine/internal/textutil"
)

const hashDimensions = 256

// HashEmbedder is a deterministic offline embedder. It hashes token and
// character-trigram features into a fixed-dimension bag-of-features vector,
// so texts sharing vocabulary score high without any model or network.
// Scores are cruder than real sentence embeddings but stable across runs,
// which is what tests and air-gapped deployments need.
type HashEmbedder struct{}

// ModelID identifies the offline embedder in cache keys and logs.
func (HashEmbedder) ModelID() string { return "feature-hash-256" }

// Embed returns the feature-hash vector for text. It never fails.
func (HashEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	vec := make([]float32, hashDimensions)

	for tok := range textutil.Tokens(text) {
		addFeature(vec, tok, 1.0)
		runes := []rune(tok)
		for i := 0; i+3 <= len(runes); i++ {
			addFeature(vec, string(runes[i:i+3]), 0.5)
		}
	}

	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	if sum > 0 {
		n := float32(math.Sqrt(sum))
		for i := range vec {
			vec[i] /= n
		}
	}
	return vec, nil
}

func addFeature(vec []float32, feature string, weight float32) {
	h := fnv.New32a()
	h.Write([]byte(feature))
	v := h.Sum32()
	// The low bits pick the bucket, one high bit picks the sign, so
	// unrelated features cancel rather than accumulate.
	sign := float32(1)
	if v&0x80000000 != 0 {
		sign = -1
	}
	vec[v%hashDimensions] += sign * weight
}
