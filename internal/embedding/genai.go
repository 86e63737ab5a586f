// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package embedding

import (
	"context"
	"fmt"
	"sync"

	"google.golang.org/genai"

	"github.com/pdiddy/estimate-engine/internal/textutil"
)

const defaultEmbeddingModel = "gemini-embedding-001"

// GenAIEngine generates embeddings through the Gemini API with an
// in-memory cache keyed by model and normalized text.
type GenAIEngine struct {
	client *genai.Client
	model  string

	mu    sync.RWMutex
	cache map[string][]float32
}

// NewGenAIEngine creates the Gemini-backed embedding engine.
func NewGenAIEngine(ctx context.Context, apiKey, model string) (*GenAIEngine, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("embedding API key is required")
	}
	if model == "" {
		model = defaultEmbeddingModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
	if err != nil {
		return nil, fmt.Errorf("creating GenAI client: %w", err)
	}

	return &GenAIEngine{
		client: client,
		model:  model,
		cache:  make(map[string][]float32),
	}, nil
}

// ModelID returns the embedding model identifier.
func (e *GenAIEngine) ModelID() string { return e.model }

// Embed returns the embedding for text, serving repeats from the cache.
func (e *GenAIEngine) Embed(ctx context.Context, text string) ([]float32, error) {
	key := e.model + "|" + textutil.Normalize(text)

	e.mu.RLock()
	cached, ok := e.cache[key]
	e.mu.RUnlock()
	if ok {
		return cached, nil
	}

	contents := []*genai.Content{
		genai.NewContentFromText(text, genai.RoleUser),
	}
	result, err := e.client.Models.EmbedContent(ctx, e.model, contents,
		&genai.EmbedContentConfig{
			TaskType: "SEMANTIC_SIMILARITY",
		})
	if err != nil {
		return nil, fmt.Errorf("GenAI embed: %w", err)
	}
	if len(result.Embeddings) == 0 {
		return nil, fmt.Errorf("GenAI embed: no embeddings returned")
	}

	vec := result.Embeddings[0].Values

	e.mu.Lock()
	e.cache[key] = vec
	e.mu.Unlock()

	return vec, nil
}
