// Package filter is the similarity core: it turns input texts into normalized
// embeddings (through the LRU cache), scores them against the user's category
// vectors (through the TTL snapshot cache), and decides per text whether it
// should be filtered. It also applies reinforce/weaken feedback to category
// vectors.
package filter

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"semfilter/internal/cache"
	"semfilter/internal/embedder"
	"semfilter/internal/store"
	"semfilter/internal/vector"
)

// ErrEmbedderUnavailable means no embedding provider is configured. The
// whole batch fails before any cache is touched.
var ErrEmbedderUnavailable = errors.New("filter: embedder unavailable")

// Match is one category whose similarity to a text reached the threshold.
type Match struct {
	CategoryID int64
	Name       string
	Score      float32
}

// Result is the verdict for one input text.
type Result struct {
	Text         string
	ShouldFilter bool
	Matches      []Match // descending by score; ties keep snapshot order
}

// Engine evaluates batches of texts against a user's category set. It only
// ever reads persisted category data; cache fills are its sole side effect.
type Engine struct {
	embedder   embedder.Embedder
	store      store.Store
	codec      *vector.Codec
	embeddings *cache.EmbeddingCache
	categories *cache.CategoryCache
}

// NewEngine wires the similarity engine to its collaborators. Both caches are
// shared process-wide state owned by the caller.
func NewEngine(emb embedder.Embedder, st store.Store, codec *vector.Codec, embeddings *cache.EmbeddingCache, categories *cache.CategoryCache) *Engine {
	return &Engine{
		embedder:   emb,
		store:      st,
		codec:      codec,
		embeddings: embeddings,
		categories: categories,
	}
}

// Evaluate scores each text against the user's categories and returns one
// result per input text, in input order. A category counts as a match when
// its cosine similarity is at or above threshold. Empty texts are never
// encoded and never filtered.
//
// Any failure leaves both caches exactly as they were before the call.
func (e *Engine) Evaluate(ctx context.Context, userID int64, texts []string, threshold float32) ([]Result, error) {
	if e.embedder == nil {
		return nil, ErrEmbedderUnavailable
	}

	vectors, err := e.textVectors(ctx, texts)
	if err != nil {
		return nil, err
	}

	rows, err := e.categorySnapshot(ctx, userID)
	if err != nil {
		return nil, err
	}

	results := make([]Result, len(texts))
	for i, text := range texts {
		results[i] = Result{Text: text}
		if text == "" {
			continue
		}
		vec := vectors[text]

		var matches []Match
		for _, row := range rows {
			// Both vectors are unit length, so the dot product is
			// their cosine similarity.
			score := vector.Dot(vec, row.Vector)
			if score >= threshold {
				matches = append(matches, Match{CategoryID: row.CategoryID, Name: row.Name, Score: score})
			}
		}
		sort.SliceStable(matches, func(a, b int) bool {
			return matches[a].Score > matches[b].Score
		})

		results[i].Matches = matches
		results[i].ShouldFilter = len(matches) > 0
	}
	return results, nil
}

// textVectors resolves a normalized embedding for every distinct non-empty
// text, batching all cache misses into a single encoder call. The embedding
// cache is filled only after the entire batch normalized cleanly.
func (e *Engine) textVectors(ctx context.Context, texts []string) (map[string][]float32, error) {
	vectors := make(map[string][]float32)
	var missing []string

	for _, text := range texts {
		if text == "" {
			continue
		}
		if _, ok := vectors[text]; ok {
			continue
		}
		if vec, ok := e.embeddings.Get(text); ok {
			vectors[text] = vec
		} else {
			vectors[text] = nil
			missing = append(missing, text)
		}
	}

	if len(missing) == 0 {
		return vectors, nil
	}

	raw, err := e.embedder.Embed(ctx, missing)
	if err != nil {
		return nil, fmt.Errorf("filter: encode batch: %w", err)
	}
	if len(raw) != len(missing) {
		return nil, fmt.Errorf("filter: encoder returned %d vectors for %d texts", len(raw), len(missing))
	}

	normalized := make([][]float32, len(raw))
	for i, v := range raw {
		n, err := e.codec.Normalize(v)
		if err != nil {
			return nil, fmt.Errorf("filter: embedding for %q: %w", missing[i], err)
		}
		normalized[i] = n
	}

	for i, text := range missing {
		e.embeddings.Put(text, normalized[i])
		vectors[text] = normalized[i]
	}
	return vectors, nil
}

// categorySnapshot returns the user's normalized category rows, loading and
// caching them on a snapshot miss. Stored vectors with zero norm cannot
// contribute similarity and are dropped from the snapshot. A snapshot is
// cached even when empty, so users without categories skip the database for
// a full TTL window.
func (e *Engine) categorySnapshot(ctx context.Context, userID int64) ([]cache.CategoryVector, error) {
	if rows, ok := e.categories.Get(userID); ok {
		return rows, nil
	}

	categories, err := e.store.ListCategories(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("filter: load categories: %w", err)
	}

	rows := make([]cache.CategoryVector, 0, len(categories))
	for _, c := range categories {
		vec, err := e.codec.Deserialize(c.Embedding)
		if err != nil {
			return nil, fmt.Errorf("filter: category %d: %w", c.ID, err)
		}
		n, err := e.codec.Normalize(vec)
		if errors.Is(err, vector.ErrZeroVector) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("filter: category %d: %w", c.ID, err)
		}
		rows = append(rows, cache.CategoryVector{CategoryID: c.ID, Name: c.Name, Vector: n})
	}

	e.categories.Set(userID, rows)
	return rows, nil
}
