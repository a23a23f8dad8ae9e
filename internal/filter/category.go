package filter

import (
	"context"
	"errors"
	"fmt"

	"semfilter/internal/embedder"
	"semfilter/internal/vector"
)

// ErrNoExamples is returned when a category is created without any example
// sentences to embed.
var ErrNoExamples = errors.New("filter: at least one example sentence is required")

// Representative builds a category's representative vector from example
// sentences: the normalized mean of their embeddings. More examples give a
// steadier center; feedback refines it later.
func Representative(ctx context.Context, emb embedder.Embedder, codec *vector.Codec, examples []string) ([]float32, error) {
	if emb == nil {
		return nil, ErrEmbedderUnavailable
	}
	if len(examples) == 0 {
		return nil, ErrNoExamples
	}

	vectors, err := emb.Embed(ctx, examples)
	if err != nil {
		return nil, fmt.Errorf("filter: encode examples: %w", err)
	}
	if len(vectors) != len(examples) {
		return nil, fmt.Errorf("filter: encoder returned %d vectors for %d examples", len(vectors), len(examples))
	}

	mean := make([]float32, codec.Dim())
	for _, v := range vectors {
		if err := codec.Validate(v); err != nil {
			return nil, fmt.Errorf("filter: example embedding: %w", err)
		}
		for i := range mean {
			mean[i] += v[i]
		}
	}
	for i := range mean {
		mean[i] /= float32(len(vectors))
	}

	normalized, err := codec.Normalize(mean)
	if err != nil {
		return nil, fmt.Errorf("filter: representative vector: %w", err)
	}
	return normalized, nil
}
