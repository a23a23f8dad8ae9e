// Package embedder converts text into fixed-dimension embedding vectors by
// calling an external embedding service. Providers must be deterministic for
// identical input text; the embedding cache depends on it.
package embedder

import "context"

// Embedder converts text to vectors.
type Embedder interface {
	// Embed converts texts to vectors, one per input, same order,
	// batched in a single call.
	Embed(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the vector dimensionality.
	Dimensions() int

	// Name identifies the provider.
	Name() string
}
