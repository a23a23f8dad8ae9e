package filter

import (
	"context"
	"errors"
	"fmt"

	"semfilter/internal/cache"
	"semfilter/internal/embedder"
	"semfilter/internal/store"
	"semfilter/internal/vector"
)

// LearningRate is how far one feedback action moves a category's
// representative vector (0.05 = 5% toward or away from the feedback text).
const LearningRate float32 = 0.05

// Direction says whether feedback moves the category vector toward the text
// (reinforce) or away from it (weaken).
type Direction string

const (
	DirectionReinforce Direction = "reinforce"
	DirectionWeaken    Direction = "weaken"
)

// ErrInvalidDirection is returned for a direction other than reinforce/weaken.
var ErrInvalidDirection = errors.New("filter: invalid feedback direction")

// Valid reports whether d is a known direction.
func (d Direction) Valid() bool {
	return d == DirectionReinforce || d == DirectionWeaken
}

// Adjust computes the category vector after one feedback step. feedback must
// be normalized. The result is renormalized; if that is impossible (the
// adjusted vector degenerated to zero) the original vector is returned
// unchanged rather than corrupting the category.
//
// Weaken deliberately pushes past the current position, away from the
// feedback vector, so reinforce and weaken magnitudes are asymmetric. That
// asymmetry is load-bearing; do not "simplify" it.
func Adjust(current, feedback []float32, direction Direction) []float32 {
	adjusted := make([]float32, len(current))
	switch direction {
	case DirectionReinforce:
		for i := range current {
			adjusted[i] = (1-LearningRate)*current[i] + LearningRate*feedback[i]
		}
	case DirectionWeaken:
		for i := range current {
			adjusted[i] = current[i] - LearningRate*(feedback[i]-current[i])
		}
	}

	norm := vector.Norm(adjusted)
	if norm == 0 {
		out := make([]float32, len(current))
		copy(out, current)
		return out
	}
	for i := range adjusted {
		adjusted[i] /= norm
	}
	return adjusted
}

// Adjuster applies feedback to persisted category vectors. It is the only
// core component that writes category data, and it delegates the write itself
// to the store.
type Adjuster struct {
	embedder   embedder.Embedder
	store      store.Store
	codec      *vector.Codec
	categories *cache.CategoryCache
}

// NewAdjuster wires the feedback path to its collaborators.
func NewAdjuster(emb embedder.Embedder, st store.Store, codec *vector.Codec, categories *cache.CategoryCache) *Adjuster {
	return &Adjuster{embedder: emb, store: st, codec: codec, categories: categories}
}

// Apply encodes text, nudges the category's representative vector in the
// given direction, persists the new vector together with a feedback log
// entry, and invalidates the user's snapshot so the next filter call sees
// the update instead of a stale snapshot.
func (a *Adjuster) Apply(ctx context.Context, userID, categoryID int64, text string, direction Direction) (*store.FeedbackEntry, error) {
	if !direction.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidDirection, direction)
	}
	if a.embedder == nil {
		return nil, ErrEmbedderUnavailable
	}

	category, err := a.store.GetCategory(ctx, userID, categoryID)
	if err != nil {
		return nil, err
	}

	raw, err := a.embedder.Embed(ctx, []string{text})
	if err != nil {
		return nil, fmt.Errorf("filter: encode feedback text: %w", err)
	}
	if len(raw) != 1 {
		return nil, fmt.Errorf("filter: encoder returned %d vectors for 1 text", len(raw))
	}

	feedbackVec, err := a.codec.Normalize(raw[0])
	if err != nil {
		return nil, fmt.Errorf("filter: feedback embedding: %w", err)
	}
	current, err := a.codec.Deserialize(category.Embedding)
	if err != nil {
		return nil, fmt.Errorf("filter: category %d: %w", categoryID, err)
	}

	adjusted := Adjust(current, feedbackVec, direction)
	newBlob, err := a.codec.Serialize(adjusted)
	if err != nil {
		return nil, fmt.Errorf("filter: serialize adjusted vector: %w", err)
	}
	// The log keeps the raw, non-normalized embedding.
	rawBlob, err := a.codec.Serialize(raw[0])
	if err != nil {
		return nil, fmt.Errorf("filter: serialize feedback embedding: %w", err)
	}

	entry := &store.FeedbackEntry{
		UserID:     userID,
		CategoryID: categoryID,
		Text:       text,
		Embedding:  rawBlob,
		Direction:  string(direction),
	}
	if err := a.store.RecordFeedback(ctx, entry, newBlob); err != nil {
		return nil, err
	}

	a.categories.Invalidate(userID)
	return entry, nil
}
