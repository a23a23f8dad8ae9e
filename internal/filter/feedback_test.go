package filter

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"semfilter/internal/cache"
	"semfilter/internal/store"
	"semfilter/internal/vector"
)

func cosine(a, b []float32) float64 {
	return float64(vector.Dot(a, b)) / (float64(vector.Norm(a)) * float64(vector.Norm(b)))
}

func TestAdjust_ReinforceMovesToward(t *testing.T) {
	current := []float32{1, 0, 0, 0}
	feedback := []float32{0.6, 0.8, 0, 0}

	adjusted := Adjust(current, feedback, DirectionReinforce)

	before := cosine(current, feedback)
	after := cosine(adjusted, feedback)
	assert.Greater(t, after, before, "reinforce must move the vector toward the feedback text")
	assert.InDelta(t, 1, vector.Norm(adjusted), 0.0001, "result must be renormalized")
}

func TestAdjust_WeakenMovesAway(t *testing.T) {
	current := []float32{1, 0, 0, 0}
	feedback := []float32{0.6, 0.8, 0, 0}

	adjusted := Adjust(current, feedback, DirectionWeaken)

	before := cosine(current, feedback)
	after := cosine(adjusted, feedback)
	assert.Less(t, after, before, "weaken must move the vector away from the feedback text")
	assert.InDelta(t, 1, vector.Norm(adjusted), 0.0001)
}

func TestAdjust_WeakenPushesPastCurrent(t *testing.T) {
	// weaken is c - α(f-c), not c - αf: the result lands strictly on the far
	// side of the current position relative to the feedback vector.
	current := []float32{0, 1}
	feedback := []float32{1, 0}

	adjusted := Adjust(current, feedback, DirectionWeaken)
	assert.Negative(t, adjusted[0], "component pointing at the feedback must go negative")
}

func TestAdjust_ExpectedValues(t *testing.T) {
	current := []float32{1, 0}
	feedback := []float32{0, 1}

	reinforced := Adjust(current, feedback, DirectionReinforce)
	// (0.95, 0.05) renormalized.
	norm := float32(math.Sqrt(0.95*0.95 + 0.05*0.05))
	assert.InDelta(t, 0.95/norm, reinforced[0], 0.0001)
	assert.InDelta(t, 0.05/norm, reinforced[1], 0.0001)

	weakened := Adjust(current, feedback, DirectionWeaken)
	// (1.05, -0.05) renormalized.
	norm = float32(math.Sqrt(1.05*1.05 + 0.05*0.05))
	assert.InDelta(t, 1.05/norm, weakened[0], 0.0001)
	assert.InDelta(t, -0.05/norm, weakened[1], 0.0001)
}

func TestAdjust_DegenerateKeepsOriginal(t *testing.T) {
	// If the adjusted vector cannot be renormalized the category keeps its
	// previous vector instead of being corrupted.
	current := []float32{0, 0}
	feedback := []float32{0, 0}

	adjusted := Adjust(current, feedback, DirectionReinforce)
	assert.Equal(t, current, adjusted)

	// The fallback is a copy, not an alias.
	adjusted[0] = 1
	assert.Equal(t, float32(0), current[0])
}

func TestDirection_Valid(t *testing.T) {
	assert.True(t, DirectionReinforce.Valid())
	assert.True(t, DirectionWeaken.Valid())
	assert.False(t, Direction("boost").Valid())
}

type testAdjuster struct {
	adjuster   *Adjuster
	embedder   *fakeEmbedder
	store      *fakeStore
	codec      *vector.Codec
	categories *cache.CategoryCache
}

func newTestAdjuster(t *testing.T) *testAdjuster {
	t.Helper()
	ta := &testAdjuster{
		embedder:   newFakeEmbedder(testDims),
		store:      newFakeStore(),
		codec:      vector.NewCodec(testDims),
		categories: cache.NewCategoryCache(cache.DefaultCategoryTTL),
	}
	ta.adjuster = NewAdjuster(ta.embedder, ta.store, ta.codec, ta.categories)
	return ta
}

func TestApply_UpdatesVectorAndLog(t *testing.T) {
	ta := newTestAdjuster(t)
	blob, err := ta.codec.Serialize([]float32{1, 0, 0, 0})
	require.NoError(t, err)
	c := &store.Category{UserID: 1, Name: "politics", Embedding: blob}
	require.NoError(t, ta.store.CreateCategory(context.Background(), c))

	ta.embedder.vectors["more like this"] = []float32{0, 2, 0, 0}

	entry, err := ta.adjuster.Apply(context.Background(), 1, c.ID, "more like this", DirectionReinforce)
	require.NoError(t, err)
	assert.NotEmpty(t, entry.ID)
	assert.Equal(t, string(DirectionReinforce), entry.Direction)

	// The log keeps the raw, non-normalized embedding.
	rawVec, err := ta.codec.Deserialize(entry.Embedding)
	require.NoError(t, err)
	assert.Equal(t, []float32{0, 2, 0, 0}, rawVec)

	// The stored category vector moved toward the (normalized) feedback.
	updated, err := ta.store.GetCategory(context.Background(), 1, c.ID)
	require.NoError(t, err)
	newVec, err := ta.codec.Deserialize(updated.Embedding)
	require.NoError(t, err)
	assert.Greater(t, cosine(newVec, []float32{0, 1, 0, 0}), 0.0)
	assert.InDelta(t, 1, vector.Norm(newVec), 0.0001)
}

func TestApply_InvalidatesSnapshot(t *testing.T) {
	ta := newTestAdjuster(t)
	blob, err := ta.codec.Serialize([]float32{1, 0, 0, 0})
	require.NoError(t, err)
	c := &store.Category{UserID: 1, Name: "politics", Embedding: blob}
	require.NoError(t, ta.store.CreateCategory(context.Background(), c))

	// A fresh snapshot is cached, then feedback lands.
	ta.categories.Set(1, []cache.CategoryVector{{CategoryID: c.ID, Name: "politics", Vector: []float32{1, 0, 0, 0}}})
	ta.embedder.vectors["t"] = []float32{0, 1, 0, 0}

	_, err = ta.adjuster.Apply(context.Background(), 1, c.ID, "t", DirectionWeaken)
	require.NoError(t, err)

	_, ok := ta.categories.Get(1)
	assert.False(t, ok, "snapshot must be invalidated so the next filter call reloads")
}

func TestApply_OwnershipChecked(t *testing.T) {
	ta := newTestAdjuster(t)
	blob, err := ta.codec.Serialize([]float32{1, 0, 0, 0})
	require.NoError(t, err)
	c := &store.Category{UserID: 1, Name: "politics", Embedding: blob}
	require.NoError(t, ta.store.CreateCategory(context.Background(), c))
	ta.embedder.vectors["t"] = []float32{0, 1, 0, 0}

	_, err = ta.adjuster.Apply(context.Background(), 2, c.ID, "t", DirectionReinforce)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestApply_InvalidDirection(t *testing.T) {
	ta := newTestAdjuster(t)
	_, err := ta.adjuster.Apply(context.Background(), 1, 1, "t", Direction("boost"))
	assert.ErrorIs(t, err, ErrInvalidDirection)
	assert.Empty(t, ta.embedder.calls, "nothing is encoded for an invalid direction")
}

func TestApply_ZeroFeedbackEmbedding(t *testing.T) {
	ta := newTestAdjuster(t)
	blob, err := ta.codec.Serialize([]float32{1, 0, 0, 0})
	require.NoError(t, err)
	c := &store.Category{UserID: 1, Name: "politics", Embedding: blob}
	require.NoError(t, ta.store.CreateCategory(context.Background(), c))
	ta.embedder.vectors["t"] = []float32{0, 0, 0, 0}

	_, err = ta.adjuster.Apply(context.Background(), 1, c.ID, "t", DirectionReinforce)
	require.ErrorIs(t, err, vector.ErrZeroVector)

	// Nothing was persisted.
	assert.Empty(t, ta.store.feedback)
	got, err := ta.store.GetCategory(context.Background(), 1, c.ID)
	require.NoError(t, err)
	assert.Equal(t, blob, got.Embedding)
}
