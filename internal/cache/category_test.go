package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock returns a settable now() for TTL tests.
func fakeClock(start time.Time) (*time.Time, func() time.Time) {
	now := start
	return &now, func() time.Time { return now }
}

func sampleRows() []CategoryVector {
	return []CategoryVector{
		{CategoryID: 1, Name: "politics", Vector: []float32{1, 0}},
		{CategoryID: 2, Name: "spoilers", Vector: []float32{0, 1}},
	}
}

func TestCategoryCache_GetMiss(t *testing.T) {
	c := NewCategoryCache(DefaultCategoryTTL)
	rows, ok := c.Get(1)
	assert.False(t, ok)
	assert.Nil(t, rows)
}

func TestCategoryCache_SetGet(t *testing.T) {
	c := NewCategoryCache(DefaultCategoryTTL)
	c.Set(1, sampleRows())

	rows, ok := c.Get(1)
	require.True(t, ok)
	require.Len(t, rows, 2)
	assert.Equal(t, int64(1), rows[0].CategoryID)
	assert.Equal(t, "politics", rows[0].Name)
	assert.Equal(t, []float32{1, 0}, rows[0].Vector)
}

func TestCategoryCache_TTLExpiry(t *testing.T) {
	c := NewCategoryCache(120 * time.Second)
	now, clock := fakeClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	c.now = clock

	c.Set(1, sampleRows())

	*now = now.Add(119 * time.Second)
	_, ok := c.Get(1)
	assert.True(t, ok, "entry must still be present at t+119s")

	*now = now.Add(2 * time.Second) // t+121s
	_, ok = c.Get(1)
	assert.False(t, ok, "entry must be absent at t+121s")

	// The stale entry is removed, not just hidden.
	assert.Equal(t, 0, c.Len())
}

func TestCategoryCache_SetReplaces(t *testing.T) {
	c := NewCategoryCache(DefaultCategoryTTL)
	c.Set(1, sampleRows())
	c.Set(1, []CategoryVector{{CategoryID: 9, Name: "updated", Vector: []float32{0.5, 0.5}}})

	rows, ok := c.Get(1)
	require.True(t, ok)
	require.Len(t, rows, 1)
	assert.Equal(t, int64(9), rows[0].CategoryID)
}

func TestCategoryCache_Invalidate(t *testing.T) {
	c := NewCategoryCache(DefaultCategoryTTL)
	c.Set(1, sampleRows())
	c.Set(2, sampleRows())

	c.Invalidate(1)

	_, ok := c.Get(1)
	assert.False(t, ok)
	_, ok = c.Get(2)
	assert.True(t, ok, "other users' snapshots must survive")
}

func TestCategoryCache_EmptySnapshotIsPresent(t *testing.T) {
	// A user with zero usable categories still gets a cached (empty) snapshot
	// so every filter call within the TTL skips the database.
	c := NewCategoryCache(DefaultCategoryTTL)
	c.Set(1, nil)

	rows, ok := c.Get(1)
	assert.True(t, ok)
	assert.Empty(t, rows)
}

func TestCategoryCache_CopyOut(t *testing.T) {
	c := NewCategoryCache(DefaultCategoryTTL)
	c.Set(1, sampleRows())

	rows, ok := c.Get(1)
	require.True(t, ok)
	rows[0].Vector[0] = 99
	rows[0].Name = "mutated"

	again, ok := c.Get(1)
	require.True(t, ok)
	assert.Equal(t, []float32{1, 0}, again[0].Vector)
	assert.Equal(t, "politics", again[0].Name)
}

func TestCategoryCache_Sweep(t *testing.T) {
	c := NewCategoryCache(120 * time.Second)
	now, clock := fakeClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	c.now = clock

	c.Set(1, sampleRows())
	*now = now.Add(60 * time.Second)
	c.Set(2, sampleRows())
	*now = now.Add(90 * time.Second) // user 1 at 150s, user 2 at 90s

	removed := c.Sweep()
	assert.Equal(t, 1, removed)
	assert.Equal(t, 1, c.Len())

	_, ok := c.Get(2)
	assert.True(t, ok)
}

func TestCategoryCache_Clear(t *testing.T) {
	c := NewCategoryCache(DefaultCategoryTTL)
	c.Set(1, sampleRows())
	c.Set(2, sampleRows())
	c.Clear()

	assert.Equal(t, 0, c.Len())
}
