package cache

import (
	"sync"
	"time"
)

// DefaultCategoryTTL bounds how stale a cached category snapshot can get.
// Category vectors only change through explicit create/delete/feedback, so a
// short window amortizes reloading and renormalizing every category row on
// each filter call without letting clients observe old vectors for long.
const DefaultCategoryTTL = 120 * time.Second

// CategoryVector is one row of a user's category snapshot: the category's
// identity together with its normalized representative vector. Keeping the
// vector and its metadata in one struct removes the index-correspondence
// hazard of parallel matrix/metadata slices.
type CategoryVector struct {
	CategoryID int64
	Name       string
	Vector     []float32
}

type categoryEntry struct {
	rows     []CategoryVector
	storedAt time.Time
}

// CategoryCache is a thread-safe per-user TTL cache of category snapshots.
// A snapshot is treated as absent once its age exceeds the TTL; mutations to
// a user's categories must Invalidate that user's entry.
type CategoryCache struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[int64]*categoryEntry
	now     func() time.Time // overridable in tests
}

// NewCategoryCache creates a snapshot cache with the given TTL.
// A non-positive ttl falls back to DefaultCategoryTTL.
func NewCategoryCache(ttl time.Duration) *CategoryCache {
	if ttl <= 0 {
		ttl = DefaultCategoryTTL
	}
	return &CategoryCache{
		ttl:     ttl,
		entries: make(map[int64]*categoryEntry),
		now:     time.Now,
	}
}

// Get returns a copy of the user's snapshot if one is present and within the
// TTL. Stale entries are removed on the spot and reported as absent.
func (c *CategoryCache) Get(userID int64) ([]CategoryVector, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[userID]
	if !ok {
		return nil, false
	}
	if c.now().Sub(entry.storedAt) > c.ttl {
		delete(c.entries, userID)
		return nil, false
	}
	return copyRows(entry.rows), true
}

// Set stores a snapshot for the user, stamped with the current time and
// replacing any prior entry. The cache stores its own copy of rows.
func (c *CategoryCache) Set(userID int64, rows []CategoryVector) {
	stored := copyRows(rows)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[userID] = &categoryEntry{rows: stored, storedAt: c.now()}
}

// Invalidate removes the snapshot for one user. Call after any mutation to
// that user's categories so the next filter call reloads fresh vectors.
func (c *CategoryCache) Invalidate(userID int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, userID)
}

// Clear removes all snapshots.
func (c *CategoryCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[int64]*categoryEntry)
}

// Sweep drops every expired snapshot and reports how many were removed.
// Get already deletes stale entries lazily; Sweep bounds memory for users
// that stop filtering.
func (c *CategoryCache) Sweep() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	removed := 0
	for userID, entry := range c.entries {
		if now.Sub(entry.storedAt) > c.ttl {
			delete(c.entries, userID)
			removed++
		}
	}
	return removed
}

// Len returns the number of cached snapshots, expired or not.
func (c *CategoryCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func copyRows(rows []CategoryVector) []CategoryVector {
	out := make([]CategoryVector, len(rows))
	for i, row := range rows {
		vec := make([]float32, len(row.Vector))
		copy(vec, row.Vector)
		out[i] = CategoryVector{CategoryID: row.CategoryID, Name: row.Name, Vector: vec}
	}
	return out
}
