// Package cache holds the two process-wide caches of the filtering engine:
// a global LRU cache of text embeddings and a per-user TTL cache of category
// vector snapshots. Both caches exclusively own their stored vectors and only
// ever hand out copies, so no caller can observe another goroutine's mutation
// of cached state.
package cache

import (
	"container/list"
	"sync"
)

// DefaultEmbeddingCacheSize is the default entry cap for the embedding cache.
const DefaultEmbeddingCacheSize = 2048

type embeddingEntry struct {
	text   string
	vector []float32
}

// EmbeddingCache is a thread-safe LRU cache mapping input text to its
// normalized embedding. Embeddings are a pure function of text, so entries
// never expire; they are only evicted when the cache is over capacity.
type EmbeddingCache struct {
	mu       sync.Mutex
	maxItems int
	order    *list.List               // front = most recently used
	entries  map[string]*list.Element // text -> *embeddingEntry element
}

// NewEmbeddingCache creates an LRU cache holding at most maxItems embeddings.
func NewEmbeddingCache(maxItems int) *EmbeddingCache {
	if maxItems <= 0 {
		maxItems = DefaultEmbeddingCacheSize
	}
	return &EmbeddingCache{
		maxItems: maxItems,
		order:    list.New(),
		entries:  make(map[string]*list.Element),
	}
}

// Get returns a copy of the cached embedding for text and marks the entry
// most recently used.
func (c *EmbeddingCache) Get(text string) ([]float32, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.entries[text]
	if !ok {
		return nil, false
	}
	c.order.MoveToFront(el)

	stored := el.Value.(*embeddingEntry).vector
	out := make([]float32, len(stored))
	copy(out, stored)
	return out, true
}

// Put inserts or overwrites the embedding for text, making it the most
// recently used entry. The least recently used entry is evicted when the
// cache exceeds its capacity. The cache stores its own copy of vec.
func (c *EmbeddingCache) Put(text string, vec []float32) {
	stored := make([]float32, len(vec))
	copy(stored, vec)

	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.entries[text]; ok {
		el.Value.(*embeddingEntry).vector = stored
		c.order.MoveToFront(el)
		return
	}

	c.entries[text] = c.order.PushFront(&embeddingEntry{text: text, vector: stored})
	if c.order.Len() > c.maxItems {
		oldest := c.order.Back()
		c.order.Remove(oldest)
		delete(c.entries, oldest.Value.(*embeddingEntry).text)
	}
}

// Len returns the number of cached embeddings.
func (c *EmbeddingCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

// Clear empties the cache.
func (c *EmbeddingCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.order.Init()
	c.entries = make(map[string]*list.Element)
}
