// Package embedcache caches text-embedding vectors keyed by the prompt
// pair and model that produced them, bounded by both an entry count and
// a total byte budget.
//
// Directly grounded on the teacher's embeddingCache in
// internal/memory/manager.go: a mutex-guarded map plus an insertion-order
// slice, evicting the oldest key once capacity is exceeded. Generalised
// here to a composite key, a byte-cost bound alongside the count bound,
// and the modelDidChange full-clear invariant (an embedding is meaningless
// once the model that produced it is no longer active).
package embedcache

import "sync"

// DefaultCountLimit and DefaultByteLimit are applied when Config leaves
// either at zero.
const (
	DefaultCountLimit = 50
	DefaultByteLimit  = 100 << 20 // 100 MiB
)

// Key identifies one cached embedding request.
type Key struct {
	Prompt         string
	NegativePrompt string
	ModelID        string
}

// TextEmbeddingEntry is one cached embedding and its byte cost.
type TextEmbeddingEntry struct {
	Embedding []float32
	ByteCost  int64
}

// Config configures a Cache.
type Config struct {
	CountLimit int
	ByteLimit  int64
}

// Cache is a count- and byte-bounded cache over Key -> TextEmbeddingEntry.
// Entries are evicted in insertion order; Get does not refresh an entry.
type Cache struct {
	mu         sync.Mutex
	items      map[Key]TextEmbeddingEntry
	order      []Key
	countLimit int
	byteLimit  int64
	totalBytes int64
	currentID  string
}

// New constructs a Cache.
func New(cfg Config) *Cache {
	countLimit := cfg.CountLimit
	if countLimit <= 0 {
		countLimit = DefaultCountLimit
	}
	byteLimit := cfg.ByteLimit
	if byteLimit <= 0 {
		byteLimit = DefaultByteLimit
	}
	return &Cache{
		items:      make(map[Key]TextEmbeddingEntry),
		countLimit: countLimit,
		byteLimit:  byteLimit,
	}
}

// ShapeCost computes cost = product(shape) * sizeof(dtype) for a
// dtypeBytes-wide element type (4 for float32, 8 for float64).
func ShapeCost(shape []int, dtypeBytes int64) int64 {
	cost := dtypeBytes
	for _, dim := range shape {
		cost *= int64(dim)
	}
	return cost
}

// Get returns key's cached entry, if any.
func (c *Cache) Get(key Key) (TextEmbeddingEntry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.items[key]
	return v, ok
}

// Put inserts key's embedding, evicting oldest entries until both the
// count and byte bounds are satisfied.
func (c *Cache) Put(key Key, embedding []float32, byteCost int64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if old, exists := c.items[key]; exists {
		c.totalBytes -= old.ByteCost
	} else {
		c.order = append(c.order, key)
	}
	c.items[key] = TextEmbeddingEntry{Embedding: embedding, ByteCost: byteCost}
	c.totalBytes += byteCost

	for (len(c.order) > c.countLimit || c.totalBytes > c.byteLimit) && len(c.order) > 0 {
		oldest := c.order[0]
		c.order = c.order[1:]
		if v, ok := c.items[oldest]; ok {
			c.totalBytes -= v.ByteCost
			delete(c.items, oldest)
		}
	}
}

// ModelDidChange clears the entire cache when newID differs from the
// currently active model — an embedding is meaningless under a different
// model, so nothing is worth keeping across the switch.
func (c *Cache) ModelDidChange(newID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if newID == c.currentID {
		return
	}
	c.items = make(map[Key]TextEmbeddingEntry)
	c.order = nil
	c.totalBytes = 0
	c.currentID = newID
}

// Len reports the number of cached entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.order)
}
