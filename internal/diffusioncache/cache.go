// Package diffusioncache keeps a small number of loaded diffusion
// pipelines resident, evicting the least-recently-used pipeline and
// releasing its GPU resources once the capacity bound is exceeded.
//
// Grounded on the same teacher pattern as internal/modelcache (the
// embeddingCache in internal/memory/manager.go), generalised to a
// composite (modelID, variant) key and an eviction sink instead of a
// plain delete, since a diffusion pipeline holds GPU memory that must be
// released explicitly.
package diffusioncache

import (
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultCapacity is applied when Config.Capacity is zero. Each entry
// typically costs 2-8 GiB of GPU memory, so the default is deliberately
// small.
const DefaultCapacity = 2

// Key identifies one loaded pipeline variant of a model.
type Key struct {
	ModelID string
	Variant string
}

// Pipeline is the opaque handle to a loaded diffusion pipeline. Release
// is invoked on eviction to free GPU resources; it must not block the
// caller that triggered the eviction.
type Pipeline interface {
	Release()
}

// DiffusionEntry is one resident pipeline and its last access time.
type DiffusionEntry struct {
	Container    Pipeline
	LastAccessed time.Time
}

// Config configures a Cache.
type Config struct {
	// Capacity bounds the number of resident pipelines; 0 uses DefaultCapacity.
	Capacity int
}

// Cache is an LRU over (modelID, variant) -> DiffusionEntry that releases
// GPU resources on eviction.
type Cache struct {
	mu  sync.Mutex
	lru *lru.Cache[Key, *DiffusionEntry]
}

// New constructs a Cache.
func New(cfg Config) (*Cache, error) {
	capacity := cfg.Capacity
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	inner, err := lru.NewWithEvict(capacity, func(key Key, value *DiffusionEntry) {
		value.Container.Release()
	})
	if err != nil {
		return nil, err
	}
	return &Cache{lru: inner}, nil
}

// Get returns the entry for key, reaping the tracking if the underlying
// cache already evicted it.
func (c *Cache) Get(key Key) (*DiffusionEntry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.lru.Get(key)
	if !ok {
		return nil, false
	}
	if entry == nil {
		c.lru.Remove(key)
		return nil, false
	}
	entry.LastAccessed = time.Now()
	return entry, true
}

// Put inserts or replaces key's entry, evicting the least-recently-used
// pipeline if capacity is exceeded. Any replaced entry is released
// before the new one is installed.
func (c *Cache) Put(key Key, container Pipeline) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if old, ok := c.lru.Peek(key); ok {
		old.Container.Release()
	}
	c.lru.Add(key, &DiffusionEntry{Container: container, LastAccessed: time.Now()})
}

// Remove evicts key immediately, releasing its pipeline.
func (c *Cache) Remove(key Key) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lru.Remove(key)
}

// Len reports the number of resident pipelines.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Len()
}
