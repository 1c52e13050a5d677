// Package modelcache keeps a bounded set of on-device language models
// resident, evicting the least-recently-used entry once either the count
// or total byte-cost bound is exceeded. It is the production
// local.Loader: on a miss it loads (and, via internal/modelmanager,
// downloads) the requested model and tracks the result for eviction.
//
// Grounded on the teacher's embeddingCache in internal/memory/manager.go,
// which keeps an LRU of query embeddings behind a mutex — generalised
// here to a count-and-cost-bounded cache backed by
// hashicorp/golang-lru/v2 instead of a hand-rolled slice-ordered list,
// since the underlying recency bookkeeping is exactly what that library
// already does.
package modelcache

import (
	"context"
	"fmt"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/haasonsaas/conduit/internal/providers/local"
	"github.com/haasonsaas/conduit/pkg/conduit"
)

// DefaultCountLimit is applied when Config.CountLimit is zero.
const DefaultCountLimit = 3

// CachedModel is one resident model: its loaded container/tokenizer pair
// and its accounting fields. It carries no capability set.
type CachedModel struct {
	Container    local.ModelContainer
	Tokenizer    local.Tokenizer
	LoadedAt     time.Time
	WeightsSize  int64 // bytes; the entry's cost
}

// Loader downloads/loads a model by id, used on cache miss.
type Loader interface {
	Load(ctx context.Context, modelID string) (local.ModelContainer, local.Tokenizer, int64, error)
}

// Stats is the cache's O(count) introspection snapshot.
type Stats struct {
	Count          int
	TotalCost      int64
	CurrentModelID string
	IDs            []string
}

// Config configures a Cache.
type Config struct {
	// CountLimit bounds the number of resident models; 0 uses DefaultCountLimit.
	CountLimit int
	// CostLimit bounds the sum of resident WeightsSize in bytes; 0 = unbounded.
	CostLimit int64
	Loader    Loader
}

// Cache is an LRU, count- and cost-bounded cache of CachedModel keyed by
// model id. It satisfies internal/providers/local.Loader, so a Provider
// can be constructed directly against one.
type Cache struct {
	mu         sync.Mutex
	lru        *lru.Cache[string, *CachedModel]
	costLimit  int64
	totalCost  int64
	loader     Loader
	currentID  string
}

// New constructs a Cache. The golang-lru instance is sized to
// countLimit so recency tracking and count-eviction are the same
// operation; cost-eviction is layered on top by this package.
func New(cfg Config) (*Cache, error) {
	if cfg.Loader == nil {
		return nil, fmt.Errorf("modelcache: Loader is required")
	}
	countLimit := cfg.CountLimit
	if countLimit <= 0 {
		countLimit = DefaultCountLimit
	}

	c := &Cache{costLimit: cfg.CostLimit, loader: cfg.Loader}
	evictCallback := func(key string, value *CachedModel) {
		c.totalCost -= value.WeightsSize
	}
	inner, err := lru.NewWithEvict(countLimit, evictCallback)
	if err != nil {
		return nil, fmt.Errorf("modelcache: %w", err)
	}
	c.lru = inner
	return c, nil
}

// Load implements internal/providers/local.Loader: resolve modelID to a
// resident container/tokenizer, loading on miss via the configured
// Loader and evicting to fit afterward.
func (c *Cache) Load(ctx context.Context, modelID string) (local.ModelContainer, local.Tokenizer, error) {
	if entry, ok := c.get(modelID); ok {
		return entry.Container, entry.Tokenizer, nil
	}

	container, tokenizer, size, err := c.loader.Load(ctx, modelID)
	if err != nil {
		if convErr, ok := err.(*conduit.Error); ok {
			return nil, nil, convErr
		}
		return nil, nil, conduit.ModelNotCached(err.Error())
	}

	entry := &CachedModel{
		Container:   container,
		Tokenizer:   tokenizer,
		LoadedAt:    time.Now(),
		WeightsSize: size,
	}
	c.put(modelID, entry)
	return container, tokenizer, nil
}

// get returns the entry for id, reaping the tracking if the underlying
// cache already evicted it (e.g. under process memory pressure) — the
// "detect and reap" rule of the model-cache contract.
func (c *Cache) get(id string) (*CachedModel, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.lru.Get(id)
	if !ok {
		return nil, false
	}
	if entry == nil {
		c.lru.Remove(id)
		return nil, false
	}
	return entry, true
}

// contains verifies actual presence the same way get does, without
// returning the entry.
func (c *Cache) contains(id string) bool {
	_, ok := c.get(id)
	return ok
}

// put inserts or replaces id's entry, then evicts least-recently-used
// entries until both the count bound (enforced by the underlying LRU)
// and the cost bound are satisfied.
func (c *Cache) put(id string, entry *CachedModel) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if old, ok := c.lru.Peek(id); ok {
		c.totalCost -= old.WeightsSize
	}
	c.lru.Add(id, entry)
	c.totalCost += entry.WeightsSize

	// Never evict the last remaining entry over a cost overrun alone — a
	// single oversized model with nothing else resident has nowhere left
	// to shrink to.
	for c.costLimit > 0 && c.totalCost > c.costLimit && c.lru.Len() > 1 {
		// RemoveOldest fires the onEvict callback registered in New, which
		// already subtracts the evicted entry's cost — don't subtract again.
		evictedKey, _, ok := c.lru.RemoveOldest()
		if !ok {
			break
		}
		if evictedKey == c.currentID {
			c.currentID = ""
		}
	}
}

// setCurrentModel records the most-recently-used model id for
// introspection via Stats.
func (c *Cache) setCurrentModel(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.currentID = id
}

// SetCurrentModel is the exported form of setCurrentModel, called by
// providers after a successful generate/stream against modelID.
func (c *Cache) SetCurrentModel(modelID string) {
	c.setCurrentModel(modelID)
}

// Stats returns an O(count) snapshot of resident models.
func (c *Cache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	keys := c.lru.Keys()
	ids := make([]string, 0, len(keys))
	for _, k := range keys {
		if c.lru.Contains(k) {
			ids = append(ids, k)
		}
	}
	return Stats{
		Count:          len(ids),
		TotalCost:      c.totalCost,
		CurrentModelID: c.currentID,
		IDs:            ids,
	}
}

// Remove evicts id immediately, releasing its entry's resources the same
// way natural LRU eviction would.
func (c *Cache) Remove(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	// lru.Remove fires the onEvict callback registered in New, which
	// already subtracts the entry's cost — don't subtract again here.
	c.lru.Remove(id)
	if id == c.currentID {
		c.currentID = ""
	}
}
