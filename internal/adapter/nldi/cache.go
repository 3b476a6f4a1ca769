package nldi

import (
	"context"
	"fmt"
	"sync"

	"github.com/bamaecohydro/NWM-Sipsey/internal/domain"
	"github.com/bamaecohydro/NWM-Sipsey/internal/observability"
)

// CachedResolver wraps a FlowlineResolver with an in-memory LRU cache.
// Site catalogs often repeat coordinates across runs of the same study area,
// and the NLDI service is slow enough to be worth sparing.
type CachedResolver struct {
	inner   domain.FlowlineResolver
	cache   *lruCache
	metrics *observability.Metrics
}

// NewCachedResolver creates a cache decorator around a resolver.
func NewCachedResolver(inner domain.FlowlineResolver, maxEntries int, metrics *observability.Metrics) *CachedResolver {
	return &CachedResolver{
		inner:   inner,
		cache:   newLRUCache(maxEntries),
		metrics: metrics,
	}
}

func (c *CachedResolver) FlowlineID(ctx context.Context, lat, lon float64, crs string) (int64, error) {
	key := fmt.Sprintf("%.6f,%.6f|%s", lat, lon, crs)
	if id, ok := c.cache.get(key); ok {
		c.metrics.ResolveCache.WithLabelValues("hit").Inc()
		return id, nil
	}
	c.metrics.ResolveCache.WithLabelValues("miss").Inc()

	id, err := c.inner.FlowlineID(ctx, lat, lon, crs)
	if err != nil {
		// Failures are not cached so transient NLDI trouble can be retried
		// on the next run.
		return 0, err
	}
	c.cache.put(key, id)
	return id, nil
}

// lruCache is a simple thread-safe LRU cache for resolved COMIDs.
type lruCache struct {
	maxEntries int
	mu         sync.Mutex
	entries    map[string]*entry
	head       *entry // most recently used
	tail       *entry // least recently used
}

type entry struct {
	key   string
	value int64
	prev  *entry
	next  *entry
}

func newLRUCache(maxEntries int) *lruCache {
	return &lruCache{
		maxEntries: maxEntries,
		entries:    make(map[string]*entry),
	}
}

func (c *lruCache) get(key string) (int64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return 0, false
	}
	c.moveToFront(e)
	return e.value, true
}

func (c *lruCache) put(key string, value int64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key]; ok {
		e.value = value
		c.moveToFront(e)
		return
	}

	e := &entry{key: key, value: value}
	c.entries[key] = e
	c.addToFront(e)

	if len(c.entries) > c.maxEntries {
		c.evictTail()
	}
}

func (c *lruCache) moveToFront(e *entry) {
	if e == c.head {
		return
	}
	c.remove(e)
	c.addToFront(e)
}

func (c *lruCache) addToFront(e *entry) {
	e.next = c.head
	e.prev = nil
	if c.head != nil {
		c.head.prev = e
	}
	c.head = e
	if c.tail == nil {
		c.tail = e
	}
}

func (c *lruCache) remove(e *entry) {
	if e.prev != nil {
		e.prev.next = e.next
	} else {
		c.head = e.next
	}
	if e.next != nil {
		e.next.prev = e.prev
	} else {
		c.tail = e.prev
	}
}

func (c *lruCache) evictTail() {
	if c.tail == nil {
		return
	}
	delete(c.entries, c.tail.key)
	c.remove(c.tail)
}
