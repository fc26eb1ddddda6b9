package pipeline

import (
	"context"
	"sync"

	"github.com/couchcryptid/metar-etl/internal/domain"
	"github.com/couchcryptid/metar-etl/internal/metar"
	"github.com/couchcryptid/metar-etl/internal/observability"
)

// CachedDecoder wraps a Decoder with an in-memory LRU cache keyed by the
// report and its decoding hints. Collectors often republish the same report,
// e.g. when several feeds carry one station.
//
// Cached observations are shared between callers and must not be modified.
type CachedDecoder struct {
	inner   Decoder
	cache   *lruCache[*metar.Observation]
	metrics *observability.Metrics
}

// NewCachedDecoder creates a cache decorator around a decoder.
func NewCachedDecoder(inner Decoder, maxEntries int, metrics *observability.Metrics) *CachedDecoder {
	return &CachedDecoder{
		inner:   inner,
		cache:   newLRUCache[*metar.Observation](maxEntries),
		metrics: metrics,
	}
}

func (c *CachedDecoder) Decode(ctx context.Context, report domain.RawReport) (*metar.Observation, error) {
	key, cacheable := report.CacheKey()
	if !cacheable {
		return c.inner.Decode(ctx, report)
	}
	if obs, ok := c.cache.get(key); ok {
		c.metrics.DecodeCache.WithLabelValues("hit").Inc()
		return obs, nil
	}
	c.metrics.DecodeCache.WithLabelValues("miss").Inc()

	obs, err := c.inner.Decode(ctx, report)
	if err != nil {
		return nil, err
	}
	c.cache.put(key, obs)
	return obs, nil
}

// lruCache is a simple thread-safe LRU cache.
type lruCache[V any] struct {
	maxEntries int
	mu         sync.Mutex
	entries    map[string]*entry[V]
	head       *entry[V] // most recently used
	tail       *entry[V] // least recently used
}

type entry[V any] struct {
	key   string
	value V
	prev  *entry[V]
	next  *entry[V]
}

func newLRUCache[V any](maxEntries int) *lruCache[V] {
	return &lruCache[V]{
		maxEntries: maxEntries,
		entries:    make(map[string]*entry[V]),
	}
}

func (c *lruCache[V]) get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		var zero V
		return zero, false
	}
	c.moveToFront(e)
	return e.value, true
}

func (c *lruCache[V]) put(key string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key]; ok {
		e.value = value
		c.moveToFront(e)
		return
	}

	e := &entry[V]{key: key, value: value}
	c.entries[key] = e
	c.addToFront(e)

	for len(c.entries) > c.maxEntries {
		c.evictTail()
	}
}

func (c *lruCache[V]) size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *lruCache[V]) moveToFront(e *entry[V]) {
	if e == c.head {
		return
	}
	c.unlink(e)
	c.addToFront(e)
}

func (c *lruCache[V]) addToFront(e *entry[V]) {
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

func (c *lruCache[V]) unlink(e *entry[V]) {
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

func (c *lruCache[V]) evictTail() {
	if c.tail == nil {
		return
	}
	delete(c.entries, c.tail.key)
	c.unlink(c.tail)
}
