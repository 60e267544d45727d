package imd

import (
	"context"
	"fmt"
	"sync"

	"github.com/couchcryptid/recharge-feasibility/internal/domain"
	"github.com/couchcryptid/recharge-feasibility/internal/observability"
)

// Fetcher is the weather lookup surface the cache decorates.
type Fetcher interface {
	Fetch(ctx context.Context, lat, lon float64, cityID int) (domain.WeatherMetrics, error)
	Alerts(ctx context.Context, lat, lon float64) ([]domain.WeatherAlert, error)
}

// CachedClient wraps a Fetcher with an in-memory LRU cache keyed on location.
// Alerts are never cached; warnings go stale too fast to be worth it.
type CachedClient struct {
	inner   Fetcher
	cache   *lruCache
	metrics *observability.Metrics
}

// NewCachedClient creates a cache decorator around a weather fetcher.
// metrics may be nil.
func NewCachedClient(inner Fetcher, maxEntries int, metrics *observability.Metrics) *CachedClient {
	return &CachedClient{
		inner:   inner,
		cache:   newLRUCache(maxEntries),
		metrics: metrics,
	}
}

func (c *CachedClient) Fetch(ctx context.Context, lat, lon float64, cityID int) (domain.WeatherMetrics, error) {
	key := fmt.Sprintf("wx:%.2f,%.2f|%d", lat, lon, cityID)
	if wx, ok := c.cache.get(key); ok {
		c.lookup("hit")
		return wx, nil
	}
	c.lookup("miss")

	wx, err := c.inner.Fetch(ctx, lat, lon, cityID)
	if err != nil {
		return wx, err
	}
	// Only cache live data so a degraded lookup can recover on the next call.
	if wx.DataSource != "FALLBACK" {
		c.cache.put(key, wx)
	}
	return wx, nil
}

func (c *CachedClient) Alerts(ctx context.Context, lat, lon float64) ([]domain.WeatherAlert, error) {
	return c.inner.Alerts(ctx, lat, lon)
}

func (c *CachedClient) lookup(result string) {
	if c.metrics != nil {
		c.metrics.WeatherCacheLookups.WithLabelValues(result).Inc()
	}
}

// lruCache is a simple thread-safe LRU cache for weather records.
type lruCache struct {
	maxEntries int
	mu         sync.Mutex
	entries    map[string]*entry
	head       *entry // most recently used
	tail       *entry // least recently used
}

type entry struct {
	key   string
	value domain.WeatherMetrics
	prev  *entry
	next  *entry
}

func newLRUCache(maxEntries int) *lruCache {
	return &lruCache{
		maxEntries: maxEntries,
		entries:    make(map[string]*entry),
	}
}

func (c *lruCache) get(key string) (domain.WeatherMetrics, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return domain.WeatherMetrics{}, false
	}
	c.moveToFront(e)
	return e.value, true
}

func (c *lruCache) put(key string, value domain.WeatherMetrics) {
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
