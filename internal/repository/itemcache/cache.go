package itemcache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/kailas-cloud/zotsearch/internal/domain"
	"github.com/kailas-cloud/zotsearch/internal/domain/item"
)

// negativeCacheSize bounds remembered "not found" keys.
const negativeCacheSize = 256

// source is the consumer interface for single-item lookups (ISP).
type source interface {
	Item(ctx context.Context, key string) (item.Item, error)
}

// Cache fronts single-item lookups with an expirable LRU.
// Keys reported missing by the source are remembered separately so repeated
// lookups of deleted items do not hit the remote API.
type Cache struct {
	src      source
	items    *expirable.LRU[string, item.Item]
	notFound *expirable.LRU[string, struct{}]
	total    *prometheus.CounterVec
}

// New creates a cache of at most size items, each kept for ttl.
// total is a counter vec with label "result" ("hit"/"miss"); nil disables it.
func New(src source, size int, ttl time.Duration, total *prometheus.CounterVec) *Cache {
	return &Cache{
		src:      src,
		items:    expirable.NewLRU[string, item.Item](size, nil, ttl),
		notFound: expirable.NewLRU[string, struct{}](negativeCacheSize, nil, ttl),
		total:    total,
	}
}

// Item returns the cached item or fetches it from the source.
func (c *Cache) Item(ctx context.Context, key string) (item.Item, error) {
	if it, ok := c.items.Get(key); ok {
		c.inc("hit")
		return it, nil
	}
	if _, ok := c.notFound.Get(key); ok {
		c.inc("hit")
		return item.Item{}, domain.ErrItemNotFound
	}
	c.inc("miss")

	it, err := c.src.Item(ctx, key)
	if err != nil {
		if errors.Is(err, domain.ErrItemNotFound) {
			c.notFound.Add(key, struct{}{})
		}
		return item.Item{}, fmt.Errorf("fetch item %s: %w", key, err)
	}
	c.items.Add(key, it)
	return it, nil
}

// Invalidate drops key from both caches.
func (c *Cache) Invalidate(key string) {
	c.items.Remove(key)
	c.notFound.Remove(key)
}

func (c *Cache) inc(result string) {
	if c.total != nil {
		c.total.WithLabelValues(result).Inc()
	}
}
