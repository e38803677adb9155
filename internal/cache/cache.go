// Package cache memoizes the results of upstream calls for the lifetime of the process.

package cache

import (
	"bvvassist-backend/internal/components/assert"
	"bvvassist-backend/internal/components/metrics"
	"bvvassist-backend/internal/components/telemetry"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/sync/singleflight"
)

const (
	report_cache_get        = "cache.get"
	report_cache_invalidate = "cache.invalidate"
	report_cache_purge      = "cache.purge"
)

// Producer computes the value for a key on a cache miss.
type Producer[V any] func(ctx context.Context) (V, error)

// Options configures a Cache.
type Options struct {
	// Name is used as the telemetry namespace, ex. "fetch" or "collect".
	Name string
	// Size bounds the number of entries, 0 means unbounded.
	Size int
	// TTL expires entries after a duration, 0 means entries live until invalidated.
	TTL     time.Duration
	Metrics *metrics.Metrics
}

// Cache memoizes successful producer results per key.
//
// Only values that were returned without an error are stored, a failed producer call is
// retried on the next Get. Concurrent Gets for one key share a single producer call.
// Stored values are handed out as-is, callers must treat them as read-only.
type Cache[V any] struct {
	store   *expirable.LRU[string, V]
	group   *singleflight.Group
	tel     telemetry.API
	metrics *metrics.Metrics
}

func New[V any](tel telemetry.API, opts Options) *Cache[V] {
	assert.NotNil(tel)
	assert.NotEmptyStr(opts.Name)

	return &Cache[V]{
		// a zero ttl disables expiry and with it the background eviction goroutine
		store:   expirable.NewLRU[string, V](opts.Size, nil, opts.TTL),
		group:   &singleflight.Group{},
		tel:     telemetry.NewScopedAPI(fmt.Sprintf("cache_%s", opts.Name), tel),
		metrics: opts.Metrics,
	}
}

// Key derives a cache key from the full list of call arguments.
func Key(parts ...any) string {
	rendered := make([]string, len(parts))
	for i, p := range parts {
		rendered[i] = fmt.Sprintf("%v", p)
	}
	return strings.Join(rendered, "\x1f")
}

// Get returns the stored value for key, or calls producer and stores its result when it succeeds.
//
// The producer is detached from the cancellation of ctx since other callers may be waiting on
// the same call. A cancelled caller stops waiting and gets ctx.Err(), the producer runs on.
func (c *Cache[V]) Get(ctx context.Context, key string, producer Producer[V]) (V, error) {
	var zero V

	cached, hit := c.store.Get(key)
	if hit {
		c.metrics.IncrementCacheLookup("hit")
		return cached, nil
	}
	c.metrics.IncrementCacheLookup("miss")

	detached := context.WithoutCancel(ctx)
	results := c.group.DoChan(key, func() (any, error) {
		// another caller may have populated the key while this one waited for the group
		cached, hit := c.store.Get(key)
		if hit {
			return cached, nil
		}

		value, err := producer(detached)
		if err != nil {
			return nil, err
		}
		c.store.Add(key, value)
		return value, nil
	})

	select {
	case <-ctx.Done():
		c.metrics.IncrementCacheLookup("error")
		c.tel.ReportDebug(report_cache_get, key, ctx.Err())
		return zero, ctx.Err()
	case res := <-results:
		if res.Err != nil {
			c.metrics.IncrementCacheLookup("error")
			c.tel.ReportDebug(report_cache_get, key, res.Err)
			return zero, res.Err
		}
		if res.Shared {
			c.tel.ReportDebug(report_cache_get, key, "shared in-flight result")
		}
		return res.Val.(V), nil
	}
}

// Peek returns the stored value for key without producing it.
func (c *Cache[V]) Peek(key string) (V, bool) {
	return c.store.Peek(key)
}

// Invalidate drops a single key, the next Get for it calls its producer again.
func (c *Cache[V]) Invalidate(key string) bool {
	removed := c.store.Remove(key)
	c.tel.ReportDebug(report_cache_invalidate, key, removed)
	return removed
}

// Purge drops every stored value.
func (c *Cache[V]) Purge() {
	n := c.store.Len()
	c.store.Purge()
	c.tel.ReportCount(report_cache_purge, int64(n))
}

func (c *Cache[V]) Len() int {
	return c.store.Len()
}
