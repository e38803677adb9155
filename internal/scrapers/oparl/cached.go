package oparl

import (
	"bvvassist-backend/internal/cache"
	"bvvassist-backend/internal/components/assert"
	"context"
	"encoding/json"
)

// CachedClient memoizes single fetches by url and page collections by start url and retry policy.
// Partial collections are memoized like complete ones, failed fetches are not memoized at all.
type CachedClient struct {
	inner   API
	fetches *cache.Cache[json.RawMessage]
	pages   *cache.Cache[[]json.RawMessage]
}

func NewCachedClient(inner API, fetches *cache.Cache[json.RawMessage], pages *cache.Cache[[]json.RawMessage]) CachedClient {
	assert.NotNil(inner)
	assert.NotNil(fetches)
	assert.NotNil(pages)

	return CachedClient{
		inner:   inner,
		fetches: fetches,
		pages:   pages,
	}
}

func (c CachedClient) Fetch(ctx context.Context, url string) (json.RawMessage, error) {
	return c.fetches.Get(ctx, cache.Key("fetch", url), func(ctx context.Context) (json.RawMessage, error) {
		return c.inner.Fetch(ctx, url)
	})
}

func (c CachedClient) CollectPages(ctx context.Context, startUrl string, policy RetryPolicy) ([]json.RawMessage, error) {
	return c.pages.Get(ctx, cache.Key("collect", startUrl, policy), func(ctx context.Context) ([]json.RawMessage, error) {
		return c.inner.CollectPages(ctx, startUrl, policy)
	})
}

// Purge drops every memoized fetch and collection.
func (c CachedClient) Purge() {
	c.fetches.Purge()
	c.pages.Purge()
}
