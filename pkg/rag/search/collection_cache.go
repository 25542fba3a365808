package search

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"
)

const collectionsKey = "collections"

// CachedStore caches the collection list of the wrapped Store. Indexing a
// document calls Invalidate so new collections show up immediately.
type CachedStore struct {
	Store
	cache *cache.Cache
}

func NewCachedStore(inner Store, ttl time.Duration) *CachedStore {
	return &CachedStore{
		Store: inner,
		cache: cache.New(ttl, 2*ttl),
	}
}

func (c *CachedStore) Collections(ctx context.Context) ([]string, error) {
	if v, ok := c.cache.Get(collectionsKey); ok {
		return append([]string(nil), v.([]string)...), nil
	}
	collections, err := c.Store.Collections(ctx)
	if err != nil {
		return nil, err
	}
	if len(collections) > 0 {
		c.cache.SetDefault(collectionsKey, collections)
	}
	return append([]string(nil), collections...), nil
}

func (c *CachedStore) Invalidate() {
	c.cache.Delete(collectionsKey)
}
