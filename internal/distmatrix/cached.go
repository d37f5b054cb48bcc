package distmatrix

import (
	"context"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// CachedQuerier wraps a Querier with an in-memory memo scoped to the
// process lifetime. It avoids repeating identical (origin, group)
// queries within a run; nothing is persisted across runs.
type CachedQuerier struct {
	inner Querier
	cache *gocache.Cache
}

// NewCachedQuerier creates a memo decorator around a querier
func NewCachedQuerier(inner Querier, ttl time.Duration) *CachedQuerier {
	return &CachedQuerier{
		inner: inner,
		cache: gocache.New(ttl, 2*ttl),
	}
}

func (c *CachedQuerier) Query(ctx context.Context, origin string, destinations []string) ([]Element, error) {
	key := origin + ">" + strings.Join(destinations, "|")
	if cached, found := c.cache.Get(key); found {
		return cached.([]Element), nil
	}

	elements, err := c.inner.Query(ctx, origin, destinations)
	if err != nil {
		// Only successful responses are memoized so transient failures
		// stay retryable.
		return nil, err
	}

	c.cache.Set(key, elements, gocache.DefaultExpiration)
	return elements, nil
}
