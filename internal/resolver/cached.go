package resolver

import (
	"context"
	"time"

	"github.com/zjrosen/xwidget/internal/cachemanager"
	"github.com/zjrosen/xwidget/internal/widget"
)

// Cached memoises successful resolutions for ttl. Failed resolutions are not
// cached, so a path that starts resolving later is picked up on the next walk.
type Cached struct {
	rt *cachemanager.ReadThrough[string, widget.Factory]
}

// NewCached wraps next with a TTL cache. A non-positive ttl keeps entries
// until Invalidate is called.
func NewCached(next Resolver, ttl, cleanupInterval time.Duration) *Cached {
	if ttl <= 0 {
		ttl = cachemanager.NoExpiration
	}
	if cleanupInterval <= 0 {
		cleanupInterval = cachemanager.DefaultCleanupInterval
	}
	cache := cachemanager.NewMemory[string, widget.Factory]("widget-factories", ttl, cleanupInterval)
	return &Cached{
		rt: cachemanager.NewReadThrough[string, widget.Factory](cache, next.Resolve, ttl),
	}
}

// Resolve returns the cached factory for path or loads it from the wrapped resolver.
func (c *Cached) Resolve(ctx context.Context, path string) (widget.Factory, error) {
	return c.rt.Get(ctx, path)
}

// Invalidate forgets cached factories. With no paths the whole cache is flushed.
func (c *Cached) Invalidate(ctx context.Context, paths ...string) error {
	return c.rt.Invalidate(ctx, paths...)
}

// Len returns the number of cached factories.
func (c *Cached) Len() int {
	return c.rt.Len()
}

// Stats reports cache hits, misses and loads since creation.
func (c *Cached) Stats() cachemanager.Stats {
	return c.rt.Stats()
}
