package cachemanager

import (
	"context"
	"sync/atomic"
	"time"
)

// Loader produces the value for key on a cache miss.
type Loader[K comparable, V any] func(ctx context.Context, key K) (V, error)

// ReadThrough answers from cache and falls back to load on a miss, storing
// successful results for ttl. Errors are never cached.
type ReadThrough[K comparable, V any] struct {
	cache  Cache[K, V]
	load   Loader[K, V]
	ttl    time.Duration
	loads  atomic.Int64
	errors atomic.Int64
}

func NewReadThrough[K comparable, V any](cache Cache[K, V], load Loader[K, V], ttl time.Duration) *ReadThrough[K, V] {
	return &ReadThrough[K, V]{cache: cache, load: load, ttl: ttl}
}

func (r *ReadThrough[K, V]) Get(ctx context.Context, key K) (V, error) {
	if value, ok := r.cache.Get(ctx, key); ok {
		return value, nil
	}

	r.loads.Add(1)
	value, err := r.load(ctx, key)
	if err != nil {
		r.errors.Add(1)
		return value, err
	}

	r.cache.Set(ctx, key, value, r.ttl)
	return value, nil
}

// Invalidate drops keys, or every entry when none are given.
func (r *ReadThrough[K, V]) Invalidate(ctx context.Context, keys ...K) error {
	if len(keys) == 0 {
		return r.cache.Flush(ctx)
	}
	return r.cache.Delete(ctx, keys...)
}

// Len returns the number of cached entries.
func (r *ReadThrough[K, V]) Len() int {
	return r.cache.Len()
}

// Stats merges the cache's hit counts, when it keeps any, with load counts.
func (r *ReadThrough[K, V]) Stats() Stats {
	var s Stats
	if sc, ok := r.cache.(interface{ Stats() Stats }); ok {
		s = sc.Stats()
	}
	s.Loads = r.loads.Load()
	s.Errors = r.errors.Load()
	return s
}
