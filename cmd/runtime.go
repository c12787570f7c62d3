package cmd

import (
	"context"
	"fmt"

	"github.com/zjrosen/xwidget/internal/config"
	"github.com/zjrosen/xwidget/internal/flags"
	"github.com/zjrosen/xwidget/internal/lifecycle"
	"github.com/zjrosen/xwidget/internal/log"
	"github.com/zjrosen/xwidget/internal/resolver"
	"github.com/zjrosen/xwidget/internal/tracing"
	"github.com/zjrosen/xwidget/internal/widgets"
)

// runtime is the wiring shared by the commands: the demo widget table behind
// the configured resolver stack, a lifecycle manager and tracing.
type runtime struct {
	static   *resolver.Static
	cached   *resolver.Cached
	manager  *lifecycle.Manager
	flags    *flags.Registry
	provider *tracing.Provider
}

func newRuntime(cfg config.Config, extra ...lifecycle.Option) (*runtime, error) {
	static := resolver.NewStatic()
	if err := widgets.Register(static); err != nil {
		return nil, err
	}
	fl := flags.New(cfg.Flags)

	// Lookup order: cache, then a shared in-flight load, then the
	// (optionally delayed) static table.
	var r resolver.Resolver = resolver.Latency(static, cfg.Resolver.Latency)
	if fl.Enabled(flags.FlagResolverDedupe) {
		r = resolver.NewDedupe(r)
	}
	var cached *resolver.Cached
	if cfg.Resolver.Cache {
		cached = resolver.NewCached(r, cfg.Resolver.CacheTTL, cfg.Resolver.CleanupInterval)
		r = cached
	}

	provider, err := tracing.NewProvider(cfg.Tracing)
	if err != nil {
		return nil, fmt.Errorf("initializing tracing: %w", err)
	}

	opts := append(cfg.ManagerOptions(), lifecycle.WithTracer(provider.Tracer()))
	opts = append(opts, extra...)
	return &runtime{
		static:   static,
		cached:   cached,
		manager:  lifecycle.New(r, opts...),
		flags:    fl,
		provider: provider,
	}, nil
}

// invalidate drops cached factories so the next walk resolves afresh.
func (rt *runtime) invalidate(ctx context.Context) error {
	if rt.cached == nil {
		return nil
	}
	stats := rt.cached.Stats()
	log.Debug(log.CatCache, "invalidating factory cache",
		"entries", rt.cached.Len(), "hits", stats.Hits, "misses", stats.Misses, "loads", stats.Loads)
	return rt.cached.Invalidate(ctx)
}

func (rt *runtime) Close(ctx context.Context) error {
	rt.manager.Close()
	return rt.provider.Shutdown(ctx)
}
