// Package resolver maps widget paths to factories. A Resolver is injected
// into the lifecycle manager at configuration time; the wrappers here add
// caching, load deduplication, artificial latency and fallback chains.
package resolver

import (
	"context"
	"errors"
	"fmt"

	"github.com/zjrosen/xwidget/internal/widget"
)

// ErrNotFound is returned when no factory is registered for a path.
var ErrNotFound = errors.New("widget path not found")

// Resolver maps a path identifier to a widget factory.
type Resolver interface {
	Resolve(ctx context.Context, path string) (widget.Factory, error)
}

// Func adapts an ordinary function to a Resolver.
type Func func(ctx context.Context, path string) (widget.Factory, error)

// Resolve calls f.
func (f Func) Resolve(ctx context.Context, path string) (widget.Factory, error) {
	return f(ctx, path)
}

// Chain tries each resolver in order and returns the first factory found.
// Only ErrNotFound moves on to the next resolver; other errors stop the chain.
func Chain(resolvers ...Resolver) Resolver {
	return Func(func(ctx context.Context, path string) (widget.Factory, error) {
		for _, r := range resolvers {
			f, err := r.Resolve(ctx, path)
			if err == nil {
				return f, nil
			}
			if !errors.Is(err, ErrNotFound) {
				return nil, err
			}
		}
		return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
	})
}
