package resolver

import (
	"context"

	"golang.org/x/sync/singleflight"

	"github.com/zjrosen/xwidget/internal/log"
	"github.com/zjrosen/xwidget/internal/widget"
)

// Dedupe collapses concurrent resolutions of the same path into one call to
// the wrapped resolver. Every waiter receives the same factory or error.
type Dedupe struct {
	next Resolver
	sf   singleflight.Group
}

// NewDedupe wraps next.
func NewDedupe(next Resolver) *Dedupe {
	return &Dedupe{next: next}
}

// Resolve resolves path, sharing the result with concurrent callers.
// The first caller's context governs the shared load.
func (d *Dedupe) Resolve(ctx context.Context, path string) (widget.Factory, error) {
	v, err, shared := d.sf.Do(path, func() (any, error) {
		return d.next.Resolve(ctx, path)
	})
	if shared {
		log.Debug(log.CatResolver, "resolution shared", "path", path)
	}
	if err != nil {
		return nil, err
	}
	return v.(widget.Factory), nil
}
