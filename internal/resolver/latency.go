package resolver

import (
	"context"
	"time"

	"github.com/zjrosen/xwidget/internal/widget"
)

// Latency delays every resolution by d before delegating, emulating a slow
// module loader. The wait is abandoned when ctx is cancelled.
func Latency(next Resolver, d time.Duration) Resolver {
	if d <= 0 {
		return next
	}
	return Func(func(ctx context.Context, path string) (widget.Factory, error) {
		timer := time.NewTimer(d)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-timer.C:
		}
		return next.Resolve(ctx, path)
	})
}
