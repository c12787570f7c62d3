package widgets

import (
	"context"

	"github.com/zjrosen/xwidget/internal/widget"
)

// NewBroken builds a widget whose Init always fails after acquiring a
// marker, which exercises cleanup of partially initialized widgets.
func NewBroken(node widget.Node) (widget.Widget, error) {
	attrs, err := attributes(node)
	if err != nil {
		return nil, err
	}
	return widget.NewBase(node, func(ctx context.Context, scope *widget.Scope) error {
		marker(attrs, scope, "cross")
		return ErrBroken
	}, nil), nil
}
