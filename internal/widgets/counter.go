package widgets

import (
	"context"
	"strconv"
	"sync"

	"github.com/zjrosen/xwidget/internal/widget"
)

// Counter keeps a count in the count attribute. Click and increment events
// add one, decrement subtracts one.
type Counter struct {
	*widget.Base
	attrs widget.AttributeSetter

	mu    sync.Mutex
	count int
}

// NewCounter is the factory for PathCounter.
func NewCounter(node widget.Node) (widget.Widget, error) {
	attrs, err := attributes(node)
	if err != nil {
		return nil, err
	}
	c := &Counter{attrs: attrs}
	c.Base = widget.NewBase(node, c.setup, widget.Handlers{
		"click":     c.increment,
		"increment": c.increment,
		"decrement": c.decrement,
	})
	return c, nil
}

func (c *Counter) setup(ctx context.Context, scope *widget.Scope) error {
	marker(c.attrs, scope, "square")

	start := 0
	if v, ok := c.attrs.Attr("start"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return err
		}
		start = n
	}
	c.set(start)
	scope.OnDestroy(func() { c.attrs.RemoveAttr(AttrCount) })
	return nil
}

// Count returns the current count.
func (c *Counter) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.count
}

func (c *Counter) increment(widget.Event) { c.add(1) }
func (c *Counter) decrement(widget.Event) { c.add(-1) }

func (c *Counter) add(delta int) {
	c.mu.Lock()
	c.count += delta
	n := c.count
	c.mu.Unlock()
	c.attrs.SetAttr(AttrCount, strconv.Itoa(n))
}

func (c *Counter) set(n int) {
	c.mu.Lock()
	c.count = n
	c.mu.Unlock()
	c.attrs.SetAttr(AttrCount, strconv.Itoa(n))
}
