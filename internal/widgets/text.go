package widgets

import (
	"context"

	"github.com/zjrosen/xwidget/internal/widget"
)

const defaultText = "Widget A"

// Text mirrors typed input into the content attribute and relabels itself
// when clicked.
type Text struct {
	*widget.Base
	attrs widget.AttributeSetter
}

// NewText is the factory for PathText.
func NewText(node widget.Node) (widget.Widget, error) {
	attrs, err := attributes(node)
	if err != nil {
		return nil, err
	}
	t := &Text{attrs: attrs}
	t.Base = widget.NewBase(node, t.setup, widget.Handlers{
		"click": t.onClick,
		"input": t.onInput,
	})
	return t, nil
}

func (t *Text) setup(ctx context.Context, scope *widget.Scope) error {
	marker(t.attrs, scope, "circle")

	content, ok := t.attrs.Attr("text")
	if !ok {
		content = defaultText
	}
	t.attrs.SetAttr(AttrContent, content)
	t.attrs.SetAttr(AttrLabel, "Click me")
	scope.OnDestroy(func() {
		t.attrs.RemoveAttr(AttrContent)
		t.attrs.RemoveAttr(AttrLabel)
	})
	return nil
}

func (t *Text) onClick(widget.Event) {
	t.attrs.SetAttr(AttrLabel, "Clicked!")
}

func (t *Text) onInput(ev widget.Event) {
	t.attrs.SetAttr(AttrContent, ev.Data["value"])
}
