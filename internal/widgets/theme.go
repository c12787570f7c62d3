package widgets

import (
	"context"
	"fmt"
	"sync"

	"github.com/zjrosen/xwidget/internal/widget"
)

// Themes understood by the theme widget.
const (
	ThemeLight = "light"
	ThemeDark  = "dark"
)

// Theme switches the theme attribute between light and dark. A change event
// selects a theme explicitly; a click toggles it.
type Theme struct {
	*widget.Base
	attrs widget.AttributeSetter

	mu    sync.Mutex
	theme string
}

// NewTheme is the factory for PathTheme.
func NewTheme(node widget.Node) (widget.Widget, error) {
	attrs, err := attributes(node)
	if err != nil {
		return nil, err
	}
	t := &Theme{attrs: attrs}
	t.Base = widget.NewBase(node, t.setup, widget.Handlers{
		"change": t.onChange,
		"click":  t.onToggle,
	})
	return t, nil
}

func (t *Theme) setup(ctx context.Context, scope *widget.Scope) error {
	initial := ThemeLight
	if v, ok := t.attrs.Attr("initial"); ok {
		if !validTheme(v) {
			return fmt.Errorf("unknown theme %q", v)
		}
		initial = v
	}
	marker(t.attrs, scope, "triangle")
	t.apply(initial)
	scope.OnDestroy(func() { t.attrs.RemoveAttr(AttrTheme) })
	return nil
}

// Current returns the active theme.
func (t *Theme) Current() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.theme
}

func (t *Theme) onChange(ev widget.Event) {
	if v := ev.Data["value"]; validTheme(v) {
		t.apply(v)
	}
}

func (t *Theme) onToggle(widget.Event) {
	if t.Current() == ThemeDark {
		t.apply(ThemeLight)
		return
	}
	t.apply(ThemeDark)
}

func (t *Theme) apply(theme string) {
	t.mu.Lock()
	t.theme = theme
	t.mu.Unlock()
	t.attrs.SetAttr(AttrTheme, theme)
}

func validTheme(v string) bool {
	return v == ThemeLight || v == ThemeDark
}
