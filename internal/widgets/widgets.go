// Package widgets holds the demo components attached by the CLI. Each widget
// writes its visible state into attributes of the node it is attached to and
// removes them again on Destroy.
package widgets

import (
	"errors"
	"fmt"

	"github.com/zjrosen/xwidget/internal/resolver"
	"github.com/zjrosen/xwidget/internal/widget"
)

// Paths under which Register installs the demo widgets.
const (
	PathText    = "widgets/text"
	PathCounter = "widgets/counter"
	PathTheme   = "widgets/theme"
	PathBroken  = "widgets/broken"
)

// Attributes written by the demo widgets.
const (
	AttrContent = "content"
	AttrLabel   = "label"
	AttrCount   = "count"
	AttrTheme   = "theme"
	AttrShape   = "shape"
)

var (
	// ErrNotWritable is returned when a node cannot hold widget attributes.
	ErrNotWritable = errors.New("node does not accept attributes")
	// ErrBroken is returned by the broken widget's Init.
	ErrBroken = errors.New("broken widget always fails to initialize")
)

// Register installs every demo widget in s. The short aliases a, b and c
// name the text, counter and theme widgets.
func Register(s *resolver.Static) error {
	factories := []struct {
		path    string
		factory widget.Factory
	}{
		{PathText, NewText},
		{PathCounter, NewCounter},
		{PathTheme, NewTheme},
		{PathBroken, NewBroken},
		{"widgets/a", NewText},
		{"widgets/b", NewCounter},
		{"widgets/c", NewTheme},
	}
	for _, f := range factories {
		if err := s.Register(f.path, f.factory); err != nil {
			return fmt.Errorf("register demo widgets: %w", err)
		}
	}
	return nil
}

func attributes(node widget.Node) (widget.AttributeSetter, error) {
	attrs, ok := node.(widget.AttributeSetter)
	if !ok {
		return nil, ErrNotWritable
	}
	return attrs, nil
}

// marker sets the shape attribute for the lifetime of the widget.
func marker(attrs widget.AttributeSetter, scope *widget.Scope, shape string) {
	attrs.SetAttr(AttrShape, shape)
	scope.OnDestroy(func() { attrs.RemoveAttr(AttrShape) })
}
