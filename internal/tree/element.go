// Package tree provides an in-memory node tree that satisfies widget.Node and
// loads from YAML tree files.
package tree

import (
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"

	"github.com/zjrosen/xwidget/internal/widget"
)

// Element is a node in an in-memory containment tree. Elements carry string
// attributes, an ordered child list and event listeners.
type Element struct {
	id string

	mu        sync.RWMutex
	attrs     map[string]string
	parent    *Element
	children  []*Element
	listeners map[string][]listener
}

type listener struct {
	owner   any
	handler widget.Handler
}

var (
	_ widget.Node            = (*Element)(nil)
	_ widget.EventTarget     = (*Element)(nil)
	_ widget.AttributeSetter = (*Element)(nil)
)

// NewElement creates a detached element with the given id and attributes.
func NewElement(id string, attrs map[string]string) *Element {
	a := make(map[string]string, len(attrs))
	maps.Copy(a, attrs)
	return &Element{
		id:        id,
		attrs:     a,
		listeners: make(map[string][]listener),
	}
}

// NewWidget is shorthand for an element whose widget attribute is path.
func NewWidget(id, path string) *Element {
	return NewElement(id, map[string]string{widget.PathAttribute: path})
}

// ID returns the element id.
func (e *Element) ID() string {
	return e.id
}

// WidgetPath returns the widget attribute.
func (e *Element) WidgetPath() (string, bool) {
	return e.Attr(widget.PathAttribute)
}

// Children returns the child elements as nodes.
func (e *Element) Children() []widget.Node {
	e.mu.RLock()
	defer e.mu.RUnlock()
	nodes := make([]widget.Node, len(e.children))
	for i, c := range e.children {
		nodes[i] = c
	}
	return nodes
}

// Elements returns the child elements.
func (e *Element) Elements() []*Element {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return slices.Clone(e.children)
}

// Parent returns the parent element, or nil for a root.
func (e *Element) Parent() *Element {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.parent
}

// Append adds children in order and returns e for chaining.
func (e *Element) Append(children ...*Element) *Element {
	for _, c := range children {
		if old := c.Parent(); old != nil {
			old.Remove(c)
		}
		c.mu.Lock()
		c.parent = e
		c.mu.Unlock()
	}
	e.mu.Lock()
	e.children = append(e.children, children...)
	e.mu.Unlock()
	return e
}

// Remove detaches child from e. It reports whether child was found.
func (e *Element) Remove(child *Element) bool {
	e.mu.Lock()
	idx := slices.Index(e.children, child)
	if idx < 0 {
		e.mu.Unlock()
		return false
	}
	e.children = slices.Delete(e.children, idx, idx+1)
	e.mu.Unlock()

	child.mu.Lock()
	child.parent = nil
	child.mu.Unlock()
	return true
}

// Attr returns an attribute value.
func (e *Element) Attr(name string) (string, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	v, ok := e.attrs[name]
	return v, ok
}

// SetAttr sets an attribute value.
func (e *Element) SetAttr(name, value string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.attrs[name] = value
}

// RemoveAttr deletes an attribute.
func (e *Element) RemoveAttr(name string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.attrs, name)
}

// Attrs returns a copy of all attributes.
func (e *Element) Attrs() map[string]string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return maps.Clone(e.attrs)
}

// FormatAttrs renders the attributes as name="value" pairs sorted by name,
// leaving out the names in skip.
func (e *Element) FormatAttrs(skip ...string) string {
	attrs := e.Attrs()
	for _, name := range skip {
		delete(attrs, name)
	}
	names := slices.Sorted(maps.Keys(attrs))
	pairs := make([]string, len(names))
	for i, name := range names {
		pairs[i] = fmt.Sprintf("%s=%q", name, attrs[name])
	}
	return strings.Join(pairs, " ")
}

// AddListener registers h for event under owner, replacing any handler the
// same owner registered before.
func (e *Element) AddListener(event string, owner any, h widget.Handler) {
	e.mu.Lock()
	defer e.mu.Unlock()
	ls := slices.DeleteFunc(e.listeners[event], func(l listener) bool { return l.owner == owner })
	e.listeners[event] = append(ls, listener{owner: owner, handler: h})
}

// RemoveListener removes owner's handler for event.
func (e *Element) RemoveListener(event string, owner any) {
	e.mu.Lock()
	defer e.mu.Unlock()
	ls := slices.DeleteFunc(e.listeners[event], func(l listener) bool { return l.owner == owner })
	if len(ls) == 0 {
		delete(e.listeners, event)
		return
	}
	e.listeners[event] = ls
}

// ListenerCount returns the number of handlers bound for event.
func (e *Element) ListenerCount(event string) int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.listeners[event])
}

// Dispatch calls every handler bound for event and returns how many ran.
func (e *Element) Dispatch(event string, data map[string]string) int {
	e.mu.RLock()
	ls := slices.Clone(e.listeners[event])
	e.mu.RUnlock()

	ev := widget.Event{Name: event, Target: e, Data: data}
	for _, l := range ls {
		l.handler(ev)
	}
	return len(ls)
}

// Walk visits e and its descendants in pre-order. Returning false from fn
// skips the element's children.
func (e *Element) Walk(fn func(*Element) bool) {
	if !fn(e) {
		return
	}
	for _, c := range e.Elements() {
		c.Walk(fn)
	}
}

// Find returns the first element in e's subtree with the given id.
func (e *Element) Find(id string) *Element {
	var found *Element
	e.Walk(func(el *Element) bool {
		if found != nil {
			return false
		}
		if el.id == id {
			found = el
			return false
		}
		return true
	})
	return found
}
