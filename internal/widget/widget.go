// Package widget defines the contract between the lifecycle manager and the
// components it attaches to nodes of an externally owned tree.
package widget

import "context"

// PathAttribute is the node attribute naming a widget's resolver path.
// Its presence is the only signal that a node is managed.
const PathAttribute = "widget"

// Node is a position in the externally owned containment tree.
// Implementations must be comparable (typically pointer types) and keep a
// stable identity across operations; the lifecycle manager never creates or
// deletes nodes.
type Node interface {
	// WidgetPath returns the resolver path and true when the node is managed.
	WidgetPath() (string, bool)
	// Children returns the node's children in document order.
	Children() []Node
}

// Widget is the lifecycle contract implemented by components.
type Widget interface {
	// Init acquires resources. It may block and must leave the widget safe to
	// Destroy even when it returns an error.
	Init(ctx context.Context) error
	// Destroy releases everything Init acquired. It is synchronous and idempotent.
	Destroy()
	// MarkDone fails unless Init succeeded.
	MarkDone() error
	IsInitialized() bool
	IsDone() bool
}

// Factory constructs a widget for node. Construction is synchronous and may
// read node attributes.
type Factory func(node Node) (Widget, error)

// Handler reacts to an event dispatched on a node.
type Handler func(event Event)

// Event is dispatched by an EventTarget to bound handlers.
type Event struct {
	Name   string
	Target Node
	Data   map[string]string
}

// EventTarget is implemented by nodes that accept event listeners. Listeners
// are keyed by an owner token so a widget can remove exactly what it added.
type EventTarget interface {
	AddListener(event string, owner any, h Handler)
	RemoveListener(event string, owner any)
}

// AttributeSetter is implemented by nodes whose attributes widgets may write.
type AttributeSetter interface {
	Attr(name string) (string, bool)
	SetAttr(name, value string)
	RemoveAttr(name string)
}
