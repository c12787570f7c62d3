package widget

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
)

var (
	// ErrNotInitialized is returned by MarkDone before a successful Init.
	ErrNotInitialized = errors.New("widget not initialized")
	// ErrNoSetup is returned by Init when the widget declared no setup hook.
	ErrNoSetup = errors.New("widget setup hook not implemented")
)

// SetupFunc acquires a widget's resources. Cleanups registered through scope
// run when the widget is destroyed, including after a failed setup.
type SetupFunc func(ctx context.Context, scope *Scope) error

// Scope collects the cleanup work a setup hook schedules.
type Scope struct {
	cleanups []func()
}

// OnDestroy schedules fn to run on Destroy. Cleanups run in reverse order.
func (s *Scope) OnDestroy(fn func()) {
	if fn != nil {
		s.cleanups = append(s.cleanups, fn)
	}
}

// Base implements the Widget contract around a setup hook and an explicit
// event handler table. Concrete widgets embed or wrap it:
//
//	b := widget.NewBase(node, setup, widget.Handlers{"click": w.onClick})
type Base struct {
	node     Node
	setup    SetupFunc
	handlers Handlers

	mu          sync.Mutex
	initialized bool
	done        bool
	bound       []string
	scope       *Scope
}

// Handlers maps event names to handlers. Binding is explicit and deterministic:
// events are bound in sorted order on Init and removed on Destroy.
type Handlers map[string]Handler

// NewBase creates a Base for node.
func NewBase(node Node, setup SetupFunc, handlers Handlers) *Base {
	return &Base{
		node:     node,
		setup:    setup,
		handlers: handlers,
	}
}

// Node returns the node the widget is attached to.
func (b *Base) Node() Node {
	return b.node
}

// Init runs the setup hook once and binds handlers. Calling Init on an
// initialized widget is a no-op. On failure everything acquired so far is
// released before the error is returned.
func (b *Base) Init(ctx context.Context) (err error) {
	b.mu.Lock()
	if b.initialized {
		b.mu.Unlock()
		return nil
	}
	if b.setup == nil {
		b.mu.Unlock()
		return ErrNoSetup
	}
	scope := &Scope{}
	b.scope = scope
	b.mu.Unlock()

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("widget setup panicked: %v", r)
		}
		if err != nil {
			b.Destroy()
		}
	}()

	if err := b.setup(ctx, scope); err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.bindLocked()
	b.initialized = true
	return nil
}

func (b *Base) bindLocked() {
	target, ok := b.node.(EventTarget)
	if !ok || len(b.handlers) == 0 {
		return
	}
	events := make([]string, 0, len(b.handlers))
	for event := range b.handlers {
		events = append(events, event)
	}
	slices.Sort(events)
	for _, event := range events {
		target.AddListener(event, b, b.handlers[event])
	}
	b.bound = events
}

// Destroy unbinds handlers and runs cleanups. It is idempotent and safe to
// call after a failed Init.
func (b *Base) Destroy() {
	b.mu.Lock()
	bound := b.bound
	scope := b.scope
	b.bound = nil
	b.scope = nil
	b.initialized = false
	b.done = false
	b.mu.Unlock()

	if target, ok := b.node.(EventTarget); ok {
		for _, event := range bound {
			target.RemoveListener(event, b)
		}
	}
	if scope != nil {
		for i := len(scope.cleanups) - 1; i >= 0; i-- {
			scope.cleanups[i]()
		}
	}
}

// MarkDone flags the widget as done.
func (b *Base) MarkDone() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.initialized {
		return ErrNotInitialized
	}
	b.done = true
	return nil
}

func (b *Base) IsInitialized() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.initialized
}

func (b *Base) IsDone() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.done
}

// BoundEvents returns the events currently bound, in binding order.
func (b *Base) BoundEvents() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return slices.Clone(b.bound)
}
