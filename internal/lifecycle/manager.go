package lifecycle

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"golang.org/x/sync/errgroup"

	"github.com/zjrosen/xwidget/internal/log"
	"github.com/zjrosen/xwidget/internal/pubsub"
	"github.com/zjrosen/xwidget/internal/resolver"
	"github.com/zjrosen/xwidget/internal/tracing"
	"github.com/zjrosen/xwidget/internal/widget"
)

// Manager owns the registry of widget records for one tree and drives every
// lifecycle operation on it. It is safe for concurrent use. No lock is held
// while resolvers or widgets run.
type Manager struct {
	resolver       resolver.Resolver
	reg            *registry
	guard          *guard
	traversal      Traversal
	maxConcurrency int
	tracer         trace.Tracer
	status         *pubsub.Broker[StatusEvent]
	ownsStatus     bool
}

// Option configures a Manager.
type Option func(*Manager)

// WithTraversal selects how sibling subtrees are visited. Unknown values
// fall back to Sequential.
func WithTraversal(t Traversal) Option {
	return func(m *Manager) {
		if t.IsValid() {
			m.traversal = t
		}
	}
}

// WithMaxConcurrency bounds the number of sibling subtrees visited at once
// under Parallel traversal. Zero or less means no limit.
func WithMaxConcurrency(n int) Option {
	return func(m *Manager) {
		m.maxConcurrency = n
	}
}

// WithTracer sets the tracer used for walk and attach spans.
func WithTracer(t trace.Tracer) Option {
	return func(m *Manager) {
		if t != nil {
			m.tracer = t
		}
	}
}

// WithStatusBroker publishes status events on b instead of a private broker.
// The Manager does not close a broker it was given.
func WithStatusBroker(b *pubsub.Broker[StatusEvent]) Option {
	return func(m *Manager) {
		if b != nil {
			m.status = b
			m.ownsStatus = false
		}
	}
}

// New creates a Manager that resolves widget paths through r.
func New(r resolver.Resolver, opts ...Option) *Manager {
	if r == nil {
		r = resolver.NewStatic()
	}
	m := &Manager{
		resolver:   r,
		reg:        newRegistry(),
		guard:      newGuard(),
		traversal:  Sequential,
		tracer:     noop.NewTracerProvider().Tracer("xwidget/lifecycle"),
		status:     pubsub.NewBroker[StatusEvent](),
		ownsStatus: true,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Init walks root's subtree in pre-order and attaches a widget to every
// managed node that has no record yet. It blocks until the walk finishes and
// then calls done exactly once with nil or the failures in tree order.
//
// A node whose attempt fails is recorded as failed and its subtree is left
// alone for this pass; siblings still proceed. Nodes already initialized or
// done are skipped and their children visited. Nodes left failed by an
// earlier pass are skipped without descending and must be destroyed before
// they can be retried.
//
// If any managed node of the subtree belongs to another walk still in
// flight, Init changes nothing and reports a single ErrConcurrentInitConflict
// entry for root.
func (m *Manager) Init(ctx context.Context, root widget.Node, done Callback) {
	w, errs := m.claim(root)
	if w == nil {
		m.reject(ctx, errs)
		finish(done, errs)
		return
	}
	m.run(ctx, w, done)
}

// Start is Init on a background goroutine. The subtree is claimed before
// Start returns, so a conflicting Init issued afterwards is rejected. On
// conflict done is called before Start returns.
func (m *Manager) Start(ctx context.Context, root widget.Node, done Callback) {
	w, errs := m.claim(root)
	if w == nil {
		m.reject(ctx, errs)
		finish(done, errs)
		return
	}
	log.SafeGo("lifecycle.init", func() {
		m.run(ctx, w, done)
	})
}

// InitTree runs Init and returns its failures as an error, or nil.
func (m *Manager) InitTree(ctx context.Context, root widget.Node) error {
	var out Errors
	m.Init(ctx, root, func(errs Errors) {
		out = errs
	})
	if len(out) == 0 {
		return nil
	}
	return out
}

func (m *Manager) claim(root widget.Node) (*walk, Errors) {
	if root == nil {
		return nil, nil
	}
	w, busy, ok := m.guard.claim(root, m.pending(root))
	if ok {
		return w, nil
	}
	path, _ := nodePath(busy)
	log.Warn(log.CatLifecycle, "init rejected, subtree already initializing", "busy", path)
	return nil, Errors{{
		Node: root,
		Err:  fmt.Errorf("%w: %s is claimed by another walk", ErrConcurrentInitConflict, path),
	}}
}

// pending lists the managed nodes under root that a walk could construct:
// those without a record, plus any still initializing, which makes an
// overlapping walk conflict. Settled nodes are left unclaimed so a walk over
// them can run next to one that is building elsewhere. Failed records stop
// the descent as they do in visit.
func (m *Manager) pending(root widget.Node) []widget.Node {
	var nodes []widget.Node
	var collect func(n widget.Node)
	collect = func(n widget.Node) {
		if _, managed := n.WidgetPath(); managed {
			rec, ok := m.reg.get(n)
			switch {
			case !ok, rec.State == StateInitializing:
				nodes = append(nodes, n)
			case !rec.State.Live():
				return
			}
		}
		for _, c := range n.Children() {
			collect(c)
		}
	}
	collect(root)
	return nodes
}

// reject records a refused walk as an init span carrying a conflict event.
func (m *Manager) reject(ctx context.Context, errs Errors) {
	if len(errs) == 0 {
		return
	}
	_, span := m.tracer.Start(ctx, tracing.SpanInit)
	span.AddEvent(tracing.EventConflict)
	span.SetAttributes(attribute.String(tracing.AttrErrorKind, errorKind(errs[0].Err)))
	span.SetStatus(codes.Error, errs.Error())
	span.End()
}

func (m *Manager) run(ctx context.Context, w *walk, done Callback) {
	ctx, span := m.tracer.Start(ctx, tracing.SpanInit, trace.WithAttributes(
		attribute.String(tracing.AttrTraversal, string(m.traversal)),
		attribute.Int(tracing.AttrManaged, len(w.claimed)),
	))

	var errs Errors
	func() {
		defer func() {
			if r := recover(); r != nil {
				log.Error(log.CatLifecycle, "init walk panicked", "panic", r)
				errs = append(errs, ErrorEntry{Node: w.root, Err: fmt.Errorf("init walk panicked: %v", r)})
			}
		}()
		errs = m.visit(ctx, w, w.root)
	}()
	m.guard.release(w)

	span.SetAttributes(attribute.Int(tracing.AttrErrorCount, len(errs)))
	if len(errs) > 0 {
		span.SetStatus(codes.Error, errs.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()

	log.Debug(log.CatLifecycle, "init walk finished", "managed", len(w.claimed), "errors", len(errs))
	finish(done, errs)
}

func finish(done Callback, errs Errors) {
	if len(errs) == 0 {
		errs = nil
	}
	if done != nil {
		done(errs)
	}
}

func (m *Manager) visit(ctx context.Context, w *walk, node widget.Node) Errors {
	if path, managed := node.WidgetPath(); managed {
		rec, ok := m.reg.get(node)
		switch {
		case !ok && w.owns(node):
			if err := m.attach(ctx, node, path); err != nil {
				return Errors{{Node: node, Err: err}}
			}
		case !ok:
			// Settled when the walk began and destroyed since; another
			// walk may now own it.
			log.Debug(log.CatLifecycle, "skipping node destroyed during walk", "path", path)
			return nil
		case !rec.State.Live():
			trace.SpanFromContext(ctx).AddEvent(tracing.EventSkipped, trace.WithAttributes(
				attribute.String(tracing.AttrWidgetPath, path),
			))
			log.Debug(log.CatLifecycle, "skipping node", "path", path, "state", rec.State)
			return nil
		}
	}
	return m.visitChildren(ctx, w, node.Children())
}

func (m *Manager) visitChildren(ctx context.Context, w *walk, children []widget.Node) Errors {
	if len(children) == 0 {
		return nil
	}
	if m.traversal != Parallel || len(children) == 1 {
		var errs Errors
		for _, child := range children {
			errs = append(errs, m.visit(ctx, w, child)...)
		}
		return errs
	}

	results := make([]Errors, len(children))
	g := new(errgroup.Group)
	if m.maxConcurrency > 0 {
		g.SetLimit(m.maxConcurrency)
	}
	for i, child := range children {
		g.Go(func() error {
			defer func() {
				if r := recover(); r != nil {
					results[i] = Errors{{Node: child, Err: fmt.Errorf("init walk panicked: %v", r)}}
				}
			}()
			results[i] = m.visit(ctx, w, child)
			return nil
		})
	}
	_ = g.Wait()

	var errs Errors
	for _, r := range results {
		errs = append(errs, r...)
	}
	return errs
}

// attach runs one construction attempt for node and commits its outcome.
func (m *Manager) attach(ctx context.Context, node widget.Node, path string) (err error) {
	ctx, span := m.tracer.Start(ctx, tracing.SpanAttach, trace.WithAttributes(
		attribute.String(tracing.AttrWidgetPath, path),
	))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.String(tracing.AttrErrorKind, errorKind(err)))
			span.SetStatus(codes.Error, err.Error())
		} else {
			span.SetStatus(codes.Ok, "")
		}
		span.End()
	}()

	rec, attempt := m.reg.begin(node, path)
	span.SetAttributes(attribute.String(tracing.AttrNodeHandle, rec.Handle.String()))
	m.publish(pubsub.CreatedEvent, node, rec, StateUninitialized)

	w, err := m.construct(ctx, node, path)
	if err != nil {
		if w != nil {
			destroyWidget(w, path)
		}
		if failed, ok := m.reg.commit(node, attempt, nil, StateFailed); ok {
			m.publish(pubsub.UpdatedEvent, node, failed, StateInitializing)
		}
		log.ErrorErr(log.CatLifecycle, "widget init failed", err, "path", path, "handle", rec.Handle)
		return err
	}

	committed, ok := m.reg.commit(node, attempt, w, StateInitialized)
	if !ok {
		destroyWidget(w, path)
		span.AddEvent(tracing.EventInterrupted)
		log.Warn(log.CatLifecycle, "widget init interrupted", "path", path, "handle", rec.Handle)
		return fmt.Errorf("%w: record changed while %s was initializing", ErrInterrupted, path)
	}
	span.AddEvent(tracing.EventConstructed)
	m.publish(pubsub.UpdatedEvent, node, committed, StateInitializing)
	log.Debug(log.CatLifecycle, "widget initialized", "path", path, "handle", rec.Handle)
	return nil
}

// construct resolves, builds and initializes the widget for node. A widget
// that was built before a failure is returned alongside the error so the
// caller can destroy it.
func (m *Manager) construct(ctx context.Context, node widget.Node, path string) (w widget.Widget, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: panic: %v", ErrConstruction, r)
		}
	}()

	factory, err := m.resolver.Resolve(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrResolution, err)
	}
	if factory == nil {
		return nil, fmt.Errorf("%w: resolver returned no factory", ErrResolution)
	}
	trace.SpanFromContext(ctx).AddEvent(tracing.EventResolved)

	w, err = factory(node)
	if err != nil {
		return w, fmt.Errorf("%w: %w", ErrConstruction, err)
	}
	if w == nil {
		return nil, fmt.Errorf("%w: factory returned no widget", ErrConstruction)
	}
	if err := w.Init(ctx); err != nil {
		return w, fmt.Errorf("%w: %w", ErrConstruction, err)
	}
	return w, nil
}

func destroyWidget(w widget.Widget, path string) {
	defer func() {
		if r := recover(); r != nil {
			log.Error(log.CatWidget, "widget destroy panicked", "path", path, "panic", r)
		}
	}()
	w.Destroy()
}

// Destroy tears down root's subtree bottom-up: every child before its parent.
// Each held widget is destroyed once and every record and handle is removed.
// Nodes without a record are ignored, so Destroy is idempotent.
func (m *Manager) Destroy(root widget.Node) {
	if root == nil {
		return
	}
	for _, child := range root.Children() {
		m.Destroy(child)
	}
	rec, ok := m.reg.remove(root)
	if !ok {
		return
	}
	if rec.Widget != nil {
		destroyWidget(rec.Widget, rec.Path)
	}
	m.publishRemoved(root, rec)
	log.Debug(log.CatLifecycle, "widget destroyed", "path", rec.Path, "handle", rec.Handle)
}

// MarkDone moves an initialized node to done. Any other state, including no
// record at all, yields ErrInvalidStateTransition and changes nothing.
//
// The record moves to done before the widget's own MarkDone runs, so the
// widget is only told once the transition has won against a concurrent
// Destroy or SimulateFail. If the widget refuses, the record is put back to
// initialized unless something else replaced it meanwhile.
func (m *Manager) MarkDone(node widget.Node) error {
	rec, ok := m.reg.get(node)
	if !ok {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidStateTransition, StateUninitialized, StateDone)
	}
	if rec.State != StateInitialized {
		return fmt.Errorf("%w: %s: %s -> %s", ErrInvalidStateTransition, rec.Path, rec.State, StateDone)
	}
	updated, ok := m.reg.transition(node, StateInitialized, StateDone)
	if !ok {
		return fmt.Errorf("%w: %s changed state during mark done", ErrInvalidStateTransition, rec.Path)
	}
	m.publish(pubsub.UpdatedEvent, node, updated, StateInitialized)

	if err := updated.Widget.MarkDone(); err != nil {
		if restored, ok := m.reg.undoDone(node, updated.Handle); ok {
			m.publish(pubsub.UpdatedEvent, node, restored, StateDone)
		}
		return fmt.Errorf("mark done %s: %w", rec.Path, err)
	}
	return nil
}

// SimulateFail forces node and every descendant holding a record into the
// failed state, bottom-up, destroying each held widget exactly once.
func (m *Manager) SimulateFail(node widget.Node) {
	if node == nil {
		return
	}
	for _, child := range node.Children() {
		m.SimulateFail(child)
	}
	prev, ok := m.reg.fail(node)
	if !ok {
		return
	}
	if prev.Widget != nil {
		destroyWidget(prev.Widget, prev.Path)
	}
	if prev.State != StateFailed {
		failed := Record{Handle: prev.Handle, Path: prev.Path, State: StateFailed}
		m.publish(pubsub.UpdatedEvent, node, failed, prev.State)
	}
	log.Debug(log.CatLifecycle, "widget failure injected", "path", prev.Path, "previous", prev.State)
}

// GetInstance returns node's record. A missing record means the node has
// not been initialized; it is never an error.
func (m *Manager) GetInstance(node widget.Node) (Record, bool) {
	return m.reg.get(node)
}

// State returns node's lifecycle state, StateUninitialized without a record.
func (m *Manager) State(node widget.Node) State {
	if rec, ok := m.reg.get(node); ok {
		return rec.State
	}
	return StateUninitialized
}

// Handle returns the handle assigned to node while it has a record.
func (m *Manager) Handle(node widget.Node) (Handle, bool) {
	return m.reg.handle(node)
}

// Busy reports whether node is claimed by an Init walk in flight.
func (m *Manager) Busy(node widget.Node) bool {
	return m.guard.busy(node)
}

// InFlight returns the number of Init walks holding claims.
func (m *Manager) InFlight() int {
	return m.guard.inFlight()
}

// Sweep removes every record whose node is no longer reachable from roots,
// destroying held widgets. It returns the number of records removed. Callers
// that detach parts of the tree without calling Destroy use Sweep to reclaim
// them.
func (m *Manager) Sweep(roots ...widget.Node) int {
	live := make(map[widget.Node]struct{})
	for _, root := range roots {
		if root != nil {
			collect(root, live)
		}
	}
	removed := m.reg.sweep(live)
	for _, s := range removed {
		if s.record.Widget != nil {
			destroyWidget(s.record.Widget, s.record.Path)
		}
		m.publishRemoved(s.node, s.record)
	}
	if len(removed) > 0 {
		log.Info(log.CatRegistry, "swept unreachable records", "count", len(removed))
	}
	return len(removed)
}

func collect(node widget.Node, into map[widget.Node]struct{}) {
	into[node] = struct{}{}
	for _, child := range node.Children() {
		collect(child, into)
	}
}

// Counts returns the number of records in each state.
func (m *Manager) Counts() map[State]int {
	return m.reg.counts()
}

// Len returns the number of records.
func (m *Manager) Len() int {
	return m.reg.len()
}

// Subscribe streams status events until ctx is cancelled or the Manager is
// closed.
func (m *Manager) Subscribe(ctx context.Context) <-chan pubsub.Event[StatusEvent] {
	return m.status.Subscribe(ctx)
}

// Close shuts down the status broker if the Manager created it. Records are
// left in place; call Destroy first to tear the tree down.
func (m *Manager) Close() {
	if m.ownsStatus {
		m.status.Close()
	}
}

func (m *Manager) publish(t pubsub.EventType, node widget.Node, rec Record, prev State) {
	m.status.Publish(t, StatusEvent{
		Handle:   rec.Handle,
		Node:     node,
		Path:     rec.Path,
		State:    rec.State,
		Previous: prev,
	})
}

func (m *Manager) publishRemoved(node widget.Node, rec Record) {
	m.status.Publish(pubsub.DeletedEvent, StatusEvent{
		Handle:   rec.Handle,
		Node:     node,
		Path:     rec.Path,
		State:    StateUninitialized,
		Previous: rec.State,
	})
}
