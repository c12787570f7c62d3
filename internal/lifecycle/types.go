// Package lifecycle manages widgets attached to nodes of an externally owned
// tree. The Manager walks a subtree, resolves and constructs the widget named
// by each managed node, tracks one Record per node, and tears widgets down
// bottom-up. Records live in an explicit arena keyed by a Handle assigned on
// first registration, so the Manager never relies on the garbage collector to
// forget nodes; callers reclaim discarded nodes with Destroy or Sweep.
package lifecycle

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/zjrosen/xwidget/internal/widget"
)

// Handle is the opaque identity the registry assigns to a managed node.
type Handle string

func newHandle() Handle {
	return Handle(uuid.New().String())
}

// String returns the string representation of the Handle.
func (h Handle) String() string {
	return string(h)
}

// IsValid returns true if the Handle is a valid UUID.
func (h Handle) IsValid() bool {
	if h == "" {
		return false
	}
	_, err := uuid.Parse(string(h))
	return err == nil
}

// State is the lifecycle state of a managed node.
// Valid transitions:
//
//	Uninitialized -> Initializing
//	Initializing  -> Initialized, Failed
//	Initialized   -> Done, Failed
//	Done          -> Failed
//	Failed        -> (terminal until Destroy)
//
// SimulateFail forces Failed from any state and Destroy removes the record
// entirely; neither consults the table.
type State string

const (
	// StateUninitialized is reported for nodes without a record.
	StateUninitialized State = "uninitialized"
	// StateInitializing marks a construction attempt in flight.
	StateInitializing State = "initializing"
	// StateInitialized means the widget's Init succeeded.
	StateInitialized State = "initialized"
	// StateDone means an initialized widget was marked done.
	StateDone State = "done"
	// StateFailed means resolution, construction or Init failed, or a fault was injected.
	StateFailed State = "failed"
)

var validTransitions = map[State]map[State]bool{
	StateUninitialized: {
		StateInitializing: true,
	},
	StateInitializing: {
		StateInitialized: true,
		StateFailed:      true,
	},
	StateInitialized: {
		StateDone:   true,
		StateFailed: true,
	},
	StateDone: {
		StateFailed: true,
	},
	StateFailed: {},
}

// String returns the string representation of the State.
func (s State) String() string {
	return string(s)
}

// IsValid returns true if this is a recognized State value.
func (s State) IsValid() bool {
	_, ok := validTransitions[s]
	return ok
}

// CanTransitionTo reports whether the state machine allows s -> target.
func (s State) CanTransitionTo(target State) bool {
	return validTransitions[s][target]
}

// Live reports whether a widget instance is held in this state.
func (s State) Live() bool {
	return s == StateInitialized || s == StateDone
}

// Record is the registry's bookkeeping for one managed node.
type Record struct {
	Handle Handle
	Path   string
	// Widget is set only while the state is Initialized or Done.
	Widget widget.Widget
	State  State
}

// ErrorEntry reports a failure at one node during Init.
type ErrorEntry struct {
	Node widget.Node
	Err  error
}

func (e ErrorEntry) Error() string {
	if path, ok := nodePath(e.Node); ok {
		return path + ": " + e.Err.Error()
	}
	return e.Err.Error()
}

func (e ErrorEntry) Unwrap() error {
	return e.Err
}

// Errors is the ordered list of failures reported once per Init call.
type Errors []ErrorEntry

func (es Errors) Error() string {
	switch len(es) {
	case 0:
		return "no widget errors"
	case 1:
		return es[0].Error()
	}
	parts := make([]string, len(es))
	for i, e := range es {
		parts[i] = e.Error()
	}
	return fmt.Sprintf("%d widget errors: %s", len(es), strings.Join(parts, "; "))
}

// Unwrap exposes every entry to errors.Is and errors.As.
func (es Errors) Unwrap() []error {
	errs := make([]error, len(es))
	for i, e := range es {
		errs[i] = e
	}
	return errs
}

// Nodes returns the failing nodes in report order.
func (es Errors) Nodes() []widget.Node {
	nodes := make([]widget.Node, len(es))
	for i, e := range es {
		nodes[i] = e.Node
	}
	return nodes
}

// Callback receives the outcome of an Init call: nil on success, otherwise a
// non-empty list. It is invoked exactly once per call.
type Callback func(errs Errors)

// StatusEvent is published whenever a node's visible status changes.
// State is StateUninitialized once the record is removed.
type StatusEvent struct {
	Handle   Handle
	Node     widget.Node
	Path     string
	State    State
	Previous State
}

// Traversal selects how sibling subtrees are visited during Init.
type Traversal string

const (
	// Sequential visits children one after another in tree order.
	Sequential Traversal = "sequential"
	// Parallel visits children concurrently and joins them before returning.
	Parallel Traversal = "parallel"
)

// IsValid returns true if this is a recognized Traversal value.
func (t Traversal) IsValid() bool {
	return t == Sequential || t == Parallel
}

func nodePath(n widget.Node) (string, bool) {
	if n == nil {
		return "", false
	}
	return n.WidgetPath()
}

// Summary renders counts as "state=n" pairs in lifecycle order, or
// "no widgets" when there are none.
func Summary(counts map[State]int) string {
	var parts []string
	for _, s := range []State{StateInitializing, StateInitialized, StateDone, StateFailed} {
		if n := counts[s]; n > 0 {
			parts = append(parts, fmt.Sprintf("%s=%d", s, n))
		}
	}
	if len(parts) == 0 {
		return "no widgets"
	}
	return strings.Join(parts, " ")
}
