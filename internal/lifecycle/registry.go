package lifecycle

import (
	"sync"

	"github.com/zjrosen/xwidget/internal/log"
	"github.com/zjrosen/xwidget/internal/widget"
)

// entry is one arena slot. attempt identifies the construction attempt that
// may commit into the slot; any forced change invalidates it.
type entry struct {
	node    widget.Node
	record  Record
	attempt uint64
}

// registry is the arena of records. A handle exists for a node exactly as
// long as its record does.
type registry struct {
	mu       sync.RWMutex
	handles  map[widget.Node]Handle
	entries  map[Handle]*entry
	attempts uint64
}

func newRegistry() *registry {
	return &registry{
		handles: make(map[widget.Node]Handle),
		entries: make(map[Handle]*entry),
	}
}

func (r *registry) lookupLocked(node widget.Node) (*entry, bool) {
	h, ok := r.handles[node]
	if !ok {
		return nil, false
	}
	e, ok := r.entries[h]
	return e, ok
}

// get returns a copy of node's record.
func (r *registry) get(node widget.Node) (Record, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.lookupLocked(node)
	if !ok {
		return Record{}, false
	}
	return e.record, true
}

func (r *registry) handle(node widget.Node) (Handle, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.handles[node]
	return h, ok
}

// begin registers node (assigning a handle on first registration) and puts
// its record in Initializing for a new attempt.
func (r *registry) begin(node widget.Node, path string) (Record, uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.attempts++
	attempt := r.attempts

	e, ok := r.lookupLocked(node)
	if !ok {
		h := newHandle()
		e = &entry{node: node}
		r.handles[node] = h
		r.entries[h] = e
		e.record.Handle = h
		log.Debug(log.CatRegistry, "handle assigned", "handle", h, "path", path)
	}
	e.record.Path = path
	e.record.Widget = nil
	e.record.State = StateInitializing
	e.attempt = attempt
	return e.record, attempt
}

// commit settles attempt. It fails when the record was removed or forced to
// another state after begin.
func (r *registry) commit(node widget.Node, attempt uint64, w widget.Widget, state State) (Record, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.lookupLocked(node)
	if !ok || e.attempt != attempt || e.record.State != StateInitializing {
		return Record{}, false
	}
	if !e.record.State.CanTransitionTo(state) {
		return Record{}, false
	}
	e.record.Widget = w
	e.record.State = state
	e.attempt = 0
	return e.record, true
}

// transition moves node from one state to another if it is still in from.
func (r *registry) transition(node widget.Node, from, to State) (Record, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.lookupLocked(node)
	if !ok || e.record.State != from || !from.CanTransitionTo(to) {
		return Record{}, false
	}
	e.record.State = to
	return e.record, true
}

// undoDone returns a done record to initialized after its widget refused
// MarkDone. It is a forced change outside the state table and only applies
// while the record is still the one that went to done.
func (r *registry) undoDone(node widget.Node, h Handle) (Record, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.lookupLocked(node)
	if !ok || e.record.Handle != h || e.record.State != StateDone {
		return Record{}, false
	}
	e.record.State = StateInitialized
	return e.record, true
}

// fail overwrites node's record with {nil, Failed} and returns the previous record.
func (r *registry) fail(node widget.Node) (Record, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.lookupLocked(node)
	if !ok {
		return Record{}, false
	}
	prev := e.record
	e.record.Widget = nil
	e.record.State = StateFailed
	e.attempt = 0
	return prev, true
}

// remove deletes node's record and handle.
func (r *registry) remove(node widget.Node) (Record, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	h, ok := r.handles[node]
	if !ok {
		return Record{}, false
	}
	e := r.entries[h]
	delete(r.handles, node)
	delete(r.entries, h)
	if e == nil {
		return Record{}, false
	}
	return e.record, true
}

// sweep removes every record whose node is not in live.
func (r *registry) sweep(live map[widget.Node]struct{}) []swept {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []swept
	for node, h := range r.handles {
		if _, ok := live[node]; ok {
			continue
		}
		e := r.entries[h]
		delete(r.handles, node)
		delete(r.entries, h)
		if e != nil {
			out = append(out, swept{node: node, record: e.record})
		}
	}
	return out
}

type swept struct {
	node   widget.Node
	record Record
}

func (r *registry) counts() map[State]int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	counts := make(map[State]int)
	for _, e := range r.entries {
		counts[e.record.State]++
	}
	return counts
}

func (r *registry) len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}
