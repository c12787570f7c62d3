package lifecycle

import (
	"sync"

	"github.com/zjrosen/xwidget/internal/widget"
)

// walk is one in-flight Init call and the managed nodes it owns.
type walk struct {
	id      uint64
	root    widget.Node
	claimed map[widget.Node]struct{}
}

func (w *walk) owns(node widget.Node) bool {
	_, ok := w.claimed[node]
	return ok
}

// guard rejects overlapping Init walks. A walk claims the nodes of its
// subtree it may construct up front; a second walk that needs any claimed
// node is refused before it touches the registry.
type guard struct {
	mu     sync.Mutex
	claims map[widget.Node]uint64
	next   uint64
}

func newGuard() *guard {
	return &guard{claims: make(map[widget.Node]uint64)}
}

// claim takes ownership of nodes for a new walk. On conflict it claims
// nothing and returns the first node already owned by another walk.
func (g *guard) claim(root widget.Node, nodes []widget.Node) (*walk, widget.Node, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	for _, n := range nodes {
		if _, busy := g.claims[n]; busy {
			return nil, n, false
		}
	}

	g.next++
	w := &walk{
		id:      g.next,
		root:    root,
		claimed: make(map[widget.Node]struct{}, len(nodes)),
	}
	for _, n := range nodes {
		g.claims[n] = w.id
		w.claimed[n] = struct{}{}
	}
	return w, nil, true
}

func (g *guard) release(w *walk) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for n := range w.claimed {
		if g.claims[n] == w.id {
			delete(g.claims, n)
		}
	}
}

func (g *guard) busy(node widget.Node) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, ok := g.claims[node]
	return ok
}

func (g *guard) inFlight() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	walks := make(map[uint64]struct{})
	for _, id := range g.claims {
		walks[id] = struct{}{}
	}
	return len(walks)
}
