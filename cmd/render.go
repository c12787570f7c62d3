package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	ltree "github.com/charmbracelet/lipgloss/tree"
	"github.com/muesli/termenv"

	"github.com/zjrosen/xwidget/internal/lifecycle"
	"github.com/zjrosen/xwidget/internal/pubsub"
	"github.com/zjrosen/xwidget/internal/tree"
	"github.com/zjrosen/xwidget/internal/ui/styles"
	"github.com/zjrosen/xwidget/internal/widget"
)

type statusStyles struct {
	id     lipgloss.Style
	path   lipgloss.Style
	attrs  lipgloss.Style
	states map[lifecycle.State]lipgloss.Style
}

func newStatusStyles(r *lipgloss.Renderer) statusStyles {
	states := make(map[lifecycle.State]lipgloss.Style)
	for _, s := range []lifecycle.State{
		lifecycle.StateUninitialized,
		lifecycle.StateInitializing,
		lifecycle.StateInitialized,
		lifecycle.StateDone,
		lifecycle.StateFailed,
	} {
		states[s] = styles.State(r, s)
	}
	return statusStyles{
		id:     r.NewStyle().Bold(true),
		path:   r.NewStyle().Foreground(styles.ColorMuted),
		attrs:  r.NewStyle().Faint(true),
		states: states,
	}
}

// renderStatus writes root's subtree with each managed node's state, followed
// by a one-line summary of record counts.
func renderStatus(w io.Writer, root *tree.Element, m *lifecycle.Manager, color bool) error {
	r := lipgloss.NewRenderer(w)
	if !color {
		r.SetColorProfile(termenv.Ascii)
	}
	st := newStatusStyles(r)

	t := statusTree(root, m, st).Enumerator(ltree.RoundedEnumerator)
	if _, err := fmt.Fprintln(w, t.String()); err != nil {
		return err
	}
	_, err := fmt.Fprintln(w, lifecycle.Summary(m.Counts()))
	return err
}

func statusTree(el *tree.Element, m *lifecycle.Manager, st statusStyles) *ltree.Tree {
	t := ltree.Root(statusLabel(el, m, st))
	for _, child := range el.Elements() {
		t.Child(statusTree(child, m, st))
	}
	return t
}

func statusLabel(el *tree.Element, m *lifecycle.Manager, st statusStyles) string {
	parts := []string{st.id.Render(el.ID())}
	if path, ok := el.WidgetPath(); ok {
		state := m.State(el)
		parts = append(parts, st.path.Render("["+path+"]"), st.states[state].Render(string(state)))
	}
	if attrs := el.FormatAttrs(widget.PathAttribute); attrs != "" {
		parts = append(parts, st.attrs.Render(attrs))
	}
	return strings.Join(parts, " ")
}

// printEvents writes every status event already buffered on ch.
func printEvents(w io.Writer, ch <-chan pubsub.Event[lifecycle.StatusEvent]) {
	for {
		select {
		case ev, ok := <-ch:
			if !ok {
				return
			}
			p := ev.Payload
			id := ""
			if el, ok := p.Node.(*tree.Element); ok {
				id = el.ID()
			}
			fmt.Fprintf(w, "event %-7s %s [%s] %s -> %s\n", ev.Type, id, p.Path, p.Previous, p.State)
		default:
			return
		}
	}
}
