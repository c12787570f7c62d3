// Package inspector is an interactive Bubble Tea view over a widget tree. It
// drives a lifecycle.Manager from the keyboard or mouse and redraws as the
// manager publishes status events.
package inspector

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	zone "github.com/lrstanley/bubblezone"

	"github.com/zjrosen/xwidget/internal/lifecycle"
	"github.com/zjrosen/xwidget/internal/log"
	"github.com/zjrosen/xwidget/internal/pubsub"
	"github.com/zjrosen/xwidget/internal/tree"
	"github.com/zjrosen/xwidget/internal/ui/styles"
	"github.com/zjrosen/xwidget/internal/widget"
)

// Operations the inspector can run on the selected element.
const (
	OpInit    = "init"
	OpDestroy = "destroy"
	OpDone    = "done"
	OpFail    = "fail"
	OpClick   = "click"
)

// ResultMsg reports the outcome of one operation.
type ResultMsg struct {
	Op  string
	ID  string
	Err error
	// Handled is the number of click handlers that ran.
	Handled int
}

type row struct {
	el    *tree.Element
	depth int
}

var (
	titleStyle    = lipgloss.NewStyle().Bold(true)
	pathStyle     = lipgloss.NewStyle().Foreground(styles.ColorMuted)
	attrStyle     = lipgloss.NewStyle().Faint(true)
	cursorStyle   = lipgloss.NewStyle().Foreground(styles.ColorSelected).Bold(true)
	errorStyle    = lipgloss.NewStyle().Foreground(styles.ColorError)
	footnoteStyle = lipgloss.NewStyle().Foreground(styles.ColorMuted)
)

// Model is the inspector's Bubble Tea model.
type Model struct {
	ctx      context.Context
	manager  *lifecycle.Manager
	root     *tree.Element
	rows     []row
	cursor   int
	listener *pubsub.TeaListener[lifecycle.StatusEvent]

	keys  KeyMap
	help  help.Model
	width int

	status    string
	statusErr bool
	lastEvent string
	events    int
}

// New builds an inspector over root. Status events are read from m until
// ctx is cancelled.
func New(ctx context.Context, m *lifecycle.Manager, root *tree.Element) Model {
	var rows []row
	var flatten func(el *tree.Element, depth int)
	flatten = func(el *tree.Element, depth int) {
		rows = append(rows, row{el: el, depth: depth})
		for _, c := range el.Elements() {
			flatten(c, depth+1)
		}
	}
	flatten(root, 0)

	return Model{
		ctx:      ctx,
		manager:  m,
		root:     root,
		rows:     rows,
		listener: pubsub.NewTeaListener(ctx, m.Subscribe),
		keys:     DefaultKeyMap(),
		help:     help.New(),
		status:   "ready",
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return m.listener.Listen()
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		if msg.Action != tea.MouseActionRelease || msg.Button != tea.MouseButtonLeft {
			return m, nil
		}
		for i := range m.rows {
			if z := zone.Get(rowZoneID(i)); z != nil && z.InBounds(msg) {
				m.cursor = i
				break
			}
		}
		return m, nil

	case pubsub.Event[lifecycle.StatusEvent]:
		m.events++
		m.lastEvent = describeEvent(msg)
		return m, m.listener.Listen()

	case ResultMsg:
		m.status, m.statusErr = describeResult(msg), msg.Err != nil
		if msg.Err != nil {
			log.Debug(log.CatUI, "operation failed", "op", msg.Op, "id", msg.ID, "error", msg.Err)
		}
		return m, nil
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.rows)-1 {
			m.cursor++
		}
	case key.Matches(msg, m.keys.Init):
		return m.start(OpInit, m.Selected())
	case key.Matches(msg, m.keys.InitAll):
		return m.start(OpInit, m.root)
	case key.Matches(msg, m.keys.Destroy):
		return m.start(OpDestroy, m.Selected())
	case key.Matches(msg, m.keys.Done):
		return m.start(OpDone, m.Selected())
	case key.Matches(msg, m.keys.Fail):
		return m.start(OpFail, m.Selected())
	case key.Matches(msg, m.keys.Click):
		return m.start(OpClick, m.Selected())
	}
	return m, nil
}

// start runs op off the update loop. Init can block on slow resolvers, and
// status events keep arriving while it does.
func (m Model) start(op string, el *tree.Element) (tea.Model, tea.Cmd) {
	m.status, m.statusErr = fmt.Sprintf("%s %s ...", op, el.ID()), false
	return m, Run(m.ctx, m.manager, op, el)
}

// Run returns a command that applies op to el and reports a ResultMsg.
func Run(ctx context.Context, mgr *lifecycle.Manager, op string, el *tree.Element) tea.Cmd {
	return func() tea.Msg {
		res := ResultMsg{Op: op, ID: el.ID()}
		switch op {
		case OpInit:
			res.Err = mgr.InitTree(ctx, el)
		case OpDestroy:
			mgr.Destroy(el)
		case OpDone:
			res.Err = mgr.MarkDone(el)
		case OpFail:
			mgr.SimulateFail(el)
		case OpClick:
			res.Handled = el.Dispatch("click", nil)
		default:
			res.Err = fmt.Errorf("unknown operation %q", op)
		}
		return res
	}
}

// Selected returns the element under the cursor.
func (m Model) Selected() *tree.Element {
	return m.rows[m.cursor].el
}

// Cursor returns the selected row index in pre-order.
func (m Model) Cursor() int {
	return m.cursor
}

// View implements tea.Model.
func (m Model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("xwidget inspector"))
	b.WriteString("\n\n")

	for i, r := range m.rows {
		b.WriteString(zone.Mark(rowZoneID(i), m.renderRow(i, r)))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(lifecycle.Summary(m.manager.Counts()))
	b.WriteString("\n")
	if m.statusErr {
		b.WriteString(errorStyle.Render(m.status))
	} else {
		b.WriteString(m.status)
	}
	b.WriteString("\n")
	if m.lastEvent != "" {
		b.WriteString(footnoteStyle.Render(fmt.Sprintf("event %d: %s", m.events, m.lastEvent)))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))
	return zone.Scan(b.String())
}

func (m Model) renderRow(i int, r row) string {
	marker := "  "
	if i == m.cursor {
		marker = cursorStyle.Render("> ")
	}

	parts := []string{strings.Repeat("  ", r.depth) + r.el.ID()}
	if path, ok := r.el.WidgetPath(); ok {
		state := m.manager.State(r.el)
		parts = append(parts, pathStyle.Render("["+path+"]"), styles.State(nil, state).Render(string(state)))
	}
	if attrs := r.el.FormatAttrs(widget.PathAttribute); attrs != "" {
		parts = append(parts, attrStyle.Render(attrs))
	}
	return marker + strings.Join(parts, " ")
}

func rowZoneID(i int) string {
	return fmt.Sprintf("inspector-row-%d", i)
}

func describeResult(r ResultMsg) string {
	switch {
	case r.Err != nil:
		return fmt.Sprintf("%s %s: %v", r.Op, r.ID, r.Err)
	case r.Op == OpClick:
		return fmt.Sprintf("click %s: %d handler(s)", r.ID, r.Handled)
	default:
		return fmt.Sprintf("%s %s: ok", r.Op, r.ID)
	}
}

func describeEvent(ev pubsub.Event[lifecycle.StatusEvent]) string {
	p := ev.Payload
	id := ""
	if el, ok := p.Node.(*tree.Element); ok {
		id = el.ID()
	}
	return fmt.Sprintf("%s %s %s -> %s", ev.Type, id, p.Previous, p.State)
}
