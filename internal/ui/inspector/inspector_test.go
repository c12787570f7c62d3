package inspector

import (
	"bytes"
	"context"
	"os"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/exp/teatest"
	zone "github.com/lrstanley/bubblezone"
	"github.com/stretchr/testify/require"

	"github.com/zjrosen/xwidget/internal/lifecycle"
	"github.com/zjrosen/xwidget/internal/pubsub"
	"github.com/zjrosen/xwidget/internal/resolver"
	"github.com/zjrosen/xwidget/internal/tree"
	"github.com/zjrosen/xwidget/internal/widgets"
)

const sampleTree = `
id: root
children:
  - id: title
    widget: widgets/text
  - id: panel
    widget: widgets/counter
    children:
      - id: toggle
        widget: widgets/theme
  - id: bad
    widget: widgets/broken
`

func TestMain(m *testing.M) {
	zone.NewGlobal()
	os.Exit(m.Run())
}

func newTestModel(t *testing.T) (Model, *lifecycle.Manager, *tree.Element) {
	t.Helper()
	static := resolver.NewStatic()
	require.NoError(t, widgets.Register(static))
	mgr := lifecycle.New(static)
	t.Cleanup(mgr.Close)

	root, err := tree.Parse([]byte(sampleTree))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	return New(ctx, mgr, root), mgr, root
}

func keyPress(s string) tea.KeyMsg {
	switch s {
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// press sends a key and, when the key started an operation, feeds the
// resulting ResultMsg back into the model.
func press(t *testing.T, m Model, s string) Model {
	t.Helper()
	next, cmd := m.Update(keyPress(s))
	m = next.(Model)
	if cmd == nil {
		return m
	}
	msg := cmd()
	res, ok := msg.(ResultMsg)
	require.True(t, ok, "expected ResultMsg, got %T", msg)
	next, _ = m.Update(res)
	return next.(Model)
}

func TestUpdate_CursorMovesWithinRows(t *testing.T) {
	m, _, _ := newTestModel(t)
	require.Equal(t, "root", m.Selected().ID())

	m = press(t, m, "k")
	require.Equal(t, 0, m.Cursor(), "cursor stays on the first row")

	m = press(t, m, "j")
	m = press(t, m, "down")
	require.Equal(t, "panel", m.Selected().ID())

	for range 10 {
		m = press(t, m, "j")
	}
	require.Equal(t, "bad", m.Selected().ID(), "cursor stops on the last row")

	m = press(t, m, "up")
	require.Equal(t, "toggle", m.Selected().ID())
}

func TestUpdate_InitSelectedSubtree(t *testing.T) {
	m, mgr, root := newTestModel(t)
	m = press(t, m, "j")
	m = press(t, m, "j")
	require.Equal(t, "panel", m.Selected().ID())

	m = press(t, m, "i")
	require.Equal(t, "init panel: ok", m.status)
	require.False(t, m.statusErr)

	require.Equal(t, lifecycle.StateInitialized, mgr.State(root.Find("panel")))
	require.Equal(t, lifecycle.StateInitialized, mgr.State(root.Find("toggle")))
	require.Equal(t, lifecycle.StateUninitialized, mgr.State(root.Find("title")), "siblings outside the subtree are untouched")
}

func TestUpdate_InitAllReportsFailure(t *testing.T) {
	m, mgr, root := newTestModel(t)

	m = press(t, m, "a")
	require.True(t, m.statusErr)
	require.Contains(t, m.status, "init root:")
	require.Equal(t, lifecycle.StateFailed, mgr.State(root.Find("bad")))
	require.Contains(t, m.View(), "failed=1")
}

func TestUpdate_ClickDoneFailDestroy(t *testing.T) {
	m, mgr, root := newTestModel(t)
	panel := root.Find("panel")
	m = press(t, m, "j")
	m = press(t, m, "j")
	m = press(t, m, "i")

	m = press(t, m, "c")
	require.Equal(t, "click panel: 1 handler(s)", m.status)
	count, _ := panel.Attr(widgets.AttrCount)
	require.Equal(t, "1", count)
	require.Contains(t, m.View(), `count="1"`)

	m = press(t, m, "d")
	require.Equal(t, "done panel: ok", m.status)
	require.Equal(t, lifecycle.StateDone, mgr.State(panel))

	m = press(t, m, "d")
	require.True(t, m.statusErr, "a second MarkDone is rejected")

	m = press(t, m, "j")
	m = press(t, m, "f")
	require.Equal(t, lifecycle.StateFailed, mgr.State(root.Find("toggle")))

	m = press(t, m, "k")
	m = press(t, m, "x")
	require.Equal(t, "destroy panel: ok", m.status)
	require.Equal(t, lifecycle.StateUninitialized, mgr.State(panel))
	require.Zero(t, mgr.Len())
}

func TestUpdate_StatusEventRelistens(t *testing.T) {
	m, _, root := newTestModel(t)
	ev := pubsub.Event[lifecycle.StatusEvent]{
		Type: pubsub.UpdatedEvent,
		Payload: lifecycle.StatusEvent{
			Node:     root.Find("title"),
			State:    lifecycle.StateInitialized,
			Previous: lifecycle.StateInitializing,
		},
	}

	next, cmd := m.Update(ev)
	m = next.(Model)
	require.NotNil(t, cmd, "the model keeps listening after each event")
	require.Equal(t, 1, m.events)
	require.Contains(t, m.lastEvent, "title")
	require.Contains(t, m.View(), "event 1:")
}

func TestUpdate_HelpAndQuit(t *testing.T) {
	m, _, _ := newTestModel(t)
	require.NotContains(t, m.View(), "init whole tree")

	m = press(t, m, "?")
	require.Contains(t, m.View(), "init whole tree")

	_, cmd := m.Update(keyPress("q"))
	require.NotNil(t, cmd)
	require.IsType(t, tea.QuitMsg{}, cmd())
}

func TestRun_UnknownOperation(t *testing.T) {
	_, mgr, root := newTestModel(t)
	msg := Run(context.Background(), mgr, "explode", root)()
	require.Error(t, msg.(ResultMsg).Err)
}

func TestProgram_InitPushesStatuses(t *testing.T) {
	m, mgr, root := newTestModel(t)

	tm := teatest.NewTestModel(t, m, teatest.WithInitialTermSize(100, 30))
	teatest.WaitFor(t, tm.Output(), func(b []byte) bool {
		return bytes.Contains(b, []byte("xwidget inspector"))
	}, teatest.WithDuration(2*time.Second))

	tm.Send(keyPress("j"))
	tm.Send(keyPress("i"))
	teatest.WaitFor(t, tm.Output(), func(b []byte) bool {
		return bytes.Contains(b, []byte("init title: ok"))
	}, teatest.WithDuration(2*time.Second))

	tm.Send(keyPress("q"))
	final := tm.FinalModel(t, teatest.WithFinalTimeout(2*time.Second)).(Model)

	require.Equal(t, "title", final.Selected().ID())
	require.Equal(t, lifecycle.StateInitialized, mgr.State(root.Find("title")))
	require.Positive(t, final.events, "status events reach the model through the subscription")
}
