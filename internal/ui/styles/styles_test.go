package styles

import (
	"bytes"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/require"

	"github.com/zjrosen/xwidget/internal/lifecycle"
)

func TestState_CoversEveryState(t *testing.T) {
	for _, s := range []lifecycle.State{
		lifecycle.StateUninitialized,
		lifecycle.StateInitializing,
		lifecycle.StateInitialized,
		lifecycle.StateDone,
		lifecycle.StateFailed,
	} {
		_, ok := stateColors[s]
		require.True(t, ok, "no colour for %s", s)
	}
	require.True(t, State(nil, lifecycle.StateFailed).GetBold())
	require.False(t, State(nil, lifecycle.StateDone).GetBold())
}

func TestState_PlainProfileHasNoEscapes(t *testing.T) {
	r := lipgloss.NewRenderer(&bytes.Buffer{})
	r.SetColorProfile(termenv.Ascii)
	require.Equal(t, "failed", State(r, lifecycle.StateFailed).Render("failed"))
}
