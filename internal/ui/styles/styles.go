// Package styles holds the Lip Gloss colours shared by the status printer
// and the interactive inspector.
package styles

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/zjrosen/xwidget/internal/lifecycle"
)

// Palette.
const (
	ColorMuted    = lipgloss.Color("#8B949E")
	ColorPending  = lipgloss.Color("#D29922")
	ColorOK       = lipgloss.Color("#3FB950")
	ColorDone     = lipgloss.Color("#58A6FF")
	ColorError    = lipgloss.Color("#F85149")
	ColorSelected = lipgloss.Color("#BC8CFF")
)

var stateColors = map[lifecycle.State]lipgloss.Color{
	lifecycle.StateUninitialized: ColorMuted,
	lifecycle.StateInitializing:  ColorPending,
	lifecycle.StateInitialized:   ColorOK,
	lifecycle.StateDone:          ColorDone,
	lifecycle.StateFailed:        ColorError,
}

// State returns the style for a lifecycle state drawn with r. A nil r uses
// the default renderer.
func State(r *lipgloss.Renderer, s lifecycle.State) lipgloss.Style {
	if r == nil {
		r = lipgloss.DefaultRenderer()
	}
	st := r.NewStyle().Foreground(stateColors[s])
	if s == lifecycle.StateFailed {
		st = st.Bold(true)
	}
	return st
}
