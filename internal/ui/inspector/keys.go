package inspector

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the inspector keybindings.
type KeyMap struct {
	Up   key.Binding
	Down key.Binding

	Init    key.Binding
	InitAll key.Binding
	Destroy key.Binding
	Done    key.Binding
	Fail    key.Binding
	Click   key.Binding

	Help key.Binding
	Quit key.Binding
}

// DefaultKeyMap returns the default keybindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/↑", "move up"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/↓", "move down"),
		),
		Init: key.NewBinding(
			key.WithKeys("i"),
			key.WithHelp("i", "init subtree"),
		),
		InitAll: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "init whole tree"),
		),
		Destroy: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "destroy subtree"),
		),
		Done: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "mark done"),
		),
		Fail: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "simulate failure"),
		),
		Click: key.NewBinding(
			key.WithKeys("c", "enter"),
			key.WithHelp("c/enter", "click"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "toggle help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// ShortHelp returns keybindings for the short help view.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Init, k.Destroy, k.Done, k.Fail, k.Help, k.Quit}
}

// FullHelp returns keybindings for the full help view.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down},                 // Navigation
		{k.Init, k.InitAll, k.Destroy}, // Lifecycle
		{k.Done, k.Fail, k.Click},      // Widget
		{k.Help, k.Quit},               // General
	}
}
