package pubsub

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
)

// ListenCmd waits for the next event on ch and hands it to the Bubble Tea
// update loop as a tea.Msg. It yields nil once ctx is done or ch is closed,
// which ends the listening chain.
func ListenCmd[T any](ctx context.Context, ch <-chan Event[T]) tea.Cmd {
	return func() tea.Msg {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-ch:
			if !ok {
				return nil
			}
			return event
		}
	}
}

// TeaListener keeps one subscription open for a Bubble Tea model. Return
// Listen() from Init and again after handling each event.
type TeaListener[T any] struct {
	ctx context.Context
	ch  <-chan Event[T]
}

// NewTeaListener subscribes through sub. The subscription ends with ctx.
func NewTeaListener[T any](ctx context.Context, sub func(context.Context) <-chan Event[T]) *TeaListener[T] {
	return &TeaListener[T]{ctx: ctx, ch: sub(ctx)}
}

// Listen returns a command that delivers the next event.
func (l *TeaListener[T]) Listen() tea.Cmd {
	return ListenCmd(l.ctx, l.ch)
}
