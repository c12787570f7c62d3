package widget_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/xwidget/internal/tree"
	"github.com/zjrosen/xwidget/internal/widget"
)

func TestBase_InitBindsAndDestroyReleases(t *testing.T) {
	el := tree.NewWidget("n", "widgets/x")
	var order []string
	var clicks int

	b := widget.NewBase(el, func(ctx context.Context, scope *widget.Scope) error {
		scope.OnDestroy(func() { order = append(order, "first") })
		scope.OnDestroy(func() { order = append(order, "second") })
		return nil
	}, widget.Handlers{
		"submit": func(widget.Event) {},
		"click":  func(widget.Event) { clicks++ },
	})

	require.False(t, b.IsInitialized())
	require.ErrorIs(t, b.MarkDone(), widget.ErrNotInitialized)

	require.NoError(t, b.Init(context.Background()))
	require.True(t, b.IsInitialized())
	require.Equal(t, []string{"click", "submit"}, b.BoundEvents())
	require.Same(t, el, b.Node())

	el.Dispatch("click", nil)
	require.Equal(t, 1, clicks)

	require.NoError(t, b.Init(context.Background()), "second Init is a no-op")
	require.Equal(t, 1, el.ListenerCount("click"))

	require.NoError(t, b.MarkDone())
	require.True(t, b.IsDone())

	b.Destroy()
	require.Equal(t, []string{"second", "first"}, order)
	require.False(t, b.IsInitialized())
	require.False(t, b.IsDone())
	require.Zero(t, el.ListenerCount("click"))
	require.Empty(t, b.BoundEvents())

	b.Destroy()
	require.Len(t, order, 2, "destroy is idempotent")
}

func TestBase_FailedSetupIsReleased(t *testing.T) {
	el := tree.NewWidget("n", "widgets/x")
	boom := errors.New("boom")
	released := false

	b := widget.NewBase(el, func(ctx context.Context, scope *widget.Scope) error {
		scope.OnDestroy(func() { released = true })
		return boom
	}, widget.Handlers{"click": func(widget.Event) {}})

	require.ErrorIs(t, b.Init(context.Background()), boom)
	require.True(t, released)
	require.False(t, b.IsInitialized())
	require.Zero(t, el.ListenerCount("click"))
}

func TestBase_PanickingSetup(t *testing.T) {
	el := tree.NewWidget("n", "widgets/x")
	released := false
	b := widget.NewBase(el, func(ctx context.Context, scope *widget.Scope) error {
		scope.OnDestroy(func() { released = true })
		panic("bad")
	}, nil)

	err := b.Init(context.Background())
	require.Error(t, err)
	require.Contains(t, err.Error(), "panicked")
	require.True(t, released)
}

func TestBase_NoSetup(t *testing.T) {
	b := widget.NewBase(tree.NewWidget("n", "widgets/x"), nil, nil)
	require.ErrorIs(t, b.Init(context.Background()), widget.ErrNoSetup)
	require.NotPanics(t, b.Destroy)
}
