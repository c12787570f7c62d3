package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/zjrosen/xwidget/internal/flags"
	"github.com/zjrosen/xwidget/internal/log"
	"github.com/zjrosen/xwidget/internal/tree"
	"github.com/zjrosen/xwidget/internal/watcher"
)

var watchCmd = &cobra.Command{
	Use:   "watch <tree.yaml>",
	Short: "Initialize a tree file and re-initialize it on every change",
	Long: `Load and initialize a tree file, then watch it. Each time the file
changes the previous tree is destroyed and the new one initialized, and the
status is printed again. A file that fails to parse leaves the running tree
in place.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		rt, err := newRuntime(cfg)
		if err != nil {
			return err
		}
		defer func() { _ = rt.Close(context.Background()) }()

		rl := &reloader{path: args[0], rt: rt, out: cmd.OutOrStdout()}
		if err := rl.reload(ctx); err != nil {
			return err
		}
		defer rl.teardown()

		w, err := watcher.New(watcher.Config{Path: args[0], DebounceDur: cfg.Watch.Debounce})
		if err != nil {
			return err
		}
		changes, err := w.Start()
		if err != nil {
			return err
		}
		defer func() { _ = w.Stop() }()

		for {
			select {
			case <-ctx.Done():
				return nil
			case <-changes:
				if err := rl.reload(ctx); err != nil {
					fmt.Fprintf(rl.out, "reload: %v\n", err)
				}
			}
		}
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

// reloader swaps the running tree for the contents of path.
type reloader struct {
	path string
	rt   *runtime
	out  io.Writer
	root *tree.Element
}

// reload parses path and, if it parses, replaces the running tree with it.
// Parse errors leave the current tree initialized.
func (r *reloader) reload(ctx context.Context) error {
	next, err := tree.Load(r.path)
	if err != nil {
		return err
	}

	r.teardown()
	if err := r.rt.invalidate(ctx); err != nil {
		log.ErrorErr(log.CatCache, "invalidate failed", err)
	}
	if r.rt.flags.Enabled(flags.FlagSweepOnReload) {
		if n := r.rt.manager.Sweep(next); n > 0 {
			log.Info(log.CatLifecycle, "swept stale records", "count", n)
		}
	}

	r.root = next
	if err := r.rt.manager.InitTree(ctx, next); err != nil {
		fmt.Fprintf(r.out, "init: %v\n", err)
	}
	return renderStatus(r.out, next, r.rt.manager, r.rt.flags.Enabled(flags.FlagStatusColor))
}

// teardown destroys the running tree, if any.
func (r *reloader) teardown() {
	if r.root == nil {
		return
	}
	r.rt.manager.Destroy(r.root)
	r.root = nil
}
