package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/zjrosen/xwidget/internal/config"
	"github.com/zjrosen/xwidget/internal/flags"
	"github.com/zjrosen/xwidget/internal/lifecycle"
	"github.com/zjrosen/xwidget/internal/pubsub"
	"github.com/zjrosen/xwidget/internal/tree"
)

var (
	runOpsFlag  []string
	runEvents   bool
	runNoColour bool
)

var runCmd = &cobra.Command{
	Use:   "run <tree.yaml>",
	Short: "Apply lifecycle operations to a tree file and print the result",
	Long: `Load a tree file, apply lifecycle operations in order and print the
status of every node.

Operations take the form verb:id, where id names an element of the tree:
  init:<id>          initialize the subtree rooted at id
  destroy:<id>       destroy the subtree, children first
  done:<id>          mark an initialized widget done
  fail:<id>          force the subtree into the failed state
  click:<id>         dispatch a click event
  input:<id>=<text>  dispatch an input event carrying text
  change:<id>=<val>  dispatch a change event carrying val
  sweep              drop records of nodes no longer in the tree

Without --op the whole tree is initialized.

Examples:
  xwidget run examples/tree.yaml
  xwidget run tree.yaml --op init:root --op click:counter --op done:counter
  xwidget run tree.yaml --op init:root --op fail:panel --events`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		root, err := tree.Load(args[0])
		if err != nil {
			return err
		}

		ops, err := parseOps(runOpsFlag)
		if err != nil {
			return err
		}
		if len(ops) == 0 {
			ops = []op{{verb: "init", target: root.ID()}}
		}

		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		return runTree(ctx, cmd.OutOrStdout(), cfg, root, ops, runEvents, !runNoColour)
	},
}

func init() {
	runCmd.Flags().StringArrayVar(&runOpsFlag, "op", nil, "operation to apply (repeatable, e.g. --op init:root)")
	runCmd.Flags().BoolVar(&runEvents, "events", false, "print status events emitted by the operations")
	runCmd.Flags().BoolVar(&runNoColour, "no-color", false, "disable coloured status output")
	rootCmd.AddCommand(runCmd)
}

// runTree applies ops to root with a fresh runtime and prints the resulting
// status, preceded by the status events when showEvents is set.
func runTree(ctx context.Context, out io.Writer, c config.Config, root *tree.Element, ops []op, showEvents, color bool) error {
	var extra []lifecycle.Option
	if showEvents {
		// Events are printed after the last operation, so the subscription
		// has to hold all of them.
		broker := pubsub.NewBrokerWithBuffer[lifecycle.StatusEvent](eventBufferSize(root, ops))
		defer broker.Close()
		extra = append(extra, lifecycle.WithStatusBroker(broker))
	}

	rt, err := newRuntime(c, extra...)
	if err != nil {
		return err
	}
	defer func() { _ = rt.Close(context.Background()) }()

	events := rt.manager.Subscribe(ctx)
	if err := applyOps(ctx, out, rt.manager, root, ops); err != nil {
		return err
	}
	if showEvents {
		printEvents(out, events)
	}
	return renderStatus(out, root, rt.manager, color && rt.flags.Enabled(flags.FlagStatusColor))
}

// eventBufferSize bounds the status events ops can emit on root. A managed
// node yields at most two events per operation: init publishes initializing
// and its outcome, and a refused MarkDone publishes done and its rollback.
func eventBufferSize(root *tree.Element, ops []op) int {
	managed := 0
	root.Walk(func(el *tree.Element) bool {
		if _, ok := el.WidgetPath(); ok {
			managed++
		}
		return true
	})
	return max(pubsub.DefaultBufferSize, 2*managed*len(ops))
}

// op is one lifecycle or event operation from the command line.
type op struct {
	verb   string
	target string
	value  string
}

var opVerbs = map[string]bool{
	"init":    true,
	"destroy": true,
	"done":    true,
	"fail":    true,
	"click":   true,
	"input":   true,
	"change":  true,
	"sweep":   false,
}

func parseOps(specs []string) ([]op, error) {
	ops := make([]op, 0, len(specs))
	for _, s := range specs {
		o, err := parseOp(s)
		if err != nil {
			return nil, err
		}
		ops = append(ops, o)
	}
	return ops, nil
}

func parseOp(s string) (op, error) {
	verb, rest, hasTarget := strings.Cut(s, ":")
	needsTarget, known := opVerbs[verb]
	if !known {
		return op{}, fmt.Errorf("unknown operation %q", s)
	}
	if !needsTarget {
		if hasTarget {
			return op{}, fmt.Errorf("operation %q takes no target", verb)
		}
		return op{verb: verb}, nil
	}
	if rest == "" {
		return op{}, fmt.Errorf("operation %q needs a target: %s:<id>", s, verb)
	}
	target, value, _ := strings.Cut(rest, "=")
	return op{verb: verb, target: target, value: value}, nil
}

// applyOps runs ops against root in order. Lifecycle failures are reported
// on w and do not stop later operations; an unknown target does.
func applyOps(ctx context.Context, w io.Writer, m *lifecycle.Manager, root *tree.Element, ops []op) error {
	for _, o := range ops {
		if o.verb == "sweep" {
			fmt.Fprintf(w, "swept %d records\n", m.Sweep(root))
			continue
		}

		el := root.Find(o.target)
		if el == nil {
			return fmt.Errorf("%s: no element with id %q", o.verb, o.target)
		}

		switch o.verb {
		case "init":
			m.Init(ctx, el, func(errs lifecycle.Errors) {
				for _, e := range errs {
					fmt.Fprintf(w, "init %s: %v\n", o.target, e)
				}
			})
		case "destroy":
			m.Destroy(el)
		case "done":
			if err := m.MarkDone(el); err != nil {
				fmt.Fprintf(w, "done %s: %v\n", o.target, err)
			}
		case "fail":
			m.SimulateFail(el)
		case "click":
			el.Dispatch("click", nil)
		case "input", "change":
			el.Dispatch(o.verb, map[string]string{"value": o.value})
		}
	}
	return nil
}
