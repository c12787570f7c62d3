package cmd

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	zone "github.com/lrstanley/bubblezone"
	"github.com/spf13/cobra"

	"github.com/zjrosen/xwidget/internal/log"
	"github.com/zjrosen/xwidget/internal/tree"
	"github.com/zjrosen/xwidget/internal/ui/inspector"
)

var uiCmd = &cobra.Command{
	Use:   "ui <tree.yaml>",
	Short: "Inspect a tree file interactively",
	Long: `Load a tree file and open an interactive view of its elements. Move
the cursor with j/k or the mouse and apply lifecycle operations to the
selected subtree. Statuses update as the manager reports them.

Everything still attached is destroyed on exit.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		root, err := tree.Load(args[0])
		if err != nil {
			return err
		}

		rt, err := newRuntime(cfg)
		if err != nil {
			return err
		}
		defer func() { _ = rt.Close(context.Background()) }()

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		zone.NewGlobal()
		model := inspector.New(ctx, rt.manager, root)
		p := tea.NewProgram(
			model,
			tea.WithAltScreen(),
			tea.WithMouseCellMotion(),
		)

		_, err = p.Run()
		cancel()
		rt.manager.Destroy(root)
		if err != nil {
			return fmt.Errorf("running inspector: %w", err)
		}
		log.Info(log.CatUI, "inspector closed", "tree", args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(uiCmd)
}
