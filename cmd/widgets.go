package cmd

import (
	"encoding/json"
	"io"

	"github.com/spf13/cobra"

	"github.com/zjrosen/xwidget/internal/resolver"
	"github.com/zjrosen/xwidget/internal/widgets"
)

var widgetsCmd = &cobra.Command{
	Use:   "widgets",
	Short: "List the widget paths available to tree files",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return listWidgets(cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(widgetsCmd)
}

func listWidgets(w io.Writer) error {
	static := resolver.NewStatic()
	if err := widgets.Register(static); err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(static.Paths())
}
