package commands

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/dashport-dev/dashport/pkg/target"
)

// NewTargetsCommand creates the targets command.
func NewTargetsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "targets",
		Short: "List available translation targets",
		Run: func(cmd *cobra.Command, _ []string) {
			cfg := GetConfig(cmd.Context())

			t := newTable(cmd.OutOrStdout())
			t.AppendHeader(table.Row{"Target", "Selected"})
			for _, name := range target.List() {
				selected := ""
				if name == cfg.Target {
					selected = "*"
				}
				t.AppendRow(table.Row{name, selected})
			}
			t.Render()
		},
	}
}
