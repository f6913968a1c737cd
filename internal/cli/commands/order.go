package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dashport-dev/dashport/internal/engine"
)

// NewOrderCommand creates the order command.
func NewOrderCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "order <workbook>",
		Short: "Show the dependency-resolved translation order",
		Long: `Order parses the workbook's calculations and prints the order translation
would use, with cycle members reported and excluded.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := GetConfig(cmd.Context())
			logger := GetLogger(cmd.Context())

			wb, err := engine.LoadWorkbook(args[0])
			if err != nil {
				return err
			}

			e, err := newEngineFromConfig(cfg, logger)
			if err != nil {
				return err
			}
			run, err := e.Run(cmd.Context(), wb)
			if err != nil {
				return err
			}

			for i, key := range run.Order {
				c, _ := run.Calculation(key)
				fmt.Fprintf(cmd.OutOrStdout(), "%3d. %s (%s)\n", i+1, key, c.Identifier)
			}

			excluded := 0
			for _, c := range run.Calculations {
				if c.Status == engine.StatusExcluded {
					excluded++
				}
			}
			if excluded > 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "\n%d calculation(s) excluded by cycles:\n", excluded)
				printDiagnostics(cmd.OutOrStdout(), "  ", run.Diagnostics)
			}
			return nil
		},
	}
}
