package commands

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"github.com/dashport-dev/dashport/internal/engine"
	"github.com/dashport-dev/dashport/pkg/calc"
)

// NewTranslateCommand creates the translate command.
func NewTranslateCommand() *cobra.Command {
	var saveMappings bool

	cmd := &cobra.Command{
		Use:   "translate <workbook>",
		Short: "Translate a workbook's calculations to the target language",
		Long: `Translate parses every calculation in the workbook, orders them by
dependency, and emits a target-language expression per calculation.

A calculation that fails stays isolated: the rest of the workbook still
translates, and its diagnostics explain what went wrong.`,
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

			if saveMappings {
				if err := saveMappingsFile(cfg.Mappings, run.Mappings); err != nil {
					return fmt.Errorf("failed to save mappings: %w", err)
				}
				logger.Info("saved mappings", "path", cfg.Mappings)
			}

			switch cfg.OutputFormat {
			case "json":
				return renderRunJSON(cmd.OutOrStdout(), run)
			case "code":
				return renderRunCode(cmd.OutOrStdout(), run)
			default:
				return renderRunTable(cmd.OutOrStdout(), cmd.ErrOrStderr(), run)
			}
		},
	}

	cmd.Flags().BoolVar(&saveMappings, "save-mappings", false,
		"Write the identifier mapping file after the run")
	return cmd
}

// runRecord is the JSON shape of one translated calculation.
type runRecord struct {
	Field               string            `json:"field"`
	Identifier          string            `json:"identifier"`
	Status              engine.Status     `json:"status"`
	Expression          string            `json:"expression,omitempty"`
	References          []string          `json:"references,omitempty"`
	RequiresAggregation bool              `json:"requires_aggregation,omitempty"`
	UsesWindow          bool              `json:"uses_window,omitempty"`
	Diagnostics         []calc.Diagnostic `json:"diagnostics,omitempty"`
}

func renderRunJSON(w io.Writer, run *engine.Run) error {
	out := struct {
		RunID        string            `json:"run_id"`
		Workbook     string            `json:"workbook"`
		Target       string            `json:"target"`
		Order        []string          `json:"order"`
		Calculations []runRecord       `json:"calculations"`
		Diagnostics  []calc.Diagnostic `json:"diagnostics,omitempty"`
	}{
		RunID:       run.ID,
		Workbook:    run.Workbook,
		Target:      run.Target,
		Order:       run.Order,
		Diagnostics: run.Diagnostics,
	}
	for _, c := range run.Calculations {
		out.Calculations = append(out.Calculations, runRecord{
			Field:               c.Field.RawName,
			Identifier:          c.Identifier,
			Status:              c.Status,
			Expression:          c.Expression,
			References:          c.References,
			RequiresAggregation: c.RequiresAggregation,
			UsesWindow:          c.UsesWindow,
			Diagnostics:         c.Diagnostics,
		})
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

// renderRunCode emits the translated calculations as assignable code lines
// in dependency order, ready to paste into the generated application.
func renderRunCode(w io.Writer, run *engine.Run) error {
	for _, key := range run.Order {
		c, ok := run.Calculation(key)
		if !ok || c.Status != engine.StatusTranslated {
			continue
		}
		switch run.Target {
		case "pandas":
			fmt.Fprintf(w, "df['%s'] = %s\n", c.Identifier, c.Expression)
		default:
			fmt.Fprintf(w, "%s AS %s,\n", c.Expression, c.Identifier)
		}
	}
	return nil
}

func renderRunTable(w, errW io.Writer, run *engine.Run) error {
	t := newTable(w)
	t.AppendHeader(table.Row{"Calculation", "Identifier", "Status", "Expression"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Name: "Expression", WidthMax: 60, WidthMaxEnforcer: text.WrapSoft},
	})
	for _, c := range run.Calculations {
		t.AppendRow(table.Row{c.Field.RawName, c.Identifier, string(c.Status), c.Expression})
	}
	t.Render()

	counts := run.Counts()
	fmt.Fprintf(w, "\n%d translated, %d failed, %d excluded (target: %s)\n",
		counts[engine.StatusTranslated],
		counts[engine.StatusParseFailed]+counts[engine.StatusTranslateFailed],
		counts[engine.StatusExcluded],
		run.Target)

	printDiagnostics(errW, "", run.Diagnostics)
	for _, c := range run.Calculations {
		printDiagnostics(errW, c.Field.RawName+": ", c.Diagnostics)
	}
	return nil
}
