package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dashport-dev/dashport/internal/engine"
	"github.com/dashport-dev/dashport/pkg/calc"
	"github.com/dashport-dev/dashport/pkg/parser"
)

// NewParseCommand creates the parse command.
func NewParseCommand() *cobra.Command {
	var workbookPath string
	var showTokens bool
	var showAST bool

	cmd := &cobra.Command{
		Use:   "parse <formula>",
		Short: "Parse a single calculation formula",
		Long: `Parse checks one formula and reports its field references and any
diagnostics. With --workbook, references are resolved against that
workbook's fields; without it, every reference is reported unresolved.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			source := args[0]

			var known *calc.FieldSet
			if workbookPath != "" {
				wb, err := engine.LoadWorkbook(workbookPath)
				if err != nil {
					return err
				}
				known = calc.NewFieldSet(wb.Fields)
			}

			if showTokens {
				for _, tok := range parser.Tokenize(source) {
					fmt.Fprintf(cmd.OutOrStdout(), "%-12s %q (%s)\n",
						tok.Type, tok.Literal, tok.Pos)
				}
				fmt.Fprintln(cmd.OutOrStdout())
			}

			result := parser.Parse(source, known)

			if showAST && result.Expr != nil {
				fmt.Fprint(cmd.OutOrStdout(), calc.Sprint(result.Expr))
				fmt.Fprintln(cmd.OutOrStdout())
			}

			if len(result.References) > 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "references: %s\n",
					strings.Join(result.References, ", "))
			}
			printDiagnostics(cmd.OutOrStdout(), "", result.Diagnostics)

			effective := result.Diagnostics
			if workbookPath == "" {
				effective = filterUnresolved(effective)
			}
			if calc.HasFailure(effective) {
				return fmt.Errorf("formula has errors")
			}
			fmt.Fprintln(cmd.OutOrStdout(), "ok")
			return nil
		},
	}

	cmd.Flags().StringVar(&workbookPath, "workbook", "", "Resolve references against this workbook")
	cmd.Flags().BoolVar(&showTokens, "tokens", false, "Dump the token stream")
	cmd.Flags().BoolVar(&showAST, "ast", false, "Dump the parsed expression tree")
	return cmd
}

// filterUnresolved drops unresolved-reference diagnostics; without a
// workbook the parser cannot know any field, so those are expected.
func filterUnresolved(diags []calc.Diagnostic) []calc.Diagnostic {
	var out []calc.Diagnostic
	for _, d := range diags {
		if d.Kind != calc.DiagUnresolvedField {
			out = append(out, d)
		}
	}
	return out
}
