package commands

import (
	"errors"
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/dashport-dev/dashport/internal/engine"
	"github.com/dashport-dev/dashport/pkg/ident"
)

// NewMappingsCommand creates the mappings command group.
func NewMappingsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mappings",
		Short: "Inspect and edit the field-to-identifier mapping table",
	}
	cmd.AddCommand(newMappingsListCommand())
	cmd.AddCommand(newMappingsExportCommand())
	cmd.AddCommand(newMappingsImportCommand())
	cmd.AddCommand(newMappingsRenameCommand())
	return cmd
}

// assignWorkbook builds the identifier table: the persisted mapping file,
// if any, plus generated mappings for fields the workbook adds. User edits
// in the file survive because assignment never touches existing entries.
func assignWorkbook(mappingsPath, workbookPath string) (*ident.Table, error) {
	seed, err := loadMappingsFile(mappingsPath)
	if err != nil {
		return nil, err
	}

	table := ident.NewTable()
	if len(seed) > 0 {
		if err := table.Import(seed); err != nil {
			return nil, err
		}
	}

	if workbookPath != "" {
		wb, err := engine.LoadWorkbook(workbookPath)
		if err != nil {
			return nil, err
		}
		for _, f := range wb.Fields {
			table.Assign(f)
		}
	}
	return table, nil
}

func newMappingsListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list [workbook]",
		Short: "List identifier mappings",
		Long: `List shows the identifier table: the persisted mapping file merged with
generated mappings for any fields the given workbook adds.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := GetConfig(cmd.Context())

			var workbook string
			if len(args) == 1 {
				workbook = args[0]
			}
			tbl, err := assignWorkbook(cfg.Mappings, workbook)
			if err != nil {
				return err
			}

			t := newTable(cmd.OutOrStdout())
			t.AppendHeader(table.Row{"Source Field", "Display Name", "Identifier", "Kind", "Type", "Status"})
			for _, m := range tbl.Export() {
				t.AppendRow(table.Row{
					m.SourceKey, m.DisplayName, m.TargetIdentifier,
					string(m.Kind), string(m.DataType), string(m.Status),
				})
			}
			t.Render()

			s := tbl.Stats()
			fmt.Fprintf(cmd.OutOrStdout(), "\n%d mappings: %d valid, %d invalid\n",
				s.Total, s.Valid, s.Invalid)
			return nil
		},
	}
}

func newMappingsExportCommand() *cobra.Command {
	var outPath string

	cmd := &cobra.Command{
		Use:   "export <workbook>",
		Short: "Export identifier mappings for a workbook",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := GetConfig(cmd.Context())

			tbl, err := assignWorkbook(cfg.Mappings, args[0])
			if err != nil {
				return err
			}

			path := outPath
			if path == "" {
				path = cfg.Mappings
			}
			if err := saveMappingsFile(path, tbl); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d mappings to %s\n", tbl.Len(), path)
			return nil
		},
	}

	cmd.Flags().StringVar(&outPath, "out", "", "Output file (default: the configured mappings path)")
	return cmd
}

func newMappingsImportCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Validate and install a mapping file",
		Long: `Import validates the given mapping file and installs it as the configured
mapping file. The import is all-or-nothing: if any record is structurally
broken, every offending record is reported and nothing changes.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := GetConfig(cmd.Context())

			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			tbl, err := ident.LoadTable(data)
			if err != nil {
				var importErr *ident.ImportError
				if errors.As(err, &importErr) {
					for _, r := range importErr.Records {
						fmt.Fprintln(cmd.ErrOrStderr(), r.String())
					}
				}
				return fmt.Errorf("import rejected")
			}

			if err := saveMappingsFile(cfg.Mappings, tbl); err != nil {
				return err
			}

			s := tbl.Stats()
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d mappings (%d valid, %d invalid) to %s\n",
				s.Total, s.Valid, s.Invalid, cfg.Mappings)
			return nil
		},
	}
}

func newMappingsRenameCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "rename <source-field> <identifier>",
		Short: "Rename the identifier of one mapping",
		Long: `Rename sets a user-chosen identifier for a source field. Conflicting or
invalid names are rejected outright; dashport never silently renames a
user's choice.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := GetConfig(cmd.Context())

			tbl, err := assignWorkbook(cfg.Mappings, "")
			if err != nil {
				return err
			}

			if err := tbl.Rename(args[0], args[1]); err != nil {
				var conflict *ident.ConflictError
				if errors.As(err, &conflict) {
					return fmt.Errorf("%s; rename or choose another name", conflict.Error())
				}
				return err
			}

			if err := saveMappingsFile(cfg.Mappings, tbl); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s -> %s\n", args[0], args[1])
			return nil
		},
	}
}
