package commands

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/dashport-dev/dashport/internal/cli/config"
	"github.com/dashport-dev/dashport/internal/engine"
	"github.com/dashport-dev/dashport/pkg/calc"
	"github.com/dashport-dev/dashport/pkg/ident"
)

// loadMappingsFile reads the persisted mapping file if it exists. A missing
// file is not an error; the run simply starts with generated names.
func loadMappingsFile(path string) ([]ident.Mapping, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read mappings file: %w", err)
	}
	return ident.DecodeMappings(data)
}

// saveMappingsFile writes the identifier table to the mapping file.
func saveMappingsFile(path string, t *ident.Table) error {
	data, err := t.MarshalJSON()
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}

// newEngineFromConfig builds an engine from the CLI config, seeded with the
// persisted mapping file when one exists.
func newEngineFromConfig(cfg *config.Config, logger *slog.Logger) (*engine.Engine, error) {
	seed, err := loadMappingsFile(cfg.Mappings)
	if err != nil {
		return nil, err
	}
	return engine.New(engine.Config{
		Target:        cfg.Target,
		Mappings:      seed,
		Concurrency:   cfg.Concurrency,
		GuardDivision: cfg.GuardDivision,
		Logger:        logger,
	})
}

// newTable returns a go-pretty writer in the house style.
func newTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	return t
}

// printDiagnostics writes a diagnostic list, one per line.
func printDiagnostics(w io.Writer, prefix string, diags []calc.Diagnostic) {
	for _, d := range diags {
		fmt.Fprintf(w, "%s%s\n", prefix, d.String())
	}
}
