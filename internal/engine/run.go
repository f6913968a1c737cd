package engine

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/dashport-dev/dashport/pkg/calc"
	"github.com/dashport-dev/dashport/pkg/ident"
	"github.com/dashport-dev/dashport/pkg/parser"
	"github.com/dashport-dev/dashport/pkg/resolver"
	"github.com/dashport-dev/dashport/pkg/translate"
)

// Status is the lifecycle state of one calculation within a run.
type Status string

// Calculation status constants.
const (
	StatusUnparsed        Status = "unparsed"
	StatusParsed          Status = "parsed"
	StatusParseFailed     Status = "parse-failed"
	StatusTranslated      Status = "translated"
	StatusTranslateFailed Status = "translate-failed"
	StatusExcluded        Status = "excluded-by-cycle"
)

// Calculation is the per-calculation result of a run.
type Calculation struct {
	Field      calc.Field
	Identifier string
	Status     Status
	// Expression is the translated target expression; set for translated
	// calculations and, best-effort, for failed ones.
	Expression string
	// References lists the raw field names the formula mentions.
	References []string
	// Consumed lists the target identifiers the expression reads.
	Consumed []string
	// RequiresAggregation marks expressions with a bare aggregate call.
	RequiresAggregation bool
	// UsesWindow marks expressions whose value depends on row order.
	UsesWindow bool
	// Diagnostics accumulates parse and translate findings.
	Diagnostics []calc.Diagnostic

	ast calc.Expr
}

// Run is the complete result of translating one workbook.
type Run struct {
	ID       string
	Workbook string
	Target   string
	// Mappings is the identifier table after assignment; export it to
	// persist user-visible names across runs.
	Mappings *ident.Table
	// Calculations holds per-calculation results in workbook order.
	Calculations []*Calculation
	// Order is the translation order actually used.
	Order []string
	// Diagnostics carries run-level findings: skipped field definitions
	// and circular dependency reports.
	Diagnostics []calc.Diagnostic
}

// Calculation returns the run entry for a raw field name.
func (r *Run) Calculation(rawName string) (*Calculation, bool) {
	for _, c := range r.Calculations {
		if c.Field.RawName == rawName {
			return c, true
		}
	}
	return nil, false
}

// Counts tallies calculations by status.
func (r *Run) Counts() map[Status]int {
	counts := make(map[Status]int)
	for _, c := range r.Calculations {
		counts[c.Status]++
	}
	return counts
}

// Run translates a workbook. Field definitions that fail validation are
// skipped with a run-level diagnostic; everything else proceeds, and
// failures stay scoped to the single calculation that caused them.
func (e *Engine) Run(ctx context.Context, wb *calc.Workbook) (*Run, error) {
	run := &Run{
		ID:       uuid.NewString(),
		Workbook: wb.Name,
		Target:   e.target.Name(),
	}
	logger := e.logger.With("run_id", run.ID, "workbook", wb.Name)
	logger.Info("starting run", "target", run.Target, "fields", len(wb.Fields))

	fields := make([]calc.Field, 0, len(wb.Fields))
	for _, f := range wb.Fields {
		if err := f.Validate(); err != nil {
			logger.Warn("skipping invalid field", "field", f.RawName, "error", err)
			run.Diagnostics = append(run.Diagnostics, calc.Diagnostic{
				Kind:    calc.DiagSyntaxError,
				Subject: f.RawName,
				Message: err.Error(),
			})
			continue
		}
		fields = append(fields, f)
	}

	run.Mappings = e.buildMappings(fields)
	known := calc.NewFieldSet(fields)

	for _, f := range fields {
		if f.Kind != calc.KindCalculation {
			continue
		}
		run.Calculations = append(run.Calculations, &Calculation{
			Field:      f,
			Identifier: run.Mappings.IdentifierFor(f.RawName),
			Status:     StatusUnparsed,
		})
	}

	if err := e.parseAll(ctx, run.Calculations, known); err != nil {
		return nil, err
	}

	e.resolveOrder(run)
	e.translateAll(run, logger)

	counts := run.Counts()
	logger.Info("run complete",
		"translated", counts[StatusTranslated],
		"parse_failed", counts[StatusParseFailed],
		"translate_failed", counts[StatusTranslateFailed],
		"excluded", counts[StatusExcluded])
	return run, nil
}

// buildMappings seeds the identifier table from any prior export, then
// assigns every field. Assignment is idempotent, so seeded entries keep
// their identifiers and only new fields get generated names.
func (e *Engine) buildMappings(fields []calc.Field) *ident.Table {
	table := ident.NewTable()
	if len(e.seed) > 0 {
		if err := table.Import(e.seed); err != nil {
			e.logger.Warn("ignoring unusable mapping seed", "error", err)
			table = ident.NewTable()
		}
	}
	for _, f := range fields {
		table.Assign(f)
	}
	return table
}

// parseAll parses every calculation concurrently. Parsing is CPU-bound and
// independent per formula; results land in each calculation's own slot, so
// no synchronization beyond the group is needed.
func (e *Engine) parseAll(ctx context.Context, calcs []*Calculation, known *calc.FieldSet) error {
	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(e.concurrency)

	for _, c := range calcs {
		c := c
		g.Go(func() error {
			result := parser.Parse(c.Field.Formula, known)
			c.ast = result.Expr
			c.References = result.References
			c.Diagnostics = append(c.Diagnostics, result.Diagnostics...)
			if hasSyntaxError(result.Diagnostics) || result.Expr == nil {
				c.Status = StatusParseFailed
			} else {
				c.Status = StatusParsed
			}
			return nil
		})
	}
	return g.Wait()
}

// resolveOrder orders parsed calculations and marks cycle members excluded.
func (e *Engine) resolveOrder(run *Run) {
	var input []resolver.Calculation
	for _, c := range run.Calculations {
		if c.Status != StatusParsed {
			continue
		}
		input = append(input, resolver.Calculation{Key: c.Field.RawName, Refs: c.References})
	}

	result := resolver.Order(input)
	run.Order = result.Order
	run.Diagnostics = append(run.Diagnostics, result.Diagnostics...)

	for _, c := range run.Calculations {
		if result.Excluded[c.Field.RawName] {
			c.Status = StatusExcluded
			c.Diagnostics = append(c.Diagnostics, calc.Diagnostic{
				Kind:    calc.DiagCircularDependency,
				Subject: c.Field.RawName,
				Message: "excluded from translation by a dependency cycle",
			})
		}
	}
}

// translateAll lowers the ordered calculations sequentially. Order matters
// for readable output; translation itself is cheap string assembly.
func (e *Engine) translateAll(run *Run, logger *slog.Logger) {
	tr := translate.New(e.target, run.Mappings,
		translate.Options{GuardDivision: e.guardDivision})

	for _, key := range run.Order {
		c, ok := run.Calculation(key)
		if !ok {
			continue
		}
		result := tr.Translate(c.ast)
		c.Expression = result.Expression
		c.Consumed = result.Consumed
		c.RequiresAggregation = result.RequiresAggregation
		c.UsesWindow = result.UsesWindow
		c.Diagnostics = append(c.Diagnostics, result.Diagnostics...)

		if hasTranslateFailure(result.Diagnostics) {
			c.Status = StatusTranslateFailed
		} else {
			c.Status = StatusTranslated
		}
		logger.Debug("translated calculation",
			"field", c.Field.RawName, "status", string(c.Status))
	}
}

func hasSyntaxError(diags []calc.Diagnostic) bool {
	for _, d := range diags {
		if d.Kind == calc.DiagSyntaxError {
			return true
		}
	}
	return false
}

// hasTranslateFailure reports whether translation itself failed. Unresolved
// references yield a partial translation with placeholders and do not fail
// the calculation.
func hasTranslateFailure(diags []calc.Diagnostic) bool {
	for _, d := range diags {
		switch d.Kind {
		case calc.DiagSyntaxError, calc.DiagUnsupportedFunction:
			return true
		}
	}
	return false
}
