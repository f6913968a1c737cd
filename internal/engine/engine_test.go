package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dashport-dev/dashport/internal/testutil"
	"github.com/dashport-dev/dashport/pkg/calc"
	"github.com/dashport-dev/dashport/pkg/ident"
	_ "github.com/dashport-dev/dashport/pkg/targets/ansisql"
	_ "github.com/dashport-dev/dashport/pkg/targets/pandas"
)

func newEngine(t *testing.T, cfg Config) *Engine {
	t.Helper()
	if cfg.Logger == nil {
		cfg.Logger = testutil.NewTestLogger(t)
	}
	e, err := New(cfg)
	require.NoError(t, err)
	return e
}

func superstore() *calc.Workbook {
	return &calc.Workbook{
		Name: "superstore",
		Fields: []calc.Field{
			{RawName: "Region", Kind: calc.KindDimension, DataType: calc.TypeString},
			{RawName: "Sales", Kind: calc.KindMeasure, DataType: calc.TypeReal},
			{RawName: "Profit", Kind: calc.KindMeasure, DataType: calc.TypeReal},
			{RawName: "Profit Ratio", Kind: calc.KindCalculation, DataType: calc.TypeReal,
				Formula: "[Profit] / [Sales]"},
			{RawName: "High Value", Kind: calc.KindCalculation, DataType: calc.TypeBoolean,
				Formula: "[Profit Ratio] > 0.2"},
			{RawName: "Regional Sales", Kind: calc.KindCalculation, DataType: calc.TypeReal,
				Formula: "{FIXED [Region] : SUM([Sales])}"},
		},
	}
}

func TestNewRejectsUnknownTarget(t *testing.T) {
	_, err := New(Config{Target: "cobol"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown target")
}

func TestRunTranslatesWorkbook(t *testing.T) {
	e := newEngine(t, Config{Target: "pandas"})

	run, err := e.Run(context.Background(), superstore())
	require.NoError(t, err)

	assert.NotEmpty(t, run.ID)
	assert.Equal(t, "superstore", run.Workbook)
	assert.Equal(t, "pandas", run.Target)
	require.Len(t, run.Calculations, 3)

	// Dependencies come before dependents.
	require.Equal(t, []string{"Profit Ratio", "High Value", "Regional Sales"}, run.Order)

	ratio, ok := run.Calculation("Profit Ratio")
	require.True(t, ok)
	assert.Equal(t, StatusTranslated, ratio.Status)
	assert.Equal(t, "profit_ratio", ratio.Identifier)
	assert.Equal(t, "(df['profit'] / df['sales'])", ratio.Expression)

	high, _ := run.Calculation("High Value")
	assert.Equal(t, StatusTranslated, high.Status)
	assert.Equal(t, "(df['profit_ratio'] > 0.2)", high.Expression)
	assert.Equal(t, []string{"profit_ratio"}, high.Consumed)

	regional, _ := run.Calculation("Regional Sales")
	assert.Equal(t,
		"df['sales'].groupby([df['region']]).transform('sum')",
		regional.Expression)

	// Every field got a mapping.
	assert.Equal(t, 6, run.Mappings.Len())
}

func TestRunSkipsInvalidFieldDefinitions(t *testing.T) {
	e := newEngine(t, Config{})

	wb := &calc.Workbook{Name: "wb", Fields: []calc.Field{
		{RawName: "Sales", Kind: calc.KindMeasure, DataType: calc.TypeReal},
		{RawName: "Broken", Kind: "widget", DataType: calc.TypeReal},
		{RawName: "Doubled", Kind: calc.KindCalculation, DataType: calc.TypeReal,
			Formula: "[Sales] * 2"},
	}}

	run, err := e.Run(context.Background(), wb)
	require.NoError(t, err)

	require.Len(t, run.Diagnostics, 1)
	assert.Equal(t, "Broken", run.Diagnostics[0].Subject)

	doubled, ok := run.Calculation("Doubled")
	require.True(t, ok)
	assert.Equal(t, StatusTranslated, doubled.Status)
}

func TestRunIsolatesParseFailures(t *testing.T) {
	e := newEngine(t, Config{})

	wb := &calc.Workbook{Name: "wb", Fields: []calc.Field{
		{RawName: "Sales", Kind: calc.KindMeasure, DataType: calc.TypeReal},
		{RawName: "Bad", Kind: calc.KindCalculation, DataType: calc.TypeReal,
			Formula: "IF [Sales] > THEN"},
		{RawName: "Good", Kind: calc.KindCalculation, DataType: calc.TypeReal,
			Formula: "[Sales] + 1"},
	}}

	run, err := e.Run(context.Background(), wb)
	require.NoError(t, err)

	bad, _ := run.Calculation("Bad")
	assert.Equal(t, StatusParseFailed, bad.Status)

	good, _ := run.Calculation("Good")
	assert.Equal(t, StatusTranslated, good.Status)
	assert.Equal(t, "(df['sales'] + 1)", good.Expression)
}

func TestRunIsolatesCycles(t *testing.T) {
	e := newEngine(t, Config{})

	wb := &calc.Workbook{Name: "wb", Fields: []calc.Field{
		{RawName: "A", Kind: calc.KindCalculation, DataType: calc.TypeReal, Formula: "[B] + 1"},
		{RawName: "B", Kind: calc.KindCalculation, DataType: calc.TypeReal, Formula: "[A] + 1"},
		{RawName: "C", Kind: calc.KindCalculation, DataType: calc.TypeReal, Formula: "[A] * 2"},
	}}

	run, err := e.Run(context.Background(), wb)
	require.NoError(t, err)

	a, _ := run.Calculation("A")
	b, _ := run.Calculation("B")
	c, _ := run.Calculation("C")
	assert.Equal(t, StatusExcluded, a.Status)
	assert.Equal(t, StatusExcluded, b.Status)
	assert.Equal(t, StatusTranslated, c.Status, "dependents of a cycle still translate")
	assert.Equal(t, "(df['a'] * 2)", c.Expression)

	require.Len(t, run.Diagnostics, 1)
	assert.Equal(t, calc.DiagCircularDependency, run.Diagnostics[0].Kind)
}

func TestRunUnresolvedReferenceStillTranslates(t *testing.T) {
	e := newEngine(t, Config{})

	wb := &calc.Workbook{Name: "wb", Fields: []calc.Field{
		{RawName: "Partial", Kind: calc.KindCalculation, DataType: calc.TypeReal,
			Formula: "[Ghost] * 2"},
	}}

	run, err := e.Run(context.Background(), wb)
	require.NoError(t, err)

	partial, _ := run.Calculation("Partial")
	assert.Equal(t, StatusTranslated, partial.Status)
	assert.Equal(t, "(df['ghost'] * 2)", partial.Expression)

	var kinds []calc.DiagnosticKind
	for _, d := range partial.Diagnostics {
		kinds = append(kinds, d.Kind)
	}
	assert.Contains(t, kinds, calc.DiagUnresolvedField)
}

func TestRunUnsupportedFunctionScopedToOneCalc(t *testing.T) {
	e := newEngine(t, Config{})

	wb := &calc.Workbook{Name: "wb", Fields: []calc.Field{
		{RawName: "Sales", Kind: calc.KindMeasure, DataType: calc.TypeReal},
		{RawName: "Odd", Kind: calc.KindCalculation, DataType: calc.TypeReal,
			Formula: "FROBNICATE([Sales])"},
		{RawName: "Fine", Kind: calc.KindCalculation, DataType: calc.TypeReal,
			Formula: "SUM([Sales])"},
	}}

	run, err := e.Run(context.Background(), wb)
	require.NoError(t, err)

	odd, _ := run.Calculation("Odd")
	assert.Equal(t, StatusTranslateFailed, odd.Status)

	fine, _ := run.Calculation("Fine")
	assert.Equal(t, StatusTranslated, fine.Status)
	assert.True(t, fine.RequiresAggregation)
}

func TestRunSeedMappingsPreserveUserEdits(t *testing.T) {
	wb := superstore()

	first := newEngine(t, Config{})
	run, err := first.Run(context.Background(), wb)
	require.NoError(t, err)
	require.NoError(t, run.Mappings.Rename("Profit Ratio", "margin"))

	second := newEngine(t, Config{Mappings: run.Mappings.Export()})
	rerun, err := second.Run(context.Background(), wb)
	require.NoError(t, err)

	assert.Equal(t, "margin", rerun.Mappings.IdentifierFor("Profit Ratio"))

	high, _ := rerun.Calculation("High Value")
	assert.Equal(t, "(df['margin'] > 0.2)", high.Expression)
}

func TestRunDeterministic(t *testing.T) {
	wb := superstore()
	e := newEngine(t, Config{Concurrency: 4})

	first, err := e.Run(context.Background(), wb)
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		again, err := e.Run(context.Background(), wb)
		require.NoError(t, err)
		assert.Equal(t, first.Order, again.Order)
		for j, c := range first.Calculations {
			assert.Equal(t, c.Expression, again.Calculations[j].Expression)
			assert.Equal(t, c.Status, again.Calculations[j].Status)
		}
	}
}

func TestRunAgainstSQLTarget(t *testing.T) {
	e := newEngine(t, Config{Target: "ansisql"})

	run, err := e.Run(context.Background(), superstore())
	require.NoError(t, err)

	ratio, _ := run.Calculation("Profit Ratio")
	assert.Equal(t, "(profit / sales)", ratio.Expression)

	regional, _ := run.Calculation("Regional Sales")
	assert.Equal(t, "SUM(sales) OVER (PARTITION BY region)", regional.Expression)
}

func TestRunGuardsDivisionWhenConfigured(t *testing.T) {
	e := newEngine(t, Config{Target: "pandas", GuardDivision: true})

	run, err := e.Run(context.Background(), superstore())
	require.NoError(t, err)

	ratio, _ := run.Calculation("Profit Ratio")
	assert.Equal(t,
		"np.where(df['sales'] != 0, df['profit'] / df['sales'], np.nan)",
		ratio.Expression)
	assert.Empty(t, ratio.Diagnostics)
}

func TestCountsByStatus(t *testing.T) {
	e := newEngine(t, Config{})

	wb := &calc.Workbook{Name: "wb", Fields: []calc.Field{
		{RawName: "Good", Kind: calc.KindCalculation, DataType: calc.TypeInteger, Formula: "1 + 1"},
		{RawName: "Bad", Kind: calc.KindCalculation, DataType: calc.TypeInteger, Formula: "1 +"},
	}}

	run, err := e.Run(context.Background(), wb)
	require.NoError(t, err)

	counts := run.Counts()
	assert.Equal(t, 1, counts[StatusTranslated])
	assert.Equal(t, 1, counts[StatusParseFailed])
}

func TestRunSeedIgnoresBadImport(t *testing.T) {
	e := newEngine(t, Config{Mappings: []ident.Mapping{{SourceKey: ""}}})

	run, err := e.Run(context.Background(), superstore())
	require.NoError(t, err)
	assert.Equal(t, "sales", run.Mappings.IdentifierFor("Sales"))
}
