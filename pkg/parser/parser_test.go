package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dashport-dev/dashport/pkg/calc"
	"github.com/dashport-dev/dashport/pkg/token"
)

func fieldSet(t *testing.T, names ...string) *calc.FieldSet {
	t.Helper()
	fields := make([]calc.Field, 0, len(names))
	for _, n := range names {
		fields = append(fields, calc.Field{RawName: n, Kind: calc.KindDimension, DataType: calc.TypeReal})
	}
	return calc.NewFieldSet(fields)
}

func parseOK(t *testing.T, source string, fields *calc.FieldSet) calc.Expr {
	t.Helper()
	result := Parse(source, fields)
	require.False(t, calc.HasFailure(result.Diagnostics),
		"unexpected diagnostics: %v", result.Diagnostics)
	require.NotNil(t, result.Expr)
	return result.Expr
}

func TestParseArithmeticPrecedence(t *testing.T) {
	// 1 + 2 * 3 parses as 1 + (2 * 3)
	expr := parseOK(t, "1 + 2 * 3", nil)

	add, ok := expr.(*calc.BinaryExpr)
	require.True(t, ok)
	assert.Equal(t, token.PLUS, add.Op)

	mul, ok := add.Right.(*calc.BinaryExpr)
	require.True(t, ok)
	assert.Equal(t, token.STAR, mul.Op)
}

func TestParsePowerRightAssociative(t *testing.T) {
	// 2 ^ 3 ^ 2 parses as 2 ^ (3 ^ 2)
	expr := parseOK(t, "2 ^ 3 ^ 2", nil)

	outer, ok := expr.(*calc.BinaryExpr)
	require.True(t, ok)
	assert.Equal(t, token.CARET, outer.Op)

	inner, ok := outer.Right.(*calc.BinaryExpr)
	require.True(t, ok)
	assert.Equal(t, token.CARET, inner.Op)
}

func TestParseComparisonBindsLooserThanArithmetic(t *testing.T) {
	// [a] + 1 > [b] * 2 parses as ([a] + 1) > ([b] * 2)
	expr := parseOK(t, "[a] + 1 > [b] * 2", fieldSet(t, "a", "b"))

	cmp, ok := expr.(*calc.BinaryExpr)
	require.True(t, ok)
	assert.Equal(t, token.GT, cmp.Op)
	assert.IsType(t, &calc.BinaryExpr{}, cmp.Left)
	assert.IsType(t, &calc.BinaryExpr{}, cmp.Right)
}

func TestParseLogicalPrecedence(t *testing.T) {
	// a OR b AND c parses as a OR (b AND c)
	expr := parseOK(t, "[a] = 1 OR [b] = 2 AND [c] = 3", fieldSet(t, "a", "b", "c"))

	or, ok := expr.(*calc.BinaryExpr)
	require.True(t, ok)
	assert.Equal(t, token.OR, or.Op)

	and, ok := or.Right.(*calc.BinaryExpr)
	require.True(t, ok)
	assert.Equal(t, token.AND, and.Op)
}

func TestParseUnary(t *testing.T) {
	expr := parseOK(t, "-[Sales] + 1", fieldSet(t, "Sales"))

	add, ok := expr.(*calc.BinaryExpr)
	require.True(t, ok)

	neg, ok := add.Left.(*calc.UnaryExpr)
	require.True(t, ok)
	assert.Equal(t, token.MINUS, neg.Op)

	expr = parseOK(t, "NOT [a] = 1 AND [b] = 2", fieldSet(t, "a", "b"))
	and, ok := expr.(*calc.BinaryExpr)
	require.True(t, ok)
	assert.Equal(t, token.AND, and.Op)
	assert.IsType(t, &calc.UnaryExpr{}, and.Left)
}

func TestParseLiterals(t *testing.T) {
	tests := []struct {
		source string
		dtype  calc.DataType
		text   string
		null   bool
	}{
		{"42", calc.TypeInteger, "42", false},
		{"3.14", calc.TypeReal, "3.14", false},
		{"1e6", calc.TypeReal, "1e6", false},
		{"'hello'", calc.TypeString, "hello", false},
		{"TRUE", calc.TypeBoolean, "true", false},
		{"NULL", "", "", true},
		{"#2024-01-15#", calc.TypeDate, "2024-01-15", false},
		{"#2024-01-15 10:30:00#", calc.TypeDatetime, "2024-01-15 10:30:00", false},
	}

	for _, tt := range tests {
		expr := parseOK(t, tt.source, nil)
		lit, ok := expr.(*calc.Literal)
		require.True(t, ok, tt.source)
		assert.Equal(t, tt.dtype, lit.Type, tt.source)
		assert.Equal(t, tt.text, lit.Text, tt.source)
		assert.Equal(t, tt.null, lit.Null, tt.source)
	}
}

func TestParseFunctionCall(t *testing.T) {
	expr := parseOK(t, "datediff('day', [Order Date], [Ship Date])",
		fieldSet(t, "Order Date", "Ship Date"))

	call, ok := expr.(*calc.Call)
	require.True(t, ok)
	assert.Equal(t, "DATEDIFF", call.Name, "function names normalize to upper case")
	require.Len(t, call.Args, 3)

	expr = parseOK(t, "NOW()", nil)
	call, ok = expr.(*calc.Call)
	require.True(t, ok)
	assert.Empty(t, call.Args)
}

func TestParseIfBranchOrder(t *testing.T) {
	source := `IF [Sales] > 100 THEN 'high'
ELSEIF [Sales] > 50 THEN 'mid'
ELSE 'low' END`
	expr := parseOK(t, source, fieldSet(t, "Sales"))

	cond, ok := expr.(*calc.Conditional)
	require.True(t, ok)
	require.Len(t, cond.Branches, 2)
	require.NotNil(t, cond.Else)

	first, ok := cond.Branches[0].Result.(*calc.Literal)
	require.True(t, ok)
	assert.Equal(t, "high", first.Text)

	second, ok := cond.Branches[1].Result.(*calc.Literal)
	require.True(t, ok)
	assert.Equal(t, "mid", second.Text)
}

func TestParseIfWithoutElse(t *testing.T) {
	expr := parseOK(t, "IF [a] > 0 THEN 1 END", fieldSet(t, "a"))
	cond, ok := expr.(*calc.Conditional)
	require.True(t, ok)
	assert.Nil(t, cond.Else)
}

func TestParseCaseDesugarsToConditional(t *testing.T) {
	source := `CASE [Region]
WHEN 'East' THEN 1
WHEN 'West' THEN 2
ELSE 0 END`
	expr := parseOK(t, source, fieldSet(t, "Region"))

	cond, ok := expr.(*calc.Conditional)
	require.True(t, ok)
	require.Len(t, cond.Branches, 2)
	require.NotNil(t, cond.Else)

	// Each branch condition is an equality test against the scrutinee.
	for i, b := range cond.Branches {
		eq, ok := b.Cond.(*calc.BinaryExpr)
		require.True(t, ok, "branch %d", i)
		assert.Equal(t, token.EQ, eq.Op, "branch %d", i)

		ref, ok := eq.Left.(*calc.FieldRef)
		require.True(t, ok, "branch %d", i)
		assert.Equal(t, "Region", ref.Key, "branch %d", i)
	}
}

func TestParseLODFixed(t *testing.T) {
	expr := parseOK(t, "{FIXED [Region], [Category] : SUM([Sales])}",
		fieldSet(t, "Region", "Category", "Sales"))

	lod, ok := expr.(*calc.LOD)
	require.True(t, ok)
	assert.Equal(t, calc.LODFixed, lod.Scope)
	assert.Equal(t, []string{"Region", "Category"}, lod.Dims)
	assert.Empty(t, lod.Unresolved)

	agg, ok := lod.Agg.(*calc.Call)
	require.True(t, ok)
	assert.Equal(t, "SUM", agg.Name)
}

func TestParseLODEmptyDims(t *testing.T) {
	expr := parseOK(t, "{FIXED : AVG([Sales])}", fieldSet(t, "Sales"))
	lod, ok := expr.(*calc.LOD)
	require.True(t, ok)
	assert.Equal(t, calc.LODFixed, lod.Scope)
	assert.Empty(t, lod.Dims)
}

func TestParseLODTableShorthand(t *testing.T) {
	expr := parseOK(t, "{ SUM([Sales]) }", fieldSet(t, "Sales"))
	lod, ok := expr.(*calc.LOD)
	require.True(t, ok)
	assert.Equal(t, calc.LODFixed, lod.Scope)
	assert.Empty(t, lod.Dims)
}

func TestParseLODScopes(t *testing.T) {
	fs := fieldSet(t, "Region", "Sales")

	inc := parseOK(t, "{INCLUDE [Region] : SUM([Sales])}", fs).(*calc.LOD)
	assert.Equal(t, calc.LODInclude, inc.Scope)

	exc := parseOK(t, "{EXCLUDE [Region] : SUM([Sales])}", fs).(*calc.LOD)
	assert.Equal(t, calc.LODExclude, exc.Scope)
}

func TestParseUnresolvedReference(t *testing.T) {
	result := Parse("[Sales] + [Missing]", fieldSet(t, "Sales"))

	// Unresolved references are flagged but not fatal.
	require.NotNil(t, result.Expr)
	assert.False(t, calc.HasFailure(hasOnly(result.Diagnostics, calc.DiagUnresolvedField)))

	require.Len(t, result.Diagnostics, 1)
	d := result.Diagnostics[0]
	assert.Equal(t, calc.DiagUnresolvedField, d.Kind)
	assert.Equal(t, "Missing", d.Subject)

	add := result.Expr.(*calc.BinaryExpr)
	assert.False(t, add.Left.(*calc.FieldRef).Unresolved)
	assert.True(t, add.Right.(*calc.FieldRef).Unresolved)
}

// hasOnly filters diagnostics down to the kinds that are not the given one,
// so tests can assert "nothing else went wrong".
func hasOnly(diags []calc.Diagnostic, kind calc.DiagnosticKind) []calc.Diagnostic {
	var rest []calc.Diagnostic
	for _, d := range diags {
		if d.Kind != kind {
			rest = append(rest, d)
		}
	}
	return rest
}

func TestParseReferencesFirstMentionOrder(t *testing.T) {
	fs := fieldSet(t, "b", "a", "c")
	result := Parse("[b] + [a] + [b] + [c]", fs)
	assert.Equal(t, []string{"b", "a", "c"}, result.References)
}

func TestParseLODDimsCountAsReferences(t *testing.T) {
	fs := fieldSet(t, "Region", "Sales")
	result := Parse("{FIXED [Region] : SUM([Sales])}", fs)
	assert.ElementsMatch(t, []string{"Region", "Sales"}, result.References)
}

func TestParseEmptyInput(t *testing.T) {
	for _, source := range []string{"", "   ", "// only a comment"} {
		result := Parse(source, nil)
		require.Len(t, result.Diagnostics, 1, "%q", source)
		assert.Equal(t, calc.DiagSyntaxError, result.Diagnostics[0].Kind)
		assert.Nil(t, result.Expr)
	}
}

func TestParseMalformedInputRecovers(t *testing.T) {
	tests := []string{
		"IF [a] > THEN 1 END",
		"1 + ",
		"SUM([a]",
		"[a] + + [b]",
		") + 1",
	}
	fs := fieldSet(t, "a", "b")

	for _, source := range tests {
		result := Parse(source, fs)
		assert.True(t, calc.HasFailure(result.Diagnostics), "%q should fail", source)
		// Parsing never panics and always surfaces at least one diagnostic
		// with a position.
		require.NotEmpty(t, result.Diagnostics, source)
	}
}

func TestParseTrailingTokens(t *testing.T) {
	result := Parse("1 + 2 3", nil)
	require.NotEmpty(t, result.Diagnostics)
	assert.Equal(t, calc.DiagSyntaxError, result.Diagnostics[0].Kind)
	assert.Contains(t, result.Diagnostics[0].Message, "after expression")
}

func TestParseBareIdentifierRejected(t *testing.T) {
	result := Parse("Sales + 1", fieldSet(t, "Sales"))
	assert.True(t, calc.HasFailure(result.Diagnostics))
}

func TestParseNestedConditionalInLOD(t *testing.T) {
	source := "{FIXED [Region] : SUM(IF [Profit] > 0 THEN [Sales] ELSE 0 END)}"
	expr := parseOK(t, source, fieldSet(t, "Region", "Profit", "Sales"))

	lod := expr.(*calc.LOD)
	agg := lod.Agg.(*calc.Call)
	require.Len(t, agg.Args, 1)
	assert.IsType(t, &calc.Conditional{}, agg.Args[0])
}
