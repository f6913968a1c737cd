// Package ansisql renders calculation expressions as portable SQL. Grouped
// aggregates become window functions, so translated calculations stay
// row-level expressions a SELECT list can carry. Registers the "ansisql"
// target.
package ansisql

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dashport-dev/dashport/pkg/calc"
	"github.com/dashport-dev/dashport/pkg/target"
	"github.com/dashport-dev/dashport/pkg/token"
)

func init() {
	target.Register(&Target{})
}

// Target renders expressions as ANSI SQL.
type Target struct{}

// Name returns the registry key.
func (t *Target) Name() string { return "ansisql" }

// FieldRef renders a column reference. Generated identifiers are plain
// snake_case, so no quoting is needed.
func (t *Target) FieldRef(identifier string) string { return identifier }

// Placeholder renders an unresolved reference.
func (t *Target) Placeholder(name string) string { return name }

// Literal renders a literal value as SQL.
func (t *Target) Literal(lit *calc.Literal) string {
	if lit.Null {
		return "NULL"
	}
	switch lit.Type {
	case calc.TypeString:
		return sqlString(lit.Text)
	case calc.TypeBoolean:
		return strings.ToUpper(lit.Text)
	case calc.TypeDate:
		return fmt.Sprintf("DATE %s", sqlString(lit.Text))
	case calc.TypeDatetime:
		return fmt.Sprintf("TIMESTAMP %s", sqlString(lit.Text))
	default:
		return lit.Text
	}
}

// Unary renders a prefix operator.
func (t *Target) Unary(op token.Type, operand string) string {
	switch op {
	case token.NOT:
		return fmt.Sprintf("(NOT %s)", operand)
	case token.MINUS:
		return fmt.Sprintf("(-%s)", operand)
	default:
		return operand
	}
}

// Binary renders an infix operator application. Modulo and exponentiation
// have no portable infix form and render as function calls.
func (t *Target) Binary(op token.Type, left, right string) string {
	switch op {
	case token.PERCENT:
		return fmt.Sprintf("MOD(%s, %s)", left, right)
	case token.CARET:
		return fmt.Sprintf("POWER(%s, %s)", left, right)
	}
	sql, ok := binaryOps[op]
	if !ok {
		sql = op.String()
	}
	return fmt.Sprintf("(%s %s %s)", left, sql, right)
}

var binaryOps = map[token.Type]string{
	token.PLUS:  "+",
	token.MINUS: "-",
	token.STAR:  "*",
	token.EQ:    "=",
	token.NE:    "<>",
	token.LT:    "<",
	token.LE:    "<=",
	token.GT:    ">",
	token.GE:    ">=",
	token.AND:   "AND",
	token.OR:    "OR",
}

// Divide renders a division. Guarded division turns rows with a zero
// divisor into NULL instead of a division error.
func (t *Target) Divide(left, right string, guarded bool) string {
	if guarded {
		return fmt.Sprintf("CASE WHEN %s <> 0 THEN %s / %s ELSE NULL END", right, left, right)
	}
	return fmt.Sprintf("(%s / %s)", left, right)
}

// Function looks up the SQL rendering for a calculation function.
func (t *Target) Function(name string) (target.FuncSpec, bool) {
	spec, ok := functions[name]
	return spec, ok
}

// Functions lists every supported function, sorted by name.
func (t *Target) Functions() []target.FuncSpec {
	out := make([]target.FuncSpec, 0, len(functions))
	for _, spec := range functions {
		out = append(out, spec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Conditional renders an ordered branch chain as a searched CASE, which
// evaluates branches in listed order.
func (t *Target) Conditional(branches []target.CondBranch, elseExpr string) string {
	var b strings.Builder
	b.WriteString("CASE")
	for _, br := range branches {
		fmt.Fprintf(&b, " WHEN %s THEN %s", br.Cond, br.Result)
	}
	if elseExpr != "" {
		fmt.Fprintf(&b, " ELSE %s", elseExpr)
	}
	b.WriteString(" END")
	return b.String()
}

// GroupBroadcast renders a grouped aggregate as a window function, keeping
// the result row-level.
func (t *Target) GroupBroadcast(agg target.FuncSpec, operand string, dims []string) string {
	if len(dims) == 0 {
		return fmt.Sprintf("%s(%s) OVER ()", agg.AggName, operand)
	}
	return fmt.Sprintf("%s(%s) OVER (PARTITION BY %s)",
		agg.AggName, operand, strings.Join(dims, ", "))
}

// sqlString renders a single-quoted SQL string literal with doubled-quote
// escaping.
func sqlString(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
