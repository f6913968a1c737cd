// Package pandas renders calculation expressions as pandas/numpy Python
// code operating on a DataFrame named df. Registers the "pandas" target.
package pandas

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

// Target renders expressions against a pandas DataFrame bound to the name
// df, with numpy available as np and pandas as pd.
type Target struct{}

// Name returns the registry key.
func (t *Target) Name() string { return "pandas" }

// FieldRef renders a column access.
func (t *Target) FieldRef(identifier string) string {
	return fmt.Sprintf("df[%s]", pyString(identifier))
}

// Placeholder renders an unresolved reference as a column access so the
// surrounding expression stays runnable once the column exists.
func (t *Target) Placeholder(name string) string {
	return t.FieldRef(name)
}

// Literal renders a literal value as Python source.
func (t *Target) Literal(lit *calc.Literal) string {
	if lit.Null {
		return "pd.NA"
	}
	switch lit.Type {
	case calc.TypeString:
		return pyString(lit.Text)
	case calc.TypeBoolean:
		if lit.Text == "true" {
			return "True"
		}
		return "False"
	case calc.TypeDate, calc.TypeDatetime:
		return fmt.Sprintf("pd.Timestamp(%s)", pyString(lit.Text))
	default:
		return lit.Text
	}
}

// Unary renders a prefix operator. Logical NOT becomes the element-wise
// invert operator, which works for both Series and scalars of bool dtype.
func (t *Target) Unary(op token.Type, operand string) string {
	switch op {
	case token.NOT:
		return fmt.Sprintf("(~%s)", operand)
	case token.MINUS:
		return fmt.Sprintf("(-%s)", operand)
	default:
		return operand
	}
}

// Binary renders an infix operator application, parenthesized so the result
// composes without precedence surprises. Logical AND/OR become the
// element-wise &/| operators.
func (t *Target) Binary(op token.Type, left, right string) string {
	py, ok := binaryOps[op]
	if !ok {
		py = op.String()
	}
	return fmt.Sprintf("(%s %s %s)", left, py, right)
}

var binaryOps = map[token.Type]string{
	token.PLUS:    "+",
	token.MINUS:   "-",
	token.STAR:    "*",
	token.PERCENT: "%",
	token.CARET:   "**",
	token.EQ:      "==",
	token.NE:      "!=",
	token.LT:      "<",
	token.LE:      "<=",
	token.GT:      ">",
	token.GE:      ">=",
	token.AND:     "&",
	token.OR:      "|",
}

// Divide renders a division. Guarded division turns rows with a zero
// divisor into NaN instead of inf.
func (t *Target) Divide(left, right string, guarded bool) string {
	if guarded {
		return fmt.Sprintf("np.where(%s != 0, %s / %s, np.nan)", right, left, right)
	}
	return fmt.Sprintf("(%s / %s)", left, right)
}

// Function looks up the pandas rendering for a calculation function.
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

// Conditional renders an ordered branch chain as nested np.where calls, so
// the first true branch wins row by row. A missing else yields NaN.
func (t *Target) Conditional(branches []target.CondBranch, elseExpr string) string {
	result := elseExpr
	if result == "" {
		result = "np.nan"
	}
	for i := len(branches) - 1; i >= 0; i-- {
		b := branches[i]
		result = fmt.Sprintf("np.where(%s, %s, %s)", b.Cond, b.Result, result)
	}
	return result
}

// GroupBroadcast renders a grouped aggregate broadcast back to row level.
// With no dimensions the aggregate collapses the whole column to a scalar,
// which pandas broadcasts on assignment.
func (t *Target) GroupBroadcast(agg target.FuncSpec, operand string, dims []string) string {
	if len(dims) == 0 {
		return fmt.Sprintf("%s.%s()", operand, agg.AggName)
	}
	keys := make([]string, len(dims))
	for i, dim := range dims {
		keys[i] = t.FieldRef(dim)
	}
	return fmt.Sprintf("%s.groupby([%s]).transform(%s)",
		operand, strings.Join(keys, ", "), pyString(agg.AggName))
}

// pyString renders a Python single-quoted string literal.
func pyString(s string) string {
	var b strings.Builder
	b.WriteByte('\'')
	for _, r := range s {
		switch r {
		case '\\':
			b.WriteString(`\\`)
		case '\'':
			b.WriteString(`\'`)
		case '\n':
			b.WriteString(`\n`)
		case '\t':
			b.WriteString(`\t`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('\'')
	return b.String()
}
