// Package target defines the translation target abstraction: the surface a
// backend implements to render calculation ASTs as expressions in its own
// language, plus the global registry the backends register into.
package target

import (
	"github.com/dashport-dev/dashport/pkg/calc"
	"github.com/dashport-dev/dashport/pkg/token"
)

// FuncKind classifies a target function mapping.
type FuncKind int

const (
	// FuncScalar is a row-wise function.
	FuncScalar FuncKind = iota
	// FuncAggregate collapses a column to a single value.
	FuncAggregate
	// FuncWindow is an ordered computation over the whole column
	// (running totals, ranks).
	FuncWindow
)

// Variadic marks a FuncSpec with no upper argument bound.
const Variadic = -1

// FuncSpec describes how one calculation-language function renders on a
// target.
type FuncSpec struct {
	// Name is the source function name, upper case.
	Name string
	Kind FuncKind
	// MinArgs and MaxArgs bound the accepted argument count; MaxArgs may be
	// Variadic.
	MinArgs int
	MaxArgs int
	// AggName is the target-native aggregation name used when the function
	// appears inside a grouped scope. Empty for non-aggregates.
	AggName string
	// Emit renders the call from already-rendered argument expressions.
	Emit func(args []string) string
}

// AcceptsArgs reports whether the spec accepts n arguments.
func (s FuncSpec) AcceptsArgs(n int) bool {
	if n < s.MinArgs {
		return false
	}
	return s.MaxArgs == Variadic || n <= s.MaxArgs
}

// CondBranch is one rendered condition/result pair of a conditional.
type CondBranch struct {
	Cond   string
	Result string
}

// Target renders calculation AST fragments as expressions in one backend
// language. Implementations are stateless and safe for concurrent use;
// every method takes already-rendered sub-expressions and returns a single
// self-contained expression string.
type Target interface {
	// Name is the registry key, lower case.
	Name() string

	// FieldRef renders a reference to a mapped column identifier.
	FieldRef(identifier string) string

	// Placeholder renders an unresolved reference so the surrounding
	// expression stays syntactically complete.
	Placeholder(name string) string

	// Literal renders a literal value.
	Literal(lit *calc.Literal) string

	// Unary renders a prefix operator application.
	Unary(op token.Type, operand string) string

	// Binary renders an infix operator application. Division must not pass
	// through here; the translator routes it to Divide.
	Binary(op token.Type, left, right string) string

	// Divide renders a division. When guarded, rows with a zero divisor
	// yield the target's null value instead of raising or producing
	// infinities.
	Divide(left, right string, guarded bool) string

	// Function looks up the spec for an upper-case function name.
	Function(name string) (FuncSpec, bool)

	// Functions lists every supported function spec, sorted by name.
	Functions() []FuncSpec

	// Conditional renders an ordered branch chain. elseExpr may be empty,
	// in which case the target supplies its null value.
	Conditional(branches []CondBranch, elseExpr string) string

	// GroupBroadcast renders an aggregate broadcast back to row level,
	// grouped by the given column identifiers. An empty dims list
	// aggregates over the whole table.
	GroupBroadcast(agg FuncSpec, operand string, dims []string) string
}
