// Package translate lowers calculation ASTs into target-language
// expressions, using the identifier table to rewrite field references.
package translate

import (
	"fmt"
	"strings"

	"github.com/dashport-dev/dashport/pkg/calc"
	"github.com/dashport-dev/dashport/pkg/ident"
	"github.com/dashport-dev/dashport/pkg/target"
	"github.com/dashport-dev/dashport/pkg/token"
)

// Result is the outcome of translating one calculation.
type Result struct {
	// Expression is the rendered target-language expression. It is set even
	// when Diagnostics carries failures, as a best-effort partial
	// translation.
	Expression string
	// Consumed lists the target identifiers the expression reads, in first
	// use order.
	Consumed []string
	// Diagnostics carries everything noteworthy; check calc.HasFailure to
	// separate failures from informational notes.
	Diagnostics []calc.Diagnostic
	// RequiresAggregation is set when the expression contains a bare
	// aggregate call, meaning it only makes sense in a grouped context.
	RequiresAggregation bool
	// UsesWindow is set when the expression contains an ordered window
	// computation whose result depends on row order.
	UsesWindow bool
}

// Options configure translation behavior.
type Options struct {
	// GuardDivision wraps every division so zero divisors yield the
	// target's null value. Off by default: the source language does not
	// zero-check division, and translation mirrors the source unless asked
	// otherwise.
	GuardDivision bool
}

// Translator lowers ASTs for one target using one identifier table.
// Safe for concurrent use; each Translate call keeps its own state.
type Translator struct {
	target target.Target
	idents *ident.Table
	opts   Options
}

// New creates a translator for the given target and identifier table.
func New(tgt target.Target, idents *ident.Table, opts Options) *Translator {
	return &Translator{target: tgt, idents: idents, opts: opts}
}

// Translate lowers one parsed calculation.
func (t *Translator) Translate(expr calc.Expr) Result {
	s := &session{Translator: t, seen: make(map[string]bool)}
	rendered := s.emit(expr)
	return Result{
		Expression:          rendered,
		Consumed:            s.consumed,
		Diagnostics:         s.diags,
		RequiresAggregation: s.aggregates,
		UsesWindow:          s.windows,
	}
}

// session is the per-call translation state.
type session struct {
	*Translator
	diags      []calc.Diagnostic
	consumed   []string
	seen       map[string]bool
	aggregates bool
	windows    bool
}

func (s *session) emit(expr calc.Expr) string {
	switch e := expr.(type) {
	case *calc.Literal:
		return s.target.Literal(e)

	case *calc.FieldRef:
		return s.emitFieldRef(e)

	case *calc.UnaryExpr:
		return s.target.Unary(e.Op, s.emit(e.Operand))

	case *calc.BinaryExpr:
		return s.emitBinary(e)

	case *calc.Call:
		return s.emitCall(e)

	case *calc.Conditional:
		return s.emitConditional(e)

	case *calc.LOD:
		return s.emitLOD(e)

	case *calc.BadExpr:
		s.addDiag(calc.DiagSyntaxError, e.Position, "",
			"cannot translate malformed expression")
		return s.target.Literal(&calc.Literal{Null: true})

	default:
		s.addDiag(calc.DiagSyntaxError, expr.Pos(), "",
			fmt.Sprintf("cannot translate %T", expr))
		return s.target.Literal(&calc.Literal{Null: true})
	}
}

// emitFieldRef rewrites a field reference to its mapped identifier. A
// reference with no mapping still renders, using the identifier its name
// would generate, so one missing field never voids the whole expression.
func (s *session) emitFieldRef(ref *calc.FieldRef) string {
	if identifier := s.idents.IdentifierFor(ref.Key); identifier != "" {
		s.consume(identifier)
		return s.target.FieldRef(identifier)
	}

	placeholder := ident.Generate(ref.Key)
	s.consume(placeholder)
	if !ref.Unresolved {
		// The parser resolved this name, so the identifier table is missing
		// an entry it should have.
		s.addDiag(calc.DiagUnresolvedField, ref.Position, ref.Key,
			fmt.Sprintf("field %q has no identifier mapping", ref.Key))
	}
	return s.target.Placeholder(placeholder)
}

func (s *session) emitBinary(e *calc.BinaryExpr) string {
	left := s.emit(e.Left)
	right := s.emit(e.Right)

	if e.Op == token.SLASH {
		if s.opts.GuardDivision {
			return s.target.Divide(left, right, true)
		}
		// The source language does not zero-check division and neither does
		// the default translation; note each spot so reviewers can opt into
		// guarding.
		s.addDiag(calc.DiagDivideUnchecked, e.Pos(), "",
			"division is not checked for zero divisors; enable division guarding to yield null instead")
		return s.target.Divide(left, right, false)
	}
	return s.target.Binary(e.Op, left, right)
}

func (s *session) emitCall(e *calc.Call) string {
	args := make([]string, len(e.Args))
	for i, arg := range e.Args {
		args[i] = s.emit(arg)
	}

	spec, ok := s.target.Function(e.Name)
	if !ok {
		s.addDiag(calc.DiagUnsupportedFunction, e.Position, e.Name,
			fmt.Sprintf("function %s is not supported by target %s", e.Name, s.target.Name()))
		return s.fallbackCall(e.Name, args)
	}
	if !spec.AcceptsArgs(len(args)) {
		s.addDiag(calc.DiagUnsupportedFunction, e.Position, e.Name,
			fmt.Sprintf("function %s does not accept %d arguments", e.Name, len(args)))
		return s.fallbackCall(e.Name, args)
	}

	switch spec.Kind {
	case target.FuncAggregate:
		s.aggregates = true
	case target.FuncWindow:
		s.windows = true
	}
	return spec.Emit(args)
}

// fallbackCall renders an unsupported call in source-like form so sibling
// calculations and the rest of this expression still translate around it.
func (s *session) fallbackCall(name string, args []string) string {
	return fmt.Sprintf("%s(%s)", name, strings.Join(args, ", "))
}

func (s *session) emitConditional(e *calc.Conditional) string {
	branches := make([]target.CondBranch, len(e.Branches))
	for i, b := range e.Branches {
		branches[i] = target.CondBranch{
			Cond:   s.emit(b.Cond),
			Result: s.emit(b.Result),
		}
	}
	var elseExpr string
	if e.Else != nil {
		elseExpr = s.emit(e.Else)
	}
	return s.target.Conditional(branches, elseExpr)
}

// emitLOD lowers a level-of-detail expression to a grouped aggregate
// broadcast back to row level. INCLUDE and EXCLUDE scopes depend on the
// visualization context that no longer exists after conversion; they lower
// like FIXED and carry an informational note.
func (s *session) emitLOD(e *calc.LOD) string {
	if e.Scope != calc.LODFixed {
		s.addDiag(calc.DiagContextScope, e.Position, string(e.Scope),
			fmt.Sprintf("%s depends on visualization context; translated as FIXED over the listed dimensions", strings.ToUpper(string(e.Scope))))
	}

	call, ok := e.Agg.(*calc.Call)
	if !ok {
		s.addDiag(calc.DiagUnsupportedFunction, e.Position, "",
			"level-of-detail expression must aggregate with a single function call")
		return s.emit(e.Agg)
	}

	spec, found := s.target.Function(call.Name)
	if !found || spec.Kind != target.FuncAggregate || len(call.Args) != 1 {
		s.addDiag(calc.DiagUnsupportedFunction, call.Position, call.Name,
			fmt.Sprintf("level-of-detail aggregate must be a single-argument aggregate; %s is not", call.Name))
		return s.emit(e.Agg)
	}

	operand := s.emit(call.Args[0])

	dims := make([]string, len(e.Dims))
	for i, dim := range e.Dims {
		if identifier := s.idents.IdentifierFor(dim); identifier != "" {
			dims[i] = identifier
		} else {
			dims[i] = ident.Generate(dim)
		}
		s.consume(dims[i])
	}

	return s.target.GroupBroadcast(spec, operand, dims)
}

func (s *session) consume(identifier string) {
	if s.seen[identifier] {
		return
	}
	s.seen[identifier] = true
	s.consumed = append(s.consumed, identifier)
}

func (s *session) addDiag(kind calc.DiagnosticKind, pos token.Position, subject, msg string) {
	s.diags = append(s.diags, calc.Diagnostic{
		Kind:    kind,
		Pos:     pos,
		Subject: subject,
		Message: msg,
	})
}
