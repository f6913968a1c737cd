package calc

import (
	"fmt"
	"strings"
)

// Sprint renders an expression tree in a compact prefix form, one node per
// line, for debugging output.
func Sprint(expr Expr) string {
	var b strings.Builder
	sprint(&b, expr, 0)
	return b.String()
}

func sprint(b *strings.Builder, expr Expr, depth int) {
	indent := strings.Repeat("  ", depth)
	switch e := expr.(type) {
	case nil:
		return
	case *Literal:
		if e.Null {
			fmt.Fprintf(b, "%sliteral NULL\n", indent)
			return
		}
		fmt.Fprintf(b, "%sliteral %s %q\n", indent, e.Type, e.Text)
	case *FieldRef:
		suffix := ""
		if e.Unresolved {
			suffix = " (unresolved)"
		}
		fmt.Fprintf(b, "%sfield [%s]%s\n", indent, e.Key, suffix)
	case *UnaryExpr:
		fmt.Fprintf(b, "%sunary %s\n", indent, e.Op)
		sprint(b, e.Operand, depth+1)
	case *BinaryExpr:
		fmt.Fprintf(b, "%sbinary %s\n", indent, e.Op)
		sprint(b, e.Left, depth+1)
		sprint(b, e.Right, depth+1)
	case *Call:
		fmt.Fprintf(b, "%scall %s\n", indent, e.Name)
		for _, a := range e.Args {
			sprint(b, a, depth+1)
		}
	case *Conditional:
		fmt.Fprintf(b, "%sconditional\n", indent)
		for _, br := range e.Branches {
			fmt.Fprintf(b, "%s  when\n", indent)
			sprint(b, br.Cond, depth+2)
			fmt.Fprintf(b, "%s  then\n", indent)
			sprint(b, br.Result, depth+2)
		}
		if e.Else != nil {
			fmt.Fprintf(b, "%s  else\n", indent)
			sprint(b, e.Else, depth+2)
		}
	case *LOD:
		fmt.Fprintf(b, "%slod %s [%s]\n", indent, e.Scope, strings.Join(e.Dims, ", "))
		sprint(b, e.Agg, depth+1)
	case *BadExpr:
		fmt.Fprintf(b, "%sbad expression at %s\n", indent, e.Position)
	default:
		fmt.Fprintf(b, "%s%T\n", indent, e)
	}
}
