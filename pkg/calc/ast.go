package calc

import "github.com/dashport-dev/dashport/pkg/token"

// ---------- Expression Types ----------

// Expr is a node in a calculation expression tree. The set of
// implementations is closed; every translation rule is total over it.
type Expr interface {
	exprNode()
	Pos() token.Position
}

// Literal is a typed literal value. Text holds the raw value: the digits of
// a number, the unquoted content of a string, the ISO form of a date, or
// "true"/"false" for booleans. A null literal has Null set and empty Text.
type Literal struct {
	Type     DataType
	Text     string
	Null     bool
	Position token.Position
}

func (*Literal) exprNode() {}

// Pos implements Expr.
func (l *Literal) Pos() token.Position { return l.Position }

// FieldRef is a reference to a workbook field or another calculation by its
// raw source name (without brackets). An unresolved reference is still
// constructed so the rest of the tree can parse; the translator reports it.
type FieldRef struct {
	Key        string // raw field name, brackets stripped
	Unresolved bool   // true if Key was not in the known field set at parse time
	Position   token.Position
}

func (*FieldRef) exprNode() {}

// Pos implements Expr.
func (f *FieldRef) Pos() token.Position { return f.Position }

// BinaryExpr is a binary operation.
type BinaryExpr struct {
	Op    token.Type
	Left  Expr
	Right Expr
}

func (*BinaryExpr) exprNode() {}

// Pos implements Expr.
func (b *BinaryExpr) Pos() token.Position { return b.Left.Pos() }

// UnaryExpr is a prefix operation (NOT, unary minus).
type UnaryExpr struct {
	Op       token.Type
	Operand  Expr
	Position token.Position
}

func (*UnaryExpr) exprNode() {}

// Pos implements Expr.
func (u *UnaryExpr) Pos() token.Position { return u.Position }

// Call is a function call. Name is stored upper-cased; the source language
// treats function names case-insensitively.
type Call struct {
	Name     string
	Args     []Expr
	Position token.Position
}

func (*Call) exprNode() {}

// Pos implements Expr.
func (c *Call) Pos() token.Position { return c.Position }

// Branch is one condition/result pair of a Conditional.
type Branch struct {
	Cond   Expr
	Result Expr
}

// Conditional is an ordered multi-branch selection. Branch order is exactly
// the order written in the source: the first branch whose condition holds
// supplies the result, regardless of later branches. CASE expressions
// desugar to a Conditional of equality tests in listed order.
type Conditional struct {
	Branches []Branch
	Else     Expr // nil when no ELSE branch was written
	Position token.Position
}

func (*Conditional) exprNode() {}

// Pos implements Expr.
func (c *Conditional) Pos() token.Position { return c.Position }

// LODScope is the scoping mode of a level-of-detail expression.
type LODScope string

// LOD scope constants.
const (
	LODFixed   LODScope = "FIXED"
	LODInclude LODScope = "INCLUDE"
	LODExclude LODScope = "EXCLUDE"
)

// LOD is a level-of-detail expression: an aggregation scoped to an explicit
// dimension list. An empty dimension list with FIXED scope means one group
// for the whole table.
type LOD struct {
	Scope      LODScope
	Dims       []string // raw field names, in written order
	Unresolved []string // subset of Dims not found in the known field set
	Agg        Expr     // aggregate sub-expression, recursively parsed
	Position   token.Position
}

func (*LOD) exprNode() {}

// Pos implements Expr.
func (l *LOD) Pos() token.Position { return l.Position }

// BadExpr is the sentinel for a sub-expression that failed to parse. The
// diagnostic describing the failure is recorded by the parser; the sentinel
// lets the parent keep building so one pass reports all errors.
type BadExpr struct {
	Position token.Position
}

func (*BadExpr) exprNode() {}

// Pos implements Expr.
func (b *BadExpr) Pos() token.Position { return b.Position }

// ---------- Traversal ----------

// Walk calls fn for expr and every descendant, pre-order. Walking stops in
// a subtree when fn returns false.
func Walk(expr Expr, fn func(Expr) bool) {
	if expr == nil || !fn(expr) {
		return
	}
	switch e := expr.(type) {
	case *BinaryExpr:
		Walk(e.Left, fn)
		Walk(e.Right, fn)
	case *UnaryExpr:
		Walk(e.Operand, fn)
	case *Call:
		for _, a := range e.Args {
			Walk(a, fn)
		}
	case *Conditional:
		for _, b := range e.Branches {
			Walk(b.Cond, fn)
			Walk(b.Result, fn)
		}
		Walk(e.Else, fn)
	case *LOD:
		Walk(e.Agg, fn)
	}
}

// References returns the raw names of every field mentioned in the tree,
// first-mention order, deduplicated. LOD dimension lists count as mentions.
func References(expr Expr) []string {
	var out []string
	seen := make(map[string]bool)
	add := func(key string) {
		if !seen[key] {
			seen[key] = true
			out = append(out, key)
		}
	}
	Walk(expr, func(e Expr) bool {
		switch n := e.(type) {
		case *FieldRef:
			add(n.Key)
		case *LOD:
			for _, d := range n.Dims {
				add(d)
			}
		}
		return true
	})
	return out
}
