// Package parser turns calculation-language source text into an AST.
//
// # Usage
//
//	result := parser.Parse("IF [Profit] > 0 THEN 'gain' ELSE 'loss' END", fields)
//	if calc.HasFailure(result.Diagnostics) {
//	    // handle parse failures; result.Expr is still a best-effort tree
//	}
//
// # Grammar Overview
//
// The parser is a recursive-descent / precedence-climbing parser for the
// calculation language:
//
//	expr        → or_expr
//	or_expr     → and_expr (OR and_expr)*
//	and_expr    → not_expr (AND not_expr)*
//	not_expr    → NOT not_expr | comparison
//	comparison  → additive ((= | == | != | <> | < | <= | > | >=) additive)*
//	additive    → multiplicative ((+ | -) multiplicative)*
//	multiplicative → power ((* | / | %) power)*
//	power       → unary (^ power)?        -- right associative
//	unary       → - unary | primary
//	primary     → literal | field | call | if | case | lod | ( expr )
//
// Same-precedence binary operators associate left-to-right.
//
// Parsing never raises: malformed input yields a non-empty diagnostic list
// and a best-effort tree in which failed sub-expressions appear as BadExpr
// sentinels, so one pass reports every error.
package parser

import (
	"fmt"

	"github.com/dashport-dev/dashport/pkg/calc"
	"github.com/dashport-dev/dashport/pkg/token"
)

// Result is the outcome of parsing one calculation source text.
type Result struct {
	// Expr is the parsed tree. It is nil only for empty input; malformed
	// input yields a tree containing BadExpr sentinels.
	Expr calc.Expr
	// References lists every field mentioned, first-mention order.
	References []string
	// Diagnostics is non-empty iff anything went wrong.
	Diagnostics []calc.Diagnostic
}

// Parser parses calculation source into an AST.
type Parser struct {
	lexer  *Lexer
	token  token.Token // current token
	peek   token.Token // lookahead token
	fields *calc.FieldSet
	diags  []calc.Diagnostic
}

// NewParser creates a parser for the given source. Field references are
// resolved against known at parse time; unknown names are flagged, not
// fatal. A nil field set leaves every reference unresolved.
func NewParser(source string, known *calc.FieldSet) *Parser {
	p := &Parser{
		lexer:  NewLexer(source),
		fields: known,
	}
	// Read two tokens to initialize current and peek.
	p.nextToken()
	p.nextToken()
	return p
}

// Parse parses one calculation source text against the known field set.
func Parse(source string, known *calc.FieldSet) Result {
	p := NewParser(source, known)

	if p.check(token.EOF) {
		p.addError(p.token.Pos, "empty expression")
		return Result{Diagnostics: p.diags}
	}

	expr := p.parseExpression()

	// Anything left over after a complete expression is a syntax error.
	if !p.check(token.EOF) {
		p.addError(p.token.Pos, fmt.Sprintf("unexpected %s after expression", p.token.Type))
	}

	return Result{
		Expr:        expr,
		References:  calc.References(expr),
		Diagnostics: p.diags,
	}
}

// ---------- Token Helpers ----------

// nextToken advances to the next token.
func (p *Parser) nextToken() {
	p.token = p.peek
	p.peek = p.lexer.NextToken()
}

// check returns true if the current token is of the given type.
func (p *Parser) check(t token.Type) bool {
	return p.token.Type == t
}

// checkPeek returns true if the peek token is of the given type.
func (p *Parser) checkPeek(t token.Type) bool {
	return p.peek.Type == t
}

// match consumes the current token if it matches and returns true.
func (p *Parser) match(t token.Type) bool {
	if p.check(t) {
		p.nextToken()
		return true
	}
	return false
}

// expect consumes the current token if it matches, otherwise records a
// syntax-error diagnostic.
func (p *Parser) expect(t token.Type) bool {
	if p.check(t) {
		p.nextToken()
		return true
	}
	p.addError(p.token.Pos, fmt.Sprintf("unexpected token %s, expected %s", p.token.Type, t))
	return false
}

// addError records a syntax-error diagnostic.
func (p *Parser) addError(pos token.Position, msg string) {
	p.diags = append(p.diags, calc.Diagnostic{
		Kind:    calc.DiagSyntaxError,
		Pos:     pos,
		Message: msg,
	})
}

// resolveField records a FieldRef for the given raw name, flagging it when
// the name is absent from the known field set. Unresolved references do not
// abort parsing; the translator reports them.
func (p *Parser) resolveField(name string, pos token.Position) *calc.FieldRef {
	ref := &calc.FieldRef{Key: name, Position: pos}
	if p.fields == nil || !p.fields.Has(name) {
		ref.Unresolved = true
		p.diags = append(p.diags, calc.Diagnostic{
			Kind:    calc.DiagUnresolvedField,
			Pos:     pos,
			Subject: name,
			Message: fmt.Sprintf("unknown field %q", name),
		})
	}
	return ref
}
