package parser

import (
	"fmt"
	"strings"
	"time"

	"github.com/dashport-dev/dashport/pkg/calc"
	"github.com/dashport-dev/dashport/pkg/token"
)

// parsePrimary parses literals, field references, function calls,
// conditionals, level-of-detail expressions, and parenthesized groups.
// A token that cannot start a primary yields a BadExpr sentinel and the
// parser moves on, so the caller keeps building.
func (p *Parser) parsePrimary() calc.Expr {
	pos := p.token.Pos

	switch p.token.Type {
	case token.NUMBER:
		text := p.token.Literal
		p.nextToken()
		dt := calc.TypeInteger
		if strings.ContainsAny(text, ".eE") {
			dt = calc.TypeReal
		}
		return &calc.Literal{Type: dt, Text: text, Position: pos}

	case token.STRING:
		text := p.token.Literal
		p.nextToken()
		return &calc.Literal{Type: calc.TypeString, Text: text, Position: pos}

	case token.DATE:
		return p.parseDateLiteral()

	case token.TRUE:
		p.nextToken()
		return &calc.Literal{Type: calc.TypeBoolean, Text: "true", Position: pos}

	case token.FALSE:
		p.nextToken()
		return &calc.Literal{Type: calc.TypeBoolean, Text: "false", Position: pos}

	case token.NULL:
		p.nextToken()
		return &calc.Literal{Null: true, Position: pos}

	case token.FIELD:
		name := p.token.Literal
		p.nextToken()
		return p.resolveField(name, pos)

	case token.IDENT:
		return p.parseCall()

	case token.IF:
		return p.parseIf()

	case token.CASE:
		return p.parseCase()

	case token.LBRACE:
		return p.parseLOD()

	case token.LPAREN:
		p.nextToken()
		expr := p.parseExpression()
		p.expect(token.RPAREN)
		return expr

	default:
		p.addError(pos, fmt.Sprintf("unexpected %s, expected an expression", p.token.Type))
		// Consume the offending token so parsing makes progress.
		if !p.check(token.EOF) {
			p.nextToken()
		}
		return &calc.BadExpr{Position: pos}
	}
}

// dateFormats are the accepted layouts inside #...# literals.
var dateFormats = []struct {
	layout string
	dtype  calc.DataType
}{
	{"2006-01-02 15:04:05", calc.TypeDatetime},
	{"2006-01-02 15:04", calc.TypeDatetime},
	{"2006-01-02", calc.TypeDate},
	{"January 2, 2006", calc.TypeDate},
	{"01/02/2006", calc.TypeDate},
}

// parseDateLiteral converts a #...# token into a typed Literal, normalizing
// the text to ISO form.
func (p *Parser) parseDateLiteral() calc.Expr {
	pos := p.token.Pos
	raw := strings.TrimSpace(p.token.Literal)
	p.nextToken()

	for _, f := range dateFormats {
		if ts, err := time.Parse(f.layout, raw); err == nil {
			text := ts.Format("2006-01-02")
			if f.dtype == calc.TypeDatetime {
				text = ts.Format("2006-01-02 15:04:05")
			}
			return &calc.Literal{Type: f.dtype, Text: text, Position: pos}
		}
	}

	p.addError(pos, fmt.Sprintf("malformed date literal #%s#", raw))
	return &calc.BadExpr{Position: pos}
}

// parseCall parses a function call: IDENT ( args ). A bare identifier
// without parentheses is not valid in the calculation language.
func (p *Parser) parseCall() calc.Expr {
	pos := p.token.Pos
	name := strings.ToUpper(p.token.Literal)
	p.nextToken()

	if !p.check(token.LPAREN) {
		p.addError(pos, fmt.Sprintf("unexpected identifier %q: field names must be bracketed", name))
		return &calc.BadExpr{Position: pos}
	}
	p.nextToken() // consume '('

	var args []calc.Expr
	if !p.check(token.RPAREN) {
		args = append(args, p.parseExpression())
		for p.match(token.COMMA) {
			args = append(args, p.parseExpression())
		}
	}
	p.expect(token.RPAREN)

	return &calc.Call{Name: name, Args: args, Position: pos}
}

// parseIf parses IF <cond> THEN <expr> [ELSEIF <cond> THEN <expr>]*
// [ELSE <expr>] END. Branch order is preserved exactly as written; the
// first true branch wins at evaluation time.
func (p *Parser) parseIf() calc.Expr {
	pos := p.token.Pos
	p.nextToken() // consume IF

	cond := &calc.Conditional{Position: pos}

	first := calc.Branch{Cond: p.parseExpression()}
	p.expect(token.THEN)
	first.Result = p.parseExpression()
	cond.Branches = append(cond.Branches, first)

	for p.match(token.ELSEIF) {
		b := calc.Branch{Cond: p.parseExpression()}
		p.expect(token.THEN)
		b.Result = p.parseExpression()
		cond.Branches = append(cond.Branches, b)
	}

	if p.match(token.ELSE) {
		cond.Else = p.parseExpression()
	}

	p.expect(token.END)
	return cond
}

// parseCase parses CASE <expr> WHEN <value> THEN <expr> ... [ELSE <expr>]
// END and desugars it into a Conditional of equality tests against the
// switched expression, in listed order.
func (p *Parser) parseCase() calc.Expr {
	pos := p.token.Pos
	p.nextToken() // consume CASE

	scrutinee := p.parseExpression()
	cond := &calc.Conditional{Position: pos}

	for p.match(token.WHEN) {
		value := p.parseExpression()
		p.expect(token.THEN)
		result := p.parseExpression()
		cond.Branches = append(cond.Branches, calc.Branch{
			Cond:   &calc.BinaryExpr{Op: token.EQ, Left: scrutinee, Right: value},
			Result: result,
		})
	}

	if len(cond.Branches) == 0 {
		p.addError(p.token.Pos, "CASE expression has no WHEN branches")
	}

	if p.match(token.ELSE) {
		cond.Else = p.parseExpression()
	}

	p.expect(token.END)
	return cond
}

// parseLOD parses a level-of-detail expression:
//
//	{ FIXED|INCLUDE|EXCLUDE [dim, dim...] : <aggregate-expr> }
//
// The dimension list may be empty (FIXED over the whole table). The
// shorthand { <aggregate-expr> } with no scope keyword is table-scoped
// FIXED. The aggregate sub-expression is parsed recursively and may nest
// further LOD or conditional expressions.
func (p *Parser) parseLOD() calc.Expr {
	pos := p.token.Pos
	p.nextToken() // consume '{'

	lod := &calc.LOD{Scope: calc.LODFixed, Position: pos}

	switch p.token.Type {
	case token.FIXED:
		p.nextToken()
	case token.INCLUDE:
		lod.Scope = calc.LODInclude
		p.nextToken()
	case token.EXCLUDE:
		lod.Scope = calc.LODExclude
		p.nextToken()
	default:
		// Table-scoped shorthand: no scope keyword, no dimension list.
		lod.Agg = p.parseExpression()
		p.expect(token.RBRACE)
		return lod
	}

	for p.check(token.FIELD) {
		name := p.token.Literal
		dimPos := p.token.Pos
		p.nextToken()
		lod.Dims = append(lod.Dims, name)
		if ref := p.resolveField(name, dimPos); ref.Unresolved {
			lod.Unresolved = append(lod.Unresolved, name)
		}
		if !p.match(token.COMMA) {
			break
		}
	}

	p.expect(token.COLON)
	lod.Agg = p.parseExpression()
	p.expect(token.RBRACE)
	return lod
}
