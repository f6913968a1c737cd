package parser

import (
	"github.com/dashport-dev/dashport/pkg/calc"
	"github.com/dashport-dev/dashport/pkg/token"
)

// Expression precedence parsing using precedence climbing.
//
// Precedence levels:
//
//	precNone       = 0
//	precOr         = 1
//	precAnd        = 2
//	precNot        = 3
//	precComparison = 4  (=, ==, !=, <>, <, <=, >, >=)
//	precAddition   = 5  (+, -)
//	precMultiply   = 6  (*, /, %)
//	precUnary      = 7  (-, NOT)
//	precPower      = 8  (^, right associative)
const (
	precNone = iota
	precOr
	precAnd
	precNot
	precComparison
	precAddition
	precMultiply
	precUnary
	precPower
)

// parseExpression parses an expression at the lowest precedence.
func (p *Parser) parseExpression() calc.Expr {
	return p.parseExpressionWithPrecedence(precNone + 1)
}

// parseExpressionWithPrecedence parses infix operators while their
// precedence is at least minPrecedence.
func (p *Parser) parseExpressionWithPrecedence(minPrecedence int) calc.Expr {
	left := p.parsePrefixExpr()

	for {
		prec := infixPrecedence(p.token.Type)
		if prec < minPrecedence {
			break
		}

		op := p.token.Type
		p.nextToken()

		var right calc.Expr
		if op == token.CARET {
			// Exponentiation is right associative: parse the right side at
			// the same precedence rather than one higher.
			right = p.parseExpressionWithPrecedence(prec)
		} else {
			right = p.parseExpressionWithPrecedence(prec + 1)
		}

		left = &calc.BinaryExpr{Op: op, Left: left, Right: right}
	}

	return left
}

// parsePrefixExpr parses unary operators and primary expressions.
func (p *Parser) parsePrefixExpr() calc.Expr {
	switch p.token.Type {
	case token.NOT:
		pos := p.token.Pos
		p.nextToken()
		return &calc.UnaryExpr{Op: token.NOT, Operand: p.parseExpressionWithPrecedence(precNot), Position: pos}

	case token.MINUS:
		pos := p.token.Pos
		p.nextToken()
		return &calc.UnaryExpr{Op: token.MINUS, Operand: p.parseExpressionWithPrecedence(precUnary), Position: pos}

	default:
		return p.parsePrimary()
	}
}

// infixPrecedence returns the precedence of a token as an infix operator,
// or precNone if it is not one.
func infixPrecedence(t token.Type) int {
	switch t {
	case token.OR:
		return precOr
	case token.AND:
		return precAnd
	case token.EQ, token.NE, token.LT, token.LE, token.GT, token.GE:
		return precComparison
	case token.PLUS, token.MINUS:
		return precAddition
	case token.STAR, token.SLASH, token.PERCENT:
		return precMultiply
	case token.CARET:
		return precPower
	default:
		return precNone
	}
}
