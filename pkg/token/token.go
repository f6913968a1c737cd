// Package token defines the lexical tokens of the dashboard calculation
// language and their source positions.
package token

import "strings"

// Type identifies the kind of a lexical token.
type Type int

// The calculation language is closed: every token the lexer can produce is
// listed here. There is no dialect-specific token registration.
const (
	ILLEGAL Type = iota
	EOF

	// Literals and names
	IDENT  // bare identifier (function names: SUM, DATEPART, ...)
	FIELD  // bracketed field reference: [Order Date]
	NUMBER // 42, 3.14, 1e9
	STRING // 'text' or "text"
	DATE   // #2024-01-31# or #2024-01-31 12:00:00#

	// Operators
	PLUS    // +
	MINUS   // -
	STAR    // *
	SLASH   // /
	PERCENT // %
	CARET   // ^
	EQ      // = or ==
	NE      // != or <>
	LT      // <
	LE      // <=
	GT      // >
	GE      // >=

	// Delimiters
	LPAREN // (
	RPAREN // )
	COMMA  // ,
	LBRACE // {
	RBRACE // }
	COLON  // :

	// Keywords
	AND
	OR
	NOT
	IF
	THEN
	ELSEIF
	ELSE
	END
	CASE
	WHEN
	FIXED
	INCLUDE
	EXCLUDE
	TRUE
	FALSE
	NULL
)

var names = map[Type]string{
	ILLEGAL: "ILLEGAL",
	EOF:     "EOF",
	IDENT:   "IDENT",
	FIELD:   "FIELD",
	NUMBER:  "NUMBER",
	STRING:  "STRING",
	DATE:    "DATE",
	PLUS:    "+",
	MINUS:   "-",
	STAR:    "*",
	SLASH:   "/",
	PERCENT: "%",
	CARET:   "^",
	EQ:      "=",
	NE:      "!=",
	LT:      "<",
	LE:      "<=",
	GT:      ">",
	GE:      ">=",
	LPAREN:  "(",
	RPAREN:  ")",
	COMMA:   ",",
	LBRACE:  "{",
	RBRACE:  "}",
	COLON:   ":",
	AND:     "AND",
	OR:      "OR",
	NOT:     "NOT",
	IF:      "IF",
	THEN:    "THEN",
	ELSEIF:  "ELSEIF",
	ELSE:    "ELSE",
	END:     "END",
	CASE:    "CASE",
	WHEN:    "WHEN",
	FIXED:   "FIXED",
	INCLUDE: "INCLUDE",
	EXCLUDE: "EXCLUDE",
	TRUE:    "TRUE",
	FALSE:   "FALSE",
	NULL:    "NULL",
}

// String returns a readable name for the token type.
func (t Type) String() string {
	if s, ok := names[t]; ok {
		return s
	}
	return "UNKNOWN"
}

// keywords maps upper-cased identifier text to keyword token types.
// The calculation language is case-insensitive for keywords.
var keywords = map[string]Type{
	"AND":     AND,
	"OR":      OR,
	"NOT":     NOT,
	"IF":      IF,
	"THEN":    THEN,
	"ELSEIF":  ELSEIF,
	"ELSE":    ELSE,
	"END":     END,
	"CASE":    CASE,
	"WHEN":    WHEN,
	"FIXED":   FIXED,
	"INCLUDE": INCLUDE,
	"EXCLUDE": EXCLUDE,
	"TRUE":    TRUE,
	"FALSE":   FALSE,
	"NULL":    NULL,
}

// LookupIdent returns the keyword type for an identifier, or IDENT if the
// identifier is not a keyword.
func LookupIdent(ident string) Type {
	if t, ok := keywords[strings.ToUpper(ident)]; ok {
		return t
	}
	return IDENT
}

// Token is a lexical token with its source position.
type Token struct {
	Type    Type
	Literal string
	Pos     Position
}
