package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dashport-dev/dashport/pkg/token"
)

func TestLexerOperators(t *testing.T) {
	input := "+ - * / % ^ = == != <> < <= > >= ( ) { } : ,"

	expected := []token.Type{
		token.PLUS, token.MINUS, token.STAR, token.SLASH, token.PERCENT,
		token.CARET, token.EQ, token.EQ, token.NE, token.NE,
		token.LT, token.LE, token.GT, token.GE,
		token.LPAREN, token.RPAREN, token.LBRACE, token.RBRACE,
		token.COLON, token.COMMA, token.EOF,
	}

	toks := Tokenize(input)
	require.Len(t, toks, len(expected))
	for i, want := range expected {
		assert.Equal(t, want, toks[i].Type, "token %d", i)
	}
}

func TestLexerFieldReferences(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"[Sales]", "Sales"},
		{"[Order Date]", "Order Date"},
		{"[Profit Margin %]", "Profit Margin %"},
		{"[a]]b]", "a]b"}, // doubled bracket escape
	}

	for _, tt := range tests {
		toks := Tokenize(tt.input)
		require.GreaterOrEqual(t, len(toks), 2, tt.input)
		assert.Equal(t, token.FIELD, toks[0].Type, tt.input)
		assert.Equal(t, tt.want, toks[0].Literal, tt.input)
	}
}

func TestLexerStrings(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{`'hello'`, "hello"},
		{`"hello"`, "hello"},
		{`'it''s'`, "it's"},
		{`'mixed "quotes"'`, `mixed "quotes"`},
	}

	for _, tt := range tests {
		toks := Tokenize(tt.input)
		require.GreaterOrEqual(t, len(toks), 2, tt.input)
		assert.Equal(t, token.STRING, toks[0].Type, tt.input)
		assert.Equal(t, tt.want, toks[0].Literal, tt.input)
	}
}

func TestLexerNumbers(t *testing.T) {
	tests := []string{"42", "3.14", "1e6", "2.5E-3"}
	for _, input := range tests {
		toks := Tokenize(input)
		require.GreaterOrEqual(t, len(toks), 2, input)
		assert.Equal(t, token.NUMBER, toks[0].Type, input)
		assert.Equal(t, input, toks[0].Literal, input)
	}
}

func TestLexerKeywordsCaseInsensitive(t *testing.T) {
	tests := []struct {
		input string
		want  token.Type
	}{
		{"IF", token.IF},
		{"if", token.IF},
		{"ElseIf", token.ELSEIF},
		{"and", token.AND},
		{"NOT", token.NOT},
		{"fixed", token.FIXED},
		{"True", token.TRUE},
		{"null", token.NULL},
		{"SUM", token.IDENT}, // function names are plain identifiers
	}

	for _, tt := range tests {
		toks := Tokenize(tt.input)
		assert.Equal(t, tt.want, toks[0].Type, tt.input)
	}
}

func TestLexerComments(t *testing.T) {
	input := "1 // trailing comment\n+ /* block\ncomment */ 2"
	toks := Tokenize(input)

	var types []token.Type
	for _, tok := range toks {
		types = append(types, tok.Type)
	}
	assert.Equal(t, []token.Type{token.NUMBER, token.PLUS, token.NUMBER, token.EOF}, types)
}

func TestLexerDateLiteral(t *testing.T) {
	toks := Tokenize("#2024-01-15#")
	require.GreaterOrEqual(t, len(toks), 2)
	assert.Equal(t, token.DATE, toks[0].Type)
	assert.Equal(t, "2024-01-15", toks[0].Literal)
}

func TestLexerPositions(t *testing.T) {
	toks := Tokenize("[a]\n+ 1")
	require.Len(t, toks, 4)

	assert.Equal(t, 1, toks[0].Pos.Line)
	assert.Equal(t, 2, toks[1].Pos.Line)
	assert.Equal(t, 1, toks[1].Pos.Column)
	assert.Equal(t, 3, toks[2].Pos.Column)
}
