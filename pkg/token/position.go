package token

import "fmt"

// Position is a location in a calculation source text.
type Position struct {
	Line   int // 1-based line number
	Column int // 1-based column number
	Offset int // 0-based byte offset
}

// IsValid reports whether the position refers to actual source text.
func (p Position) IsValid() bool {
	return p.Line > 0
}

// String renders the position as "line:col".
func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}
