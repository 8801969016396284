package ast

import "fmt"

// Position is a byte offset into a condition expression string.
// Condition expressions are single-line, so a column offset is sufficient
// for pointing at the offending token.
type Position struct {
	Offset int // 0-based byte offset into the expression
}

// String returns a human-readable representation of the position.
func (p Position) String() string {
	return fmt.Sprintf("offset %d", p.Offset)
}
