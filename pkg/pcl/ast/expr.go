package ast

// ExprKind represents the kind of a condition expression node.
type ExprKind string

const (
	ExprKindAll     ExprKind = "all"     // AND of children
	ExprKindAny     ExprKind = "any"     // OR of children
	ExprKindNot     ExprKind = "not"     // NOT of single child
	ExprKindCompare ExprKind = "compare" // identifier op literal
)

// Operator represents a comparison operator in a PCL condition.
type Operator string

const (
	OperatorEqual        Operator = "=="
	OperatorNotEqual     Operator = "!="
	OperatorLessThan     Operator = "<"
	OperatorGreaterThan  Operator = ">"
	OperatorLessEqual    Operator = "<="
	OperatorGreaterEqual Operator = ">="
)

// IsOrdering returns true for operators that require an ordered domain
// (number or date).
func (o Operator) IsOrdering() bool {
	switch o {
	case OperatorLessThan, OperatorGreaterThan, OperatorLessEqual, OperatorGreaterEqual:
		return true
	default:
		return false
	}
}

// ExprNode represents a condition expression in the AST.
// Logical nodes (all/any/not) carry Children; compare nodes carry
// Ident, Op, and Literal.
type ExprNode struct {
	Kind     ExprKind    // Kind of node
	Children []*ExprNode // Child expressions (all/any/not)
	Ident    string      // Variable name (compare)
	Op       Operator    // Comparison operator (compare)
	Literal  *Literal    // Right-hand side literal (compare)
	Pos      Position    // Position of the node in the source expression
}

// IsCompare returns true if this is a comparison node.
func (e *ExprNode) IsCompare() bool {
	return e.Kind == ExprKindCompare
}

// IsLogical returns true if this is a logical node (all/any/not).
func (e *ExprNode) IsLogical() bool {
	return e.Kind == ExprKindAll || e.Kind == ExprKindAny || e.Kind == ExprKindNot
}

// Walk calls fn for every node in the expression tree in depth-first order.
// Traversal stops at the first error.
func (e *ExprNode) Walk(fn func(*ExprNode) error) error {
	if e == nil {
		return nil
	}
	if err := fn(e); err != nil {
		return err
	}
	for _, child := range e.Children {
		if err := child.Walk(fn); err != nil {
			return err
		}
	}
	return nil
}

// LiteralKind represents the lexical class of a literal token.
// The lexical class is what the parser saw; the compiler decides how the
// literal binds against the declared variable type (a bareword may be an
// enum member, a quoted string may be a date, and so on).
type LiteralKind string

const (
	LiteralKindString   LiteralKind = "string"   // quoted string
	LiteralKindNumber   LiteralKind = "number"   // numeric literal
	LiteralKindBool     LiteralKind = "bool"     // true / false
	LiteralKindBareword LiteralKind = "bareword" // unquoted enum token
)

// Literal represents a literal value on the right-hand side of a comparison.
type Literal struct {
	Kind LiteralKind
	Str  string  // string, bareword
	Num  float64 // number
	Bool bool    // bool
	Raw  string  // original token text, for error messages
	Pos  Position
}
