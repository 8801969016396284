// Package ast provides Abstract Syntax Tree (AST) definitions for the
// Policy Condition Language (PCL).
//
// The AST represents two things: the structured policy definition
// (variables, rules, constraints, examples) supplied by upstream
// collaborators, and the parsed form of each rule's condition expression.
// Expression nodes preserve source positions for precise error reporting.
//
// # Core Types
//
// Policy: Structured policy definition (variables, rules, constraints, examples)
//
// Variable: Declared policy variable with type, domain, and default
//
// Rule: Individual policy rule (condition expression, conclusion, priority)
//
// Constraint: Global constraint that must hold under every assignment
//
// ExprNode: Condition expression node (all/any/not/compare)
//
// Literal: Typed literal appearing on the right-hand side of a comparison
//
// Value: Closed tagged variant for runtime variable values
// (string, number, boolean, enum, date)
//
// # Expression Structure
//
// A condition string such as
//
//	request_type == 'regular_vacation' AND advance_notice_days < 14
//
// parses into:
//
//	ExprNode{Kind: all}
//	├── ExprNode{Kind: compare, Ident: "request_type", Op: ==, Literal: 'regular_vacation'}
//	└── ExprNode{Kind: compare, Ident: "advance_notice_days", Op: <, Literal: 14}
//
// The parser performs no type or variable-existence checking; the same AST
// shape is reused for any variable set. Binding happens in pkg/pcl/compiler.
//
// # Immutability
//
// AST nodes should be treated as immutable after construction.
// The parser builds the AST once and the compiler inspects it without
// modification.
package ast
