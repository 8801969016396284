// Package errors provides the compilation error taxonomy for PCL policies.
//
// Compilation errors are collected exhaustively and returned as a batch,
// never raised one at a time: every rule and constraint is compiled even
// after one fails, so a policy author can fix every broken rule from a
// single round trip.
//
// # Error Kinds
//
// KindParse: the condition expression failed to lex or parse
//
// KindUnknownVariable: a condition references an undeclared variable
//
// KindUnsupportedOperator: an operator is invalid for the variable's type
// (ordering operators are only valid for number and date)
//
// KindTypeMismatch: a literal is incompatible with the variable's declared
// type or enum domain
//
// KindInvalidDeclaration: a variable, rule, or constraint declaration is
// structurally invalid (duplicate names, empty enum domain, default on a
// mandatory variable, unknown conclusion)
//
// Each error names the offending rule or constraint id and, where
// available, carries a position into the condition expression and a
// did-you-mean suggestion.
package errors
