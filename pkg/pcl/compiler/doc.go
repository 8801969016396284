// Package compiler binds parsed condition expressions to declared policy
// variables and emits immutable compiled policies.
//
// Compilation is a single pass over the policy definition:
//
//  1. Declare one symbolic variable per policy variable, validating the
//     declaration itself (valid type, enum domain shape, default value
//     type-checks, no default on mandatory variables).
//  2. Parse every rule condition and every global constraint expression.
//  3. Bind each comparison to its symbolic variable, checking operator
//     validity for the variable's type and literal compatibility with the
//     variable's type and domain.
//  4. Translate each AST into a formula tree by direct structural mapping.
//     Enum variables additionally receive an automatically conjoined
//     domain constraint restricting them to their declared set.
//
// Error handling is exhaustive: every rule and constraint is compiled even
// after one fails, so the returned error list is complete and a policy
// author can fix every broken rule from a single round trip. A successful
// compilation is all-or-nothing; if anything fails, no predicate from that
// compilation is retained.
//
// The resulting CompiledPolicy is immutable. Verification walks its
// formula trees against an assignment and never re-tokenizes condition
// text.
package compiler
