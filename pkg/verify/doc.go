// Package verify implements the verification engine: a state machine
// that decides whether a concrete variable assignment is valid, invalid,
// or underspecified against a compiled policy.
//
// # State Machine
//
//	RECEIVED -> CHECK_MANDATORY -> NEEDS_CLARIFICATION            [terminal]
//	                            -> APPLY_DEFAULTS
//	                                 -> CHECK_GLOBAL_CONSTRAINTS -> INVALID  [terminal]
//	                                                             -> EVALUATE_RULES
//	                                                                  -> INVALID [terminal]
//	                                                                  -> VALID   [terminal]
//	any step -> ERROR (internal failure)                           [terminal]
//
// The mandatory-variable gate runs before any formula evaluation: it is
// the cheapest check and gives callers an immediate, specific
// clarification request. Global constraints outrank all rules. Rules are
// evaluated exhaustively in descending priority order with no
// short-circuit, and when rules of equal priority disagree, invalid wins.
//
// # Determinism
//
// Verify is a pure function of (CompiledPolicy, assignment): repeated
// calls with identical inputs return an identical classification and
// violated-rule ordering. The engine builds its own transient evaluation
// state per call and never mutates the compiled policy, so concurrent
// verifications against one CompiledPolicy need no locking.
//
// # Partial Information
//
// An optional variable with no value and no default leaves comparisons
// over it unknown. A rule triggers only when its condition is
// definitively true; a global constraint is violated only when it is
// definitively false. Unknown never triggers and never violates.
package verify
