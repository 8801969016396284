// Veritor is a policy compiler and verification engine.
//
// It compiles declarative YAML policy definitions into symbolic
// predicates and verifies concrete scenarios against them, producing
// one of four outcomes: valid, invalid, needs_clarification, or error.
//
// Usage:
//
//	# Compile policy definitions and report every error
//	veritor compile --policies ./policies
//
//	# Verify a scenario against a policy
//	veritor verify leave-policy --policies ./policies --input scenario.yaml
//
//	# Replay the examples embedded in policy definitions
//	veritor test --policies ./policies
//
//	# Run as a long-lived engine with hot reload, audit, and metrics
//	veritor run --config config.yaml
//
//	# Show version information
//	veritor version
package main

func main() {
	Execute()
}
