// Package metrics exposes Prometheus metrics for policy compilation
// and verification.
//
// All metrics live under the "veritor" namespace:
//
//   - veritor_compilations_total{policy_id, status}
//   - veritor_compilation_duration_seconds{policy_id}
//   - veritor_verifications_total{policy_id, classification}
//   - veritor_verification_duration_seconds{policy_id}
//   - veritor_registered_policies
//
// Metrics are registered against a caller-supplied registry so tests
// can isolate their counters.
package metrics
