// Package telemetry groups observability for the verification engine.
//
// The metrics subpackage collects Prometheus counters, histograms, and
// gauges for policy compilation and verification, and exposes them over
// an HTTP handler. Collection is off the hot path: the policy manager
// records observations after a verification completes, so a slow or
// disabled collector never changes a classification.
package telemetry
