// Package audit records verification outcomes durably for later review.
//
// The Recorder accepts results on a buffered channel and writes them
// from a background worker, so verification latency never includes a
// database write. When the buffer is full, records are dropped and
// counted rather than blocking the verification path.
//
// Storage backends mirror the policy store: an in-memory backend for
// tests and a SQLite backend for durable single-instance deployments.
// The retention Pruner deletes aged records, optionally on a cron
// schedule.
package audit
