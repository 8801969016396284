// Package store provides persistent storage for policy definitions.
//
// The store keeps the raw YAML source of every registered policy along
// with compilation metadata, so a restarted process can repopulate its
// registry without re-reading the original policy directory. Two
// backends are provided:
//
//   - MemoryBackend: non-durable, for tests and ephemeral deployments
//   - SQLiteBackend: durable single-instance storage using WAL mode
//
// The store holds definitions, not compiled policies. Compilation is
// deterministic, so recompiling a stored definition reproduces the same
// predicates; only the compilation id differs.
package store
