// Package store provides SQLite-backed durable storage for arrayvc snapshots
// and their transaction logs.
//
// The store is an append-only history with:
//   - Snapshots: one row per commit, linked to its parent
//   - Nodes: the node listing (id, path, type) of each snapshot
//   - Transaction logs: the canonical JSON log of the commit that produced a
//     snapshot, with its content hash
//
// # Critical Patterns
//
// Logical ordering:
//   - Commits are ordered by seq INTEGER, assigned on write, NEVER by timestamps
//   - Node listings are ordered by path COLLATE BINARY
//
// Content addressing:
//   - Logs are stored as canonical JSON together with the domain-separated
//     SHA-256 from format.TransactionLogHash
//   - Reads recompute the hash and reject a body that does not match
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
//
// The store holds a single connection. A Snapshot listing keeps that
// connection busy until the listing ends, so callers must not issue other
// store calls from inside a ListNodes loop.
package store
