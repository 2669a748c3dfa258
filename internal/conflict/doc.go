// Package conflict decides whether a writer's pending change set can be
// committed on top of changes another writer already committed.
//
// A Solver receives the TransactionLog of the commit made since the writer's
// base snapshot, a read-only Snapshot view of the tree that commit produced,
// and the pending ChangeSet. It returns either a Patched change set (safe to
// commit, possibly rewritten) or a Failure carrying every UnsolvableConflict
// together with the unmodified pending change set.
//
// Unsolvable conflicts are values, not errors. Solve only returns an error
// when reading the snapshot fails, including cancellation of ctx; a partial
// resolution is never returned.
//
// # Conflict categories
//
// BasicSolver evaluates six categories, always in this order:
//
//  1. chunk writes into arrays the previous commit deleted (never resolvable)
//  2. chunk writes to indices the previous commit also wrote
//  3. user attributes updated by both writers
//  4. array metadata updated by both writers
//  5. groups created at the same path by both writers
//  6. arrays created at the same path by both writers
//
// Categories 3 to 6 are detected but not enforced: they are logged and
// counted, and the configured VersionSelection for them is ignored. Only
// categories 1 and 2 can change the outcome.
//
// # Concurrency
//
// Solvers hold no state besides their configuration and may be shared by
// concurrent Solve calls. Each call owns its pending change set; the log and
// snapshot are only read.
package conflict
