// Package changeset holds a writer's pending, not yet committed edits.
//
// A ChangeSet records new groups and arrays, per-node metadata and user
// attribute updates, per-node chunk writes, and deleted groups and arrays.
// It is owned by exactly one writer and is not safe for concurrent use.
//
// When the edits are committed, TransactionLog derives the immutable summary
// that later writers use for conflict detection.
package changeset
