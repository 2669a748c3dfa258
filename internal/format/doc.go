// Package format defines the identifier, path and transaction log types shared
// by every other arrayvc package.
//
// This package contains type definitions and their encodings only. All other
// internal packages import format; format imports nothing internal.
//
// Key design constraints:
//   - Nodes are addressed by a stable NodeID, never by path, because paths
//     can change between snapshots
//   - All JSON tags use snake_case
//   - Sets and maps encode in sorted order so that the same log always
//     produces the same bytes (and the same hash)
//   - A TransactionLog carries FormatVersion so readers can reject logs
//     written by newer software
package format
