// Package scenario describes concurrent-commit situations as YAML fixtures
// and runs a conflict.Solver over them.
//
// # Scenario Format
//
//	name: chunk_collision
//	description: "Both writers wrote chunk [0] of /a"
//	snapshot:                      # tree produced by the previous commit
//	  - { id: a, path: /a, type: array }
//	previous_changes:              # or previous_log, never both
//	  chunks:
//	    - { id: a, index: [0] }
//	pending:
//	  chunks:
//	    - { id: a, index: [0], ref: { chunk_id: c1, length: 16 } }
//	    - { id: a, index: [1], ref: { chunk_id: c2, length: 16 } }
//	expect:
//	  outcome: failure
//	  reasons: [WRITE_TO_WRITTEN_CHUNK]
//
// previous_changes is turned into a transaction log exactly as a commit
// would; previous_log states the log directly, which is how logs that
// derivation never produces (deleted_arrays, for one) are expressed.
//
// A chunk write without ref deletes the chunk. An attributes update without
// attributes clears them.
package scenario
