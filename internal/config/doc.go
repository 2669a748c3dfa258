// Package config loads solver configuration from CUE.
//
// A configuration file is unified with an embedded schema that supplies
// every default, so an empty file (or no file) selects a BasicSolver that
// fails on every conflict:
//
//	solver: {
//		kind: "basic"
//		on_chunk_write_conflicts: "theirs"
//	}
//
// Unknown fields under solver are rejected because the schema closes the
// struct.
package config
