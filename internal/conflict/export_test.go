package conflict

// Metric handles for assertions in the external test package.
var (
	SolveTotal           = solveTotal
	ConflictsDetected    = conflictsDetected
	ChunkWritesRetracted = chunkWritesRetracted
)
