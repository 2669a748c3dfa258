package changeset

import "github.com/roach88/arrayvc/internal/format"

// TransactionLog derives the summary of this change set that is stored with
// the commit. Derivation is total and deterministic: calling it twice on an
// unchanged change set yields equal logs.
//
// Chunk payloads, metadata and attribute values are dropped; the log only
// records which node, index or path was touched. Deletions are recorded in
// DeletedPaths only. DeletedGroups and DeletedArrays stay empty because the
// change set does not track the identifiers of deleted nodes.
func (cs *ChangeSet) TransactionLog() *format.TransactionLog {
	l := format.NewTransactionLog()

	for path, id := range cs.newGroups {
		l.NewGroups[path] = id
	}
	for path, a := range cs.newArrays {
		l.NewArrays[path] = a.id
	}
	for id := range cs.updatedAttributes {
		l.UpdatedUserAttributes.Add(id)
	}
	for id := range cs.updatedArrays {
		l.UpdatedZarrMetadata.Add(id)
	}
	for id := range cs.setChunks {
		l.UpdatedChunks[id] = cs.chunkIndices(id)
	}
	l.DeletedPaths = cs.deletedArrays.Union(cs.deletedGroups)

	return l
}
