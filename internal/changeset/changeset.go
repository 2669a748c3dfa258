package changeset

import (
	"iter"
	"maps"
	"slices"

	"github.com/roach88/arrayvc/internal/format"
)

// UserAttributes are the free-form attributes a user attaches to a node.
type UserAttributes map[string]any

// ArrayMetadata is the structural metadata of an array (shape, chunk grid,
// data type, codecs). Its contents are opaque to the conflict engine.
type ArrayMetadata map[string]any

// ChunkRef points at the stored bytes of one chunk.
type ChunkRef struct {
	ChunkID string `json:"chunk_id" yaml:"chunk_id"`
	Offset  uint64 `json:"offset" yaml:"offset"`
	Length  uint64 `json:"length" yaml:"length"`
}

type newArray struct {
	id       format.NodeID
	metadata ArrayMetadata
}

// chunkWrite is one pending chunk write. A nil ref deletes the chunk.
type chunkWrite struct {
	index format.ChunkIndices
	ref   *ChunkRef
}

// ChangeSet is the mutable record of one writer's uncommitted edits.
// The zero value is not usable; call New.
type ChangeSet struct {
	newGroups         map[format.Path]format.NodeID
	newArrays         map[format.Path]newArray
	updatedArrays     map[format.NodeID]ArrayMetadata
	updatedAttributes map[format.NodeID]UserAttributes
	setChunks         map[format.NodeID]map[string]chunkWrite
	deletedGroups     format.Set[format.Path]
	deletedArrays     format.Set[format.Path]
}

// New returns an empty change set.
func New() *ChangeSet {
	return &ChangeSet{
		newGroups:         map[format.Path]format.NodeID{},
		newArrays:         map[format.Path]newArray{},
		updatedArrays:     map[format.NodeID]ArrayMetadata{},
		updatedAttributes: map[format.NodeID]UserAttributes{},
		setChunks:         map[format.NodeID]map[string]chunkWrite{},
		deletedGroups:     format.Set[format.Path]{},
		deletedArrays:     format.Set[format.Path]{},
	}
}

// IsEmpty reports whether the change set records no edits.
func (cs *ChangeSet) IsEmpty() bool {
	return len(cs.newGroups) == 0 &&
		len(cs.newArrays) == 0 &&
		len(cs.updatedArrays) == 0 &&
		len(cs.updatedAttributes) == 0 &&
		len(cs.setChunks) == 0 &&
		len(cs.deletedGroups) == 0 &&
		len(cs.deletedArrays) == 0
}

// AddGroup records the creation of a group.
func (cs *ChangeSet) AddGroup(path format.Path, id format.NodeID) {
	cs.newGroups[path] = id
}

// AddArray records the creation of an array with its initial metadata.
func (cs *ChangeSet) AddArray(path format.Path, id format.NodeID, metadata ArrayMetadata) {
	cs.newArrays[path] = newArray{id: id, metadata: metadata}
}

// UpdateArray records new structural metadata for an existing array.
func (cs *ChangeSet) UpdateArray(id format.NodeID, metadata ArrayMetadata) {
	cs.updatedArrays[id] = metadata
}

// UpdateUserAttributes records new user attributes for a node.
// nil clears the node's attributes.
func (cs *ChangeSet) UpdateUserAttributes(id format.NodeID, attrs UserAttributes) {
	cs.updatedAttributes[id] = attrs
}

// SetChunkRef records a write of one chunk. A nil ref deletes the chunk.
func (cs *ChangeSet) SetChunkRef(id format.NodeID, index format.ChunkIndices, ref *ChunkRef) {
	writes, ok := cs.setChunks[id]
	if !ok {
		writes = map[string]chunkWrite{}
		cs.setChunks[id] = writes
	}
	writes[index.Key()] = chunkWrite{index: slices.Clone(index), ref: ref}
}

// UnsetChunkRef removes one pending chunk write, so the committed value for
// that index stands. Removing the last pending write of a node drops the
// node from the written set.
func (cs *ChangeSet) UnsetChunkRef(id format.NodeID, index format.ChunkIndices) {
	writes, ok := cs.setChunks[id]
	if !ok {
		return
	}
	delete(writes, index.Key())
	if len(writes) == 0 {
		delete(cs.setChunks, id)
	}
}

// GetChunkRef returns the pending write for one chunk. The returned ref is
// nil when the pending write is a deletion; ok is false when there is no
// pending write at all.
func (cs *ChangeSet) GetChunkRef(id format.NodeID, index format.ChunkIndices) (ref *ChunkRef, ok bool) {
	w, ok := cs.setChunks[id][index.Key()]
	if !ok {
		return nil, false
	}
	return w.ref, true
}

// DeleteGroup records the deletion of a group. A group created in this same
// change set is simply forgotten.
func (cs *ChangeSet) DeleteGroup(path format.Path, id format.NodeID) {
	if _, isNew := cs.newGroups[path]; isNew {
		delete(cs.newGroups, path)
	} else {
		cs.deletedGroups.Add(path)
	}
	delete(cs.updatedAttributes, id)
}

// DeleteArray records the deletion of an array and drops every other pending
// edit of it. An array created in this same change set is simply forgotten.
func (cs *ChangeSet) DeleteArray(path format.Path, id format.NodeID) {
	if _, isNew := cs.newArrays[path]; isNew {
		delete(cs.newArrays, path)
	} else {
		cs.deletedArrays.Add(path)
	}
	delete(cs.updatedArrays, id)
	delete(cs.updatedAttributes, id)
	delete(cs.setChunks, id)
}

// WrittenArrays returns, in sorted order, every node with pending chunk writes.
func (cs *ChangeSet) WrittenArrays() []format.NodeID {
	return slices.Sorted(maps.Keys(cs.setChunks))
}

// AllModifiedChunks yields each written node with its pending chunk indices.
// Nodes come in sorted order and indices in lexicographic order.
func (cs *ChangeSet) AllModifiedChunks() iter.Seq2[format.NodeID, []format.ChunkIndices] {
	return func(yield func(format.NodeID, []format.ChunkIndices) bool) {
		for _, id := range cs.WrittenArrays() {
			if !yield(id, cs.chunkIndices(id).Sorted()) {
				return
			}
		}
	}
}

// PendingChunkCount returns the total number of pending chunk writes.
func (cs *ChangeSet) PendingChunkCount() int {
	n := 0
	for _, writes := range cs.setChunks {
		n += len(writes)
	}
	return n
}

// HasUpdatedAttributes reports whether the node's user attributes changed.
func (cs *ChangeSet) HasUpdatedAttributes(id format.NodeID) bool {
	_, ok := cs.updatedAttributes[id]
	return ok
}

// UpdatedAttributes returns the pending attributes of a node.
func (cs *ChangeSet) UpdatedAttributes(id format.NodeID) (UserAttributes, bool) {
	attrs, ok := cs.updatedAttributes[id]
	return attrs, ok
}

// UpdatedZarrMetadata returns the pending structural metadata of an array.
func (cs *ChangeSet) UpdatedZarrMetadata(id format.NodeID) (ArrayMetadata, bool) {
	md, ok := cs.updatedArrays[id]
	return md, ok
}

// NewGroups returns the paths of groups created in this change set, sorted.
func (cs *ChangeSet) NewGroups() []format.Path {
	return slices.Sorted(maps.Keys(cs.newGroups))
}

// NewArrays returns the paths of arrays created in this change set, sorted.
func (cs *ChangeSet) NewArrays() []format.Path {
	return slices.Sorted(maps.Keys(cs.newArrays))
}

// NewArray returns the identifier and metadata of an array created at path.
func (cs *ChangeSet) NewArray(path format.Path) (format.NodeID, ArrayMetadata, bool) {
	a, ok := cs.newArrays[path]
	return a.id, a.metadata, ok
}

// DeletedGroups returns the paths of deleted groups, sorted.
func (cs *ChangeSet) DeletedGroups() []format.Path {
	return cs.deletedGroups.Sorted()
}

// DeletedArrays returns the paths of deleted arrays, sorted.
func (cs *ChangeSet) DeletedArrays() []format.Path {
	return cs.deletedArrays.Sorted()
}

// Clone returns an independent copy. Metadata and attribute values are
// shared, since they are replaced rather than mutated in place.
func (cs *ChangeSet) Clone() *ChangeSet {
	out := &ChangeSet{
		newGroups:         maps.Clone(cs.newGroups),
		newArrays:         maps.Clone(cs.newArrays),
		updatedArrays:     maps.Clone(cs.updatedArrays),
		updatedAttributes: maps.Clone(cs.updatedAttributes),
		setChunks:         make(map[format.NodeID]map[string]chunkWrite, len(cs.setChunks)),
		deletedGroups:     cs.deletedGroups.Clone(),
		deletedArrays:     cs.deletedArrays.Clone(),
	}
	for id, writes := range cs.setChunks {
		out.setChunks[id] = maps.Clone(writes)
	}
	return out
}

func (cs *ChangeSet) chunkIndices(id format.NodeID) format.ChunkSet {
	writes := cs.setChunks[id]
	out := make(format.ChunkSet, len(writes))
	for _, w := range writes {
		out.Add(w.index)
	}
	return out
}
