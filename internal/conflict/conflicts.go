package conflict

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/roach88/arrayvc/internal/format"
)

// ConflictCode identifies an UnsolvableConflict variant.
type ConflictCode string

const (
	CodeNoFastForward               ConflictCode = "NO_FAST_FORWARD"
	CodeChunksWrittenToDeletedArray ConflictCode = "CHUNKS_WRITTEN_TO_DELETED_ARRAYS"
	CodeWriteToWrittenChunk         ConflictCode = "WRITE_TO_WRITTEN_CHUNK"
	CodeConflictingUserAttributes   ConflictCode = "CONFLICTING_USER_ATTRIBUTES_UPDATE"
	CodeConflictingZarrMetadata     ConflictCode = "CONFLICTING_ZARR_METADATA_UPDATE"
	CodeConflictingGroupCreation    ConflictCode = "CONFLICTING_GROUP_CREATION"
	CodeConflictingArrayCreation    ConflictCode = "CONFLICTING_ARRAY_CREATION"
)

// UnsolvableConflict is one reason a pending change set cannot be committed.
// The set of implementations is closed; switch on the concrete type.
type UnsolvableConflict interface {
	Code() ConflictCode
	String() string
	unsolvable()
}

// NoFastForwardConfigured is reported by NoFastForward for any input.
type NoFastForwardConfigured struct{}

// ChunksWrittenToDeletedArrays lists arrays that received pending chunk
// writes but were deleted by the previous commit.
type ChunksWrittenToDeletedArrays struct {
	Paths []format.Path
}

// WriteToWrittenChunk counts, per array path, the chunk indices written by
// both the previous commit and the pending change set.
type WriteToWrittenChunk struct {
	Counts map[format.Path]int
}

// ConflictingUserAttributesUpdate lists nodes whose attributes both writers updated.
type ConflictingUserAttributesUpdate struct {
	Paths []format.Path
}

// ConflictingZarrMetadataUpdate lists arrays whose metadata both writers updated.
type ConflictingZarrMetadataUpdate struct {
	Paths []format.Path
}

// ConflictingGroupCreation lists paths where both writers created a group.
type ConflictingGroupCreation struct {
	Paths []format.Path
}

// ConflictingArrayCreation lists paths where both writers created an array.
type ConflictingArrayCreation struct {
	Paths []format.Path
}

func (NoFastForwardConfigured) Code() ConflictCode         { return CodeNoFastForward }
func (ChunksWrittenToDeletedArrays) Code() ConflictCode    { return CodeChunksWrittenToDeletedArray }
func (WriteToWrittenChunk) Code() ConflictCode             { return CodeWriteToWrittenChunk }
func (ConflictingUserAttributesUpdate) Code() ConflictCode { return CodeConflictingUserAttributes }
func (ConflictingZarrMetadataUpdate) Code() ConflictCode   { return CodeConflictingZarrMetadata }
func (ConflictingGroupCreation) Code() ConflictCode        { return CodeConflictingGroupCreation }
func (ConflictingArrayCreation) Code() ConflictCode        { return CodeConflictingArrayCreation }

func (NoFastForwardConfigured) unsolvable()         {}
func (ChunksWrittenToDeletedArrays) unsolvable()    {}
func (WriteToWrittenChunk) unsolvable()             {}
func (ConflictingUserAttributesUpdate) unsolvable() {}
func (ConflictingZarrMetadataUpdate) unsolvable()   {}
func (ConflictingGroupCreation) unsolvable()        {}
func (ConflictingArrayCreation) unsolvable()        {}

func (NoFastForwardConfigured) String() string {
	return "fast-forward only: rebase onto the latest snapshot before committing"
}

func (c ChunksWrittenToDeletedArrays) String() string {
	return "chunks written to deleted arrays: " + joinPaths(c.Paths)
}

func (c WriteToWrittenChunk) String() string {
	parts := make([]string, 0, len(c.Counts))
	for _, path := range c.SortedPaths() {
		parts = append(parts, fmt.Sprintf("%s (%d)", path, c.Counts[path]))
	}
	return "chunks written by both commits: " + strings.Join(parts, ", ")
}

// SortedPaths returns the affected paths in order.
func (c WriteToWrittenChunk) SortedPaths() []format.Path {
	return slices.Sorted(maps.Keys(c.Counts))
}

func (c ConflictingUserAttributesUpdate) String() string {
	return "user attributes updated by both commits: " + joinPaths(c.Paths)
}

func (c ConflictingZarrMetadataUpdate) String() string {
	return "array metadata updated by both commits: " + joinPaths(c.Paths)
}

func (c ConflictingGroupCreation) String() string {
	return "group created by both commits: " + joinPaths(c.Paths)
}

func (c ConflictingArrayCreation) String() string {
	return "array created by both commits: " + joinPaths(c.Paths)
}

func joinPaths(paths []format.Path) string {
	parts := make([]string, len(paths))
	for i, p := range paths {
		parts[i] = string(p)
	}
	return strings.Join(parts, ", ")
}
