package conflict

import (
	"context"
	"log/slog"

	"github.com/roach88/arrayvc/internal/changeset"
	"github.com/roach88/arrayvc/internal/format"
)

// BasicSolver applies one VersionSelection per conflict category.
//
// Only OnChunkWriteConflicts is enforced today. The other four policies are
// accepted so configurations stay valid once their categories are enforced,
// but their conflicts are only detected, logged and counted.
//
// The zero value fails on every conflict, same as DefaultBasicSolver.
type BasicSolver struct {
	OnChunkWriteConflicts    VersionSelection
	OnUserAttributesConflict VersionSelection
	OnZarrMetadataConflict   VersionSelection
	OnGroupCreationConflict  VersionSelection
	OnArrayCreationConflict  VersionSelection
}

// DefaultBasicSolver returns a solver that fails on every conflict.
func DefaultBasicSolver() *BasicSolver {
	return &BasicSolver{
		OnChunkWriteConflicts:    VersionFail,
		OnUserAttributesConflict: VersionFail,
		OnZarrMetadataConflict:   VersionFail,
		OnGroupCreationConflict:  VersionFail,
		OnArrayCreationConflict:  VersionFail,
	}
}

// chunkCollision is a node written by both commits.
type chunkCollision struct {
	node    format.NodeID
	path    format.Path
	indices []format.ChunkIndices
}

// Solve runs every detection check against the whole change set and log,
// then applies the chunk write policy.
//
// With VersionTheirs, colliding pending chunk writes are retracted from
// current, but only when no conflict is reported. A Failure always carries
// current exactly as it was received.
func (s *BasicSolver) Solve(ctx context.Context, previous *format.TransactionLog, previousSnapshot Snapshot, current *changeset.ChangeSet) (Resolution, error) {
	deletedWrites := chunksWrittenToDeletedArrays(previous, current)

	collisions, err := chunkWriteCollisions(ctx, previous, previousSnapshot, current)
	if err != nil {
		return nil, err
	}

	attributeConflicts, err := bothUpdatedAttributes(ctx, previous, previousSnapshot, current)
	if err != nil {
		return nil, err
	}

	metadataConflicts, err := bothUpdatedZarrMetadata(ctx, previous, previousSnapshot, current)
	if err != nil {
		return nil, err
	}

	groupConflicts := bothCreated(current.NewGroups(), previous.NewGroups)
	arrayConflicts := bothCreated(current.NewArrays(), previous.NewArrays)

	// Detected but not enforced. Their policies are intentionally unused.
	reportUnenforced(CodeConflictingUserAttributes, attributeConflicts)
	reportUnenforced(CodeConflictingZarrMetadata, metadataConflicts)
	reportUnenforced(CodeConflictingGroupCreation, groupConflicts)
	reportUnenforced(CodeConflictingArrayCreation, arrayConflicts)

	var reasons []UnsolvableConflict

	if len(deletedWrites) > 0 {
		conflictsDetected.WithLabelValues(string(CodeChunksWrittenToDeletedArray), "true").Inc()
		reasons = append(reasons, ChunksWrittenToDeletedArrays{Paths: deletedWrites})
	}

	var retract []chunkCollision
	if len(collisions) > 0 {
		conflictsDetected.WithLabelValues(string(CodeWriteToWrittenChunk), "true").Inc()
		switch s.OnChunkWriteConflicts {
		case VersionOurs:
			// Pending writes win; nothing to change.
			slog.Debug("chunk write conflicts resolved", "policy", VersionOurs, "nodes", len(collisions))
		case VersionTheirs:
			retract = collisions
		default:
			counts := make(map[format.Path]int, len(collisions))
			for _, c := range collisions {
				counts[c.path] = len(c.indices)
			}
			reasons = append(reasons, WriteToWrittenChunk{Counts: counts})
		}
	}

	var res Resolution
	if len(reasons) > 0 {
		res = &Failure{Reasons: reasons, Unmodified: current}
	} else {
		for _, c := range retract {
			for _, idx := range c.indices {
				current.UnsetChunkRef(c.node, idx)
			}
			chunkWritesRetracted.Add(float64(len(c.indices)))
			slog.Debug("chunk writes retracted", "policy", VersionTheirs, "path", c.path, "count", len(c.indices))
		}
		res = &Patched{ChangeSet: current}
	}

	recordOutcome("basic", res)
	return res, nil
}

// chunksWrittenToDeletedArrays returns the paths of arrays that current
// writes chunks into and previous deleted.
func chunksWrittenToDeletedArrays(previous *format.TransactionLog, current *changeset.ChangeSet) []format.Path {
	var paths []format.Path
	for _, node := range current.WrittenArrays() {
		if path, ok := previous.DeletedArrays[node]; ok {
			paths = append(paths, path)
		}
	}
	return paths
}

// chunkWriteCollisions intersects each node's pending indices with the
// indices previous wrote to the same node.
func chunkWriteCollisions(ctx context.Context, previous *format.TransactionLog, snap Snapshot, current *changeset.ChangeSet) ([]chunkCollision, error) {
	var collisions []chunkCollision
	for node, written := range current.AllModifiedChunks() {
		previousWrites, ok := previous.UpdatedChunks[node]
		if !ok {
			continue
		}
		var hits []format.ChunkIndices
		for _, idx := range written {
			if previousWrites.Contains(idx) {
				hits = append(hits, idx)
			}
		}
		if len(hits) == 0 {
			continue
		}
		path, err := mustFindPath(ctx, node, snap)
		if err != nil {
			return nil, err
		}
		collisions = append(collisions, chunkCollision{node: node, path: path, indices: hits})
	}
	return collisions, nil
}

func bothUpdatedAttributes(ctx context.Context, previous *format.TransactionLog, snap Snapshot, current *changeset.ChangeSet) ([]format.Path, error) {
	var paths []format.Path
	for _, node := range previous.UpdatedUserAttributes.Sorted() {
		if !current.HasUpdatedAttributes(node) {
			continue
		}
		path, err := mustFindPath(ctx, node, snap)
		if err != nil {
			return nil, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func bothUpdatedZarrMetadata(ctx context.Context, previous *format.TransactionLog, snap Snapshot, current *changeset.ChangeSet) ([]format.Path, error) {
	var paths []format.Path
	for _, node := range previous.UpdatedZarrMetadata.Sorted() {
		if _, ok := current.UpdatedZarrMetadata(node); !ok {
			continue
		}
		path, err := mustFindPath(ctx, node, snap)
		if err != nil {
			return nil, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// bothCreated returns the pending creation paths that previous also created.
func bothCreated(pending []format.Path, previous map[format.Path]format.NodeID) []format.Path {
	var paths []format.Path
	for _, path := range pending {
		if _, ok := previous[path]; ok {
			paths = append(paths, path)
		}
	}
	return paths
}

func reportUnenforced(code ConflictCode, paths []format.Path) {
	if len(paths) == 0 {
		return
	}
	conflictsDetected.WithLabelValues(string(code), "false").Inc()
	slog.Debug("conflict detected but not enforced", "category", code, "paths", paths)
}
