package conflict

import (
	"context"
	"fmt"
	"iter"

	"github.com/roach88/arrayvc/internal/format"
)

// Snapshot is a read-only view of one committed node tree.
type Snapshot interface {
	// ListNodes yields every live node exactly once. The listing is a
	// single-pass read that may block on storage; a non-nil error ends it.
	ListNodes(ctx context.Context) iter.Seq2[format.NodeSnapshot, error]
}

// NodeList is an in-memory Snapshot.
type NodeList []format.NodeSnapshot

// ListNodes yields the nodes in slice order and stops with ctx.Err() once
// the context is done.
func (l NodeList) ListNodes(ctx context.Context) iter.Seq2[format.NodeSnapshot, error] {
	return func(yield func(format.NodeSnapshot, error) bool) {
		for _, node := range l {
			if err := ctx.Err(); err != nil {
				yield(format.NodeSnapshot{}, err)
				return
			}
			if !yield(node, nil) {
				return
			}
		}
	}
}

// FindPath scans the snapshot for the node with the given identifier and
// returns its path. ok is false when the identifier does not resolve in this
// snapshot; that is not an error. Errors come only from the listing itself.
func FindPath(ctx context.Context, id format.NodeID, snap Snapshot) (path format.Path, ok bool, err error) {
	for node, err := range snap.ListNodes(ctx) {
		if err != nil {
			return "", false, fmt.Errorf("find path of node %s: %w", id, err)
		}
		if node.ID == id {
			return node.Path, true, nil
		}
	}
	return "", false, nil
}

// mustFindPath resolves a node the previous commit is known to have touched.
// A miss means the log and snapshot disagree, which is a bug in the caller's
// bookkeeping rather than a runtime condition, so it panics.
func mustFindPath(ctx context.Context, id format.NodeID, snap Snapshot) (format.Path, error) {
	path, ok, err := FindPath(ctx, id, snap)
	if err != nil {
		return "", err
	}
	if !ok {
		panic(fmt.Sprintf("bug in conflict detection: node %s not found in previous snapshot", id))
	}
	return path, nil
}
