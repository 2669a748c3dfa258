package testutil

import (
	"context"
	"iter"
	"sync"

	"github.com/roach88/arrayvc/internal/format"
)

// Snapshot is an in-memory node listing for tests.
//
// Unlike conflict.NodeList, Snapshot records how many listings were started
// and can be told to fail part way through a listing, which lets tests
// exercise storage failures and lazy, single-pass reads.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type Snapshot struct {
	mu        sync.Mutex
	nodes     []format.NodeSnapshot
	listings  int
	failAfter int
	err       error
}

// NewSnapshot creates a snapshot listing nodes in the given order.
func NewSnapshot(nodes ...format.NodeSnapshot) *Snapshot {
	return &Snapshot{nodes: nodes, failAfter: -1}
}

// FailAfter makes every listing yield err after n nodes.
// FailAfter(0, err) fails before the first node.
func (s *Snapshot) FailAfter(n int, err error) *Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failAfter = n
	s.err = err
	return s
}

// ListNodes implements conflict.Snapshot.
func (s *Snapshot) ListNodes(ctx context.Context) iter.Seq2[format.NodeSnapshot, error] {
	s.mu.Lock()
	s.listings++
	nodes := s.nodes
	failAfter, failErr := s.failAfter, s.err
	s.mu.Unlock()

	return func(yield func(format.NodeSnapshot, error) bool) {
		for i, node := range nodes {
			if i == failAfter {
				yield(format.NodeSnapshot{}, failErr)
				return
			}
			if err := ctx.Err(); err != nil {
				yield(format.NodeSnapshot{}, err)
				return
			}
			if !yield(node, nil) {
				return
			}
		}
		if failAfter >= len(nodes) {
			yield(format.NodeSnapshot{}, failErr)
		}
	}
}

// Listings returns how many times ListNodes was called.
func (s *Snapshot) Listings() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listings
}

// Array returns an array node for a snapshot listing.
func Array(id, path string) format.NodeSnapshot {
	return format.NodeSnapshot{ID: format.NodeID(id), Path: format.MustPath(path), Type: format.NodeTypeArray}
}

// Group returns a group node for a snapshot listing.
func Group(id, path string) format.NodeSnapshot {
	return format.NodeSnapshot{ID: format.NodeID(id), Path: format.MustPath(path), Type: format.NodeTypeGroup}
}

// Idx builds chunk coordinates.
func Idx(coords ...uint32) format.ChunkIndices {
	return format.ChunkIndices(coords)
}
