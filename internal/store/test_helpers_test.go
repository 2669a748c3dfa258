package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/roach88/arrayvc/internal/format"
)

// createTestStore creates a new temp-dir store for testing.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func array(id, path string) format.NodeSnapshot {
	return format.NodeSnapshot{ID: format.NodeID(id), Path: format.MustPath(path), Type: format.NodeTypeArray}
}

func group(id, path string) format.NodeSnapshot {
	return format.NodeSnapshot{ID: format.NodeID(id), Path: format.MustPath(path), Type: format.NodeTypeGroup}
}

// chunkLog returns a log that wrote the given chunk indices of one node.
func chunkLog(node format.NodeID, indices ...format.ChunkIndices) *format.TransactionLog {
	log := format.NewTransactionLog()
	log.UpdatedChunks[node] = format.NewChunkSet(indices...)
	return log
}

// writeLinear writes a root snapshot followed by one commit per log and
// returns the snapshot ids in order.
func writeLinear(t *testing.T, s *Store, nodes []format.NodeSnapshot, logs ...*format.TransactionLog) []format.SnapshotID {
	t.Helper()
	ctx := context.Background()

	ids := []format.SnapshotID{"s0"}
	if _, err := s.WriteCommit(ctx, Commit{ID: "s0", Message: "root", Nodes: nodes}); err != nil {
		t.Fatalf("write root: %v", err)
	}
	for i, log := range logs {
		id := format.SnapshotID("s" + string(rune('1'+i)))
		if _, err := s.WriteCommit(ctx, Commit{ID: id, ParentID: ids[len(ids)-1], Nodes: nodes, Log: log}); err != nil {
			t.Fatalf("write %s: %v", id, err)
		}
		ids = append(ids, id)
	}
	return ids
}
