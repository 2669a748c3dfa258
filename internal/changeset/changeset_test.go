package changeset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/arrayvc/internal/format"
)

func idx(coords ...uint32) format.ChunkIndices {
	return format.ChunkIndices(coords)
}

func ref(id string) *ChunkRef {
	return &ChunkRef{ChunkID: id, Length: 64}
}

func TestNew_IsEmpty(t *testing.T) {
	cs := New()
	assert.True(t, cs.IsEmpty())
	assert.Empty(t, cs.WrittenArrays())
	assert.Empty(t, cs.NewGroups())
	assert.Empty(t, cs.NewArrays())
}

func TestSetChunkRef_AndGet(t *testing.T) {
	cs := New()
	cs.SetChunkRef("a", idx(0, 0), ref("c1"))
	cs.SetChunkRef("a", idx(0, 1), nil)

	got, ok := cs.GetChunkRef("a", idx(0, 0))
	require.True(t, ok)
	assert.Equal(t, "c1", got.ChunkID)

	got, ok = cs.GetChunkRef("a", idx(0, 1))
	require.True(t, ok, "deletion is still a pending write")
	assert.Nil(t, got)

	_, ok = cs.GetChunkRef("a", idx(9, 9))
	assert.False(t, ok)
	_, ok = cs.GetChunkRef("missing", idx(0, 0))
	assert.False(t, ok)

	assert.False(t, cs.IsEmpty())
	assert.Equal(t, 2, cs.PendingChunkCount())
}

func TestSetChunkRef_Overwrites(t *testing.T) {
	cs := New()
	cs.SetChunkRef("a", idx(1), ref("old"))
	cs.SetChunkRef("a", idx(1), ref("new"))

	got, ok := cs.GetChunkRef("a", idx(1))
	require.True(t, ok)
	assert.Equal(t, "new", got.ChunkID)
	assert.Equal(t, 1, cs.PendingChunkCount())
}

func TestUnsetChunkRef(t *testing.T) {
	cs := New()
	cs.SetChunkRef("a", idx(0, 0), ref("c1"))
	cs.SetChunkRef("a", idx(0, 1), ref("c2"))

	cs.UnsetChunkRef("a", idx(0, 0))
	_, ok := cs.GetChunkRef("a", idx(0, 0))
	assert.False(t, ok)
	_, ok = cs.GetChunkRef("a", idx(0, 1))
	assert.True(t, ok)
	assert.Equal(t, []format.NodeID{"a"}, cs.WrittenArrays())

	cs.UnsetChunkRef("a", idx(0, 1))
	assert.Empty(t, cs.WrittenArrays(), "node with no pending writes is dropped")
	assert.True(t, cs.IsEmpty())

	// Unsetting unknown writes is a no-op
	cs.UnsetChunkRef("a", idx(0, 1))
	cs.UnsetChunkRef("zzz", idx(0))
	assert.True(t, cs.IsEmpty())
}

func TestAllModifiedChunks_Sorted(t *testing.T) {
	cs := New()
	cs.SetChunkRef("b", idx(1, 0), ref("x"))
	cs.SetChunkRef("a", idx(0, 1), ref("y"))
	cs.SetChunkRef("a", idx(0, 0), ref("z"))

	var nodes []format.NodeID
	var indices [][]format.ChunkIndices
	for node, written := range cs.AllModifiedChunks() {
		nodes = append(nodes, node)
		indices = append(indices, written)
	}

	assert.Equal(t, []format.NodeID{"a", "b"}, nodes)
	assert.Equal(t, [][]format.ChunkIndices{
		{idx(0, 0), idx(0, 1)},
		{idx(1, 0)},
	}, indices)
}

func TestAllModifiedChunks_EarlyBreak(t *testing.T) {
	cs := New()
	cs.SetChunkRef("a", idx(0), ref("x"))
	cs.SetChunkRef("b", idx(0), ref("y"))

	count := 0
	for range cs.AllModifiedChunks() {
		count++
		break
	}
	assert.Equal(t, 1, count)
}

func TestUpdates(t *testing.T) {
	cs := New()
	cs.UpdateUserAttributes("g", UserAttributes{"title": "x"})
	cs.UpdateUserAttributes("h", nil)
	cs.UpdateArray("a", ArrayMetadata{"shape": []any{10}})

	assert.True(t, cs.HasUpdatedAttributes("g"))
	assert.True(t, cs.HasUpdatedAttributes("h"), "clearing attributes is an update")
	assert.False(t, cs.HasUpdatedAttributes("a"))

	attrs, ok := cs.UpdatedAttributes("g")
	require.True(t, ok)
	assert.Equal(t, "x", attrs["title"])

	md, ok := cs.UpdatedZarrMetadata("a")
	require.True(t, ok)
	assert.Equal(t, []any{10}, md["shape"])

	_, ok = cs.UpdatedZarrMetadata("g")
	assert.False(t, ok)
}

func TestDeleteGroup(t *testing.T) {
	cs := New()
	cs.AddGroup("/new", "n1")
	cs.UpdateUserAttributes("old", UserAttributes{"a": 1})

	cs.DeleteGroup("/new", "n1")
	cs.DeleteGroup("/old", "old")

	assert.Empty(t, cs.NewGroups())
	assert.Equal(t, []format.Path{"/old"}, cs.DeletedGroups())
	assert.False(t, cs.HasUpdatedAttributes("old"))
}

func TestDeleteArray_DropsPendingEdits(t *testing.T) {
	cs := New()
	cs.AddArray("/fresh", "f", ArrayMetadata{})
	cs.UpdateArray("old", ArrayMetadata{"shape": []any{1}})
	cs.UpdateUserAttributes("old", UserAttributes{})
	cs.SetChunkRef("old", idx(0), ref("c"))

	cs.DeleteArray("/fresh", "f")
	cs.DeleteArray("/old", "old")

	assert.Empty(t, cs.NewArrays())
	assert.Equal(t, []format.Path{"/old"}, cs.DeletedArrays())
	assert.Empty(t, cs.WrittenArrays())
	assert.False(t, cs.HasUpdatedAttributes("old"))
	_, ok := cs.UpdatedZarrMetadata("old")
	assert.False(t, ok)
}

func TestNewArray(t *testing.T) {
	cs := New()
	cs.AddArray("/a", "id-a", ArrayMetadata{"dtype": "int32"})

	id, md, ok := cs.NewArray("/a")
	require.True(t, ok)
	assert.Equal(t, format.NodeID("id-a"), id)
	assert.Equal(t, "int32", md["dtype"])

	_, _, ok = cs.NewArray("/b")
	assert.False(t, ok)
}

func TestClone_Independent(t *testing.T) {
	cs := New()
	cs.AddGroup("/g", "g")
	cs.SetChunkRef("a", idx(0), ref("c"))
	cs.SetChunkRef("a", idx(1), ref("d"))

	clone := cs.Clone()
	assert.Equal(t, cs, clone)

	clone.UnsetChunkRef("a", idx(0))
	clone.AddGroup("/h", "h")
	clone.DeleteGroup("/x", "x")

	_, ok := cs.GetChunkRef("a", idx(0))
	assert.True(t, ok, "original keeps its writes")
	assert.Equal(t, []format.Path{"/g"}, cs.NewGroups())
	assert.Empty(t, cs.DeletedGroups())
}
