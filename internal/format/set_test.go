package format

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSet_Basics(t *testing.T) {
	s := NewSet[NodeID]("b", "a")
	s.Add("c")
	s.Remove("b")

	assert.True(t, s.Contains("a"))
	assert.False(t, s.Contains("b"))
	assert.Equal(t, 2, s.Len())
	assert.Equal(t, []NodeID{"a", "c"}, s.Sorted())
}

func TestSet_SortedNeverNil(t *testing.T) {
	var s Set[Path]
	assert.NotNil(t, s.Sorted())
	assert.Empty(t, s.Sorted())
}

func TestSet_Union(t *testing.T) {
	a := NewSet[Path]("/x", "/y")
	b := NewSet[Path]("/y", "/z")

	u := a.Union(b)
	assert.Equal(t, []Path{"/x", "/y", "/z"}, u.Sorted())
	// Inputs untouched
	assert.Equal(t, 2, a.Len())
	assert.Equal(t, 2, b.Len())
}

func TestSet_JSONIsSorted(t *testing.T) {
	s := NewSet[Path]("/b", "/a<c>")
	data, err := json.Marshal(s)
	require.NoError(t, err)
	assert.JSONEq(t, `["/a<c>","/b"]`, string(data))

	var decoded Set[Path]
	require.NoError(t, json.Unmarshal([]byte(`["/b","/a","/b"]`), &decoded))
	assert.Equal(t, NewSet[Path]("/a", "/b"), decoded)
}

func TestChunkIndices_Key(t *testing.T) {
	assert.Equal(t, "0.12.3", ChunkIndices{0, 12, 3}.Key())
	assert.Equal(t, "", ChunkIndices{}.Key())
	assert.Equal(t, "[1,2]", ChunkIndices{1, 2}.String())

	parsed, err := ParseChunkKey("0.12.3")
	require.NoError(t, err)
	assert.Equal(t, ChunkIndices{0, 12, 3}, parsed)

	_, err = ParseChunkKey("0.x")
	assert.Error(t, err)
}

func TestChunkSet_SortedLexicographic(t *testing.T) {
	s := NewChunkSet(ChunkIndices{1, 0}, ChunkIndices{0, 1}, ChunkIndices{0, 0}, ChunkIndices{0})

	assert.Equal(t, []ChunkIndices{{0}, {0, 0}, {0, 1}, {1, 0}}, s.Sorted())
	assert.True(t, s.Contains(ChunkIndices{0, 1}))
	assert.False(t, s.Contains(ChunkIndices{1, 1}))

	s.Remove(ChunkIndices{0})
	assert.Equal(t, 3, s.Len())
}

func TestChunkSet_AddCopiesIndices(t *testing.T) {
	idx := ChunkIndices{4, 4}
	s := NewChunkSet(idx)
	idx[0] = 9

	assert.True(t, s.Contains(ChunkIndices{4, 4}))
	assert.False(t, s.Contains(ChunkIndices{9, 4}))
}

func TestChunkSet_JSON(t *testing.T) {
	s := NewChunkSet(ChunkIndices{2, 0}, ChunkIndices{0, 5})
	data, err := json.Marshal(s)
	require.NoError(t, err)
	assert.Equal(t, `[[0,5],[2,0]]`, string(data))

	var decoded ChunkSet
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, s, decoded)
}
