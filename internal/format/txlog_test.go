package format

import (
	"errors"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleLog() *TransactionLog {
	l := NewTransactionLog()
	l.NewGroups["/g"] = "n1"
	l.NewArrays["/g/a<b>"] = "n2"
	l.UpdatedUserAttributes.Add("n1")
	l.UpdatedChunks["n2"] = NewChunkSet(ChunkIndices{1, 0}, ChunkIndices{0, 1}, ChunkIndices{0, 0})
	l.DeletedPaths.Add("/z")
	l.DeletedPaths.Add("/old")
	return l
}

func TestNewTransactionLog_Empty(t *testing.T) {
	l := NewTransactionLog()
	assert.Equal(t, LatestTransactionLogFormat, l.FormatVersion)
	assert.True(t, l.IsEmpty())
	assert.Equal(t, 0, l.UpdatedChunkCount())
	assert.False(t, sampleLog().IsEmpty())
	assert.Equal(t, 3, sampleLog().UpdatedChunkCount())
}

func TestTransactionLog_CanonicalGolden(t *testing.T) {
	data, err := sampleLog().MarshalCanonical()
	require.NoError(t, err)

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "transaction_log_canonical", data)
}

func TestTransactionLog_CanonicalIsDeterministic(t *testing.T) {
	first, err := sampleLog().MarshalCanonical()
	require.NoError(t, err)

	for i := 0; i < 20; i++ {
		again, err := sampleLog().MarshalCanonical()
		require.NoError(t, err)
		assert.Equal(t, first, again, "iteration %d", i)
	}
}

func TestTransactionLog_RoundTrip(t *testing.T) {
	original := sampleLog()
	original.DeletedArrays["n9"] = "/old"

	data, err := original.MarshalCanonical()
	require.NoError(t, err)

	decoded, err := DecodeTransactionLog(data)
	require.NoError(t, err)
	assert.Equal(t, original, decoded)
}

func TestDecodeTransactionLog_FillsMissingCollections(t *testing.T) {
	decoded, err := DecodeTransactionLog([]byte(`{"format_version":1}`))
	require.NoError(t, err)
	assert.Equal(t, NewTransactionLog(), decoded)
}

func TestDecodeTransactionLog_RejectsUnknownVersions(t *testing.T) {
	_, err := DecodeTransactionLog([]byte(`{"format_version":2}`))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnsupportedFormat))

	_, err = DecodeTransactionLog([]byte(`{"new_groups":{}}`))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnsupportedFormat))
}

func TestDecodeTransactionLog_Malformed(t *testing.T) {
	_, err := DecodeTransactionLog([]byte(`{not json`))
	assert.Error(t, err)
}

func TestTransactionLogHash(t *testing.T) {
	assert.Equal(t,
		"2546f5d3620e91ab15d95d4f3f0b899880ddad05d637b60da34e9aebf7006777",
		MustTransactionLogHash(sampleLog()))
	assert.Equal(t,
		"05b94cb6a882cd3badd74529395f0e36b3ea6ad9756f61cd3a09b25ff95a59d1",
		MustTransactionLogHash(NewTransactionLog()))

	other := sampleLog()
	other.UpdatedZarrMetadata.Add("n2")
	assert.NotEqual(t, MustTransactionLogHash(sampleLog()), MustTransactionLogHash(other))
}

func TestNewNodeID_Unique(t *testing.T) {
	seen := NewSet[NodeID]()
	for i := 0; i < 100; i++ {
		id := NewNodeID()
		require.False(t, seen.Contains(id), "duplicate id %s", id)
		seen.Add(id)
	}
	assert.Len(t, string(NewSnapshotID()), 36)
}

func TestTransactionLog_UnlistedNodes(t *testing.T) {
	log := NewTransactionLog()
	log.UpdatedChunks["a"] = NewChunkSet(ChunkIndices{0})
	log.UpdatedChunks["x"] = NewChunkSet(ChunkIndices{0})
	log.UpdatedUserAttributes.Add("y")
	log.UpdatedZarrMetadata.Add("a")
	log.DeletedArrays["gone"] = "/gone"

	nodes := []NodeSnapshot{{ID: "a", Path: "/a", Type: NodeTypeArray}}
	assert.Equal(t, []NodeID{"x", "y"}, log.UnlistedNodes(nodes))

	nodes = append(nodes,
		NodeSnapshot{ID: "x", Path: "/x", Type: NodeTypeArray},
		NodeSnapshot{ID: "y", Path: "/y", Type: NodeTypeGroup},
	)
	assert.Nil(t, log.UnlistedNodes(nodes), "deleted nodes are not expected in the listing")
	assert.Nil(t, NewTransactionLog().UnlistedNodes(nil))
}
