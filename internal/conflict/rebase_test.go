package conflict_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/arrayvc/internal/changeset"
	"github.com/roach88/arrayvc/internal/conflict"
	"github.com/roach88/arrayvc/internal/format"
	tu "github.com/roach88/arrayvc/internal/testutil"
)

func TestRebase_EmptyChainFastForwards(t *testing.T) {
	current := changeset.New()
	current.SetChunkRef("a", tu.Idx(0), chunk)

	res, err := conflict.Rebase(context.Background(), conflict.NoFastForward{}, nil, current)
	require.NoError(t, err)

	got := requirePatched(t, res)
	assert.Same(t, current, got)
}

func TestRebase_AppliesEachCommitInOrder(t *testing.T) {
	snap := tu.NewSnapshot(tu.Array("a", "/a"))
	commits := []conflict.Commit{
		{ID: "s1", Log: previousWithChunks("a", tu.Idx(0)), Snapshot: snap},
		{ID: "s2", Log: previousWithChunks("a", tu.Idx(1)), Snapshot: snap},
	}

	current := changeset.New()
	for _, i := range []uint32{0, 1, 2} {
		current.SetChunkRef("a", tu.Idx(i), chunk)
	}

	res, err := conflict.Rebase(context.Background(),
		&conflict.BasicSolver{OnChunkWriteConflicts: conflict.VersionTheirs}, commits, current)
	require.NoError(t, err)

	got := requirePatched(t, res)
	assert.Equal(t, 1, got.PendingChunkCount())
	_, ok := got.GetChunkRef("a", tu.Idx(2))
	assert.True(t, ok)
	assert.Equal(t, 2, snap.Listings(), "one path lookup per commit")
}

func TestRebase_StopsAtFirstFailure(t *testing.T) {
	snap := tu.NewSnapshot(tu.Array("a", "/a"))
	failing := format.NewTransactionLog()
	failing.DeletedArrays["a"] = "/a"
	untouched := tu.NewSnapshot(tu.Array("a", "/a"))

	commits := []conflict.Commit{
		{ID: "s1", Log: previousWithChunks("a", tu.Idx(0)), Snapshot: snap},
		{ID: "s2", Log: failing, Snapshot: snap},
		{ID: "s3", Log: previousWithChunks("a", tu.Idx(1)), Snapshot: untouched},
	}

	current := changeset.New()
	current.SetChunkRef("a", tu.Idx(0), chunk)
	current.SetChunkRef("a", tu.Idx(1), chunk)

	res, err := conflict.Rebase(context.Background(),
		&conflict.BasicSolver{OnChunkWriteConflicts: conflict.VersionTheirs}, commits, current)
	require.NoError(t, err)

	f := requireFailure(t, res)
	assert.Equal(t, []conflict.UnsolvableConflict{
		conflict.ChunksWrittenToDeletedArrays{Paths: []format.Path{"/a"}},
	}, f.Reasons)
	// The change set as it entered the failing step: the first step already
	// retracted index 0.
	assert.Equal(t, 1, f.Unmodified.PendingChunkCount())
	assert.Equal(t, 0, untouched.Listings())
}

func TestRebase_PropagatesErrors(t *testing.T) {
	boom := errors.New("boom")
	commits := []conflict.Commit{
		{ID: "s1", Log: previousWithChunks("a", tu.Idx(0)), Snapshot: tu.NewSnapshot().FailAfter(0, boom)},
	}

	current := changeset.New()
	current.SetChunkRef("a", tu.Idx(0), chunk)

	res, err := conflict.Rebase(context.Background(), conflict.DefaultBasicSolver(), commits, current)
	assert.Nil(t, res)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "rebase onto commit 0 (s1)")
}
