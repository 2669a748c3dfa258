package scenario

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/arrayvc/internal/conflict"
)

func loadTestScenario(t *testing.T, name string) *Scenario {
	t.Helper()
	s, err := Load(filepath.Join("testdata", "scenarios", name+".yaml"))
	require.NoError(t, err)
	return s
}

func TestRun_Scenarios(t *testing.T) {
	files, err := filepath.Glob(filepath.Join("testdata", "scenarios", "*.yaml"))
	require.NoError(t, err)
	require.NotEmpty(t, files)

	for _, file := range files {
		s, err := Load(file)
		require.NoError(t, err, file)

		t.Run(s.Name, func(t *testing.T) {
			res, err := Run(context.Background(), s, conflict.DefaultBasicSolver())
			require.NoError(t, err)
			assert.Empty(t, Check(s, res))
		})
	}
}

func TestRun_TheirsPatchesCollision(t *testing.T) {
	s := loadTestScenario(t, "chunk_collision")

	res, err := Run(context.Background(), s, &conflict.BasicSolver{OnChunkWriteConflicts: conflict.VersionTheirs})
	require.NoError(t, err)

	assert.Equal(t, OutcomePatched, res.Outcome)
	assert.Empty(t, res.Reasons)
	assert.Equal(t, 1, res.PendingChunks)
}

func TestRun_FailureReport(t *testing.T) {
	s := loadTestScenario(t, "chunk_collision")

	res, err := Run(context.Background(), s, conflict.DefaultBasicSolver())
	require.NoError(t, err)

	assert.Equal(t, OutcomeFailure, res.Outcome)
	assert.Equal(t, []Reason{{
		Code:    conflict.CodeWriteToWrittenChunk,
		Message: "chunks written by both commits: /data/temperature (1)",
	}}, res.Reasons)
	assert.Equal(t, 2, res.PendingChunks, "failure keeps the change set unmodified")

	log, err := s.PreviousTransactionLog()
	require.NoError(t, err)
	assert.Len(t, res.PreviousLog, 64)
	assert.Equal(t, log.UpdatedChunkCount(), res.Log.UpdatedChunkCount())
}

func TestRun_NoFastForward(t *testing.T) {
	s := loadTestScenario(t, "no_conflict")

	res, err := Run(context.Background(), s, conflict.NoFastForward{})
	require.NoError(t, err)

	assert.Equal(t, []string{"outcome: expected patched, got failure"}, Check(s, res))
	assert.Equal(t, conflict.CodeNoFastForward, res.Reasons[0].Code)
}

func TestRun_CancelledContext(t *testing.T) {
	s := loadTestScenario(t, "chunk_collision")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := Run(ctx, s, conflict.DefaultBasicSolver())
	assert.Nil(t, res)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCheck_Mismatches(t *testing.T) {
	two := 2
	s := &Scenario{Expect: &Expect{Outcome: OutcomeFailure, Reasons: []string{"A", "B"}, PendingChunks: &two}}
	r := &Result{Outcome: OutcomeFailure, Reasons: []Reason{{Code: "A"}}, PendingChunks: 3}

	assert.Equal(t, []string{
		"reasons: expected [A B], got [A]",
		"pending_chunks: expected 2, got 3",
	}, Check(s, r))

	assert.Empty(t, Check(&Scenario{}, r))
}
