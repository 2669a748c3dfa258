package cli

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/arrayvc/internal/format"
)

func TestTxlog_Text(t *testing.T) {
	out, err := execute(t, "txlog", "testdata/collision.yaml")
	require.NoError(t, err)

	newGoldie(t).Assert(t, "txlog_collision", []byte(out))
}

func TestTxlog_JSON(t *testing.T) {
	out, err := execute(t, "txlog", "testdata/collision.yaml", "--format", "json")
	require.NoError(t, err)

	var resp struct {
		Status string      `json:"status"`
		Data   TxlogResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)

	log, err := format.DecodeTransactionLog(resp.Data.Log)
	require.NoError(t, err)
	assert.Equal(t, resp.Data.Hash, format.MustTransactionLogHash(log))
	assert.Equal(t, 2, log.UpdatedChunkCount())
}

func TestTxlog_MissingScenario(t *testing.T) {
	out, err := execute(t, "txlog", filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "Error [E002]")
}
