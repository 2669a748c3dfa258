package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/arrayvc/internal/format"
	"github.com/roach88/arrayvc/internal/store"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	Database string
	From     string
	To       string
}

// HistoryEntry is one commit in the history output.
type HistoryEntry struct {
	store.SnapshotInfo
	ChunkWrites  int `json:"chunk_writes"`
	DeletedPaths int `json:"deleted_paths"`
}

// HistoryResult is the JSON payload of the history command.
type HistoryResult struct {
	From    format.SnapshotID `json:"from"`
	To      format.SnapshotID `json:"to"`
	Commits []HistoryEntry    `json:"commits"`
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List commits stored after a snapshot",
		Long: `List the commits stored after --from up to --to, oldest first, with a
summary of each commit's transaction log. These are the commits a writer
based on --from must be rebased over.

Examples:
  arrayvc history --db ./arrayvc.db --from <base>
  arrayvc history --db ./arrayvc.db --from <base> --to <tip> --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.From, "from", "", "base snapshot (required)")
	_ = cmd.MarkFlagRequired("from")
	cmd.Flags().StringVar(&opts.To, "to", "", "tip snapshot (default: latest)")

	return cmd
}

func runHistory(opts *HistoryOptions, cmd *cobra.Command) error {
	ctx := context.Background()
	formatter := newFormatter(opts.RootOptions, cmd)

	st, err := store.Open(opts.Database)
	if err != nil {
		_ = formatter.Error(ErrCodeDatabase, err.Error())
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	to := format.SnapshotID(opts.To)
	if to == "" {
		latest, err := st.LatestSnapshot(ctx)
		if err != nil {
			return storeError(formatter, err)
		}
		to = latest.ID
	}

	chain, err := st.Ancestry(ctx, format.SnapshotID(opts.From), to)
	if err != nil {
		return storeError(formatter, err)
	}

	result := HistoryResult{From: format.SnapshotID(opts.From), To: to, Commits: make([]HistoryEntry, 0, len(chain))}
	for _, info := range chain {
		log, err := st.ReadTransactionLog(ctx, info.ID)
		if err != nil {
			return storeError(formatter, err)
		}
		result.Commits = append(result.Commits, HistoryEntry{
			SnapshotInfo: info,
			ChunkWrites:  log.UpdatedChunkCount(),
			DeletedPaths: log.DeletedPaths.Len(),
		})
	}

	if opts.Format == "json" {
		return formatter.Success(result)
	}

	out := cmd.OutOrStdout()
	if len(result.Commits) == 0 {
		fmt.Fprintf(out, "No commits after %s.\n", result.From)
		return nil
	}
	for _, c := range result.Commits {
		fmt.Fprintf(out, "%d %s %s chunks=%d deleted=%d %s\n",
			c.Seq, c.ID, c.LogHash, c.ChunkWrites, c.DeletedPaths, c.Message)
	}
	return nil
}
