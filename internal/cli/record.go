package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roach88/arrayvc/internal/format"
	"github.com/roach88/arrayvc/internal/store"
)

// RecordOptions holds flags for the record command.
type RecordOptions struct {
	*RootOptions
	Database string
	Parent   string
	Message  string
}

// RecordResult is the JSON payload of the record command.
type RecordResult struct {
	Base    format.SnapshotID `json:"base"`
	Tip     format.SnapshotID `json:"tip"`
	LogHash string            `json:"log_hash"`
}

// NewRecordCommand creates the record command.
func NewRecordCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RecordOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "record <scenario.yaml>",
		Short: "Store a scenario's previous commit in a database",
		Long: `Store the scenario's base snapshot and its previous commit (the snapshot it
produced together with its transaction log) in a SQLite database.

Without --parent the base snapshot is written as a new root. With --parent
only the previous commit is written, on top of the given snapshot, which
builds a longer history one scenario at a time.

Examples:
  arrayvc record collision.yaml --db ./arrayvc.db
  arrayvc record next.yaml --db ./arrayvc.db --parent <tip>`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRecord(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.Parent, "parent", "", "existing snapshot to commit on top of")
	cmd.Flags().StringVarP(&opts.Message, "message", "m", "", "commit message (default: scenario name)")

	return cmd
}

func runRecord(opts *RecordOptions, path string, cmd *cobra.Command) error {
	ctx := context.Background()
	formatter := newFormatter(opts.RootOptions, cmd)

	s, err := loadScenario(formatter, path)
	if err != nil {
		return err
	}
	baseNodes, err := s.BaseNodes()
	if err != nil {
		return scenarioError(formatter, err)
	}
	nodes, err := s.SnapshotNodes()
	if err != nil {
		return scenarioError(formatter, err)
	}
	log, err := s.PreviousTransactionLog()
	if err != nil {
		return scenarioError(formatter, err)
	}

	st, err := store.Open(opts.Database)
	if err != nil {
		_ = formatter.Error(ErrCodeDatabase, err.Error())
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	message := opts.Message
	if message == "" {
		message = s.Name
	}

	base := format.SnapshotID(opts.Parent)
	if base == "" {
		base = format.NewSnapshotID()
		if _, err := st.WriteCommit(ctx, store.Commit{ID: base, Message: "base of " + s.Name, Nodes: baseNodes}); err != nil {
			_ = formatter.Error(ErrCodeDatabase, err.Error())
			return WrapExitError(ExitCommandError, "failed to record base snapshot", err)
		}
	}

	tip := format.NewSnapshotID()
	seq, err := st.WriteCommit(ctx, store.Commit{ID: tip, ParentID: base, Message: message, Nodes: nodes, Log: log})
	if err != nil {
		_ = formatter.Error(ErrCodeDatabase, err.Error())
		return WrapExitError(ExitCommandError, "failed to record commit", err)
	}
	slog.Debug("recorded commit", "tip", tip, "seq", seq)

	result := RecordResult{Base: base, Tip: tip, LogHash: format.MustTransactionLogHash(log)}
	if opts.Format == "json" {
		return formatter.Success(result)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "base: %s\ntip: %s\nlog: %s\n", result.Base, result.Tip, result.LogHash)
	return nil
}
