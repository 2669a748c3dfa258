package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roach88/arrayvc/internal/config"
	"github.com/roach88/arrayvc/internal/conflict"
	"github.com/roach88/arrayvc/internal/format"
	"github.com/roach88/arrayvc/internal/scenario"
	"github.com/roach88/arrayvc/internal/store"
)

// SolveOptions holds flags for the solve command.
type SolveOptions struct {
	*RootOptions
	ConfigFile string
	Kind       string
	Chunks     string
	Database   string
	Base       string
	Tip        string
	Check      bool
}

// SolveResult is the JSON payload of the solve command.
type SolveResult struct {
	*scenario.Result
	Solver  string `json:"solver"`
	Commits int    `json:"commits"`
}

// NewSolveCommand creates the solve command.
func NewSolveCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SolveOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "solve <scenario.yaml>",
		Short: "Resolve a scenario's pending change set against concurrent commits",
		Long: `Run a conflict solver on the scenario's pending change set.

By default the pending change set is solved against the scenario's previous
commit. With --db, --base and --tip it is instead rebased over every commit
stored after base up to tip, oldest first.

The solver comes from --config (a CUE file) and can be overridden with
--kind and --chunks.

Exit codes:
  0 - Patched: the change set can be committed
  1 - Failure: unsolvable conflicts (or --check expectations not met)
  2 - Command error (invalid scenario, config, database, etc.)

Examples:
  arrayvc solve collision.yaml
  arrayvc solve collision.yaml --chunks theirs
  arrayvc solve collision.yaml --config solver.cue --format json
  arrayvc solve pending.yaml --db ./arrayvc.db --base <id> --tip <id>`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSolve(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.ConfigFile, "config", "", "solver configuration (CUE)")
	cmd.Flags().StringVar(&opts.Kind, "kind", "", "solver kind (basic|no_fast_forward)")
	cmd.Flags().StringVar(&opts.Chunks, "chunks", "", "chunk write conflict policy (fail|ours|theirs)")
	cmd.Flags().StringVar(&opts.Database, "db", "", "rebase over commits stored in this SQLite database")
	cmd.Flags().StringVar(&opts.Base, "base", "", "snapshot the pending change set started from (with --db)")
	cmd.Flags().StringVar(&opts.Tip, "tip", "", "latest snapshot to rebase onto (with --db, default: latest)")
	cmd.Flags().BoolVar(&opts.Check, "check", false, "fail unless the scenario's expect section is met")

	return cmd
}

func runSolve(opts *SolveOptions, path string, cmd *cobra.Command) error {
	ctx := context.Background()
	formatter := newFormatter(opts.RootOptions, cmd)

	cfg, err := loadSolverConfig(opts)
	if err != nil {
		_ = formatter.Error(ErrCodeConfig, err.Error())
		return WrapExitError(ExitCommandError, "invalid solver config", err)
	}
	solver := cfg.Solver()
	slog.Debug("solver configured", "kind", cfg.Kind, "chunks", cfg.OnChunkWriteConflicts)

	s, err := loadScenario(formatter, path)
	if err != nil {
		return err
	}

	var (
		result  *scenario.Result
		commits int
	)
	if opts.Database != "" {
		result, commits, err = solveFromStore(ctx, opts, s, solver, formatter)
	} else {
		commits = 1
		result, err = scenario.Run(ctx, s, solver)
	}
	if err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			return err
		}
		_ = formatter.Error(ErrCodeGeneric, err.Error())
		return WrapExitError(ExitCommandError, "solve failed", err)
	}

	out := SolveResult{Result: result, Solver: cfg.Kind, Commits: commits}
	if opts.Format == "json" {
		if err := formatter.Success(out); err != nil {
			return err
		}
	} else {
		writeSolveText(cmd.OutOrStdout(), out)
	}

	if opts.Check {
		if mismatches := scenario.Check(s, result); len(mismatches) > 0 {
			for _, m := range mismatches {
				slog.Info("expectation not met", "scenario", s.Name, "mismatch", m)
			}
			return NewExitError(ExitFailure, fmt.Sprintf("%d expectation(s) not met", len(mismatches)))
		}
	}

	if result.Outcome == scenario.OutcomeFailure {
		return NewExitError(ExitFailure, "unsolvable conflicts")
	}
	return nil
}

func loadSolverConfig(opts *SolveOptions) (config.SolverConfig, error) {
	cfg := config.Default()
	if opts.ConfigFile != "" {
		loaded, err := config.Load(opts.ConfigFile)
		if err != nil {
			return config.SolverConfig{}, err
		}
		cfg = loaded
	}
	if err := cfg.Override(opts.Kind, opts.Chunks); err != nil {
		return config.SolverConfig{}, err
	}
	return cfg, nil
}

// solveFromStore rebases the scenario's pending change set over the commits
// stored between base and tip.
func solveFromStore(ctx context.Context, opts *SolveOptions, s *scenario.Scenario, solver conflict.Solver, formatter *OutputFormatter) (*scenario.Result, int, error) {
	if opts.Base == "" {
		_ = formatter.Error(ErrCodeGeneric, "--base is required with --db")
		return nil, 0, NewExitError(ExitCommandError, "--base is required with --db")
	}

	st, err := store.Open(opts.Database)
	if err != nil {
		_ = formatter.Error(ErrCodeDatabase, err.Error())
		return nil, 0, WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	tip := format.SnapshotID(opts.Tip)
	if tip == "" {
		latest, err := st.LatestSnapshot(ctx)
		if err != nil {
			return nil, 0, storeError(formatter, err)
		}
		tip = latest.ID
	}

	commits, err := st.Commits(ctx, format.SnapshotID(opts.Base), tip)
	if err != nil {
		return nil, 0, storeError(formatter, err)
	}
	slog.Debug("rebasing", "commits", len(commits), "base", opts.Base, "tip", tip)

	pending, err := s.Pending.ChangeSet()
	if err != nil {
		return nil, 0, scenarioError(formatter, err)
	}

	res, err := conflict.Rebase(ctx, solver, commits, pending)
	if err != nil {
		return nil, 0, err
	}

	previous := format.NewTransactionLog()
	if len(commits) > 0 {
		previous = commits[len(commits)-1].Log
	}
	return scenario.NewResult(s.Name, previous, res), len(commits), nil
}

func storeError(formatter *OutputFormatter, err error) error {
	code := ErrCodeDatabase
	if errors.Is(err, store.ErrSnapshotNotFound) || errors.Is(err, store.ErrTransactionLogNotFound) || errors.Is(err, store.ErrNotAncestor) {
		code = ErrCodeNotFound
	}
	_ = formatter.Error(code, err.Error())
	return WrapExitError(ExitCommandError, "failed to read history", err)
}

func writeSolveText(w io.Writer, r SolveResult) {
	fmt.Fprintf(w, "scenario: %s\n", r.Scenario)
	fmt.Fprintf(w, "solver: %s\n", r.Solver)
	fmt.Fprintf(w, "outcome: %s\n", r.Outcome)
	fmt.Fprintf(w, "previous log: %s\n", r.PreviousLog)
	if len(r.Reasons) > 0 {
		fmt.Fprintln(w, "reasons:")
		for _, reason := range r.Reasons {
			fmt.Fprintf(w, "  %s: %s\n", reason.Code, reason.Message)
		}
	}
	fmt.Fprintf(w, "pending chunks: %d\n", r.PendingChunks)
}
