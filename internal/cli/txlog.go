package cli

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roach88/arrayvc/internal/format"
	"github.com/roach88/arrayvc/internal/scenario"
)

// TxlogResult is the JSON payload of the txlog command.
type TxlogResult struct {
	Hash string          `json:"hash"`
	Log  json.RawMessage `json:"log"`
}

// NewTxlogCommand creates the txlog command.
func NewTxlogCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "txlog <scenario.yaml>",
		Short: "Print the transaction log of a scenario's previous commit",
		Long: `Print the canonical transaction log of the scenario's previous commit and
its content hash.

When the scenario gives previous_changes, the log is derived from that change
set exactly as a commit would derive it.

Examples:
  arrayvc txlog collision.yaml
  arrayvc txlog collision.yaml --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTxlog(rootOpts, args[0], cmd)
		},
	}
	return cmd
}

func runTxlog(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	s, err := loadScenario(formatter, path)
	if err != nil {
		return err
	}

	log, err := s.PreviousTransactionLog()
	if err != nil {
		return scenarioError(formatter, err)
	}
	data, err := log.MarshalCanonical()
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to encode transaction log", err)
	}
	hash := format.MustTransactionLogHash(log)

	slog.Debug("derived transaction log", "chunk_writes", log.UpdatedChunkCount(), "arrays", len(log.UpdatedChunks))

	if opts.Format == "json" {
		return formatter.Success(TxlogResult{Hash: hash, Log: data})
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s\nhash: %s\n", data, hash)
	return nil
}

func newFormatter(opts *RootOptions, cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
}

// loadScenario loads a scenario file, reporting failures through the
// formatter with ErrCodeScenario.
func loadScenario(formatter *OutputFormatter, path string) (*scenario.Scenario, error) {
	s, err := scenario.Load(path)
	if err != nil {
		return nil, scenarioError(formatter, err)
	}
	slog.Debug("loaded scenario", "name", s.Name, "path", path)
	return s, nil
}

func scenarioError(formatter *OutputFormatter, err error) error {
	_ = formatter.Error(ErrCodeScenario, err.Error())
	return WrapExitError(ExitCommandError, "invalid scenario", err)
}
