package scenario

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/roach88/arrayvc/internal/changeset"
	"github.com/roach88/arrayvc/internal/conflict"
	"github.com/roach88/arrayvc/internal/format"
)

// Result is the outcome of running a solver over a scenario.
type Result struct {
	Scenario      string                 `json:"scenario"`
	Outcome       string                 `json:"outcome"`
	PreviousLog   string                 `json:"previous_log_hash"`
	Reasons       []Reason               `json:"reasons"`
	PendingChunks int                    `json:"pending_chunks"`
	ChangeSet     *changeset.ChangeSet   `json:"-"`
	Resolution    conflict.Resolution    `json:"-"`
	Log           *format.TransactionLog `json:"-"`
}

// Reason is one reported conflict in a Result.
type Reason struct {
	Code    conflict.ConflictCode `json:"code"`
	Message string                `json:"message"`
}

// Run solves the scenario's pending change set against its previous commit.
// Errors come from the solver (snapshot listing failures) only; conflicts are
// reported in the Result.
func Run(ctx context.Context, s *Scenario, solver conflict.Solver) (*Result, error) {
	previous, err := s.PreviousTransactionLog()
	if err != nil {
		return nil, err
	}
	nodes, err := s.SnapshotNodes()
	if err != nil {
		return nil, err
	}
	pending, err := s.Pending.ChangeSet()
	if err != nil {
		return nil, fmt.Errorf("pending: %w", err)
	}

	slog.Debug("running scenario", "scenario", s.Name, "pending_chunks", pending.PendingChunkCount())

	res, err := solver.Solve(ctx, previous, conflict.NodeList(nodes), pending)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", s.Name, err)
	}
	return NewResult(s.Name, previous, res), nil
}

// NewResult summarizes a resolution.
func NewResult(name string, previous *format.TransactionLog, res conflict.Resolution) *Result {
	r := &Result{
		Scenario:    name,
		Outcome:     conflict.Outcome(res),
		PreviousLog: format.MustTransactionLogHash(previous),
		Reasons:     []Reason{},
		Resolution:  res,
		Log:         previous,
	}
	switch v := res.(type) {
	case *conflict.Patched:
		r.ChangeSet = v.ChangeSet
	case *conflict.Failure:
		r.ChangeSet = v.Unmodified
		for _, c := range v.Reasons {
			r.Reasons = append(r.Reasons, Reason{Code: c.Code(), Message: c.String()})
		}
	}
	if r.ChangeSet != nil {
		r.PendingChunks = r.ChangeSet.PendingChunkCount()
	}
	return r
}
