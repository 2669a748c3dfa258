package conflict

import (
	"context"
	"fmt"

	"github.com/roach88/arrayvc/internal/changeset"
	"github.com/roach88/arrayvc/internal/format"
)

// Commit is one commit made since a writer's base snapshot: its transaction
// log and the snapshot it produced.
type Commit struct {
	ID       format.SnapshotID
	Log      *format.TransactionLog
	Snapshot Snapshot
}

// Rebase solves current against each commit in order, oldest first. Each
// Patched change set is the input of the next step. The first Failure stops
// the chain; its Unmodified change set is the one that entered that step.
//
// An empty chain means nothing was committed concurrently, so current
// fast-forwards unchanged, whatever the solver.
func Rebase(ctx context.Context, solver Solver, commits []Commit, current *changeset.ChangeSet) (Resolution, error) {
	for i, c := range commits {
		res, err := solver.Solve(ctx, c.Log, c.Snapshot, current)
		if err != nil {
			return nil, fmt.Errorf("rebase onto commit %d (%s): %w", i, c.ID, err)
		}
		switch r := res.(type) {
		case *Patched:
			current = r.ChangeSet
		case *Failure:
			return r, nil
		default:
			return nil, fmt.Errorf("rebase onto commit %d (%s): unexpected resolution %T", i, c.ID, res)
		}
	}
	return &Patched{ChangeSet: current}, nil
}
