package conflict

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/roach88/arrayvc/internal/changeset"
	"github.com/roach88/arrayvc/internal/format"
)

// Solver decides whether current can be committed after previous.
//
// previous is the log of the commit made since current's base snapshot and
// previousSnapshot is the tree that commit produced. Solve must not modify
// either. It takes ownership of current and hands it back inside the
// returned Resolution.
type Solver interface {
	Solve(ctx context.Context, previous *format.TransactionLog, previousSnapshot Snapshot, current *changeset.ChangeSet) (Resolution, error)
}

// VersionSelection is the policy applied to one conflict category.
// The zero value is VersionFail.
type VersionSelection int

const (
	// VersionFail reports the conflict and rejects the change set.
	VersionFail VersionSelection = iota
	// VersionOurs keeps the pending change.
	VersionOurs
	// VersionTheirs drops the pending change so the committed one stands.
	VersionTheirs
)

// ParseVersionSelection parses "fail", "ours" or "theirs".
func ParseVersionSelection(s string) (VersionSelection, error) {
	switch s {
	case "fail":
		return VersionFail, nil
	case "ours":
		return VersionOurs, nil
	case "theirs":
		return VersionTheirs, nil
	default:
		return VersionFail, fmt.Errorf("invalid version selection %q: must be one of fail, ours, theirs", s)
	}
}

func (v VersionSelection) String() string {
	switch v {
	case VersionFail:
		return "fail"
	case VersionOurs:
		return "ours"
	case VersionTheirs:
		return "theirs"
	default:
		return fmt.Sprintf("VersionSelection(%d)", int(v))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (v VersionSelection) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (v *VersionSelection) UnmarshalText(text []byte) error {
	parsed, err := ParseVersionSelection(string(text))
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// NoFastForward rejects every change set, enforcing strictly linear history:
// a writer must rebase by hand before it can commit.
type NoFastForward struct{}

// Solve always returns a Failure with NoFastForwardConfigured.
func (NoFastForward) Solve(_ context.Context, _ *format.TransactionLog, _ Snapshot, current *changeset.ChangeSet) (Resolution, error) {
	res := &Failure{
		Reasons:    []UnsolvableConflict{NoFastForwardConfigured{}},
		Unmodified: current,
	}
	recordOutcome("no_fast_forward", res)
	return res, nil
}

func recordOutcome(solver string, res Resolution) {
	outcome := Outcome(res)
	solveTotal.WithLabelValues(solver, outcome).Inc()

	if f, ok := res.(*Failure); ok {
		codes := make([]string, len(f.Reasons))
		for i, r := range f.Reasons {
			codes[i] = string(r.Code())
		}
		slog.Info("conflict resolution failed", "solver", solver, "reasons", codes)
		return
	}
	slog.Info("conflict resolution patched", "solver", solver)
}
