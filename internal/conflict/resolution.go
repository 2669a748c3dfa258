package conflict

import "github.com/roach88/arrayvc/internal/changeset"

// Resolution is the outcome of Solve: *Patched or *Failure.
type Resolution interface {
	resolution()
}

// Patched means the change set is safe to commit. It may differ from the
// change set passed to Solve.
type Patched struct {
	ChangeSet *changeset.ChangeSet
}

// Failure means the change set cannot be committed. Reasons is never empty.
// Unmodified is the change set exactly as it was passed to Solve, so the
// caller can inspect it or retry after fixing things up by hand.
type Failure struct {
	Reasons    []UnsolvableConflict
	Unmodified *changeset.ChangeSet
}

func (*Patched) resolution() {}
func (*Failure) resolution() {}

// Outcome names a resolution for logs and metrics.
func Outcome(r Resolution) string {
	switch r.(type) {
	case *Patched:
		return "patched"
	case *Failure:
		return "failure"
	default:
		return "unknown"
	}
}
