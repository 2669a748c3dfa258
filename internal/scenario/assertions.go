package scenario

import (
	"fmt"
	"slices"
)

// Check compares a result against the scenario's expectations and returns one
// message per mismatch. An empty slice means the scenario passed.
func Check(s *Scenario, r *Result) []string {
	errs := []string{}
	if s.Expect == nil {
		return errs
	}

	if r.Outcome != s.Expect.Outcome {
		errs = append(errs, fmt.Sprintf("outcome: expected %s, got %s", s.Expect.Outcome, r.Outcome))
	}

	if s.Expect.Outcome == OutcomeFailure && s.Expect.Reasons != nil {
		got := make([]string, len(r.Reasons))
		for i, reason := range r.Reasons {
			got[i] = string(reason.Code)
		}
		if !slices.Equal(got, s.Expect.Reasons) {
			errs = append(errs, fmt.Sprintf("reasons: expected %v, got %v", s.Expect.Reasons, got))
		}
	}

	if s.Expect.PendingChunks != nil && r.PendingChunks != *s.Expect.PendingChunks {
		errs = append(errs, fmt.Sprintf("pending_chunks: expected %d, got %d", *s.Expect.PendingChunks, r.PendingChunks))
	}

	return errs
}
