package conflict

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// solveTotal counts Solve calls by solver and outcome
	solveTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "arrayvc_conflict_solve_total",
		Help: "Total conflict resolutions by solver and outcome",
	}, []string{"solver", "outcome"})

	// conflictsDetected counts detected conflict categories, split by whether
	// the category is enforced
	conflictsDetected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "arrayvc_conflicts_detected_total",
		Help: "Total detected conflicts by category and enforcement",
	}, []string{"category", "enforced"})

	// chunkWritesRetracted counts pending chunk writes dropped under the theirs policy
	chunkWritesRetracted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "arrayvc_chunk_writes_retracted_total",
		Help: "Total pending chunk writes retracted in favour of committed writes",
	})
)
