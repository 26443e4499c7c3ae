// Package scheduler implements the search scheduler of spec.md §4.8: a
// tracker of every crystal ever accepted into a run, a per-crystal status
// state machine, and a bounded event loop that drives a LocalOptimizer
// back-end and the genetic operators to grow the population toward a
// generation target.
package scheduler

import "time"

// FailAction is the scheduler's response when a crystal exceeds its fail
// count limit, per spec.md §4.8.
type FailAction int

const (
	DoNothing FailAction = iota
	Kill
	Randomize
)

// Config bounds the scheduler's loop: population and concurrency targets,
// retry policy, and how often the queue snapshot may be refreshed.
type Config struct {
	NumInitial          int
	PopSize             int
	GenerationTarget     int
	ConcurrentJobLimit  int
	FailCountLimit      int
	FailAction          FailAction
	QueueRefreshMinGap  time.Duration
	DedupSweepInterval  time.Duration

	// ProbCrossover, ProbStripple, ProbPermustrain are the operator
	// selection probabilities used once >= 3 optimized parents exist
	// (spec.md §4.8 step 4). They need not sum to 1; pickOperator normalizes.
	ProbCrossover   float64
	ProbStripple    float64
	ProbPermustrain float64
}
