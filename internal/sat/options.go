package sat

import "time"

// Options collects every tunable of the search: activity decay rates,
// restart and clause-reduction parameters, and resource budgets. Zero-value
// Options is not meaningful; callers should start from DefaultOptions.
type Options struct {
	VarDecay    float64 // VSIDS score decay, starts here and tightens toward VarDecayMax
	VarDecayMax float64 // ceiling VarDecay tightens toward over the course of the search
	ClauseDecay float64 // learned-clause activity decay, in (0, 1]

	PhaseSaving bool

	PersistentLBDThreshold int  // learned clauses at or below this LBD are never candidates for Reduce
	KeepMedianLBD          bool // Reduce keeps every clause tied with the median LBD rather than cutting strictly in half

	LBSizeMinimizingClause int // binary-resolution minimization is skipped above this learned-clause size

	RestartK        float64 // Glucose restart trigger: fast/slow EMA ratio
	RestartBlockR   float64 // blocking-restart trigger: trail size vs trailFast EMA ratio
	RestartMinConfl int     // minimum conflicts between restarts

	ReduceBase      int // conflicts before the first clause-database reduction
	ReduceIncrement int // additional conflicts required before each subsequent reduction

	ProgressEvery int64 // Solve logs a progress line every this many conflicts; <= 0 disables it

	MaxConflicts    int64 // <= 0 means unbounded
	MaxPropagations int64 // <= 0 means unbounded
	Timeout         time.Duration

	DratPath string // empty disables certificate output
}

// DefaultOptions returns the parameter set used when a caller supplies no
// configuration, matching values established as reasonable defaults by the
// CDCL literature (Glucose/MiniSat-family solvers).
func DefaultOptions() Options {
	return Options{
		VarDecay:               0.8,
		VarDecayMax:            0.95,
		ClauseDecay:            0.999,
		PhaseSaving:            true,
		PersistentLBDThreshold: 3,
		KeepMedianLBD:          true,
		LBSizeMinimizingClause: 30,
		RestartK:               0.8,
		RestartBlockR:          1.4,
		RestartMinConfl:        50,
		ReduceBase:             20000,
		ReduceIncrement:        5000,
		ProgressEvery:          5000,
	}
}
