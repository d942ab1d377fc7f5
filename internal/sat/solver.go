package sat

import (
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
)

// Status is the outcome of a call to Solver.Solve.
type Status int

const (
	StatusUnknown Status = iota
	StatusSatisfiable
	StatusUnsatisfiable
)

func (s Status) String() string {
	switch s {
	case StatusSatisfiable:
		return "SATISFIABLE"
	case StatusUnsatisfiable:
		return "UNSATISFIABLE"
	default:
		return "UNKNOWN"
	}
}

// Result is the outcome of a Solve call: a status, a satisfying model (only
// meaningful when Status == StatusSatisfiable), an unsatisfiable core over
// the assumptions passed to Solve (only meaningful when Status ==
// StatusUnsatisfiable and assumptions were given), and the reason a
// StatusUnknown was returned.
type Result struct {
	Status Status
	Model  []bool    // indexed by variable id
	Core   []Literal // subset of the negated assumptions that suffice to explain UNSAT
	Err    error     // set when Status == StatusUnknown
}

// Solver is a CDCL SAT solver: a trail-backed assignment with two-watched-
// literal propagation, first-UIP conflict analysis with clause
// minimization, VSIDS branching, Glucose-style restarts, and periodic
// LBD-based learned-clause reduction.
type Solver struct {
	opts Options

	trail *Trail
	alloc *Allocator
	watch *Watches
	db    *Database

	analyzer  *Analyzer
	heuristic Heuristic
	restart   *RestartPolicy
	stats     *Stats
	cert      CertificateSink
	prep      Preprocessor

	numVars int

	ok bool // false once the root level has been proven unsatisfiable

	assumptions               []Literal
	lastConflictingAssumption Literal

	nextReduce int64

	interrupted atomic.Bool

	maxConflicts    int64
	maxPropagations int64
	deadline        time.Time
}

// NewSolver returns an empty solver configured by opts. A nil logrus logger
// or prometheus registerer disables the corresponding ambient integration.
func NewSolver(opts Options, logger *logrus.Logger, reg prometheus.Registerer) *Solver {
	alloc := NewAllocator()
	watch := NewWatches()
	cert := CertificateSink(NopSink{})

	s := &Solver{
		opts:            opts,
		trail:           NewTrail(),
		alloc:           alloc,
		watch:           watch,
		analyzer:        NewAnalyzer(opts.LBSizeMinimizingClause),
		heuristic:       NewVSIDSHeuristic(opts.VarDecay, opts.VarDecayMax, opts.PhaseSaving),
		restart:         NewRestartPolicy(opts.RestartK, opts.RestartBlockR, opts.RestartMinConfl),
		stats:           NewStats(logger, reg),
		cert:            cert,
		prep:            NopPreprocessor{},
		ok:              true,
		nextReduce:      int64(opts.ReduceBase),
		maxConflicts:    opts.MaxConflicts,
		maxPropagations: opts.MaxPropagations,
	}
	s.db = NewDatabase(alloc, watch, cert, opts.ClauseDecay)
	if opts.Timeout > 0 {
		s.deadline = time.Now().Add(opts.Timeout)
	}
	return s
}

// SetCertificateSink replaces the DRAT proof sink. Must be called before any
// clause is added.
func (s *Solver) SetCertificateSink(cert CertificateSink) {
	if cert == nil {
		cert = NopSink{}
	}
	s.cert = cert
	s.db.cert = cert
}

// SetPreprocessor replaces the formula preprocessing stage. Must be called
// before any clause is added.
func (s *Solver) SetPreprocessor(p Preprocessor) {
	if p == nil {
		p = NopPreprocessor{}
	}
	s.prep = p
}

// SetBudget installs a resource budget. A non-positive value leaves that
// budget unbounded; a non-positive timeout leaves the deadline unset.
func (s *Solver) SetBudget(maxConflicts, maxPropagations int64, timeout time.Duration) {
	s.maxConflicts = maxConflicts
	s.maxPropagations = maxPropagations
	if timeout > 0 {
		s.deadline = time.Now().Add(timeout)
	} else {
		s.deadline = time.Time{}
	}
}

// Interrupt asks an in-progress Solve to return StatusUnknown as soon as
// possible. Safe to call from another goroutine.
func (s *Solver) Interrupt() {
	s.interrupted.Store(true)
}

// NumVars returns the number of variables declared so far.
func (s *Solver) NumVars() int {
	return s.numVars
}

// AddVariable declares a fresh variable and returns its 0-based id.
func (s *Solver) AddVariable() int {
	v := s.numVars
	s.numVars++
	s.trail.Grow()
	s.watch.Grow()
	s.analyzer.Grow()
	s.heuristic.AddVar(0, true)
	return v
}

// AddClause adds a clause over already-declared variables. Returns false
// (and leaves the solver permanently unsatisfiable) if the addition proves
// the problem unconditionally false. Must not be called once Solve has
// opened any decision level.
func (s *Solver) AddClause(lits []Literal) bool {
	if !s.ok {
		return false
	}
	if s.trail.DecisionLevel() != 0 {
		panic("sat: AddClause called mid-search")
	}
	tmp := append([]Literal(nil), lits...)
	_, ok := s.db.NewClause(s.trail, tmp, false)
	if !ok {
		s.ok = false
	}
	return s.ok
}

// Load preprocesses and loads a full formula at once, declaring exactly
// numVars variables. Intended to be called once, immediately after
// construction, before any direct AddVariable/AddClause call.
func (s *Solver) Load(numVars int, clauses [][]Literal) bool {
	numVars, clauses = s.prep.Preprocess(numVars, clauses)
	for s.numVars < numVars {
		s.AddVariable()
	}
	if h, ok := s.heuristic.(*VSIDSHeuristic); ok {
		h.InitFrom(numVars, clauses)
	}
	for _, cl := range clauses {
		if !s.AddClause(cl) {
			return false
		}
	}
	return true
}

// Solve searches for a satisfying assignment, optionally under the given
// assumption literals (treated as forced decisions at the start of the
// search and never relaxed).
func (s *Solver) Solve(assumptions []Literal) Result {
	s.interrupted.Store(false)
	if !s.ok {
		return Result{Status: StatusUnsatisfiable}
	}
	s.assumptions = assumptions

	for {
		confl := s.propagate()
		if confl == RefNone {
			if err := s.checkBudget(); err != nil {
				return Result{Status: StatusUnknown, Err: err}
			}

			if s.trail.DecisionLevel() == 0 {
				s.db.Simplify(s.trail)
				if s.stats.Conflicts >= s.nextReduce {
					s.nextReduce = s.stats.Conflicts + int64(s.opts.ReduceIncrement)
					removed := s.db.Reduce(s.trail, s.opts.PersistentLBDThreshold, s.opts.KeepMedianLBD)
					s.stats.OnReduce(removed)
					s.db.Reorganize(s.trail)
				}
			}

			lit := s.pickAssumptionOrDecide()
			switch lit {
			case LitUndef:
				return s.buildModel()
			case LitError:
				core := s.analyzer.AnalyzeFinal(s.trail, s.db, s.lastConflictingAssumption)
				return Result{Status: StatusUnsatisfiable, Core: core}
			}

			s.trail.NewDecisionLevel()
			if err := s.trail.Assign(lit, RefNone); err != nil {
				s.stats.log.WithError(err).Error("decision on an assigned variable")
				return Result{Status: StatusUnknown, Err: err}
			}
			s.stats.OnDecision()
			continue
		}

		if s.trail.DecisionLevel() == 0 {
			return Result{Status: StatusUnsatisfiable}
		}

		learnt, lbd, backtrack := s.analyzer.Analyze(s.trail, s.db, s.heuristic, confl)
		s.stats.OnConflict(lbd)
		s.restart.OnConflict(lbd, s.trail.Size())

		if s.opts.ProgressEvery > 0 && s.stats.Conflicts%s.opts.ProgressEvery == 0 {
			s.stats.LogProgress()
		}

		s.trail.CancelUntil(backtrack, s.heuristic.Unassign)
		s.heuristic.DecayActivity()
		s.db.DecayActivity()

		ref, ok := s.db.NewClause(s.trail, learnt, true)
		if !ok {
			return Result{Status: StatusUnsatisfiable}
		}
		if ref != RefNone {
			s.db.alloc.Deref(ref).SetLBD(lbd)
			s.db.BumpActivity(ref)
			if err := s.trail.Assign(learnt[0], ref); err != nil {
				s.stats.log.WithError(err).Error("asserting literal already assigned")
				return Result{Status: StatusUnknown, Err: err}
			}
		}

		if s.restart.ShouldRestart(s.trail.Size()) {
			s.restart.Reset()
			s.stats.OnRestart()
			s.trail.CancelUntil(0, s.heuristic.Unassign)
			if h, ok := s.heuristic.(*VSIDSHeuristic); ok {
				h.TightenDecay()
			}
		}
	}
}

func (s *Solver) propagate() ClauseRef {
	before := s.trail.Size()
	confl := s.watch.Propagate(s.trail, s.alloc)
	s.stats.OnPropagation(int64(s.trail.Size() - before))
	return confl
}

func (s *Solver) checkBudget() error {
	if s.interrupted.Load() {
		return errors.WithStack(ErrInterrupted)
	}
	if s.maxConflicts > 0 && s.stats.Conflicts >= s.maxConflicts {
		return errors.WithStack(ErrBudgetExceeded)
	}
	if s.maxPropagations > 0 && s.stats.Propagations >= s.maxPropagations {
		return errors.WithStack(ErrBudgetExceeded)
	}
	if !s.deadline.IsZero() && time.Now().After(s.deadline) {
		return errors.WithStack(ErrBudgetExceeded)
	}
	return nil
}

// pickAssumptionOrDecide returns the next decision literal: the next
// not-yet-satisfied assumption if any remain, LitError if an assumption
// directly contradicts the trail, LitUndef if every variable is already
// assigned, or else the heuristic's pick.
func (s *Solver) pickAssumptionOrDecide() Literal {
	for lvl := s.trail.DecisionLevel(); lvl < len(s.assumptions); lvl = s.trail.DecisionLevel() {
		a := s.assumptions[lvl]
		switch s.trail.Value(a) {
		case True:
			s.trail.NewDecisionLevel()
			continue
		case False:
			s.lastConflictingAssumption = a
			return LitError
		default:
			return a
		}
	}
	return s.heuristic.PickBranchLiteral(s.trail)
}

func (s *Solver) buildModel() Result {
	model := make([]bool, s.numVars)
	for v := 0; v < s.numVars; v++ {
		model[v] = s.trail.VarValue(v) == True
	}
	return Result{Status: StatusSatisfiable, Model: model}
}
