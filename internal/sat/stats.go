package sat

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
)

// Stats aggregates the counters the search driver updates on every
// conflict, restart, and clause-database reduction. recentLBD keeps a
// bounded trailing window of learned-clause LBD values (reusing Queue,
// which otherwise has no role once propagation moved to a plain trail
// cursor) for diagnostic reporting; it is not consulted by the restart
// policy, which keeps its own EMA state.
type Stats struct {
	Conflicts     int64
	Decisions     int64
	Propagations  int64
	Restarts      int64
	Reductions    int64
	LearntRemoved int64

	recentLBD *Queue[int]

	log *logrus.Entry

	mConflicts    prometheus.Counter
	mDecisions    prometheus.Counter
	mPropagations prometheus.Counter
	mRestarts     prometheus.Counter
}

// recentLBDWindow bounds how many of the most recent learned-clause LBD
// values Stats retains for reporting.
const recentLBDWindow = 128

// NewStats returns a Stats that logs progress through logger (or a default
// logrus logger if nil) and, if reg is non-nil, registers a small set of
// prometheus counters under it.
func NewStats(logger *logrus.Logger, reg prometheus.Registerer) *Stats {
	if logger == nil {
		logger = logrus.New()
	}
	s := &Stats{
		recentLBD: NewQueue[int](recentLBDWindow),
		log:       logger.WithField("component", "sat"),
	}
	if reg != nil {
		s.mConflicts = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sat_conflicts_total",
			Help: "Total number of conflicts encountered during search.",
		})
		s.mDecisions = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sat_decisions_total",
			Help: "Total number of branching decisions made.",
		})
		s.mPropagations = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sat_propagations_total",
			Help: "Total number of literals propagated.",
		})
		s.mRestarts = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sat_restarts_total",
			Help: "Total number of search restarts.",
		})
		reg.MustRegister(s.mConflicts, s.mDecisions, s.mPropagations, s.mRestarts)
	}
	return s
}

// OnConflict records a conflict with the LBD of the clause it produced.
func (s *Stats) OnConflict(lbd int) {
	s.Conflicts++
	if s.mConflicts != nil {
		s.mConflicts.Inc()
	}
	if s.recentLBD.Size() >= recentLBDWindow {
		s.recentLBD.Pop()
	}
	s.recentLBD.Push(lbd)
}

// OnDecision records one branching decision.
func (s *Stats) OnDecision() {
	s.Decisions++
	if s.mDecisions != nil {
		s.mDecisions.Inc()
	}
}

// OnPropagation records n literals having been propagated.
func (s *Stats) OnPropagation(n int64) {
	s.Propagations += n
	if s.mPropagations != nil {
		s.mPropagations.Add(float64(n))
	}
}

// OnRestart records a restart.
func (s *Stats) OnRestart() {
	s.Restarts++
	if s.mRestarts != nil {
		s.mRestarts.Inc()
	}
	s.log.WithFields(logrus.Fields{
		"conflicts": s.Conflicts,
		"restarts":  s.Restarts,
	}).Debug("restart")
}

// OnReduce records a clause-database reduction that removed n learned
// clauses.
func (s *Stats) OnReduce(n int) {
	s.Reductions++
	s.LearntRemoved += int64(n)
	s.log.WithFields(logrus.Fields{
		"conflicts": s.Conflicts,
		"removed":   n,
	}).Debug("reduce")
}

// AverageRecentLBD returns the mean LBD over the trailing window, or 0 if no
// conflict has been recorded yet.
func (s *Stats) AverageRecentLBD() float64 {
	n := s.recentLBD.Size()
	if n == 0 {
		return 0
	}
	var sum int
	for i := 0; i < n; i++ {
		v := s.recentLBD.Pop()
		sum += v
		s.recentLBD.Push(v)
	}
	return float64(sum) / float64(n)
}

// LogProgress emits a single structured progress line summarizing search
// state so far.
func (s *Stats) LogProgress() {
	s.log.WithFields(logrus.Fields{
		"conflicts":      s.Conflicts,
		"decisions":      s.Decisions,
		"propagations":   s.Propagations,
		"restarts":       s.Restarts,
		"reductions":     s.Reductions,
		"avg_recent_lbd": s.AverageRecentLBD(),
	}).Info("progress")
}
