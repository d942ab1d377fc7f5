package sat

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func litsFromInts(xs ...int) []Literal {
	lits := make([]Literal, len(xs))
	for i, x := range xs {
		lits[i] = FromDIMACS(x)
	}
	return lits
}

func newTestSolver() *Solver {
	return NewSolver(DefaultOptions(), nil, nil)
}

func loadClauses(t *testing.T, s *Solver, numVars int, clauses [][]int) {
	t.Helper()
	for i := 0; i < numVars; i++ {
		s.AddVariable()
	}
	for _, cl := range clauses {
		require.True(t, s.AddClause(litsFromInts(cl...)), "clause %v should not be rejected by AddClause", cl)
	}
}

func checkModel(t *testing.T, clauses [][]int, model []bool) {
	t.Helper()
	for _, cl := range clauses {
		ok := false
		for _, x := range cl {
			v := intAbs(x) - 1
			if (x > 0) == model[v] {
				ok = true
				break
			}
		}
		assert.True(t, ok, "clause %v not satisfied by model %v", cl, model)
	}
}

func intAbs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

func TestSolve_trivialSatisfiable(t *testing.T) {
	s := newTestSolver()
	loadClauses(t, s, 2, [][]int{{1, 2}, {-1, 2}})

	result := s.Solve(nil)

	require.Equal(t, StatusSatisfiable, result.Status)
	checkModel(t, [][]int{{1, 2}, {-1, 2}}, result.Model)
}

func TestSolve_unitPropagationChain(t *testing.T) {
	s := newTestSolver()
	clauses := [][]int{{1}, {-1, 2}, {-2, 3}, {-3, 4}}
	loadClauses(t, s, 4, clauses)

	result := s.Solve(nil)

	require.Equal(t, StatusSatisfiable, result.Status)
	checkModel(t, clauses, result.Model)
	assert.True(t, result.Model[0])
	assert.True(t, result.Model[3])
}

func TestSolve_rootUnsatisfiable(t *testing.T) {
	s := newTestSolver()
	s.AddVariable()
	require.True(t, s.AddClause(litsFromInts(1)))
	require.False(t, s.AddClause(litsFromInts(-1)), "AddClause should detect the root-level contradiction")

	result := s.Solve(nil)

	require.Equal(t, StatusUnsatisfiable, result.Status)
}

func TestSolve_conflictRequiringLearning(t *testing.T) {
	s := newTestSolver()
	// A small unsatisfiable instance with no unit clauses, so nothing is
	// refuted while loading and the solver needs at least one conflict (and
	// so one round of clause learning) to prove UNSAT: every sign combination
	// of x1 and x2 is excluded.
	clauses := [][]int{
		{1, 2}, {-1, 2}, {1, -2}, {-1, -2},
	}
	loadClauses(t, s, 2, clauses)

	result := s.Solve(nil)

	require.Equal(t, StatusUnsatisfiable, result.Status)
	assert.Greater(t, s.stats.Conflicts, int64(0))
}

func TestSolve_pureLiteralSimplification(t *testing.T) {
	s := newTestSolver()
	clauses := [][]int{{1, 2}, {1, 3}, {1, -2, 3}}
	loadClauses(t, s, 3, clauses)

	result := s.Solve(nil)

	require.Equal(t, StatusSatisfiable, result.Status)
	checkModel(t, clauses, result.Model)
}

func TestSolve_assumptionsRestrictModel(t *testing.T) {
	s := newTestSolver()
	loadClauses(t, s, 2, [][]int{{1, 2}})

	result := s.Solve(litsFromInts(-1))

	require.Equal(t, StatusSatisfiable, result.Status)
	assert.False(t, result.Model[0])
	assert.True(t, result.Model[1])
}

func TestSolve_assumptionsProduceCore(t *testing.T) {
	s := newTestSolver()
	loadClauses(t, s, 1, [][]int{{1}})

	result := s.Solve(litsFromInts(-1))

	require.Equal(t, StatusUnsatisfiable, result.Status)
	require.NotEmpty(t, result.Core)
}

func TestSolve_reproducesSameModelAcrossRuns(t *testing.T) {
	clauses := [][]int{{1, 2, 3}, {-1, 2}, {1, -3}, {-2, -3}}
	s1 := newTestSolver()
	loadClauses(t, s1, 3, clauses)
	r1 := s1.Solve(nil)

	s2 := newTestSolver()
	loadClauses(t, s2, 3, clauses)
	r2 := s2.Solve(nil)

	require.Equal(t, r1.Status, r2.Status)
	assert.Equal(t, r1.Model, r2.Model)
}

// bruteForceSAT exhaustively checks satisfiability of small formulas, used as
// an oracle for the randomized property test below.
func bruteForceSAT(numVars int, clauses [][]int) bool {
	assign := make([]bool, numVars)
	var rec func(i int) bool
	rec = func(i int) bool {
		if i == numVars {
			for _, cl := range clauses {
				ok := false
				for _, x := range cl {
					v := intAbs(x) - 1
					if (x > 0) == assign[v] {
						ok = true
						break
					}
				}
				if !ok {
					return false
				}
			}
			return true
		}
		assign[i] = false
		if rec(i + 1) {
			return true
		}
		assign[i] = true
		return rec(i + 1)
	}
	return rec(0)
}

func TestSolve_randomSmall3SATMatchesBruteForce(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	const numVars = 6
	const numTrials = 60

	for trial := 0; trial < numTrials; trial++ {
		numClauses := 3 + rng.Intn(12)
		clauses := make([][]int, numClauses)
		for i := range clauses {
			cl := make([]int, 3)
			for j := range cl {
				v := rng.Intn(numVars) + 1
				if rng.Intn(2) == 0 {
					v = -v
				}
				cl[j] = v
			}
			clauses[i] = cl
		}

		want := bruteForceSAT(numVars, clauses)

		s := newTestSolver()
		loadClauses(t, s, numVars, clauses)
		result := s.Solve(nil)

		if want {
			require.Equalf(t, StatusSatisfiable, result.Status, "trial %d: clauses %v", trial, clauses)
			checkModel(t, clauses, result.Model)
		} else {
			require.Equalf(t, StatusUnsatisfiable, result.Status, "trial %d: clauses %v", trial, clauses)
		}
	}
}

func TestSolve_expiredTimeoutReturnsUnknown(t *testing.T) {
	s := newTestSolver()
	loadClauses(t, s, 2, [][]int{{1, 2}})
	s.SetBudget(0, 0, time.Nanosecond)
	time.Sleep(time.Millisecond)

	result := s.Solve(nil)

	require.Equal(t, StatusUnknown, result.Status)
	require.ErrorIs(t, result.Err, ErrBudgetExceeded)
}
