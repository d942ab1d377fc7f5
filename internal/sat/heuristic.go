package sat

import (
	"github.com/rhartert/yagh"
)

// Heuristic is the branching collaborator's capability set: picking the next
// decision literal, reacting to a variable being unassigned (phase saving),
// and reacting to a variable's activity being bumped during conflict
// analysis. VSIDSHeuristic is the only implementation; the interface exists
// so the search driver never hard-codes a particular branching scheme.
type Heuristic interface {
	AddVar(initScore float64, initPhase bool)
	BumpActivity(v int)
	DecayActivity()
	Unassign(v int, lastValue LBool)
	PickBranchLiteral(trail *Trail) Literal
}

// VSIDSHeuristic is the classic variable-state independent decaying sum
// branching heuristic: an activity score per variable, incremented on
// appearance in a learned clause's resolution, periodically decayed by
// inflating the bump increment, and a saved phase per variable reused across
// decisions once it has first been assigned.
type VSIDSHeuristic struct {
	order *yagh.IntMap[float64]

	scores   []float64
	scoreInc float64
	decay    float64
	decayMax float64

	phases      []LBool
	phaseSaving bool
}

// NewVSIDSHeuristic returns an empty heuristic with the given activity decay
// factor (applied as 1/decay per DecayActivity call), the ceiling that decay
// tightens toward over the course of the search, and a phase-saving switch.
func NewVSIDSHeuristic(decay, decayMax float64, phaseSaving bool) *VSIDSHeuristic {
	return &VSIDSHeuristic{
		order:       yagh.New[float64](0),
		scoreInc:    1,
		decay:       decay,
		decayMax:    decayMax,
		phaseSaving: phaseSaving,
	}
}

// TightenDecay nudges the decay factor toward decayMax, giving recent
// conflicts progressively more weight as the search accumulates history.
func (h *VSIDSHeuristic) TightenDecay() {
	if h.decay < h.decayMax {
		h.decay += 0.01
		if h.decay > h.decayMax {
			h.decay = h.decayMax
		}
	}
}

// AddVar registers a freshly created variable with an initial score and
// initial polarity guess.
func (h *VSIDSHeuristic) AddVar(initScore float64, initPhase bool) {
	v := len(h.phases)
	h.scores = append(h.scores, initScore)
	h.phases = append(h.phases, Lift(initPhase))
	h.order.GrowBy(1)
	h.order.Put(v, -initScore)
}

// BumpActivity increases v's score by the current increment, rescaling every
// score if it would overflow, and repositions v in the heap if it is still a
// decision candidate.
func (h *VSIDSHeuristic) BumpActivity(v int) {
	h.scores[v] += h.scoreInc
	if h.order.Contains(v) {
		h.order.Put(v, -h.scores[v])
	}
	if h.scores[v] > 1e100 {
		h.rescale()
	}
}

// DecayActivity ages the score increment so that future bumps outweigh past
// ones, giving recency-weighted importance to variables active in recent
// conflicts.
func (h *VSIDSHeuristic) DecayActivity() {
	h.scoreInc /= h.decay
	if h.scoreInc > 1e100 {
		h.rescale()
	}
}

func (h *VSIDSHeuristic) rescale() {
	h.scoreInc *= 1e-100
	for v, s := range h.scores {
		h.scores[v] = s * 1e-100
		if h.order.Contains(v) {
			h.order.Put(v, -h.scores[v])
		}
	}
}

// Unassign returns v to the set of decision candidates and, if phase saving
// is enabled, records the value it held so that a future decision on v
// reuses it. The search driver wires this directly as Trail's
// UnassignObserver.
func (h *VSIDSHeuristic) Unassign(v int, lastValue LBool) {
	if h.phaseSaving {
		h.phases[v] = lastValue
	}
	h.order.Put(v, -h.scores[v])
}

// PickBranchLiteral pops variables from the activity heap until it finds one
// still unassigned, and returns it signed per its saved (or default
// positive) phase.
func (h *VSIDSHeuristic) PickBranchLiteral(trail *Trail) Literal {
	for {
		v, ok := h.order.Pop()
		if !ok {
			return LitUndef
		}
		if trail.VarValue(v.Elem) != Undef {
			continue
		}
		if h.phases[v.Elem] == False {
			return NegativeLiteral(v.Elem)
		}
		return PositiveLiteral(v.Elem)
	}
}

// InitFrom seeds every variable's initial score from its literal-occurrence
// frequency across clauses, so that variables appearing in many clauses are
// preferred early on before any conflict has bumped an activity, and seeds
// its polarity to whichever sign occurs more often.
func (h *VSIDSHeuristic) InitFrom(numVars int, clauses [][]Literal) {
	pos := make([]float64, numVars)
	neg := make([]float64, numVars)
	for _, cl := range clauses {
		for _, l := range cl {
			if l.IsPositive() {
				pos[l.VarID()]++
			} else {
				neg[l.VarID()]++
			}
		}
	}
	for v := 0; v < numVars; v++ {
		score := pos[v] + neg[v]
		h.scores[v] = score
		h.order.Put(v, -score)
		h.phases[v] = Lift(pos[v] > neg[v])
	}
}
