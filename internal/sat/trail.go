package sat

import "github.com/pkg/errors"

// ErrAlreadyAssigned is returned by Trail.Assign when the literal's variable
// already holds a value, which would violate invariant I-Trail.
var ErrAlreadyAssigned = errors.New("sat: variable already assigned")

// UnassignObserver is notified for every variable undone by CancelUntil, in
// reverse trail order, with the value it held just before being unassigned.
// The search driver wires this to the branching heuristic so that unassigned
// variables are returned to the decision heap with their polarity saved.
type UnassignObserver func(v int, lastValue LBool)

// Trail is the current partial assignment together with its implication
// graph. It doubles as the unit-propagation queue via qhead: literals at
// indices [qhead, len(trail)) are assigned but not yet propagated.
type Trail struct {
	varVal []LBool
	level  []int
	reason []ClauseRef

	trail    []Literal
	trailLim []int
	qhead    int

	// seenLevel is scratch space for ComputeLBD, reused across calls and
	// cleared in constant time via ResetSet's timestamp trick.
	seenLevel ResetSet
}

// NewTrail returns an empty trail.
func NewTrail() *Trail {
	return &Trail{}
}

// Grow adds bookkeeping slots for one freshly created variable.
func (t *Trail) Grow() {
	t.varVal = append(t.varVal, Undef)
	t.level = append(t.level, -1)
	t.reason = append(t.reason, RefNone)
}

// NumVars returns the number of variables the trail is tracking.
func (t *Trail) NumVars() int {
	return len(t.varVal)
}

// Value returns the current value of a literal, derived from its variable's
// value via XOR-by-sign.
func (t *Trail) Value(l Literal) LBool {
	return t.varVal[l.VarID()].XorSign(!l.IsPositive())
}

// VarValue returns the current value of a variable.
func (t *Trail) VarValue(v int) LBool {
	return t.varVal[v]
}

// Level returns the decision level at which v was assigned. Meaningless if v
// is currently unassigned.
func (t *Trail) Level(v int) int {
	return t.level[v]
}

// Reason returns the clause that propagated v, or RefNone if v was a decision
// or a top-level unit.
func (t *Trail) Reason(v int) ClauseRef {
	return t.reason[v]
}

// DecisionLevel returns the current decision level (0 = root).
func (t *Trail) DecisionLevel() int {
	return len(t.trailLim)
}

// Size returns the number of literals currently on the trail.
func (t *Trail) Size() int {
	return len(t.trail)
}

// At returns the i-th literal assigned on the trail.
func (t *Trail) At(i int) Literal {
	return t.trail[i]
}

// LevelStart returns the trail index at which decision level (i+1) began,
// i.e. trail_lim[i].
func (t *Trail) LevelStart(i int) int {
	return t.trailLim[i]
}

// NewDecisionLevel opens a new decision level.
func (t *Trail) NewDecisionLevel() {
	t.trailLim = append(t.trailLim, len(t.trail))
}

// Assign records lit as true with the given reason (RefNone for a decision or
// a top-level unit). The caller must have already established that lit is
// currently Undef; violating that is an invariant violation, not ordinary
// control flow (conflicting/duplicate assignment is detected by callers via
// Value before ever calling Assign).
func (t *Trail) Assign(lit Literal, reason ClauseRef) error {
	v := lit.VarID()
	if t.varVal[v] != Undef {
		return errors.WithStack(ErrAlreadyAssigned)
	}
	if lit.IsPositive() {
		t.varVal[v] = True
	} else {
		t.varVal[v] = False
	}
	t.level[v] = t.DecisionLevel()
	t.reason[v] = reason
	t.trail = append(t.trail, lit)
	return nil
}

// HasPending reports whether any assigned literal still awaits propagation.
func (t *Trail) HasPending() bool {
	return t.qhead < len(t.trail)
}

// NextPending returns the next literal to propagate and advances qhead.
func (t *Trail) NextPending() Literal {
	l := t.trail[t.qhead]
	t.qhead++
	return l
}

// QHead returns the current propagation cursor.
func (t *Trail) QHead() int {
	return t.qhead
}

// CancelUntil unassigns every variable whose level is greater than level, in
// reverse trail order, resets qhead to the new end of trail, and invokes
// observer for each undone variable so the caller can restore it to the
// branching heap with its polarity saved.
func (t *Trail) CancelUntil(level int, observer UnassignObserver) {
	for t.DecisionLevel() > level {
		start := t.trailLim[len(t.trailLim)-1]
		for i := len(t.trail) - 1; i >= start; i-- {
			lit := t.trail[i]
			v := lit.VarID()
			lastValue := t.varVal[v]
			t.varVal[v] = Undef
			t.level[v] = -1
			t.reason[v] = RefNone
			if observer != nil {
				observer(v, lastValue)
			}
		}
		t.trail = t.trail[:start]
		t.trailLim = t.trailLim[:len(t.trailLim)-1]
	}
	t.qhead = len(t.trail)
}

// ComputeLBD counts the number of distinct decision levels represented among
// lits' variables, ignoring unassigned ones (and level 0, which never adds
// glue). The scratch bitmap is cleared in O(1) and grown lazily.
func (t *Trail) ComputeLBD(lits []Literal) int {
	t.seenLevel.GrowTo(t.DecisionLevel() + 1)
	t.seenLevel.Clear()
	count := 0
	for _, l := range lits {
		lv := t.level[l.VarID()]
		if lv <= 0 {
			continue
		}
		if !t.seenLevel.Contains(lv) {
			t.seenLevel.Add(lv)
			count++
		}
	}
	return count
}

// ApplyRemap rewrites every reason reference through a Reorganize compaction
// map.
func (t *Trail) ApplyRemap(remap map[ClauseRef]ClauseRef) {
	for v, r := range t.reason {
		if r != RefNone {
			t.reason[v] = Remap(remap, r)
		}
	}
}
