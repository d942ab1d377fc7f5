package sat

// Analyzer performs first-UIP conflict analysis, clause minimization, and
// final-conflict analysis under assumptions. It holds only scratch state;
// all persistent solver state (trail, database, allocator) is passed in.
type Analyzer struct {
	seen ResetSet

	learnt []Literal // scratch buffer for the clause under construction

	// Self-subsumption minimization scratch.
	toClear []int // variables stamped during the current minimization pass
	stack   []int

	// lbSizeMinimizingClause bounds binary-clause minimization to clauses no
	// larger than this, per spec default 30.
	lbSizeMinimizingClause int
}

// NewAnalyzer returns an analyzer with the given binary-minimization size
// bound.
func NewAnalyzer(lbSizeMinimizingClause int) *Analyzer {
	return &Analyzer{lbSizeMinimizingClause: lbSizeMinimizingClause}
}

// Grow adds scratch capacity for one freshly created variable.
func (a *Analyzer) Grow() {
	a.seen.Expand()
}

func abstractLevel(trail *Trail, v int) uint64 {
	return 1 << (uint(trail.Level(v)) % 64)
}

// Analyze performs first-UIP resolution starting from the conflicting clause
// confl, followed by two rounds of minimization. Every variable touched
// during resolution is bumped in heuristic, and every learned clause
// consulted as a reason has its activity bumped in db, per the spec's
// "bump everything touched during analysis" policy. Returns the learned
// clause (position 0 is the asserting literal), its LBD, and the backtrack
// level. The learned clause buffer is only valid until the next call to
// Analyze.
func (a *Analyzer) Analyze(trail *Trail, db *Database, heuristic Heuristic, confl ClauseRef) ([]Literal, int, int) {
	a.seen.Clear()
	a.learnt = a.learnt[:0]
	a.learnt = append(a.learnt, LitUndef) // room for the asserting literal

	pathCount := 0
	nextIdx := trail.Size() - 1
	var uipLit Literal = LitUndef

	reasonRef := confl
	resolveVar := -1 // the variable whose reason is being folded in; -1 for the seed conflict

	for {
		reason := db.alloc.Deref(reasonRef)
		if reason.learnt {
			db.BumpActivity(reasonRef)
		}
		for _, q := range reason.literals {
			if q.VarID() == resolveVar {
				continue // the literal this reason propagated, already accounted for
			}
			v := q.VarID()
			if a.seen.Contains(v) {
				continue
			}
			lv := trail.Level(v)
			if lv == 0 {
				continue // permanently false, contributes nothing
			}
			a.seen.Add(v)
			heuristic.BumpActivity(v)
			if lv == trail.DecisionLevel() {
				pathCount++
			} else {
				a.learnt = append(a.learnt, q)
			}
		}

		// Walk the trail backward to the next seen variable.
		var v int
		for {
			lit := trail.At(nextIdx)
			nextIdx--
			v = lit.VarID()
			if a.seen.Contains(v) {
				uipLit = lit
				break
			}
		}
		a.seen.Remove(v)
		pathCount--
		if pathCount <= 0 {
			break
		}
		reasonRef = trail.Reason(v)
		resolveVar = v
	}

	a.learnt[0] = uipLit.Opposite()

	a.minimize(trail, db)
	if len(a.learnt) <= a.lbSizeMinimizingClause {
		a.minimizeWithBinaryResolution(trail, db)
	}

	lbd := trail.ComputeLBD(a.learnt)

	backtrack := 0
	if len(a.learnt) > 1 {
		backtrack = trail.Level(a.learnt[1].VarID())
		maxI := 1
		for i := 2; i < len(a.learnt); i++ {
			if lv := trail.Level(a.learnt[i].VarID()); lv > backtrack {
				backtrack = lv
				maxI = i
			}
		}
		a.learnt[1], a.learnt[maxI] = a.learnt[maxI], a.learnt[1]
	}

	return a.learnt, lbd, backtrack
}

// minimize performs recursive self-subsuming resolution: drops any non-UIP
// literal whose reason is subsumed by the literals already in the learned
// clause (or by level-0 facts), pruning the DFS early via an abstract-levels
// bitmask.
func (a *Analyzer) minimize(trail *Trail, db *Database) {
	var abstract uint64
	for i := 1; i < len(a.learnt); i++ {
		abstract |= abstractLevel(trail, a.learnt[i].VarID())
	}

	out := a.learnt[:1]
	for i := 1; i < len(a.learnt); i++ {
		lit := a.learnt[i]
		if trail.Reason(lit.VarID()) != RefNone && a.litRedundant(trail, db, lit, abstract) {
			continue // redundant, drop it
		}
		out = append(out, lit)
	}
	a.learnt = out
	a.toClear = a.toClear[:0]
}

// litRedundant reports whether lit can be removed from the learned clause:
// every literal in its reason is either already present (transitively) or at
// level 0. Decision literals (reason == RefNone) are never redundant.
func (a *Analyzer) litRedundant(trail *Trail, db *Database, lit Literal, abstract uint64) bool {
	top := len(a.toClear)
	a.stack = a.stack[:0]
	a.stack = append(a.stack, lit.VarID())

	for len(a.stack) > 0 {
		v := a.stack[len(a.stack)-1]
		a.stack = a.stack[:len(a.stack)-1]

		ref := trail.Reason(v)
		reason := db.alloc.Deref(ref)

		for _, imp := range reason.literals {
			iv := imp.VarID()
			if iv == v {
				continue // the literal this reason propagated, already accounted for
			}
			if a.seen.Contains(iv) || trail.Level(iv) == 0 {
				continue
			}
			if trail.Reason(iv) != RefNone && (abstractLevel(trail, iv)&abstract) != 0 {
				a.seen.Add(iv)
				a.stack = append(a.stack, iv)
				a.toClear = append(a.toClear, iv)
			} else {
				for _, cleared := range a.toClear[top:] {
					a.seen.Remove(cleared)
				}
				a.toClear = a.toClear[:top]
				return false
			}
		}
	}

	return true
}

// minimizeWithBinaryResolution removes, from the already-minimized learned
// clause, every literal whose variable is satisfied by a binary implication
// of the negated asserting literal.
func (a *Analyzer) minimizeWithBinaryResolution(trail *Trail, db *Database) {
	a.seen.Clear()

	minimize := false
	for _, bw := range db.BinaryWatchers(a.learnt[0].Opposite()) {
		if trail.Value(bw.blocker) == True {
			minimize = true
			a.seen.Add(bw.blocker.VarID())
		}
	}
	if !minimize {
		return
	}

	out := a.learnt[:1]
	for i := 1; i < len(a.learnt); i++ {
		if !a.seen.Contains(a.learnt[i].VarID()) {
			out = append(out, a.learnt[i])
		}
	}
	a.learnt = out
}

// AnalyzeFinal produces, on UNSAT under assumptions, the subset of
// assumption literals whose negations suffice to explain falsity of p (the
// assumption literal found to be already false, or the conflicting clause's
// negation when the top level itself conflicts).
func (a *Analyzer) AnalyzeFinal(trail *Trail, db *Database, p Literal) []Literal {
	out := []Literal{p}
	if trail.DecisionLevel() == 0 {
		return out
	}

	a.seen.Clear()
	a.seen.Add(p.VarID())

	for i := trail.Size() - 1; i >= trail.LevelStart(0); i-- {
		lit := trail.At(i)
		v := lit.VarID()
		if !a.seen.Contains(v) {
			continue
		}
		if ref := trail.Reason(v); ref == RefNone {
			out = append(out, lit)
		} else {
			for _, l := range db.alloc.Deref(ref).literals {
				if trail.Level(l.VarID()) > 0 {
					a.seen.Add(l.VarID())
				}
			}
		}
		a.seen.Remove(v)
	}

	return out
}
