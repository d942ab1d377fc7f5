package sat

// binaryWatcher is registered for a size-2 clause: the watch fires without
// ever touching the clause body, using blocker as the clause's other literal.
type binaryWatcher struct {
	clause  ClauseRef
	blocker Literal
}

// longWatcher is registered for a clause of size >= 3 (size-2 clauses only
// ever get binaryWatchers). blocker is a literal believed likely true, used
// as a fast-path check before inspecting the clause body.
type longWatcher struct {
	clause  ClauseRef
	blocker Literal
}

// Watches holds the two-watched-literal index: a per-literal list of binary
// watchers and a per-literal list of long watchers.
type Watches struct {
	binary [][]binaryWatcher
	long   [][]longWatcher
}

// NewWatches returns an empty watch index.
func NewWatches() *Watches {
	return &Watches{}
}

// Grow adds watch-list slots for one freshly created variable (two literals).
func (w *Watches) Grow() {
	w.binary = append(w.binary, nil, nil)
	w.long = append(w.long, nil, nil)
}

// Attach registers a clause's watches. Requires size >= 2. Size-2 clauses get
// binary watchers on each literal; longer clauses get long watchers on
// ~clause[0] and ~clause[1], as required by invariant I1.
func (w *Watches) Attach(alloc *Allocator, ref ClauseRef) {
	c := alloc.Deref(ref)
	l0, l1 := c.literals[0], c.literals[1]
	if c.Size() == 2 {
		w.binary[l0.Opposite()] = append(w.binary[l0.Opposite()], binaryWatcher{ref, l1})
		w.binary[l1.Opposite()] = append(w.binary[l1.Opposite()], binaryWatcher{ref, l0})
		return
	}
	w.long[l0.Opposite()] = append(w.long[l0.Opposite()], longWatcher{ref, l1})
	w.long[l1.Opposite()] = append(w.long[l1.Opposite()], longWatcher{ref, l0})
}

// Detach removes a clause's watches prior to it being freed.
func (w *Watches) Detach(alloc *Allocator, ref ClauseRef) {
	c := alloc.Deref(ref)
	l0, l1 := c.literals[0], c.literals[1]
	if c.Size() == 2 {
		w.removeBinary(l0.Opposite(), ref)
		w.removeBinary(l1.Opposite(), ref)
		return
	}
	w.removeLong(l0.Opposite(), ref)
	w.removeLong(l1.Opposite(), ref)
}

func (w *Watches) removeBinary(at Literal, ref ClauseRef) {
	lst := w.binary[at]
	for i, bw := range lst {
		if bw.clause == ref {
			lst[i] = lst[len(lst)-1]
			w.binary[at] = lst[:len(lst)-1]
			return
		}
	}
}

func (w *Watches) removeLong(at Literal, ref ClauseRef) {
	lst := w.long[at]
	for i, lw := range lst {
		if lw.clause == ref {
			lst[i] = lst[len(lst)-1]
			w.long[at] = lst[:len(lst)-1]
			return
		}
	}
}

// BinaryWatchers returns the binary watchers registered for lit, used by
// conflict-clause minimization to find literals already satisfied by a
// binary implication of the asserting literal's negation.
func (w *Watches) BinaryWatchers(lit Literal) []binaryWatcher {
	return w.binary[lit]
}

// RebuildAll discards and reconstructs every watch list from scratch, used
// after Allocator.Reorganize (whose remap renders old list contents stale)
// and after clause simplification has shrunk clauses in place.
func (w *Watches) RebuildAll(alloc *Allocator, refs []ClauseRef) {
	for i := range w.binary {
		w.binary[i] = w.binary[i][:0]
		w.long[i] = w.long[i][:0]
	}
	for _, ref := range refs {
		w.Attach(alloc, ref)
	}
}

// Propagate drains the trail's propagation queue. Binary clauses for a
// literal are always examined before long clauses for that literal. Returns
// the conflicting clause, or RefNone if propagation reached quiescence.
func (w *Watches) Propagate(trail *Trail, alloc *Allocator) ClauseRef {
	for trail.HasPending() {
		p := trail.NextPending()

		// Binary fast path: never touches the clause body.
		for _, bw := range w.binary[p] {
			switch trail.Value(bw.blocker) {
			case False:
				return bw.clause
			case Undef:
				if err := trail.Assign(bw.blocker, bw.clause); err != nil {
					return bw.clause
				}
			}
		}

		if conflict := w.propagateLong(trail, alloc, p); conflict != RefNone {
			return conflict
		}
	}
	return RefNone
}

func (w *Watches) propagateLong(trail *Trail, alloc *Allocator, p Literal) ClauseRef {
	lst := w.long[p]
	write := 0

	for i := 0; i < len(lst); i++ {
		wc := lst[i]
		c := alloc.Deref(wc.clause)

		if trail.Value(wc.blocker) == True {
			lst[write] = wc
			write++
			continue
		}

		// Arrange so that literals[1] is the literal that just became false
		// (the OPEN QUESTION fix: a real swap, not a no-op).
		opp := p.Opposite()
		if c.literals[0] == opp {
			c.swap(0, 1)
		}
		other := c.literals[0]

		if trail.Value(other) == True {
			// Clause satisfied via the other watch; update the blocker.
			lst[write] = longWatcher{wc.clause, other}
			write++
			continue
		}

		// Look for a new literal to watch, resuming from the previous
		// search position to avoid rescanning long clauses from scratch.
		start := c.prevPos
		if start < 2 || start >= len(c.literals) {
			start = 2
		}
		found := -1
		for k := start; k < len(c.literals); k++ {
			if trail.Value(c.literals[k]) != False {
				found = k
				break
			}
		}
		if found == -1 {
			for k := 2; k < start; k++ {
				if trail.Value(c.literals[k]) != False {
					found = k
					break
				}
			}
		}

		if found != -1 {
			c.literals[1], c.literals[found] = c.literals[found], c.literals[1]
			c.prevPos = found
			newWatch := c.literals[1].Opposite()
			w.long[newWatch] = append(w.long[newWatch], longWatcher{wc.clause, other})
			continue // moved to another list; do not keep in this one
		}

		// No replacement: the clause is unit on `other`, or conflicting.
		lst[write] = wc
		write++

		if trail.Value(other) == False {
			// Conflict: preserve the remaining unscanned watchers.
			for j := i + 1; j < len(lst); j++ {
				lst[write] = lst[j]
				write++
			}
			w.long[p] = lst[:write]
			return wc.clause
		}

		if err := trail.Assign(other, wc.clause); err != nil {
			w.long[p] = lst[:write]
			return wc.clause
		}
	}

	w.long[p] = lst[:write]
	return RefNone
}
