package sat

import "sort"

// Database owns the lifecycle of clauses on top of an Allocator: creation,
// logical removal, strengthening, persisting, LBD-based reduction of learned
// clauses, and periodic reorganization (compaction).
type Database struct {
	alloc   *Allocator
	watches *Watches
	cert    CertificateSink

	constraints []ClauseRef // problem clauses
	learnts     []ClauseRef // learned clauses

	clauseInc   float64
	clauseDecay float64
}

// NewDatabase returns a database backed by alloc/watches, recording every
// clause lifecycle event to cert.
func NewDatabase(alloc *Allocator, watches *Watches, cert CertificateSink, clauseDecay float64) *Database {
	if cert == nil {
		cert = NopSink{}
	}
	return &Database{
		alloc:       alloc,
		watches:     watches,
		cert:        cert,
		clauseInc:   1,
		clauseDecay: clauseDecay,
	}
}

// NumConstraints returns the number of problem clauses.
func (db *Database) NumConstraints() int { return len(db.constraints) }

// NumLearnts returns the number of learned clauses currently tracked.
func (db *Database) NumLearnts() int { return len(db.learnts) }

// Constraints returns the problem clause references.
func (db *Database) Constraints() []ClauseRef { return db.constraints }

// Learnts returns the learned clause references.
func (db *Database) Learnts() []ClauseRef { return db.learnts }

// NewClause constructs a clause from tmp, which this call may reorder
// in-place. If !learnt, it also simplifies against the root-level assignment,
// drops tautologies, and deduplicates literals.
//
// Returns (ref, ok). ok is false only when the clause is unconditionally
// falsified (empty after simplification): the caller must treat this as
// UNSAT. A unit clause is resolved immediately via trail.Assign and does not
// allocate; ref is RefNone in that case (and in the tautology/already-true
// case).
func (db *Database) NewClause(trail *Trail, tmp []Literal, learnt bool) (ClauseRef, bool) {
	size := len(tmp)

	if !learnt {
		seen := make(map[Literal]struct{}, size)
		for i := size - 1; i >= 0; i-- {
			if _, ok := seen[tmp[i].Opposite()]; ok {
				return RefNone, true // tautology
			}
			if _, ok := seen[tmp[i]]; ok {
				size--
				tmp[i], tmp[size] = tmp[size], tmp[i]
				continue
			}
			seen[tmp[i]] = struct{}{}

			switch trail.Value(tmp[i]) {
			case True:
				return RefNone, true // satisfied at level 0
			case False:
				size--
				tmp[i], tmp[size] = tmp[size], tmp[i]
			}
		}
		tmp = tmp[:size]
	}

	switch size {
	case 0:
		return RefNone, false
	case 1:
		if trail.Value(tmp[0]) == False {
			return RefNone, false
		}
		if trail.Value(tmp[0]) == True {
			return RefNone, true
		}
		db.cert.Added(tmp[:1])
		_ = trail.Assign(tmp[0], RefNone)
		return RefNone, true
	default:
		ref := db.alloc.Alloc(tmp, learnt)
		c := db.alloc.Deref(ref)

		if learnt {
			maxLevel, wl := -1, -1
			for i, lit := range c.literals {
				if lv := trail.Level(lit.VarID()); lv > maxLevel {
					maxLevel, wl = lv, i
				}
			}
			c.swap(1, wl)
		}

		db.watches.Attach(db.alloc, ref)
		if learnt {
			db.learnts = append(db.learnts, ref)
		} else {
			db.constraints = append(db.constraints, ref)
		}
		db.cert.Added(c.literals)
		return ref, true
	}
}

// RemoveClause logically removes a clause: tombstones it in the allocator,
// detaches its watches, and records a DRAT removal.
func (db *Database) RemoveClause(ref ClauseRef) {
	c := db.alloc.Deref(ref)
	removed := append([]Literal(nil), c.literals...)
	db.watches.Detach(db.alloc, ref)
	db.cert.Removed(removed)
	db.alloc.Free(ref)
}

// locked reports whether ref is currently the reason for an assignment, and
// so must not be removed.
func (db *Database) locked(trail *Trail, ref ClauseRef) bool {
	c := db.alloc.Deref(ref)
	if c.deleted {
		return false
	}
	v := c.literals[0].VarID()
	return trail.VarValue(v) != Undef && trail.Reason(v) == ref
}

// Strengthen replaces clause ref with a copy omitting lit (new LBD =
// min(old, newSize-1)) and removes ref. The replacement is re-attached to the
// watch lists by NewClause, satisfying the "callers must re-attach" rule from
// the spec by construction.
func (db *Database) Strengthen(trail *Trail, ref ClauseRef, lit Literal) ClauseRef {
	c := db.alloc.Deref(ref)
	lits := make([]Literal, 0, len(c.literals)-1)
	for _, l := range c.literals {
		if l != lit {
			lits = append(lits, l)
		}
	}
	newLBD := c.LBD()
	if n := len(lits) - 1; n < newLBD {
		newLBD = n
	}
	learnt := c.learnt
	wasLearnt := db.isTrackedLearnt(ref)

	newRef, ok := db.NewClause(trail, lits, learnt)
	db.RemoveClause(ref)
	if wasLearnt {
		db.removeFromLearnts(ref)
	} else {
		db.removeFromConstraints(ref)
	}
	if ok && newRef != RefNone {
		db.alloc.Deref(newRef).SetLBD(newLBD)
	}
	return newRef
}

// Persist creates a permanent (LBD-0) copy of a learned clause so it survives
// every future Reduce, and removes the original.
func (db *Database) Persist(trail *Trail, ref ClauseRef) ClauseRef {
	c := db.alloc.Deref(ref)
	lits := append([]Literal(nil), c.literals...)
	newRef, ok := db.NewClause(trail, lits, true)
	db.RemoveClause(ref)
	db.removeFromLearnts(ref)
	if ok && newRef != RefNone {
		db.alloc.Deref(newRef).SetLBD(0)
	}
	return newRef
}

func (db *Database) isTrackedLearnt(ref ClauseRef) bool {
	for _, r := range db.learnts {
		if r == ref {
			return true
		}
	}
	return false
}

func (db *Database) removeFromLearnts(ref ClauseRef) {
	for i, r := range db.learnts {
		if r == ref {
			db.learnts[i] = db.learnts[len(db.learnts)-1]
			db.learnts = db.learnts[:len(db.learnts)-1]
			return
		}
	}
}

func (db *Database) removeFromConstraints(ref ClauseRef) {
	for i, r := range db.constraints {
		if r == ref {
			db.constraints[i] = db.constraints[len(db.constraints)-1]
			db.constraints = db.constraints[:len(db.constraints)-1]
			return
		}
	}
}

// BumpActivity increases a clause's ranking score, rescaling every learned
// clause's activity if it would overflow.
func (db *Database) BumpActivity(ref ClauseRef) {
	c := db.alloc.Deref(ref)
	c.activity += db.clauseInc
	if c.activity > 1e100 {
		db.clauseInc *= 1e-100
		for _, r := range db.learnts {
			db.alloc.Deref(r).activity *= 1e-100
		}
	}
}

// DecayActivity ages the clause activity increment.
func (db *Database) DecayActivity() {
	db.clauseInc /= db.clauseDecay
}

// Reduce removes the lower-quality half of learned clauses with LBD above
// persistentLBD, ranked by LBD ascending. Safe to call at any decision
// level: locked checks the trail directly, so a clause currently serving as
// a reason is never removed regardless of level.
func (db *Database) Reduce(trail *Trail, persistentLBD int, keepMedianLBD bool) int {
	candidates := make([]ClauseRef, 0, len(db.learnts))
	for _, ref := range db.learnts {
		if db.alloc.Deref(ref).LBD() > persistentLBD {
			candidates = append(candidates, ref)
		}
	}
	sort.Slice(candidates, func(i, j int) bool {
		return db.alloc.Deref(candidates[i]).LBD() < db.alloc.Deref(candidates[j]).LBD()
	})

	if len(candidates) <= 1 {
		return 0
	}

	cut := len(candidates) / 2
	if keepMedianLBD {
		medianLBD := db.alloc.Deref(candidates[cut]).LBD()
		for cut < len(candidates) && db.alloc.Deref(candidates[cut]).LBD() == medianLBD {
			cut++
		}
	}

	removed := 0
	for _, ref := range candidates[cut:] {
		c := db.alloc.Deref(ref)
		if c.IsProtected() || db.locked(trail, ref) {
			continue
		}
		db.RemoveClause(ref)
		removed++
	}

	j := 0
	for _, ref := range db.learnts {
		if !db.alloc.Deref(ref).deleted {
			db.learnts[j] = ref
			j++
		}
	}
	db.learnts = db.learnts[:j]

	return removed
}

// Simplify drops every clause (problem or learned) satisfied at the root
// level, shrinking the others by removing their root-falsified literals, and
// then rebuilds every watch list from the remaining clauses. Must only be
// called at decision level 0, once propagation has reached quiescence.
func (db *Database) Simplify(trail *Trail) {
	db.simplifyList(trail, &db.constraints)
	db.simplifyList(trail, &db.learnts)

	all := make([]ClauseRef, 0, len(db.constraints)+len(db.learnts))
	all = append(all, db.constraints...)
	all = append(all, db.learnts...)
	db.watches.RebuildAll(db.alloc, all)
}

func (db *Database) simplifyList(trail *Trail, refs *[]ClauseRef) {
	list := *refs
	j := 0
	for _, ref := range list {
		c := db.alloc.Deref(ref)
		satisfied := false
		k := 0
		for _, l := range c.literals {
			v := trail.Value(l)
			if v == True {
				satisfied = true
			}
			if v != False {
				c.literals[k] = l
				k++
			}
		}
		if satisfied {
			db.RemoveClause(ref)
			continue
		}
		c.literals = c.literals[:k]
		if c.prevPos > k {
			c.prevPos = k
		}
		if int(c.lbd) > k {
			c.lbd = int32(k)
		}
		list[j] = ref
		j++
	}
	*refs = list[:j]
}

// Reorganize compacts the allocator and rewrites every reference that would
// otherwise dangle: the constraint/learnt lists, the watch lists (rebuilt
// from the compacted clauses), and the trail's reason links.
func (db *Database) Reorganize(trail *Trail) {
	remap := db.alloc.Reorganize()
	for i, ref := range db.constraints {
		db.constraints[i] = Remap(remap, ref)
	}
	for i, ref := range db.learnts {
		db.learnts[i] = Remap(remap, ref)
	}
	trail.ApplyRemap(remap)

	all := make([]ClauseRef, 0, len(db.constraints)+len(db.learnts))
	all = append(all, db.constraints...)
	all = append(all, db.learnts...)
	db.watches.RebuildAll(db.alloc, all)
}

// BinaryWatchers exposes the binary-watcher lookup used by conflict-clause
// minimization.
func (db *Database) BinaryWatchers(lit Literal) []binaryWatcher {
	return db.watches.BinaryWatchers(lit)
}
