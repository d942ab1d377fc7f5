package sat

// Allocator is the single owner of all clause memory. It is an arena indexed
// by ClauseRef offsets: every non-owning reference elsewhere in the solver
// (watch lists, trail reasons) is an integer handle rather than a pointer, so
// that Reorganize can compact the arena and hand back a remap without leaving
// any dangling reference behind.
//
// This is a handle-based arena rather than a byte/word-level bump allocator:
// the invariant the rest of the solver (and its tests) actually depends on is
// "references survive compaction via an explicit remap", which a slice of
// slots provides directly, without resorting to unsafe pointer arithmetic
// over a raw byte region to get there.
type Allocator struct {
	arena []*Clause
	live  int
}

// NewAllocator returns an empty allocator.
func NewAllocator() *Allocator {
	return &Allocator{}
}

// Alloc copies lits into a new clause and returns its reference.
func (a *Allocator) Alloc(lits []Literal, learnt bool) ClauseRef {
	c := &Clause{
		literals: append([]Literal(nil), lits...),
		learnt:   learnt,
		prevPos:  len(lits), // no previous search position yet
	}
	a.arena = append(a.arena, c)
	a.live++
	return ClauseRef(len(a.arena) - 1)
}

// Deref resolves a reference to its clause. The returned pointer is only
// valid until the next Reorganize.
func (a *Allocator) Deref(ref ClauseRef) *Clause {
	return a.arena[ref]
}

// adopt appends a clause that takes ownership of lits directly, without
// copying, and returns its reference. Used by SharedAllocator.BuildGeneration
// to install pooled literal slices without an extra allocation.
func (a *Allocator) adopt(lits []Literal, learnt bool) ClauseRef {
	c := &Clause{
		literals: lits,
		learnt:   learnt,
		prevPos:  len(lits),
	}
	a.arena = append(a.arena, c)
	a.live++
	return ClauseRef(len(a.arena) - 1)
}

// Free tombstones the clause without reclaiming its memory. Reclamation only
// happens during Reorganize.
func (a *Allocator) Free(ref ClauseRef) {
	c := a.arena[ref]
	if c.deleted {
		return
	}
	c.deleted = true
	c.literals = nil
	a.live--
}

// Live returns the number of non-deleted clauses currently in the arena.
func (a *Allocator) Live() int {
	return a.live
}

// Collect returns every live clause reference in allocation order.
func (a *Allocator) Collect() []ClauseRef {
	refs := make([]ClauseRef, 0, a.live)
	for i, c := range a.arena {
		if !c.deleted {
			refs = append(refs, ClauseRef(i))
		}
	}
	return refs
}

// Reorganize compacts the arena into a new contiguous region in allocation
// order, dropping tombstoned clauses, and returns the old-to-new reference
// map so that callers can rewrite every watch list and trail reason in one
// atomic pass. Calling Reorganize twice in a row with no intervening Free
// produces an identical arena layout (the remap is the identity).
func (a *Allocator) Reorganize() map[ClauseRef]ClauseRef {
	remap := make(map[ClauseRef]ClauseRef, a.live)
	newArena := make([]*Clause, 0, a.live)
	for i, c := range a.arena {
		if c.deleted {
			continue
		}
		remap[ClauseRef(i)] = ClauseRef(len(newArena))
		newArena = append(newArena, c)
	}
	a.arena = newArena
	return remap
}

// Remap translates ref through a Reorganize compaction map. RefNone maps to
// itself.
func Remap(remap map[ClauseRef]ClauseRef, ref ClauseRef) ClauseRef {
	if ref == RefNone {
		return RefNone
	}
	newRef, ok := remap[ref]
	if !ok {
		return RefNone
	}
	return newRef
}
