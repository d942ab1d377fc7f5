package sat

import (
	"math/bits"
	"sync"
	"sync/atomic"
)

// Number of literal-slice pools, bucketed by capacity power of two.
const litPoolCount = 4

// litPools holds pools of []Literal with pool i serving requested capacities
// in [2^i, 2^(i+1)-1] (pool 0 also serves 0) and handing out slices of
// capacity 2^(i+1), and the last pool serving everything at or above
// 2^(litPoolCount-1). Shared by every SharedAllocator instance: the pools hold
// no clause-specific state, only reusable backing arrays.
var litPools [litPoolCount]sync.Pool

func init() {
	for i := 0; i < litPoolCount; i++ {
		capa := 1 << (i + 1)
		litPools[i].New = func() any {
			s := make([]Literal, 0, capa)
			return &s
		}
	}
}

func litPoolID(capa int) int {
	lastCapa := 1 << litPoolCount
	if capa >= lastCapa {
		return litPoolCount - 1
	}
	id := bits.Len(uint(capa)) - 1
	if capa < (1 << id) {
		id--
	}
	if id < 0 {
		id = 0
	}
	return id
}

// allocLiteralSlice returns an empty slice with at least the given capacity,
// reused from the pool when possible.
func allocLiteralSlice(capa int) []Literal {
	ref := litPools[litPoolID(capa)].Get().(*[]Literal)
	s := (*ref)[:0]
	if cap(s) < capa {
		s = make([]Literal, 0, capa)
	}
	return s
}

// freeLiteralSlice returns s to its pool for reuse by a future generation.
func freeLiteralSlice(s []Literal) {
	s = s[:0]
	litPools[litPoolID(cap(s))].Put(&s)
}

// SharedAllocator is the optional cross-solver clause allocator: several
// solver instances (each single-threaded internally) can share read access
// to one generation of clause storage while a new generation is being built,
// and swap to it only once every enrolled solver has signaled it holds no
// more references into the old one. It is never wired into Solver; the core
// is complete and correct without it.
//
// The allocator keeps exactly two generations alive at a time. Writers
// always append to the active generation (append-only, never mutated in
// place once published) so readers never observe a torn clause. A
// generation swap is gated by a barrier: every enrolled solver must call
// Ready before the previously active generation is retired.
type SharedAllocator struct {
	gens [2]*Allocator

	active atomic.Int32 // index into gens of the currently-active generation

	enrolled int
	ready    []bool
}

// NewSharedAllocator returns a shared allocator with one empty active
// generation and no enrolled solvers.
func NewSharedAllocator() *SharedAllocator {
	return &SharedAllocator{
		gens: [2]*Allocator{NewAllocator(), NewAllocator()},
	}
}

// Enroll registers a new participant and returns its token, used in
// subsequent calls to Ready. Must only be called before any solver using
// this allocator starts searching.
func (s *SharedAllocator) Enroll() int {
	token := s.enrolled
	s.enrolled++
	s.ready = append(s.ready, false)
	return token
}

// Active returns the currently active generation. Safe to call concurrently
// with Ready and Swap: the returned allocator is never mutated in place,
// only appended to, so a reference obtained here remains valid until the
// generation is retired by a later Swap.
func (s *SharedAllocator) Active() *Allocator {
	return s.gens[s.active.Load()]
}

// Ready marks token as holding no references into the inactive generation.
// Called by an enrolled solver once it has migrated off the old generation
// after observing a Swap.
func (s *SharedAllocator) Ready(token int) {
	s.ready[token] = true
}

// everybodyReady AND-folds the readiness bitmap. Seeded true: an empty (or
// not-yet-enrolled) set of participants is vacuously ready, and the fold
// below narrows it to false the moment any participant is not. Seeding this
// false would make an all-false start a fixed point that AND can never
// raise back to true.
func (s *SharedAllocator) everybodyReady() bool {
	ready := true
	for _, r := range s.ready {
		ready = ready && r
	}
	return ready
}

// Swap reports whether every enrolled participant is ready, and if so,
// publishes next as the new active generation, resets the readiness bitmap,
// and returns the now-retired generation for reuse or disposal. Returns
// (nil, false) if the barrier has not yet been cleared.
func (s *SharedAllocator) Swap(next *Allocator) (*Allocator, bool) {
	if !s.everybodyReady() {
		return nil, false
	}

	oldIdx := s.active.Load()
	newIdx := 1 - oldIdx
	s.gens[newIdx] = next
	s.active.Store(newIdx)

	for i := range s.ready {
		s.ready[i] = false
	}

	return s.gens[oldIdx], true
}

// BuildGeneration returns a fresh Allocator preloaded with a copy of every
// live clause in prev, so the caller can append to it (e.g. clauses newly
// learned since the last swap) before publishing it via Swap. Clause literal
// slices are drawn from the pooled buckets above rather than freshly
// allocated, since generations are produced and retired far more often than
// their total literal count changes.
func (s *SharedAllocator) BuildGeneration(prev *Allocator) *Allocator {
	next := NewAllocator()
	for _, ref := range prev.Collect() {
		c := prev.Deref(ref)
		lits := allocLiteralSlice(len(c.literals))
		lits = append(lits, c.literals...)
		next.adopt(lits, c.learnt)
	}
	return next
}

// Retire returns every live clause's literal slice in old to the pool. Only
// safe to call once every enrolled participant has confirmed (via Ready)
// that it holds no more references into old.
func (s *SharedAllocator) Retire(old *Allocator) {
	for _, ref := range old.Collect() {
		freeLiteralSlice(old.Deref(ref).literals)
	}
}
