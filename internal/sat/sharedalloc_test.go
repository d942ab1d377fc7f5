package sat

import "testing"

func TestSharedAllocator_ActiveStartsEmpty(t *testing.T) {
	s := NewSharedAllocator()
	if got := s.Active(); got == nil || got.live != 0 {
		t.Errorf("Active() = %#v, want a fresh empty allocator", got)
	}
}

func TestSharedAllocator_SwapBlockedUntilEveryoneReady(t *testing.T) {
	s := NewSharedAllocator()
	a := s.Enroll()
	b := s.Enroll()

	if _, ok := s.Swap(NewAllocator()); ok {
		t.Fatalf("Swap succeeded with no participant ready")
	}

	s.Ready(a)
	if _, ok := s.Swap(NewAllocator()); ok {
		t.Fatalf("Swap succeeded with only one of two participants ready")
	}

	s.Ready(b)
	next := NewAllocator()
	old, ok := s.Swap(next)
	if !ok {
		t.Fatalf("Swap failed once every participant was ready")
	}
	if old == nil {
		t.Fatalf("Swap returned a nil retired generation")
	}
	if s.Active() != next {
		t.Errorf("Active() = %p, want %p", s.Active(), next)
	}
}

func TestSharedAllocator_ReadyResetsAfterSwap(t *testing.T) {
	s := NewSharedAllocator()
	a := s.Enroll()
	s.Ready(a)

	if _, ok := s.Swap(NewAllocator()); !ok {
		t.Fatalf("Swap failed with the sole participant ready")
	}
	if _, ok := s.Swap(NewAllocator()); ok {
		t.Fatalf("Swap succeeded immediately after a swap reset readiness")
	}
}

func TestSharedAllocator_EverybodyReadyVacuouslyTrueWithNoParticipants(t *testing.T) {
	s := NewSharedAllocator()
	if !s.everybodyReady() {
		t.Errorf("everybodyReady() = false with zero enrolled participants, want true")
	}
}

func TestSharedAllocator_BuildGenerationCopiesLiveClauses(t *testing.T) {
	s := NewSharedAllocator()
	prev := NewAllocator()
	r1 := prev.Alloc(litsFromInts(1, 2, 3), false)
	prev.Alloc(litsFromInts(-1, 2), true)
	prev.Free(r1) // only the second clause should survive the copy

	next := s.BuildGeneration(prev)

	if got := len(next.Collect()); got != 1 {
		t.Fatalf("BuildGeneration copied %d live clauses, want 1", got)
	}
	got := next.Deref(next.Collect()[0]).literals
	want := litsFromInts(-1, 2)
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("copied clause = %v, want %v", got, want)
	}
}

func TestSharedAllocator_LitPoolIDMonotonic(t *testing.T) {
	for capa := 1; capa <= 1024; capa *= 2 {
		id := litPoolID(capa)
		if id < 0 || id >= litPoolCount {
			t.Fatalf("litPoolID(%d) = %d, out of range [0,%d)", capa, id, litPoolCount)
		}
	}
	if litPoolID(1) > litPoolID(1000) {
		t.Errorf("litPoolID should be non-decreasing in capacity")
	}
}
