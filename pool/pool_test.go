package pool

import (
	"sync"
	"testing"

	"profiler/block"
)

func TestNew_ReservesSentinelSlot(t *testing.T) {
	p := New(4)
	if p.Cap() != 5 {
		t.Errorf("Cap() = %d, want 5 (4 usable + sentinel)", p.Cap())
	}
	if p.FreeCount() != 4 {
		t.Errorf("FreeCount() = %d, want 4", p.FreeCount())
	}
}

func TestAllocate_NeverReturnsSlotZero(t *testing.T) {
	p := New(8)
	for i := 0; i < 8; i++ {
		slot, ok := p.Allocate()
		if !ok {
			t.Fatalf("allocation %d failed unexpectedly", i)
		}
		if slot == 0 {
			t.Fatal("Allocate returned the reserved sentinel slot")
		}
	}
}

func TestAllocate_ZeroesReturnedBlock(t *testing.T) {
	p := New(2)
	slot, ok := p.Allocate()
	if !ok {
		t.Fatal("allocate failed")
	}
	b := p.Get(slot)
	b.ID = 42
	b.Child = 7
	p.Free(slot, slot)

	slot2, ok := p.Allocate()
	if !ok {
		t.Fatal("second allocate failed")
	}
	if got := p.Get(slot2); got.ID != 0 || got.Child != 0 {
		t.Errorf("reused slot not zeroed: %+v", got)
	}
}

func TestAllocate_ExhaustionReturnsFalse(t *testing.T) {
	p := New(2)
	for i := 0; i < 2; i++ {
		if _, ok := p.Allocate(); !ok {
			t.Fatalf("allocation %d should have succeeded", i)
		}
	}
	if _, ok := p.Allocate(); ok {
		t.Error("expected exhaustion, got a successful allocation")
	}
}

func TestFreeThenAllocate_RoundTripsSlot(t *testing.T) {
	p := New(1)
	slot, ok := p.Allocate()
	if !ok {
		t.Fatal("allocate failed")
	}
	p.Free(slot, slot)
	if p.FreeCount() != 1 {
		t.Errorf("FreeCount() after free = %d, want 1", p.FreeCount())
	}
	got, ok := p.Allocate()
	if !ok || got != slot {
		t.Errorf("got slot %d ok=%v, want %d true", got, ok, slot)
	}
}

func TestFree_ChainOfMultipleSlotsAllReturned(t *testing.T) {
	p := New(4)
	a, _ := p.Allocate()
	b, _ := p.Allocate()
	c, _ := p.Allocate()

	// Thread a->b->c through Child, matching how the drain worker frees an
	// entire flattened tree chain in one call.
	p.Get(a).Child = b
	p.Get(b).Child = c

	p.Free(a, c)
	if got := p.FreeCount(); got != 4 {
		t.Errorf("FreeCount() = %d, want 4 after freeing the whole chain", got)
	}
}

func TestAllocateFree_ConcurrentNeverDuplicatesOrLosesSlots(t *testing.T) {
	const n = 64
	p := New(n)

	var wg sync.WaitGroup
	results := make(chan block.Slot, n*4)
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < n/2; i++ {
				slot, ok := p.Allocate()
				if ok {
					results <- slot
					p.Free(slot, slot)
				}
			}
		}()
	}
	wg.Wait()
	close(results)

	count := 0
	for range results {
		count++
	}
	if count == 0 {
		t.Error("expected at least some successful allocations")
	}
	if got := p.FreeCount(); got != n {
		t.Errorf("FreeCount() after concurrent churn = %d, want %d (no slot lost or duplicated)", got, n)
	}
}
