package scope

import (
	"sync"
	"testing"

	"profiler/block"
	"profiler/internal/gid"
	"profiler/internal/hostclock"
	"profiler/internal/hwcore"
	"profiler/pool"
	"profiler/rootchain"
)

func newTestTracker(t *testing.T) *Tracker {
	t.Helper()
	p := pool.New(64)
	c := rootchain.New(p)
	return NewTracker(p, c)
}

func withFixedClock(t *testing.T, ticks ...int64) {
	t.Helper()
	origNow := hostclock.Now
	i := 0
	hostclock.Now = func() int64 {
		if i < len(ticks) {
			v := ticks[i]
			i++
			return v
		}
		return ticks[len(ticks)-1]
	}
	t.Cleanup(func() { hostclock.Now = origNow })
}

func withFixedCore(t *testing.T, core uint32) {
	t.Helper()
	orig := hwcore.Current
	hwcore.Current = func() uint32 { return core }
	t.Cleanup(func() { hwcore.Current = orig })
}

func TestBegin_RootPublishesOnEnd(t *testing.T) {
	tr := newTestTracker(t)
	withFixedCore(t, 0)

	tr.Begin("outer")
	tr.End()

	if tr.chain.Empty() {
		t.Fatal("expected a root block on the chain after End")
	}
	head := tr.chain.Detach()
	if head == 0 {
		t.Fatal("detached empty head")
	}
	root := tr.pool.Get(head)
	if root.NameString() != "outer" {
		t.Errorf("got name %q, want outer", root.NameString())
	}
	if root.Sibling != 0 {
		t.Error("a lone published root must have no sibling")
	}
}

func TestBeginEnd_Nesting(t *testing.T) {
	tr := newTestTracker(t)
	withFixedCore(t, 0)

	tr.Begin("outer")
	tr.Begin("inner")
	tr.End() // inner
	tr.End() // outer

	head := tr.chain.Detach()
	root := tr.pool.Get(head)
	if root.NameString() != "outer" {
		t.Fatalf("got %q, want outer", root.NameString())
	}
	if root.Child == 0 {
		t.Fatal("outer should have inner as a child")
	}
	child := tr.pool.Get(root.Child)
	if child.NameString() != "inner" {
		t.Errorf("got %q, want inner", child.NameString())
	}
	if child.ParentID != root.ID {
		t.Errorf("child ParentID %d != root ID %d", child.ParentID, root.ID)
	}
}

func TestBeginEnd_Siblings(t *testing.T) {
	tr := newTestTracker(t)
	withFixedCore(t, 0)

	tr.Begin("outer")
	tr.Begin("first")
	tr.End()
	tr.Begin("second")
	tr.End()
	tr.End()

	head := tr.chain.Detach()
	root := tr.pool.Get(head)

	// Most recently opened child is the head of the child list.
	first := tr.pool.Get(root.Child)
	if first.NameString() != "second" {
		t.Fatalf("expected second to be head child, got %q", first.NameString())
	}
	if first.Sibling == 0 {
		t.Fatal("expected a sibling")
	}
	sib := tr.pool.Get(first.Sibling)
	if sib.NameString() != "first" {
		t.Errorf("expected first as sibling, got %q", sib.NameString())
	}
}

func TestUpdate_NoMigrationIsNoop(t *testing.T) {
	tr := newTestTracker(t)
	withFixedCore(t, 1)

	tr.Begin("loop")
	tr.Update()
	tr.End()

	head := tr.chain.Detach()
	root := tr.pool.Get(head)
	if root.Child != 0 {
		t.Error("Update without a core change must not split the block")
	}
}

func TestUpdate_MigrationSplitsBlock(t *testing.T) {
	tr := newTestTracker(t)

	// "outer" opens and stays on core 1 throughout, so closing either
	// half of the "loop" split never cascades into splitting outer too.
	withFixedCore(t, 1)
	tr.Begin("outer")

	hwcore.Current = func() uint32 { return 0 }
	tr.Begin("loop")

	// Simulate the goroutine's OS thread migrating back to outer's core.
	hwcore.Current = func() uint32 { return 1 }
	tr.Update()
	tr.End() // closes the reopened second half of loop
	tr.End() // closes outer

	head := tr.chain.Detach()
	root := tr.pool.Get(head)
	if root.NameString() != "outer" {
		t.Fatalf("got %q, want outer", root.NameString())
	}
	if root.Child == 0 {
		t.Fatal("expected loop's two split halves as children of outer")
	}
	first := tr.pool.Get(root.Child)
	if first.Sibling == 0 {
		t.Fatal("migration split should leave two sibling halves, got one")
	}
	second := tr.pool.Get(first.Sibling)

	if first.NameString() != "loop" || second.NameString() != "loop" {
		t.Fatalf("both halves should keep the name loop, got %q and %q",
			first.NameString(), second.NameString())
	}
	processors := map[uint32]bool{first.Processor: true, second.Processor: true}
	if !processors[0] || !processors[1] {
		t.Errorf("expected one half on processor 0 and one on processor 1, got %d and %d",
			first.Processor, second.Processor)
	}
}

func TestEnd_MigrationSplitsEnclosingParent(t *testing.T) {
	tr := newTestTracker(t)
	withFixedCore(t, 0)

	tr.Begin("outer")
	tr.Begin("inner")

	// The enclosing "outer" scope's thread migrated while "inner" was open.
	// Ending inner discovers the migration and splits outer in two: the
	// first half (holding inner as its child) publishes immediately since
	// it was itself a root; the second half reopens as a fresh, empty root
	// under the new core and is still the calling goroutine's current scope.
	hwcore.Current = func() uint32 { return 1 }
	tr.End()

	// Closing the reopened second half publishes it too, as a sibling of
	// the first half on the root chain.
	tr.End()

	head := tr.chain.Detach()
	if head == 0 {
		t.Fatal("expected published roots after closing the split outer scope")
	}
	headBlock := tr.pool.Get(head)
	if headBlock.Sibling == 0 {
		t.Fatal("expected two sibling roots from the split, got one")
	}
	other := tr.pool.Get(headBlock.Sibling)

	withChild, empty := headBlock, other
	if withChild.Child == 0 {
		withChild, empty = other, headBlock
	}
	if withChild.NameString() != "outer" || empty.NameString() != "outer" {
		t.Fatalf("both split halves should be named outer, got %q and %q",
			withChild.NameString(), empty.NameString())
	}
	if withChild.Child == 0 {
		t.Fatal("one half of the split should still hold inner as its child")
	}
	if empty.Child != 0 {
		t.Fatal("the other half should have no children")
	}
	innerBlock := tr.pool.Get(withChild.Child)
	if innerBlock.NameString() != "inner" {
		t.Errorf("got %q, want inner", innerBlock.NameString())
	}
}

func TestEndFrame_AttachesAsPeerNotCurrent(t *testing.T) {
	tr := newTestTracker(t)
	withFixedCore(t, 0)

	tr.Begin("outer")
	tr.EndFrame(42)

	// EndFrame must not have become current: ending "outer" now should
	// publish a root whose child is the frame marker, not get confused.
	tr.End()

	head := tr.chain.Detach()
	root := tr.pool.Get(head)
	if root.Child == 0 {
		t.Fatal("expected the frame marker as a child of outer")
	}
	marker := tr.pool.Get(root.Child)
	if marker.ID != block.IDEndFrame {
		t.Errorf("got id %d, want IDEndFrame", marker.ID)
	}
	if marker.End != 42 {
		t.Errorf("got counter %d, want 42", marker.End)
	}
}

func TestDetachCurrentThread_ClosesEverything(t *testing.T) {
	tr := newTestTracker(t)
	withFixedCore(t, 0)

	tr.Begin("a")
	tr.Begin("b")
	tr.Begin("c")

	tr.DetachCurrentThread()

	id := gid.Current()
	s := tr.stateFor(id)
	if s.current != 0 {
		t.Error("DetachCurrentThread should leave no open block")
	}
	if tr.chain.Empty() {
		t.Error("the fully-closed tree should have reached the root chain")
	}
}

func TestStateFor_PerGoroutineIsolation(t *testing.T) {
	tr := newTestTracker(t)
	withFixedCore(t, 0)

	var wg sync.WaitGroup
	results := make([]string, 4)
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			tr.Begin("goroutine-local")
			tr.End()
			results[i] = "done"
		}(i)
	}
	wg.Wait()

	for i, r := range results {
		if r != "done" {
			t.Errorf("goroutine %d did not complete", i)
		}
	}
}

func TestBegin_DropsSilentlyOnExhaustion(t *testing.T) {
	p := pool.New(1) // sentinel + exactly one usable slot
	c := rootchain.New(p)
	tr := NewTracker(p, c)
	withFixedCore(t, 0)

	tr.Begin("first")
	tr.Begin("second") // pool exhausted, must not panic

	tr.End()
	tr.End()
}
