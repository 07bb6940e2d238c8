// ─────────────────────────────────────────────────────────────────────────────
// [Filename]: scope.go — per-goroutine open-block scope stack
//
// Purpose:
//   - Implements Begin/End/Update/EndFrame and the message-block helpers
//     (Log/TryLock/Lock/Unlock/Wait/Signal) against a per-goroutine "current
//     open block" index, exactly mirroring the allocate/link/walk-parent
//     algorithms of the C block profiler this module generalizes.
//   - Go has no stack-local "current block" variable shared implicitly
//     across a thread's calls the way the original does, so the Tracker
//     keys state off the calling goroutine's id (internal/gid) in a
//     sync.Map instead.
//
// Notes:
//   - Only one open-block chain exists per goroutine at a time; nesting
//     depth is bounded only by pool capacity. Concurrent Begin/End from the
//     same goroutine (e.g. from a signal handler) is not supported, mirroring
//     the original's single-threaded-per-thread-local assumption.
// ─────────────────────────────────────────────────────────────────────────────

package scope

import (
	"runtime"
	"sync"
	"sync/atomic"

	"profiler/block"
	"profiler/debug"
	"profiler/internal/gid"
	"profiler/internal/hostclock"
	"profiler/internal/hwcore"
	"profiler/pool"
	"profiler/rootchain"
)

// state is the per-goroutine open-block cursor. Kept tiny and allocation-free
// to create: one uint16 plus map bookkeeping.
type state struct {
	current block.Slot
}

// Tracker owns one pool, one root chain, the shared scope-id/sequence
// counter, and the per-goroutine registry of open-block cursors. Multiple
// Trackers can coexist (useful in tests); profiler.Initialize installs one
// as the package-level instance.
type Tracker struct {
	pool  *pool.Pool
	chain *rootchain.Chain

	// counter is the single shared source for both newly-opened scope ids
	// and message/continuation sequence numbers, matching the original's
	// one atomic counter doing double duty.
	counter uint32

	groundTime int64

	states sync.Map // uint64 (goroutine id) -> *state
}

// NewTracker returns a Tracker ready to accept Begin/End calls. groundTime
// is captured from hostclock.Now at construction so every block's Start is
// relative to the tracker's own creation instant, matching profile_initialize
// snapshotting _profile_ground_time once at startup.
func NewTracker(p *pool.Pool, c *rootchain.Chain) *Tracker {
	return &Tracker{
		pool:       p,
		chain:      c,
		counter:    block.ScopeIDBase - 1,
		groundTime: hostclock.Now(),
	}
}

// nextID draws the next value from the shared counter. Wraps harmlessly;
// callers only ever compare ids for equality, never order.
func (t *Tracker) nextID() uint32 {
	return atomic.AddUint32(&t.counter, 1)
}

// stateFor returns (creating if absent) the calling goroutine's cursor.
func (t *Tracker) stateFor(id uint64) *state {
	if v, ok := t.states.Load(id); ok {
		return v.(*state)
	}
	s := &state{}
	actual, _ := t.states.LoadOrStore(id, s)
	s = actual.(*state)

	// The finalizer deletes the map entry once s becomes unreachable. The
	// map itself keeps s reachable, so the finalizer cannot run while the
	// entry is registered: DetachCurrentThread is what removes it. A
	// goroutine that exits without calling DetachCurrentThread leaves its
	// entry (and any blocks still open on it) in place.
	runtime.SetFinalizer(s, func(*state) {
		t.states.Delete(id)
	})
	return s
}

// Begin opens a new block named name as a child of the calling goroutine's
// current open block, or as a new thread-local root if none is open.
// Silently drops the event on pool exhaustion.
func (t *Tracker) Begin(name string) {
	id := gid.Current()
	s := t.stateFor(id)

	parent := s.current
	slot, ok := t.pool.Allocate()
	if !ok {
		return
	}
	b := t.pool.Get(slot)
	b.Processor = hwcore.Current()
	b.Thread = uint32(id)
	b.Start = hostclock.Now() - t.groundTime
	b.SetName(name)

	if parent == 0 {
		b.ID = int32(t.nextID())
		s.current = slot
		return
	}

	parentBlock := t.pool.Get(parent)
	b.ID = int32(t.nextID())
	b.ParentID = parentBlock.ID
	b.Previous = parent
	b.Sibling = parentBlock.Child
	if parentBlock.Child != 0 {
		t.pool.Get(parentBlock.Child).Previous = slot
	}
	parentBlock.Child = slot
	s.current = slot
}

// End closes the calling goroutine's current open block. If it was a
// thread-local root (no parent), the finished tree is published to the
// root chain. Otherwise control returns to the parent, walking backward
// through sibling-rewired Previous pointers to find it — see
// profile_end_block in the C original for why this walk is needed: Begin
// rewrites an existing head child's Previous to point at each new sibling
// as it's inserted, so Previous alone isn't reliably "my parent" once a
// block has acquired younger siblings.
func (t *Tracker) End() {
	id := gid.Current()
	s := t.stateFor(id)

	idx := s.current
	if idx == 0 {
		return
	}
	b := t.pool.Get(idx)
	b.End = hostclock.Now() - t.groundTime

	if b.Previous == 0 {
		t.chain.Publish(idx)
		s.current = 0
		return
	}

	current := b
	currentIdx := idx
	previous := t.pool.Get(current.Previous)
	for previous.Child != currentIdx {
		currentIdx = current.Previous
		current = t.pool.Get(currentIdx)
		previous = t.pool.Get(current.Previous)
	}
	parentIdx := current.Previous
	parent := t.pool.Get(parentIdx)
	s.current = parentIdx

	if parent.Processor != hwcore.Current() {
		name := parent.NameString()
		t.End()
		t.Begin(name)
	}
}

// Update checks whether the calling goroutine's current open block is still
// running on the hardware core it started on; if not, it splits the block
// in two (End the half that ran on the old core, Begin a new half under
// the same parent on the new core) without the caller needing to close and
// reopen its own logical scope. Cheap to call on every iteration of a long
// running loop.
func (t *Tracker) Update() {
	id := gid.Current()
	s := t.stateFor(id)

	idx := s.current
	if idx == 0 {
		return
	}
	b := t.pool.Get(idx)
	processor := hwcore.Current()
	if b.Processor == processor {
		return
	}
	name := b.NameString()
	t.End()
	t.Begin(name)
}

// EndFrame records a single instantaneous marker carrying an
// application-supplied frame counter in place of an End timestamp. Attached
// as a peer under the current open block (or published as its own root),
// never becomes the current block itself.
func (t *Tracker) EndFrame(counter uint64) {
	id := gid.Current()
	s := t.stateFor(id)

	slot, ok := t.pool.Allocate()
	if !ok {
		return
	}
	b := t.pool.Get(slot)
	b.ID = block.IDEndFrame
	b.Processor = hwcore.Current()
	b.Thread = uint32(id)
	b.Start = hostclock.Now() - t.groundTime
	b.End = int64(counter)

	t.attachSimple(s.current, slot)
}

// attachSimple inserts slot as the new head child of parent (or publishes
// it as a new thread-local root if parent is 0) without changing which
// block is current. Shared by EndFrame and the message-block helpers.
func (t *Tracker) attachSimple(parent, slot block.Slot) {
	if parent == 0 {
		t.chain.Publish(slot)
		return
	}
	parentBlock := t.pool.Get(parent)
	self := t.pool.Get(slot)
	next := parentBlock.Child
	self.Previous = parent
	self.Sibling = next
	if next != 0 {
		t.pool.Get(next).Previous = slot
	}
	parentBlock.Child = slot
}

// DetachCurrentThread closes every block still open on the calling
// goroutine's stack, deepest first, and releases its cursor. Go's
// goroutines don't have destructors, so callers that know a goroutine is
// about to exit call this explicitly; nothing else ends a goroutine's open
// blocks or removes its cursor from the registry.
func (t *Tracker) DetachCurrentThread() {
	id := gid.Current()
	s := t.stateFor(id)

	var last block.Slot
	for s.current != 0 {
		idx := s.current
		if idx == last {
			debug.DropMessage("SCOPE", "unrecoverable self-reference during thread cleanup, abandoning")
			break
		}
		t.End()
		last = idx
	}
	t.states.Delete(id)
}
