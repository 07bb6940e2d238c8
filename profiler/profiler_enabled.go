//go:build !noprofile

// ════════════════════════════════════════════════════════════════════════════════════════════════
// Profiler Public API
// ────────────────────────────────────────────────────────────────────────────────────────────────
// Project: Hierarchical Block Profiler
// Component: Package-Level Lifecycle and Instrumentation Entry Points
//
// Description:
//   Wires pool, rootchain, scope.Tracker, drain.Worker and control into a
//   single package-level instance, phased the way main.go orchestrates the
//   arbitrage system's own startup: Initialize allocates and wires, Enable
//   flips the gate producers check, Finalize drains and tears down.
//
// Notes:
//   - Built only without the noprofile tag; see profiler_noprofile.go for
//     the zero-cost no-op variant built with it, mirroring the
//     main_linux.go/main_darwin.go GOOS-gated split this generalizes to a
//     feature-gated one.
//
// ════════════════════════════════════════════════════════════════════════════════════════════════

package profiler

import (
	"fmt"
	"io"
	"sync"
	"time"

	"profiler/constants"
	"profiler/control"
	"profiler/debug"
	"profiler/drain"
	"profiler/pool"
	"profiler/rootchain"
	"profiler/scope"
)

var (
	mu        sync.Mutex
	pl        *pool.Pool
	rootChain *rootchain.Chain
	tracker   *scope.Tracker
	worker    *drain.Worker
	started   bool
)

// Initialize allocates the pool, root chain and scope tracker, starts the
// drain worker, and leaves instrumentation disabled until Enable is called.
// Calling Initialize twice without an intervening Finalize is an error.
func Initialize(opts Options) error {
	mu.Lock()
	defer mu.Unlock()

	if started {
		return fmt.Errorf("profiler: already initialized")
	}
	if opts.Output == nil {
		return fmt.Errorf("profiler: Options.Output is required")
	}

	nblocks := opts.Blocks
	if nblocks <= 0 {
		nblocks = constants.DefaultPoolBlocks
	}
	period := opts.DrainPeriod
	if period <= 0 {
		period = time.Duration(constants.DefaultDrainPeriodMS) * time.Millisecond
	}

	pl = pool.New(nblocks)
	rootChain = rootchain.New(pl)
	tracker = scope.NewTracker(pl, rootChain)

	worker = drain.New(pl, rootChain, tracker, opts.Output, period, opts.SysInfoCadence)
	control.Reset()
	worker.Start()
	started = true
	return nil
}

// SetOutput swaps the drain worker's destination writer. Safe to call
// while instrumentation is enabled.
func SetOutput(out io.Writer) {
	mu.Lock()
	w := worker
	mu.Unlock()
	if w != nil {
		w.SetOutput(out)
	}
}

// SetOutputWait changes the drain worker's wake period, taking effect on
// its next wake.
func SetOutputWait(d time.Duration) {
	mu.Lock()
	w := worker
	mu.Unlock()
	if w != nil {
		w.SetPeriod(d)
	}
}

// Enable turns instrumentation on; every BeginBlock/EndBlock/message call
// is a no-op until this has been called at least once since Initialize.
func Enable() { control.Enable() }

// Disable turns instrumentation off without tearing anything down.
// Existing open scopes resume recording if Enable is called again before
// they end.
func Disable() { control.Disable() }

// Finalize disables instrumentation, flushes the calling goroutine's own
// open blocks, requests drain-worker shutdown and blocks until it has
// drained whatever remained and emitted the end-of-stream record, checks
// the pool and root chain are back to a quiescent state, and clears the
// package-level instance so Initialize can be called again.
//
// A caller with other goroutines still holding open blocks at Finalize
// time must have them call DetachCurrentThread themselves first; Finalize
// only flushes its own caller.
func Finalize() {
	mu.Lock()
	w := worker
	t := tracker
	p := pl
	c := rootChain
	mu.Unlock()
	if w == nil {
		return
	}

	control.Disable()
	if t != nil {
		t.DetachCurrentThread()
	}

	w.Stop()

	if p != nil {
		free, dirty := p.Audit()
		empty := c == nil || c.Empty()
		if free+1 != p.Cap() || dirty || !empty {
			debug.DropMessage("FINALIZE", fmt.Sprintf(
				"quiescence accounting mismatch: free=%d cap=%d siblingDirty=%v chainEmpty=%v",
				free, p.Cap(), dirty, empty))
		}
	}

	mu.Lock()
	worker = nil
	tracker = nil
	pl = nil
	rootChain = nil
	started = false
	mu.Unlock()
}

// BeginBlock opens a new named scope under the calling goroutine's current
// open block. A no-op if instrumentation is disabled or uninitialized.
func BeginBlock(name string) {
	if !control.Enabled() {
		return
	}
	t := currentTracker()
	if t == nil {
		return
	}
	t.Begin(name)
}

// EndBlock closes the calling goroutine's current open block.
func EndBlock() {
	if !control.Enabled() {
		return
	}
	t := currentTracker()
	if t == nil {
		return
	}
	t.End()
}

// UpdateBlock splits the calling goroutine's current open block if it has
// migrated to a different hardware core since it was opened (or last
// updated), without the caller needing to End/Begin itself. Cheap enough
// to call every iteration of a long-running loop.
func UpdateBlock() {
	if !control.Enabled() {
		return
	}
	t := currentTracker()
	if t == nil {
		return
	}
	t.Update()
}

// EndFrame records an instantaneous marker carrying counter in place of a
// duration, attached under the current open block (or published as its own
// root) without becoming the current block.
func EndFrame(counter uint64) {
	if !control.Enabled() {
		return
	}
	t := currentTracker()
	if t == nil {
		return
	}
	t.EndFrame(counter)
}

// Log records a one-shot log message under the calling goroutine's current
// open block.
func Log(message string) { dispatch(func(t *scope.Tracker) { t.Log(message) }) }

// TryLock records a lock-attempt annotation.
func TryLock(name string) { dispatch(func(t *scope.Tracker) { t.TryLock(name) }) }

// Lock records a lock-acquired annotation.
func Lock(name string) { dispatch(func(t *scope.Tracker) { t.Lock(name) }) }

// Unlock records a lock-released annotation.
func Unlock(name string) { dispatch(func(t *scope.Tracker) { t.Unlock(name) }) }

// Wait records a condition-wait annotation.
func Wait(name string) { dispatch(func(t *scope.Tracker) { t.Wait(name) }) }

// Signal records a condition-signal annotation.
func Signal(name string) { dispatch(func(t *scope.Tracker) { t.Signal(name) }) }

// DetachCurrentThread closes every block still open on the calling
// goroutine's stack and releases its cursor. Call this before a goroutine
// exits; nothing else closes its open blocks or releases its cursor.
func DetachCurrentThread() {
	t := currentTracker()
	if t == nil {
		return
	}
	t.DetachCurrentThread()
}

func dispatch(f func(*scope.Tracker)) {
	if !control.Enabled() {
		return
	}
	t := currentTracker()
	if t == nil {
		return
	}
	f(t)
}

func currentTracker() *scope.Tracker {
	mu.Lock()
	defer mu.Unlock()
	return tracker
}
