// ─────────────────────────────────────────────────────────────────────────────
// [Filename]: drain.go — dedicated drain worker
//
// Purpose:
//   - Runs a single goroutine, pinned to its OS thread for the duration of
//     its run loop, that periodically detaches the root chain, flattens
//     every completed tree on it via processTree, writes the flattened
//     records to the configured output, and frees the reclaimed blocks
//     back to the pool.
//   - Self-traces its own work (a "profile_io" scope wrapping a nested
//     "process" scope) using the same Tracker every producer uses, so the
//     drain worker's own overhead shows up in the profile it produces.
//
// Notes:
//   - Pinned with runtime.LockOSThread the way the teacher's
//     ring.PinnedConsumer pins its dedicated consumer goroutine; unlike
//     that goroutine's tight hot/cold spin, this one blocks on a
//     time.Timer between wakes since drain cadence is a coarse interval,
//     not a latency-critical dequeue.
// ─────────────────────────────────────────────────────────────────────────────

package drain

import (
	"io"
	"runtime"
	"sync"
	"time"

	"profiler/block"
	"profiler/constants"
	"profiler/control"
	"profiler/debug"
	"profiler/internal/hostclock"
	"profiler/pool"
	"profiler/rootchain"
	"profiler/scope"
)

// Worker owns the periodic drain loop. The zero value is not usable; build
// one with New.
type Worker struct {
	pool    *pool.Pool
	chain   *rootchain.Chain
	tracker *scope.Tracker

	mu     sync.Mutex
	out    io.Writer
	period time.Duration

	sysInfoCadence uint64
	wakeCount      uint64

	stopCh chan struct{}
	doneCh chan struct{}
}

// New returns a Worker draining chain's trees through p, self-tracing via
// tracker, writing flattened records to out at the given period. period is
// clamped to constants.MinDrainPeriodMS. sysInfoCadence is the number of
// non-empty wakes between synthesized sysinfo records; a value <= 0 falls
// back to constants.SysInfoCadence.
func New(p *pool.Pool, chain *rootchain.Chain, tracker *scope.Tracker, out io.Writer, period time.Duration, sysInfoCadence int) *Worker {
	if period < time.Duration(constants.MinDrainPeriodMS)*time.Millisecond {
		period = time.Duration(constants.MinDrainPeriodMS) * time.Millisecond
	}
	if sysInfoCadence <= 0 {
		sysInfoCadence = constants.SysInfoCadence
	}
	return &Worker{
		pool:           p,
		chain:          chain,
		tracker:        tracker,
		out:            out,
		period:         period,
		sysInfoCadence: uint64(sysInfoCadence),
	}
}

// SetOutput swaps the destination writer. Safe to call while running.
func (w *Worker) SetOutput(out io.Writer) {
	w.mu.Lock()
	w.out = out
	w.mu.Unlock()
}

// SetPeriod changes the wake interval, taking effect on the next wake.
// Clamped to constants.MinDrainPeriodMS.
func (w *Worker) SetPeriod(d time.Duration) {
	if d < time.Duration(constants.MinDrainPeriodMS)*time.Millisecond {
		d = time.Duration(constants.MinDrainPeriodMS) * time.Millisecond
	}
	w.mu.Lock()
	w.period = d
	w.mu.Unlock()
}

// Start launches the drain loop in a dedicated, pinned goroutine. Start
// must not be called again until Stop has returned.
func (w *Worker) Start() {
	w.stopCh = make(chan struct{})
	w.doneCh = make(chan struct{})

	go func() {
		runtime.LockOSThread()
		defer runtime.UnlockOSThread()
		defer close(w.doneCh)

		timer := time.NewTimer(w.currentPeriod())
		defer timer.Stop()

		for {
			select {
			case <-w.stopCh:
				w.drainFinal()
				return
			case <-timer.C:
				w.wake()
				timer.Reset(w.currentPeriod())
			}
		}
	}()
}

// Stop requests shutdown and blocks until the drain loop has performed its
// final drain, emitted the end-of-stream record, and exited.
func (w *Worker) Stop() {
	control.RequestShutdown()
	close(w.stopCh)
	<-w.doneCh
}

func (w *Worker) currentPeriod() time.Duration {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.period
}

func (w *Worker) writer() io.Writer {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.out
}

// wake is one periodic pass: skip entirely if the root chain is empty,
// otherwise self-trace a profile_io scope around a nested process scope
// that does the actual draining, then maybe emit a synthesized sysinfo
// record.
func (w *Worker) wake() {
	if w.chain.Empty() {
		return
	}

	w.tracker.Begin("profile_io")

	if !w.chain.Empty() {
		w.tracker.Begin("process")
		w.drainRootChain()
		w.tracker.End()
	}

	w.wakeCount++
	if w.wakeCount%w.sysInfoCadence == 0 {
		w.emitSysInfo()
	}

	w.tracker.End()
}

// drainFinal runs one last drain pass (there is no further wake to catch
// whatever is still in flight) and writes the end-of-stream record.
func (w *Worker) drainFinal() {
	if !w.chain.Empty() {
		w.drainRootChain()
	}
	w.emitEndOfStream()
}

// drainRootChain detaches the whole chain and flattens every top-level tree
// on it, freeing each tree's reclaimed blocks back to the pool as it goes.
// Detach is a single atomic swap, so this is thread-safe in the sense that
// only fully closed subtrees are ever linked under a root - no producer
// will ever add more children to a tree already reachable from here.
func (w *Worker) drainRootChain() {
	root := w.chain.Detach()
	for root != 0 {
		next := w.pool.Get(root).Sibling
		w.pool.Get(root).Sibling = 0

		leaf := processTree(w.pool, w.emit, root)
		w.pool.Free(root, leaf)

		root = next
	}
}

// emit writes one flattened block's 64-byte wire image to the configured
// output. The writer is assumed infallible per this module's error-handling
// contract; a write error is logged but never causes a block to be retried
// or the drain loop to stop.
func (w *Worker) emit(b *block.Block) {
	out := w.writer()
	if out == nil {
		return
	}
	buf := block.AppendRecord(nil, b)
	if _, err := out.Write(buf); err != nil {
		debug.DropError("DRAIN", err)
	}
}

func (w *Worker) emitSysInfo() {
	var b block.Block
	b.ID = block.IDSysInfo
	b.Start = hostclock.TicksPerSecond()
	b.SetName("sysinfo")
	w.emit(&b)
}

func (w *Worker) emitEndOfStream() {
	var b block.Block
	b.ID = block.IDEndOfStream
	w.emit(&b)
}
