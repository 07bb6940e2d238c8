// control.go — Global control flags for the drain worker and instrumentation gate
// ============================================================================
// SYSTEM CONTROL ORCHESTRATION
// ============================================================================
//
// Control package provides lightweight global signaling infrastructure for
// coordinating the instrumentation on/off switch and drain-worker shutdown
// across every producer goroutine and the dedicated drain thread, with
// zero-allocation operations on the hot path.
//
// Architecture overview:
//   • Global enabled/shutdown flags for lock-free inter-goroutine signaling
//   • Zero-allocation flag access for profiler.BeginBlock's hot path
//   • Graceful shutdown coordination between producers and the drain worker
//
// Threading model:
//   • profiler.Enable/Disable flips the enabled flag observed by every
//     producer before it touches the scope stack.
//   • profiler.Finalize stops the drain worker; drain.Worker.Stop sets the
//     shutdown flag and closes the worker's stop channel, on which the
//     worker drains what remains, emits the end-of-stream record, and exits.

package control

import "sync/atomic"

// ============================================================================
// GLOBAL STATE MANAGEMENT
// ============================================================================

var (
	// enabled gates whether BeginBlock/EndBlock/message helpers do any work
	// at all. 1 = instrumentation active, 0 = every producer call is a no-op.
	enabled uint32

	// shutdown records that drain-worker shutdown has been requested.
	// 1 = shutting down.
	shutdown uint32
)

// ============================================================================
// INSTRUMENTATION GATE
// ============================================================================

// Enable turns instrumentation on. Safe for concurrent calls.
//
//go:norace
//go:nosplit
func Enable() {
	atomic.StoreUint32(&enabled, 1)
}

// Disable turns instrumentation off. Existing open scopes on any producer's
// stack are left in place; they resume recording if Enable is called again
// before they End.
//
//go:norace
//go:nosplit
func Disable() {
	atomic.StoreUint32(&enabled, 0)
}

// Enabled reports whether instrumentation is currently active. Called on
// every BeginBlock before anything else; must stay cheap.
//
//go:norace
//go:nosplit
func Enabled() bool {
	return atomic.LoadUint32(&enabled) == 1
}

// ============================================================================
// DRAIN SHUTDOWN
// ============================================================================

// RequestShutdown sets the shutdown flag. drain.Worker.Stop calls it before
// closing the worker's stop channel, which is what makes the worker drain,
// emit end-of-stream, and stop. Idempotent.
//
//go:norace
//go:nosplit
func RequestShutdown() {
	atomic.StoreUint32(&shutdown, 1)
}

// ShuttingDown reports whether RequestShutdown has been called. The drain
// worker itself reacts to shutdown through its own stop channel rather
// than polling this; it is for callers elsewhere in the shutdown path
// that need to observe the flag directly.
//
//go:norace
//go:nosplit
func ShuttingDown() bool {
	return atomic.LoadUint32(&shutdown) == 1
}

// Flags returns pointers to the shutdown and enabled flags, in that order,
// for callers that read or set them directly with sync/atomic.
//
//go:norace
//go:nosplit
func Flags() (*uint32, *uint32) {
	return &shutdown, &enabled
}

// Reset clears both flags. Exists for test isolation and for
// profiler.Initialize to re-arm a previously finalized instance.
func Reset() {
	atomic.StoreUint32(&enabled, 0)
	atomic.StoreUint32(&shutdown, 0)
}
