// hostclock.go — pluggable tick source.
//
// The spec treats the clock as an external collaborator: the core only
// needs a monotonic tick counter and the number of ticks per second. This
// module's ticks are nanoseconds, so TicksPerSecond is a constant, but both
// are exposed as package vars so tests can substitute a deterministic
// fake (needed for the monotonic-timing properties in SPEC_FULL.md A.8).

package hostclock

import "time"

// processStart anchors Now to Go's monotonic clock reading.
var processStart = time.Now()

// Now returns the current tick count: monotonic nanoseconds since package
// initialization. Overridable for tests.
var Now = func() int64 {
	return int64(time.Since(processStart))
}

// TicksPerSecond returns the number of ticks in one second, written into
// the sysinfo record's Start field by the drain worker. Overridable for
// tests that substitute a non-nanosecond Now.
var TicksPerSecond = func() int64 {
	return int64(time.Second)
}
