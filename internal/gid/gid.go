// ─────────────────────────────────────────────────────────────────────────────
// [Filename]: gid.go — goroutine identity extraction
//
// Purpose:
//   - Go has no portable thread-local storage, and the profiler's scope
//     stack is keyed per producer. This resolves "producer" to "calling
//     goroutine" by scraping the numeric id out of a short runtime.Stack
//     capture.
//
// Notes:
//   - The scope package calls this once per Begin/End/Update (and per
//     message, EndFrame and DetachCurrentThread call), not per nested level,
//     and nothing is cached here — the scope package owns the per-goroutine
//     registry.
//   - Uses the same small, zero-copy byte-scanning idiom as the
//     teacher's utils.go JSON field scanners, applied to the fixed
//     "goroutine N [" prefix runtime.Stack always emits.
// ─────────────────────────────────────────────────────────────────────────────

package gid

import "runtime"

// Current returns an identifier for the calling goroutine, stable for the
// goroutine's lifetime and suitable as a map key: the goroutine number the
// runtime prints in stack traces. Callers must not depend on specific
// values, only on distinctness.
func Current() uint64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	return parseGoroutineID(buf[:n])
}

// parseGoroutineID extracts N from a "goroutine N [running]:\n..." prefix.
func parseGoroutineID(b []byte) uint64 {
	const prefix = "goroutine "
	if len(b) <= len(prefix) || string(b[:len(prefix)]) != prefix {
		return 0
	}
	b = b[len(prefix):]

	var id uint64
	for _, c := range b {
		if c < '0' || c > '9' {
			break
		}
		id = id*10 + uint64(c-'0')
	}
	return id
}
