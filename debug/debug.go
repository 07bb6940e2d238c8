// ─────────────────────────────────────────────────────────────────────────────
// [Filename]: debug.go — cold-path diagnostic logging for the profiler core
//
// Purpose:
//   - Logs infrequent, non-fatal conditions without introducing heap pressure
//     on the instrumentation hot path: pool exhaustion, quiescence mismatches
//     at finalize, self-reference during thread cleanup.
//
// Notes:
//   - Avoids fmt.Sprintf to minimize footprint and latency.
//   - Writes directly to stderr; the only allocation is the caller's own
//     string concatenation, exactly as in the cold paths this is reserved for.
//
// ⚠️ Never invoke from Begin/End/Update — only from the rare failure branches
//    those functions already have to check.
// ─────────────────────────────────────────────────────────────────────────────

package debug

import "os"

// DropError logs a tagged diagnostic alongside an error value. If err is
// nil, behaves like DropMessage.
func DropError(prefix string, err error) {
	if err != nil {
		os.Stderr.WriteString(prefix + ": " + err.Error() + "\n")
	} else {
		os.Stderr.WriteString(prefix + "\n")
	}
}

// DropMessage logs a tagged diagnostic message.
func DropMessage(prefix, message string) {
	os.Stderr.WriteString(prefix + ": " + message + "\n")
}
