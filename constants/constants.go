// ─────────────────────────────────────────────────────────────────────────────
// [Filename]: constants.go — Global Profiler Tunables
//
// Purpose:
//   - Defines compile-time tunables for the block pool, drain cadence and
//     message-block splitting shared across the profiler/, pool/, scope/
//     and drain/ packages.
//
// Notes:
//   - No runtime logic here — all values must be compile-time resolvable.
// ─────────────────────────────────────────────────────────────────────────────

package constants

// ───────────────────────────── Pool Sizing ─────────────────────────────────

const (
	// DefaultPoolBlocks is the usable block count profiler.Initialize falls
	// back to when the caller doesn't supply a buffer-sized pool.
	DefaultPoolBlocks = 1 << 14 // 16384 usable blocks, plus the sentinel

	// MaxPoolBlocks is the largest pool capacity addressable by a 16-bit
	// slot index (including the reserved sentinel slot).
	MaxPoolBlocks = 65535
)

// ───────────────────────────── Drain Cadence ───────────────────────────────

const (
	// DefaultDrainPeriodMS is the drain worker's default wake period.
	DefaultDrainPeriodMS = 100

	// MinDrainPeriodMS is the floor SetOutputWait clamps to.
	MinDrainPeriodMS = 1

	// SysInfoCadence emits a synthesized sysinfo record every Nth drain
	// wake that finds a non-empty root chain.
	SysInfoCadence = 11
)

// ───────────────────────── Message Block Splitting ─────────────────────────

const (
	// MaxNameLen is the number of significant name bytes a single block
	// can hold before a message must continue into another block.
	MaxNameLen = 25
)

// ───────────────────────────── Scope Id Space ──────────────────────────────

const (
	// ScopeIDBase is the first id the shared scope-id counter issues;
	// values below it are reserved for system event kinds.
	ScopeIDBase = 128
)
