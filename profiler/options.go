// ─────────────────────────────────────────────────────────────────────────────
// [Filename]: options.go — Initialize options shared by both build variants
// ─────────────────────────────────────────────────────────────────────────────

package profiler

import (
	"io"
	"time"
)

// Options configures Initialize. The zero value uses package defaults.
type Options struct {
	// Blocks is the usable pool capacity. 0 uses constants.DefaultPoolBlocks.
	Blocks int
	// DrainPeriod is the worker's wake interval. 0 uses
	// constants.DefaultDrainPeriodMS.
	DrainPeriod time.Duration
	// SysInfoCadence is the number of non-empty drain wakes between
	// synthesized sysinfo records. 0 uses constants.SysInfoCadence.
	SysInfoCadence int
	// Output receives the drain worker's flattened record stream. Required
	// under the default build; ignored under the noprofile build tag.
	Output io.Writer
}
