// ─────────────────────────────────────────────────────────────────────────────
// [Filename]: config.go — optional runtime configuration file
//
// Purpose:
//   - Loads an optional JSON config file overriding the drain period,
//     output file path, sysinfo cadence and sqlite DSN, so a caller can
//     tune profiler.Initialize without a recompile.
//
// Notes:
//   - This decodes a small, caller-controlled settings file, not the
//     profiler's own 64-byte record stream - it does not encroach on this
//     module's "no post-process file format parsing" boundary.
//   - Uses sonnet.Unmarshal the same way syncharvester.go does for its own
//     externally-sourced JSON payloads: decode straight into a struct, no
//     intermediate map[string]interface{}.
// ─────────────────────────────────────────────────────────────────────────────

package config

import (
	"fmt"
	"os"
	"time"

	"github.com/sugawarayuuta/sonnet"

	"profiler/constants"
)

// Config holds every runtime-tunable setting a caller might want to set
// without recompiling. Zero-value fields mean "use the built-in default".
type Config struct {
	DrainPeriodMS  int    `json:"drain_period_ms"`
	OutputPath     string `json:"output_path"`
	SQLiteDSN      string `json:"sqlite_dsn"`
	SysInfoCadence int    `json:"sysinfo_cadence"`
	PoolBlocks     int    `json:"pool_blocks"`
}

// Load reads and decodes the JSON config file at path. A missing file is
// reported as an error like any other read failure; callers that don't want
// runtime configuration can skip Load and use a zero Config, whose helpers
// return the package defaults.
func Load(path string) (Config, error) {
	var cfg Config
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("config: reading %s: %w", path, err)
	}
	if err := sonnet.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("config: decoding %s: %w", path, err)
	}
	return cfg, nil
}

// DrainPeriod returns the configured drain period, falling back to
// constants.DefaultDrainPeriodMS when unset.
func (c Config) DrainPeriod() time.Duration {
	ms := c.DrainPeriodMS
	if ms <= 0 {
		ms = constants.DefaultDrainPeriodMS
	}
	return time.Duration(ms) * time.Millisecond
}

// Blocks returns the configured pool capacity, falling back to
// constants.DefaultPoolBlocks when unset.
func (c Config) Blocks() int {
	if c.PoolBlocks <= 0 {
		return constants.DefaultPoolBlocks
	}
	return c.PoolBlocks
}
