// ════════════════════════════════════════════════════════════════════════════════════════════════
// Profiler Demo — Main Entry Point
// ────────────────────────────────────────────────────────────────────────────────────────────────
// Project: Hierarchical Block Profiler
// Component: Demo Binary Orchestration
//
// Description:
//   Wires the profiler package against a toy concurrent workload, phased
//   the way the arbitrage system's own main.go proceeds: load config,
//   initialize, run, finalize.
//
// Architecture:
//   - Phase 0: load optional JSON config, pick an output sink
//   - Phase 1: initialize the profiler and enable instrumentation
//   - Phase 2: run a small multi-goroutine workload that exercises
//     nesting, migration-sensitive Update calls, and message annotations
//   - Phase 3: finalize and flush
//
// ════════════════════════════════════════════════════════════════════════════════════════════════

package main

import (
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"profiler/config"
	"profiler/debug"
	"profiler/profiler"
	"profiler/sink"
)

func main() {
	// PHASE 0: configuration and output sink selection
	debug.DropMessage("INIT", "loading profiler config")

	cfg, err := config.Load("profilerdemo.json")
	if err != nil {
		debug.DropMessage("CONFIG", "using defaults: "+err.Error())
	}

	out, closer := openOutput(cfg)
	defer closer()

	// PHASE 1: initialize and enable
	if err := profiler.Initialize(profiler.Options{
		Blocks:         cfg.Blocks(),
		DrainPeriod:    cfg.DrainPeriod(),
		SysInfoCadence: cfg.SysInfoCadence,
		Output:         out,
	}); err != nil {
		debug.DropMessage("FATAL", err.Error())
		os.Exit(1)
	}
	profiler.Enable()

	setupSignalHandling()

	// PHASE 2: run the toy workload
	runWorkload()

	// PHASE 3: finalize and flush
	debug.DropMessage("SHUTDOWN", "finalizing profiler")
	profiler.Finalize()
}

// openOutput picks the SQLite sink when the config names a DSN, falling
// back to a plain file sink otherwise.
func openOutput(cfg config.Config) (io.Writer, func()) {
	if cfg.SQLiteDSN != "" {
		s, err := sink.NewSQLite(cfg.SQLiteDSN, 64)
		if err != nil {
			debug.DropMessage("FATAL", "opening sqlite sink: "+err.Error())
			os.Exit(1)
		}
		return s, func() { s.Close() }
	}

	path := cfg.OutputPath
	if path == "" {
		path = "profilerdemo.out"
	}
	f, err := sink.OpenFile(path)
	if err != nil {
		debug.DropMessage("FATAL", "opening output: "+err.Error())
		os.Exit(1)
	}
	return f, func() { f.Close() }
}

func setupSignalHandling() {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-ch
		debug.DropMessage("SIGNAL", "shutting down")
		profiler.Finalize()
		os.Exit(0)
	}()
}

// runWorkload exercises nested scopes, a migration-sensitive loop, and
// message annotations across a handful of goroutines.
func runWorkload() {
	var wg sync.WaitGroup
	for worker := 0; worker < 4; worker++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			defer profiler.DetachCurrentThread()

			profiler.BeginBlock("worker")
			profiler.Log("starting worker")

			for i := 0; i < 50; i++ {
				profiler.BeginBlock("iteration")
				profiler.UpdateBlock()
				doWork()
				profiler.EndFrame(uint64(i))
				profiler.EndBlock()
			}

			profiler.Unlock("worker-done")
			profiler.EndBlock()
		}(worker)
	}
	wg.Wait()
}

func doWork() {
	time.Sleep(time.Microsecond)
}
