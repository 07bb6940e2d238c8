//go:build noprofile

// ─────────────────────────────────────────────────────────────────────────────
// [Filename]: profiler_noprofile.go — zero-cost instrumentation elision
//
// Purpose:
//   - Built with the noprofile tag, every exported entry point in this
//     package becomes a no-op the compiler can inline away entirely,
//     leaving call sites with zero runtime cost and no pool/goroutine
//     allocation at all.
//
// Notes:
//   - Mirrors main_linux.go/main_darwin.go's GOOS-gated split: exactly one
//     of this file or profiler_enabled.go compiles into any given binary,
//     both exposing the identical exported surface.
// ─────────────────────────────────────────────────────────────────────────────

package profiler

import (
	"io"
	"time"
)

// Initialize is a no-op under the noprofile build; it always succeeds.
func Initialize(Options) error { return nil }

// SetOutput is a no-op under the noprofile build.
func SetOutput(io.Writer) {}

// SetOutputWait is a no-op under the noprofile build.
func SetOutputWait(time.Duration) {}

// Enable is a no-op under the noprofile build.
func Enable() {}

// Disable is a no-op under the noprofile build.
func Disable() {}

// Finalize is a no-op under the noprofile build.
func Finalize() {}

// BeginBlock is a no-op under the noprofile build.
func BeginBlock(string) {}

// EndBlock is a no-op under the noprofile build.
func EndBlock() {}

// UpdateBlock is a no-op under the noprofile build.
func UpdateBlock() {}

// EndFrame is a no-op under the noprofile build.
func EndFrame(uint64) {}

// Log is a no-op under the noprofile build.
func Log(string) {}

// TryLock is a no-op under the noprofile build.
func TryLock(string) {}

// Lock is a no-op under the noprofile build.
func Lock(string) {}

// Unlock is a no-op under the noprofile build.
func Unlock(string) {}

// Wait is a no-op under the noprofile build.
func Wait(string) {}

// Signal is a no-op under the noprofile build.
func Signal(string) {}

// DetachCurrentThread is a no-op under the noprofile build.
func DetachCurrentThread() {}
