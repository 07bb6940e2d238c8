//go:build linux

// hwcore_linux.go — hardware core id via the getcpu(2) syscall.
//
// Mirrors the teacher's own raw-syscall style in ring/setaffinity_linux.go
// (direct syscall.RawSyscall, no golang.org/x/sys/unix helper needed for a
// single simple call).

package hwcore

import (
	"syscall"
	"unsafe"
)

const sysGetcpu = 309 // x86-64; see asm/unistd_64.h

// Current returns the hardware core the calling goroutine's OS thread is
// currently running on. Best-effort: the goroutine may migrate cores
// between this call and its use, which is exactly the condition
// scope.Update/scope.End detect and split on.
//
// Exposed as an overridable var, like hostclock.Now, so tests can force a
// deterministic migration sequence instead of depending on the scheduler.
var Current = func() uint32 {
	var cpu, node uint32
	_, _, errno := syscall.RawSyscall(sysGetcpu, uintptr(unsafe.Pointer(&cpu)), uintptr(unsafe.Pointer(&node)), 0)
	if errno != 0 {
		return 0
	}
	return cpu
}
