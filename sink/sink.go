// ─────────────────────────────────────────────────────────────────────────────
// [Filename]: sink.go — file output sink for the drain worker
//
// Purpose:
//   - File is the plain io.Writer sink (cmd/profilerdemo's default output):
//     a flat stream of 64-byte records appended to an *os.File.
//
// Notes:
//   - No buffering is added here; the drain worker writes once per flattened
//     block, and the caller is expected to wrap with bufio itself if write
//     volume warrants it, matching the teacher's own thin io.Writer handoff
//     to its own outbound connections rather than a sink package owning
//     buffering policy.
// ─────────────────────────────────────────────────────────────────────────────

package sink

import (
	"io"
	"os"
)

// File wraps an *os.File (or any io.WriteCloser) as a drain.Worker output.
type File struct {
	w io.WriteCloser
}

// OpenFile creates (or truncates) path and returns a File sink writing to
// it.
func OpenFile(path string) (*File, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, err
	}
	return &File{w: f}, nil
}

// NewFile wraps an already-open writer, useful for os.Stdout or a test
// buffer that doesn't need Close.
func NewFile(w io.WriteCloser) *File {
	return &File{w: w}
}

func (f *File) Write(p []byte) (int, error) { return f.w.Write(p) }

// Close closes the underlying writer, if it supports it.
func (f *File) Close() error { return f.w.Close() }
