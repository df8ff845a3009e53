package trace

import (
	"bufio"
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// Writer is a buffered, advisory-locked command-trace file. Holding an
// exclusive flock for the writer's lifetime prevents two simulator runs
// from silently interleaving output into the same trace file, the same
// failure mode the teacher's queue runner guards against with per-tag
// mutexes around a shared descriptor.
type Writer struct {
	f  *os.File
	bw *bufio.Writer

	// locked is false for NewStdoutWriter, which holds neither a flock nor
	// ownership of the descriptor to close.
	locked bool
}

// OpenWriter creates (or truncates) path, takes an exclusive advisory
// lock, and returns a Writer ready for TraceCommand calls.
func OpenWriter(path string) (*Writer, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, fmt.Errorf("trace: open %s: %w", path, err)
	}
	if err := unix.Flock(int(f.Fd()), unix.LOCK_EX|unix.LOCK_NB); err != nil {
		f.Close()
		return nil, fmt.Errorf("trace: flock %s: %w", path, err)
	}
	return &Writer{f: f, bw: bufio.NewWriter(f), locked: true}, nil
}

// NewStdoutWriter wraps os.Stdout as a Writer with no advisory lock taken
// (flock against a terminal or pipe has no useful meaning, and two runs
// writing to stdout is the caller's problem, not ours). Used when no
// output prefix is given (§6.7: "or stdout if no -o given"). Close flushes
// but never closes os.Stdout itself.
func NewStdoutWriter() *Writer {
	return &Writer{f: os.Stdout, bw: bufio.NewWriter(os.Stdout)}
}

// TraceCommand implements interfaces.CommandTracer.
func (w *Writer) TraceCommand(line string) {
	fmt.Fprintln(w.bw, line)
}

// Close flushes buffered output and, for a file opened by OpenWriter,
// releases the advisory lock and closes the underlying file.
func (w *Writer) Close() error {
	if err := w.bw.Flush(); err != nil {
		if w.locked {
			w.f.Close()
		}
		return err
	}
	if !w.locked {
		return nil
	}
	if err := unix.Flock(int(w.f.Fd()), unix.LOCK_UN); err != nil {
		w.f.Close()
		return err
	}
	return w.f.Close()
}
