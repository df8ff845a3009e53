// Package interactive implements the CLI's --interactive abort key: it
// switches the controlling terminal to cbreak mode and cancels a context
// the first time it reads a 'q' or 'Q' byte from stdin, restoring the
// terminal's original mode on CleanUp. Grounded on a pkg/term-based
// terminal helper from the enrichment pack (easyterm.go), not the teacher:
// same Tcgetattr/Cfmakecbreak/Tcsetattr save-and-restore discipline,
// trimmed to the one mode transition this CLI needs.
package interactive

import (
	"os"
	"syscall"

	"github.com/pkg/term/termios"
)

// Watcher owns a terminal's mode for the duration of a run.
type Watcher struct {
	f       *os.File
	canAttr syscall.Termios
	active  bool
}

// IsTerminal reports whether f refers to a terminal device.
func IsTerminal(f *os.File) bool {
	var t syscall.Termios
	return termios.Tcgetattr(f.Fd(), &t) == nil
}

// Watch switches f to cbreak mode (no line buffering, no local echo) and
// starts a background reader that calls cancel the first time it sees
// 'q' or 'Q'. If f is not a terminal, Watch is a no-op and returns an
// inactive Watcher so CleanUp is always safe to call.
func Watch(f *os.File, cancel func()) *Watcher {
	w := &Watcher{f: f}

	var canAttr syscall.Termios
	if err := termios.Tcgetattr(f.Fd(), &canAttr); err != nil {
		return w
	}
	w.canAttr = canAttr
	w.active = true

	cbreakAttr := canAttr
	termios.Cfmakecbreak(&cbreakAttr)
	termios.Tcsetattr(f.Fd(), termios.TCIFLUSH, &cbreakAttr)

	go watchLoop(f, cancel)
	return w
}

func watchLoop(f *os.File, cancel func()) {
	buf := make([]byte, 1)
	for {
		n, err := f.Read(buf)
		if err != nil || n == 0 {
			return
		}
		if buf[0] == 'q' || buf[0] == 'Q' {
			cancel()
			return
		}
	}
}

// CleanUp restores the terminal to the mode it was in before Watch. Safe
// to call on an inactive Watcher (Watch found f was not a terminal).
func (w *Watcher) CleanUp() {
	if !w.active {
		return
	}
	termios.Tcsetattr(w.f.Fd(), termios.TCIFLUSH, &w.canAttr)
	w.active = false
}
