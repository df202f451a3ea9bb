package render

import (
	"io"

	"golang.org/x/sys/unix"
)

// DefaultWidth is used when the output is not a terminal.
const DefaultWidth = 80

// TerminalWidth returns the column count of w when it is a terminal, or
// DefaultWidth otherwise.
func TerminalWidth(w io.Writer) int {
	f, ok := w.(interface{ Fd() uintptr })
	if !ok {
		return DefaultWidth
	}
	ws, err := unix.IoctlGetWinsize(int(f.Fd()), unix.TIOCGWINSZ)
	if err != nil || ws.Col == 0 {
		return DefaultWidth
	}
	return int(ws.Col)
}
