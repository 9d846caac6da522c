//go:build linux || darwin

package term

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// WinSize is a terminal size in cells and, when the terminal reports it,
// in pixels.
type WinSize struct {
	Rows   int
	Cols   int
	Width  int
	Height int
}

// CellAspect returns the height to width ratio of one cell. Terminals
// that don't report their pixel size get 2.
func (w WinSize) CellAspect() float64 {
	if w.Width == 0 || w.Height == 0 || w.Rows == 0 || w.Cols == 0 {
		return 2.0
	}
	return float64(w.Height) * float64(w.Cols) / float64(w.Rows) / float64(w.Width)
}

// WindowSize reads the size of the terminal open on fd.
func WindowSize(fd int) (WinSize, error) {
	ws, err := unix.IoctlGetWinsize(fd, unix.TIOCGWINSZ)
	if err != nil {
		return WinSize{}, fmt.Errorf("term: window size of fd %d: %w", fd, err)
	}
	return WinSize{
		Rows:   int(ws.Row),
		Cols:   int(ws.Col),
		Width:  int(ws.Xpixel),
		Height: int(ws.Ypixel),
	}, nil
}

func StdoutSize() (WinSize, error) {
	return WindowSize(int(os.Stdout.Fd()))
}
