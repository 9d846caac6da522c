package term

import (
	"fmt"
	"image/color"
	"io"
)

// ANSIPalette is the 16 color terminal palette. Indices 0-7 are the normal
// colors and 8-15 their bright variants.
var ANSIPalette = color.Palette{
	color.RGBA{0x00, 0x00, 0x00, 0xff},
	color.RGBA{0xcd, 0x00, 0x00, 0xff},
	color.RGBA{0x00, 0xcd, 0x00, 0xff},
	color.RGBA{0xcd, 0xcd, 0x00, 0xff},
	color.RGBA{0x00, 0x00, 0xee, 0xff},
	color.RGBA{0xcd, 0x00, 0xcd, 0xff},
	color.RGBA{0x00, 0xcd, 0xcd, 0xff},
	color.RGBA{0xe5, 0xe5, 0xe5, 0xff},
	color.RGBA{0x7f, 0x7f, 0x7f, 0xff},
	color.RGBA{0xff, 0x00, 0x00, 0xff},
	color.RGBA{0x00, 0xff, 0x00, 0xff},
	color.RGBA{0xff, 0xff, 0x00, 0xff},
	color.RGBA{0x5c, 0x5c, 0xff, 0xff},
	color.RGBA{0xff, 0x00, 0xff, 0xff},
	color.RGBA{0x00, 0xff, 0xff, 0xff},
	color.RGBA{0xff, 0xff, 0xff, 0xff},
}

// ANSI writes escape sequences to the embedded writer.
type ANSI struct {
	io.Writer
}

func (a ANSI) csi(format string, args ...interface{}) {
	fmt.Fprintf(a, "\x1b["+format, args...)
}

func colorCode(c color.Color, base int) int {
	i := ANSIPalette.Index(c)
	if i < 8 {
		return base + i
	}
	return base + 60 + i - 8
}

func (a ANSI) Foreground(c color.Color) { a.csi("%dm", colorCode(c, 30)) }
func (a ANSI) Background(c color.Color) { a.csi("%dm", colorCode(c, 40)) }

// CursorPosition moves to a 1-based row and column.
func (a ANSI) CursorPosition(row, col int) { a.csi("%d;%dH", row, col) }

func (a ANSI) Clear()      { a.csi("2J") }
func (a ANSI) EraseLine()  { a.csi("2K") }
func (a ANSI) HideCursor() { a.csi("?25l") }
func (a ANSI) ShowCursor() { a.csi("?25h") }
func (a ANSI) Bold()       { a.csi("1m") }
func (a ANSI) Reset()      { a.csi("0m") }

func (a ANSI) ForegroundReset() { a.csi("39m") }
func (a ANSI) Normal()          { a.csi("22m") }
