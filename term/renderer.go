//go:build linux || darwin

package term

import (
	"bytes"
	"image"
	"image/color"
	"io"
	"log"
	"os"
	"sync"
)

func NewRenderer() *Renderer {
	return &Renderer{
		Out:          os.Stdout,
		Size:         StdoutSize,
		requestFrame: make(chan struct{}, 1),
		done:         make(chan struct{}),
	}
}

// Renderer redraws the terminal whenever a new image or status arrives.
// The bottom row holds the status line.
type Renderer struct {
	Out  io.Writer
	Size func() (WinSize, error)
	// Aspect is the cell height to width ratio. Zero uses
	// WinSize.CellAspect.
	Aspect          float64
	LightBackground bool

	requestFrame chan struct{}
	done         chan struct{}
	stopOnce     sync.Once

	mu     sync.Mutex
	img    image.Image
	status string
}

func (r *Renderer) SetImage(i image.Image) {
	r.mu.Lock()
	r.img = i
	r.mu.Unlock()

	r.request()
}

func (r *Renderer) SetStatus(s string) {
	r.mu.Lock()
	r.status = s
	r.mu.Unlock()

	r.request()
}

func (r *Renderer) request() {
	select {
	case r.requestFrame <- struct{}{}:
	default:
	}
}

// Draw renders the current image and status once.
func (r *Renderer) Draw() error {
	winsize, err := r.Size()
	if err != nil {
		return err
	}
	if winsize.Rows < 2 || winsize.Cols < 1 {
		return nil
	}

	r.mu.Lock()
	img, status := r.img, r.status
	r.mu.Unlock()

	var buf bytes.Buffer
	a := ANSI{Writer: &buf}

	a.CursorPosition(1, 1)
	aspect := r.Aspect
	if aspect == 0 {
		aspect = winsize.CellAspect()
	}
	buf.Write(Image2ANSI(img, winsize.Cols, winsize.Rows-1, aspect, r.LightBackground))

	a.CursorPosition(winsize.Rows, 1)
	a.EraseLine()
	a.Foreground(color.White)
	if len(status) > winsize.Cols {
		status = status[:winsize.Cols]
	}
	buf.WriteString(status)

	_, err = io.Copy(r.Out, &buf)
	return err
}

func (r *Renderer) loop() {
	for {
		select {
		case <-r.done:
			return
		case <-r.requestFrame:
			if err := r.Draw(); err != nil {
				log.Printf("[error] draw: %v", err)
			}
		}
	}
}

func (r *Renderer) Start() {
	var buf bytes.Buffer

	a := ANSI{Writer: &buf}
	a.Clear()
	a.HideCursor()
	a.Bold()
	a.Background(color.Black)

	io.Copy(r.Out, &buf)

	go r.loop()
}

func (r *Renderer) Stop() {
	r.stopOnce.Do(func() { close(r.done) })

	a := ANSI{Writer: r.Out}
	a.ShowCursor()
	a.Reset()
}
