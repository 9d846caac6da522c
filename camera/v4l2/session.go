//go:build linux

package v4l2

import (
	"image"
	"strings"
	"sync"
	"time"

	"github.com/blackjack/webcam"
	"github.com/dialup-inc/camkit/camera"
	"github.com/dialup-inc/camkit/yuv"
)

type callbacks struct {
	errored func(camera.Code, camera.State)
	state   func(camera.StateChangedEvent)
	preview func(camera.PreviewFrame)
	packet  func(camera.PreviewFrame)
}

type captureReq struct {
	remaining   int
	interval    time.Duration
	next        time.Time
	onCapturing func(camera.CapturingEvent)
	onCompleted func()
}

// session is one opened device. The stream runs from StartPreview until
// StopPreview or Destroy; captures are cut from it.
//
// Callbacks run on the stream goroutine and must not call Destroy.
type session struct {
	d   *Driver
	dev camera.Device
	cam *webcam.Webcam

	mu      sync.Mutex
	state   camera.State
	size    image.Point
	fps     int
	quality int
	cb      callbacks
	capture *captureReq

	stop chan struct{}
	done chan struct{}
}

func newSession(d *Driver, dev camera.Device, cam *webcam.Webcam) *session {
	return &session{
		d:       d,
		dev:     dev,
		cam:     cam,
		state:   camera.StateCreated,
		size:    image.Pt(640, 480),
		fps:     30,
		quality: 90,
	}
}

func (s *session) getState() camera.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// transition must be called with s.mu held. The returned func fires the
// state callback and must be called after unlocking.
func (s *session) transition(to camera.State) func() {
	from := s.state
	s.state = to
	fn := s.cb.state
	if fn == nil || from == to {
		return func() {}
	}
	return func() {
		fn(camera.StateChangedEvent{Previous: from, Current: to})
	}
}

// selectFormat prefers MJPEG over YUYV. Each is matched by fourcc, then by
// the driver's description.
func selectFormat(formats map[webcam.PixelFormat]string) (webcam.PixelFormat, camera.PixelFormat) {
	candidates := []struct {
		fourcc webcam.PixelFormat
		prefix string
		format camera.PixelFormat
	}{
		{formatMJPG, "Motion-JPEG", camera.PixelFormatJPEG},
		{formatYUYV, "YUYV", camera.PixelFormatYUYV},
	}
	for _, c := range candidates {
		if _, ok := formats[c.fourcc]; ok {
			return c.fourcc, c.format
		}
		for f, name := range formats {
			if strings.HasPrefix(name, c.prefix) {
				return f, c.format
			}
		}
	}
	return 0, camera.PixelFormatInvalid
}

func (s *session) startPreview() camera.Code {
	s.mu.Lock()
	if !(s.state == camera.StateCreated || s.state == camera.StateCaptured) {
		s.mu.Unlock()
		return camera.CodeInvalidState
	}
	if s.stop != nil {
		notify := s.transition(camera.StatePreview)
		s.mu.Unlock()
		notify()
		return camera.CodeOK
	}
	prev := s.done
	size := s.size
	s.mu.Unlock()

	// A stream stopped from a callback may still be draining.
	if prev != nil {
		<-prev
	}

	wf, format := selectFormat(s.cam.GetSupportedFormats())
	if format == camera.PixelFormatInvalid {
		return camera.CodeNotSupported
	}
	_, w, h, err := s.cam.SetImageFormat(wf, uint32(size.X), uint32(size.Y))
	if err != nil {
		return codeOf(err)
	}
	if err := s.cam.StartStreaming(); err != nil {
		return codeOf(err)
	}

	stop, done := make(chan struct{}), make(chan struct{})

	s.mu.Lock()
	s.size = image.Pt(int(w), int(h))
	s.stop, s.done = stop, done
	notify := s.transition(camera.StatePreview)
	s.mu.Unlock()

	go s.run(stop, done, format, image.Pt(int(w), int(h)))
	notify()
	return camera.CodeOK
}

func (s *session) stopPreview() camera.Code {
	s.mu.Lock()
	if s.state != camera.StatePreview {
		s.mu.Unlock()
		return camera.CodeInvalidState
	}
	if s.stop != nil {
		close(s.stop)
		s.stop = nil
	}
	notify := s.transition(camera.StateCreated)
	s.mu.Unlock()

	notify()
	return camera.CodeOK
}

// stopStream stops the stream and waits for it to drain.
func (s *session) stopStream() {
	s.mu.Lock()
	if s.stop != nil {
		close(s.stop)
		s.stop = nil
	}
	done := s.done
	s.capture = nil
	s.mu.Unlock()

	if done != nil {
		<-done
	}
}

func (s *session) run(stop <-chan struct{}, done chan<- struct{}, format camera.PixelFormat, size image.Point) {
	defer close(done)
	defer func() {
		if err := s.cam.StopStreaming(); err != nil {
			s.d.logger.Printf("[error] stop streaming %s: %v", s.dev, err)
		}
	}()

	start := time.Now()
	for {
		select {
		case <-stop:
			return
		default:
		}

		err := s.cam.WaitForFrame(webcamReadTimeout)
		switch err.(type) {
		case nil:
		case *webcam.Timeout:
			continue
		default:
			s.fail(err)
			return
		}

		frame, err := s.cam.ReadFrame()
		if err != nil {
			s.fail(err)
			return
		}
		if len(frame) == 0 {
			continue
		}

		// The driver reuses its buffers.
		data := make([]byte, len(frame))
		copy(data, frame)

		s.deliver(camera.PreviewFrame{
			Format:    format,
			Width:     size.X,
			Height:    size.Y,
			Data:      data,
			Timestamp: time.Since(start).Milliseconds(),
		})
	}
}

func (s *session) fail(err error) {
	s.mu.Lock()
	fn, st := s.cb.errored, s.state
	s.mu.Unlock()

	s.d.logger.Printf("[error] %s: %v", s.dev, err)
	if fn != nil {
		fn(codeOf(err), st)
	}
}

func (s *session) deliver(f camera.PreviewFrame) {
	s.mu.Lock()
	st := s.state
	preview, packet := s.cb.preview, s.cb.packet
	s.mu.Unlock()

	switch st {
	case camera.StatePreview:
		if preview != nil {
			preview(f)
		}
		if packet != nil {
			packet(f)
		}
	case camera.StateCapturing:
		s.shoot(f)
	}
}

// shoot hands f to a pending capture if one is due.
func (s *session) shoot(f camera.PreviewFrame) {
	now := time.Now()

	s.mu.Lock()
	req := s.capture
	if req == nil || now.Before(req.next) {
		s.mu.Unlock()
		return
	}
	quality := s.quality
	s.mu.Unlock()

	img, err := s.still(f, quality)
	if err != nil {
		s.fail(err)
		return
	}

	req.onCapturing(camera.CapturingEvent{Main: img})

	s.mu.Lock()
	if s.capture != req {
		// stopped while the callback ran
		s.mu.Unlock()
		return
	}
	req.remaining--
	req.next = now.Add(req.interval)
	if req.remaining > 0 {
		s.mu.Unlock()
		return
	}
	s.capture = nil
	notify := s.transition(camera.StateCaptured)
	s.mu.Unlock()

	notify()
	req.onCompleted()
}

func (s *session) still(f camera.PreviewFrame, quality int) (camera.StillImage, error) {
	img := camera.StillImage{
		Format: camera.PixelFormatJPEG,
		Width:  f.Width,
		Height: f.Height,
	}
	if f.Format == camera.PixelFormatJPEG {
		img.Data = f.Data
		return img, nil
	}

	decoded, err := f.Image()
	if err != nil {
		return img, err
	}
	img.Data, err = yuv.ToJPEG(decoded, quality)
	return img, err
}

func (s *session) startCapture(count int, interval time.Duration, onCapturing func(camera.CapturingEvent), onCompleted func()) camera.Code {
	s.mu.Lock()
	if s.state != camera.StatePreview || s.stop == nil {
		s.mu.Unlock()
		return camera.CodeInvalidState
	}
	s.capture = &captureReq{
		remaining:   count,
		interval:    interval,
		onCapturing: onCapturing,
		onCompleted: onCompleted,
	}
	notify := s.transition(camera.StateCapturing)
	s.mu.Unlock()

	notify()
	return camera.CodeOK
}

func (s *session) stopCapture() camera.Code {
	s.mu.Lock()
	if s.capture == nil {
		s.mu.Unlock()
		return camera.CodeInvalidState
	}
	s.capture = nil
	notify := s.transition(camera.StateCaptured)
	s.mu.Unlock()

	notify()
	return camera.CodeOK
}

func (s *session) attribute(a camera.Attribute) (int, camera.Code) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch a {
	case camera.AttrPreviewFPS:
		return s.fps, camera.CodeOK
	case camera.AttrImageQuality:
		return s.quality, camera.CodeOK
	default:
		return 0, camera.CodeNotSupported
	}
}

func (s *session) setAttribute(a camera.Attribute, v int) camera.Code {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch a {
	case camera.AttrPreviewFPS:
		s.fps = v
	case camera.AttrImageQuality:
		s.quality = v
	default:
		return camera.CodeNotSupported
	}
	return camera.CodeOK
}

func (s *session) resolution() image.Point {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.size
}

// setResolution applies on the next StartPreview.
func (s *session) setResolution(size image.Point) camera.Code {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stop != nil {
		return camera.CodeInvalidState
	}
	s.size = size
	return camera.CodeOK
}
