//go:build linux

// Package v4l2 implements camera.Driver for Video4Linux devices.
//
// V4L2 has no notion of focus, face detection or display surfaces, so those
// calls report camera.CodeNotSupported. Captures are taken from the preview
// stream.
package v4l2

import (
	"errors"
	"fmt"
	"image"
	"log"
	"os"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/blackjack/webcam"
	"github.com/dialup-inc/camkit/camera"
)

const (
	// fourcc codes
	formatYUYV webcam.PixelFormat = 0x56595559
	formatMJPG webcam.PixelFormat = 0x47504a4d
)

const webcamReadTimeout = 5

type Driver struct {
	// DevicePath maps a device to its node. Defaults to /dev/videoN.
	DevicePath func(camera.Device) string

	logger *log.Logger

	mu        sync.Mutex
	next      uintptr
	sessions  map[uintptr]*session
	opened    map[camera.Device]camera.DeviceState
	watchers  map[int]func(camera.DeviceStateChangedEvent)
	nextToken int
}

var _ camera.Driver = (*Driver)(nil)

func New(logger *log.Logger) *Driver {
	if logger == nil {
		logger = log.New(os.Stderr, "[v4l2] ", log.LstdFlags)
	}
	return &Driver{
		DevicePath: func(dev camera.Device) string {
			return fmt.Sprintf("/dev/video%d", int(dev))
		},
		logger:   logger,
		sessions: make(map[uintptr]*session),
		opened:   make(map[camera.Device]camera.DeviceState),
		watchers: make(map[int]func(camera.DeviceStateChangedEvent)),
	}
}

func codeOf(err error) camera.Code {
	switch {
	case err == nil:
		return camera.CodeOK
	case os.IsNotExist(err):
		return camera.CodeDeviceNotFound
	case os.IsPermission(err):
		return camera.CodePermissionDenied
	case errors.Is(err, syscall.EBUSY):
		return camera.CodeDeviceBusy
	case errors.Is(err, syscall.ENOMEM):
		return camera.CodeOutOfMemory
	default:
		return camera.CodeDevice
	}
}

func (d *Driver) session(h uintptr) (*session, camera.Code) {
	d.mu.Lock()
	defer d.mu.Unlock()

	s, ok := d.sessions[h]
	if !ok {
		return nil, camera.CodeInvalidParameter
	}
	return s, camera.CodeOK
}

// setDeviceState records st for dev and notifies watchers.
func (d *Driver) setDeviceState(dev camera.Device, st camera.DeviceState) {
	d.mu.Lock()
	if d.opened[dev] == st {
		d.mu.Unlock()
		return
	}
	if st == camera.DeviceStateNull {
		delete(d.opened, dev)
	} else {
		d.opened[dev] = st
	}
	fns := make([]func(camera.DeviceStateChangedEvent), 0, len(d.watchers))
	for _, fn := range d.watchers {
		fns = append(fns, fn)
	}
	d.mu.Unlock()

	for _, fn := range fns {
		fn(camera.DeviceStateChangedEvent{Device: dev, State: st})
	}
}

func (d *Driver) Create(dev camera.Device) (uintptr, camera.Code) {
	cam, err := webcam.Open(d.DevicePath(dev))
	if err != nil {
		return 0, codeOf(err)
	}

	s := newSession(d, dev, cam)

	d.mu.Lock()
	d.next++
	h := d.next
	d.sessions[h] = s
	d.mu.Unlock()

	d.setDeviceState(dev, camera.DeviceStateOpened)
	return h, camera.CodeOK
}

func (d *Driver) Destroy(h uintptr) camera.Code {
	d.mu.Lock()
	s, ok := d.sessions[h]
	delete(d.sessions, h)
	d.mu.Unlock()
	if !ok {
		return camera.CodeInvalidParameter
	}

	s.stopStream()
	err := s.cam.Close()
	d.setDeviceState(s.dev, camera.DeviceStateNull)
	return codeOf(err)
}

func (d *Driver) State(h uintptr) (camera.State, camera.Code) {
	s, code := d.session(h)
	if code != camera.CodeOK {
		return camera.StateNone, code
	}
	return s.getState(), camera.CodeOK
}

func (d *Driver) ChangeDevice(h uintptr, dev camera.Device) camera.Code {
	return camera.CodeNotSupported
}

func (d *Driver) Supports(h uintptr, f camera.Feature) bool {
	switch f {
	case camera.FeatureContinuousCapture, camera.FeatureDecodedPreview:
		return true
	default:
		return false
	}
}

func (d *Driver) StartPreview(h uintptr) camera.Code {
	s, code := d.session(h)
	if code != camera.CodeOK {
		return code
	}
	if code := s.startPreview(); code != camera.CodeOK {
		return code
	}
	d.setDeviceState(s.dev, camera.DeviceStateWorking)
	return camera.CodeOK
}

func (d *Driver) StopPreview(h uintptr) camera.Code {
	s, code := d.session(h)
	if code != camera.CodeOK {
		return code
	}
	if code := s.stopPreview(); code != camera.CodeOK {
		return code
	}
	d.setDeviceState(s.dev, camera.DeviceStateOpened)
	return camera.CodeOK
}

func (d *Driver) StartCapture(h uintptr, onCapturing func(camera.CapturingEvent), onCompleted func()) camera.Code {
	s, code := d.session(h)
	if code != camera.CodeOK {
		return code
	}
	return s.startCapture(1, 0, onCapturing, onCompleted)
}

func (d *Driver) StartContinuousCapture(h uintptr, count int, interval time.Duration, onCapturing func(camera.CapturingEvent), onCompleted func()) camera.Code {
	s, code := d.session(h)
	if code != camera.CodeOK {
		return code
	}
	return s.startCapture(count, interval, onCapturing, onCompleted)
}

func (d *Driver) StopContinuousCapture(h uintptr) camera.Code {
	s, code := d.session(h)
	if code != camera.CodeOK {
		return code
	}
	return s.stopCapture()
}

func (d *Driver) StartFocusing(h uintptr, continuous bool) camera.Code {
	return camera.CodeNotSupported
}

func (d *Driver) CancelFocusing(h uintptr) camera.Code {
	return camera.CodeNotSupported
}

func (d *Driver) StartFaceDetection(h uintptr, fn func([]camera.Face)) camera.Code {
	return camera.CodeNotSupported
}

func (d *Driver) StopFaceDetection(h uintptr) camera.Code {
	return camera.CodeNotSupported
}

func (d *Driver) Attribute(h uintptr, a camera.Attribute) (int, camera.Code) {
	s, code := d.session(h)
	if code != camera.CodeOK {
		return 0, code
	}
	return s.attribute(a)
}

func (d *Driver) SetAttribute(h uintptr, a camera.Attribute, v int) camera.Code {
	s, code := d.session(h)
	if code != camera.CodeOK {
		return code
	}
	return s.setAttribute(a, v)
}

// Resolution reports the stream size. Preview and capture share one stream.
func (d *Driver) Resolution(h uintptr, r camera.Resolution) (image.Point, camera.Code) {
	s, code := d.session(h)
	if code != camera.CodeOK {
		return image.Point{}, code
	}
	return s.resolution(), camera.CodeOK
}

func (d *Driver) SetResolution(h uintptr, r camera.Resolution, size image.Point) camera.Code {
	s, code := d.session(h)
	if code != camera.CodeOK {
		return code
	}
	return s.setResolution(size)
}

func (d *Driver) DeviceCount(h uintptr) (int, camera.Code) {
	nodes, err := filepath.Glob("/dev/video*")
	if err != nil {
		return 0, camera.CodeDevice
	}
	return len(nodes), camera.CodeOK
}

func (d *Driver) Direction(h uintptr) (camera.Direction, camera.Code) {
	if _, code := d.session(h); code != camera.CodeOK {
		return 0, code
	}
	return camera.DirectionExternal, camera.CodeOK
}

func (d *Driver) FlashState(dev camera.Device) (camera.FlashState, camera.Code) {
	if _, err := os.Stat(d.DevicePath(dev)); err != nil {
		return 0, codeOf(err)
	}
	return camera.FlashNotUsed, camera.CodeOK
}

func (d *Driver) DeviceState(dev camera.Device) (camera.DeviceState, camera.Code) {
	d.mu.Lock()
	st, ok := d.opened[dev]
	d.mu.Unlock()
	if ok {
		return st, camera.CodeOK
	}

	if _, err := os.Stat(d.DevicePath(dev)); err != nil {
		return 0, codeOf(err)
	}
	return camera.DeviceStateNull, camera.CodeOK
}

// SetDisplay only accepts DisplayNone; frames reach the screen through the
// preview callbacks.
func (d *Driver) SetDisplay(h uintptr, t camera.DisplayType, surface uintptr) camera.Code {
	if _, code := d.session(h); code != camera.CodeOK {
		return code
	}
	if t != camera.DisplayNone {
		return camera.CodeNotSupported
	}
	return camera.CodeOK
}

func (d *Driver) setCallback(h uintptr, set func(*callbacks)) camera.Code {
	s, code := d.session(h)
	if code != camera.CodeOK {
		return code
	}
	s.mu.Lock()
	set(&s.cb)
	s.mu.Unlock()
	return camera.CodeOK
}

func (d *Driver) SetInterruptedCallback(h uintptr, fn func(camera.InterruptedEvent)) camera.Code {
	// Nothing on a plain V4L2 node interrupts a session.
	return d.setCallback(h, func(cb *callbacks) {})
}

func (d *Driver) UnsetInterruptedCallback(h uintptr) camera.Code {
	return d.setCallback(h, func(cb *callbacks) {})
}

func (d *Driver) SetErrorCallback(h uintptr, fn func(camera.Code, camera.State)) camera.Code {
	return d.setCallback(h, func(cb *callbacks) { cb.errored = fn })
}

func (d *Driver) UnsetErrorCallback(h uintptr) camera.Code {
	return d.setCallback(h, func(cb *callbacks) { cb.errored = nil })
}

func (d *Driver) SetStateChangedCallback(h uintptr, fn func(camera.StateChangedEvent)) camera.Code {
	return d.setCallback(h, func(cb *callbacks) { cb.state = fn })
}

func (d *Driver) UnsetStateChangedCallback(h uintptr) camera.Code {
	return d.setCallback(h, func(cb *callbacks) { cb.state = nil })
}

func (d *Driver) SetFocusChangedCallback(h uintptr, fn func(camera.FocusState)) camera.Code {
	return d.setCallback(h, func(cb *callbacks) {})
}

func (d *Driver) UnsetFocusChangedCallback(h uintptr) camera.Code {
	return d.setCallback(h, func(cb *callbacks) {})
}

func (d *Driver) SetPreviewCallback(h uintptr, fn func(camera.PreviewFrame)) camera.Code {
	return d.setCallback(h, func(cb *callbacks) { cb.preview = fn })
}

func (d *Driver) UnsetPreviewCallback(h uintptr) camera.Code {
	return d.setCallback(h, func(cb *callbacks) { cb.preview = nil })
}

func (d *Driver) SetMediaPacketPreviewCallback(h uintptr, fn func(camera.PreviewFrame)) camera.Code {
	return d.setCallback(h, func(cb *callbacks) { cb.packet = fn })
}

func (d *Driver) UnsetMediaPacketPreviewCallback(h uintptr) camera.Code {
	return d.setCallback(h, func(cb *callbacks) { cb.packet = nil })
}

func (d *Driver) AddDeviceStateChangedCallback(fn func(camera.DeviceStateChangedEvent)) (int, camera.Code) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.nextToken++
	d.watchers[d.nextToken] = fn
	return d.nextToken, camera.CodeOK
}

func (d *Driver) RemoveDeviceStateChangedCallback(token int) camera.Code {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.watchers[token]; !ok {
		return camera.CodeInvalidParameter
	}
	delete(d.watchers, token)
	return camera.CodeOK
}
