// Package mock is an in-memory camera.Driver. It synthesizes test-pattern
// frames, records every call and can be told to fail.
package mock

import (
	"context"
	"image"
	"image/color"
	"sync"
	"time"

	"github.com/dialup-inc/camkit/camera"
	"github.com/dialup-inc/camkit/yuv"
)

type session struct {
	dev     camera.Device
	state   camera.State
	display camera.DisplayType
	surface uintptr
	attrs   map[camera.Attribute]int
	res     map[camera.Resolution]image.Point
	frame   int

	interrupted func(camera.InterruptedEvent)
	errored     func(camera.Code, camera.State)
	stateCb     func(camera.StateChangedEvent)
	focusCb     func(camera.FocusState)
	previewCb   func(camera.PreviewFrame)
	packetCb    func(camera.PreviewFrame)
	faceCb      func([]camera.Face)

	onCapturing func(camera.CapturingEvent)
	onCompleted func()
	shots       int
	interval    time.Duration
}

// Driver simulates a device with a configurable number of cameras.
type Driver struct {
	// AutoCapture completes captures on a background goroutine instead of
	// waiting for CompleteCapture.
	AutoCapture bool

	mu           sync.Mutex
	devices      int
	next         uintptr
	sessions     map[uintptr]*session
	calls        map[string]int
	failures     map[string]camera.Code
	unsupported  map[camera.Feature]bool
	deviceStates map[camera.Device]camera.DeviceState
	watchers     map[int]func(camera.DeviceStateChangedEvent)
	nextToken    int
}

var _ camera.Driver = (*Driver)(nil)

// New returns a driver exposing devices cameras.
func New(devices int) *Driver {
	return &Driver{
		devices:      devices,
		sessions:     make(map[uintptr]*session),
		calls:        make(map[string]int),
		failures:     make(map[string]camera.Code),
		unsupported:  make(map[camera.Feature]bool),
		deviceStates: make(map[camera.Device]camera.DeviceState),
		watchers:     make(map[int]func(camera.DeviceStateChangedEvent)),
	}
}

// Calls returns how many times the named driver method was called.
func (d *Driver) Calls(method string) int {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.calls[method]
}

// Fail makes every later call to method return code. CodeOK clears it.
func (d *Driver) Fail(method string, code camera.Code) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if code == camera.CodeOK {
		delete(d.failures, method)
		return
	}
	d.failures[method] = code
}

// Unsupport turns off a feature for every session.
func (d *Driver) Unsupport(f camera.Feature) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.unsupported[f] = true
}

// call records method and returns the session for h. Callers hold d.mu.
func (d *Driver) call(method string, h uintptr) (*session, camera.Code) {
	d.calls[method]++
	if code, ok := d.failures[method]; ok {
		return nil, code
	}
	if h == 0 {
		return nil, camera.CodeOK
	}
	s, ok := d.sessions[h]
	if !ok {
		return nil, camera.CodeInvalidParameter
	}
	return s, camera.CodeOK
}

// transition changes the session state and returns the notification to
// deliver once d.mu is released.
func (s *session) transition(to camera.State) func() {
	prev := s.state
	s.state = to
	cb := s.stateCb
	if cb == nil || prev == to {
		return func() {}
	}
	return func() {
		cb(camera.StateChangedEvent{Previous: prev, Current: to})
	}
}

// setDeviceState returns the watcher notifications to deliver once d.mu is
// released.
func (d *Driver) setDeviceState(dev camera.Device, st camera.DeviceState) func() {
	if d.deviceStates[dev] == st {
		return func() {}
	}
	d.deviceStates[dev] = st

	fns := make([]func(camera.DeviceStateChangedEvent), 0, len(d.watchers))
	for _, fn := range d.watchers {
		fns = append(fns, fn)
	}
	return func() {
		for _, fn := range fns {
			fn(camera.DeviceStateChangedEvent{Device: dev, State: st})
		}
	}
}

func (d *Driver) Create(dev camera.Device) (uintptr, camera.Code) {
	d.mu.Lock()
	if _, code := d.call("Create", 0); code != camera.CodeOK {
		d.mu.Unlock()
		return 0, code
	}
	if int(dev) >= d.devices {
		d.mu.Unlock()
		return 0, camera.CodeDeviceNotFound
	}
	if d.deviceStates[dev] != camera.DeviceStateNull {
		d.mu.Unlock()
		return 0, camera.CodeDeviceBusy
	}

	d.next++
	h := d.next
	d.sessions[h] = &session{
		dev:   dev,
		state: camera.StateCreated,
		attrs: map[camera.Attribute]int{
			camera.AttrPreviewFPS:   30,
			camera.AttrImageQuality: 95,
		},
		res: map[camera.Resolution]image.Point{
			camera.ResolutionPreview: {X: 64, Y: 48},
			camera.ResolutionCapture: {X: 64, Y: 48},
		},
	}
	notify := d.setDeviceState(dev, camera.DeviceStateOpened)
	d.mu.Unlock()

	notify()
	return h, camera.CodeOK
}

func (d *Driver) Destroy(h uintptr) camera.Code {
	d.mu.Lock()
	s, code := d.call("Destroy", h)
	if code != camera.CodeOK {
		d.mu.Unlock()
		return code
	}
	delete(d.sessions, h)
	notify := d.setDeviceState(s.dev, camera.DeviceStateNull)
	d.mu.Unlock()

	notify()
	return camera.CodeOK
}

// Sessions returns the number of live handles.
func (d *Driver) Sessions() int {
	d.mu.Lock()
	defer d.mu.Unlock()

	return len(d.sessions)
}

func (d *Driver) State(h uintptr) (camera.State, camera.Code) {
	d.mu.Lock()
	defer d.mu.Unlock()

	s, code := d.call("State", h)
	if code != camera.CodeOK {
		return camera.StateNone, code
	}
	return s.state, camera.CodeOK
}

func (d *Driver) ChangeDevice(h uintptr, dev camera.Device) camera.Code {
	d.mu.Lock()
	defer d.mu.Unlock()

	s, code := d.call("ChangeDevice", h)
	if code != camera.CodeOK {
		return code
	}
	if int(dev) >= d.devices {
		return camera.CodeDeviceNotFound
	}
	if s.state != camera.StateCreated {
		return camera.CodeInvalidState
	}
	delete(d.deviceStates, s.dev)
	s.dev = dev
	d.deviceStates[dev] = camera.DeviceStateOpened
	return camera.CodeOK
}

func (d *Driver) Supports(h uintptr, f camera.Feature) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.calls["Supports"]++
	return !d.unsupported[f]
}

func (d *Driver) StartPreview(h uintptr) camera.Code {
	d.mu.Lock()
	s, code := d.call("StartPreview", h)
	if code != camera.CodeOK {
		d.mu.Unlock()
		return code
	}
	if s.state != camera.StateCreated && s.state != camera.StateCaptured {
		d.mu.Unlock()
		return camera.CodeInvalidState
	}
	notify := s.transition(camera.StatePreview)
	notifyDev := d.setDeviceState(s.dev, camera.DeviceStateWorking)
	d.mu.Unlock()

	notify()
	notifyDev()
	return camera.CodeOK
}

func (d *Driver) StopPreview(h uintptr) camera.Code {
	d.mu.Lock()
	s, code := d.call("StopPreview", h)
	if code != camera.CodeOK {
		d.mu.Unlock()
		return code
	}
	if s.state != camera.StatePreview {
		d.mu.Unlock()
		return camera.CodeInvalidState
	}
	notify := s.transition(camera.StateCreated)
	notifyDev := d.setDeviceState(s.dev, camera.DeviceStateOpened)
	d.mu.Unlock()

	notify()
	notifyDev()
	return camera.CodeOK
}

func (d *Driver) StartCapture(h uintptr, onCapturing func(camera.CapturingEvent), onCompleted func()) camera.Code {
	return d.startCapture("StartCapture", h, 1, 0, onCapturing, onCompleted)
}

func (d *Driver) StartContinuousCapture(h uintptr, count int, interval time.Duration, onCapturing func(camera.CapturingEvent), onCompleted func()) camera.Code {
	return d.startCapture("StartContinuousCapture", h, count, interval, onCapturing, onCompleted)
}

func (d *Driver) startCapture(method string, h uintptr, count int, interval time.Duration, onCapturing func(camera.CapturingEvent), onCompleted func()) camera.Code {
	d.mu.Lock()
	s, code := d.call(method, h)
	if code != camera.CodeOK {
		d.mu.Unlock()
		return code
	}
	if s.state != camera.StatePreview {
		d.mu.Unlock()
		return camera.CodeInvalidState
	}
	s.onCapturing = onCapturing
	s.onCompleted = onCompleted
	s.shots = count
	s.interval = interval
	notify := s.transition(camera.StateCapturing)
	auto := d.AutoCapture
	d.mu.Unlock()

	notify()
	if auto {
		go func() {
			time.Sleep(interval)
			d.CompleteCapture(h)
		}()
	}
	return camera.CodeOK
}

// CompleteCapture delivers the pending shots of h and reports completion.
// It returns false if no capture was pending.
func (d *Driver) CompleteCapture(h uintptr) bool {
	d.mu.Lock()
	s, ok := d.sessions[h]
	if !ok || s.onCompleted == nil {
		d.mu.Unlock()
		return false
	}
	onCapturing, onCompleted := s.onCapturing, s.onCompleted
	shots := s.shots
	size := s.res[camera.ResolutionCapture]
	quality := s.attrs[camera.AttrImageQuality]
	s.onCapturing, s.onCompleted = nil, nil
	s.shots = 0
	notify := s.transition(camera.StateCaptured)
	d.mu.Unlock()

	for i := 0; i < shots; i++ {
		data, err := yuv.ToJPEG(pattern(size, i), quality)
		if err != nil {
			continue
		}
		if onCapturing != nil {
			onCapturing(camera.CapturingEvent{
				Main: camera.StillImage{
					Format: camera.PixelFormatJPEG,
					Width:  size.X,
					Height: size.Y,
					Data:   data,
				},
			})
		}
	}
	notify()
	onCompleted()
	return true
}

func (d *Driver) StopContinuousCapture(h uintptr) camera.Code {
	d.mu.Lock()
	s, code := d.call("StopContinuousCapture", h)
	if code != camera.CodeOK {
		d.mu.Unlock()
		return code
	}
	if s.state != camera.StateCapturing {
		d.mu.Unlock()
		return camera.CodeInvalidState
	}
	s.onCapturing, s.onCompleted = nil, nil
	s.shots = 0
	notify := s.transition(camera.StateCaptured)
	d.mu.Unlock()

	notify()
	return camera.CodeOK
}

func (d *Driver) StartFocusing(h uintptr, continuous bool) camera.Code {
	d.mu.Lock()
	s, code := d.call("StartFocusing", h)
	if code != camera.CodeOK {
		d.mu.Unlock()
		return code
	}
	if d.unsupported[camera.FeatureAutoFocus] {
		d.mu.Unlock()
		return camera.CodeNotSupported
	}
	cb := s.focusCb
	d.mu.Unlock()

	if cb != nil {
		cb(camera.FocusOngoing)
		cb(camera.FocusFocused)
	}
	return camera.CodeOK
}

func (d *Driver) CancelFocusing(h uintptr) camera.Code {
	d.mu.Lock()
	s, code := d.call("CancelFocusing", h)
	if code != camera.CodeOK {
		d.mu.Unlock()
		return code
	}
	cb := s.focusCb
	d.mu.Unlock()

	if cb != nil {
		cb(camera.FocusReleased)
	}
	return camera.CodeOK
}

func (d *Driver) StartFaceDetection(h uintptr, fn func([]camera.Face)) camera.Code {
	d.mu.Lock()
	defer d.mu.Unlock()

	s, code := d.call("StartFaceDetection", h)
	if code != camera.CodeOK {
		return code
	}
	s.faceCb = fn
	return camera.CodeOK
}

func (d *Driver) StopFaceDetection(h uintptr) camera.Code {
	d.mu.Lock()
	defer d.mu.Unlock()

	s, code := d.call("StopFaceDetection", h)
	if code != camera.CodeOK {
		return code
	}
	s.faceCb = nil
	return camera.CodeOK
}

func (d *Driver) Attribute(h uintptr, a camera.Attribute) (int, camera.Code) {
	d.mu.Lock()
	defer d.mu.Unlock()

	s, code := d.call("Attribute", h)
	if code != camera.CodeOK {
		return 0, code
	}
	return s.attrs[a], camera.CodeOK
}

func (d *Driver) SetAttribute(h uintptr, a camera.Attribute, v int) camera.Code {
	d.mu.Lock()
	defer d.mu.Unlock()

	s, code := d.call("SetAttribute", h)
	if code != camera.CodeOK {
		return code
	}
	s.attrs[a] = v
	return camera.CodeOK
}

func (d *Driver) Resolution(h uintptr, r camera.Resolution) (image.Point, camera.Code) {
	d.mu.Lock()
	defer d.mu.Unlock()

	s, code := d.call("Resolution", h)
	if code != camera.CodeOK {
		return image.Point{}, code
	}
	return s.res[r], camera.CodeOK
}

func (d *Driver) SetResolution(h uintptr, r camera.Resolution, size image.Point) camera.Code {
	d.mu.Lock()
	defer d.mu.Unlock()

	s, code := d.call("SetResolution", h)
	if code != camera.CodeOK {
		return code
	}
	if size.X%2 != 0 || size.Y%2 != 0 {
		return camera.CodeInvalidParameter
	}
	s.res[r] = size
	return camera.CodeOK
}

func (d *Driver) DeviceCount(h uintptr) (int, camera.Code) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, code := d.call("DeviceCount", h); code != camera.CodeOK {
		return 0, code
	}
	return d.devices, camera.CodeOK
}

func (d *Driver) Direction(h uintptr) (camera.Direction, camera.Code) {
	d.mu.Lock()
	defer d.mu.Unlock()

	s, code := d.call("Direction", h)
	if code != camera.CodeOK {
		return 0, code
	}
	switch s.dev {
	case camera.DeviceRear:
		return camera.DirectionBack, camera.CodeOK
	case camera.DeviceFront:
		return camera.DirectionFront, camera.CodeOK
	default:
		return camera.DirectionExternal, camera.CodeOK
	}
}

func (d *Driver) FlashState(dev camera.Device) (camera.FlashState, camera.Code) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, code := d.call("FlashState", 0); code != camera.CodeOK {
		return 0, code
	}
	if int(dev) >= d.devices {
		return 0, camera.CodeDeviceNotFound
	}
	return camera.FlashNotUsed, camera.CodeOK
}

func (d *Driver) DeviceState(dev camera.Device) (camera.DeviceState, camera.Code) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, code := d.call("DeviceState", 0); code != camera.CodeOK {
		return 0, code
	}
	if int(dev) >= d.devices {
		return 0, camera.CodeDeviceNotFound
	}
	return d.deviceStates[dev], camera.CodeOK
}

func (d *Driver) SetDisplay(h uintptr, t camera.DisplayType, surface uintptr) camera.Code {
	d.mu.Lock()
	defer d.mu.Unlock()

	s, code := d.call("SetDisplay", h)
	if code != camera.CodeOK {
		return code
	}
	if t != camera.DisplayNone && surface == 0 {
		return camera.CodeInvalidParameter
	}
	s.display = t
	s.surface = surface
	return camera.CodeOK
}

// Display returns the display currently set on h.
func (d *Driver) Display(h uintptr) (camera.DisplayType, uintptr) {
	d.mu.Lock()
	defer d.mu.Unlock()

	s, ok := d.sessions[h]
	if !ok {
		return camera.DisplayNone, 0
	}
	return s.display, s.surface
}

func (d *Driver) setCallback(method string, h uintptr, set func(*session)) camera.Code {
	d.mu.Lock()
	defer d.mu.Unlock()

	s, code := d.call(method, h)
	if code != camera.CodeOK {
		return code
	}
	set(s)
	return camera.CodeOK
}

func (d *Driver) SetInterruptedCallback(h uintptr, fn func(camera.InterruptedEvent)) camera.Code {
	return d.setCallback("SetInterruptedCallback", h, func(s *session) { s.interrupted = fn })
}

func (d *Driver) UnsetInterruptedCallback(h uintptr) camera.Code {
	return d.setCallback("UnsetInterruptedCallback", h, func(s *session) { s.interrupted = nil })
}

func (d *Driver) SetErrorCallback(h uintptr, fn func(camera.Code, camera.State)) camera.Code {
	return d.setCallback("SetErrorCallback", h, func(s *session) { s.errored = fn })
}

func (d *Driver) UnsetErrorCallback(h uintptr) camera.Code {
	return d.setCallback("UnsetErrorCallback", h, func(s *session) { s.errored = nil })
}

func (d *Driver) SetStateChangedCallback(h uintptr, fn func(camera.StateChangedEvent)) camera.Code {
	return d.setCallback("SetStateChangedCallback", h, func(s *session) { s.stateCb = fn })
}

func (d *Driver) UnsetStateChangedCallback(h uintptr) camera.Code {
	return d.setCallback("UnsetStateChangedCallback", h, func(s *session) { s.stateCb = nil })
}

func (d *Driver) SetFocusChangedCallback(h uintptr, fn func(camera.FocusState)) camera.Code {
	return d.setCallback("SetFocusChangedCallback", h, func(s *session) { s.focusCb = fn })
}

func (d *Driver) UnsetFocusChangedCallback(h uintptr) camera.Code {
	return d.setCallback("UnsetFocusChangedCallback", h, func(s *session) { s.focusCb = nil })
}

func (d *Driver) SetPreviewCallback(h uintptr, fn func(camera.PreviewFrame)) camera.Code {
	return d.setCallback("SetPreviewCallback", h, func(s *session) { s.previewCb = fn })
}

func (d *Driver) UnsetPreviewCallback(h uintptr) camera.Code {
	return d.setCallback("UnsetPreviewCallback", h, func(s *session) { s.previewCb = nil })
}

func (d *Driver) SetMediaPacketPreviewCallback(h uintptr, fn func(camera.PreviewFrame)) camera.Code {
	return d.setCallback("SetMediaPacketPreviewCallback", h, func(s *session) { s.packetCb = fn })
}

func (d *Driver) UnsetMediaPacketPreviewCallback(h uintptr) camera.Code {
	return d.setCallback("UnsetMediaPacketPreviewCallback", h, func(s *session) { s.packetCb = nil })
}

func (d *Driver) AddDeviceStateChangedCallback(fn func(camera.DeviceStateChangedEvent)) (int, camera.Code) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, code := d.call("AddDeviceStateChangedCallback", 0); code != camera.CodeOK {
		return 0, code
	}
	d.nextToken++
	d.watchers[d.nextToken] = fn
	return d.nextToken, camera.CodeOK
}

func (d *Driver) RemoveDeviceStateChangedCallback(token int) camera.Code {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, code := d.call("RemoveDeviceStateChangedCallback", 0); code != camera.CodeOK {
		return code
	}
	if _, ok := d.watchers[token]; !ok {
		return camera.CodeInvalidParameter
	}
	delete(d.watchers, token)
	return camera.CodeOK
}

// Watchers returns the number of device state registrations.
func (d *Driver) Watchers() int {
	d.mu.Lock()
	defer d.mu.Unlock()

	return len(d.watchers)
}

// EmitPreviewFrame pushes one synthesized I420 frame to the preview
// callbacks of h. It reports whether any callback was registered.
func (d *Driver) EmitPreviewFrame(h uintptr) bool {
	d.mu.Lock()
	s, ok := d.sessions[h]
	if !ok || s.state != camera.StatePreview {
		d.mu.Unlock()
		return false
	}
	previewCb, packetCb := s.previewCb, s.packetCb
	size := s.res[camera.ResolutionPreview]
	s.frame++
	n := s.frame
	d.mu.Unlock()

	if previewCb == nil && packetCb == nil {
		return false
	}

	data, w, hgt := yuv.ToI420(pattern(size, n))
	frame := camera.PreviewFrame{
		Format:    camera.PixelFormatI420,
		Width:     w,
		Height:    hgt,
		Data:      data,
		Timestamp: int64(n),
	}
	if previewCb != nil {
		previewCb(frame)
	}
	if packetCb != nil {
		packetCb(frame)
	}
	return true
}

// Run emits preview frames for h at fps until ctx is done.
func (d *Driver) Run(ctx context.Context, h uintptr, fps int) {
	if fps <= 0 {
		fps = 30
	}
	ticker := time.NewTicker(time.Second / time.Duration(fps))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			d.EmitPreviewFrame(h)
		}
	}
}

// EmitFaces delivers faces to the face detection callback of h.
func (d *Driver) EmitFaces(h uintptr, faces []camera.Face) bool {
	d.mu.Lock()
	s, ok := d.sessions[h]
	var cb func([]camera.Face)
	if ok {
		cb = s.faceCb
	}
	d.mu.Unlock()

	if cb == nil {
		return false
	}
	cb(faces)
	return true
}

// Interrupt simulates a policy interruption: the session drops back to
// StateCreated.
func (d *Driver) Interrupt(h uintptr, p camera.Policy) bool {
	d.mu.Lock()
	s, ok := d.sessions[h]
	if !ok {
		d.mu.Unlock()
		return false
	}
	prev := s.state
	cb := s.interrupted
	notify := s.transition(camera.StateCreated)
	d.mu.Unlock()

	if cb != nil {
		cb(camera.InterruptedEvent{Policy: p, Previous: prev, Current: camera.StateCreated})
	}
	notify()
	return true
}

// RaiseError reports an asynchronous driver error on h.
func (d *Driver) RaiseError(h uintptr, code camera.Code) bool {
	d.mu.Lock()
	s, ok := d.sessions[h]
	var cb func(camera.Code, camera.State)
	var st camera.State
	if ok {
		cb, st = s.errored, s.state
	}
	d.mu.Unlock()

	if cb == nil {
		return false
	}
	cb(code, st)
	return true
}

// pattern draws a moving gradient so consecutive frames differ.
func pattern(size image.Point, n int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, size.X, size.Y))
	for y := 0; y < size.Y; y++ {
		for x := 0; x < size.X; x++ {
			img.Set(x, y, color.RGBA{
				R: uint8((x + n) * 255 / max(size.X, 1)),
				G: uint8(y * 255 / max(size.Y, 1)),
				B: uint8(n * 8),
				A: 255,
			})
		}
	}
	return img
}

// Handle returns the live handle opened for dev, or 0.
func (d *Driver) Handle(dev camera.Device) uintptr {
	d.mu.Lock()
	defer d.mu.Unlock()

	for h, s := range d.sessions {
		if s.dev == dev {
			return h
		}
	}
	return 0
}
