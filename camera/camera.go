// Package camera is a session facade over a native camera driver.
//
// A Camera owns one driver handle. Operations are gated on the cached
// session state and forwarded to the Driver; driver result codes come back
// as *Error values. Driver callbacks are fanned out to listeners attached
// with the On* methods.
package camera

import (
	"log"
	"os"
	"sync"

	"github.com/dialup-inc/camkit/native"
)

type Camera struct {
	drv    Driver
	handle *native.Handle
	logger *log.Logger

	mu            sync.Mutex
	state         State
	closed        bool
	device        Device
	display       *Display
	faceDetecting bool
	capture       *captureOp

	interrupted      listenerSet[InterruptedEvent]
	errored          listenerSet[ErrorEvent]
	stateChanged     listenerSet[StateChangedEvent]
	focusChanged     listenerSet[FocusStateChangedEvent]
	faceDetected     listenerSet[FaceDetectedEvent]
	capturing        listenerSet[CapturingEvent]
	captureCompleted listenerSet[CaptureCompletedEvent]
	preview          listenerSet[PreviewEvent]
	decodedPreview   listenerSet[DecodedPreviewEvent]
}

type Option func(*Camera)

func WithLogger(l *log.Logger) Option {
	return func(c *Camera) {
		c.logger = l
	}
}

// New opens dev through drv. The returned Camera is in StateCreated.
func New(drv Driver, dev Device, opts ...Option) (*Camera, error) {
	const op = "New"

	if !dev.Valid() {
		return nil, invalidArg(op, "unknown device %d", int(dev))
	}

	ptr, code := drv.Create(dev)
	if code != CodeOK {
		return nil, &Error{Op: op, Code: code, Kind: ErrUnknown}
	}

	c := &Camera{
		drv:    drv,
		state:  StateCreated,
		device: dev,
		logger: log.New(os.Stderr, "[camkit] ", log.LstdFlags),
	}
	for _, o := range opts {
		o(c)
	}
	c.handle = native.NewHandle(ptr, true, c.destroy)

	c.preview.attach = func() error {
		if c.isClosed() {
			return fail("OnPreview", ErrClosed)
		}
		return check(drv.SetPreviewCallback(c.ptr(), c.onPreview), "SetPreviewCallback")
	}
	c.preview.detach = func() {
		c.logError(check(drv.UnsetPreviewCallback(c.ptr()), "UnsetPreviewCallback"))
	}
	c.decodedPreview.attach = func() error {
		if c.isClosed() {
			return fail("OnDecodedPreview", ErrClosed)
		}
		if !drv.Supports(c.ptr(), FeatureDecodedPreview) {
			return &Error{Op: "OnDecodedPreview", Code: CodeNotSupported, Kind: ErrNotSupported}
		}
		return check(drv.SetMediaPacketPreviewCallback(c.ptr(), c.onMediaPacketPreview), "SetMediaPacketPreviewCallback")
	}
	c.decodedPreview.detach = func() {
		c.logError(check(drv.UnsetMediaPacketPreviewCallback(c.ptr()), "UnsetMediaPacketPreviewCallback"))
	}

	if err := c.registerCallbacks(); err != nil {
		c.unregisterCallbacks()
		c.handle.Release()
		return nil, err
	}

	return c, nil
}

func (c *Camera) registerCallbacks() error {
	h := c.ptr()
	if err := check(c.drv.SetInterruptedCallback(h, c.onInterrupted), "SetInterruptedCallback"); err != nil {
		return err
	}
	if err := check(c.drv.SetErrorCallback(h, c.onError), "SetErrorCallback"); err != nil {
		return err
	}
	if err := check(c.drv.SetStateChangedCallback(h, c.onStateChanged), "SetStateChangedCallback"); err != nil {
		return err
	}
	return check(c.drv.SetFocusChangedCallback(h, c.onFocusChanged), "SetFocusChangedCallback")
}

func (c *Camera) unregisterCallbacks() {
	h := c.ptr()
	c.logError(check(c.drv.UnsetInterruptedCallback(h), "UnsetInterruptedCallback"))
	c.logError(check(c.drv.UnsetErrorCallback(h), "UnsetErrorCallback"))
	c.logError(check(c.drv.UnsetStateChangedCallback(h), "UnsetStateChangedCallback"))
	c.logError(check(c.drv.UnsetFocusChangedCallback(h), "UnsetFocusChangedCallback"))
}

func (c *Camera) destroy(ptr uintptr) {
	c.logError(check(c.drv.Destroy(ptr), "Destroy"))
}

func (c *Camera) ptr() uintptr {
	return c.handle.Ptr()
}

func (c *Camera) logError(err error) {
	if err != nil {
		c.logger.Printf("[error] %v", err)
	}
}

func (c *Camera) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.closed
}

// guard fails unless the camera is open and its cached state is one of
// states.
func (c *Camera) guard(op string, states ...State) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.guardLocked(op, states...)
}

func (c *Camera) guardLocked(op string, states ...State) error {
	if c.closed {
		return fail(op, ErrClosed)
	}
	if !c.state.in(states...) {
		return &Error{Op: op, Code: CodeInvalidState, Kind: ErrInvalidState}
	}
	return nil
}

func (c *Camera) setState(s State) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.closed {
		c.state = s
	}
}

// State returns the cached session state. It may trail the driver briefly,
// e.g. right after StartPreview.
func (c *Camera) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.state
}

// RefreshState reads the state from the driver and updates the cached copy.
func (c *Camera) RefreshState() (State, error) {
	const op = "RefreshState"
	if c.isClosed() {
		return StateNone, fail(op, ErrClosed)
	}

	s, code := c.drv.State(c.ptr())
	if err := check(code, op); err != nil {
		return StateNone, err
	}
	c.setState(s)
	return s, nil
}

func (c *Camera) Device() Device {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.device
}

// StartPreview starts the preview stream. The cached state moves to
// StatePreview as soon as the driver accepts the call.
func (c *Camera) StartPreview() error {
	const op = "StartPreview"
	if err := c.guard(op, StateCreated, StateCaptured); err != nil {
		return err
	}
	if err := check(c.drv.StartPreview(c.ptr()), op); err != nil {
		return err
	}
	c.setState(StatePreview)
	return nil
}

func (c *Camera) StopPreview() error {
	const op = "StopPreview"
	if err := c.guard(op, StatePreview); err != nil {
		return err
	}
	if err := check(c.drv.StopPreview(c.ptr()), op); err != nil {
		return err
	}
	c.setState(StateCreated)
	return nil
}

// ChangeDevice switches the session to another physical device.
func (c *Camera) ChangeDevice(dev Device) error {
	const op = "ChangeDevice"
	if !dev.Valid() {
		return invalidArg(op, "unknown device %d", int(dev))
	}
	if err := c.guard(op, StateCreated); err != nil {
		return err
	}
	if !c.drv.Supports(c.ptr(), FeatureDeviceChange) {
		return &Error{Op: op, Code: CodeNotSupported, Kind: ErrNotSupported}
	}
	if err := check(c.drv.ChangeDevice(c.ptr(), dev), op); err != nil {
		return err
	}

	c.mu.Lock()
	c.device = dev
	c.mu.Unlock()
	return nil
}

func (c *Camera) StartFocusing(continuous bool) error {
	const op = "StartFocusing"
	if err := c.guard(op, StatePreview, StateCaptured); err != nil {
		return err
	}
	return check(c.drv.StartFocusing(c.ptr(), continuous), op)
}

func (c *Camera) StopFocusing() error {
	const op = "StopFocusing"
	if err := c.guard(op, StatePreview, StateCaptured); err != nil {
		return err
	}
	return check(c.drv.CancelFocusing(c.ptr()), op)
}

// StartFaceDetection registers the face callback with the driver. Results
// are delivered to OnFaceDetected listeners.
func (c *Camera) StartFaceDetection() error {
	const op = "StartFaceDetection"

	c.mu.Lock()
	err := c.guardLocked(op, StatePreview)
	if err == nil && c.faceDetecting {
		err = &Error{Op: op, Code: CodeInvalidState, Kind: ErrInvalidState}
	}
	c.mu.Unlock()
	if err != nil {
		return err
	}

	if !c.drv.Supports(c.ptr(), FeatureFaceDetection) {
		return &Error{Op: op, Code: CodeNotSupported, Kind: ErrNotSupported}
	}
	if err := check(c.drv.StartFaceDetection(c.ptr(), c.onFacesDetected), op); err != nil {
		return err
	}

	c.mu.Lock()
	c.faceDetecting = true
	c.mu.Unlock()
	return nil
}

// StopFaceDetection fails with ErrInvalidState if detection isn't running.
func (c *Camera) StopFaceDetection() error {
	const op = "StopFaceDetection"

	c.mu.Lock()
	err := c.guardLocked(op, StatePreview)
	if err == nil && !c.faceDetecting {
		err = &Error{Op: op, Code: CodeInvalidState, Kind: ErrInvalidState}
	}
	c.mu.Unlock()
	if err != nil {
		return err
	}

	if err := check(c.drv.StopFaceDetection(c.ptr()), op); err != nil {
		return err
	}

	c.mu.Lock()
	c.faceDetecting = false
	c.mu.Unlock()
	return nil
}

func (c *Camera) FaceDetecting() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.faceDetecting
}

// Close detaches the display, drops every driver callback and destroys the
// handle. It is safe to call more than once.
func (c *Camera) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	display := c.display
	c.display = nil
	faceDetecting := c.faceDetecting
	c.faceDetecting = false
	capture := c.capture
	var release func() bool
	if capture != nil {
		release = capture.release
	}
	c.capture = nil
	c.state = StateNone
	c.mu.Unlock()

	h := c.ptr()

	if display != nil {
		c.logError(check(c.drv.SetDisplay(h, DisplayNone, 0), "SetDisplay"))
		display.setOwner(nil)
	}

	// A capture still in flight completes silently.
	if capture != nil && capture.finish() && release != nil {
		release()
	}

	if faceDetecting {
		c.logError(check(c.drv.StopFaceDetection(h), "StopFaceDetection"))
	}
	if c.preview.reset() {
		c.logError(check(c.drv.UnsetPreviewCallback(h), "UnsetPreviewCallback"))
	}
	if c.decodedPreview.reset() {
		c.logError(check(c.drv.UnsetMediaPacketPreviewCallback(h), "UnsetMediaPacketPreviewCallback"))
	}
	c.unregisterCallbacks()

	c.handle.Release()
	return nil
}
