package camera

import (
	"context"
	"sync/atomic"
	"time"
)

// captureOp is one capture request. Exactly one of native completion,
// cancellation or Close finishes it.
type captureOp struct {
	done atomic.Bool

	// release unhooks the cancellation context. Guarded by Camera.mu.
	release func() bool
}

func (op *captureOp) finish() bool {
	return op.done.CompareAndSwap(false, true)
}

func (op *captureOp) finished() bool {
	return op.done.Load()
}

// StartCapture takes a single picture. Image data is delivered to
// OnCapturing listeners; OnCaptureCompleted fires once the driver is done
// and the session is in StateCaptured.
func (c *Camera) StartCapture() error {
	const op = "StartCapture"
	if err := c.guard(op, StatePreview); err != nil {
		return err
	}
	_, err := c.startCaptureOp(op, func(capture *captureOp) Code {
		return c.drv.StartCapture(c.ptr(), c.onCapturing, func() { c.completeCapture(capture) })
	})
	return err
}

// StartContinuousCapture takes count pictures, interval apart. If ctx is
// cancelled before the driver completes, the burst is stopped and the
// session is forced into StateCaptured.
func (c *Camera) StartContinuousCapture(ctx context.Context, count int, interval time.Duration) error {
	const op = "StartContinuousCapture"
	if c.isClosed() {
		return fail(op, ErrClosed)
	}
	if count < 2 {
		return invalidArg(op, "count %d is less than 2", count)
	}
	if interval < 0 {
		return invalidArg(op, "negative interval %v", interval)
	}
	if err := c.guard(op, StatePreview); err != nil {
		return err
	}
	if !c.drv.Supports(c.ptr(), FeatureContinuousCapture) {
		return &Error{Op: op, Code: CodeNotSupported, Kind: ErrNotSupported}
	}

	capture, err := c.startCaptureOp(op, func(capture *captureOp) Code {
		return c.drv.StartContinuousCapture(c.ptr(), count, interval, c.onCapturing, func() { c.completeCapture(capture) })
	})
	if err != nil {
		return err
	}

	if ctx != nil && ctx.Done() != nil {
		release := context.AfterFunc(ctx, func() { c.cancelCapture(capture) })

		c.mu.Lock()
		if capture.finished() {
			c.mu.Unlock()
			release()
			return nil
		}
		capture.release = release
		c.mu.Unlock()
	}
	return nil
}

func (c *Camera) startCaptureOp(op string, start func(*captureOp) Code) (*captureOp, error) {
	capture := &captureOp{}

	c.mu.Lock()
	c.capture = capture
	c.mu.Unlock()

	if err := check(start(capture), op); err != nil {
		capture.finish()
		c.mu.Lock()
		if c.capture == capture {
			c.capture = nil
		}
		c.mu.Unlock()
		return nil, err
	}

	c.mu.Lock()
	if !c.closed && !capture.finished() {
		c.state = StateCapturing
	}
	c.mu.Unlock()

	return capture, nil
}

// completeCapture runs when the driver reports the capture is done.
func (c *Camera) completeCapture(capture *captureOp) {
	if !capture.finish() {
		return
	}
	c.finishCapture(capture)
}

// cancelCapture runs when the capture context is cancelled. If the driver
// already completed or abandoned the capture, it does nothing.
func (c *Camera) cancelCapture(capture *captureOp) {
	if !capture.finish() {
		return
	}
	c.mu.Lock()
	current := c.capture == capture && !c.closed
	c.mu.Unlock()
	if !current {
		return
	}
	c.logError(check(c.drv.StopContinuousCapture(c.ptr()), "StopContinuousCapture"))
	c.finishCapture(capture)
}

func (c *Camera) finishCapture(capture *captureOp) {
	c.mu.Lock()
	release := capture.release
	capture.release = nil
	if c.capture == capture {
		c.capture = nil
	}
	closed := c.closed
	if !closed {
		c.state = StateCaptured
	}
	c.mu.Unlock()

	if release != nil {
		release()
	}
	if !closed {
		c.captureCompleted.emit(CaptureCompletedEvent{})
	}
}
