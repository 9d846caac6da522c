package camera

// Driver callbacks. These can run on any goroutine.

func (c *Camera) onInterrupted(e InterruptedEvent) {
	c.syncState(e.Current)
	c.interrupted.emit(e)
}

func (c *Camera) onError(code Code, s State) {
	c.errored.emit(ErrorEvent{
		Err:   check(code, "driver"),
		State: s,
	})
}

func (c *Camera) onStateChanged(e StateChangedEvent) {
	c.syncState(e.Current)
	c.stateChanged.emit(e)
}

// syncState applies a state reported by the driver. A pending capture the
// driver abandoned is finished without a completion event, and its
// cancellation hook is removed.
func (c *Camera) syncState(s State) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.state = s

	var release func() bool
	if capture := c.capture; capture != nil && !s.in(StateCapturing, StateCaptured) && capture.finish() {
		release = capture.release
		capture.release = nil
		c.capture = nil
	}
	c.mu.Unlock()

	if release != nil {
		release()
	}
}

func (c *Camera) onFocusChanged(s FocusState) {
	c.focusChanged.emit(FocusStateChangedEvent{State: s})
}

func (c *Camera) onFacesDetected(faces []Face) {
	c.faceDetected.emit(FaceDetectedEvent{Faces: faces})
}

func (c *Camera) onCapturing(e CapturingEvent) {
	c.capturing.emit(e)
}

func (c *Camera) onPreview(f PreviewFrame) {
	c.preview.emit(PreviewEvent{Frame: f})
}

func (c *Camera) onMediaPacketPreview(f PreviewFrame) {
	img, err := f.Image()
	if err != nil {
		c.logError(err)
		return
	}
	c.decodedPreview.emit(DecodedPreviewEvent{Image: img, Timestamp: f.Timestamp})
}

// OnInterrupted is called when a system policy interrupts the session.
func (c *Camera) OnInterrupted(fn func(InterruptedEvent)) *Subscription {
	sub, _ := c.interrupted.add(fn)
	return sub
}

// OnError is called for errors the driver raises asynchronously.
func (c *Camera) OnError(fn func(ErrorEvent)) *Subscription {
	sub, _ := c.errored.add(fn)
	return sub
}

func (c *Camera) OnStateChanged(fn func(StateChangedEvent)) *Subscription {
	sub, _ := c.stateChanged.add(fn)
	return sub
}

func (c *Camera) OnFocusStateChanged(fn func(FocusStateChangedEvent)) *Subscription {
	sub, _ := c.focusChanged.add(fn)
	return sub
}

// OnFaceDetected receives results while face detection is running.
func (c *Camera) OnFaceDetected(fn func(FaceDetectedEvent)) *Subscription {
	sub, _ := c.faceDetected.add(fn)
	return sub
}

// OnCapturing receives image data for every shot.
func (c *Camera) OnCapturing(fn func(CapturingEvent)) *Subscription {
	sub, _ := c.capturing.add(fn)
	return sub
}

func (c *Camera) OnCaptureCompleted(fn func(CaptureCompletedEvent)) *Subscription {
	sub, _ := c.captureCompleted.add(fn)
	return sub
}

// OnPreview receives raw preview frames. The driver callback is only
// registered while at least one listener is attached.
func (c *Camera) OnPreview(fn func(PreviewEvent)) (*Subscription, error) {
	return c.preview.add(fn)
}

// OnDecodedPreview receives preview frames decoded to images. Like
// OnPreview, the driver callback is only registered while in use.
func (c *Camera) OnDecodedPreview(fn func(DecodedPreviewEvent)) (*Subscription, error) {
	return c.decodedPreview.add(fn)
}
