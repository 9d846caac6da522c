package camera

import "image"

// Settings exposes the tunable parameters of a camera.
type Settings struct {
	c *Camera
}

func (c *Camera) Settings() *Settings {
	return &Settings{c: c}
}

func (s *Settings) attribute(op string, a Attribute) (int, error) {
	if s.c.isClosed() {
		return 0, fail(op, ErrClosed)
	}
	v, code := s.c.drv.Attribute(s.c.ptr(), a)
	if err := check(code, op); err != nil {
		return 0, err
	}
	return v, nil
}

func (s *Settings) setAttribute(op string, a Attribute, v int) error {
	if s.c.isClosed() {
		return fail(op, ErrClosed)
	}
	return check(s.c.drv.SetAttribute(s.c.ptr(), a, v), op)
}

func (s *Settings) PreviewFPS() (int, error) {
	return s.attribute("PreviewFPS", AttrPreviewFPS)
}

func (s *Settings) SetPreviewFPS(fps int) error {
	if fps < 0 {
		return invalidArg("SetPreviewFPS", "negative fps %d", fps)
	}
	return s.setAttribute("SetPreviewFPS", AttrPreviewFPS, fps)
}

func (s *Settings) ImageQuality() (int, error) {
	return s.attribute("ImageQuality", AttrImageQuality)
}

// SetImageQuality sets the JPEG quality of captured images, 1 to 100.
func (s *Settings) SetImageQuality(q int) error {
	if q < 1 || q > 100 {
		return invalidArg("SetImageQuality", "quality %d out of range [1, 100]", q)
	}
	return s.setAttribute("SetImageQuality", AttrImageQuality, q)
}

func (s *Settings) Zoom() (int, error) {
	return s.attribute("Zoom", AttrZoom)
}

func (s *Settings) SetZoom(z int) error {
	return s.setAttribute("SetZoom", AttrZoom, z)
}

func (s *Settings) Brightness() (int, error) {
	return s.attribute("Brightness", AttrBrightness)
}

func (s *Settings) SetBrightness(b int) error {
	return s.setAttribute("SetBrightness", AttrBrightness, b)
}

func (s *Settings) resolution(op string, r Resolution) (image.Point, error) {
	if s.c.isClosed() {
		return image.Point{}, fail(op, ErrClosed)
	}
	size, code := s.c.drv.Resolution(s.c.ptr(), r)
	if err := check(code, op); err != nil {
		return image.Point{}, err
	}
	return size, nil
}

// setResolution is only allowed before the preview starts.
func (s *Settings) setResolution(op string, r Resolution, size image.Point) error {
	if size.X <= 0 || size.Y <= 0 {
		return invalidArg(op, "bad resolution %dx%d", size.X, size.Y)
	}
	if err := s.c.guard(op, StateCreated); err != nil {
		return err
	}
	return check(s.c.drv.SetResolution(s.c.ptr(), r, size), op)
}

func (s *Settings) PreviewResolution() (image.Point, error) {
	return s.resolution("PreviewResolution", ResolutionPreview)
}

func (s *Settings) SetPreviewResolution(size image.Point) error {
	return s.setResolution("SetPreviewResolution", ResolutionPreview, size)
}

func (s *Settings) CaptureResolution() (image.Point, error) {
	return s.resolution("CaptureResolution", ResolutionCapture)
}

func (s *Settings) SetCaptureResolution(size image.Point) error {
	return s.setResolution("SetCaptureResolution", ResolutionCapture, size)
}

// Features reports optional capabilities of the current device.
type Features struct {
	c *Camera
}

func (c *Camera) Features() Features {
	return Features{c: c}
}

func (f Features) Supports(feature Feature) bool {
	if f.c.isClosed() {
		return false
	}
	return f.c.drv.Supports(f.c.ptr(), feature)
}

func (f Features) ContinuousCapture() bool { return f.Supports(FeatureContinuousCapture) }
func (f Features) FaceDetection() bool     { return f.Supports(FeatureFaceDetection) }
func (f Features) DeviceChange() bool      { return f.Supports(FeatureDeviceChange) }
func (f Features) DecodedPreview() bool    { return f.Supports(FeatureDecodedPreview) }
func (f Features) ZeroShutterLag() bool    { return f.Supports(FeatureZeroShutterLag) }
func (f Features) AutoFocus() bool         { return f.Supports(FeatureAutoFocus) }

// DeviceCount returns how many devices the driver can open.
func (c *Camera) DeviceCount() (int, error) {
	const op = "DeviceCount"
	if c.isClosed() {
		return 0, fail(op, ErrClosed)
	}
	n, code := c.drv.DeviceCount(c.ptr())
	if err := check(code, op); err != nil {
		return 0, err
	}
	return n, nil
}

func (c *Camera) Direction() (Direction, error) {
	const op = "Direction"
	if c.isClosed() {
		return 0, fail(op, ErrClosed)
	}
	d, code := c.drv.Direction(c.ptr())
	if err := check(code, op); err != nil {
		return 0, err
	}
	return d, nil
}

// FlashStateOf reports whether dev's flash is in use. It doesn't need an
// open Camera.
func FlashStateOf(drv Driver, dev Device) (FlashState, error) {
	const op = "FlashState"
	if !dev.Valid() {
		return 0, invalidArg(op, "unknown device %d", int(dev))
	}
	s, code := drv.FlashState(dev)
	if err := check(code, op); err != nil {
		return 0, err
	}
	return s, nil
}

// DeviceStateOf reports whether dev is free, opened or working.
func DeviceStateOf(drv Driver, dev Device) (DeviceState, error) {
	const op = "DeviceState"
	if !dev.Valid() {
		return 0, invalidArg(op, "unknown device %d", int(dev))
	}
	s, code := drv.DeviceState(dev)
	if err := check(code, op); err != nil {
		return 0, err
	}
	return s, nil
}
