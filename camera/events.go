package camera

import (
	"image"

	"github.com/dialup-inc/camkit/yuv"
)

type StateChangedEvent struct {
	Previous State
	Current  State
	ByPolicy bool
}

type InterruptedEvent struct {
	Policy   Policy
	Previous State
	Current  State
}

// ErrorEvent reports an error raised asynchronously by the driver.
type ErrorEvent struct {
	Err   error
	State State
}

type FocusStateChangedEvent struct {
	State FocusState
}

type Face struct {
	ID     int
	Score  int
	Bounds image.Rectangle
}

type FaceDetectedEvent struct {
	Faces []Face
}

// StillImage is one encoded or raw image delivered by a capture.
type StillImage struct {
	Format PixelFormat
	Width  int
	Height int
	Data   []byte
}

type CapturingEvent struct {
	Main      StillImage
	Postview  *StillImage
	Thumbnail *StillImage
}

type CaptureCompletedEvent struct{}

// PreviewFrame is a raw preview buffer as handed over by the driver.
type PreviewFrame struct {
	Format    PixelFormat
	Width     int
	Height    int
	Data      []byte
	Timestamp int64
}

// Image decodes the frame.
func (f PreviewFrame) Image() (image.Image, error) {
	switch f.Format {
	case PixelFormatI420:
		return yuv.FromI420(f.Data, f.Width, f.Height)
	case PixelFormatNV12:
		return yuv.FromNV12(f.Data, f.Width, f.Height)
	case PixelFormatNV21:
		return yuv.FromNV21(f.Data, f.Width, f.Height)
	case PixelFormatYUYV:
		return yuv.FromYUYV(f.Data, f.Width, f.Height)
	case PixelFormatJPEG:
		return yuv.FromJPEG(f.Data)
	default:
		return nil, invalidArg("PreviewFrame.Image", "unsupported pixel format %s", f.Format)
	}
}

type PreviewEvent struct {
	Frame PreviewFrame
}

// DecodedPreviewEvent carries a preview frame already decoded to an image.
type DecodedPreviewEvent struct {
	Image     image.Image
	Timestamp int64
}

type DeviceStateChangedEvent struct {
	Device Device
	State  DeviceState
}
