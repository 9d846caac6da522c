package camera

import (
	"encoding/json"
	"fmt"
	"strings"
)

// State is the lifecycle state of a camera session.
type State int

const (
	StateNone State = iota
	StateCreated
	StatePreview
	StateCapturing
	StateCaptured
)

var stateNames = map[State]string{
	StateNone:      "none",
	StateCreated:   "created",
	StatePreview:   "preview",
	StateCapturing: "capturing",
	StateCaptured:  "captured",
}

func (s State) String() string {
	if n, ok := stateNames[s]; ok {
		return n
	}
	return "unknown"
}

func (s State) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s State) in(states ...State) bool {
	for _, st := range states {
		if s == st {
			return true
		}
	}
	return false
}

// Device selects a physical camera.
type Device int

const (
	DeviceRear Device = iota
	DeviceFront
	DeviceCamera2
	DeviceCamera3
	DeviceCamera4
	DeviceCamera5
	DeviceCamera6
	DeviceCamera7
	DeviceCamera8
	DeviceCamera9
)

func (d Device) Valid() bool {
	return d >= DeviceRear && d <= DeviceCamera9
}

func (d Device) String() string {
	switch d {
	case DeviceRear:
		return "rear"
	case DeviceFront:
		return "front"
	}
	if d.Valid() {
		return fmt.Sprintf("camera%d", int(d))
	}
	return fmt.Sprintf("device(%d)", int(d))
}

// ParseDevice accepts "rear", "front" or "cameraN".
func ParseDevice(s string) (Device, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for d := DeviceRear; d <= DeviceCamera9; d++ {
		if d.String() == s {
			return d, nil
		}
	}
	return 0, invalidArg("ParseDevice", "unknown device %q", s)
}

// DeviceState is the process-wide availability of a device.
type DeviceState int

const (
	DeviceStateNull DeviceState = iota
	DeviceStateOpened
	DeviceStateWorking
)

func (s DeviceState) String() string {
	switch s {
	case DeviceStateNull:
		return "null"
	case DeviceStateOpened:
		return "opened"
	case DeviceStateWorking:
		return "working"
	default:
		return "unknown"
	}
}

type Direction int

const (
	DirectionBack Direction = iota
	DirectionFront
	DirectionExternal
)

func (d Direction) String() string {
	switch d {
	case DirectionBack:
		return "back"
	case DirectionFront:
		return "front"
	case DirectionExternal:
		return "external"
	default:
		return "unknown"
	}
}

type FlashState int

const (
	FlashNotUsed FlashState = iota
	FlashUsed
)

type FocusState int

const (
	FocusReleased FocusState = iota
	FocusOngoing
	FocusFocused
	FocusFailed
)

func (f FocusState) String() string {
	switch f {
	case FocusReleased:
		return "released"
	case FocusOngoing:
		return "ongoing"
	case FocusFocused:
		return "focused"
	case FocusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Policy says which system policy interrupted a session.
type Policy int

const (
	PolicyNone Policy = iota
	PolicySecurity
	PolicyResourceConflict
)

type PixelFormat int

const (
	PixelFormatInvalid PixelFormat = iota
	PixelFormatNV12
	PixelFormatNV21
	PixelFormatI420
	PixelFormatYUYV
	PixelFormatRGB565
	PixelFormatJPEG
)

func (p PixelFormat) String() string {
	switch p {
	case PixelFormatNV12:
		return "NV12"
	case PixelFormatNV21:
		return "NV21"
	case PixelFormatI420:
		return "I420"
	case PixelFormatYUYV:
		return "YUYV"
	case PixelFormatRGB565:
		return "RGB565"
	case PixelFormatJPEG:
		return "JPEG"
	default:
		return "invalid"
	}
}

// DisplayType is the kind of surface a preview is rendered to.
type DisplayType int

const (
	DisplayNone DisplayType = iota
	DisplayOverlay
	DisplayImage
)

// Feature is an optional capability of a device.
type Feature int

const (
	FeatureContinuousCapture Feature = iota
	FeatureFaceDetection
	FeatureDeviceChange
	FeatureDecodedPreview
	FeatureZeroShutterLag
	FeatureAutoFocus
)

// Attribute is an integer setting forwarded to the driver.
type Attribute int

const (
	AttrPreviewFPS Attribute = iota
	AttrImageQuality
	AttrZoom
	AttrBrightness
)

func (a Attribute) String() string {
	switch a {
	case AttrPreviewFPS:
		return "preview fps"
	case AttrImageQuality:
		return "image quality"
	case AttrZoom:
		return "zoom"
	case AttrBrightness:
		return "brightness"
	default:
		return fmt.Sprintf("attribute(%d)", int(a))
	}
}

// Resolution selects which stream a resolution applies to.
type Resolution int

const (
	ResolutionPreview Resolution = iota
	ResolutionCapture
)
