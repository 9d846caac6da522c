package camera

import (
	"image"
	"time"
)

// Driver is the native camera API a Camera forwards to. Handles are opaque
// to the Camera; callbacks may be invoked from any goroutine.
//
// Implementations report failures as Codes and never panic on a bad handle.
type Driver interface {
	Create(dev Device) (uintptr, Code)
	Destroy(h uintptr) Code

	State(h uintptr) (State, Code)
	ChangeDevice(h uintptr, dev Device) Code
	Supports(h uintptr, f Feature) bool

	StartPreview(h uintptr) Code
	StopPreview(h uintptr) Code

	StartCapture(h uintptr, onCapturing func(CapturingEvent), onCompleted func()) Code
	StartContinuousCapture(h uintptr, count int, interval time.Duration, onCapturing func(CapturingEvent), onCompleted func()) Code
	StopContinuousCapture(h uintptr) Code

	StartFocusing(h uintptr, continuous bool) Code
	CancelFocusing(h uintptr) Code

	StartFaceDetection(h uintptr, fn func([]Face)) Code
	StopFaceDetection(h uintptr) Code

	Attribute(h uintptr, a Attribute) (int, Code)
	SetAttribute(h uintptr, a Attribute, v int) Code
	Resolution(h uintptr, r Resolution) (image.Point, Code)
	SetResolution(h uintptr, r Resolution, size image.Point) Code

	DeviceCount(h uintptr) (int, Code)
	Direction(h uintptr) (Direction, Code)
	FlashState(dev Device) (FlashState, Code)
	DeviceState(dev Device) (DeviceState, Code)

	SetDisplay(h uintptr, t DisplayType, surface uintptr) Code

	SetInterruptedCallback(h uintptr, fn func(InterruptedEvent)) Code
	UnsetInterruptedCallback(h uintptr) Code
	SetErrorCallback(h uintptr, fn func(Code, State)) Code
	UnsetErrorCallback(h uintptr) Code
	SetStateChangedCallback(h uintptr, fn func(StateChangedEvent)) Code
	UnsetStateChangedCallback(h uintptr) Code
	SetFocusChangedCallback(h uintptr, fn func(FocusState)) Code
	UnsetFocusChangedCallback(h uintptr) Code
	SetPreviewCallback(h uintptr, fn func(PreviewFrame)) Code
	UnsetPreviewCallback(h uintptr) Code
	SetMediaPacketPreviewCallback(h uintptr, fn func(PreviewFrame)) Code
	UnsetMediaPacketPreviewCallback(h uintptr) Code

	// Device state notifications are process wide. Each registration gets
	// its own token.
	AddDeviceStateChangedCallback(fn func(DeviceStateChangedEvent)) (int, Code)
	RemoveDeviceStateChangedCallback(token int) Code
}
