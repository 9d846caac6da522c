package camera

import (
	"errors"
	"fmt"
)

// Code is a result code returned by a Driver.
type Code int

const (
	CodeOK Code = 0

	CodeInvalidParameter    Code = -1
	CodeInvalidState        Code = -2
	CodeInvalidOperation    Code = -3
	CodeOutOfMemory         Code = -4
	CodeDeviceBusy          Code = -5
	CodeDeviceNotFound      Code = -6
	CodeDevice              Code = -7
	CodePermissionDenied    Code = -8
	CodeNotSupported        Code = -9
	CodeSecurityRestricted  Code = -10
	CodeServiceDisconnected Code = -11
)

func (c Code) String() string {
	switch c {
	case CodeOK:
		return "OK"
	case CodeInvalidParameter:
		return "E_INVALID_PARAMETER"
	case CodeInvalidState:
		return "E_INVALID_STATE"
	case CodeInvalidOperation:
		return "E_INVALID_OPERATION"
	case CodeOutOfMemory:
		return "E_OUT_OF_MEMORY"
	case CodeDeviceBusy:
		return "E_DEVICE_BUSY"
	case CodeDeviceNotFound:
		return "E_DEVICE_NOT_FOUND"
	case CodeDevice:
		return "E_DEVICE"
	case CodePermissionDenied:
		return "E_PERMISSION_DENIED"
	case CodeNotSupported:
		return "E_NOT_SUPPORTED"
	case CodeSecurityRestricted:
		return "E_SECURITY_RESTRICTED"
	case CodeServiceDisconnected:
		return "E_SERVICE_DISCONNECTED"
	default:
		return fmt.Sprintf("%d", int(c))
	}
}

// Error kinds. Match them with errors.Is.
var (
	ErrInvalidArgument   = errors.New("invalid argument")
	ErrInvalidState      = errors.New("invalid state")
	ErrNotSupported      = errors.New("not supported")
	ErrPermissionDenied  = errors.New("permission denied")
	ErrResourceExhausted = errors.New("resource exhausted")
	ErrClosed            = errors.New("camera closed")
	ErrDisplayInUse      = errors.New("display already bound to another camera")
	ErrUnknown           = errors.New("native call failed")
)

// Error is returned by every Camera operation that fails.
type Error struct {
	Op   string
	Code Code
	Kind error
}

func (e *Error) Error() string {
	if e.Code == CodeOK {
		return fmt.Sprintf("camera: %s: %v", e.Op, e.Kind)
	}
	return fmt.Sprintf("camera: %s: %v (%s)", e.Op, e.Kind, e.Code)
}

func (e *Error) Unwrap() error {
	return e.Kind
}

func kindOf(c Code) error {
	switch c {
	case CodeInvalidParameter:
		return ErrInvalidArgument
	case CodeInvalidState, CodeInvalidOperation:
		return ErrInvalidState
	case CodeNotSupported:
		return ErrNotSupported
	case CodePermissionDenied, CodeSecurityRestricted:
		return ErrPermissionDenied
	case CodeOutOfMemory, CodeDeviceBusy:
		return ErrResourceExhausted
	default:
		return ErrUnknown
	}
}

// check converts a driver result into an error. Every driver call goes
// through here.
func check(c Code, op string) error {
	if c == CodeOK {
		return nil
	}
	return &Error{Op: op, Code: c, Kind: kindOf(c)}
}

func fail(op string, kind error) error {
	return &Error{Op: op, Kind: kind}
}

func invalidArg(op, format string, args ...interface{}) error {
	return &Error{
		Op:   op,
		Code: CodeInvalidParameter,
		Kind: fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...)),
	}
}
