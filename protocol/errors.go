package protocol

import (
	"errors"
	"fmt"
)

// ErrUnknownDebugState is returned when a debug toggle response carries no
// recognizable state marker.
var ErrUnknownDebugState = errors.New("debug state not reported")

// DeviceError represents an error terminal line reported by the controller.
type DeviceError struct {
	// Code is the sub-code following ErrorPrefix
	Code string
}

func (e *DeviceError) Error() string {
	return fmt.Sprintf("%s%s: %s", ErrorPrefix, e.Code, getCodeName(e.Code))
}

// IsDeviceError returns true if the error is a DeviceError.
func IsDeviceError(err error) bool {
	var de *DeviceError
	return errors.As(err, &de)
}

// getCodeName returns a human-readable name for a device sub-code.
func getCodeName(code string) string {
	switch code {
	case ErrNoCard:
		return "no card present in slot"
	case ErrBadCommand:
		return "unrecognized command"
	case ErrBadSlot:
		return "invalid slot"
	case ErrLocked:
		return "slot is locked"
	case "":
		return "missing error code"
	default:
		return fmt.Sprintf("unknown error code %q", code)
	}
}
