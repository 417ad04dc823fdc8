package removinator

import (
	"errors"
	"fmt"

	"github.com/nkinder/go-removinator/protocol"
)

var (
	// ErrReadTimeout is reported when the port stays silent for a whole read
	// timeout before a terminal line arrived.
	ErrReadTimeout = errors.New("read timeout")

	// ErrClosed is reported for commands on, or interrupted by, a closed Conn.
	ErrClosed = errors.New("connection closed")
)

// ConnectError indicates that the controller could not be found or its
// serial port could not be opened.
type ConnectError struct {
	// Port is the address that failed to open, empty if discovery failed
	Port string
	Err  error
}

func (e *ConnectError) Error() string {
	if e.Port == "" {
		return fmt.Sprintf("unable to discover Removinator controller: %v", e.Err)
	}
	return fmt.Sprintf("unable to open connection to Removinator controller on port %s: %v", e.Port, e.Err)
}

func (e *ConnectError) Unwrap() error {
	return e.Err
}

// CommandError indicates that a command failed, either because the serial
// transport failed or because the controller answered with an error line.
type CommandError struct {
	// Command is the command code and argument that failed, e.g. "SC3"
	Command string

	// Code is the device sub-code (e.g. "NOCARD"), empty for transport failures
	Code string

	// Result is the error terminal line, empty for transport failures
	Result string

	// Err is the transport error or a *protocol.DeviceError
	Err error
}

func (e *CommandError) Error() string {
	if e.Result != "" {
		return fmt.Sprintf("%s encountered sending command %q", e.Result, e.Command)
	}
	return fmt.Sprintf("serial error encountered sending command %q: %v", e.Command, e.Err)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// IsTimeout reports whether the command failed because no terminal line
// arrived in time.
func (e *CommandError) IsTimeout() bool {
	return errors.Is(e.Err, ErrReadTimeout)
}

// SlotError indicates that a card was requested from an empty slot.
// It wraps the CommandError carrying the device's ERR_NOCARD reply.
type SlotError struct {
	Slot  protocol.Slot
	Cause *CommandError
}

func (e *SlotError) Error() string {
	return fmt.Sprintf("no card present in slot %d", e.Slot)
}

func (e *SlotError) Unwrap() error {
	if e.Cause == nil {
		return nil
	}
	return e.Cause
}

// ValidationError indicates a slot argument outside the controller's range.
// It is raised before anything is written to the port.
type ValidationError struct {
	Slot protocol.Slot
	Min  protocol.Slot
	Max  protocol.Slot
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("slot must be between %d and %d, got %d", e.Min, e.Max, e.Slot)
}

// DecodeError indicates a response whose payload could not be interpreted.
type DecodeError struct {
	Command string

	// Line is the payload line that failed to decode, empty if none was found
	Line string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %q response: %v", e.Command, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

func validateSlot(slot protocol.Slot) error {
	if !slot.Valid() {
		return &ValidationError{Slot: slot, Min: protocol.MinSlot, Max: protocol.MaxSlot}
	}
	return nil
}
