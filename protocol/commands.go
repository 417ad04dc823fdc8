package protocol

import (
	"fmt"
	"strconv"
	"strings"
)

// BuildFrame encodes a command into the exact bytes written to the controller.
//
// Frame structure:
//
//	#<CODE><ARG>\r
//
// Code and Arg must not contain frame markers or line breaks.
func BuildFrame(cmd Command) ([]byte, error) {
	if cmd.Code == "" {
		return nil, fmt.Errorf("command code cannot be empty")
	}
	if strings.ContainsAny(cmd.Code, "#\r\n") {
		return nil, fmt.Errorf("command code %q contains a frame marker", cmd.Code)
	}
	if strings.ContainsAny(cmd.Arg, "#\r\n") {
		return nil, fmt.Errorf("command argument %q contains a frame marker", cmd.Arg)
	}

	frame := make([]byte, 0, len(StartOfFrame)+len(cmd.Code)+len(cmd.Arg)+len(EndOfFrame))
	frame = append(frame, StartOfFrame...)
	frame = append(frame, cmd.Code...)
	frame = append(frame, cmd.Arg...)
	frame = append(frame, EndOfFrame...)

	return frame, nil
}

// ValidateSlot returns an error if slot is outside [MinSlot, MaxSlot].
func ValidateSlot(slot Slot) error {
	if !slot.Valid() {
		return fmt.Errorf("slot must be between %d and %d, got %d", MinSlot, MaxSlot, slot)
	}
	return nil
}

func slotCommand(code string, slot Slot) (Command, error) {
	if err := ValidateSlot(slot); err != nil {
		return Command{}, err
	}
	return Command{Code: code, Arg: strconv.Itoa(int(slot))}, nil
}

// BuildSelectSlotCmd constructs the command that switches slot into the reader.
//
//	#SC<slot>\r
func BuildSelectSlotCmd(slot Slot) (Command, error) {
	return slotCommand(CmdSelectSlot, slot)
}

// BuildLockSlotCmd constructs the command that locks a slot.
//
//	#LCK<slot>\r
func BuildLockSlotCmd(slot Slot) (Command, error) {
	return slotCommand(CmdLockSlot, slot)
}

// BuildUnlockSlotCmd constructs the command that unlocks a slot.
//
//	#ULK<slot>\r
func BuildUnlockSlotCmd(slot Slot) (Command, error) {
	return slotCommand(CmdUnlockSlot, slot)
}

// BuildRemoveCmd constructs the command that withdraws the current card.
func BuildRemoveCmd() Command {
	return Command{Code: CmdRemove}
}

// BuildStatusCmd constructs the status query.
func BuildStatusCmd() Command {
	return Command{Code: CmdStatus}
}

// BuildToggleDebugCmd constructs the debug output toggle.
func BuildToggleDebugCmd() Command {
	return Command{Code: CmdToggleDebug}
}
