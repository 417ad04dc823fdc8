package protocol

// Frame structure constants.
const (
	// StartOfFrame is the marker every outbound command begins with
	StartOfFrame = "#"

	// EndOfFrame terminates an outbound command
	EndOfFrame = "\r"

	// LineTerminator ends every inbound line
	LineTerminator = '\n'
)

// Inbound line markers.
const (
	// SuccessPrefix starts a terminal line for a successful command
	SuccessPrefix = "OK"

	// ErrorPrefix starts a terminal line for a failed command. The device
	// sub-code follows directly, e.g. "ERR_NOCARD".
	ErrorPrefix = "ERR_"

	// DebugPrefix starts a diagnostic line, emitted only while debug output
	// is enabled on the controller
	DebugPrefix = "[DBG]"
)

// Command codes understood by the controller firmware.
const (
	// CmdSelectSlot switches the given slot into the reader
	CmdSelectSlot = "SC"

	// CmdRemove withdraws the currently inserted card
	CmdRemove = "REM"

	// CmdStatus reports the current slot and the slots holding a card
	CmdStatus = "STA"

	// CmdToggleDebug flips debug output on or off and reports the new state
	CmdToggleDebug = "DBG"

	// CmdLockSlot locks a slot so it cannot be selected
	CmdLockSlot = "LCK"

	// CmdUnlockSlot releases a previously locked slot
	CmdUnlockSlot = "ULK"
)

// Device error sub-codes (the text after ErrorPrefix).
const (
	// ErrNoCard indicates the selected slot has no card in it
	ErrNoCard = "NOCARD"

	// ErrBadCommand indicates the command code was not recognized
	ErrBadCommand = "BADCMD"

	// ErrBadSlot indicates the slot argument was rejected by the firmware
	ErrBadSlot = "BADSLOT"

	// ErrLocked indicates the slot is locked
	ErrLocked = "LOCKED"
)

// Debug state markers reported as the trailing payload of CmdToggleDebug.
const (
	DebugOnMarker  = "DBG_ON"
	DebugOffMarker = "DBG_OFF"
)

// Slot range of the controller.
const (
	MinSlot Slot = 1
	MaxSlot Slot = 8
)

// Serial line settings of the controller.
const (
	// DefaultBaudRate is the controller's fixed UART speed
	DefaultBaudRate = 9600

	// DataBits per character (8N1)
	DataBits = 8
)
