package protocol

import (
	"fmt"
	"strings"

	"github.com/flynn/json5"
)

// ClassifyLine determines the kind of one inbound line by its prefix.
// The line may still carry its terminator.
func ClassifyLine(line string) LineKind {
	switch {
	case strings.HasPrefix(line, SuccessPrefix):
		return LineSuccess
	case strings.HasPrefix(line, ErrorPrefix):
		return LineError
	case strings.HasPrefix(line, DebugPrefix):
		return LineDiagnostic
	default:
		return LinePayload
	}
}

// ErrorCode extracts the device sub-code from an error terminal line.
// Returns "" if line is not an error line.
//
//	"ERR_NOCARD\r\n" -> "NOCARD"
func ErrorCode(line string) string {
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, ErrorPrefix) {
		return ""
	}
	return strings.TrimPrefix(line, ErrorPrefix)
}

// FirstPayloadLine returns the first line that is not diagnostic output.
// The boolean is false when every line is diagnostic or lines is empty.
func FirstPayloadLine(lines []string) (string, bool) {
	for _, line := range lines {
		if ClassifyLine(line) == LineDiagnostic {
			continue
		}
		return line, true
	}
	return "", false
}

// ParseStatus decodes the status payload line.
//
// Payload format (one line):
//
//	{"current": 3, "present": [1, 3, 5]}
//
// current may be null when no card is inserted. The decoder is lenient about
// the hand-printed JSON the firmware emits (trailing commas, unquoted keys).
func ParseStatus(line string) (*Status, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil, fmt.Errorf("empty status payload")
	}

	status := &Status{}
	if err := json5.Unmarshal([]byte(line), status); err != nil {
		return nil, fmt.Errorf("invalid status payload %q: %w", line, err)
	}

	if status.Current != nil && !status.Current.Valid() {
		return nil, fmt.Errorf("status reports current slot %d outside %d-%d", *status.Current, MinSlot, MaxSlot)
	}
	for _, s := range status.Present {
		if !s.Valid() {
			return nil, fmt.Errorf("status reports present slot %d outside %d-%d", s, MinSlot, MaxSlot)
		}
	}
	status.normalize()

	return status, nil
}

// ParseDebugState infers the controller's debug setting from the text that
// followed a CmdToggleDebug command. Only the trailing marker counts.
func ParseDebugState(response string) DebugState {
	response = strings.TrimRight(response, " \t\r\n")
	switch {
	case strings.HasSuffix(response, DebugOffMarker):
		return DebugOff
	case strings.HasSuffix(response, DebugOnMarker):
		return DebugOn
	default:
		return DebugUnknown
	}
}
