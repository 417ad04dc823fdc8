package protocol

import (
	"fmt"
	"sort"
	"strings"
)

// Slot identifies one of the controller's card positions.
type Slot int

// Valid reports whether s is within [MinSlot, MaxSlot].
func (s Slot) Valid() bool {
	return s >= MinSlot && s <= MaxSlot
}

// Command is a single outbound request.
type Command struct {
	// Code is the fixed command identifier (e.g. CmdSelectSlot)
	Code string

	// Arg is embedded directly after Code; empty for commands without one
	Arg string
}

// String returns the command as it appears inside a frame, without markers.
func (c Command) String() string {
	return c.Code + c.Arg
}

// LineKind classifies one inbound line.
type LineKind int

const (
	// LinePayload is ordinary response text
	LinePayload LineKind = iota

	// LineDiagnostic is debug output and never part of structured payload
	LineDiagnostic

	// LineSuccess ends an exchange successfully
	LineSuccess

	// LineError ends an exchange with a device error
	LineError
)

func (k LineKind) String() string {
	switch k {
	case LinePayload:
		return "payload"
	case LineDiagnostic:
		return "diagnostic"
	case LineSuccess:
		return "success"
	case LineError:
		return "error"
	default:
		return fmt.Sprintf("LineKind(%d)", int(k))
	}
}

// Terminal reports whether a line of this kind ends an exchange.
func (k LineKind) Terminal() bool {
	return k == LineSuccess || k == LineError
}

// Status is the decoded payload of CmdStatus.
type Status struct {
	// Current is the slot presently in the reader, nil when none is
	Current *Slot `json:"current"`

	// Present lists the slots that physically hold a card, ascending
	Present []Slot `json:"present"`
}

// HasCard reports whether slot s holds a card.
func (st *Status) HasCard(s Slot) bool {
	for _, p := range st.Present {
		if p == s {
			return true
		}
	}
	return false
}

func (st *Status) String() string {
	current := "none"
	if st.Current != nil {
		current = fmt.Sprintf("%d", *st.Current)
	}

	present := make([]string, 0, len(st.Present))
	for _, p := range st.Present {
		present = append(present, fmt.Sprintf("%d", p))
	}

	return fmt.Sprintf("current=%s present=[%s]", current, strings.Join(present, ","))
}

func (st *Status) normalize() {
	sort.Slice(st.Present, func(i, j int) bool { return st.Present[i] < st.Present[j] })

	out := st.Present[:0]
	for i, p := range st.Present {
		if i > 0 && p == st.Present[i-1] {
			continue
		}
		out = append(out, p)
	}
	st.Present = out
}

// DebugState is the controller's debug output setting.
type DebugState int

const (
	DebugUnknown DebugState = iota
	DebugOff
	DebugOn
)

func (d DebugState) String() string {
	switch d {
	case DebugOff:
		return "off"
	case DebugOn:
		return "on"
	default:
		return "unknown"
	}
}
