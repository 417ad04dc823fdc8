// Package protocol implements the Smart Card Removinator serial command protocol.
//
// This package builds command frames and classifies response lines. It performs
// no I/O; see package removinator for the connection that drives an exchange.
//
// # Protocol Overview
//
// The protocol is line-oriented text over a 9600 8N1 UART, strictly one
// command in flight:
//
//	Command:  #<CODE><ARG>\r
//	Response: <payload line>\n ... <terminal line>\n
//
// Every response ends with exactly one terminal line:
//   - OK...        the command succeeded
//   - ERR_<CODE>   the command failed; CODE names the reason (e.g. ERR_NOCARD)
//
// Lines beginning with [DBG] are diagnostic output, present only while debug
// output is enabled, and are never part of structured payload.
//
// # Command Builders
//
//	cmd, err := protocol.BuildSelectSlotCmd(3) // #SC3\r
//	frame, err := protocol.BuildFrame(cmd)
//
// # Response Parsing
//
//	switch protocol.ClassifyLine(line) {
//	case protocol.LineSuccess, protocol.LineError:
//	    // exchange complete
//	}
//
//	line, ok := protocol.FirstPayloadLine(lines)
//	status, err := protocol.ParseStatus(line)
package protocol
