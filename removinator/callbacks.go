package removinator

import "time"

// Exchange describes one completed command exchange.
// Passed to ExchangeCallback whether the command succeeded or not.
type Exchange struct {
	// Command is the command code and argument, e.g. "SC3"
	Command string

	// Result is the terminal line ("OK", "ERR_NOCARD"), empty if none arrived
	Result string

	// Lines are the non-terminal lines received, verbatim
	Lines []string

	// Err is the command failure, nil on success
	Err error

	// Elapsed is the time from writing the frame to the end of the exchange
	Elapsed time.Duration
}

// ExchangeCallback is called after each command exchange.
// It runs while the connection is busy and must not issue commands on the
// same Conn.
type ExchangeCallback func(Exchange)

// Logger is an optional logging interface that can be provided to a Conn.
// This allows integration with any logging framework. Without a logger the
// connection produces no output.
type Logger interface {
	// Debug logs a debug message with optional key-value pairs
	Debug(msg string, keysAndValues ...interface{})

	// Info logs an info message with optional key-value pairs
	Info(msg string, keysAndValues ...interface{})

	// Error logs an error message with optional key-value pairs
	Error(msg string, keysAndValues ...interface{})
}
