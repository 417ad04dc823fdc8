package removinator

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/nkinder/go-removinator/protocol"
)

// Port is the serial channel to a controller. go.bug.st/serial ports satisfy
// it directly.
//
// Read must return (0, nil) or an error when its read timeout expires;
// ResetInputBuffer must discard everything received but not yet read.
type Port interface {
	io.ReadWriteCloser
	ResetInputBuffer() error
}

// Conn is an open session with one Removinator controller.
//
// Conn serializes commands: only one exchange is ever in flight, and a
// command issued from another goroutine waits until the current one has
// reached its terminal line.
type Conn struct {
	mu     sync.Mutex
	port   Port
	config Config
	addr   string
	closed atomic.Bool

	// guarded by mu
	buf          []byte
	chunk        [64]byte
	lastResult   string
	lastResponse string
}

// Response is the outcome of a successful command.
type Response struct {
	// Command is the command code and argument, e.g. "STA"
	Command string

	// Result is the trimmed terminal line, e.g. "OK"
	Result string

	// Lines are the non-terminal lines in arrival order, verbatim, including
	// diagnostic output
	Lines []string
}

// Payload returns the response lines with diagnostic output removed.
func (r *Response) Payload() []string {
	var out []string
	for _, line := range r.Lines {
		if protocol.ClassifyLine(line) != protocol.LineDiagnostic {
			out = append(out, line)
		}
	}
	return out
}

// Diagnostics returns only the diagnostic lines of the response.
func (r *Response) Diagnostics() []string {
	var out []string
	for _, line := range r.Lines {
		if protocol.ClassifyLine(line) == protocol.LineDiagnostic {
			out = append(out, line)
		}
	}
	return out
}

// New creates a Conn that owns port. No other code may read or write port
// afterwards.
//
// Example:
//
//	port, _ := serial.Open("/dev/ttyACM0", &serial.Mode{BaudRate: 9600})
//	port.SetReadTimeout(time.Second)
//	conn := removinator.New(port, removinator.WithLogger(myLogger))
func New(port Port, opts ...Option) *Conn {
	if port == nil {
		panic("port cannot be nil")
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	return &Conn{
		port:   port,
		config: cfg,
	}
}

// Address returns the serial port address the connection was opened on,
// empty for a Conn built with New.
func (c *Conn) Address() string {
	return c.addr
}

// LastResult returns the terminal line of the most recent command, or ""
// if that command produced none.
func (c *Conn) LastResult() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastResult
}

// LastResponse returns the non-terminal text received for the most recent
// command, including diagnostic lines and any partial line read before a
// failure.
func (c *Conn) LastResponse() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastResponse
}

// Close closes the serial port. A command blocked in a read fails with
// ErrClosed.
func (c *Conn) Close() error {
	if c.closed.Swap(true) {
		return nil
	}
	return c.port.Close()
}

// SendCommand sends one command and reads its response up to the terminal
// line. A device error line or a transport failure is returned as a
// *CommandError. The command is never retried.
//
// Example:
//
//	resp, err := conn.SendCommand(ctx, protocol.BuildStatusCmd())
func (c *Conn) SendCommand(ctx context.Context, cmd protocol.Command) (*Response, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.exchange(ctx, cmd)
}

// exchange runs one request/response cycle. c.mu must be held.
func (c *Conn) exchange(ctx context.Context, cmd protocol.Command) (_ *Response, err error) {
	c.lastResult = ""
	c.lastResponse = ""

	resp := &Response{Command: cmd.String()}
	startTime := time.Now()

	defer func() {
		if err != nil {
			c.logError("command failed", "command", resp.Command, "error", err)
		} else {
			c.logDebug("command complete", "command", resp.Command, "result", resp.Result,
				"lines", len(resp.Lines), "elapsed", time.Since(startTime).String())
		}
		c.notify(Exchange{
			Command: resp.Command,
			Result:  c.lastResult,
			Lines:   resp.Lines,
			Err:     err,
			Elapsed: time.Since(startTime),
		})
	}()

	if c.closed.Load() {
		return nil, c.transportError(resp.Command, ErrClosed)
	}
	if err := ctx.Err(); err != nil {
		return nil, c.transportError(resp.Command, err)
	}

	frame, err := protocol.BuildFrame(cmd)
	if err != nil {
		return nil, c.transportError(resp.Command, err)
	}

	c.logDebug("sending command", "command", resp.Command)

	n, err := c.port.Write(frame)
	if err == nil && n != len(frame) {
		err = io.ErrShortWrite
	}
	if err != nil {
		return nil, c.transportError(resp.Command, fmt.Errorf("write command: %w", err))
	}

	// Anything already received belongs to an earlier exchange.
	if err := c.port.ResetInputBuffer(); err != nil {
		return nil, c.transportError(resp.Command, fmt.Errorf("reset input buffer: %w", err))
	}
	c.buf = c.buf[:0]

	for {
		line, err := c.readLine()
		if err != nil {
			c.lastResponse += line
			return nil, c.transportError(resp.Command, fmt.Errorf("read response: %w", err))
		}

		kind := protocol.ClassifyLine(line)
		c.logDebug("received line", "command", resp.Command, "kind", kind.String(),
			"line", strings.TrimRight(line, "\r\n"))

		switch kind {
		case protocol.LineSuccess:
			c.lastResult = strings.TrimSpace(line)
			resp.Result = c.lastResult
			return resp, nil

		case protocol.LineError:
			c.lastResult = strings.TrimSpace(line)
			code := protocol.ErrorCode(line)
			return nil, &CommandError{
				Command: resp.Command,
				Code:    code,
				Result:  c.lastResult,
				Err:     &protocol.DeviceError{Code: code},
			}

		default:
			c.lastResponse += line
			resp.Lines = append(resp.Lines, line)
		}
	}
}

// readLine returns the next newline-terminated line. On failure it returns
// whatever partial line had been received along with the error.
func (c *Conn) readLine() (string, error) {
	for {
		if i := bytes.IndexByte(c.buf, protocol.LineTerminator); i >= 0 {
			line := string(c.buf[:i+1])
			c.buf = c.buf[i+1:]
			return line, nil
		}

		n, err := c.port.Read(c.chunk[:])
		if n > 0 {
			// Complete lines delivered together with an error are still
			// returned; a persistent error shows up again on the next read.
			c.buf = append(c.buf, c.chunk[:n]...)
			if err == nil || bytes.IndexByte(c.buf, protocol.LineTerminator) >= 0 {
				continue
			}
		}

		if err == nil {
			err = ErrReadTimeout
		} else if c.closed.Load() {
			err = fmt.Errorf("%w: %v", ErrClosed, err)
		}

		partial := string(c.buf)
		c.buf = c.buf[:0]
		return partial, err
	}
}

func (c *Conn) transportError(command string, err error) *CommandError {
	return &CommandError{Command: command, Err: err}
}

// notify calls the exchange callback if configured.
func (c *Conn) notify(x Exchange) {
	if c.config.ExchangeCallback != nil {
		c.config.ExchangeCallback(x)
	}
}

// logDebug logs a debug message if a logger is configured.
func (c *Conn) logDebug(msg string, keysAndValues ...interface{}) {
	if c.config.Logger != nil {
		c.config.Logger.Debug(msg, keysAndValues...)
	}
}

// logInfo logs an info message if a logger is configured.
func (c *Conn) logInfo(msg string, keysAndValues ...interface{}) {
	if c.config.Logger != nil {
		c.config.Logger.Info(msg, keysAndValues...)
	}
}

// logError logs an error message if a logger is configured.
func (c *Conn) logError(msg string, keysAndValues ...interface{}) {
	if c.config.Logger != nil {
		c.config.Logger.Error(msg, keysAndValues...)
	}
}
