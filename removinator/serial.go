package removinator

import (
	"fmt"

	"go.bug.st/serial"

	"github.com/nkinder/go-removinator/discovery"
	"github.com/nkinder/go-removinator/protocol"
)

// Open opens a connection to the controller on the serial port at address.
// An empty address auto-discovers the controller among the USB serial ports.
// Any failure is returned as a *ConnectError.
//
// Example:
//
//	conn, err := removinator.Open("")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer conn.Close()
func Open(address string, opts ...Option) (*Conn, error) {
	if address == "" {
		found, err := discovery.Find()
		if err != nil {
			return nil, &ConnectError{Err: err}
		}
		address = found
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	mode := &serial.Mode{
		BaudRate: cfg.BaudRate,
		DataBits: protocol.DataBits,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
	port, err := serial.Open(address, mode)
	if err != nil {
		return nil, &ConnectError{Port: address, Err: err}
	}
	if err := port.SetReadTimeout(cfg.ReadTimeout); err != nil {
		port.Close()
		return nil, &ConnectError{Port: address, Err: fmt.Errorf("set read timeout: %w", err)}
	}

	conn := New(port, opts...)
	conn.addr = address
	conn.logInfo("connected", "port", address, "baud", cfg.BaudRate, "read_timeout", cfg.ReadTimeout.String())

	return conn, nil
}
