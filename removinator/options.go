package removinator

import (
	"time"

	"github.com/nkinder/go-removinator/protocol"
)

// Config holds the connection configuration.
type Config struct {
	// ExchangeCallback is called after every command exchange (optional)
	ExchangeCallback ExchangeCallback

	// Logger is used for logging exchanges (optional)
	Logger Logger

	// ReadTimeout bounds each read from the serial port. Applied by Open;
	// a Port passed to New keeps its own timeout.
	ReadTimeout time.Duration

	// BaudRate of the serial port opened by Open
	BaudRate int
}

// defaultConfig returns the default configuration.
func defaultConfig() Config {
	return Config{
		ReadTimeout: 1 * time.Second,
		BaudRate:    protocol.DefaultBaudRate,
	}
}

// Option is a functional option for configuring a Conn.
type Option func(*Config)

// WithExchangeCallback sets a callback invoked after each command exchange.
//
// Example:
//
//	conn, err := removinator.Open("", removinator.WithExchangeCallback(func(x removinator.Exchange) {
//	    fmt.Printf("%s -> %s (%s)\n", x.Command, x.Result, x.Elapsed)
//	}))
func WithExchangeCallback(callback ExchangeCallback) Option {
	return func(c *Config) {
		c.ExchangeCallback = callback
	}
}

// WithLogger sets a logger for connection operations.
//
// Example:
//
//	conn, err := removinator.Open("/dev/ttyACM0", removinator.WithLogger(myLogger))
func WithLogger(logger Logger) Option {
	return func(c *Config) {
		c.Logger = logger
	}
}

// WithReadTimeout sets the per-read serial timeout used by Open.
// A read that times out before a terminal line arrives fails the command.
//
// Example:
//
//	conn, err := removinator.Open("", removinator.WithReadTimeout(2*time.Second))
func WithReadTimeout(timeout time.Duration) Option {
	return func(c *Config) {
		if timeout > 0 {
			c.ReadTimeout = timeout
		}
	}
}

// WithBaudRate overrides the serial speed used by Open.
// The stock controller firmware always runs at 9600.
func WithBaudRate(baud int) Option {
	return func(c *Config) {
		if baud > 0 {
			c.BaudRate = baud
		}
	}
}
