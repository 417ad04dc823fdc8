// Package removinator drives a Smart Card Removinator controller.
//
// # Overview
//
// A Conn owns the serial port to one controller and runs strictly one
// command at a time:
//   - the command is framed and written in a single write
//   - input already buffered is discarded
//   - lines are read until a terminal OK or ERR_ line arrives
//
// Higher level operations validate their arguments and translate device
// errors:
//   - InsertCard / RemoveCard switch a slot into or out of the reader
//   - GetStatus reports the current slot and the slots holding a card
//   - LockCard / UnlockCard lock or release a slot
//   - SetDebug enables or disables diagnostic output
//
// # Basic Usage
//
//	// Auto-discover the controller on USB
//	conn, err := removinator.Open("")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer conn.Close()
//
//	ctx := context.Background()
//	if err := conn.InsertCard(ctx, 3); err != nil {
//	    log.Fatal(err)
//	}
//
//	status, err := conn.GetStatus(ctx)
//	fmt.Println(status)
//
// # Configuration Options
//
//	conn, err := removinator.Open("/dev/ttyACM0",
//	    removinator.WithLogger(myLogger),
//	    removinator.WithReadTimeout(2*time.Second),
//	    removinator.WithExchangeCallback(func(x removinator.Exchange) {
//	        fmt.Printf("%s -> %s\n", x.Command, x.Result)
//	    }),
//	)
//
// Without a logger the package never writes any output.
//
// # Error Handling
//
// The package provides structured error types:
//   - ConnectError: the controller could not be found or opened
//   - CommandError: the transport failed or the controller replied ERR_<code>
//   - SlotError: InsertCard selected an empty slot (wraps the CommandError)
//   - ValidationError: a slot outside 1-8, rejected before any I/O
//   - DecodeError: a status reply without a decodable payload line
//
// No command is ever retried. LastResult and LastResponse expose the terminal
// line and the raw text of the most recent command, including partial text
// received before a failure.
//
// # Concurrency
//
// A Conn may be shared between goroutines; commands are serialized and a
// second command waits until the first has reached its terminal line. There
// is no cancellation of a command in flight: Close the Conn to abort it.
//
// # Hardware Independence
//
// Open uses go.bug.st/serial. Any other transport can be supplied to New as
// long as it implements Port:
//
//	conn := removinator.New(myPort)
package removinator
