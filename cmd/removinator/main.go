// Command removinator controls a Smart Card Removinator from the shell.
//
//	removinator [flags] [command [args]]
//
// Without a command it prints the controller status.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/rs/zerolog"

	"github.com/nkinder/go-removinator/removinator"
)

var stdout io.Writer = os.Stdout

var (
	portFlag    = flag.String("port", os.Getenv("REMOVINATOR_PORT"), "Serial port of the controller (default: auto-discover, or $REMOVINATOR_PORT).")
	timeoutFlag = flag.Duration("timeout", time.Second, "Serial read timeout per line.")
	verboseFlag = flag.Bool("v", false, "Log every command exchange to stderr.")
	readerFlag  = flag.String("reader", "", "PC/SC reader name to check during cycle (substring match).")
	probeFlag   = flag.Bool("probe", false, "During cycle, wait for each inserted card to answer in the PC/SC reader.")
)

func main() {
	flag.Usage = usage
	flag.Parse()

	logger := newLogger(*verboseFlag)

	conn, err := removinator.Open(*portFlag,
		removinator.WithReadTimeout(*timeoutFlag),
		removinator.WithLogger(zerologAdapter{log: logger}),
	)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer conn.Close()

	logger.Debug().Str("port", conn.Address()).Msg("controller connected")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	// Close the port on interrupt so a command blocked on a read returns.
	go func() {
		<-ctx.Done()
		conn.Close()
	}()

	args := flag.Args()
	if len(args) == 0 {
		args = []string{"get_status"}
	}

	if args[0] == "shell" {
		if err := runShell(ctx, conn); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		return
	}

	if err := runCommand(ctx, conn, args[0], args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [flags] [command [args]]\n\nCommands:\n", os.Args[0])
	for _, c := range commandList() {
		fmt.Fprintf(flag.CommandLine.Output(), "  %-22s %s\n", c.Name+" "+c.Args, c.Description)
	}
	fmt.Fprintf(flag.CommandLine.Output(), "  %-22s %s\n\nFlags:\n", "shell", "Interactive prompt")
	flag.PrintDefaults()
}

func newLogger(verbose bool) zerolog.Logger {
	level := zerolog.WarnLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
		Level(level).
		With().
		Timestamp().
		Logger()
}
