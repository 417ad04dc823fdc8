package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/nkinder/go-removinator/pcsc"
	"github.com/nkinder/go-removinator/protocol"
	"github.com/nkinder/go-removinator/removinator"
)

// controller is the part of *removinator.Conn the commands use.
type controller interface {
	InsertCard(ctx context.Context, slot protocol.Slot) error
	RemoveCard(ctx context.Context) error
	GetStatus(ctx context.Context) (*protocol.Status, error)
	LockCard(ctx context.Context, slot protocol.Slot) error
	UnlockCard(ctx context.Context, slot protocol.Slot) error
	SetDebug(ctx context.Context, enabled bool) error
	LastResponse() string
}

// env carries what a command needs besides its arguments.
type env struct {
	ctrl controller
	out  io.Writer

	// probe checks the PC/SC reader after an insert; nil skips the check
	probe func(ctx context.Context) (*pcsc.Card, error)
}

type cliCommand struct {
	Name        string
	Args        string
	Description string
	Run         func(ctx context.Context, e *env, args []string) error
}

var cliCommands = map[string]cliCommand{
	"insert_card": {
		Name:        "insert_card",
		Args:        "<slot>",
		Description: "Switch the card in slot 1-8 into the reader",
		Run: func(ctx context.Context, e *env, args []string) error {
			slot, err := slotArg(args)
			if err != nil {
				return err
			}
			fmt.Fprintf(e.out, "Switching slot to %d\n", slot)
			return e.ctrl.InsertCard(ctx, slot)
		},
	},
	"remove_card": {
		Name:        "remove_card",
		Description: "Remove the current card from the reader",
		Run: func(ctx context.Context, e *env, args []string) error {
			fmt.Fprintln(e.out, "Removing card from current slot")
			return e.ctrl.RemoveCard(ctx)
		},
	},
	"get_status": {
		Name:        "get_status",
		Description: "Show the current slot and the slots holding a card",
		Run: func(ctx context.Context, e *env, args []string) error {
			status, err := e.ctrl.GetStatus(ctx)
			if err != nil {
				return err
			}
			printStatus(e.out, status)
			return nil
		},
	},
	"lock_card": {
		Name:        "lock_card",
		Args:        "<slot>",
		Description: "Lock a slot",
		Run: func(ctx context.Context, e *env, args []string) error {
			slot, err := slotArg(args)
			if err != nil {
				return err
			}
			fmt.Fprintf(e.out, "Locking slot %d\n", slot)
			return e.ctrl.LockCard(ctx, slot)
		},
	},
	"unlock_card": {
		Name:        "unlock_card",
		Args:        "<slot>",
		Description: "Unlock a slot",
		Run: func(ctx context.Context, e *env, args []string) error {
			slot, err := slotArg(args)
			if err != nil {
				return err
			}
			fmt.Fprintf(e.out, "Unlocking slot %d\n", slot)
			return e.ctrl.UnlockCard(ctx, slot)
		},
	},
	"set_debug": {
		Name:        "set_debug",
		Args:        "on|off",
		Description: "Enable or disable controller debug output",
		Run: func(ctx context.Context, e *env, args []string) error {
			if len(args) != 1 {
				return errors.New("set_debug needs one argument: on or off")
			}
			var enabled bool
			switch strings.ToLower(args[0]) {
			case "on", "true", "1":
				enabled = true
			case "off", "false", "0":
			default:
				return fmt.Errorf("set_debug: invalid value %q, want on or off", args[0])
			}
			if err := e.ctrl.SetDebug(ctx, enabled); err != nil {
				return err
			}
			fmt.Fprintf(e.out, "Debug output %s\n", onOff(enabled))
			return nil
		},
	},
	"cycle": {
		Name:        "cycle",
		Description: "Insert every slot in turn, then show status and remove the card",
		Run:         runCycle,
	},
}

// commandList returns the commands sorted by name.
func commandList() []cliCommand {
	list := make([]cliCommand, 0, len(cliCommands))
	for _, c := range cliCommands {
		list = append(list, c)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	return list
}

// dispatch runs the named command. An unknown name falls back to get_status.
func dispatch(ctx context.Context, e *env, name string, args []string) error {
	cmd, ok := cliCommands[name]
	if !ok {
		fmt.Fprintf(e.out, "Invalid command %q selected, running get_status instead\n", name)
		cmd, args = cliCommands["get_status"], nil
	}
	return cmd.Run(ctx, e, args)
}

func runCommand(ctx context.Context, conn *removinator.Conn, name string, args []string) error {
	return dispatch(ctx, newEnv(conn), name, args)
}

func newEnv(conn *removinator.Conn) *env {
	e := &env{ctrl: conn, out: stdout}
	if *probeFlag {
		p := &pcsc.Prober{Reader: *readerFlag}
		e.probe = func(ctx context.Context) (*pcsc.Card, error) {
			ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
			defer cancel()
			return p.Probe(ctx)
		}
	}
	return e
}

// runCycle walks all slots the way a test harness would: every slot holding
// a card is switched into the reader in turn, then the last card is
// re-inserted with debug output on and finally removed.
func runCycle(ctx context.Context, e *env, args []string) error {
	fmt.Fprintln(e.out, "--- Cycling through cards ---")
	for slot := protocol.MinSlot; slot <= protocol.MaxSlot; slot++ {
		err := e.ctrl.InsertCard(ctx, slot)
		var slotErr *removinator.SlotError
		switch {
		case errors.As(err, &slotErr):
			fmt.Fprintf(e.out, "Card %d is not inserted\n", slot)
			continue
		case err != nil:
			return err
		}
		fmt.Fprintf(e.out, "Inserted card %d\n", slot)

		if e.probe != nil {
			card, err := e.probe(ctx)
			if err != nil {
				fmt.Fprintf(e.out, "  reader: %v\n", err)
			} else {
				fmt.Fprintf(e.out, "  %s\n", card)
			}
		}
	}

	fmt.Fprintln(e.out, "--- Checking Removinator status ---")
	status, err := e.ctrl.GetStatus(ctx)
	if err != nil {
		return err
	}
	printStatus(e.out, status)

	if status.Current != nil {
		fmt.Fprintln(e.out, "--- Debug output for re-insertion of current card ---")
		if err := e.ctrl.SetDebug(ctx, true); err != nil {
			return err
		}
		if err := e.ctrl.InsertCard(ctx, *status.Current); err != nil {
			return err
		}
		fmt.Fprintln(e.out, strings.TrimRight(e.ctrl.LastResponse(), "\r\n"))
		if err := e.ctrl.SetDebug(ctx, false); err != nil {
			return err
		}
	}

	fmt.Fprintln(e.out, "--- Remove current card ---")
	return e.ctrl.RemoveCard(ctx)
}

func slotArg(args []string) (protocol.Slot, error) {
	if len(args) != 1 {
		return 0, errors.New("a slot number is required")
	}
	n, err := strconv.Atoi(args[0])
	if err != nil {
		return 0, fmt.Errorf("invalid slot %q", args[0])
	}
	return protocol.Slot(n), nil
}

func printStatus(w io.Writer, status *protocol.Status) {
	if status.Current == nil {
		fmt.Fprintln(w, "Current card: none")
	} else {
		fmt.Fprintf(w, "Current card: %d\n", *status.Current)
	}
	for _, slot := range status.Present {
		fmt.Fprintf(w, "Card %d is present\n", slot)
	}
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}
