package removinator

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/nkinder/go-removinator/protocol"
)

var errNoPayload = errors.New("no payload line in response")

// InsertCard switches the card in slot into the reader.
//
// A slot outside 1-8 fails with *ValidationError without touching the port.
// If the controller reports the slot as empty the error is a *SlotError;
// every other failure is the *CommandError from the exchange.
//
// Example:
//
//	var slotErr *removinator.SlotError
//	if err := conn.InsertCard(ctx, 3); errors.As(err, &slotErr) {
//	    fmt.Printf("slot %d is empty\n", slotErr.Slot)
//	}
func (c *Conn) InsertCard(ctx context.Context, slot protocol.Slot) error {
	if err := validateSlot(slot); err != nil {
		return err
	}

	cmd, err := protocol.BuildSelectSlotCmd(slot)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, err := c.exchange(ctx, cmd); err != nil {
		var cmdErr *CommandError
		if errors.As(err, &cmdErr) && cmdErr.Code == protocol.ErrNoCard {
			return &SlotError{Slot: slot, Cause: cmdErr}
		}
		return err
	}

	c.logInfo("card inserted", "slot", int(slot))
	return nil
}

// RemoveCard withdraws the currently inserted card from the reader.
func (c *Conn) RemoveCard(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, err := c.exchange(ctx, protocol.BuildRemoveCmd()); err != nil {
		return err
	}

	c.logInfo("card removed")
	return nil
}

// GetStatus queries which slot is active and which slots hold a card.
// Diagnostic lines are skipped; the first remaining line is decoded. A
// response without such a line fails with *DecodeError.
func (c *Conn) GetStatus(ctx context.Context) (*protocol.Status, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	resp, err := c.exchange(ctx, protocol.BuildStatusCmd())
	if err != nil {
		return nil, err
	}

	line, ok := protocol.FirstPayloadLine(resp.Lines)
	if !ok {
		return nil, &DecodeError{Command: resp.Command, Err: errNoPayload}
	}

	status, err := protocol.ParseStatus(line)
	if err != nil {
		return nil, &DecodeError{
			Command: resp.Command,
			Line:    strings.TrimRight(line, "\r\n"),
			Err:     err,
		}
	}

	return status, nil
}

// LockCard locks slot on the controller.
func (c *Conn) LockCard(ctx context.Context, slot protocol.Slot) error {
	return c.slotCommand(ctx, slot, protocol.BuildLockSlotCmd)
}

// UnlockCard unlocks slot on the controller.
func (c *Conn) UnlockCard(ctx context.Context, slot protocol.Slot) error {
	return c.slotCommand(ctx, slot, protocol.BuildUnlockSlotCmd)
}

func (c *Conn) slotCommand(ctx context.Context, slot protocol.Slot, build func(protocol.Slot) (protocol.Command, error)) error {
	if err := validateSlot(slot); err != nil {
		return err
	}

	cmd, err := build(slot)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	_, err = c.exchange(ctx, cmd)
	return err
}

// SetDebug enables or disables the controller's diagnostic output.
//
// The firmware only offers a toggle, so SetDebug toggles once, reads the
// reported state and toggles a second time if that state is not the one
// requested. Both exchanges run without another command in between.
func (c *Conn) SetDebug(ctx context.Context, enabled bool) error {
	want := protocol.DebugOff
	if enabled {
		want = protocol.DebugOn
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	state, err := c.toggleDebug(ctx)
	if err != nil {
		return err
	}
	if state == want {
		return nil
	}

	state, err = c.toggleDebug(ctx)
	if err != nil {
		return err
	}
	if state != want {
		return fmt.Errorf("set debug: controller reports debug %s, want %s", state, want)
	}

	return nil
}

// toggleDebug sends the toggle command and returns the state reported in the
// trailing response text. c.mu must be held.
func (c *Conn) toggleDebug(ctx context.Context) (protocol.DebugState, error) {
	if _, err := c.exchange(ctx, protocol.BuildToggleDebugCmd()); err != nil {
		return protocol.DebugUnknown, err
	}

	state := protocol.ParseDebugState(c.lastResponse)
	if state == protocol.DebugUnknown {
		return state, fmt.Errorf("set debug: %w in %q", protocol.ErrUnknownDebugState,
			strings.TrimSpace(c.lastResponse))
	}

	c.logDebug("debug toggled", "state", state.String())
	return state, nil
}
