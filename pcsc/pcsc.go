// Package pcsc checks the smart-card reader the Removinator feeds.
//
// After a slot is switched into the reader it takes a moment for the reader
// to power the card. Probe polls the PC/SC service until a card answers and
// reports its ATR.
package pcsc

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ebfe/scard"
)

// ErrNoReader is returned when PC/SC reports no matching reader.
var ErrNoReader = errors.New("no smart card reader found")

// Card describes a card found in a reader.
type Card struct {
	// Reader is the PC/SC reader name
	Reader string

	// ATR is the card's answer-to-reset
	ATR []byte
}

// ATRString returns the ATR as upper-case hex bytes separated by spaces.
func (c *Card) ATRString() string {
	return strings.ToUpper(strings.TrimSpace(fmt.Sprintf("% x", c.ATR)))
}

func (c *Card) String() string {
	return fmt.Sprintf("%s: ATR %s", c.Reader, c.ATRString())
}

// Connector opens a card in a named reader. The default implementation uses
// the system PC/SC service.
type Connector interface {
	ListReaders() ([]string, error)
	CardATR(reader string) ([]byte, error)
	Release() error
}

// Prober waits for a card to appear in a reader.
type Prober struct {
	// Reader selects the reader whose name contains this string; empty
	// selects the first reader
	Reader string

	// Interval between connection attempts
	Interval time.Duration

	// Connect returns the PC/SC connector; defaults to the system service
	Connect func() (Connector, error)
}

// Probe waits until a card answers in the configured reader or ctx is done.
func (p *Prober) Probe(ctx context.Context) (*Card, error) {
	connect := p.Connect
	if connect == nil {
		connect = systemConnector
	}
	interval := p.Interval
	if interval <= 0 {
		interval = 250 * time.Millisecond
	}

	conn, err := connect()
	if err != nil {
		return nil, fmt.Errorf("establish PC/SC context: %w", err)
	}
	defer conn.Release()

	readers, err := conn.ListReaders()
	if err != nil {
		return nil, fmt.Errorf("list readers: %w", err)
	}
	reader, err := selectReader(readers, p.Reader)
	if err != nil {
		return nil, err
	}

	var lastErr error
	for {
		atr, err := conn.CardATR(reader)
		if err == nil {
			return &Card{Reader: reader, ATR: atr}, nil
		}
		lastErr = err

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("no card in %q: %w (last error: %v)", reader, ctx.Err(), lastErr)
		case <-time.After(interval):
		}
	}
}

func selectReader(readers []string, match string) (string, error) {
	for _, r := range readers {
		if match == "" || strings.Contains(strings.ToLower(r), strings.ToLower(match)) {
			return r, nil
		}
	}
	if match != "" {
		return "", fmt.Errorf("%w matching %q", ErrNoReader, match)
	}
	return "", ErrNoReader
}

type scardConnector struct {
	ctx *scard.Context
}

func systemConnector() (Connector, error) {
	ctx, err := scard.EstablishContext()
	if err != nil {
		return nil, err
	}
	return &scardConnector{ctx: ctx}, nil
}

func (s *scardConnector) ListReaders() ([]string, error) {
	return s.ctx.ListReaders()
}

func (s *scardConnector) CardATR(reader string) ([]byte, error) {
	card, err := s.ctx.Connect(reader, scard.ShareShared, scard.ProtocolAny)
	if err != nil {
		return nil, err
	}
	defer card.Disconnect(scard.LeaveCard)

	status, err := card.Status()
	if err != nil {
		return nil, err
	}
	return status.Atr, nil
}

func (s *scardConnector) Release() error {
	return s.ctx.Release()
}
