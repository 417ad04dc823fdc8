package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/nkinder/go-removinator/pcsc"
	"github.com/nkinder/go-removinator/protocol"
	"github.com/nkinder/go-removinator/removinator"
)

type fakeController struct {
	calls   []string
	empty   map[protocol.Slot]bool
	current *protocol.Slot
	present []protocol.Slot
	err     error
}

func (f *fakeController) record(format string, args ...interface{}) {
	f.calls = append(f.calls, fmt.Sprintf(format, args...))
}

func (f *fakeController) InsertCard(ctx context.Context, slot protocol.Slot) error {
	f.record("insert %d", slot)
	if f.err != nil {
		return f.err
	}
	if f.empty[slot] {
		return &removinator.SlotError{Slot: slot}
	}
	s := slot
	f.current = &s
	return nil
}

func (f *fakeController) RemoveCard(ctx context.Context) error {
	f.record("remove")
	f.current = nil
	return f.err
}

func (f *fakeController) GetStatus(ctx context.Context) (*protocol.Status, error) {
	f.record("status")
	if f.err != nil {
		return nil, f.err
	}
	return &protocol.Status{Current: f.current, Present: f.present}, nil
}

func (f *fakeController) LockCard(ctx context.Context, slot protocol.Slot) error {
	f.record("lock %d", slot)
	return f.err
}

func (f *fakeController) UnlockCard(ctx context.Context, slot protocol.Slot) error {
	f.record("unlock %d", slot)
	return f.err
}

func (f *fakeController) SetDebug(ctx context.Context, enabled bool) error {
	f.record("debug %v", enabled)
	return f.err
}

func (f *fakeController) LastResponse() string {
	return "[DBG] switching to slot\r\n"
}

func slotPtr(s protocol.Slot) *protocol.Slot { return &s }

func TestDispatch(t *testing.T) {
	tests := []struct {
		name      string
		command   string
		args      []string
		wantCalls []string
		wantOut   string
		wantErr   string
	}{
		{
			name:      "insert card",
			command:   "insert_card",
			args:      []string{"3"},
			wantCalls: []string{"insert 3"},
			wantOut:   "Switching slot to 3",
		},
		{
			name:    "insert card without slot",
			command: "insert_card",
			wantErr: "slot number is required",
		},
		{
			name:    "insert card with bad slot",
			command: "insert_card",
			args:    []string{"three"},
			wantErr: `invalid slot "three"`,
		},
		{
			name:      "remove card",
			command:   "remove_card",
			wantCalls: []string{"remove"},
			wantOut:   "Removing card from current slot",
		},
		{
			name:      "get status",
			command:   "get_status",
			wantCalls: []string{"status"},
			wantOut:   "Current card: 2\nCard 2 is present\nCard 5 is present\n",
		},
		{
			name:      "lock card",
			command:   "lock_card",
			args:      []string{"4"},
			wantCalls: []string{"lock 4"},
		},
		{
			name:      "unlock card",
			command:   "unlock_card",
			args:      []string{"4"},
			wantCalls: []string{"unlock 4"},
		},
		{
			name:      "set debug on",
			command:   "set_debug",
			args:      []string{"on"},
			wantCalls: []string{"debug true"},
			wantOut:   "Debug output on",
		},
		{
			name:      "set debug off",
			command:   "set_debug",
			args:      []string{"OFF"},
			wantCalls: []string{"debug false"},
		},
		{
			name:    "set debug invalid",
			command: "set_debug",
			args:    []string{"maybe"},
			wantErr: `invalid value "maybe"`,
		},
		{
			name:      "unknown command falls back to status",
			command:   "frobnicate",
			args:      []string{"1"},
			wantCalls: []string{"status"},
			wantOut:   `Invalid command "frobnicate" selected, running get_status instead`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := &fakeController{current: slotPtr(2), present: []protocol.Slot{2, 5}}
			var out bytes.Buffer

			err := dispatch(context.Background(), &env{ctrl: ctrl, out: &out}, tt.command, tt.args)

			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("error = %v, want containing %q", err, tt.wantErr)
				}
				if len(ctrl.calls) != 0 {
					t.Errorf("controller called on argument error: %v", ctrl.calls)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if strings.Join(ctrl.calls, ",") != strings.Join(tt.wantCalls, ",") {
				t.Errorf("calls = %v, want %v", ctrl.calls, tt.wantCalls)
			}
			if !strings.Contains(out.String(), tt.wantOut) {
				t.Errorf("output = %q, want containing %q", out.String(), tt.wantOut)
			}
		})
	}
}

func TestDispatchPropagatesErrors(t *testing.T) {
	deviceErr := errors.New("serial error")
	ctrl := &fakeController{err: deviceErr}

	err := dispatch(context.Background(), &env{ctrl: ctrl, out: &bytes.Buffer{}}, "insert_card", []string{"1"})
	if !errors.Is(err, deviceErr) {
		t.Fatalf("error = %v, want %v", err, deviceErr)
	}
}

func TestStatusWithoutCurrentCard(t *testing.T) {
	ctrl := &fakeController{}
	var out bytes.Buffer

	if err := dispatch(context.Background(), &env{ctrl: ctrl, out: &out}, "get_status", nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.String() != "Current card: none\n" {
		t.Errorf("output = %q", out.String())
	}
}

func TestCycle(t *testing.T) {
	ctrl := &fakeController{
		empty:   map[protocol.Slot]bool{2: true, 4: true, 5: true, 6: true, 7: true, 8: true},
		present: []protocol.Slot{1, 3},
	}
	probes := 0
	e := &env{
		ctrl: ctrl,
		out:  &bytes.Buffer{},
		probe: func(ctx context.Context) (*pcsc.Card, error) {
			probes++
			return &pcsc.Card{Reader: "Reader A", ATR: []byte{0x3b, 0x02}}, nil
		},
	}

	if err := dispatch(context.Background(), e, "cycle", nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{
		"insert 1", "insert 2", "insert 3", "insert 4",
		"insert 5", "insert 6", "insert 7", "insert 8",
		"status",
		"debug true", "insert 3", "debug false",
		"remove",
	}
	if strings.Join(ctrl.calls, ",") != strings.Join(want, ",") {
		t.Errorf("calls = %v\nwant    %v", ctrl.calls, want)
	}
	if probes != 2 {
		t.Errorf("probes = %d, want 2", probes)
	}

	out := e.out.(*bytes.Buffer).String()
	for _, s := range []string{
		"Inserted card 1",
		"Card 2 is not inserted",
		"Reader A: ATR 3B 02",
		"Current card: 3",
		"[DBG] switching to slot",
	} {
		if !strings.Contains(out, s) {
			t.Errorf("output missing %q:\n%s", s, out)
		}
	}
}

func TestCycleStopsOnTransportError(t *testing.T) {
	ctrl := &fakeController{err: errors.New("port closed")}

	err := dispatch(context.Background(), &env{ctrl: ctrl, out: &bytes.Buffer{}}, "cycle", nil)
	if err == nil {
		t.Fatal("expected error")
	}
	if len(ctrl.calls) != 1 {
		t.Errorf("calls = %v, want a single insert", ctrl.calls)
	}
}

func TestCommandListSorted(t *testing.T) {
	list := commandList()
	if len(list) != len(cliCommands) {
		t.Fatalf("len = %d, want %d", len(list), len(cliCommands))
	}
	for i := 1; i < len(list); i++ {
		if list[i-1].Name >= list[i].Name {
			t.Errorf("commands not sorted: %s before %s", list[i-1].Name, list[i].Name)
		}
	}
}
