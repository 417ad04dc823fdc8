package protocol

import (
	"reflect"
	"strings"
	"testing"
)

func TestClassifyLine(t *testing.T) {
	tests := []struct {
		line string
		want LineKind
	}{
		{"OK\r\n", LineSuccess},
		{"OK", LineSuccess},
		{"ERR_NOCARD\r\n", LineError},
		{"ERR_\n", LineError},
		{"[DBG] entering select\r\n", LineDiagnostic},
		{"{\"current\": 3, \"present\": [1]}\r\n", LinePayload},
		{"DBG_ON\r\n", LinePayload},
		{"", LinePayload},
		{" OK\n", LinePayload},
		{"ERR NOCARD\n", LinePayload},
	}

	for _, tt := range tests {
		if got := ClassifyLine(tt.line); got != tt.want {
			t.Errorf("ClassifyLine(%q) = %v, want %v", tt.line, got, tt.want)
		}
	}
}

func TestLineKindTerminal(t *testing.T) {
	if !LineSuccess.Terminal() || !LineError.Terminal() {
		t.Error("success and error lines must be terminal")
	}
	if LinePayload.Terminal() || LineDiagnostic.Terminal() {
		t.Error("payload and diagnostic lines must not be terminal")
	}
}

func TestErrorCode(t *testing.T) {
	tests := []struct {
		line string
		want string
	}{
		{"ERR_NOCARD\r\n", ErrNoCard},
		{"ERR_FOO", "FOO"},
		{"ERR_", ""},
		{"OK\r\n", ""},
		{"[DBG] ERR_NOCARD", ""},
	}

	for _, tt := range tests {
		if got := ErrorCode(tt.line); got != tt.want {
			t.Errorf("ErrorCode(%q) = %q, want %q", tt.line, got, tt.want)
		}
	}
}

func TestFirstPayloadLine(t *testing.T) {
	tests := []struct {
		name   string
		lines  []string
		want   string
		wantOK bool
	}{
		{
			name:   "no lines",
			lines:  nil,
			wantOK: false,
		},
		{
			name:   "only diagnostic lines",
			lines:  []string{"[DBG] a\r\n", "[DBG] b\r\n"},
			wantOK: false,
		},
		{
			name:   "diagnostic before payload",
			lines:  []string{"[DBG] entering\r\n", "{\"current\": 3}\r\n", "[DBG] leaving\r\n"},
			want:   "{\"current\": 3}\r\n",
			wantOK: true,
		},
		{
			name:   "payload first",
			lines:  []string{"first\n", "second\n"},
			want:   "first\n",
			wantOK: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := FirstPayloadLine(tt.lines)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if got != tt.want {
				t.Errorf("line = %q, want %q", got, tt.want)
			}
		})
	}
}

func slotPtr(s Slot) *Slot {
	return &s
}

func TestParseStatus(t *testing.T) {
	tests := []struct {
		name    string
		line    string
		want    *Status
		wantErr bool
		errMsg  string
	}{
		{
			name: "current and present",
			line: "{\"current\": 3, \"present\": [1,3,5]}\r\n",
			want: &Status{Current: slotPtr(3), Present: []Slot{1, 3, 5}},
		},
		{
			name: "no current card",
			line: "{\"current\": null, \"present\": [2]}",
			want: &Status{Current: nil, Present: []Slot{2}},
		},
		{
			name: "empty present list",
			line: "{\"current\": null, \"present\": []}",
			want: &Status{Current: nil, Present: []Slot{}},
		},
		{
			name: "unsorted present with duplicates",
			line: "{\"current\": 8, \"present\": [8, 2, 2, 4]}",
			want: &Status{Current: slotPtr(8), Present: []Slot{2, 4, 8}},
		},
		{
			name:    "empty line",
			line:    "\r\n",
			wantErr: true,
			errMsg:  "empty status payload",
		},
		{
			name:    "not json",
			line:    "DBG_ON",
			wantErr: true,
			errMsg:  "invalid status payload",
		},
		{
			name:    "current out of range",
			line:    "{\"current\": 9, \"present\": []}",
			wantErr: true,
			errMsg:  "current slot 9",
		},
		{
			name:    "present out of range",
			line:    "{\"current\": 1, \"present\": [0]}",
			wantErr: true,
			errMsg:  "present slot 0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseStatus(tt.line)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				if !strings.Contains(err.Error(), tt.errMsg) {
					t.Errorf("error = %q, want containing %q", err.Error(), tt.errMsg)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseStatus() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestStatusHelpers(t *testing.T) {
	st := &Status{Current: slotPtr(3), Present: []Slot{1, 3, 5}}

	if !st.HasCard(5) {
		t.Error("HasCard(5) = false, want true")
	}
	if st.HasCard(2) {
		t.Error("HasCard(2) = true, want false")
	}
	if got, want := st.String(), "current=3 present=[1,3,5]"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}

	empty := &Status{}
	if got, want := empty.String(), "current=none present=[]"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestParseDebugState(t *testing.T) {
	tests := []struct {
		response string
		want     DebugState
	}{
		{"DBG_ON\r\n", DebugOn},
		{"DBG_OFF\r\n", DebugOff},
		{"[DBG] toggling\r\nDBG_ON\r\n", DebugOn},
		{"DBG_ON\r\nDBG_OFF\r\n", DebugOff},
		{"DBG_OFF\r\nsomething else\r\n", DebugUnknown},
		{"", DebugUnknown},
	}

	for _, tt := range tests {
		if got := ParseDebugState(tt.response); got != tt.want {
			t.Errorf("ParseDebugState(%q) = %v, want %v", tt.response, got, tt.want)
		}
	}
}

func TestDeviceError(t *testing.T) {
	tests := []struct {
		code   string
		errMsg string
	}{
		{ErrNoCard, "ERR_NOCARD: no card present in slot"},
		{ErrLocked, "ERR_LOCKED: slot is locked"},
		{"FOO", "unknown error code \"FOO\""},
	}

	for _, tt := range tests {
		err := &DeviceError{Code: tt.code}
		if !strings.Contains(err.Error(), tt.errMsg) {
			t.Errorf("Error() = %q, want containing %q", err.Error(), tt.errMsg)
		}
		if !IsDeviceError(err) {
			t.Errorf("IsDeviceError(%v) = false", err)
		}
	}
}
