package log

import (
	"slices"
	"testing"
)

func TestLevel_String(t *testing.T) {
	tests := []struct {
		level Level
		want  string
	}{
		{LevelTrace, "trace"},
		{LevelDebug, "debug"},
		{LevelInfo, "info"},
		{LevelWarn, "warn"},
		{LevelError, "error"},
		{LevelInfo + 2, "info+2"},
		{LevelError + 4, "error+4"},
		{LevelTrace - 2, "trace-2"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.level.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLevel_UnmarshalText(t *testing.T) {
	tests := []struct {
		text    string
		want    Level
		wantErr bool
	}{
		{"trace", LevelTrace, false},
		{"TRACE", LevelTrace, false},
		{" debug ", LevelDebug, false},
		{"Info", LevelInfo, false},
		{"warn", LevelWarn, false},
		{"ERROR", LevelError, false},
		{"debug-2", LevelDebug - 2, false},
		{"verbose", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			var got Level

			err := got.UnmarshalText([]byte(tt.text))
			if (err != nil) != tt.wantErr {
				t.Fatalf("UnmarshalText(%q) error = %v, wantErr %v", tt.text, err, tt.wantErr)
			}

			if !tt.wantErr && got != tt.want {
				t.Errorf("UnmarshalText(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}

	if got := ParseLevel("verbose"); got != DefaultLevel {
		t.Errorf("ParseLevel(verbose) = %v, want %v", got, DefaultLevel)
	}
}

func TestLevel_RoundTrip(t *testing.T) {
	for name := range Levels() {
		var l Level
		if err := l.UnmarshalText([]byte(name)); err != nil {
			t.Fatalf("UnmarshalText(%q): %v", name, err)
		}

		text, err := l.MarshalText()
		if err != nil || string(text) != name {
			t.Errorf("MarshalText() = %q, %v, want %q", text, err, name)
		}
	}
}

func TestFormat(t *testing.T) {
	if got := slices.Collect(Formats()); !slices.Equal(got, []string{"text", "json"}) {
		t.Errorf("Formats() = %v", got)
	}

	tests := []struct {
		text string
		want Format
	}{
		{"json", FormatJSON},
		{"JSON", FormatJSON},
		{" text", FormatText},
		{"xml", DefaultFormat},
	}

	for _, tt := range tests {
		if got := ParseFormat(tt.text); got != tt.want {
			t.Errorf("ParseFormat(%q) = %v, want %v", tt.text, got, tt.want)
		}
	}

	var f Format
	if err := f.UnmarshalText([]byte("xml")); err == nil {
		t.Error("UnmarshalText(xml) succeeded")
	}

	if got := Format(9).String(); got != "format(9)" {
		t.Errorf("Format(9).String() = %q", got)
	}
}
