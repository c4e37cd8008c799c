package log

import (
	"fmt"
	"iter"
	"log/slog"
	"strings"
)

// Level is the severity of a log record. It extends [slog.Level] with
// [LevelTrace], which sits below [LevelDebug].
type Level slog.Level

const (
	LevelTrace = Level(slog.LevelDebug - 4)
	LevelDebug = Level(slog.LevelDebug)
	LevelInfo  = Level(slog.LevelInfo)
	LevelWarn  = Level(slog.LevelWarn)
	LevelError = Level(slog.LevelError)
)

// DefaultLevel is the level of a logger made without [WithLevel].
const DefaultLevel = LevelInfo

var levelNames = []struct {
	name  string
	level Level
}{
	{"trace", LevelTrace},
	{"debug", LevelDebug},
	{"info", LevelInfo},
	{"warn", LevelWarn},
	{"error", LevelError},
}

// String returns the lower-case name of l. Levels between the named ones are
// rendered relative to the nearest named level below, as in "info+2".
func (l Level) String() string {
	for i := len(levelNames) - 1; i >= 0; i-- {
		named := levelNames[i]
		if l < named.level {
			continue
		}

		if l == named.level {
			return named.name
		}

		return fmt.Sprintf("%s+%d", named.name, l-named.level)
	}

	return fmt.Sprintf("%s%d", levelNames[0].name, l-levelNames[0].level)
}

// MarshalText implements [encoding.TextMarshaler].
func (l Level) MarshalText() ([]byte, error) { return []byte(l.String()), nil }

// UnmarshalText implements [encoding.TextUnmarshaler]. It accepts the level
// names in any case, with an optional signed offset such as "debug-2".
func (l *Level) UnmarshalText(text []byte) error {
	s := strings.TrimSpace(string(text))
	if strings.EqualFold(s, "trace") {
		*l = LevelTrace

		return nil
	}

	var sl slog.Level
	if err := sl.UnmarshalText([]byte(s)); err != nil {
		return fmt.Errorf("invalid log level %q", s)
	}

	*l = Level(sl)

	return nil
}

// ParseLevel is like [Level.UnmarshalText] but returns [DefaultLevel] for
// text it does not recognize.
func ParseLevel(s string) Level {
	var l Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return DefaultLevel
	}

	return l
}

// Levels returns the names of the named levels, most verbose first.
func Levels() iter.Seq[string] {
	return func(yield func(string) bool) {
		for _, n := range levelNames {
			if !yield(n.name) {
				return
			}
		}
	}
}

// Format selects the encoding of log records.
type Format uint8

const (
	FormatText Format = iota
	FormatJSON
)

// DefaultFormat is the format of a logger made without [WithFormat].
const DefaultFormat = FormatText

var formatNames = [...]string{
	FormatText: "text",
	FormatJSON: "json",
}

func (f Format) String() string {
	if int(f) < len(formatNames) {
		return formatNames[f]
	}

	return fmt.Sprintf("format(%d)", uint8(f))
}

// MarshalText implements [encoding.TextMarshaler].
func (f Format) MarshalText() ([]byte, error) { return []byte(f.String()), nil }

// UnmarshalText implements [encoding.TextUnmarshaler].
func (f *Format) UnmarshalText(text []byte) error {
	s := strings.ToLower(strings.TrimSpace(string(text)))

	for i, name := range formatNames {
		if s == name {
			*f = Format(i)

			return nil
		}
	}

	return fmt.Errorf("invalid log format %q", s)
}

// ParseFormat is like [Format.UnmarshalText] but returns [DefaultFormat] for
// text it does not recognize.
func ParseFormat(s string) Format {
	var f Format
	if err := f.UnmarshalText([]byte(s)); err != nil {
		return DefaultFormat
	}

	return f
}

// Formats returns the names of the supported formats.
func Formats() iter.Seq[string] {
	return func(yield func(string) bool) {
		for _, name := range formatNames {
			if !yield(name) {
				return
			}
		}
	}
}
