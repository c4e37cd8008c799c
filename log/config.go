package log

import (
	"io"
	"log/slog"
	"strings"
	"time"
)

// FormatTime renders a record timestamp. An empty result omits the time.
type FormatTime func(time.Time) string

const (
	// DefaultTimeLayout is the timestamp layout of a logger made without
	// [WithTimeLayout].
	DefaultTimeLayout = time.RFC3339

	// DefaultCaller reports whether records include their source location.
	DefaultCaller = false

	// DefaultPretty reports whether records are colorized and aligned for
	// reading in a terminal.
	DefaultPretty = true
)

// config is the immutable configuration behind a [Logger]. Options modify a
// copy before the logger is made.
type config struct {
	output     io.Writer
	formatTime FormatTime
	level      Level
	format     Format
	caller     bool
	pretty     bool
}

// Option modifies the configuration of a logger under construction.
type Option func(*config)

func newConfig(w io.Writer, opts ...Option) config {
	c := config{
		output:     io.Discard,
		formatTime: layoutFunc(DefaultTimeLayout),
		level:      DefaultLevel,
		format:     DefaultFormat,
		caller:     DefaultCaller,
		pretty:     DefaultPretty,
	}

	if w != nil {
		c.output = w
	}

	return c.with(opts...)
}

func (c config) with(opts ...Option) config {
	for _, opt := range opts {
		opt(&c)
	}

	return c
}

// WithOutput sets the destination of log records. A nil writer discards
// them.
func WithOutput(w io.Writer) Option {
	return func(c *config) {
		if w == nil {
			w = io.Discard
		}

		c.output = w
	}
}

// WithLevel sets the minimum level of records that are written.
func WithLevel(level Level) Option {
	return func(c *config) { c.level = level }
}

// WithFormat sets the record encoding.
func WithFormat(format Format) Option {
	return func(c *config) { c.format = format }
}

// WithTimeLayout sets the timestamp layout.
//
// The layout may name one of the constants of package [time], ignoring case
// and punctuation, so "rfc3339-nano" selects [time.RFC3339Nano]. A few short
// aliases such as "ms" and "kitchen" are also recognized. Any other text is
// passed verbatim to [time.Time.Format]. An empty layout, or "none", omits
// timestamps.
func WithTimeLayout(layout string) Option {
	return func(c *config) { c.formatTime = layoutFunc(layout) }
}

// WithCaller sets whether records include the file and line of the call
// that produced them.
func WithCaller(enable bool) Option {
	return func(c *config) { c.caller = enable }
}

// WithPretty sets whether records are styled for a terminal. Styles are
// dropped automatically when the output is not a terminal.
func WithPretty(enable bool) Option {
	return func(c *config) { c.pretty = enable }
}

var namedLayouts = map[string]string{
	"ansic":       time.ANSIC,
	"unixdate":    time.UnixDate,
	"rubydate":    time.RubyDate,
	"rfc822":      time.RFC822,
	"rfc822z":     time.RFC822Z,
	"rfc850":      time.RFC850,
	"rfc1123":     time.RFC1123,
	"rfc1123z":    time.RFC1123Z,
	"rfc3339":     time.RFC3339,
	"rfc3339nano": time.RFC3339Nano,
	"kitchen":     time.Kitchen,
	"datetime":    time.DateTime,
	"dateonly":    time.DateOnly,
	"timeonly":    time.TimeOnly,
	"stamp":       time.Stamp,
	"stampmilli":  time.StampMilli,
	"ms":          time.StampMilli,
	"stampmicro":  time.StampMicro,
	"us":          time.StampMicro,
	"stampnano":   time.StampNano,
	"ns":          time.StampNano,
	"none":        "",
}

func layoutFunc(layout string) FormatTime {
	key := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		case r >= 'A' && r <= 'Z':
			return r + 'a' - 'A'
		}

		return -1
	}, layout)

	if named, ok := namedLayouts[key]; ok {
		layout = named
	}

	if strings.TrimSpace(layout) == "" {
		return func(time.Time) string { return "" }
	}

	return func(t time.Time) string { return t.Format(layout) }
}

// replaceAttr renders the time with the configured layout and the level
// with its upper-case [Level] name.
func (c config) replaceAttr(groups []string, a slog.Attr) slog.Attr {
	if len(groups) > 0 {
		return a
	}

	switch a.Key {
	case slog.TimeKey:
		if t, ok := a.Value.Any().(time.Time); ok {
			s := c.formatTime(t)
			if s == "" {
				return slog.Attr{}
			}

			a.Value = slog.StringValue(s)
		}

	case slog.LevelKey:
		if l, ok := a.Value.Any().(slog.Level); ok {
			a.Value = slog.StringValue(strings.ToUpper(Level(l).String()))
		}
	}

	return a
}

func (c config) handler() slog.Handler {
	opts := &slog.HandlerOptions{
		AddSource:   c.caller,
		Level:       slog.Level(c.level),
		ReplaceAttr: c.replaceAttr,
	}

	if c.pretty {
		return newPrettyHandler(c.output, opts, c.format == FormatJSON)
	}

	switch c.format {
	case FormatJSON:
		return slog.NewJSONHandler(c.output, opts)
	case FormatText:
		return slog.NewTextHandler(c.output, opts)
	}

	return slog.DiscardHandler
}
