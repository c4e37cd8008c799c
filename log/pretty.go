package log

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// palette styles the parts of a pretty record. Its renderer detects the
// color support of the output, so styles render as plain text when the
// output is not a terminal.
type palette struct {
	key, str, num, yes, no, when, null lipgloss.Style
	levels                             [4]lipgloss.Style
}

func newPalette(w io.Writer) palette {
	r := lipgloss.NewRenderer(w)
	fg := func(color string) lipgloss.Style {
		return r.NewStyle().Foreground(lipgloss.Color(color))
	}

	return palette{
		key:  fg("8"),
		str:  fg("6"),
		num:  fg("3"),
		yes:  fg("2"),
		no:   fg("1"),
		when: fg("4"),
		null: fg("8"),
		levels: [4]lipgloss.Style{
			fg("4").Bold(true), // trace, debug
			fg("2").Bold(true), // info
			fg("3").Bold(true), // warn
			fg("1").Bold(true), // error
		},
	}
}

func (p palette) level(l slog.Level) lipgloss.Style {
	switch {
	case l >= slog.LevelError:
		return p.levels[3]
	case l >= slog.LevelWarn:
		return p.levels[2]
	case l >= slog.LevelInfo:
		return p.levels[1]
	}

	return p.levels[0]
}

// field is a rendered key and its styled value.
type field struct {
	key, value string
}

// prettyHandler writes one styled line per record, or with block set, an
// indented brace-delimited block.
type prettyHandler struct {
	opts   slog.HandlerOptions
	mu     *sync.Mutex
	w      io.Writer
	style  palette
	fields []field // From WithAttrs
	prefix string  // Open groups, dot-separated with a trailing dot
	groups []string
	block  bool
}

func newPrettyHandler(w io.Writer, opts *slog.HandlerOptions, block bool) *prettyHandler {
	return &prettyHandler{
		opts:  *opts,
		mu:    &sync.Mutex{},
		w:     w,
		style: newPalette(w),
		block: block,
	}
}

func (h *prettyHandler) Enabled(_ context.Context, level slog.Level) bool {
	threshold := slog.LevelInfo
	if h.opts.Level != nil {
		threshold = h.opts.Level.Level()
	}

	return level >= threshold
}

func (h *prettyHandler) Handle(_ context.Context, r slog.Record) error {
	fields := make([]field, 0, 4+len(h.fields)+r.NumAttrs())

	builtin := func(a slog.Attr) {
		if h.opts.ReplaceAttr != nil {
			a = h.opts.ReplaceAttr(nil, a)
		}

		if a.Key != "" {
			fields = h.appendAttr(fields, "", a)
		}
	}

	if !r.Time.IsZero() {
		builtin(slog.Time(slog.TimeKey, r.Time))
	}

	level := slog.Any(slog.LevelKey, r.Level)
	if h.opts.ReplaceAttr != nil {
		level = h.opts.ReplaceAttr(nil, level)
	}

	if level.Key != "" {
		fields = append(fields, field{
			key:   h.style.key.Render(level.Key),
			value: h.style.level(r.Level).Render(level.Value.String()),
		})
	}

	if h.opts.AddSource {
		if src := r.Source(); src != nil {
			builtin(slog.String(slog.SourceKey, fmt.Sprintf("%s:%d", src.File, src.Line)))
		}
	}

	builtin(slog.String(slog.MessageKey, r.Message))

	fields = append(fields, h.fields...)

	r.Attrs(func(a slog.Attr) bool {
		fields = h.appendAttr(fields, h.prefix, a)

		return true
	})

	var buf bytes.Buffer

	if h.block {
		buf.WriteString("{\n")

		for i, f := range fields {
			buf.WriteString("  ")
			buf.WriteString(f.key)
			buf.WriteString(": ")
			buf.WriteString(f.value)

			if i < len(fields)-1 {
				buf.WriteByte(',')
			}

			buf.WriteByte('\n')
		}

		buf.WriteString("}\n")
	} else {
		for i, f := range fields {
			if i > 0 {
				buf.WriteByte(' ')
			}

			buf.WriteString(f.key)
			buf.WriteByte('=')
			buf.WriteString(f.value)
		}

		buf.WriteByte('\n')
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	_, err := h.w.Write(buf.Bytes())

	return err
}

func (h *prettyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	c := *h
	c.fields = append([]field(nil), h.fields...)

	for _, a := range attrs {
		c.fields = h.appendAttr(c.fields, h.prefix, a)
	}

	return &c
}

func (h *prettyHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}

	c := *h
	c.prefix = h.prefix + name + "."
	c.groups = append(h.groups[:len(h.groups):len(h.groups)], name)

	return &c
}

// appendAttr renders a, flattening groups into dotted keys.
func (h *prettyHandler) appendAttr(fields []field, prefix string, a slog.Attr) []field {
	a.Value = a.Value.Resolve()

	if prefix != "" && h.opts.ReplaceAttr != nil {
		a = h.opts.ReplaceAttr(h.groups, a)
		a.Value = a.Value.Resolve()
	}

	if a.Equal(slog.Attr{}) {
		return fields
	}

	if a.Value.Kind() == slog.KindGroup {
		sub := prefix
		if a.Key != "" {
			sub += a.Key + "."
		}

		for _, g := range a.Value.Group() {
			fields = h.appendAttr(fields, sub, g)
		}

		return fields
	}

	return append(fields, field{
		key:   h.style.key.Render(prefix + a.Key),
		value: h.value(a.Value),
	})
}

func (h *prettyHandler) value(v slog.Value) string {
	p := h.style

	switch v.Kind() {
	case slog.KindString:
		s := v.String()
		if s == "" || strings.ContainsAny(s, " \t\n\"=") {
			s = strconv.Quote(s)
		}

		return p.str.Render(s)

	case slog.KindInt64:
		return p.num.Render(strconv.FormatInt(v.Int64(), 10))

	case slog.KindUint64:
		return p.num.Render(strconv.FormatUint(v.Uint64(), 10))

	case slog.KindFloat64:
		return p.num.Render(strconv.FormatFloat(v.Float64(), 'g', -1, 64))

	case slog.KindBool:
		if v.Bool() {
			return p.yes.Render("true")
		}

		return p.no.Render("false")

	case slog.KindDuration:
		return p.when.Render(v.Duration().String())

	case slog.KindTime:
		return p.when.Render(v.Time().Format(time.RFC3339Nano))
	}

	if v.Any() == nil {
		return p.null.Render("null")
	}

	if err, ok := v.Any().(error); ok {
		return p.no.Render(strconv.Quote(err.Error()))
	}

	return p.str.Render(fmt.Sprint(v.Any()))
}
