package lang

import (
	"errors"
	"log/slog"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Predefined errors (sentinel values).
//
// Every failure returned by this package matches, via [errors.Is], the
// sentinel that produced it and each group that sentinel belongs to. For
// example, an unknown name matches both [ErrUnknownSymbol] and [ErrCompile].
var (
	ErrCompile       = NewError("compile error")
	ErrLexical       = ErrCompile.Kind("lexical error")
	ErrSyntax        = ErrCompile.Kind("syntax error")
	ErrUnknownSymbol = ErrCompile.Kind("unknown symbol")
	ErrNotCallable   = ErrCompile.Kind("symbol is not callable")
	ErrArgumentCount = ErrCompile.Kind("wrong number of arguments")

	ErrRegister        = NewError("registration error")
	ErrSignature       = ErrRegister.Kind("invalid function signature")
	ErrDuplicateSymbol = ErrRegister.Kind("duplicate symbol")
	ErrInvalidName     = ErrRegister.Kind("invalid symbol name")
	ErrInvalidVariable = ErrRegister.Kind("invalid variable name")
	ErrReadOnly        = ErrRegister.Kind("variable is read-only")

	ErrEvaluate        = NewError("evaluation error")
	ErrArithmetic      = ErrEvaluate.Kind("arithmetic error")
	ErrDivisionByZero  = ErrArithmetic.Kind("division by zero")
	ErrInvalidPower    = ErrArithmetic.Kind("invalid power")
	ErrDomain          = ErrArithmetic.Kind("argument out of domain")
	ErrResolve         = ErrEvaluate.Kind("variable resolution failed")
	ErrUnknownArgument = ErrEvaluate.Kind("unknown argument")
	ErrNotScalar       = ErrEvaluate.Kind("argument is not scalar")
	ErrNoResult        = ErrEvaluate.Kind("function returned no value")
)

// Error represents an error with optional structured logging attributes.
// It implements both error and slog.LogValuer interfaces.
type Error struct {
	msg    string
	err    error       // Wrapped error (for errors.Unwrap)
	attrs  []slog.Attr // Attributes for structured logging
	origin *Error      // Sentinel this error was derived from
	group  *Error      // Sentinel this sentinel belongs to
}

// NewError creates a new Error with a message.
func NewError(msg string) *Error {
	return &Error{msg: msg}
}

// WrapError wraps a standard error into an Error.
func WrapError(err error) *Error {
	ee := &Error{}
	if errors.As(err, &ee) {
		return ee
	}

	return &Error{err: err}
}

// Kind returns a new sentinel that also matches e.
func (e *Error) Kind(msg string) *Error {
	return &Error{msg: msg, group: e.sentinel()}
}

func (e *Error) sentinel() *Error {
	if e.origin != nil {
		return e.origin
	}

	return e
}

// Error implements the error interface.
func (e *Error) Error() string {
	// Build error message using the first available format,
	// depending on which fields are set:
	//
	//   1. "<msg>: <err>" // base and wrapped error both set
	//   2. "<msg>"        // wrapped error is nil
	//   3. "<err>"        // base error message is empty
	//   4. ""             // no fields are set
	part := make([]string, 0, 2)

	if e.msg != "" {
		part = append(part, e.msg)
	}

	if e.err != nil {
		part = append(part, e.err.Error())
	}

	return strings.Join(part, ": ")
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *Error) Unwrap() error { return e.err }

// Is reports whether target is the sentinel e was derived from, or a group
// containing that sentinel.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}

	for s := e.sentinel(); s != nil; s = s.group {
		if s == t {
			return true
		}
	}

	return false
}

// LogValue implements slog.LogValuer for rich structured logging.
func (e *Error) LogValue() slog.Value {
	attrs := make([]slog.Attr, 0, len(e.attrs)+2)

	if e.msg != "" {
		attrs = append(attrs, slog.String("error", e.msg))
	}

	if e.err != nil {
		attrs = append(attrs, slog.String("cause", e.err.Error()))
	}

	return slog.GroupValue(append(attrs, e.attrs...)...)
}

// Wrap creates a new Error wrapping another error.
func (e *Error) Wrap(err error) *Error {
	return &Error{
		msg:    e.msg,
		err:    err,
		attrs:  e.attrs, // Share attrs
		origin: e.sentinel(),
	}
}

// With adds attributes to the error for structured logging.
// This creates a new Error instance to maintain immutability.
func (e *Error) With(attrs ...slog.Attr) *Error {
	newAttrs := make([]slog.Attr, len(e.attrs)+len(attrs))
	copy(newAttrs, e.attrs)
	copy(newAttrs[len(e.attrs):], attrs)

	return &Error{
		msg:    e.msg,
		err:    e.err,
		attrs:  newAttrs,
		origin: e.sentinel(),
	}
}

// WithOffset records the byte offset in the source text where e arose.
func (e *Error) WithOffset(offset int) *Error {
	return e.With(slog.Int("offset", offset))
}

// CompileError locates a compile failure in its source text.
type CompileError struct {
	Err    error
	Source string // The original source input
	Offset int    // Byte offset of the offending token
}

func newCompileError(src string, offset int, err error) *CompileError {
	return &CompileError{Err: err, Source: src, Offset: offset}
}

// Column returns the 1-based rune column of the offending token.
func (e *CompileError) Column() int {
	off := min(max(e.Offset, 0), len(e.Source))

	return utf8.RuneCountInString(e.Source[:off]) + 1
}

// Error implements the error interface.
func (e *CompileError) Error() string {
	return e.Err.Error() + " (column " + strconv.Itoa(e.Column()) + ")"
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *CompileError) Unwrap() error { return e.Err }

// LogValue implements slog.LogValuer.
func (e *CompileError) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Any("error", e.Err),
		slog.String("source", e.Source),
		slog.Int("column", e.Column()),
	)
}

// Snippet renders the source on one line and a caret under the offending
// column on the next.
func (e *CompileError) Snippet() string {
	var buf strings.Builder

	buf.WriteString("  ")
	buf.WriteString(e.Source)
	buf.WriteString("\n  ")
	buf.WriteString(strings.Repeat(" ", e.Column()-1))
	buf.WriteString("^")

	return buf.String()
}
