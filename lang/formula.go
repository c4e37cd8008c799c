package lang

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/cockroachdb/apd/v3"

	"github.com/ardnew/formula/log"
)

// Formula owns a symbol table and compiles source text against it.
//
// Registration and compilation may be called from multiple goroutines.
// Evaluating a compiled [Expression] reads variable values without locking;
// callers that [Variable.Set] concurrently with evaluation must serialize the
// two themselves.
type Formula struct {
	symbols *Table[Symbol]
	logger  log.Logger
	mutex   sync.RWMutex
}

// Option configures a [Formula].
type Option func(*Formula)

// WithLogger sets the logger used for compile tracing and safe-evaluation
// diagnostics. The zero [log.Logger] discards everything.
func WithLogger(logger log.Logger) Option {
	return func(f *Formula) { f.logger = logger }
}

// WithSymbols makes the formula register into and compile against an
// existing table.
func WithSymbols(symbols *Table[Symbol]) Option {
	return func(f *Formula) {
		if symbols != nil {
			f.symbols = symbols
		}
	}
}

// New returns a formula with an empty symbol table.
func New(opts ...Option) *Formula {
	f := &Formula{symbols: &Table[Symbol]{}}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// Symbols returns the symbol table. Callers must not add to it directly
// while other goroutines use the formula.
func (f *Formula) Symbols() *Table[Symbol] { return f.symbols }

// Logger returns the configured logger.
func (f *Formula) Logger() log.Logger { return f.logger }

func (f *Formula) add(s Symbol) error {
	f.mutex.Lock()
	defer f.mutex.Unlock()

	if err := f.symbols.Add(s); err != nil {
		return err
	}

	f.logger.Trace("register symbol",
		slog.String("kind", s.Kind().String()),
		slog.String("name", s.Name()),
	)

	return nil
}

// AddConstant registers an immutable named value.
func (f *Formula) AddConstant(name string, value *apd.Decimal) (*Constant, error) {
	c, err := NewConstant(name, value)
	if err != nil {
		return nil, err
	}

	if err := f.add(c); err != nil {
		return nil, err
	}

	return c, nil
}

// AddVariable registers a variable holding value. The returned handle
// updates the value seen by later evaluations.
func (f *Formula) AddVariable(name string, value *apd.Decimal) (*Variable, error) {
	v, err := NewVariable(name, value)
	if err != nil {
		return nil, err
	}

	if err := f.add(v); err != nil {
		return nil, err
	}

	return v, nil
}

// SetVariable assigns value to the stored variable name, registering the
// variable first if the name is free.
func (f *Formula) SetVariable(name string, value *apd.Decimal) (*Variable, error) {
	f.mutex.RLock()
	s, ok := f.symbols.Get(name)
	f.mutex.RUnlock()

	if !ok {
		return f.AddVariable(name, value)
	}

	v, ok := s.(*Variable)
	if !ok {
		return nil, ErrReadOnly.
			With(slog.String("name", name)).
			Wrap(fmt.Errorf("%s %q cannot be assigned", s.Kind(), s.Name()))
	}

	if err := v.Set(value); err != nil {
		return nil, err
	}

	return v, nil
}

// AddExternalVariable registers a variable whose value is read from resolve
// each time it is evaluated.
func (f *Formula) AddExternalVariable(name string, resolve Resolver) (*Variable, error) {
	v, err := NewExternalVariable(name, resolve)
	if err != nil {
		return nil, err
	}

	if err := f.add(v); err != nil {
		return nil, err
	}

	return v, nil
}

// AddFunction registers a function. Each element of params is a parameter
// signature as accepted by [ParseParameter].
func (f *Formula) AddFunction(name string, params []string, handler Handler) (*Function, error) {
	fn, err := NewFunction(name, params, handler)
	if err != nil {
		return nil, err
	}

	if err := f.add(fn); err != nil {
		return nil, err
	}

	return fn, nil
}

// AddPercentFunction is like [Formula.AddFunction], but the results of calls
// to the function are percentage quantities.
func (f *Formula) AddPercentFunction(name string, params []string, handler Handler) (*Function, error) {
	fn, err := NewFunction(name, params, handler)
	if err != nil {
		return nil, err
	}

	fn.percent = true

	if err := f.add(fn); err != nil {
		return nil, err
	}

	return fn, nil
}

// Compile parses src into an expression bound to the formula's symbols.
func (f *Formula) Compile(src string) (*Expression, error) {
	return f.CompileContext(context.Background(), src)
}

// CompileContext is like [Formula.Compile]. The context is passed to the
// logger only.
func (f *Formula) CompileContext(ctx context.Context, src string) (*Expression, error) {
	f.logger.TraceContext(ctx, "compile", slog.Int("length", len(src)))

	f.mutex.RLock()
	root, err := parse(src, f.symbols)
	f.mutex.RUnlock()

	if err != nil {
		f.logger.TraceContext(ctx, "compile failed", slog.Any("error", err))

		return nil, err
	}

	expr := &Expression{root: root, src: src, logger: f.logger}

	f.logger.TraceContext(ctx, "compiled",
		slog.Int("nodes", expr.Size()),
		slog.Bool("percent", root.percent),
	)

	return expr, nil
}

// Expression is a compiled expression tree. It may be evaluated any number
// of times.
type Expression struct {
	root   *Node
	logger log.Logger
	src    string
}

// Root returns the root node of the tree.
func (e *Expression) Root() *Node { return e.root }

// Source returns the text the expression was compiled from.
func (e *Expression) Source() string { return e.src }

// String renders the tree; see [Node.String].
func (e *Expression) String() string { return e.root.String() }

// IsPercentage reports whether the expression yields a percentage quantity.
func (e *Expression) IsPercentage() bool { return e.root.percent }

// Size returns the number of nodes in the tree.
func (e *Expression) Size() int {
	n := 0
	for range e.root.Walk() {
		n++
	}

	return n
}

// Eval evaluates the expression and returns the result in canonical form.
func (e *Expression) Eval() (*apd.Decimal, error) {
	d, err := e.root.Eval()
	if err != nil {
		return nil, err
	}

	return Canonical(d), nil
}

// SafeEval is like [Expression.Eval] but returns zero in place of any error.
func (e *Expression) SafeEval() *apd.Decimal {
	d, err := e.Eval()
	if err != nil {
		e.logger.Debug("evaluation failed, substituting zero",
			slog.String("source", e.src),
			slog.Any("error", err),
		)

		return apd.New(0, 0)
	}

	return d
}
