package lang

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/cockroachdb/apd/v3"
)

// SymbolKind identifies the variant of a [Symbol].
type SymbolKind uint8

const (
	KindConstant SymbolKind = iota
	KindVariable
	KindParameter
	KindFunction
	KindArgument
)

func (k SymbolKind) String() string {
	switch k {
	case KindConstant:
		return "constant"
	case KindVariable:
		return "variable"
	case KindParameter:
		return "parameter"
	case KindFunction:
		return "function"
	case KindArgument:
		return "argument"
	default:
		return "SymbolKind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Symbol is a named entity the compiler binds against. The set of
// implementations is closed: [*Constant], [*Variable], [*Parameter],
// [*Function], and [*Argument].
type Symbol interface {
	Name() string
	Kind() SymbolKind
	symbol()
}

// Constant is an immutable named value.
type Constant struct {
	value *apd.Decimal
	name  string
}

// NewConstant returns a constant. The name must lex as a single name or
// variable token.
func NewConstant(name string, value *apd.Decimal) (*Constant, error) {
	if !isName(name) && !isVariableName(name) || isKeyword(name) {
		return nil, ErrInvalidName.
			With(slog.String("name", name)).
			Wrap(fmt.Errorf("%q is not a valid constant name", name))
	}

	if value == nil {
		value = apd.New(0, 0)
	}

	return &Constant{name: name, value: new(apd.Decimal).Set(value)}, nil
}

func (c *Constant) Name() string     { return c.name }
func (c *Constant) Kind() SymbolKind { return KindConstant }
func (*Constant) symbol()            {}

// Value returns the constant's value.
func (c *Constant) Value() *apd.Decimal { return new(apd.Decimal).Set(c.value) }

// Resolver returns the current value of the external variable with the given
// name. It is called on every read.
type Resolver func(name string) (*apd.Decimal, error)

// Variable is a named value that may change between evaluations. Its name
// begins with '$', or with '%' for a percentage quantity.
type Variable struct {
	value   *apd.Decimal
	resolve Resolver
	name    string
}

func checkVariableName(name string) error {
	if !isVariableName(name) || len(name) < 2 {
		return ErrInvalidVariable.
			With(slog.String("name", name)).
			Wrap(fmt.Errorf("%q must begin with '$' or '%%' followed by a name", name))
	}

	return nil
}

// NewVariable returns a variable holding value. A nil value is zero.
func NewVariable(name string, value *apd.Decimal) (*Variable, error) {
	if err := checkVariableName(name); err != nil {
		return nil, err
	}

	v := &Variable{name: name}
	if err := v.Set(value); err != nil {
		return nil, err
	}

	return v, nil
}

// NewExternalVariable returns a variable whose value is read from resolve.
func NewExternalVariable(name string, resolve Resolver) (*Variable, error) {
	if err := checkVariableName(name); err != nil {
		return nil, err
	}

	if resolve == nil {
		return nil, ErrInvalidVariable.
			With(slog.String("name", name)).
			Wrap(fmt.Errorf("external variable %q has no resolver", name))
	}

	return &Variable{name: name, resolve: resolve}, nil
}

func (v *Variable) Name() string     { return v.name }
func (v *Variable) Kind() SymbolKind { return KindVariable }
func (*Variable) symbol()            {}

// IsPercentage reports whether the variable holds a percentage quantity.
func (v *Variable) IsPercentage() bool { return strings.HasPrefix(v.name, "%") }

// IsExternal reports whether the variable is backed by a [Resolver].
func (v *Variable) IsExternal() bool { return v.resolve != nil }

// Set stores value. External variables cannot be assigned.
func (v *Variable) Set(value *apd.Decimal) error {
	if v.resolve != nil {
		return ErrReadOnly.
			With(slog.String("name", v.name)).
			Wrap(fmt.Errorf("external variable %q cannot be assigned", v.name))
	}

	if value == nil {
		v.value = apd.New(0, 0)
	} else {
		v.value = new(apd.Decimal).Set(value)
	}

	return nil
}

// Value returns the stored value or the value reported by the resolver.
func (v *Variable) Value() (*apd.Decimal, error) {
	if v.resolve == nil {
		return new(apd.Decimal).Set(v.value), nil
	}

	d, err := v.resolve(v.name)
	if err != nil {
		return nil, ErrResolve.With(slog.String("name", v.name)).Wrap(err)
	}

	if d == nil {
		return nil, ErrResolve.
			With(slog.String("name", v.name)).
			Wrap(fmt.Errorf("resolver for %q returned no value", v.name))
	}

	return d, nil
}

// ParamMode selects how a [Parameter] receives its argument.
type ParamMode uint8

const (
	// ParamEager receives the argument value, computed once at compile time.
	ParamEager ParamMode = iota
	// ParamLazy receives the unevaluated argument expression.
	ParamLazy
	// ParamVariadic receives all remaining argument expressions.
	ParamVariadic
)

func (m ParamMode) String() string {
	switch m {
	case ParamEager:
		return "eager"
	case ParamLazy:
		return "lazy"
	case ParamVariadic:
		return "variadic"
	default:
		return "ParamMode(" + strconv.Itoa(int(m)) + ")"
	}
}

// Parameter is a declared function parameter.
type Parameter struct {
	def  *apd.Decimal
	name string
	mode ParamMode
}

func (p *Parameter) Name() string     { return p.name }
func (p *Parameter) Kind() SymbolKind { return KindParameter }
func (*Parameter) symbol()            {}

// Mode returns how the parameter receives its argument.
func (p *Parameter) Mode() ParamMode { return p.mode }

// IsLazy reports whether the parameter receives an unevaluated expression.
func (p *Parameter) IsLazy() bool { return p.mode == ParamLazy }

// IsVariadic reports whether the parameter captures remaining arguments.
func (p *Parameter) IsVariadic() bool { return p.mode == ParamVariadic }

// Default returns the default value, if any.
func (p *Parameter) Default() (*apd.Decimal, bool) {
	if p.def == nil {
		return nil, false
	}

	return new(apd.Decimal).Set(p.def), true
}

// String returns the parameter in signature notation.
func (p *Parameter) String() string {
	var b strings.Builder

	switch p.mode {
	case ParamLazy:
		b.WriteByte('~')
	case ParamVariadic:
		b.WriteString("...")
	}

	b.WriteString(p.name)

	if p.def != nil {
		b.WriteByte('=')
		b.WriteString(Format(p.def))
	}

	return b.String()
}

// Handler computes a function result from its call's argument table.
type Handler func(args *Arguments) (*apd.Decimal, error)

// Function is a named callable with a parsed parameter list.
type Function struct {
	params  *Table[*Parameter]
	handler Handler
	name    string
	percent bool
}

// NewFunction parses the parameter signatures and returns a function.
func NewFunction(name string, params []string, handler Handler) (*Function, error) {
	if !isName(name) || isKeyword(name) {
		return nil, ErrInvalidName.
			With(slog.String("name", name)).
			Wrap(fmt.Errorf("%q is not a valid function name", name))
	}

	if handler == nil {
		return nil, ErrSignature.
			With(slog.String("name", name)).
			Wrap(fmt.Errorf("function %q has no handler", name))
	}

	table, err := ParseSignature(params)
	if err != nil {
		return nil, WrapError(err).With(slog.String("name", name))
	}

	return &Function{name: name, params: table, handler: handler}, nil
}

func (f *Function) Name() string     { return f.name }
func (f *Function) Kind() SymbolKind { return KindFunction }
func (*Function) symbol()            {}

// Params returns the declared parameters in order.
func (f *Function) Params() *Table[*Parameter] { return f.params }

// IsPercentage reports whether call results are percentage quantities.
func (f *Function) IsPercentage() bool { return f.percent }

// IsVariadic reports whether the last parameter is variadic.
func (f *Function) IsVariadic() bool {
	last, ok := f.params.Last()

	return ok && last.IsVariadic()
}

// fixed returns the number of non-variadic parameters.
func (f *Function) fixed() int {
	if f.IsVariadic() {
		return f.params.Len() - 1
	}

	return f.params.Len()
}

// Signature renders the function name and parameters, e.g. "add(a, b=1)".
func (f *Function) Signature() string {
	parts := make([]string, 0, f.params.Len())
	for _, p := range f.params.All() {
		parts = append(parts, p.String())
	}

	return f.name + "(" + strings.Join(parts, ", ") + ")"
}
