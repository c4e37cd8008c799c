package lang

import (
	"fmt"
	"log/slog"

	"github.com/cockroachdb/apd/v3"
)

// Argument is the binding of one declared parameter at a call site.
type Argument struct {
	param *Parameter
	expr  *Node   // fixed parameters
	rest  []*Node // variadic parameter
}

func (a *Argument) Name() string     { return a.param.name }
func (a *Argument) Kind() SymbolKind { return KindArgument }
func (*Argument) symbol()            {}

// Param returns the declared parameter a binds.
func (a *Argument) Param() *Parameter { return a.param }

// IsVariadic reports whether a holds the variadic remainder of a call.
func (a *Argument) IsVariadic() bool { return a.param.IsVariadic() }

// Expr returns the bound expression of a fixed parameter. For an eager
// parameter it is a literal holding the value computed at compile time.
func (a *Argument) Expr() *Node { return a.expr }

// Rest returns the unevaluated expressions captured by a variadic parameter.
func (a *Argument) Rest() []*Node { return a.rest }

// Eval returns the value of a fixed parameter. A lazy parameter evaluates its
// expression on every call.
func (a *Argument) Eval() (*apd.Decimal, error) {
	if a == nil {
		return nil, ErrUnknownArgument.Wrap(fmt.Errorf("no such argument"))
	}

	if a.IsVariadic() {
		return nil, ErrNotScalar.
			With(slog.String("name", a.Name())).
			Wrap(fmt.Errorf("variadic argument %q has no single value", a.Name()))
	}

	return a.expr.Eval()
}

// Values evaluates every expression captured by a variadic parameter, in
// order. For a fixed parameter it returns its single value.
func (a *Argument) Values() ([]*apd.Decimal, error) {
	if a == nil {
		return nil, ErrUnknownArgument.Wrap(fmt.Errorf("no such argument"))
	}

	if !a.IsVariadic() {
		v, err := a.Eval()
		if err != nil {
			return nil, err
		}

		return []*apd.Decimal{v}, nil
	}

	values := make([]*apd.Decimal, 0, len(a.rest))

	for _, n := range a.rest {
		v, err := n.Eval()
		if err != nil {
			return nil, err
		}

		values = append(values, v)
	}

	return values, nil
}

// Arguments is the argument table a [Handler] consults by parameter name.
type Arguments struct {
	table Table[*Argument]
}

func newArguments(params *Table[*Parameter]) *Arguments {
	args := &Arguments{}

	for _, p := range params.All() {
		// Parameter names are unique, so Add cannot fail.
		_ = args.table.Add(&Argument{param: p})
	}

	return args
}

// Len returns the number of declared parameters.
func (a *Arguments) Len() int { return a.table.Len() }

// At returns the argument of the i'th declared parameter.
func (a *Arguments) At(i int) *Argument { return a.table.At(i) }

// Get returns the argument bound to the named parameter, or nil.
func (a *Arguments) Get(name string) *Argument {
	arg, ok := a.table.Get(name)
	if !ok {
		return nil
	}

	return arg
}

// Value returns the value of the named fixed parameter.
func (a *Arguments) Value(name string) (*apd.Decimal, error) {
	arg := a.Get(name)
	if arg == nil {
		return nil, ErrUnknownArgument.
			With(slog.String("name", name)).
			Wrap(fmt.Errorf("no parameter named %q", name))
	}

	return arg.Eval()
}

// Values returns the values of the named parameter; see [Argument.Values].
func (a *Arguments) Values(name string) ([]*apd.Decimal, error) {
	arg := a.Get(name)
	if arg == nil {
		return nil, ErrUnknownArgument.
			With(slog.String("name", name)).
			Wrap(fmt.Errorf("no parameter named %q", name))
	}

	return arg.Values()
}

// Rest returns the expressions captured by the named variadic parameter.
func (a *Arguments) Rest(name string) []*Node {
	arg := a.Get(name)
	if arg == nil {
		return nil
	}

	return arg.Rest()
}
