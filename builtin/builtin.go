// Package builtin provides a standard library of constants and functions for
// [lang.Formula].
//
// Constants:
//
//	PI, E
//
// Functions:
//
//	abs(value)                floor(value)           ceil(value)
//	round(value, places=0)    clamp(value, min, max) pow(base, exponent)
//	min(first, ...rest)       max(first, ...rest)
//	sum(first, ...rest)       average(first, ...rest)
//	sqrt(value)               exp(value)
//	ln(value)                 log(value, base=10)
//
// Rounding is half-up (away from zero on a tie). The transcendental functions
// are computed in binary floating point and rounded to [lang.Precision]
// significant digits.
package builtin

import (
	"math"

	"github.com/cockroachdb/apd/v3"

	"github.com/ardnew/formula/lang"
)

type function struct {
	handler lang.Handler
	name    string
	params  []string
}

var constants = []struct {
	value *apd.Decimal
	name  string
}{
	{lang.Float(math.Pi), "PI"},
	{lang.Float(math.E), "E"},
}

var functions = []function{
	{abs, "abs", []string{"value"}},
	{floor, "floor", []string{"value"}},
	{ceil, "ceil", []string{"value"}},
	{round, "round", []string{"value", "places=0"}},
	{clamp, "clamp", []string{"value", "min", "max"}},
	{minimum, "min", []string{"first", "...rest"}},
	{maximum, "max", []string{"first", "...rest"}},
	{total, "sum", []string{"first", "...rest"}},
	{average, "average", []string{"first", "...rest"}},
	{power, "pow", []string{"base", "exponent"}},
	{squareRoot, "sqrt", []string{"value"}},
	{exponential, "exp", []string{"value"}},
	{naturalLog, "ln", []string{"value"}},
	{logarithm, "log", []string{"value", "base=10"}},
}

// New returns a formula configured by opts with the library registered.
func New(opts ...lang.Option) (*lang.Formula, error) {
	f := lang.New(opts...)

	if err := Register(f); err != nil {
		return nil, err
	}

	return f, nil
}

// Register adds the library to f. It fails if any name is already taken.
func Register(f *lang.Formula) error {
	for _, c := range constants {
		if _, err := f.AddConstant(c.name, c.value); err != nil {
			return err
		}
	}

	for _, fn := range functions {
		if _, err := f.AddFunction(fn.name, fn.params, fn.handler); err != nil {
			return err
		}
	}

	return nil
}

// Names returns the names the library registers, constants first.
func Names() []string {
	names := make([]string, 0, len(constants)+len(functions))

	for _, c := range constants {
		names = append(names, c.name)
	}

	for _, fn := range functions {
		names = append(names, fn.name)
	}

	return names
}
