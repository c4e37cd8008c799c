package builtin

import (
	"math/big"

	"github.com/cockroachdb/apd/v3"
	"github.com/zephyrtronium/bigfloat"

	"github.com/ardnew/formula/lang"
)

const (
	// mantissa is the binary precision of intermediate results.
	mantissa = 128

	// maxExp bounds the argument of exp so its result stays representable.
	maxExp = 230_000
)

func toBig(fn string, x *apd.Decimal) (*big.Float, error) {
	f, ok := new(big.Float).SetPrec(mantissa).SetString(x.Text('e'))
	if !ok {
		return nil, domain(fn, "cannot convert %s", lang.Format(x))
	}

	return f, nil
}

func fromBig(fn string, f *big.Float) (*apd.Decimal, error) {
	if f.IsInf() {
		return nil, domain(fn, "result is not finite")
	}

	d, _, err := apd.NewFromString(f.Text('g', lang.Precision))
	if err != nil {
		return nil, domain(fn, "%v", err)
	}

	return d, nil
}

// monadic evaluates op on the value of the named parameter.
// Panics raised by op for undefined results are returned as domain errors.
func monadic(
	args *lang.Arguments,
	fn string,
	param string,
	op func(z, x *big.Float) *big.Float,
) (d *apd.Decimal, err error) {
	x, err := args.Value(param)
	if err != nil {
		return nil, err
	}

	defer func() {
		if r := recover(); r != nil {
			nan, ok := r.(big.ErrNaN)
			if !ok {
				panic(r)
			}

			d, err = nil, domain(fn, "%s(%s): %v", fn, lang.Format(x), nan)
		}
	}()

	in, err := toBig(fn, x)
	if err != nil {
		return nil, err
	}

	return fromBig(fn, op(new(big.Float).SetPrec(mantissa), in))
}

func requirePositive(args *lang.Arguments, fn, param string, allowZero bool) error {
	x, err := args.Value(param)
	if err != nil {
		return err
	}

	if x.Sign() < 0 || (x.Sign() == 0 && !allowZero) {
		return domain(fn, "%s(%s) is undefined", fn, lang.Format(x))
	}

	return nil
}

func squareRoot(args *lang.Arguments) (*apd.Decimal, error) {
	if err := requirePositive(args, "sqrt", "value", true); err != nil {
		return nil, err
	}

	return monadic(args, "sqrt", "value", (*big.Float).Sqrt)
}

func exponential(args *lang.Arguments) (*apd.Decimal, error) {
	x, err := args.Value("value")
	if err != nil {
		return nil, err
	}

	if x.Cmp(apd.New(maxExp, 0)) > 0 {
		return nil, domain("exp", "exp(%s) is out of range", lang.Format(x))
	}

	if x.Cmp(apd.New(-maxExp, 0)) < 0 {
		return apd.New(0, 0), nil
	}

	return monadic(args, "exp", "value", bigfloat.Exp)
}

func naturalLog(args *lang.Arguments) (*apd.Decimal, error) {
	if err := requirePositive(args, "ln", "value", false); err != nil {
		return nil, err
	}

	return monadic(args, "ln", "value", bigfloat.Log)
}

func logarithm(args *lang.Arguments) (*apd.Decimal, error) {
	if err := requirePositive(args, "log", "value", false); err != nil {
		return nil, err
	}

	if err := requirePositive(args, "log", "base", false); err != nil {
		return nil, err
	}

	base, err := args.Value("base")
	if err != nil {
		return nil, err
	}

	if base.Cmp(one) == 0 {
		return nil, domain("log", "base 1 is undefined")
	}

	b, err := toBig("log", base)
	if err != nil {
		return nil, err
	}

	lnBase := bigfloat.Log(new(big.Float).SetPrec(mantissa), b)

	return monadic(args, "log", "value", func(z, x *big.Float) *big.Float {
		bigfloat.Log(z, x)

		return z.Quo(z, lnBase)
	})
}
