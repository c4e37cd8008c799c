package builtin

import (
	"fmt"
	"log/slog"

	"github.com/cockroachdb/apd/v3"

	"github.com/ardnew/formula/lang"
)

// maxPlaces bounds the places argument of round.
const maxPlaces = 1_000

var (
	exact = &apd.Context{
		Precision:   0,
		MaxExponent: apd.MaxExponent,
		MinExponent: apd.MinExponent,
		Traps:       apd.DefaultTraps,
		Rounding:    apd.RoundHalfUp,
	}

	one  = apd.New(1, 0)
	half = apd.New(5, -1)
)

func domain(fn string, format string, args ...any) error {
	return lang.ErrDomain.
		Wrap(fmt.Errorf(format, args...)).
		With(slog.String("function", fn))
}

func abs(args *lang.Arguments) (*apd.Decimal, error) {
	x, err := args.Value("value")
	if err != nil {
		return nil, err
	}

	return new(apd.Decimal).Abs(x), nil
}

// split returns the integral and fractional parts of x, both carrying the
// sign of x.
func split(x *apd.Decimal) (*apd.Decimal, *apd.Decimal) {
	integ, frac := new(apd.Decimal), new(apd.Decimal)
	x.Modf(integ, frac)

	return integ, frac
}

func floor(args *lang.Arguments) (*apd.Decimal, error) {
	x, err := args.Value("value")
	if err != nil {
		return nil, err
	}

	integ, frac := split(x)
	if frac.Sign() < 0 {
		if _, err := exact.Sub(integ, integ, one); err != nil {
			return nil, err
		}
	}

	return integ, nil
}

func ceil(args *lang.Arguments) (*apd.Decimal, error) {
	x, err := args.Value("value")
	if err != nil {
		return nil, err
	}

	integ, frac := split(x)
	if frac.Sign() > 0 {
		if _, err := exact.Add(integ, integ, one); err != nil {
			return nil, err
		}
	}

	return integ, nil
}

func round(args *lang.Arguments) (*apd.Decimal, error) {
	x, err := args.Value("value")
	if err != nil {
		return nil, err
	}

	p, err := args.Value("places")
	if err != nil {
		return nil, err
	}

	places, err := p.Int64()
	if err != nil || places < -maxPlaces || places > maxPlaces {
		return nil, domain("round", "places %s is not an integer in [%d, %d]",
			lang.Format(p), -maxPlaces, maxPlaces)
	}

	return roundHalfUp(x, int32(places))
}

// roundHalfUp rounds x to the given number of fractional digits. A negative
// count rounds to a power of ten left of the decimal point.
func roundHalfUp(x *apd.Decimal, places int32) (*apd.Decimal, error) {
	shifted := new(apd.Decimal).Set(x)
	shifted.Exponent += places

	integ, frac := split(shifted)
	frac.Abs(frac)

	if frac.Cmp(half) >= 0 {
		step := apd.New(int64(x.Sign()), 0)
		if _, err := exact.Add(integ, integ, step); err != nil {
			return nil, err
		}
	}

	integ.Exponent -= places

	return integ, nil
}

func clamp(args *lang.Arguments) (*apd.Decimal, error) {
	x, err := args.Value("value")
	if err != nil {
		return nil, err
	}

	lo, err := args.Value("min")
	if err != nil {
		return nil, err
	}

	hi, err := args.Value("max")
	if err != nil {
		return nil, err
	}

	switch {
	case lo.Cmp(hi) > 0:
		return nil, domain("clamp", "min %s exceeds max %s", lang.Format(lo), lang.Format(hi))
	case x.Cmp(lo) < 0:
		return lo, nil
	case x.Cmp(hi) > 0:
		return hi, nil
	}

	return x, nil
}

// operands returns the first argument followed by the values of the
// variadic rest.
func operands(args *lang.Arguments) ([]*apd.Decimal, error) {
	first, err := args.Value("first")
	if err != nil {
		return nil, err
	}

	rest, err := args.Values("rest")
	if err != nil {
		return nil, err
	}

	return append([]*apd.Decimal{first}, rest...), nil
}

// extreme returns the operand x for which x.Cmp(y) has the given sign
// against every other operand y.
func extreme(args *lang.Arguments, sign int) (*apd.Decimal, error) {
	values, err := operands(args)
	if err != nil {
		return nil, err
	}

	best := values[0]
	for _, v := range values[1:] {
		if v.Cmp(best) == sign {
			best = v
		}
	}

	return best, nil
}

func minimum(args *lang.Arguments) (*apd.Decimal, error) { return extreme(args, -1) }

func maximum(args *lang.Arguments) (*apd.Decimal, error) { return extreme(args, 1) }

func accumulate(values []*apd.Decimal) (*apd.Decimal, error) {
	acc := new(apd.Decimal)

	for _, v := range values {
		if _, err := exact.Add(acc, acc, v); err != nil {
			return nil, lang.ErrArithmetic.Wrap(err)
		}
	}

	return acc, nil
}

func total(args *lang.Arguments) (*apd.Decimal, error) {
	values, err := operands(args)
	if err != nil {
		return nil, err
	}

	return accumulate(values)
}

func average(args *lang.Arguments) (*apd.Decimal, error) {
	values, err := operands(args)
	if err != nil {
		return nil, err
	}

	acc, err := accumulate(values)
	if err != nil {
		return nil, err
	}

	return lang.Quotient(acc, apd.New(int64(len(values)), 0))
}

func power(args *lang.Arguments) (*apd.Decimal, error) {
	base, err := args.Value("base")
	if err != nil {
		return nil, err
	}

	exponent, err := args.Value("exponent")
	if err != nil {
		return nil, err
	}

	return lang.Power(base, exponent)
}
