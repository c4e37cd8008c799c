package lang

import (
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"

	"github.com/cockroachdb/apd/v3"
)

// Precision is the number of significant digits retained by division, modulo,
// and the reciprocal taken for negative powers.
const Precision = 16

const (
	// maxPowerExponent bounds the integer part of an exponent.
	maxPowerExponent = 999_999_999
	// maxPowerDigits bounds the estimated coefficient size of an exact
	// integer power.
	maxPowerDigits = 1_000_000
)

var (
	// exact performs addition, subtraction, and multiplication without
	// rounding.
	exact = &apd.Context{
		Precision:   0,
		MaxExponent: apd.MaxExponent,
		MinExponent: apd.MinExponent,
		Traps:       apd.DefaultTraps,
		Rounding:    apd.RoundHalfUp,
	}

	// rounded performs division and remainder at [Precision] digits.
	rounded = &apd.Context{
		Precision:   Precision,
		MaxExponent: apd.MaxExponent,
		MinExponent: apd.MinExponent,
		Traps:       apd.DefaultTraps,
		Rounding:    apd.RoundHalfUp,
	}

	// hundredth scales percentage literals.
	hundredth = apd.New(1, -2)
)

// NewDecimal parses a decimal literal. Underscores are ignored as digit-group
// separators and a trailing '%' scales the value by 0.01.
func NewDecimal(s string) (*apd.Decimal, error) {
	text := strings.TrimSpace(s)

	percent := strings.HasSuffix(text, "%")
	if percent {
		text = strings.TrimSpace(strings.TrimSuffix(text, "%"))
	}

	text = strings.ReplaceAll(text, "_", "")
	if strings.HasSuffix(text, ".") {
		text += "0"
	}

	d, _, err := apd.NewFromString(text)
	if err != nil {
		return nil, fmt.Errorf("invalid decimal %q: %w", s, err)
	}

	if d.Form != apd.Finite {
		return nil, fmt.Errorf("invalid decimal %q: not a finite number", s)
	}

	if percent {
		return product(d, hundredth)
	}

	return d, nil
}

// MustDecimal is like [NewDecimal] but panics if s cannot be parsed.
func MustDecimal(s string) *apd.Decimal {
	d, err := NewDecimal(s)
	if err != nil {
		panic(err)
	}

	return d
}

// Int returns the decimal value of i.
func Int(i int64) *apd.Decimal { return apd.New(i, 0) }

// Float returns the decimal with the shortest representation that round-trips
// to f, so Float(0.1) is exactly 0.1. It panics if f is NaN or infinite.
func Float(f float64) *apd.Decimal {
	d, err := floatDecimal(f)
	if err != nil {
		panic(err)
	}

	return d
}

func floatDecimal(f float64) (*apd.Decimal, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, fmt.Errorf("%v is not a finite number", f)
	}

	d, _, err := apd.NewFromString(strconv.FormatFloat(f, 'g', -1, 64))

	return d, err
}

// Canonical returns x with trailing fractional zeros removed. Zero is always
// returned without a sign.
func Canonical(x *apd.Decimal) *apd.Decimal {
	if x.IsZero() {
		return apd.New(0, 0)
	}

	d := new(apd.Decimal)
	d.Reduce(x)

	return d
}

// Format renders x in canonical plain notation, never using an exponent.
func Format(x *apd.Decimal) string {
	if x == nil {
		return "<nil>"
	}

	return Canonical(x).Text('f')
}

// FormatPercent renders x scaled to a percentage, so 0.2 renders "20%".
func FormatPercent(x *apd.Decimal) string {
	if x == nil {
		return "<nil>"
	}

	d := new(apd.Decimal).Set(x)
	d.Exponent += 2

	return Format(d) + "%"
}

func truth(b bool) *apd.Decimal {
	if b {
		return apd.New(1, 0)
	}

	return apd.New(0, 0)
}

func isTrue(x *apd.Decimal) bool { return !x.IsZero() }

func arithmetic(op string, err error) error {
	return ErrArithmetic.Wrap(err).With(slog.String("op", op))
}

func sum(x, y *apd.Decimal) (*apd.Decimal, error) {
	d := new(apd.Decimal)
	if _, err := exact.Add(d, x, y); err != nil {
		return nil, arithmetic("+", err)
	}

	return d, nil
}

func difference(x, y *apd.Decimal) (*apd.Decimal, error) {
	d := new(apd.Decimal)
	if _, err := exact.Sub(d, x, y); err != nil {
		return nil, arithmetic("-", err)
	}

	return d, nil
}

func product(x, y *apd.Decimal) (*apd.Decimal, error) {
	d := new(apd.Decimal)
	if _, err := exact.Mul(d, x, y); err != nil {
		return nil, arithmetic("*", err)
	}

	return d, nil
}

// scale returns x * (1 + y), or x * (1 - y) when subtract is set.
func scale(x, y *apd.Decimal, subtract bool) (*apd.Decimal, error) {
	var (
		factor *apd.Decimal
		err    error
	)

	if subtract {
		factor, err = difference(apd.New(1, 0), y)
	} else {
		factor, err = sum(apd.New(1, 0), y)
	}

	if err != nil {
		return nil, err
	}

	return product(x, factor)
}

// Quotient returns x / y rounded half-up to [Precision] significant digits.
func Quotient(x, y *apd.Decimal) (*apd.Decimal, error) {
	if y.IsZero() {
		return nil, ErrDivisionByZero.Wrap(
			fmt.Errorf("%s / 0", Format(x)),
		)
	}

	d := new(apd.Decimal)
	if _, err := rounded.Quo(d, x, y); err != nil {
		return nil, arithmetic("/", err)
	}

	return d, nil
}

// Remainder returns the truncated remainder of x / y, which has the sign of x.
func Remainder(x, y *apd.Decimal) (*apd.Decimal, error) {
	if y.IsZero() {
		return nil, ErrDivisionByZero.Wrap(
			fmt.Errorf("%s mod 0", Format(x)),
		)
	}

	d := new(apd.Decimal)
	if _, err := rounded.Rem(d, x, y); err != nil {
		return nil, arithmetic("mod", err)
	}

	return d, nil
}

// Power returns x raised to y.
//
// The integer part of |y| is applied by exact repeated multiplication. A
// fractional part is applied with [math.Pow] on float64 approximations of x
// and the fraction. A negative exponent takes the reciprocal of the product
// at [Precision] digits.
func Power(x, y *apd.Decimal) (*apd.Decimal, error) {
	var abs, integ, frac apd.Decimal

	abs.Abs(y)
	abs.Modf(&integ, &frac)

	n, err := integ.Int64()
	if err != nil || n > maxPowerExponent || powerDigits(x, n) > maxPowerDigits {
		return nil, ErrInvalidPower.Wrap(
			fmt.Errorf("%s ^ %s out of range", Format(x), Format(y)),
		)
	}

	result, err := integerPower(x, n)
	if err != nil {
		return nil, err
	}

	if !frac.IsZero() {
		fx, err := x.Float64()
		if err != nil {
			return nil, ErrInvalidPower.Wrap(err)
		}

		ff, err := frac.Float64()
		if err != nil {
			return nil, ErrInvalidPower.Wrap(err)
		}

		part, err := floatDecimal(math.Pow(fx, ff))
		if err != nil {
			return nil, ErrInvalidPower.Wrap(
				fmt.Errorf("%s ^ %s: %w", Format(x), Format(y), err),
			)
		}

		if result, err = product(result, part); err != nil {
			return nil, err
		}
	}

	if y.Sign() < 0 {
		if result.IsZero() {
			return nil, ErrDivisionByZero.Wrap(
				fmt.Errorf("%s ^ %s", Format(x), Format(y)),
			)
		}

		return Quotient(apd.New(1, 0), result)
	}

	return result, nil
}

// powerDigits estimates the number of coefficient digits of x^n.
func powerDigits(x *apd.Decimal, n int64) float64 {
	if x.IsZero() || n == 0 {
		return 0
	}

	coeff := new(apd.Decimal).Set(x)
	coeff.Negative = false
	coeff.Exponent = 0

	f, err := coeff.Float64()
	if err != nil || math.IsInf(f, 0) {
		return float64(x.NumDigits()) * float64(n)
	}

	return math.Log10(f) * float64(n)
}

func integerPower(x *apd.Decimal, n int64) (*apd.Decimal, error) {
	var err error

	result := apd.New(1, 0)
	base := x

	for n > 0 {
		if n&1 == 1 {
			if result, err = product(result, base); err != nil {
				return nil, err
			}
		}

		n >>= 1
		if n == 0 {
			break
		}

		if base, err = product(base, base); err != nil {
			return nil, err
		}
	}

	return result, nil
}
