package lang

import (
	"errors"
	"math"
	"testing"

	"github.com/cockroachdb/apd/v3"
)

var errTestResolver = errors.New("resolver unavailable")

// newTestFormula returns a formula with the symbols shared by the tests in
// this package.
func newTestFormula(tb testing.TB) *Formula {
	tb.Helper()

	f := New()

	must := func(_ any, err error) {
		tb.Helper()

		if err != nil {
			tb.Fatalf("register: %v", err)
		}
	}

	must(f.AddConstant("CONST1", Int(12345)))
	must(f.AddVariable("%fifty", MustDecimal("0.5")))
	must(f.AddVariable("$2pi", Float(math.Pi*2)))
	must(f.AddVariable("$record.value", Int(99)))
	must(f.AddVariable("$ตัวแปร", Int(999)))
	must(f.AddVariable("$変数", Int(9999)))
	must(f.AddExternalVariable("$external", func(string) (*apd.Decimal, error) {
		return Float(math.Pi * 3), nil
	}))
	must(f.AddExternalVariable("$broken", func(string) (*apd.Decimal, error) {
		return nil, errTestResolver
	}))

	must(f.AddFunction("one", nil, func(*Arguments) (*apd.Decimal, error) {
		return Int(1), nil
	}))

	must(f.AddFunction("identity", []string{"v"}, func(args *Arguments) (*apd.Decimal, error) {
		return args.Value("v")
	}))

	must(f.AddFunction("add", []string{"a", "b=1"}, func(args *Arguments) (*apd.Decimal, error) {
		a, err := args.Value("a")
		if err != nil {
			return nil, err
		}

		b, err := args.Value("b")
		if err != nil {
			return nil, err
		}

		return sum(a, b)
	}))

	must(f.AddFunction("accumulate", []string{"init", "...all"}, func(args *Arguments) (*apd.Decimal, error) {
		acc, err := args.Value("init")
		if err != nil {
			return nil, err
		}

		all, err := args.Values("all")
		if err != nil {
			return nil, err
		}

		for _, v := range all {
			if acc, err = sum(acc, v); err != nil {
				return nil, err
			}
		}

		return acc, nil
	}))

	return f
}

// evalString compiles and evaluates src, failing the test on any error.
func evalString(tb testing.TB, f *Formula, src string) string {
	tb.Helper()

	expr, err := f.Compile(src)
	if err != nil {
		tb.Fatalf("Compile(%q): %v", src, err)
	}

	got, err := expr.Eval()
	if err != nil {
		tb.Fatalf("Eval(%q): %v", src, err)
	}

	return Format(got)
}

type evalCase struct {
	src  string
	want string
}

func runEvalCases(t *testing.T, f *Formula, tests []evalCase) {
	t.Helper()

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			if got := evalString(t, f, tt.src); got != tt.want {
				t.Errorf("%s = %s, want %s", tt.src, got, tt.want)
			}
		})
	}
}
