package lang

import (
	"errors"
	"math"
	"math/big"
	"strings"
	"testing"

	"github.com/cockroachdb/apd/v3"
)

func TestEval_Literals(t *testing.T) {
	runEvalCases(t, New(), []evalCase{
		{"1", "1"},
		{"-0", "0"},
		{"1_000", "1000"},
		{"1.234", "1.234"},
		{"1.50", "1.5"},
		{"2.", "2"},
		{"50%", "0.5"},
		{"12.5%", "0.125"},
		{"true", "1"},
		{"false", "0"},
		{"TRUE", "1"},
		{"(1)", "1"},
		{"((1))", "1"},
	})
}

func TestEval_Unary(t *testing.T) {
	runEvalCases(t, New(), []evalCase{
		{"+1", "1"},
		{"-1", "-1"},
		{"++1", "1"},
		{"--1", "1"},
		{"-+1", "-1"},
		{"+-1", "-1"},
		{"-(1)", "-1"},
		{"not true", "0"},
		{"not false", "1"},
		{"not 0", "1"},
		{"not 2", "0"},
		{"not not true", "1"},
		{"not(not true)", "1"},
		{"!true", "0"},
		{"!0", "1"},
		{"!!true", "1"},
		{"!(!true)", "1"},
	})
}

func TestEval_Arithmetic(t *testing.T) {
	runEvalCases(t, New(), []evalCase{
		{"1*1", "1"},
		{"1*2*3", "6"},
		{"1.5*2", "3"},
		{"3/2", "1.5"},
		{"6/3/2", "1"},
		{"1/3", "0.3333333333333333"},
		{"2/3", "0.6666666666666667"},
		{"10 mod 3", "1"},
		{"10 mod 2", "0"},
		{"0 mod 1", "0"},
		{"10 mod 3.3", "0.1"},
		{"-7 mod 3", "-1"},
		{"1000^0", "1"},
		{"2^8", "256"},
		{"2^-2", "0.25"},
		{"9^0.5", "3"},
		{"9^(1/2)", "3"},
		{"2^3^2", "64"},
		{"1+1", "2"},
		{"1+-1", "0"},
		{"1-+1", "0"},
		{"1--1", "2"},
		{"0.1+0.2", "0.3"},
		{"1+2*3", "7"},
		{"(1+2)*3", "9"},
	})
}

func TestEval_LargePower(t *testing.T) {
	f := New()

	want := new(big.Int).Exp(big.NewInt(2), big.NewInt(10_000), nil).String()
	if got := evalString(t, f, "2^10000"); got != want {
		t.Errorf("2^10000 = %.20s... (%d digits), want %.20s... (%d digits)",
			got, len(got), want, len(want))
	}

	if got := evalString(t, f, "1.0001^10000"); !strings.HasPrefix(got, "2.7181459") {
		t.Errorf("1.0001^10000 = %.20s..., want 2.7181459...", got)
	}

	runEvalCases(t, f, []evalCase{
		{"1^999999999", "1"},
		{"(-1)^999999999", "-1"},
		{"0^999999999", "0"},
	})
}

func TestEval_Logical(t *testing.T) {
	runEvalCases(t, New(), []evalCase{
		{"false or false", "0"},
		{"true or false", "1"},
		{"false or true", "1"},
		{"false or not true", "0"},
		{"not true or true", "1"},
		{"true and false", "0"},
		{"true and true", "1"},
		{"not true and true", "0"},
		{"2 and 3", "1"},
		{"1 + 1 and 0", "1"},
		{"2 = 2 or 1", "0"},
		{"1 or 0 * 2", "1"},
		{"0 or 1 * 0", "0"},
		{"3 * 1 and 0", "0"},
		{"1 - 1 or 1 + 1", "2"},
	})
}

func TestEval_Relational(t *testing.T) {
	runEvalCases(t, New(), []evalCase{
		{"1=2", "0"},
		{"1=1", "1"},
		{"1==1", "1"},
		{"2=1+1", "1"},
		{"1+1=2", "1"},
		{"1!=2", "1"},
		{"1<>1", "0"},
		{"2!=1+1", "0"},
		{"1>0", "1"},
		{"1>=1", "1"},
		{"0>1", "0"},
		{"0<1", "1"},
		{"1<=1", "1"},
		{"1.0=1", "1"},
	})
}

func TestEval_Conditional(t *testing.T) {
	runEvalCases(t, New(), []evalCase{
		{"if 1>2 then 90 else 0", "0"},
		{"if 1>2 then 90", "0"},
		{"if 2>1 then 90 else 0 ", "90"},
		{"if 2>1 90 else 0", "90"},
		{"if 2>1 90", "90"},
		{"IF(1>2,90,0)", "0"},
		{"IF(1>2,90)", "0"},
		{"IF(2>1,90,0)", "90"},
		{"if(2>1, 90, 0) + 1", "91"},
		{"if (1) then 5 else 6", "5"},
		{"if (1) - 1 then 5 else 6", "6"},
		{"If 0 Then 1 Else If 1 Then 2 Else 3", "2"},
	})
}

func TestEval_Membership(t *testing.T) {
	runEvalCases(t, New(), []evalCase{
		{"1 in 1..10", "1"},
		{"10 in 1..10", "1"},
		{"0 in 1..10", "0"},
		{"5 in (1 between 10)", "1"},
		{"5 in 1 between 4", "0"},
		{"1 not in 1..10", "0"},
		{"0 not in 1..10", "1"},
		{"1 !in 1..10", "0"},
		{"0 !in 1..10", "1"},
		{"0 NOT IN 1..10", "1"},
		{"2 in [1,2,3,4]", "1"},
		{"9 in [1,2,3,4]", "0"},
		{"2 not in [1,2,3,4]", "0"},
		{"9 not in [1,2,3,4]", "1"},
		{"2 !in [1,2,3,4]", "0"},
		{"9 !in [1,2,3,4]", "1"},
		{"1+1 in [1+1]", "1"},
		{"1 in 1..10 = 1", "1"},
	})
}

func TestEval_Percentage(t *testing.T) {
	f := newTestFormula(t)

	t.Run("with number", func(t *testing.T) {
		runEvalCases(t, f, []evalCase{
			{"50% + 1", "1.5"},
			{"%fifty + 1", "1.5"},
			{"100% - 0.5", "0.5"},
			{"50% * 2", "1"},
			{"%fifty * 2", "1"},
			{"50% / 5", "0.1"},
			{"%fifty / 5", "0.1"},
			{"100% ^ 3", "1"},
			{"200% ^ 3", "8"},
		})
	})

	t.Run("with percentage", func(t *testing.T) {
		runEvalCases(t, f, []evalCase{
			{"50% + 50%", "1"},
			{"%fifty + %fifty", "1"},
			{"100% - 20%", "0.8"},
			{"50% * 100%", "0.5"},
			{"50% * 50%", "0.25"},
			{"%fifty * %fifty", "0.25"},
			{"50% / 50%", "1"},
			{"50% ^ 100%", "0.5"},
			{"%fifty ^ 100%", "0.5"},
		})
	})

	t.Run("number with percentage", func(t *testing.T) {
		runEvalCases(t, f, []evalCase{
			{"100 + 20%", "120"},
			{"200 + %fifty", "300"},
			{"100 - 20%", "80"},
			{"300 - %fifty", "150"},
			{"500 * 20%", "100"},
			{"500 * %fifty", "250"},
			{"500 / 20%", "2500"},
			{"500 / %fifty", "1000"},
			{"81 ^ 50%", "9"},
			{"81 ^ %fifty", "9"},
		})
	})

	t.Run("left hand side", func(t *testing.T) {
		runEvalCases(t, f, []evalCase{
			{"50% + 50% + 1", "2"},
			{"50% - 50% + 1", "1"},
			{"(50% + 50%) * 2", "2"},
			{"(50% + 50%) / 2", "0.5"},
			{"(50% * 3) * 2 ^ 3", "27"},
			{"(%fifty * 3) * 2 ^ 3", "27"},
		})
	})

	t.Run("right hand side", func(t *testing.T) {
		runEvalCases(t, f, []evalCase{
			{"100 + (50% + 50%)", "200"},
			{"100 + (50% + 2)", "350"},
			{"100 + (50% - 1)", "50"},
			{"60 + (100% * 2)", "180"},
			{"60 + (300% / 3)", "120"},
			{"100 - (50% + 50%)", "0"},
			{"60 - (50% + 2)", "-90"},
			{"60 - (%fifty + 2)", "-90"},
			{"100 * (50% + 30%)", "80"},
			{"24 / (50% + 30%)", "30"},
			{"(60 + 50%) + 50%", "135"},
			{"(60 + %fifty) + 50%", "135"},
			{"(60 - 50%) + 50%", "45"},
			{"(60 - %fifty) + 50%", "45"},
			{"100 * 40% + 50%", "60"},
			{"60 * 40% + 50%", "36"},
			{"400 / 50% + 50%", "1200"},
			{"100 + -20%", "80"},
			{"100 + if(1, 20%, 30%)", "120"},
			{"100 + if(1, 20%, 30)", "100.2"},
		})
	})

	t.Run("right recursive", func(t *testing.T) {
		runEvalCases(t, f, []evalCase{
			{"100 + 50% + 100%", "300"},
			{"60 + 50% + 50%", "135"},
			{"60 - 50% + 50%", "45"},
		})
	})
}

func TestEval_Symbols(t *testing.T) {
	f := newTestFormula(t)

	runEvalCases(t, f, []evalCase{
		{"CONST1", "12345"},
		{"const1", "12345"},
		{"CONST1-CONST1", "0"},
		{"%fifty", "0.5"},
		{"$2pi", Format(Float(math.Pi * 2))},
		{"$external", Format(Float(math.Pi * 3))},
		{"$record.value", "99"},
		{"$ตัวแปร", "999"},
		{"$変数", "9999"},
		{"$RECORD.VALUE + 1", "100"},
	})
}

func TestEval_Functions(t *testing.T) {
	f := newTestFormula(t)

	runEvalCases(t, f, []evalCase{
		{"one()", "1"},
		{"one()+1", "2"},
		{"one()+one()+one()", "3"},
		{"identity(0)", "0"},
		{"identity(one())", "1"},
		{"add(5)", "6"},
		{"add(5,2)", "7"},
		{"add(one())", "2"},
		{"add(one(), 0)", "1"},
		{"add(one(), 0.5)", "1.5"},
		{"ADD(1, 1)", "2"},
		{"accumulate(20)", "20"},
		{"accumulate(20, one())", "21"},
		{"accumulate(20, 1, 3, 5)", "29"},
		{"accumulate(20, one()*2, 3, 5)", "30"},
		{"accumulate(accumulate(20, -9, -8, -3), 9, 8, 7)", "24"},
	})
}

func TestEval_Errors(t *testing.T) {
	f := newTestFormula(t)

	tests := []struct {
		src  string
		want error
	}{
		{"1/0", ErrDivisionByZero},
		{"1 mod 0", ErrDivisionByZero},
		{"0^-1", ErrDivisionByZero},
		{"2^999999999", ErrInvalidPower},
		{"1^1000000000", ErrInvalidPower},
		{"(-8)^0.5", ErrInvalidPower},
		{"$broken", ErrResolve},
		{"$broken + 1", ErrResolve},
		{"if 1 then 1/0 else 0", ErrDivisionByZero},
		{"0 and 1/0", ErrDivisionByZero},
		{"1 or 1/0", ErrDivisionByZero},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			expr, err := f.Compile(tt.src)
			if err != nil {
				t.Fatalf("Compile(%q): %v", tt.src, err)
			}

			_, err = expr.Eval()
			if !errors.Is(err, tt.want) {
				t.Fatalf("Eval(%q) error = %v, want %v", tt.src, err, tt.want)
			}

			if !errors.Is(err, ErrEvaluate) {
				t.Errorf("Eval(%q) error = %v, want match for ErrEvaluate", tt.src, err)
			}

			if got := expr.SafeEval(); !got.IsZero() {
				t.Errorf("SafeEval(%q) = %s, want 0", tt.src, got)
			}
		})
	}
}

func TestEval_ShortCircuitConditional(t *testing.T) {
	runEvalCases(t, New(), []evalCase{
		{"if 1 then 5 else 1/0", "5"},
		{"if 0 then 1/0 else 5", "5"},
		{"IF(0, 1/0, 5)", "5"},
	})
}

func TestEval_Idempotent(t *testing.T) {
	f := newTestFormula(t)

	expr, err := f.Compile("accumulate(20, $record.value, 3) * 10% + $external")
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}

	first, err := expr.Eval()
	if err != nil {
		t.Fatalf("Eval: %v", err)
	}

	second, err := expr.Eval()
	if err != nil {
		t.Fatalf("Eval: %v", err)
	}

	if first.Cmp(second) != 0 {
		t.Errorf("second evaluation = %s, want %s", second, first)
	}
}

func TestEval_LazyParameter(t *testing.T) {
	f := New()
	calls := 0

	_, err := f.AddFunction("tick", nil, func(*Arguments) (*apd.Decimal, error) {
		calls++

		return Int(int64(calls)), nil
	})
	if err != nil {
		t.Fatalf("AddFunction: %v", err)
	}

	_, err = f.AddFunction("twice", []string{"~x"}, func(args *Arguments) (*apd.Decimal, error) {
		a, err := args.Value("x")
		if err != nil {
			return nil, err
		}

		b, err := args.Value("x")
		if err != nil {
			return nil, err
		}

		return sum(a, b)
	})
	if err != nil {
		t.Fatalf("AddFunction: %v", err)
	}

	_, err = f.AddFunction("once", []string{"x"}, func(args *Arguments) (*apd.Decimal, error) {
		return args.Value("x")
	})
	if err != nil {
		t.Fatalf("AddFunction: %v", err)
	}

	lazy, err := f.Compile("twice(tick())")
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}

	if calls != 0 {
		t.Fatalf("lazy argument evaluated %d times while compiling", calls)
	}

	if got := evalExpr(t, lazy); got != "3" {
		t.Errorf("twice(tick()) = %s, want 3", got)
	}

	calls = 0

	eager, err := f.Compile("once(tick())")
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}

	if calls != 1 {
		t.Fatalf("eager argument evaluated %d times while compiling, want 1", calls)
	}

	for range 3 {
		if got := evalExpr(t, eager); got != "1" {
			t.Errorf("once(tick()) = %s, want 1", got)
		}
	}

	if calls != 1 {
		t.Errorf("eager argument re-evaluated: %d calls", calls)
	}
}

func evalExpr(tb testing.TB, expr *Expression) string {
	tb.Helper()

	got, err := expr.Eval()
	if err != nil {
		tb.Fatalf("Eval(%q): %v", expr.Source(), err)
	}

	return Format(got)
}
