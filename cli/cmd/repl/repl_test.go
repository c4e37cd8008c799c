package repl

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/cockroachdb/apd/v3"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ardnew/formula/lang"
	"github.com/ardnew/formula/log"
)

func newTestModel(tb testing.TB) model {
	tb.Helper()

	f := lang.New()

	must := func(_ any, err error) {
		tb.Helper()

		if err != nil {
			tb.Fatalf("register: %v", err)
		}
	}

	first := func(args *lang.Arguments) (*apd.Decimal, error) {
		return args.Value("first")
	}

	must(f.AddConstant("PI", lang.MustDecimal("3.14159")))
	must(f.AddVariable("$price", lang.Int(100)))
	must(f.AddVariable("%discount", lang.MustDecimal("15%")))
	must(f.AddExternalVariable("$rate", func(string) (*apd.Decimal, error) {
		return lang.MustDecimal("0.5"), nil
	}))
	must(f.AddFunction("round", []string{"value", "places=0"}, first))
	must(f.AddFunction("max", []string{"first", "...rest"}, first))

	return newModel(context.Background(), f, NewHistory(""), log.Logger{})
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestModel_Evaluate(t *testing.T) {
	m := newTestModel(t)

	tests := []struct {
		src  string
		want []string
	}{
		{"$price - %discount", []string{"85"}},
		{"50% + 50%", []string{"1", "(100%)"}},
		{"%discount", []string{"0.15", "(15%)"}},
		{"PI * 2", []string{"6.28318"}},
		{"1 / 0", []string{"error:", "division by zero"}},
		{"1 +* 2", []string{"error:", "column 4", "^"}},
		{"nope", []string{"error:", "unknown symbol"}},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			got := m.evaluate(tt.src)

			for _, w := range tt.want {
				if !strings.Contains(got, w) {
					t.Errorf("evaluate(%q) = %q, want it to contain %q", tt.src, got, w)
				}
			}
		})
	}
}

func TestModel_Assign(t *testing.T) {
	m := newTestModel(t)

	tests := []struct {
		args []string
		want string
	}{
		{[]string{"$price", "2", "*", "60"}, "$price = 120"},
		{[]string{"$qty", "3"}, "$qty = 3"},
		{[]string{"$price"}, ErrUsage.Error()},
		{[]string{"PI", "3"}, "read-only"},
		{[]string{"$rate", "1"}, "read-only"},
		{[]string{"qty", "1"}, "invalid variable name"},
		{[]string{"$x", "1/0"}, "division by zero"},
	}

	for _, tt := range tests {
		t.Run(strings.Join(tt.args, " "), func(t *testing.T) {
			if got := m.assign(tt.args); !strings.Contains(got, tt.want) {
				t.Errorf("assign(%q) = %q, want it to contain %q", tt.args, got, tt.want)
			}
		})
	}

	if got := m.evaluate("$price * $qty"); !strings.Contains(got, "360") {
		t.Errorf("evaluate after set = %q, want 360", got)
	}
}

func TestModel_ListSymbols(t *testing.T) {
	got := newTestModel(t).listSymbols()

	for _, want := range []string{
		"PI = 3.14159",
		"$price = 100",
		"%discount = 15%",
		"$rate (external)",
		"round round(value, places=0)",
		"max max(first, ...rest)",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("listSymbols() = %q, want it to contain %q", got, want)
		}
	}
}

func TestModel_TabCycle(t *testing.T) {
	m := newTestModel(t)

	next, _ := m.Update(runes("r"))
	m = next.(model)

	if len(m.matches) < 2 {
		t.Fatalf("matches for %q = %v, want several", "r", m.matches)
	}

	m = m.cycle(1)
	if !m.tabActive || m.input.Value() != m.matches[0].Str {
		t.Fatalf("after Tab input = %q, want %q", m.input.Value(), m.matches[0].Str)
	}

	m = m.cycle(1)
	if m.suggIdx != 1 || m.input.Value() != m.matches[1].Str {
		t.Errorf("second Tab selected %d (%q), want 1", m.suggIdx, m.input.Value())
	}

	m = m.cycle(-1).cycle(-1)
	if want := m.matches[len(m.matches)-1].Str; m.input.Value() != want {
		t.Errorf("Shift-Tab past the first candidate = %q, want %q", m.input.Value(), want)
	}

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	m = next.(model)

	if m.tabActive || m.input.Value() != "r" {
		t.Errorf("after Esc input = %q (tab %v), want %q", m.input.Value(), m.tabActive, "r")
	}
}

func TestModel_SingleCompletion(t *testing.T) {
	m := newTestModel(t)

	next, _ := m.Update(runes("1 + rou"))
	m = next.(model)

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m = next.(model)

	if got := m.input.Value(); got != "1 + round" {
		t.Errorf("completed input = %q, want %q", got, "1 + round")
	}

	if m.tabActive {
		t.Error("single candidate left tab-cycling active")
	}
}

func TestModel_Hint(t *testing.T) {
	m := newTestModel(t)

	if got := m.hint(); !strings.Contains(got, "Type an expression") {
		t.Errorf("empty eval hint = %q", got)
	}

	next, _ := m.Update(runes("round(PI, "))
	m = next.(model)

	if got := m.hint(); !strings.Contains(got, "places=0") {
		t.Errorf("call hint = %q, want signature of round", got)
	}

	m = m.switchToMode(modeCtrl)
	if got := m.hint(); !strings.Contains(got, "help, list, set") {
		t.Errorf("empty ctrl hint = %q", got)
	}

	m = m.switchToMode(modeEval)
	if got := m.input.Value(); got != "round(PI, " {
		t.Errorf("eval input after mode round trip = %q", got)
	}
}

func TestModel_History(t *testing.T) {
	m := newTestModel(t)

	for _, e := range []HistoryEntry{
		{"1 + 1", modeEval},
		{"list", modeCtrl},
		{"2 * 2", modeEval},
	} {
		if err := m.history.Append(e.Line, e.Mode); err != nil {
			t.Fatal(err)
		}
	}

	m.historyIdx = m.history.Len()

	steps := []struct {
		step     int
		sameMode bool
		want     string
		mode     inputMode
	}{
		{-1, false, "2 * 2", modeEval},
		{-1, false, "list", modeCtrl},
		{-1, false, "1 + 1", modeEval},
		{-1, false, "1 + 1", modeEval}, // oldest entry stays
		{1, true, "2 * 2", modeEval},   // skips the command
		{1, true, "", modeEval},        // past the newest clears
	}

	for i, s := range steps {
		m = m.historyStep(s.step, s.sameMode)

		if got := m.input.Value(); got != s.want || m.mode != s.mode {
			t.Errorf("step %d: input %q mode %d, want %q mode %d", i, got, m.mode, s.want, s.mode)
		}
	}
}

func TestModel_Quit(t *testing.T) {
	m := newTestModel(t)

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlD})
	if !next.(model).quitting || cmd == nil {
		t.Fatal("Ctrl+D on empty input did not quit")
	}

	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Errorf("Ctrl+D command produced %T, want tea.QuitMsg", cmd())
	}

	if got := next.View(); got != "" {
		t.Errorf("View() after quit = %q, want empty", got)
	}
}

func TestRun_NoFormula(t *testing.T) {
	if err := Run(context.Background(), nil, "", log.Logger{}); !errors.Is(err, ErrNoFormula) {
		t.Errorf("Run(nil) error = %v, want ErrNoFormula", err)
	}
}
