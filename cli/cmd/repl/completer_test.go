package repl

import (
	"slices"
	"strings"
	"testing"

	"github.com/sahilm/fuzzy"

	"github.com/ardnew/formula/lang"
)

func TestWordBounds(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		cursor    int
		wantWord  string
		wantStart int
		wantEnd   int
	}{
		{"simple", "abs", 3, "abs", 0, 3},
		{"variable", "1 + $pri", 8, "$pri", 4, 8},
		{"percentage variable", "max(1, %dis", 11, "%dis", 7, 11},
		{"after paren", "round(PI", 8, "PI", 6, 8},
		{"after caret", "2^fl", 4, "fl", 2, 4},
		{"dotted name", "a.b", 3, "a.b", 0, 3},
		{"mid word", "foobar", 3, "foobar", 0, 6},
		{"at start", "foo", 0, "foo", 0, 3},
		{"between operators", "x - ", 3, "", 3, 3},
		{"after bracket", "5 in [1, tw", 11, "tw", 9, 11},
		{"cursor past end", "ab", 9, "ab", 0, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			word, start, end := wordBounds(tt.input, tt.cursor)
			if word != tt.wantWord || start != tt.wantStart || end != tt.wantEnd {
				t.Errorf("wordBounds(%q, %d) = (%q, %d, %d), want (%q, %d, %d)",
					tt.input, tt.cursor, word, start, end,
					tt.wantWord, tt.wantStart, tt.wantEnd)
			}
		})
	}
}

func TestComputeMatches(t *testing.T) {
	tests := []struct {
		name  string
		mode  inputMode
		input string
		want  string // expected among the matches
		none  bool
	}{
		{"function", modeEval, "rou", "round", false},
		{"constant", modeEval, "1 + P", "PI", false},
		{"variable", modeEval, "$pr", "$price", false},
		{"keyword", modeEval, "1 betw", "between", false},
		{"empty word", modeEval, "1 + ", "", true},
		{"command", modeCtrl, "cle", "clear", false},
		{"set variable", modeCtrl, "set $p", "$price", false},
		{"set skips external", modeCtrl, "set $rat", "", true},
		{"command argument", modeCtrl, "list x", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newTestModel(t)
			m.mode = tt.mode
			m.setInput(tt.input, len(tt.input))

			matches, _, end := m.computeMatches()
			if end != len(tt.input) {
				t.Errorf("word end = %d, want %d", end, len(tt.input))
			}

			if tt.none {
				if len(matches) != 0 {
					t.Errorf("computeMatches(%q) = %v, want none", tt.input, matches)
				}

				return
			}

			found := slices.ContainsFunc(matches, func(m fuzzy.Match) bool {
				return m.Str == tt.want
			})
			if !found {
				t.Errorf("computeMatches(%q) = %v, want %q among them", tt.input, matches, tt.want)
			}
		})
	}
}

func TestSymbolCandidates(t *testing.T) {
	f := lang.New()
	if _, err := f.AddConstant("PI", lang.Float(3.14)); err != nil {
		t.Fatal(err)
	}

	got := symbolCandidates(f)
	if got[0] != "PI" {
		t.Errorf("symbolCandidates()[0] = %q, want PI", got[0])
	}

	if len(got) != 1+len(lang.Keywords()) {
		t.Errorf("len(symbolCandidates()) = %d, want %d", len(got), 1+len(lang.Keywords()))
	}
}

func TestRenderCandidateBar(t *testing.T) {
	m := newTestModel(t)
	m.setInput("r", 1)
	refreshMatches(&m, false)

	if len(m.matches) < 2 {
		t.Fatalf("expected several matches for %q, got %v", "r", m.matches)
	}

	if got := renderCandidateBar(m.formula, m.matches, -1, false, 0); got != "" {
		t.Errorf("zero width bar = %q, want empty", got)
	}

	if got := renderCandidateBar(m.formula, nil, -1, false, 80); got != "" {
		t.Errorf("bar without matches = %q, want empty", got)
	}

	wide := renderCandidateBar(m.formula, m.matches, -1, false, 1000)
	for _, match := range m.matches {
		if !strings.Contains(wide, match.Str) {
			t.Errorf("wide bar %q is missing %q", wide, match.Str)
		}
	}

	if strings.Contains(wide, "...") {
		t.Errorf("wide bar %q is ellipsized", wide)
	}

	if !strings.Contains(wide, "round()") {
		t.Errorf("wide bar %q does not mark function round", wide)
	}

	narrow := renderCandidateBar(m.formula, m.matches, -1, false, 1)
	if !strings.HasSuffix(narrow, "...") {
		t.Errorf("narrow bar %q is not ellipsized", narrow)
	}
}
