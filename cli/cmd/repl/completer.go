package repl

import (
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	"github.com/ardnew/formula/lang"
)

// ctrlCommands are the available control-mode commands.
var ctrlCommands = []string{"help", "list", "set", "clear", "quit"}

// isWordBoundary reports whether r separates completion words. Sigils and
// dots are part of names, so neither is a boundary.
func isWordBoundary(r rune) bool {
	switch r {
	case ' ', '\t',
		'(', ')', '[', ']',
		'+', '-', '*', '/', '^',
		'<', '>', '=', '!', ',':
		return true
	}

	return false
}

// wordBounds returns the word surrounding cursor and its byte offsets in
// input. The word is empty when the cursor sits between two boundaries.
func wordBounds(input string, cursor int) (word string, start, end int) {
	cursor = min(max(cursor, 0), len(input))

	start = cursor
	for start > 0 {
		r, size := utf8.DecodeLastRuneInString(input[:start])
		if isWordBoundary(r) {
			break
		}

		start -= size
	}

	end = cursor
	for end < len(input) {
		r, size := utf8.DecodeRuneInString(input[end:])
		if isWordBoundary(r) {
			break
		}

		end += size
	}

	return input[start:end], start, end
}

// symbolCandidates returns every registered name followed by the keywords.
func symbolCandidates(f *lang.Formula) []string {
	names := slices.Collect(f.Symbols().Names())

	return append(names, lang.Keywords()...)
}

// variableCandidates returns the names of the assignable variables.
func variableCandidates(f *lang.Formula) []string {
	var names []string

	for _, s := range f.Symbols().All() {
		if v, ok := s.(*lang.Variable); ok && !v.IsExternal() {
			names = append(names, v.Name())
		}
	}

	return names
}

// computeMatches ranks the candidates for the word at the cursor. An empty
// word has no matches so the input hint stays visible.
func (m model) computeMatches() (
	matches fuzzy.Matches,
	wordStart, wordEnd int,
) {
	input := m.input.Value()

	word, wordStart, wordEnd := wordBounds(input, m.cursor())
	if word == "" {
		return nil, wordStart, wordEnd
	}

	var candidates []string

	if m.mode == modeCtrl {
		switch fields := strings.Fields(input[:wordStart]); {
		case len(fields) == 0:
			candidates = ctrlCommands
		case len(fields) == 1 && fields[0] == "set":
			candidates = variableCandidates(m.formula)
		}
	} else {
		candidates = symbolCandidates(m.formula)
	}

	if len(candidates) == 0 {
		return nil, wordStart, wordEnd
	}

	return fuzzy.Find(word, candidates), wordStart, wordEnd
}

// renderCandidateBar lays out matches on a single line no wider than width,
// ending with an ellipsis when some do not fit.
func renderCandidateBar(
	f *lang.Formula,
	matches fuzzy.Matches,
	suggIdx int,
	tabActive bool,
	width int,
) string {
	if len(matches) == 0 || width <= 0 {
		return ""
	}

	const sep = "  "

	ellipsis := hintStyle.Render("...")
	reserve := lipgloss.Width(sep) + lipgloss.Width(ellipsis)

	var b strings.Builder

	used := 0

	for i, match := range matches {
		rendered := renderCandidate(f, match, tabActive && i == suggIdx)
		w := lipgloss.Width(rendered)

		if i > 0 {
			w += lipgloss.Width(sep)

			last := i == len(matches)-1
			if (last && used+w > width) || (!last && used+w+reserve > width) {
				b.WriteString(sep)
				b.WriteString(ellipsis)

				break
			}

			b.WriteString(sep)
		}

		b.WriteString(rendered)

		used += w
	}

	return b.String()
}

// renderCandidate renders match with its matched characters highlighted.
// Function names are shown with a trailing "()".
func renderCandidate(f *lang.Formula, match fuzzy.Match, selected bool) string {
	base, highlight := suggestionStyle, matchStyle
	if selected {
		base, highlight = selectedStyle, selectedMatchStyle
	}

	matched := make(map[int]bool, len(match.MatchedIndexes))
	for _, idx := range match.MatchedIndexes {
		matched[idx] = true
	}

	var b strings.Builder

	for i, r := range match.Str {
		if matched[i] {
			b.WriteString(highlight.Render(string(r)))
		} else {
			b.WriteString(base.Render(string(r)))
		}
	}

	if _, ok := lang.Lookup[*lang.Function](f.Symbols(), match.Str); ok {
		b.WriteString(base.Render("()"))
	}

	return b.String()
}
