package repl

import (
	"strings"
	"unicode/utf8"

	"github.com/ardnew/formula/lang"
)

// conditionalParams describes the call form of the if keyword.
var conditionalParams = []string{"cond", "then", "else=0"}

// functionCall locates the innermost call whose argument list contains the
// cursor.
type functionCall struct {
	name     string
	argIndex int
	inCall   bool
}

func isCallNameRune(r rune) bool {
	return r == '_' || r == '.' ||
		(r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}

// detectFunctionCall finds the unmatched '(' left of cursor that follows a
// name and counts the top-level commas between it and the cursor.
func detectFunctionCall(input string, cursor int) functionCall {
	cursor = min(max(cursor, 0), len(input))

	open, depth := -1, 0

scan:
	for i := cursor - 1; i >= 0; i-- {
		switch input[i] {
		case ')', ']':
			depth++
		case '[':
			depth--
		case '(':
			if depth == 0 {
				open = i

				break scan
			}

			depth--
		}
	}

	if open < 0 {
		return functionCall{}
	}

	start := open
	for start > 0 {
		r, size := utf8.DecodeLastRuneInString(input[:start])
		if !isCallNameRune(r) {
			break
		}

		start -= size
	}

	name := input[start:open]
	if name == "" {
		return functionCall{}
	}

	index := 0
	depth = 0

	for _, c := range []byte(input[open+1 : cursor]) {
		switch c {
		case '(', '[':
			depth++
		case ')', ']':
			depth--
		case ',':
			if depth == 0 {
				index++
			}
		}
	}

	return functionCall{name: name, argIndex: index, inCall: true}
}

// signatureOf returns the name and parameters of the callable named name.
// The parameters are in signature notation.
func signatureOf(f *lang.Formula, name string) (string, []string, bool) {
	if strings.EqualFold(name, "if") {
		return "if", conditionalParams, true
	}

	fn, ok := lang.Lookup[*lang.Function](f.Symbols(), name)
	if !ok {
		return "", nil, false
	}

	params := make([]string, 0, fn.Params().Len())
	for _, p := range fn.Params().All() {
		params = append(params, p.String())
	}

	return fn.Name(), params, true
}

// renderSignatureHint renders name(params...) with the parameter receiving
// argument index current highlighted. A variadic parameter is highlighted for
// every index at or past its position.
func renderSignatureHint(name string, params []string, current int) string {
	var b strings.Builder

	b.WriteString(signatureNameStyle.Render(name))
	b.WriteString(signatureStyle.Render("("))

	for i, param := range params {
		if i > 0 {
			b.WriteString(signatureStyle.Render(", "))
		}

		variadic := strings.HasPrefix(param, "...")
		if current == i || (variadic && current > i) {
			b.WriteString(currentParamStyle.Render(param))
		} else {
			b.WriteString(signatureStyle.Render(param))
		}
	}

	b.WriteString(signatureStyle.Render(")"))

	return b.String()
}
