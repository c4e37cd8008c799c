package lang

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// nbsp is excluded from the non-ASCII characters permitted in variable names.
const nbsp = '\u00a0'

// lexer produces tokens on demand with a lookahead of one.
//
// The first lexical error is recorded in err and exhausts the stream, so the
// parser sees end of input and reports err in place of the syntax error it
// would otherwise derive.
type lexer struct {
	err  error
	src  string
	tok  Token
	pos  int
	have bool
}

func newLexer(src string) *lexer {
	return &lexer{src: src}
}

// Tokenize returns all tokens of src.
func Tokenize(src string) ([]Token, error) {
	l := newLexer(src)

	var toks []Token

	for l.peek().Kind != TokenNone {
		toks = append(toks, *l.peek())
		l.kill()
	}

	return toks, l.err
}

// peek returns the lookahead token, scanning it if necessary.
func (l *lexer) peek() *Token {
	if !l.have {
		l.tok = l.scan()
		l.have = true
	}

	return &l.tok
}

// test returns the lookahead kind if it is one of kinds, or TokenNone.
func (l *lexer) test(kinds ...TokenKind) TokenKind {
	k := l.peek().Kind
	if k == TokenNone {
		return TokenNone
	}

	for _, kind := range kinds {
		if k == kind {
			return k
		}
	}

	return TokenNone
}

// accept consumes the lookahead if it is of the given kind.
func (l *lexer) accept(kind TokenKind) bool {
	return l.acceptAny(kind) != TokenNone
}

// acceptAny consumes the lookahead if it is one of kinds and returns its
// kind, or returns TokenNone and consumes nothing.
func (l *lexer) acceptAny(kinds ...TokenKind) TokenKind {
	k := l.test(kinds...)
	if k != TokenNone {
		l.kill()
	}

	return k
}

// kill discards the lookahead token.
func (l *lexer) kill() {
	l.peek()
	l.have = false
}

// available returns the length of the input not yet consumed. A scanned but
// unconsumed lookahead counts as available.
func (l *lexer) available() int {
	if l.have && l.tok.Kind != TokenNone {
		return len(l.src) - l.tok.Pos
	}

	return len(l.src) - l.pos
}

func (l *lexer) skipWhitespace() {
	for l.pos < len(l.src) {
		switch l.src[l.pos] {
		case ' ', '\t', '\r', '\n':
			l.pos++
		default:
			return
		}
	}
}

func (l *lexer) scan() Token {
	l.skipWhitespace()

	if l.err != nil || l.pos >= len(l.src) {
		return Token{Kind: TokenNone, Pos: len(l.src)}
	}

	start := l.pos
	c := l.src[start]

	switch {
	case isDigit(c):
		return l.number(start)
	case c == '$' || c == '%':
		return l.variable(start)
	case isLetter(c) || c == '_':
		return l.name(start)
	}

	l.pos++

	switch c {
	case '+':
		return l.emit(TokenPlus, start)
	case '-':
		return l.emit(TokenMinus, start)
	case '*':
		return l.emit(TokenTimes, start)
	case '/':
		return l.emit(TokenDivide, start)
	case '^':
		return l.emit(TokenExponent, start)
	case '(':
		return l.emit(TokenLParen, start)
	case ')':
		return l.emit(TokenRParen, start)
	case '[':
		return l.emit(TokenLBracket, start)
	case ']':
		return l.emit(TokenRBracket, start)
	case ',':
		return l.emit(TokenComma, start)
	case '!':
		if l.next('=') {
			return l.emit(TokenNotEqual, start)
		}

		return l.emit(TokenExclamation, start)
	case '>':
		if l.next('=') {
			return l.emit(TokenGreaterEqual, start)
		}

		return l.emit(TokenGreater, start)
	case '=':
		if l.next('=') {
			return l.emit(TokenEqualEqual, start)
		}

		return l.emit(TokenEqual, start)
	case '<':
		switch {
		case l.next('>'):
			return l.emit(TokenLessGreater, start)
		case l.next('='):
			return l.emit(TokenLessEqual, start)
		}

		return l.emit(TokenLess, start)
	case '.':
		if l.next('.') {
			return l.emit(TokenDotDot, start)
		}

		return l.fail(start, "unexpected '.' (use '..' for ranges)")
	}

	r, _ := utf8.DecodeRuneInString(l.src[start:])

	return l.fail(start, "unexpected character %q", r)
}

// next consumes c if it is the next input byte.
func (l *lexer) next(c byte) bool {
	if l.pos < len(l.src) && l.src[l.pos] == c {
		l.pos++

		return true
	}

	return false
}

func (l *lexer) emit(kind TokenKind, start int) Token {
	return Token{Kind: kind, Text: l.src[start:l.pos], Pos: start}
}

func (l *lexer) fail(start int, format string, args ...any) Token {
	l.err = newCompileError(l.src, start,
		ErrLexical.
			WithOffset(start).
			Wrap(fmt.Errorf(format, args...)),
	)
	l.pos = len(l.src)

	return Token{Kind: TokenNone, Pos: start}
}

func (l *lexer) digits(b *strings.Builder) {
	for l.pos < len(l.src) {
		c := l.src[l.pos]

		switch {
		case isDigit(c):
			b.WriteByte(c)
		case c != '_':
			return
		}

		l.pos++
	}
}

func (l *lexer) number(start int) Token {
	var b strings.Builder

	l.digits(&b)

	// A second dot makes this the end of the number and the start of a
	// range operator.
	if l.pos < len(l.src) && l.src[l.pos] == '.' &&
		(l.pos+1 >= len(l.src) || l.src[l.pos+1] != '.') {
		l.pos++

		b.WriteByte('.')
		l.digits(&b)
	}

	kind := TokenNumber
	if l.next('%') {
		kind = TokenPercentage
	}

	text := b.String()
	if kind == TokenPercentage {
		text += "%"
	}

	value, err := NewDecimal(text)
	if err != nil {
		return l.fail(start, "%v", err)
	}

	tok := l.emit(kind, start)
	tok.Value = value

	return tok
}

func (l *lexer) variable(start int) Token {
	l.pos++ // sigil

	for l.pos < len(l.src) {
		r, size := utf8.DecodeRuneInString(l.src[l.pos:])
		if !isVariableRune(r) {
			break
		}

		l.pos += size
	}

	return l.emit(TokenVariable, start)
}

func (l *lexer) name(start int) Token {
	for l.pos < len(l.src) && isNameByte(l.src[l.pos]) {
		l.pos++
	}

	tok := l.emit(TokenName, start)
	if kind, ok := keywords[strings.ToLower(tok.Text)]; ok {
		tok.Kind = kind
	}

	return tok
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isNameByte(c byte) bool {
	return isLetter(c) || isDigit(c) || c == '.' || c == '_'
}

func isVariableRune(r rune) bool {
	if r < utf8.RuneSelf {
		return isNameByte(byte(r))
	}

	return r != nbsp && r != utf8.RuneError
}

// isName reports whether s lexes as a single NAME token.
func isName(s string) bool {
	if s == "" || !(isLetter(s[0]) || s[0] == '_') {
		return false
	}

	for i := 1; i < len(s); i++ {
		if !isNameByte(s[i]) {
			return false
		}
	}

	return true
}

// isVariableName reports whether s lexes as a single VARIABLE token.
func isVariableName(s string) bool {
	if s == "" || (s[0] != '$' && s[0] != '%') {
		return false
	}

	for _, r := range s[1:] {
		if !isVariableRune(r) {
			return false
		}
	}

	return true
}

// isKeyword reports whether s is a reserved word in any letter case.
func isKeyword(s string) bool {
	_, ok := keywords[strings.ToLower(s)]

	return ok
}
