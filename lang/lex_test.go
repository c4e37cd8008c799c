package lang

import (
	"errors"
	"slices"
	"testing"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		src  string
		want []TokenKind
	}{
		{"", nil},
		{"   \t\r\n", nil},
		{"1", []TokenKind{TokenNumber}},
		{"1_000.5", []TokenKind{TokenNumber}},
		{"20%", []TokenKind{TokenPercentage}},
		{"1..10", []TokenKind{TokenNumber, TokenDotDot, TokenNumber}},
		{"1.5..2", []TokenKind{TokenNumber, TokenDotDot, TokenNumber}},
		{"$x %y", []TokenKind{TokenVariable, TokenVariable}},
		{"$変数+1", []TokenKind{TokenVariable, TokenPlus, TokenNumber}},
		{"foo.bar_baz", []TokenKind{TokenName}},
		{"+ - * / ^", []TokenKind{TokenPlus, TokenMinus, TokenTimes, TokenDivide, TokenExponent}},
		{"( ) [ ] ,", []TokenKind{TokenLParen, TokenRParen, TokenLBracket, TokenRBracket, TokenComma}},
		{"! != > >= = ==", []TokenKind{
			TokenExclamation, TokenNotEqual, TokenGreater,
			TokenGreaterEqual, TokenEqual, TokenEqualEqual,
		}},
		{"< <= <>", []TokenKind{TokenLess, TokenLessEqual, TokenLessGreater}},
		{"mod AND Or NOT true FALSE if then else In between", []TokenKind{
			TokenMod, TokenAnd, TokenOr, TokenNot, TokenTrue, TokenFalse,
			TokenIf, TokenThen, TokenElse, TokenIn, TokenBetween,
		}},
		{"!in", []TokenKind{TokenExclamation, TokenIn}},
		{"module", []TokenKind{TokenName}},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			toks, err := Tokenize(tt.src)
			if err != nil {
				t.Fatalf("Tokenize(%q): %v", tt.src, err)
			}

			got := make([]TokenKind, 0, len(toks))
			for _, tok := range toks {
				got = append(got, tok.Kind)
			}

			if !slices.Equal(got, tt.want) {
				t.Errorf("Tokenize(%q) = %v, want %v", tt.src, got, tt.want)
			}
		})
	}
}

func TestTokenize_Values(t *testing.T) {
	tests := []struct {
		src  string
		text string
		want string
		pos  int
	}{
		{"1_000", "1_000", "1000", 0},
		{"  12.50", "12.50", "12.5", 2},
		{"15%", "15%", "0.15", 0},
		{"3.", "3.", "3", 0},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			toks, err := Tokenize(tt.src)
			if err != nil {
				t.Fatalf("Tokenize(%q): %v", tt.src, err)
			}

			if len(toks) != 1 {
				t.Fatalf("Tokenize(%q) returned %d tokens, want 1", tt.src, len(toks))
			}

			tok := toks[0]
			if tok.Text != tt.text {
				t.Errorf("Text = %q, want %q", tok.Text, tt.text)
			}

			if tok.Pos != tt.pos {
				t.Errorf("Pos = %d, want %d", tok.Pos, tt.pos)
			}

			if got := Format(tok.Value); got != tt.want {
				t.Errorf("Value = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestTokenize_Errors(t *testing.T) {
	tests := []struct {
		src    string
		offset int
	}{
		{"#", 0},
		{"1 . 2", 2},
		{"1 + @", 4},
		{"$a\u00a0", 2},
		{"1 & 2", 2},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			_, err := Tokenize(tt.src)
			if !errors.Is(err, ErrLexical) {
				t.Fatalf("Tokenize(%q) error = %v, want ErrLexical", tt.src, err)
			}

			if !errors.Is(err, ErrCompile) {
				t.Errorf("Tokenize(%q) error = %v, want match for ErrCompile", tt.src, err)
			}

			var ce *CompileError
			if !errors.As(err, &ce) {
				t.Fatalf("Tokenize(%q) error %T is not a *CompileError", tt.src, err)
			}

			if ce.Offset != tt.offset {
				t.Errorf("Offset = %d, want %d", ce.Offset, tt.offset)
			}
		})
	}
}

func TestLexer_Lookahead(t *testing.T) {
	l := newLexer("1 + 2")

	if k := l.test(TokenMinus, TokenPlus); k != TokenNone {
		t.Fatalf("test() = %v before consuming the number", k)
	}

	if l.available() != 5 {
		t.Errorf("available() = %d, want 5", l.available())
	}

	if !l.accept(TokenNumber) {
		t.Fatal("accept(TokenNumber) = false")
	}

	if k := l.acceptAny(TokenMinus, TokenPlus); k != TokenPlus {
		t.Fatalf("acceptAny() = %v, want %v", k, TokenPlus)
	}

	if l.available() != 2 {
		t.Errorf("available() = %d, want 2", l.available())
	}

	l.kill()

	if k := l.peek().Kind; k != TokenNone {
		t.Errorf("peek() = %v after the last token, want end of input", k)
	}

	if l.available() != 0 {
		t.Errorf("available() = %d at end of input", l.available())
	}
}
