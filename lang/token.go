package lang

import (
	"strconv"

	"github.com/cockroachdb/apd/v3"
)

// TokenKind identifies the lexical class of a [Token].
type TokenKind uint8

const (
	TokenNone TokenKind = iota
	TokenNumber
	TokenPercentage
	TokenVariable
	TokenName

	TokenPlus
	TokenMinus
	TokenTimes
	TokenDivide
	TokenExponent
	TokenLParen
	TokenRParen
	TokenLBracket
	TokenRBracket
	TokenComma
	TokenDotDot

	TokenExclamation
	TokenNotEqual
	TokenGreater
	TokenGreaterEqual
	TokenEqual
	TokenEqualEqual
	TokenLess
	TokenLessEqual
	TokenLessGreater

	TokenMod
	TokenAnd
	TokenOr
	TokenNot
	TokenTrue
	TokenFalse
	TokenIf
	TokenThen
	TokenElse
	TokenIn
	TokenBetween
)

var tokenNames = [...]string{
	TokenNone:         "end of input",
	TokenNumber:       "number",
	TokenPercentage:   "percentage",
	TokenVariable:     "variable",
	TokenName:         "name",
	TokenPlus:         "'+'",
	TokenMinus:        "'-'",
	TokenTimes:        "'*'",
	TokenDivide:       "'/'",
	TokenExponent:     "'^'",
	TokenLParen:       "'('",
	TokenRParen:       "')'",
	TokenLBracket:     "'['",
	TokenRBracket:     "']'",
	TokenComma:        "','",
	TokenDotDot:       "'..'",
	TokenExclamation:  "'!'",
	TokenNotEqual:     "'!='",
	TokenGreater:      "'>'",
	TokenGreaterEqual: "'>='",
	TokenEqual:        "'='",
	TokenEqualEqual:   "'=='",
	TokenLess:         "'<'",
	TokenLessEqual:    "'<='",
	TokenLessGreater:  "'<>'",
	TokenMod:          "MOD",
	TokenAnd:          "AND",
	TokenOr:           "OR",
	TokenNot:          "NOT",
	TokenTrue:         "TRUE",
	TokenFalse:        "FALSE",
	TokenIf:           "IF",
	TokenThen:         "THEN",
	TokenElse:         "ELSE",
	TokenIn:           "IN",
	TokenBetween:      "BETWEEN",
}

func (k TokenKind) String() string {
	if int(k) < len(tokenNames) {
		return tokenNames[k]
	}

	return "TokenKind(" + strconv.Itoa(int(k)) + ")"
}

// keywords maps lower-cased NAME text to its keyword kind.
var keywords = map[string]TokenKind{
	"mod":     TokenMod,
	"and":     TokenAnd,
	"or":      TokenOr,
	"not":     TokenNot,
	"true":    TokenTrue,
	"false":   TokenFalse,
	"if":      TokenIf,
	"then":    TokenThen,
	"else":    TokenElse,
	"in":      TokenIn,
	"between": TokenBetween,
}

// Keywords returns the reserved words in lower case.
func Keywords() []string {
	return []string{
		"mod", "and", "or", "not", "true", "false",
		"if", "then", "else", "in", "between",
	}
}

// Token is a lexical unit of source text.
type Token struct {
	Value *apd.Decimal // Literal value of number and percentage tokens
	Text  string
	Pos   int // Byte offset of the first character
	Kind  TokenKind
}

func (t Token) String() string {
	if t.Kind == TokenNone {
		return t.Kind.String()
	}

	return strconv.Quote(t.Text)
}
