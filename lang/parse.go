package lang

import (
	"fmt"
	"log/slog"
)

// parser is a recursive-descent parser over a [lexer]. It binds names
// against the symbol table as it goes, so a successful parse yields a tree
// that needs no further resolution.
//
// Precedence, lowest first:
//
//	expr           additive { relop additive | IN membership }
//	additive       multiplicative { (+ | - | OR) multiplicative | (NOT | !) IN membership }
//	multiplicative term { (* | / | MOD | AND | ^) term }
//	term           + term | - term | (! | NOT) term | TRUE | FALSE | ( expr )
//	               | conditional | name | variable | number | percentage
type parser struct {
	lex     *lexer
	symbols *Table[Symbol]
	src     string
}

func parse(src string, symbols *Table[Symbol]) (*Node, error) {
	p := &parser{lex: newLexer(src), src: src, symbols: symbols}

	if p.lex.peek().Kind == TokenNone {
		return nil, p.fail(ErrSyntax, 0, "empty expression")
	}

	n, err := p.expr(nil)
	if err != nil {
		return nil, err
	}

	if tok := p.lex.peek(); p.lex.available() > 0 {
		return nil, p.fail(ErrSyntax, tok.Pos, "unexpected %s after expression", tok)
	}

	if p.lex.err != nil {
		return nil, p.lex.err
	}

	return n, nil
}

// fail returns a compile error at offset pos. A pending lexical error takes
// precedence, since it is what ended the token stream.
func (p *parser) fail(kind *Error, pos int, format string, args ...any) error {
	if p.lex.err != nil {
		return p.lex.err
	}

	return newCompileError(p.src, pos,
		kind.WithOffset(pos).Wrap(fmt.Errorf(format, args...)),
	)
}

// expect consumes a token of the given kind or fails naming what was wanted.
func (p *parser) expect(kind TokenKind, what string) error {
	if p.lex.accept(kind) {
		return nil
	}

	tok := p.lex.peek()

	return p.fail(ErrSyntax, tok.Pos, "expected %s, found %s", what, tok)
}

var relational = map[TokenKind]NodeKind{
	TokenEqual:        NodeEqual,
	TokenEqualEqual:   NodeEqual,
	TokenNotEqual:     NodeNotEqual,
	TokenLessGreater:  NodeNotEqual,
	TokenLess:         NodeLess,
	TokenLessEqual:    NodeLessEqual,
	TokenGreater:      NodeGreater,
	TokenGreaterEqual: NodeGreaterEqual,
}

// expr parses a relational expression. If first is non-nil it is taken as
// the already parsed leftmost operand.
func (p *parser) expr(first *Node) (*Node, error) {
	left, err := p.operand(first, p.additive)
	if err != nil {
		return nil, err
	}

	for {
		tok := p.lex.acceptAny(
			TokenEqual, TokenEqualEqual, TokenNotEqual, TokenLessGreater,
			TokenLess, TokenLessEqual, TokenGreater, TokenGreaterEqual,
			TokenIn,
		)

		switch tok {
		case TokenNone:
			return left, nil

		case TokenIn:
			if left, err = p.membership(left, false); err != nil {
				return nil, err
			}

		default:
			right, err := p.additive(nil)
			if err != nil {
				return nil, err
			}

			left = newBinary(relational[tok], left, right)
		}
	}
}

// additive parses a sum. NOT and ! at this level introduce a negated
// membership test on the sum parsed so far.
func (p *parser) additive(first *Node) (*Node, error) {
	left, err := p.operand(first, p.multiplicative)
	if err != nil {
		return nil, err
	}

	for {
		var kind NodeKind

		switch p.lex.acceptAny(TokenPlus, TokenMinus, TokenOr, TokenNot, TokenExclamation) {
		case TokenNone:
			return left, nil
		case TokenPlus:
			kind = NodeAdd
		case TokenMinus:
			kind = NodeSub
		case TokenOr:
			kind = NodeOr
		case TokenNot, TokenExclamation:
			if err := p.expect(TokenIn, "IN"); err != nil {
				return nil, err
			}

			if left, err = p.membership(left, true); err != nil {
				return nil, err
			}

			continue
		}

		right, err := p.multiplicative(nil)
		if err != nil {
			return nil, err
		}

		left = newBinary(kind, left, right)
	}
}

var multiplicative = map[TokenKind]NodeKind{
	TokenTimes:    NodeMul,
	TokenDivide:   NodeDiv,
	TokenMod:      NodeMod,
	TokenAnd:      NodeAnd,
	TokenExponent: NodePow,
}

func (p *parser) multiplicative(first *Node) (*Node, error) {
	left, err := p.operand(first, func(*Node) (*Node, error) { return p.term() })
	if err != nil {
		return nil, err
	}

	for {
		tok := p.lex.acceptAny(TokenTimes, TokenDivide, TokenMod, TokenAnd, TokenExponent)
		if tok == TokenNone {
			return left, nil
		}

		right, err := p.term()
		if err != nil {
			return nil, err
		}

		left = newBinary(multiplicative[tok], left, right)
	}
}

// operand returns first if it is set, otherwise the result of next.
func (p *parser) operand(
	first *Node,
	next func(*Node) (*Node, error),
) (*Node, error) {
	if first != nil {
		return first, nil
	}

	return next(nil)
}

func (p *parser) term() (*Node, error) {
	tok := *p.lex.peek()

	switch p.lex.acceptAny(
		TokenPlus, TokenMinus, TokenExclamation, TokenNot,
		TokenTrue, TokenFalse, TokenLParen, TokenIf,
		TokenName, TokenVariable, TokenNumber, TokenPercentage,
	) {
	case TokenPlus:
		return p.term()

	case TokenMinus:
		x, err := p.term()
		if err != nil {
			return nil, err
		}

		return newNegate(x), nil

	case TokenExclamation, TokenNot:
		x, err := p.term()
		if err != nil {
			return nil, err
		}

		return newNot(x), nil

	case TokenTrue:
		return newLiteral(truth(true), false), nil

	case TokenFalse:
		return newLiteral(truth(false), false), nil

	case TokenLParen:
		return p.parenthesized()

	case TokenIf:
		return p.conditional()

	case TokenName, TokenVariable:
		return p.reference(tok)

	case TokenNumber:
		return newLiteral(tok.Value, false), nil

	case TokenPercentage:
		return newLiteral(tok.Value, true), nil
	}

	return nil, p.fail(ErrSyntax, tok.Pos, "number or expression expected, found %s", tok)
}

// parenthesized parses the remainder of "( expr )" after the opening paren.
func (p *parser) parenthesized() (*Node, error) {
	if tok := p.lex.peek(); tok.Kind == TokenRParen {
		return nil, p.fail(ErrSyntax, tok.Pos, "empty parenthesized expression")
	}

	n, err := p.expr(nil)
	if err != nil {
		return nil, err
	}

	if err := p.expect(TokenRParen, "')'"); err != nil {
		return nil, err
	}

	return n, nil
}

// conditional parses either form after the IF keyword:
//
//	IF cond [THEN] true [ELSE false]
//	IF(cond, true [, false])
//
// A parenthesized condition not followed by a comma belongs to the keyword
// form and may continue with further operators, as in "if (a) + 1 > b ...".
func (p *parser) conditional() (*Node, error) {
	var (
		cond *Node
		err  error
	)

	if p.lex.accept(TokenLParen) {
		if tok := p.lex.peek(); tok.Kind == TokenRParen {
			return nil, p.fail(ErrSyntax, tok.Pos, "empty parenthesized expression")
		}

		if cond, err = p.expr(nil); err != nil {
			return nil, err
		}

		if p.lex.accept(TokenComma) {
			return p.conditionalCall(cond)
		}

		if err := p.expect(TokenRParen, "')' or ','"); err != nil {
			return nil, err
		}

		if cond, err = p.continued(cond); err != nil {
			return nil, err
		}
	} else if cond, err = p.expr(nil); err != nil {
		return nil, err
	}

	p.lex.accept(TokenThen)

	then, err := p.expr(nil)
	if err != nil {
		return nil, err
	}

	els := newLiteral(truth(false), false)

	if p.lex.accept(TokenElse) {
		if els, err = p.expr(nil); err != nil {
			return nil, err
		}
	}

	return newIf(cond, then, els), nil
}

// conditionalCall parses the remainder of "IF(cond, true [, false])" after
// the first comma.
func (p *parser) conditionalCall(cond *Node) (*Node, error) {
	then, err := p.expr(nil)
	if err != nil {
		return nil, err
	}

	els := newLiteral(truth(false), false)

	if p.lex.accept(TokenComma) {
		if els, err = p.expr(nil); err != nil {
			return nil, err
		}
	}

	if err := p.expect(TokenRParen, "')'"); err != nil {
		return nil, err
	}

	return newIf(cond, then, els), nil
}

// continued resumes parsing an expression whose leftmost term is first.
func (p *parser) continued(first *Node) (*Node, error) {
	n, err := p.multiplicative(first)
	if err != nil {
		return nil, err
	}

	if n, err = p.additive(n); err != nil {
		return nil, err
	}

	return p.expr(n)
}

// membership parses the remainder of a membership test after IN:
//
//	[(] begin (BETWEEN | ..) end [)]
//	[ expr {, expr} ]
func (p *parser) membership(x *Node, negate bool) (*Node, error) {
	if p.lex.accept(TokenLBracket) {
		var set []*Node

		for {
			e, err := p.expr(nil)
			if err != nil {
				return nil, err
			}

			set = append(set, e)

			if !p.lex.accept(TokenComma) {
				break
			}
		}

		if err := p.expect(TokenRBracket, "']'"); err != nil {
			return nil, err
		}

		return newInSet(x, set, negate), nil
	}

	paren := p.lex.accept(TokenLParen)

	begin, err := p.additive(nil)
	if err != nil {
		return nil, err
	}

	if p.lex.acceptAny(TokenBetween, TokenDotDot) == TokenNone {
		tok := p.lex.peek()

		return nil, p.fail(ErrSyntax, tok.Pos, "expected BETWEEN or '..', found %s", tok)
	}

	end, err := p.additive(nil)
	if err != nil {
		return nil, err
	}

	if paren {
		if err := p.expect(TokenRParen, "')'"); err != nil {
			return nil, err
		}
	}

	return newInRange(x, begin, end, negate), nil
}

// reference resolves a NAME or VARIABLE token against the symbol table.
func (p *parser) reference(tok Token) (*Node, error) {
	sym, ok := p.symbols.Get(tok.Text)
	if !ok {
		return nil, p.fail(ErrUnknownSymbol, tok.Pos, "%s %q is not defined", tok.Kind, tok.Text)
	}

	if fn, ok := sym.(*Function); ok {
		return p.call(tok, fn)
	}

	if next := p.lex.peek(); next.Kind == TokenLParen {
		return nil, p.fail(ErrNotCallable, next.Pos,
			"%s %q cannot be called", sym.Kind(), sym.Name())
	}

	switch s := sym.(type) {
	case *Constant:
		return newConstantRef(s), nil
	case *Variable:
		return newVariableRef(s), nil
	}

	return nil, p.fail(ErrUnknownSymbol, tok.Pos,
		"%s %q cannot be referenced", sym.Kind(), sym.Name())
}

// call parses the argument list of a call to fn and binds it.
func (p *parser) call(tok Token, fn *Function) (*Node, error) {
	if err := p.expect(TokenLParen, fmt.Sprintf("'(' after function %q", fn.name)); err != nil {
		return nil, err
	}

	var exprs []*Node

	if !p.lex.accept(TokenRParen) {
		for {
			e, err := p.expr(nil)
			if err != nil {
				return nil, err
			}

			exprs = append(exprs, e)

			if !p.lex.accept(TokenComma) {
				break
			}
		}

		if err := p.expect(TokenRParen, "')' or ','"); err != nil {
			return nil, err
		}
	}

	return p.bind(tok, fn, exprs)
}

// bind matches argument expressions to the parameters of fn. Missing
// trailing arguments take parameter defaults. Eager arguments are evaluated
// here, once; lazy arguments keep their expression; any arguments beyond the
// fixed parameters become the variadic elements.
func (p *parser) bind(tok Token, fn *Function, exprs []*Node) (*Node, error) {
	fixed := fn.fixed()

	if !fn.IsVariadic() && len(exprs) > fixed {
		return nil, p.fail(ErrArgumentCount, tok.Pos,
			"%s expects at most %d argument(s), got %d", fn.Signature(), fixed, len(exprs))
	}

	bound := make([]*Node, fixed)

	for i := range fixed {
		param := fn.params.At(i)

		if i >= len(exprs) {
			def, ok := param.Default()
			if !ok {
				return nil, p.fail(ErrArgumentCount, tok.Pos,
					"%s: missing argument for parameter %q", fn.Signature(), param.name)
			}

			bound[i] = newLiteral(def, false)

			continue
		}

		if param.IsLazy() {
			bound[i] = exprs[i]

			continue
		}

		v, err := exprs[i].Eval()
		if err != nil {
			return nil, newCompileError(p.src, tok.Pos,
				ErrCompile.WithOffset(tok.Pos).
					With(slog.String("function", fn.name), slog.String("parameter", param.name)).
					Wrap(err),
			)
		}

		bound[i] = newLiteral(v, exprs[i].percent)
	}

	var rest []*Node
	if len(exprs) > fixed {
		rest = exprs[fixed:]
	}

	return newCall(fn, exprs, bound, rest), nil
}
