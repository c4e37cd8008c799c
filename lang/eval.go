package lang

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/cockroachdb/apd/v3"
)

// Eval computes the value of the subtree rooted at n against the current
// values of the symbols it references. Names were resolved at compile time,
// so the only failures are arithmetic, resolver, and handler errors.
func (n *Node) Eval() (*apd.Decimal, error) {
	switch n.kind {
	case NodeLiteral:
		return new(apd.Decimal).Set(n.value), nil

	case NodeConstant:
		return n.symbol.(*Constant).Value(), nil

	case NodeVariable:
		return n.symbol.(*Variable).Value()

	case NodeCall:
		return n.call.invoke()

	case NodeNegate:
		x, err := n.sub[0].Eval()
		if err != nil {
			return nil, err
		}

		if x.IsZero() {
			return apd.New(0, 0), nil
		}

		return new(apd.Decimal).Neg(x), nil

	case NodeNot:
		x, err := n.sub[0].Eval()
		if err != nil {
			return nil, err
		}

		return truth(!isTrue(x)), nil

	case NodeAdd, NodeSub:
		l, r := n.sub[0], n.sub[1]

		x, y, err := evalPair(l, r)
		if err != nil {
			return nil, err
		}

		if !l.percent && r.percent {
			return scale(x, y, n.kind == NodeSub)
		}

		if n.kind == NodeSub {
			return difference(x, y)
		}

		return sum(x, y)

	case NodeMul:
		return n.arithmetic(product)

	case NodeDiv:
		return n.arithmetic(Quotient)

	case NodeMod:
		return n.arithmetic(Remainder)

	case NodePow:
		return n.arithmetic(Power)

	case NodeEqual, NodeNotEqual,
		NodeLess, NodeLessEqual,
		NodeGreater, NodeGreaterEqual:
		x, y, err := evalPair(n.sub[0], n.sub[1])
		if err != nil {
			return nil, err
		}

		return truth(compare(n.kind, x.Cmp(y))), nil

	case NodeAnd, NodeOr:
		// Both operands are always evaluated.
		x, y, err := evalPair(n.sub[0], n.sub[1])
		if err != nil {
			return nil, err
		}

		if n.kind == NodeAnd {
			return truth(isTrue(x) && isTrue(y)), nil
		}

		return truth(isTrue(x) || isTrue(y)), nil

	case NodeIf:
		c, err := n.sub[0].Eval()
		if err != nil {
			return nil, err
		}

		if isTrue(c) {
			return n.sub[1].Eval()
		}

		return n.sub[2].Eval()

	case NodeInRange, NodeNotInRange:
		in, err := n.inRange()
		if err != nil {
			return nil, err
		}

		return truth(in == (n.kind == NodeInRange)), nil

	case NodeInSet, NodeNotInSet:
		in, err := n.inSet()
		if err != nil {
			return nil, err
		}

		return truth(in == (n.kind == NodeInSet)), nil
	}

	panic(fmt.Sprintf("lang: unhandled node kind %v", n.kind))
}

func evalPair(l, r *Node) (*apd.Decimal, *apd.Decimal, error) {
	x, err := l.Eval()
	if err != nil {
		return nil, nil, err
	}

	y, err := r.Eval()
	if err != nil {
		return nil, nil, err
	}

	return x, y, nil
}

func (n *Node) arithmetic(
	op func(x, y *apd.Decimal) (*apd.Decimal, error),
) (*apd.Decimal, error) {
	x, y, err := evalPair(n.sub[0], n.sub[1])
	if err != nil {
		return nil, err
	}

	return op(x, y)
}

func compare(kind NodeKind, c int) bool {
	switch kind {
	case NodeEqual:
		return c == 0
	case NodeNotEqual:
		return c != 0
	case NodeLess:
		return c < 0
	case NodeLessEqual:
		return c <= 0
	case NodeGreater:
		return c > 0
	case NodeGreaterEqual:
		return c >= 0
	}

	return false
}

// inRange reports whether begin <= x <= end.
func (n *Node) inRange() (bool, error) {
	x, err := n.sub[0].Eval()
	if err != nil {
		return false, err
	}

	begin, end, err := evalPair(n.sub[1], n.sub[2])
	if err != nil {
		return false, err
	}

	return x.Cmp(begin) >= 0 && x.Cmp(end) <= 0, nil
}

// inSet reports whether x equals any element. Elements after the first match
// are not evaluated.
func (n *Node) inSet() (bool, error) {
	x, err := n.sub[0].Eval()
	if err != nil {
		return false, err
	}

	for _, e := range n.sub[1:] {
		y, err := e.Eval()
		if err != nil {
			return false, err
		}

		if x.Cmp(y) == 0 {
			return true, nil
		}
	}

	return false, nil
}

// invoke rebinds the argument table to this call's expressions and runs the
// handler.
func (c *call) invoke() (*apd.Decimal, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i, expr := range c.bound {
		a := c.args.At(i)
		a.expr, a.rest = expr, nil
	}

	if c.fn.IsVariadic() {
		a := c.args.At(len(c.bound))
		a.expr, a.rest = nil, c.rest
	}

	d, err := c.fn.handler(c.args)
	if err != nil {
		if errors.Is(err, ErrEvaluate) {
			return nil, err
		}

		return nil, ErrEvaluate.With(slog.String("function", c.fn.name)).Wrap(err)
	}

	if d == nil {
		return nil, ErrNoResult.
			With(slog.String("function", c.fn.name)).
			Wrap(fmt.Errorf("%s returned nil", c.fn.name))
	}

	return d, nil
}
