package lang

import (
	"iter"
	"strconv"
	"strings"
	"sync"

	"github.com/cockroachdb/apd/v3"
)

// NodeKind identifies the variant of an expression [Node].
type NodeKind uint8

const (
	NodeLiteral NodeKind = iota
	NodeConstant
	NodeVariable
	NodeCall

	NodeNegate
	NodeNot

	NodeAdd
	NodeSub
	NodeMul
	NodeDiv
	NodeMod
	NodePow

	NodeEqual
	NodeNotEqual
	NodeLess
	NodeLessEqual
	NodeGreater
	NodeGreaterEqual

	NodeAnd
	NodeOr

	NodeIf
	NodeInRange
	NodeNotInRange
	NodeInSet
	NodeNotInSet
)

// operators holds the prefix rendering of each operator kind.
var operators = [...]string{
	NodeNegate:       "negate",
	NodeNot:          "not",
	NodeAdd:          "+",
	NodeSub:          "-",
	NodeMul:          "*",
	NodeDiv:          "/",
	NodeMod:          "mod",
	NodePow:          "^",
	NodeEqual:        "=",
	NodeNotEqual:     "!=",
	NodeLess:         "<",
	NodeLessEqual:    "<=",
	NodeGreater:      ">",
	NodeGreaterEqual: ">=",
	NodeAnd:          "and",
	NodeOr:           "or",
	NodeIf:           "if",
	NodeInRange:      "in",
	NodeNotInRange:   "not-in",
	NodeInSet:        "in",
	NodeNotInSet:     "not-in",
}

func (k NodeKind) String() string {
	switch k {
	case NodeLiteral:
		return "literal"
	case NodeConstant:
		return "constant"
	case NodeVariable:
		return "variable"
	case NodeCall:
		return "call"
	}

	if int(k) < len(operators) && operators[k] != "" {
		return operators[k]
	}

	return "NodeKind(" + strconv.Itoa(int(k)) + ")"
}

// Node is an immutable element of a compiled expression tree.
//
// Whether a node yields a percentage quantity is decided once, when the node
// is built, and never changes.
type Node struct {
	value   *apd.Decimal // NodeLiteral
	symbol  Symbol       // NodeConstant, NodeVariable
	call    *call        // NodeCall
	sub     []*Node
	kind    NodeKind
	percent bool
}

// call is the function-call payload of a [NodeCall] node. The argument table
// is the only mutable state in a tree; mu serializes its rebinding.
type call struct {
	fn    *Function
	exprs []*Node // arguments as written
	bound []*Node // one per fixed parameter, after defaults and eager evaluation
	rest  []*Node // variadic elements
	args  *Arguments
	mu    sync.Mutex
}

// Kind returns the node variant.
func (n *Node) Kind() NodeKind { return n.kind }

// IsPercentage reports whether the node yields a percentage quantity.
func (n *Node) IsPercentage() bool { return n.percent }

// Symbol returns the constant, variable, or function a reference or call
// node binds, or nil.
func (n *Node) Symbol() Symbol {
	if n.kind == NodeCall {
		return n.call.fn
	}

	return n.symbol
}

// Children returns the operand nodes in source order. For a call these are
// the argument expressions as written.
func (n *Node) Children() []*Node {
	if n.kind == NodeCall {
		return n.call.exprs
	}

	return n.sub
}

// Walk returns an iterator over n and its descendants in depth-first order.
func (n *Node) Walk() iter.Seq[*Node] {
	return func(yield func(*Node) bool) {
		n.walk(yield)
	}
}

func (n *Node) walk(yield func(*Node) bool) bool {
	if !yield(n) {
		return false
	}

	for _, c := range n.Children() {
		if !c.walk(yield) {
			return false
		}
	}

	return true
}

func newLiteral(value *apd.Decimal, percent bool) *Node {
	return &Node{kind: NodeLiteral, value: value, percent: percent}
}

func newConstantRef(c *Constant) *Node {
	return &Node{kind: NodeConstant, symbol: c}
}

func newVariableRef(v *Variable) *Node {
	return &Node{kind: NodeVariable, symbol: v, percent: v.IsPercentage()}
}

func newNegate(x *Node) *Node {
	return &Node{kind: NodeNegate, sub: []*Node{x}, percent: x.percent}
}

func newNot(x *Node) *Node {
	return &Node{kind: NodeNot, sub: []*Node{x}}
}

// newBinary builds an arithmetic, relational, or logical node. Arithmetic
// results carry the percentage flag of the left operand.
func newBinary(kind NodeKind, l, r *Node) *Node {
	n := &Node{kind: kind, sub: []*Node{l, r}}

	switch kind {
	case NodeAdd, NodeSub, NodeMul, NodeDiv, NodeMod, NodePow:
		n.percent = l.percent
	}

	return n
}

func newIf(cond, then, els *Node) *Node {
	return &Node{
		kind:    NodeIf,
		sub:     []*Node{cond, then, els},
		percent: then.percent && els.percent,
	}
}

func newInRange(x, begin, end *Node, negate bool) *Node {
	kind := NodeInRange
	if negate {
		kind = NodeNotInRange
	}

	return &Node{kind: kind, sub: []*Node{x, begin, end}}
}

func newInSet(x *Node, set []*Node, negate bool) *Node {
	kind := NodeInSet
	if negate {
		kind = NodeNotInSet
	}

	return &Node{kind: kind, sub: append([]*Node{x}, set...)}
}

func newCall(fn *Function, exprs, bound, rest []*Node) *Node {
	return &Node{
		kind:    NodeCall,
		percent: fn.percent,
		call: &call{
			fn:    fn,
			exprs: exprs,
			bound: bound,
			rest:  rest,
			args:  newArguments(fn.params),
		},
	}
}

// String renders the tree in parenthesized prefix form, e.g. "(+ 100 20%)".
func (n *Node) String() string {
	var b strings.Builder

	n.format(&b)

	return b.String()
}

func (n *Node) format(b *strings.Builder) {
	switch n.kind {
	case NodeLiteral:
		b.WriteString(formatLiteral(n.value, n.percent))

		return
	case NodeConstant, NodeVariable:
		b.WriteString(n.symbol.Name())

		return
	case NodeCall:
		b.WriteByte('(')
		b.WriteString(n.call.fn.name)

		for _, c := range n.call.exprs {
			b.WriteByte(' ')
			c.format(b)
		}

		b.WriteByte(')')

		return
	}

	b.WriteByte('(')
	b.WriteString(n.kind.String())

	operands := n.sub
	set := n.kind == NodeInSet || n.kind == NodeNotInSet

	if set {
		b.WriteByte(' ')
		operands[0].format(b)
		b.WriteString(" [")
		operands = operands[1:]
	}

	for i, c := range operands {
		if !set || i > 0 {
			b.WriteByte(' ')
		}

		c.format(b)
	}

	if set {
		b.WriteByte(']')
	}

	b.WriteByte(')')
}

// formatLiteral renders a percentage literal in the notation it was written
// in.
func formatLiteral(value *apd.Decimal, percent bool) string {
	if !percent {
		return Format(value)
	}

	return FormatPercent(value)
}
