package plotexpr

import (
	"strconv"
	"strings"
)

// node is a node in the abstract syntax tree of an expression.
type node struct {
	kind nodeKind

	// name is the source text of a number or the name of a function.
	name string
	// num is the value of a number.
	num float64
	fn  *Func

	left  *node
	right *node
}

type nodeKind int8

const (
	nodeNone nodeKind = iota

	nodeNum // value num, text name
	nodeVar // x

	nodeCall // fn is Func to call, right is link to nodeArg
	nodeArg  // eval left, right is link to next arg

	nodeNeg // evaluate left, then negate
	nodeNop // evaluate left
	nodeAdd // evaluate left, add right
	nodeSub // evaluate left, sub right
	nodeMul // evaluate left, mul right
	nodeDiv // evaluate left, div by right
	nodePow // evaluate left, exp by right

	nodeLess   // left < right
	nodeLessEq // left <= right
	nodeMore   // left > right
	nodeMoreEq // left >= right
	nodeEq     // left == right
	nodeNeq    // left != right

	nodeCond // evaluate left, then choose from right
	nodeAlt  // left is the then branch, right is the else branch
)

var nodeNames = [...]string{
	nodeNone:   "None",
	nodeNum:    "Num",
	nodeVar:    "Var",
	nodeCall:   "Call",
	nodeArg:    "Arg",
	nodeNeg:    "Neg",
	nodeNop:    "Nop",
	nodeAdd:    "Add",
	nodeSub:    "Sub",
	nodeMul:    "Mul",
	nodeDiv:    "Div",
	nodePow:    "Pow",
	nodeLess:   "Less",
	nodeLessEq: "LessEq",
	nodeMore:   "More",
	nodeMoreEq: "MoreEq",
	nodeEq:     "Eq",
	nodeNeq:    "Neq",
	nodeCond:   "Cond",
	nodeAlt:    "Alt",
}

func (k nodeKind) String() string {
	if k < 0 || int(k) >= len(nodeNames) {
		return "nodeKind(" + strconv.Itoa(int(k)) + ")"
	}
	return nodeNames[k]
}

// binsyms holds the operator text of each binary node kind.
var binsyms = [...]string{
	nodeAdd:    " + ",
	nodeSub:    " - ",
	nodeMul:    " * ",
	nodeDiv:    " / ",
	nodePow:    " ^ ",
	nodeLess:   " < ",
	nodeLessEq: " <= ",
	nodeMore:   " > ",
	nodeMoreEq: " >= ",
	nodeEq:     " == ",
	nodeNeq:    " != ",
}

func (n *node) String() string {
	var b strings.Builder
	n.fmt(&b)
	return b.String()
}

// fmt writes a fully parenthesized rendering of the node. The output parses
// back to the same tree.
func (n *node) fmt(b *strings.Builder) {
	b.WriteByte('(')
	defer b.WriteByte(')')
	switch n.kind {
	case nodeNone:
		// Invalid nodes use invalid characters.
		b.WriteByte('$')
		if n.left != nil {
			n.left.fmt(b)
		}
		b.WriteByte('#')
		if n.right != nil {
			n.right.fmt(b)
		}
		b.WriteByte('$')
	case nodeNum:
		b.WriteString(n.name)
	case nodeVar:
		b.WriteByte('x')
	case nodeCall:
		b.WriteString(n.name)
		n.fmtargs(b)
	case nodeArg:
		// Args usually only appear inside calls, which are handled by fmtargs.
		b.WriteByte(':')
		n.left.fmt(b)
		if n.right != nil {
			n.right.fmt(b)
		}
	case nodeNeg:
		b.WriteByte('-')
		n.left.fmt(b)
	case nodeNop:
		b.WriteByte('+')
		n.left.fmt(b)
	case nodeAdd, nodeSub, nodeMul, nodeDiv, nodePow,
		nodeLess, nodeLessEq, nodeMore, nodeMoreEq, nodeEq, nodeNeq:
		n.left.fmt(b)
		b.WriteString(binsyms[n.kind])
		n.right.fmt(b)
	case nodeCond:
		n.left.fmt(b)
		b.WriteString(" ? ")
		n.right.left.fmt(b)
		b.WriteString(" : ")
		n.right.right.fmt(b)
	default:
		panic("plotexpr: invalid node kind " + n.kind.String() + " after writing " + b.String())
	}
}

func (n *node) fmtargs(b *strings.Builder) {
	b.WriteByte('(')
	defer b.WriteByte(')')
	n = n.right
	for i := 0; n != nil; i++ {
		if n.kind != nodeArg {
			b.WriteString("***")
			n.fmt(b)
			return
		}
		if i > 0 {
			b.WriteString(", ")
		}
		n.left.fmt(b)
		n = n.right
	}
}
