package plotexpr

import "math"

// Eval evaluates the expression at x. If the expression is undefined at x,
// e.g. because it divides by zero, takes the log of a non-positive number, or
// overflows, then ok is false and y is 0. When ok is true, y is finite.
//
// Eval does not allocate and is safe to call concurrently.
func (e *Expr) Eval(x float64) (y float64, ok bool) {
	if !isFinite(x) {
		return 0, false
	}
	return e.n.eval(x)
}

// EvalNaN is like Eval, but returns NaN where the expression is undefined.
func (e *Expr) EvalNaN(x float64) float64 {
	y, ok := e.Eval(x)
	if !ok {
		return math.NaN()
	}
	return y
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// finite pairs v with whether it is finite. Non-finite values become 0.
func finite(v float64) (float64, bool) {
	if !isFinite(v) {
		return 0, false
	}
	return v, true
}

func truth(b bool) (float64, bool) {
	if b {
		return 1, true
	}
	return 0, true
}

// eval computes the node's value. Undefined values propagate up without
// evaluating the remaining siblings.
func (n *node) eval(x float64) (float64, bool) {
	switch n.kind {
	case nodeNum:
		return finite(n.num)
	case nodeVar:
		return x, true
	case nodeCall:
		a := n.right
		u, ok := a.left.eval(x)
		if !ok {
			return 0, false
		}
		if a.right == nil {
			return finite(n.fn.f1(u))
		}
		v, ok := a.right.left.eval(x)
		if !ok {
			return 0, false
		}
		return finite(n.fn.f2(u, v))
	case nodeNone, nodeArg, nodeAlt:
		panic("plotexpr: eval on " + n.kind.String())
	case nodeNeg:
		v, ok := n.left.eval(x)
		return -v, ok
	case nodeNop:
		return n.left.eval(x)
	case nodeCond:
		c, ok := n.left.eval(x)
		if !ok {
			return 0, false
		}
		if c != 0 {
			return n.right.left.eval(x)
		}
		return n.right.right.eval(x)
	}
	l, ok := n.left.eval(x)
	if !ok {
		return 0, false
	}
	r, ok := n.right.eval(x)
	if !ok {
		return 0, false
	}
	switch n.kind {
	case nodeAdd:
		return finite(l + r)
	case nodeSub:
		return finite(l - r)
	case nodeMul:
		return finite(l * r)
	case nodeDiv:
		// Division by zero gives ±Inf or NaN, which are undefined.
		return finite(l / r)
	case nodePow:
		// Pow gives NaN for negative bases with non-integer exponents.
		return finite(math.Pow(l, r))
	case nodeLess:
		return truth(l < r)
	case nodeLessEq:
		return truth(l <= r)
	case nodeMore:
		return truth(l > r)
	case nodeMoreEq:
		return truth(l >= r)
	case nodeEq:
		return truth(l == r)
	case nodeNeq:
		return truth(l != r)
	default:
		panic("plotexpr: invalid AST node " + n.kind.String())
	}
}
