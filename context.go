package plotexpr

import (
	"errors"
	"math/big"
	"strconv"
	"strings"

	"github.com/zephyrtronium/bigfloat"
)

// ErrNoX is the error from evaluating an expression that uses x with a
// Context that has no value for x.
var ErrNoX = errors.New("plotexpr: x is not set")

// Context is a context for evaluating expressions in arbitrary precision.
// It is not safe to use a Context concurrently.
//
// Most functions are computed to the context's precision. sin, cos, tan, and
// cbrt are computed in float64 and widened.
type Context struct {
	stack []*big.Float
	nums  map[string]*big.Float
	x     *big.Float
	prec  uint
	err   error
}

// ContextOption is an option used when creating a context.
type ContextOption interface {
	ctxOption()
}

type (
	xopt struct {
		val *big.Float
	}
	precopt uint
)

func (xopt) ctxOption()    {}
func (precopt) ctxOption() {}

// SetX sets the value of x in the context.
func SetX(val *big.Float) ContextOption {
	return xopt{val}
}

// Prec sets the precision of calculations.
func Prec(prec uint) ContextOption {
	return precopt(prec)
}

// NewContext creates a new evaluation context. If no precision is given, the
// default is 64.
func NewContext(opts ...ContextOption) *Context {
	ctx := Context{nums: make(map[string]*big.Float), prec: 64}
	return ctx.Clone(opts...)
}

// Eval evaluates an expression and returns the result. If an error occurs,
// e.g. x is not set or an argument to a function is outside the function's
// domain, then the result is nil and ctx.Err returns the error.
func (ctx *Context) Eval(e *Expr) *big.Float {
	if len(ctx.stack) == 1 {
		// Keep the previous result valid for the caller.
		ctx.stack[0] = new(big.Float).SetPrec(ctx.prec)
	}
	ctx.stack = ctx.stack[:0]
	err := ctx.evalnode(e.n)
	ctx.err = err
	if err != nil {
		ctx.stack = ctx.stack[:0]
		return nil
	}
	return ctx.Result()
}

// evalnode evaluates n, converting arithmetic panics like Inf - Inf into
// errors.
func (ctx *Context) evalnode(n *node) (err error) {
	defer func() {
		p := recover()
		if p == nil {
			return
		}
		nan, ok := p.(big.ErrNaN)
		if !ok {
			panic(p)
		}
		err = nan
	}()
	return n.evalPrec(ctx)
}

// Result returns the result obtained after evaluating an expression. Panics if
// ctx has not been used to evaluate an expression. Returns nil if an error
// occurred during evaluation.
func (ctx *Context) Result() *big.Float {
	if ctx.err != nil {
		return nil
	}
	switch len(ctx.stack) {
	case 0:
		panic("plotexpr: Context.Result called before evaluating any expression")
	case 1:
		return ctx.stack[0]
	default:
		panic("plotexpr: inconsistent stack: " + strconv.Itoa(len(ctx.stack)) + " items (bad AST?)")
	}
}

// Err returns the error that occurred while evaluating the last expression
// with ctx, if any.
func (ctx *Context) Err() error {
	return ctx.err
}

// Set sets the value of x. Returns ctx for chaining.
func (ctx *Context) Set(x *big.Float) *Context {
	ctx.x = new(big.Float).SetPrec(ctx.prec).Set(x)
	return ctx
}

// X returns a copy of the value of x, or nil if it is not set.
func (ctx *Context) X() *big.Float {
	if ctx.x == nil {
		return nil
	}
	return new(big.Float).Copy(ctx.x)
}

// Prec returns the precision to which values are computed in the context.
func (ctx *Context) Prec() uint {
	return ctx.prec
}

// Clone creates a copy of a context and applies options to it. The returned
// context has no Result and is safe to use to evaluate an expression.
func (ctx *Context) Clone(opts ...ContextOption) *Context {
	n := Context{
		stack: make([]*big.Float, 0, cap(ctx.stack)),
		nums:  make(map[string]*big.Float, len(ctx.nums)),
		prec:  ctx.prec,
	}
	// First, check for a precision setting. Loop backward so we apply the last
	// precision.
	for i := len(opts) - 1; i >= 0; i-- {
		if p, ok := opts[i].(precopt); ok {
			n.prec = uint(p)
			break
		}
	}
	// Copy numbers only if the new precision is no higher than the old, so
	// that we always use the precision we need.
	if n.prec <= ctx.prec {
		for k, v := range ctx.nums {
			n.nums[k] = new(big.Float).SetPrec(n.prec).Set(v)
		}
	}
	if ctx.x != nil {
		n.x = new(big.Float).SetPrec(n.prec).Set(ctx.x)
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		switch opt := opt.(type) {
		case xopt:
			n.x = new(big.Float).SetPrec(n.prec).Set(opt.val)
		case precopt:
			// Already done. Do nothing.
		default:
			panic("plotexpr: unknown option type")
		}
	}
	return &n
}

// push ensures a settable value on the stack.
func (ctx *Context) push() *big.Float {
	if len(ctx.stack) < cap(ctx.stack) {
		ctx.stack = ctx.stack[:len(ctx.stack)+1]
		if ctx.stack[len(ctx.stack)-1] == nil {
			ctx.stack[len(ctx.stack)-1] = new(big.Float).SetPrec(ctx.prec)
		}
	} else {
		ctx.stack = append(ctx.stack, new(big.Float).SetPrec(ctx.prec))
	}
	return ctx.stack[len(ctx.stack)-1]
}

// pop removes the top from the stack and returns it. The returned value may be
// modified by future node evaluations.
func (ctx *Context) pop() *big.Float {
	r := ctx.stack[len(ctx.stack)-1]
	ctx.stack = ctx.stack[:len(ctx.stack)-1]
	return r
}

// top is a shortcut to get the top element of the stack.
func (ctx *Context) top() *big.Float {
	return ctx.stack[len(ctx.stack)-1]
}

// num gets a possibly cached number from its text.
func (ctx *Context) num(s string) *big.Float {
	if r := ctx.nums[s]; r != nil {
		return r
	}
	r, _, err := new(big.Float).SetPrec(ctx.prec).Parse(s, 10)
	switch {
	case err == nil: // do nothing
	case err.Error() == "exponent overflow",
		strings.HasSuffix(err.Error(), ": value out of range"):
		// There isn't realistically any better way to detect this error.
		// Number literals are never negative.
		r = new(big.Float).SetInf(false)
	default:
		panic("plotexpr: invalid number: " + s + " (" + err.Error() + ")")
	}
	ctx.nums[s] = r
	return r
}

// evalPrec pushes the node's value to the context's stack.
func (n *node) evalPrec(ctx *Context) error {
	switch n.kind {
	case nodeNum:
		ctx.push().Set(ctx.num(n.name))
	case nodeVar:
		if ctx.x == nil {
			return ErrNoX
		}
		ctx.push().Set(ctx.x)
	case nodeCall:
		r := ctx.push()
		k := len(ctx.stack)
		for l := n.right; l != nil; l = l.right {
			if err := l.left.evalPrec(ctx); err != nil {
				return err
			}
		}
		invoc := ctx.stack[k:len(ctx.stack):len(ctx.stack)]
		if err := n.fn.callPrec(ctx.prec, invoc, r); err != nil {
			return err
		}
		ctx.stack = ctx.stack[:k]
	case nodeNone, nodeArg, nodeAlt:
		panic("plotexpr: evalPrec on " + n.kind.String())
	case nodeNeg:
		if err := n.left.evalPrec(ctx); err != nil {
			return err
		}
		v := ctx.top()
		v.Neg(v)
	case nodeNop:
		if err := n.left.evalPrec(ctx); err != nil {
			return err
		}
	case nodeCond:
		if err := n.left.evalPrec(ctx); err != nil {
			return err
		}
		c := ctx.pop()
		if c.Sign() != 0 {
			return n.right.left.evalPrec(ctx)
		}
		return n.right.right.evalPrec(ctx)
	default:
		if err := n.left.evalPrec(ctx); err != nil {
			return err
		}
		if err := n.right.evalPrec(ctx); err != nil {
			return err
		}
		r := ctx.pop()
		l := ctx.top()
		return binPrec(n.kind, l, r)
	}
	return nil
}

// binPrec sets l to the result of a binary operation on l and r.
func binPrec(kind nodeKind, l, r *big.Float) error {
	switch kind {
	case nodeAdd:
		l.Add(l, r)
	case nodeSub:
		l.Sub(l, r)
	case nodeMul:
		l.Mul(l, r)
	case nodeDiv:
		if r.Sign() == 0 {
			return &DomainError{X: new(big.Float).Copy(r), Arg: 2, Func: "/"}
		}
		l.Quo(l, r)
	case nodePow:
		return powPrec(l, r)
	case nodeLess:
		setTruth(l, l.Cmp(r) < 0)
	case nodeLessEq:
		setTruth(l, l.Cmp(r) <= 0)
	case nodeMore:
		setTruth(l, l.Cmp(r) > 0)
	case nodeMoreEq:
		setTruth(l, l.Cmp(r) >= 0)
	case nodeEq:
		setTruth(l, l.Cmp(r) == 0)
	case nodeNeq:
		setTruth(l, l.Cmp(r) != 0)
	default:
		panic("plotexpr: invalid AST node " + kind.String())
	}
	return nil
}

func setTruth(z *big.Float, b bool) {
	if b {
		z.SetInt64(1)
	} else {
		z.SetInt64(0)
	}
}

// powPrec sets l to l^r. Negative bases are allowed only with integer
// exponents.
func powPrec(l, r *big.Float) error {
	switch {
	case r.Sign() == 0:
		l.SetInt64(1)
	case l.Sign() == 0:
		if r.Sign() < 0 {
			return &DomainError{X: new(big.Float).Copy(l), Arg: 1, Func: "^"}
		}
		l.SetInt64(0)
	case l.Sign() < 0:
		if !r.IsInt() {
			return &DomainError{X: new(big.Float).Copy(l), Arg: 1, Func: "^"}
		}
		i, _ := r.Int(nil)
		l.Neg(l)
		l.Set(bigfloat.Pow(l, l, r))
		if i.Bit(0) == 1 {
			l.Neg(l)
		}
	default:
		l.Set(bigfloat.Pow(l, l, r))
	}
	return nil
}

// EvalString is a shortcut to compile an expression and evaluate it with a
// new context.
func EvalString(src string, opts ...ContextOption) (*big.Float, error) {
	ctx := NewContext(opts...)
	a, err := Compile(src)
	if err != nil {
		return nil, err
	}
	ctx.Eval(a)
	return ctx.Result(), ctx.Err()
}
