package plotexpr

import (
	"errors"
	"math"
	"math/big"
	"strconv"

	"github.com/zephyrtronium/bigfloat"
	"golang.org/x/exp/slices"
)

// Func is a function from reals to reals in the fixed function table.
// Each Func has a float64 implementation used for plotting and optionally an
// arbitrary-precision one used by Context.
type Func struct {
	name string

	// f1 and f2 are the implementations for one and two arguments. A nil
	// implementation means the function can't be called with that many.
	f1 func(x float64) float64
	f2 func(x, y float64) float64

	// p1 and p2 are the arbitrary-precision implementations. They must set
	// out to their result to the precision of out. If called on an argument
	// outside the function's domain, they panic with a *DomainError. If nil
	// while the float64 implementation is not, the function is evaluated in
	// float64 and widened.
	p1 func(out, in *big.Float) *big.Float
	p2 func(out, x, y *big.Float) *big.Float
}

// Name returns the name of the function as it appears in expressions.
func (f *Func) Name() string {
	return f.name
}

// CanCall returns whether the function can be called with n arguments.
func (f *Func) CanCall(n int) bool {
	switch n {
	case 1:
		return f.f1 != nil
	case 2:
		return f.f2 != nil
	default:
		return false
	}
}

// arity describes the argument counts the function accepts.
func (f *Func) arity() string {
	switch {
	case f.f1 != nil && f.f2 != nil:
		return "1 or 2"
	case f.f2 != nil:
		return "2"
	default:
		return "1"
	}
}

var globalfuncs = map[string]*Func{
	"sin": {name: "sin", f1: math.Sin},
	"cos": {name: "cos", f1: math.Cos},
	"tan": {name: "tan", f1: math.Tan},

	"sinh": {name: "sinh", f1: math.Sinh, p1: bigSinh},
	"cosh": {name: "cosh", f1: math.Cosh, p1: bigCosh},
	"tanh": {name: "tanh", f1: math.Tanh, p1: bigTanh},

	"sqrt": {name: "sqrt", f1: math.Sqrt, p1: bigSqrt},
	"cbrt": {name: "cbrt", f1: math.Cbrt},

	"abs":      {name: "abs", f1: math.Abs, p1: (*big.Float).Abs},
	"sign":     {name: "sign", f1: sign, p1: bigSign},
	"floor":    {name: "floor", f1: math.Floor, p1: bigFloor},
	"ceil":     {name: "ceil", f1: math.Ceil, p1: bigCeil},
	"unitStep": {name: "unitStep", f1: unitStep, p1: bigUnitStep},

	"log": {name: "log", f1: math.Log, f2: logBase, p1: bigLog, p2: bigLogBase},
}

// Lookup returns the table function with the given name, or nil if there is
// none.
func Lookup(name string) *Func {
	return globalfuncs[name]
}

// Funcs returns the names of all functions in sorted order.
func Funcs() []string {
	names := make([]string, 0, len(globalfuncs))
	for k := range globalfuncs {
		names = append(names, k)
	}
	slices.Sort(names)
	return names
}

func sign(x float64) float64 {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	default:
		return 0
	}
}

func unitStep(x float64) float64 {
	if x < 0 {
		return 0
	}
	return 1
}

// logBase computes log(x) in base b. Log2 is exact for powers of two, so
// log(8, 2) is exactly 3. Bases that are not positive or are 1 give NaN.
func logBase(x, b float64) float64 {
	if b <= 0 || b == 1 {
		return math.NaN()
	}
	return math.Log2(x) / math.Log2(b)
}

func bigSqrt(out, in *big.Float) *big.Float {
	if in.Sign() < 0 {
		panic(&DomainError{X: new(big.Float).Copy(in), Arg: 1, Func: "sqrt"})
	}
	return out.Sqrt(in)
}

func bigLog(out, in *big.Float) *big.Float {
	if in.Sign() <= 0 {
		panic(&DomainError{X: new(big.Float).Copy(in), Arg: 1, Func: "log"})
	}
	return bigfloat.Log(out, in)
}

func bigLogBase(out, x, b *big.Float) *big.Float {
	if x.Sign() <= 0 {
		panic(&DomainError{X: new(big.Float).Copy(x), Arg: 1, Func: "log"})
	}
	one := big.NewFloat(1)
	if b.Sign() <= 0 || b.Cmp(one) == 0 {
		panic(&DomainError{X: new(big.Float).Copy(b), Arg: 2, Func: "log"})
	}
	d := new(big.Float).SetPrec(out.Prec())
	bigfloat.Log(d, b)
	bigfloat.Log(out, x)
	return out.Quo(out, d)
}

// expPair sets p to e^x and q to e^-x.
func expPair(p, q, x *big.Float) {
	bigfloat.Exp(p, x)
	q.SetPrec(p.Prec()).SetInt64(1)
	q.Quo(q, p)
}

func bigSinh(out, in *big.Float) *big.Float {
	q := new(big.Float)
	expPair(out, q, in)
	out.Sub(out, q)
	return out.Quo(out, big.NewFloat(2))
}

func bigCosh(out, in *big.Float) *big.Float {
	q := new(big.Float)
	expPair(out, q, in)
	out.Add(out, q)
	return out.Quo(out, big.NewFloat(2))
}

func bigTanh(out, in *big.Float) *big.Float {
	// tanh x = (e^2x - 1) / (e^2x + 1), which is exactly ±1 once e^2x
	// outgrows the precision.
	x2 := new(big.Float).SetPrec(out.Prec()).Add(in, in)
	bigfloat.Exp(out, x2)
	one := big.NewFloat(1)
	d := new(big.Float).SetPrec(out.Prec()).Add(out, one)
	out.Sub(out, one)
	return out.Quo(out, d)
}

func bigSign(out, in *big.Float) *big.Float {
	return out.SetInt64(int64(in.Sign()))
}

func bigUnitStep(out, in *big.Float) *big.Float {
	if in.Sign() < 0 {
		return out.SetInt64(0)
	}
	return out.SetInt64(1)
}

func bigFloor(out, in *big.Float) *big.Float {
	if in.IsInf() {
		return out.Set(in)
	}
	i, acc := in.Int(nil)
	if acc == big.Above {
		// Truncation rounded a negative value up.
		i.Sub(i, big.NewInt(1))
	}
	return out.SetInt(i)
}

func bigCeil(out, in *big.Float) *big.Float {
	if in.IsInf() {
		return out.Set(in)
	}
	i, acc := in.Int(nil)
	if acc == big.Below {
		i.Add(i, big.NewInt(1))
	}
	return out.SetInt(i)
}

// callPrec evaluates the function in arbitrary precision, setting r to the
// result. invoc has a length for which CanCall returned true.
func (f *Func) callPrec(prec uint, invoc []*big.Float, r *big.Float) (err error) {
	defer func() {
		p := recover()
		if p == nil {
			return
		}
		err = p.(error) // panic if not error
		if errors.As(err, new(*DomainError)) || errors.As(err, new(big.ErrNaN)) {
			return
		}
		panic(err)
	}()
	r.SetPrec(prec)
	switch len(invoc) {
	case 1:
		if f.p1 != nil {
			f.p1(r, invoc[0])
			return nil
		}
		x, _ := invoc[0].Float64()
		return widen(r, f.f1(x), f.name, invoc[0])
	case 2:
		if f.p2 != nil {
			f.p2(r, invoc[0], invoc[1])
			return nil
		}
		x, _ := invoc[0].Float64()
		y, _ := invoc[1].Float64()
		return widen(r, f.f2(x, y), f.name, invoc[0])
	default:
		panic("plotexpr: call of " + f.name + " with " + strconv.Itoa(len(invoc)) + " arguments")
	}
}

// widen sets r to a float64 result, or returns a *DomainError if the result
// is not finite.
func widen(r *big.Float, y float64, name string, arg *big.Float) error {
	if math.IsNaN(y) || math.IsInf(y, 0) {
		return &DomainError{X: new(big.Float).Copy(arg), Arg: 1, Func: name}
	}
	r.SetFloat64(y)
	return nil
}

// DomainError is an error returned by precise evaluation when a function or
// operator is applied to arguments outside its domain. DomainError unwraps to
// big.ErrNaN.
type DomainError struct {
	// X is the out-of-domain argument.
	X *big.Float
	// Arg is the 1-based index of the argument.
	Arg int
	// Func is a name identifying the function or operator.
	Func string
}

func (err *DomainError) Error() string {
	r := err.X.String() + " outside domain"
	if err.Func != "" {
		r += " of " + err.Func
	}
	if err.Arg > 0 {
		r += " (argument " + strconv.Itoa(err.Arg) + ")"
	}
	return r
}

func (err *DomainError) Unwrap() error {
	return big.ErrNaN{}
}
