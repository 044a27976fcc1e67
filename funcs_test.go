package plotexpr

import (
	"errors"
	"math"
	"math/big"
	"reflect"
	"strings"
	"testing"
)

func TestFuncs(t *testing.T) {
	want := []string{
		"abs", "cbrt", "ceil", "cos", "cosh", "floor", "log",
		"sign", "sin", "sinh", "sqrt", "tan", "tanh", "unitStep",
	}
	if got := Funcs(); !reflect.DeepEqual(got, want) {
		t.Errorf("wrong functions:\n\twant %q\n\tgot  %q", want, got)
	}
	for _, name := range want {
		f := Lookup(name)
		if f == nil {
			t.Errorf("no function %q", name)
			continue
		}
		if f.Name() != name {
			t.Errorf("%q has name %q", name, f.Name())
		}
	}
	if Lookup("x") != nil {
		t.Error("x is a function")
	}
}

func TestCanCall(t *testing.T) {
	cases := []struct {
		name string
		n    []int
	}{
		{"sin", []int{1}},
		{"sqrt", []int{1}},
		{"unitStep", []int{1}},
		{"log", []int{1, 2}},
	}
	for _, c := range cases {
		f := Lookup(c.name)
		for n := 0; n <= 3; n++ {
			want := false
			for _, k := range c.n {
				want = want || k == n
			}
			if got := f.CanCall(n); got != want {
				t.Errorf("%s.CanCall(%d): want %t, got %t", c.name, n, want, got)
			}
		}
	}
}

func TestFuncsParse(t *testing.T) {
	for _, name := range Funcs() {
		a, err := Parse(strings.NewReader(name + "(x)"))
		if err != nil {
			t.Errorf("%s(x) failed to parse: %v", name, err)
			continue
		}
		if !a.n.haskind(nodeCall) {
			t.Errorf("%s(x) parsed to %v with no call", name, a.n)
		}
	}
}

func TestPreciseMatchesFloat(t *testing.T) {
	xs := []float64{-2.5, -1, -0.3, 0, 0.3, 1, 2.5}
	for _, name := range Funcs() {
		f := Lookup(name)
		for _, x := range xs {
			want := f.f1(x)
			r := new(big.Float)
			err := f.callPrec(64, []*big.Float{big.NewFloat(x)}, r)
			if math.IsNaN(want) || math.IsInf(want, 0) {
				if !errors.As(err, new(*DomainError)) {
					t.Errorf("%s(%g): want DomainError, got %v with result %v", name, x, err, r)
				}
				continue
			}
			if err != nil {
				t.Errorf("%s(%g): unexpected error %v", name, x, err)
				continue
			}
			got, _ := r.Float64()
			if math.Abs(got-want) > 1e-14*math.Max(1, math.Abs(want)) {
				t.Errorf("%s(%g): want %g, got %g", name, x, want, got)
			}
		}
	}
}

func TestPreciseLogBase(t *testing.T) {
	cases := []struct {
		x, b float64
		arg  int
	}{
		{8, 2, 0},
		{100, 10, 0},
		{0.5, 3, 0},
		{3, 0.5, 0},
		{-1, 2, 1},
		{0, 2, 1},
		{2, 1, 2},
		{2, -3, 2},
		{2, 0, 2},
	}
	f := Lookup("log")
	for _, c := range cases {
		r := new(big.Float)
		err := f.callPrec(64, []*big.Float{big.NewFloat(c.x), big.NewFloat(c.b)}, r)
		if c.arg != 0 {
			var derr *DomainError
			if !errors.As(err, &derr) {
				t.Errorf("log(%g, %g): want DomainError, got %v", c.x, c.b, err)
				continue
			}
			if derr.Arg != c.arg {
				t.Errorf("log(%g, %g): want error on argument %d, got %d", c.x, c.b, c.arg, derr.Arg)
			}
			continue
		}
		if err != nil {
			t.Errorf("log(%g, %g): unexpected error %v", c.x, c.b, err)
			continue
		}
		want := logBase(c.x, c.b)
		got, _ := r.Float64()
		if math.Abs(got-want) > 1e-14*math.Max(1, math.Abs(want)) {
			t.Errorf("log(%g, %g): want %g, got %g", c.x, c.b, want, got)
		}
	}
}

func TestDomainError(t *testing.T) {
	err := error(&DomainError{X: big.NewFloat(-1), Arg: 1, Func: "sqrt"})
	if got, want := err.Error(), "-1 outside domain of sqrt (argument 1)"; got != want {
		t.Errorf("wrong message: want %q, got %q", want, got)
	}
	if !errors.As(err, new(big.ErrNaN)) {
		t.Error("DomainError does not unwrap to big.ErrNaN")
	}
}
