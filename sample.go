package plotexpr

import "gonum.org/v1/gonum/floats"

// Point is a sample of an expression.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Run is a sequence of samples with no undefined point between them. A
// renderer draws each run as one unbroken curve.
type Run []Point

// Sample evaluates e at the n+1 points lo + i*(hi-lo)/n for i from 0 to n and
// splits the results into runs at undefined points. If n < 1, it is taken as
// 1. If lo or hi is not finite, the result is nil.
//
// Runs of a single point are kept.
func Sample(e *Expr, lo, hi float64, n int) []Run {
	if !isFinite(lo) || !isFinite(hi) {
		return nil
	}
	if n < 1 {
		n = 1
	}
	w := hi - lo
	var runs []Run
	var cur Run
	for i := 0; i <= n; i++ {
		// Multiply first. i*w/n is exact at the middle of [-a, a].
		x := lo + float64(i)*w/float64(n)
		switch {
		case i == n:
			x = hi
		case !isFinite(w):
			// The interval is wider than the largest float.
			t := float64(i) / float64(n)
			x = lo*(1-t) + hi*t
		}
		y, ok := e.Eval(x)
		if !ok {
			if len(cur) != 0 {
				runs = append(runs, cur)
				cur = nil
			}
			continue
		}
		cur = append(cur, Point{X: x, Y: y})
	}
	if len(cur) != 0 {
		runs = append(runs, cur)
	}
	return runs
}

// Sample is a shortcut for Sample(e, lo, hi, n).
func (e *Expr) Sample(lo, hi float64, n int) []Run {
	return Sample(e, lo, hi, n)
}

// Bounds returns the least and greatest y values among runs. ok is false if
// there are no points.
func Bounds(runs []Run) (min, max float64, ok bool) {
	var ys []float64
	for _, r := range runs {
		for _, p := range r {
			ys = append(ys, p.Y)
		}
	}
	if len(ys) == 0 {
		return 0, 0, false
	}
	return floats.Min(ys), floats.Max(ys), true
}
