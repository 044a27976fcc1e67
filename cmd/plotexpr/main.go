package main

import (
	"bufio"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"math/big"
	"os"
	"strconv"
	"strings"
	"unicode"

	"github.com/zephyrtronium/plotexpr"
)

func main() {
	log.SetFlags(0)
	var (
		inname, cfgname, span string
		at                    []string
		nl, echo, check, js   bool
		prec                  int
	)
	flag.StringVar(&inname, "in", "", "input file (default stdin if no args given)")
	flag.StringVar(&cfgname, "config", "", "YAML plot description to sample instead of expressions")
	flag.StringVar(&span, "sample", "", "sample expressions over `lo:hi:n`")
	flag.Func("at", "evaluate expressions at x = `value` (any number of times)", func(s string) error {
		at = append(at, s)
		return nil
	})
	flag.IntVar(&prec, "p", 0, "evaluate -at values with this many bits of precision instead of float64")
	flag.BoolVar(&nl, "n", false, "parse separate input lines as separate expressions")
	flag.BoolVar(&check, "check", false, "only report whether each expression is valid")
	flag.BoolVar(&js, "json", false, "print samples as JSON")
	flag.BoolVar(&echo, "echo", false, "print parse trees")
	flag.Parse()
	if prec < 0 {
		log.Fatalf("precision (%d) must be positive", prec)
	}

	out := bufio.NewWriter(os.Stdout)
	defer out.Flush()

	if cfgname != "" {
		cfg, err := loadConfig(cfgname)
		if err != nil {
			log.Fatal(err)
		}
		plots, err := cfg.compile()
		if err != nil {
			log.Fatal(err)
		}
		curves := make([]curve, 0, len(plots))
		for _, p := range plots {
			runs := p.expr.Sample(cfg.Interval.Lo, cfg.Interval.Hi, cfg.Samples)
			curves = append(curves, curve{Name: p.name, Expression: p.text, Runs: runs})
		}
		if err := writeCurves(out, curves, js); err != nil {
			log.Fatal(err)
		}
		return
	}

	srcs, err := inputs(inname, flag.Args(), nl)
	if err != nil {
		log.Fatal(err)
	}

	if check {
		bad := false
		for _, src := range srcs {
			if src.err != nil {
				fmt.Fprintf(out, "%s: %v\n", src.text, src.err)
				bad = true
				continue
			}
			fmt.Fprintf(out, "%s: ok\n", src.text)
		}
		if bad {
			out.Flush()
			os.Exit(1)
		}
		return
	}

	var lo, hi float64
	var n int
	if span != "" {
		lo, hi, n, err = parseSpan(span)
		if err != nil {
			log.Fatal(err)
		}
	}
	var xs []*big.Float
	for _, s := range at {
		opts := []plotexpr.ContextOption{}
		if prec > 0 {
			opts = append(opts, plotexpr.Prec(uint(prec)))
		}
		v, err := plotexpr.EvalString(s, opts...)
		if err != nil {
			log.Fatalf("evaluating -at %s: %v", s, err)
		}
		xs = append(xs, v)
	}

	var curves []curve
	for _, src := range srcs {
		a := src.expr
		if src.err != nil {
			log.Fatal(src.err)
		}
		if echo {
			fmt.Fprintln(out, a)
		}
		for _, v := range values(a, xs, span != "", prec) {
			fmt.Fprintln(out, v)
		}
		if span != "" {
			curves = append(curves, curve{Name: src.text, Expression: src.text, Runs: a.Sample(lo, hi, n)})
		}
	}
	if err := writeCurves(out, curves, js); err != nil {
		log.Fatal(err)
	}
}

// source is one expression from the input.
type source struct {
	text string
	expr *plotexpr.Expr
	err  error
}

// inputs compiles the expressions from the input file and arguments. Syntax
// errors are kept with their sources; only I/O errors are returned.
func inputs(inname string, args []string, lines bool) ([]source, error) {
	var r []source
	f, err := infile(inname, len(args) == 0)
	if err != nil {
		return nil, err
	}
	if f != nil {
		defer f.Close()
		if lines {
			r, err = readLines(bufio.NewReader(f))
			if err != nil {
				return nil, err
			}
		} else {
			b, err := io.ReadAll(f)
			if err != nil {
				return nil, err
			}
			r = append(r, compile(string(b)))
		}
	}
	for _, arg := range args {
		r = append(r, compile(arg))
	}
	return r, nil
}

func compile(text string) source {
	a, err := plotexpr.Compile(text)
	return source{text: text, expr: a, err: err}
}

// readLines compiles one expression per line of in. An expression continues
// onto the next line after an operator or open bracket. Blank lines are
// skipped. A syntax error consumes the rest of its line.
func readLines(in *bufio.Reader) ([]source, error) {
	var r []source
	rec := &recorder{src: in}
	for {
		// Skip blank lines and check whether we're done with the input.
		c, _, err := in.ReadRune()
		for err == nil && unicode.IsSpace(c) {
			c, _, err = in.ReadRune()
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return r, nil
			}
			return nil, err
		}
		in.UnreadRune()
		a, err := plotexpr.CompileFrom(rec, plotexpr.StopOn('\n'))
		var serr plotexpr.SyntaxError
		if err != nil && !errors.As(err, &serr) {
			return nil, err
		}
		if err != nil && !strings.HasSuffix(rec.String(), "\n") {
			if err := rec.skipLine(); err != nil {
				return nil, err
			}
		}
		r = append(r, source{text: strings.TrimSpace(rec.take()), expr: a, err: err})
	}
}

// recorder is a RuneScanner that keeps the text read through it.
type recorder struct {
	src  io.RuneScanner
	buf  []rune
	read bool
}

func (r *recorder) ReadRune() (rune, int, error) {
	c, sz, err := r.src.ReadRune()
	r.read = err == nil
	if r.read {
		r.buf = append(r.buf, c)
	}
	return c, sz, err
}

func (r *recorder) UnreadRune() error {
	if err := r.src.UnreadRune(); err != nil {
		return err
	}
	if r.read {
		r.buf = r.buf[:len(r.buf)-1]
		r.read = false
	}
	return nil
}

func (r *recorder) String() string {
	return string(r.buf)
}

// skipLine reads through the next newline or the end of input.
func (r *recorder) skipLine() error {
	for {
		c, _, err := r.ReadRune()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		if c == '\n' {
			return nil
		}
	}
}

// take returns the recorded text and starts a new recording.
func (r *recorder) take() string {
	s := string(r.buf)
	r.buf = r.buf[:0]
	r.read = false
	return s
}

func infile(inname string, std bool) (io.ReadCloser, error) {
	switch {
	case inname != "" && inname != "-":
		return os.Open(inname)
	case inname == "-", std:
		return io.NopCloser(os.Stdin), nil
	}
	return nil, nil
}

// parseSpan parses a sampling interval of the form lo:hi:n. The bounds may be
// constant expressions.
func parseSpan(s string) (lo, hi float64, n int, err error) {
	f := strings.Split(s, ":")
	if len(f) != 3 {
		return 0, 0, 0, fmt.Errorf("sample interval must be lo:hi:n, not %q", s)
	}
	bound := func(t string) (float64, error) {
		v, err := plotexpr.EvalString(t)
		if err != nil {
			return 0, fmt.Errorf("sample bound %q: %w", t, err)
		}
		r, _ := v.Float64()
		return r, nil
	}
	if lo, err = bound(f[0]); err != nil {
		return 0, 0, 0, err
	}
	if hi, err = bound(f[1]); err != nil {
		return 0, 0, 0, err
	}
	if n, err = strconv.Atoi(strings.TrimSpace(f[2])); err != nil {
		return 0, 0, 0, fmt.Errorf("sample count: %w", err)
	}
	if n < 1 {
		return 0, 0, 0, fmt.Errorf("sample count (%d) must be positive", n)
	}
	return lo, hi, n, nil
}

// evalAt formats the value of a at x. With a positive precision, the
// expression is evaluated in a precise context.
func evalAt(a *plotexpr.Expr, x *big.Float, prec int) string {
	if prec > 0 {
		ctx := plotexpr.NewContext(plotexpr.Prec(uint(prec)), plotexpr.SetX(x))
		r := ctx.Eval(a)
		if r == nil {
			return "undefined: " + ctx.Err().Error()
		}
		return r.Text('g', -1)
	}
	v, _ := x.Float64()
	y, ok := a.Eval(v)
	if !ok {
		return "undefined"
	}
	return strconv.FormatFloat(y, 'g', -1, 64)
}

// values formats the value of a at each of xs. A constant expression with
// nothing else to show is evaluated once, like a calculator.
func values(a *plotexpr.Expr, xs []*big.Float, sampling bool, prec int) []string {
	if len(xs) == 0 && !sampling && a.Constant() {
		return []string{evalAt(a, new(big.Float), prec)}
	}
	r := make([]string, 0, len(xs))
	for _, x := range xs {
		r = append(r, evalAt(a, x, prec))
	}
	return r
}

// curve is a sampled expression.
type curve struct {
	Name       string         `json:"name"`
	Expression string         `json:"expression"`
	Runs       []plotexpr.Run `json:"runs"`
}

// writeCurves writes sampled curves. As text, each point is an x y pair on a
// line, runs are separated by blank lines, and curves begin with a # comment
// naming them.
func writeCurves(w io.Writer, curves []curve, js bool) error {
	if js {
		if len(curves) == 0 {
			return nil
		}
		enc := json.NewEncoder(w)
		return enc.Encode(curves)
	}
	for i, c := range curves {
		if i > 0 {
			if _, err := fmt.Fprintln(w); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintf(w, "# %s\n", c.Name); err != nil {
			return err
		}
		for j, run := range c.Runs {
			if j > 0 {
				if _, err := fmt.Fprintln(w); err != nil {
					return err
				}
			}
			for _, p := range run {
				if _, err := fmt.Fprintf(w, "%g %g\n", p.X, p.Y); err != nil {
					return err
				}
			}
		}
	}
	return nil
}
