package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"math/big"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zephyrtronium/plotexpr"
)

func TestParseSpan(t *testing.T) {
	lo, hi, n, err := parseSpan("-1:1:10")
	require.NoError(t, err)
	assert.Equal(t, -1.0, lo)
	assert.Equal(t, 1.0, hi)
	assert.Equal(t, 10, n)

	lo, hi, n, err = parseSpan(" -2*3 : 2^3 : 5 ")
	require.NoError(t, err)
	assert.Equal(t, -6.0, lo)
	assert.Equal(t, 8.0, hi)
	assert.Equal(t, 5, n)

	for _, s := range []string{"1:2", "a:1:2", "0:x:2", "0:1:0", "0:1:x", "0:1:2:3"} {
		_, _, _, err := parseSpan(s)
		assert.Error(t, err, "parseSpan(%q)", s)
	}
}

func TestEvalAt(t *testing.T) {
	e, err := plotexpr.Compile("2x+1")
	require.NoError(t, err)
	assert.Equal(t, "7", evalAt(e, big.NewFloat(3), 0))
	assert.Equal(t, "7", evalAt(e, big.NewFloat(3), 64))

	r, err := plotexpr.Compile("1/x")
	require.NoError(t, err)
	assert.Equal(t, "undefined", evalAt(r, big.NewFloat(0), 0))
	assert.Contains(t, evalAt(r, big.NewFloat(0), 64), "undefined: ")
}

func TestValues(t *testing.T) {
	c, err := plotexpr.Compile("y = 2(3 + 4)")
	require.NoError(t, err)
	assert.Equal(t, []string{"14"}, values(c, nil, false, 0))
	assert.Equal(t, []string{"14"}, values(c, nil, false, 64))
	assert.Empty(t, values(c, nil, true, 0))

	v, err := plotexpr.Compile("x^2")
	require.NoError(t, err)
	assert.Empty(t, values(v, nil, false, 0))
	xs := []*big.Float{big.NewFloat(3), big.NewFloat(-0.5)}
	assert.Equal(t, []string{"9", "0.25"}, values(v, xs, false, 0))
	assert.Equal(t, []string{"9", "0.25"}, values(v, xs, true, 0))
}

func TestWriteCurvesText(t *testing.T) {
	curves := []curve{
		{Name: "1/x", Runs: []plotexpr.Run{{{X: -1, Y: -1}}, {{X: 1, Y: 1}, {X: 2, Y: 0.5}}}},
		{Name: "empty"},
	}
	var b bytes.Buffer
	require.NoError(t, writeCurves(&b, curves, false))
	want := "# 1/x\n-1 -1\n\n1 1\n2 0.5\n\n# empty\n"
	assert.Equal(t, want, b.String())
}

func TestWriteCurvesJSON(t *testing.T) {
	curves := []curve{
		{Name: "line", Expression: "y = x", Runs: []plotexpr.Run{{{X: 0, Y: 0}, {X: 1, Y: 1}}}},
	}
	var b bytes.Buffer
	require.NoError(t, writeCurves(&b, curves, true))
	var got []struct {
		Name       string
		Expression string
		Runs       [][]map[string]float64
	}
	require.NoError(t, json.Unmarshal(b.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "line", got[0].Name)
	assert.Equal(t, "y = x", got[0].Expression)
	assert.Equal(t, [][]map[string]float64{{{"x": 0, "y": 0}, {"x": 1, "y": 1}}}, got[0].Runs)

	b.Reset()
	require.NoError(t, writeCurves(&b, nil, true))
	assert.Empty(t, b.String())
}

func texts(srcs []source) []string {
	r := make([]string, len(srcs))
	for i, s := range srcs {
		r[i] = s.text
	}
	return r
}

func TestInputs(t *testing.T) {
	name := filepath.Join(t.TempDir(), "in.txt")
	require.NoError(t, os.WriteFile(name, []byte("y = x\n\n  \n2x + 1\n"), 0o644))

	srcs, err := inputs(name, []string{"sin(x)"}, true)
	require.NoError(t, err)
	assert.Equal(t, []string{"y = x", "2x + 1", "sin(x)"}, texts(srcs))
	for _, s := range srcs {
		assert.NoError(t, s.err, "compiling %q", s.text)
	}
	y, ok := srcs[1].expr.Eval(2)
	assert.True(t, ok)
	assert.Equal(t, 5.0, y)

	srcs, err = inputs(name, nil, false)
	require.NoError(t, err)
	assert.Equal(t, []string{"y = x\n\n  \n2x + 1\n"}, texts(srcs))
	assert.Error(t, srcs[0].err)

	srcs, err = inputs("", []string{"x", "x^2"}, false)
	require.NoError(t, err)
	assert.Equal(t, []string{"x", "x^2"}, texts(srcs))

	_, err = inputs(filepath.Join(t.TempDir(), "missing"), nil, false)
	assert.Error(t, err)
}

func TestReadLines(t *testing.T) {
	src := "y = 2x\nx +\n  1\nx x + 1\nsqrt\n\ny = sin(x\n"
	srcs, err := readLines(bufio.NewReader(strings.NewReader(src)))
	require.NoError(t, err)
	require.Equal(t, []string{"y = 2x", "x +\n  1", "x x + 1", "sqrt", "y = sin(x"}, texts(srcs))

	assert.NoError(t, srcs[0].err)
	assert.NoError(t, srcs[1].err)
	y, ok := srcs[1].expr.Eval(3)
	assert.True(t, ok)
	assert.Equal(t, 4.0, y)

	var terr *plotexpr.TokenError
	assert.ErrorAs(t, srcs[2].err, &terr)
	var cerr *plotexpr.CallError
	assert.ErrorAs(t, srcs[3].err, &cerr)

	// Columns count the prefix.
	var berr *plotexpr.BracketError
	require.ErrorAs(t, srcs[4].err, &berr)
	assert.Equal(t, 10, berr.Pos())
}
