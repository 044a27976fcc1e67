package plotexpr_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zephyrtronium/plotexpr"
)

func mustCompile(t testing.TB, src string) *plotexpr.Expr {
	t.Helper()
	e, err := plotexpr.Compile(src)
	require.NoError(t, err, "compiling %q", src)
	return e
}

func TestSampleSplitsAtPole(t *testing.T) {
	runs := plotexpr.Sample(mustCompile(t, "1/x"), -1, 1, 10)
	require.Len(t, runs, 2)
	assert.Len(t, runs[0], 5)
	assert.Len(t, runs[1], 5)
	assert.Equal(t, -1.0, runs[0][0].X)
	assert.Equal(t, -1.0, runs[0][0].Y)
	assert.Equal(t, 1.0, runs[1][len(runs[1])-1].X)
	assert.Less(t, runs[0][len(runs[0])-1].X, 0.0)
	assert.Greater(t, runs[1][0].X, 0.0)
}

func TestSamplePoleOnGrid(t *testing.T) {
	cases := []struct {
		name   string
		lo, hi float64
		n      int
	}{
		{"3.3", -3.3, 3.3, 100},
		{"7.7", -7.7, 7.7, 6},
		{"0.1", -0.1, 0.1, 300},
	}
	e := mustCompile(t, "1/x")
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			runs := e.Sample(c.lo, c.hi, c.n)
			require.Len(t, runs, 2)
			assert.Len(t, runs[0], c.n/2)
			assert.Len(t, runs[1], c.n/2)
			assert.Equal(t, c.lo, runs[0][0].X)
			assert.Equal(t, c.hi, runs[1][len(runs[1])-1].X)
		})
	}
}

func TestSampleHugeInterval(t *testing.T) {
	runs := mustCompile(t, "x").Sample(-math.MaxFloat64, math.MaxFloat64, 2)
	require.Len(t, runs, 1)
	require.Len(t, runs[0], 3)
	assert.Equal(t, -math.MaxFloat64, runs[0][0].X)
	assert.Equal(t, 0.0, runs[0][1].X)
	assert.Equal(t, math.MaxFloat64, runs[0][2].X)
}

func TestSampleAllDefined(t *testing.T) {
	runs := mustCompile(t, "x^2").Sample(0, 1, 4)
	require.Len(t, runs, 1)
	want := plotexpr.Run{{0, 0}, {0.25, 0.0625}, {0.5, 0.25}, {0.75, 0.5625}, {1, 1}}
	assert.Equal(t, want, runs[0])
}

func TestSampleNoneDefined(t *testing.T) {
	runs := plotexpr.Sample(mustCompile(t, "sqrt(x)"), -2, -1, 8)
	assert.Empty(t, runs)
}

func TestSampleHalfDefined(t *testing.T) {
	runs := plotexpr.Sample(mustCompile(t, "log(x)"), -1, 1, 4)
	require.Len(t, runs, 1)
	assert.Equal(t, plotexpr.Run{{0.5, math.Log(0.5)}, {1, 0}}, runs[0])
}

func TestSampleSinglePointRuns(t *testing.T) {
	runs := plotexpr.Sample(mustCompile(t, "x == 0 ? 1 : log(-1)"), -1, 1, 2)
	require.Len(t, runs, 1)
	assert.Equal(t, plotexpr.Run{{0, 1}}, runs[0])
}

func TestSampleManyRuns(t *testing.T) {
	// Undefined at every integer, defined between.
	runs := plotexpr.Sample(mustCompile(t, "1/(x - floor(x))"), 0, 3, 12)
	require.Len(t, runs, 3)
	for _, r := range runs {
		assert.Len(t, r, 3)
	}
}

func TestSampleClampsCount(t *testing.T) {
	e := mustCompile(t, "x")
	for _, n := range []int{1, 0, -5} {
		runs := e.Sample(2, 4, n)
		require.Len(t, runs, 1, "n = %d", n)
		assert.Equal(t, plotexpr.Run{{2, 2}, {4, 4}}, runs[0], "n = %d", n)
	}
}

func TestSampleNonFiniteInterval(t *testing.T) {
	e := mustCompile(t, "x")
	assert.Nil(t, e.Sample(math.NaN(), 1, 10))
	assert.Nil(t, e.Sample(0, math.Inf(1), 10))
	assert.Nil(t, e.Sample(math.Inf(-1), 0, 10))
}

func TestSampleReversed(t *testing.T) {
	runs := mustCompile(t, "2x").Sample(1, -1, 2)
	require.Len(t, runs, 1)
	assert.Equal(t, plotexpr.Run{{1, 2}, {0, 0}, {-1, -2}}, runs[0])
}

func TestBounds(t *testing.T) {
	runs := mustCompile(t, "x^2 - 1").Sample(-2, 2, 4)
	lo, hi, ok := plotexpr.Bounds(runs)
	require.True(t, ok)
	assert.Equal(t, -1.0, lo)
	assert.Equal(t, 3.0, hi)

	runs = plotexpr.Sample(mustCompile(t, "1/x"), -1, 1, 10)
	lo, hi, ok = plotexpr.Bounds(runs)
	require.True(t, ok)
	assert.InDelta(t, -5.0, lo, 1e-9)
	assert.InDelta(t, 5.0, hi, 1e-9)

	_, _, ok = plotexpr.Bounds(nil)
	assert.False(t, ok)
	_, _, ok = plotexpr.Bounds([]plotexpr.Run{{}})
	assert.False(t, ok)
}

func BenchmarkSample(b *testing.B) {
	e := mustCompile(b, "x >= 0 ? sin(3x) / x : log(-x, 2)")
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		e.Sample(-10, 10, 300)
	}
}
