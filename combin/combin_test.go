package combin

import (
	"math/big"
	"math/cmplx"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/riemann-research/hurwitz-hunter/mpc"
)

func TestBinomialSmall(t *testing.T) {
	tbl := NewTable()
	want := [][]int64{
		{1},
		{1, 1},
		{1, 2, 1},
		{1, 3, 3, 1},
		{1, 4, 6, 4, 1},
		{1, 5, 10, 10, 5, 1},
		{1, 6, 15, 20, 15, 6, 1},
	}
	for n, row := range want {
		for k, v := range row {
			assert.Equalf(t, v, tbl.Binomial(n, k).Int64(), "C(%d,%d)", n, k)
		}
	}
	assert.Zero(t, tbl.Binomial(5, 6).Sign())
	assert.Zero(t, tbl.Binomial(5, -1).Sign())
}

func TestBinomialLargeMatchesMathBig(t *testing.T) {
	tbl := NewTable()
	for _, nk := range [][2]int{{60, 30}, {100, 3}, {100, 97}, {237, 118}, {40, 20}, {300, 150}} {
		n, k := nk[0], nk[1]
		want := new(big.Int).Binomial(int64(n), int64(k))
		assert.Zerof(t, want.Cmp(tbl.Binomial(n, k)), "C(%d,%d)", n, k)
	}
	st := tbl.Stats().Binomial
	assert.Greater(t, st.Len, 300*299/2-1)
}

func TestBinomialBypass(t *testing.T) {
	tbl := NewTable()
	tbl.SetDisabled(true)
	for n := 0; n < 40; n++ {
		for k := 0; k <= n; k++ {
			want := new(big.Int).Binomial(int64(n), int64(k))
			require.Zero(t, want.Cmp(tbl.Binomial(n, k)))
		}
	}
	assert.Zero(t, tbl.Stats().Binomial.Len)
}

func TestBinomialConcurrent(t *testing.T) {
	tbl := NewTable()
	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for n := 10 + g; n < 120; n += 7 {
				want := new(big.Int).Binomial(int64(n), int64(n/3))
				assert.Zero(t, want.Cmp(tbl.Binomial(n, n/3)))
			}
		}(g)
	}
	wg.Wait()
}

func TestBernoulliNumbers(t *testing.T) {
	tbl := NewTable()
	cases := map[int]string{
		0:  "1",
		1:  "-1/2",
		2:  "1/6",
		3:  "0",
		4:  "-1/30",
		6:  "1/42",
		8:  "-1/30",
		10: "5/66",
		12: "-691/2730",
		14: "7/6",
		20: "-174611/330",
		30: "8615841276005/14322",
	}
	for n, s := range cases {
		want, ok := new(big.Rat).SetString(s)
		require.True(t, ok)
		assert.Equalf(t, want.RatString(), tbl.Bernoulli(n).RatString(), "B_%d", n)
	}

	// Filling B_30 cached the even numbers below it.
	assert.True(t, tbl.bern.Check(16, 0))
}

func TestBernoulliPolynomial(t *testing.T) {
	ctx := mpc.NewContext(128)
	x := ctx.Float64(0.3)
	cases := []struct {
		n    int
		want float64
	}{
		{0, 1},
		{1, 0.3 - 0.5},
		{2, 0.09 - 0.3 + 1.0/6},
		{3, 0.027 - 1.5*0.09 + 0.5*0.3},
		{4, 0.0081 - 2*0.027 + 0.09 - 1.0/30},
	}
	for _, tc := range cases {
		got, _ := BernoulliPoly(ctx, tc.n, x).Float64()
		assert.InDeltaf(t, tc.want, got, 1e-15, "B_%d(0.3)", tc.n)
	}

	// B_n(0) = B_n, B_n(1) = (-1)^n B_n
	for n := 2; n <= 12; n += 2 {
		bn, _ := Bernoulli(n).Float64()
		at0, _ := BernoulliPoly(ctx, n, ctx.Float()).Float64()
		at1, _ := BernoulliPoly(ctx, n, ctx.Int(1)).Float64()
		assert.InDelta(t, bn, at0, 1e-15)
		assert.InDelta(t, bn, at1, 1e-15)
	}
}

func TestPochhammer(t *testing.T) {
	ctx := mpc.NewContext(128)

	five := ctx.NewComplex(5, 0)
	assert.Equal(t, complex(1, 0), PochhammerRising(ctx, five, 0).Complex128())
	assert.Equal(t, complex(5*6*7, 0), PochhammerRising(ctx, five, 3).Complex128())
	assert.Equal(t, complex(5*4*3, 0), PochhammerFalling(ctx, five, 3).Complex128())
	assert.Equal(t, complex(120, 0), PochhammerFalling(ctx, five, 5).Complex128())
	assert.Equal(t, complex(0, 0), PochhammerFalling(ctx, five, 6).Complex128())

	// (-2)_k vanishes from k = 3 on.
	m2 := ctx.NewComplex(-2, 0)
	assert.Equal(t, complex(2, 0), PochhammerRising(ctx, m2, 2).Complex128())
	assert.True(t, PochhammerRising(ctx, m2, 3).IsZero())

	z := complex(0.5, 14.134725)
	want := complex(1, 0)
	for i := 0; i < 6; i++ {
		want *= z + complex(float64(i), 0)
	}
	got := PochhammerRising(ctx, ctx.FromComplex128(z), 6).Complex128()
	assert.Less(t, cmplx.Abs(got-want)/cmplx.Abs(want), 1e-14)

	// (z)_k (z+k)_j = (z)_{k+j}
	zc := ctx.FromComplex128(z)
	lhs := ctx.Mul(PochhammerRising(ctx, zc, 4), PochhammerRising(ctx, ctx.AddInt(zc, 4), 3))
	rhs := PochhammerRising(ctx, zc, 7)
	tol := new(big.Float).Mul(ctx.Abs(rhs), new(big.Float).SetMantExp(big.NewFloat(1), -120))
	assert.True(t, ctx.Equal(lhs, rhs, tol))
}
