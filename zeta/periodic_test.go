package zeta

import (
	"errors"
	"fmt"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/riemann-research/hurwitz-hunter/combin"
	"github.com/riemann-research/hurwitz-hunter/mpc"
)

func TestClassify(t *testing.T) {
	ctx := mpc.FromDigits(20)
	cases := []struct {
		q    float64
		want Region
	}{
		{0, RegionEndpoint},
		{0.01, RegionLow},
		{0.2499999, RegionLow},
		{0.25, RegionCentral},
		{0.5, RegionCentral},
		{0.75, RegionCentral},
		{0.7500001, RegionHigh},
		{0.99, RegionHigh},
	}
	for _, tc := range cases {
		assert.Equalf(t, tc.want, Classify(ctx, big.NewFloat(tc.q)), "q = %g", tc.q)
	}

	tiny := new(big.Float).SetMantExp(big.NewFloat(1), -int(ctx.Prec())-3)
	assert.Equal(t, RegionEndpoint, Classify(ctx, tiny))
	nearOne := ctx.Float().Sub(ctx.Int(1), tiny)
	assert.Equal(t, RegionEndpoint, Classify(ctx, nearOne))
}

func TestReduceUnit(t *testing.T) {
	ctx := mpc.FromDigits(20)
	for _, tc := range []struct{ q, want float64 }{
		{0.3, 0.3},
		{1.3, 0.3},
		{-0.25, 0.75},
		{-3, 0},
		{5, 0},
	} {
		got, _ := ReduceUnit(ctx, big.NewFloat(tc.q)).Float64()
		assert.InDeltaf(t, tc.want, got, 1e-15, "q = %g", tc.q)
	}
}

// Re F(2, q) = pi^2 B_2(q) on [0, 1], across all regions.
func TestPeriodicZetaDilogRealPart(t *testing.T) {
	ctx := mpc.FromDigits(30)
	ev := New(Options{})
	pi2 := ctx.Float().Mul(ctx.Pi(), ctx.Pi())
	for _, qf := range []float64{0.001, 0.1, 0.2, 0.3, 0.5, 0.8, 0.97} {
		t.Run(fmt.Sprint(qf), func(t *testing.T) {
			q := big.NewFloat(qf)
			got, err := ev.PeriodicZeta(ctx, ctx.NewComplex(2, 0), q)
			require.NoError(t, err)
			want := ctx.Float().Mul(pi2, combin.BernoulliPoly(ctx, 2, q))
			assertClose(t, ctx, ctx.Real(want), ctx.Real(got.Re), 28)
		})
	}
}

func TestPeriodicZetaHalfIsAlternating(t *testing.T) {
	// F(s, 1/2) = -(1 - 2^(1-s)) zeta(s).
	ctx := mpc.FromDigits(30)
	ev := New(Options{})
	s := ctx.NewComplex(0.5, 14.134725)
	got, err := ev.PeriodicZeta(ctx, s, big.NewFloat(0.5))
	require.NoError(t, err)

	z, err := ev.RiemannZeta(ctx, s)
	require.NoError(t, err)
	twoPow := ctx.PowFromLog(ctx.Ln2(), ctx.Sub(ctx.One(), s))
	want := ctx.Neg(ctx.Mul(ctx.Sub(ctx.One(), twoPow), z))
	assertClose(t, ctx, want, got, 28)
}

func TestPeriodicZetaIsPeriodic(t *testing.T) {
	ctx := mpc.FromDigits(25)
	ev := New(Options{})
	s := ctx.NewComplex(1.5, -2)
	a, err := ev.PeriodicZeta(ctx, s, big.NewFloat(0.15))
	require.NoError(t, err)
	b, err := ev.PeriodicZeta(ctx, s, big.NewFloat(3.15))
	require.NoError(t, err)
	// 3.15 and 0.15 differ in their float64 fractional bits.
	assertClose(t, ctx, a, b, 13)
}

func TestPeriodicZetaEndpoint(t *testing.T) {
	ctx := mpc.FromDigits(25)
	ev := New(Options{})
	s := ctx.NewComplex(3, 0)
	got, err := ev.PeriodicZeta(ctx, s, big.NewFloat(0))
	require.NoError(t, err)
	z, err := ev.RiemannZeta(ctx, s)
	require.NoError(t, err)
	assertClose(t, ctx, z, got, 24)

	_, err = ev.PeriodicZeta(ctx, ctx.One(), big.NewFloat(0))
	assert.True(t, errors.Is(err, ErrDomainUnsupported))
}

func TestPeriodicZetaBoundaryContinuity(t *testing.T) {
	ctx := mpc.FromDigits(30)
	ev := New(Options{})
	s := ctx.NewComplex(2, 0.5)
	h := big.NewFloat(1e-7)

	for _, tc := range []struct {
		q       float64
		outside Region
		sign    int64
	}{
		{0.25, RegionLow, -1},
		{0.75, RegionHigh, 1},
	} {
		t.Run(fmt.Sprint(tc.q), func(t *testing.T) {
			q := big.NewFloat(tc.q)
			require.Equal(t, RegionCentral, Classify(ctx, q))
			central, err := ev.PeriodicZeta(ctx, s, q)
			require.NoError(t, err)

			// One forced duplication step at the boundary lands on the same value.
			split, err := ev.periodicZeta(ctx, s, q, true)
			require.NoError(t, err)
			assertClose(t, ctx, central, split, 27)

			// Just outside the boundary the duplication branch continues the
			// central value: F(s, q+d) = F(s, q) + 2 pi i d F(s-1, q) + O(d^2).
			d := ctx.Float().Mul(h, ctx.Int(tc.sign))
			outside := ctx.Float().Add(q, d)
			require.Equal(t, tc.outside, Classify(ctx, outside))
			got, err := ev.PeriodicZeta(ctx, s, outside)
			require.NoError(t, err)
			deriv, err := ev.PeriodicZeta(ctx, ctx.AddInt(s, -1), q)
			require.NoError(t, err)
			step := ctx.TimesI(ctx.Scale(deriv, ctx.Float().Mul(ctx.TwoPi(), d)))
			assertClose(t, ctx, ctx.Add(central, step), got, 10)
		})
	}
}

func TestPeriodicZetaRecursionLimit(t *testing.T) {
	ctx := mpc.FromDigits(20)
	ev := New(Options{MaxDepth: 2})
	_, err := ev.PeriodicZeta(ctx, ctx.NewComplex(2, 0), big.NewFloat(0.01))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrRecursionLimit))
	assert.True(t, errors.Is(err, ErrPrecisionExhausted))

	// Enough depth for the same point.
	_, err = New(Options{MaxDepth: 8}).PeriodicZeta(ctx, ctx.NewComplex(2, 0), big.NewFloat(0.01))
	assert.NoError(t, err)
}

// The Bernoulli polynomials are recovered from the periodic beta:
//
//	B_n(q) = -(1/2) i^-n [beta(n, q) + (-1)^n beta(n, 1-q)].
func TestPeriodicBetaBernoulliPolynomials(t *testing.T) {
	ctx := mpc.FromDigits(30)
	ev := New(Options{})
	for _, qf := range []float64{0.1, 0.3, 0.85} {
		for n := 0; n <= 5; n++ {
			t.Run(fmt.Sprintf("B%d(%g)", n, qf), func(t *testing.T) {
				q := big.NewFloat(qf)
				q1 := ctx.Float().Sub(ctx.Int(1), q)
				s := ctx.NewComplex(float64(n), 0)
				a, err := ev.PeriodicBeta(ctx, s, q)
				require.NoError(t, err)
				b, err := ev.PeriodicBeta(ctx, s, q1)
				require.NoError(t, err)

				var got *big.Float
				if n%2 == 0 {
					got = ctx.Float().Mul(ctx.Add(a, b).Re, half)
					if n%4 == 0 {
						got.Neg(got)
					}
				} else {
					got = ctx.Float().Mul(ctx.Sub(a, b).Im, half)
					if n%4 == 1 {
						got.Neg(got)
					}
				}
				want := combin.BernoulliPoly(ctx, n, q)
				assertClose(t, ctx, ctx.Real(want), ctx.Real(got), 26)
			})
		}
	}
}

func TestPeriodicZetaIdempotent(t *testing.T) {
	ctx := mpc.FromDigits(30)
	ev := New(Options{})
	s := ctx.NewComplex(0.5, 14.134725)
	q := big.NewFloat(0.3)
	a, err := ev.PeriodicZeta(ctx, s, q)
	require.NoError(t, err)
	b, err := ev.PeriodicZeta(ctx, s, q)
	require.NoError(t, err)
	assertClose(t, ctx, a, b, 29)
	assert.Equal(t, ctx.Prec(), a.Re.Prec())
}

func TestPolylogIdempotent(t *testing.T) {
	ctx := mpc.FromDigits(40)
	ev := New(Options{})
	s := ctx.NewComplex(0.5, 14.134725)
	z := ctx.Expi(ctx.Float().Mul(ctx.TwoPi(), big.NewFloat(0.3)))
	a, err := ev.Polylog(ctx, s, z, 0)
	require.NoError(t, err)
	b, err := ev.Polylog(ctx, s, z, 0)
	require.NoError(t, err)
	assert.Zero(t, a.Re.Cmp(b.Re))
	assert.Zero(t, a.Im.Cmp(b.Im))
}

func TestPeriodicFunctionsIgnoreDirectPolylog(t *testing.T) {
	ctx := mpc.FromDigits(25)
	ref := New(Options{})
	direct := New(Options{Polylog: PolylogDirect})
	s := ctx.NewComplex(0.5, 3)

	for _, qf := range []float64{0.05, 0.3, 0.5, 0.9} {
		q := big.NewFloat(qf)
		want, err := ref.PeriodicZeta(ctx, s, q)
		require.NoError(t, err)
		got, err := direct.PeriodicZeta(ctx, s, q)
		require.NoError(t, err, "q = %g", qf)
		assertClose(t, ctx, want, got, 24)

		want, err = ref.PeriodicBeta(ctx, s, q)
		require.NoError(t, err)
		got, err = direct.PeriodicBeta(ctx, s, q)
		require.NoError(t, err, "q = %g", qf)
		assertClose(t, ctx, want, got, 24)

		want, err = ref.HurwitzZeta(ctx, s, q)
		require.NoError(t, err)
		got, err = direct.HurwitzZeta(ctx, s, q)
		require.NoError(t, err, "q = %g", qf)
		assertClose(t, ctx, want, got, 24)
	}

	// On the unit circle the direct polylog itself still refuses.
	_, err := direct.Polylog(ctx, s, ctx.NewComplex(0, 1), 0)
	assert.True(t, errors.Is(err, ErrDomainUnsupported), "%v", err)
}
