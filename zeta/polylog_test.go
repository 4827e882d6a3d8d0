package zeta

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/riemann-research/hurwitz-hunter/mpc"
)

func TestPolylogKnownValues(t *testing.T) {
	ctx := mpc.FromDigits(35)
	ev := New(Options{})

	t.Run("dilog half", func(t *testing.T) {
		got, err := ev.Polylog(ctx, ctx.NewComplex(2, 0), ctx.NewComplex(0.5, 0), 0)
		require.NoError(t, err)
		assertClose(t, ctx, complexOf(t, ctx, "0.582240526465012505902656320159680108744198474806126425434345", "0"), got, 34)
	})

	t.Run("dilog minus one", func(t *testing.T) {
		got, err := ev.Polylog(ctx, ctx.NewComplex(2, 0), ctx.NewComplex(-1, 0), 0)
		require.NoError(t, err)
		want := complexOf(t, ctx, "-0.822467033424113218236207583323012594609474950603399218867779", "0")
		assertClose(t, ctx, want, got, 34)
	})

	t.Run("dilog i", func(t *testing.T) {
		// Li_2(i) = -pi^2/48 + i G.
		got, err := ev.Polylog(ctx, ctx.NewComplex(2, 0), ctx.NewComplex(0, 1), 0)
		require.NoError(t, err)
		want := complexOf(t, ctx,
			"-0.205616758356028304559051895830753148652368737650849804716944",
			"0.915965594177219015054603514932384110774149374281672134266498")
		assertClose(t, ctx, want, got, 34)
	})

	t.Run("order one is minus log", func(t *testing.T) {
		z := ctx.NewComplex(0.3, -0.6)
		got, err := ev.Polylog(ctx, ctx.NewComplex(1, 0), z, 0)
		require.NoError(t, err)
		l, err := ctx.CLog(ctx.Sub(ctx.One(), z))
		require.NoError(t, err)
		assertClose(t, ctx, ctx.Neg(l), got, 34)
	})

	t.Run("order zero is rational", func(t *testing.T) {
		// Li_0(z) = z/(1-z).
		z := ctx.NewComplex(-0.5, 0.5)
		got, err := ev.Polylog(ctx, ctx.NewComplex(0, 0), z, 0)
		require.NoError(t, err)
		want, err := ctx.Div(z, ctx.Sub(ctx.One(), z))
		require.NoError(t, err)
		assertClose(t, ctx, want, got, 34)
	})

	t.Run("zero argument", func(t *testing.T) {
		got, err := ev.Polylog(ctx, ctx.NewComplex(2, 0), ctx.Zero(), 0)
		require.NoError(t, err)
		assert.True(t, got.IsZero())
	})
}

func TestPolylogStrategiesAgree(t *testing.T) {
	ctx := mpc.FromDigits(30)
	borwein := New(Options{})
	direct := New(Options{Polylog: PolylogDirect})

	for _, tc := range []struct {
		s, z complex128
	}{
		{complex(2, 0), complex(0.5, 0.3)},
		{complex(0.5, 14.134725), complex(-0.4, 0.2)},
		{complex(-1.5, 0.5), complex(0.1, -0.7)},
		{complex(-3, 0), complex(0.1, -0.7)},
	} {
		s, z := ctx.FromComplex128(tc.s), ctx.FromComplex128(tc.z)
		a, err := borwein.Polylog(ctx, s, z, 0)
		require.NoError(t, err)
		b, err := direct.Polylog(ctx, s, z, 0)
		require.NoError(t, err)
		assertClose(t, ctx, a, b, 28)
	}
}

// Li_-3(z) = z (1 + 4z + z^2) / (1 - z)^4.
func TestPolylogDirectNegativeOrder(t *testing.T) {
	ctx := mpc.FromDigits(30)
	ev := New(Options{Polylog: PolylogDirect})
	for _, zc := range []complex128{complex(0.1, -0.7), complex(-0.85, 0.3), complex(0.93, 0)} {
		z := ctx.FromComplex128(zc)
		num := ctx.Mul(z, ctx.Add(ctx.AddInt(ctx.ScaleInt(z, 4), 1), ctx.Sqr(z)))
		den := ctx.Sqr(ctx.Sqr(ctx.Sub(ctx.One(), z)))
		want, err := ctx.Div(num, den)
		require.NoError(t, err)

		got, err := ev.Polylog(ctx, ctx.NewComplex(-3, 0), z, 0)
		require.NoError(t, err)
		relClose(t, ctx, want, got, 27)
	}
}

func TestPolylogOrderEscalation(t *testing.T) {
	ctx := mpc.FromDigits(30)
	ev := New(Options{})
	s, z := ctx.NewComplex(2, 0), ctx.NewComplex(0.5, 0)

	auto, err := ev.Polylog(ctx, s, z, 0)
	require.NoError(t, err)
	escalated, err := ev.Polylog(ctx, s, z, 3)
	require.NoError(t, err)
	assertClose(t, ctx, auto, escalated, 29)

	explicit, err := ev.Polylog(ctx, s, z, 200)
	require.NoError(t, err)
	assertClose(t, ctx, auto, explicit, 29)
}

func TestBorweinOrderGrowsWithPrecision(t *testing.T) {
	s := complex(0.5, 14.134725)
	z := complex(math.Cos(0.6*math.Pi), math.Sin(0.6*math.Pi))
	absZ, absZm1 := 1.0, math.Sqrt(real(z-1)*real(z-1)+imag(z)*imag(z))

	lo, ok := borweinOrder(s, absZ, absZm1, 100)
	require.True(t, ok)
	hi, ok := borweinOrder(s, absZ, absZm1, 400)
	require.True(t, ok)
	assert.GreaterOrEqual(t, lo, minPolylogOrder)
	assert.Greater(t, hi, lo)

	_, ok = borweinOrder(s, absZ, 1e-12, 100)
	assert.False(t, ok)
}

func TestPolylogErrors(t *testing.T) {
	ctx := mpc.FromDigits(20)
	ev := New(Options{})
	s := ctx.NewComplex(2, 0)

	_, err := ev.Polylog(ctx, s, ctx.One(), 0)
	assert.True(t, errors.Is(err, ErrDivisionByZero), "z = 1: %v", err)

	_, err = ev.Polylog(ctx, s, ctx.NewComplex(1.5, 0), 0)
	assert.True(t, errors.Is(err, ErrDomainUnsupported), "|z| > 1: %v", err)

	_, err = ev.Polylog(ctx, s, ctx.NewComplex(1-1e-12, 0), 0)
	assert.True(t, errors.Is(err, ErrPrecisionExhausted), "z near 1: %v", err)

	_, err = New(Options{Polylog: PolylogDirect}).Polylog(ctx, s, ctx.NewComplex(0, 1), 0)
	assert.True(t, errors.Is(err, ErrDomainUnsupported), "direct on the circle: %v", err)
}
