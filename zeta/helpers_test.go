package zeta

import (
	"math"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/riemann-research/hurwitz-hunter/mpc"
)

func parse(t *testing.T, ctx mpc.Context, s string) *big.Float {
	t.Helper()
	x, _, err := big.ParseFloat(s, 10, ctx.Prec(), big.ToNearestEven)
	require.NoError(t, err)
	return x
}

func complexOf(t *testing.T, ctx mpc.Context, re, im string) mpc.Complex {
	t.Helper()
	return ctx.FromBig(parse(t, ctx, re), parse(t, ctx, im))
}

// assertClose asserts |got - want| < 10^-digits.
func assertClose(t *testing.T, ctx mpc.Context, want, got mpc.Complex, digits int) {
	t.Helper()
	w := ctx.Raise(32)
	tol := w.Float64(math.Pow(10, -float64(digits)))
	diff := w.Abs(w.Sub(want, got))
	assert.Truef(t, diff.Cmp(tol) < 0, "want %s\n got %s\ndiff %s",
		want.Text(digits+3), got.Text(digits+3), diff.Text('g', 5))
}
