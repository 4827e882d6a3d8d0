package zeta

import (
	"fmt"
	"math"
	"math/big"

	"github.com/riemann-research/hurwitz-hunter/combin"
	"github.com/riemann-research/hurwitz-hunter/mpc"
)

// stirlingShift returns the number of unit shifts N that bring Re(z) + N
// to at least 0.12 * prec + 4, where the Stirling series reaches 2^-prec.
func stirlingShift(ctx mpc.Context, z mpc.Complex) int {
	r0 := 0.12*float64(ctx.Prec()) + 4
	re, _ := z.Re.Float64()
	if re >= r0 {
		return 0
	}
	return int(math.Ceil(r0 - re))
}

// stirling returns ln Gamma(x) for Re(x) large by the asymptotic series
//
//	(x - 1/2) ln x - x + ln(2 pi)/2 + sum_k B_2k / (2k (2k-1) x^(2k-1)).
func (e *Evaluator) stirling(w mpc.Context, x mpc.Complex) (mpc.Complex, error) {
	lx, err := w.CLog(x)
	if err != nil {
		return mpc.Complex{}, err
	}
	res := w.Mul(w.AddReal(x, w.Float().Neg(half)), lx)
	res = w.Sub(res, x)
	res = w.AddReal(res, w.Float().Mul(w.LogTwoPi(), half))

	xinv, err := w.Recip(x)
	if err != nil {
		return mpc.Complex{}, err
	}
	xinv2 := w.Sqr(xinv)
	p := xinv
	eps := w.Epsilon()
	eps2 := w.Float().Mul(eps, eps)
	absX, _ := w.Abs(x).Float64()
	kmax := int(math.Pi*absX) + 8
	for k := 1; k <= kmax; k++ {
		coef := new(big.Rat).SetFrac64(1, int64(2*k*(2*k-1)))
		coef.Mul(coef, e.table.Bernoulli(2*k))
		term := w.Scale(p, w.Float().SetRat(coef))
		res = w.Add(res, term)
		if w.ModSq(term).Cmp(eps2) < 0 {
			return res, nil
		}
		p = w.Mul(p, xinv2)
	}
	return mpc.Complex{}, fmt.Errorf("stirling series at |x| = %g: %w", absX, ErrPrecisionExhausted)
}

// LogGamma returns ln Gamma(z) continued from the Stirling series by
// ln Gamma(z) = ln Gamma(z+N) - sum_{j<N} ln(z+j). Off the real axis this
// can differ from the principal branch by a multiple of 2 pi i.
func (e *Evaluator) LogGamma(ctx mpc.Context, z mpc.Complex) (mpc.Complex, error) {
	w := ctx.Raise(16)
	n := stirlingShift(w, z)
	lg, err := e.stirling(w, w.AddInt(z, int64(n)))
	if err != nil {
		return mpc.Complex{}, err
	}
	for j := 0; j < n; j++ {
		l, err := w.CLog(w.AddInt(z, int64(j)))
		if err != nil {
			return mpc.Complex{}, fmt.Errorf("log gamma pole at z = %s: %w", z.String(), ErrDivisionByZero)
		}
		lg = w.Sub(lg, l)
	}
	return ctx.Copy(lg), nil
}

// Gamma returns Gamma(z). The poles at z = 0, -1, -2, ... return
// ErrDivisionByZero.
func (e *Evaluator) Gamma(ctx mpc.Context, z mpc.Complex) (mpc.Complex, error) {
	w := ctx.Raise(16)
	n := stirlingShift(w, z)
	lg, err := e.stirling(w, w.AddInt(z, int64(n)))
	if err != nil {
		return mpc.Complex{}, err
	}
	g := w.CExp(lg)
	if n > 0 {
		p := combin.PochhammerRising(w, z, n)
		g, err = w.Div(g, p)
		if err != nil {
			return mpc.Complex{}, fmt.Errorf("gamma pole at z = %s: %w", z.String(), err)
		}
	}
	return ctx.Copy(g), nil
}
