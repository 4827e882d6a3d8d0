package zeta

import (
	"fmt"
	"math"
	"math/cmplx"

	"github.com/sirupsen/logrus"

	"github.com/riemann-research/hurwitz-hunter/mpc"
)

const (
	// maxPolylogOrder caps the Borwein truncation order n (2n terms).
	maxPolylogOrder = 1 << 15
	// minPolylogOrder is the smallest order the automatic choice returns.
	minPolylogOrder = 8
	// maxDirectTerms caps the plain series.
	maxDirectTerms = 1 << 20
)

// Polylog returns Li_s(z) = sum_{k>=1} z^k / k^s.
//
// With the Borwein strategy, n is the truncation order (2n terms are
// summed); n <= 0 picks the smallest order whose tail bound meets the
// context precision. An explicit n that is too small is escalated once,
// to max(auto, 2n), before ErrPrecisionExhausted is returned. The direct
// strategy ignores n.
func (e *Evaluator) Polylog(ctx mpc.Context, s, z mpc.Complex, n int) (mpc.Complex, error) {
	switch e.opts.Polylog {
	case PolylogDirect:
		return e.polylogDirect(ctx, s, z)
	default:
		return e.polylogBorwein(ctx, s, z, n)
	}
}

// borweinTail returns log2 of the truncation error bound
//
//	|z/(z-1)|^n |(s)_n| |z|^(n+1) (n+1)^(-sigma-n) (1 + (n+1)/(sigma+n-1))
//
// given log2|(s)_n| in lpoch. The bound needs sigma + n > 1.
func borweinTail(sigma, lpoch, absZ, absZm1 float64, n int) float64 {
	nf := float64(n)
	if absZm1 == 0 || sigma+nf <= 1 {
		return math.Inf(1)
	}
	return nf*math.Log2(absZ/absZm1) + lpoch + (nf+1)*math.Log2(absZ) -
		(sigma+nf)*math.Log2(nf+1) + math.Log2(1+(nf+1)/(sigma+nf-1))
}

// log2Pochhammer bounds log2|(s)_n|, with factors below 1 counted as 1 so
// that a vanishing (s)_n at nonpositive integer s still leaves a bound.
func log2Pochhammer(s complex128, n int) float64 {
	lp := 0.0
	for j := 0; j < n; j++ {
		lp += log2Factor(s, j)
	}
	return lp
}

func log2Factor(s complex128, j int) float64 {
	return math.Log2(math.Max(cmplx.Abs(s+complex(float64(j), 0)), 1))
}

// borweinOrder returns the smallest n >= minPolylogOrder whose tail bound is
// below 2^-target, and false if none exists below maxPolylogOrder.
func borweinOrder(s complex128, absZ, absZm1, target float64) (int, bool) {
	lp := log2Pochhammer(s, minPolylogOrder)
	for n := minPolylogOrder; n <= maxPolylogOrder; n++ {
		if borweinTail(real(s), lp, absZ, absZm1, n) <= -target {
			return n, true
		}
		lp += log2Factor(s, n)
	}
	return maxPolylogOrder, false
}

func (e *Evaluator) polylogBorwein(ctx mpc.Context, s, z mpc.Complex, n int) (mpc.Complex, error) {
	if z.IsZero() {
		return ctx.Zero(), nil
	}
	if ctx.Sub(z, ctx.One()).IsZero() {
		return mpc.Complex{}, fmt.Errorf("polylog at z = 1: %w", ErrDivisionByZero)
	}

	zc, sc := z.Complex128(), s.Complex128()
	absZ, absZm1 := cmplx.Abs(zc), cmplx.Abs(zc-1)
	if absZ > 1+1e-9 {
		return mpc.Complex{}, domainError("borwein polylog needs |z| <= 1, got |z| = %g", absZ)
	}

	target := float64(ctx.Prec())
	auto, ok := borweinOrder(sc, absZ, absZm1, target)
	if n <= 0 {
		if !ok {
			return mpc.Complex{}, fmt.Errorf("polylog order for |z-1| = %g exceeds %d: %w", absZm1, maxPolylogOrder, ErrPrecisionExhausted)
		}
		n = auto
	} else if borweinTail(real(sc), log2Pochhammer(sc, n), absZ, absZm1, n) > -target {
		next := max(auto, 2*n)
		e.log.WithFields(logrus.Fields{"n": n, "next": next, "prec": ctx.Prec()}).Debug("polylog order too small, escalating")
		if !ok || borweinTail(real(sc), log2Pochhammer(sc, next), absZ, absZm1, next) > -target {
			return mpc.Complex{}, fmt.Errorf("polylog order %d insufficient at %d bits: %w", n, ctx.Prec(), ErrPrecisionExhausted)
		}
		n = next
	}

	// Guard bits for the cancellation in 1 - ska*bee and for growing
	// k^-s when sigma < 0.
	extra := float64(n)*math.Log2((1+absZ)/absZm1) + 16
	if sigma := real(sc); sigma < 0 {
		extra += -sigma * math.Log2(float64(2*n))
	}
	w := ctx.Raise(uint(math.Ceil(math.Max(extra, 0))))

	v, err := e.borweinSum(w, s, z, n)
	if err != nil {
		return mpc.Complex{}, err
	}
	return ctx.Copy(v), nil
}

// borweinSum evaluates
//
//	sum_{k=1}^{2n} z^k/k^s - ska * sum_{k=n+1}^{2n} bee_k z^k/k^s
//
// with ska = (z/(z-1))^n and bee_k = sum_{j=0}^{k-n-1} C(n,j) (-1/z)^j.
func (e *Evaluator) borweinSum(w mpc.Context, s, z mpc.Complex, n int) (mpc.Complex, error) {
	one := w.One()
	ratio, err := w.Div(z, w.Sub(z, one))
	if err != nil {
		return mpc.Complex{}, err
	}
	ska, err := w.CPowInt(ratio, n)
	if err != nil {
		return mpc.Complex{}, err
	}
	oz, err := w.Recip(z)
	if err != nil {
		return mpc.Complex{}, err
	}
	oz = w.Neg(oz)
	negS := w.Neg(s)

	acc := w.Zero()
	zk := w.One()
	bee := w.Zero()
	ozj := w.One()
	for k := 1; k <= 2*n; k++ {
		zk = w.Mul(zk, z)
		term := w.Mul(zk, w.PowFromLog(e.logInt(w, k), negS))
		if k <= n {
			acc = w.Add(acc, term)
			continue
		}

		j := k - n - 1
		bee = w.Add(bee, w.Scale(ozj, w.Float().SetInt(e.table.Binomial(n, j))))
		ozj = w.Mul(ozj, oz)
		acc = w.Add(acc, w.Mul(term, w.Sub(one, w.Mul(ska, bee))))
	}
	return acc, nil
}

// polylogDirect sums the defining series for |z| < 1. Past kmin the ratio
// of consecutive terms stays below tailRatio, so the tail is bounded by
// |term|/(1-tailRatio).
func (e *Evaluator) polylogDirect(ctx mpc.Context, s, z mpc.Complex) (mpc.Complex, error) {
	if z.IsZero() {
		return ctx.Zero(), nil
	}
	absZ := cmplx.Abs(z.Complex128())
	if absZ >= 1 {
		return mpc.Complex{}, domainError("direct polylog needs |z| < 1, got |z| = %g", absZ)
	}

	sigma := real(s.Complex128())
	lz := math.Log(absZ)
	kmin, tailRatio := 1, absZ
	if sigma < 0 {
		// The ratio |z| (1+1/k)^-sigma stays below (1+|z|)/2 from kmin on.
		tailRatio = (1 + absZ) / 2
		kmin = int(math.Ceil(1/(math.Pow(tailRatio/absZ, -1/sigma)-1))) + 1
	}
	extraFor := func(k int) float64 {
		return 16 + math.Max(0, -sigma)*math.Log2(float64(k))
	}

	// log2 |z^k k^-s| = (k ln|z| - sigma ln k)/ln2 must drop below the
	// working epsilon.
	need := float64(ctx.Prec()) + 32 + math.Log2(1/(1-tailRatio))
	kmax := kmin
	for (float64(kmax)*lz-sigma*math.Log(float64(kmax)))/math.Ln2 > -(need + extraFor(kmax)) {
		kmax++
		if kmax > maxDirectTerms {
			return mpc.Complex{}, fmt.Errorf("direct polylog at |z| = %g, s = %g needs more than %d terms: %w",
				absZ, s.Complex128(), maxDirectTerms, ErrPrecisionExhausted)
		}
	}

	w := ctx.Raise(uint(math.Ceil(extraFor(kmax))))
	thr := w.Float().Mul(w.Epsilon(), w.Float64(1-tailRatio))
	thr2 := w.Float().Mul(thr, thr)
	negS := w.Neg(s)

	acc := w.Zero()
	zk := w.One()
	for k := 1; k <= kmax; k++ {
		zk = w.Mul(zk, z)
		term := w.Mul(zk, w.PowFromLog(e.logInt(w, k), negS))
		acc = w.Add(acc, term)
		if k >= kmin && w.ModSq(term).Cmp(thr2) < 0 {
			return ctx.Copy(acc), nil
		}
	}
	return mpc.Complex{}, fmt.Errorf("direct polylog did not converge in %d terms: %w", kmax, ErrPrecisionExhausted)
}
