package zeta

import (
	"fmt"
	"math"
	"math/big"
	"math/cmplx"

	"github.com/riemann-research/hurwitz-hunter/mpc"
)

// directZetaTerms is the largest k for which zeta(s) is summed directly
// when Re(s) is large.
const directZetaTerms = 64

func isPole(s mpc.Complex) bool {
	return s.Im.Sign() == 0 && s.Re.Cmp(big.NewFloat(1)) == 0
}

// RiemannZeta returns zeta(s) for s != 1.
func (e *Evaluator) RiemannZeta(ctx mpc.Context, s mpc.Complex) (mpc.Complex, error) {
	if isPole(s) {
		return mpc.Complex{}, domainError("zeta pole at s = 1")
	}
	sigma, _ := s.Re.Float64()
	if k := directZetaCutoff(sigma, ctx.Prec()); k > 0 {
		w := ctx.Raise(8)
		negS := w.Neg(s)
		sum := w.Zero()
		for n := 1; n <= k; n++ {
			sum = w.Add(sum, w.PowFromLog(e.logInt(w, n), negS))
		}
		return ctx.Copy(sum), nil
	}
	return e.eulerMaclaurin(ctx, s, nil)
}

// directZetaCutoff returns K such that sum_{k>K} k^-sigma < 2^-(prec+8),
// or 0 if K would exceed directZetaTerms.
func directZetaCutoff(sigma float64, prec uint) int {
	if sigma <= 2 {
		return 0
	}
	k := math.Exp2((float64(prec) + 8) / (sigma - 1))
	if k > directZetaTerms {
		return 0
	}
	return int(math.Ceil(k))
}

// eulerMaclaurin returns zeta(s, a) by
//
//	sum_{n<N} (n+a)^-s + X^(1-s)/(s-1) + X^-s/2
//	  + sum_k B_2k/(2k)! (s)_(2k-1) X^(-s-2k+1),   X = N + a,
//
// with X large enough that the Bernoulli tail reaches 2^-prec. A nil a
// means a = 1 and uses the cached ln k.
func (e *Evaluator) eulerMaclaurin(ctx mpc.Context, s mpc.Complex, a *big.Float) (mpc.Complex, error) {
	if isPole(s) {
		return mpc.Complex{}, domainError("zeta pole at s = 1")
	}

	sc := s.Complex128()
	sigma := real(sc)
	bits := float64(ctx.Prec())
	af := 1.0
	if a != nil {
		af, _ = a.Float64()
	}
	n := max(int(math.Ceil(math.Max(cmplx.Abs(sc), 1)+0.15*bits-af)), 1)
	xf := float64(n) + af

	guard := 16.0
	if sigma < 0 {
		guard += -sigma * math.Log2(xf)
	}
	w := ctx.Raise(uint(math.Ceil(guard)))
	negS := w.Neg(s)

	logAt := func(j int) (*big.Float, error) {
		if a == nil {
			return e.logInt(w, j+1), nil
		}
		return w.Log(w.Float().Add(w.Int(int64(j)), a))
	}

	sum := w.Zero()
	for j := 0; j < n; j++ {
		lg, err := logAt(j)
		if err != nil {
			return mpc.Complex{}, err
		}
		sum = w.Add(sum, w.PowFromLog(lg, negS))
	}

	x := w.Int(int64(n))
	if a == nil {
		x.Add(x, w.Int(1))
	} else {
		x.Add(x, a)
	}
	lx, err := logAt(n)
	if err != nil {
		return mpc.Complex{}, err
	}
	xs := w.PowFromLog(lx, negS) // X^-s

	tail, err := w.Div(w.Scale(xs, x), w.AddInt(s, -1))
	if err != nil {
		return mpc.Complex{}, err
	}
	sum = w.Add(sum, tail)
	sum = w.Add(sum, w.Scale(xs, half))

	invX := w.Float().Quo(w.Int(1), x)
	invX2 := w.Float().Mul(invX, invX)
	poch := w.Copy(s)      // (s)_(2k-1)
	pw := w.Scale(xs, invX) // X^(-s-2k+1)
	eps := w.Epsilon()
	kmax := int(math.Pi*xf) + 8
	for k := 1; ; k++ {
		if k > kmax {
			return mpc.Complex{}, fmt.Errorf("euler-maclaurin tail at X = %g: %w", xf, ErrPrecisionExhausted)
		}
		term := w.Scale(w.Mul(poch, pw), e.emCoefficient(w, k))
		sum = w.Add(sum, term)

		thr := w.Float().Mul(eps, maxOne(w.Abs(sum)))
		if term.IsZero() || w.ModSq(term).Cmp(w.Float().Mul(thr, thr)) < 0 {
			break
		}
		poch = w.Mul(poch, w.Mul(w.AddInt(s, int64(2*k-1)), w.AddInt(s, int64(2*k))))
		pw = w.Scale(pw, invX2)
	}
	return ctx.Copy(sum), nil
}

func maxOne(x *big.Float) *big.Float {
	if x.Cmp(big.NewFloat(1)) < 0 {
		return big.NewFloat(1)
	}
	return x
}
