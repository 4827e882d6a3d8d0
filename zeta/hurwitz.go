package zeta

import (
	"errors"
	"fmt"
	"math"
	"math/big"
	"math/cmplx"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/riemann-research/hurwitz-hunter/mpc"
)

// HurwitzZeta returns zeta(s, q) = sum_{n>=0} (n+q)^-s for q in (0, 1]
// and s != 1, by the strategy configured in Options.Hurwitz.
func (e *Evaluator) HurwitzZeta(ctx mpc.Context, s mpc.Complex, q *big.Float) (mpc.Complex, error) {
	if isPole(s) {
		return mpc.Complex{}, domainError("hurwitz zeta pole at s = 1")
	}
	if q.IsInf() || q.Sign() <= 0 || q.Cmp(big.NewFloat(1)) > 0 {
		return mpc.Complex{}, domainError("hurwitz zeta needs 0 < q <= 1, got q = %s", q.Text('g', 10))
	}
	if q.Cmp(big.NewFloat(1)) == 0 {
		return e.RiemannZeta(ctx, s)
	}

	switch e.opts.Hurwitz {
	case HurwitzEulerMaclaurin:
		return e.eulerMaclaurin(ctx, s, q)
	case HurwitzTaylor:
		return e.hurwitzTaylor(ctx, s, q)
	default:
		return e.hurwitzReflection(ctx, s, q)
	}
}

func isInteger(s mpc.Complex) bool {
	return s.Im.Sign() == 0 && s.Re.IsInt()
}

// hurwitzReflection uses the functional equation with s' = 1 - s:
//
//	zeta(s, q) = Gamma(s') (2 pi)^-s'
//	  [F(s', q) e^(-i pi s'/2) + F(s', 1-q) e^(i pi s'/2)].
func (e *Evaluator) hurwitzReflection(ctx mpc.Context, s mpc.Complex, q *big.Float) (mpc.Complex, error) {
	// Gamma(1-s) has poles at the positive integers.
	if isInteger(s) && s.Re.Sign() > 0 {
		e.log.WithField("s", s.String()).Debug("integer s, using euler-maclaurin")
		return e.eulerMaclaurin(ctx, s, q)
	}
	// Within epsilon of an integer the periodic zeta collapses to the
	// Riemann zeta, which loses the q^-s singularity.
	if Classify(ctx, q) == RegionEndpoint {
		return e.eulerMaclaurin(ctx, s, q)
	}
	// Below about 2^-MaxDepth the duplication recursion cannot reach the
	// central region, while the direct sum is dominated by q^-s.
	if depth := duplicationDepth(q); depth >= e.opts.MaxDepth {
		e.log.WithFields(logrus.Fields{
			"q":     q.Text('g', 10),
			"depth": depth,
		}).Debug("q too close to an endpoint, using euler-maclaurin")
		return e.eulerMaclaurin(ctx, s, q)
	}

	guard := 16 + uint(math.Ceil(math.Log2(1+cmplx.Abs(s.Complex128()))))
	w := ctx.Raise(guard)
	sp := w.Sub(w.One(), s)
	q1 := w.Float().Sub(w.Int(1), q)

	var (
		f1, f2 mpc.Complex
		err    error
	)
	if e.opts.Parallel {
		var g errgroup.Group
		g.Go(func() error {
			var err error
			f1, err = e.PeriodicZeta(w, sp, q)
			return err
		})
		g.Go(func() error {
			var err error
			f2, err = e.PeriodicZeta(w, sp, q1)
			return err
		})
		err = g.Wait()
	} else {
		if f1, err = e.PeriodicZeta(w, sp, q); err == nil {
			f2, err = e.PeriodicZeta(w, sp, q1)
		}
	}
	if errors.Is(err, ErrRecursionLimit) {
		e.log.WithError(err).Debug("duplication too deep, using euler-maclaurin")
		return e.eulerMaclaurin(ctx, s, q)
	}
	if err != nil {
		return mpc.Complex{}, err
	}

	gm, err := e.Gamma(w, sp)
	if err != nil {
		return mpc.Complex{}, err
	}
	tp := w.PowFromLog(w.LogTwoPi(), w.Neg(sp))

	halfPi := w.Float().Mul(w.Pi(), half)
	phase := w.TimesI(w.Scale(sp, halfPi)) // i pi s'/2
	ePlus := w.CExp(phase)
	eMinus := w.CExp(w.Neg(phase))

	bracket := w.Add(w.Mul(f1, eMinus), w.Mul(f2, ePlus))
	return ctx.Copy(w.Mul(w.Mul(gm, tp), bracket)), nil
}

// hurwitzTaylor expands about 1 in Riemann zeta values:
//
//	zeta(s, 1+x) = sum_n (s)_n/n! (-x)^n zeta(s+n),
//
// with x = q and an extra q^-s for q <= 1/2, x = q - 1 otherwise.
func (e *Evaluator) hurwitzTaylor(ctx mpc.Context, s mpc.Complex, q *big.Float) (mpc.Complex, error) {
	// The expansion meets the pole zeta(1) at a nonpositive integer s.
	if isInteger(s) && s.Re.Sign() <= 0 {
		return e.eulerMaclaurin(ctx, s, q)
	}

	sc := s.Complex128()
	absS := cmplx.Abs(sc)
	sigma := real(sc)
	w := ctx.Raise(16 + uint(math.Ceil(absS*math.Log2(1.5))))
	negS := w.Neg(s)

	sum := w.Zero()
	x := w.Float()
	if q.Cmp(half) <= 0 {
		x.Set(q)
		lq, err := w.Log(q)
		if err != nil {
			return mpc.Complex{}, err
		}
		sum = w.PowFromLog(lq, negS)
	} else {
		x.Sub(q, w.Int(1))
	}
	negX := w.Float().Neg(x)

	// k^-(s+n) for the direct sums once Re(s)+n is large.
	var pows []mpc.Complex
	invs := make([]*big.Float, directZetaTerms+1)

	eps := w.Epsilon()
	coef := w.One() // (s)_n/n! (-x)^n
	nmax := 4*int(w.Prec()) + 1000
	for n := 0; n <= nmax; n++ {
		sn := w.AddInt(s, int64(n))

		var z mpc.Complex
		if k := directZetaCutoff(sigma+float64(n), w.Prec()); k > 0 {
			if pows == nil {
				pows = make([]mpc.Complex, directZetaTerms+1)
				negSn := w.Neg(sn)
				for j := 1; j <= directZetaTerms; j++ {
					pows[j] = w.PowFromLog(e.logInt(w, j), negSn)
					invs[j] = w.Float().Quo(w.Int(1), w.Int(int64(j)))
				}
			} else {
				for j := 1; j <= directZetaTerms; j++ {
					pows[j] = w.Scale(pows[j], invs[j])
				}
			}
			z = w.Zero()
			for j := 1; j <= k; j++ {
				z = w.Add(z, pows[j])
			}
		} else {
			var err error
			if z, err = e.RiemannZeta(w, sn); err != nil {
				return mpc.Complex{}, err
			}
		}

		term := w.Mul(coef, z)
		sum = w.Add(sum, term)
		if float64(n) > absS+2 {
			thr := w.Float().Mul(eps, maxOne(w.Abs(sum)))
			if w.ModSq(term).Cmp(w.Float().Mul(thr, thr)) < 0 {
				return ctx.Copy(sum), nil
			}
		}
		step := w.Float().Quo(negX, w.Int(int64(n+1)))
		coef = w.Scale(w.Mul(coef, sn), step)
	}

	e.log.WithFields(logrus.Fields{"s": s.String(), "q": q.Text('g', 10)}).Debug("taylor expansion did not converge")
	return mpc.Complex{}, fmt.Errorf("taylor expansion after %d terms: %w", nmax, ErrPrecisionExhausted)
}
